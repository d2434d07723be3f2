package ops

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/vforsh/argus/internal/argerr"
	"github.com/vforsh/argus/internal/cdp"
)

// StorageLocalRequest is the body of POST /storage/local, per spec.md §4.8.
type StorageLocalRequest struct {
	Action string `json:"action"` // get|set|remove|list|clear
	Key    string `json:"key,omitempty"`
	Value  string `json:"value,omitempty"`
	Origin string `json:"origin,omitempty"`
}

// StorageLocal runs one localStorage action in the page, validating Origin
// against the page's current origin when provided (spec.md §7
// origin_mismatch).
func StorageLocal(sess *cdp.Session, pageURL string, req StorageLocalRequest) (json.RawMessage, error) {
	if req.Origin != "" {
		if err := checkOrigin(pageURL, req.Origin); err != nil {
			return nil, err
		}
	}

	var expr string
	switch req.Action {
	case "get":
		expr = fmt.Sprintf(`(function(){ return window.localStorage.getItem(%s); })()`, jsString(req.Key))
	case "set":
		expr = fmt.Sprintf(`(function(){ window.localStorage.setItem(%s, %s); return null; })()`, jsString(req.Key), jsString(req.Value))
	case "remove":
		expr = fmt.Sprintf(`(function(){ window.localStorage.removeItem(%s); return null; })()`, jsString(req.Key))
	case "list":
		expr = `(function(){ var out = []; for (var i=0;i<window.localStorage.length;i++){ out.push(window.localStorage.key(i)); } return out; })()`
	case "clear":
		expr = `(function(){ window.localStorage.clear(); return null; })()`
	default:
		return nil, argerr.New(argerr.KindValidation, fmt.Sprintf("unknown storage action %q", req.Action))
	}

	var raw json.RawMessage
	if err := Eval(sess, expr, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// checkOrigin compares origin against the protocol+host+port of pageURL.
func checkOrigin(pageURL, origin string) error {
	pu, err := url.Parse(pageURL)
	if err != nil {
		return argerr.Wrap(argerr.KindValidation, err, "parse page URL")
	}
	ou, err := url.Parse(origin)
	if err != nil {
		return argerr.Wrap(argerr.KindValidation, err, "parse origin")
	}
	if pu.Scheme != ou.Scheme || pu.Host != ou.Host {
		return argerr.New(argerr.KindOriginMismatch, fmt.Sprintf("origin %q does not match current page origin", origin))
	}
	return nil
}
