package ops

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/vforsh/argus/internal/argerr"
	"github.com/vforsh/argus/internal/cdp"
)

// ReloadRequest is the body of POST /reload, per spec.md §6 "Reload
// query-param substitution". Params is the bulk "--params k1=v1&k2=v2"
// form; Param is the repeatable "--param key=value" form. Both may be
// present at once and are merged before substitution.
type ReloadRequest struct {
	Params string   `json:"params,omitempty"`
	Param  []string `json:"param,omitempty"`
}

// entries flattens Params and Param into one ordered list of "key=value"
// pairs, splitting on "&" within each.
func (r ReloadRequest) entries() []string {
	var out []string
	if r.Params != "" {
		out = append(out, strings.Split(r.Params, "&")...)
	}
	for _, p := range r.Param {
		out = append(out, strings.Split(p, "&")...)
	}
	return out
}

// ReloadResult carries the reloaded target id and its URL before/after
// substitution, per spec.md §8 scenario 4.
type ReloadResult struct {
	Reloaded    string
	URL         string
	PreviousURL string
}

// Reload reloads the current target, optionally rewriting its query
// parameters first. Substitution is restricted to http/https target URLs;
// a missing "=" or empty key is a validation error, per spec.md §6.
func Reload(sess *cdp.Session, targetID, currentURL string, req ReloadRequest) (ReloadResult, error) {
	if sess == nil {
		return ReloadResult{}, argerr.New(argerr.KindCDPNotAttached, "cdp_not_attached")
	}
	entries := req.entries()
	if len(entries) == 0 {
		_, err := sess.SendAndWait("Page.reload", map[string]any{}, cdp.SendOptions{})
		if err != nil {
			return ReloadResult{}, argerr.Wrap(argerr.KindCDPRequestFailed, err, "Page.reload")
		}
		return ReloadResult{Reloaded: targetID, URL: currentURL, PreviousURL: currentURL}, nil
	}

	u, err := url.Parse(currentURL)
	if err != nil {
		return ReloadResult{}, argerr.Wrap(argerr.KindValidation, err, "parse current URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ReloadResult{}, argerr.New(argerr.KindValidation, fmt.Sprintf("target URL %q is not http/https; query-param substitution requires it", currentURL))
	}

	q := u.Query()
	for _, pair := range entries {
		key, value, err := splitParam(pair)
		if err != nil {
			return ReloadResult{}, err
		}
		q.Set(key, value)
	}
	u.RawQuery = q.Encode()
	newURL := u.String()

	_, err = sess.SendAndWait("Page.navigate", map[string]any{"url": newURL}, cdp.SendOptions{})
	if err != nil {
		return ReloadResult{}, argerr.Wrap(argerr.KindCDPRequestFailed, err, "Page.navigate")
	}
	return ReloadResult{Reloaded: targetID, URL: newURL, PreviousURL: currentURL}, nil
}

func splitParam(pair string) (key, value string, err error) {
	idx := strings.IndexByte(pair, '=')
	if idx < 0 {
		return "", "", argerr.New(argerr.KindValidation, fmt.Sprintf("missing '=' in param %q", pair))
	}
	key = pair[:idx]
	if key == "" {
		return "", "", argerr.New(argerr.KindValidation, fmt.Sprintf("empty key in param %q", pair))
	}
	return key, pair[idx+1:], nil
}
