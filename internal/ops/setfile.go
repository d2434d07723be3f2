package ops

import (
	"encoding/json"
	"fmt"

	"github.com/vforsh/argus/internal/argerr"
	"github.com/vforsh/argus/internal/cdp"
)

// SetFile resolves sel to a single <input type=file> element and sets its
// files via DOM.setFileInputFiles, addressed by the element's Runtime
// objectId rather than a DOM-domain nodeId (spec.md §6 "DOM.set-file").
func SetFile(sess *cdp.Session, req DOMRequest) error {
	if req.All {
		return argerr.New(argerr.KindValidation, "set-file does not support all=true")
	}
	objectID, err := resolveObjectID(sess, req.Selector)
	if err != nil {
		return err
	}
	_, err = sess.SendAndWait("DOM.setFileInputFiles", map[string]any{
		"files":    req.Files,
		"objectId": objectID,
	}, cdp.SendOptions{})
	if err != nil {
		return argerr.Wrap(argerr.KindCDPRequestFailed, err, "DOM.setFileInputFiles")
	}
	return nil
}

// resolveObjectID evaluates sel to exactly one element and returns its
// Runtime objectId (the result is not returned by value, so the remote
// object stays alive for the caller to address).
func resolveObjectID(sess *cdp.Session, sel Selector) (string, error) {
	expr := fmt.Sprintf(`(function(){
  var nodes = Array.prototype.slice.call(document.querySelectorAll(%s));
  nodes = nodes.filter(function(el){ return %s; });
  if (nodes.length !== 1) { return null; }
  return nodes[0];
})()`, jsString(sel.CSS), textFilterJS(sel.Text))

	raw, err := sess.SendAndWait("Runtime.evaluate", map[string]any{
		"expression":   expr,
		"awaitPromise": true,
	}, cdp.SendOptions{})
	if err != nil {
		return "", argerr.Wrap(argerr.KindCDPRequestFailed, err, "evaluate failed")
	}
	var result struct {
		Result struct {
			ObjectID string          `json:"objectId"`
			Value    json.RawMessage `json:"value"`
		} `json:"result"`
		ExceptionDetails *struct {
			Text string `json:"text"`
		} `json:"exceptionDetails"`
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return "", argerr.Wrap(argerr.KindInternal, err, "decode eval result")
	}
	if result.ExceptionDetails != nil {
		return "", argerr.New(argerr.KindInternal, result.ExceptionDetails.Text)
	}
	if result.Result.ObjectID == "" {
		return "", argerr.New(argerr.KindMultipleMatches, "selector did not match exactly one element")
	}
	return result.Result.ObjectID, nil
}
