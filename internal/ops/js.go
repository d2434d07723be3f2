// Package ops implements the one-shot CDP-driven routines behind the DOM,
// emulation, throttle, storage, screenshot, trace, and reload HTTP routes
// of spec.md §4.8. DOM inspection and mutation are expressed as short
// JavaScript snippets evaluated in the page via Runtime.evaluate rather
// than walking the DOM domain's node-id protocol, matching the "one-shot
// CDP-driven routine" framing of spec.md §2.
package ops

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"

	"github.com/vforsh/argus/internal/argerr"
	"github.com/vforsh/argus/internal/cdp"
)

// ErrNoMatches signals that a selector resolved to zero elements. Per
// spec.md §7 this is an "ok:true" soft failure (matches:0, ...:0), never
// an ok:false error, so callers must check for it with errors.Is before
// falling back to the hard-error envelope.
var ErrNoMatches = errors.New("selector matched no elements")

// Selector is the common {selector, all?, text?} shape of spec.md §6 "DOM
// operations".
type Selector struct {
	CSS  string `json:"selector"`
	All  bool   `json:"all"`
	Text string `json:"text"`
}

var patternRe = regexp.MustCompile(`^/(.*)/([a-z]*)$`)

// textFilterJS renders a JS expression fragment (referencing the in-scope
// variable `el`) implementing the text filter of spec.md §6: an exact
// string, or `/pattern/flags` regex syntax.
func textFilterJS(text string) string {
	if text == "" {
		return "true"
	}
	if m := patternRe.FindStringSubmatch(text); m != nil {
		return fmt.Sprintf("new RegExp(%s, %s).test(el.textContent || \"\")", jsString(m[1]), jsString(m[2]))
	}
	return fmt.Sprintf("(el.textContent || \"\") === %s", jsString(text))
}

func jsString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

// matchExpr renders a JS IIFE returning the array of elements matching sel,
// after applying the text filter.
func matchExpr(sel Selector) string {
	return fmt.Sprintf(`(function(){
  var nodes = Array.prototype.slice.call(document.querySelectorAll(%s));
  return nodes.filter(function(el){ return %s; });
})()`, jsString(sel.CSS), textFilterJS(sel.Text))
}

// resolveExpr renders a JS IIFE that resolves sel to exactly one
// element (when sel.All is false) and invokes bodyJS with `el` bound to
// it, or applies bodyJS to every match when sel.All is true, accumulating
// results into an array.
func resolveExpr(sel Selector, bodyJS string) string {
	return fmt.Sprintf(`(function(){
  var nodes = Array.prototype.slice.call(document.querySelectorAll(%s));
  nodes = nodes.filter(function(el){ return %s; });
  if (!%t) {
    if (nodes.length === 0) {
      return {__error: "no_matches"};
    }
    if (nodes.length !== 1) {
      return {__error: "multiple_matches", count: nodes.length};
    }
    var el = nodes[0];
    return (function(){ %s })();
  }
  return nodes.map(function(el){ return (function(){ %s })(); });
})()`, jsString(sel.CSS), textFilterJS(sel.Text), sel.All, bodyJS, bodyJS)
}

// Eval runs expr via Runtime.evaluate and decodes the JSON-serialized
// result into out. A `__error` field in the result maps to the matching
// argerr.Kind.
func Eval(sess *cdp.Session, expr string, out any) error {
	if sess == nil {
		return argerr.New(argerr.KindCDPNotAttached, "cdp_not_attached")
	}
	raw, err := sess.SendAndWait("Runtime.evaluate", map[string]any{
		"expression":    expr,
		"returnByValue": true,
		"awaitPromise":  true,
	}, cdp.SendOptions{})
	if err != nil {
		return argerr.Wrap(argerr.KindCDPRequestFailed, err, "evaluate failed")
	}

	var evalResult struct {
		Result struct {
			Value json.RawMessage `json:"value"`
		} `json:"result"`
		ExceptionDetails *struct {
			Text string `json:"text"`
		} `json:"exceptionDetails"`
	}
	if err := json.Unmarshal(raw, &evalResult); err != nil {
		return argerr.Wrap(argerr.KindInternal, err, "decode eval result")
	}
	if evalResult.ExceptionDetails != nil {
		return argerr.New(argerr.KindInternal, evalResult.ExceptionDetails.Text)
	}

	var probe struct {
		Error string `json:"__error"`
		Count int    `json:"count"`
	}
	_ = json.Unmarshal(evalResult.Result.Value, &probe)
	switch probe.Error {
	case "multiple_matches":
		return argerr.New(argerr.KindMultipleMatches, fmt.Sprintf("selector matched %d elements", probe.Count))
	case "no_matches":
		return ErrNoMatches
	}

	if out == nil {
		return nil
	}
	if len(evalResult.Result.Value) == 0 {
		return nil
	}
	return json.Unmarshal(evalResult.Result.Value, out)
}
