package ops

import (
	"encoding/json"
	"fmt"

	"github.com/vforsh/argus/internal/argerr"
	"github.com/vforsh/argus/internal/cdp"
)

// DOMRequest is the common body for every /dom/* route, per spec.md §6.
type DOMRequest struct {
	Selector

	HTML  string   `json:"html,omitempty"`
	Key   string   `json:"key,omitempty"`
	Value string   `json:"value,omitempty"`
	Attr  string   `json:"attr,omitempty"`
	Mode  string   `json:"mode,omitempty"` // append|before|after for add
	DX    int      `json:"dx,omitempty"`
	DY    int      `json:"dy,omitempty"`
	Files []string `json:"files,omitempty"`
}

// Tree returns a serialized DOM subtree rooted at the match(es).
func Tree(sess *cdp.Session, req DOMRequest) (json.RawMessage, error) {
	body := `function describe(e, depth){
    if (!e || depth > 6) return null;
    var kids = [];
    for (var i=0;i<e.children.length;i++){ kids.push(describe(e.children[i], depth+1)); }
    return {tag: e.tagName.toLowerCase(), id: e.id||undefined, className: e.className||undefined, text: (e.children.length===0? (e.textContent||"").slice(0,200): undefined), children: kids};
  }
  return describe(el, 0);`
	return evalRaw(sess, resolveExpr(req.Selector, body))
}

// Info returns bounding box, visibility, and attribute data for the
// match(es).
func Info(sess *cdp.Session, req DOMRequest) (json.RawMessage, error) {
	body := `var r = el.getBoundingClientRect();
  var style = window.getComputedStyle(el);
  var attrs = {};
  for (var i=0;i<el.attributes.length;i++){ attrs[el.attributes[i].name] = el.attributes[i].value; }
  return {
    tag: el.tagName.toLowerCase(),
    rect: {x:r.x,y:r.y,width:r.width,height:r.height},
    visible: !!(r.width>0 && r.height>0 && style.visibility!=="hidden" && style.display!=="none"),
    text: (el.textContent||"").slice(0,2000),
    attrs: attrs
  };`
	return evalRaw(sess, resolveExpr(req.Selector, body))
}

// requireInteractableJS is shared by Click/Hover/Focus/Fill/Keydown: a
// hidden, zero-size, or disabled element fails with not_interactable, per
// spec.md §7.
const requireInteractableJS = `var r = el.getBoundingClientRect();
  var style = window.getComputedStyle(el);
  if (r.width<=0 || r.height<=0 || style.visibility==="hidden" || style.display==="none" || el.disabled) {
    return {__interactError: true};
  }
`

func Hover(sess *cdp.Session, req DOMRequest) error {
	body := requireInteractableJS + `el.scrollIntoView({block:"center", inline:"center"});
  var r = el.getBoundingClientRect();
  el.dispatchEvent(new MouseEvent("mouseover", {bubbles:true, clientX:r.x+r.width/2, clientY:r.y+r.height/2}));
  return {};`
	return evalInteractable(sess, req, body)
}

func Click(sess *cdp.Session, req DOMRequest) error {
	body := requireInteractableJS + `el.scrollIntoView({block:"center", inline:"center"});
  el.click();
  return {};`
	return evalInteractable(sess, req, body)
}

func Focus(sess *cdp.Session, req DOMRequest) error {
	body := requireInteractableJS + `el.focus();
  return {};`
	return evalInteractable(sess, req, body)
}

func Fill(sess *cdp.Session, req DOMRequest) error {
	body := fmt.Sprintf(`%sel.focus();
  var desc = Object.getOwnPropertyDescriptor(window.HTMLInputElement.prototype, "value") ||
             Object.getOwnPropertyDescriptor(window.HTMLTextAreaElement.prototype, "value");
  if (desc && desc.set) { desc.set.call(el, %s); } else { el.value = %s; }
  el.dispatchEvent(new Event("input", {bubbles:true}));
  el.dispatchEvent(new Event("change", {bubbles:true}));
  return {};`, requireInteractableJS, jsString(req.Value), jsString(req.Value))
	return evalInteractable(sess, req, body)
}

func Keydown(sess *cdp.Session, req DOMRequest) error {
	body := fmt.Sprintf(`%sel.focus();
  el.dispatchEvent(new KeyboardEvent("keydown", {key: %s, bubbles:true}));
  return {};`, requireInteractableJS, jsString(req.Key))
	return evalInteractable(sess, req, body)
}

func Scroll(sess *cdp.Session, req DOMRequest) error {
	body := fmt.Sprintf(`el.scrollBy(%d, %d); return {};`, req.DX, req.DY)
	_, err := evalRaw(sess, resolveExpr(req.Selector, body))
	return err
}

func ScrollToSelector(sess *cdp.Session, req DOMRequest) error {
	body := `el.scrollIntoView({block:"center", inline:"center"}); return {};`
	_, err := evalRaw(sess, resolveExpr(req.Selector, body))
	return err
}

func Add(sess *cdp.Session, req DOMRequest) error {
	mode := req.Mode
	if mode == "" {
		mode = "append"
	}
	var insertJS string
	switch mode {
	case "before":
		insertJS = `el.insertAdjacentHTML("beforebegin", html);`
	case "after":
		insertJS = `el.insertAdjacentHTML("afterend", html);`
	default:
		insertJS = `el.insertAdjacentHTML("beforeend", html);`
	}
	body := fmt.Sprintf(`var html = %s;
  %s
  return {};`, jsString(req.HTML), insertJS)
	_, err := evalRaw(sess, resolveExpr(req.Selector, body))
	return err
}

func Remove(sess *cdp.Session, req DOMRequest) error {
	body := `el.remove(); return {};`
	_, err := evalRaw(sess, resolveExpr(req.Selector, body))
	return err
}

func Modify(sess *cdp.Session, req DOMRequest) error {
	var body string
	switch {
	case req.Attr != "":
		body = fmt.Sprintf(`el.setAttribute(%s, %s); return {};`, jsString(req.Attr), jsString(req.Value))
	case req.HTML != "":
		body = fmt.Sprintf(`el.innerHTML = %s; return {};`, jsString(req.HTML))
	default:
		return argerr.New(argerr.KindValidation, "modify requires attr or html")
	}
	_, err := evalRaw(sess, resolveExpr(req.Selector, body))
	return err
}

// evalRaw runs expr and returns the raw JSON value, translating a
// multiple_matches probe into argerr.
func evalRaw(sess *cdp.Session, expr string) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := Eval(sess, expr, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// evalInteractable runs expr and translates a not_interactable probe
// (recognised by the requireInteractableJS preamble) into argerr.
func evalInteractable(sess *cdp.Session, req DOMRequest, body string) error {
	raw, err := evalRaw(sess, resolveExpr(req.Selector, body))
	if err != nil {
		return err
	}
	var probe struct {
		InteractError bool `json:"__interactError"`
	}
	_ = json.Unmarshal(raw, &probe)
	if probe.InteractError {
		return argerr.New(argerr.KindNotInteractable, "element is not interactable")
	}
	return nil
}
