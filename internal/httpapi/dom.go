package httpapi

import (
	"errors"
	"net/http"

	"github.com/vforsh/argus/internal/ops"
)

const (
	domTree      = "tree"
	domInfo      = "info"
	domHover     = "hover"
	domClick     = "click"
	domKeydown   = "keydown"
	domAdd       = "add"
	domRemove    = "remove"
	domModify    = "modify"
	domSetFile   = "set-file"
	domFocus     = "focus"
	domFill      = "fill"
	domScroll    = "scroll"
	domScrollTo  = "scroll-to"
)

// domHandler builds one /dom/<op> handler, decoding the common DOMRequest
// body and dispatching to the matching ops function, per spec.md §4.8.
func (s *Server) domHandler(op string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ops.DOMRequest
		if err := decodeBody(r, &req); err != nil {
			writeErr(w, err)
			return
		}
		sess := s.Source.Session()

		var result any
		var err error
		switch op {
		case domTree:
			result, err = ops.Tree(sess, req)
		case domInfo:
			result, err = ops.Info(sess, req)
		case domHover:
			err = ops.Hover(sess, req)
		case domClick:
			err = ops.Click(sess, req)
		case domKeydown:
			err = ops.Keydown(sess, req)
		case domAdd:
			err = ops.Add(sess, req)
		case domRemove:
			err = ops.Remove(sess, req)
		case domModify:
			err = ops.Modify(sess, req)
		case domSetFile:
			err = ops.SetFile(sess, req)
		case domFocus:
			err = ops.Focus(sess, req)
		case domFill:
			err = ops.Fill(sess, req)
		case domScroll:
			err = ops.Scroll(sess, req)
		case domScrollTo:
			err = ops.ScrollToSelector(sess, req)
		}
		if errors.Is(err, ops.ErrNoMatches) {
			// spec.md §7: a 0-match selector is an ok:true soft failure,
			// never an ok:false hard error.
			writeOK(w, http.StatusOK, map[string]any{"matches": 0})
			return
		}
		if err != nil {
			writeErr(w, err)
			return
		}
		if result != nil {
			writeOK(w, http.StatusOK, map[string]any{"result": result, "matches": 1})
			return
		}
		writeOK(w, http.StatusOK, map[string]any{"matches": 1})
	}
}
