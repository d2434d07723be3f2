package httpapi

import (
	"net/http"

	"github.com/vforsh/argus/internal/argerr"
	"github.com/vforsh/argus/internal/cdpsrc"
)

// handleTargets, handleAttach, and handleDetach exist only in extension
// mode (spec.md §4.8): CDP mode returns 404 for all three, since target
// discovery there is driven by the CDP source's own polling loop rather
// than a client-initiated attach.

func (s *Server) handleTargets(w http.ResponseWriter, r *http.Request) {
	if s.Mode != ModeExtension {
		writeNotFound(w, "route disabled in cdp mode")
		return
	}
	target, attached := s.Source.Target()
	targets := []cdpsrc.Target{}
	if attached {
		targets = append(targets, target)
	}
	writeOK(w, http.StatusOK, map[string]any{"targets": targets})
}

func (s *Server) handleAttach(w http.ResponseWriter, r *http.Request) {
	if s.Mode != ModeExtension {
		writeNotFound(w, "route disabled in cdp mode")
		return
	}
	ext, ok := s.Source.(*cdpsrc.ExtensionSource)
	if !ok {
		writeErr(w, argerr.New(argerr.KindInternal, "extension source misconfigured"))
		return
	}
	// Session handoff happens over the native-messaging bridge (an external
	// collaborator per spec.md §1); this route only reports current state
	// once the bridge has called ExtensionSource.Attach directly.
	_, attached := ext.Target()
	writeOK(w, http.StatusOK, map[string]any{"attached": attached})
}

func (s *Server) handleDetach(w http.ResponseWriter, r *http.Request) {
	if s.Mode != ModeExtension {
		writeNotFound(w, "route disabled in cdp mode")
		return
	}
	ext, ok := s.Source.(*cdpsrc.ExtensionSource)
	if !ok {
		writeErr(w, argerr.New(argerr.KindInternal, "extension source misconfigured"))
		return
	}
	ext.Detach(nil)
	writeOK(w, http.StatusOK, map[string]any{})
}
