package httpapi

import (
	"net/http"

	"github.com/vforsh/argus/internal/ops"
)

func (s *Server) handleEmulationGet(w http.ResponseWriter, r *http.Request) {
	state, applied, lastErr := s.Emulation.Get()
	errStr := ""
	if lastErr != nil {
		errStr = lastErr.Error()
	}
	writeOK(w, http.StatusOK, map[string]any{"desired": state, "applied": applied, "lastError": errStr})
}

func (s *Server) handleEmulationPost(w http.ResponseWriter, r *http.Request) {
	var state ops.EmulationState
	if err := decodeBody(r, &state); err != nil {
		writeErr(w, err)
		return
	}
	sess := s.Source.Session()
	if err := s.Emulation.Set(sess, state); err != nil {
		writeErr(w, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]any{})
}

func (s *Server) handleThrottleGet(w http.ResponseWriter, r *http.Request) {
	state, applied, lastErr := s.Throttle.Get()
	errStr := ""
	if lastErr != nil {
		errStr = lastErr.Error()
	}
	writeOK(w, http.StatusOK, map[string]any{"desired": state, "applied": applied, "lastError": errStr})
}

func (s *Server) handleThrottlePost(w http.ResponseWriter, r *http.Request) {
	var state ops.ThrottleState
	if err := decodeBody(r, &state); err != nil {
		writeErr(w, err)
		return
	}
	sess := s.Source.Session()
	if err := s.Throttle.Set(sess, state); err != nil {
		writeErr(w, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]any{})
}
