package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/vforsh/argus/internal/ops"
)

type traceStartRequest struct {
	Categories string `json:"categories,omitempty"`
}

func (s *Server) handleTraceStart(w http.ResponseWriter, r *http.Request) {
	var req traceStartRequest
	_ = decodeBody(r, &req) // body is optional for trace/start

	sess := s.Source.Session()
	if err := s.Tracer.Start(sess, req.Categories); err != nil {
		writeErr(w, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]any{})
}

func (s *Server) handleTraceStop(w http.ResponseWriter, r *http.Request) {
	sess := s.Source.Session()
	result, err := s.Tracer.Stop(r.Context(), sess, s.Uploader, s.WatcherID)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]any{
		"url":        result.SignedURL,
		"objectName": result.ObjectName,
		"expiresAt":  result.ExpiresAt,
	})
}

func (s *Server) handleScreenshot(w http.ResponseWriter, r *http.Request) {
	var req ops.ScreenshotRequest
	if r.ContentLength != 0 {
		if err := decodeBody(r, &req); err != nil {
			writeErr(w, err)
			return
		}
	}
	sess := s.Source.Session()
	result, err := ops.Screenshot(r.Context(), sess, s.Uploader, s.WatcherID, req)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]any{
		"url":        result.SignedURL,
		"objectName": result.ObjectName,
		"expiresAt":  result.ExpiresAt,
	})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	sess := s.Source.Session()
	raw, err := ops.Snapshot(sess)
	if err != nil {
		writeErr(w, err)
		return
	}
	var tree any
	_ = json.Unmarshal(raw, &tree)
	writeOK(w, http.StatusOK, map[string]any{"tree": tree})
}
