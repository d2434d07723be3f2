package httpapi

import (
	"encoding/json"
	"net/http"
	"sort"

	"github.com/vforsh/argus/internal/ops"
)

func (s *Server) handleStorageLocal(w http.ResponseWriter, r *http.Request) {
	var req ops.StorageLocalRequest
	if err := decodeBody(r, &req); err != nil {
		writeErr(w, err)
		return
	}
	sess := s.Source.Session()
	raw, err := ops.StorageLocal(sess, s.currentPageURL(), req)
	if err != nil {
		writeErr(w, err)
		return
	}
	if req.Action == "list" {
		var keys []string
		if err := json.Unmarshal(raw, &keys); err != nil {
			writeErr(w, err)
			return
		}
		sort.Strings(keys)
		writeOK(w, http.StatusOK, map[string]any{"keys": keys})
		return
	}
	var value any
	_ = json.Unmarshal(raw, &value)
	writeOK(w, http.StatusOK, map[string]any{"result": value})
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	var req ops.ReloadRequest
	if r.ContentLength != 0 {
		if err := decodeBody(r, &req); err != nil {
			writeErr(w, err)
			return
		}
	}
	sess := s.Source.Session()
	target, _ := s.Source.Target()
	res, err := ops.Reload(sess, target.ID, s.currentPageURL(), req)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]any{
		"reloaded":    res.Reloaded,
		"url":         res.URL,
		"previousUrl": res.PreviousURL,
	})
}
