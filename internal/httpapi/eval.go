package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/vforsh/argus/internal/argerr"
	"github.com/vforsh/argus/internal/cdp"
)

type evalRequest struct {
	Expression    string `json:"expression"`
	AwaitPromise  *bool  `json:"awaitPromise,omitempty"`
	TimeoutMs     int    `json:"timeoutMs,omitempty"`
	ReturnByValue *bool  `json:"returnByValue,omitempty"`
}

func (s *Server) handleEval(w http.ResponseWriter, r *http.Request) {
	var req evalRequest
	if err := decodeBody(r, &req); err != nil {
		writeErr(w, err)
		return
	}
	if req.Expression == "" {
		writeErr(w, argerr.New(argerr.KindValidation, "expression is required"))
		return
	}

	sess := s.Source.Session()
	if sess == nil {
		writeErr(w, argerr.New(argerr.KindCDPNotAttached, "cdp_not_attached"))
		return
	}

	awaitPromise := true
	if req.AwaitPromise != nil {
		awaitPromise = *req.AwaitPromise
	}
	returnByValue := true
	if req.ReturnByValue != nil {
		returnByValue = *req.ReturnByValue
	}

	raw, err := sess.SendAndWait("Runtime.evaluate", map[string]any{
		"expression":    req.Expression,
		"awaitPromise":  awaitPromise,
		"returnByValue": returnByValue,
	}, cdp.SendOptions{TimeoutMs: req.TimeoutMs})
	if err != nil {
		writeErr(w, err)
		return
	}

	var parsed struct {
		Result struct {
			Type  string          `json:"type"`
			Value json.RawMessage `json:"value"`
		} `json:"result"`
		ExceptionDetails json.RawMessage `json:"exceptionDetails"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		writeErr(w, argerr.Wrap(argerr.KindInternal, err, "decode eval result"))
		return
	}

	resp := map[string]any{
		"type":      parsed.Result.Type,
		"exception": nil,
	}
	if len(parsed.Result.Value) > 0 {
		var v any
		_ = json.Unmarshal(parsed.Result.Value, &v)
		resp["result"] = v
	} else {
		resp["result"] = nil
	}
	if len(parsed.ExceptionDetails) > 0 {
		var exc any
		_ = json.Unmarshal(parsed.ExceptionDetails, &exc)
		resp["exception"] = exc
	}
	writeOK(w, http.StatusOK, resp)
}
