package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/vforsh/argus/internal/argerr"
)

// writeOK writes the {ok:true, ...} success envelope of spec.md §6, merging
// extra fields (a struct or map) into the top level.
func writeOK(w http.ResponseWriter, status int, extra any) {
	w.Header().Set("Content-Type", "application/json")
	body, err := json.Marshal(extra)
	if err != nil {
		writeErr(w, argerr.New(argerr.KindInternal, "failed to marshal response"))
		return
	}
	var fields map[string]json.RawMessage
	if len(body) > 0 && body[0] == '{' {
		_ = json.Unmarshal(body, &fields)
	}
	if fields == nil {
		fields = map[string]json.RawMessage{}
	}
	fields["ok"] = json.RawMessage("true")

	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(fields)
}

// writeErr writes the {ok:false, error:{message, code}} envelope, mapping
// err's argerr.Kind to an HTTP status per spec.md §4.8/§7.
func writeErr(w http.ResponseWriter, err error) {
	kind := argerr.KindOf(err)
	status := argerr.HTTPStatus(kind)
	// The kind travels in "code"; drop the "<kind>: " prefix *argerr.Error
	// adds so "message" carries only the description.
	msg := strings.TrimPrefix(err.Error(), string(kind)+": ")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"ok": false,
		"error": map[string]any{
			"message": msg,
			"code":    string(kind),
		},
	})
}

func writeNotFound(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"ok": false,
		"error": map[string]any{
			"message": msg,
			"code":    "not_found",
		},
	})
}

func decodeBody(r *http.Request, v any) error {
	if r.Body == nil {
		return argerr.New(argerr.KindValidation, "missing request body")
	}
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return argerr.Wrap(argerr.KindValidation, err, "invalid request body")
	}
	return nil
}
