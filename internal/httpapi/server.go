// Package httpapi implements the watcher's localhost HTTP API of spec.md
// §4.8: route table, request validation, long-poll coordination, and JSON
// envelopes, mirroring the route-table style of the teacher's HAR-capture
// server but generalized to Argus's much larger surface.
package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/vforsh/argus/internal/cdpsrc"
	"github.com/vforsh/argus/internal/ops"
	"github.com/vforsh/argus/internal/registry"
	"github.com/vforsh/argus/internal/ring"
	"github.com/vforsh/argus/internal/storage"
)

// Mode selects which routes are enabled: CDP mode disables /targets,
// /attach, /detach (spec.md §4.8 "extension-mode only").
type Mode string

const (
	ModeCDP       Mode = "cdp"
	ModeExtension Mode = "extension"
)

// RequestHook observes every handled request for the optional supervisor
// callback of spec.md §4.8.
type RequestHook func(endpoint, remoteAddr, rawQuery string, ts time.Time)

// Server holds the dependencies shared across HTTP handlers.
type Server struct {
	Source    cdpsrc.Source
	Logs      *ring.LogBuffer
	Nets      *ring.NetBuffer
	Emulation *ops.EmulationController
	Throttle  *ops.ThrottleController
	Tracer    *ops.Tracer
	Uploader  storage.Uploader
	WatcherID string
	Mode      Mode
	Record    func() registry.WatcherRecord
	Shutdown  func()
	OnRequest RequestHook
	Logger    *slog.Logger

	mux *http.ServeMux
}

// New wires the full route table of spec.md §4.8 and returns the Server's
// http.Handler via Handler().
func New(s *Server) *Server {
	if s.Logger == nil {
		s.Logger = slog.Default()
	}
	s.mux = http.NewServeMux()

	s.mux.HandleFunc("GET /status", s.wrap("status", s.handleStatus))
	s.mux.HandleFunc("GET /healthz", s.wrap("healthz", s.handleHealthz))
	s.mux.HandleFunc("GET /logs", s.wrap("logs", s.handleLogs))
	s.mux.HandleFunc("GET /tail", s.wrap("tail", s.handleTail))
	s.mux.HandleFunc("GET /net", s.wrap("net", s.handleNet))
	s.mux.HandleFunc("GET /net/tail", s.wrap("net_tail", s.handleNetTail))
	s.mux.HandleFunc("POST /eval", s.wrap("eval", s.handleEval))
	s.mux.HandleFunc("POST /trace/start", s.wrap("trace_start", s.handleTraceStart))
	s.mux.HandleFunc("POST /trace/stop", s.wrap("trace_stop", s.handleTraceStop))
	s.mux.HandleFunc("POST /screenshot", s.wrap("screenshot", s.handleScreenshot))
	s.mux.HandleFunc("POST /snapshot", s.wrap("snapshot", s.handleSnapshot))

	s.mux.HandleFunc("POST /dom/tree", s.wrap("dom_tree", s.domHandler(domTree)))
	s.mux.HandleFunc("POST /dom/info", s.wrap("dom_info", s.domHandler(domInfo)))
	s.mux.HandleFunc("POST /dom/hover", s.wrap("dom_hover", s.domHandler(domHover)))
	s.mux.HandleFunc("POST /dom/click", s.wrap("dom_click", s.domHandler(domClick)))
	s.mux.HandleFunc("POST /dom/keydown", s.wrap("dom_keydown", s.domHandler(domKeydown)))
	s.mux.HandleFunc("POST /dom/add", s.wrap("dom_add", s.domHandler(domAdd)))
	s.mux.HandleFunc("POST /dom/remove", s.wrap("dom_remove", s.domHandler(domRemove)))
	s.mux.HandleFunc("POST /dom/modify", s.wrap("dom_modify", s.domHandler(domModify)))
	s.mux.HandleFunc("POST /dom/set-file", s.wrap("dom_set_file", s.domHandler(domSetFile)))
	s.mux.HandleFunc("POST /dom/focus", s.wrap("dom_focus", s.domHandler(domFocus)))
	s.mux.HandleFunc("POST /dom/fill", s.wrap("dom_fill", s.domHandler(domFill)))
	s.mux.HandleFunc("POST /dom/scroll", s.wrap("dom_scroll", s.domHandler(domScroll)))
	s.mux.HandleFunc("POST /dom/scroll-to", s.wrap("dom_scroll_to", s.domHandler(domScrollTo)))

	s.mux.HandleFunc("GET /emulation", s.wrap("emulation_get", s.handleEmulationGet))
	s.mux.HandleFunc("POST /emulation", s.wrap("emulation_post", s.handleEmulationPost))
	s.mux.HandleFunc("GET /throttle", s.wrap("throttle_get", s.handleThrottleGet))
	s.mux.HandleFunc("POST /throttle", s.wrap("throttle_post", s.handleThrottlePost))
	s.mux.HandleFunc("POST /storage/local", s.wrap("storage_local", s.handleStorageLocal))
	s.mux.HandleFunc("POST /reload", s.wrap("reload", s.handleReload))
	s.mux.HandleFunc("POST /shutdown", s.wrap("shutdown", s.handleShutdown))

	s.mux.HandleFunc("GET /targets", s.wrap("targets", s.handleTargets))
	s.mux.HandleFunc("POST /attach", s.wrap("attach", s.handleAttach))
	s.mux.HandleFunc("POST /detach", s.wrap("detach", s.handleDetach))

	return s
}

// Handler returns the server's http.Handler, bound to 127.0.0.1:<port> by
// the caller (spec.md §4.8).
func (s *Server) Handler() http.Handler { return s.mux }

// wrap fires the observability hook, then delegates to fn.
func (s *Server) wrap(endpoint string, fn http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.OnRequest != nil {
			s.OnRequest(endpoint, r.RemoteAddr, r.URL.RawQuery, time.Now())
		}
		fn(w, r)
	}
}

type statusResponse struct {
	Attached        bool                    `json:"attached"`
	ProtocolVersion int                     `json:"protocolVersion"`
	LogCount        int                     `json:"logCount"`
	NetCount        int                     `json:"netCount"`
	LogHighWater    int64                   `json:"logHighWater"`
	NetHighWater    int64                   `json:"netHighWater"`
	Record          registry.WatcherRecord  `json:"record"`
}

const protocolVersion = 1

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	_, attached := s.Source.Target()
	resp := statusResponse{
		Attached:        attached,
		ProtocolVersion: protocolVersion,
		LogCount:        s.Logs.Len(),
		NetCount:        s.Nets.Len(),
		LogHighWater:    s.Logs.HighWaterMark(),
		NetHighWater:    s.Nets.HighWaterMark(),
	}
	if s.Record != nil {
		resp.Record = s.Record()
	}
	writeOK(w, http.StatusOK, resp)
}

// handleHealthz is a zero-dependency liveness probe distinct from the
// richer /status payload. The resolver's parallel-probe step uses /status.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeOK(w, http.StatusOK, map[string]any{})
}

func (s *Server) handleShutdown(w http.ResponseWriter, r *http.Request) {
	writeOK(w, http.StatusOK, map[string]any{})
	if s.Shutdown != nil {
		go s.Shutdown()
	}
}

// currentPageURL returns the attached target's URL, or "" when detached,
// for routes that need it (reload, storage/local origin checks).
func (s *Server) currentPageURL() string {
	target, attached := s.Source.Target()
	if !attached {
		return ""
	}
	return target.URL
}
