package httpapi

import (
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/vforsh/argus/internal/argerr"
	"github.com/vforsh/argus/internal/model"
	"github.com/vforsh/argus/internal/ring"
)

func parseLogFilter(q map[string][]string) (ring.LogFilter, error) {
	var f ring.LogFilter
	if levels, ok := q["level"]; ok && len(levels) > 0 {
		f.Levels = make(map[model.Level]bool)
		for _, csv := range levels {
			for _, lv := range strings.Split(csv, ",") {
				lv = strings.TrimSpace(lv)
				if lv != "" {
					f.Levels[model.Level(lv)] = true
				}
			}
		}
	}
	if ci, ok := q["caseInsensitive"]; ok && len(ci) > 0 {
		switch strings.ToLower(ci[0]) {
		case "", "0", "false", "no":
		default:
			f.CaseInsensitive = true
		}
	}
	if m, ok := q["match"]; ok {
		for _, pattern := range m {
			if f.CaseInsensitive {
				pattern = "(?i)" + pattern
			}
			re, err := regexp.Compile(pattern)
			if err != nil {
				return f, argerr.Wrap(argerr.KindValidation, err, "invalid match regex %q", pattern)
			}
			f.Match = append(f.Match, re)
		}
	}
	if src, ok := q["source"]; ok && len(src) > 0 {
		f.Source = src[0]
	}
	if since, ok := q["sinceTs"]; ok && len(since) > 0 {
		ts, err := strconv.ParseInt(since[0], 10, 64)
		if err != nil {
			return f, argerr.Wrap(argerr.KindValidation, err, "invalid sinceTs")
		}
		f.SinceTs = ts
	}
	return f, nil
}

func parseNetFilter(q map[string][]string) (ring.NetFilter, error) {
	var f ring.NetFilter
	if since, ok := q["sinceTs"]; ok && len(since) > 0 {
		ts, err := strconv.ParseInt(since[0], 10, 64)
		if err != nil {
			return f, argerr.Wrap(argerr.KindValidation, err, "invalid sinceTs")
		}
		f.SinceTs = ts
	}
	if u, ok := q["url"]; ok && len(u) > 0 {
		f.URLSubstr = u[0]
	}
	return f, nil
}

func parseAfterID(r *http.Request) (int64, error) {
	s := r.URL.Query().Get("afterId")
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, argerr.Wrap(argerr.KindValidation, err, "invalid afterId")
	}
	return v, nil
}

func parseLimit(r *http.Request) (int, error) {
	s := r.URL.Query().Get("limit")
	if s == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, argerr.Wrap(argerr.KindValidation, err, "invalid limit")
	}
	return v, nil
}

func parseTimeoutMs(r *http.Request) (int, error) {
	s := r.URL.Query().Get("timeoutMs")
	if s == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, argerr.Wrap(argerr.KindValidation, err, "invalid timeoutMs")
	}
	return v, nil
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	afterID, err := parseAfterID(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	limit, err := parseLimit(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	filter, err := parseLogFilter(r.URL.Query())
	if err != nil {
		writeErr(w, err)
		return
	}
	events, nextAfter := s.Logs.ListAfter(afterID, filter, limit)
	writeOK(w, http.StatusOK, map[string]any{"events": events, "nextAfter": nextAfter})
}

func (s *Server) handleTail(w http.ResponseWriter, r *http.Request) {
	afterID, err := parseAfterID(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	limit, err := parseLimit(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	timeoutMs, err := parseTimeoutMs(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	filter, err := parseLogFilter(r.URL.Query())
	if err != nil {
		writeErr(w, err)
		return
	}
	events, nextAfter, timedOut := s.Logs.WaitForAfter(afterID, filter, limit, timeoutMs)
	writeOK(w, http.StatusOK, map[string]any{"events": events, "nextAfter": nextAfter, "timedOut": timedOut})
}

func (s *Server) handleNet(w http.ResponseWriter, r *http.Request) {
	afterID, err := parseAfterID(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	limit, err := parseLimit(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	filter, err := parseNetFilter(r.URL.Query())
	if err != nil {
		writeErr(w, err)
		return
	}
	events, nextAfter := s.Nets.ListAfter(afterID, filter, limit)
	writeOK(w, http.StatusOK, map[string]any{"events": events, "nextAfter": nextAfter})
}

func (s *Server) handleNetTail(w http.ResponseWriter, r *http.Request) {
	afterID, err := parseAfterID(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	limit, err := parseLimit(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	timeoutMs, err := parseTimeoutMs(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	filter, err := parseNetFilter(r.URL.Query())
	if err != nil {
		writeErr(w, err)
		return
	}
	events, nextAfter, timedOut := s.Nets.WaitForAfter(afterID, filter, limit, timeoutMs)
	writeOK(w, http.StatusOK, map[string]any{"events": events, "nextAfter": nextAfter, "timedOut": timedOut})
}
