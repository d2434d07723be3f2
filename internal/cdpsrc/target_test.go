package cdpsrc

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync/atomic"
	"testing"
	"time"
)

func testServerHostPort(t *testing.T, srv *httptest.Server) (string, int) {
	t.Helper()
	u, err := url.Parse(srv.URL)
	if err != nil {
		t.Fatalf("parse server URL: %v", err)
	}
	port, err := strconv.Atoi(u.Port())
	if err != nil {
		t.Fatalf("parse server port: %v", err)
	}
	return u.Hostname(), port
}

func TestListTargets_Success(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/json/list" {
			t.Errorf("path = %q, want /json/list", r.URL.Path)
		}
		fmt.Fprint(w, `[{"id":"t1","type":"page","url":"https://example.com"}]`)
	}))
	defer srv.Close()

	host, port := testServerHostPort(t, srv)
	targets, err := ListTargets(context.Background(), srv.Client(), host, port)
	if err != nil {
		t.Fatalf("ListTargets() error = %v", err)
	}
	if len(targets) != 1 || targets[0].ID != "t1" {
		t.Errorf("targets = %+v, want one target with id t1", targets)
	}
}

func TestListTargets_NonOKStatus(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	host, port := testServerHostPort(t, srv)
	if _, err := ListTargets(context.Background(), srv.Client(), host, port); err == nil {
		t.Error("expected error for non-200 response")
	}
}

func TestListTargetsRetry_SucceedsAfterTransientFailures(t *testing.T) {
	t.Parallel()
	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&attempts, 1)
		if n < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, `[]`)
	}))
	defer srv.Close()

	host, port := testServerHostPort(t, srv)
	targets, err := ListTargetsRetry(context.Background(), srv.Client(), host, port, 5, 5*time.Millisecond)
	if err != nil {
		t.Fatalf("ListTargetsRetry() error = %v", err)
	}
	if targets == nil {
		t.Error("expected non-nil empty target list")
	}
	if atomic.LoadInt32(&attempts) != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestListTargetsRetry_ExhaustsAttempts(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	host, port := testServerHostPort(t, srv)
	_, err := ListTargetsRetry(context.Background(), srv.Client(), host, port, 2, 5*time.Millisecond)
	if err == nil {
		t.Error("expected error after exhausting all attempts")
	}
}
