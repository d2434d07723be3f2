package dispatch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/vforsh/argus/internal/argerr"
	"github.com/vforsh/argus/internal/registry"
)

func recordFor(t *testing.T, id string, srv *httptest.Server) registry.WatcherRecord {
	t.Helper()
	u, err := url.Parse(srv.URL)
	if err != nil {
		t.Fatalf("parse URL: %v", err)
	}
	port, err := strconv.Atoi(u.Port())
	if err != nil {
		t.Fatalf("parse port: %v", err)
	}
	return registry.WatcherRecord{ID: id, Host: u.Hostname(), Port: port}
}

func TestClient_Do_DecodesJSONResponse(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/status" {
			t.Errorf("got %s %s, want GET /status", r.Method, r.URL.Path)
		}
		w.Write([]byte(`{"attached":true}`))
	}))
	defer srv.Close()

	c := NewClient(registry.New(filepath.Join(t.TempDir(), "registry.json")))
	var out map[string]any
	if err := c.Do(context.Background(), recordFor(t, "w1", srv), http.MethodGet, "/status", nil, &out, 0); err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if out["attached"] != true {
		t.Errorf("out = %v, want attached=true", out)
	}
}

func TestClient_Do_MarshalsRequestBody(t *testing.T) {
	t.Parallel()
	var gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q, want application/json", ct)
		}
		buf := make([]byte, 64)
		n, _ := r.Body.Read(buf)
		gotBody = string(buf[:n])
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(registry.New(filepath.Join(t.TempDir(), "registry.json")))
	var out map[string]any
	if err := c.Do(context.Background(), recordFor(t, "w1", srv), http.MethodPost, "/eval", map[string]string{"expr": "1+1"}, &out, 0); err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if gotBody == "" {
		t.Error("expected a JSON request body to be sent")
	}
}

func TestClient_Do_TransportErrorIsWrapped(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := NewClient(registry.New(filepath.Join(t.TempDir(), "registry.json")))
	err := c.Do(context.Background(), recordFor(t, "w1", srv), http.MethodGet, "/status", nil, nil, 0)
	if err == nil {
		t.Fatal("expected a transport error")
	}
	if argerr.KindOf(err) != argerr.KindTransport {
		t.Errorf("KindOf(err) = %q, want transport", argerr.KindOf(err))
	}
}

func TestClient_Do_RemoveOnFailurePrunesRegistry(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	store := registry.New(filepath.Join(t.TempDir(), "registry.json"))
	rec := recordFor(t, "w1", srv)
	if err := store.AnnounceWatcher(rec); err != nil {
		t.Fatalf("AnnounceWatcher() error = %v", err)
	}

	c := NewClient(store)
	c.RemoveOnFailure = true
	_ = c.Do(context.Background(), rec, http.MethodGet, "/status", nil, nil, 0)

	reg, _ := store.Read()
	if _, ok := reg.Watchers["w1"]; ok {
		t.Error("expected watcher to be pruned after dispatch failure")
	}
}

func TestClient_Do_PerCallTimeoutOverridesDefault(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(50 * time.Millisecond)
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(registry.New(filepath.Join(t.TempDir(), "registry.json")))
	err := c.Do(context.Background(), recordFor(t, "w1", srv), http.MethodGet, "/status", nil, nil, 1*time.Millisecond)
	if err == nil {
		t.Fatal("expected a timeout error with a 1ms override")
	}
}

func TestClient_Status_UsesStatusPath(t *testing.T) {
	t.Parallel()
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := NewClient(registry.New(filepath.Join(t.TempDir(), "registry.json")))
	if _, err := c.Status(context.Background(), recordFor(t, "w1", srv)); err != nil {
		t.Fatalf("Status() error = %v", err)
	}
	if gotPath != "/status" {
		t.Errorf("path = %q, want /status", gotPath)
	}
}

func TestClient_Healthz_UsesHealthzPath(t *testing.T) {
	t.Parallel()
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
	}))
	defer srv.Close()

	c := NewClient(registry.New(filepath.Join(t.TempDir(), "registry.json")))
	if err := c.Healthz(context.Background(), recordFor(t, "w1", srv)); err != nil {
		t.Fatalf("Healthz() error = %v", err)
	}
	if gotPath != "/healthz" {
		t.Errorf("path = %q, want /healthz", gotPath)
	}
}
