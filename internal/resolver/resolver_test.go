package resolver

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
	"github.com/vforsh/argus/internal/dispatch"
	"github.com/vforsh/argus/internal/registry"
)

func newRecordFromServer(t *testing.T, id, cwd string, srv *httptest.Server) registry.WatcherRecord {
	t.Helper()
	u, err := url.Parse(srv.URL)
	if err != nil {
		t.Fatalf("parse URL: %v", err)
	}
	port, err := strconv.Atoi(u.Port())
	if err != nil {
		t.Fatalf("parse port: %v", err)
	}
	return registry.WatcherRecord{ID: id, Host: u.Hostname(), Port: port, Cwd: cwd, UpdatedAt: time.Now()}
}

func okServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true}`))
	}))
}

func deadServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	srv.Close()
	return srv
}

func newStore(t *testing.T) *registry.Store {
	t.Helper()
	return registry.New(filepath.Join(t.TempDir(), "registry.json"))
}

func TestResolver_Resolve_MissingRegistryReturnsNotFound(t *testing.T) {
	t.Parallel()
	store := newStore(t)
	r := New(store, dispatch.NewClient(store))

	_, err := r.Resolve(context.Background(), "app")
	var resErr *Error
	if err == nil {
		t.Fatal("expected an error")
	}
	if e, ok := err.(*Error); ok {
		resErr = e
	} else {
		t.Fatalf("err is %T, want *Error", err)
	}
	if resErr.Kind != argerr.KindNotFound {
		t.Errorf("Kind = %q, want not_found", resErr.Kind)
	}
	if len(resErr.Candidates) != 0 {
		t.Errorf("Candidates = %v, want empty", resErr.Candidates)
	}
}

func TestResolver_Resolve_ByExplicitID(t *testing.T) {
	t.Parallel()
	srv := okServer(t)
	defer srv.Close()

	store := newStore(t)
	rec := newRecordFromServer(t, "w1", "/tmp/x", srv)
	if err := store.AnnounceWatcher(rec); err != nil {
		t.Fatalf("AnnounceWatcher() error = %v", err)
	}

	r := New(store, dispatch.NewClient(store))
	got, err := r.Resolve(context.Background(), "w1")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got.ID != "w1" {
		t.Errorf("ID = %q, want w1", got.ID)
	}
}

func TestResolver_Resolve_AmbiguousByCwdAndDeadProbes(t *testing.T) {
	t.Parallel()
	srv1 := deadServer(t)
	srv2 := deadServer(t)

	store := newStore(t)
	if err := store.AnnounceWatcher(registry.WatcherRecord{ID: "a", Host: "127.0.0.1", Port: 1, Cwd: "/tmp/x", UpdatedAt: time.Now()}); err != nil {
		t.Fatalf("AnnounceWatcher() error = %v", err)
	}
	if err := store.AnnounceWatcher(registry.WatcherRecord{ID: "b", Host: "127.0.0.1", Port: 2, Cwd: "/tmp/x", UpdatedAt: time.Now()}); err != nil {
		t.Fatalf("AnnounceWatcher() error = %v", err)
	}
	_, _ = srv1, srv2

	r := New(store, dispatch.NewClient(store))
	_, err := r.Resolve(context.Background(), "")
	if err == nil {
		t.Fatal("expected an error: ambiguous cwd match, no live probes")
	}
	resErr, ok := err.(*Error)
	if !ok {
		t.Fatalf("err is %T, want *Error", err)
	}
	if resErr.Kind != argerr.KindValidation {
		t.Errorf("Kind = %q, want validation", resErr.Kind)
	}
	if len(resErr.Candidates) != 2 {
		t.Errorf("Candidates len = %d, want 2", len(resErr.Candidates))
	}
}

func TestResolver_Resolve_UniqueCwdMatch(t *testing.T) {
	t.Parallel()
	srv := okServer(t)
	defer srv.Close()

	cwd, err := filepath.Abs(".")
	if err != nil {
		t.Fatalf("abs: %v", err)
	}

	store := newStore(t)
	if err := store.AnnounceWatcher(newRecordFromServer(t, "w1", cwd, srv)); err != nil {
		t.Fatalf("AnnounceWatcher() error = %v", err)
	}
	if err := store.AnnounceWatcher(registry.WatcherRecord{ID: "w2", Host: "127.0.0.1", Port: 1, Cwd: "/somewhere/else", UpdatedAt: time.Now()}); err != nil {
		t.Fatalf("AnnounceWatcher() error = %v", err)
	}

	r := New(store, dispatch.NewClient(store))
	got, err := r.Resolve(context.Background(), "")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got.ID != "w1" {
		t.Errorf("ID = %q, want w1 (unique cwd match)", got.ID)
	}
}

func TestResolver_Resolve_SingleLiveProbeWins(t *testing.T) {
	t.Parallel()
	live := okServer(t)
	defer live.Close()
	dead := deadServer(t)

	store := newStore(t)
	if err := store.AnnounceWatcher(newRecordFromServer(t, "live", "/nowhere", live)); err != nil {
		t.Fatalf("AnnounceWatcher() error = %v", err)
	}
	if err := store.AnnounceWatcher(newRecordFromServer(t, "dead", "/nowhere", dead)); err != nil {
		t.Fatalf("AnnounceWatcher() error = %v", err)
	}

	r := New(store, dispatch.NewClient(store))
	got, err := r.Resolve(context.Background(), "")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got.ID != "live" {
		t.Errorf("ID = %q, want live (only responsive probe)", got.ID)
	}
}
