// Package dispatch implements the front-end's typed HTTP client used to
// call watcher endpoints, per spec.md §4.10.
package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/vforsh/argus/internal/argerr"
	"github.com/vforsh/argus/internal/registry"
)

const DefaultTimeout = 10 * time.Second

// Client dispatches typed requests to a single watcher's HTTP API.
type Client struct {
	HTTPClient *http.Client
	Registry   *registry.Store
	// RemoveOnFailure opts into pruning a watcher's registry entry when a
	// dispatch fails with a network error (spec.md §4.10, "opt-in").
	RemoveOnFailure bool
}

// NewClient returns a Client with DefaultTimeout.
func NewClient(store *registry.Store) *Client {
	return &Client{
		HTTPClient: &http.Client{Timeout: DefaultTimeout},
		Registry:   store,
	}
}

// Do sends method+path to rec with body marshaled as JSON (nil for no
// body), decoding the JSON response into out. Per-call timeout overrides
// the client default when non-zero.
func (c *Client) Do(ctx context.Context, rec registry.WatcherRecord, method, path string, body any, out any, timeout time.Duration) error {
	url := fmt.Sprintf("http://%s:%d%s", rec.Host, rec.Port, path)

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return argerr.Wrap(argerr.KindValidation, err, "marshal request body")
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return argerr.Wrap(argerr.KindInternal, err, "build request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	client := c.HTTPClient
	if timeout > 0 {
		clientCopy := *client
		clientCopy.Timeout = timeout
		client = &clientCopy
	}

	resp, err := client.Do(req)
	if err != nil {
		if c.RemoveOnFailure && c.Registry != nil {
			_ = c.Registry.RemoveWatcher(rec.ID)
		}
		return argerr.Wrap(argerr.KindTransport, err, "dispatch to watcher %s", rec.ID)
	}
	defer resp.Body.Close()

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return argerr.Wrap(argerr.KindInternal, err, "decode response from watcher %s", rec.ID)
	}
	return nil
}

// Status probes a watcher's GET /status with a short, fixed timeout, per
// spec.md §4.10 step 4 "1.5 s timeout".
func (c *Client) Status(ctx context.Context, rec registry.WatcherRecord) (map[string]any, error) {
	var out map[string]any
	err := c.Do(ctx, rec, http.MethodGet, "/status", nil, &out, 1500*time.Millisecond)
	return out, err
}

// Healthz probes a watcher's GET /healthz, the zero-dependency liveness
// check, with the same fixed timeout as Status.
func (c *Client) Healthz(ctx context.Context, rec registry.WatcherRecord) error {
	return c.Do(ctx, rec, http.MethodGet, "/healthz", nil, nil, 1500*time.Millisecond)
}
