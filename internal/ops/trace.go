package ops

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/vforsh/argus/internal/argerr"
	"github.com/vforsh/argus/internal/cdp"
	"github.com/vforsh/argus/internal/storage"
)

// Tracer owns one Chrome tracing session: start buffers Tracing.dataCollected
// events in memory (transferMode ReportEvents) and stop assembles them into
// a single JSON trace file, uploaded via Uploader (spec.md §4.8 "Chrome
// tracing to an artifact file").
type Tracer struct {
	mu       sync.Mutex
	running  bool
	events   []json.RawMessage
	unsub    cdp.Unsubscribe
	complete chan struct{}
}

func NewTracer() *Tracer {
	return &Tracer{}
}

// Start begins tracing with the given category filter (comma-separated,
// default a small default set).
func (t *Tracer) Start(sess *cdp.Session, categories string) error {
	if sess == nil {
		return argerr.New(argerr.KindCDPNotAttached, "cdp_not_attached")
	}
	t.mu.Lock()
	if t.running {
		t.mu.Unlock()
		return argerr.New(argerr.KindValidation, "trace already running")
	}
	if categories == "" {
		categories = "devtools.timeline,v8,blink.user_timing"
	}
	t.events = nil
	t.complete = make(chan struct{})
	t.running = true
	t.unsub = sess.OnEvent("Tracing.dataCollected", t.handleDataCollected)
	unsubDone := sess.OnEvent("Tracing.tracingComplete", t.handleTracingComplete)
	prevUnsub := t.unsub
	t.unsub = func() { prevUnsub(); unsubDone() }
	t.mu.Unlock()

	_, err := sess.SendAndWait("Tracing.start", map[string]any{
		"categories":    categories,
		"transferMode":  "ReportEvents",
	}, cdp.SendOptions{})
	if err != nil {
		t.mu.Lock()
		t.running = false
		t.mu.Unlock()
		return argerr.Wrap(argerr.KindCDPRequestFailed, err, "Tracing.start")
	}
	return nil
}

func (t *Tracer) handleDataCollected(ev cdp.Event) {
	var params struct {
		Value []json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(ev.Params, &params); err != nil {
		return
	}
	t.mu.Lock()
	t.events = append(t.events, params.Value...)
	t.mu.Unlock()
}

func (t *Tracer) handleTracingComplete(cdp.Event) {
	t.mu.Lock()
	complete := t.complete
	t.mu.Unlock()
	if complete != nil {
		close(complete)
	}
}

// Stop requests Tracing.end, waits for tracingComplete (bounded), and
// uploads the assembled trace JSON.
func (t *Tracer) Stop(ctx context.Context, sess *cdp.Session, uploader storage.Uploader, watcherID string) (*storage.UploadResult, error) {
	if sess == nil {
		return nil, argerr.New(argerr.KindCDPNotAttached, "cdp_not_attached")
	}
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return nil, argerr.New(argerr.KindValidation, "no trace running")
	}
	complete := t.complete
	unsub := t.unsub
	t.mu.Unlock()

	if _, err := sess.SendAndWait("Tracing.end", map[string]any{}, cdp.SendOptions{}); err != nil {
		return nil, argerr.Wrap(argerr.KindCDPRequestFailed, err, "Tracing.end")
	}

	select {
	case <-complete:
	case <-time.After(10 * time.Second):
	case <-ctx.Done():
	}

	unsub()
	t.mu.Lock()
	events := t.events
	t.running = false
	t.mu.Unlock()

	payload := map[string]any{"traceEvents": events}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, argerr.Wrap(argerr.KindInternal, err, "marshal trace")
	}

	objectName := fmt.Sprintf("%s/trace-%d.json", watcherID, time.Now().UnixNano())
	up, err := uploader.Upload(ctx, &storage.UploadRequest{
		ObjectName:  objectName,
		Content:     bytes.NewReader(data),
		ContentType: "application/json",
	})
	if err != nil {
		return nil, argerr.Wrap(argerr.KindInternal, err, "upload trace")
	}
	return up, nil
}
