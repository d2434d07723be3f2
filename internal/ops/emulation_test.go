package ops

import (
	"encoding/json"
	"testing"

	"github.com/vforsh/argus/internal/cdp"
)

// autoReplyTransport is an in-memory cdp.Transport that answers every
// request with {"id":<id>,"result":{}} as soon as it is written.
type autoReplyTransport struct {
	inbox chan []byte
}

func newAutoReplyTransport() *autoReplyTransport {
	return &autoReplyTransport{inbox: make(chan []byte, 16)}
}

func (t *autoReplyTransport) ReadMessage() ([]byte, error) {
	return <-t.inbox, nil
}

func (t *autoReplyTransport) WriteMessage(data []byte) error {
	var req struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(data, &req); err != nil {
		return err
	}
	reply, _ := json.Marshal(map[string]any{"id": req.ID, "result": map[string]any{}})
	t.inbox <- reply
	return nil
}

func (t *autoReplyTransport) Close() error { return nil }

func (t *autoReplyTransport) push(raw string) {
	t.inbox <- []byte(raw)
}

func newAttachedSession() *cdp.Session {
	s, _ := newAttachedSessionWithTransport()
	return s
}

func newAttachedSessionWithTransport() (*cdp.Session, *autoReplyTransport) {
	tr := newAutoReplyTransport()
	s := cdp.NewSession()
	s.Attach(tr)
	return s, tr
}

func TestEmulationController_Apply_NilSessionIsNoop(t *testing.T) {
	t.Parallel()
	c := NewEmulationController()
	if err := c.Set(nil, EmulationState{Width: 800, Height: 600}); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	_, applied, lastErr := c.Get()
	if applied || lastErr != nil {
		t.Errorf("applied = %v, lastErr = %v, want false, nil", applied, lastErr)
	}
}

func TestEmulationController_Apply_SendsDeviceMetricsOverride(t *testing.T) {
	t.Parallel()
	c := NewEmulationController()
	sess := newAttachedSession()

	if err := c.Set(sess, EmulationState{Width: 800, Height: 600, Mobile: true, Touch: true, UserAgent: "test-agent"}); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	state, applied, lastErr := c.Get()
	if !applied || lastErr != nil {
		t.Errorf("applied = %v, lastErr = %v, want true, nil", applied, lastErr)
	}
	if state.Width != 800 || state.Height != 600 {
		t.Errorf("state = %+v, want 800x600", state)
	}
}

func TestEmulationController_Apply_DefaultsDeviceScaleToOne(t *testing.T) {
	t.Parallel()
	c := NewEmulationController()
	sess := newAttachedSession()

	if err := c.Set(sess, EmulationState{Width: 400, Height: 300}); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	_, applied, _ := c.Get()
	if !applied {
		t.Error("expected apply to succeed with default device scale")
	}
}

func TestEmulationController_Apply_ReappliesOnReattach(t *testing.T) {
	t.Parallel()
	c := NewEmulationController()
	if err := c.Set(nil, EmulationState{Width: 1024, Height: 768}); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	sess := newAttachedSession()
	if err := c.Apply(sess); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	_, applied, _ := c.Get()
	if !applied {
		t.Error("expected desired state to apply once a session attaches")
	}
}
