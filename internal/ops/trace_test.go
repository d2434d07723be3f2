package ops

import (
	"context"
	"testing"
	"time"

	"github.com/vforsh/argus/internal/argerr"
)

func TestTracer_Start_NotAttachedReturnsError(t *testing.T) {
	t.Parallel()
	tr := NewTracer()
	err := tr.Start(nil, "")
	if argerr.KindOf(err) != argerr.KindCDPNotAttached {
		t.Errorf("KindOf(err) = %q, want cdp_not_attached", argerr.KindOf(err))
	}
}

func TestTracer_Start_TwiceIsValidationError(t *testing.T) {
	t.Parallel()
	sess := newAttachedSession()
	tr := NewTracer()
	if err := tr.Start(sess, ""); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := tr.Start(sess, ""); argerr.KindOf(err) != argerr.KindValidation {
		t.Errorf("KindOf(err) = %q, want validation for a second Start", argerr.KindOf(err))
	}
}

func TestTracer_Stop_WithoutStartIsValidationError(t *testing.T) {
	t.Parallel()
	sess := newAttachedSession()
	tr := NewTracer()
	_, err := tr.Stop(context.Background(), sess, &fakeUploader{}, "w1")
	if argerr.KindOf(err) != argerr.KindValidation {
		t.Errorf("KindOf(err) = %q, want validation", argerr.KindOf(err))
	}
}

func TestTracer_StartStop_AssemblesCollectedEventsAndUploads(t *testing.T) {
	t.Parallel()
	sess, trans := newAttachedSessionWithTransport()
	tr := NewTracer()
	if err := tr.Start(sess, ""); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	trans.push(`{"method":"Tracing.dataCollected","params":{"value":[{"name":"evt1"},{"name":"evt2"}]}}`)
	time.Sleep(20 * time.Millisecond)
	trans.push(`{"method":"Tracing.tracingComplete","params":{}}`)

	up := &fakeUploader{}
	result, err := tr.Stop(context.Background(), sess, up, "w1")
	if err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if result.SignedURL == "" {
		t.Error("expected a non-empty SignedURL")
	}
	if up.lastReq == nil || up.lastReq.ContentType != "application/json" {
		t.Errorf("lastReq = %+v, want application/json upload", up.lastReq)
	}
}

func TestTracer_Stop_TimesOutWithoutTracingComplete(t *testing.T) {
	t.Parallel()
	sess := newAttachedSession()
	tr := NewTracer()
	if err := tr.Start(sess, ""); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	up := &fakeUploader{}
	_, err := tr.Stop(ctx, sess, up, "w1")
	if err != nil {
		t.Fatalf("Stop() error = %v, want nil (ctx cancellation just ends the wait)", err)
	}
}
