package ops

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/vforsh/argus/internal/argerr"
	"github.com/vforsh/argus/internal/cdp"
	"github.com/vforsh/argus/internal/storage"
)

// resultTransport replies to every request with a fixed raw "result" body,
// unlike scriptedTransport which nests its payload under result.value.
type resultTransport struct {
	inbox chan []byte
	raw   string
}

func newResultTransport(raw string) *resultTransport {
	return &resultTransport{inbox: make(chan []byte, 4), raw: raw}
}

func (t *resultTransport) ReadMessage() ([]byte, error) { return <-t.inbox, nil }

func (t *resultTransport) WriteMessage(data []byte) error {
	var req struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(data, &req); err != nil {
		return err
	}
	reply, _ := json.Marshal(map[string]any{"id": req.ID, "result": json.RawMessage(t.raw)})
	t.inbox <- reply
	return nil
}

func (t *resultTransport) Close() error { return nil }

func sessionWithResult(raw string) *cdp.Session {
	s := cdp.NewSession()
	s.Attach(newResultTransport(raw))
	return s
}

type fakeUploader struct {
	lastReq *storage.UploadRequest
}

func (u *fakeUploader) Upload(ctx context.Context, req *storage.UploadRequest) (*storage.UploadResult, error) {
	u.lastReq = req
	return &storage.UploadResult{ObjectName: req.ObjectName, SignedURL: "file:///tmp/" + req.ObjectName}, nil
}

func TestScreenshot_NotAttachedReturnsError(t *testing.T) {
	t.Parallel()
	_, err := Screenshot(context.Background(), nil, &fakeUploader{}, "w1", ScreenshotRequest{})
	if argerr.KindOf(err) != argerr.KindCDPNotAttached {
		t.Errorf("KindOf(err) = %q, want cdp_not_attached", argerr.KindOf(err))
	}
}

func TestScreenshot_UploadsDecodedPNG(t *testing.T) {
	t.Parallel()
	png := base64.StdEncoding.EncodeToString([]byte("fake-png-bytes"))
	sess := sessionWithResult(`{"data":"` + png + `"}`)
	up := &fakeUploader{}

	result, err := Screenshot(context.Background(), sess, up, "w1", ScreenshotRequest{})
	if err != nil {
		t.Fatalf("Screenshot() error = %v", err)
	}
	if result.SignedURL == "" {
		t.Error("expected a non-empty SignedURL")
	}
	if up.lastReq == nil {
		t.Fatal("expected Upload to be called")
	}
	if up.lastReq.ContentType != "image/png" {
		t.Errorf("ContentType = %q, want image/png", up.lastReq.ContentType)
	}
}

func TestScreenshot_DefaultsFormatToPNG(t *testing.T) {
	t.Parallel()
	png := base64.StdEncoding.EncodeToString([]byte("x"))
	sess := sessionWithResult(`{"data":"` + png + `"}`)
	up := &fakeUploader{}

	_, err := Screenshot(context.Background(), sess, up, "w1", ScreenshotRequest{Format: ""})
	if err != nil {
		t.Fatalf("Screenshot() error = %v", err)
	}
	if up.lastReq.ContentType != "image/png" {
		t.Errorf("ContentType = %q, want image/png", up.lastReq.ContentType)
	}
}
