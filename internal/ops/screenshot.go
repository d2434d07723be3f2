package ops

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/vforsh/argus/internal/argerr"
	"github.com/vforsh/argus/internal/cdp"
	"github.com/vforsh/argus/internal/storage"
)

// ScreenshotRequest is the body of POST /screenshot, per spec.md §4.8.
type ScreenshotRequest struct {
	Selector
	Format string `json:"format,omitempty"` // png|jpeg, default png
}

// Screenshot captures an image in req.Format (PNG when empty), optionally
// clipped to a selector's bounding box, and uploads it via Uploader, returning the signed URL.
func Screenshot(ctx context.Context, sess *cdp.Session, uploader storage.Uploader, watcherID string, req ScreenshotRequest) (*storage.UploadResult, error) {
	if sess == nil {
		return nil, argerr.New(argerr.KindCDPNotAttached, "cdp_not_attached")
	}

	params := map[string]any{"format": formatOrDefault(req.Format)}
	if req.CSS != "" {
		clip, err := clipForSelector(sess, req.Selector)
		if err != nil {
			return nil, err
		}
		params["clip"] = clip
	}

	raw, err := sess.SendAndWait("Page.captureScreenshot", params, cdp.SendOptions{TimeoutMs: 15000})
	if err != nil {
		return nil, argerr.Wrap(argerr.KindCDPRequestFailed, err, "Page.captureScreenshot")
	}
	var result struct {
		Data string `json:"data"`
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, argerr.Wrap(argerr.KindInternal, err, "decode screenshot result")
	}
	data, err := base64.StdEncoding.DecodeString(result.Data)
	if err != nil {
		return nil, argerr.Wrap(argerr.KindInternal, err, "decode screenshot base64")
	}

	objectName := fmt.Sprintf("%s/screenshot-%d.%s", watcherID, time.Now().UnixNano(), formatOrDefault(req.Format))
	up, err := uploader.Upload(ctx, &storage.UploadRequest{
		ObjectName:  objectName,
		Content:     bytes.NewReader(data),
		ContentType: "image/" + formatOrDefault(req.Format),
	})
	if err != nil {
		return nil, argerr.Wrap(argerr.KindInternal, err, "upload screenshot")
	}
	return up, nil
}

func formatOrDefault(f string) string {
	if f == "" {
		return "png"
	}
	return f
}

func clipForSelector(sess *cdp.Session, sel Selector) (map[string]any, error) {
	body := `var r = el.getBoundingClientRect();
  return {x:r.x,y:r.y,width:r.width,height:r.height,scale:1};`
	raw, err := evalRaw(sess, resolveExpr(sel, body))
	if err != nil {
		return nil, err
	}
	var clip map[string]any
	if err := json.Unmarshal(raw, &clip); err != nil {
		return nil, argerr.Wrap(argerr.KindInternal, err, "decode selector bounds")
	}
	return clip, nil
}
