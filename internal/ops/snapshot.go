package ops

import (
	"encoding/json"

	"github.com/vforsh/argus/internal/argerr"
	"github.com/vforsh/argus/internal/cdp"
)

// Snapshot captures the full accessibility tree via
// Accessibility.getFullAXTree, per spec.md §4.8 "POST /snapshot".
func Snapshot(sess *cdp.Session) (json.RawMessage, error) {
	if sess == nil {
		return nil, argerr.New(argerr.KindCDPNotAttached, "cdp_not_attached")
	}
	raw, err := sess.SendAndWait("Accessibility.getFullAXTree", map[string]any{}, cdp.SendOptions{TimeoutMs: 15000})
	if err != nil {
		return nil, argerr.Wrap(argerr.KindCDPRequestFailed, err, "Accessibility.getFullAXTree")
	}
	return raw, nil
}
