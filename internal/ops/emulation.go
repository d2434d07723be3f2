package ops

import (
	"sync"

	"github.com/vforsh/argus/internal/cdp"
)

// EmulationState is the desired/applied shadow state of spec.md §3 for
// viewport/touch/user-agent overrides: a target description the
// supervisor re-applies on every attach.
type EmulationState struct {
	Width       int    `json:"width,omitempty"`
	Height      int    `json:"height,omitempty"`
	DeviceScale float64 `json:"deviceScaleFactor,omitempty"`
	Mobile      bool   `json:"mobile,omitempty"`
	Touch       bool   `json:"hasTouch,omitempty"`
	UserAgent   string `json:"userAgent,omitempty"`
}

// EmulationController owns the desired emulation state and reapplies it on
// every attach, tracking whether the last apply succeeded (spec.md §3
// "Emulation / throttle / file-log state").
type EmulationController struct {
	mu       sync.Mutex
	desired  EmulationState
	applied  bool
	lastErr  error
}

func NewEmulationController() *EmulationController {
	return &EmulationController{}
}

// Set updates the desired state and immediately tries to apply it if sess
// is attached.
func (c *EmulationController) Set(sess *cdp.Session, state EmulationState) error {
	c.mu.Lock()
	c.desired = state
	c.mu.Unlock()
	return c.Apply(sess)
}

// Get returns the desired state plus whether it is currently applied.
func (c *EmulationController) Get() (EmulationState, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.desired, c.applied, c.lastErr
}

// Apply re-applies the desired state to sess, called on every OnAttach
// hook per spec.md §3.
func (c *EmulationController) Apply(sess *cdp.Session) error {
	c.mu.Lock()
	state := c.desired
	c.mu.Unlock()

	if sess == nil {
		return nil
	}

	var err error
	if state.Width > 0 && state.Height > 0 {
		scale := state.DeviceScale
		if scale == 0 {
			scale = 1
		}
		_, err = sess.SendAndWait("Emulation.setDeviceMetricsOverride", map[string]any{
			"width":             state.Width,
			"height":            state.Height,
			"deviceScaleFactor": scale,
			"mobile":            state.Mobile,
		}, cdp.SendOptions{})
	}
	if err == nil && (state.Touch || state.Mobile) {
		_, err = sess.SendAndWait("Emulation.setTouchEmulationEnabled", map[string]any{
			"enabled": state.Touch,
		}, cdp.SendOptions{})
	}
	if err == nil && state.UserAgent != "" {
		_, err = sess.SendAndWait("Network.setUserAgentOverride", map[string]any{
			"userAgent": state.UserAgent,
		}, cdp.SendOptions{})
	}

	c.mu.Lock()
	c.applied = err == nil
	c.lastErr = err
	c.mu.Unlock()
	return err
}
