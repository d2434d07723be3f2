package ops

import (
	"sync"

	"github.com/vforsh/argus/internal/cdp"
)

// ThrottleState is the desired CPU/network/cache throttling configuration,
// per spec.md §4.8 "GET/POST /throttle".
type ThrottleState struct {
	CPURate           float64 `json:"cpuRate,omitempty"`
	DownloadKbps      float64 `json:"downloadKbps,omitempty"`
	UploadKbps        float64 `json:"uploadKbps,omitempty"`
	LatencyMs         float64 `json:"latencyMs,omitempty"`
	CacheDisabled     bool    `json:"cacheDisabled,omitempty"`
	Offline           bool    `json:"offline,omitempty"`
}

// ThrottleController mirrors EmulationController's desired/applied
// discipline for CPU/network/cache throttling (spec.md §3).
type ThrottleController struct {
	mu      sync.Mutex
	desired ThrottleState
	applied bool
	lastErr error
}

func NewThrottleController() *ThrottleController {
	return &ThrottleController{}
}

func (c *ThrottleController) Set(sess *cdp.Session, state ThrottleState) error {
	c.mu.Lock()
	c.desired = state
	c.mu.Unlock()
	return c.Apply(sess)
}

func (c *ThrottleController) Get() (ThrottleState, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.desired, c.applied, c.lastErr
}

// Apply re-applies the desired throttle state to sess, called on every
// OnAttach hook.
func (c *ThrottleController) Apply(sess *cdp.Session) error {
	c.mu.Lock()
	state := c.desired
	c.mu.Unlock()

	if sess == nil {
		return nil
	}

	var err error
	if state.CPURate > 0 {
		_, err = sess.SendAndWait("Emulation.setCPUThrottlingRate", map[string]any{
			"rate": state.CPURate,
		}, cdp.SendOptions{})
	}
	if err == nil {
		downloadBps := state.DownloadKbps * 1000 / 8
		uploadBps := state.UploadKbps * 1000 / 8
		conditions := map[string]any{
			"offline":            state.Offline,
			"latency":            state.LatencyMs,
			"downloadThroughput": downloadBps,
			"uploadThroughput":   uploadBps,
		}
		_, err = sess.SendAndWait("Network.emulateNetworkConditions", conditions, cdp.SendOptions{})
	}
	if err == nil {
		_, err = sess.SendAndWait("Network.setCacheDisabled", map[string]any{
			"cacheDisabled": state.CacheDisabled,
		}, cdp.SendOptions{})
	}

	c.mu.Lock()
	c.applied = err == nil
	c.lastErr = err
	c.mu.Unlock()
	return err
}
