// Package netcap aggregates CDP Network.* events into NetworkRequestSummary
// values, maintaining an in-flight table keyed by CDP requestId and
// redacting sensitive query parameters, per spec.md §4.7.
package netcap

import (
	"encoding/json"
	"sync"

	"github.com/vforsh/argus/internal/cdp"
	"github.com/vforsh/argus/internal/model"
)

type inflightEntry struct {
	method       string
	url          string
	resourceType string
	startTime    float64
	status       int
	encodedLen   int64
}

// Capture subscribes to Network.* events on a session and commits finished
// or failed requests to Sink. Safe for concurrent use; Detach must be
// called whenever the owning session detaches so no orphan entries survive
// into the next attachment.
type Capture struct {
	Sink func(model.NetworkRequestSummary)

	mu       sync.Mutex
	inflight map[string]*inflightEntry
}

func NewCapture(sink func(model.NetworkRequestSummary)) *Capture {
	return &Capture{Sink: sink, inflight: make(map[string]*inflightEntry)}
}

// Attach enables the Network domain and subscribes to its events, per
// spec.md §4.3 "Network.enable (on demand by network capture)".
func (c *Capture) Attach(sess *cdp.Session) cdp.Unsubscribe {
	_, _ = sess.SendAndWait("Network.enable", map[string]any{}, cdp.SendOptions{})

	u1 := sess.OnEvent("Network.requestWillBeSent", c.handleRequestWillBeSent)
	u2 := sess.OnEvent("Network.responseReceived", c.handleResponseReceived)
	u3 := sess.OnEvent("Network.loadingFinished", c.handleLoadingFinished)
	u4 := sess.OnEvent("Network.loadingFailed", c.handleLoadingFailed)
	return func() {
		u1()
		u2()
		u3()
		u4()
	}
}

// Detach clears the in-flight table; no partially-observed request is
// committed across a detach (spec.md §4.7).
func (c *Capture) Detach() {
	c.mu.Lock()
	c.inflight = make(map[string]*inflightEntry)
	c.mu.Unlock()
}

type requestWillBeSentParams struct {
	RequestID string `json:"requestId"`
	Request   struct {
		Method string `json:"method"`
		URL    string `json:"url"`
	} `json:"request"`
	Type      string  `json:"type"`
	Timestamp float64 `json:"timestamp"`
}

func (c *Capture) handleRequestWillBeSent(ev cdp.Event) {
	var p requestWillBeSentParams
	if err := json.Unmarshal(ev.Params, &p); err != nil {
		return
	}
	c.mu.Lock()
	c.inflight[p.RequestID] = &inflightEntry{
		method:       p.Request.Method,
		url:          p.Request.URL,
		resourceType: p.Type,
		startTime:    p.Timestamp,
	}
	c.mu.Unlock()
}

type responseReceivedParams struct {
	RequestID string `json:"requestId"`
	Response  struct {
		Status int `json:"status"`
	} `json:"response"`
}

func (c *Capture) handleResponseReceived(ev cdp.Event) {
	var p responseReceivedParams
	if err := json.Unmarshal(ev.Params, &p); err != nil {
		return
	}
	c.mu.Lock()
	if e, ok := c.inflight[p.RequestID]; ok {
		e.status = p.Response.Status
	}
	c.mu.Unlock()
}

type loadingFinishedParams struct {
	RequestID         string  `json:"requestId"`
	Timestamp         float64 `json:"timestamp"`
	EncodedDataLength float64 `json:"encodedDataLength"`
}

func (c *Capture) handleLoadingFinished(ev cdp.Event) {
	var p loadingFinishedParams
	if err := json.Unmarshal(ev.Params, &p); err != nil {
		return
	}
	c.mu.Lock()
	e, ok := c.inflight[p.RequestID]
	if ok {
		delete(c.inflight, p.RequestID)
	}
	c.mu.Unlock()
	if !ok {
		return
	}
	e.encodedLen = int64(p.EncodedDataLength)
	c.commit(e, p.Timestamp, "")
}

type loadingFailedParams struct {
	RequestID    string  `json:"requestId"`
	Timestamp    float64 `json:"timestamp"`
	ErrorText    string  `json:"errorText"`
}

func (c *Capture) handleLoadingFailed(ev cdp.Event) {
	var p loadingFailedParams
	if err := json.Unmarshal(ev.Params, &p); err != nil {
		return
	}
	c.mu.Lock()
	e, ok := c.inflight[p.RequestID]
	if ok {
		delete(c.inflight, p.RequestID)
	}
	c.mu.Unlock()
	if !ok {
		return
	}
	c.commit(e, p.Timestamp, p.ErrorText)
}

func (c *Capture) commit(e *inflightEntry, endTime float64, errorText string) {
	duration := (endTime - e.startTime) * 1000
	if duration < 0 {
		duration = 0
	}
	c.Sink(model.NetworkRequestSummary{
		Ts:                int64(e.startTime * 1000),
		Method:            e.method,
		URL:               RedactURL(e.url),
		ResourceType:      e.resourceType,
		Status:            e.status,
		EncodedDataLength: e.encodedLen,
		ErrorText:         errorText,
		DurationMs:        duration,
	})
}
