// Package cdp implements a CDP session that multiplexes commands and
// events over one WebSocket transport, per spec.md §4.2. It deliberately
// does not use a full CDP driver (chromedp): only a process-wide
// monotonic id, a pending-request map, and an event fan-out list.
package cdp

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vforsh/argus/internal/argerr"
)

const defaultSendTimeout = 10 * time.Second

type pendingReq struct {
	resultCh chan frame
}

type handlerEntry struct {
	id int64
	fn func(Event)
}

// Session multiplexes CDP command/response pairs and fan-outs events over
// a single Transport. Safe for concurrent use.
type Session struct {
	mu        sync.Mutex
	transport Transport
	pending   map[int64]*pendingReq
	handlers  map[string][]handlerEntry
	nextHID   int64
	nextMsgID int64
	readDone  chan struct{}
}

// NewSession returns an unattached Session.
func NewSession() *Session {
	return &Session{
		pending:  make(map[int64]*pendingReq),
		handlers: make(map[string][]handlerEntry),
	}
}

// Attach installs t as the session's transport, starts the read loop, and
// resets pending state (spec.md §4.2).
func (s *Session) Attach(t Transport) {
	s.mu.Lock()
	s.transport = t
	s.pending = make(map[int64]*pendingReq)
	s.readDone = make(chan struct{})
	done := s.readDone
	s.mu.Unlock()

	go s.readLoop(t, done)
}

// Detach rejects all pending requests with reason, unsets the transport,
// and closes the underlying connection. Subscribers registered via OnEvent
// are left intact (re-used across reattachment); only their backing
// transport is cleared.
func (s *Session) Detach(reason error) {
	if reason == nil {
		reason = argerr.New(argerr.KindTransport, "detached")
	}
	s.mu.Lock()
	t := s.transport
	s.transport = nil
	pending := s.pending
	s.pending = make(map[int64]*pendingReq)
	s.mu.Unlock()

	for _, p := range pending {
		select {
		case p.resultCh <- frame{Error: &wireError{Message: reason.Error()}}:
		default:
		}
		close(p.resultCh)
	}
	if t != nil {
		_ = t.Close()
	}
}

// SendOptions configures a single sendAndWait call.
type SendOptions struct {
	TimeoutMs int
}

// SendAndWait assigns a monotonic id, transmits {id, method, params}, and
// blocks until a reply with the same id arrives, the timeout elapses, or
// the connection closes (spec.md §4.2).
func (s *Session) SendAndWait(method string, params any, opts SendOptions) (json.RawMessage, error) {
	s.mu.Lock()
	t := s.transport
	if t == nil {
		s.mu.Unlock()
		return nil, argerr.New(argerr.KindCDPNotAttached, "cdp_not_attached")
	}
	id := atomic.AddInt64(&s.nextMsgID, 1)
	p := &pendingReq{resultCh: make(chan frame, 1)}
	s.pending[id] = p
	s.mu.Unlock()

	var raw json.RawMessage
	var err error
	if params != nil {
		raw, err = json.Marshal(params)
		if err != nil {
			s.dropPending(id)
			return nil, argerr.Wrap(argerr.KindValidation, err, "marshal params for %s", method)
		}
	}

	req := request{ID: id, Method: method, Params: raw}
	buf, err := json.Marshal(req)
	if err != nil {
		s.dropPending(id)
		return nil, argerr.Wrap(argerr.KindValidation, err, "marshal request for %s", method)
	}

	if err := t.WriteMessage(buf); err != nil {
		s.dropPending(id)
		return nil, argerr.Wrap(argerr.KindTransport, err, "write %s", method)
	}

	timeout := time.Duration(opts.TimeoutMs) * time.Millisecond
	if timeout <= 0 {
		timeout = defaultSendTimeout
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case f, ok := <-p.resultCh:
		if !ok {
			return nil, argerr.New(argerr.KindTransport, "connection closed")
		}
		if f.Error != nil {
			return nil, argerr.New(argerr.KindCDPRequestFailed, f.Error.Message)
		}
		return f.Result, nil
	case <-timer.C:
		s.dropPending(id)
		return nil, argerr.New(argerr.KindCDPTimeout, method+" timed out")
	}
}

func (s *Session) dropPending(id int64) {
	s.mu.Lock()
	delete(s.pending, id)
	s.mu.Unlock()
}

// Unsubscribe removes a previously registered event handler.
type Unsubscribe func()

// OnEvent registers fn to be called, in insertion order with every other
// handler for method, whenever an event with that method arrives. Handler
// panics are recovered so one bad subscriber cannot break dispatch
// (spec.md §4.2).
func (s *Session) OnEvent(method string, fn func(Event)) Unsubscribe {
	s.mu.Lock()
	hid := atomic.AddInt64(&s.nextHID, 1)
	s.handlers[method] = append(s.handlers[method], handlerEntry{id: hid, fn: fn})
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		list := s.handlers[method]
		for i, h := range list {
			if h.id == hid {
				s.handlers[method] = append(list[:i], list[i+1:]...)
				break
			}
		}
	}
}

func (s *Session) readLoop(t Transport, done chan struct{}) {
	defer close(done)
	for {
		data, err := t.ReadMessage()
		if err != nil {
			s.Detach(argerr.Wrap(argerr.KindTransport, err, "connection closed"))
			return
		}
		var f frame
		if err := json.Unmarshal(data, &f); err != nil {
			// Unparsable frames are ignored per spec.md §4.2.
			continue
		}
		s.dispatch(f)
	}
}

func (s *Session) dispatch(f frame) {
	if f.ID != 0 {
		s.mu.Lock()
		p := s.pending[f.ID]
		delete(s.pending, f.ID)
		s.mu.Unlock()
		if p != nil {
			p.resultCh <- f
			close(p.resultCh)
			return
		}
	}
	if f.Method != "" {
		s.mu.Lock()
		handlers := make([]handlerEntry, len(s.handlers[f.Method]))
		copy(handlers, s.handlers[f.Method])
		s.mu.Unlock()
		for _, h := range handlers {
			s.invokeSafely(h.fn, Event{Method: f.Method, Params: f.Params})
		}
	}
}

func (s *Session) invokeSafely(fn func(Event), ev Event) {
	defer func() {
		_ = recover()
	}()
	fn(ev)
}
