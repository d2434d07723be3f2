package cdpsrc

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/vforsh/argus/internal/cdp"
)

// Source exposes a live CDP session to the rest of the watcher, regardless
// of whether targets arrive via CDP HTTP discovery or an extension's
// native-messaging bridge (spec.md §4.3 — "the session interface is
// identical").
type Source interface {
	// Session returns the currently attached session, or nil if detached.
	Session() *cdp.Session
	// Target returns the currently attached target, if any.
	Target() (Target, bool)
	// OnAttach registers a hook fired, in registration order, every time a
	// new session attaches (initial attach and every reattachment).
	OnAttach(func(*cdp.Session, Target))
	// OnDetach registers a hook fired when the session detaches for any
	// reason (navigation away, target closed, WebSocket error).
	OnDetach(func(reason error))
	// OnPageNavigation registers a hook fired on Page.frameNavigated for
	// the top frame.
	OnPageNavigation(func(url, title string))
	// Start begins discovery/attachment/reconnection in the background.
	Start(ctx context.Context)
	// Close tears down the source and any attached session.
	Close()
}

// CDPSource implements Source over Chrome's /json/list + WebSocket
// debugging endpoint (spec.md §4.3 "CDP mode").
type CDPSource struct {
	Host     string
	Port     int
	Criteria Criteria
	Client   *http.Client

	mu             sync.Mutex
	session        *cdp.Session
	target         Target
	attached       bool
	onAttachHooks  []func(*cdp.Session, Target)
	onDetachHooks  []func(error)
	onNavHooks     []func(string, string)
	cancel         context.CancelFunc
}

// NewCDPSource returns an unstarted CDPSource.
func NewCDPSource(host string, port int, criteria Criteria) *CDPSource {
	client := &http.Client{Timeout: 5 * time.Second}
	return &CDPSource{Host: host, Port: port, Criteria: criteria, Client: client}
}

func (s *CDPSource) Session() *cdp.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.attached {
		return nil
	}
	return s.session
}

func (s *CDPSource) Target() (Target, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.target, s.attached
}

func (s *CDPSource) OnAttach(fn func(*cdp.Session, Target)) {
	s.mu.Lock()
	s.onAttachHooks = append(s.onAttachHooks, fn)
	s.mu.Unlock()
}

func (s *CDPSource) OnDetach(fn func(error)) {
	s.mu.Lock()
	s.onDetachHooks = append(s.onDetachHooks, fn)
	s.mu.Unlock()
}

func (s *CDPSource) OnPageNavigation(fn func(string, string)) {
	s.mu.Lock()
	s.onNavHooks = append(s.onNavHooks, fn)
	s.mu.Unlock()
}

// Start runs the discover → attach → (wait for detach) → reattach loop
// until ctx is cancelled, with exponential backoff between attempts
// (spec.md §4.3).
func (s *CDPSource) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()

	go s.loop(ctx)
}

func (s *CDPSource) Close() {
	s.mu.Lock()
	cancel := s.cancel
	sess := s.session
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	if sess != nil {
		sess.Detach(nil)
	}
}

func (s *CDPSource) loop(ctx context.Context) {
	attempt := 0
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		targets, err := ListTargetsRetry(ctx, s.Client, s.Host, s.Port, 5, 500*time.Millisecond)
		if err != nil {
			attempt++
			s.sleep(ctx, attempt)
			continue
		}

		target, ok := Select(s.Criteria, targets)
		if !ok {
			attempt++
			s.sleep(ctx, attempt)
			continue
		}

		sess := cdp.NewSession()
		transport, err := cdp.DialTransport(ctx, target.WebSocketDebuggerURL)
		if err != nil {
			attempt++
			s.sleep(ctx, attempt)
			continue
		}
		sess.Attach(transport)
		attempt = 0

		if err := runAttachSequence(sess); err != nil {
			sess.Detach(err)
			s.sleep(ctx, 1)
			continue
		}

		s.installNavigationHook(sess)

		s.mu.Lock()
		s.session = sess
		s.target = target
		s.attached = true
		hooks := append([]func(*cdp.Session, Target){}, s.onAttachHooks...)
		s.mu.Unlock()

		for _, h := range hooks {
			h(sess, target)
		}

		s.waitForDetach(ctx, sess)

		s.mu.Lock()
		s.attached = false
		detachHooks := append([]func(error){}, s.onDetachHooks...)
		s.mu.Unlock()
		for _, h := range detachHooks {
			h(nil)
		}
	}
}

// runAttachSequence runs Runtime.enable, Page.enable, Log.enable in order
// per spec.md §4.3. Network.enable is the network-capture controller's
// responsibility, applied on its own OnAttach hook.
func runAttachSequence(sess *cdp.Session) error {
	for _, method := range []string{"Runtime.enable", "Page.enable", "Log.enable"} {
		if _, err := sess.SendAndWait(method, nil, cdp.SendOptions{}); err != nil {
			return err
		}
	}
	return nil
}

type frameNavigatedParams struct {
	Frame struct {
		ParentID string `json:"parentId,omitempty"`
		URL      string `json:"url"`
	} `json:"frame"`
}

func (s *CDPSource) installNavigationHook(sess *cdp.Session) {
	sess.OnEvent("Page.frameNavigated", func(ev cdp.Event) {
		var p frameNavigatedParams
		if err := unmarshalParams(ev.Params, &p); err != nil {
			return
		}
		if p.Frame.ParentID != "" {
			return // only the top frame triggers rotation
		}
		s.mu.Lock()
		hooks := append([]func(string, string){}, s.onNavHooks...)
		s.mu.Unlock()
		for _, h := range hooks {
			h(p.Frame.URL, "")
		}
	})
}

func (s *CDPSource) waitForDetach(ctx context.Context, sess *cdp.Session) {
	done := make(chan struct{})
	unsub := sess.OnEvent("__detach__", func(cdp.Event) { close(done) })
	defer unsub()
	// There is no explicit detach event; poll the session's transport via a
	// trivial ping to detect closure, bounded by ctx.
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := sess.SendAndWait("Runtime.evaluate", map[string]any{"expression": "1", "returnByValue": true}, cdp.SendOptions{TimeoutMs: 1500}); err != nil {
				return
			}
		}
	}
}

func (s *CDPSource) sleep(ctx context.Context, attempt int) {
	delay := reconnectDelay(attempt)
	select {
	case <-ctx.Done():
	case <-time.After(delay):
	}
}
