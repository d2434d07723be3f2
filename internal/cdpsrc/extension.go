package cdpsrc

import (
	"context"
	"sync"

	"github.com/vforsh/argus/internal/cdp"
)

// ExtensionSource is the integration point for the browser-extension
// native-messaging bridge. Framing and transport for that bridge are an
// external collaborator (spec.md §1); this type only satisfies Source so
// the rest of the watcher (event pipeline, HTTP API) is identical in both
// modes, as spec.md §4.3 requires. A real deployment plugs a bridge
// implementation into Attach.
type ExtensionSource struct {
	mu       sync.Mutex
	session  *cdp.Session
	target   Target
	attached bool

	onAttachHooks []func(*cdp.Session, Target)
	onDetachHooks []func(error)
	onNavHooks    []func(string, string)
}

// NewExtensionSource returns an ExtensionSource with no session attached.
// Call Attach once the native-messaging bridge has handed off a session.
func NewExtensionSource() *ExtensionSource {
	return &ExtensionSource{}
}

// Attach installs sess as the active session for target, firing OnAttach
// hooks. Intended to be called by the (external) bridge adapter.
func (e *ExtensionSource) Attach(sess *cdp.Session, target Target) {
	e.mu.Lock()
	e.session = sess
	e.target = target
	e.attached = true
	hooks := append([]func(*cdp.Session, Target){}, e.onAttachHooks...)
	e.mu.Unlock()
	for _, h := range hooks {
		h(sess, target)
	}
}

// Detach clears the active session, firing OnDetach hooks.
func (e *ExtensionSource) Detach(reason error) {
	e.mu.Lock()
	e.attached = false
	hooks := append([]func(error){}, e.onDetachHooks...)
	e.mu.Unlock()
	for _, h := range hooks {
		h(reason)
	}
}

func (e *ExtensionSource) Session() *cdp.Session {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.attached {
		return nil
	}
	return e.session
}

func (e *ExtensionSource) Target() (Target, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.target, e.attached
}

func (e *ExtensionSource) OnAttach(fn func(*cdp.Session, Target)) {
	e.mu.Lock()
	e.onAttachHooks = append(e.onAttachHooks, fn)
	e.mu.Unlock()
}

func (e *ExtensionSource) OnDetach(fn func(error)) {
	e.mu.Lock()
	e.onDetachHooks = append(e.onDetachHooks, fn)
	e.mu.Unlock()
}

func (e *ExtensionSource) OnPageNavigation(fn func(string, string)) {
	e.mu.Lock()
	e.onNavHooks = append(e.onNavHooks, fn)
	e.mu.Unlock()
}

// Start is a no-op: the bridge (external) drives attachment via Attach.
func (e *ExtensionSource) Start(ctx context.Context) {}

// Close detaches any active session.
func (e *ExtensionSource) Close() {
	e.Detach(nil)
}

var _ Source = (*ExtensionSource)(nil)
var _ Source = (*CDPSource)(nil)
