package cdp

import "encoding/json"

// request is the outbound CDP JSON-RPC-like frame of spec.md §4.2.
type request struct {
	ID     int64           `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
}

// wireError is the {message} shape CDP uses for command failures.
type wireError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// frame is the generic shape of any inbound text frame: either a command
// reply (ID set) or an event (Method set). Both may appear together only
// in malformed input: dispatch delivers such a frame as a reply when a
// request with that ID is pending, and as an event otherwise.
type frame struct {
	ID     int64           `json:"id,omitempty"`
	Method string          `json:"method,omitempty"`
	Params json.RawMessage `json:"params,omitempty"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  *wireError      `json:"error,omitempty"`
}

// Event is a dispatched CDP event: method name plus raw params, left as
// opaque JSON per spec.md §9 ("keep the rest as opaque JSON values").
type Event struct {
	Method string
	Params json.RawMessage
}

// Transport is the minimal framed-message duplex a Session runs over. The
// production implementation wraps *websocket.Conn (see transport.go); tests
// supply an in-memory fake.
type Transport interface {
	ReadMessage() (data []byte, err error)
	WriteMessage(data []byte) error
	Close() error
}
