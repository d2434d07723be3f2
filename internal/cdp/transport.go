package cdp

import (
	"context"
	"fmt"

	"github.com/gorilla/websocket"
)

// wsTransport adapts a *websocket.Conn to the Transport interface,
// forcing text-frame semantics per spec.md §4.2 ("Wire framing: text
// JSON. Binary frames are decoded as UTF-8 and parsed.").
type wsTransport struct {
	conn *websocket.Conn
}

// DialTransport dials wsURL and returns a Transport ready for
// Session.Attach. Grounded on the xk6-browser/chromedp-family pattern of
// dialing the CDP WebSocket endpoint directly with gorilla/websocket
// rather than a higher-level CDP driver.
func DialTransport(ctx context.Context, wsURL string) (Transport, error) {
	dialer := websocket.Dialer{}
	conn, _, err := dialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("cdp: dial %q: %w", wsURL, err)
	}
	return &wsTransport{conn: conn}, nil
}

func (t *wsTransport) ReadMessage() ([]byte, error) {
	msgType, data, err := t.conn.ReadMessage()
	if err != nil {
		return nil, err
	}
	// Binary frames are decoded as UTF-8 and parsed like any text frame;
	// unparsable frames are the caller's problem (ignored on decode error).
	_ = msgType
	return data, nil
}

func (t *wsTransport) WriteMessage(data []byte) error {
	return t.conn.WriteMessage(websocket.TextMessage, data)
}

func (t *wsTransport) Close() error {
	return t.conn.Close()
}
