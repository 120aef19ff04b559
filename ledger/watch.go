package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// WatchChanges streams ledger change events to fn until ctx is done or the
// connection drops. It does not refresh anything by itself.
func (c *Client) WatchChanges(ctx context.Context, fn func(ChangeEvent)) error {
	u, err := url.Parse(c.endpoint("/ws/ledger", nil))
	if err != nil {
		return fmt.Errorf("failed to parse ledger url: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}

	hdr := http.Header{}
	if c.token != "" {
		hdr.Set("Authorization", "Bearer "+c.token)
	}
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, u.String(), hdr)
	if err != nil {
		if resp != nil {
			return responseError("watch", resp.StatusCode, nil)
		}
		return transportError("watch", err)
	}
	defer conn.Close()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	for {
		mt, p, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return transportError("watch", fmt.Errorf("failed to read message: %w", err))
		}
		if mt != websocket.TextMessage {
			continue
		}
		var ev ChangeEvent
		if err := json.Unmarshal(p, &ev); err != nil {
			c.log.WithFields(logrus.Fields{"module": "ledger", "op": "watch"}).Warn("dropping malformed change event")
			continue
		}
		fn(ev)
	}
}
