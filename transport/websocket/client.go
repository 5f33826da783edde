package websocket

import (
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"github.com/RiccardoMarostica/Connect-4/internal/hub"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBufferSize = 64
)

// Client is one connected socket. It is both the hub subscriber and the
// connection handle the matchmaking queue notifies on pairing.
type Client struct {
	logger *slog.Logger

	conn *websocket.Conn
	send chan outboundMessage

	// playerID is set once the client identifies itself by entering the
	// waiting pool; used to clean up the pool on disconnect.
	playerID string
}

func newClient(logger *slog.Logger, conn *websocket.Conn) *Client {
	return &Client{
		logger: logger,
		conn:   conn,
		send:   make(chan outboundMessage, sendBufferSize),
	}
}

// Send queues an outbound message for the client. Delivery is
// best-effort: a client that stopped draining its buffer misses it.
func (that *Client) Send(action string, payload interface{}) error {
	select {
	case that.send <- outboundMessage{Action: action, Payload: payload}:
		return nil
	default:
		that.logger.Warn("send buffer full, dropping message", "action", action)
		return nil
	}
}

// Deliver forwards a hub event to the client without blocking.
func (that *Client) Deliver(event hub.Event) bool {
	select {
	case that.send <- outboundMessage{Action: actionNotify, Payload: event}:
		return true
	default:
		return false
	}
}

// writePump drains the send channel onto the connection and keeps the
// connection alive with pings. One writer goroutine per connection.
func (that *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		that.conn.Close()
	}()

	for {
		select {
		case message, ok := <-that.send:
			_ = that.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = that.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := that.conn.WriteJSON(message); err != nil {
				that.logger.Error("failed to write message", "error", err)
				return
			}
		case <-ticker.C:
			_ = that.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := that.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
