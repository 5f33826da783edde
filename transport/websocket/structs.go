package websocket

import "encoding/json"

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type Payload struct {
	Player  string `json:"player,omitempty"`
	Channel string `json:"channel,omitempty"`
	Error   string `json:"error,omitempty"`
}

type outboundMessage struct {
	Action  string      `json:"action"`
	Payload interface{} `json:"payload,omitempty"`
}

const (
	actionWaitingStatus     = "waiting status"
	actionExitWaitingStatus = "exit waiting status"
	actionSubscribe         = "subscribe"
	actionUnsubscribe       = "unsubscribe"
	actionNotify            = "notify"
)
