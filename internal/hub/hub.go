package hub

import (
	"log/slog"
	"sync"
)

// Event is what subscribers receive: the channel it was published on and
// an optional payload (usually a match id, sometimes nothing at all --
// the client is expected to re-fetch authoritative state).
type Event struct {
	Channel string      `json:"channel"`
	Payload interface{} `json:"payload,omitempty"`
}

// Subscriber receives published events. Deliver must not block: a
// subscriber that cannot take the event right now returns false and
// misses it instead of stalling the publisher.
type Subscriber interface {
	Deliver(event Event) bool
}

// Hub fans match and queue events out to subscribed clients over named
// channels. Delivery is fire-and-forget: the hub is not the state store,
// a lost event is recovered by the client's next fetch.
type Hub struct {
	logger *slog.Logger

	mu       sync.RWMutex
	channels map[string]map[Subscriber]struct{}
}

func New(logger *slog.Logger) *Hub {
	return &Hub{
		logger:   logger,
		channels: make(map[string]map[Subscriber]struct{}),
	}
}

// MatchChannel is the per-match update channel.
func MatchChannel(matchID string) string {
	return "match_update_" + matchID
}

// PlayerChannel carries direct invites and friend events for one player.
func PlayerChannel(playerID string) string {
	return "user_" + playerID
}

// MatchCreatedChannel announces matchmaking completions.
const MatchCreatedChannel = "match_created"

// Subscribe registers the subscriber on a channel. Subscribing twice is
// a no-op.
func (that *Hub) Subscribe(channel string, sub Subscriber) {
	that.mu.Lock()
	defer that.mu.Unlock()

	subs, ok := that.channels[channel]
	if !ok {
		subs = make(map[Subscriber]struct{})
		that.channels[channel] = subs
	}

	subs[sub] = struct{}{}
}

// Unsubscribe removes the subscriber from a channel; idempotent.
func (that *Hub) Unsubscribe(channel string, sub Subscriber) {
	that.mu.Lock()
	defer that.mu.Unlock()

	subs, ok := that.channels[channel]
	if !ok {
		return
	}

	delete(subs, sub)
	if len(subs) == 0 {
		delete(that.channels, channel)
	}
}

// UnsubscribeAll drops the subscriber from every channel, used when a
// client disconnects.
func (that *Hub) UnsubscribeAll(sub Subscriber) {
	that.mu.Lock()
	defer that.mu.Unlock()

	for channel, subs := range that.channels {
		delete(subs, sub)
		if len(subs) == 0 {
			delete(that.channels, channel)
		}
	}
}

// Publish delivers the payload to every current subscriber of the
// channel. Subscribers whose buffers are full are skipped.
func (that *Hub) Publish(channel string, payload interface{}) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	event := Event{Channel: channel, Payload: payload}

	for sub := range that.channels[channel] {
		if !sub.Deliver(event) {
			that.logger.Warn("dropped event for slow subscriber", "channel", channel)
		}
	}
}
