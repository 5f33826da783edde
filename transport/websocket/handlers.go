package websocket

import (
	"context"
	"encoding/json"
	"fmt"
)

func (that *Server) handleWaitingStatus(ctx context.Context, client *Client, msg *Message) error {
	log := that.logger.With("method", "handleWaitingStatus")

	var payload Payload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	if payload.Player == "" {
		log.Error("player is missing in payload")
		return client.Send(msg.Action, Payload{Error: "player is required"})
	}

	client.playerID = payload.Player

	if err := that.queue.Enqueue(ctx, payload.Player, client); err != nil {
		log.Error("failed to enqueue player", "playerID", payload.Player, "error", err)
		return client.Send(msg.Action, Payload{Error: "failed to join the waiting pool"})
	}

	return nil
}

func (that *Server) handleExitWaitingStatus(_ context.Context, client *Client, msg *Message) error {
	var payload Payload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	playerID := payload.Player
	if playerID == "" {
		playerID = client.playerID
	}

	that.queue.Dequeue(playerID)

	return nil
}

func (that *Server) handleSubscribe(_ context.Context, client *Client, msg *Message) error {
	var payload Payload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	if payload.Channel == "" {
		return client.Send(msg.Action, Payload{Error: "channel is required"})
	}

	that.events.Subscribe(payload.Channel, client)

	return nil
}

func (that *Server) handleUnsubscribe(_ context.Context, client *Client, msg *Message) error {
	var payload Payload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	if payload.Channel == "" {
		return client.Send(msg.Action, Payload{Error: "channel is required"})
	}

	that.events.Unsubscribe(payload.Channel, client)

	return nil
}
