package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/RiccardoMarostica/Connect-4/internal/apperror"
	"github.com/RiccardoMarostica/Connect-4/internal/entity"
)

const playerKeyPrefix = "player:"

// MatchResult describes how a finished match counts towards a player's
// stats.
type MatchResult string

const (
	ResultWin  MatchResult = "win"
	ResultLoss MatchResult = "lose"
	ResultDraw MatchResult = "draw"
)

type PlayerRepository interface {
	CreateOrUpdate(ctx context.Context, player *entity.Player) error
	GetByID(ctx context.Context, id string) (*entity.Player, error)
	ApplyResult(ctx context.Context, playerID string, result MatchResult) error
}

type dbPlayer struct {
	client *redis.Client
}

func NewPlayerRepository(client *redis.Client) PlayerRepository {
	return &dbPlayer{
		client: client,
	}
}

func (that *dbPlayer) CreateOrUpdate(ctx context.Context, player *entity.Player) error {
	playerJSON, err := json.Marshal(player)
	if err != nil {
		return fmt.Errorf("failed to marshal player: %w", err)
	}

	playerKey := playerKeyPrefix + player.ID
	if err = that.client.Set(ctx, playerKey, playerJSON, 0).Err(); err != nil {
		return fmt.Errorf("failed to set player: %w", err)
	}

	return nil
}

func (that *dbPlayer) GetByID(ctx context.Context, id string) (*entity.Player, error) {
	playerKey := playerKeyPrefix + id

	response, err := that.client.Get(ctx, playerKey).Result()

	if errors.Is(err, redis.Nil) {
		return nil, apperror.ErrPlayerNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get player by id: %w", err)
	}

	var existingPlayer entity.Player
	if err = json.Unmarshal([]byte(response), &existingPlayer); err != nil {
		return nil, fmt.Errorf("failed to unmarshal player: %w", err)
	}

	return &existingPlayer, nil
}

// ApplyResult increments the games counter plus the counter matching the
// result, inside a WATCH so two finishing matches cannot clobber each
// other's increments.
func (that *dbPlayer) ApplyResult(ctx context.Context, playerID string, result MatchResult) error {
	playerKey := playerKeyPrefix + playerID

	err := that.client.Watch(ctx, func(tx *redis.Tx) error {
		player := &entity.Player{ID: playerID}

		response, err := tx.Get(ctx, playerKey).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return fmt.Errorf("failed to get player by id: %w", err)
		}

		if err == nil {
			if err = json.Unmarshal([]byte(response), player); err != nil {
				return fmt.Errorf("failed to unmarshal player: %w", err)
			}
		}

		player.Stats.Games++
		switch result {
		case ResultWin:
			player.Stats.Wins++
		case ResultLoss:
			player.Stats.Losses++
		case ResultDraw:
			player.Stats.Draws++
		}

		playerJSON, err := json.Marshal(player)
		if err != nil {
			return fmt.Errorf("failed to marshal player: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, playerKey, playerJSON, 0)
			return nil
		})

		return err
	}, playerKey)
	if err != nil {
		return fmt.Errorf("failed to apply match result: %w", err)
	}

	return nil
}
