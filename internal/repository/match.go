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

const (
	matchKeyPrefix = "match:"
	activeSetKey   = "matches:active"
)

// maxCloseRetries bounds how often a close re-reads after losing a WATCH
// race to an ordinary move.
const maxCloseRetries = 3

type MatchRepository interface {
	Create(ctx context.Context, match *entity.Match) error
	GetByID(ctx context.Context, id string) (*entity.Match, error)
	Update(ctx context.Context, match *entity.Match) error
	UpdateIfTurn(ctx context.Context, match *entity.Match, expectedTurn string) error
	CloseIfInProgress(ctx context.Context, id string, winner entity.Winner) (*entity.Match, error)
	GetActive(ctx context.Context) ([]*entity.Match, error)
}

type dbMatch struct {
	client *redis.Client
}

func NewMatchRepository(client *redis.Client) MatchRepository {
	return &dbMatch{
		client: client,
	}
}

func (that *dbMatch) Create(ctx context.Context, match *entity.Match) error {
	matchJSON, err := json.Marshal(match)
	if err != nil {
		return fmt.Errorf("could not marshal match: %w", err)
	}

	matchKey := matchKeyPrefix + match.ID

	_, err = that.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, matchKey, matchJSON, 0)
		if match.InProgress() {
			pipe.SAdd(ctx, activeSetKey, match.ID)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to create match: %w", err)
	}

	return nil
}

func (that *dbMatch) GetByID(ctx context.Context, id string) (*entity.Match, error) {
	matchKey := matchKeyPrefix + id

	response, err := that.client.Get(ctx, matchKey).Result()

	if errors.Is(err, redis.Nil) {
		return nil, apperror.ErrMatchNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get match by id: %w", err)
	}

	var existingMatch entity.Match
	if err = json.Unmarshal([]byte(response), &existingMatch); err != nil {
		return nil, fmt.Errorf("failed to unmarshal match: %w", err)
	}

	return &existingMatch, nil
}

func (that *dbMatch) Update(ctx context.Context, match *entity.Match) error {
	matchJSON, err := json.Marshal(match)
	if err != nil {
		return fmt.Errorf("could not marshal match: %w", err)
	}

	matchKey := matchKeyPrefix + match.ID

	_, err = that.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, matchKey, matchJSON, 0)
		if match.IsOver {
			pipe.SRem(ctx, activeSetKey, match.ID)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to update match: %w", err)
	}

	return nil
}

// UpdateIfTurn writes the match only while the persisted document still
// reports expectedTurn as the player on turn. Two near-simultaneous
// submissions can both read the same in-memory turn value; the WATCH
// makes the second write fail instead of landing a double move.
func (that *dbMatch) UpdateIfTurn(ctx context.Context, match *entity.Match, expectedTurn string) error {
	matchKey := matchKeyPrefix + match.ID

	matchJSON, err := json.Marshal(match)
	if err != nil {
		return fmt.Errorf("could not marshal match: %w", err)
	}

	err = that.client.Watch(ctx, func(tx *redis.Tx) error {
		response, err := tx.Get(ctx, matchKey).Result()
		if errors.Is(err, redis.Nil) {
			return apperror.ErrMatchNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to get match by id: %w", err)
		}

		var stored entity.Match
		if err = json.Unmarshal([]byte(response), &stored); err != nil {
			return fmt.Errorf("failed to unmarshal match: %w", err)
		}

		if stored.IsOver {
			return apperror.ErrMatchAlreadyOver
		}

		if stored.Turn != expectedTurn {
			return apperror.ErrNotYourTurn
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, matchKey, matchJSON, 0)
			if match.IsOver {
				pipe.SRem(ctx, activeSetKey, match.ID)
			}
			return nil
		})

		return err
	}, matchKey)

	if errors.Is(err, redis.TxFailedErr) {
		// the key changed between read and write, same as losing the turn
		return apperror.ErrNotYourTurn
	}

	if err != nil {
		return err
	}

	return nil
}

// CloseIfInProgress ends the match in favour of the given winner, but
// only while the stored document is still in progress. The state being
// closed is re-read under the same WATCH as the write, so a winning move
// that lands concurrently keeps its result; the late close is rejected
// with ErrMatchAlreadyOver instead of overwriting it.
func (that *dbMatch) CloseIfInProgress(ctx context.Context, id string, winner entity.Winner) (*entity.Match, error) {
	matchKey := matchKeyPrefix + id

	var closed *entity.Match

	for attempt := 0; attempt < maxCloseRetries; attempt++ {
		err := that.client.Watch(ctx, func(tx *redis.Tx) error {
			response, err := tx.Get(ctx, matchKey).Result()
			if errors.Is(err, redis.Nil) {
				return apperror.ErrMatchNotFound
			}
			if err != nil {
				return fmt.Errorf("failed to get match by id: %w", err)
			}

			var stored entity.Match
			if err = json.Unmarshal([]byte(response), &stored); err != nil {
				return fmt.Errorf("failed to unmarshal match: %w", err)
			}

			if stored.IsOver {
				return apperror.ErrMatchAlreadyOver
			}

			stored.Close(winner)

			matchJSON, err := json.Marshal(&stored)
			if err != nil {
				return fmt.Errorf("could not marshal match: %w", err)
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, matchKey, matchJSON, 0)
				pipe.SRem(ctx, activeSetKey, stored.ID)
				return nil
			})
			if err != nil {
				return err
			}

			closed = &stored

			return nil
		}, matchKey)

		if errors.Is(err, redis.TxFailedErr) {
			// an ordinary move slipped in between; re-read and try again,
			// the quit is still valid against the newer state
			continue
		}

		if err != nil {
			return nil, err
		}

		return closed, nil
	}

	return nil, fmt.Errorf("failed to close match after %d attempts: %w", maxCloseRetries, redis.TxFailedErr)
}

func (that *dbMatch) GetActive(ctx context.Context) ([]*entity.Match, error) {
	ids, err := that.client.SMembers(ctx, activeSetKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list active matches: %w", err)
	}

	matches := make([]*entity.Match, 0, len(ids))
	for _, id := range ids {
		match, err := that.GetByID(ctx, id)
		if errors.Is(err, apperror.ErrMatchNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to get active match: %w", err)
		}

		matches = append(matches, match)
	}

	return matches, nil
}
