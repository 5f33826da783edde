package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/RiccardoMarostica/Connect-4/internal/apperror"
	"github.com/RiccardoMarostica/Connect-4/internal/connectfour"
	"github.com/RiccardoMarostica/Connect-4/internal/entity"
	"github.com/RiccardoMarostica/Connect-4/internal/hub"
	"github.com/RiccardoMarostica/Connect-4/internal/matchmaking"
	"github.com/RiccardoMarostica/Connect-4/internal/repository"
)

type matchRepo interface {
	Create(ctx context.Context, match *entity.Match) error
	GetByID(ctx context.Context, id string) (*entity.Match, error)
	UpdateIfTurn(ctx context.Context, match *entity.Match, expectedTurn string) error
	CloseIfInProgress(ctx context.Context, id string, winner entity.Winner) (*entity.Match, error)
	GetActive(ctx context.Context) ([]*entity.Match, error)
}

type playerRepo interface {
	ApplyResult(ctx context.Context, playerID string, result repository.MatchResult) error
}

type publisher interface {
	Publish(channel string, payload interface{})
}

// Arbiter drives a match through its lifecycle: it validates move
// legality, delegates board mutation to the engine, persists the result
// and fans out the side effects (stats, notifications).
type Arbiter struct {
	logger *slog.Logger

	matches matchRepo
	players playerRepo
	events  publisher
}

func NewArbiter(logger *slog.Logger, matches matchRepo, players playerRepo, events publisher) *Arbiter {
	return &Arbiter{
		logger:  logger,
		matches: matches,
		players: players,
		events:  events,
	}
}

// Match fetches one match by id.
func (that *Arbiter) Match(ctx context.Context, id string) (*entity.Match, error) {
	match, err := that.matches.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get match: %w", err)
	}

	return match, nil
}

// ActiveMatches lists every match still in progress.
func (that *Arbiter) ActiveMatches(ctx context.Context) ([]*entity.Match, error) {
	matches, err := that.matches.GetActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get active matches: %w", err)
	}

	return matches, nil
}

// SubmitMove drops a disc for the player into the column and applies the
// outcome. The persisted write is conditional on the stored turn, so a
// move that raced another submission is rejected as out of turn.
func (that *Arbiter) SubmitMove(ctx context.Context, matchID, playerID string, column int) (*entity.Match, error) {
	match, err := that.matches.GetByID(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to get match: %w", err)
	}

	return that.applyMove(ctx, match, playerID, column)
}

// SubmitBoard accepts the full post-move grid the external contract
// sends, re-derives the single move from it and applies it through the
// same path as SubmitMove. The client's grid itself is never trusted.
func (that *Arbiter) SubmitBoard(ctx context.Context, matchID, playerID string, grid entity.Board) (*entity.Match, error) {
	match, err := that.matches.GetByID(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to get match: %w", err)
	}

	column, colour, err := connectfour.DiffMove(match.Grid, grid)
	if err != nil {
		return nil, err
	}

	participant, ok := match.ParticipantByID(playerID)
	if !ok {
		return nil, apperror.ErrNotParticipant
	}

	if participant.Colour != colour {
		return nil, apperror.ErrInvalidGrid
	}

	return that.applyMove(ctx, match, playerID, column)
}

func (that *Arbiter) applyMove(ctx context.Context, match *entity.Match, playerID string, column int) (*entity.Match, error) {
	log := that.logger.With("method", "applyMove", "matchID", match.ID, "playerID", playerID)

	if match.IsOver {
		return nil, apperror.ErrMatchAlreadyOver
	}

	participant, ok := match.ParticipantByID(playerID)
	if !ok {
		return nil, apperror.ErrNotParticipant
	}

	if match.Turn != playerID {
		return nil, apperror.ErrNotYourTurn
	}

	grid, _, err := connectfour.Drop(match.Grid, column, participant.Colour)
	if err != nil {
		return nil, err
	}

	match.Grid = grid

	switch outcome := connectfour.Evaluate(match.Grid); outcome {
	case "":
		match.ChangeTurn()
	default:
		match.Close(entity.Winner(outcome))
	}

	if err = that.matches.UpdateIfTurn(ctx, match, playerID); err != nil {
		return nil, fmt.Errorf("failed to persist move: %w", err)
	}

	if match.IsOver {
		that.applyFinishedStats(ctx, match)
		log.Info("match finished", "winner", match.Winner)
	}

	that.events.Publish(hub.MatchChannel(match.ID), match.ID)

	return match, nil
}

// QuitMatch ends the match on behalf of a leaving player; the remaining
// participant is declared winner. The close is conditional on the stored
// document still being in progress, so a quit can never rewrite a match
// that a winning move finished in the meantime.
func (that *Arbiter) QuitMatch(ctx context.Context, matchID, playerID string) (*entity.Match, error) {
	log := that.logger.With("method", "QuitMatch", "matchID", matchID, "playerID", playerID)

	match, err := that.matches.GetByID(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to get match: %w", err)
	}

	if match.IsOver {
		return nil, apperror.ErrMatchAlreadyOver
	}

	opponent, ok := match.Opponent(playerID)
	if !ok {
		return nil, apperror.ErrNotParticipant
	}

	closed, err := that.matches.CloseIfInProgress(ctx, matchID, entity.Winner(opponent.Colour))
	if err != nil {
		return nil, fmt.Errorf("failed to persist match: %w", err)
	}

	that.applyFinishedStats(ctx, closed)
	that.events.Publish(hub.MatchChannel(closed.ID), closed.ID)

	log.Info("player quit, opponent wins", "winner", closed.Winner)

	return closed, nil
}

// CreateFriendMatch builds a direct match between two players, outside
// the matchmaking queue, and invites both over their player channels.
func (that *Arbiter) CreateFriendMatch(ctx context.Context, firstID, secondID string) (*entity.Match, error) {
	match := matchmaking.NewRandomMatch(firstID, secondID)

	if err := that.matches.Create(ctx, match); err != nil {
		return nil, fmt.Errorf("failed to create match: %w", err)
	}

	that.events.Publish(hub.PlayerChannel(firstID), match.ID)
	that.events.Publish(hub.PlayerChannel(secondID), match.ID)

	that.logger.Info("created friend match", "matchID", match.ID,
		"first", firstID, "second", secondID)

	return match, nil
}

// applyFinishedStats schedules the score-sheet updates for a finished
// match. Failures here never invalidate the move that closed the match;
// they are reported as their own side-effect errors in the log.
func (that *Arbiter) applyFinishedStats(ctx context.Context, match *entity.Match) {
	log := that.logger.With("method", "applyFinishedStats", "matchID", match.ID)

	results := make(map[string]repository.MatchResult, len(match.Participants))

	if match.Winner == entity.WinnerDraw {
		for _, participant := range match.Participants {
			results[participant.ID] = repository.ResultDraw
		}
	} else {
		winner, ok := match.ParticipantByColour(entity.Cell(match.Winner))
		if !ok {
			log.Error("winner colour matches no participant", "winner", match.Winner)
			return
		}

		for _, participant := range match.Participants {
			if participant.ID == winner.ID {
				results[participant.ID] = repository.ResultWin
			} else {
				results[participant.ID] = repository.ResultLoss
			}
		}
	}

	for playerID, result := range results {
		if err := that.players.ApplyResult(ctx, playerID, result); err != nil {
			log.Error("failed to update player stats", "playerID", playerID, "error", err)
		}
	}
}
