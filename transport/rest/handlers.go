package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/RiccardoMarostica/Connect-4/internal/apperror"
	"github.com/RiccardoMarostica/Connect-4/internal/entity"
)

type matchArbiter interface {
	Match(ctx context.Context, id string) (*entity.Match, error)
	ActiveMatches(ctx context.Context) ([]*entity.Match, error)
	SubmitBoard(ctx context.Context, matchID, playerID string, grid entity.Board) (*entity.Match, error)
	QuitMatch(ctx context.Context, matchID, playerID string) (*entity.Match, error)
	CreateFriendMatch(ctx context.Context, firstID, secondID string) (*entity.Match, error)
}

type handlers struct {
	logger  *slog.Logger
	arbiter matchArbiter
}

func newHandlers(logger *slog.Logger, arbiter matchArbiter) *handlers {
	return &handlers{
		logger:  logger,
		arbiter: arbiter,
	}
}

// moveRequest is the wire form of a move: the whole post-move grid plus
// the id of the player who made it. The server re-derives the actual
// move from the grid instead of trusting it. Turn is part of the wire
// payload but deliberately ignored: the server decides the next turn
// itself.
type moveRequest struct {
	Grid   entity.Board `json:"grid"`
	Turn   string       `json:"turn"`
	Player string       `json:"player"`
}

type errorResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

func (that *handlers) Ping(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("pong"))
}

// GetGame returns one match when the match query parameter is present,
// otherwise the list of matches still in progress.
func (that *handlers) GetGame(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "GetGame")

	matchID := r.URL.Query().Get("match")
	if matchID == "" {
		matches, err := that.arbiter.ActiveMatches(r.Context())
		if err != nil {
			log.Error("failed to list active matches", "error", err)
			that.respondError(w, err)
			return
		}

		that.respondJSON(w, http.StatusOK, matches)
		return
	}

	match, err := that.arbiter.Match(r.Context(), matchID)
	if err != nil {
		log.Error("failed to get match", "matchID", matchID, "error", err)
		that.respondError(w, err)
		return
	}

	that.respondJSON(w, http.StatusOK, match)
}

func (that *handlers) PostMove(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "PostMove")

	matchID := r.URL.Query().Get("match")
	if matchID == "" {
		that.respondJSON(w, http.StatusBadRequest, errorResponse{Error: true, Message: "match query parameter is required"})
		return
	}

	var request moveRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		that.respondJSON(w, http.StatusBadRequest, errorResponse{Error: true, Message: "invalid request body"})
		return
	}

	if request.Player == "" {
		that.respondJSON(w, http.StatusBadRequest, errorResponse{Error: true, Message: "player is required"})
		return
	}

	match, err := that.arbiter.SubmitBoard(r.Context(), matchID, request.Player, request.Grid)
	if err != nil {
		log.Error("failed to submit move", "matchID", matchID, "error", err)
		that.respondError(w, err)
		return
	}

	that.respondJSON(w, http.StatusOK, match)
}

func (that *handlers) QuitGame(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "QuitGame")

	matchID := r.URL.Query().Get("match")
	playerID := r.URL.Query().Get("user")
	if matchID == "" || playerID == "" {
		that.respondJSON(w, http.StatusBadRequest, errorResponse{Error: true, Message: "match and user query parameters are required"})
		return
	}

	match, err := that.arbiter.QuitMatch(r.Context(), matchID, playerID)
	if err != nil {
		log.Error("failed to quit match", "matchID", matchID, "error", err)
		that.respondError(w, err)
		return
	}

	that.respondJSON(w, http.StatusOK, match)
}

// CreateGame creates a direct match between two friends.
func (that *handlers) CreateGame(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "CreateGame")

	firstID := r.URL.Query().Get("user")
	secondID := r.URL.Query().Get("opponent")
	if firstID == "" || secondID == "" {
		that.respondJSON(w, http.StatusBadRequest, errorResponse{Error: true, Message: "user and opponent query parameters are required"})
		return
	}

	match, err := that.arbiter.CreateFriendMatch(r.Context(), firstID, secondID)
	if err != nil {
		log.Error("failed to create friend match", "error", err)
		that.respondError(w, err)
		return
	}

	that.respondJSON(w, http.StatusOK, match)
}

// respondError maps domain errors onto status codes: validation failures
// are the caller's fault, anything else is an infrastructure failure.
func (that *handlers) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperror.ErrMatchNotFound), errors.Is(err, apperror.ErrPlayerNotFound):
		that.respondJSON(w, http.StatusNotFound, errorResponse{Error: true, Message: err.Error()})
	case errors.Is(err, apperror.ErrNotYourTurn),
		errors.Is(err, apperror.ErrMatchAlreadyOver),
		errors.Is(err, apperror.ErrNotParticipant),
		errors.Is(err, apperror.ErrColumnFull),
		errors.Is(err, apperror.ErrInvalidColumn),
		errors.Is(err, apperror.ErrInvalidGrid):
		that.respondJSON(w, http.StatusBadRequest, errorResponse{Error: true, Message: err.Error()})
	default:
		that.respondJSON(w, http.StatusInternalServerError, errorResponse{Error: true, Message: "internal server error"})
	}
}

func (that *handlers) respondJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":true,"message":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}
