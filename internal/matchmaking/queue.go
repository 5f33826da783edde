package matchmaking

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"

	"github.com/google/uuid"

	"github.com/RiccardoMarostica/Connect-4/internal/entity"
	"github.com/RiccardoMarostica/Connect-4/internal/hub"
)

// maxStatsGap bounds the allowed skill distance between two paired
// players: both the games-played and the wins difference must stay
// strictly below it.
const maxStatsGap = 10

// Handle is the connection a queued player is reached on when a match is
// found for them.
type Handle interface {
	Send(action string, payload interface{}) error
}

type matchRepo interface {
	Create(ctx context.Context, match *entity.Match) error
}

type playerRepo interface {
	GetByID(ctx context.Context, id string) (*entity.Player, error)
}

// WaitingEntry is one player in the waiting pool. The stats snapshot is
// taken at enqueue time; the handle is replaced when the player
// reconnects while still queued.
type WaitingEntry struct {
	PlayerID string
	Stats    entity.StatsSnapshot
	Handle   Handle
}

// Queue pairs waiting players into new matches. All pool access goes
// through the queue's own mutex, so enqueue, cancel and pairing never
// interleave: an entry cannot be paired twice or after removal.
type Queue struct {
	logger *slog.Logger

	matches matchRepo
	players playerRepo
	events  *hub.Hub

	mu      sync.Mutex
	waiting []*WaitingEntry
}

func NewQueue(logger *slog.Logger, matches matchRepo, players playerRepo, events *hub.Hub) *Queue {
	return &Queue{
		logger:  logger,
		matches: matches,
		players: players,
		events:  events,
	}
}

// Enqueue adds the player to the waiting pool, or refreshes the stored
// connection handle if the player is already queued, then attempts one
// pairing cycle.
func (that *Queue) Enqueue(ctx context.Context, playerID string, handle Handle) error {
	log := that.logger.With("method", "Enqueue", "playerID", playerID)

	stats := entity.StatsSnapshot{}
	player, err := that.players.GetByID(ctx, playerID)
	if err != nil {
		log.Warn("no stored stats for player, queueing with a fresh sheet", "error", err)
	} else {
		stats = player.Snapshot()
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	for _, entry := range that.waiting {
		if entry.PlayerID == playerID {
			entry.Handle = handle
			log.Info("player already waiting, refreshed connection")
			that.tryPair(ctx)
			return nil
		}
	}

	that.waiting = append(that.waiting, &WaitingEntry{
		PlayerID: playerID,
		Stats:    stats,
		Handle:   handle,
	})
	log.Info("player joined waiting pool", "waiting", len(that.waiting))

	that.tryPair(ctx)

	return nil
}

// Dequeue removes the player from the waiting pool; idempotent.
func (that *Queue) Dequeue(playerID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	for i, entry := range that.waiting {
		if entry.PlayerID == playerID {
			that.waiting = append(that.waiting[:i], that.waiting[i+1:]...)
			that.logger.Info("player left waiting pool", "playerID", playerID)
			return
		}
	}
}

// Len reports how many players are currently waiting.
func (that *Queue) Len() int {
	that.mu.Lock()
	defer that.mu.Unlock()

	return len(that.waiting)
}

// tryPair runs one pairing cycle. Caller must hold the mutex. Two
// candidates are drawn uniformly at random without replacement; if the
// fairness predicate fails they go back into the pool and the cycle
// stops, a fresh attempt only happens when the pool changes again.
func (that *Queue) tryPair(ctx context.Context) {
	log := that.logger.With("method", "tryPair")

	for len(that.waiting) >= 2 {
		first := that.takeRandom()
		second := that.takeRandom()

		if !fairPairing(first.Stats, second.Stats) {
			that.waiting = append(that.waiting, first, second)
			log.Info("candidates outside fairness bounds, keeping both queued")
			return
		}

		match, err := that.createMatch(ctx, first, second)
		if err != nil {
			// the write failed after both entries were drawn; put them
			// back so neither player is silently lost
			that.waiting = append(that.waiting, first, second)
			log.Error("failed to create match, re-queued both players", "error", err)
			return
		}

		log.Info("paired players into match", "matchID", match.ID,
			"first", first.PlayerID, "second", second.PlayerID)

		that.notify(first, match.ID)
		that.notify(second, match.ID)
		that.events.Publish(hub.MatchCreatedChannel, match.ID)
	}
}

// fairPairing is the predicate bounding the skill distance of a pair.
func fairPairing(a, b entity.StatsSnapshot) bool {
	return absDiff(a.Games, b.Games) < maxStatsGap && absDiff(a.Wins, b.Wins) < maxStatsGap
}

func absDiff(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}

// takeRandom removes and returns a uniformly chosen entry. Caller must
// hold the mutex and guarantee the pool is not empty.
func (that *Queue) takeRandom() *WaitingEntry {
	i := rand.Intn(len(that.waiting)) //nolint:gosec // pairing does not need crypto randomness
	entry := that.waiting[i]
	that.waiting = append(that.waiting[:i], that.waiting[i+1:]...)

	return entry
}

func (that *Queue) createMatch(ctx context.Context, first, second *WaitingEntry) (*entity.Match, error) {
	match := NewRandomMatch(first.PlayerID, second.PlayerID)

	if err := that.matches.Create(ctx, match); err != nil {
		return nil, fmt.Errorf("failed to persist match: %w", err)
	}

	return match, nil
}

// NewRandomMatch builds a match between the two players with colours and
// first turn decided by a coin flip.
func NewRandomMatch(firstID, secondID string) *entity.Match {
	colours := [2]entity.Cell{entity.RedDisc, entity.YellowDisc}
	flip := rand.Intn(2) //nolint:gosec // a fair coin flip, not a secret

	first := entity.Participant{ID: firstID, Colour: colours[flip]}
	second := entity.Participant{ID: secondID, Colour: colours[1-flip]}

	starter := first.ID
	if flip == 1 {
		starter = second.ID
	}

	return entity.NewMatch(uuid.NewString(), first, second, starter)
}

func (that *Queue) notify(entry *WaitingEntry, matchID string) {
	if entry.Handle == nil {
		return
	}

	if err := entry.Handle.Send("match created", matchID); err != nil {
		that.logger.Warn("failed to notify paired player",
			"playerID", entry.PlayerID, "error", err)
	}
}
