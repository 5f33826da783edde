package entity

import (
	"time"
)

const (
	// WinnerDraw is reported as the winner of a match that filled the
	// board without a four-in-a-row run.
	WinnerDraw = "DRAW"
)

// Participant binds a player to the colour assigned at match creation.
type Participant struct {
	ID     string `json:"_id"`
	Colour Cell   `json:"colour"`
}

// Match is the authoritative state of one game. Winner stays empty while
// the match is in progress and marshals to null on the wire.
type Match struct {
	ID           string        `json:"_id"`
	Participants []Participant `json:"participants"`
	Grid         Board         `json:"grid"`
	Turn         string        `json:"turn"`
	IsOver       bool          `json:"isOver"`
	Winner       Winner        `json:"winner"`
	CreatedAt    time.Time     `json:"createdAt"`
}

// Winner is "RED", "YELLOW" or "DRAW"; the zero value marshals to null.
type Winner string

func (that Winner) MarshalJSON() ([]byte, error) {
	if that == "" {
		return []byte("null"), nil
	}

	return []byte(`"` + string(that) + `"`), nil
}

func (that *Winner) UnmarshalJSON(data []byte) error {
	value := string(data)
	if value == "null" {
		*that = ""
		return nil
	}

	*that = Winner(value[1 : len(value)-1])

	return nil
}

// NewMatch creates a fresh match between two participants with an empty
// board. firstTurn must be one of the two participant ids.
func NewMatch(id string, first, second Participant, firstTurn string) *Match {
	return &Match{
		ID:           id,
		Participants: []Participant{first, second},
		Grid:         NewBoard(),
		Turn:         firstTurn,
		CreatedAt:    time.Now().UTC(),
	}
}

// ParticipantByID returns the participant entry for the given player.
func (that *Match) ParticipantByID(playerID string) (Participant, bool) {
	for _, participant := range that.Participants {
		if participant.ID == playerID {
			return participant, true
		}
	}

	return Participant{}, false
}

// ParticipantByColour resolves which participant plays the given colour.
func (that *Match) ParticipantByColour(colour Cell) (Participant, bool) {
	for _, participant := range that.Participants {
		if participant.Colour == colour {
			return participant, true
		}
	}

	return Participant{}, false
}

// Opponent returns the other participant of the match. It reports false
// when playerID is not a participant at all.
func (that *Match) Opponent(playerID string) (Participant, bool) {
	if _, ok := that.ParticipantByID(playerID); !ok {
		return Participant{}, false
	}

	for _, participant := range that.Participants {
		if participant.ID != playerID {
			return participant, true
		}
	}

	return Participant{}, false
}

// ChangeTurn hands the turn to the other participant.
func (that *Match) ChangeTurn() {
	if opponent, ok := that.Opponent(that.Turn); ok {
		that.Turn = opponent.ID
	}
}

// Close ends the match exactly once. The turn is cleared so no further
// move can claim ownership of it.
func (that *Match) Close(winner Winner) {
	if that.IsOver {
		return
	}

	that.IsOver = true
	that.Winner = winner
	that.Turn = ""
}

func (that *Match) InProgress() bool {
	return !that.IsOver
}
