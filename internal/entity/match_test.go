package entity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMatch() *Match {
	first := Participant{ID: "p1", Colour: RedDisc}
	second := Participant{ID: "p2", Colour: YellowDisc}

	return NewMatch("m1", first, second, "p1")
}

func TestNewMatch(t *testing.T) {
	// Given/When: a fresh match between two players
	match := newTestMatch()

	// Then: the board is empty, the match is in progress and p1 starts
	require.Len(t, match.Participants, 2)
	assert.True(t, match.InProgress())
	assert.Equal(t, "p1", match.Turn)
	assert.Equal(t, Winner(""), match.Winner)
	assert.True(t, match.Grid == NewBoard())
	assert.False(t, match.CreatedAt.IsZero())
}

func TestMatch_ParticipantLookups(t *testing.T) {
	match := newTestMatch()

	t.Run("ParticipantByID finds both players", func(t *testing.T) {
		participant, ok := match.ParticipantByID("p2")
		require.True(t, ok)
		assert.Equal(t, YellowDisc, participant.Colour)

		_, ok = match.ParticipantByID("stranger")
		assert.False(t, ok)
	})

	t.Run("ParticipantByColour resolves the winner identity", func(t *testing.T) {
		participant, ok := match.ParticipantByColour(RedDisc)
		require.True(t, ok)
		assert.Equal(t, "p1", participant.ID)
	})

	t.Run("Opponent returns the other participant", func(t *testing.T) {
		opponent, ok := match.Opponent("p1")
		require.True(t, ok)
		assert.Equal(t, "p2", opponent.ID)
	})

	t.Run("Opponent of a stranger does not resolve", func(t *testing.T) {
		_, ok := match.Opponent("intruder")
		assert.False(t, ok)
	})
}

func TestMatch_ChangeTurn(t *testing.T) {
	// Given: a match where p1 is on turn
	match := newTestMatch()

	// When: the turn changes twice
	match.ChangeTurn()
	firstHandOver := match.Turn
	match.ChangeTurn()

	// Then: the turn alternates between the two participants
	assert.Equal(t, "p2", firstHandOver)
	assert.Equal(t, "p1", match.Turn)
}

func TestMatch_Close(t *testing.T) {
	t.Run("Close ends the match and clears the turn", func(t *testing.T) {
		// Given: a match in progress
		match := newTestMatch()

		// When: the match is closed with a red win
		match.Close(Winner(RedDisc))

		// Then: the match is over, the winner set and the turn cleared
		assert.True(t, match.IsOver)
		assert.Equal(t, Winner(RedDisc), match.Winner)
		assert.Empty(t, match.Turn)
	})

	t.Run("Close never overwrites an earlier result", func(t *testing.T) {
		// Given: a match already closed with a red win
		match := newTestMatch()
		match.Close(Winner(RedDisc))

		// When: closing again with a different result
		match.Close(Winner(YellowDisc))

		// Then: the first result stands
		assert.Equal(t, Winner(RedDisc), match.Winner)
	})
}

func TestMatch_WireFormat(t *testing.T) {
	t.Run("Winner marshals to null while in progress", func(t *testing.T) {
		// Given: a match still in progress
		match := newTestMatch()

		// When: marshalling to JSON
		data, err := json.Marshal(match)
		require.NoError(t, err)

		// Then: the document carries the external field names
		assert.Contains(t, string(data), `"winner":null`)
		assert.Contains(t, string(data), `"_id":"m1"`)
		assert.Contains(t, string(data), `"isOver":false`)
	})

	t.Run("Winner round-trips through JSON", func(t *testing.T) {
		// Given: a finished match
		match := newTestMatch()
		match.Close(WinnerDraw)

		data, err := json.Marshal(match)
		require.NoError(t, err)

		// When: unmarshalling it back
		var decoded Match
		require.NoError(t, json.Unmarshal(data, &decoded))

		// Then: the winner survives the round trip
		assert.Equal(t, Winner(WinnerDraw), decoded.Winner)
		assert.True(t, decoded.IsOver)
	})
}
