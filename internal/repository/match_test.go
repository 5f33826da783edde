package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RiccardoMarostica/Connect-4/internal/apperror"
	"github.com/RiccardoMarostica/Connect-4/internal/entity"
	"github.com/RiccardoMarostica/Connect-4/testing/suite"
)

func newStoredMatch(id string) *entity.Match {
	return entity.NewMatch(id,
		entity.Participant{ID: "p1", Colour: entity.RedDisc},
		entity.Participant{ID: "p2", Colour: entity.YellowDisc},
		"p1",
	)
}

func TestMatchRepository_Create(t *testing.T) {
	t.Run("Create_InProgress", func(t *testing.T) {
		ctx, st := suite.New(t)

		matchRepo := NewMatchRepository(st.Storage)

		// Given: a fresh match between two players
		match := newStoredMatch("m1")

		// When: Create is called
		err := matchRepo.Create(ctx, match)

		// Then: the match is stored and listed as active
		require.NoError(t, err)

		active, err := matchRepo.GetActive(ctx)
		require.NoError(t, err)
		require.Len(t, active, 1)
		assert.Equal(t, "m1", active[0].ID)
	})

	t.Run("Create_AlreadyOver", func(t *testing.T) {
		ctx, st := suite.New(t)

		matchRepo := NewMatchRepository(st.Storage)

		// Given: a match document that is already finished
		match := newStoredMatch("m1")
		match.Close(entity.WinnerDraw)

		// When: Create is called
		err := matchRepo.Create(ctx, match)

		// Then: the match is stored but never enters the active set
		require.NoError(t, err)

		retrieved, err := matchRepo.GetByID(ctx, match.ID)
		require.NoError(t, err)
		assert.True(t, retrieved.IsOver)

		active, err := matchRepo.GetActive(ctx)
		require.NoError(t, err)
		assert.Empty(t, active)
	})
}

func TestMatchRepository_GetByID(t *testing.T) {
	t.Run("GetByID_Success", func(t *testing.T) {
		ctx, st := suite.New(t)

		matchRepo := NewMatchRepository(st.Storage)

		// Given: a stored match
		match := newStoredMatch("m1")
		require.NoError(t, matchRepo.Create(ctx, match))

		// When: GetByID is called with the existing ID
		retrieved, err := matchRepo.GetByID(ctx, match.ID)

		// Then: the round-tripped match keeps its participants and turn
		require.NoError(t, err)
		assert.Equal(t, match.ID, retrieved.ID)
		assert.Equal(t, match.Participants, retrieved.Participants)
		assert.Equal(t, match.Turn, retrieved.Turn)
		assert.Equal(t, match.Grid, retrieved.Grid)
		assert.False(t, retrieved.IsOver)
	})

	t.Run("GetByID_NotFound", func(t *testing.T) {
		ctx, st := suite.New(t)

		matchRepo := NewMatchRepository(st.Storage)

		// When: GetByID is called with a non-existent ID
		retrieved, err := matchRepo.GetByID(ctx, "9999999")

		// Then: an ErrMatchNotFound error should be returned
		require.Error(t, err)
		assert.Equal(t, apperror.ErrMatchNotFound, err)
		assert.Nil(t, retrieved)
	})
}

func TestMatchRepository_Update(t *testing.T) {
	t.Run("Update_KeepsActiveUntilOver", func(t *testing.T) {
		ctx, st := suite.New(t)

		matchRepo := NewMatchRepository(st.Storage)

		// Given: a stored match after one move
		match := newStoredMatch("m1")
		require.NoError(t, matchRepo.Create(ctx, match))

		match.Grid[entity.BoardRows-1][3] = entity.RedDisc
		match.ChangeTurn()

		// When: Update persists the move
		err := matchRepo.Update(ctx, match)

		// Then: the new state is readable and the match stays active
		require.NoError(t, err)

		retrieved, err := matchRepo.GetByID(ctx, match.ID)
		require.NoError(t, err)
		assert.Equal(t, "p2", retrieved.Turn)
		assert.Equal(t, entity.RedDisc, retrieved.Grid[entity.BoardRows-1][3])

		active, err := matchRepo.GetActive(ctx)
		require.NoError(t, err)
		assert.Len(t, active, 1)
	})

	t.Run("Update_FinishedMatchLeavesActiveSet", func(t *testing.T) {
		ctx, st := suite.New(t)

		matchRepo := NewMatchRepository(st.Storage)

		// Given: a stored match that just finished
		match := newStoredMatch("m1")
		require.NoError(t, matchRepo.Create(ctx, match))

		match.Close(entity.Winner(entity.RedDisc))

		// When: Update persists the final state
		require.NoError(t, matchRepo.Update(ctx, match))

		// Then: the match is still readable but no longer active
		retrieved, err := matchRepo.GetByID(ctx, match.ID)
		require.NoError(t, err)
		assert.True(t, retrieved.IsOver)
		assert.Equal(t, entity.Winner(entity.RedDisc), retrieved.Winner)

		active, err := matchRepo.GetActive(ctx)
		require.NoError(t, err)
		assert.Empty(t, active)
	})
}

func TestMatchRepository_UpdateIfTurn(t *testing.T) {
	t.Run("UpdateIfTurn_Success", func(t *testing.T) {
		ctx, st := suite.New(t)

		matchRepo := NewMatchRepository(st.Storage)

		// Given: a stored match with p1 on turn
		match := newStoredMatch("m1")
		require.NoError(t, matchRepo.Create(ctx, match))

		match.Grid[entity.BoardRows-1][0] = entity.RedDisc
		match.ChangeTurn()

		// When: the write is guarded on p1 still holding the turn
		err := matchRepo.UpdateIfTurn(ctx, match, "p1")

		// Then: the write lands
		require.NoError(t, err)

		retrieved, err := matchRepo.GetByID(ctx, match.ID)
		require.NoError(t, err)
		assert.Equal(t, "p2", retrieved.Turn)
	})

	t.Run("UpdateIfTurn_StaleTurn", func(t *testing.T) {
		ctx, st := suite.New(t)

		matchRepo := NewMatchRepository(st.Storage)

		// Given: a match where p1's move already landed
		match := newStoredMatch("m1")
		require.NoError(t, matchRepo.Create(ctx, match))

		first := *match
		first.Grid[entity.BoardRows-1][0] = entity.RedDisc
		first.ChangeTurn()
		require.NoError(t, matchRepo.UpdateIfTurn(ctx, &first, "p1"))

		// When: a second submission built on the stale state arrives
		second := *match
		second.Grid[entity.BoardRows-1][1] = entity.RedDisc
		second.ChangeTurn()
		err := matchRepo.UpdateIfTurn(ctx, &second, "p1")

		// Then: the double move is rejected and the first state survives
		require.Error(t, err)
		assert.Equal(t, apperror.ErrNotYourTurn, err)

		retrieved, err := matchRepo.GetByID(ctx, match.ID)
		require.NoError(t, err)
		assert.Equal(t, entity.RedDisc, retrieved.Grid[entity.BoardRows-1][0])
		assert.Equal(t, entity.EmptyCell, retrieved.Grid[entity.BoardRows-1][1])
	})

	t.Run("UpdateIfTurn_MatchAlreadyOver", func(t *testing.T) {
		ctx, st := suite.New(t)

		matchRepo := NewMatchRepository(st.Storage)

		// Given: a stored match that is already finished
		match := newStoredMatch("m1")
		match.Close(entity.WinnerDraw)
		require.NoError(t, matchRepo.Create(ctx, match))

		// When: a late move tries to write
		stale := newStoredMatch("m1")
		err := matchRepo.UpdateIfTurn(ctx, stale, "p1")

		// Then: an ErrMatchAlreadyOver error should be returned
		require.Error(t, err)
		assert.Equal(t, apperror.ErrMatchAlreadyOver, err)
	})

	t.Run("UpdateIfTurn_NotFound", func(t *testing.T) {
		ctx, st := suite.New(t)

		matchRepo := NewMatchRepository(st.Storage)

		// When: guarding a write on a match that was never stored
		err := matchRepo.UpdateIfTurn(ctx, newStoredMatch("ghost"), "p1")

		// Then: an ErrMatchNotFound error should be returned
		require.Error(t, err)
		assert.Equal(t, apperror.ErrMatchNotFound, err)
	})
}

func TestMatchRepository_CloseIfInProgress(t *testing.T) {
	t.Run("CloseIfInProgress_Success", func(t *testing.T) {
		ctx, st := suite.New(t)

		matchRepo := NewMatchRepository(st.Storage)

		// Given: a running match a player concedes
		match := newStoredMatch("m1")
		require.NoError(t, matchRepo.Create(ctx, match))

		// When: the match is closed for yellow
		closed, err := matchRepo.CloseIfInProgress(ctx, match.ID, entity.Winner(entity.YellowDisc))

		// Then: the stored document is finished and out of the active set
		require.NoError(t, err)
		assert.True(t, closed.IsOver)
		assert.Equal(t, entity.Winner(entity.YellowDisc), closed.Winner)
		assert.Empty(t, closed.Turn)

		retrieved, err := matchRepo.GetByID(ctx, match.ID)
		require.NoError(t, err)
		assert.True(t, retrieved.IsOver)
		assert.Equal(t, entity.Winner(entity.YellowDisc), retrieved.Winner)

		active, err := matchRepo.GetActive(ctx)
		require.NoError(t, err)
		assert.Empty(t, active)
	})

	t.Run("CloseIfInProgress_AlreadyOver", func(t *testing.T) {
		ctx, st := suite.New(t)

		matchRepo := NewMatchRepository(st.Storage)

		// Given: a match that a winning move already finished for yellow
		match := newStoredMatch("m1")
		require.NoError(t, matchRepo.Create(ctx, match))

		match.Close(entity.Winner(entity.YellowDisc))
		require.NoError(t, matchRepo.Update(ctx, match))

		// When: a late concede tries to close it for red
		closed, err := matchRepo.CloseIfInProgress(ctx, match.ID, entity.Winner(entity.RedDisc))

		// Then: the close is rejected and the stored winner keeps yellow
		require.Error(t, err)
		assert.Equal(t, apperror.ErrMatchAlreadyOver, err)
		assert.Nil(t, closed)

		retrieved, err := matchRepo.GetByID(ctx, match.ID)
		require.NoError(t, err)
		assert.Equal(t, entity.Winner(entity.YellowDisc), retrieved.Winner)
	})

	t.Run("CloseIfInProgress_NotFound", func(t *testing.T) {
		ctx, st := suite.New(t)

		matchRepo := NewMatchRepository(st.Storage)

		// When: closing a match that was never stored
		_, err := matchRepo.CloseIfInProgress(ctx, "ghost", entity.Winner(entity.RedDisc))

		// Then: an ErrMatchNotFound error should be returned
		require.Error(t, err)
		assert.Equal(t, apperror.ErrMatchNotFound, err)
	})
}

func TestMatchRepository_GetActive(t *testing.T) {
	ctx, st := suite.New(t)

	matchRepo := NewMatchRepository(st.Storage)

	// Given: two stored matches, one of which finishes
	first := newStoredMatch("m1")
	second := newStoredMatch("m2")
	require.NoError(t, matchRepo.Create(ctx, first))
	require.NoError(t, matchRepo.Create(ctx, second))

	second.Close(entity.Winner(entity.YellowDisc))
	require.NoError(t, matchRepo.Update(ctx, second))

	// When: the active list is fetched
	active, err := matchRepo.GetActive(ctx)

	// Then: only the running match is reported
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "m1", active[0].ID)
}
