package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RiccardoMarostica/Connect-4/internal/apperror"
	"github.com/RiccardoMarostica/Connect-4/internal/entity"
	"github.com/RiccardoMarostica/Connect-4/testing/suite"
)

func TestPlayerRepository_CreateOrUpdate(t *testing.T) {
	ctx, st := suite.New(t)

	playerRepo := NewPlayerRepository(st.Storage)

	// Given: a player with an existing record
	player := &entity.Player{
		ID:    "p1",
		Stats: entity.Stats{Games: 3, Wins: 1, Losses: 1, Draws: 1},
	}

	// When: CreateOrUpdate is called
	err := playerRepo.CreateOrUpdate(ctx, player)

	// Then: no error should be returned, and the player is stored
	require.NoError(t, err)
}

func TestPlayerRepository_GetByID(t *testing.T) {
	t.Run("GetByID_Success", func(t *testing.T) {
		ctx, st := suite.New(t)

		playerRepo := NewPlayerRepository(st.Storage)

		// Given: a stored player
		player := &entity.Player{
			ID:    "p1",
			Stats: entity.Stats{Games: 10, Wins: 6, Losses: 3, Draws: 1},
		}
		require.NoError(t, playerRepo.CreateOrUpdate(ctx, player))

		// When: GetByID is called with the existing ID
		retrieved, err := playerRepo.GetByID(ctx, player.ID)

		// Then: the stored stats come back intact
		require.NoError(t, err)
		assert.Equal(t, player.ID, retrieved.ID)
		assert.Equal(t, player.Stats, retrieved.Stats)
	})

	t.Run("GetByID_NotFound", func(t *testing.T) {
		ctx, st := suite.New(t)

		playerRepo := NewPlayerRepository(st.Storage)

		// When: GetByID is called with a non-existent ID
		retrieved, err := playerRepo.GetByID(ctx, "9999999")

		// Then: an ErrPlayerNotFound error should be returned
		require.Error(t, err)
		assert.Equal(t, apperror.ErrPlayerNotFound, err)
		assert.Nil(t, retrieved)
	})
}

func TestPlayerRepository_ApplyResult(t *testing.T) {
	t.Run("ApplyResult_ExistingPlayer", func(t *testing.T) {
		ctx, st := suite.New(t)

		playerRepo := NewPlayerRepository(st.Storage)

		// Given: a player with prior history
		player := &entity.Player{
			ID:    "p1",
			Stats: entity.Stats{Games: 4, Wins: 2, Losses: 2},
		}
		require.NoError(t, playerRepo.CreateOrUpdate(ctx, player))

		// When: a win is recorded
		err := playerRepo.ApplyResult(ctx, player.ID, ResultWin)

		// Then: games and wins both grow by one
		require.NoError(t, err)

		retrieved, err := playerRepo.GetByID(ctx, player.ID)
		require.NoError(t, err)
		assert.Equal(t, entity.Stats{Games: 5, Wins: 3, Losses: 2}, retrieved.Stats)
	})

	t.Run("ApplyResult_NewPlayer", func(t *testing.T) {
		ctx, st := suite.New(t)

		playerRepo := NewPlayerRepository(st.Storage)

		// When: a result lands for a player with no record yet
		err := playerRepo.ApplyResult(ctx, "fresh", ResultDraw)

		// Then: a sheet is created starting from zero
		require.NoError(t, err)

		retrieved, err := playerRepo.GetByID(ctx, "fresh")
		require.NoError(t, err)
		assert.Equal(t, entity.Stats{Games: 1, Draws: 1}, retrieved.Stats)
	})

	t.Run("ApplyResult_EachKindCounts", func(t *testing.T) {
		ctx, st := suite.New(t)

		playerRepo := NewPlayerRepository(st.Storage)

		// When: a win, a loss and a draw are recorded in sequence
		require.NoError(t, playerRepo.ApplyResult(ctx, "p1", ResultWin))
		require.NoError(t, playerRepo.ApplyResult(ctx, "p1", ResultLoss))
		require.NoError(t, playerRepo.ApplyResult(ctx, "p1", ResultDraw))

		// Then: each counter moved exactly once
		retrieved, err := playerRepo.GetByID(ctx, "p1")
		require.NoError(t, err)
		assert.Equal(t, entity.Stats{Games: 3, Wins: 1, Losses: 1, Draws: 1}, retrieved.Stats)
	})
}
