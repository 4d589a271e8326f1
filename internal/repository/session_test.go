package repository

import (
	"testing"
	"time"

	"github.com/rocketscienceinc/othello-session/internal/apperror"
	"github.com/rocketscienceinc/othello-session/internal/entity"
	"github.com/rocketscienceinc/othello-session/testing/suite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRecord(clientID string) entity.SessionRecord {
	board := entity.NewInitialBoard()

	return entity.SessionRecord{
		ClientID:    clientID,
		SessionID:   "0b6e8a8e-5f0c-4c43-8d0b-2f4f5d3c9a11",
		Started:     true,
		HumanPlayer: entity.SideBlack,
		Turn:        entity.SideBlack,
		Board:       board.Rows(),
		Options:     board.Options(),
		BlackScore:  board.BlackScore(),
		WhiteScore:  board.WhiteScore(),
		Steps:       []entity.Step{},
	}
}

func TestSessionRepository_Save(t *testing.T) {
	ctx, st := suite.New(t)

	sessionRepo := NewSessionRepository(st.Storage, time.Hour)

	// Given: a started session record
	record := newRecord("client-1")

	// When: Save is called
	err := sessionRepo.Save(ctx, record)

	// Then: no error is returned and the key expires
	require.NoError(t, err)
	ttl, err := st.Storage.TTL(ctx, "session:client-1").Result()
	require.NoError(t, err)
	assert.True(t, ttl > 0)
}

func TestSessionRepository_GetByID(t *testing.T) {
	t.Run("GetByID_Success", func(t *testing.T) {
		ctx, st := suite.New(t)

		sessionRepo := NewSessionRepository(st.Storage, 0)

		// Given: a saved record with one step
		record := newRecord("client-1")
		record.Steps = []entity.Step{{Player: entity.SideBlack, Action: entity.Coord{Row: 2, Col: 3}}}
		record.LastAction = &entity.Coord{Row: 2, Col: 3}
		require.NoError(t, sessionRepo.Save(ctx, record))

		// When: GetByID is called with the client id
		retrieved, err := sessionRepo.GetByID(ctx, record.ClientID)

		// Then: the retrieved record matches the saved one
		require.NoError(t, err)
		assert.Equal(t, record, retrieved)
	})

	t.Run("GetByID_NotFound", func(t *testing.T) {
		ctx, st := suite.New(t)

		sessionRepo := NewSessionRepository(st.Storage, 0)

		// When: GetByID is called with an unknown id
		retrieved, err := sessionRepo.GetByID(ctx, "9999999")

		// Then: ErrSessionNotFound is returned
		require.ErrorIs(t, err, apperror.ErrSessionNotFound)
		assert.Empty(t, retrieved.ClientID)
	})
}

func TestSessionRepository_DeleteByID(t *testing.T) {
	t.Run("DeleteByID_Success", func(t *testing.T) {
		ctx, st := suite.New(t)

		sessionRepo := NewSessionRepository(st.Storage, 0)

		// Given: a saved record
		record := newRecord("client-1")
		require.NoError(t, sessionRepo.Save(ctx, record))

		// When: DeleteByID is called
		err := sessionRepo.DeleteByID(ctx, record.ClientID)

		// Then: the record is gone
		require.NoError(t, err)
		_, err = sessionRepo.GetByID(ctx, record.ClientID)
		require.ErrorIs(t, err, apperror.ErrSessionNotFound)
	})

	t.Run("DeleteByID_NotFound", func(t *testing.T) {
		ctx, st := suite.New(t)

		sessionRepo := NewSessionRepository(st.Storage, 0)

		// When: DeleteByID is called with an unknown id
		err := sessionRepo.DeleteByID(ctx, "9999999")

		// Then: ErrSessionNotFound is returned
		require.ErrorIs(t, err, apperror.ErrSessionNotFound)
	})
}
