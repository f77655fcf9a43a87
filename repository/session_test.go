package repository

import (
	"context"
	"testing"
	"time"

	"safeher/apperrors"
	"safeher/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRepo(t *testing.T) {
	db := newTestDB(t)
	repo := GetSessionRepo(db)
	ctx := context.Background()

	now := time.Now().Truncate(time.Millisecond)
	expired := model.NewSession(uuid.NewString(), "u1", model.VehicleCab, 10, now.Add(-time.Hour))
	future := model.NewSession(uuid.NewString(), "u1", model.VehicleCar, 30, now)
	require.NoError(t, repo.Create(ctx, expired))
	require.NoError(t, repo.Create(ctx, future))

	t.Run("deadline queries split on cutoff", func(t *testing.T) {
		before, err := repo.FindActiveWithDeadlineBefore(ctx, now)
		require.NoError(t, err)
		require.Len(t, before, 1)
		assert.Equal(t, expired.ID, before[0].ID)

		after, err := repo.FindActiveWithDeadlineAfter(ctx, now)
		require.NoError(t, err)
		require.Len(t, after, 1)
		assert.Equal(t, future.ID, after[0].ID)
	})

	t.Run("conditional status update", func(t *testing.T) {
		end := time.Now()
		upd := model.StatusUpdate{Status: model.SessionCompleted, EndReason: model.EndUserStopped, ActualEndTime: &end}

		changed, err := repo.UpdateStatus(ctx, expired.ID, model.SessionActive, upd)
		require.NoError(t, err)
		assert.True(t, changed)

		changed, err = repo.UpdateStatus(ctx, expired.ID, model.SessionActive, upd)
		require.NoError(t, err)
		assert.False(t, changed)
	})

	t.Run("location history is capped", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			ok, err := repo.UpdateLocation(ctx, future.ID, model.Location{Latitude: float64(i), Longitude: 77, Timestamp: now})
			require.NoError(t, err)
			assert.True(t, ok)
		}
		s, err := repo.FindByID(ctx, future.ID)
		require.NoError(t, err)
		assert.Len(t, s.LocationHistory, 3)
		assert.Equal(t, 2.0, s.LastKnown.Latitude)

		ok, err := repo.UpdateLocation(ctx, expired.ID, model.Location{})
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("active by user", func(t *testing.T) {
		s, err := repo.FindActiveByUser(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, future.ID, s.ID)

		n, err := repo.CountActive(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 1, n)

		_, err = repo.FindActiveByUser(ctx, "u2")
		assert.True(t, apperrors.Is(err, apperrors.KindNotFound))
	})

	t.Run("list by user", func(t *testing.T) {
		list, total, err := repo.ListByUser(ctx, "u1", 1, 10)
		require.NoError(t, err)
		assert.EqualValues(t, 2, total)
		assert.Len(t, list, 2)
	})
}
