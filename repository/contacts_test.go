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

func newContact(userID, hash string, primary bool, created time.Time) *model.Contact {
	return &model.Contact{
		ID:           uuid.NewString(),
		UserID:       userID,
		Name:         "Contact " + hash,
		Relationship: model.RelationshipFamily,
		PhoneNumber:  "cipher-" + hash,
		PhoneHash:    hash,
		IsPrimary:    primary,
		IsActive:     true,
		CreatedAt:    created,
		UpdatedAt:    created,
	}
}

func TestContactRepo(t *testing.T) {
	db := newTestDB(t)
	repo := GetContactRepo(db)
	ctx := context.Background()
	now := time.Now()

	primary := newContact("u1", "h1", true, now.Add(-time.Hour))
	second := newContact("u1", "h2", false, now)
	require.NoError(t, repo.Create(ctx, primary))
	require.NoError(t, repo.Create(ctx, second))

	t.Run("primary listed first", func(t *testing.T) {
		list, err := repo.ListActive(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, primary.ID, list[0].ID)
	})

	t.Run("duplicate phone among active contacts", func(t *testing.T) {
		err := repo.Create(ctx, newContact("u1", "h1", false, now))
		assert.True(t, apperrors.Is(err, apperrors.KindConflict))

		exists, err := repo.PhoneHashExists(ctx, "u1", "h1", "")
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = repo.PhoneHashExists(ctx, "u1", "h1", primary.ID)
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("update", func(t *testing.T) {
		name := "Mum"
		c, err := repo.Update(ctx, "u1", second.ID, model.ContactUpdate{Name: &name})
		require.NoError(t, err)
		assert.Equal(t, "Mum", c.Name)

		_, err = repo.Update(ctx, "u2", second.ID, model.ContactUpdate{Name: &name})
		assert.True(t, apperrors.Is(err, apperrors.KindNotFound))
	})

	t.Run("soft delete frees the phone", func(t *testing.T) {
		require.NoError(t, repo.SoftDelete(ctx, "u1", primary.ID))

		n, err := repo.CountActive(ctx, "u1")
		require.NoError(t, err)
		assert.EqualValues(t, 1, n)

		require.NoError(t, repo.Create(ctx, newContact("u1", "h1", false, now)))

		err = repo.SoftDelete(ctx, "u1", primary.ID)
		assert.True(t, apperrors.Is(err, apperrors.KindNotFound))
	})

	t.Run("delete all", func(t *testing.T) {
		n, err := repo.SoftDeleteAll(ctx, "u1")
		require.NoError(t, err)
		assert.EqualValues(t, 2, n)
	})
}
