package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shopping"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormWishlistRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewGormWishlistRepository(newTestDB(t))
	alice, bob := uuid.New(), uuid.New()
	shoe, sock, hat := uuid.New(), uuid.New(), uuid.New()

	_, err := repo.FindByUser(ctx, alice)
	require.ErrorIs(t, err, shared.ErrNotFound)

	aliceList := shopping.NewWishlist(alice)
	require.NoError(t, aliceList.Add(sock))
	require.NoError(t, aliceList.Add(shoe))
	require.NoError(t, aliceList.Add(hat))
	require.NoError(t, repo.Save(ctx, aliceList))

	bobList := shopping.NewWishlist(bob)
	require.NoError(t, bobList.Add(shoe))
	require.NoError(t, repo.Save(ctx, bobList))

	t.Run("keeps insertion order", func(t *testing.T) {
		stored, err := repo.FindByUser(ctx, alice)
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{sock, shoe, hat}, stored.ProductIDs)
	})

	t.Run("finds holders of a product", func(t *testing.T) {
		holders, err := repo.FindContaining(ctx, shoe)
		require.NoError(t, err)
		assert.Len(t, holders, 2)

		holders, err = repo.FindContaining(ctx, hat)
		require.NoError(t, err)
		require.Len(t, holders, 1)
		assert.Equal(t, alice, holders[0].UserID)
		assert.Len(t, holders[0].ProductIDs, 3)
	})

	t.Run("save replaces items", func(t *testing.T) {
		stored, err := repo.FindByUser(ctx, alice)
		require.NoError(t, err)
		require.True(t, stored.Remove(shoe))
		require.NoError(t, repo.Save(ctx, stored))

		reloaded, err := repo.FindByUser(ctx, alice)
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{sock, hat}, reloaded.ProductIDs)

		holders, err := repo.FindContaining(ctx, shoe)
		require.NoError(t, err)
		require.Len(t, holders, 1)
		assert.Equal(t, bob, holders[0].UserID)
	})

	t.Run("empty wishlist", func(t *testing.T) {
		stored, err := repo.FindByUser(ctx, bob)
		require.NoError(t, err)
		require.True(t, stored.Remove(shoe))
		require.NoError(t, repo.Save(ctx, stored))

		reloaded, err := repo.FindByUser(ctx, bob)
		require.NoError(t, err)
		assert.Empty(t, reloaded.ProductIDs)
	})
}
