//go:build integration

package persistence

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shopping"
	"github.com/storefront/backend/internal/infrastructure/migration"
	"github.com/storefront/backend/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap/zaptest"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newPostgresDB starts a postgres container and applies the embedded
// migrations
func newPostgresDB(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("storefront_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	m, err := migration.New(sqlDB, migrations.FS, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NoError(t, m.Up())

	version, dirty, err := m.Version()
	require.NoError(t, err)
	assert.False(t, dirty)
	assert.Equal(t, uint(2), version)
	return db
}

func TestPostgres_Catalog(t *testing.T) {
	ctx := context.Background()
	db := newPostgresDB(t)
	products := NewGormProductRepository(db)
	categories := NewGormCategoryRepository(db)
	brands := NewGormBrandRepository(db)

	category, err := catalog.NewCategory("Running", "")
	require.NoError(t, err)
	require.NoError(t, categories.Save(ctx, category))

	t.Run("category names are unique ignoring case", func(t *testing.T) {
		dup, err := catalog.NewCategory("RUNNING", "")
		require.NoError(t, err)
		assert.ErrorIs(t, categories.Save(ctx, dup), shared.ErrAlreadyExists)
	})

	brand, err := catalog.NewBrand("Nike")
	require.NoError(t, err)
	require.NoError(t, brands.Save(ctx, brand))

	p, err := catalog.NewProduct("Pegasus 41", "", decimal.NewFromInt(120), category.ID, brand.ID)
	require.NoError(t, err)
	require.NoError(t, p.ReplaceVariants([]catalog.Variant{
		{Size: "9", Stock: 2, BasePrice: decimal.NewFromInt(120)},
		{Size: "10", Stock: 0, BasePrice: decimal.NewFromInt(125)},
	}))
	require.NoError(t, p.AssignBaseSKU("NK-PEG41"))
	require.NoError(t, p.AssignVariantSKU(0, "NK-PEG41-9"))
	require.NoError(t, p.AssignVariantSKU(1, "NK-PEG41-10"))
	p.RecomputeTotalStock()
	require.NoError(t, products.Create(ctx, p))

	t.Run("variant SKUs are searchable", func(t *testing.T) {
		exists, err := products.SKUExists(ctx, "NK-PEG41-10", uuid.Nil)
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = products.SKUExists(ctx, "NK-PEG41-10", p.ID)
		require.NoError(t, err)
		assert.False(t, exists)

		count, err := products.CountSKUPrefix(ctx, "NK-PEG41", uuid.Nil)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("base SKU is unique", func(t *testing.T) {
		other, err := catalog.NewProduct("Pegasus Trail", "", decimal.NewFromInt(130), category.ID, brand.ID)
		require.NoError(t, err)
		require.NoError(t, other.AssignBaseSKU("NK-PEG41"))
		assert.ErrorIs(t, products.Create(ctx, other), shared.ErrAlreadyExists)
	})

	t.Run("stale version is rejected", func(t *testing.T) {
		stored, err := products.FindByID(ctx, p.ID)
		require.NoError(t, err)
		require.Len(t, stored.Variants, 2)
		assert.Equal(t, 2, stored.TotalStock)

		version := stored.GetVersion()
		require.NoError(t, stored.SetOffer(decimal.NewFromInt(10)))
		require.NoError(t, products.SaveWithLock(ctx, stored, version))

		err = products.SaveWithLock(ctx, stored, version)
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	})
}

func TestPostgres_CartConcurrentWriters(t *testing.T) {
	ctx := context.Background()
	repo := NewGormCartRepository(newPostgresDB(t))
	userID := uuid.New()
	productID := uuid.New()

	cart := shopping.NewCart(userID)
	require.NoError(t, cart.Add(productID, "M", 1, 10, decimal.NewFromInt(50)))
	require.NoError(t, repo.Create(ctx, cart))

	// Every writer reads the same version; exactly one save wins.
	const writers = 5
	var wg sync.WaitGroup
	results := make([]error, writers)
	for i := 0; i < writers; i++ {
		loaded, err := repo.FindByUser(ctx, userID)
		require.NoError(t, err)
		wg.Add(1)
		go func(i int, c *shopping.Cart) {
			defer wg.Done()
			version := c.GetVersion()
			if err := c.SetQuantity(productID, "M", 2, 10, decimal.NewFromInt(50)); err != nil {
				results[i] = err
				return
			}
			results[i] = repo.SaveWithLock(ctx, c, version)
		}(i, loaded)
	}
	wg.Wait()

	wins := 0
	for _, err := range results {
		if err == nil {
			wins++
			continue
		}
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	}
	assert.Equal(t, 1, wins)
}

func TestPostgres_WishlistFindContaining(t *testing.T) {
	ctx := context.Background()
	repo := NewGormWishlistRepository(newPostgresDB(t))
	productID := uuid.New()

	for i := 0; i < 3; i++ {
		w := shopping.NewWishlist(uuid.New())
		if i < 2 {
			require.NoError(t, w.Add(productID))
		} else {
			require.NoError(t, w.Add(uuid.New()))
		}
		require.NoError(t, repo.Save(ctx, w))
	}

	found, err := repo.FindContaining(ctx, productID)
	require.NoError(t, err)
	assert.Len(t, found, 2)
}
