package persistence

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type catalogFixture struct {
	products   *GormProductRepository
	categories *GormCategoryRepository
	brands     *GormBrandRepository
	category   *catalog.Category
	brand      *catalog.Brand
}

func newCatalogFixture(t *testing.T) *catalogFixture {
	t.Helper()
	db := newTestDB(t)
	f := &catalogFixture{
		products:   NewGormProductRepository(db),
		categories: NewGormCategoryRepository(db),
		brands:     NewGormBrandRepository(db),
	}

	var err error
	f.category, err = catalog.NewCategory("Running", "Road and trail")
	require.NoError(t, err)
	require.NoError(t, f.categories.Save(context.Background(), f.category))

	f.brand, err = catalog.NewBrand("Nike")
	require.NoError(t, err)
	require.NoError(t, f.brands.Save(context.Background(), f.brand))
	return f
}

func (f *catalogFixture) createProduct(t *testing.T, name, baseSKU string, sizes ...string) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(name, "", decimal.NewFromInt(100), f.category.ID, f.brand.ID)
	require.NoError(t, err)

	variants := make([]catalog.Variant, len(sizes))
	for i, size := range sizes {
		variants[i] = catalog.Variant{Size: size, Stock: 3, BasePrice: decimal.NewFromInt(100)}
	}
	require.NoError(t, p.ReplaceVariants(variants))
	if baseSKU != "" {
		require.NoError(t, p.AssignBaseSKU(baseSKU))
		for i, size := range sizes {
			require.NoError(t, p.AssignVariantSKU(i, baseSKU+"-"+size))
		}
	}
	require.NoError(t, f.products.Create(context.Background(), p))
	return p
}

func TestGormProductRepository_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	f := newCatalogFixture(t)
	p := f.createProduct(t, "Pegasus 41", "NIK-RUN-PEG", "S", "M")

	found, err := f.products.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Pegasus 41", found.Name)
	assert.Equal(t, "NIK-RUN-PEG", found.BaseSKU)
	require.Len(t, found.Variants, 2)
	assert.Equal(t, "NIK-RUN-PEG-M", found.Variants[1].SKU)
	assert.True(t, found.Variants[0].BasePrice.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, 6, found.TotalStock)
	assert.True(t, found.IsActive)

	_, err = f.products.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)

	byIDs, err := f.products.FindByIDs(ctx, []uuid.UUID{p.ID, uuid.New()})
	require.NoError(t, err)
	assert.Len(t, byIDs, 1)
}

func TestGormProductRepository_CreateDuplicateBaseSKU(t *testing.T) {
	f := newCatalogFixture(t)
	f.createProduct(t, "Pegasus", "NIK-RUN-PEG", "S")

	p, err := catalog.NewProduct("Pegasus Trail", "", decimal.NewFromInt(100), f.category.ID, f.brand.ID)
	require.NoError(t, err)
	require.NoError(t, p.AssignBaseSKU("NIK-RUN-PEG"))

	err = f.products.Create(context.Background(), p)
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)
}

func TestGormProductRepository_ProductsWithoutSKUCoexist(t *testing.T) {
	f := newCatalogFixture(t)
	f.createProduct(t, "Draft one", "")
	f.createProduct(t, "Draft two", "")

	count, err := f.products.Count(context.Background(), shared.Filter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestGormProductRepository_SaveWithLock(t *testing.T) {
	ctx := context.Background()
	f := newCatalogFixture(t)
	p := f.createProduct(t, "Pegasus", "NIK-RUN-PEG", "S")

	expected := p.GetVersion()
	require.NoError(t, p.UpdateVariantStock("S", 9))
	require.NoError(t, f.products.SaveWithLock(ctx, p, expected))

	stored, err := f.products.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 9, stored.Variants[0].Stock)
	assert.Equal(t, p.GetVersion(), stored.GetVersion())

	t.Run("stale version conflicts", func(t *testing.T) {
		stale, err := f.products.FindByID(ctx, p.ID)
		require.NoError(t, err)
		staleVersion := stale.GetVersion()

		require.NoError(t, p.UpdateVariantStock("S", 1))
		require.NoError(t, f.products.SaveWithLock(ctx, p, p.GetVersion()-1))

		require.NoError(t, stale.UpdateVariantStock("S", 4))
		err = f.products.SaveWithLock(ctx, stale, staleVersion)
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)

		current, err := f.products.FindByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, current.Variants[0].Stock)
	})
}

func TestGormProductRepository_SKUExists(t *testing.T) {
	ctx := context.Background()
	f := newCatalogFixture(t)
	p := f.createProduct(t, "Pegasus", "NIK-RUN-PEG", "S", "XL")

	tests := []struct {
		name      string
		sku       string
		excludeID uuid.UUID
		want      bool
	}{
		{"base sku", "NIK-RUN-PEG", uuid.Nil, true},
		{"variant sku", "NIK-RUN-PEG-XL", uuid.Nil, true},
		{"partial variant sku", "NIK-RUN-PEG-X", uuid.Nil, false},
		{"unknown", "ADI-RUN-ULT", uuid.Nil, false},
		{"owner excluded", "NIK-RUN-PEG", p.ID, false},
		{"wildcards are literal", "NIK-RUN-PEG-_", uuid.Nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exists, err := f.products.SKUExists(ctx, tt.sku, tt.excludeID)
			require.NoError(t, err)
			assert.Equal(t, tt.want, exists)
		})
	}
}

func TestGormProductRepository_CountSKUPrefix(t *testing.T) {
	ctx := context.Background()
	f := newCatalogFixture(t)
	f.createProduct(t, "Pegasus", "NIK-RUN-PEG", "S")
	f.createProduct(t, "Pegasus 2", "NIK-RUN-PEG-1", "S")
	f.createProduct(t, "Vaporfly", "NIK-RUN-VAP", "S")

	count, err := f.products.CountSKUPrefix(ctx, "NIK-RUN-PEG", uuid.Nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	count, err = f.products.CountSKUPrefix(ctx, "ADI", uuid.Nil)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestGormProductRepository_FindAll(t *testing.T) {
	ctx := context.Background()
	f := newCatalogFixture(t)
	listed := f.createProduct(t, "Pegasus", "", "S")
	unlisted := f.createProduct(t, "Vomero", "", "S")
	require.NoError(t, unlisted.Unlist())
	require.NoError(t, f.products.SaveWithLock(ctx, unlisted, unlisted.GetVersion()-1))

	otherCategory, err := catalog.NewCategory("Hidden", "")
	require.NoError(t, err)
	require.NoError(t, otherCategory.Deactivate())
	require.NoError(t, f.categories.Save(ctx, otherCategory))
	hidden, err := catalog.NewProduct("Invincible", "", decimal.NewFromInt(100), otherCategory.ID, f.brand.ID)
	require.NoError(t, err)
	require.NoError(t, f.products.Create(ctx, hidden))

	t.Run("listed only", func(t *testing.T) {
		filter := shared.Filter{Filters: map[string]any{catalog.FilterListedOnly: true}}
		products, err := f.products.FindAll(ctx, filter)
		require.NoError(t, err)
		require.Len(t, products, 1)
		assert.Equal(t, listed.ID, products[0].ID)

		count, err := f.products.Count(ctx, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("by category", func(t *testing.T) {
		products, err := f.products.FindAll(ctx, shared.Filter{Filters: map[string]any{catalog.FilterCategoryID: otherCategory.ID}})
		require.NoError(t, err)
		require.Len(t, products, 1)
		assert.Equal(t, hidden.ID, products[0].ID)
	})

	t.Run("search and paginate", func(t *testing.T) {
		products, err := f.products.FindAll(ctx, shared.Filter{Search: "e", Page: 1, PageSize: 2, OrderBy: "name", OrderDir: "asc"})
		require.NoError(t, err)
		require.Len(t, products, 2)
		assert.Equal(t, "Invincible", products[0].Name)
		assert.Equal(t, "Pegasus", products[1].Name)
	})

	t.Run("unknown sort field falls back", func(t *testing.T) {
		products, err := f.products.FindAll(ctx, shared.Filter{OrderBy: "name; DROP TABLE products"})
		require.NoError(t, err)
		assert.Len(t, products, 3)
	})
}

func TestGormProductRepository_SaveWithLockSQL(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func(db *sql.DB) { _ = db.Close() }(mockDB)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: mockDB, DriverName: "postgres"}), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	repo := NewGormProductRepository(gormDB)

	p, err := catalog.NewProduct("Pegasus", "", decimal.NewFromInt(100), uuid.New(), uuid.New())
	require.NoError(t, err)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "products" SET`) + `.*WHERE.*id = \$\d+ AND version = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.SaveWithLock(context.Background(), p, 7)
	assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}
