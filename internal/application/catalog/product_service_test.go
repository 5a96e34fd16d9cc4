package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/pricing"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

type productFixture struct {
	products   *MockProductRepository
	categories *MockCategoryRepository
	brands     *MockBrandRepository
	events     *MockEventPublisher
	category   *catalog.Category
	brand      *catalog.Brand
	svc        *ProductService
}

func newProductFixture(t *testing.T) *productFixture {
	t.Helper()
	category, err := catalog.NewCategory("Running", "")
	require.NoError(t, err)
	brand, err := catalog.NewBrand("Nike")
	require.NoError(t, err)

	f := &productFixture{
		products:   new(MockProductRepository),
		categories: new(MockCategoryRepository),
		brands:     new(MockBrandRepository),
		events:     new(MockEventPublisher),
		category:   category,
		brand:      brand,
	}

	f.products.On("SKUExists", mock.Anything, mock.Anything, mock.Anything).Return(false, nil).Maybe()
	f.products.On("CountSKUPrefix", mock.Anything, mock.Anything, mock.Anything).Return(int64(0), nil).Maybe()
	f.categories.On("FindByID", mock.Anything, category.ID).Return(category, nil).Maybe()
	f.categories.On("FindByIDs", mock.Anything, mock.Anything).Return([]catalog.Category{*category}, nil).Maybe()
	f.brands.On("FindByID", mock.Anything, brand.ID).Return(brand, nil).Maybe()
	f.brands.On("FindByIDs", mock.Anything, mock.Anything).Return([]catalog.Brand{*brand}, nil).Maybe()
	f.events.On("Publish", mock.Anything, mock.Anything).Return(nil).Maybe()

	f.svc = NewProductService(f.products, f.categories, f.brands,
		catalog.NewSKUGenerator(f.products, 0), f.events, zap.NewNop())
	return f
}

func (f *productFixture) request(variants ...VariantInput) SaveProductRequest {
	return SaveProductRequest{
		Name:         "Pegasus Trail",
		Description:  "Trail runner",
		RegularPrice: dec("1000"),
		CategoryID:   f.category.ID,
		BrandID:      f.brand.ID,
		Variants:     variants,
	}
}

func (f *productFixture) storedProduct(t *testing.T) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct("Pegasus Trail", "", dec("1000"), f.category.ID, f.brand.ID)
	require.NoError(t, err)
	require.NoError(t, p.ReplaceVariants([]catalog.Variant{
		{Size: "8", Stock: 3, BasePrice: dec("900")},
	}))
	require.NoError(t, p.AssignBaseSKU("NK-PEGTRA"))
	require.NoError(t, p.AssignVariantSKU(0, "NK-PEGTRA-8"))
	p.ClearDomainEvents()
	p.Version = 4
	return p
}

func TestProductService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("assigns identifiers and derives total stock", func(t *testing.T) {
		f := newProductFixture(t)
		var saved *catalog.Product
		f.products.On("Create", ctx, mock.AnythingOfType("*catalog.Product")).
			Run(func(args mock.Arguments) { saved = args.Get(1).(*catalog.Product) }).
			Return(nil)

		resp, err := f.svc.Create(ctx, f.request(
			VariantInput{Size: "8", Stock: 3, BasePrice: dec("900")},
			VariantInput{Size: "9", Stock: 2, BasePrice: dec("950")},
		))
		require.NoError(t, err)

		require.NotNil(t, saved)
		assert.Equal(t, "NK-PEGTRA", saved.BaseSKU)
		assert.Equal(t, "NK-PEGTRA-8", saved.Variants[0].SKU)
		assert.Equal(t, "NK-PEGTRA-9", saved.Variants[1].SKU)
		assert.Equal(t, 5, saved.TotalStock)
		assert.Equal(t, "pegasus-trail", resp.Slug)
		assert.True(t, resp.Pricing.MinPrice.Equal(dec("900")))
		assert.True(t, resp.Pricing.MaxPrice.Equal(dec("950")))
		assert.Empty(t, saved.GetDomainEvents(), "events are published and cleared")
		f.events.AssertCalled(t, "Publish", ctx, mock.Anything)
	})

	t.Run("one bad variant rejects the whole write", func(t *testing.T) {
		f := newProductFixture(t)

		_, err := f.svc.Create(ctx, f.request(
			VariantInput{Size: "8", Stock: 3, BasePrice: dec("900")},
			VariantInput{Size: "9", Stock: 3, BasePrice: dec("1000")},
			VariantInput{Size: "10", Stock: 3, BasePrice: dec("950")},
		))
		require.Error(t, err)
		assert.Equal(t, "INVALID_VARIANT_PRICE", shared.ErrorCode(err))
		assert.Contains(t, err.Error(), "NK-PEGTRA-9")
		f.products.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		f.events.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	})

	t.Run("unknown category", func(t *testing.T) {
		f := newProductFixture(t)
		req := f.request()
		req.CategoryID = uuid.New()
		f.categories.On("FindByID", ctx, req.CategoryID).Return(nil, shared.ErrNotFound)

		_, err := f.svc.Create(ctx, req)
		assert.Equal(t, "INVALID_CATEGORY", shared.ErrorCode(err))
	})

	t.Run("duplicate sizes", func(t *testing.T) {
		f := newProductFixture(t)
		_, err := f.svc.Create(ctx, f.request(
			VariantInput{Size: "M", Stock: 1, BasePrice: dec("900")},
			VariantInput{Size: "m", Stock: 1, BasePrice: dec("900")},
		))
		assert.Equal(t, "DUPLICATE_SIZE", shared.ErrorCode(err))
	})

	t.Run("sku exhaustion is reported", func(t *testing.T) {
		f := newProductFixture(t)
		f.products.ExpectedCalls = nil
		f.products.On("SKUExists", mock.Anything, mock.Anything, mock.Anything).Return(true, nil)
		f.products.On("CountSKUPrefix", mock.Anything, mock.Anything, mock.Anything).Return(int64(0), nil)

		_, err := f.svc.Create(ctx, f.request(VariantInput{Size: "8", Stock: 1, BasePrice: dec("900")}))
		assert.Equal(t, "SKU_GENERATION_FAILED", shared.ErrorCode(err))
		f.products.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestProductService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("keeps identifiers across rename and writes against loaded version", func(t *testing.T) {
		f := newProductFixture(t)
		stored := f.storedProduct(t)
		f.products.On("FindByID", ctx, stored.ID).Return(stored, nil)
		f.products.On("SaveWithLock", ctx, stored, 4).Return(nil)

		req := f.request(
			VariantInput{Size: "8", Stock: 1, BasePrice: dec("900")},
			VariantInput{Size: "9", Stock: 6, BasePrice: dec("900")},
		)
		req.Name = "Pegasus Ultra"

		resp, err := f.svc.Update(ctx, stored.ID, req)
		require.NoError(t, err)
		assert.Equal(t, "NK-PEGTRA", resp.BaseSKU)
		assert.Equal(t, "pegasus-ultra", resp.Slug)
		assert.Equal(t, "NK-PEGTRA-8", resp.Variants[0].SKU)
		assert.Equal(t, "NK-PEGTRA-9", resp.Variants[1].SKU)
		assert.Equal(t, 7, resp.TotalStock)
	})

	t.Run("version conflict", func(t *testing.T) {
		f := newProductFixture(t)
		stored := f.storedProduct(t)
		f.products.On("FindByID", ctx, stored.ID).Return(stored, nil)
		f.products.On("SaveWithLock", ctx, stored, 4).Return(shared.ErrConcurrencyConflict)

		_, err := f.svc.Update(ctx, stored.ID, f.request(VariantInput{Size: "8", Stock: 1, BasePrice: dec("900")}))
		assert.Equal(t, "CONCURRENCY_CONFLICT", shared.ErrorCode(err))
		f.events.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	})

	t.Run("unknown product", func(t *testing.T) {
		f := newProductFixture(t)
		id := uuid.New()
		f.products.On("FindByID", ctx, id).Return(nil, shared.ErrNotFound)

		_, err := f.svc.Update(ctx, id, f.request())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestProductService_Offers(t *testing.T) {
	ctx := context.Background()
	f := newProductFixture(t)
	stored := f.storedProduct(t)
	f.products.On("FindByID", ctx, stored.ID).Return(stored, nil)
	f.products.On("SaveWithLock", ctx, mock.Anything, mock.Anything).Return(nil)

	resp, err := f.svc.SetOffer(ctx, stored.ID, dec("20"))
	require.NoError(t, err)
	require.Len(t, resp.Variants, 1)
	assert.True(t, resp.Variants[0].SellPrice.Equal(dec("720")))
	assert.Equal(t, pricing.TierProduct, resp.Variants[0].OfferSource)

	stock := 0
	offer := dec("30")
	resp, err = f.svc.UpdateVariant(ctx, stored.ID, "8", UpdateVariantRequest{Stock: &stock, Offer: &offer})
	require.NoError(t, err)
	assert.Equal(t, 0, resp.TotalStock)
	assert.False(t, resp.Variants[0].InStock)
	assert.True(t, resp.Variants[0].SellPrice.Equal(dec("630")))
	assert.Equal(t, pricing.TierVariant, resp.Variants[0].OfferSource)

	_, err = f.svc.SetOffer(ctx, stored.ID, dec("120"))
	assert.Equal(t, "INVALID_OFFER", shared.ErrorCode(err))
}

func TestProductService_Storefront(t *testing.T) {
	ctx := context.Background()

	t.Run("unlisted product is not found", func(t *testing.T) {
		f := newProductFixture(t)
		stored := f.storedProduct(t)
		stored.IsActive = false
		f.products.On("FindByID", ctx, stored.ID).Return(stored, nil)

		_, err := f.svc.GetListed(ctx, stored.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)

		admin, err := f.svc.GetByID(ctx, stored.ID)
		require.NoError(t, err)
		assert.False(t, admin.Available)
	})

	t.Run("list skips products whose brand is unavailable", func(t *testing.T) {
		f := newProductFixture(t)
		visible := f.storedProduct(t)

		hiddenBrand, err := catalog.NewBrand("Puma")
		require.NoError(t, err)
		require.NoError(t, hiddenBrand.Deactivate())
		hidden, err := catalog.NewProduct("Suede", "", dec("500"), f.category.ID, hiddenBrand.ID)
		require.NoError(t, err)

		f.brands.ExpectedCalls = nil
		f.brands.On("FindByIDs", mock.Anything, mock.Anything).Return([]catalog.Brand{*f.brand, *hiddenBrand}, nil)

		listedOnly := mock.MatchedBy(func(filter shared.Filter) bool {
			return filter.Filters[catalog.FilterListedOnly] == true
		})
		f.products.On("FindAll", ctx, listedOnly).Return([]catalog.Product{*visible, *hidden}, nil)
		f.products.On("Count", ctx, listedOnly).Return(int64(2), nil)

		page, err := f.svc.ListListed(ctx, ProductListFilter{})
		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		assert.Equal(t, visible.ID, page.Items[0].ID)
		assert.True(t, page.Items[0].Pricing.AveragePrice.Equal(dec("900")))
	})
}

func TestProductService_Lifecycle(t *testing.T) {
	ctx := context.Background()
	f := newProductFixture(t)
	stored := f.storedProduct(t)
	f.products.On("FindByID", ctx, stored.ID).Return(stored, nil)
	f.products.On("SaveWithLock", ctx, mock.Anything, mock.Anything).Return(nil)

	resp, err := f.svc.Unlist(ctx, stored.ID)
	require.NoError(t, err)
	assert.False(t, resp.IsListed)

	_, err = f.svc.Unlist(ctx, stored.ID)
	assert.Equal(t, "ALREADY_UNLISTED", shared.ErrorCode(err))

	require.NoError(t, f.svc.Delete(ctx, stored.ID))
	_, err = f.svc.List(ctx, stored.ID)
	assert.Equal(t, "CANNOT_LIST", shared.ErrorCode(err))

	resp, err = f.svc.Restore(ctx, stored.ID)
	require.NoError(t, err)
	assert.False(t, resp.IsDeleted)
}
