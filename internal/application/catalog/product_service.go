package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// ProductService handles product and variant operations
type ProductService struct {
	productRepo  catalog.ProductRepository
	categoryRepo catalog.CategoryRepository
	brandRepo    catalog.BrandRepository
	lineages     *catalog.RepositoryLineageLoader
	skus         *catalog.SKUGenerator
	events       shared.EventPublisher
	logger       *zap.Logger
}

// NewProductService creates a new ProductService
func NewProductService(
	productRepo catalog.ProductRepository,
	categoryRepo catalog.CategoryRepository,
	brandRepo catalog.BrandRepository,
	skus *catalog.SKUGenerator,
	events shared.EventPublisher,
	logger *zap.Logger,
) *ProductService {
	return &ProductService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		brandRepo:    brandRepo,
		lineages:     catalog.NewRepositoryLineageLoader(productRepo, categoryRepo, brandRepo),
		skus:         skus,
		events:       events,
		logger:       logger,
	}
}

// Create creates a new product with its variants
func (s *ProductService) Create(ctx context.Context, req SaveProductRequest) (*ProductResponse, error) {
	return s.SaveProductVariants(ctx, nil, req)
}

// Update replaces the descriptive fields and the variant set of a product
func (s *ProductService) Update(ctx context.Context, id uuid.UUID, req SaveProductRequest) (*ProductResponse, error) {
	return s.SaveProductVariants(ctx, &id, req)
}

// SaveProductVariants writes a product and its variants as one document.
// Identifiers are assigned before the price check so that a rejected write
// can name the offending variant's SKU; nothing is persisted unless every
// step succeeds.
func (s *ProductService) SaveProductVariants(ctx context.Context, id *uuid.UUID, req SaveProductRequest) (_ *ProductResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "product", "save_variants")
	defer func() { telemetry.End(span, err) }()

	category, err := s.categoryRepo.FindByID(ctx, req.CategoryID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("INVALID_CATEGORY", "Category not found")
		}
		return nil, fmt.Errorf("load category: %w", err)
	}
	brand, err := s.brandRepo.FindByID(ctx, req.BrandID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("INVALID_BRAND", "Brand not found")
		}
		return nil, fmt.Errorf("load brand: %w", err)
	}

	var product *catalog.Product
	expectedVersion := 0
	if id == nil {
		product, err = catalog.NewProduct(req.Name, req.Description, req.RegularPrice, category.ID, brand.ID)
		if err != nil {
			return nil, err
		}
	} else {
		product, err = s.productRepo.FindByID(ctx, *id)
		if err != nil {
			return nil, err
		}
		expectedVersion = product.GetVersion()
		if err := product.Update(req.Name, req.Description, req.RegularPrice); err != nil {
			return nil, err
		}
		if err := product.MoveTo(category.ID, brand.ID); err != nil {
			return nil, err
		}
	}

	if err := product.ReplaceVariants(toVariants(req.Variants)); err != nil {
		return nil, err
	}

	if err := s.skus.AssignIdentifiers(ctx, product, brand.Name); err != nil {
		if shared.ErrorCode(err) == "" {
			s.logger.Error("SKU generation failed", zap.String("product_id", product.ID.String()), zap.Error(err))
		}
		return nil, err
	}

	if err := product.ValidateVariantPrices(); err != nil {
		s.logger.Debug("rejected product write",
			zap.String("product_id", product.ID.String()),
			zap.Error(err))
		return nil, err
	}

	product.RecomputeTotalStock()
	product.MarkVariantsChanged()

	if id == nil {
		err = s.productRepo.Create(ctx, product)
	} else {
		err = s.productRepo.SaveWithLock(ctx, product, expectedVersion)
	}
	if err != nil {
		if shared.ErrorCode(err) == "" {
			s.logger.Error("failed to save product", zap.String("product_id", product.ID.String()), zap.Error(err))
			return nil, fmt.Errorf("save product: %w", err)
		}
		return nil, err
	}

	s.publish(ctx, product)

	s.logger.Info("product saved",
		zap.String("product_id", product.ID.String()),
		zap.String("base_sku", product.BaseSKU),
		zap.Int("variants", len(product.Variants)),
		zap.Int("total_stock", product.TotalStock))

	resp := ToProductResponse(catalog.Lineage{Product: product, Category: category, Brand: brand})
	return &resp, nil
}

// GetByID returns a product in any state, for administration
func (s *ProductService) GetByID(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	lineage, err := s.lineages.LoadLineage(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToProductResponse(lineage)
	return &resp, nil
}

// GetListed returns a product only if its whole lineage is available
func (s *ProductService) GetListed(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	lineage, err := s.lineages.LoadLineage(ctx, id)
	if err != nil {
		return nil, err
	}
	if !lineage.Available() {
		return nil, shared.ErrNotFound
	}
	resp := ToProductResponse(lineage)
	return &resp, nil
}

// ListListed returns available products with live price summaries
func (s *ProductService) ListListed(ctx context.Context, filter ProductListFilter) (shared.Paginated[ProductListResponse], error) {
	domainFilter := shared.DefaultFilter()
	domainFilter.Search = filter.Search
	domainFilter.Filters[catalog.FilterListedOnly] = true
	for key, raw := range map[string]string{
		catalog.FilterCategoryID: filter.CategoryID,
		catalog.FilterBrandID:    filter.BrandID,
	} {
		if raw == "" {
			continue
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			return shared.Paginated[ProductListResponse]{}, shared.NewDomainError("INVALID_INPUT", "Invalid "+key)
		}
		domainFilter.Filters[key] = id
	}
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	if filter.OrderBy != "" {
		domainFilter.OrderBy = filter.OrderBy
		domainFilter.OrderDir = filter.OrderDir
	}

	products, err := s.productRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return shared.Paginated[ProductListResponse]{}, fmt.Errorf("list products: %w", err)
	}
	total, err := s.productRepo.Count(ctx, domainFilter)
	if err != nil {
		return shared.Paginated[ProductListResponse]{}, fmt.Errorf("count products: %w", err)
	}

	lineages, err := s.lineages.Join(ctx, products)
	if err != nil {
		return shared.Paginated[ProductListResponse]{}, err
	}

	items := make([]ProductListResponse, 0, len(products))
	for _, p := range products {
		l := lineages[p.ID]
		if !l.Available() {
			continue
		}
		items = append(items, ToProductListResponse(l))
	}

	return shared.NewPaginated(items, total, domainFilter.Page, domainFilter.PageSize), nil
}

// SetOffer sets the product-level offer
func (s *ProductService) SetOffer(ctx context.Context, id uuid.UUID, offer decimal.Decimal) (*ProductResponse, error) {
	return s.mutate(ctx, id, func(p *catalog.Product) error {
		return p.SetOffer(offer)
	})
}

// UpdateVariant changes the stock and/or the offer of one variant
func (s *ProductService) UpdateVariant(ctx context.Context, id uuid.UUID, size string, req UpdateVariantRequest) (*ProductResponse, error) {
	return s.mutate(ctx, id, func(p *catalog.Product) error {
		if req.Stock != nil {
			if err := p.UpdateVariantStock(size, *req.Stock); err != nil {
				return err
			}
		}
		if req.Offer != nil {
			if err := p.SetVariantOffer(size, *req.Offer); err != nil {
				return err
			}
		}
		return nil
	})
}

// List shows the product in the storefront
func (s *ProductService) List(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	return s.mutate(ctx, id, (*catalog.Product).List)
}

// Unlist hides the product from the storefront
func (s *ProductService) Unlist(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	return s.mutate(ctx, id, (*catalog.Product).Unlist)
}

// Delete soft-deletes the product
func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := s.mutate(ctx, id, (*catalog.Product).SoftDelete)
	return err
}

// Restore reverses a soft delete
func (s *ProductService) Restore(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	return s.mutate(ctx, id, (*catalog.Product).RestoreDeleted)
}

// mutate loads a product, applies change and writes it back conditional on
// the loaded version.
func (s *ProductService) mutate(ctx context.Context, id uuid.UUID, change func(*catalog.Product) error) (*ProductResponse, error) {
	lineage, err := s.lineages.LoadLineage(ctx, id)
	if err != nil {
		return nil, err
	}
	product := lineage.Product
	expectedVersion := product.GetVersion()

	if err := change(product); err != nil {
		return nil, err
	}

	if err := s.productRepo.SaveWithLock(ctx, product, expectedVersion); err != nil {
		if shared.ErrorCode(err) == "" {
			s.logger.Error("failed to save product", zap.String("product_id", id.String()), zap.Error(err))
			return nil, fmt.Errorf("save product: %w", err)
		}
		return nil, err
	}

	s.publish(ctx, product)

	s.logger.Info("product updated",
		zap.String("product_id", id.String()),
		zap.Int("version", product.GetVersion()))

	resp := ToProductResponse(lineage)
	return &resp, nil
}

func (s *ProductService) publish(ctx context.Context, product *catalog.Product) {
	if err := shared.PublishAndClear(ctx, s.events, product); err != nil {
		s.logger.Error("failed to publish product events",
			zap.String("product_id", product.ID.String()),
			zap.Error(err))
	}
}

func toVariants(inputs []VariantInput) []catalog.Variant {
	variants := make([]catalog.Variant, len(inputs))
	for i, in := range inputs {
		variants[i] = catalog.Variant{
			Size:         in.Size,
			Stock:        in.Stock,
			BasePrice:    in.BasePrice,
			VariantOffer: in.VariantOffer,
		}
	}
	return variants
}
