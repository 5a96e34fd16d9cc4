package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// BrandService handles brand administration
type BrandService struct {
	brandRepo catalog.BrandRepository
	events    shared.EventPublisher
	logger    *zap.Logger
}

// NewBrandService creates a new BrandService
func NewBrandService(brandRepo catalog.BrandRepository, events shared.EventPublisher, logger *zap.Logger) *BrandService {
	return &BrandService{
		brandRepo: brandRepo,
		events:    events,
		logger:    logger,
	}
}

// Create creates a new brand
func (s *BrandService) Create(ctx context.Context, req CreateBrandRequest) (*BrandResponse, error) {
	if err := s.ensureUniqueName(ctx, req.Name, uuid.Nil); err != nil {
		return nil, err
	}
	brand, err := catalog.NewBrand(req.Name)
	if err != nil {
		return nil, err
	}
	return s.save(ctx, brand)
}

// GetByID retrieves a brand by ID
func (s *BrandService) GetByID(ctx context.Context, id uuid.UUID) (*BrandResponse, error) {
	brand, err := s.brandRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToBrandResponse(brand)
	return &resp, nil
}

// List retrieves brands
func (s *BrandService) List(ctx context.Context, filter ListFilter) (shared.Paginated[BrandResponse], error) {
	domainFilter := toDomainFilter(filter)

	brands, err := s.brandRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return shared.Paginated[BrandResponse]{}, err
	}
	total, err := s.brandRepo.Count(ctx, domainFilter)
	if err != nil {
		return shared.Paginated[BrandResponse]{}, err
	}

	items := make([]BrandResponse, len(brands))
	for i := range brands {
		items[i] = ToBrandResponse(&brands[i])
	}
	return shared.NewPaginated(items, total, domainFilter.Page, domainFilter.PageSize), nil
}

// Rename renames a brand. Existing SKUs keep the previous brand code.
func (s *BrandService) Rename(ctx context.Context, id uuid.UUID, req CreateBrandRequest) (*BrandResponse, error) {
	if err := s.ensureUniqueName(ctx, req.Name, id); err != nil {
		return nil, err
	}
	return s.mutate(ctx, id, func(b *catalog.Brand) error {
		return b.Rename(req.Name)
	})
}

// SetOffer sets the brand offer
func (s *BrandService) SetOffer(ctx context.Context, id uuid.UUID, offer decimal.Decimal) (*BrandResponse, error) {
	return s.mutate(ctx, id, func(b *catalog.Brand) error {
		return b.SetOffer(offer)
	})
}

// Activate activates a brand
func (s *BrandService) Activate(ctx context.Context, id uuid.UUID) (*BrandResponse, error) {
	return s.mutate(ctx, id, (*catalog.Brand).Activate)
}

// Deactivate deactivates a brand
func (s *BrandService) Deactivate(ctx context.Context, id uuid.UUID) (*BrandResponse, error) {
	return s.mutate(ctx, id, (*catalog.Brand).Deactivate)
}

// Delete soft-deletes a brand
func (s *BrandService) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := s.mutate(ctx, id, (*catalog.Brand).SoftDelete)
	return err
}

// Restore reverses a soft delete
func (s *BrandService) Restore(ctx context.Context, id uuid.UUID) (*BrandResponse, error) {
	return s.mutate(ctx, id, (*catalog.Brand).RestoreDeleted)
}

func (s *BrandService) ensureUniqueName(ctx context.Context, name string, excludeID uuid.UUID) error {
	exists, err := s.brandRepo.ExistsByName(ctx, name, excludeID)
	if err != nil {
		return fmt.Errorf("check brand name: %w", err)
	}
	if exists {
		return shared.NewDomainError("ALREADY_EXISTS", "Brand with this name already exists")
	}
	return nil
}

func (s *BrandService) mutate(ctx context.Context, id uuid.UUID, change func(*catalog.Brand) error) (*BrandResponse, error) {
	brand, err := s.brandRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := change(brand); err != nil {
		return nil, err
	}
	return s.save(ctx, brand)
}

func (s *BrandService) save(ctx context.Context, brand *catalog.Brand) (*BrandResponse, error) {
	if err := s.brandRepo.Save(ctx, brand); err != nil {
		s.logger.Error("failed to save brand", zap.String("brand_id", brand.ID.String()), zap.Error(err))
		return nil, fmt.Errorf("save brand: %w", err)
	}

	if err := shared.PublishAndClear(ctx, s.events, brand); err != nil {
		s.logger.Error("failed to publish brand events", zap.Error(err))
	}

	s.logger.Info("brand saved",
		zap.String("brand_id", brand.ID.String()),
		zap.String("offer", brand.BrandOffer.String()),
		zap.Bool("available", brand.Available()))

	resp := ToBrandResponse(brand)
	return &resp, nil
}
