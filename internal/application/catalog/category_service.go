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

// CategoryService handles category administration
type CategoryService struct {
	categoryRepo catalog.CategoryRepository
	events       shared.EventPublisher
	logger       *zap.Logger
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(categoryRepo catalog.CategoryRepository, events shared.EventPublisher, logger *zap.Logger) *CategoryService {
	return &CategoryService{
		categoryRepo: categoryRepo,
		events:       events,
		logger:       logger,
	}
}

// Create creates a new category
func (s *CategoryService) Create(ctx context.Context, req CreateCategoryRequest) (*CategoryResponse, error) {
	exists, err := s.categoryRepo.ExistsByName(ctx, req.Name, uuid.Nil)
	if err != nil {
		return nil, fmt.Errorf("check category name: %w", err)
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Category with this name already exists")
	}

	category, err := catalog.NewCategory(req.Name, req.Description)
	if err != nil {
		return nil, err
	}

	return s.save(ctx, category)
}

// GetByID retrieves a category by ID
func (s *CategoryService) GetByID(ctx context.Context, id uuid.UUID) (*CategoryResponse, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToCategoryResponse(category)
	return &resp, nil
}

// List retrieves categories
func (s *CategoryService) List(ctx context.Context, filter ListFilter) (shared.Paginated[CategoryResponse], error) {
	domainFilter := toDomainFilter(filter)

	categories, err := s.categoryRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return shared.Paginated[CategoryResponse]{}, err
	}
	total, err := s.categoryRepo.Count(ctx, domainFilter)
	if err != nil {
		return shared.Paginated[CategoryResponse]{}, err
	}

	items := make([]CategoryResponse, len(categories))
	for i := range categories {
		items[i] = ToCategoryResponse(&categories[i])
	}
	return shared.NewPaginated(items, total, domainFilter.Page, domainFilter.PageSize), nil
}

// Update renames a category
func (s *CategoryService) Update(ctx context.Context, id uuid.UUID, req UpdateCategoryRequest) (*CategoryResponse, error) {
	exists, err := s.categoryRepo.ExistsByName(ctx, req.Name, id)
	if err != nil {
		return nil, fmt.Errorf("check category name: %w", err)
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Category with this name already exists")
	}
	return s.mutate(ctx, id, func(c *catalog.Category) error {
		return c.Update(req.Name, req.Description)
	})
}

// SetOffer sets the category offer
func (s *CategoryService) SetOffer(ctx context.Context, id uuid.UUID, offer decimal.Decimal) (*CategoryResponse, error) {
	return s.mutate(ctx, id, func(c *catalog.Category) error {
		return c.SetOffer(offer)
	})
}

// Activate activates a category
func (s *CategoryService) Activate(ctx context.Context, id uuid.UUID) (*CategoryResponse, error) {
	return s.mutate(ctx, id, (*catalog.Category).Activate)
}

// Deactivate deactivates a category
func (s *CategoryService) Deactivate(ctx context.Context, id uuid.UUID) (*CategoryResponse, error) {
	return s.mutate(ctx, id, (*catalog.Category).Deactivate)
}

// Delete soft-deletes a category. Its products stay but become unavailable.
func (s *CategoryService) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := s.mutate(ctx, id, (*catalog.Category).SoftDelete)
	return err
}

// Restore reverses a soft delete
func (s *CategoryService) Restore(ctx context.Context, id uuid.UUID) (*CategoryResponse, error) {
	return s.mutate(ctx, id, (*catalog.Category).RestoreDeleted)
}

func (s *CategoryService) mutate(ctx context.Context, id uuid.UUID, change func(*catalog.Category) error) (*CategoryResponse, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := change(category); err != nil {
		return nil, err
	}
	return s.save(ctx, category)
}

func (s *CategoryService) save(ctx context.Context, category *catalog.Category) (*CategoryResponse, error) {
	if err := s.categoryRepo.Save(ctx, category); err != nil {
		s.logger.Error("failed to save category", zap.String("category_id", category.ID.String()), zap.Error(err))
		return nil, fmt.Errorf("save category: %w", err)
	}

	if err := shared.PublishAndClear(ctx, s.events, category); err != nil {
		s.logger.Error("failed to publish category events", zap.Error(err))
	}

	s.logger.Info("category saved",
		zap.String("category_id", category.ID.String()),
		zap.String("offer", category.CategoryOffer.String()),
		zap.Bool("available", category.Available()))

	resp := ToCategoryResponse(category)
	return &resp, nil
}

func toDomainFilter(filter ListFilter) shared.Filter {
	domainFilter := shared.DefaultFilter()
	domainFilter.Search = filter.Search
	domainFilter.OrderBy = "name"
	domainFilter.OrderDir = "asc"
	if !filter.IncludeDeleted {
		domainFilter.Filters["is_deleted"] = false
	}
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	return domainFilter
}
