package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// Filter keys understood by ProductRepository.FindAll and Count
const (
	FilterListedOnly = "listed_only"
	FilterCategoryID = "category_id"
	FilterBrandID    = "brand_id"
)

// ProductRepository defines the interface for product persistence.
// A product and its variants are one document and are written together.
type ProductRepository interface {
	SKULookup

	// FindByID finds a product by its ID, deleted ones included
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindByIDs finds multiple products by their IDs. Missing IDs are skipped.
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Product, error)

	// FindAll finds all products matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Product, error)

	// Count counts products matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// Create inserts a new product document
	Create(ctx context.Context, product *Product) error

	// SaveWithLock replaces the stored document only if its version still
	// equals expectedVersion. Returns shared.ErrConcurrencyConflict otherwise.
	SaveWithLock(ctx context.Context, product *Product, expectedVersion int) error
}

// LineageReader loads products together with their category and brand
type LineageReader interface {
	// LoadLineage loads the lineage of a product. Returns shared.ErrNotFound
	// if the product does not exist.
	LoadLineage(ctx context.Context, productID uuid.UUID) (Lineage, error)

	// LoadLineages loads lineages keyed by product ID. Products that do not
	// exist are absent from the map.
	LoadLineages(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID]Lineage, error)
}
