package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// RepositoryLineageLoader joins products with their category and brand
// using one query per repository.
type RepositoryLineageLoader struct {
	products   ProductRepository
	categories CategoryRepository
	brands     BrandRepository
}

// NewRepositoryLineageLoader creates a new RepositoryLineageLoader
func NewRepositoryLineageLoader(products ProductRepository, categories CategoryRepository, brands BrandRepository) *RepositoryLineageLoader {
	return &RepositoryLineageLoader{products: products, categories: categories, brands: brands}
}

// LoadLineage loads the lineage of a single product
func (l *RepositoryLineageLoader) LoadLineage(ctx context.Context, productID uuid.UUID) (Lineage, error) {
	product, err := l.products.FindByID(ctx, productID)
	if err != nil {
		return Lineage{}, err
	}
	lineages, err := l.join(ctx, []Product{*product})
	if err != nil {
		return Lineage{}, err
	}
	return lineages[productID], nil
}

// LoadLineages loads the lineages of several products
func (l *RepositoryLineageLoader) LoadLineages(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID]Lineage, error) {
	if len(productIDs) == 0 {
		return map[uuid.UUID]Lineage{}, nil
	}
	products, err := l.products.FindByIDs(ctx, productIDs)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	return l.join(ctx, products)
}

// Join attaches categories and brands to already loaded products
func (l *RepositoryLineageLoader) Join(ctx context.Context, products []Product) (map[uuid.UUID]Lineage, error) {
	return l.join(ctx, products)
}

func (l *RepositoryLineageLoader) join(ctx context.Context, products []Product) (map[uuid.UUID]Lineage, error) {
	categoryIDs := make([]uuid.UUID, 0, len(products))
	brandIDs := make([]uuid.UUID, 0, len(products))
	for _, p := range products {
		categoryIDs = append(categoryIDs, p.CategoryID)
		brandIDs = append(brandIDs, p.BrandID)
	}

	categories, err := l.categories.FindByIDs(ctx, uniqueIDs(categoryIDs))
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	brands, err := l.brands.FindByIDs(ctx, uniqueIDs(brandIDs))
	if err != nil {
		return nil, fmt.Errorf("load brands: %w", err)
	}

	categoryByID := make(map[uuid.UUID]*Category, len(categories))
	for i := range categories {
		categoryByID[categories[i].ID] = &categories[i]
	}
	brandByID := make(map[uuid.UUID]*Brand, len(brands))
	for i := range brands {
		brandByID[brands[i].ID] = &brands[i]
	}

	lineages := make(map[uuid.UUID]Lineage, len(products))
	for i := range products {
		p := &products[i]
		lineages[p.ID] = Lineage{
			Product:  p,
			Category: categoryByID[p.CategoryID],
			Brand:    brandByID[p.BrandID],
		}
	}
	return lineages, nil
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
