package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormProductRepository implements ProductRepository using GORM. A product
// and its variants live in one row.
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID finds a product by its ID
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var model models.ProductModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByIDs finds multiple products by their IDs
func (r *GormProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	if len(ids) == 0 {
		return []catalog.Product{}, nil
	}

	var rows []models.ProductModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	return productsToDomain(rows), nil
}

// FindAll finds all products matching the filter
func (r *GormProductRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Product, error) {
	var rows []models.ProductModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.ProductModel{}), filter)
	query = paginate(query, filter)

	orderBy := ValidateSortField(filter.OrderBy, ProductSortFields, "created_at")
	query = query.Order("products." + orderBy + " " + ValidateSortOrder(filter.OrderDir))

	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return productsToDomain(rows), nil
}

// Count counts products matching the filter
func (r *GormProductRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.ProductModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Create inserts a new product. A base SKU taken by a concurrent writer
// surfaces as shared.ErrAlreadyExists.
func (r *GormProductRepository) Create(ctx context.Context, product *catalog.Product) error {
	model := models.ProductModelFromDomain(product)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// SaveWithLock replaces the stored product only if its version still equals
// expectedVersion
func (r *GormProductRepository) SaveWithLock(ctx context.Context, product *catalog.Product, expectedVersion int) error {
	model := models.ProductModelFromDomain(product)
	result := r.db.WithContext(ctx).
		Model(&models.ProductModel{}).
		Where("id = ? AND version = ?", product.ID, expectedVersion).
		Select("*").
		Omit("id", "created_at").
		Updates(model)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// SKUExists reports whether sku is used as a base or variant SKU by any
// product other than excludeID
func (r *GormProductRepository) SKUExists(ctx context.Context, sku string, excludeID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ProductModel{}).
		Where("id <> ?", excludeID).
		Where(`base_sku = ? OR variant_skus LIKE ? ESCAPE '\'`, sku, "%|"+escapeLike(sku)+"|%").
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountSKUPrefix counts products other than excludeID holding a SKU that
// starts with prefix
func (r *GormProductRepository) CountSKUPrefix(ctx context.Context, prefix string, excludeID uuid.UUID) (int64, error) {
	var count int64
	escaped := escapeLike(prefix)
	err := r.db.WithContext(ctx).
		Model(&models.ProductModel{}).
		Where("id <> ?", excludeID).
		Where(`base_sku LIKE ? ESCAPE '\' OR variant_skus LIKE ? ESCAPE '\'`, escaped+"%", "%|"+escaped+"%").
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies search and filter keys. listed_only joins the
// category and brand so only purchasable products match.
func (r *GormProductRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(escapeLike(filter.Search)) + "%"
		query = query.Where(`LOWER(products.name) LIKE ? ESCAPE '\' OR LOWER(products.base_sku) LIKE ? ESCAPE '\'`, pattern, pattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case catalog.FilterListedOnly:
			if value != true {
				continue
			}
			query = query.
				Joins("JOIN categories ON categories.id = products.category_id AND categories.is_active = ? AND categories.is_deleted = ?", true, false).
				Joins("JOIN brands ON brands.id = products.brand_id AND brands.is_active = ? AND brands.is_deleted = ?", true, false).
				Where("products.is_active = ? AND products.is_deleted = ?", true, false)
		case catalog.FilterCategoryID:
			query = query.Where("products.category_id = ?", value)
		case catalog.FilterBrandID:
			query = query.Where("products.brand_id = ?", value)
		case "is_deleted":
			query = query.Where("products.is_deleted = ?", value)
		}
	}

	return query
}

func productsToDomain(rows []models.ProductModel) []catalog.Product {
	products := make([]catalog.Product, len(rows))
	for i := range rows {
		products[i] = *rows[i].ToDomain()
	}
	return products
}

// escapeLike neutralises LIKE wildcards in user-supplied text
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

var likeEscaper = strings.NewReplacer(`%`, `\%`, `_`, `\_`)

// Ensure GormProductRepository implements ProductRepository
var _ catalog.ProductRepository = (*GormProductRepository)(nil)
