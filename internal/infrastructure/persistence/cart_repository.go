package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shopping"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormCartRepository implements CartRepository using GORM. Cart items are
// stored with the cart row so a cart is always written as a whole.
type GormCartRepository struct {
	db *gorm.DB
}

// NewGormCartRepository creates a new GormCartRepository
func NewGormCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db}
}

// FindByUser finds the cart owned by userID
func (r *GormCartRepository) FindByUser(ctx context.Context, userID uuid.UUID) (*shopping.Cart, error) {
	var model models.CartModel
	if err := r.db.WithContext(ctx).First(&model, "user_id = ?", userID).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// Create inserts a new cart. Losing a race for the user's first cart
// surfaces as shared.ErrConcurrencyConflict so callers retry and load the
// winner's cart.
func (r *GormCartRepository) Create(ctx context.Context, cart *shopping.Cart) error {
	model := models.CartModelFromDomain(cart)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrConcurrencyConflict
		}
		return err
	}
	return nil
}

// SaveWithLock replaces the stored cart only if its version still equals
// expectedVersion
func (r *GormCartRepository) SaveWithLock(ctx context.Context, cart *shopping.Cart, expectedVersion int) error {
	model := models.CartModelFromDomain(cart)
	result := r.db.WithContext(ctx).
		Model(&models.CartModel{}).
		Where("id = ? AND version = ?", cart.ID, expectedVersion).
		Select("*").
		Omit("id", "created_at", "user_id").
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// Ensure GormCartRepository implements CartRepository
var _ shopping.CartRepository = (*GormCartRepository)(nil)
