package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shopping"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormWishlistRepository implements WishlistRepository using GORM
type GormWishlistRepository struct {
	db *gorm.DB
}

// NewGormWishlistRepository creates a new GormWishlistRepository
func NewGormWishlistRepository(db *gorm.DB) *GormWishlistRepository {
	return &GormWishlistRepository{db: db}
}

func preloadWishlistItems(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

// FindByUser finds the wishlist owned by userID
func (r *GormWishlistRepository) FindByUser(ctx context.Context, userID uuid.UUID) (*shopping.Wishlist, error) {
	var model models.WishlistModel
	err := r.db.WithContext(ctx).
		Preload("Items", preloadWishlistItems).
		First(&model, "user_id = ?", userID).Error
	if err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindContaining finds every wishlist holding productID
func (r *GormWishlistRepository) FindContaining(ctx context.Context, productID uuid.UUID) ([]shopping.Wishlist, error) {
	db := r.db.WithContext(ctx)
	holders := db.Model(&models.WishlistItemModel{}).Select("wishlist_id").Where("product_id = ?", productID)

	var rows []models.WishlistModel
	err := db.Preload("Items", preloadWishlistItems).
		Where("id IN (?)", holders).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	wishlists := make([]shopping.Wishlist, len(rows))
	for i := range rows {
		wishlists[i] = *rows[i].ToDomain()
	}
	return wishlists, nil
}

// Save writes the wishlist row and replaces its items in one transaction
func (r *GormWishlistRepository) Save(ctx context.Context, wishlist *shopping.Wishlist) error {
	model := models.WishlistModelFromDomain(wishlist)
	items := model.Items
	model.Items = nil

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(model).Error; err != nil {
			return err
		}
		if err := tx.Where("wishlist_id = ?", model.ID).Delete(&models.WishlistItemModel{}).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		return tx.Create(&items).Error
	})
}

// Ensure GormWishlistRepository implements WishlistRepository
var _ shopping.WishlistRepository = (*GormWishlistRepository)(nil)
