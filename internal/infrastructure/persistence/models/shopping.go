package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shopping"
)

// CartItemRecord is one element of the carts.items JSON document
type CartItemRecord struct {
	ProductID  uuid.UUID       `json:"product_id"`
	Size       string          `json:"size"`
	Quantity   int             `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
	TotalPrice decimal.Decimal `json:"total_price"`
	AddedAt    time.Time       `json:"added_at"`
}

// CartModel is the persistence model for the Cart aggregate. One row per
// user; the unique index on user_id turns a racing first insert into a
// duplicate key error.
type CartModel struct {
	AggregateModel
	UserID uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex"`
	Items  []CartItemRecord `gorm:"type:jsonb;serializer:json"`
}

// TableName returns the table name for GORM
func (CartModel) TableName() string {
	return "carts"
}

// ToDomain converts the persistence model to a domain Cart aggregate.
func (m *CartModel) ToDomain() *shopping.Cart {
	items := make([]shopping.CartItem, len(m.Items))
	for i, it := range m.Items {
		items[i] = shopping.CartItem{
			ProductID:  it.ProductID,
			Size:       it.Size,
			Quantity:   it.Quantity,
			Price:      it.Price,
			TotalPrice: it.TotalPrice,
			AddedAt:    it.AddedAt,
		}
	}
	return &shopping.Cart{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		UserID:            m.UserID,
		Items:             items,
	}
}

// FromDomain populates the persistence model from a domain Cart aggregate.
func (m *CartModel) FromDomain(c *shopping.Cart) {
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	m.UserID = c.UserID
	m.Items = make([]CartItemRecord, len(c.Items))
	for i, it := range c.Items {
		m.Items[i] = CartItemRecord{
			ProductID:  it.ProductID,
			Size:       it.Size,
			Quantity:   it.Quantity,
			Price:      it.Price,
			TotalPrice: it.TotalPrice,
			AddedAt:    it.AddedAt,
		}
	}
}

// CartModelFromDomain creates a new persistence model from a domain Cart aggregate.
func CartModelFromDomain(c *shopping.Cart) *CartModel {
	m := &CartModel{}
	m.FromDomain(c)
	return m
}

// WishlistModel is the persistence model for the Wishlist aggregate
type WishlistModel struct {
	AggregateModel
	UserID uuid.UUID           `gorm:"type:uuid;not null;uniqueIndex"`
	Items  []WishlistItemModel `gorm:"foreignKey:WishlistID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (WishlistModel) TableName() string {
	return "wishlists"
}

// WishlistItemModel is one saved product. Position keeps insertion order.
type WishlistItemModel struct {
	WishlistID uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProductID  uuid.UUID `gorm:"type:uuid;primaryKey;index"`
	Position   int       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (WishlistItemModel) TableName() string {
	return "wishlist_items"
}

// ToDomain converts the persistence model to a domain Wishlist aggregate.
// Items must be loaded ordered by position.
func (m *WishlistModel) ToDomain() *shopping.Wishlist {
	ids := make([]uuid.UUID, len(m.Items))
	for i, it := range m.Items {
		ids[i] = it.ProductID
	}
	return &shopping.Wishlist{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		UserID:            m.UserID,
		ProductIDs:        ids,
	}
}

// FromDomain populates the persistence model from a domain Wishlist aggregate.
func (m *WishlistModel) FromDomain(w *shopping.Wishlist) {
	m.FromDomainAggregateRoot(w.BaseAggregateRoot)
	m.UserID = w.UserID
	m.Items = make([]WishlistItemModel, len(w.ProductIDs))
	for i, id := range w.ProductIDs {
		m.Items[i] = WishlistItemModel{WishlistID: w.ID, ProductID: id, Position: i}
	}
}

// WishlistModelFromDomain creates a new persistence model from a domain Wishlist aggregate.
func WishlistModelFromDomain(w *shopping.Wishlist) *WishlistModel {
	m := &WishlistModel{}
	m.FromDomain(w)
	return m
}
