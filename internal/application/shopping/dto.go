package shopping

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/pricing"
)

// AddItemRequest adds units of a product size to the cart
type AddItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Size      string    `json:"size" binding:"max=20"`
	Quantity  int       `json:"quantity" binding:"required,min=1,max=5"`
}

// UpdateQuantityRequest sets the quantity of an existing line
type UpdateQuantityRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Size      string    `json:"size" binding:"max=20"`
	Quantity  int       `json:"quantity" binding:"required,min=1,max=5"`
}

// RemoveItemRequest removes a line
type RemoveItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Size      string    `json:"size" binding:"max=20"`
}

// AddItemResult reports the counts the storefront header shows
type AddItemResult struct {
	CartCount     int `json:"cart_count"`
	WishlistCount int `json:"wishlist_count"`
}

// UpdateQuantityResult reports the new line total
type UpdateQuantityResult struct {
	CartCount int             `json:"cart_count"`
	ItemTotal decimal.Decimal `json:"item_total"`
}

// RemoveItemResult reports the remaining line count
type RemoveItemResult struct {
	CartCount int `json:"cart_count"`
}

// PruneResult reports how many lines were evicted
type PruneResult struct {
	Removed   int `json:"removed"`
	CartCount int `json:"cart_count"`
}

// CartLineView is a cart line priced from the live catalog
type CartLineView struct {
	ProductID      uuid.UUID       `json:"product_id"`
	Name           string          `json:"name"`
	Slug           string          `json:"slug"`
	Size           string          `json:"size"`
	SKU            string          `json:"sku"`
	Quantity       int             `json:"quantity"`
	Stock          int             `json:"stock"`
	BasePrice      decimal.Decimal `json:"base_price"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	EffectiveOffer decimal.Decimal `json:"effective_offer"`
	OfferSource    pricing.Tier    `json:"offer_source"`
	LineTotal      decimal.Decimal `json:"line_total"`
	LineDiscount   decimal.Decimal `json:"line_discount"`
	Available      bool            `json:"available"`
	Reason         catalog.Reason  `json:"reason,omitempty"`
}

// CartView is the cart as shown to the shopper. Totals only cover
// available lines.
type CartView struct {
	UserID         uuid.UUID       `json:"user_id"`
	Items          []CartLineView  `json:"items"`
	ItemCount      int             `json:"item_count"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	TotalDiscount  decimal.Decimal `json:"total_discount"`
	GrandTotal     decimal.Decimal `json:"grand_total"`
	HasUnavailable bool            `json:"has_unavailable"`
}

// ValidationResult partitions the cart without changing it
type ValidationResult struct {
	Available   []CartLineView `json:"available"`
	Unavailable []CartLineView `json:"unavailable"`
}

// Valid reports whether every line can be bought
func (r ValidationResult) Valid() bool {
	return len(r.Unavailable) == 0
}

// WishlistItemView is a saved product with its live price summary
type WishlistItemView struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Slug      string          `json:"slug"`
	Available bool            `json:"available"`
	InCart    bool            `json:"in_cart"`
	Pricing   pricing.Summary `json:"pricing"`
}

// WishlistView lists a user's saved products
type WishlistView struct {
	Items []WishlistItemView `json:"items"`
	Count int                `json:"count"`
}

// ToggleResult reports the outcome of a wishlist toggle
type ToggleResult struct {
	Added         bool `json:"added"`
	WishlistCount int  `json:"wishlist_count"`
}
