// Package shopping holds the per-user cart and wishlist aggregates.
package shopping

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
)

// MaxLineQuantity is the per-line quantity ceiling
const MaxLineQuantity = 5

// CartItem is one line of a cart, keyed by product and size.
// Price and TotalPrice are display snapshots and never authoritative.
type CartItem struct {
	ProductID  uuid.UUID       `json:"product_id"`
	Size       string          `json:"size"`
	Quantity   int             `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
	TotalPrice decimal.Decimal `json:"total_price"`
	AddedAt    time.Time       `json:"added_at"`
}

// Matches reports whether the line refers to the given product and size
func (i CartItem) Matches(productID uuid.UUID, size string) bool {
	return i.ProductID == productID && strings.EqualFold(i.Size, strings.TrimSpace(size))
}

// Cart is the aggregate root holding one user's line items
type Cart struct {
	shared.BaseAggregateRoot
	UserID uuid.UUID
	Items  []CartItem
}

// NewCart creates an empty cart for a user
func NewCart(userID uuid.UUID) *Cart {
	return &Cart{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		UserID:            userID,
		Items:             []CartItem{},
	}
}

// ItemCount returns the number of lines
func (c *Cart) ItemCount() int {
	return len(c.Items)
}

// Find returns the line for productID and size. size may be empty when
// the product has a single line in the cart.
func (c *Cart) Find(productID uuid.UUID, size string) (CartItem, bool) {
	i := c.indexOf(productID, size)
	if i < 0 {
		return CartItem{}, false
	}
	return c.Items[i], true
}

// Contains reports whether any line refers to productID
func (c *Cart) Contains(productID uuid.UUID) bool {
	for _, item := range c.Items {
		if item.ProductID == productID {
			return true
		}
	}
	return false
}

// Add puts quantity units of a variant into the cart, merging with an
// existing line. stock is the variant's live stock and unitPrice its live
// sell price. The cart is unchanged when an error is returned.
func (c *Cart) Add(productID uuid.UUID, size string, quantity, stock int, unitPrice decimal.Decimal) error {
	if err := ValidateQuantity(quantity); err != nil {
		return err
	}
	if stock <= 0 {
		return shared.NewDomainError("OUT_OF_STOCK", "This size is out of stock")
	}

	size = strings.TrimSpace(size)
	i := c.indexOf(productID, size)
	if i < 0 {
		if quantity > stock {
			return insufficientStock(stock)
		}
		c.Items = append(c.Items, newLine(productID, size, quantity, unitPrice))
		c.touch()
		return nil
	}

	combined := c.Items[i].Quantity + quantity
	if combined > stock {
		return insufficientStock(stock)
	}
	if combined > MaxLineQuantity {
		return shared.NewDomainError("CART_QUANTITY_LIMIT", fmt.Sprintf(
			"You can only add up to %d units of this product; %d already in cart", MaxLineQuantity, c.Items[i].Quantity))
	}

	c.Items[i].Quantity = combined
	c.Items[i].Snapshot(unitPrice)
	c.touch()
	return nil
}

// SetQuantity changes a line's quantity. Stock is only checked when the
// quantity grows.
func (c *Cart) SetQuantity(productID uuid.UUID, size string, quantity, stock int, unitPrice decimal.Decimal) error {
	if err := ValidateQuantity(quantity); err != nil {
		return err
	}
	i := c.indexOf(productID, size)
	if i < 0 {
		return itemNotFound()
	}

	if quantity > c.Items[i].Quantity && quantity > stock {
		return insufficientStock(stock)
	}

	c.Items[i].Quantity = quantity
	c.Items[i].Snapshot(unitPrice)
	c.touch()
	return nil
}

// Remove deletes a line
func (c *Cart) Remove(productID uuid.UUID, size string) error {
	i := c.indexOf(productID, size)
	if i < 0 {
		return itemNotFound()
	}
	c.Items = append(c.Items[:i], c.Items[i+1:]...)
	c.touch()
	return nil
}

// RemoveWhere deletes every line for which evict returns true and returns
// the number of removed lines.
func (c *Cart) RemoveWhere(evict func(CartItem) bool) int {
	kept := c.Items[:0]
	removed := 0
	for _, item := range c.Items {
		if evict(item) {
			removed++
			continue
		}
		kept = append(kept, item)
	}
	c.Items = kept
	if removed > 0 {
		c.touch()
	}
	return removed
}

// Clear removes every line
func (c *Cart) Clear() {
	if len(c.Items) == 0 {
		return
	}
	c.Items = []CartItem{}
	c.touch()
}

// RefreshSnapshot rewrites the display price of a line. It returns false
// when the stored snapshot already matches.
func (c *Cart) RefreshSnapshot(productID uuid.UUID, size string, unitPrice decimal.Decimal) bool {
	i := c.indexOf(productID, size)
	if i < 0 {
		return false
	}
	item := c.Items[i]
	total := unitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
	if item.Price.Equal(unitPrice) && item.TotalPrice.Equal(total) {
		return false
	}
	c.Items[i].Snapshot(unitPrice)
	c.touch()
	return true
}

// Snapshot records the unit price and the matching line total
func (i *CartItem) Snapshot(unitPrice decimal.Decimal) {
	i.Price = unitPrice
	i.TotalPrice = unitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// ValidateQuantity checks that quantity lies within [1, MaxLineQuantity]
func ValidateQuantity(quantity int) error {
	if quantity < 1 || quantity > MaxLineQuantity {
		return shared.NewDomainError("INVALID_QUANTITY", fmt.Sprintf(
			"Quantity must be between 1 and %d", MaxLineQuantity))
	}
	return nil
}

// indexOf finds the line for productID and size. An empty size selects the
// product's line when the cart holds exactly one for it.
func (c *Cart) indexOf(productID uuid.UUID, size string) int {
	only, lines := -1, 0
	for i, item := range c.Items {
		if item.Matches(productID, size) {
			return i
		}
		if item.ProductID == productID {
			only = i
			lines++
		}
	}
	if strings.TrimSpace(size) == "" && lines == 1 {
		return only
	}
	return -1
}

func (c *Cart) touch() {
	c.Touch()
	c.IncrementVersion()
}

func newLine(productID uuid.UUID, size string, quantity int, unitPrice decimal.Decimal) CartItem {
	item := CartItem{
		ProductID: productID,
		Size:      size,
		Quantity:  quantity,
		AddedAt:   time.Now(),
	}
	item.Snapshot(unitPrice)
	return item
}

func insufficientStock(stock int) error {
	return shared.NewDomainError("INSUFFICIENT_STOCK", fmt.Sprintf("Only %d items available in stock", stock))
}

func itemNotFound() error {
	return shared.NewDomainError("CART_ITEM_NOT_FOUND", "Item not found in cart")
}
