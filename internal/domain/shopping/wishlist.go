package shopping

import (
	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// Wishlist is the set of products a user saved for later
type Wishlist struct {
	shared.BaseAggregateRoot
	UserID     uuid.UUID
	ProductIDs []uuid.UUID
}

// NewWishlist creates an empty wishlist for a user
func NewWishlist(userID uuid.UUID) *Wishlist {
	return &Wishlist{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		UserID:            userID,
		ProductIDs:        []uuid.UUID{},
	}
}

// Count returns the number of saved products
func (w *Wishlist) Count() int {
	return len(w.ProductIDs)
}

// Contains reports whether productID is saved
func (w *Wishlist) Contains(productID uuid.UUID) bool {
	for _, id := range w.ProductIDs {
		if id == productID {
			return true
		}
	}
	return false
}

// Add saves a product
func (w *Wishlist) Add(productID uuid.UUID) error {
	if w.Contains(productID) {
		return shared.NewDomainError("ALREADY_IN_WISHLIST", "Product is already in your wishlist")
	}
	w.ProductIDs = append(w.ProductIDs, productID)
	w.touch()
	return nil
}

// Remove drops a product and reports whether it was present
func (w *Wishlist) Remove(productID uuid.UUID) bool {
	for i, id := range w.ProductIDs {
		if id == productID {
			w.ProductIDs = append(w.ProductIDs[:i], w.ProductIDs[i+1:]...)
			w.touch()
			return true
		}
	}
	return false
}

func (w *Wishlist) touch() {
	w.Touch()
	w.IncrementVersion()
}
