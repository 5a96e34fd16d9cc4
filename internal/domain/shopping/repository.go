package shopping

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// CartRepository defines the interface for cart persistence.
// Each user has at most one cart.
type CartRepository interface {
	// FindByUser returns the user's cart or shared.ErrNotFound
	FindByUser(ctx context.Context, userID uuid.UUID) (*Cart, error)

	// Create inserts a new cart
	Create(ctx context.Context, cart *Cart) error

	// SaveWithLock replaces the stored cart only if its version still equals
	// expectedVersion. Returns shared.ErrConcurrencyConflict otherwise.
	SaveWithLock(ctx context.Context, cart *Cart, expectedVersion int) error
}

// WishlistRepository defines the interface for wishlist persistence
type WishlistRepository interface {
	// FindByUser returns the user's wishlist or shared.ErrNotFound
	FindByUser(ctx context.Context, userID uuid.UUID) (*Wishlist, error)

	// FindContaining returns every wishlist that holds productID
	FindContaining(ctx context.Context, productID uuid.UUID) ([]Wishlist, error)

	// Save creates or updates a wishlist
	Save(ctx context.Context, wishlist *Wishlist) error
}

// CartLocker serialises mutating operations on one user's cart
type CartLocker interface {
	// Lock blocks until the user's cart lock is held or ctx is done. The
	// returned function releases the lock.
	Lock(ctx context.Context, userID uuid.UUID, ttl time.Duration) (unlock func(), err error)
}
