package shopping

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shopping"
	"github.com/stretchr/testify/require"
)

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

// memoryCatalog serves lineages from memory. Lineages share pointers, so
// edits made by a test are visible on the next read.
type memoryCatalog struct {
	mu       sync.Mutex
	lineages map[uuid.UUID]catalog.Lineage
}

func newMemoryCatalog() *memoryCatalog {
	return &memoryCatalog{lineages: make(map[uuid.UUID]catalog.Lineage)}
}

func (m *memoryCatalog) LoadLineage(_ context.Context, productID uuid.UUID) (catalog.Lineage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.lineages[productID]
	if !ok {
		return catalog.Lineage{}, shared.ErrNotFound
	}
	return l, nil
}

func (m *memoryCatalog) LoadLineages(_ context.Context, productIDs []uuid.UUID) (map[uuid.UUID]catalog.Lineage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[uuid.UUID]catalog.Lineage, len(productIDs))
	for _, id := range productIDs {
		if l, ok := m.lineages[id]; ok {
			out[id] = l
		}
	}
	return out, nil
}

// addProduct registers a listed product with one variant per stock entry
func (m *memoryCatalog) addProduct(t *testing.T, basePrice string, stocks map[string]int) catalog.Lineage {
	t.Helper()
	category, err := catalog.NewCategory("Running "+uuid.NewString()[:8], "")
	require.NoError(t, err)
	brand, err := catalog.NewBrand("Nike")
	require.NoError(t, err)
	product, err := catalog.NewProduct("Pegasus", "", dec("10000"), category.ID, brand.ID)
	require.NoError(t, err)

	variants := make([]catalog.Variant, 0, len(stocks))
	for size, stock := range stocks {
		variants = append(variants, catalog.Variant{Size: size, Stock: stock, BasePrice: dec(basePrice)})
	}
	require.NoError(t, product.ReplaceVariants(variants))

	l := catalog.Lineage{Product: product, Category: category, Brand: brand}
	m.mu.Lock()
	m.lineages[product.ID] = l
	m.mu.Unlock()
	return l
}

// memoryCarts stores cart copies and enforces the version check
type memoryCarts struct {
	mu        sync.Mutex
	carts     map[uuid.UUID]shopping.Cart
	conflicts int
	writes    int
}

func newMemoryCarts() *memoryCarts {
	return &memoryCarts{carts: make(map[uuid.UUID]shopping.Cart)}
}

func copyCart(c *shopping.Cart) shopping.Cart {
	out := *c
	out.Items = append([]shopping.CartItem(nil), c.Items...)
	out.ClearDomainEvents()
	return out
}

func (m *memoryCarts) FindByUser(_ context.Context, userID uuid.UUID) (*shopping.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.carts[userID]
	if !ok {
		return nil, shared.ErrNotFound
	}
	out := copyCart(&c)
	return &out, nil
}

func (m *memoryCarts) Create(_ context.Context, cart *shopping.Cart) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.carts[cart.UserID]; ok {
		return shared.ErrConcurrencyConflict
	}
	m.carts[cart.UserID] = copyCart(cart)
	m.writes++
	return nil
}

func (m *memoryCarts) SaveWithLock(_ context.Context, cart *shopping.Cart, expectedVersion int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.conflicts > 0 {
		m.conflicts--
		return shared.ErrConcurrencyConflict
	}
	stored, ok := m.carts[cart.UserID]
	if !ok {
		return shared.ErrNotFound
	}
	if stored.Version != expectedVersion {
		return shared.ErrConcurrencyConflict
	}
	m.carts[cart.UserID] = copyCart(cart)
	m.writes++
	return nil
}

func (m *memoryCarts) stored(userID uuid.UUID) shopping.Cart {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.carts[userID]
}

// memoryWishlists stores wishlist copies
type memoryWishlists struct {
	mu        sync.Mutex
	wishlists map[uuid.UUID]shopping.Wishlist
}

func newMemoryWishlists() *memoryWishlists {
	return &memoryWishlists{wishlists: make(map[uuid.UUID]shopping.Wishlist)}
}

func copyWishlist(w *shopping.Wishlist) shopping.Wishlist {
	out := *w
	out.ProductIDs = append([]uuid.UUID(nil), w.ProductIDs...)
	return out
}

func (m *memoryWishlists) FindByUser(_ context.Context, userID uuid.UUID) (*shopping.Wishlist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.wishlists[userID]
	if !ok {
		return nil, shared.ErrNotFound
	}
	out := copyWishlist(&w)
	return &out, nil
}

func (m *memoryWishlists) FindContaining(_ context.Context, productID uuid.UUID) ([]shopping.Wishlist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []shopping.Wishlist
	for _, w := range m.wishlists {
		if w.Contains(productID) {
			out = append(out, copyWishlist(&w))
		}
	}
	return out, nil
}

func (m *memoryWishlists) Save(_ context.Context, wishlist *shopping.Wishlist) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.wishlists[wishlist.UserID] = copyWishlist(wishlist)
	return nil
}

// mutexLocker is a single global lock, enough to serialise test callers
type mutexLocker struct {
	mu sync.Mutex
}

func (l *mutexLocker) Lock(_ context.Context, _ uuid.UUID, _ time.Duration) (func(), error) {
	l.mu.Lock()
	return l.mu.Unlock, nil
}
