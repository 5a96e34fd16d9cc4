package shopping

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shopping"
	"go.uber.org/zap"
)

// WishlistPruneHandler removes products from wishlists once they become
// unavailable. Carts are left alone; their lines are flagged on read and
// evicted by RemoveOutOfStock.
type WishlistPruneHandler struct {
	wishlistRepo shopping.WishlistRepository
	productRepo  catalog.ProductRepository
	logger       *zap.Logger
}

// NewWishlistPruneHandler creates a new WishlistPruneHandler
func NewWishlistPruneHandler(wishlistRepo shopping.WishlistRepository, productRepo catalog.ProductRepository, logger *zap.Logger) *WishlistPruneHandler {
	return &WishlistPruneHandler{
		wishlistRepo: wishlistRepo,
		productRepo:  productRepo,
		logger:       logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *WishlistPruneHandler) EventTypes() []string {
	return []string{catalog.EventTypeAvailabilityChanged}
}

// Handle processes an AvailabilityChangedEvent
func (h *WishlistPruneHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	changed, ok := event.(*catalog.AvailabilityChangedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			catalog.EventTypeAvailabilityChanged, event.EventType())
	}
	if changed.Available {
		return nil
	}

	var productIDs []uuid.UUID
	switch changed.AggregateType() {
	case catalog.AggregateTypeProduct:
		productIDs = []uuid.UUID{changed.AggregateID()}
	case catalog.AggregateTypeCategory:
		ids, err := h.productsWhere(ctx, catalog.FilterCategoryID, changed.AggregateID())
		if err != nil {
			return err
		}
		productIDs = ids
	case catalog.AggregateTypeBrand:
		ids, err := h.productsWhere(ctx, catalog.FilterBrandID, changed.AggregateID())
		if err != nil {
			return err
		}
		productIDs = ids
	default:
		return nil
	}

	pruned := 0
	for _, productID := range productIDs {
		n, err := h.prune(ctx, productID)
		if err != nil {
			return err
		}
		pruned += n
	}

	h.logger.Info("pruned unavailable products from wishlists",
		zap.String("aggregate_type", changed.AggregateType()),
		zap.String("aggregate_id", changed.AggregateID().String()),
		zap.Int("products", len(productIDs)),
		zap.Int("wishlists", pruned))
	return nil
}

func (h *WishlistPruneHandler) prune(ctx context.Context, productID uuid.UUID) (int, error) {
	wishlists, err := h.wishlistRepo.FindContaining(ctx, productID)
	if err != nil {
		return 0, fmt.Errorf("find wishlists containing %s: %w", productID, err)
	}
	for i := range wishlists {
		if !wishlists[i].Remove(productID) {
			continue
		}
		if err := h.wishlistRepo.Save(ctx, &wishlists[i]); err != nil {
			return 0, fmt.Errorf("save wishlist %s: %w", wishlists[i].ID, err)
		}
	}
	return len(wishlists), nil
}

func (h *WishlistPruneHandler) productsWhere(ctx context.Context, key string, id uuid.UUID) ([]uuid.UUID, error) {
	filter := shared.DefaultFilter()
	filter.PageSize = 0
	filter.Filters[key] = id
	products, err := h.productRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find products by %s: %w", key, err)
	}
	ids := make([]uuid.UUID, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}
	return ids, nil
}

// Ensure WishlistPruneHandler implements shared.EventHandler
var _ shared.EventHandler = (*WishlistPruneHandler)(nil)
