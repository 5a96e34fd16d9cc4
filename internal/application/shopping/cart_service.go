package shopping

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/pricing"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shopping"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// CartConfig tunes cart write concurrency
type CartConfig struct {
	// LockTTL bounds how long a crashed holder can block a user's cart
	LockTTL time.Duration
	// MaxAttempts is the number of read-check-write rounds before a version
	// conflict is returned to the caller
	MaxAttempts int
}

// DefaultCartConfig returns the default cart configuration
func DefaultCartConfig() CartConfig {
	return CartConfig{
		LockTTL:     5 * time.Second,
		MaxAttempts: 3,
	}
}

// CartService keeps each user's cart consistent with the live catalog.
// Every mutation runs under the user's cart lock and is written back
// conditional on the version it read.
type CartService struct {
	cartRepo     shopping.CartRepository
	wishlistRepo shopping.WishlistRepository
	lineages     catalog.LineageReader
	locker       shopping.CartLocker
	config       CartConfig
	metrics      *telemetry.CartMetrics
	logger       *zap.Logger
}

// NewCartService creates a new CartService
func NewCartService(
	cartRepo shopping.CartRepository,
	wishlistRepo shopping.WishlistRepository,
	lineages catalog.LineageReader,
	locker shopping.CartLocker,
	config CartConfig,
	logger *zap.Logger,
) *CartService {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = DefaultCartConfig().MaxAttempts
	}
	if config.LockTTL <= 0 {
		config.LockTTL = DefaultCartConfig().LockTTL
	}
	return &CartService{
		cartRepo:     cartRepo,
		wishlistRepo: wishlistRepo,
		lineages:     lineages,
		locker:       locker,
		config:       config,
		logger:       logger,
	}
}

// WithMetrics records cart operations on m
func (s *CartService) WithMetrics(m *telemetry.CartMetrics) *CartService {
	s.metrics = m
	return s
}

// Add puts units of a product size into the cart and drops the product from
// the wishlist.
func (s *CartService) Add(ctx context.Context, userID uuid.UUID, req AddItemRequest) (*AddItemResult, error) {
	if err := shopping.ValidateQuantity(req.Quantity); err != nil {
		return nil, err
	}

	cart, err := s.mutate(ctx, userID, "add", func(ctx context.Context, cart *shopping.Cart) error {
		lineage, err := s.loadAvailable(ctx, req.ProductID)
		if err != nil {
			return err
		}
		variant, ok := lineage.Product.Variant(req.Size)
		if !ok {
			return variantNotFound(req.Size)
		}
		price := lineage.Price(variant)
		return cart.Add(req.ProductID, variant.Size, req.Quantity, variant.Stock, price.SellPrice)
	})
	if err != nil {
		return nil, err
	}

	return &AddItemResult{
		CartCount:     cart.ItemCount(),
		WishlistCount: s.dropFromWishlist(ctx, userID, req.ProductID),
	}, nil
}

// UpdateQuantity sets the quantity of an existing line. The product must
// still be available; stock is only checked when the quantity grows.
func (s *CartService) UpdateQuantity(ctx context.Context, userID uuid.UUID, req UpdateQuantityRequest) (*UpdateQuantityResult, error) {
	if err := shopping.ValidateQuantity(req.Quantity); err != nil {
		return nil, err
	}

	var itemTotal decimal.Decimal
	cart, err := s.mutate(ctx, userID, "update_quantity", func(ctx context.Context, cart *shopping.Cart) error {
		item, ok := cart.Find(req.ProductID, req.Size)
		if !ok {
			return shared.NewDomainError("CART_ITEM_NOT_FOUND", "Item not found in cart")
		}

		unitPrice := item.Price
		stock := 0
		available := false
		lineage, err := s.lineages.LoadLineage(ctx, req.ProductID)
		switch {
		case err == nil:
			available = lineage.Available()
			if v, ok := lineage.Product.Variant(item.Size); ok {
				unitPrice = lineage.Price(v).SellPrice
				stock = v.Stock
			}
		case errors.Is(err, shared.ErrNotFound):
		default:
			return fmt.Errorf("load product: %w", err)
		}

		if !available {
			return productUnavailable()
		}
		if err := cart.SetQuantity(req.ProductID, item.Size, req.Quantity, stock, unitPrice); err != nil {
			return err
		}
		itemTotal = unitPrice.Mul(decimal.NewFromInt(int64(req.Quantity)))
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &UpdateQuantityResult{CartCount: cart.ItemCount(), ItemTotal: itemTotal}, nil
}

// Remove deletes a line from the cart
func (s *CartService) Remove(ctx context.Context, userID uuid.UUID, req RemoveItemRequest) (*RemoveItemResult, error) {
	cart, err := s.mutate(ctx, userID, "remove", func(_ context.Context, cart *shopping.Cart) error {
		return cart.Remove(req.ProductID, req.Size)
	})
	if err != nil {
		return nil, err
	}
	return &RemoveItemResult{CartCount: cart.ItemCount()}, nil
}

// Clear empties the cart
func (s *CartService) Clear(ctx context.Context, userID uuid.UUID) error {
	_, err := s.mutate(ctx, userID, "clear", func(_ context.Context, cart *shopping.Cart) error {
		cart.Clear()
		return nil
	})
	return err
}

// RemoveOutOfStock evicts every line that fails the availability predicate
// or whose quantity exceeds the live stock.
func (s *CartService) RemoveOutOfStock(ctx context.Context, userID uuid.UUID) (*PruneResult, error) {
	removed := 0
	cart, err := s.mutate(ctx, userID, "remove_out_of_stock", func(ctx context.Context, cart *shopping.Cart) error {
		lineages, err := s.lineages.LoadLineages(ctx, productIDs(cart))
		if err != nil {
			return fmt.Errorf("load products: %w", err)
		}
		removed = cart.RemoveWhere(func(item shopping.CartItem) bool {
			return lineages[item.ProductID].CheckQuantity(item.Size, item.Quantity) != catalog.ReasonNone
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &PruneResult{Removed: removed, CartCount: cart.ItemCount()}, nil
}

// Validate partitions the cart into purchasable and unavailable lines. The
// cart is not modified.
func (s *CartService) Validate(ctx context.Context, userID uuid.UUID) (*ValidationResult, error) {
	cart, _, err := s.loadCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	view, err := s.price(ctx, cart)
	if err != nil {
		return nil, err
	}

	result := &ValidationResult{
		Available:   []CartLineView{},
		Unavailable: []CartLineView{},
	}
	for _, line := range view.Items {
		if line.Available {
			result.Available = append(result.Available, line)
		} else {
			result.Unavailable = append(result.Unavailable, line)
		}
	}
	return result, nil
}

// Load returns the cart priced from the live catalog. Stored display
// snapshots that drifted are rewritten.
func (s *CartService) Load(ctx context.Context, userID uuid.UUID) (*CartView, error) {
	cart, _, err := s.loadCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	view, err := s.price(ctx, cart)
	if err != nil {
		return nil, err
	}

	if snapshotsStale(cart, view) {
		if _, err := s.mutate(ctx, userID, "refresh_snapshots", s.refreshSnapshots); err != nil {
			s.logger.Warn("failed to refresh cart price snapshots",
				zap.String("user_id", userID.String()),
				zap.Error(err))
		}
	}
	return view, nil
}

// Checkout re-validates every line against live stock and returns the
// priced cart. Nothing is reserved or decremented.
func (s *CartService) Checkout(ctx context.Context, userID uuid.UUID) (_ *CartView, err error) {
	start := time.Now()
	ctx, span := telemetry.StartServiceSpan(ctx, "cart", "checkout",
		attribute.String("user_id", userID.String()))
	defer func() {
		s.metrics.RecordOperation(ctx, "checkout", time.Since(start), err)
		telemetry.End(span, err)
	}()

	cart, _, err := s.loadCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if cart.ItemCount() == 0 {
		return nil, shared.NewDomainError("CART_EMPTY", "Your cart is empty")
	}
	view, err := s.price(ctx, cart)
	if err != nil {
		return nil, err
	}
	if view.HasUnavailable {
		unavailable := 0
		for _, line := range view.Items {
			if !line.Available {
				unavailable++
			}
		}
		return view, shared.NewDomainError("CART_HAS_UNAVAILABLE_ITEMS", fmt.Sprintf(
			"%d items in your cart are no longer available", unavailable))
	}
	return view, nil
}

// mutate runs change against the user's cart under the cart lock and writes
// the result back conditional on the version that was read. A version
// conflict restarts the whole read-check-write up to MaxAttempts times.
func (s *CartService) mutate(
	ctx context.Context,
	userID uuid.UUID,
	op string,
	change func(context.Context, *shopping.Cart) error,
) (_ *shopping.Cart, err error) {
	start := time.Now()
	ctx, span := telemetry.StartServiceSpan(ctx, "cart", op,
		attribute.String("user_id", userID.String()))
	defer func() {
		s.metrics.RecordOperation(ctx, op, time.Since(start), err)
		telemetry.End(span, err)
	}()

	unlock, err := s.locker.Lock(ctx, userID, s.config.LockTTL)
	if err != nil {
		return nil, fmt.Errorf("lock cart: %w", err)
	}
	defer unlock()

	for attempt := 1; ; attempt++ {
		cart, isNew, err := s.loadCart(ctx, userID)
		if err != nil {
			return nil, err
		}
		expectedVersion := cart.GetVersion()

		if err := change(ctx, cart); err != nil {
			s.logger.Debug("cart operation rejected",
				zap.String("op", op),
				zap.String("user_id", userID.String()),
				zap.Error(err))
			return nil, err
		}
		if cart.GetVersion() == expectedVersion {
			return cart, nil
		}

		if isNew {
			err = s.cartRepo.Create(ctx, cart)
		} else {
			err = s.cartRepo.SaveWithLock(ctx, cart, expectedVersion)
		}
		if err == nil {
			s.logger.Info("cart updated",
				zap.String("op", op),
				zap.String("user_id", userID.String()),
				zap.Int("items", cart.ItemCount()),
				zap.Int("version", cart.GetVersion()))
			return cart, nil
		}

		if errors.Is(err, shared.ErrConcurrencyConflict) && attempt < s.config.MaxAttempts {
			span.AddEvent("version_conflict", trace.WithAttributes(attribute.Int("attempt", attempt)))
			s.metrics.RecordConflict(ctx, op)
			s.logger.Debug("cart version conflict, retrying",
				zap.String("op", op),
				zap.String("user_id", userID.String()),
				zap.Int("attempt", attempt))
			continue
		}
		if shared.ErrorCode(err) != "" {
			return nil, err
		}
		s.logger.Error("failed to save cart",
			zap.String("op", op),
			zap.String("user_id", userID.String()),
			zap.Error(err))
		return nil, fmt.Errorf("save cart: %w", err)
	}
}

func (s *CartService) refreshSnapshots(ctx context.Context, cart *shopping.Cart) error {
	lineages, err := s.lineages.LoadLineages(ctx, productIDs(cart))
	if err != nil {
		return fmt.Errorf("load products: %w", err)
	}
	for _, item := range cart.Items {
		l := lineages[item.ProductID]
		if l.Product == nil {
			continue
		}
		if v, ok := l.Product.Variant(item.Size); ok {
			cart.RefreshSnapshot(item.ProductID, item.Size, l.Price(v).SellPrice)
		}
	}
	return nil
}

func (s *CartService) loadCart(ctx context.Context, userID uuid.UUID) (*shopping.Cart, bool, error) {
	cart, err := s.cartRepo.FindByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shopping.NewCart(userID), true, nil
		}
		return nil, false, fmt.Errorf("load cart: %w", err)
	}
	return cart, false, nil
}

func (s *CartService) loadAvailable(ctx context.Context, productID uuid.UUID) (catalog.Lineage, error) {
	lineage, err := s.lineages.LoadLineage(ctx, productID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return catalog.Lineage{}, productUnavailable()
		}
		return catalog.Lineage{}, fmt.Errorf("load product: %w", err)
	}
	if !lineage.Available() {
		return catalog.Lineage{}, productUnavailable()
	}
	return lineage, nil
}

// price builds the shopper view from the live catalog
func (s *CartService) price(ctx context.Context, cart *shopping.Cart) (*CartView, error) {
	lineages, err := s.lineages.LoadLineages(ctx, productIDs(cart))
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}

	view := &CartView{
		UserID:        cart.UserID,
		Items:         make([]CartLineView, 0, cart.ItemCount()),
		ItemCount:     cart.ItemCount(),
		Subtotal:      decimal.Zero,
		TotalDiscount: decimal.Zero,
		GrandTotal:    decimal.Zero,
	}
	for _, item := range cart.Items {
		line := lineView(item, lineages[item.ProductID])
		view.Items = append(view.Items, line)
		if !line.Available {
			view.HasUnavailable = true
			continue
		}
		qty := decimal.NewFromInt(int64(line.Quantity))
		view.Subtotal = view.Subtotal.Add(line.BasePrice.Mul(qty))
		view.TotalDiscount = view.TotalDiscount.Add(line.LineDiscount)
		view.GrandTotal = view.GrandTotal.Add(line.LineTotal)
	}
	return view, nil
}

func (s *CartService) dropFromWishlist(ctx context.Context, userID, productID uuid.UUID) int {
	wishlist, err := s.wishlistRepo.FindByUser(ctx, userID)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			s.logger.Error("failed to load wishlist", zap.String("user_id", userID.String()), zap.Error(err))
		}
		return 0
	}
	if wishlist.Remove(productID) {
		if err := s.wishlistRepo.Save(ctx, wishlist); err != nil {
			s.logger.Error("failed to remove carted product from wishlist",
				zap.String("user_id", userID.String()),
				zap.String("product_id", productID.String()),
				zap.Error(err))
		}
	}
	return wishlist.Count()
}

func lineView(item shopping.CartItem, l catalog.Lineage) CartLineView {
	line := CartLineView{
		ProductID:      item.ProductID,
		Size:           item.Size,
		Quantity:       item.Quantity,
		BasePrice:      item.Price,
		UnitPrice:      item.Price,
		EffectiveOffer: decimal.Zero,
		OfferSource:    pricing.TierNone,
		LineTotal:      item.TotalPrice,
		LineDiscount:   decimal.Zero,
	}

	if l.Product != nil {
		line.Name = l.Product.Name
		line.Slug = l.Product.Slug
		if v, ok := l.Product.Variant(item.Size); ok {
			price := l.Price(v)
			line.SKU = v.SKU
			line.Stock = v.Stock
			line.BasePrice = price.BasePrice
			line.UnitPrice = price.SellPrice
			line.EffectiveOffer = price.EffectiveOffer
			line.OfferSource = price.Source
			line.LineTotal = price.LineTotal(item.Quantity)
			line.LineDiscount = price.Discount.Mul(decimal.NewFromInt(int64(item.Quantity)))
		}
	}

	line.Reason = l.CheckQuantity(item.Size, item.Quantity)
	line.Available = line.Reason == catalog.ReasonNone
	return line
}

func snapshotsStale(cart *shopping.Cart, view *CartView) bool {
	for i, item := range cart.Items {
		line := view.Items[i]
		if !item.Price.Equal(line.UnitPrice) || !item.TotalPrice.Equal(line.LineTotal) {
			return true
		}
	}
	return false
}

func productIDs(cart *shopping.Cart) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(cart.Items))
	for _, item := range cart.Items {
		ids = append(ids, item.ProductID)
	}
	return ids
}

func productUnavailable() error {
	return shared.NewDomainError("PRODUCT_UNAVAILABLE", "This product is currently unavailable")
}

func variantNotFound(size string) error {
	if size == "" {
		return shared.NewDomainError("VARIANT_NOT_FOUND", "Please select a size")
	}
	return shared.NewDomainError("VARIANT_NOT_FOUND", fmt.Sprintf("Size %s is not available for this product", size))
}
