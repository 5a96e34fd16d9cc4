package shopping

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shopping"
	"go.uber.org/zap"
)

// WishlistService manages saved products
type WishlistService struct {
	wishlistRepo shopping.WishlistRepository
	cartRepo     shopping.CartRepository
	lineages     catalog.LineageReader
	logger       *zap.Logger
}

// NewWishlistService creates a new WishlistService
func NewWishlistService(
	wishlistRepo shopping.WishlistRepository,
	cartRepo shopping.CartRepository,
	lineages catalog.LineageReader,
	logger *zap.Logger,
) *WishlistService {
	return &WishlistService{
		wishlistRepo: wishlistRepo,
		cartRepo:     cartRepo,
		lineages:     lineages,
		logger:       logger,
	}
}

// Add saves a product. Unavailable products and products already in the
// cart are rejected.
func (s *WishlistService) Add(ctx context.Context, userID, productID uuid.UUID) (int, error) {
	lineage, err := s.lineages.LoadLineage(ctx, productID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return 0, productUnavailable()
		}
		return 0, fmt.Errorf("load product: %w", err)
	}
	if !lineage.Available() {
		return 0, productUnavailable()
	}

	inCart, err := s.inCart(ctx, userID, productID)
	if err != nil {
		return 0, err
	}
	if inCart {
		return 0, shared.NewDomainError("ALREADY_IN_CART", "Product is already in your cart")
	}

	wishlist, err := s.load(ctx, userID)
	if err != nil {
		return 0, err
	}
	if err := wishlist.Add(productID); err != nil {
		return 0, err
	}
	if err := s.save(ctx, wishlist); err != nil {
		return 0, err
	}
	return wishlist.Count(), nil
}

// Remove drops a product from the wishlist
func (s *WishlistService) Remove(ctx context.Context, userID, productID uuid.UUID) (int, error) {
	wishlist, err := s.load(ctx, userID)
	if err != nil {
		return 0, err
	}
	if !wishlist.Remove(productID) {
		return wishlist.Count(), shared.NewDomainError("NOT_IN_WISHLIST", "Product is not in your wishlist")
	}
	if err := s.save(ctx, wishlist); err != nil {
		return 0, err
	}
	return wishlist.Count(), nil
}

// Toggle adds the product when absent and removes it when present
func (s *WishlistService) Toggle(ctx context.Context, userID, productID uuid.UUID) (*ToggleResult, error) {
	wishlist, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if wishlist.Contains(productID) {
		count, err := s.Remove(ctx, userID, productID)
		if err != nil {
			return nil, err
		}
		return &ToggleResult{Added: false, WishlistCount: count}, nil
	}
	count, err := s.Add(ctx, userID, productID)
	if err != nil {
		return nil, err
	}
	return &ToggleResult{Added: true, WishlistCount: count}, nil
}

// List returns the saved products with live price summaries
func (s *WishlistService) List(ctx context.Context, userID uuid.UUID) (*WishlistView, error) {
	wishlist, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	lineages, err := s.lineages.LoadLineages(ctx, wishlist.ProductIDs)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}

	cart, err := s.cartRepo.FindByUser(ctx, userID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, fmt.Errorf("load cart: %w", err)
	}

	view := &WishlistView{Items: make([]WishlistItemView, 0, wishlist.Count()), Count: wishlist.Count()}
	for _, id := range wishlist.ProductIDs {
		l, ok := lineages[id]
		if !ok {
			continue
		}
		view.Items = append(view.Items, WishlistItemView{
			ProductID: id,
			Name:      l.Product.Name,
			Slug:      l.Product.Slug,
			Available: l.Available(),
			InCart:    cart != nil && cart.Contains(id),
			Pricing:   l.PriceAll().Summary,
		})
	}
	return view, nil
}

func (s *WishlistService) inCart(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	cart, err := s.cartRepo.FindByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("load cart: %w", err)
	}
	return cart.Contains(productID), nil
}

func (s *WishlistService) load(ctx context.Context, userID uuid.UUID) (*shopping.Wishlist, error) {
	wishlist, err := s.wishlistRepo.FindByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shopping.NewWishlist(userID), nil
		}
		return nil, fmt.Errorf("load wishlist: %w", err)
	}
	return wishlist, nil
}

func (s *WishlistService) save(ctx context.Context, wishlist *shopping.Wishlist) error {
	if err := s.wishlistRepo.Save(ctx, wishlist); err != nil {
		s.logger.Error("failed to save wishlist", zap.String("user_id", wishlist.UserID.String()), zap.Error(err))
		return fmt.Errorf("save wishlist: %w", err)
	}
	s.logger.Info("wishlist updated",
		zap.String("user_id", wishlist.UserID.String()),
		zap.Int("count", wishlist.Count()))
	return nil
}
