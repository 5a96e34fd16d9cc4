package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	shoppingapp "github.com/storefront/backend/internal/application/shopping"
)

// WishlistService is the wishlist surface the endpoints need
type WishlistService interface {
	List(ctx context.Context, userID uuid.UUID) (*shoppingapp.WishlistView, error)
	Add(ctx context.Context, userID, productID uuid.UUID) (int, error)
	Remove(ctx context.Context, userID, productID uuid.UUID) (int, error)
	Toggle(ctx context.Context, userID, productID uuid.UUID) (*shoppingapp.ToggleResult, error)
}

// WishlistCount is returned by wishlist writes
type WishlistCount struct {
	WishlistCount int `json:"wishlist_count"`
}

// WishlistHandler handles /wishlist for the authenticated shopper
type WishlistHandler struct {
	BaseHandler
	wishlists WishlistService
}

// NewWishlistHandler creates a new WishlistHandler
func NewWishlistHandler(wishlists WishlistService) *WishlistHandler {
	return &WishlistHandler{wishlists: wishlists}
}

// Get handles GET /wishlist
func (h *WishlistHandler) Get(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	view, err := h.wishlists.List(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, view)
}

// Add handles POST /wishlist/:productId
func (h *WishlistHandler) Add(c *gin.Context) {
	h.write(c, h.wishlists.Add)
}

// Remove handles DELETE /wishlist/:productId
func (h *WishlistHandler) Remove(c *gin.Context) {
	h.write(c, h.wishlists.Remove)
}

// Toggle handles POST /wishlist/:productId/toggle
func (h *WishlistHandler) Toggle(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	productID, ok := h.pathUUID(c, "productId")
	if !ok {
		return
	}
	result, err := h.wishlists.Toggle(c.Request.Context(), userID, productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

func (h *WishlistHandler) write(c *gin.Context, fn func(ctx context.Context, userID, productID uuid.UUID) (int, error)) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	productID, ok := h.pathUUID(c, "productId")
	if !ok {
		return
	}
	count, err := fn(c.Request.Context(), userID, productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, WishlistCount{WishlistCount: count})
}
