package handler

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	shoppingapp "github.com/storefront/backend/internal/application/shopping"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
)

// CartService is the cart surface the endpoints need
type CartService interface {
	Load(ctx context.Context, userID uuid.UUID) (*shoppingapp.CartView, error)
	Add(ctx context.Context, userID uuid.UUID, req shoppingapp.AddItemRequest) (*shoppingapp.AddItemResult, error)
	UpdateQuantity(ctx context.Context, userID uuid.UUID, req shoppingapp.UpdateQuantityRequest) (*shoppingapp.UpdateQuantityResult, error)
	Remove(ctx context.Context, userID uuid.UUID, req shoppingapp.RemoveItemRequest) (*shoppingapp.RemoveItemResult, error)
	Clear(ctx context.Context, userID uuid.UUID) error
	RemoveOutOfStock(ctx context.Context, userID uuid.UUID) (*shoppingapp.PruneResult, error)
	Validate(ctx context.Context, userID uuid.UUID) (*shoppingapp.ValidationResult, error)
	Checkout(ctx context.Context, userID uuid.UUID) (*shoppingapp.CartView, error)
}

// ValidationResponse is the body of GET /cart/validate
type ValidationResponse struct {
	Valid       bool                       `json:"valid"`
	Available   []shoppingapp.CartLineView `json:"available"`
	Unavailable []shoppingapp.CartLineView `json:"unavailable"`
}

// CartHandler handles /cart for the authenticated shopper
type CartHandler struct {
	BaseHandler
	carts CartService
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(carts CartService) *CartHandler {
	return &CartHandler{carts: carts}
}

// Get handles GET /cart
func (h *CartHandler) Get(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	view, err := h.carts.Load(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, view)
}

// AddItem handles POST /cart/items
func (h *CartHandler) AddItem(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	var req shoppingapp.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	result, err := h.carts.Add(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// UpdateItem handles PATCH /cart/items
func (h *CartHandler) UpdateItem(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	var req shoppingapp.UpdateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	result, err := h.carts.UpdateQuantity(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// RemoveItem handles DELETE /cart/items
func (h *CartHandler) RemoveItem(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	var req shoppingapp.RemoveItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	result, err := h.carts.Remove(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Clear handles DELETE /cart
func (h *CartHandler) Clear(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	if err := h.carts.Clear(c.Request.Context(), userID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Prune handles POST /cart/prune
func (h *CartHandler) Prune(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	result, err := h.carts.RemoveOutOfStock(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Validate handles GET /cart/validate
func (h *CartHandler) Validate(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	result, err := h.carts.Validate(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ValidationResponse{
		Valid:       result.Valid(),
		Available:   result.Available,
		Unavailable: result.Unavailable,
	})
}

// Checkout handles POST /cart/checkout. A cart with unavailable lines is
// rejected with the priced cart attached so the shopper can see which.
func (h *CartHandler) Checkout(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	view, err := h.carts.Checkout(c.Request.Context(), userID)
	if err != nil {
		var domainErr *shared.DomainError
		if view != nil && errors.As(err, &domainErr) {
			resp := dto.NewErrorResponseWithRequestID(domainErr.Code, domainErr.Message, middleware.GetRequestID(c))
			resp.Data = view
			c.JSON(dto.GetHTTPStatus(domainErr.Code), resp)
			return
		}
		h.HandleError(c, err)
		return
	}
	h.Success(c, view)
}
