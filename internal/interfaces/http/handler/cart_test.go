package handler

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	shoppingapp "github.com/storefront/backend/internal/application/shopping"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCartHandler_AddItem(t *testing.T) {
	userID := uuid.New()
	productID := uuid.New()

	t.Run("adds and reports counts", func(t *testing.T) {
		svc := new(MockCartService)
		h := NewCartHandler(svc)
		req := shoppingapp.AddItemRequest{ProductID: productID, Size: "M", Quantity: 2}
		svc.On("Add", mock.Anything, userID, req).
			Return(&shoppingapp.AddItemResult{CartCount: 1, WishlistCount: 0}, nil)

		w := serve(http.MethodPost, "/cart/items", "/cart/items", req, &userID, h.AddItem)

		assert.Equal(t, http.StatusOK, w.Code)
		resp := decode(t, w)
		assert.True(t, resp.Success)
		assert.Equal(t, float64(1), resp.Data.(map[string]any)["cart_count"])
		svc.AssertExpectations(t)
	})

	t.Run("quantity above the per-line cap is rejected before the service", func(t *testing.T) {
		svc := new(MockCartService)
		h := NewCartHandler(svc)

		w := serve(http.MethodPost, "/cart/items", "/cart/items",
			map[string]any{"product_id": productID, "size": "M", "quantity": 6}, &userID, h.AddItem)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "Add", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("stock errors are 422 with the concrete message", func(t *testing.T) {
		svc := new(MockCartService)
		h := NewCartHandler(svc)
		req := shoppingapp.AddItemRequest{ProductID: productID, Size: "M", Quantity: 4}
		svc.On("Add", mock.Anything, userID, req).
			Return(nil, shared.NewDomainError("INSUFFICIENT_STOCK", "Only 3 items available in stock"))

		w := serve(http.MethodPost, "/cart/items", "/cart/items", req, &userID, h.AddItem)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		resp := decode(t, w)
		assert.Equal(t, "INSUFFICIENT_STOCK", resp.Error.Code)
		assert.Equal(t, "Only 3 items available in stock", resp.Error.Message)
	})

	t.Run("anonymous caller", func(t *testing.T) {
		h := NewCartHandler(new(MockCartService))
		w := serve(http.MethodPost, "/cart/items", "/cart/items",
			shoppingapp.AddItemRequest{ProductID: productID, Quantity: 1}, nil, h.AddItem)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestCartHandler_UpdateAndRemove(t *testing.T) {
	userID := uuid.New()
	productID := uuid.New()

	svc := new(MockCartService)
	h := NewCartHandler(svc)

	update := shoppingapp.UpdateQuantityRequest{ProductID: productID, Size: "L", Quantity: 3}
	svc.On("UpdateQuantity", mock.Anything, userID, update).
		Return(&shoppingapp.UpdateQuantityResult{CartCount: 1, ItemTotal: decimal.RequireFromString("270")}, nil)
	remove := shoppingapp.RemoveItemRequest{ProductID: productID, Size: "S"}
	svc.On("Remove", mock.Anything, userID, remove).
		Return(nil, shared.NewDomainError("CART_ITEM_NOT_FOUND", "Item not found in cart"))

	w := serve(http.MethodPatch, "/cart/items", "/cart/items", update, &userID, h.UpdateItem)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "270", decode(t, w).Data.(map[string]any)["item_total"])

	w = serve(http.MethodDelete, "/cart/items", "/cart/items", remove, &userID, h.RemoveItem)
	assert.Equal(t, http.StatusNotFound, w.Code)

	svc.AssertExpectations(t)
}

func TestCartHandler_Validate(t *testing.T) {
	userID := uuid.New()
	svc := new(MockCartService)
	h := NewCartHandler(svc)

	svc.On("Validate", mock.Anything, userID).Return(&shoppingapp.ValidationResult{
		Available:   []shoppingapp.CartLineView{{Size: "M", Available: true}},
		Unavailable: []shoppingapp.CartLineView{{Size: "L", Reason: "OUT_OF_STOCK"}},
	}, nil)

	w := serve(http.MethodGet, "/cart/validate", "/cart/validate", nil, &userID, h.Validate)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w).Data.(map[string]any)
	assert.Equal(t, false, data["valid"])
	assert.Len(t, data["unavailable"], 1)
}

func TestCartHandler_Checkout(t *testing.T) {
	userID := uuid.New()

	t.Run("unavailable lines attach the cart", func(t *testing.T) {
		svc := new(MockCartService)
		h := NewCartHandler(svc)
		view := &shoppingapp.CartView{UserID: userID, HasUnavailable: true}
		svc.On("Checkout", mock.Anything, userID).
			Return(view, shared.NewDomainError("CART_HAS_UNAVAILABLE_ITEMS", "1 items in your cart are no longer available"))

		w := serve(http.MethodPost, "/cart/checkout", "/cart/checkout", nil, &userID, h.Checkout)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		resp := decode(t, w)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "CART_HAS_UNAVAILABLE_ITEMS", resp.Error.Code)
		assert.Equal(t, true, resp.Data.(map[string]any)["has_unavailable"])
	})

	t.Run("empty cart", func(t *testing.T) {
		svc := new(MockCartService)
		h := NewCartHandler(svc)
		svc.On("Checkout", mock.Anything, userID).
			Return(nil, shared.NewDomainError("CART_EMPTY", "Your cart is empty"))

		w := serve(http.MethodPost, "/cart/checkout", "/cart/checkout", nil, &userID, h.Checkout)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Nil(t, decode(t, w).Data)
	})
}

func TestCartHandler_ClearAndPrune(t *testing.T) {
	userID := uuid.New()
	svc := new(MockCartService)
	h := NewCartHandler(svc)
	svc.On("Clear", mock.Anything, userID).Return(nil)
	svc.On("RemoveOutOfStock", mock.Anything, userID).Return(&shoppingapp.PruneResult{Removed: 2, CartCount: 1}, nil)

	w := serve(http.MethodDelete, "/cart", "/cart", nil, &userID, h.Clear)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = serve(http.MethodPost, "/cart/prune", "/cart/prune", nil, &userID, h.Prune)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(2), decode(t, w).Data.(map[string]any)["removed"])

	svc.AssertExpectations(t)
}
