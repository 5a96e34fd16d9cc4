package dto

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{ErrCodeInternal, http.StatusInternalServerError},
		{ErrCodeValidation, http.StatusBadRequest},
		{ErrCodeUnauthorized, http.StatusUnauthorized},
		{ErrCodeTokenExpired, http.StatusUnauthorized},
		{ErrCodeForbidden, http.StatusForbidden},
		{"NOT_FOUND", http.StatusNotFound},
		{"CART_ITEM_NOT_FOUND", http.StatusNotFound},
		{"VARIANT_NOT_FOUND", http.StatusNotFound},
		{"CONCURRENCY_CONFLICT", http.StatusConflict},
		{"ALREADY_EXISTS", http.StatusConflict},
		{"INSUFFICIENT_STOCK", http.StatusUnprocessableEntity},
		{"CART_QUANTITY_LIMIT", http.StatusUnprocessableEntity},
		{"OUT_OF_STOCK", http.StatusUnprocessableEntity},
		{"PRODUCT_UNAVAILABLE", http.StatusUnprocessableEntity},
		{"CART_HAS_UNAVAILABLE_ITEMS", http.StatusUnprocessableEntity},
		{"SKU_GENERATION_FAILED", http.StatusInternalServerError},
		{"SKU_PRECONDITION_FAILED", http.StatusInternalServerError},
		// shape fallbacks
		{"INVALID_QUANTITY", http.StatusBadRequest},
		{"INVALID_OFFER", http.StatusBadRequest},
		{"DUPLICATE_SIZE", http.StatusBadRequest},
		{"PRODUCT_UNIT_NOT_FOUND", http.StatusNotFound},
		{"ALREADY_LISTED", http.StatusUnprocessableEntity},
		{"CANNOT_UPDATE_DELETED", http.StatusUnprocessableEntity},
		{"NOT_DELETED", http.StatusUnprocessableEntity},
		{"UNKNOWN_CODE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestNewSuccessResponseWithMeta(t *testing.T) {
	resp := NewSuccessResponseWithMeta([]int{1, 2}, 21, 2, 10)
	require.NotNil(t, resp.Meta)
	assert.True(t, resp.Success)
	assert.Equal(t, 3, resp.Meta.TotalPages)

	unpaged := NewSuccessResponseWithMeta(nil, 5, 1, 0)
	assert.Equal(t, 0, unpaged.Meta.TotalPages)
}

func TestErrorResponse_JSONShape(t *testing.T) {
	resp := NewValidationErrorResponse("Request validation failed", "req-1", []ValidationDetail{
		{Field: "quantity", Message: "Must be at most 5"},
	})

	raw, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, false, decoded["success"])
	assert.NotContains(t, decoded, "data")

	errInfo := decoded["error"].(map[string]any)
	assert.Equal(t, ErrCodeValidation, errInfo["code"])
	assert.Equal(t, "req-1", errInfo["request_id"])
	assert.Len(t, errInfo["details"], 1)
}
