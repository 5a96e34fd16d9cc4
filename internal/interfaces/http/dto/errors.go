package dto

import (
	"net/http"
	"strings"
)

// Transport error codes. Domain errors keep their own codes in responses.
const (
	ErrCodeInternal        = "INTERNAL_ERROR"
	ErrCodeValidation      = "VALIDATION_ERROR"
	ErrCodeBadRequest      = "BAD_REQUEST"
	ErrCodeUnauthorized    = "UNAUTHORIZED"
	ErrCodeForbidden       = "FORBIDDEN"
	ErrCodeTokenExpired    = "TOKEN_EXPIRED"
	ErrCodeTokenInvalid    = "INVALID_TOKEN"
	ErrCodeRequestTooLarge = "REQUEST_TOO_LARGE"
	ErrCodeRouteNotFound   = "ROUTE_NOT_FOUND"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	// Transport
	ErrCodeInternal:        http.StatusInternalServerError,
	ErrCodeValidation:      http.StatusBadRequest,
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeUnauthorized:    http.StatusUnauthorized,
	ErrCodeForbidden:       http.StatusForbidden,
	ErrCodeTokenExpired:    http.StatusUnauthorized,
	ErrCodeTokenInvalid:    http.StatusUnauthorized,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,
	ErrCodeRouteNotFound:   http.StatusNotFound,

	// Resources
	"NOT_FOUND":            http.StatusNotFound,
	"CART_ITEM_NOT_FOUND":  http.StatusNotFound,
	"VARIANT_NOT_FOUND":    http.StatusNotFound,
	"ALREADY_EXISTS":       http.StatusConflict,
	"CONCURRENCY_CONFLICT": http.StatusConflict,

	// Availability and cart rules
	"PRODUCT_UNAVAILABLE":        http.StatusUnprocessableEntity,
	"OUT_OF_STOCK":               http.StatusUnprocessableEntity,
	"INSUFFICIENT_STOCK":         http.StatusUnprocessableEntity,
	"CART_QUANTITY_LIMIT":        http.StatusUnprocessableEntity,
	"CART_HAS_UNAVAILABLE_ITEMS": http.StatusUnprocessableEntity,
	"CART_EMPTY":                 http.StatusUnprocessableEntity,
	"ALREADY_IN_CART":            http.StatusUnprocessableEntity,
	"INVALID_STATE":              http.StatusUnprocessableEntity,
	"SKU_IMMUTABLE":              http.StatusUnprocessableEntity,
	"CANNOT_LIST":                http.StatusUnprocessableEntity,

	// Identifier generation is a server fault
	"SKU_GENERATION_FAILED":   http.StatusInternalServerError,
	"SKU_PRECONDITION_FAILED": http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status code for an error code. Codes not
// in the table fall back on their shape: INVALID_* and DUPLICATE_* are
// input errors, *_NOT_FOUND is 404, ALREADY_*, CANNOT_* and NOT_* are
// state conflicts. Anything else is 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	switch {
	case strings.HasPrefix(code, "INVALID_"), strings.HasPrefix(code, "DUPLICATE_"):
		return http.StatusBadRequest
	case strings.HasSuffix(code, "_NOT_FOUND"):
		return http.StatusNotFound
	case strings.HasPrefix(code, "ALREADY_"), strings.HasPrefix(code, "CANNOT_"), strings.HasPrefix(code, "NOT_"):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
