package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSortOrder(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"asc", "ASC"},
		{" ASC ", "ASC"},
		{"desc", "DESC"},
		{"", "DESC"},
		{"asc; DROP TABLE carts", "DESC"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateSortOrder(tt.in))
		})
	}
}

func TestValidateSortField(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"allowed", "regular_price", "regular_price"},
		{"trimmed", " name ", "name"},
		{"empty", "", "created_at"},
		{"not whitelisted", "variant_skus", "created_at"},
		{"injection", "name; DELETE FROM products", "created_at"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateSortField(tt.in, ProductSortFields, "created_at"))
		})
	}
}
