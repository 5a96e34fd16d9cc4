package persistence

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// newTestDB opens an in-memory sqlite database with the storefront tables.
// A single connection keeps every statement on the same memory database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	statements := []string{`
		CREATE TABLE products (
			id TEXT PRIMARY KEY,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			version INTEGER NOT NULL DEFAULT 1,
			is_active INTEGER NOT NULL DEFAULT 1,
			is_deleted INTEGER NOT NULL DEFAULT 0,
			deleted_at DATETIME,
			name TEXT NOT NULL,
			slug TEXT NOT NULL,
			description TEXT,
			regular_price TEXT NOT NULL,
			product_offer TEXT NOT NULL DEFAULT '0',
			category_id TEXT NOT NULL,
			brand_id TEXT NOT NULL,
			base_sku TEXT UNIQUE,
			variant_skus TEXT NOT NULL DEFAULT '',
			variants TEXT,
			total_stock INTEGER NOT NULL DEFAULT 0
		)`, `
		CREATE TABLE categories (
			id TEXT PRIMARY KEY,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			version INTEGER NOT NULL DEFAULT 1,
			is_active INTEGER NOT NULL DEFAULT 1,
			is_deleted INTEGER NOT NULL DEFAULT 0,
			deleted_at DATETIME,
			name TEXT NOT NULL UNIQUE,
			slug TEXT NOT NULL,
			description TEXT,
			category_offer TEXT NOT NULL DEFAULT '0'
		)`, `
		CREATE TABLE brands (
			id TEXT PRIMARY KEY,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			version INTEGER NOT NULL DEFAULT 1,
			is_active INTEGER NOT NULL DEFAULT 1,
			is_deleted INTEGER NOT NULL DEFAULT 0,
			deleted_at DATETIME,
			name TEXT NOT NULL UNIQUE,
			brand_offer TEXT NOT NULL DEFAULT '0'
		)`, `
		CREATE TABLE carts (
			id TEXT PRIMARY KEY,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			version INTEGER NOT NULL DEFAULT 1,
			user_id TEXT NOT NULL UNIQUE,
			items TEXT
		)`, `
		CREATE TABLE wishlists (
			id TEXT PRIMARY KEY,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			version INTEGER NOT NULL DEFAULT 1,
			user_id TEXT NOT NULL UNIQUE
		)`, `
		CREATE TABLE wishlist_items (
			wishlist_id TEXT NOT NULL REFERENCES wishlists(id) ON DELETE CASCADE,
			product_id TEXT NOT NULL,
			position INTEGER NOT NULL,
			PRIMARY KEY (wishlist_id, product_id)
		)`,
	}
	for _, stmt := range statements {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}
