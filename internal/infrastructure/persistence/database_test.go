package persistence

import (
	"errors"
	"testing"

	"github.com/storefront/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestTranslateError(t *testing.T) {
	assert.NoError(t, translateError(nil))
	assert.ErrorIs(t, translateError(gorm.ErrRecordNotFound), shared.ErrNotFound)

	other := errors.New("connection reset")
	assert.Same(t, other, translateError(other))
}

func TestDatabase_StatsAndClose(t *testing.T) {
	db := newTestDB(t)
	d := &Database{DB: db}

	assert.NoError(t, d.Ping())
	stats, err := d.Stats()
	assert.NoError(t, err)
	assert.GreaterOrEqual(t, stats.OpenConnections, 0)
	assert.NoError(t, d.Close())
}
