package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandlerRegistry(t *testing.T) {
	r := NewHandlerRegistry()
	offers := newTestHandler()
	both := newTestHandler()
	all := newTestHandler()

	r.Register(offers, "OfferChanged")
	r.Register(both, "OfferChanged", "AvailabilityChanged")
	r.Register(all)

	t.Run("typed handlers come before wildcards", func(t *testing.T) {
		got := r.Handlers("OfferChanged")
		assert.Len(t, got, 3)
		assert.Same(t, offers, got[0])
		assert.Same(t, all, got[2])
	})

	t.Run("unknown type only reaches wildcards", func(t *testing.T) {
		got := r.Handlers("ProductCreated")
		assert.Len(t, got, 1)
		assert.Same(t, all, got[0])
	})

	t.Run("unregister removes every registration", func(t *testing.T) {
		r.Unregister(both)
		assert.Len(t, r.Handlers("OfferChanged"), 2)
		assert.Len(t, r.Handlers("AvailabilityChanged"), 1)

		r.Unregister(all)
		assert.Empty(t, r.Handlers("AvailabilityChanged"))
	})
}
