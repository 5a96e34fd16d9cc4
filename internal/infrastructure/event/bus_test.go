package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// testHandler implements EventHandler for testing
type testHandler struct {
	eventTypes []string
	err        error
	panicWith  any

	mu      sync.Mutex
	handled []shared.DomainEvent
}

func newTestHandler(eventTypes ...string) *testHandler {
	return &testHandler{eventTypes: eventTypes}
}

func (h *testHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	h.handled = append(h.handled, event)
	h.mu.Unlock()
	if h.panicWith != nil {
		panic(h.panicWith)
	}
	return h.err
}

func (h *testHandler) EventTypes() []string {
	return h.eventTypes
}

func (h *testHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.handled)
}

func unlisted() shared.DomainEvent {
	return catalog.NewAvailabilityChangedEvent(catalog.AggregateTypeProduct, uuid.New(), false)
}

func TestInMemoryEventBus_Publish(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := newTestHandler(catalog.EventTypeAvailabilityChanged)
	bus.Subscribe(handler)

	event := unlisted()
	require.NoError(t, bus.Publish(context.Background(), event))
	require.Equal(t, 1, handler.count())
	assert.Same(t, event, handler.handled[0])
}

func TestInMemoryEventBus_RoutesByType(t *testing.T) {
	bus := NewInMemoryEventBus(nil)
	availability := newTestHandler(catalog.EventTypeAvailabilityChanged)
	other := newTestHandler("OfferChanged")
	all := newTestHandler()
	bus.Subscribe(availability)
	bus.Subscribe(other)
	bus.Subscribe(all)

	require.NoError(t, bus.Publish(context.Background(), unlisted(), unlisted()))
	assert.Equal(t, 2, availability.count())
	assert.Zero(t, other.count())
	assert.Equal(t, 2, all.count())
}

func TestInMemoryEventBus_HandlerFailuresAreContained(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	bus := NewInMemoryEventBus(zap.New(core))

	failing := newTestHandler(catalog.EventTypeAvailabilityChanged)
	failing.err = errors.New("wishlist store down")
	panicking := newTestHandler(catalog.EventTypeAvailabilityChanged)
	panicking.panicWith = "boom"
	healthy := newTestHandler(catalog.EventTypeAvailabilityChanged)
	bus.Subscribe(failing)
	bus.Subscribe(panicking)
	bus.Subscribe(healthy)

	require.NoError(t, bus.Publish(context.Background(), unlisted()))
	assert.Equal(t, 1, healthy.count())
	assert.Equal(t, 2, logs.FilterMessage("event handler failed").Len())
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(nil)
	handler := newTestHandler(catalog.EventTypeAvailabilityChanged)
	bus.Subscribe(handler)
	bus.Unsubscribe(handler)

	require.NoError(t, bus.Publish(context.Background(), unlisted()))
	assert.Zero(t, handler.count())
}

func TestInMemoryEventBus_StopDropsEvents(t *testing.T) {
	bus := NewInMemoryEventBus(nil)
	handler := newTestHandler(catalog.EventTypeAvailabilityChanged)
	bus.Subscribe(handler)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, bus.Stop(ctx))
	require.NoError(t, bus.Publish(context.Background(), unlisted()))
	assert.Zero(t, handler.count())

	require.NoError(t, bus.Start(ctx))
	require.NoError(t, bus.Publish(context.Background(), unlisted()))
	assert.Equal(t, 1, handler.count())
}

func TestPublishAndClear(t *testing.T) {
	bus := NewInMemoryEventBus(nil)
	handler := newTestHandler(catalog.EventTypeAvailabilityChanged)
	bus.Subscribe(handler)

	brand, err := catalog.NewBrand("Nike")
	require.NoError(t, err)
	require.NoError(t, brand.Deactivate())

	require.NoError(t, shared.PublishAndClear(context.Background(), bus, brand))
	assert.Equal(t, 1, handler.count())
	assert.Empty(t, brand.GetDomainEvents())
}
