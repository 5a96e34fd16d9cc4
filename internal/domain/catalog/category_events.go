package catalog

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/pricing"
	"github.com/storefront/backend/internal/domain/shared"
)

// Aggregate type constants
const (
	AggregateTypeCategory = "Category"
	AggregateTypeBrand    = "Brand"
)

// Event type constants
const (
	EventTypeCategoryCreated     = "CategoryCreated"
	EventTypeBrandCreated        = "BrandCreated"
	EventTypeOfferChanged        = "OfferChanged"
	EventTypeAvailabilityChanged = "AvailabilityChanged"
)

// CategoryCreatedEvent is published when a new category is created
type CategoryCreatedEvent struct {
	shared.BaseDomainEvent
	CategoryID uuid.UUID `json:"category_id"`
	Name       string    `json:"name"`
	Slug       string    `json:"slug"`
}

// NewCategoryCreatedEvent creates a new CategoryCreatedEvent
func NewCategoryCreatedEvent(category *Category) *CategoryCreatedEvent {
	return &CategoryCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCategoryCreated, AggregateTypeCategory, category.ID),
		CategoryID:      category.ID,
		Name:            category.Name,
		Slug:            category.Slug,
	}
}

// BrandCreatedEvent is published when a new brand is created
type BrandCreatedEvent struct {
	shared.BaseDomainEvent
	BrandID uuid.UUID `json:"brand_id"`
	Name    string    `json:"name"`
}

// NewBrandCreatedEvent creates a new BrandCreatedEvent
func NewBrandCreatedEvent(brand *Brand) *BrandCreatedEvent {
	return &BrandCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBrandCreated, AggregateTypeBrand, brand.ID),
		BrandID:         brand.ID,
		Name:            brand.Name,
	}
}

// OfferChangedEvent is published when an offer at any tier changes.
// Variant offers carry the variant size.
type OfferChangedEvent struct {
	shared.BaseDomainEvent
	Tier     pricing.Tier    `json:"tier"`
	Size     string          `json:"size,omitempty"`
	OldOffer decimal.Decimal `json:"old_offer"`
	NewOffer decimal.Decimal `json:"new_offer"`
}

// NewOfferChangedEvent creates a new OfferChangedEvent
func NewOfferChangedEvent(aggType string, aggID uuid.UUID, tier pricing.Tier, oldOffer, newOffer decimal.Decimal) *OfferChangedEvent {
	return &OfferChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOfferChanged, aggType, aggID),
		Tier:            tier,
		OldOffer:        oldOffer,
		NewOffer:        newOffer,
	}
}

// AvailabilityChangedEvent is published when a category, brand or product
// is activated, deactivated, deleted or restored.
type AvailabilityChangedEvent struct {
	shared.BaseDomainEvent
	Available bool `json:"available"`
}

// NewAvailabilityChangedEvent creates a new AvailabilityChangedEvent
func NewAvailabilityChangedEvent(aggType string, aggID uuid.UUID, available bool) *AvailabilityChangedEvent {
	return &AvailabilityChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAvailabilityChanged, aggType, aggID),
		Available:       available,
	}
}
