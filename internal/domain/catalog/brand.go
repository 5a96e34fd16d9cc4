package catalog

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/pricing"
	"github.com/storefront/backend/internal/domain/shared"
)

// Brand is a manufacturer label; its name feeds SKU generation
type Brand struct {
	shared.BaseAggregateRoot
	shared.Lifecycle
	Name       string
	BrandOffer decimal.Decimal
}

// NewBrand creates a new active brand without an offer
func NewBrand(name string) (*Brand, error) {
	name = strings.TrimSpace(name)
	if err := validateBrandName(name); err != nil {
		return nil, err
	}

	brand := &Brand{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Lifecycle:         shared.NewLifecycle(),
		Name:              name,
		BrandOffer:        decimal.Zero,
	}

	brand.AddDomainEvent(NewBrandCreatedEvent(brand))

	return brand, nil
}

// Rename changes the brand name. Already generated SKUs keep the old code.
func (b *Brand) Rename(name string) error {
	name = strings.TrimSpace(name)
	if err := validateBrandName(name); err != nil {
		return err
	}
	b.Name = name
	b.touch()
	return nil
}

// SetOffer sets the brand offer percentage
func (b *Brand) SetOffer(offer decimal.Decimal) error {
	if !pricing.ValidOffer(offer) {
		return invalidOfferError("Brand", offer)
	}

	old := b.BrandOffer
	b.BrandOffer = offer
	b.touch()

	b.AddDomainEvent(NewOfferChangedEvent(AggregateTypeBrand, b.ID, pricing.TierBrand, old, offer))

	return nil
}

// Activate makes the brand visible again
func (b *Brand) Activate() error {
	if b.IsDeleted {
		return shared.NewDomainError("CANNOT_ACTIVATE", "Cannot activate a deleted brand")
	}
	if b.IsActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "Brand is already active")
	}
	b.IsActive = true
	b.touch()
	b.AddDomainEvent(NewAvailabilityChangedEvent(AggregateTypeBrand, b.ID, b.Available()))
	return nil
}

// Deactivate hides the brand and all of its products
func (b *Brand) Deactivate() error {
	if !b.IsActive {
		return shared.NewDomainError("ALREADY_INACTIVE", "Brand is already inactive")
	}
	b.IsActive = false
	b.touch()
	b.AddDomainEvent(NewAvailabilityChangedEvent(AggregateTypeBrand, b.ID, b.Available()))
	return nil
}

// SoftDelete marks the brand as deleted
func (b *Brand) SoftDelete() error {
	if b.IsDeleted {
		return shared.NewDomainError("ALREADY_DELETED", "Brand is already deleted")
	}
	b.MarkDeleted(time.Now())
	b.touch()
	b.AddDomainEvent(NewAvailabilityChangedEvent(AggregateTypeBrand, b.ID, false))
	return nil
}

// RestoreDeleted reverses a soft delete
func (b *Brand) RestoreDeleted() error {
	if !b.IsDeleted {
		return shared.NewDomainError("NOT_DELETED", "Brand is not deleted")
	}
	b.Restore()
	b.touch()
	b.AddDomainEvent(NewAvailabilityChangedEvent(AggregateTypeBrand, b.ID, b.Available()))
	return nil
}

func (b *Brand) touch() {
	b.Touch()
	b.IncrementVersion()
}

func validateBrandName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Brand name cannot be empty")
	}
	if len(name) > 100 {
		return shared.NewDomainError("INVALID_NAME", "Brand name cannot exceed 100 characters")
	}
	return nil
}
