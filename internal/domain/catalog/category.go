package catalog

import (
	"strings"
	"time"

	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/pricing"
	"github.com/storefront/backend/internal/domain/shared"
)

// Category groups products and carries the category-wide offer
type Category struct {
	shared.BaseAggregateRoot
	shared.Lifecycle
	Name          string
	Slug          string
	Description   string
	CategoryOffer decimal.Decimal
}

// NewCategory creates a new active category without an offer
func NewCategory(name, description string) (*Category, error) {
	name = strings.TrimSpace(name)
	if err := validateCategoryName(name); err != nil {
		return nil, err
	}

	category := &Category{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Lifecycle:         shared.NewLifecycle(),
		Name:              name,
		Slug:              slug.Make(name),
		Description:       description,
		CategoryOffer:     decimal.Zero,
	}

	category.AddDomainEvent(NewCategoryCreatedEvent(category))

	return category, nil
}

// Update changes the category's name and description
func (c *Category) Update(name, description string) error {
	name = strings.TrimSpace(name)
	if err := validateCategoryName(name); err != nil {
		return err
	}

	if name != c.Name {
		c.Slug = slug.Make(name)
	}
	c.Name = name
	c.Description = description
	c.touch()

	return nil
}

// SetOffer sets the category offer percentage
func (c *Category) SetOffer(offer decimal.Decimal) error {
	if !pricing.ValidOffer(offer) {
		return invalidOfferError("Category", offer)
	}

	old := c.CategoryOffer
	c.CategoryOffer = offer
	c.touch()

	c.AddDomainEvent(NewOfferChangedEvent(AggregateTypeCategory, c.ID, pricing.TierCategory, old, offer))

	return nil
}

// Activate makes the category visible again
func (c *Category) Activate() error {
	if c.IsDeleted {
		return shared.NewDomainError("CANNOT_ACTIVATE", "Cannot activate a deleted category")
	}
	if c.IsActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "Category is already active")
	}
	c.IsActive = true
	c.touch()
	c.AddDomainEvent(NewAvailabilityChangedEvent(AggregateTypeCategory, c.ID, c.Available()))
	return nil
}

// Deactivate hides the category and every product in it
func (c *Category) Deactivate() error {
	if !c.IsActive {
		return shared.NewDomainError("ALREADY_INACTIVE", "Category is already inactive")
	}
	c.IsActive = false
	c.touch()
	c.AddDomainEvent(NewAvailabilityChangedEvent(AggregateTypeCategory, c.ID, c.Available()))
	return nil
}

// SoftDelete marks the category as deleted
func (c *Category) SoftDelete() error {
	if c.IsDeleted {
		return shared.NewDomainError("ALREADY_DELETED", "Category is already deleted")
	}
	c.MarkDeleted(time.Now())
	c.touch()
	c.AddDomainEvent(NewAvailabilityChangedEvent(AggregateTypeCategory, c.ID, false))
	return nil
}

// RestoreDeleted reverses a soft delete
func (c *Category) RestoreDeleted() error {
	if !c.IsDeleted {
		return shared.NewDomainError("NOT_DELETED", "Category is not deleted")
	}
	c.Restore()
	c.touch()
	c.AddDomainEvent(NewAvailabilityChangedEvent(AggregateTypeCategory, c.ID, c.Available()))
	return nil
}

func (c *Category) touch() {
	c.Touch()
	c.IncrementVersion()
}

func validateCategoryName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Category name cannot be empty")
	}
	if len(name) > 100 {
		return shared.NewDomainError("INVALID_NAME", "Category name cannot exceed 100 characters")
	}
	return nil
}
