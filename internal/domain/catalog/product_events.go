package catalog

import (
	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeProduct = "Product"

// Event type constants
const (
	EventTypeProductCreated         = "ProductCreated"
	EventTypeProductUpdated         = "ProductUpdated"
	EventTypeProductVariantsChanged = "ProductVariantsChanged"
	EventTypeVariantStockDepleted   = "VariantStockDepleted"
)

// ProductCreatedEvent is published when a new product is created
type ProductCreatedEvent struct {
	shared.BaseDomainEvent
	ProductID  uuid.UUID `json:"product_id"`
	Name       string    `json:"name"`
	CategoryID uuid.UUID `json:"category_id"`
	BrandID    uuid.UUID `json:"brand_id"`
}

// NewProductCreatedEvent creates a new ProductCreatedEvent
func NewProductCreatedEvent(product *Product) *ProductCreatedEvent {
	return &ProductCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductCreated, AggregateTypeProduct, product.ID),
		ProductID:       product.ID,
		Name:            product.Name,
		CategoryID:      product.CategoryID,
		BrandID:         product.BrandID,
	}
}

// ProductUpdatedEvent is published when a product's descriptive fields change
type ProductUpdatedEvent struct {
	shared.BaseDomainEvent
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
}

// NewProductUpdatedEvent creates a new ProductUpdatedEvent
func NewProductUpdatedEvent(product *Product) *ProductUpdatedEvent {
	return &ProductUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductUpdated, AggregateTypeProduct, product.ID),
		ProductID:       product.ID,
		Name:            product.Name,
		Slug:            product.Slug,
	}
}

// ProductVariantsChangedEvent is published after a variant set is saved
type ProductVariantsChangedEvent struct {
	shared.BaseDomainEvent
	ProductID  uuid.UUID `json:"product_id"`
	Sizes      []string  `json:"sizes"`
	TotalStock int       `json:"total_stock"`
}

// NewProductVariantsChangedEvent creates a new ProductVariantsChangedEvent
func NewProductVariantsChangedEvent(product *Product) *ProductVariantsChangedEvent {
	sizes := make([]string, 0, len(product.Variants))
	for _, v := range product.Variants {
		sizes = append(sizes, v.Size)
	}
	return &ProductVariantsChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductVariantsChanged, AggregateTypeProduct, product.ID),
		ProductID:       product.ID,
		Sizes:           sizes,
		TotalStock:      product.TotalStock,
	}
}

// VariantStockDepletedEvent is published when a variant's stock reaches zero
type VariantStockDepletedEvent struct {
	shared.BaseDomainEvent
	ProductID uuid.UUID `json:"product_id"`
	Size      string    `json:"size"`
	SKU       string    `json:"sku"`
}

// NewVariantStockDepletedEvent creates a new VariantStockDepletedEvent
func NewVariantStockDepletedEvent(product *Product, variant Variant) *VariantStockDepletedEvent {
	return &VariantStockDepletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeVariantStockDepleted, AggregateTypeProduct, product.ID),
		ProductID:       product.ID,
		Size:            variant.Size,
		SKU:             variant.SKU,
	}
}
