package catalog

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/pricing"
	"github.com/storefront/backend/internal/domain/shared"
)

// Variant is a purchasable size of a product. Variants are embedded in the
// product document and addressed by size.
type Variant struct {
	Size         string          `json:"size"`
	Stock        int             `json:"stock"`
	BasePrice    decimal.Decimal `json:"base_price"`
	VariantOffer decimal.Decimal `json:"variant_offer"`
	SKU          string          `json:"sku,omitempty"`
}

// InStock returns true if at least one unit is available
func (v Variant) InStock() bool {
	return v.Stock > 0
}

// Product is the aggregate root for a sellable item and its size variants
type Product struct {
	shared.BaseAggregateRoot
	shared.Lifecycle
	Name         string
	Slug         string
	Description  string
	RegularPrice decimal.Decimal
	ProductOffer decimal.Decimal
	CategoryID   uuid.UUID
	BrandID      uuid.UUID
	BaseSKU      string
	Variants     []Variant
	TotalStock   int
}

// NewProduct creates a new listed product without variants
func NewProduct(name, description string, regularPrice decimal.Decimal, categoryID, brandID uuid.UUID) (*Product, error) {
	name = strings.TrimSpace(name)
	if err := validateProductName(name); err != nil {
		return nil, err
	}
	if err := validateRegularPrice(regularPrice); err != nil {
		return nil, err
	}
	if categoryID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CATEGORY", "Product must belong to a category")
	}
	if brandID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BRAND", "Product must belong to a brand")
	}

	product := &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Lifecycle:         shared.NewLifecycle(),
		Name:              name,
		Slug:              slug.Make(name),
		Description:       description,
		RegularPrice:      regularPrice,
		ProductOffer:      decimal.Zero,
		CategoryID:        categoryID,
		BrandID:           brandID,
		Variants:          []Variant{},
	}

	product.AddDomainEvent(NewProductCreatedEvent(product))

	return product, nil
}

// IsListed returns true if the product is shown in the storefront
func (p *Product) IsListed() bool {
	return p.IsActive
}

// Update changes the descriptive fields. The slug follows the name; the
// base SKU does not.
func (p *Product) Update(name, description string, regularPrice decimal.Decimal) error {
	name = strings.TrimSpace(name)
	if err := validateProductName(name); err != nil {
		return err
	}
	if err := validateRegularPrice(regularPrice); err != nil {
		return err
	}

	if name != p.Name {
		p.Slug = slug.Make(name)
	}
	p.Name = name
	p.Description = description
	p.RegularPrice = regularPrice
	p.touch()

	p.AddDomainEvent(NewProductUpdatedEvent(p))

	return nil
}

// MoveTo reassigns the product to another category and brand
func (p *Product) MoveTo(categoryID, brandID uuid.UUID) error {
	if categoryID == uuid.Nil {
		return shared.NewDomainError("INVALID_CATEGORY", "Product must belong to a category")
	}
	if brandID == uuid.Nil {
		return shared.NewDomainError("INVALID_BRAND", "Product must belong to a brand")
	}
	p.CategoryID = categoryID
	p.BrandID = brandID
	p.touch()
	return nil
}

// SetOffer sets the product-level offer percentage
func (p *Product) SetOffer(offer decimal.Decimal) error {
	if !pricing.ValidOffer(offer) {
		return invalidOfferError("Product", offer)
	}

	old := p.ProductOffer
	p.ProductOffer = offer
	p.touch()

	p.AddDomainEvent(NewOfferChangedEvent(AggregateTypeProduct, p.ID, pricing.TierProduct, old, offer))

	return nil
}

// ReplaceVariants swaps in a new variant set. Identifiers already assigned
// to a size are carried over; SKUs supplied by the caller are ignored.
// Price-versus-regular checks are left to ValidateVariantPrices so that
// identifiers can be assigned first.
func (p *Product) ReplaceVariants(variants []Variant) error {
	if err := validateVariants(variants); err != nil {
		return err
	}

	existing := make(map[string]string, len(p.Variants))
	for _, v := range p.Variants {
		if v.SKU != "" {
			existing[sizeKey(v.Size)] = v.SKU
		}
	}

	next := make([]Variant, len(variants))
	for i, v := range variants {
		v.Size = strings.TrimSpace(v.Size)
		v.SKU = existing[sizeKey(v.Size)]
		next[i] = v
	}

	p.Variants = next
	p.RecomputeTotalStock()
	p.touch()

	return nil
}

// Variant returns the variant with the given size (case-insensitive).
// An empty size selects the only variant of a single-variant product.
func (p *Product) Variant(size string) (Variant, bool) {
	i := p.variantIndex(size)
	if i < 0 {
		return Variant{}, false
	}
	return p.Variants[i], true
}

// UpdateVariantStock sets the stock of one variant
func (p *Product) UpdateVariantStock(size string, stock int) error {
	if stock < 0 {
		return shared.NewDomainError("INVALID_VARIANT", fmt.Sprintf("Stock for size %s cannot be negative", size))
	}
	i := p.variantIndex(size)
	if i < 0 {
		return variantNotFound(size)
	}

	wasInStock := p.Variants[i].InStock()
	p.Variants[i].Stock = stock
	p.RecomputeTotalStock()
	p.touch()

	if wasInStock && stock == 0 {
		p.AddDomainEvent(NewVariantStockDepletedEvent(p, p.Variants[i]))
	}
	return nil
}

// SetVariantOffer sets the offer percentage of one variant
func (p *Product) SetVariantOffer(size string, offer decimal.Decimal) error {
	if !pricing.ValidOffer(offer) {
		return invalidOfferError("Variant", offer)
	}
	i := p.variantIndex(size)
	if i < 0 {
		return variantNotFound(size)
	}

	old := p.Variants[i].VariantOffer
	p.Variants[i].VariantOffer = offer
	p.touch()

	event := NewOfferChangedEvent(AggregateTypeProduct, p.ID, pricing.TierVariant, old, offer)
	event.Size = p.Variants[i].Size
	p.AddDomainEvent(event)

	return nil
}

// ValidateVariantPrices checks that every variant is priced strictly below
// the regular price. The first violation is returned.
func (p *Product) ValidateVariantPrices() error {
	for _, v := range p.Variants {
		if !v.BasePrice.LessThan(p.RegularPrice) {
			return shared.NewDomainError("INVALID_VARIANT_PRICE", fmt.Sprintf(
				"Variant %s (SKU %s) base price %s must be less than regular price %s",
				v.Size, v.SKU, v.BasePrice.StringFixed(2), p.RegularPrice.StringFixed(2)))
		}
	}
	return nil
}

// RecomputeTotalStock derives TotalStock from the variants
func (p *Product) RecomputeTotalStock() {
	total := 0
	for _, v := range p.Variants {
		total += v.Stock
	}
	p.TotalStock = total
}

// NeedsBaseSKU returns true if no base identifier has been assigned yet
func (p *Product) NeedsBaseSKU() bool {
	return p.BaseSKU == ""
}

// AssignBaseSKU sets the base identifier. Identifiers are immutable.
func (p *Product) AssignBaseSKU(sku string) error {
	if p.BaseSKU != "" {
		return shared.NewDomainError("SKU_IMMUTABLE", "Product already has a base SKU")
	}
	p.BaseSKU = sku
	return nil
}

// AssignVariantSKU sets the identifier of the variant at index i
func (p *Product) AssignVariantSKU(i int, sku string) error {
	if i < 0 || i >= len(p.Variants) {
		return shared.NewDomainError("VARIANT_NOT_FOUND", "Variant index out of range")
	}
	if p.Variants[i].SKU != "" {
		return shared.NewDomainError("SKU_IMMUTABLE", fmt.Sprintf("Variant %s already has a SKU", p.Variants[i].Size))
	}
	p.Variants[i].SKU = sku
	return nil
}

// SKUs returns every identifier held by the product
func (p *Product) SKUs() []string {
	skus := make([]string, 0, len(p.Variants)+1)
	if p.BaseSKU != "" {
		skus = append(skus, p.BaseSKU)
	}
	for _, v := range p.Variants {
		if v.SKU != "" {
			skus = append(skus, v.SKU)
		}
	}
	return skus
}

// List shows the product in the storefront
func (p *Product) List() error {
	if p.IsDeleted {
		return shared.NewDomainError("CANNOT_LIST", "Cannot list a deleted product")
	}
	if p.IsActive {
		return shared.NewDomainError("ALREADY_LISTED", "Product is already listed")
	}
	p.IsActive = true
	p.touch()
	p.AddDomainEvent(NewAvailabilityChangedEvent(AggregateTypeProduct, p.ID, true))
	return nil
}

// Unlist hides the product from the storefront
func (p *Product) Unlist() error {
	if !p.IsActive {
		return shared.NewDomainError("ALREADY_UNLISTED", "Product is already unlisted")
	}
	p.IsActive = false
	p.touch()
	p.AddDomainEvent(NewAvailabilityChangedEvent(AggregateTypeProduct, p.ID, false))
	return nil
}

// SoftDelete marks the product as deleted
func (p *Product) SoftDelete() error {
	if p.IsDeleted {
		return shared.NewDomainError("ALREADY_DELETED", "Product is already deleted")
	}
	p.MarkDeleted(time.Now())
	p.touch()
	p.AddDomainEvent(NewAvailabilityChangedEvent(AggregateTypeProduct, p.ID, false))
	return nil
}

// RestoreDeleted reverses a soft delete
func (p *Product) RestoreDeleted() error {
	if !p.IsDeleted {
		return shared.NewDomainError("NOT_DELETED", "Product is not deleted")
	}
	p.Restore()
	p.RecomputeTotalStock()
	p.touch()
	p.AddDomainEvent(NewAvailabilityChangedEvent(AggregateTypeProduct, p.ID, p.Available()))
	return nil
}

// MarkVariantsChanged records that a variant set was persisted
func (p *Product) MarkVariantsChanged() {
	p.AddDomainEvent(NewProductVariantsChangedEvent(p))
}

func (p *Product) variantIndex(size string) int {
	size = strings.TrimSpace(size)
	if size == "" {
		if len(p.Variants) == 1 {
			return 0
		}
		return -1
	}
	key := sizeKey(size)
	for i, v := range p.Variants {
		if sizeKey(v.Size) == key {
			return i
		}
	}
	return -1
}

func (p *Product) touch() {
	p.Touch()
	p.IncrementVersion()
}

func sizeKey(size string) string {
	return strings.ToLower(strings.TrimSpace(size))
}

func validateVariants(variants []Variant) error {
	seen := make(map[string]struct{}, len(variants))
	for _, v := range variants {
		size := strings.TrimSpace(v.Size)
		if size == "" {
			return shared.NewDomainError("INVALID_VARIANT", "Variant size cannot be empty")
		}
		if len(size) > 20 {
			return shared.NewDomainError("INVALID_VARIANT", fmt.Sprintf("Variant size %s cannot exceed 20 characters", size))
		}
		if _, dup := seen[sizeKey(size)]; dup {
			return shared.NewDomainError("DUPLICATE_SIZE", fmt.Sprintf("Size %s appears more than once", size))
		}
		seen[sizeKey(size)] = struct{}{}

		if v.Stock < 0 {
			return shared.NewDomainError("INVALID_VARIANT", fmt.Sprintf("Stock for size %s cannot be negative", size))
		}
		if !v.BasePrice.IsPositive() {
			return shared.NewDomainError("INVALID_PRICE", fmt.Sprintf("Base price for size %s must be greater than zero", size))
		}
		if !pricing.ValidOffer(v.VariantOffer) {
			return invalidOfferError("Variant", v.VariantOffer)
		}
	}
	return nil
}

func validateProductName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot exceed 200 characters")
	}
	return nil
}

func validateRegularPrice(price decimal.Decimal) error {
	if !price.IsPositive() {
		return shared.NewDomainError("INVALID_PRICE", "Regular price must be greater than zero")
	}
	return nil
}

func invalidOfferError(tier string, offer decimal.Decimal) error {
	return shared.NewDomainError("INVALID_OFFER", fmt.Sprintf(
		"%s offer must be between 0 and %s, got %s", tier, pricing.MaxOffer.String(), offer.String()))
}

func variantNotFound(size string) error {
	if size == "" {
		return shared.NewDomainError("VARIANT_NOT_FOUND", "A size must be selected for this product")
	}
	return shared.NewDomainError("VARIANT_NOT_FOUND", fmt.Sprintf("Size %s does not exist for this product", size))
}
