package catalog

import (
	"github.com/storefront/backend/internal/domain/pricing"
)

// Reason explains why a product variant cannot be bought
type Reason string

const (
	ReasonNone                Reason = ""
	ReasonProductMissing      Reason = "product_missing"
	ReasonProductUnlisted     Reason = "product_unlisted"
	ReasonProductDeleted      Reason = "product_deleted"
	ReasonCategoryUnavailable Reason = "category_unavailable"
	ReasonBrandUnavailable    Reason = "brand_unavailable"
	ReasonVariantMissing      Reason = "variant_missing"
	ReasonOutOfStock          Reason = "out_of_stock"
	ReasonInsufficientStock   Reason = "insufficient_stock"
)

// Lineage is a product loaded together with its category and brand.
// Category or Brand may be nil when the reference no longer resolves.
type Lineage struct {
	Product  *Product
	Category *Category
	Brand    *Brand
}

// Check evaluates the availability predicate: the product must be listed
// and not deleted, and its category and brand must both be active and not
// deleted.
func (l Lineage) Check() Reason {
	switch {
	case l.Product == nil:
		return ReasonProductMissing
	case l.Product.IsDeleted:
		return ReasonProductDeleted
	case !l.Product.IsListed():
		return ReasonProductUnlisted
	case l.Category == nil || !l.Category.Available():
		return ReasonCategoryUnavailable
	case l.Brand == nil || !l.Brand.Available():
		return ReasonBrandUnavailable
	}
	return ReasonNone
}

// Available returns true if the whole lineage is purchasable
func (l Lineage) Available() bool {
	return l.Check() == ReasonNone
}

// CheckQuantity extends Check with variant existence and stock for a given
// quantity.
func (l Lineage) CheckQuantity(size string, quantity int) Reason {
	if r := l.Check(); r != ReasonNone {
		return r
	}
	v, ok := l.Product.Variant(size)
	if !ok {
		return ReasonVariantMissing
	}
	if !v.InStock() {
		return ReasonOutOfStock
	}
	if quantity > v.Stock {
		return ReasonInsufficientStock
	}
	return ReasonNone
}

// Offers collects the four tier offers that apply to variant v
func (l Lineage) Offers(v Variant) pricing.Offers {
	offers := pricing.Offers{Variant: v.VariantOffer}
	if l.Product != nil {
		offers.Product = l.Product.ProductOffer
	}
	if l.Category != nil {
		offers.Category = l.Category.CategoryOffer
	}
	if l.Brand != nil {
		offers.Brand = l.Brand.BrandOffer
	}
	return offers
}

// Price resolves the live sell price of one unit of variant v
func (l Lineage) Price(v Variant) pricing.Result {
	return pricing.Resolve(pricing.Input{
		BasePrice: v.BasePrice,
		Offers:    l.Offers(v),
	})
}

// VariantPrice pairs a variant with its resolved price
type VariantPrice struct {
	Variant Variant
	Price   pricing.Result
}

// ProductPricing is the resolved price of every variant plus a summary
type ProductPricing struct {
	Variants []VariantPrice
	Summary  pricing.Summary
}

// PriceAll resolves every variant independently. A product without
// variants is priced at its regular price.
func (l Lineage) PriceAll() ProductPricing {
	if l.Product == nil {
		return ProductPricing{}
	}

	variants := make([]VariantPrice, 0, len(l.Product.Variants))
	results := make([]pricing.Result, 0, len(l.Product.Variants))
	for _, v := range l.Product.Variants {
		r := l.Price(v)
		variants = append(variants, VariantPrice{Variant: v, Price: r})
		results = append(results, r)
	}

	return ProductPricing{
		Variants: variants,
		Summary:  pricing.Summarize(results, l.Product.RegularPrice),
	}
}
