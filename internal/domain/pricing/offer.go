// Package pricing resolves the effective discount and sell price of a
// product variant from the four offer tiers attached to its lineage.
//
// Nothing in this package reads or writes stored prices: every result is
// computed from the inputs of the call.
package pricing

import (
	"github.com/shopspring/decimal"
)

// Tier identifies which discount tier produced the effective offer
type Tier string

const (
	// TierNone marks a price that no tier was consulted for
	TierNone     Tier = "none"
	TierCategory Tier = "category"
	TierBrand    Tier = "brand"
	TierProduct  Tier = "product"
	TierVariant  Tier = "variant"
)

// String returns the string representation of the tier
func (t Tier) String() string {
	return string(t)
}

var (
	hundred = decimal.NewFromInt(100)

	// MaxOffer is the upper bound of every offer percentage
	MaxOffer = hundred
)

// Offers holds the discount percentages (0-100) of each tier.
// A tier that is absent or not loaded is left at zero.
type Offers struct {
	Category decimal.Decimal
	Brand    decimal.Decimal
	Product  decimal.Decimal
	Variant  decimal.Decimal
}

// Input is everything needed to price one unit of a variant
type Input struct {
	BasePrice decimal.Decimal
	Offers    Offers
}

// Result is the resolved price of one unit
type Result struct {
	BasePrice      decimal.Decimal `json:"base_price"`
	EffectiveOffer decimal.Decimal `json:"effective_offer"`
	Source         Tier            `json:"offer_source"`
	SellPrice      decimal.Decimal `json:"sell_price"`
	Discount       decimal.Decimal `json:"discount"`
}

// HasOffer reports whether any tier discounts the price
func (r Result) HasOffer() bool {
	return r.EffectiveOffer.IsPositive()
}

// LineTotal returns the sell price multiplied by quantity
func (r Result) LineTotal(quantity int) decimal.Decimal {
	return r.SellPrice.Mul(decimal.NewFromInt(int64(quantity)))
}

// ClampOffer bounds an offer percentage to [0, 100]
func ClampOffer(offer decimal.Decimal) decimal.Decimal {
	if offer.IsNegative() {
		return decimal.Zero
	}
	if offer.GreaterThan(MaxOffer) {
		return MaxOffer
	}
	return offer
}

// ValidOffer reports whether offer lies within [0, 100]
func ValidOffer(offer decimal.Decimal) bool {
	return !offer.IsNegative() && !offer.GreaterThan(MaxOffer)
}

// Resolve computes the effective offer and sell price.
//
// The effective offer is the maximum of the four tiers. On ties the source
// is the first matching tier in the order category, brand, product, variant,
// so a lineage without offers reports category. HasOffer tells the two apart.
func Resolve(in Input) Result {
	tiers := []struct {
		tier  Tier
		offer decimal.Decimal
	}{
		{TierCategory, ClampOffer(in.Offers.Category)},
		{TierBrand, ClampOffer(in.Offers.Brand)},
		{TierProduct, ClampOffer(in.Offers.Product)},
		{TierVariant, ClampOffer(in.Offers.Variant)},
	}

	effective := tiers[0].offer
	source := tiers[0].tier
	for _, t := range tiers[1:] {
		// strict comparison keeps the earlier tier on ties
		if t.offer.GreaterThan(effective) {
			effective = t.offer
			source = t.tier
		}
	}

	base := in.BasePrice
	if base.IsNegative() {
		base = decimal.Zero
	}

	sell := applyOffer(base, effective)
	return Result{
		BasePrice:      base,
		EffectiveOffer: effective,
		Source:         source,
		SellPrice:      sell,
		Discount:       base.Sub(sell),
	}
}

// Undiscounted returns a result for a price with no applicable offer, used
// for products that have no variants.
func Undiscounted(price decimal.Decimal) Result {
	r := Resolve(Input{BasePrice: price})
	r.Source = TierNone
	return r
}

func applyOffer(base, offer decimal.Decimal) decimal.Decimal {
	if offer.IsZero() {
		return base
	}
	factor := hundred.Sub(offer).Div(hundred)
	sell := base.Mul(factor).Round(2)
	if sell.GreaterThan(base) {
		return base
	}
	if sell.IsNegative() {
		return decimal.Zero
	}
	return sell
}
