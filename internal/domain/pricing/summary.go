package pricing

import "github.com/shopspring/decimal"

// Summary aggregates the resolved prices of a product's variants
type Summary struct {
	MinPrice     decimal.Decimal `json:"min_price"`
	MaxPrice     decimal.Decimal `json:"max_price"`
	AveragePrice decimal.Decimal `json:"average_price"`
	BestOffer    decimal.Decimal `json:"best_offer"`
	BestSource   Tier            `json:"best_offer_source"`
}

// Summarize builds a summary over independently resolved variant prices.
// The average is the arithmetic mean of the sell prices. With no results the
// fallback price is reported for every figure.
func Summarize(results []Result, fallback decimal.Decimal) Summary {
	if len(results) == 0 {
		return Summary{
			MinPrice:     fallback,
			MaxPrice:     fallback,
			AveragePrice: fallback,
			BestOffer:    decimal.Zero,
			BestSource:   TierNone,
		}
	}

	s := Summary{
		MinPrice:   results[0].SellPrice,
		MaxPrice:   results[0].SellPrice,
		BestOffer:  results[0].EffectiveOffer,
		BestSource: results[0].Source,
	}
	sum := decimal.Zero
	for _, r := range results {
		sum = sum.Add(r.SellPrice)
		if r.SellPrice.LessThan(s.MinPrice) {
			s.MinPrice = r.SellPrice
		}
		if r.SellPrice.GreaterThan(s.MaxPrice) {
			s.MaxPrice = r.SellPrice
		}
		if r.EffectiveOffer.GreaterThan(s.BestOffer) {
			s.BestOffer = r.EffectiveOffer
			s.BestSource = r.Source
		}
	}
	s.AveragePrice = sum.Div(decimal.NewFromInt(int64(len(results)))).Round(2)
	return s
}
