package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarize(t *testing.T) {
	t.Run("averages independently resolved prices", func(t *testing.T) {
		results := []Result{
			Resolve(Input{BasePrice: d("100"), Offers: Offers{Variant: d("50")}}),
			Resolve(Input{BasePrice: d("200")}),
		}

		summary := Summarize(results, d("999"))

		// (50 + 200) / 2, not 150 * (1 - 25%)
		assert.True(t, summary.AveragePrice.Equal(d("125")))
		assert.True(t, summary.MinPrice.Equal(d("50")))
		assert.True(t, summary.MaxPrice.Equal(d("200")))
		assert.True(t, summary.BestOffer.Equal(d("50")))
		assert.Equal(t, TierVariant, summary.BestSource)
	})

	t.Run("falls back to the regular price without variants", func(t *testing.T) {
		summary := Summarize(nil, d("80"))

		assert.True(t, summary.MinPrice.Equal(d("80")))
		assert.True(t, summary.MaxPrice.Equal(d("80")))
		assert.True(t, summary.AveragePrice.Equal(d("80")))
		assert.Equal(t, TierNone, summary.BestSource)
	})

	t.Run("rounds the average", func(t *testing.T) {
		results := []Result{
			Resolve(Input{BasePrice: d("10")}),
			Resolve(Input{BasePrice: d("10")}),
			Resolve(Input{BasePrice: d("11")}),
		}

		summary := Summarize(results, d("0"))
		assert.True(t, summary.AveragePrice.Equal(d("10.33")))
	})
}
