package catalog

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultSKUMaxAttempts bounds the collision retries for one identifier
const DefaultSKUMaxAttempts = 100

const productCodeLength = 6

// brandCodes maps well-known brand names to their two-letter code
var brandCodes = map[string]string{
	"NIKE":         "NK",
	"ADIDAS":       "AD",
	"PUMA":         "PM",
	"REEBOK":       "RB",
	"NEW BALANCE":  "NB",
	"ASICS":        "AS",
	"CONVERSE":     "CV",
	"VANS":         "VN",
	"SKECHERS":     "SK",
	"FILA":         "FL",
	"UNDER ARMOUR": "UA",
	"JORDAN":       "JD",
}

// SKULookup answers identifier collision queries against the catalog
type SKULookup interface {
	// SKUExists reports whether a product other than excludeID holds sku as
	// its base or variant identifier.
	SKUExists(ctx context.Context, sku string, excludeID uuid.UUID) (bool, error)

	// CountSKUPrefix counts products other than excludeID holding an
	// identifier that starts with prefix.
	CountSKUPrefix(ctx context.Context, prefix string, excludeID uuid.UUID) (int64, error)
}

// SKUGenerator derives globally unique identifiers from brand, product
// name and size.
type SKUGenerator struct {
	lookup      SKULookup
	maxAttempts int
}

// NewSKUGenerator creates a generator. maxAttempts <= 0 selects the default.
func NewSKUGenerator(lookup SKULookup, maxAttempts int) *SKUGenerator {
	if maxAttempts <= 0 {
		maxAttempts = DefaultSKUMaxAttempts
	}
	return &SKUGenerator{lookup: lookup, maxAttempts: maxAttempts}
}

// AssignIdentifiers fills in the base SKU and every missing variant SKU of
// product. Identifiers already assigned are never touched. The product is
// only modified when every identifier was generated successfully.
func (g *SKUGenerator) AssignIdentifiers(ctx context.Context, product *Product, brandName string) error {
	reserved := make(map[string]struct{}, len(product.Variants)+1)
	for _, sku := range product.SKUs() {
		reserved[sku] = struct{}{}
	}

	base := product.BaseSKU
	if base == "" {
		candidate, err := BaseSKUCandidate(brandName, product.Name)
		if err != nil {
			return err
		}
		base, err = g.claim(ctx, candidate, product.ID, reserved)
		if err != nil {
			return err
		}
	}

	variantSKUs := make(map[int]string)
	for i, v := range product.Variants {
		if v.SKU != "" {
			continue
		}
		candidate, err := VariantSKUCandidate(base, v.Size)
		if err != nil {
			return err
		}
		sku, err := g.claim(ctx, candidate, product.ID, reserved)
		if err != nil {
			return err
		}
		variantSKUs[i] = sku
	}

	if product.NeedsBaseSKU() {
		if err := product.AssignBaseSKU(base); err != nil {
			return err
		}
	}
	for i, sku := range variantSKUs {
		if err := product.AssignVariantSKU(i, sku); err != nil {
			return err
		}
	}
	return nil
}

// claim returns the first free identifier derived from candidate and adds
// it to reserved.
func (g *SKUGenerator) claim(ctx context.Context, candidate string, excludeID uuid.UUID, reserved map[string]struct{}) (string, error) {
	free, err := g.isFree(ctx, candidate, excludeID, reserved)
	if err != nil {
		return "", err
	}
	if free {
		reserved[candidate] = struct{}{}
		return candidate, nil
	}

	// Start the suffix past the identifiers that already share the prefix
	// so long collision chains do not exhaust the attempt budget.
	taken, err := g.lookup.CountSKUPrefix(ctx, candidate+"-", excludeID)
	if err != nil {
		return "", fmt.Errorf("count sku prefix %s: %w", candidate, err)
	}
	n := int(taken) + 1

	for attempt := 1; attempt < g.maxAttempts; attempt++ {
		sku := fmt.Sprintf("%s-%d", candidate, n)
		free, err := g.isFree(ctx, sku, excludeID, reserved)
		if err != nil {
			return "", err
		}
		if free {
			reserved[sku] = struct{}{}
			return sku, nil
		}
		n++
	}

	return "", shared.NewDomainError("SKU_GENERATION_FAILED", fmt.Sprintf(
		"Could not find a unique SKU for %s after %d attempts", candidate, g.maxAttempts))
}

func (g *SKUGenerator) isFree(ctx context.Context, sku string, excludeID uuid.UUID, reserved map[string]struct{}) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if _, ok := reserved[sku]; ok {
		return false, nil
	}
	exists, err := g.lookup.SKUExists(ctx, sku, excludeID)
	if err != nil {
		return false, fmt.Errorf("check sku %s: %w", sku, err)
	}
	return !exists, nil
}

// BaseSKUCandidate builds "{BRAND}-{PRODUCT}" before collision handling
func BaseSKUCandidate(brandName, productName string) (string, error) {
	if strings.TrimSpace(brandName) == "" {
		return "", shared.NewDomainError("SKU_PRECONDITION_FAILED", "Brand name is required to generate a SKU")
	}
	if strings.TrimSpace(productName) == "" {
		return "", shared.NewDomainError("SKU_PRECONDITION_FAILED", "Product name is required to generate a SKU")
	}

	brand := BrandCode(brandName)
	if brand == "" {
		return "", shared.NewDomainError("SKU_PRECONDITION_FAILED",
			fmt.Sprintf("Brand name %q has no letters or digits", brandName))
	}
	product := ProductCode(productName)
	if product == "" {
		return "", shared.NewDomainError("SKU_PRECONDITION_FAILED",
			fmt.Sprintf("Product name %q has no letters or digits", productName))
	}
	return brand + "-" + product, nil
}

// VariantSKUCandidate builds "{BASE}-{SIZE}" before collision handling
func VariantSKUCandidate(base, size string) (string, error) {
	code := upper(alnumOnly(fold(size), false))
	if code == "" {
		return "", shared.NewDomainError("SKU_PRECONDITION_FAILED",
			fmt.Sprintf("Size %q has no letters or digits", size))
	}
	return base + "-" + code, nil
}

// BrandCode returns the table code for well-known brands, or the first two
// letters of the name otherwise.
func BrandCode(brandName string) string {
	folded := upper(strings.Join(strings.Fields(fold(brandName)), " "))
	if code, ok := brandCodes[folded]; ok {
		return code
	}
	letters := alnumOnly(folded, false)
	if len(letters) > 2 {
		letters = letters[:2]
	}
	return letters
}

// ProductCode takes the first three characters of each word of the name,
// concatenated and truncated to six.
func ProductCode(productName string) string {
	var b strings.Builder
	for _, word := range strings.Fields(alnumOnly(fold(productName), true)) {
		if len(word) > 3 {
			word = word[:3]
		}
		b.WriteString(word)
	}
	code := b.String()
	if len(code) > productCodeLength {
		code = code[:productCodeLength]
	}
	return upper(code)
}

// fold strips diacritics so accented letters survive as their ASCII base
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// alnumOnly keeps ASCII letters and digits, plus whitespace when asked
func alnumOnly(s string, keepSpace bool) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
		case keepSpace && unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	return b.String()
}

func upper(s string) string {
	return cases.Upper(language.Und).String(s)
}
