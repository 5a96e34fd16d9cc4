package mongostore

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shopping"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// aggregateFields are stored on every aggregate document
type aggregateFields struct {
	ID        string    `bson:"_id"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
	Version   int       `bson:"version"`
}

func aggregateFromDomain(a shared.BaseAggregateRoot) aggregateFields {
	return aggregateFields{
		ID:        a.ID.String(),
		CreatedAt: a.CreatedAt.UTC(),
		UpdatedAt: a.UpdatedAt.UTC(),
		Version:   a.Version,
	}
}

func (f aggregateFields) toDomain() shared.BaseAggregateRoot {
	return shared.BaseAggregateRoot{
		BaseEntity: shared.BaseEntity{
			ID:        parseID(f.ID),
			CreatedAt: f.CreatedAt,
			UpdatedAt: f.UpdatedAt,
		},
		Version: f.Version,
	}
}

type lifecycleFields struct {
	IsActive  bool       `bson:"is_active"`
	IsDeleted bool       `bson:"is_deleted"`
	DeletedAt *time.Time `bson:"deleted_at,omitempty"`
}

func lifecycleFromDomain(l shared.Lifecycle) lifecycleFields {
	return lifecycleFields{IsActive: l.IsActive, IsDeleted: l.IsDeleted, DeletedAt: l.DeletedAt}
}

func (f lifecycleFields) toDomain() shared.Lifecycle {
	return shared.Lifecycle{IsActive: f.IsActive, IsDeleted: f.IsDeleted, DeletedAt: f.DeletedAt}
}

type variantDocument struct {
	Size         string               `bson:"size"`
	Stock        int                  `bson:"stock"`
	BasePrice    primitive.Decimal128 `bson:"base_price"`
	VariantOffer primitive.Decimal128 `bson:"variant_offer"`
	SKU          string               `bson:"sku,omitempty"`
}

// productDocument is a product with its variants embedded. SKUs lists the
// base and variant identifiers for lookups; BaseSKU is omitted until
// assigned so the sparse unique index ignores drafts.
type productDocument struct {
	aggregateFields `bson:",inline"`
	lifecycleFields `bson:",inline"`
	Name            string               `bson:"name"`
	Slug            string               `bson:"slug"`
	Description     string               `bson:"description"`
	RegularPrice    primitive.Decimal128 `bson:"regular_price"`
	ProductOffer    primitive.Decimal128 `bson:"product_offer"`
	CategoryID      string               `bson:"category_id"`
	BrandID         string               `bson:"brand_id"`
	BaseSKU         string               `bson:"base_sku,omitempty"`
	SKUs            []string             `bson:"skus"`
	Variants        []variantDocument    `bson:"variants"`
	TotalStock      int                  `bson:"total_stock"`
}

func productFromDomain(p *catalog.Product) productDocument {
	variants := make([]variantDocument, len(p.Variants))
	for i, v := range p.Variants {
		variants[i] = variantDocument{
			Size:         v.Size,
			Stock:        v.Stock,
			BasePrice:    toDecimal128(v.BasePrice),
			VariantOffer: toDecimal128(v.VariantOffer),
			SKU:          v.SKU,
		}
	}
	return productDocument{
		aggregateFields: aggregateFromDomain(p.BaseAggregateRoot),
		lifecycleFields: lifecycleFromDomain(p.Lifecycle),
		Name:            p.Name,
		Slug:            p.Slug,
		Description:     p.Description,
		RegularPrice:    toDecimal128(p.RegularPrice),
		ProductOffer:    toDecimal128(p.ProductOffer),
		CategoryID:      p.CategoryID.String(),
		BrandID:         p.BrandID.String(),
		BaseSKU:         p.BaseSKU,
		SKUs:            p.SKUs(),
		Variants:        variants,
		TotalStock:      p.TotalStock,
	}
}

func (d productDocument) toDomain() *catalog.Product {
	variants := make([]catalog.Variant, len(d.Variants))
	for i, v := range d.Variants {
		variants[i] = catalog.Variant{
			Size:         v.Size,
			Stock:        v.Stock,
			BasePrice:    fromDecimal128(v.BasePrice),
			VariantOffer: fromDecimal128(v.VariantOffer),
			SKU:          v.SKU,
		}
	}
	return &catalog.Product{
		BaseAggregateRoot: d.aggregateFields.toDomain(),
		Lifecycle:         d.lifecycleFields.toDomain(),
		Name:              d.Name,
		Slug:              d.Slug,
		Description:       d.Description,
		RegularPrice:      fromDecimal128(d.RegularPrice),
		ProductOffer:      fromDecimal128(d.ProductOffer),
		CategoryID:        parseID(d.CategoryID),
		BrandID:           parseID(d.BrandID),
		BaseSKU:           d.BaseSKU,
		Variants:          variants,
		TotalStock:        d.TotalStock,
	}
}

// categoryDocument stores a category. NameKey is the folded name carrying
// the unique index.
type categoryDocument struct {
	aggregateFields `bson:",inline"`
	lifecycleFields `bson:",inline"`
	Name            string               `bson:"name"`
	NameKey         string               `bson:"name_key"`
	Slug            string               `bson:"slug"`
	Description     string               `bson:"description"`
	CategoryOffer   primitive.Decimal128 `bson:"category_offer"`
}

func categoryFromDomain(c *catalog.Category) categoryDocument {
	return categoryDocument{
		aggregateFields: aggregateFromDomain(c.BaseAggregateRoot),
		lifecycleFields: lifecycleFromDomain(c.Lifecycle),
		Name:            c.Name,
		NameKey:         nameKey(c.Name),
		Slug:            c.Slug,
		Description:     c.Description,
		CategoryOffer:   toDecimal128(c.CategoryOffer),
	}
}

func (d categoryDocument) toDomain() *catalog.Category {
	return &catalog.Category{
		BaseAggregateRoot: d.aggregateFields.toDomain(),
		Lifecycle:         d.lifecycleFields.toDomain(),
		Name:              d.Name,
		Slug:              d.Slug,
		Description:       d.Description,
		CategoryOffer:     fromDecimal128(d.CategoryOffer),
	}
}

type brandDocument struct {
	aggregateFields `bson:",inline"`
	lifecycleFields `bson:",inline"`
	Name            string               `bson:"name"`
	NameKey         string               `bson:"name_key"`
	BrandOffer      primitive.Decimal128 `bson:"brand_offer"`
}

func brandFromDomain(b *catalog.Brand) brandDocument {
	return brandDocument{
		aggregateFields: aggregateFromDomain(b.BaseAggregateRoot),
		lifecycleFields: lifecycleFromDomain(b.Lifecycle),
		Name:            b.Name,
		NameKey:         nameKey(b.Name),
		BrandOffer:      toDecimal128(b.BrandOffer),
	}
}

func (d brandDocument) toDomain() *catalog.Brand {
	return &catalog.Brand{
		BaseAggregateRoot: d.aggregateFields.toDomain(),
		Lifecycle:         d.lifecycleFields.toDomain(),
		Name:              d.Name,
		BrandOffer:        fromDecimal128(d.BrandOffer),
	}
}

type cartItemDocument struct {
	ProductID  string               `bson:"product_id"`
	Size       string               `bson:"size"`
	Quantity   int                  `bson:"quantity"`
	Price      primitive.Decimal128 `bson:"price"`
	TotalPrice primitive.Decimal128 `bson:"total_price"`
	AddedAt    time.Time            `bson:"added_at"`
}

type cartDocument struct {
	aggregateFields `bson:",inline"`
	UserID          string             `bson:"user_id"`
	Items           []cartItemDocument `bson:"items"`
}

func cartFromDomain(c *shopping.Cart) cartDocument {
	items := make([]cartItemDocument, len(c.Items))
	for i, it := range c.Items {
		items[i] = cartItemDocument{
			ProductID:  it.ProductID.String(),
			Size:       it.Size,
			Quantity:   it.Quantity,
			Price:      toDecimal128(it.Price),
			TotalPrice: toDecimal128(it.TotalPrice),
			AddedAt:    it.AddedAt.UTC(),
		}
	}
	return cartDocument{
		aggregateFields: aggregateFromDomain(c.BaseAggregateRoot),
		UserID:          c.UserID.String(),
		Items:           items,
	}
}

func (d cartDocument) toDomain() *shopping.Cart {
	items := make([]shopping.CartItem, len(d.Items))
	for i, it := range d.Items {
		items[i] = shopping.CartItem{
			ProductID:  parseID(it.ProductID),
			Size:       it.Size,
			Quantity:   it.Quantity,
			Price:      fromDecimal128(it.Price),
			TotalPrice: fromDecimal128(it.TotalPrice),
			AddedAt:    it.AddedAt,
		}
	}
	return &shopping.Cart{
		BaseAggregateRoot: d.aggregateFields.toDomain(),
		UserID:            parseID(d.UserID),
		Items:             items,
	}
}

type wishlistDocument struct {
	aggregateFields `bson:",inline"`
	UserID          string   `bson:"user_id"`
	ProductIDs      []string `bson:"product_ids"`
}

func wishlistFromDomain(w *shopping.Wishlist) wishlistDocument {
	return wishlistDocument{
		aggregateFields: aggregateFromDomain(w.BaseAggregateRoot),
		UserID:          w.UserID.String(),
		ProductIDs:      idStrings(w.ProductIDs),
	}
}

func (d wishlistDocument) toDomain() *shopping.Wishlist {
	ids := make([]uuid.UUID, len(d.ProductIDs))
	for i, id := range d.ProductIDs {
		ids[i] = parseID(id)
	}
	return &shopping.Wishlist{
		BaseAggregateRoot: d.aggregateFields.toDomain(),
		UserID:            parseID(d.UserID),
		ProductIDs:        ids,
	}
}

func toDecimal128(d decimal.Decimal) primitive.Decimal128 {
	v, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		return primitive.NewDecimal128(0, 0)
	}
	return v
}

func fromDecimal128(v primitive.Decimal128) decimal.Decimal {
	d, err := decimal.NewFromString(v.String())
	if err != nil {
		return decimal.Zero
	}
	return d
}

// parseID tolerates malformed IDs written by other tools
func parseID(s string) uuid.UUID {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil
	}
	return id
}

func idStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

func nameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
