package models

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
)

// VariantRecord is one element of the products.variants JSON document
type VariantRecord struct {
	Size         string          `json:"size"`
	Stock        int             `json:"stock"`
	BasePrice    decimal.Decimal `json:"base_price"`
	VariantOffer decimal.Decimal `json:"variant_offer"`
	SKU          string          `json:"sku"`
}

// ProductModel is the persistence model for the Product aggregate.
// VariantSKUs mirrors the variant SKUs as "|SKU1|SKU2|" so identifier
// lookups can run without decoding the variants document.
type ProductModel struct {
	AggregateModel
	LifecycleModel
	Name         string          `gorm:"type:varchar(200);not null"`
	Slug         string          `gorm:"type:varchar(220);not null;index"`
	Description  string          `gorm:"type:text"`
	RegularPrice decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	ProductOffer decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	CategoryID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	BrandID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	BaseSKU      *string         `gorm:"column:base_sku;type:varchar(64);uniqueIndex"`
	VariantSKUs  string          `gorm:"column:variant_skus;type:text;not null;default:''"`
	Variants     []VariantRecord `gorm:"type:jsonb;serializer:json"`
	TotalStock   int             `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product aggregate.
func (m *ProductModel) ToDomain() *catalog.Product {
	variants := make([]catalog.Variant, len(m.Variants))
	for i, v := range m.Variants {
		variants[i] = catalog.Variant{
			Size:         v.Size,
			Stock:        v.Stock,
			BasePrice:    v.BasePrice,
			VariantOffer: v.VariantOffer,
			SKU:          v.SKU,
		}
	}
	baseSKU := ""
	if m.BaseSKU != nil {
		baseSKU = *m.BaseSKU
	}
	return &catalog.Product{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Lifecycle:         m.LifecycleModel.ToDomain(),
		Name:              m.Name,
		Slug:              m.Slug,
		Description:       m.Description,
		RegularPrice:      m.RegularPrice,
		ProductOffer:      m.ProductOffer,
		CategoryID:        m.CategoryID,
		BrandID:           m.BrandID,
		BaseSKU:           baseSKU,
		Variants:          variants,
		TotalStock:        m.TotalStock,
	}
}

// FromDomain populates the persistence model from a domain Product aggregate.
func (m *ProductModel) FromDomain(p *catalog.Product) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.LifecycleModel = LifecycleModelFromDomain(p.Lifecycle)
	m.Name = p.Name
	m.Slug = p.Slug
	m.Description = p.Description
	m.RegularPrice = p.RegularPrice
	m.ProductOffer = p.ProductOffer
	m.CategoryID = p.CategoryID
	m.BrandID = p.BrandID
	m.BaseSKU = nil
	if p.BaseSKU != "" {
		sku := p.BaseSKU
		m.BaseSKU = &sku
	}
	m.Variants = make([]VariantRecord, len(p.Variants))
	skus := make([]string, 0, len(p.Variants))
	for i, v := range p.Variants {
		m.Variants[i] = VariantRecord{
			Size:         v.Size,
			Stock:        v.Stock,
			BasePrice:    v.BasePrice,
			VariantOffer: v.VariantOffer,
			SKU:          v.SKU,
		}
		if v.SKU != "" {
			skus = append(skus, v.SKU)
		}
	}
	m.VariantSKUs = JoinSKUs(skus)
	m.TotalStock = p.TotalStock
}

// ProductModelFromDomain creates a new persistence model from a domain Product aggregate.
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{}
	m.FromDomain(p)
	return m
}

// JoinSKUs encodes SKUs in the delimited form stored in variant_skus
func JoinSKUs(skus []string) string {
	if len(skus) == 0 {
		return ""
	}
	return "|" + strings.Join(skus, "|") + "|"
}

// CategoryModel is the persistence model for the Category aggregate.
type CategoryModel struct {
	AggregateModel
	LifecycleModel
	Name          string          `gorm:"type:varchar(100);not null;uniqueIndex"`
	Slug          string          `gorm:"type:varchar(120);not null"`
	Description   string          `gorm:"type:text"`
	CategoryOffer decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
}

// TableName returns the table name for GORM
func (CategoryModel) TableName() string {
	return "categories"
}

// ToDomain converts the persistence model to a domain Category aggregate.
func (m *CategoryModel) ToDomain() *catalog.Category {
	return &catalog.Category{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Lifecycle:         m.LifecycleModel.ToDomain(),
		Name:              m.Name,
		Slug:              m.Slug,
		Description:       m.Description,
		CategoryOffer:     m.CategoryOffer,
	}
}

// FromDomain populates the persistence model from a domain Category aggregate.
func (m *CategoryModel) FromDomain(c *catalog.Category) {
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	m.LifecycleModel = LifecycleModelFromDomain(c.Lifecycle)
	m.Name = c.Name
	m.Slug = c.Slug
	m.Description = c.Description
	m.CategoryOffer = c.CategoryOffer
}

// CategoryModelFromDomain creates a new persistence model from a domain Category aggregate.
func CategoryModelFromDomain(c *catalog.Category) *CategoryModel {
	m := &CategoryModel{}
	m.FromDomain(c)
	return m
}

// BrandModel is the persistence model for the Brand aggregate.
type BrandModel struct {
	AggregateModel
	LifecycleModel
	Name       string          `gorm:"type:varchar(100);not null;uniqueIndex"`
	BrandOffer decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
}

// TableName returns the table name for GORM
func (BrandModel) TableName() string {
	return "brands"
}

// ToDomain converts the persistence model to a domain Brand aggregate.
func (m *BrandModel) ToDomain() *catalog.Brand {
	return &catalog.Brand{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Lifecycle:         m.LifecycleModel.ToDomain(),
		Name:              m.Name,
		BrandOffer:        m.BrandOffer,
	}
}

// FromDomain populates the persistence model from a domain Brand aggregate.
func (m *BrandModel) FromDomain(b *catalog.Brand) {
	m.FromDomainAggregateRoot(b.BaseAggregateRoot)
	m.LifecycleModel = LifecycleModelFromDomain(b.Lifecycle)
	m.Name = b.Name
	m.BrandOffer = b.BrandOffer
}

// BrandModelFromDomain creates a new persistence model from a domain Brand aggregate.
func BrandModelFromDomain(b *catalog.Brand) *BrandModel {
	m := &BrandModel{}
	m.FromDomain(b)
	return m
}

