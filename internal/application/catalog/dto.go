package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/pricing"
)

// VariantInput describes one size in a product write
type VariantInput struct {
	Size         string          `json:"size" binding:"required,min=1,max=20"`
	Stock        int             `json:"stock" binding:"min=0"`
	BasePrice    decimal.Decimal `json:"base_price"`
	VariantOffer decimal.Decimal `json:"variant_offer"`
}

// SaveProductRequest creates or fully updates a product with its variants
type SaveProductRequest struct {
	Name         string          `json:"name" binding:"required,min=1,max=200"`
	Description  string          `json:"description" binding:"max=2000"`
	RegularPrice decimal.Decimal `json:"regular_price"`
	CategoryID   uuid.UUID       `json:"category_id" binding:"required"`
	BrandID      uuid.UUID       `json:"brand_id" binding:"required"`
	Variants     []VariantInput  `json:"variants" binding:"dive"`
}

// SetOfferRequest sets an offer percentage on any tier
type SetOfferRequest struct {
	Offer decimal.Decimal `json:"offer"`
}

// UpdateVariantRequest changes the stock and/or offer of one variant
type UpdateVariantRequest struct {
	Stock *int             `json:"stock" binding:"omitempty,min=0"`
	Offer *decimal.Decimal `json:"offer"`
}

// ProductListFilter represents filter options for product list
type ProductListFilter struct {
	Search     string `form:"search"`
	CategoryID string `form:"category_id" binding:"omitempty,uuid"`
	BrandID    string `form:"brand_id" binding:"omitempty,uuid"`
	Page       int    `form:"page" binding:"omitempty,min=1"`
	PageSize   int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy    string `form:"order_by"`
	OrderDir   string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// VariantResponse is a variant with its live resolved price
type VariantResponse struct {
	Size           string          `json:"size"`
	SKU            string          `json:"sku"`
	Stock          int             `json:"stock"`
	InStock        bool            `json:"in_stock"`
	BasePrice      decimal.Decimal `json:"base_price"`
	VariantOffer   decimal.Decimal `json:"variant_offer"`
	EffectiveOffer decimal.Decimal `json:"effective_offer"`
	OfferSource    pricing.Tier    `json:"offer_source"`
	SellPrice      decimal.Decimal `json:"sell_price"`
	Discount       decimal.Decimal `json:"discount"`
}

// ProductResponse represents a product with live prices in API responses
type ProductResponse struct {
	ID           uuid.UUID         `json:"id"`
	Name         string            `json:"name"`
	Slug         string            `json:"slug"`
	Description  string            `json:"description"`
	RegularPrice decimal.Decimal   `json:"regular_price"`
	ProductOffer decimal.Decimal   `json:"product_offer"`
	CategoryID   uuid.UUID         `json:"category_id"`
	BrandID      uuid.UUID         `json:"brand_id"`
	BaseSKU      string            `json:"base_sku"`
	TotalStock   int               `json:"total_stock"`
	IsListed     bool              `json:"is_listed"`
	IsDeleted    bool              `json:"is_deleted"`
	Available    bool              `json:"available"`
	Variants     []VariantResponse `json:"variants"`
	Pricing      pricing.Summary   `json:"pricing"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
	Version      int               `json:"version"`
}

// ProductListResponse is a storefront list entry
type ProductListResponse struct {
	ID           uuid.UUID       `json:"id"`
	Name         string          `json:"name"`
	Slug         string          `json:"slug"`
	RegularPrice decimal.Decimal `json:"regular_price"`
	TotalStock   int             `json:"total_stock"`
	Pricing      pricing.Summary `json:"pricing"`
}

// ToProductResponse converts a lineage into a ProductResponse with every
// variant priced independently.
func ToProductResponse(l catalog.Lineage) ProductResponse {
	p := l.Product
	pp := l.PriceAll()

	variants := make([]VariantResponse, len(pp.Variants))
	for i, vp := range pp.Variants {
		variants[i] = VariantResponse{
			Size:           vp.Variant.Size,
			SKU:            vp.Variant.SKU,
			Stock:          vp.Variant.Stock,
			InStock:        vp.Variant.InStock(),
			BasePrice:      vp.Price.BasePrice,
			VariantOffer:   vp.Variant.VariantOffer,
			EffectiveOffer: vp.Price.EffectiveOffer,
			OfferSource:    vp.Price.Source,
			SellPrice:      vp.Price.SellPrice,
			Discount:       vp.Price.Discount,
		}
	}

	return ProductResponse{
		ID:           p.ID,
		Name:         p.Name,
		Slug:         p.Slug,
		Description:  p.Description,
		RegularPrice: p.RegularPrice,
		ProductOffer: p.ProductOffer,
		CategoryID:   p.CategoryID,
		BrandID:      p.BrandID,
		BaseSKU:      p.BaseSKU,
		TotalStock:   p.TotalStock,
		IsListed:     p.IsListed(),
		IsDeleted:    p.IsDeleted,
		Available:    l.Available(),
		Variants:     variants,
		Pricing:      pp.Summary,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
		Version:      p.Version,
	}
}

// ToProductListResponse converts a lineage into a storefront list entry
func ToProductListResponse(l catalog.Lineage) ProductListResponse {
	return ProductListResponse{
		ID:           l.Product.ID,
		Name:         l.Product.Name,
		Slug:         l.Product.Slug,
		RegularPrice: l.Product.RegularPrice,
		TotalStock:   l.Product.TotalStock,
		Pricing:      l.PriceAll().Summary,
	}
}

// CreateCategoryRequest represents a request to create a category
type CreateCategoryRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Description string `json:"description" binding:"max=500"`
}

// UpdateCategoryRequest represents a request to rename a category
type UpdateCategoryRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Description string `json:"description" binding:"max=500"`
}

// CategoryResponse represents a category in API responses
type CategoryResponse struct {
	ID            uuid.UUID       `json:"id"`
	Name          string          `json:"name"`
	Slug          string          `json:"slug"`
	Description   string          `json:"description"`
	CategoryOffer decimal.Decimal `json:"category_offer"`
	IsActive      bool            `json:"is_active"`
	IsDeleted     bool            `json:"is_deleted"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	Version       int             `json:"version"`
}

// ToCategoryResponse converts a domain Category to CategoryResponse
func ToCategoryResponse(c *catalog.Category) CategoryResponse {
	return CategoryResponse{
		ID:            c.ID,
		Name:          c.Name,
		Slug:          c.Slug,
		Description:   c.Description,
		CategoryOffer: c.CategoryOffer,
		IsActive:      c.IsActive,
		IsDeleted:     c.IsDeleted,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
		Version:       c.Version,
	}
}

// CreateBrandRequest represents a request to create or rename a brand
type CreateBrandRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
}

// BrandResponse represents a brand in API responses
type BrandResponse struct {
	ID         uuid.UUID       `json:"id"`
	Name       string          `json:"name"`
	Code       string          `json:"code"`
	BrandOffer decimal.Decimal `json:"brand_offer"`
	IsActive   bool            `json:"is_active"`
	IsDeleted  bool            `json:"is_deleted"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
	Version    int             `json:"version"`
}

// ToBrandResponse converts a domain Brand to BrandResponse
func ToBrandResponse(b *catalog.Brand) BrandResponse {
	return BrandResponse{
		ID:         b.ID,
		Name:       b.Name,
		Code:       catalog.BrandCode(b.Name),
		BrandOffer: b.BrandOffer,
		IsActive:   b.IsActive,
		IsDeleted:  b.IsDeleted,
		CreatedAt:  b.CreatedAt,
		UpdatedAt:  b.UpdatedAt,
		Version:    b.Version,
	}
}

// ListFilter is the pagination filter for categories and brands
type ListFilter struct {
	Search         string `form:"search"`
	IncludeDeleted bool   `form:"include_deleted"`
	Page           int    `form:"page" binding:"omitempty,min=1"`
	PageSize       int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}
