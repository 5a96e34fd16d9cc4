package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	catalogapp "github.com/storefront/backend/internal/application/catalog"
	"github.com/storefront/backend/internal/domain/shared"
)

// BrandService is the brand administration surface
type BrandService interface {
	Create(ctx context.Context, req catalogapp.CreateBrandRequest) (*catalogapp.BrandResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*catalogapp.BrandResponse, error)
	List(ctx context.Context, filter catalogapp.ListFilter) (shared.Paginated[catalogapp.BrandResponse], error)
	Rename(ctx context.Context, id uuid.UUID, req catalogapp.CreateBrandRequest) (*catalogapp.BrandResponse, error)
	SetOffer(ctx context.Context, id uuid.UUID, offer decimal.Decimal) (*catalogapp.BrandResponse, error)
	Activate(ctx context.Context, id uuid.UUID) (*catalogapp.BrandResponse, error)
	Deactivate(ctx context.Context, id uuid.UUID) (*catalogapp.BrandResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Restore(ctx context.Context, id uuid.UUID) (*catalogapp.BrandResponse, error)
}

// BrandHandler handles /admin/brands
type BrandHandler struct {
	BaseHandler
	brands BrandService
}

// NewBrandHandler creates a new BrandHandler
func NewBrandHandler(brands BrandService) *BrandHandler {
	return &BrandHandler{brands: brands}
}

// Create handles POST /admin/brands
func (h *BrandHandler) Create(c *gin.Context) {
	var req catalogapp.CreateBrandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	brand, err := h.brands.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, brand)
}

// List handles GET /admin/brands
func (h *BrandHandler) List(c *gin.Context) {
	var filter catalogapp.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}
	page, err := h.brands.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Get handles GET /admin/brands/:id
func (h *BrandHandler) Get(c *gin.Context) {
	h.respond(c, h.brands.GetByID)
}

// Rename handles PUT /admin/brands/:id
func (h *BrandHandler) Rename(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req catalogapp.CreateBrandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	brand, err := h.brands.Rename(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, brand)
}

// SetOffer handles PATCH /admin/brands/:id/offer
func (h *BrandHandler) SetOffer(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req catalogapp.SetOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	brand, err := h.brands.SetOffer(c.Request.Context(), id, req.Offer)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, brand)
}

// Activate handles POST /admin/brands/:id/activate
func (h *BrandHandler) Activate(c *gin.Context) {
	h.respond(c, h.brands.Activate)
}

// Deactivate handles POST /admin/brands/:id/deactivate
func (h *BrandHandler) Deactivate(c *gin.Context) {
	h.respond(c, h.brands.Deactivate)
}

// Restore handles POST /admin/brands/:id/restore
func (h *BrandHandler) Restore(c *gin.Context) {
	h.respond(c, h.brands.Restore)
}

// Delete handles DELETE /admin/brands/:id
func (h *BrandHandler) Delete(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.brands.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

func (h *BrandHandler) respond(c *gin.Context, fn func(context.Context, uuid.UUID) (*catalogapp.BrandResponse, error)) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	brand, err := fn(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, brand)
}
