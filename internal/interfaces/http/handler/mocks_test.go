package handler

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	catalogapp "github.com/storefront/backend/internal/application/catalog"
	shoppingapp "github.com/storefront/backend/internal/application/shopping"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/stretchr/testify/mock"
)

type MockCartService struct {
	mock.Mock
}

func (m *MockCartService) Load(ctx context.Context, userID uuid.UUID) (*shoppingapp.CartView, error) {
	args := m.Called(ctx, userID)
	view, _ := args.Get(0).(*shoppingapp.CartView)
	return view, args.Error(1)
}

func (m *MockCartService) Add(ctx context.Context, userID uuid.UUID, req shoppingapp.AddItemRequest) (*shoppingapp.AddItemResult, error) {
	args := m.Called(ctx, userID, req)
	result, _ := args.Get(0).(*shoppingapp.AddItemResult)
	return result, args.Error(1)
}

func (m *MockCartService) UpdateQuantity(ctx context.Context, userID uuid.UUID, req shoppingapp.UpdateQuantityRequest) (*shoppingapp.UpdateQuantityResult, error) {
	args := m.Called(ctx, userID, req)
	result, _ := args.Get(0).(*shoppingapp.UpdateQuantityResult)
	return result, args.Error(1)
}

func (m *MockCartService) Remove(ctx context.Context, userID uuid.UUID, req shoppingapp.RemoveItemRequest) (*shoppingapp.RemoveItemResult, error) {
	args := m.Called(ctx, userID, req)
	result, _ := args.Get(0).(*shoppingapp.RemoveItemResult)
	return result, args.Error(1)
}

func (m *MockCartService) Clear(ctx context.Context, userID uuid.UUID) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *MockCartService) RemoveOutOfStock(ctx context.Context, userID uuid.UUID) (*shoppingapp.PruneResult, error) {
	args := m.Called(ctx, userID)
	result, _ := args.Get(0).(*shoppingapp.PruneResult)
	return result, args.Error(1)
}

func (m *MockCartService) Validate(ctx context.Context, userID uuid.UUID) (*shoppingapp.ValidationResult, error) {
	args := m.Called(ctx, userID)
	result, _ := args.Get(0).(*shoppingapp.ValidationResult)
	return result, args.Error(1)
}

func (m *MockCartService) Checkout(ctx context.Context, userID uuid.UUID) (*shoppingapp.CartView, error) {
	args := m.Called(ctx, userID)
	view, _ := args.Get(0).(*shoppingapp.CartView)
	return view, args.Error(1)
}

type MockWishlistService struct {
	mock.Mock
}

func (m *MockWishlistService) List(ctx context.Context, userID uuid.UUID) (*shoppingapp.WishlistView, error) {
	args := m.Called(ctx, userID)
	view, _ := args.Get(0).(*shoppingapp.WishlistView)
	return view, args.Error(1)
}

func (m *MockWishlistService) Add(ctx context.Context, userID, productID uuid.UUID) (int, error) {
	args := m.Called(ctx, userID, productID)
	return args.Int(0), args.Error(1)
}

func (m *MockWishlistService) Remove(ctx context.Context, userID, productID uuid.UUID) (int, error) {
	args := m.Called(ctx, userID, productID)
	return args.Int(0), args.Error(1)
}

func (m *MockWishlistService) Toggle(ctx context.Context, userID, productID uuid.UUID) (*shoppingapp.ToggleResult, error) {
	args := m.Called(ctx, userID, productID)
	result, _ := args.Get(0).(*shoppingapp.ToggleResult)
	return result, args.Error(1)
}

type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) product(args mock.Arguments) (*catalogapp.ProductResponse, error) {
	p, _ := args.Get(0).(*catalogapp.ProductResponse)
	return p, args.Error(1)
}

func (m *MockProductService) Create(ctx context.Context, req catalogapp.SaveProductRequest) (*catalogapp.ProductResponse, error) {
	return m.product(m.Called(ctx, req))
}

func (m *MockProductService) Update(ctx context.Context, id uuid.UUID, req catalogapp.SaveProductRequest) (*catalogapp.ProductResponse, error) {
	return m.product(m.Called(ctx, id, req))
}

func (m *MockProductService) GetByID(ctx context.Context, id uuid.UUID) (*catalogapp.ProductResponse, error) {
	return m.product(m.Called(ctx, id))
}

func (m *MockProductService) GetListed(ctx context.Context, id uuid.UUID) (*catalogapp.ProductResponse, error) {
	return m.product(m.Called(ctx, id))
}

func (m *MockProductService) ListListed(ctx context.Context, filter catalogapp.ProductListFilter) (shared.Paginated[catalogapp.ProductListResponse], error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(shared.Paginated[catalogapp.ProductListResponse]), args.Error(1)
}

func (m *MockProductService) SetOffer(ctx context.Context, id uuid.UUID, offer decimal.Decimal) (*catalogapp.ProductResponse, error) {
	return m.product(m.Called(ctx, id, offer))
}

func (m *MockProductService) UpdateVariant(ctx context.Context, id uuid.UUID, size string, req catalogapp.UpdateVariantRequest) (*catalogapp.ProductResponse, error) {
	return m.product(m.Called(ctx, id, size, req))
}

func (m *MockProductService) List(ctx context.Context, id uuid.UUID) (*catalogapp.ProductResponse, error) {
	return m.product(m.Called(ctx, id))
}

func (m *MockProductService) Unlist(ctx context.Context, id uuid.UUID) (*catalogapp.ProductResponse, error) {
	return m.product(m.Called(ctx, id))
}

func (m *MockProductService) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockProductService) Restore(ctx context.Context, id uuid.UUID) (*catalogapp.ProductResponse, error) {
	return m.product(m.Called(ctx, id))
}

var (
	_ CartService     = (*MockCartService)(nil)
	_ WishlistService = (*MockWishlistService)(nil)
	_ ProductService  = (*MockProductService)(nil)
)
