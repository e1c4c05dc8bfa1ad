package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"storekart/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockProductRepository is a mock implementation of repository.ProductRepository.
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) List(ctx context.Context, limit, offset int) ([]model.Product, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func TestProductHandler_List(t *testing.T) {
	mockProducts := new(MockProductRepository)
	mockProducts.On("List", mock.Anything, 20, 0).Return([]model.Product{
		{ID: uuid.New(), Name: "Widget", Price: decimal.RequireFromString("9.99"), Stock: 5, Active: true},
	}, nil)

	h := NewProductHandler(mockProducts, zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	rec := httptest.NewRecorder()

	h.List(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var products []model.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &products))
	assert.Len(t, products, 1)
	assert.Equal(t, "Widget", products[0].Name)
}

func TestProductHandler_List_InvalidPagination(t *testing.T) {
	mockProducts := new(MockProductRepository)
	h := NewProductHandler(mockProducts, zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/api/products?limit=0", nil)
	rec := httptest.NewRecorder()

	h.List(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	mockProducts.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything)
}

func TestProductHandler_GetByID(t *testing.T) {
	productID := uuid.New()

	mockProducts := new(MockProductRepository)
	mockProducts.On("GetByID", mock.Anything, productID).
		Return(&model.Product{ID: productID, Name: "Widget", Price: decimal.NewFromInt(10), Active: true}, nil)

	h := NewProductHandler(mockProducts, zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/api/products/"+productID.String(), nil)
	req.SetPathValue("id", productID.String())
	rec := httptest.NewRecorder()

	h.GetByID(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestProductHandler_GetByID_NotFound(t *testing.T) {
	productID := uuid.New()

	mockProducts := new(MockProductRepository)
	mockProducts.On("GetByID", mock.Anything, productID).Return(nil, nil)

	h := NewProductHandler(mockProducts, zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/api/products/"+productID.String(), nil)
	req.SetPathValue("id", productID.String())
	rec := httptest.NewRecorder()

	h.GetByID(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
