package http

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/RozzaysRed/OnlineShop-Blazor/internal/domain"
	"github.com/RozzaysRed/OnlineShop-Blazor/internal/service"
	apperrors "github.com/RozzaysRed/OnlineShop-Blazor/pkg/errors"
	"github.com/RozzaysRed/OnlineShop-Blazor/pkg/health"
)

type mockCartService struct {
	mock.Mock
}

func (m *mockCartService) AddItem(ctx context.Context, in service.AddItemInput) (domain.LineItem, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(domain.LineItem), args.Error(1)
}

func (m *mockCartService) GetItem(ctx context.Context, itemID int64) (domain.LineItem, error) {
	args := m.Called(ctx, itemID)
	return args.Get(0).(domain.LineItem), args.Error(1)
}

func (m *mockCartService) GetItems(ctx context.Context, userID int64) ([]domain.LineItem, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LineItem), args.Error(1)
}

func (m *mockCartService) UpdateQuantity(ctx context.Context, itemID int64, quantity int) (domain.LineItem, error) {
	args := m.Called(ctx, itemID, quantity)
	return args.Get(0).(domain.LineItem), args.Error(1)
}

func (m *mockCartService) DeleteItem(ctx context.Context, itemID int64) (domain.LineItem, error) {
	args := m.Called(ctx, itemID)
	return args.Get(0).(domain.LineItem), args.Error(1)
}

func newTestRouter(svc CartService) http.Handler {
	l := slog.New(slog.NewJSONHandler(bytes.NewBuffer(nil), nil))
	return NewRouter(RouterConfig{
		Cart:   NewCartHandler(svc, l),
		Health: health.NewHandler(),
		Logger: l,
	})
}

var testLineItem = domain.LineItem{
	ID: 1, CartID: 3, UserID: 7, ProductID: 42,
	ProductName: "Air Pods", UnitPrice: 25000, Quantity: 2, TotalPrice: 50000,
}

func TestAddItem_Created(t *testing.T) {
	svc := new(mockCartService)
	svc.On("AddItem", mock.Anything, service.AddItemInput{UserID: 7, ProductID: 42, Quantity: 2}).
		Return(testLineItem, nil)

	body := strings.NewReader(`{"user_id":7,"product_id":42,"quantity":2}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", body)
	rec := httptest.NewRecorder()

	newTestRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "/api/v1/cart/items/1", rec.Header().Get("Location"))
	assert.Contains(t, rec.Body.String(), `"total_price":50000`)
}

func TestAddItem_DuplicateRejected(t *testing.T) {
	svc := new(mockCartService)
	svc.On("AddItem", mock.Anything, mock.Anything).
		Return(domain.LineItem{}, apperrors.Rejected("product 42 is already in the cart"))

	body := strings.NewReader(`{"user_id":7,"product_id":42,"quantity":1}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", body)
	rec := httptest.NewRecorder()

	newTestRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), `"REJECTED"`)
}

func TestAddItem_ValidationFailure(t *testing.T) {
	svc := new(mockCartService)

	body := strings.NewReader(`{"user_id":7,"product_id":42,"quantity":0}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", body)
	rec := httptest.NewRecorder()

	newTestRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "AddItem", mock.Anything, mock.Anything)
}

func TestAddItem_MalformedJSON(t *testing.T) {
	svc := new(mockCartService)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(`{not json`))
	rec := httptest.NewRecorder()

	newTestRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetItem_OK(t *testing.T) {
	svc := new(mockCartService)
	svc.On("GetItem", mock.Anything, int64(1)).Return(testLineItem, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart/items/1", nil)
	rec := httptest.NewRecorder()

	newTestRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"product_name":"Air Pods"`)
}

func TestGetItem_NotFound(t *testing.T) {
	svc := new(mockCartService)
	svc.On("GetItem", mock.Anything, int64(99)).
		Return(domain.LineItem{}, apperrors.NotFound("cart item", "99"))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart/items/99", nil)
	rec := httptest.NewRecorder()

	newTestRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetItem_BadID(t *testing.T) {
	svc := new(mockCartService)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart/items/abc", nil)
	rec := httptest.NewRecorder()

	newTestRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "GetItem", mock.Anything, mock.Anything)
}

func TestGetItems_OK(t *testing.T) {
	svc := new(mockCartService)
	svc.On("GetItems", mock.Anything, int64(7)).Return([]domain.LineItem{testLineItem}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart/7/items", nil)
	rec := httptest.NewRecorder()

	newTestRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data []domain.LineItem `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, int64(42), resp.Data[0].ProductID)
}

func TestGetItems_EmptyCartIsEmptyArray(t *testing.T) {
	svc := new(mockCartService)
	svc.On("GetItems", mock.Anything, int64(8)).Return([]domain.LineItem{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart/8/items", nil)
	rec := httptest.NewRecorder()

	newTestRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"data":[]`)
}

func TestUpdateQuantity_OK(t *testing.T) {
	updated := testLineItem
	updated.Quantity = 5
	updated.TotalPrice = 125000

	svc := new(mockCartService)
	svc.On("UpdateQuantity", mock.Anything, int64(1), 5).Return(updated, nil)

	body := strings.NewReader(`{"quantity":5}`)
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/cart/items/1", body)
	rec := httptest.NewRecorder()

	newTestRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"quantity":5`)
}

func TestUpdateQuantity_ZeroRejectedByValidation(t *testing.T) {
	svc := new(mockCartService)

	body := strings.NewReader(`{"quantity":0}`)
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/cart/items/1", body)
	rec := httptest.NewRecorder()

	newTestRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "UpdateQuantity", mock.Anything, mock.Anything, mock.Anything)
}

func TestDeleteItem_OK(t *testing.T) {
	svc := new(mockCartService)
	svc.On("DeleteItem", mock.Anything, int64(1)).Return(testLineItem, nil)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/cart/items/1", nil)
	rec := httptest.NewRecorder()

	newTestRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"product_id":42`)
}

func TestDeleteItem_NotFound(t *testing.T) {
	svc := new(mockCartService)
	svc.On("DeleteItem", mock.Anything, int64(99)).
		Return(domain.LineItem{}, apperrors.NotFound("cart item", "99"))

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/cart/items/99", nil)
	rec := httptest.NewRecorder()

	newTestRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthLive(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	rec := httptest.NewRecorder()

	newTestRouter(new(mockCartService)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
