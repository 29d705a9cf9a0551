package service

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/RozzaysRed/OnlineShop-Blazor/internal/domain"
	"github.com/RozzaysRed/OnlineShop-Blazor/internal/repository"
	apperrors "github.com/RozzaysRed/OnlineShop-Blazor/pkg/errors"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) AddItem(ctx context.Context, userID, productID int64, quantity int) (*domain.CartItem, error) {
	args := m.Called(ctx, userID, productID, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CartItem), args.Error(1)
}

func (m *mockRepo) GetItem(ctx context.Context, itemID int64) (*repository.OwnedItem, error) {
	args := m.Called(ctx, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.OwnedItem), args.Error(1)
}

func (m *mockRepo) GetItems(ctx context.Context, userID int64) ([]domain.CartItem, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CartItem), args.Error(1)
}

func (m *mockRepo) UpdateQuantity(ctx context.Context, itemID int64, quantity int) (*repository.OwnedItem, error) {
	args := m.Called(ctx, itemID, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.OwnedItem), args.Error(1)
}

func (m *mockRepo) DeleteItem(ctx context.Context, itemID int64) (*repository.OwnedItem, error) {
	args := m.Called(ctx, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.OwnedItem), args.Error(1)
}

type mockCatalog struct {
	mock.Mock
}

func (m *mockCatalog) Product(ctx context.Context, id int64) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockCatalog) Products(ctx context.Context) (map[int64]domain.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]domain.Product), args.Error(1)
}

type mockEvents struct {
	mock.Mock
}

func (m *mockEvents) ItemAdded(ctx context.Context, li domain.LineItem) error {
	return m.Called(ctx, li).Error(0)
}

func (m *mockEvents) ItemUpdated(ctx context.Context, li domain.LineItem) error {
	return m.Called(ctx, li).Error(0)
}

func (m *mockEvents) ItemRemoved(ctx context.Context, userID int64, item domain.CartItem) error {
	return m.Called(ctx, userID, item).Error(0)
}

func newService(repo *mockRepo, catalog *mockCatalog, events *mockEvents) *CartService {
	l := slog.New(slog.NewJSONHandler(bytes.NewBuffer(nil), nil))
	if events == nil {
		return NewCartService(repo, catalog, nil, l)
	}
	return NewCartService(repo, catalog, events, l)
}

var testProduct = domain.Product{ID: 42, Name: "Air Pods", Price: 25000}

func TestAddItem_Success(t *testing.T) {
	repo := new(mockRepo)
	catalog := new(mockCatalog)
	events := new(mockEvents)

	catalog.On("Product", mock.Anything, int64(42)).Return(&testProduct, nil)
	repo.On("AddItem", mock.Anything, int64(7), int64(42), 2).
		Return(&domain.CartItem{ID: 1, CartID: 3, ProductID: 42, Quantity: 2}, nil)
	events.On("ItemAdded", mock.Anything, mock.Anything).Return(nil)

	svc := newService(repo, catalog, events)
	li, err := svc.AddItem(context.Background(), AddItemInput{UserID: 7, ProductID: 42, Quantity: 2})
	require.NoError(t, err)

	assert.Equal(t, int64(1), li.ID)
	assert.Equal(t, int64(7), li.UserID)
	assert.Equal(t, "Air Pods", li.ProductName)
	assert.Equal(t, int64(50000), li.TotalPrice)
	events.AssertCalled(t, "ItemAdded", mock.Anything, li)
}

func TestAddItem_UnknownProductRejected(t *testing.T) {
	repo := new(mockRepo)
	catalog := new(mockCatalog)

	catalog.On("Product", mock.Anything, int64(999)).
		Return(nil, apperrors.NotFound("product", "999"))

	svc := newService(repo, catalog, nil)
	_, err := svc.AddItem(context.Background(), AddItemInput{UserID: 7, ProductID: 999, Quantity: 1})

	assert.ErrorIs(t, err, apperrors.ErrRejected)
	repo.AssertNotCalled(t, "AddItem", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAddItem_CatalogOutagePropagates(t *testing.T) {
	repo := new(mockRepo)
	catalog := new(mockCatalog)

	catalog.On("Product", mock.Anything, int64(42)).
		Return(nil, apperrors.ServiceUnavailable("catalog"))

	svc := newService(repo, catalog, nil)
	_, err := svc.AddItem(context.Background(), AddItemInput{UserID: 7, ProductID: 42, Quantity: 1})

	assert.ErrorIs(t, err, apperrors.ErrServiceUnavail)
	assert.NotErrorIs(t, err, apperrors.ErrRejected)
}

func TestAddItem_InvalidQuantity(t *testing.T) {
	svc := newService(new(mockRepo), new(mockCatalog), nil)

	_, err := svc.AddItem(context.Background(), AddItemInput{UserID: 7, ProductID: 42, Quantity: 0})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestAddItem_EventFailureDoesNotFailOperation(t *testing.T) {
	repo := new(mockRepo)
	catalog := new(mockCatalog)
	events := new(mockEvents)

	catalog.On("Product", mock.Anything, int64(42)).Return(&testProduct, nil)
	repo.On("AddItem", mock.Anything, int64(7), int64(42), 1).
		Return(&domain.CartItem{ID: 1, CartID: 3, ProductID: 42, Quantity: 1}, nil)
	events.On("ItemAdded", mock.Anything, mock.Anything).Return(errors.New("broker down"))

	svc := newService(repo, catalog, events)
	_, err := svc.AddItem(context.Background(), AddItemInput{UserID: 7, ProductID: 42, Quantity: 1})
	assert.NoError(t, err)
}

// A product can be added once; re-adding is rejected and a quantity update
// changes the single existing row.
func TestAddTwiceThenUpdateQuantity(t *testing.T) {
	repo := new(mockRepo)
	catalog := new(mockCatalog)

	catalog.On("Product", mock.Anything, int64(42)).Return(&testProduct, nil)
	catalog.On("Products", mock.Anything).
		Return(map[int64]domain.Product{42: testProduct}, nil)

	repo.On("AddItem", mock.Anything, int64(7), int64(42), 2).
		Return(&domain.CartItem{ID: 1, CartID: 3, ProductID: 42, Quantity: 2}, nil).Once()
	repo.On("AddItem", mock.Anything, int64(7), int64(42), 3).
		Return(nil, apperrors.Rejected("product 42 is already in the cart")).Once()
	repo.On("UpdateQuantity", mock.Anything, int64(1), 5).
		Return(&repository.OwnedItem{
			Item:   domain.CartItem{ID: 1, CartID: 3, ProductID: 42, Quantity: 5},
			UserID: 7,
		}, nil)
	repo.On("GetItems", mock.Anything, int64(7)).
		Return([]domain.CartItem{{ID: 1, CartID: 3, ProductID: 42, Quantity: 5}}, nil)

	svc := newService(repo, catalog, nil)
	ctx := context.Background()

	first, err := svc.AddItem(ctx, AddItemInput{UserID: 7, ProductID: 42, Quantity: 2})
	require.NoError(t, err)

	_, err = svc.AddItem(ctx, AddItemInput{UserID: 7, ProductID: 42, Quantity: 3})
	assert.ErrorIs(t, err, apperrors.ErrRejected)

	updated, err := svc.UpdateQuantity(ctx, first.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, updated.Quantity)

	items, err := svc.GetItems(ctx, 7)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)
	assert.Equal(t, int64(125000), items[0].TotalPrice)
}

func TestGetItem_AssemblesLineItem(t *testing.T) {
	repo := new(mockRepo)
	catalog := new(mockCatalog)

	repo.On("GetItem", mock.Anything, int64(5)).
		Return(&repository.OwnedItem{
			Item:   domain.CartItem{ID: 5, CartID: 3, ProductID: 42, Quantity: 4},
			UserID: 7,
		}, nil)
	catalog.On("Product", mock.Anything, int64(42)).Return(&testProduct, nil)

	svc := newService(repo, catalog, nil)
	li, err := svc.GetItem(context.Background(), 5)
	require.NoError(t, err)

	assert.Equal(t, int64(100000), li.TotalPrice)
	assert.Equal(t, int64(7), li.UserID)
}

func TestGetItem_OrphanedProductIsInternal(t *testing.T) {
	repo := new(mockRepo)
	catalog := new(mockCatalog)

	repo.On("GetItem", mock.Anything, int64(5)).
		Return(&repository.OwnedItem{
			Item:   domain.CartItem{ID: 5, CartID: 3, ProductID: 42, Quantity: 4},
			UserID: 7,
		}, nil)
	catalog.On("Product", mock.Anything, int64(42)).
		Return(nil, apperrors.NotFound("product", "42"))

	svc := newService(repo, catalog, nil)
	_, err := svc.GetItem(context.Background(), 5)

	assert.ErrorIs(t, err, apperrors.ErrInternal)
	assert.NotErrorIs(t, err, apperrors.ErrNotFound)
}

func TestGetItems_EmptyCart(t *testing.T) {
	repo := new(mockRepo)
	catalog := new(mockCatalog)

	repo.On("GetItems", mock.Anything, int64(7)).Return([]domain.CartItem{}, nil)

	svc := newService(repo, catalog, nil)
	items, err := svc.GetItems(context.Background(), 7)
	require.NoError(t, err)

	assert.NotNil(t, items)
	assert.Empty(t, items)
	catalog.AssertNotCalled(t, "Products", mock.Anything)
}

func TestUpdateQuantity_InvalidQuantity(t *testing.T) {
	svc := newService(new(mockRepo), new(mockCatalog), nil)

	_, err := svc.UpdateQuantity(context.Background(), 5, 0)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestUpdateQuantity_MissingItem(t *testing.T) {
	repo := new(mockRepo)
	catalog := new(mockCatalog)

	repo.On("UpdateQuantity", mock.Anything, int64(99), 3).
		Return(nil, apperrors.NotFound("cart item", "99"))

	svc := newService(repo, catalog, nil)
	_, err := svc.UpdateQuantity(context.Background(), 99, 3)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestDeleteItem_ReturnsRemovedItem(t *testing.T) {
	repo := new(mockRepo)
	catalog := new(mockCatalog)
	events := new(mockEvents)

	repo.On("DeleteItem", mock.Anything, int64(5)).
		Return(&repository.OwnedItem{
			Item:   domain.CartItem{ID: 5, CartID: 3, ProductID: 42, Quantity: 4},
			UserID: 7,
		}, nil)
	catalog.On("Product", mock.Anything, int64(42)).Return(&testProduct, nil)
	events.On("ItemRemoved", mock.Anything, int64(7), mock.Anything).Return(nil)

	svc := newService(repo, catalog, events)
	li, err := svc.DeleteItem(context.Background(), 5)
	require.NoError(t, err)

	assert.Equal(t, int64(5), li.ID)
	assert.Equal(t, "Air Pods", li.ProductName)
	events.AssertCalled(t, "ItemRemoved", mock.Anything, int64(7), mock.Anything)
}

func TestDeleteItem_SurvivesCatalogFailure(t *testing.T) {
	repo := new(mockRepo)
	catalog := new(mockCatalog)

	repo.On("DeleteItem", mock.Anything, int64(5)).
		Return(&repository.OwnedItem{
			Item:   domain.CartItem{ID: 5, CartID: 3, ProductID: 42, Quantity: 4},
			UserID: 7,
		}, nil)
	catalog.On("Product", mock.Anything, int64(42)).
		Return(nil, apperrors.ServiceUnavailable("catalog"))

	svc := newService(repo, catalog, nil)
	li, err := svc.DeleteItem(context.Background(), 5)
	require.NoError(t, err)

	assert.Equal(t, int64(5), li.ID)
	assert.Empty(t, li.ProductName)
	assert.Equal(t, int64(42), li.ProductID)
}
