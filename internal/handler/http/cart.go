package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/RozzaysRed/OnlineShop-Blazor/internal/domain"
	"github.com/RozzaysRed/OnlineShop-Blazor/internal/service"
	apperrors "github.com/RozzaysRed/OnlineShop-Blazor/pkg/errors"
	"github.com/RozzaysRed/OnlineShop-Blazor/pkg/httputil"
	"github.com/RozzaysRed/OnlineShop-Blazor/pkg/validator"
)

// CartService is the use-case surface the HTTP layer depends on.
type CartService interface {
	AddItem(ctx context.Context, in service.AddItemInput) (domain.LineItem, error)
	GetItem(ctx context.Context, itemID int64) (domain.LineItem, error)
	GetItems(ctx context.Context, userID int64) ([]domain.LineItem, error)
	UpdateQuantity(ctx context.Context, itemID int64, quantity int) (domain.LineItem, error)
	DeleteItem(ctx context.Context, itemID int64) (domain.LineItem, error)
}

// CartHandler exposes the cart API over HTTP.
type CartHandler struct {
	service CartService
	logger  *slog.Logger
}

// NewCartHandler creates the cart HTTP handler.
func NewCartHandler(svc CartService, l *slog.Logger) *CartHandler {
	return &CartHandler{service: svc, logger: l}
}

type addItemRequest struct {
	UserID    int64 `json:"user_id" validate:"required,gt=0"`
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"required,gte=1"`
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity" validate:"required,gte=1"`
}

func pathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.InvalidInput(fmt.Sprintf("%s must be a positive integer", name))
	}
	return id, nil
}

// AddItem handles POST /api/v1/cart/items.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	li, err := h.service.AddItem(r.Context(), service.AddItemInput{
		UserID:    req.UserID,
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/v1/cart/items/%d", li.ID))
	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: li})
}

// GetItem handles GET /api/v1/cart/items/{id}.
func (h *CartHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	li, err := h.service.GetItem(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: li})
}

// GetItems handles GET /api/v1/cart/{userID}/items.
func (h *CartHandler) GetItems(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userID")
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	items, err := h.service.GetItems(r.Context(), userID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: items})
}

// UpdateQuantity handles PATCH /api/v1/cart/items/{id}.
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	var req updateQuantityRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	li, err := h.service.UpdateQuantity(r.Context(), id, req.Quantity)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: li})
}

// DeleteItem handles DELETE /api/v1/cart/items/{id}. The removed item is
// returned so clients can prune their local copy without a refetch.
func (h *CartHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	li, err := h.service.DeleteItem(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: li})
}
