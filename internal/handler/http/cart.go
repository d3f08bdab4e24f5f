package http

import (
	"log/slog"
	"net/http"

	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/validator"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/event"
	"github.com/utafrali/storefront/internal/store"
)

// CartHandler handles HTTP requests for cart endpoints. The cart itself is
// permissive; request validation happens here, at the boundary.
type CartHandler struct {
	registry *store.Registry
	producer event.Publisher
	logger   *slog.Logger
}

// NewCartHandler creates a new cart HTTP handler.
func NewCartHandler(registry *store.Registry, producer event.Publisher, logger *slog.Logger) *CartHandler {
	return &CartHandler{
		registry: registry,
		producer: producer,
		logger:   logger,
	}
}

// --- Request DTOs ---

// AddItemRequest is the JSON request body for adding an item to the cart.
type AddItemRequest struct {
	Product  domain.Product `json:"product" validate:"required"`
	Quantity int            `json:"quantity" validate:"required,gte=1"`
	Size     string         `json:"size"`
	Color    string         `json:"color"`
}

// UpdateQuantityRequest is the JSON request body for setting a line's
// quantity.
type UpdateQuantityRequest struct {
	Product  domain.Product `json:"product" validate:"required"`
	Quantity int            `json:"quantity" validate:"gte=1"`
	Size     string         `json:"size"`
	Color    string         `json:"color"`
}

// RemoveItemRequest identifies the cart line to remove.
type RemoveItemRequest struct {
	Product domain.Product `json:"product" validate:"required"`
	Size    string         `json:"size"`
	Color   string         `json:"color"`
}

// CartResponse is the cart snapshot returned by every cart endpoint.
type CartResponse struct {
	Items []domain.CartItem `json:"items"`
	Total float64           `json:"total"`
	Count int               `json:"count"`
}

func cartResponse(cart *store.Cart) CartResponse {
	items := cart.Snapshot()
	return CartResponse{
		Items: items,
		Total: domain.CartTotal(items),
		Count: domain.CartCount(items),
	}
}

func (h *CartHandler) publishUpdate(r *http.Request, cart *store.Cart) {
	sid := sessionID(r)
	if err := h.producer.PublishCartUpdated(r.Context(), sid, cart.Snapshot()); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to publish cart.updated event",
			slog.String("session_id", sid),
			slog.String("error", err.Error()),
		)
	}
}

// GetCart handles GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	cart := h.registry.Cart(r.Context(), sessionID(r))
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: cartResponse(cart)})
}

// AddItem handles POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	cart := h.registry.Cart(r.Context(), sessionID(r))
	cart.Add(r.Context(), domain.CartItem{
		Product:  req.Product,
		Quantity: req.Quantity,
		Size:     req.Size,
		Color:    req.Color,
	})
	h.publishUpdate(r, cart)

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: cartResponse(cart)})
}

// UpdateQuantity handles PUT /api/v1/cart/items
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	var req UpdateQuantityRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	cart := h.registry.Cart(r.Context(), sessionID(r))
	cart.UpdateQuantity(r.Context(), domain.CartItem{
		Product: req.Product,
		Size:    req.Size,
		Color:   req.Color,
	}, req.Quantity)
	h.publishUpdate(r, cart)

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: cartResponse(cart)})
}

// RemoveItem handles POST /api/v1/cart/items/remove
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	var req RemoveItemRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	cart := h.registry.Cart(r.Context(), sessionID(r))
	cart.Remove(r.Context(), domain.CartItem{
		Product: req.Product,
		Size:    req.Size,
		Color:   req.Color,
	})
	h.publishUpdate(r, cart)

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: cartResponse(cart)})
}

// ClearCart handles DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	cart := h.registry.Cart(r.Context(), sessionID(r))
	cart.Clear(r.Context())
	h.publishUpdate(r, cart)

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: cartResponse(cart)})
}
