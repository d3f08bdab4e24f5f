package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/validator"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/event"
	"github.com/utafrali/storefront/internal/store"
)

// WishlistHandler handles HTTP requests for wishlist endpoints.
type WishlistHandler struct {
	registry *store.Registry
	producer event.Publisher
	logger   *slog.Logger
}

// NewWishlistHandler creates a new wishlist HTTP handler.
func NewWishlistHandler(registry *store.Registry, producer event.Publisher, logger *slog.Logger) *WishlistHandler {
	return &WishlistHandler{
		registry: registry,
		producer: producer,
		logger:   logger,
	}
}

// WishlistItemRequest is the JSON request body for adding or toggling a
// wishlist entry.
type WishlistItemRequest struct {
	Product domain.Product `json:"product" validate:"required"`
}

// WishlistResponse is the wishlist snapshot returned by every wishlist
// endpoint.
type WishlistResponse struct {
	Items []domain.Product `json:"items"`
	Count int              `json:"count"`
}

func wishlistResponse(wl *store.Wishlist) WishlistResponse {
	items := wl.Snapshot()
	return WishlistResponse{Items: items, Count: len(items)}
}

func (h *WishlistHandler) publishUpdate(r *http.Request, wl *store.Wishlist) {
	sid := sessionID(r)
	if err := h.producer.PublishWishlistUpdated(r.Context(), sid, wl.Snapshot()); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to publish wishlist.updated event",
			slog.String("session_id", sid),
			slog.String("error", err.Error()),
		)
	}
}

// GetWishlist handles GET /api/v1/wishlist
func (h *WishlistHandler) GetWishlist(w http.ResponseWriter, r *http.Request) {
	wl := h.registry.Wishlist(r.Context(), sessionID(r))
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: wishlistResponse(wl)})
}

// AddItem handles POST /api/v1/wishlist/items
func (h *WishlistHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req WishlistItemRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	wl := h.registry.Wishlist(r.Context(), sessionID(r))
	wl.Add(r.Context(), req.Product)
	h.publishUpdate(r, wl)

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: wishlistResponse(wl)})
}

// Toggle handles POST /api/v1/wishlist/toggle
func (h *WishlistHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	var req WishlistItemRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	wl := h.registry.Wishlist(r.Context(), sessionID(r))
	wl.Toggle(r.Context(), req.Product)
	h.publishUpdate(r, wl)

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: wishlistResponse(wl)})
}

// ContainsResponse reports wishlist membership for a single product.
type ContainsResponse struct {
	ProductID int  `json:"productId"`
	Contains  bool `json:"contains"`
}

// Contains handles GET /api/v1/wishlist/contains/{productId}
func (h *WishlistHandler) Contains(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.Atoi(chi.URLParam(r, "productId"))
	if err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("product id must be an integer"), h.logger)
		return
	}

	wl := h.registry.Wishlist(r.Context(), sessionID(r))
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: ContainsResponse{
		ProductID: productID,
		Contains:  wl.Contains(productID),
	}})
}

// RemoveItem handles DELETE /api/v1/wishlist/items/{productId}
func (h *WishlistHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.Atoi(chi.URLParam(r, "productId"))
	if err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("product id must be an integer"), h.logger)
		return
	}

	wl := h.registry.Wishlist(r.Context(), sessionID(r))
	wl.Remove(r.Context(), productID)
	h.publishUpdate(r, wl)

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: wishlistResponse(wl)})
}

// ClearWishlist handles DELETE /api/v1/wishlist
func (h *WishlistHandler) ClearWishlist(w http.ResponseWriter, r *http.Request) {
	wl := h.registry.Wishlist(r.Context(), sessionID(r))
	wl.Clear(r.Context())
	h.publishUpdate(r, wl)

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: wishlistResponse(wl)})
}
