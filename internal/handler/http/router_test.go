package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/utafrali/storefront/pkg/health"

	"github.com/utafrali/storefront/internal/account"
	"github.com/utafrali/storefront/internal/auth"
	"github.com/utafrali/storefront/internal/catalog"
	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/event"
	"github.com/utafrali/storefront/internal/kv"
	"github.com/utafrali/storefront/internal/order"
	"github.com/utafrali/storefront/internal/store"
)

type stubFetcher struct {
	products []domain.Product
}

func (f *stubFetcher) FetchProducts(ctx context.Context) ([]domain.Product, error) {
	return f.products, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func testRouter(t *testing.T) http.Handler {
	t.Helper()

	logger := testLogger()
	storage := kv.NewMemory()

	fetcher := &stubFetcher{products: []domain.Product{
		{ID: 1, Name: "Oxford Shirt", Price: 999, Category: "Men", Brand: "Arrow"},
		{ID: 2, Name: "Summer Dress", Price: 1499, Category: "Women", Brand: "Zara"},
	}}

	adminHash, err := bcrypt.GenerateFromPassword([]byte("admin password"), bcrypt.MinCost)
	require.NoError(t, err)
	users := account.NewMemoryRepository([]domain.User{
		{ID: 1, Email: "admin@example.com", PasswordHash: string(adminHash), Role: domain.RoleAdmin, Status: domain.UserStatusActive},
	})

	var producer *event.Producer // nil drops all events

	return NewRouter(Deps{
		Catalog:  catalog.NewService(fetcher, time.Minute, logger),
		Registry: store.NewRegistry(storage, logger),
		Auth:     auth.NewService(users, auth.NewJWTManager("test-secret", time.Hour), storage, logger),
		Account:  account.NewService(users, logger),
		Orders:   order.NewService(order.NewMemoryRepository(nil), producer, logger),
		Producer: producer,
		Health:   health.NewHandler(),
		Logger:   logger,
	})
}

func TestRouter_RateLimitsWhenConfigured(t *testing.T) {
	logger := testLogger()
	storage := kv.NewMemory()
	var producer *event.Producer

	router := NewRouter(Deps{
		Catalog:  catalog.NewService(&stubFetcher{}, time.Minute, logger),
		Registry: store.NewRegistry(storage, logger),
		Auth:     auth.NewService(account.NewMemoryRepository(nil), auth.NewJWTManager("test-secret", time.Hour), storage, logger),
		Account:  account.NewService(account.NewMemoryRepository(nil), logger),
		Orders:   order.NewService(order.NewMemoryRepository(nil), producer, logger),
		Producer: producer,
		Health:   health.NewHandler(),
		Logger:   logger,

		RateLimitRPS:   1,
		RateLimitBurst: 1,
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func doJSON(t *testing.T, router http.Handler, method, path, session string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if session != "" {
		req.Header.Set("X-Session-ID", session)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, target any) {
	t.Helper()
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.NoError(t, json.Unmarshal(envelope.Data, target))
}

func adminToken(t *testing.T, router http.Handler) string {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/api/v1/auth/login", "admin-session", map[string]string{
		"email":    "admin@example.com",
		"password": "admin password",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var session auth.Session
	decodeData(t, rec, &session)
	return session.Token
}

func TestRouter_ListProducts(t *testing.T) {
	router := testRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/v1/products", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var products []domain.Product
	decodeData(t, rec, &products)
	assert.Len(t, products, 2)
}

func TestRouter_GetProduct(t *testing.T) {
	router := testRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/v1/products/2", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var product domain.Product
	decodeData(t, rec, &product)
	assert.Equal(t, "Summer Dress", product.Name)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/products/99", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/products/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_ProductFilters(t *testing.T) {
	router := testRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/v1/products?category=Men", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var products []domain.Product
	decodeData(t, rec, &products)
	require.Len(t, products, 1)
	assert.Equal(t, 1, products[0].ID)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/products?search=dress", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, rec, &products)
	require.Len(t, products, 1)
	assert.Equal(t, 2, products[0].ID)
}

func TestRouter_CartRequiresSession(t *testing.T) {
	router := testRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/v1/cart", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "X-Session-ID")
}

func TestRouter_CartLifecycle(t *testing.T) {
	router := testRouter(t)

	item := map[string]any{
		"product":  map[string]any{"id": 1, "name": "Oxford Shirt", "price": 999},
		"quantity": 2,
		"size":     "M",
		"color":    "Red",
	}

	rec := doJSON(t, router, http.MethodPost, "/api/v1/cart/items", "s1", item)
	require.Equal(t, http.StatusOK, rec.Code)

	// Adding the same line again merges quantities.
	rec = doJSON(t, router, http.MethodPost, "/api/v1/cart/items", "s1", item)
	require.Equal(t, http.StatusOK, rec.Code)

	var cart CartResponse
	decodeData(t, rec, &cart)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 4, cart.Items[0].Quantity)
	assert.Equal(t, 3996.0, cart.Total)
	assert.Equal(t, 4, cart.Count)

	// Absolute quantity update.
	update := map[string]any{
		"product":  map[string]any{"id": 1, "name": "Oxford Shirt", "price": 999},
		"quantity": 1,
		"size":     "M",
		"color":    "Red",
	}
	rec = doJSON(t, router, http.MethodPut, "/api/v1/cart/items", "s1", update)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, rec, &cart)
	assert.Equal(t, 1, cart.Count)

	// Another session has its own cart.
	rec = doJSON(t, router, http.MethodGet, "/api/v1/cart", "s2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, rec, &cart)
	assert.Empty(t, cart.Items)

	// Remove and clear.
	remove := map[string]any{
		"product": map[string]any{"id": 1, "name": "Oxford Shirt", "price": 999},
		"size":    "M",
		"color":   "Red",
	}
	rec = doJSON(t, router, http.MethodPost, "/api/v1/cart/items/remove", "s1", remove)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, rec, &cart)
	assert.Empty(t, cart.Items)
}

func TestRouter_CartAddValidation(t *testing.T) {
	router := testRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/cart/items", "s1", map[string]any{
		"product":  map[string]any{"id": 1, "price": 999},
		"quantity": 0,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_WishlistLifecycle(t *testing.T) {
	router := testRouter(t)

	add := map[string]any{"product": map[string]any{"id": 1, "name": "Oxford Shirt", "price": 999}}

	rec := doJSON(t, router, http.MethodPost, "/api/v1/wishlist/items", "s1", add)
	require.Equal(t, http.StatusOK, rec.Code)

	// Duplicate add keeps a single entry.
	rec = doJSON(t, router, http.MethodPost, "/api/v1/wishlist/items", "s1", add)
	require.Equal(t, http.StatusOK, rec.Code)

	var wl WishlistResponse
	decodeData(t, rec, &wl)
	assert.Equal(t, 1, wl.Count)

	// Toggle adds a second product, toggling again removes it.
	toggle := map[string]any{"product": map[string]any{"id": 2, "name": "Summer Dress", "price": 1499}}
	rec = doJSON(t, router, http.MethodPost, "/api/v1/wishlist/toggle", "s1", toggle)
	decodeData(t, rec, &wl)
	assert.Equal(t, 2, wl.Count)

	rec = doJSON(t, router, http.MethodPost, "/api/v1/wishlist/toggle", "s1", toggle)
	decodeData(t, rec, &wl)
	assert.Equal(t, 1, wl.Count)

	rec = doJSON(t, router, http.MethodDelete, "/api/v1/wishlist/items/1", "s1", nil)
	decodeData(t, rec, &wl)
	assert.Equal(t, 0, wl.Count)
}

func TestRouter_WishlistContains(t *testing.T) {
	router := testRouter(t)

	add := map[string]any{"product": map[string]any{"id": 1, "name": "Oxford Shirt", "price": 999}}
	rec := doJSON(t, router, http.MethodPost, "/api/v1/wishlist/items", "s1", add)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ContainsResponse
	rec = doJSON(t, router, http.MethodGet, "/api/v1/wishlist/contains/1", "s1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, rec, &resp)
	assert.Equal(t, ContainsResponse{ProductID: 1, Contains: true}, resp)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/wishlist/contains/2", "s1", nil)
	decodeData(t, rec, &resp)
	assert.False(t, resp.Contains)

	// Another session's wishlist does not leak in.
	rec = doJSON(t, router, http.MethodGet, "/api/v1/wishlist/contains/1", "s2", nil)
	decodeData(t, rec, &resp)
	assert.False(t, resp.Contains)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/wishlist/contains/shirt", "s1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_AuthFlow(t *testing.T) {
	router := testRouter(t)

	// Register a customer.
	rec := doJSON(t, router, http.MethodPost, "/api/v1/auth/register", "s1", map[string]string{
		"email":      "jane@example.com",
		"password":   "long enough",
		"first_name": "Jane",
		"last_name":  "Doe",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	// The session now resolves to the registered user.
	rec = doJSON(t, router, http.MethodGet, "/api/v1/auth/me", "s1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var user domain.User
	decodeData(t, rec, &user)
	assert.Equal(t, "jane@example.com", user.Email)

	// Logout drops the session.
	rec = doJSON(t, router, http.MethodPost, "/api/v1/auth/logout", "s1", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	rec = doJSON(t, router, http.MethodGet, "/api/v1/auth/me", "s1", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Wrong password is a 401.
	rec = doJSON(t, router, http.MethodPost, "/api/v1/auth/login", "s1", map[string]string{
		"email":    "jane@example.com",
		"password": "wrong password",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_CheckoutFlow(t *testing.T) {
	router := testRouter(t)

	doJSON(t, router, http.MethodPost, "/api/v1/cart/items", "s1", map[string]any{
		"product":  map[string]any{"id": 1, "name": "Oxford Shirt", "price": 999},
		"quantity": 3,
	})

	rec := doJSON(t, router, http.MethodPost, "/api/v1/checkout", "s1", map[string]any{
		"customer_name":  "Jane Doe",
		"customer_email": "jane@example.com",
		"payment_method": "credit_card",
		"shipping_address": map[string]string{
			"street": "123 Main St",
			"city":   "Springfield",
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var placed domain.Order
	decodeData(t, rec, &placed)
	assert.Equal(t, 1, placed.ID)
	assert.Equal(t, domain.OrderStatusPending, placed.Status)
	assert.Equal(t, 2997.0, placed.Total)

	// Checkout empties the cart.
	rec = doJSON(t, router, http.MethodGet, "/api/v1/cart", "s1", nil)
	var cart CartResponse
	decodeData(t, rec, &cart)
	assert.Empty(t, cart.Items)

	// An empty cart cannot be checked out again.
	rec = doJSON(t, router, http.MethodPost, "/api/v1/checkout", "s1", map[string]any{
		"customer_name":  "Jane Doe",
		"customer_email": "jane@example.com",
		"payment_method": "credit_card",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_AdminRoutesRequireAdminToken(t *testing.T) {
	router := testRouter(t)

	// No token at all.
	rec := doJSON(t, router, http.MethodGet, "/api/v1/orders", "s1", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// A customer token is not enough.
	doJSON(t, router, http.MethodPost, "/api/v1/auth/register", "s1", map[string]string{
		"email":      "jane@example.com",
		"password":   "long enough",
		"first_name": "Jane",
		"last_name":  "Doe",
	})
	rec = doJSON(t, router, http.MethodPost, "/api/v1/auth/login", "s1", map[string]string{
		"email":    "jane@example.com",
		"password": "long enough",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var session auth.Session
	decodeData(t, rec, &session)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/orders", "s1", nil,
		"Authorization", "Bearer "+session.Token)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// The admin token works.
	token := adminToken(t, router)
	rec = doJSON(t, router, http.MethodGet, "/api/v1/orders", "s1", nil,
		"Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_AdminOrderStatus(t *testing.T) {
	router := testRouter(t)
	token := adminToken(t, router)

	// Place an order first.
	doJSON(t, router, http.MethodPost, "/api/v1/cart/items", "s1", map[string]any{
		"product":  map[string]any{"id": 1, "name": "Oxford Shirt", "price": 999},
		"quantity": 1,
	})
	rec := doJSON(t, router, http.MethodPost, "/api/v1/checkout", "s1", map[string]any{
		"customer_name":  "Jane Doe",
		"customer_email": "jane@example.com",
		"payment_method": "credit_card",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var placed domain.Order
	decodeData(t, rec, &placed)

	path := fmt.Sprintf("/api/v1/orders/%d/status", placed.ID)
	rec = doJSON(t, router, http.MethodPut, path, "s1", map[string]string{"status": "shipped"},
		"Authorization", "Bearer "+token)
	require.Equal(t, http.StatusOK, rec.Code)
	var updated domain.Order
	decodeData(t, rec, &updated)
	assert.Equal(t, domain.OrderStatusShipped, updated.Status)

	rec = doJSON(t, router, http.MethodPut, path, "s1", map[string]string{"status": "teleported"},
		"Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_AdminUserCRUD(t *testing.T) {
	router := testRouter(t)
	token := adminToken(t, router)
	authz := []string{"Authorization", "Bearer " + token}

	rec := doJSON(t, router, http.MethodPost, "/api/v1/users", "s1", map[string]string{
		"email":      "new@example.com",
		"password":   "long enough",
		"first_name": "New",
		"role":       "user",
	}, authz...)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created domain.User
	decodeData(t, rec, &created)
	assert.Equal(t, 2, created.ID)

	rec = doJSON(t, router, http.MethodPut, "/api/v1/users/2", "s1", map[string]string{
		"status": "inactive",
	}, authz...)
	require.Equal(t, http.StatusOK, rec.Code)
	var updated domain.User
	decodeData(t, rec, &updated)
	assert.Equal(t, domain.UserStatusInactive, updated.Status)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/users", "s1", nil, authz...)
	require.Equal(t, http.StatusOK, rec.Code)
	var users []domain.User
	decodeData(t, rec, &users)
	assert.Len(t, users, 2)

	rec = doJSON(t, router, http.MethodDelete, "/api/v1/users/2", "s1", nil, authz...)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/users/2", "s1", nil, authz...)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_HealthEndpoints(t *testing.T) {
	router := testRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/health/live", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
