package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/storefront/pkg/health"
	"github.com/utafrali/storefront/pkg/middleware"

	"github.com/utafrali/storefront/internal/account"
	"github.com/utafrali/storefront/internal/auth"
	"github.com/utafrali/storefront/internal/catalog"
	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/event"
	"github.com/utafrali/storefront/internal/order"
	"github.com/utafrali/storefront/internal/store"
)

// Deps bundles everything the router needs.
type Deps struct {
	Catalog  *catalog.Service
	Registry *store.Registry
	Auth     *auth.Service
	Account  *account.Service
	Orders   *order.Service
	Producer event.Publisher
	Health   *health.Handler
	Logger   *slog.Logger

	// Requests per second and burst for per-IP rate limiting.
	// A zero RateLimitRPS disables the limiter.
	RateLimitRPS   int
	RateLimitBurst int
}

// NewRouter creates a chi router with all storefront routes registered.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if deps.RateLimitRPS > 0 {
		r.Use(middleware.RateLimit(deps.RateLimitRPS, deps.RateLimitBurst, deps.Logger))
	}
	r.Use(middleware.RequestLogging(deps.Logger))
	r.Use(middleware.PrometheusMetrics("storefront"))
	r.Use(middleware.Tracing("storefront"))
	r.Use(middleware.RequestLogger(deps.Logger))

	// Health check endpoints
	r.Get("/health/live", deps.Health.LivenessHandler())
	r.Get("/health/ready", deps.Health.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	productHandler := NewProductHandler(deps.Catalog, deps.Logger)
	cartHandler := NewCartHandler(deps.Registry, deps.Producer, deps.Logger)
	wishlistHandler := NewWishlistHandler(deps.Registry, deps.Producer, deps.Logger)
	authHandler := NewAuthHandler(deps.Auth, deps.Logger)
	orderHandler := NewOrderHandler(deps.Orders, deps.Registry, deps.Logger)
	userHandler := NewUserHandler(deps.Account, deps.Logger)

	requireAuth := middleware.Auth(tokenValidator(deps.Auth))
	requireAdmin := middleware.RequireRole(domain.RoleAdmin)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		// Catalog reads need no session.
		r.Get("/products", productHandler.ListProducts)
		r.Get("/products/{id}", productHandler.GetProduct)
		r.Get("/categories", productHandler.ListCategories)
		r.Get("/brands", productHandler.ListBrands)

		// Session-scoped state.
		r.Group(func(r chi.Router) {
			r.Use(RequireSession)

			r.Get("/cart", cartHandler.GetCart)
			r.Delete("/cart", cartHandler.ClearCart)
			r.Post("/cart/items", cartHandler.AddItem)
			r.Put("/cart/items", cartHandler.UpdateQuantity)
			r.Post("/cart/items/remove", cartHandler.RemoveItem)

			r.Get("/wishlist", wishlistHandler.GetWishlist)
			r.Delete("/wishlist", wishlistHandler.ClearWishlist)
			r.Post("/wishlist/items", wishlistHandler.AddItem)
			r.Post("/wishlist/toggle", wishlistHandler.Toggle)
			r.Get("/wishlist/contains/{productId}", wishlistHandler.Contains)
			r.Delete("/wishlist/items/{productId}", wishlistHandler.RemoveItem)

			r.Post("/auth/login", authHandler.Login)
			r.Post("/auth/register", authHandler.Register)
			r.Post("/auth/logout", authHandler.Logout)
			r.Get("/auth/me", authHandler.Me)

			r.Post("/checkout", orderHandler.Checkout)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/auth/password", authHandler.ChangePassword)
			})
		})

		// Admin tables.
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Use(requireAdmin)

			r.Get("/orders", orderHandler.ListOrders)
			r.Get("/orders/{id}", orderHandler.GetOrder)
			r.Put("/orders/{id}/status", orderHandler.UpdateOrderStatus)

			r.Get("/users", userHandler.ListUsers)
			r.Post("/users", userHandler.CreateUser)
			r.Get("/users/{id}", userHandler.GetUser)
			r.Put("/users/{id}", userHandler.UpdateUser)
			r.Delete("/users/{id}", userHandler.DeleteUser)
		})
	})

	return r
}

// tokenValidator adapts the auth service's JWT validation to the middleware's
// claim shape.
func tokenValidator(svc *auth.Service) middleware.TokenValidator {
	return func(token string) (*middleware.Claims, error) {
		claims, err := svc.ValidateToken(token)
		if err != nil {
			return nil, err
		}
		return &middleware.Claims{
			UserID: strconv.Itoa(claims.UserID),
			Email:  claims.Email,
			Role:   claims.Role,
		}, nil
	}
}
