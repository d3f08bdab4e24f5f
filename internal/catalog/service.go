package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	apperrors "github.com/utafrali/storefront/pkg/errors"

	"github.com/utafrali/storefront/internal/domain"
)

// Fetcher retrieves the raw product list from the upstream catalog.
type Fetcher interface {
	FetchProducts(ctx context.Context) ([]domain.Product, error)
}

// Service serves product reads from an in-memory snapshot of the upstream
// catalog, refreshed lazily once the snapshot is older than the TTL. A
// refresh failure falls back to the stale snapshot when one exists, so the
// storefront keeps serving products across upstream outages.
type Service struct {
	fetcher Fetcher
	ttl     time.Duration
	logger  *slog.Logger

	mu        sync.Mutex
	products  []domain.Product
	fetchedAt time.Time
}

// NewService creates a catalog service. A zero or negative ttl disables
// caching and refetches on every read.
func NewService(fetcher Fetcher, ttl time.Duration, logger *slog.Logger) *Service {
	return &Service{
		fetcher: fetcher,
		ttl:     ttl,
		logger:  logger,
	}
}

func (s *Service) snapshot(ctx context.Context) ([]domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.products != nil && time.Since(s.fetchedAt) < s.ttl {
		return s.products, nil
	}

	products, err := s.fetcher.FetchProducts(ctx)
	if err != nil {
		if s.products != nil {
			s.logger.WarnContext(ctx, "catalog refresh failed, serving stale snapshot",
				slog.String("error", err.Error()),
				slog.Time("fetched_at", s.fetchedAt),
			)
			return s.products, nil
		}
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	s.products = products
	s.fetchedAt = time.Now()
	return s.products, nil
}

// ListProducts returns all products in the catalog.
func (s *Service) ListProducts(ctx context.Context) ([]domain.Product, error) {
	products, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return slices.Clone(products), nil
}

// GetProduct retrieves a product by its ID.
func (s *Service) GetProduct(ctx context.Context, id int) (*domain.Product, error) {
	products, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	for i := range products {
		if products[i].ID == id {
			p := products[i]
			return &p, nil
		}
	}
	return nil, apperrors.NotFound("product", strconv.Itoa(id))
}

// ListByCategory returns products whose category matches, case-insensitively.
func (s *Service) ListByCategory(ctx context.Context, category string) ([]domain.Product, error) {
	return s.filter(ctx, func(p domain.Product) bool {
		return strings.EqualFold(p.Category, category)
	})
}

// ListByBrand returns products whose brand matches, case-insensitively.
func (s *Service) ListByBrand(ctx context.Context, brand string) ([]domain.Product, error) {
	return s.filter(ctx, func(p domain.Product) bool {
		return strings.EqualFold(p.Brand, brand)
	})
}

// Search returns products whose name, brand, or category contains the query,
// case-insensitively. An empty query matches everything.
func (s *Service) Search(ctx context.Context, query string) ([]domain.Product, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	return s.filter(ctx, func(p domain.Product) bool {
		return strings.Contains(strings.ToLower(p.Name), q) ||
			strings.Contains(strings.ToLower(p.Brand), q) ||
			strings.Contains(strings.ToLower(p.Category), q)
	})
}

// Categories returns the distinct category names in catalog order.
func (s *Service) Categories(ctx context.Context) ([]string, error) {
	products, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, p := range products {
		if p.Category != "" && !slices.Contains(out, p.Category) {
			out = append(out, p.Category)
		}
	}
	return out, nil
}

// Brands returns the distinct brand names in catalog order.
func (s *Service) Brands(ctx context.Context) ([]string, error) {
	products, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, p := range products {
		if p.Brand != "" && !slices.Contains(out, p.Brand) {
			out = append(out, p.Brand)
		}
	}
	return out, nil
}

func (s *Service) filter(ctx context.Context, keep func(domain.Product) bool) ([]domain.Product, error) {
	products, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Product, 0)
	for _, p := range products {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out, nil
}
