package order

import (
	"context"
	"slices"
	"strconv"
	"sync"

	apperrors "github.com/utafrali/storefront/pkg/errors"

	"github.com/utafrali/storefront/internal/domain"
)

// MemoryRepository is an in-memory order repository. IDs are assigned as one
// past the current maximum.
type MemoryRepository struct {
	mu     sync.RWMutex
	orders []domain.Order
}

// NewMemoryRepository creates an in-memory repository seeded with the given
// orders.
func NewMemoryRepository(seed []domain.Order) *MemoryRepository {
	return &MemoryRepository{orders: slices.Clone(seed)}
}

// List returns all orders, newest first.
func (r *MemoryRepository) List(ctx context.Context) ([]domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := slices.Clone(r.orders)
	slices.SortStableFunc(out, func(a, b domain.Order) int {
		return b.OrderDate.Compare(a.OrderDate)
	})
	return out, nil
}

// GetByID retrieves an order by ID.
func (r *MemoryRepository) GetByID(ctx context.Context, id int) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := range r.orders {
		if r.orders[i].ID == id {
			o := r.orders[i]
			o.Items = slices.Clone(o.Items)
			return &o, nil
		}
	}
	return nil, apperrors.NotFound("order", strconv.Itoa(id))
}

// Create adds a new order, assigning the next ID.
func (r *MemoryRepository) Create(ctx context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	max := 0
	for i := range r.orders {
		if r.orders[i].ID > max {
			max = r.orders[i].ID
		}
	}
	order.ID = max + 1
	r.orders = append(r.orders, *order)
	return nil
}

// UpdateStatus changes the status of the order with the given ID.
func (r *MemoryRepository) UpdateStatus(ctx context.Context, id int, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.orders {
		if r.orders[i].ID == id {
			r.orders[i].Status = status
			return nil
		}
	}
	return apperrors.NotFound("order", strconv.Itoa(id))
}
