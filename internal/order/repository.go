package order

import (
	"context"

	"github.com/utafrali/storefront/internal/domain"
)

// Repository defines persistence operations for orders.
type Repository interface {
	// List returns all orders, newest first.
	List(ctx context.Context) ([]domain.Order, error)

	// GetByID retrieves an order by its ID, including items.
	GetByID(ctx context.Context, id int) (*domain.Order, error)

	// Create inserts a new order and assigns its ID.
	Create(ctx context.Context, order *domain.Order) error

	// UpdateStatus changes the status of an order.
	UpdateStatus(ctx context.Context, id int, status string) error
}
