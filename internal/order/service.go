package order

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	apperrors "github.com/utafrali/storefront/pkg/errors"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/event"
	"github.com/utafrali/storefront/internal/store"
)

// Service implements the business logic for order operations.
type Service struct {
	repo     Repository
	producer event.Publisher
	logger   *slog.Logger
}

// NewService creates a new order service.
func NewService(repo Repository, producer event.Publisher, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		producer: producer,
		logger:   logger,
	}
}

// CheckoutInput holds the customer details for placing an order from a cart.
type CheckoutInput struct {
	CustomerName    string
	CustomerEmail   string
	ShippingAddress domain.Address
	PaymentMethod   string
}

// ListOrders returns all orders, newest first.
func (s *Service) ListOrders(ctx context.Context) ([]domain.Order, error) {
	orders, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// GetOrder retrieves an order by its ID.
func (s *Service) GetOrder(ctx context.Context, id int) (*domain.Order, error) {
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get order by id: %w", err)
	}
	return order, nil
}

// UpdateStatus changes the status of an order after validating the new
// status value.
func (s *Service) UpdateStatus(ctx context.Context, id int, status string) (*domain.Order, error) {
	if !domain.IsValidOrderStatus(status) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("invalid order status %q", status))
	}

	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get order by id: %w", err)
	}
	oldStatus := order.Status

	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}
	order.Status = status

	if err := s.producer.PublishOrderStatusChanged(ctx, id, oldStatus, status); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.status_changed event",
			slog.Int("order_id", id),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "order status updated",
		slog.Int("order_id", id),
		slog.String("old_status", oldStatus),
		slog.String("new_status", status),
	)
	return order, nil
}

// Checkout places an order from the current cart contents, then empties the
// cart. The cart is cleared only after the order is durably created.
func (s *Service) Checkout(ctx context.Context, cart *store.Cart, input CheckoutInput) (*domain.Order, error) {
	if input.CustomerName == "" {
		return nil, apperrors.InvalidInput("customer name is required")
	}
	if input.CustomerEmail == "" {
		return nil, apperrors.InvalidInput("customer email is required")
	}

	items := cart.Snapshot()
	if len(items) == 0 {
		return nil, apperrors.InvalidInput("cart is empty")
	}

	order := &domain.Order{
		CustomerName:    input.CustomerName,
		CustomerEmail:   input.CustomerEmail,
		OrderDate:       time.Now().UTC(),
		Total:           domain.CartTotal(items),
		Status:          domain.OrderStatusPending,
		Items:           make([]domain.OrderItem, len(items)),
		ShippingAddress: input.ShippingAddress,
		PaymentMethod:   input.PaymentMethod,
	}
	for i, item := range items {
		order.Items[i] = domain.OrderItem{
			ProductID:   item.Product.ID,
			ProductName: item.Product.Name,
			Quantity:    item.Quantity,
			Price:       item.Product.Price,
			Total:       item.Product.Price * float64(item.Quantity),
		}
	}

	if err := s.repo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	cart.Clear(ctx)

	if err := s.producer.PublishOrderCreated(ctx, order); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.created event",
			slog.Int("order_id", order.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "order placed",
		slog.Int("order_id", order.ID),
		slog.Float64("total", order.Total),
		slog.Int("items", len(order.Items)),
	)
	return order, nil
}
