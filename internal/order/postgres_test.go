package order

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/pkg/database"
	apperrors "github.com/utafrali/storefront/pkg/errors"

	"github.com/utafrali/storefront/internal/domain"
)

func newTestRepo(t *testing.T) (*PostgresRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	return NewPostgresRepository(mock), mock
}

func sampleOrder() *domain.Order {
	return &domain.Order{
		CustomerName:  "Jane Doe",
		CustomerEmail: "jane@example.com",
		OrderDate:     time.Now().UTC().Truncate(time.Microsecond),
		Total:         2997,
		Status:        domain.OrderStatusPending,
		ShippingAddress: domain.Address{
			Street:  "123 Main St",
			City:    "Springfield",
			State:   "IL",
			ZipCode: "62704",
			Country: "USA",
		},
		PaymentMethod: "credit_card",
		Items: []domain.OrderItem{
			{ProductID: 1, ProductName: "Oxford Shirt", Quantity: 2, Price: 999, Total: 1998},
			{ProductID: 3, ProductName: "Denim Shirt", Quantity: 1, Price: 999, Total: 999},
		},
	}
}

func orderRows(o *domain.Order) *pgxmock.Rows {
	addressJSON, _ := json.Marshal(o.ShippingAddress)
	itemsJSON, _ := json.Marshal(o.Items)
	return pgxmock.NewRows([]string{
		"id", "customer_name", "customer_email", "order_date", "total",
		"status", "shipping_address", "payment_method", "items",
	}).AddRow(
		o.ID, o.CustomerName, o.CustomerEmail, o.OrderDate, o.Total,
		o.Status, addressJSON, o.PaymentMethod, itemsJSON,
	)
}

func TestPostgresRepository_Create(t *testing.T) {
	repo, mock := newTestRepo(t)

	o := sampleOrder()

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO orders").
		WithArgs(
			o.CustomerName, o.CustomerEmail, o.OrderDate, o.Total, o.Status,
			pgxmock.AnyArg(), // shipping JSON
			o.PaymentMethod,
		).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(7))
	for i, item := range o.Items {
		mock.ExpectExec("INSERT INTO order_items").
			WithArgs(7, i, item.ProductID, item.ProductName, item.Quantity, item.Price, item.Total).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
	}
	mock.ExpectCommit()

	err := repo.Create(context.Background(), o)
	require.NoError(t, err)
	assert.Equal(t, 7, o.ID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_Create_InsertError(t *testing.T) {
	repo, mock := newTestRepo(t)

	o := sampleOrder()

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO orders").
		WithArgs(
			o.CustomerName, o.CustomerEmail, o.OrderDate, o.Total, o.Status,
			pgxmock.AnyArg(),
			o.PaymentMethod,
		).
		WillReturnError(errors.New("connection refused"))
	mock.ExpectRollback()

	err := repo.Create(context.Background(), o)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "insert order")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_GetByID(t *testing.T) {
	repo, mock := newTestRepo(t)

	want := sampleOrder()
	want.ID = 7

	mock.ExpectQuery("SELECT").
		WithArgs(7).
		WillReturnRows(orderRows(want))

	got, err := repo.GetByID(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, want.CustomerName, got.CustomerName)
	assert.Equal(t, want.ShippingAddress, got.ShippingAddress)
	require.Len(t, got.Items, 2)
	assert.Equal(t, "Oxford Shirt", got.Items[0].ProductName)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_GetByID_NotFound(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectQuery("SELECT").
		WithArgs(99).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "customer_name", "customer_email", "order_date", "total",
			"status", "shipping_address", "payment_method", "items",
		}))

	_, err := repo.GetByID(context.Background(), 99)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_List(t *testing.T) {
	repo, mock := newTestRepo(t)

	want := sampleOrder()
	want.ID = 7

	mock.ExpectQuery("SELECT").
		WillReturnRows(orderRows(want))

	orders, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, 7, orders[0].ID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_UpdateStatus(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectExec("UPDATE orders").
		WithArgs(domain.OrderStatusShipped, 7).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := repo.UpdateStatus(context.Background(), 7, domain.OrderStatusShipped)
	assert.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_UpdateStatus_NotFound(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectExec("UPDATE orders").
		WithArgs(domain.OrderStatusShipped, 99).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.UpdateStatus(context.Background(), 99, domain.OrderStatusShipped)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}
