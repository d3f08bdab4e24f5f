package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"

	"github.com/utafrali/storefront/pkg/database"
	apperrors "github.com/utafrali/storefront/pkg/errors"

	"github.com/utafrali/storefront/internal/domain"
)

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	pool database.DBTX
}

// NewPostgresRepository creates a new PostgreSQL-backed order repository.
func NewPostgresRepository(pool database.DBTX) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// orderColumns is the select list shared by GetByID and List. Items are
// aggregated into a JSONB array in the same query to avoid a second
// round-trip per order.
const orderColumns = `
	o.id, o.customer_name, o.customer_email, o.order_date, o.total, o.status,
	o.shipping_address, o.payment_method,
	COALESCE(
		JSONB_AGG(
			JSONB_BUILD_OBJECT(
				'product_id', oi.product_id,
				'product_name', oi.product_name,
				'quantity', oi.quantity,
				'price', oi.price,
				'total', oi.total
			) ORDER BY oi.position
		) FILTER (WHERE oi.order_id IS NOT NULL),
		'[]'::jsonb
	) AS items`

const orderGroupBy = `
	GROUP BY o.id, o.customer_name, o.customer_email, o.order_date, o.total,
		o.status, o.shipping_address, o.payment_method`

// Create inserts a new order and its items atomically within a transaction.
// The assigned ID is written back to order.ID.
func (r *PostgresRepository) Create(ctx context.Context, order *domain.Order) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	addressJSON, err := json.Marshal(order.ShippingAddress)
	if err != nil {
		return fmt.Errorf("marshal shipping address: %w", err)
	}

	orderQuery := `
		INSERT INTO orders (customer_name, customer_email, order_date, total, status, shipping_address, payment_method)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	err = tx.QueryRow(ctx, orderQuery,
		order.CustomerName,
		order.CustomerEmail,
		order.OrderDate,
		order.Total,
		order.Status,
		addressJSON,
		order.PaymentMethod,
	).Scan(&order.ID)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	itemQuery := `
		INSERT INTO order_items (order_id, position, product_id, product_name, quantity, price, total)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	for i, item := range order.Items {
		_, err = tx.Exec(ctx, itemQuery,
			order.ID,
			i,
			item.ProductID,
			item.ProductName,
			item.Quantity,
			item.Price,
			item.Total,
		)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// GetByID retrieves an order by its ID, eagerly loading its items.
func (r *PostgresRepository) GetByID(ctx context.Context, id int) (*domain.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders o
		LEFT JOIN order_items oi ON o.id = oi.order_id
		WHERE o.id = $1` + orderGroupBy

	order, err := scanOrder(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("order", strconv.Itoa(id))
		}
		return nil, fmt.Errorf("scan order: %w", err)
	}
	return order, nil
}

// List returns all orders, newest first, including their items.
func (r *PostgresRepository) List(ctx context.Context) ([]domain.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders o
		LEFT JOIN order_items oi ON o.id = oi.order_id` + orderGroupBy + `
		ORDER BY o.order_date DESC, o.id DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := make([]domain.Order, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, *order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}
	return orders, nil
}

// UpdateStatus changes the status of the order with the given ID.
func (r *PostgresRepository) UpdateStatus(ctx context.Context, id int, status string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE orders SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("order", strconv.Itoa(id))
	}
	return nil
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var (
		o           domain.Order
		addressJSON []byte
		itemsJSON   []byte
	)

	err := row.Scan(
		&o.ID,
		&o.CustomerName,
		&o.CustomerEmail,
		&o.OrderDate,
		&o.Total,
		&o.Status,
		&addressJSON,
		&o.PaymentMethod,
		&itemsJSON,
	)
	if err != nil {
		return nil, err
	}

	if len(addressJSON) > 0 && string(addressJSON) != "null" {
		if err := json.Unmarshal(addressJSON, &o.ShippingAddress); err != nil {
			return nil, fmt.Errorf("unmarshal shipping address: %w", err)
		}
	}

	o.Items = []domain.OrderItem{}
	if len(itemsJSON) > 0 && string(itemsJSON) != "null" {
		if err := json.Unmarshal(itemsJSON, &o.Items); err != nil {
			return nil, fmt.Errorf("unmarshal order items: %w", err)
		}
	}
	return &o, nil
}
