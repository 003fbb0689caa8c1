package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const getNextOrderNumber = `
SELECT COALESCE(MAX(SUBSTRING(order_number FROM 5)::int), 0) + 1 FROM orders
`

// GetNextOrderNumber returns the next sequence value for FRD-prefixed order
// numbers. The unique index on order_number catches races; callers retry.
func (q *Queries) GetNextOrderNumber(ctx context.Context) (int32, error) {
	var next int32
	err := q.db.QueryRow(ctx, getNextOrderNumber).Scan(&next)
	return next, err
}

const createOrder = `
INSERT INTO orders (order_number, customer_id, school, order_type, status, payment_method, notes, total_quantity, total_amount, delivery_due)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING id, order_number, customer_id, school, order_type, status, payment_method, notes, total_quantity, total_amount, delivery_due, delivered_at, created_at, updated_at
`

type CreateOrderParams struct {
	OrderNumber   string
	CustomerID    uuid.UUID
	School        string
	OrderType     string
	Status        string
	PaymentMethod pgtype.Text
	Notes         pgtype.Text
	TotalQuantity int32
	TotalAmount   pgtype.Numeric
	DeliveryDue   pgtype.Date
}

func (q *Queries) CreateOrder(ctx context.Context, arg CreateOrderParams) (Order, error) {
	row := q.db.QueryRow(ctx, createOrder,
		arg.OrderNumber, arg.CustomerID, arg.School, arg.OrderType, arg.Status,
		arg.PaymentMethod, arg.Notes, arg.TotalQuantity, arg.TotalAmount, arg.DeliveryDue)
	var o Order
	err := row.Scan(&o.ID, &o.OrderNumber, &o.CustomerID, &o.School, &o.OrderType, &o.Status,
		&o.PaymentMethod, &o.Notes, &o.TotalQuantity, &o.TotalAmount, &o.DeliveryDue,
		&o.DeliveredAt, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}

const createOrderLine = `
INSERT INTO order_lines (order_id, product_id, line_no, quantity, unit_price, subtotal)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, order_id, product_id, line_no, quantity, unit_price, subtotal
`

type CreateOrderLineParams struct {
	OrderID   uuid.UUID
	ProductID uuid.UUID
	LineNo    int32
	Quantity  int32
	UnitPrice pgtype.Numeric
	Subtotal  pgtype.Numeric
}

func (q *Queries) CreateOrderLine(ctx context.Context, arg CreateOrderLineParams) (OrderLine, error) {
	row := q.db.QueryRow(ctx, createOrderLine,
		arg.OrderID, arg.ProductID, arg.LineNo, arg.Quantity, arg.UnitPrice, arg.Subtotal)
	var l OrderLine
	err := row.Scan(&l.ID, &l.OrderID, &l.ProductID, &l.LineNo, &l.Quantity, &l.UnitPrice, &l.Subtotal)
	return l, err
}

const getOrder = `
SELECT id, order_number, customer_id, school, order_type, status, payment_method, notes, total_quantity, total_amount, delivery_due, delivered_at, created_at, updated_at
FROM orders WHERE id = $1
`

func (q *Queries) GetOrder(ctx context.Context, id uuid.UUID) (Order, error) {
	row := q.db.QueryRow(ctx, getOrder, id)
	var o Order
	err := row.Scan(&o.ID, &o.OrderNumber, &o.CustomerID, &o.School, &o.OrderType, &o.Status,
		&o.PaymentMethod, &o.Notes, &o.TotalQuantity, &o.TotalAmount, &o.DeliveryDue,
		&o.DeliveredAt, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}

const getOrderForUpdate = `
SELECT id, order_number, customer_id, school, order_type, status, payment_method, notes, total_quantity, total_amount, delivery_due, delivered_at, created_at, updated_at
FROM orders WHERE id = $1
FOR UPDATE
`

// GetOrderForUpdate locks the order row so concurrent status transitions and
// deletions serialize on it.
func (q *Queries) GetOrderForUpdate(ctx context.Context, id uuid.UUID) (Order, error) {
	row := q.db.QueryRow(ctx, getOrderForUpdate, id)
	var o Order
	err := row.Scan(&o.ID, &o.OrderNumber, &o.CustomerID, &o.School, &o.OrderType, &o.Status,
		&o.PaymentMethod, &o.Notes, &o.TotalQuantity, &o.TotalAmount, &o.DeliveryDue,
		&o.DeliveredAt, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}

const listOrders = `
SELECT id, order_number, customer_id, school, order_type, status, payment_method, notes, total_quantity, total_amount, delivery_due, delivered_at, created_at, updated_at
FROM orders
WHERE ($1::text IS NULL OR status = $1)
  AND ($2::text IS NULL OR school = $2)
  AND ($3::text IS NULL OR order_type = $3)
ORDER BY created_at DESC
`

type ListOrdersParams struct {
	Status    pgtype.Text
	School    pgtype.Text
	OrderType pgtype.Text
}

func (q *Queries) ListOrders(ctx context.Context, arg ListOrdersParams) ([]Order, error) {
	rows, err := q.db.Query(ctx, listOrders, arg.Status, arg.School, arg.OrderType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.OrderNumber, &o.CustomerID, &o.School, &o.OrderType, &o.Status,
			&o.PaymentMethod, &o.Notes, &o.TotalQuantity, &o.TotalAmount, &o.DeliveryDue,
			&o.DeliveredAt, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, o)
	}
	return items, rows.Err()
}

const listOrderLines = `
SELECT id, order_id, product_id, line_no, quantity, unit_price, subtotal
FROM order_lines WHERE order_id = $1
ORDER BY line_no
`

func (q *Queries) ListOrderLines(ctx context.Context, orderID uuid.UUID) ([]OrderLine, error) {
	rows, err := q.db.Query(ctx, listOrderLines, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []OrderLine
	for rows.Next() {
		var l OrderLine
		if err := rows.Scan(&l.ID, &l.OrderID, &l.ProductID, &l.LineNo, &l.Quantity, &l.UnitPrice, &l.Subtotal); err != nil {
			return nil, err
		}
		items = append(items, l)
	}
	return items, rows.Err()
}

const updateOrderStatus = `
UPDATE orders
SET status       = $2,
    delivered_at = CASE WHEN $2 = 'DELIVERED' THEN now() ELSE delivered_at END,
    updated_at   = now()
WHERE id = $1 AND status = $3
RETURNING id, order_number, customer_id, school, order_type, status, payment_method, notes, total_quantity, total_amount, delivery_due, delivered_at, created_at, updated_at
`

type UpdateOrderStatusParams struct {
	ID         uuid.UUID
	Status     string
	PrevStatus string
}

// UpdateOrderStatus only succeeds when the row is still in PrevStatus, which
// guards against lost updates even outside a FOR UPDATE transaction.
func (q *Queries) UpdateOrderStatus(ctx context.Context, arg UpdateOrderStatusParams) (Order, error) {
	row := q.db.QueryRow(ctx, updateOrderStatus, arg.ID, arg.Status, arg.PrevStatus)
	var o Order
	err := row.Scan(&o.ID, &o.OrderNumber, &o.CustomerID, &o.School, &o.OrderType, &o.Status,
		&o.PaymentMethod, &o.Notes, &o.TotalQuantity, &o.TotalAmount, &o.DeliveryDue,
		&o.DeliveredAt, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}

const deleteOrder = `
DELETE FROM orders WHERE id = $1 RETURNING id
`

// DeleteOrder removes the order; order_lines go with it via ON DELETE CASCADE.
func (q *Queries) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	var deleted uuid.UUID
	return q.db.QueryRow(ctx, deleteOrder, id).Scan(&deleted)
}
