package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// Product is one catalog entry: a uniform piece in a specific size and color
// for a specific school. Quantity is the authoritative on-hand stock count.
type Product struct {
	ID          uuid.UUID
	Name        string
	Category    string
	Size        string
	Color       string
	School      string
	Price       pgtype.Numeric
	Quantity    int32
	Description pgtype.Text
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Customer struct {
	ID        uuid.UUID
	Name      string
	Phone     pgtype.Text
	Email     pgtype.Text
	School    pgtype.Text
	Notes     pgtype.Text
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Order carries quantity/amount totals snapshotted at creation time; they are
// never recomputed from lines afterwards.
type Order struct {
	ID            uuid.UUID
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
	DeliveredAt   pgtype.Timestamptz
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// OrderLine captures the unit price at order creation; later catalog price
// edits must not alter it.
type OrderLine struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	ProductID uuid.UUID
	LineNo    int32
	Quantity  int32
	UnitPrice pgtype.Numeric
	Subtotal  pgtype.Numeric
}
