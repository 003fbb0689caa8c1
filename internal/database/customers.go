package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const createCustomer = `
INSERT INTO customers (name, phone, email, school, notes)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, name, phone, email, school, notes, created_at, updated_at
`

type CreateCustomerParams struct {
	Name   string
	Phone  pgtype.Text
	Email  pgtype.Text
	School pgtype.Text
	Notes  pgtype.Text
}

func (q *Queries) CreateCustomer(ctx context.Context, arg CreateCustomerParams) (Customer, error) {
	row := q.db.QueryRow(ctx, createCustomer, arg.Name, arg.Phone, arg.Email, arg.School, arg.Notes)
	var c Customer
	err := row.Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.School, &c.Notes, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

const getCustomer = `
SELECT id, name, phone, email, school, notes, created_at, updated_at
FROM customers WHERE id = $1
`

func (q *Queries) GetCustomer(ctx context.Context, id uuid.UUID) (Customer, error) {
	row := q.db.QueryRow(ctx, getCustomer, id)
	var c Customer
	err := row.Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.School, &c.Notes, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

const listCustomers = `
SELECT id, name, phone, email, school, notes, created_at, updated_at
FROM customers
WHERE ($1::text IS NULL OR name ILIKE '%' || $1 || '%')
ORDER BY name
`

func (q *Queries) ListCustomers(ctx context.Context, search pgtype.Text) ([]Customer, error) {
	rows, err := q.db.Query(ctx, listCustomers, search)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Customer
	for rows.Next() {
		var c Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.School, &c.Notes, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

const updateCustomer = `
UPDATE customers
SET name       = COALESCE($2, name),
    phone      = COALESCE($3, phone),
    email      = COALESCE($4, email),
    school     = COALESCE($5, school),
    notes      = COALESCE($6, notes),
    updated_at = now()
WHERE id = $1
RETURNING id, name, phone, email, school, notes, created_at, updated_at
`

type UpdateCustomerParams struct {
	ID     uuid.UUID
	Name   pgtype.Text
	Phone  pgtype.Text
	Email  pgtype.Text
	School pgtype.Text
	Notes  pgtype.Text
}

func (q *Queries) UpdateCustomer(ctx context.Context, arg UpdateCustomerParams) (Customer, error) {
	row := q.db.QueryRow(ctx, updateCustomer, arg.ID, arg.Name, arg.Phone, arg.Email, arg.School, arg.Notes)
	var c Customer
	err := row.Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.School, &c.Notes, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

const deleteCustomer = `
DELETE FROM customers WHERE id = $1 RETURNING id
`

func (q *Queries) DeleteCustomer(ctx context.Context, id uuid.UUID) error {
	var deleted uuid.UUID
	return q.db.QueryRow(ctx, deleteCustomer, id).Scan(&deleted)
}

const countOrdersByCustomer = `
SELECT COUNT(*) FROM orders WHERE customer_id = $1
`

func (q *Queries) CountOrdersByCustomer(ctx context.Context, customerID uuid.UUID) (int64, error) {
	var count int64
	err := q.db.QueryRow(ctx, countOrdersByCustomer, customerID).Scan(&count)
	return count, err
}
