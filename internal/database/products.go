package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const createProduct = `
INSERT INTO products (name, category, size, color, school, price, quantity, description)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id, name, category, size, color, school, price, quantity, description, created_at, updated_at
`

type CreateProductParams struct {
	Name        string
	Category    string
	Size        string
	Color       string
	School      string
	Price       pgtype.Numeric
	Quantity    int32
	Description pgtype.Text
}

func (q *Queries) CreateProduct(ctx context.Context, arg CreateProductParams) (Product, error) {
	row := q.db.QueryRow(ctx, createProduct,
		arg.Name, arg.Category, arg.Size, arg.Color, arg.School,
		arg.Price, arg.Quantity, arg.Description)
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.Category, &p.Size, &p.Color, &p.School,
		&p.Price, &p.Quantity, &p.Description, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

const getProduct = `
SELECT id, name, category, size, color, school, price, quantity, description, created_at, updated_at
FROM products WHERE id = $1
`

func (q *Queries) GetProduct(ctx context.Context, id uuid.UUID) (Product, error) {
	row := q.db.QueryRow(ctx, getProduct, id)
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.Category, &p.Size, &p.Color, &p.School,
		&p.Price, &p.Quantity, &p.Description, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

const getProductForOrder = `
SELECT id, name, category, size, color, school, price, quantity, description, created_at, updated_at
FROM products WHERE id = $1
FOR UPDATE
`

// GetProductForOrder locks the product row for the duration of the enclosing
// transaction so concurrent stock mutations serialize.
func (q *Queries) GetProductForOrder(ctx context.Context, id uuid.UUID) (Product, error) {
	row := q.db.QueryRow(ctx, getProductForOrder, id)
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.Category, &p.Size, &p.Color, &p.School,
		&p.Price, &p.Quantity, &p.Description, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

const listProducts = `
SELECT id, name, category, size, color, school, price, quantity, description, created_at, updated_at
FROM products
WHERE ($1::text IS NULL OR school = $1)
  AND ($2::text IS NULL OR category = $2)
ORDER BY school, category, name, size, color
`

type ListProductsParams struct {
	School   pgtype.Text
	Category pgtype.Text
}

func (q *Queries) ListProducts(ctx context.Context, arg ListProductsParams) ([]Product, error) {
	rows, err := q.db.Query(ctx, listProducts, arg.School, arg.Category)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Category, &p.Size, &p.Color, &p.School,
			&p.Price, &p.Quantity, &p.Description, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

const updateProductCatalog = `
UPDATE products
SET price       = COALESCE($2, price),
    category    = COALESCE($3, category),
    description = COALESCE($4, description),
    updated_at  = now()
WHERE id = $1
RETURNING id, name, category, size, color, school, price, quantity, description, created_at, updated_at
`

type UpdateProductCatalogParams struct {
	ID          uuid.UUID
	Price       pgtype.Numeric
	Category    pgtype.Text
	Description pgtype.Text
}

// UpdateProductCatalog changes descriptive fields only. Stock moves go through
// IncrementStock/DecrementStock so the ledger stays the single write path.
func (q *Queries) UpdateProductCatalog(ctx context.Context, arg UpdateProductCatalogParams) (Product, error) {
	row := q.db.QueryRow(ctx, updateProductCatalog, arg.ID, arg.Price, arg.Category, arg.Description)
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.Category, &p.Size, &p.Color, &p.School,
		&p.Price, &p.Quantity, &p.Description, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

const incrementStock = `
UPDATE products
SET quantity = quantity + $2, updated_at = now()
WHERE id = $1
RETURNING id, name, category, size, color, school, price, quantity, description, created_at, updated_at
`

type AdjustStockParams struct {
	ID     uuid.UUID
	Amount int32
}

func (q *Queries) IncrementStock(ctx context.Context, arg AdjustStockParams) (Product, error) {
	row := q.db.QueryRow(ctx, incrementStock, arg.ID, arg.Amount)
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.Category, &p.Size, &p.Color, &p.School,
		&p.Price, &p.Quantity, &p.Description, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

const decrementStock = `
UPDATE products
SET quantity = quantity - $2, updated_at = now()
WHERE id = $1 AND quantity >= $2
RETURNING id, name, category, size, color, school, price, quantity, description, created_at, updated_at
`

// DecrementStock refuses to take quantity below zero. A pgx.ErrNoRows result
// means either the product does not exist or stock is insufficient; callers
// disambiguate with GetProduct.
func (q *Queries) DecrementStock(ctx context.Context, arg AdjustStockParams) (Product, error) {
	row := q.db.QueryRow(ctx, decrementStock, arg.ID, arg.Amount)
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.Category, &p.Size, &p.Color, &p.School,
		&p.Price, &p.Quantity, &p.Description, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

const listLowStockProducts = `
SELECT id, name, category, size, color, school, price, quantity, description, created_at, updated_at
FROM products
WHERE quantity < $1
ORDER BY quantity, school, name
`

func (q *Queries) ListLowStockProducts(ctx context.Context, threshold int32) ([]Product, error) {
	rows, err := q.db.Query(ctx, listLowStockProducts, threshold)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Category, &p.Size, &p.Color, &p.School,
			&p.Price, &p.Quantity, &p.Description, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}
