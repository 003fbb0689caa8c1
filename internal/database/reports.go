package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const getInventorySummary = `
SELECT COUNT(*), COALESCE(SUM(quantity), 0), COALESCE(SUM(price * quantity), 0)
FROM products
`

type InventorySummaryRow struct {
	ProductCount int64
	TotalUnits   int64
	TotalValue   pgtype.Numeric
}

func (q *Queries) GetInventorySummary(ctx context.Context) (InventorySummaryRow, error) {
	var r InventorySummaryRow
	err := q.db.QueryRow(ctx, getInventorySummary).Scan(&r.ProductCount, &r.TotalUnits, &r.TotalValue)
	return r, err
}

const listSalesBySchool = `
SELECT school, COUNT(*), COALESCE(SUM(total_quantity), 0), COALESCE(SUM(total_amount), 0)
FROM orders
WHERE order_type = 'SALE' AND status <> 'CANCELLED'
GROUP BY school
ORDER BY school
`

type SalesBySchoolRow struct {
	School      string
	OrderCount  int64
	TotalUnits  int64
	TotalAmount pgtype.Numeric
}

func (q *Queries) ListSalesBySchool(ctx context.Context) ([]SalesBySchoolRow, error) {
	rows, err := q.db.Query(ctx, listSalesBySchool)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []SalesBySchoolRow
	for rows.Next() {
		var r SalesBySchoolRow
		if err := rows.Scan(&r.School, &r.OrderCount, &r.TotalUnits, &r.TotalAmount); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

const listOrderCountsByStatus = `
SELECT status, COUNT(*)
FROM orders
GROUP BY status
ORDER BY status
`

type OrderCountsByStatusRow struct {
	Status string
	Count  int64
}

func (q *Queries) ListOrderCountsByStatus(ctx context.Context) ([]OrderCountsByStatusRow, error) {
	rows, err := q.db.Query(ctx, listOrderCountsByStatus)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []OrderCountsByStatusRow
	for rows.Next() {
		var r OrderCountsByStatusRow
		if err := rows.Scan(&r.Status, &r.Count); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}
