// Package memstore is an in-memory stand-in for the Postgres store. It backs
// unit tests and the STORE_DRIVER=memory mode, and mimics the SQL layer's
// behavior closely enough that service code cannot tell them apart: not-found
// is pgx.ErrNoRows, uniqueness violations are database.ErrDuplicate, and
// Begin returns a transaction with real rollback via state snapshots.
package memstore

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/fardaria/api/internal/database"
	"github.com/fardaria/api/internal/enum"
)

type state struct {
	products  map[uuid.UUID]database.Product
	customers map[uuid.UUID]database.Customer
	orders    map[uuid.UUID]database.Order
	lines     map[uuid.UUID][]database.OrderLine
}

func newState() *state {
	return &state{
		products:  make(map[uuid.UUID]database.Product),
		customers: make(map[uuid.UUID]database.Customer),
		orders:    make(map[uuid.UUID]database.Order),
		lines:     make(map[uuid.UUID][]database.OrderLine),
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.customers {
		c.customers[k] = v
	}
	for k, v := range s.orders {
		c.orders[k] = v
	}
	for k, v := range s.lines {
		c.lines[k] = append([]database.OrderLine(nil), v...)
	}
	return c
}

// Store serializes every operation behind one mutex. Begin holds the mutex
// until Commit or Rollback, which gives transactions the same isolation the
// SQL store gets from row locks.
type Store struct {
	mu sync.Mutex
	st *state
}

func New() *Store {
	return &Store{st: newState()}
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid || n.Int == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(n.Int, n.Exp)
}

func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	return pgtype.Numeric{Int: d.Coefficient(), Exp: d.Exponent(), Valid: true}
}

// ── products ──

func (s *state) createProduct(arg database.CreateProductParams) (database.Product, error) {
	for _, p := range s.products {
		if p.Name == arg.Name && p.Size == arg.Size && p.Color == arg.Color && p.School == arg.School {
			return database.Product{}, database.ErrDuplicate
		}
	}
	now := time.Now()
	p := database.Product{
		ID:          uuid.New(),
		Name:        arg.Name,
		Category:    arg.Category,
		Size:        arg.Size,
		Color:       arg.Color,
		School:      arg.School,
		Price:       arg.Price,
		Quantity:    arg.Quantity,
		Description: arg.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.products[p.ID] = p
	return p, nil
}

func (s *state) getProduct(id uuid.UUID) (database.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return database.Product{}, pgx.ErrNoRows
	}
	return p, nil
}

func (s *state) listProducts(arg database.ListProductsParams) ([]database.Product, error) {
	var items []database.Product
	for _, p := range s.products {
		if arg.School.Valid && p.School != arg.School.String {
			continue
		}
		if arg.Category.Valid && p.Category != arg.Category.String {
			continue
		}
		items = append(items, p)
	}
	sort.Slice(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.School != b.School {
			return a.School < b.School
		}
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		if a.Size != b.Size {
			return a.Size < b.Size
		}
		return a.Color < b.Color
	})
	return items, nil
}

func (s *state) updateProductCatalog(arg database.UpdateProductCatalogParams) (database.Product, error) {
	p, ok := s.products[arg.ID]
	if !ok {
		return database.Product{}, pgx.ErrNoRows
	}
	if arg.Price.Valid {
		p.Price = arg.Price
	}
	if arg.Category.Valid {
		p.Category = arg.Category.String
	}
	if arg.Description.Valid {
		p.Description = arg.Description
	}
	p.UpdatedAt = time.Now()
	s.products[p.ID] = p
	return p, nil
}

func (s *state) incrementStock(arg database.AdjustStockParams) (database.Product, error) {
	p, ok := s.products[arg.ID]
	if !ok {
		return database.Product{}, pgx.ErrNoRows
	}
	p.Quantity += arg.Amount
	p.UpdatedAt = time.Now()
	s.products[p.ID] = p
	return p, nil
}

func (s *state) decrementStock(arg database.AdjustStockParams) (database.Product, error) {
	p, ok := s.products[arg.ID]
	if !ok || p.Quantity < arg.Amount {
		return database.Product{}, pgx.ErrNoRows
	}
	p.Quantity -= arg.Amount
	p.UpdatedAt = time.Now()
	s.products[p.ID] = p
	return p, nil
}

func (s *state) listLowStockProducts(threshold int32) ([]database.Product, error) {
	var items []database.Product
	for _, p := range s.products {
		if p.Quantity < threshold {
			items = append(items, p)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.Quantity != b.Quantity {
			return a.Quantity < b.Quantity
		}
		if a.School != b.School {
			return a.School < b.School
		}
		return a.Name < b.Name
	})
	return items, nil
}

// ── customers ──

func (s *state) createCustomer(arg database.CreateCustomerParams) (database.Customer, error) {
	now := time.Now()
	c := database.Customer{
		ID:        uuid.New(),
		Name:      arg.Name,
		Phone:     arg.Phone,
		Email:     arg.Email,
		School:    arg.School,
		Notes:     arg.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.customers[c.ID] = c
	return c, nil
}

func (s *state) getCustomer(id uuid.UUID) (database.Customer, error) {
	c, ok := s.customers[id]
	if !ok {
		return database.Customer{}, pgx.ErrNoRows
	}
	return c, nil
}

func (s *state) listCustomers(search pgtype.Text) ([]database.Customer, error) {
	var items []database.Customer
	for _, c := range s.customers {
		if search.Valid && !strings.Contains(strings.ToLower(c.Name), strings.ToLower(search.String)) {
			continue
		}
		items = append(items, c)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items, nil
}

func (s *state) updateCustomer(arg database.UpdateCustomerParams) (database.Customer, error) {
	c, ok := s.customers[arg.ID]
	if !ok {
		return database.Customer{}, pgx.ErrNoRows
	}
	if arg.Name.Valid {
		c.Name = arg.Name.String
	}
	if arg.Phone.Valid {
		c.Phone = arg.Phone
	}
	if arg.Email.Valid {
		c.Email = arg.Email
	}
	if arg.School.Valid {
		c.School = arg.School
	}
	if arg.Notes.Valid {
		c.Notes = arg.Notes
	}
	c.UpdatedAt = time.Now()
	s.customers[c.ID] = c
	return c, nil
}

func (s *state) deleteCustomer(id uuid.UUID) error {
	if _, ok := s.customers[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(s.customers, id)
	return nil
}

func (s *state) countOrdersByCustomer(customerID uuid.UUID) (int64, error) {
	var count int64
	for _, o := range s.orders {
		if o.CustomerID == customerID {
			count++
		}
	}
	return count, nil
}

// ── orders ──

func (s *state) getNextOrderNumber() (int32, error) {
	max := 0
	for _, o := range s.orders {
		if len(o.OrderNumber) > 4 {
			n := 0
			for _, r := range o.OrderNumber[4:] {
				if r < '0' || r > '9' {
					n = 0
					break
				}
				n = n*10 + int(r-'0')
			}
			if n > max {
				max = n
			}
		}
	}
	return int32(max) + 1, nil
}

func (s *state) createOrder(arg database.CreateOrderParams) (database.Order, error) {
	for _, o := range s.orders {
		if o.OrderNumber == arg.OrderNumber {
			return database.Order{}, database.ErrDuplicate
		}
	}
	now := time.Now()
	o := database.Order{
		ID:            uuid.New(),
		OrderNumber:   arg.OrderNumber,
		CustomerID:    arg.CustomerID,
		School:        arg.School,
		OrderType:     arg.OrderType,
		Status:        arg.Status,
		PaymentMethod: arg.PaymentMethod,
		Notes:         arg.Notes,
		TotalQuantity: arg.TotalQuantity,
		TotalAmount:   arg.TotalAmount,
		DeliveryDue:   arg.DeliveryDue,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	s.orders[o.ID] = o
	return o, nil
}

func (s *state) createOrderLine(arg database.CreateOrderLineParams) (database.OrderLine, error) {
	if _, ok := s.orders[arg.OrderID]; !ok {
		return database.OrderLine{}, pgx.ErrNoRows
	}
	l := database.OrderLine{
		ID:        uuid.New(),
		OrderID:   arg.OrderID,
		ProductID: arg.ProductID,
		LineNo:    arg.LineNo,
		Quantity:  arg.Quantity,
		UnitPrice: arg.UnitPrice,
		Subtotal:  arg.Subtotal,
	}
	s.lines[arg.OrderID] = append(s.lines[arg.OrderID], l)
	return l, nil
}

func (s *state) getOrder(id uuid.UUID) (database.Order, error) {
	o, ok := s.orders[id]
	if !ok {
		return database.Order{}, pgx.ErrNoRows
	}
	return o, nil
}

func (s *state) listOrders(arg database.ListOrdersParams) ([]database.Order, error) {
	var items []database.Order
	for _, o := range s.orders {
		if arg.Status.Valid && o.Status != arg.Status.String {
			continue
		}
		if arg.School.Valid && o.School != arg.School.String {
			continue
		}
		if arg.OrderType.Valid && o.OrderType != arg.OrderType.String {
			continue
		}
		items = append(items, o)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
	return items, nil
}

func (s *state) listOrderLines(orderID uuid.UUID) ([]database.OrderLine, error) {
	lines := append([]database.OrderLine(nil), s.lines[orderID]...)
	sort.Slice(lines, func(i, j int) bool { return lines[i].LineNo < lines[j].LineNo })
	return lines, nil
}

func (s *state) updateOrderStatus(arg database.UpdateOrderStatusParams) (database.Order, error) {
	o, ok := s.orders[arg.ID]
	if !ok || o.Status != arg.PrevStatus {
		return database.Order{}, pgx.ErrNoRows
	}
	o.Status = arg.Status
	if arg.Status == enum.OrderStatusDelivered {
		o.DeliveredAt = pgtype.Timestamptz{Time: time.Now(), Valid: true}
	}
	o.UpdatedAt = time.Now()
	s.orders[o.ID] = o
	return o, nil
}

func (s *state) deleteOrder(id uuid.UUID) error {
	if _, ok := s.orders[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(s.orders, id)
	delete(s.lines, id)
	return nil
}

// ── reports ──

func (s *state) getInventorySummary() (database.InventorySummaryRow, error) {
	var r database.InventorySummaryRow
	total := decimal.Zero
	for _, p := range s.products {
		r.ProductCount++
		r.TotalUnits += int64(p.Quantity)
		total = total.Add(numericToDecimal(p.Price).Mul(decimal.NewFromInt(int64(p.Quantity))))
	}
	r.TotalValue = decimalToNumeric(total)
	return r, nil
}

func (s *state) listSalesBySchool() ([]database.SalesBySchoolRow, error) {
	bySchool := make(map[string]*database.SalesBySchoolRow)
	amounts := make(map[string]decimal.Decimal)
	for _, o := range s.orders {
		if o.OrderType != enum.OrderTypeSale || o.Status == enum.OrderStatusCancelled {
			continue
		}
		r, ok := bySchool[o.School]
		if !ok {
			r = &database.SalesBySchoolRow{School: o.School}
			bySchool[o.School] = r
		}
		r.OrderCount++
		r.TotalUnits += int64(o.TotalQuantity)
		amounts[o.School] = amounts[o.School].Add(numericToDecimal(o.TotalAmount))
	}
	var items []database.SalesBySchoolRow
	for school, r := range bySchool {
		r.TotalAmount = decimalToNumeric(amounts[school])
		items = append(items, *r)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].School < items[j].School })
	return items, nil
}

func (s *state) listOrderCountsByStatus() ([]database.OrderCountsByStatusRow, error) {
	counts := make(map[string]int64)
	for _, o := range s.orders {
		counts[o.Status]++
	}
	var items []database.OrderCountsByStatusRow
	for status, n := range counts {
		items = append(items, database.OrderCountsByStatusRow{Status: status, Count: n})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Status < items[j].Status })
	return items, nil
}
