package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/fardaria/api/internal/database"
	"github.com/fardaria/api/internal/enum"
)

// maxOrderNumberRetries bounds the create loop when two orders race for the
// same order number and one loses on the unique index.
const maxOrderNumberRetries = 3

// TxBeginner is satisfied by *pgxpool.Pool and by memstore.Store.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// OrderStore is the transactional slice of the store the order engine uses.
type OrderStore interface {
	GetNextOrderNumber(ctx context.Context) (int32, error)
	GetCustomer(ctx context.Context, id uuid.UUID) (database.Customer, error)
	GetProductForOrder(ctx context.Context, id uuid.UUID) (database.Product, error)
	IncrementStock(ctx context.Context, arg database.AdjustStockParams) (database.Product, error)
	DecrementStock(ctx context.Context, arg database.AdjustStockParams) (database.Product, error)
	CreateOrder(ctx context.Context, arg database.CreateOrderParams) (database.Order, error)
	CreateOrderLine(ctx context.Context, arg database.CreateOrderLineParams) (database.OrderLine, error)
	GetOrderForUpdate(ctx context.Context, id uuid.UUID) (database.Order, error)
	ListOrderLines(ctx context.Context, orderID uuid.UUID) ([]database.OrderLine, error)
	UpdateOrderStatus(ctx context.Context, arg database.UpdateOrderStatusParams) (database.Order, error)
	DeleteOrder(ctx context.Context, id uuid.UUID) error
}

// NewOrderStore builds an OrderStore bound to a transaction. The Postgres
// driver passes database.New; the memory driver asserts the Tx itself.
type NewOrderStore func(db database.DBTX) OrderStore

type OrderService struct {
	db       TxBeginner
	newStore NewOrderStore
}

func NewOrderService(db TxBeginner, newStore NewOrderStore) *OrderService {
	return &OrderService{db: db, newStore: newStore}
}

type CreateOrderLineRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int32  `json:"quantity"`
}

type CreateOrderRequest struct {
	CustomerID    string                   `json:"customer_id"`
	School        string                   `json:"school"`
	PaymentMethod string                   `json:"payment_method"`
	DeliveryDue   string                   `json:"delivery_due"`
	Notes         string                   `json:"notes"`
	Lines         []CreateOrderLineRequest `json:"lines"`
}

// OrderDetail is an order with its lines.
type OrderDetail struct {
	Order database.Order
	Lines []database.OrderLine
}

// orderDraft is a validated request with parsed IDs and aggregated lines.
type orderDraft struct {
	customerID    uuid.UUID
	school        string
	paymentMethod pgtype.Text
	deliveryDue   pgtype.Date
	notes         pgtype.Text
	products      []uuid.UUID         // first-seen order
	quantities    map[uuid.UUID]int32 // aggregated per product
}

// CreateSaleOrder creates a sale. Stock for every line is deducted inside one
// transaction; if any product has too little, nothing is deducted and the
// order is not created. A successful sale lands directly in COMPLETED.
func (s *OrderService) CreateSaleOrder(ctx context.Context, req CreateOrderRequest) (OrderDetail, error) {
	draft, err := s.validate(req, enum.OrderTypeSale)
	if err != nil {
		return OrderDetail{}, err
	}
	return s.createWithRetry(ctx, draft, enum.OrderTypeSale)
}

// CreateProductionOrder creates a production order in PENDING. Stock is not
// touched until the order reaches READY_FOR_DELIVERY.
func (s *OrderService) CreateProductionOrder(ctx context.Context, req CreateOrderRequest) (OrderDetail, error) {
	draft, err := s.validate(req, enum.OrderTypeProduction)
	if err != nil {
		return OrderDetail{}, err
	}
	return s.createWithRetry(ctx, draft, enum.OrderTypeProduction)
}

func (s *OrderService) validate(req CreateOrderRequest, orderType string) (orderDraft, error) {
	var draft orderDraft

	if len(req.Lines) == 0 {
		return draft, ErrEmptyLines
	}
	if req.School == "" {
		return draft, ErrSchoolRequired
	}

	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		return draft, ErrInvalidCustomerID
	}
	draft.customerID = customerID
	draft.school = req.School

	if orderType == enum.OrderTypeSale {
		if !enum.IsValidPaymentMethod(req.PaymentMethod) {
			return draft, ErrInvalidPaymentMethod
		}
		draft.paymentMethod = pgtype.Text{String: req.PaymentMethod, Valid: true}
	}

	if req.DeliveryDue != "" {
		due, err := time.Parse("2006-01-02", req.DeliveryDue)
		if err != nil {
			return draft, ErrInvalidDeliveryDate
		}
		draft.deliveryDue = pgtype.Date{Time: due, Valid: true}
	}
	if req.Notes != "" {
		draft.notes = pgtype.Text{String: req.Notes, Valid: true}
	}

	// Lines for the same product are merged so the ledger moves one amount
	// per product.
	draft.quantities = make(map[uuid.UUID]int32)
	for _, line := range req.Lines {
		if line.Quantity <= 0 {
			return draft, ErrInvalidQuantity
		}
		productID, err := uuid.Parse(line.ProductID)
		if err != nil {
			return draft, ErrInvalidProductID
		}
		if _, seen := draft.quantities[productID]; !seen {
			draft.products = append(draft.products, productID)
		}
		draft.quantities[productID] += line.Quantity
	}
	return draft, nil
}

func (s *OrderService) createWithRetry(ctx context.Context, draft orderDraft, orderType string) (OrderDetail, error) {
	var detail OrderDetail
	var err error
	for attempt := 0; attempt < maxOrderNumberRetries; attempt++ {
		detail, err = s.createOrderTx(ctx, draft, orderType)
		if err == nil || !database.IsUniqueViolation(err) {
			return detail, err
		}
	}
	return OrderDetail{}, fmt.Errorf("allocating order number: %w", err)
}

func (s *OrderService) createOrderTx(ctx context.Context, draft orderDraft, orderType string) (OrderDetail, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return OrderDetail{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	store := s.newStore(tx)

	if _, err := store.GetCustomer(ctx, draft.customerID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return OrderDetail{}, ErrCustomerNotFound
		}
		return OrderDetail{}, fmt.Errorf("fetching customer: %w", err)
	}

	// Lock and snapshot every product before touching stock. Prices are
	// frozen here; later catalog edits must not change this order's totals.
	products := make(map[uuid.UUID]database.Product, len(draft.products))
	for _, productID := range draft.products {
		product, err := store.GetProductForOrder(ctx, productID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return OrderDetail{}, fmt.Errorf("%w: %s", ErrProductNotFound, productID)
			}
			return OrderDetail{}, fmt.Errorf("fetching product: %w", err)
		}
		products[productID] = product
	}

	if orderType == enum.OrderTypeSale {
		for _, productID := range draft.products {
			amount := draft.quantities[productID]
			if _, err := store.DecrementStock(ctx, database.AdjustStockParams{ID: productID, Amount: amount}); err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return OrderDetail{}, fmt.Errorf("%w: %s has %d, need %d",
						ErrInsufficientStock, products[productID].Name, products[productID].Quantity, amount)
				}
				return OrderDetail{}, fmt.Errorf("deducting stock: %w", err)
			}
		}
	}

	next, err := store.GetNextOrderNumber(ctx)
	if err != nil {
		return OrderDetail{}, fmt.Errorf("fetching order number: %w", err)
	}

	var totalQuantity int32
	totalAmount := decimal.Zero
	for _, productID := range draft.products {
		amount := draft.quantities[productID]
		totalQuantity += amount
		totalAmount = totalAmount.Add(numericToDecimal(products[productID].Price).Mul(decimal.NewFromInt32(amount)))
	}

	status := enum.OrderStatusPending
	if orderType == enum.OrderTypeSale {
		status = enum.OrderStatusCompleted
	}

	order, err := store.CreateOrder(ctx, database.CreateOrderParams{
		OrderNumber:   fmt.Sprintf("FRD-%04d", next),
		CustomerID:    draft.customerID,
		School:        draft.school,
		OrderType:     orderType,
		Status:        status,
		PaymentMethod: draft.paymentMethod,
		Notes:         draft.notes,
		TotalQuantity: totalQuantity,
		TotalAmount:   decimalToNumeric(totalAmount),
		DeliveryDue:   draft.deliveryDue,
	})
	if err != nil {
		return OrderDetail{}, err
	}

	lines := make([]database.OrderLine, 0, len(draft.products))
	for i, productID := range draft.products {
		amount := draft.quantities[productID]
		unitPrice := numericToDecimal(products[productID].Price)
		line, err := store.CreateOrderLine(ctx, database.CreateOrderLineParams{
			OrderID:   order.ID,
			ProductID: productID,
			LineNo:    int32(i + 1),
			Quantity:  amount,
			UnitPrice: decimalToNumeric(unitPrice),
			Subtotal:  decimalToNumeric(unitPrice.Mul(decimal.NewFromInt32(amount))),
		})
		if err != nil {
			return OrderDetail{}, fmt.Errorf("creating order line: %w", err)
		}
		lines = append(lines, line)
	}

	if err := tx.Commit(ctx); err != nil {
		return OrderDetail{}, fmt.Errorf("commit transaction: %w", err)
	}
	return OrderDetail{Order: order, Lines: lines}, nil
}

// Status machines per order type. A status absent from the map has no legal
// outgoing transitions; DELIVERED and CANCELLED are terminal.
var saleTransitions = map[string][]string{
	enum.OrderStatusCompleted:        {enum.OrderStatusReadyForDelivery, enum.OrderStatusDelivered, enum.OrderStatusCancelled},
	enum.OrderStatusReadyForDelivery: {enum.OrderStatusDelivered, enum.OrderStatusCancelled},
}

var productionTransitions = map[string][]string{
	enum.OrderStatusPending:          {enum.OrderStatusInProduction, enum.OrderStatusCancelled},
	enum.OrderStatusInProduction:     {enum.OrderStatusReadyForDelivery, enum.OrderStatusCancelled},
	enum.OrderStatusReadyForDelivery: {enum.OrderStatusDelivered, enum.OrderStatusCancelled},
}

func transitionAllowed(orderType, from, to string) bool {
	transitions := productionTransitions
	if orderType == enum.OrderTypeSale {
		transitions = saleTransitions
	}
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// TransitionOrder moves an order to target and applies the matching stock
// effect in the same transaction. Production orders add their quantities to
// stock on reaching READY_FOR_DELIVERY and remove them again when delivered
// or cancelled afterwards; sales give their deduction back on cancellation.
func (s *OrderService) TransitionOrder(ctx context.Context, orderID uuid.UUID, target string) (database.Order, error) {
	if !enum.IsValidStatus(target) {
		return database.Order{}, ErrInvalidStatus
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return database.Order{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	store := s.newStore(tx)

	order, err := store.GetOrderForUpdate(ctx, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Order{}, ErrOrderNotFound
		}
		return database.Order{}, fmt.Errorf("fetching order: %w", err)
	}

	if order.Status == enum.OrderStatusDelivered {
		return database.Order{}, ErrDeliveredImmutable
	}
	if !transitionAllowed(order.OrderType, order.Status, target) {
		return database.Order{}, fmt.Errorf("%w: %s %s -> %s", ErrInvalidTransition, order.OrderType, order.Status, target)
	}

	if err := s.applyTransitionEffect(ctx, store, order, target); err != nil {
		return database.Order{}, err
	}

	updated, err := store.UpdateOrderStatus(ctx, database.UpdateOrderStatusParams{
		ID:         orderID,
		Status:     target,
		PrevStatus: order.Status,
	})
	if err != nil {
		return database.Order{}, fmt.Errorf("updating status: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return database.Order{}, fmt.Errorf("commit transaction: %w", err)
	}
	return updated, nil
}

func (s *OrderService) applyTransitionEffect(ctx context.Context, store OrderStore, order database.Order, target string) error {
	switch {
	case order.OrderType == enum.OrderTypeProduction &&
		order.Status == enum.OrderStatusInProduction && target == enum.OrderStatusReadyForDelivery:
		return s.moveStockForLines(ctx, store, order.ID, store.IncrementStock)

	case order.OrderType == enum.OrderTypeProduction &&
		order.Status == enum.OrderStatusReadyForDelivery &&
		(target == enum.OrderStatusDelivered || target == enum.OrderStatusCancelled):
		// The finished goods were added at READY_FOR_DELIVERY; both
		// exits take them back out, and can fail on thin stock.
		return s.moveStockForLines(ctx, store, order.ID, store.DecrementStock)

	case order.OrderType == enum.OrderTypeSale && target == enum.OrderStatusCancelled:
		return s.moveStockForLines(ctx, store, order.ID, store.IncrementStock)
	}
	return nil
}

func (s *OrderService) moveStockForLines(ctx context.Context, store OrderStore, orderID uuid.UUID, move func(context.Context, database.AdjustStockParams) (database.Product, error)) error {
	lines, err := store.ListOrderLines(ctx, orderID)
	if err != nil {
		return fmt.Errorf("fetching order lines: %w", err)
	}
	for _, line := range lines {
		if _, err := move(ctx, database.AdjustStockParams{ID: line.ProductID, Amount: line.Quantity}); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("%w: product %s", ErrInsufficientStock, line.ProductID)
			}
			return fmt.Errorf("moving stock: %w", err)
		}
	}
	return nil
}

// DeleteOrder removes an order and reverses whatever effect it still holds on
// stock. Delivered orders are immutable history and cannot be deleted.
func (s *OrderService) DeleteOrder(ctx context.Context, orderID uuid.UUID) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	store := s.newStore(tx)

	order, err := store.GetOrderForUpdate(ctx, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrOrderNotFound
		}
		return fmt.Errorf("fetching order: %w", err)
	}

	switch {
	case order.Status == enum.OrderStatusDelivered:
		return ErrDeliveredImmutable

	case order.OrderType == enum.OrderTypeSale && order.Status != enum.OrderStatusCancelled:
		// An active sale still holds its deduction; give it back.
		if err := s.moveStockForLines(ctx, store, order.ID, store.IncrementStock); err != nil {
			return err
		}

	case order.OrderType == enum.OrderTypeProduction && order.Status == enum.OrderStatusReadyForDelivery:
		// Finished goods were already added to stock; take them out,
		// failing if someone has sold them in the meantime.
		if err := s.moveStockForLines(ctx, store, order.ID, store.DecrementStock); err != nil {
			return err
		}
	}

	if err := store.DeleteOrder(ctx, orderID); err != nil {
		return fmt.Errorf("deleting order: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
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
