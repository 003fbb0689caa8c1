package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/fardaria/api/internal/database"
	"github.com/fardaria/api/internal/database/memstore"
	"github.com/fardaria/api/internal/enum"
)

// --- Test helpers ---

func makeNumeric(val string) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(val)
	return n
}

func numericEquals(n pgtype.Numeric, expected string) bool {
	d := numericToDecimal(n)
	exp, _ := decimal.NewFromString(expected)
	return d.Equal(exp)
}

// newTestEngine wires the order engine to the in-memory store, the same way
// cmd/server does for STORE_DRIVER=memory.
func newTestEngine() (*OrderService, *memstore.Store) {
	store := memstore.New()
	svc := NewOrderService(store, func(db database.DBTX) OrderStore {
		return db.(OrderStore)
	})
	return svc, store
}

func seedCustomer(t *testing.T, store *memstore.Store) database.Customer {
	t.Helper()
	customer, err := store.CreateCustomer(context.Background(), database.CreateCustomerParams{
		Name:   "Maria da Silva",
		School: pgtype.Text{String: "Municipal", Valid: true},
	})
	if err != nil {
		t.Fatalf("seed customer: %v", err)
	}
	return customer
}

func seedProduct(t *testing.T, store *memstore.Store, name, price string, quantity int32) database.Product {
	t.Helper()
	product, err := store.CreateProduct(context.Background(), database.CreateProductParams{
		Name:     name,
		Category: enum.CategoryShirts,
		Size:     "8",
		Color:    "Branca",
		School:   "Municipal",
		Price:    makeNumeric(price),
		Quantity: quantity,
	})
	if err != nil {
		t.Fatalf("seed product %s: %v", name, err)
	}
	return product
}

func productQuantity(t *testing.T, store *memstore.Store, id uuid.UUID) int32 {
	t.Helper()
	product, err := store.GetProduct(context.Background(), id)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	return product.Quantity
}

func saleRequest(customer database.Customer, lines ...CreateOrderLineRequest) CreateOrderRequest {
	return CreateOrderRequest{
		CustomerID:    customer.ID.String(),
		School:        "Municipal",
		PaymentMethod: enum.PaymentMethodPix,
		Lines:         lines,
	}
}

func productionRequest(customer database.Customer, lines ...CreateOrderLineRequest) CreateOrderRequest {
	return CreateOrderRequest{
		CustomerID:  customer.ID.String(),
		School:      "Municipal",
		DeliveryDue: "2026-09-15",
		Lines:       lines,
	}
}

// --- Sale creation ---

func TestCreateSaleOrderDeductsStock(t *testing.T) {
	svc, store := newTestEngine()
	customer := seedCustomer(t, store)
	product := seedProduct(t, store, "Camiseta Manga Curta", "29.90", 10)

	detail, err := svc.CreateSaleOrder(context.Background(), saleRequest(customer,
		CreateOrderLineRequest{ProductID: product.ID.String(), Quantity: 3}))
	if err != nil {
		t.Fatalf("create sale: %v", err)
	}

	if detail.Order.Status != enum.OrderStatusCompleted {
		t.Errorf("status: got %s, want COMPLETED", detail.Order.Status)
	}
	if detail.Order.OrderNumber != "FRD-0001" {
		t.Errorf("order number: got %s, want FRD-0001", detail.Order.OrderNumber)
	}
	if detail.Order.TotalQuantity != 3 {
		t.Errorf("total quantity: got %d, want 3", detail.Order.TotalQuantity)
	}
	if !numericEquals(detail.Order.TotalAmount, "89.70") {
		t.Errorf("total amount: got %s, want 89.70", numericToDecimal(detail.Order.TotalAmount))
	}
	if got := productQuantity(t, store, product.ID); got != 7 {
		t.Errorf("stock after sale: got %d, want 7", got)
	}
}

func TestCreateSaleOrderInsufficientStock(t *testing.T) {
	svc, store := newTestEngine()
	customer := seedCustomer(t, store)
	product := seedProduct(t, store, "Camiseta Manga Curta", "29.90", 2)

	_, err := svc.CreateSaleOrder(context.Background(), saleRequest(customer,
		CreateOrderLineRequest{ProductID: product.ID.String(), Quantity: 3}))
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("error: got %v, want ErrInsufficientStock", err)
	}

	if got := productQuantity(t, store, product.ID); got != 2 {
		t.Errorf("stock after failed sale: got %d, want 2", got)
	}
	orders, _ := store.ListOrders(context.Background(), database.ListOrdersParams{})
	if len(orders) != 0 {
		t.Errorf("orders after failed sale: got %d, want 0", len(orders))
	}
}

func TestCreateSaleOrderAtomicAcrossLines(t *testing.T) {
	svc, store := newTestEngine()
	customer := seedCustomer(t, store)
	plenty := seedProduct(t, store, "Camiseta Manga Curta", "29.90", 10)
	scarce := seedProduct(t, store, "Agasalho com Zíper", "79.90", 1)

	_, err := svc.CreateSaleOrder(context.Background(), saleRequest(customer,
		CreateOrderLineRequest{ProductID: plenty.ID.String(), Quantity: 2},
		CreateOrderLineRequest{ProductID: scarce.ID.String(), Quantity: 5}))
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("error: got %v, want ErrInsufficientStock", err)
	}

	// The first line's deduction must have rolled back with the rest.
	if got := productQuantity(t, store, plenty.ID); got != 10 {
		t.Errorf("first product stock: got %d, want 10", got)
	}
	if got := productQuantity(t, store, scarce.ID); got != 1 {
		t.Errorf("second product stock: got %d, want 1", got)
	}
}

func TestCreateSaleOrderExactStock(t *testing.T) {
	svc, store := newTestEngine()
	customer := seedCustomer(t, store)
	product := seedProduct(t, store, "Camiseta Manga Curta", "29.90", 5)

	_, err := svc.CreateSaleOrder(context.Background(), saleRequest(customer,
		CreateOrderLineRequest{ProductID: product.ID.String(), Quantity: 5}))
	if err != nil {
		t.Fatalf("sale of exact stock: %v", err)
	}
	if got := productQuantity(t, store, product.ID); got != 0 {
		t.Errorf("stock: got %d, want 0", got)
	}

	_, err = svc.CreateSaleOrder(context.Background(), saleRequest(customer,
		CreateOrderLineRequest{ProductID: product.ID.String(), Quantity: 1}))
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("sale from zero stock: got %v, want ErrInsufficientStock", err)
	}
	if got := productQuantity(t, store, product.ID); got != 0 {
		t.Errorf("stock after refused sale: got %d, want 0", got)
	}
}

func TestCreateSaleOrderAggregatesDuplicateLines(t *testing.T) {
	svc, store := newTestEngine()
	customer := seedCustomer(t, store)
	product := seedProduct(t, store, "Camiseta Manga Curta", "29.90", 10)

	detail, err := svc.CreateSaleOrder(context.Background(), saleRequest(customer,
		CreateOrderLineRequest{ProductID: product.ID.String(), Quantity: 2},
		CreateOrderLineRequest{ProductID: product.ID.String(), Quantity: 3}))
	if err != nil {
		t.Fatalf("create sale: %v", err)
	}

	if len(detail.Lines) != 1 {
		t.Fatalf("lines: got %d, want 1 (merged)", len(detail.Lines))
	}
	if detail.Lines[0].Quantity != 5 {
		t.Errorf("merged quantity: got %d, want 5", detail.Lines[0].Quantity)
	}
	if !numericEquals(detail.Lines[0].Subtotal, "149.50") {
		t.Errorf("merged subtotal: got %s, want 149.50", numericToDecimal(detail.Lines[0].Subtotal))
	}
	if got := productQuantity(t, store, product.ID); got != 5 {
		t.Errorf("stock: got %d, want 5", got)
	}
}

func TestCreateOrderValidation(t *testing.T) {
	svc, store := newTestEngine()
	customer := seedCustomer(t, store)
	product := seedProduct(t, store, "Camiseta Manga Curta", "29.90", 10)

	line := CreateOrderLineRequest{ProductID: product.ID.String(), Quantity: 1}

	tests := []struct {
		name    string
		req     CreateOrderRequest
		wantErr error
	}{
		{
			name:    "no lines",
			req:     saleRequest(customer),
			wantErr: ErrEmptyLines,
		},
		{
			name:    "zero quantity",
			req:     saleRequest(customer, CreateOrderLineRequest{ProductID: product.ID.String(), Quantity: 0}),
			wantErr: ErrInvalidQuantity,
		},
		{
			name:    "negative quantity",
			req:     saleRequest(customer, CreateOrderLineRequest{ProductID: product.ID.String(), Quantity: -1}),
			wantErr: ErrInvalidQuantity,
		},
		{
			name:    "bad product id",
			req:     saleRequest(customer, CreateOrderLineRequest{ProductID: "not-a-uuid", Quantity: 1}),
			wantErr: ErrInvalidProductID,
		},
		{
			name: "bad customer id",
			req: CreateOrderRequest{
				CustomerID:    "not-a-uuid",
				School:        "Municipal",
				PaymentMethod: enum.PaymentMethodCash,
				Lines:         []CreateOrderLineRequest{line},
			},
			wantErr: ErrInvalidCustomerID,
		},
		{
			name: "missing school",
			req: CreateOrderRequest{
				CustomerID:    customer.ID.String(),
				PaymentMethod: enum.PaymentMethodCash,
				Lines:         []CreateOrderLineRequest{line},
			},
			wantErr: ErrSchoolRequired,
		},
		{
			name: "bad payment method",
			req: CreateOrderRequest{
				CustomerID:    customer.ID.String(),
				School:        "Municipal",
				PaymentMethod: "CHEQUE",
				Lines:         []CreateOrderLineRequest{line},
			},
			wantErr: ErrInvalidPaymentMethod,
		},
		{
			name: "bad delivery date",
			req: CreateOrderRequest{
				CustomerID:    customer.ID.String(),
				School:        "Municipal",
				PaymentMethod: enum.PaymentMethodCash,
				DeliveryDue:   "15/09/2026",
				Lines:         []CreateOrderLineRequest{line},
			},
			wantErr: ErrInvalidDeliveryDate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateSaleOrder(context.Background(), tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCreateSaleOrderUnknownReferences(t *testing.T) {
	svc, store := newTestEngine()
	customer := seedCustomer(t, store)
	product := seedProduct(t, store, "Camiseta Manga Curta", "29.90", 10)

	_, err := svc.CreateSaleOrder(context.Background(), CreateOrderRequest{
		CustomerID:    uuid.NewString(),
		School:        "Municipal",
		PaymentMethod: enum.PaymentMethodCash,
		Lines:         []CreateOrderLineRequest{{ProductID: product.ID.String(), Quantity: 1}},
	})
	if !errors.Is(err, ErrCustomerNotFound) {
		t.Errorf("unknown customer: got %v, want ErrCustomerNotFound", err)
	}

	_, err = svc.CreateSaleOrder(context.Background(), saleRequest(customer,
		CreateOrderLineRequest{ProductID: uuid.NewString(), Quantity: 1}))
	if !errors.Is(err, ErrProductNotFound) {
		t.Errorf("unknown product: got %v, want ErrProductNotFound", err)
	}
}

func TestOrderNumberSequence(t *testing.T) {
	svc, store := newTestEngine()
	customer := seedCustomer(t, store)
	product := seedProduct(t, store, "Camiseta Manga Curta", "29.90", 10)

	first, err := svc.CreateSaleOrder(context.Background(), saleRequest(customer,
		CreateOrderLineRequest{ProductID: product.ID.String(), Quantity: 1}))
	if err != nil {
		t.Fatalf("first order: %v", err)
	}
	second, err := svc.CreateProductionOrder(context.Background(), productionRequest(customer,
		CreateOrderLineRequest{ProductID: product.ID.String(), Quantity: 1}))
	if err != nil {
		t.Fatalf("second order: %v", err)
	}

	if first.Order.OrderNumber != "FRD-0001" || second.Order.OrderNumber != "FRD-0002" {
		t.Errorf("order numbers: got %s, %s; want FRD-0001, FRD-0002",
			first.Order.OrderNumber, second.Order.OrderNumber)
	}
}

// --- Production lifecycle ---

func TestCreateProductionOrderLeavesStockAlone(t *testing.T) {
	svc, store := newTestEngine()
	customer := seedCustomer(t, store)
	product := seedProduct(t, store, "Camiseta Manga Curta", "29.90", 10)

	detail, err := svc.CreateProductionOrder(context.Background(), productionRequest(customer,
		CreateOrderLineRequest{ProductID: product.ID.String(), Quantity: 4}))
	if err != nil {
		t.Fatalf("create production order: %v", err)
	}

	if detail.Order.Status != enum.OrderStatusPending {
		t.Errorf("status: got %s, want PENDING", detail.Order.Status)
	}
	if !detail.Order.DeliveryDue.Valid {
		t.Error("delivery due should be set")
	}
	if got := productQuantity(t, store, product.ID); got != 10 {
		t.Errorf("stock: got %d, want 10", got)
	}
}

func TestProductionLifecycleNetZero(t *testing.T) {
	svc, store := newTestEngine()
	customer := seedCustomer(t, store)
	product := seedProduct(t, store, "Camiseta Manga Curta", "29.90", 10)

	detail, err := svc.CreateProductionOrder(context.Background(), productionRequest(customer,
		CreateOrderLineRequest{ProductID: product.ID.String(), Quantity: 4}))
	if err != nil {
		t.Fatalf("create production order: %v", err)
	}
	orderID := detail.Order.ID

	steps := []struct {
		target    string
		wantStock int32
	}{
		{enum.OrderStatusInProduction, 10},
		{enum.OrderStatusReadyForDelivery, 14},
		{enum.OrderStatusDelivered, 10},
	}
	for _, step := range steps {
		order, err := svc.TransitionOrder(context.Background(), orderID, step.target)
		if err != nil {
			t.Fatalf("transition to %s: %v", step.target, err)
		}
		if order.Status != step.target {
			t.Errorf("status: got %s, want %s", order.Status, step.target)
		}
		if got := productQuantity(t, store, product.ID); got != step.wantStock {
			t.Errorf("stock at %s: got %d, want %d", step.target, got, step.wantStock)
		}
	}

	final, _ := store.GetOrder(context.Background(), orderID)
	if !final.DeliveredAt.Valid {
		t.Error("delivered_at should be set after delivery")
	}
}

func TestProductionDeliveryBlockedWhenStockSoldOut(t *testing.T) {
	svc, store := newTestEngine()
	customer := seedCustomer(t, store)
	product := seedProduct(t, store, "Camiseta Manga Curta", "29.90", 10)

	detail, err := svc.CreateProductionOrder(context.Background(), productionRequest(customer,
		CreateOrderLineRequest{ProductID: product.ID.String(), Quantity: 4}))
	if err != nil {
		t.Fatalf("create production order: %v", err)
	}
	orderID := detail.Order.ID

	if _, err := svc.TransitionOrder(context.Background(), orderID, enum.OrderStatusInProduction); err != nil {
		t.Fatalf("to IN_PRODUCTION: %v", err)
	}
	if _, err := svc.TransitionOrder(context.Background(), orderID, enum.OrderStatusReadyForDelivery); err != nil {
		t.Fatalf("to READY_FOR_DELIVERY: %v", err)
	}

	// A walk-in sale takes the finished pieces off the shelf.
	if _, err := svc.CreateSaleOrder(context.Background(), saleRequest(customer,
		CreateOrderLineRequest{ProductID: product.ID.String(), Quantity: 12})); err != nil {
		t.Fatalf("competing sale: %v", err)
	}

	_, err = svc.TransitionOrder(context.Background(), orderID, enum.OrderStatusDelivered)
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("deliver without stock: got %v, want ErrInsufficientStock", err)
	}

	// Transition must not have happened.
	order, _ := store.GetOrder(context.Background(), orderID)
	if order.Status != enum.OrderStatusReadyForDelivery {
		t.Errorf("status: got %s, want READY_FOR_DELIVERY", order.Status)
	}
	if got := productQuantity(t, store, product.ID); got != 2 {
		t.Errorf("stock: got %d, want 2", got)
	}
}

// --- Cancellation ---

func TestCancelSaleRestoresStock(t *testing.T) {
	svc, store := newTestEngine()
	customer := seedCustomer(t, store)
	product := seedProduct(t, store, "Camiseta Manga Curta", "29.90", 10)

	detail, err := svc.CreateSaleOrder(context.Background(), saleRequest(customer,
		CreateOrderLineRequest{ProductID: product.ID.String(), Quantity: 3}))
	if err != nil {
		t.Fatalf("create sale: %v", err)
	}
	if got := productQuantity(t, store, product.ID); got != 7 {
		t.Fatalf("stock after sale: got %d, want 7", got)
	}

	order, err := svc.TransitionOrder(context.Background(), detail.Order.ID, enum.OrderStatusCancelled)
	if err != nil {
		t.Fatalf("cancel sale: %v", err)
	}
	if order.Status != enum.OrderStatusCancelled {
		t.Errorf("status: got %s, want CANCELLED", order.Status)
	}
	if got := productQuantity(t, store, product.ID); got != 10 {
		t.Errorf("stock after cancel: got %d, want 10", got)
	}
}

func TestCancelPendingProductionNoStockEffect(t *testing.T) {
	svc, store := newTestEngine()
	customer := seedCustomer(t, store)
	product := seedProduct(t, store, "Camiseta Manga Curta", "29.90", 10)

	detail, err := svc.CreateProductionOrder(context.Background(), productionRequest(customer,
		CreateOrderLineRequest{ProductID: product.ID.String(), Quantity: 4}))
	if err != nil {
		t.Fatalf("create production order: %v", err)
	}

	if _, err := svc.TransitionOrder(context.Background(), detail.Order.ID, enum.OrderStatusCancelled); err != nil {
		t.Fatalf("cancel pending production: %v", err)
	}
	if got := productQuantity(t, store, product.ID); got != 10 {
		t.Errorf("stock: got %d, want 10", got)
	}
}

func TestCancelReadyProductionRemovesStock(t *testing.T) {
	svc, store := newTestEngine()
	customer := seedCustomer(t, store)
	product := seedProduct(t, store, "Camiseta Manga Curta", "29.90", 10)

	detail, err := svc.CreateProductionOrder(context.Background(), productionRequest(customer,
		CreateOrderLineRequest{ProductID: product.ID.String(), Quantity: 4}))
	if err != nil {
		t.Fatalf("create production order: %v", err)
	}
	orderID := detail.Order.ID

	svcMustTransition(t, svc, orderID, enum.OrderStatusInProduction)
	svcMustTransition(t, svc, orderID, enum.OrderStatusReadyForDelivery)
	if got := productQuantity(t, store, product.ID); got != 14 {
		t.Fatalf("stock at READY_FOR_DELIVERY: got %d, want 14", got)
	}

	svcMustTransition(t, svc, orderID, enum.OrderStatusCancelled)
	if got := productQuantity(t, store, product.ID); got != 10 {
		t.Errorf("stock after cancel: got %d, want 10", got)
	}
}

func svcMustTransition(t *testing.T, svc *OrderService, orderID uuid.UUID, target string) {
	t.Helper()
	if _, err := svc.TransitionOrder(context.Background(), orderID, target); err != nil {
		t.Fatalf("transition to %s: %v", target, err)
	}
}

// --- Transition guards ---

func TestInvalidTransitions(t *testing.T) {
	svc, store := newTestEngine()
	customer := seedCustomer(t, store)
	product := seedProduct(t, store, "Camiseta Manga Curta", "29.90", 20)

	sale, err := svc.CreateSaleOrder(context.Background(), saleRequest(customer,
		CreateOrderLineRequest{ProductID: product.ID.String(), Quantity: 1}))
	if err != nil {
		t.Fatalf("create sale: %v", err)
	}
	production, err := svc.CreateProductionOrder(context.Background(), productionRequest(customer,
		CreateOrderLineRequest{ProductID: product.ID.String(), Quantity: 1}))
	if err != nil {
		t.Fatalf("create production: %v", err)
	}

	tests := []struct {
		name    string
		orderID uuid.UUID
		target  string
		wantErr error
	}{
		{"unknown status", sale.Order.ID, "SHIPPED", ErrInvalidStatus},
		{"sale to PENDING", sale.Order.ID, enum.OrderStatusPending, ErrInvalidTransition},
		{"sale to IN_PRODUCTION", sale.Order.ID, enum.OrderStatusInProduction, ErrInvalidTransition},
		{"production skips to DELIVERED", production.Order.ID, enum.OrderStatusDelivered, ErrInvalidTransition},
		{"production back to COMPLETED", production.Order.ID, enum.OrderStatusCompleted, ErrInvalidTransition},
		{"missing order", uuid.New(), enum.OrderStatusCancelled, ErrOrderNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.TransitionOrder(context.Background(), tt.orderID, tt.target)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDeliveredIsTerminal(t *testing.T) {
	svc, store := newTestEngine()
	customer := seedCustomer(t, store)
	product := seedProduct(t, store, "Camiseta Manga Curta", "29.90", 10)

	sale, err := svc.CreateSaleOrder(context.Background(), saleRequest(customer,
		CreateOrderLineRequest{ProductID: product.ID.String(), Quantity: 1}))
	if err != nil {
		t.Fatalf("create sale: %v", err)
	}
	svcMustTransition(t, svc, sale.Order.ID, enum.OrderStatusDelivered)

	_, err = svc.TransitionOrder(context.Background(), sale.Order.ID, enum.OrderStatusCancelled)
	if !errors.Is(err, ErrDeliveredImmutable) {
		t.Errorf("transition from DELIVERED: got %v, want ErrDeliveredImmutable", err)
	}
	if err := svc.DeleteOrder(context.Background(), sale.Order.ID); !errors.Is(err, ErrDeliveredImmutable) {
		t.Errorf("delete DELIVERED: got %v, want ErrDeliveredImmutable", err)
	}
}

func TestCancelledIsTerminal(t *testing.T) {
	svc, store := newTestEngine()
	customer := seedCustomer(t, store)
	product := seedProduct(t, store, "Camiseta Manga Curta", "29.90", 10)

	sale, err := svc.CreateSaleOrder(context.Background(), saleRequest(customer,
		CreateOrderLineRequest{ProductID: product.ID.String(), Quantity: 1}))
	if err != nil {
		t.Fatalf("create sale: %v", err)
	}
	svcMustTransition(t, svc, sale.Order.ID, enum.OrderStatusCancelled)

	_, err = svc.TransitionOrder(context.Background(), sale.Order.ID, enum.OrderStatusCompleted)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("transition from CANCELLED: got %v, want ErrInvalidTransition", err)
	}
}

// --- Deletion ---

func TestDeleteSaleRestoresStock(t *testing.T) {
	svc, store := newTestEngine()
	customer := seedCustomer(t, store)
	product := seedProduct(t, store, "Camiseta Manga Curta", "29.90", 10)

	sale, err := svc.CreateSaleOrder(context.Background(), saleRequest(customer,
		CreateOrderLineRequest{ProductID: product.ID.String(), Quantity: 3}))
	if err != nil {
		t.Fatalf("create sale: %v", err)
	}

	if err := svc.DeleteOrder(context.Background(), sale.Order.ID); err != nil {
		t.Fatalf("delete sale: %v", err)
	}
	if got := productQuantity(t, store, product.ID); got != 10 {
		t.Errorf("stock after delete: got %d, want 10", got)
	}
	if _, err := store.GetOrder(context.Background(), sale.Order.ID); err == nil {
		t.Error("order should be gone")
	}
}

func TestDeleteCancelledSaleDoesNotDoubleRestore(t *testing.T) {
	svc, store := newTestEngine()
	customer := seedCustomer(t, store)
	product := seedProduct(t, store, "Camiseta Manga Curta", "29.90", 10)

	sale, err := svc.CreateSaleOrder(context.Background(), saleRequest(customer,
		CreateOrderLineRequest{ProductID: product.ID.String(), Quantity: 3}))
	if err != nil {
		t.Fatalf("create sale: %v", err)
	}
	svcMustTransition(t, svc, sale.Order.ID, enum.OrderStatusCancelled)

	if err := svc.DeleteOrder(context.Background(), sale.Order.ID); err != nil {
		t.Fatalf("delete cancelled sale: %v", err)
	}
	if got := productQuantity(t, store, product.ID); got != 10 {
		t.Errorf("stock: got %d, want 10 (cancel already restored it)", got)
	}
}

func TestDeleteReadyProductionRemovesStock(t *testing.T) {
	svc, store := newTestEngine()
	customer := seedCustomer(t, store)
	shirts := seedProduct(t, store, "Camiseta Manga Curta", "29.90", 10)
	pants := seedProduct(t, store, "Calça de Helanca", "49.90", 5)

	production, err := svc.CreateProductionOrder(context.Background(), productionRequest(customer,
		CreateOrderLineRequest{ProductID: shirts.ID.String(), Quantity: 4},
		CreateOrderLineRequest{ProductID: pants.ID.String(), Quantity: 2}))
	if err != nil {
		t.Fatalf("create production: %v", err)
	}
	svcMustTransition(t, svc, production.Order.ID, enum.OrderStatusInProduction)
	svcMustTransition(t, svc, production.Order.ID, enum.OrderStatusReadyForDelivery)

	if err := svc.DeleteOrder(context.Background(), production.Order.ID); err != nil {
		t.Fatalf("delete ready production: %v", err)
	}
	if got := productQuantity(t, store, shirts.ID); got != 10 {
		t.Errorf("shirts stock: got %d, want 10", got)
	}
	if got := productQuantity(t, store, pants.ID); got != 5 {
		t.Errorf("pants stock: got %d, want 5", got)
	}
}

func TestDeletePendingProductionNoStockEffect(t *testing.T) {
	svc, store := newTestEngine()
	customer := seedCustomer(t, store)
	product := seedProduct(t, store, "Camiseta Manga Curta", "29.90", 10)

	production, err := svc.CreateProductionOrder(context.Background(), productionRequest(customer,
		CreateOrderLineRequest{ProductID: product.ID.String(), Quantity: 4}))
	if err != nil {
		t.Fatalf("create production: %v", err)
	}

	if err := svc.DeleteOrder(context.Background(), production.Order.ID); err != nil {
		t.Fatalf("delete pending production: %v", err)
	}
	if got := productQuantity(t, store, product.ID); got != 10 {
		t.Errorf("stock: got %d, want 10", got)
	}
}

func TestDeleteOrderNotFound(t *testing.T) {
	svc, _ := newTestEngine()
	if err := svc.DeleteOrder(context.Background(), uuid.New()); !errors.Is(err, ErrOrderNotFound) {
		t.Errorf("got %v, want ErrOrderNotFound", err)
	}
}

// --- Price snapshot ---

func TestOrderTotalsSurviveCatalogPriceChange(t *testing.T) {
	svc, store := newTestEngine()
	customer := seedCustomer(t, store)
	product := seedProduct(t, store, "Camiseta Manga Curta", "29.90", 10)

	sale, err := svc.CreateSaleOrder(context.Background(), saleRequest(customer,
		CreateOrderLineRequest{ProductID: product.ID.String(), Quantity: 2}))
	if err != nil {
		t.Fatalf("create sale: %v", err)
	}

	if _, err := store.UpdateProductCatalog(context.Background(), database.UpdateProductCatalogParams{
		ID:    product.ID,
		Price: makeNumeric("39.90"),
	}); err != nil {
		t.Fatalf("change price: %v", err)
	}

	order, _ := store.GetOrder(context.Background(), sale.Order.ID)
	if !numericEquals(order.TotalAmount, "59.80") {
		t.Errorf("total after price change: got %s, want 59.80", numericToDecimal(order.TotalAmount))
	}
	lines, _ := store.ListOrderLines(context.Background(), sale.Order.ID)
	if !numericEquals(lines[0].UnitPrice, "29.90") {
		t.Errorf("unit price after price change: got %s, want 29.90", numericToDecimal(lines[0].UnitPrice))
	}
}
