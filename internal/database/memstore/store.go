package memstore

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/fardaria/api/internal/database"
)

// The Store methods below take the mutex per call. They intentionally match
// the *database.Queries method set so either value satisfies the narrow
// per-handler store interfaces.

func (s *Store) CreateProduct(ctx context.Context, arg database.CreateProductParams) (database.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.createProduct(arg)
}

func (s *Store) GetProduct(ctx context.Context, id uuid.UUID) (database.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.getProduct(id)
}

func (s *Store) GetProductForOrder(ctx context.Context, id uuid.UUID) (database.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.getProduct(id)
}

func (s *Store) ListProducts(ctx context.Context, arg database.ListProductsParams) ([]database.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.listProducts(arg)
}

func (s *Store) UpdateProductCatalog(ctx context.Context, arg database.UpdateProductCatalogParams) (database.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.updateProductCatalog(arg)
}

func (s *Store) IncrementStock(ctx context.Context, arg database.AdjustStockParams) (database.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.incrementStock(arg)
}

func (s *Store) DecrementStock(ctx context.Context, arg database.AdjustStockParams) (database.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.decrementStock(arg)
}

func (s *Store) ListLowStockProducts(ctx context.Context, threshold int32) ([]database.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.listLowStockProducts(threshold)
}

func (s *Store) CreateCustomer(ctx context.Context, arg database.CreateCustomerParams) (database.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.createCustomer(arg)
}

func (s *Store) GetCustomer(ctx context.Context, id uuid.UUID) (database.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.getCustomer(id)
}

func (s *Store) ListCustomers(ctx context.Context, search pgtype.Text) ([]database.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.listCustomers(search)
}

func (s *Store) UpdateCustomer(ctx context.Context, arg database.UpdateCustomerParams) (database.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.updateCustomer(arg)
}

func (s *Store) DeleteCustomer(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.deleteCustomer(id)
}

func (s *Store) CountOrdersByCustomer(ctx context.Context, customerID uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.countOrdersByCustomer(customerID)
}

func (s *Store) GetNextOrderNumber(ctx context.Context) (int32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.getNextOrderNumber()
}

func (s *Store) CreateOrder(ctx context.Context, arg database.CreateOrderParams) (database.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.createOrder(arg)
}

func (s *Store) CreateOrderLine(ctx context.Context, arg database.CreateOrderLineParams) (database.OrderLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.createOrderLine(arg)
}

func (s *Store) GetOrder(ctx context.Context, id uuid.UUID) (database.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.getOrder(id)
}

func (s *Store) GetOrderForUpdate(ctx context.Context, id uuid.UUID) (database.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.getOrder(id)
}

func (s *Store) ListOrders(ctx context.Context, arg database.ListOrdersParams) ([]database.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.listOrders(arg)
}

func (s *Store) ListOrderLines(ctx context.Context, orderID uuid.UUID) ([]database.OrderLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.listOrderLines(orderID)
}

func (s *Store) UpdateOrderStatus(ctx context.Context, arg database.UpdateOrderStatusParams) (database.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.updateOrderStatus(arg)
}

func (s *Store) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.deleteOrder(id)
}

func (s *Store) GetInventorySummary(ctx context.Context) (database.InventorySummaryRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.getInventorySummary()
}

func (s *Store) ListSalesBySchool(ctx context.Context) ([]database.SalesBySchoolRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.listSalesBySchool()
}

func (s *Store) ListOrderCountsByStatus(ctx context.Context) ([]database.OrderCountsByStatusRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.listOrderCountsByStatus()
}
