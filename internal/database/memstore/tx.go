package memstore

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fardaria/api/internal/database"
)

// Begin takes the store mutex and snapshots the state. The returned Tx holds
// the mutex until Commit or Rollback, so a transaction sees and mutates the
// live state exclusively, and Rollback restores the snapshot.
func (s *Store) Begin(ctx context.Context) (pgx.Tx, error) {
	s.mu.Lock()
	return &Tx{store: s, snapshot: s.st.clone()}, nil
}

// Tx satisfies pgx.Tx so the memory driver can stand where a pgxpool
// transaction stands. The raw SQL methods panic; transactional code goes
// through the typed store methods instead.
type Tx struct {
	store    *Store
	snapshot *state
	done     bool
}

func (t *Tx) Commit(ctx context.Context) error {
	if t.done {
		return pgx.ErrTxClosed
	}
	t.done = true
	t.store.mu.Unlock()
	return nil
}

func (t *Tx) Rollback(ctx context.Context) error {
	if t.done {
		return pgx.ErrTxClosed
	}
	t.done = true
	t.store.st = t.snapshot
	t.store.mu.Unlock()
	return nil
}

func (t *Tx) Begin(ctx context.Context) (pgx.Tx, error) {
	panic("memstore: nested transactions not implemented")
}

func (t *Tx) Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error) {
	panic("memstore: raw SQL not implemented")
}

func (t *Tx) Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	panic("memstore: raw SQL not implemented")
}

func (t *Tx) QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row {
	panic("memstore: raw SQL not implemented")
}

func (t *Tx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	panic("memstore: CopyFrom not implemented")
}

func (t *Tx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	panic("memstore: SendBatch not implemented")
}

func (t *Tx) LargeObjects() pgx.LargeObjects {
	panic("memstore: LargeObjects not implemented")
}

func (t *Tx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	panic("memstore: Prepare not implemented")
}

func (t *Tx) Conn() *pgx.Conn {
	panic("memstore: Conn not implemented")
}

// Typed store methods on Tx operate on the live state under the mutex held
// since Begin.

func (t *Tx) GetNextOrderNumber(ctx context.Context) (int32, error) {
	return t.store.st.getNextOrderNumber()
}

func (t *Tx) GetCustomer(ctx context.Context, id uuid.UUID) (database.Customer, error) {
	return t.store.st.getCustomer(id)
}

func (t *Tx) GetProductForOrder(ctx context.Context, id uuid.UUID) (database.Product, error) {
	return t.store.st.getProduct(id)
}

func (t *Tx) IncrementStock(ctx context.Context, arg database.AdjustStockParams) (database.Product, error) {
	return t.store.st.incrementStock(arg)
}

func (t *Tx) DecrementStock(ctx context.Context, arg database.AdjustStockParams) (database.Product, error) {
	return t.store.st.decrementStock(arg)
}

func (t *Tx) CreateOrder(ctx context.Context, arg database.CreateOrderParams) (database.Order, error) {
	return t.store.st.createOrder(arg)
}

func (t *Tx) CreateOrderLine(ctx context.Context, arg database.CreateOrderLineParams) (database.OrderLine, error) {
	return t.store.st.createOrderLine(arg)
}

func (t *Tx) GetOrderForUpdate(ctx context.Context, id uuid.UUID) (database.Order, error) {
	return t.store.st.getOrder(id)
}

func (t *Tx) ListOrderLines(ctx context.Context, orderID uuid.UUID) ([]database.OrderLine, error) {
	return t.store.st.listOrderLines(orderID)
}

func (t *Tx) UpdateOrderStatus(ctx context.Context, arg database.UpdateOrderStatusParams) (database.Order, error) {
	return t.store.st.updateOrderStatus(arg)
}

func (t *Tx) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	return t.store.st.deleteOrder(id)
}
