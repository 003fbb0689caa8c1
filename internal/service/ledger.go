package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/fardaria/api/internal/database"
)

// LowStockThreshold marks products that need a production run soon.
const LowStockThreshold = 5

// StockStore is the slice of the store the ledger needs.
type StockStore interface {
	GetProduct(ctx context.Context, id uuid.UUID) (database.Product, error)
	IncrementStock(ctx context.Context, arg database.AdjustStockParams) (database.Product, error)
	DecrementStock(ctx context.Context, arg database.AdjustStockParams) (database.Product, error)
}

// StockLedger funnels all manual stock movements through the same guarded
// increment/decrement queries the order engine uses, so on-hand quantity can
// never go negative from any path.
type StockLedger struct {
	store StockStore
}

func NewStockLedger(store StockStore) *StockLedger {
	return &StockLedger{store: store}
}

func (l *StockLedger) Increase(ctx context.Context, productID uuid.UUID, amount int32) (database.Product, error) {
	if amount <= 0 {
		return database.Product{}, ErrInvalidQuantity
	}
	product, err := l.store.IncrementStock(ctx, database.AdjustStockParams{ID: productID, Amount: amount})
	if errors.Is(err, pgx.ErrNoRows) {
		return database.Product{}, ErrProductNotFound
	}
	return product, err
}

func (l *StockLedger) Decrease(ctx context.Context, productID uuid.UUID, amount int32) (database.Product, error) {
	if amount <= 0 {
		return database.Product{}, ErrInvalidQuantity
	}
	product, err := l.store.DecrementStock(ctx, database.AdjustStockParams{ID: productID, Amount: amount})
	if errors.Is(err, pgx.ErrNoRows) {
		// No row matched: either the product is missing or the guarded
		// update refused to go below zero.
		if _, getErr := l.store.GetProduct(ctx, productID); errors.Is(getErr, pgx.ErrNoRows) {
			return database.Product{}, ErrProductNotFound
		} else if getErr != nil {
			return database.Product{}, getErr
		}
		return database.Product{}, fmt.Errorf("%w: product %s", ErrInsufficientStock, productID)
	}
	return product, err
}
