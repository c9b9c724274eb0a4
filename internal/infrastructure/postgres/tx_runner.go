package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/invorya/stock-ledger/internal/application/stock"
	"github.com/invorya/stock-ledger/internal/domain"
	"github.com/invorya/stock-ledger/internal/domain/repository"
)

var _ stock.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
// El par registro+movimiento confirma junto o no confirma.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace
// Commit o Rollback. Begin con fallo transitorio se reintenta con backoff.
func (r *TxRunner) Run(ctx context.Context, fn func(
	records repository.StockRecordRepository,
	movements repository.StockMovementRepository,
) error) error {
	var tx pgx.Tx
	err := withRetry(ctx, 3, func() error {
		var err error
		tx, err = r.pool.Begin(ctx)
		return err
	})
	if err != nil {
		if err == domain.ErrStorageUnavailable {
			return err
		}
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	records := NewStockRecordRepository(tx)
	movements := NewStockMovementRepository(tx)

	if err := fn(records, movements); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		if isTransient(err) {
			return domain.ErrStorageUnavailable
		}
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
