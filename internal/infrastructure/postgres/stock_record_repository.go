package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/invorya/stock-ledger/internal/domain"
	"github.com/invorya/stock-ledger/internal/domain/entity"
	"github.com/invorya/stock-ledger/internal/domain/repository"
)

var _ repository.StockRecordRepository = (*StockRecordRepo)(nil)

// StockRecordRepo implementación de StockRecordRepository sobre PostgreSQL
// (usable con pool o tx). Escrituras con CAS por columna version.
type StockRecordRepo struct {
	q Querier
}

// NewStockRecordRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockRecordRepository(q Querier) *StockRecordRepo {
	return &StockRecordRepo{q: q}
}

// Get obtiene el registro de stock de un producto para una empresa.
// Sin fila todavía: registro en cero con Version 0 (el primer Put inserta).
func (r *StockRecordRepo) Get(ctx context.Context, companyID, productID string) (*entity.StockRecord, error) {
	query := `
		SELECT company_id, product_id, current_stock, reserved_stock, minimum_stock, version, updated_at
		FROM stock_records WHERE company_id = $1 AND product_id = $2`
	var rec entity.StockRecord
	err := withRetry(ctx, 3, func() error {
		return r.q.QueryRow(ctx, query, companyID, productID).Scan(
			&rec.CompanyID, &rec.ProductID, &rec.CurrentStock, &rec.ReservedStock,
			&rec.MinimumStock, &rec.Version, &rec.UpdatedAt,
		)
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &entity.StockRecord{CompanyID: companyID, ProductID: productID}, nil
		}
		if errors.Is(err, domain.ErrStorageUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("get stock record: %w", err)
	}
	return &rec, nil
}

// Put escribe el registro con concurrencia optimista. expectedVersion 0
// inserta (ON CONFLICT DO NOTHING); cualquier carrera perdida se reporta como
// domain.ErrConflict para que el coordinador relea y reintente.
func (r *StockRecordRepo) Put(ctx context.Context, record *entity.StockRecord, expectedVersion int64) error {
	if expectedVersion == 0 {
		query := `
			INSERT INTO stock_records (company_id, product_id, current_stock, reserved_stock, minimum_stock, version, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (company_id, product_id) DO NOTHING`
		cmd, err := r.q.Exec(ctx, query,
			record.CompanyID, record.ProductID, record.CurrentStock,
			record.ReservedStock, record.MinimumStock, record.Version, record.UpdatedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return domain.ErrConflict
			}
			if isTransient(err) {
				return domain.ErrStorageUnavailable
			}
			return fmt.Errorf("insert stock record: %w", err)
		}
		if cmd.RowsAffected() == 0 {
			return domain.ErrConflict
		}
		return nil
	}

	query := `
		UPDATE stock_records
		SET current_stock = $3, reserved_stock = $4, minimum_stock = $5, version = $6, updated_at = $7
		WHERE company_id = $1 AND product_id = $2 AND version = $8`
	cmd, err := r.q.Exec(ctx, query,
		record.CompanyID, record.ProductID, record.CurrentStock,
		record.ReservedStock, record.MinimumStock, record.Version, record.UpdatedAt,
		expectedVersion,
	)
	if err != nil {
		if isTransient(err) {
			return domain.ErrStorageUnavailable
		}
		return fmt.Errorf("update stock record: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrConflict
	}
	return nil
}
