package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/invorya/stock-ledger/internal/domain"
	"github.com/invorya/stock-ledger/internal/domain/entity"
	"github.com/invorya/stock-ledger/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo implementación del libro de movimientos sobre PostgreSQL
// (usable con pool o tx). Solo inserta y lista; nunca edita ni borra.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

// Append persiste un movimiento.
func (r *StockMovementRepo) Append(ctx context.Context, movement *entity.StockMovement) error {
	if movement.ID == "" {
		movement.ID = uuid.New().String()
	}
	query := `
		INSERT INTO stock_movements (id, company_id, product_id, type, quantity_delta, resulting_current_stock, unit_cost, reason, actor_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	actorID := (*string)(nil)
	if movement.ActorID != "" {
		actorID = &movement.ActorID
	}
	_, err := r.q.Exec(ctx, query,
		movement.ID, movement.CompanyID, movement.ProductID, movement.Type,
		movement.QuantityDelta, movement.ResultingCurrentStock, movement.UnitCost,
		movement.Reason, actorID, movement.CreatedAt,
	)
	if err != nil {
		if isTransient(err) {
			return domain.ErrStorageUnavailable
		}
		return fmt.Errorf("append stock movement: %w", err)
	}
	return nil
}

// ListByCompany lista movimientos de la empresa, más recientes primero.
// productID vacío = todos los productos de la empresa.
func (r *StockMovementRepo) ListByCompany(ctx context.Context, companyID, productID string, limit, offset int) ([]*entity.StockMovement, error) {
	query := `
		SELECT id, company_id, product_id, type, quantity_delta, resulting_current_stock, unit_cost, reason, actor_id, created_at
		FROM stock_movements WHERE company_id = $1`
	args := []any{companyID}
	pos := 2
	if productID != "" {
		query += fmt.Sprintf(" AND product_id = $%d", pos)
		args = append(args, productID)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	var list []*entity.StockMovement
	err := withRetry(ctx, 3, func() error {
		rows, err := r.q.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		list = list[:0]
		for rows.Next() {
			var m entity.StockMovement
			var actorID *string
			if err := rows.Scan(&m.ID, &m.CompanyID, &m.ProductID, &m.Type,
				&m.QuantityDelta, &m.ResultingCurrentStock, &m.UnitCost,
				&m.Reason, &actorID, &m.CreatedAt); err != nil {
				return err
			}
			if actorID != nil {
				m.ActorID = *actorID
			}
			list = append(list, &m)
		}
		return rows.Err()
	})
	if err != nil {
		if errors.Is(err, domain.ErrStorageUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("list stock movements: %w", err)
	}
	return list, nil
}

// CountByCompany cuenta movimientos para los metadatos de paginación.
func (r *StockMovementRepo) CountByCompany(ctx context.Context, companyID, productID string) (int, error) {
	query := `SELECT count(*) FROM stock_movements WHERE company_id = $1`
	args := []any{companyID}
	if productID != "" {
		query += " AND product_id = $2"
		args = append(args, productID)
	}
	var total int
	err := withRetry(ctx, 3, func() error {
		return r.q.QueryRow(ctx, query, args...).Scan(&total)
	})
	if err != nil {
		if errors.Is(err, domain.ErrStorageUnavailable) {
			return 0, err
		}
		return 0, fmt.Errorf("count stock movements: %w", err)
	}
	return total, nil
}
