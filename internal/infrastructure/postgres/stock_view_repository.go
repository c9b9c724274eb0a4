package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/invorya/stock-ledger/internal/domain"
	"github.com/invorya/stock-ledger/internal/domain/repository"
	"github.com/invorya/stock-ledger/internal/domain/stock"
)

var _ repository.StockViewRepository = (*StockViewRepo)(nil)

// StockViewRepo listado paginado de stock: products LEFT JOIN stock_records,
// de modo que productos sin fila de stock aparecen con cantidades en cero.
// El filtro de estado se traduce a SQL con la misma política del clasificador
// para que count y página sean consistentes.
type StockViewRepo struct {
	q      Querier
	policy stock.Policy
}

// NewStockViewRepository construye el adaptador de lectura del listado.
func NewStockViewRepository(q Querier, policy stock.Policy) *StockViewRepo {
	return &StockViewRepo{q: q, policy: policy}
}

const stockViewFrom = `
	FROM products p
	LEFT JOIN stock_records r ON r.company_id = p.company_id AND r.product_id = p.id
	WHERE p.company_id = $1`

// buildFilter agrega condiciones de búsqueda, categoría y estado.
// Devuelve el SQL adicional y los argumentos, continuando la numeración en pos.
func (r *StockViewRepo) buildFilter(filter repository.StockListFilter, pos int) (string, []any) {
	var sql string
	var args []any
	if filter.Search != "" {
		sql += fmt.Sprintf(" AND (p.name ILIKE $%d OR p.brand ILIKE $%d OR p.barcode = $%d)", pos, pos, pos+1)
		args = append(args, "%"+filter.Search+"%", filter.Search)
		pos += 2
	}
	if filter.Category != "" {
		sql += fmt.Sprintf(" AND p.category = $%d", pos)
		args = append(args, filter.Category)
		pos++
	}
	if filter.Status != "" {
		div := r.policy.CriticalDivisor
		if div <= 0 {
			div = stock.DefaultPolicy.CriticalDivisor
		}
		current := "COALESCE(r.current_stock, 0)"
		minimum := "COALESCE(r.minimum_stock, 0)"
		switch filter.Status {
		case stock.StatusOutOfStock:
			sql += fmt.Sprintf(" AND %s <= 0", current)
		case stock.StatusCritical:
			sql += fmt.Sprintf(" AND %s > 0 AND %s * $%d < %s", current, current, pos, minimum)
			args = append(args, div)
			pos++
		case stock.StatusLowStock:
			sql += fmt.Sprintf(" AND %s > 0 AND %s <= %s AND %s * $%d >= %s", current, current, minimum, current, pos, minimum)
			args = append(args, div)
			pos++
		case stock.StatusInStock:
			sql += fmt.Sprintf(" AND %s > %s", current, minimum)
		}
	}
	return sql, args
}

// List devuelve una página del listado, ordenada por nombre de producto.
func (r *StockViewRepo) List(ctx context.Context, companyID string, filter repository.StockListFilter) ([]*repository.StockRow, error) {
	where, args := r.buildFilter(filter, 2)
	query := `
		SELECT p.id, p.company_id, p.name, COALESCE(p.brand, ''), COALESCE(p.barcode, ''), COALESCE(p.category, ''), p.price,
		       COALESCE(r.current_stock, 0), COALESCE(r.reserved_stock, 0), COALESCE(r.minimum_stock, 0),
		       COALESCE(r.version, 0), COALESCE(r.updated_at, p.created_at)` +
		stockViewFrom + where +
		fmt.Sprintf(" ORDER BY p.name ASC, p.id ASC LIMIT $%d OFFSET $%d", len(args)+2, len(args)+3)
	allArgs := append([]any{companyID}, args...)
	allArgs = append(allArgs, filter.Limit, filter.Offset)

	var list []*repository.StockRow
	err := withRetry(ctx, 3, func() error {
		rows, err := r.q.Query(ctx, query, allArgs...)
		if err != nil {
			return err
		}
		defer rows.Close()
		list = list[:0]
		for rows.Next() {
			var row repository.StockRow
			if err := rows.Scan(
				&row.Product.ID, &row.Product.CompanyID, &row.Product.Name, &row.Product.Brand,
				&row.Product.Barcode, &row.Product.Category, &row.Product.Price,
				&row.Record.CurrentStock, &row.Record.ReservedStock, &row.Record.MinimumStock,
				&row.Record.Version, &row.Record.UpdatedAt,
			); err != nil {
				return err
			}
			row.Record.CompanyID = row.Product.CompanyID
			row.Record.ProductID = row.Product.ID
			list = append(list, &row)
		}
		return rows.Err()
	})
	if err != nil {
		if errors.Is(err, domain.ErrStorageUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("list stock view: %w", err)
	}
	return list, nil
}

// Count cuenta el total de productos que cumplen el filtro.
func (r *StockViewRepo) Count(ctx context.Context, companyID string, filter repository.StockListFilter) (int, error) {
	where, args := r.buildFilter(filter, 2)
	query := `SELECT count(*)` + stockViewFrom + where
	allArgs := append([]any{companyID}, args...)

	var total int
	err := withRetry(ctx, 3, func() error {
		return r.q.QueryRow(ctx, query, allArgs...).Scan(&total)
	})
	if err != nil {
		if errors.Is(err, domain.ErrStorageUnavailable) {
			return 0, err
		}
		return 0, fmt.Errorf("count stock view: %w", err)
	}
	return total, nil
}
