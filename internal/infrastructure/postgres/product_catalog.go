package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/invorya/stock-ledger/internal/domain"
	"github.com/invorya/stock-ledger/internal/domain/entity"
	"github.com/invorya/stock-ledger/internal/domain/repository"
)

var _ repository.ProductCatalog = (*ProductCatalogRepo)(nil)

// ProductCatalogRepo adaptador de solo lectura sobre la tabla products del
// catálogo. El ledger nunca escribe en ella.
type ProductCatalogRepo struct {
	q Querier
}

// NewProductCatalogRepository construye el adaptador. Pasar pool o tx (Querier).
func NewProductCatalogRepository(q Querier) *ProductCatalogRepo {
	return &ProductCatalogRepo{q: q}
}

// Exists indica si el producto existe y pertenece a la empresa.
func (r *ProductCatalogRepo) Exists(ctx context.Context, companyID, productID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM products WHERE company_id = $1 AND id = $2)`
	var ok bool
	err := withRetry(ctx, 3, func() error {
		return r.q.QueryRow(ctx, query, companyID, productID).Scan(&ok)
	})
	if err != nil {
		if errors.Is(err, domain.ErrStorageUnavailable) {
			return false, err
		}
		return false, fmt.Errorf("product exists: %w", err)
	}
	return ok, nil
}

// DisplayFields devuelve los campos de presentación por ID de producto.
func (r *ProductCatalogRepo) DisplayFields(ctx context.Context, companyID string, productIDs []string) (map[string]*entity.Product, error) {
	if len(productIDs) == 0 {
		return map[string]*entity.Product{}, nil
	}
	query := `
		SELECT id, company_id, name, brand, barcode, category, price
		FROM products WHERE company_id = $1 AND id = ANY($2)`
	out := make(map[string]*entity.Product, len(productIDs))
	err := withRetry(ctx, 3, func() error {
		rows, err := r.q.Query(ctx, query, companyID, productIDs)
		if err != nil {
			return err
		}
		defer rows.Close()
		clear(out)
		for rows.Next() {
			var p entity.Product
			if err := rows.Scan(&p.ID, &p.CompanyID, &p.Name, &p.Brand, &p.Barcode, &p.Category, &p.Price); err != nil {
				return err
			}
			out[p.ID] = &p
		}
		return rows.Err()
	})
	if err != nil {
		if errors.Is(err, domain.ErrStorageUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("product display fields: %w", err)
	}
	return out, nil
}
