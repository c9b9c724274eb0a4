package stock

import (
	"context"

	"github.com/invorya/stock-ledger/internal/domain"
	"github.com/invorya/stock-ledger/internal/domain/entity"
	"github.com/invorya/stock-ledger/internal/domain/repository"
)

// TenantGuard enruta todo acceso al store verificando la frontera de empresa.
// Un producto de otra empresa se reporta como NotFound, nunca como Forbidden,
// para no revelar existencia entre tenants.
type TenantGuard struct {
	catalog repository.ProductCatalog
}

// NewTenantGuard construye el guard sobre el catálogo de productos.
func NewTenantGuard(catalog repository.ProductCatalog) *TenantGuard {
	return &TenantGuard{catalog: catalog}
}

// Record carga el registro de stock del producto para la empresa indicada.
// El producto debe existir y pertenecer a la empresa; si no hay fila de stock
// todavía, devuelve el registro en cero (Version 0) listo para el primer Put.
func (g *TenantGuard) Record(ctx context.Context, records repository.StockRecordRepository, companyID, productID string) (*entity.StockRecord, error) {
	if companyID == "" || productID == "" {
		return nil, domain.ErrInvalidInput
	}
	ok, err := g.catalog.Exists(ctx, companyID, productID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrNotFound
	}
	rec, err := records.Get(ctx, companyID, productID)
	if err != nil {
		return nil, err
	}
	if rec.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	return rec, nil
}
