package repository

import (
	"context"

	"github.com/invorya/stock-ledger/internal/domain/entity"
)

// StockMovementRepository define el puerto del libro de movimientos (append-only).
type StockMovementRepository interface {
	// Append inserta el movimiento. Nunca falla por razones lógicas, solo de almacenamiento.
	Append(ctx context.Context, movement *entity.StockMovement) error
	// ListByCompany lista movimientos de la empresa, más recientes primero.
	// productID vacío = todos los productos.
	ListByCompany(ctx context.Context, companyID, productID string, limit, offset int) ([]*entity.StockMovement, error)
	CountByCompany(ctx context.Context, companyID, productID string) (int, error)
}
