package repository

import (
	"context"

	"github.com/invorya/stock-ledger/internal/domain/entity"
)

// StockRecordRepository define el puerto de persistencia del registro de stock
// por (empresa, producto). Usado dentro de transacciones para garantizar
// consistencia registro+movimiento.
type StockRecordRepository interface {
	// Get devuelve el registro actual. Si no existe fila aún, devuelve un
	// registro en cero con Version 0 (el guard decide NotFound vía catálogo).
	Get(ctx context.Context, companyID, productID string) (*entity.StockRecord, error)
	// Put escribe con concurrencia optimista: falla con domain.ErrConflict si
	// la versión almacenada cambió desde la lectura. expectedVersion 0 inserta.
	Put(ctx context.Context, record *entity.StockRecord, expectedVersion int64) error
}
