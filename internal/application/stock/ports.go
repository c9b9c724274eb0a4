package stock

import (
	"context"

	"github.com/invorya/stock-ledger/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza que registro y movimiento se
// confirmen juntos o ninguno.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		records repository.StockRecordRepository,
		movements repository.StockMovementRepository,
	) error) error
}
