package repository

import (
	"context"

	"github.com/invorya/stock-ledger/internal/domain/entity"
	"github.com/invorya/stock-ledger/internal/domain/stock"
)

// StockListFilter criterios del listado de stock (todos opcionales).
type StockListFilter struct {
	Search   string       // nombre, marca o código de barras
	Status   stock.Status // filtro por estado derivado; vacío = todos
	Category string
	Limit    int
	Offset   int
}

// StockRow una fila del listado: registro de stock + campos de catálogo.
// Productos sin fila de stock aún aparecen con cantidades en cero.
type StockRow struct {
	Record  entity.StockRecord
	Product entity.Product
}

// StockViewRepository es el puerto de lectura para el listado paginado.
// La clasificación de estado usa la misma política que el coordinador; el
// adaptador la traduce a condiciones de consulta para que la paginación sea exacta.
type StockViewRepository interface {
	List(ctx context.Context, companyID string, filter StockListFilter) ([]*StockRow, error)
	Count(ctx context.Context, companyID string, filter StockListFilter) (int, error)
}
