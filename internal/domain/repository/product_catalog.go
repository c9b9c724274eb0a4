package repository

import (
	"context"

	"github.com/invorya/stock-ledger/internal/domain/entity"
)

// ProductCatalog es el puerto de solo lectura hacia el catálogo de productos
// (colaborador externo). El ledger no es dueño de nombre, marca ni precio.
type ProductCatalog interface {
	// Exists indica si el producto existe y pertenece a la empresa.
	Exists(ctx context.Context, companyID, productID string) (bool, error)
	// DisplayFields devuelve los campos de presentación por ID de producto.
	// IDs inexistentes simplemente no aparecen en el mapa.
	DisplayFields(ctx context.Context, companyID string, productIDs []string) (map[string]*entity.Product, error)
}
