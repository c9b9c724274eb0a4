package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ApplyMovementRequest body para POST /api/stock/movement.
// Type: inbound (relativo +), outbound (relativo -, con clamp en 0), adjustment (absoluto).
type ApplyMovementRequest struct {
	ProductID string           `json:"product_id"`
	Type      string           `json:"movement_type"`
	Quantity  int              `json:"quantity"`
	UnitCost  *decimal.Decimal `json:"unit_cost,omitempty"`
	Reason    string           `json:"reason"`
}

// UpdateCurrentStockRequest body para POST /api/stock/update-current-stock.
type UpdateCurrentStockRequest struct {
	ProductID       string `json:"product_id"`
	NewCurrentStock int    `json:"new_current_stock"`
	Reason          string `json:"reason"`
}

// UpdateReservedStockRequest body para PUT /api/stock/update-reserved.
type UpdateReservedStockRequest struct {
	ProductID        string `json:"product_id"`
	NewReservedStock int    `json:"new_reserved_stock"`
}

// UpdateMinimumStockRequest body para PUT /api/stock/update-minimum-stock.
type UpdateMinimumStockRequest struct {
	ProductID       string `json:"product_id"`
	NewMinimumStock int    `json:"new_minimum_stock"`
}

// BulkUpdateRequest body para POST /api/stock/bulk-update.
// Operation: add | subtract | set. Cada producto es su propia unidad atómica;
// el lote siempre reporta resultados parciales.
type BulkUpdateRequest struct {
	ProductIDs []string `json:"product_ids"`
	Operation  string   `json:"operation"`
	Amount     int      `json:"amount"`
	Reason     string   `json:"reason"`
}

// BulkItemResult resultado de un producto dentro del lote.
type BulkItemResult struct {
	ProductID string `json:"product_id"`
	Success   bool   `json:"success"`
	Message   string `json:"message,omitempty"`
}

// BulkUpdateResponse agregado del lote.
type BulkUpdateResponse struct {
	Succeeded int              `json:"succeeded"`
	Failed    int              `json:"failed"`
	Results   []BulkItemResult `json:"results"`
}

// StockItemDTO una fila del listado de stock: registro + campos de catálogo + estado derivado.
type StockItemDTO struct {
	ProductID      string          `json:"product_id"`
	Name           string          `json:"name"`
	Brand          string          `json:"brand,omitempty"`
	Barcode        string          `json:"barcode,omitempty"`
	Category       string          `json:"category,omitempty"`
	Price          decimal.Decimal `json:"price"`
	CurrentStock   int             `json:"current_stock"`
	ReservedStock  int             `json:"reserved_stock"`
	AvailableStock int             `json:"available_stock"`
	MinimumStock   int             `json:"minimum_stock"`
	Status         string          `json:"status"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// PagedStockResponse página del listado de stock.
type PagedStockResponse struct {
	Data        []StockItemDTO `json:"data"`
	CurrentPage int            `json:"current_page"`
	TotalPages  int            `json:"total_pages"`
	TotalItems  int            `json:"total_items"`
}

// MovementDTO una fila del historial de movimientos.
type MovementDTO struct {
	ID                    string           `json:"id"`
	ProductID             string           `json:"product_id"`
	ProductName           string           `json:"product_name,omitempty"`
	Type                  string           `json:"movement_type"`
	QuantityDelta         int              `json:"quantity_delta"`
	ResultingCurrentStock int              `json:"resulting_current_stock"`
	UnitCost              *decimal.Decimal `json:"unit_cost,omitempty"`
	Reason                string           `json:"reason,omitempty"`
	ActorID               string           `json:"actor_id,omitempty"`
	CreatedAt             time.Time        `json:"created_at"`
}

// PagedMovementsResponse página del historial de movimientos (más recientes primero).
type PagedMovementsResponse struct {
	Data        []MovementDTO `json:"data"`
	CurrentPage int           `json:"current_page"`
	TotalPages  int           `json:"total_pages"`
	TotalItems  int           `json:"total_items"`
}
