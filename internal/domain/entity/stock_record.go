package entity

import "time"

// StockRecord representa el stock actual de un producto para una empresa.
// Cantidades en unidades físicas (enteras). Version se usa para control de
// concurrencia optimista en el store: 0 significa que el registro aún no existe.
type StockRecord struct {
	CompanyID     string
	ProductID     string
	CurrentStock  int
	ReservedStock int
	MinimumStock  int
	Version       int64
	UpdatedAt     time.Time
}

// AvailableStock devuelve lo vendible ahora: current - reserved.
// Con los invariantes del coordinador nunca es negativo.
func (r *StockRecord) AvailableStock() int {
	return r.CurrentStock - r.ReservedStock
}
