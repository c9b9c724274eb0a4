package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento de stock (value object conceptual).
const (
	MovementTypeInbound           = "inbound"            // entrada
	MovementTypeOutbound          = "outbound"           // salida
	MovementTypeAdjustment        = "adjustment"         // ajuste absoluto
	MovementTypeReservationChange = "reservation_change" // cambio de reserva
	MovementTypeMinimumChange     = "minimum_change"     // cambio de mínimo
)

// StockMovement es el registro de auditoría de un cambio de cantidad.
// Inmutable: se inserta una vez y nunca se edita ni se borra.
type StockMovement struct {
	ID                    string
	CompanyID             string
	ProductID             string
	Type                  string
	QuantityDelta         int // con signo; para reservation/minimum es el delta del campo respectivo
	ResultingCurrentStock int
	UnitCost              *decimal.Decimal // opcional, solo informativo para entradas
	Reason                string
	ActorID               string
	CreatedAt             time.Time
}
