package stock

// Status clasifica la salud del inventario de un producto.
type Status string

const (
	StatusOutOfStock Status = "out_of_stock"
	StatusCritical   Status = "critical"
	StatusLowStock   Status = "low_stock"
	StatusInStock    Status = "in_stock"
)

// ValidStatus indica si s corresponde a un estado reconocido (para filtros de listado).
func ValidStatus(s string) bool {
	switch Status(s) {
	case StatusOutOfStock, StatusCritical, StatusLowStock, StatusInStock:
		return true
	}
	return false
}

// Policy define el umbral de severidad crítica. Critical es un sub-umbral de
// LowStock: current <= minimum/CriticalDivisor. El divisor es configurable
// porque el negocio no lo considera una constante (default 2).
type Policy struct {
	CriticalDivisor int
}

// DefaultPolicy usa minimum/2 como umbral crítico.
var DefaultPolicy = Policy{CriticalDivisor: 2}

// Classify deriva el estado a partir de las cantidades. Función pura:
// sin efectos, sin acceso a datos. Usada por el coordinador (alertas) y
// por el listado (presentación y filtro).
func (p Policy) Classify(current, minimum int) Status {
	if current <= 0 {
		return StatusOutOfStock
	}
	if current <= minimum {
		div := p.CriticalDivisor
		if div <= 0 {
			div = DefaultPolicy.CriticalDivisor
		}
		// Estrictamente bajo minimum/div; en el límite exacto sigue siendo low_stock.
		if current*div < minimum {
			return StatusCritical
		}
		return StatusLowStock
	}
	return StatusInStock
}
