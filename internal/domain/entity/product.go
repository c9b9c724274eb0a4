package entity

import "github.com/shopspring/decimal"

// Product es la vista de solo lectura del catálogo (colaborador externo).
// El ledger referencia productos por ID; nombre, marca y precio pertenecen al catálogo.
type Product struct {
	ID        string
	CompanyID string
	Name      string
	Brand     string
	Barcode   string
	Category  string
	Price     decimal.Decimal
}
