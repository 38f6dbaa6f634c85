package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Item representa un repuesto o material del catálogo (multi-empresa).
// Los umbrales de reorden y el costo son atributos informativos: la política de
// compras se decide aguas abajo, no en el motor de solicitudes.
type Item struct {
	ID              string
	CompanyID       string
	Code            string // código único por empresa
	Name            string
	Description     string
	UnitMeasure     string
	ReorderPoint    decimal.Decimal
	ReorderQuantity decimal.Decimal
	UnitCost        decimal.Decimal
	Active          bool // false = borrado lógico
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
