package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento del libro mayor de stock.
const (
	MovementTypeIN              = "IN"               // entrada pura (sin origen)
	MovementTypeOUT             = "OUT"              // salida pura (sin destino)
	MovementTypeTRANSFER        = "TRANSFER"         // traslado entre bodegas
	MovementTypeADJUSTMENT      = "ADJUSTMENT"       // ajuste manual
	MovementTypeWorkOrder       = "WORK_ORDER"       // consumo contra orden de trabajo
	MovementTypeReturn          = "RETURN"           // devolución a bodega
	MovementTypeDamage          = "DAMAGE"           // baja por daño (sin destino)
	MovementTypeCountAdjustment = "COUNT_ADJUSTMENT" // corrección por conteo físico
)

// ValidMovementType indica si el tipo pertenece al conjunto cerrado.
func ValidMovementType(t string) bool {
	switch t {
	case MovementTypeIN, MovementTypeOUT, MovementTypeTRANSFER, MovementTypeADJUSTMENT,
		MovementTypeWorkOrder, MovementTypeReturn, MovementTypeDamage, MovementTypeCountAdjustment:
		return true
	}
	return false
}

// MovementRecord es una línea inmutable del libro mayor: un cambio realizado de stock
// con hasta dos lados (origen y destino). Quantity siempre es positiva; el signo por
// ubicación lo da el lado: -Quantity en el origen, +Quantity en el destino. Un lado
// vacío significa entrada o salida pura (IN/OUT/DAMAGE).
// Se crea una vez y nunca se modifica ni se borra: es la pista de auditoría y la
// fuente de verdad para conciliar el stock actual.
type MovementRecord struct {
	ID               string
	ItemID           string
	Type             string
	FromLocationID   string
	FromLocationType string
	FromCompanyID    string
	ToLocationID     string
	ToLocationType   string
	ToCompanyID      string
	Quantity         decimal.Decimal
	UnitCost         decimal.Decimal
	TotalCost        decimal.Decimal
	RequestID        string // solicitud que originó el movimiento (opcional)
	WorkOrderID      string // orden de trabajo asociada (opcional)
	Reason           string // motivo en ajustes, devoluciones y bajas
	Date             time.Time
	CreatedAt        time.Time
	CreatedBy        string
}

// HasFrom indica si el movimiento tiene lado origen.
func (m *MovementRecord) HasFrom() bool { return m.FromLocationID != "" }

// HasTo indica si el movimiento tiene lado destino.
func (m *MovementRecord) HasTo() bool { return m.ToLocationID != "" }

// SignedQuantityAt devuelve el aporte del movimiento al stock de la ubicación dada:
// +Quantity si es destino, -Quantity si es origen, cero si no la toca.
func (m *MovementRecord) SignedQuantityAt(loc LocationRef) decimal.Decimal {
	var sum decimal.Decimal
	if m.FromLocationID == loc.ID && m.FromLocationType == loc.Type {
		sum = sum.Sub(m.Quantity)
	}
	if m.ToLocationID == loc.ID && m.ToLocationType == loc.Type {
		sum = sum.Add(m.Quantity)
	}
	return sum
}
