package fulfillment

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

// MovementRecorder escribe el libro mayor de movimientos: una línea inmutable por
// cada cambio realizado de stock. Nunca se consulta para "estado actual" (eso es
// la fila de stock); existe para auditoría y conciliación.
type MovementRecorder struct{}

// NewMovementRecorder construye el registrador.
func NewMovementRecorder() *MovementRecorder {
	return &MovementRecorder{}
}

// Record valida la forma del movimiento, completa ID y timestamps y lo inserta.
// El registro es de solo inserción: jamás se modifica ni se borra.
func (rec *MovementRecorder) Record(movRepo repository.MovementRepository, m *entity.MovementRecord) error {
	if m.ItemID == "" || !entity.ValidMovementType(m.Type) {
		return domain.ErrInvalidInput
	}
	if !m.Quantity.GreaterThan(decimal.Zero) {
		return domain.ErrInvalidInput
	}
	if !m.HasFrom() && !m.HasTo() {
		return domain.ErrInvalidInput
	}
	// DAMAGE es baja pura: el stock destruido no entra a ninguna ubicación.
	if m.Type == entity.MovementTypeDamage && m.HasTo() {
		return domain.ErrInvalidInput
	}
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	now := time.Now()
	if m.Date.IsZero() {
		m.Date = now
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	if m.TotalCost.IsZero() && !m.UnitCost.IsZero() {
		m.TotalCost = m.Quantity.Mul(m.UnitCost)
	}
	return movRepo.Create(m)
}

// LedgerSum devuelve la suma con signo de todos los movimientos del ítem que tocan
// la ubicación. Para un libro sano coincide exactamente con la cantidad física de
// la fila de stock (ver Reconciler).
func (rec *MovementRecorder) LedgerSum(movRepo repository.MovementRepository, itemID string, loc entity.LocationRef) (decimal.Decimal, error) {
	return movRepo.SumByItemAndLocation(itemID, loc)
}
