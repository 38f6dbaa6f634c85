package fulfillment

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

// ReservationManager compone las primitivas del libro de stock con las escrituras
// de la solicitud dentro de la transacción del caller, de modo que "aprobada y
// reservada" y "aprobada sin reservar" no puedan divergir tras un crash a mitad
// de operación: o pasan ambas o ninguna.
type ReservationManager struct {
	ledger *StockLedger
}

// NewReservationManager construye el coordinador de reservas.
func NewReservationManager(ledger *StockLedger) *ReservationManager {
	return &ReservationManager{ledger: ledger}
}

// ReserveForApproval reserva la cantidad aprobada en la fuente elegida y deja la
// solicitud en APPROVED con sus campos de revisión. Repos atados a la misma tx.
// Si lo aprobado es menor a lo solicitado, el remanente simplemente no se reserva.
func (m *ReservationManager) ReserveForApproval(
	stockRepo repository.StockRowRepository,
	requestRepo repository.RequestRepository,
	req *entity.InventoryRequest,
	source *entity.Location,
	transitLocationID string,
	qtyApproved decimal.Decimal,
	approverID, reviewNotes string,
) error {
	if err := m.ledger.Reserve(stockRepo, req.ItemID, source.Ref(), qtyApproved); err != nil {
		return err
	}
	now := time.Now()
	req.SourceLocationID = source.ID
	req.SourceLocationType = source.Type
	req.SourceCompanyID = source.CompanyID
	req.TransitLocationID = transitLocationID
	req.QuantityApproved = &qtyApproved
	req.ReviewedBy = approverID
	req.ReviewNotes = reviewNotes
	req.ReviewedAt = &now
	req.Status = entity.RequestStatusApproved
	req.UpdatedAt = now
	return requestRepo.Update(req)
}

// ReleaseForCancellation devuelve al disponible lo aún reservado de la solicitud
// (en la ubicación que retiene la mercancía) y la deja en CANCELLED. No genera
// movimiento: nada se movió físicamente.
func (m *ReservationManager) ReleaseForCancellation(
	stockRepo repository.StockRowRepository,
	requestRepo repository.RequestRepository,
	req *entity.InventoryRequest,
) error {
	remaining := req.RemainingToDeliver()
	if remaining.GreaterThan(decimal.Zero) {
		if err := m.ledger.Release(stockRepo, req.ItemID, req.HoldingLocation(), remaining); err != nil {
			return err
		}
	}
	req.Status = entity.RequestStatusCancelled
	req.UpdatedAt = time.Now()
	return requestRepo.Update(req)
}
