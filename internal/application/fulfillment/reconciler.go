package fulfillment

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
	"github.com/jhoicas/Almacen-api/pkg/logger"
)

// ReconciliationReport resultado de conciliar el libro mayor contra la fila de stock.
type ReconciliationReport struct {
	ItemID       string
	LocationID   string
	LocationType string
	LedgerSum    decimal.Decimal
	RowQuantity  decimal.Decimal
	Balanced     bool
}

// Reconciler verifica la propiedad de conservación: para cada (ítem, ubicación),
// la suma con signo de todos los movimientos debe igualar la cantidad física de
// la fila de stock. Un descuadre es un invariante violado: se registra para el
// operador y jamás se corrige automáticamente.
type Reconciler struct {
	recorder  *MovementRecorder
	stockRepo repository.StockRowRepository
	movRepo   repository.MovementRepository
	log       *logger.Logger
}

// NewReconciler construye el conciliador sobre repositorios de solo lectura.
func NewReconciler(recorder *MovementRecorder, stockRepo repository.StockRowRepository, movRepo repository.MovementRepository, log *logger.Logger) *Reconciler {
	return &Reconciler{recorder: recorder, stockRepo: stockRepo, movRepo: movRepo, log: log}
}

// Check concilia un (ítem, ubicación). Devuelve el reporte siempre; si el libro
// no cuadra, además devuelve InvariantViolationError.
func (r *Reconciler) Check(itemID string, loc entity.LocationRef) (*ReconciliationReport, error) {
	sum, err := r.recorder.LedgerSum(r.movRepo, itemID, loc)
	if err != nil {
		return nil, err
	}
	row, err := r.stockRepo.Get(itemID, loc)
	if err != nil {
		return nil, err
	}
	report := &ReconciliationReport{
		ItemID:       itemID,
		LocationID:   loc.ID,
		LocationType: loc.Type,
		LedgerSum:    sum,
		RowQuantity:  row.Quantity,
		Balanced:     sum.Equal(row.Quantity),
	}
	if !report.Balanced {
		if r.log != nil {
			r.log.Error().
				Str("item_id", itemID).
				Str("location_id", loc.ID).
				Str("suma_libro", sum.String()).
				Str("cantidad_fila", row.Quantity.String()).
				Msg("libro mayor descuadrado contra stock")
		}
		return report, &domain.InvariantViolationError{
			Op:     "reconcile",
			Detail: "suma del libro " + sum.String() + " != cantidad en fila " + row.Quantity.String() + " (ítem " + itemID + ", ubicación " + loc.ID + ")",
		}
	}
	return report, nil
}
