package fulfillment

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	domfulfillment "github.com/jhoicas/Almacen-api/internal/domain/fulfillment"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

// StockOperations agrupa las operaciones de stock fuera del ciclo de solicitudes:
// corrección por conteo físico, devoluciones a bodega y bajas por daño. Cada una
// corre en su propia transacción y siempre empareja la mutación con exactamente
// un movimiento del libro mayor.
type StockOperations struct {
	txRunner     TxRunner
	ledger       *StockLedger
	recorder     *MovementRecorder
	router       *TransferRouter
	authz        Authorizer
	itemRepo     repository.ItemRepository
	locationRepo repository.LocationRepository
	stockRepo    repository.StockRowRepository
	movRepo      repository.MovementRepository
}

// NewStockOperations construye el caso de uso.
func NewStockOperations(
	txRunner TxRunner,
	ledger *StockLedger,
	recorder *MovementRecorder,
	router *TransferRouter,
	authz Authorizer,
	itemRepo repository.ItemRepository,
	locationRepo repository.LocationRepository,
	stockRepo repository.StockRowRepository,
	movRepo repository.MovementRepository,
) *StockOperations {
	return &StockOperations{
		txRunner:     txRunner,
		ledger:       ledger,
		recorder:     recorder,
		router:       router,
		authz:        authz,
		itemRepo:     itemRepo,
		locationRepo: locationRepo,
		stockRepo:    stockRepo,
		movRepo:      movRepo,
	}
}

// resolve valida ítem + ubicación contra la empresa del caller.
func (s *StockOperations) resolve(companyID, itemID, locationID string) (*entity.Item, *entity.Location, error) {
	item, err := s.itemRepo.GetByID(itemID)
	if err != nil {
		return nil, nil, err
	}
	if item == nil || item.CompanyID != companyID {
		return nil, nil, domain.ErrNotFound
	}
	loc, err := s.locationRepo.GetByID(locationID)
	if err != nil {
		return nil, nil, err
	}
	if loc == nil || !loc.Active {
		return nil, nil, domain.ErrNotFound
	}
	return item, loc, nil
}

// Adjust fija la cantidad física por conteo y graba el movimiento
// COUNT_ADJUSTMENT del delta aplicado (un solo lado: entrada si el conteo subió,
// salida si bajó). Delta cero no genera movimiento.
func (s *StockOperations) Adjust(ctx context.Context, companyID, userID, role, itemID, locationID string, newQuantity decimal.Decimal, reason string) error {
	if !s.authz.CanPerform(role, domfulfillment.ActionAdjustStock) {
		return domain.ErrForbidden
	}
	item, loc, err := s.resolve(companyID, itemID, locationID)
	if err != nil {
		return err
	}
	return s.txRunner.Run(ctx, func(
		stockRepo repository.StockRowRepository,
		movRepo repository.MovementRepository,
		_ repository.RequestRepository,
	) error {
		delta, err := s.ledger.Adjust(stockRepo, itemID, loc.Ref(), loc.CompanyID, newQuantity)
		if err != nil {
			return err
		}
		if delta.IsZero() {
			return nil
		}
		mov := &entity.MovementRecord{
			ItemID:    itemID,
			Type:      entity.MovementTypeCountAdjustment,
			Quantity:  delta.Abs(),
			UnitCost:  item.UnitCost,
			Reason:    reason,
			CreatedBy: userID,
		}
		if delta.GreaterThan(decimal.Zero) {
			mov.ToLocationID = loc.ID
			mov.ToLocationType = loc.Type
			mov.ToCompanyID = loc.CompanyID
		} else {
			mov.FromLocationID = loc.ID
			mov.FromLocationType = loc.Type
			mov.FromCompanyID = loc.CompanyID
		}
		return s.recorder.Record(movRepo, mov)
	})
}

// Return devuelve stock desde una obra o vehículo a una bodega de la misma empresa.
func (s *StockOperations) Return(ctx context.Context, companyID, userID, role, itemID, fromLocationID, toWarehouseID string, qty decimal.Decimal, reason string) error {
	if !s.authz.CanPerform(role, domfulfillment.ActionRegisterReturn) {
		return domain.ErrForbidden
	}
	item, from, err := s.resolve(companyID, itemID, fromLocationID)
	if err != nil {
		return err
	}
	to, err := s.locationRepo.GetByID(toWarehouseID)
	if err != nil {
		return err
	}
	if to == nil || !to.Active {
		return domain.ErrNotFound
	}
	return s.txRunner.Run(ctx, func(
		stockRepo repository.StockRowRepository,
		movRepo repository.MovementRepository,
		_ repository.RequestRepository,
	) error {
		return s.router.ReturnToWarehouse(stockRepo, movRepo, itemID, from, to, qty, item.UnitCost, reason, userID)
	})
}

// Damage da de baja stock dañado en una ubicación.
func (s *StockOperations) Damage(ctx context.Context, companyID, userID, role, itemID, locationID string, qty decimal.Decimal, reason string) error {
	if !s.authz.CanPerform(role, domfulfillment.ActionRegisterDamage) {
		return domain.ErrForbidden
	}
	item, loc, err := s.resolve(companyID, itemID, locationID)
	if err != nil {
		return err
	}
	return s.txRunner.Run(ctx, func(
		stockRepo repository.StockRowRepository,
		movRepo repository.MovementRepository,
		_ repository.RequestRepository,
	) error {
		return s.router.RegisterDamage(stockRepo, movRepo, itemID, loc, qty, item.UnitCost, reason, userID)
	})
}

// GetStockRow devuelve la fila de stock del ítem en la ubicación (en cero si no existe).
func (s *StockOperations) GetStockRow(companyID, itemID, locationID string) (*entity.StockRow, error) {
	_, loc, err := s.resolve(companyID, itemID, locationID)
	if err != nil {
		return nil, err
	}
	return s.stockRepo.Get(itemID, loc.Ref())
}

// ListMovements lista el libro mayor del ítem en la ubicación, más reciente primero.
func (s *StockOperations) ListMovements(companyID, itemID, locationID string, limit, offset int) ([]*entity.MovementRecord, error) {
	_, loc, err := s.resolve(companyID, itemID, locationID)
	if err != nil {
		return nil, err
	}
	return s.movRepo.ListByItemAndLocation(itemID, loc.Ref(), limit, offset)
}
