package fulfillment

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

// Hop es un tramo de la ruta física: origen, destino, empresas dueñas y el tipo
// de movimiento que produce al realizarse.
type Hop struct {
	From          entity.LocationRef
	FromCompanyID string
	To            entity.LocationRef
	ToCompanyID   string
	MovementType  string
}

// TransferRouter resuelve la semántica origen/destino para los tres tipos de
// ubicación y para traslados entre empresas, y emite la forma de movimiento
// correcta por cada tramo realizado.
//
// Reglas de ruteo:
//   - misma empresa: un solo tramo, directo a la obra/vehículo (WORK_ORDER) o a
//     otra bodega (TRANSFER);
//   - empresas distintas: dos tramos vía una bodega de tránsito de la empresa
//     destino. Una cadena con dueños que no encajan se rechaza con
//     CrossCompanyRoutingError antes de tocar stock.
type TransferRouter struct {
	ledger   *StockLedger
	recorder *MovementRecorder
}

// NewTransferRouter construye el router.
func NewTransferRouter(ledger *StockLedger, recorder *MovementRecorder) *TransferRouter {
	return &TransferRouter{ledger: ledger, recorder: recorder}
}

// PlanRoute arma la cadena de tramos desde la fuente hasta el destino. transit
// solo aplica (y es obligatoria) cuando fuente y destino pertenecen a empresas
// distintas. No muta nada: el plan se valida completo antes de realizar tramos.
func (tr *TransferRouter) PlanRoute(source, transit, dest *entity.Location) ([]Hop, error) {
	if source == nil || dest == nil {
		return nil, domain.ErrInvalidInput
	}
	if source.ID == dest.ID {
		return nil, domain.ErrInvalidInput
	}

	if source.CompanyID == dest.CompanyID {
		if transit != nil {
			// Un salto intermedio dentro de la misma empresa no tiene sentido.
			return nil, domain.ErrInvalidInput
		}
		return []Hop{{
			From:          source.Ref(),
			FromCompanyID: source.CompanyID,
			To:            dest.Ref(),
			ToCompanyID:   dest.CompanyID,
			MovementType:  finalMovementType(dest),
		}}, nil
	}

	// Ruta entre empresas: obligatorio pasar por una bodega de la empresa destino.
	if transit == nil || transit.Type != entity.LocationTypeWarehouse || transit.CompanyID != dest.CompanyID {
		return nil, &domain.CrossCompanyRoutingError{
			FromCompanyID: source.CompanyID,
			ToCompanyID:   dest.CompanyID,
		}
	}
	chain := []Hop{
		{
			From:          source.Ref(),
			FromCompanyID: source.CompanyID,
			To:            transit.Ref(),
			ToCompanyID:   transit.CompanyID,
			MovementType:  entity.MovementTypeTRANSFER,
		},
		{
			From:          transit.Ref(),
			FromCompanyID: transit.CompanyID,
			To:            dest.Ref(),
			ToCompanyID:   dest.CompanyID,
			MovementType:  finalMovementType(dest),
		},
	}
	if err := validateChain(chain, dest.CompanyID); err != nil {
		return nil, err
	}
	return chain, nil
}

// validateChain exige que cada tramo empalme con el siguiente (empresa destino del
// tramo n = empresa origen del tramo n+1) y que la cadena termine en la empresa
// dueña del destino final.
func validateChain(chain []Hop, destCompanyID string) error {
	for i := 0; i < len(chain)-1; i++ {
		if chain[i].ToCompanyID != chain[i+1].FromCompanyID {
			return &domain.CrossCompanyRoutingError{
				FromCompanyID: chain[i+1].FromCompanyID,
				ToCompanyID:   chain[i].ToCompanyID,
			}
		}
	}
	if last := chain[len(chain)-1]; last.ToCompanyID != destCompanyID {
		return &domain.CrossCompanyRoutingError{
			FromCompanyID: last.ToCompanyID,
			ToCompanyID:   destCompanyID,
		}
	}
	return nil
}

func finalMovementType(dest *entity.Location) string {
	if dest.Type == entity.LocationTypeSite || dest.Type == entity.LocationTypeVehicle {
		return entity.MovementTypeWorkOrder
	}
	return entity.MovementTypeTRANSFER
}

// RealizeHop ejecuta un tramo sobre la transacción del caller: traslada la
// cantidad reservada, re-reserva en el destino si el recorrido continúa y graba
// exactamente un movimiento. reserveAtDest aplica en recepciones intermedias,
// donde la mercancía sigue retenida por la solicitud.
func (tr *TransferRouter) RealizeHop(
	stockRepo repository.StockRowRepository,
	movRepo repository.MovementRepository,
	hop Hop,
	req *entity.InventoryRequest,
	qty decimal.Decimal,
	unitCost decimal.Decimal,
	reserveAtDest bool,
	userID string,
) error {
	if err := tr.ledger.Transfer(stockRepo, req.ItemID, hop.From, hop.To, hop.ToCompanyID, qty, true); err != nil {
		return err
	}
	if reserveAtDest {
		if err := tr.ledger.Reserve(stockRepo, req.ItemID, hop.To, qty); err != nil {
			return err
		}
	}
	return tr.recorder.Record(movRepo, &entity.MovementRecord{
		ItemID:           req.ItemID,
		Type:             hop.MovementType,
		FromLocationID:   hop.From.ID,
		FromLocationType: hop.From.Type,
		FromCompanyID:    hop.FromCompanyID,
		ToLocationID:     hop.To.ID,
		ToLocationType:   hop.To.Type,
		ToCompanyID:      hop.ToCompanyID,
		Quantity:         qty,
		UnitCost:         unitCost,
		RequestID:        req.ID,
		WorkOrderID:      req.WorkOrderID,
		CreatedBy:        userID,
	})
}

// ReturnToWarehouse devuelve stock no reservado desde una obra o vehículo a una
// bodega de la misma empresa, con movimiento RETURN.
func (tr *TransferRouter) ReturnToWarehouse(
	stockRepo repository.StockRowRepository,
	movRepo repository.MovementRepository,
	itemID string,
	from, to *entity.Location,
	qty decimal.Decimal,
	unitCost decimal.Decimal,
	reason, userID string,
) error {
	if from == nil || to == nil || to.Type != entity.LocationTypeWarehouse {
		return domain.ErrInvalidInput
	}
	if from.CompanyID != to.CompanyID {
		return &domain.CrossCompanyRoutingError{FromCompanyID: from.CompanyID, ToCompanyID: to.CompanyID}
	}
	if err := tr.ledger.Transfer(stockRepo, itemID, from.Ref(), to.Ref(), to.CompanyID, qty, false); err != nil {
		return err
	}
	return tr.recorder.Record(movRepo, &entity.MovementRecord{
		ItemID:           itemID,
		Type:             entity.MovementTypeReturn,
		FromLocationID:   from.ID,
		FromLocationType: from.Type,
		FromCompanyID:    from.CompanyID,
		ToLocationID:     to.ID,
		ToLocationType:   to.Type,
		ToCompanyID:      to.CompanyID,
		Quantity:         qty,
		UnitCost:         unitCost,
		Reason:           reason,
		CreatedBy:        userID,
	})
}

// RegisterDamage da de baja stock dañado en la ubicación: descuenta el físico sin
// incrementar ningún destino y graba un movimiento DAMAGE de un solo lado.
func (tr *TransferRouter) RegisterDamage(
	stockRepo repository.StockRowRepository,
	movRepo repository.MovementRepository,
	itemID string,
	at *entity.Location,
	qty decimal.Decimal,
	unitCost decimal.Decimal,
	reason, userID string,
) error {
	if at == nil {
		return domain.ErrInvalidInput
	}
	if err := tr.ledger.Withdraw(stockRepo, itemID, at.Ref(), qty); err != nil {
		return err
	}
	return tr.recorder.Record(movRepo, &entity.MovementRecord{
		ItemID:           itemID,
		Type:             entity.MovementTypeDamage,
		FromLocationID:   at.ID,
		FromLocationType: at.Type,
		FromCompanyID:    at.CompanyID,
		Quantity:         qty,
		UnitCost:         unitCost,
		Reason:           reason,
		CreatedBy:        userID,
	})
}
