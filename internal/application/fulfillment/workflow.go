package fulfillment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	domfulfillment "github.com/jhoicas/Almacen-api/internal/domain/fulfillment"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
	"github.com/jhoicas/Almacen-api/pkg/logger"
)

// Nombres de checkpoint reportados en StateAlreadyReachedError.
const (
	CheckpointReviewed           = "reviewed"
	CheckpointWarehouseDelivered = "warehouse_delivered"
	CheckpointTransitReceived    = "destination_warehouse_received"
	CheckpointReceived           = "received"
)

// RequestWorkflow es el dueño del ciclo de vida de la solicitud: valida entrada,
// consulta la capacidad del rol, verifica la transición contra la tabla cerrada y
// ejecuta la mutación dentro de una transacción con la fila de la solicitud
// bloqueada, para que transiciones concurrentes sobre la misma solicitud se
// serialicen. Los errores del libro de stock y del router abortan la transacción
// completa y se propagan sin traducir.
type RequestWorkflow struct {
	txRunner     TxRunner
	reservations *ReservationManager
	router       *TransferRouter
	authz        Authorizer
	workOrders   WorkOrderDirectory
	itemRepo     repository.ItemRepository
	locationRepo repository.LocationRepository
	requestRepo  repository.RequestRepository
	log          *logger.Logger
}

// NewRequestWorkflow construye el workflow.
func NewRequestWorkflow(
	txRunner TxRunner,
	reservations *ReservationManager,
	router *TransferRouter,
	authz Authorizer,
	workOrders WorkOrderDirectory,
	itemRepo repository.ItemRepository,
	locationRepo repository.LocationRepository,
	requestRepo repository.RequestRepository,
	log *logger.Logger,
) *RequestWorkflow {
	return &RequestWorkflow{
		txRunner:     txRunner,
		reservations: reservations,
		router:       router,
		authz:        authz,
		workOrders:   workOrders,
		itemRepo:     itemRepo,
		locationRepo: locationRepo,
		requestRepo:  requestRepo,
		log:          log,
	}
}

// CreateRequestInput entrada para crear una solicitud (rol solicitante).
type CreateRequestInput struct {
	CompanyID             string
	RequesterID           string
	Role                  string
	WorkOrderID           string
	ItemID                string
	DestinationLocationID string
	Quantity              decimal.Decimal
	Urgency               string
	Notes                 string
}

// CreateRequest valida ítem, destino y orden de trabajo y persiste la solicitud
// en PENDING. Toda la validación ocurre antes de escribir.
func (wf *RequestWorkflow) CreateRequest(ctx context.Context, in CreateRequestInput) (*entity.InventoryRequest, error) {
	if !wf.authz.CanPerform(in.Role, domfulfillment.ActionCreateRequest) {
		return nil, domain.ErrForbidden
	}
	if !in.Quantity.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	if in.Urgency == "" {
		in.Urgency = entity.UrgencyNormal
	}
	if !entity.ValidUrgency(in.Urgency) {
		return nil, domain.ErrInvalidInput
	}

	item, err := wf.itemRepo.GetByID(in.ItemID)
	if err != nil {
		return nil, err
	}
	if item == nil || !item.Active || item.CompanyID != in.CompanyID {
		return nil, domain.ErrNotFound
	}
	dest, err := wf.locationRepo.GetByID(in.DestinationLocationID)
	if err != nil {
		return nil, err
	}
	if dest == nil || !dest.Active {
		return nil, domain.ErrNotFound
	}
	ok, err := wf.workOrders.Exists(ctx, in.WorkOrderID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrNotFound
	}

	now := time.Now()
	req := &entity.InventoryRequest{
		ID:                      uuid.New().String(),
		CompanyID:               in.CompanyID,
		WorkOrderID:             in.WorkOrderID,
		ItemID:                  in.ItemID,
		RequesterID:             in.RequesterID,
		DestinationLocationID:   dest.ID,
		DestinationLocationType: dest.Type,
		DestinationCompanyID:    dest.CompanyID,
		QuantityRequested:       in.Quantity,
		QuantityDelivered:       decimal.Zero,
		Urgency:                 in.Urgency,
		Status:                  entity.RequestStatusPending,
		Notes:                   in.Notes,
		CreatedAt:               now,
		UpdatedAt:               now,
	}
	if err := wf.requestRepo.Create(req); err != nil {
		return nil, err
	}
	return req, nil
}

// ApproveInput entrada para aprobar (rol aprobador).
type ApproveInput struct {
	RequestID         string
	CompanyID         string
	ApproverID        string
	Role              string
	SourceLocationID  string
	TransitLocationID string // obligatoria solo en rutas entre empresas
	QuantityApproved  decimal.Decimal
	ReviewNotes       string
}

// ApproveRequest planifica la ruta (rechazando cadenas entre empresas mal armadas
// antes de tocar stock), reserva la cantidad aprobada en la fuente y deja la
// solicitud en APPROVED. Reserva y aprobación viajan en la misma transacción.
func (wf *RequestWorkflow) ApproveRequest(ctx context.Context, in ApproveInput) (*entity.InventoryRequest, error) {
	if !wf.authz.CanPerform(in.Role, domfulfillment.ActionApproveRequest) {
		return nil, domain.ErrForbidden
	}
	if !in.QuantityApproved.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}

	source, err := wf.locationRepo.GetByID(in.SourceLocationID)
	if err != nil {
		return nil, err
	}
	if source == nil || !source.Active {
		return nil, domain.ErrNotFound
	}
	var transit *entity.Location
	if in.TransitLocationID != "" {
		transit, err = wf.locationRepo.GetByID(in.TransitLocationID)
		if err != nil {
			return nil, err
		}
		if transit == nil || !transit.Active {
			return nil, domain.ErrNotFound
		}
	}

	current, err := wf.requestRepo.GetByID(in.RequestID)
	if err != nil {
		return nil, err
	}
	// Las solicitudes de otra empresa no existen para el caller.
	if current == nil || current.CompanyID != in.CompanyID {
		return nil, domain.ErrNotFound
	}
	dest := &entity.Location{
		ID:        current.DestinationLocationID,
		CompanyID: current.DestinationCompanyID,
		Type:      current.DestinationLocationType,
	}
	// La cadena completa se valida antes de abrir la transacción.
	if _, err := wf.router.PlanRoute(source, transit, dest); err != nil {
		return nil, err
	}

	var out *entity.InventoryRequest
	err = wf.txRunner.Run(ctx, func(
		stockRepo repository.StockRowRepository,
		movRepo repository.MovementRepository,
		requestRepo repository.RequestRepository,
	) error {
		req, err := wf.lockPending(requestRepo, in.CompanyID, in.RequestID, domfulfillment.ActionApproveRequest)
		if err != nil {
			return err
		}
		if in.QuantityApproved.GreaterThan(req.QuantityRequested) {
			return domain.ErrInvalidInput
		}
		transitID := ""
		if transit != nil {
			transitID = transit.ID
		}
		if err := wf.reservations.ReserveForApproval(
			stockRepo, requestRepo, req, source, transitID,
			in.QuantityApproved, in.ApproverID, in.ReviewNotes,
		); err != nil {
			return err
		}
		out = req
		return nil
	})
	if err != nil {
		return nil, wf.logged(err)
	}
	return out, nil
}

// ReviewInput entrada para rechazar (rol aprobador).
type ReviewInput struct {
	RequestID   string
	CompanyID   string
	ReviewerID  string
	Role        string
	ReviewNotes string
}

// RejectRequest deja la solicitud en REJECTED. Nada se reservó, nada se libera:
// las filas de stock quedan intactas.
func (wf *RequestWorkflow) RejectRequest(ctx context.Context, in ReviewInput) (*entity.InventoryRequest, error) {
	if !wf.authz.CanPerform(in.Role, domfulfillment.ActionRejectRequest) {
		return nil, domain.ErrForbidden
	}
	var out *entity.InventoryRequest
	err := wf.txRunner.Run(ctx, func(
		_ repository.StockRowRepository,
		_ repository.MovementRepository,
		requestRepo repository.RequestRepository,
	) error {
		req, err := wf.lockPending(requestRepo, in.CompanyID, in.RequestID, domfulfillment.ActionRejectRequest)
		if err != nil {
			return err
		}
		now := time.Now()
		req.Status = entity.RequestStatusRejected
		req.ReviewedBy = in.ReviewerID
		req.ReviewNotes = in.ReviewNotes
		req.ReviewedAt = &now
		req.UpdatedAt = now
		if err := requestRepo.Update(req); err != nil {
			return err
		}
		out = req
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DispatchInput entrada para despachar desde bodega (rol bodeguero).
type DispatchInput struct {
	RequestID string
	CompanyID string
	HandlerID string
	Role      string
	Quantity  decimal.Decimal
	Notes     string
}

// DispatchFromWarehouse registra la salida de bodega: sella warehouseDeliveredAt y
// pasa a IN_TRANSIT. No mueve stock; el físico se realiza en las recepciones, así
// un crash en el tramo de transporte nunca deja mercancía "en ninguna parte".
// Solo aplica cuando la fuente aprobada es una bodega.
func (wf *RequestWorkflow) DispatchFromWarehouse(ctx context.Context, in DispatchInput) (*entity.InventoryRequest, error) {
	if !wf.authz.CanPerform(in.Role, domfulfillment.ActionDispatch) {
		return nil, domain.ErrForbidden
	}
	var out *entity.InventoryRequest
	err := wf.txRunner.Run(ctx, func(
		_ repository.StockRowRepository,
		_ repository.MovementRepository,
		requestRepo repository.RequestRepository,
	) error {
		req, err := wf.lockOwned(requestRepo, in.CompanyID, in.RequestID)
		if err != nil {
			return err
		}
		if req.WarehouseDeliveredAt != nil {
			return &domain.StateAlreadyReachedError{RequestID: req.ID, Checkpoint: CheckpointWarehouseDelivered}
		}
		next, ok := domfulfillment.Next(req.Status, domfulfillment.ActionDispatch)
		if !ok {
			return &domain.InvalidStateTransitionError{RequestID: req.ID, From: req.Status, Action: domfulfillment.ActionDispatch}
		}
		if req.SourceLocationType != entity.LocationTypeWarehouse {
			return domain.ErrInvalidInput
		}
		if in.Quantity.GreaterThan(decimal.Zero) && in.Quantity.GreaterThan(req.RemainingToDeliver()) {
			return domain.ErrInvalidInput
		}
		now := time.Now()
		req.WarehouseDeliveredAt = &now
		req.Status = next
		req.UpdatedAt = now
		if in.Notes != "" {
			req.Notes = appendNote(req.Notes, in.Notes)
		}
		if err := requestRepo.Update(req); err != nil {
			return err
		}
		out = req
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ReceiveTransitInput entrada para la recepción intermedia (rutas entre empresas).
type ReceiveTransitInput struct {
	RequestID  string
	CompanyID  string
	ReceiverID string
	Role       string
	Quantity   decimal.Decimal
}

// ReceiveAtDestinationWarehouse realiza el primer tramo de una ruta de dos saltos:
// traslada lo reservado de la bodega origen a la bodega de tránsito de la empresa
// destino, re-reserva allí el remanente y sella destinationWarehouseReceivedAt.
// Un solo movimiento TRANSFER por recepción; repetirla es StateAlreadyReachedError.
func (wf *RequestWorkflow) ReceiveAtDestinationWarehouse(ctx context.Context, in ReceiveTransitInput) (*entity.InventoryRequest, error) {
	if !wf.authz.CanPerform(in.Role, domfulfillment.ActionReceiveTransit) {
		return nil, domain.ErrForbidden
	}
	var out *entity.InventoryRequest
	err := wf.txRunner.Run(ctx, func(
		stockRepo repository.StockRowRepository,
		movRepo repository.MovementRepository,
		requestRepo repository.RequestRepository,
	) error {
		req, err := requestRepo.GetByIDForUpdate(in.RequestID)
		if err != nil {
			return err
		}
		// La recepción intermedia la ejecuta la bodega de la empresa destino;
		// la empresa dueña de la solicitud también puede registrarla.
		if req == nil || (req.CompanyID != in.CompanyID && req.DestinationCompanyID != in.CompanyID) {
			return domain.ErrNotFound
		}
		if req.DestinationWarehouseReceivedAt != nil {
			return &domain.StateAlreadyReachedError{RequestID: req.ID, Checkpoint: CheckpointTransitReceived}
		}
		if !domfulfillment.CanTransition(req.Status, domfulfillment.ActionReceiveTransit) {
			return &domain.InvalidStateTransitionError{RequestID: req.ID, From: req.Status, Action: domfulfillment.ActionReceiveTransit}
		}
		// Solo las rutas entre empresas tienen parada intermedia.
		if req.TransitLocationID == "" {
			return domain.ErrInvalidInput
		}
		remaining := req.RemainingToDeliver()
		if in.Quantity.GreaterThan(decimal.Zero) && !in.Quantity.Equal(remaining) {
			return domain.ErrInvalidInput
		}
		item, err := wf.itemRepo.GetByID(req.ItemID)
		if err != nil {
			return err
		}
		unitCost := decimal.Zero
		if item != nil {
			unitCost = item.UnitCost
		}
		hop := Hop{
			From:          req.SourceLocation(),
			FromCompanyID: req.SourceCompanyID,
			To:            entity.LocationRef{ID: req.TransitLocationID, Type: entity.LocationTypeWarehouse},
			ToCompanyID:   req.DestinationCompanyID,
			MovementType:  entity.MovementTypeTRANSFER,
		}
		if err := wf.router.RealizeHop(stockRepo, movRepo, hop, req, remaining, unitCost, true, in.ReceiverID); err != nil {
			return err
		}
		now := time.Now()
		req.DestinationWarehouseReceivedAt = &now
		req.UpdatedAt = now
		if err := requestRepo.Update(req); err != nil {
			return err
		}
		out = req
		return nil
	})
	if err != nil {
		return nil, wf.logged(err)
	}
	return out, nil
}

// ConfirmReceiptInput entrada para confirmar la recepción final.
type ConfirmReceiptInput struct {
	RequestID   string
	CompanyID   string
	RecipientID string
	Role        string
	Quantity    decimal.Decimal // entregado en esta confirmación (puede ser parcial)
	Notes       string
}

// ConfirmReceipt realiza el tramo final: traslada lo confirmado desde la ubicación
// que retiene la mercancía hasta el destino, graba el movimiento WORK_ORDER,
// acumula quantityDelivered y sella receivedAt. Con entrega parcial la solicitud
// sigue en IN_TRANSIT esperando otra confirmación; al completar lo aprobado pasa a
// DELIVERED. Confirmar una solicitud ya entregada es StateAlreadyReachedError: no
// se vuelve a contar ni se emite un segundo movimiento.
func (wf *RequestWorkflow) ConfirmReceipt(ctx context.Context, in ConfirmReceiptInput) (*entity.InventoryRequest, error) {
	if !wf.authz.CanPerform(in.Role, domfulfillment.ActionConfirmReceipt) {
		return nil, domain.ErrForbidden
	}
	if !in.Quantity.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	var out *entity.InventoryRequest
	err := wf.txRunner.Run(ctx, func(
		stockRepo repository.StockRowRepository,
		movRepo repository.MovementRepository,
		requestRepo repository.RequestRepository,
	) error {
		req, err := wf.lockOwned(requestRepo, in.CompanyID, in.RequestID)
		if err != nil {
			return err
		}
		if req.Status == entity.RequestStatusDelivered {
			return &domain.StateAlreadyReachedError{RequestID: req.ID, Checkpoint: CheckpointReceived}
		}
		if !domfulfillment.CanTransition(req.Status, domfulfillment.ActionConfirmReceipt) {
			return &domain.InvalidStateTransitionError{RequestID: req.ID, From: req.Status, Action: domfulfillment.ActionConfirmReceipt}
		}
		// En rutas de dos saltos la recepción intermedia va primero.
		if req.TransitLocationID != "" && req.DestinationWarehouseReceivedAt == nil {
			return domain.ErrInvalidInput
		}
		remaining := req.RemainingToDeliver()
		if in.Quantity.GreaterThan(remaining) {
			return domain.ErrInvalidInput
		}
		item, err := wf.itemRepo.GetByID(req.ItemID)
		if err != nil {
			return err
		}
		unitCost := decimal.Zero
		if item != nil {
			unitCost = item.UnitCost
		}
		hop := Hop{
			From:          req.HoldingLocation(),
			FromCompanyID: req.HoldingCompanyID(),
			To:            req.DestinationLocation(),
			ToCompanyID:   req.DestinationCompanyID,
			MovementType:  entity.MovementTypeWorkOrder,
		}
		if err := wf.router.RealizeHop(stockRepo, movRepo, hop, req, in.Quantity, unitCost, false, in.RecipientID); err != nil {
			return err
		}
		now := time.Now()
		if req.ReceivedAt == nil {
			req.ReceivedAt = &now
		}
		req.QuantityDelivered = req.QuantityDelivered.Add(in.Quantity)
		if req.RemainingToDeliver().IsZero() {
			req.Status = entity.RequestStatusDelivered
		}
		if in.Notes != "" {
			req.Notes = appendNote(req.Notes, in.Notes)
		}
		req.UpdatedAt = now
		if err := requestRepo.Update(req); err != nil {
			return err
		}
		out = req
		return nil
	})
	if err != nil {
		return nil, wf.logged(err)
	}
	return out, nil
}

// CancelInput entrada para cancelar (solicitante o aprobador).
type CancelInput struct {
	RequestID string
	CompanyID string
	CallerID  string
	Role      string
}

// CancelRequest cancela una solicitud PENDING o APPROVED. Si había reserva se
// libera completa; no se crea movimiento porque nada se movió físicamente. La
// cancelación es un estado terminal, nunca un borrado de fila.
func (wf *RequestWorkflow) CancelRequest(ctx context.Context, in CancelInput) (*entity.InventoryRequest, error) {
	if !wf.authz.CanPerform(in.Role, domfulfillment.ActionCancelRequest) {
		return nil, domain.ErrForbidden
	}
	var out *entity.InventoryRequest
	err := wf.txRunner.Run(ctx, func(
		stockRepo repository.StockRowRepository,
		_ repository.MovementRepository,
		requestRepo repository.RequestRepository,
	) error {
		req, err := wf.lockOwned(requestRepo, in.CompanyID, in.RequestID)
		if err != nil {
			return err
		}
		if !domfulfillment.CanTransition(req.Status, domfulfillment.ActionCancelRequest) {
			return &domain.InvalidStateTransitionError{RequestID: req.ID, From: req.Status, Action: domfulfillment.ActionCancelRequest}
		}
		if req.Status == entity.RequestStatusApproved {
			if err := wf.reservations.ReleaseForCancellation(stockRepo, requestRepo, req); err != nil {
				return err
			}
		} else {
			req.Status = entity.RequestStatusCancelled
			req.UpdatedAt = time.Now()
			if err := requestRepo.Update(req); err != nil {
				return err
			}
		}
		out = req
		return nil
	})
	if err != nil {
		return nil, wf.logged(err)
	}
	return out, nil
}

// GetRequest devuelve una solicitud acotada a la empresa del caller.
func (wf *RequestWorkflow) GetRequest(companyID, requestID string) (*entity.InventoryRequest, error) {
	req, err := wf.requestRepo.GetByID(requestID)
	if err != nil {
		return nil, err
	}
	if req == nil || req.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	return req, nil
}

// ListRequests lista solicitudes de la empresa con filtro opcional de estado.
func (wf *RequestWorkflow) ListRequests(companyID, status string, limit, offset int) ([]*entity.InventoryRequest, error) {
	return wf.requestRepo.ListByCompany(companyID, status, limit, offset)
}

// lockOwned bloquea la solicitud y la acota a la empresa del caller: una
// solicitud ajena o inexistente es ErrNotFound, igual que en GetRequest.
func (wf *RequestWorkflow) lockOwned(requestRepo repository.RequestRepository, companyID, requestID string) (*entity.InventoryRequest, error) {
	req, err := requestRepo.GetByIDForUpdate(requestID)
	if err != nil {
		return nil, err
	}
	if req == nil || req.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	return req, nil
}

// lockPending bloquea la solicitud y verifica que la acción sea legal desde PENDING.
func (wf *RequestWorkflow) lockPending(requestRepo repository.RequestRepository, companyID, requestID, action string) (*entity.InventoryRequest, error) {
	req, err := wf.lockOwned(requestRepo, companyID, requestID)
	if err != nil {
		return nil, err
	}
	if !domfulfillment.CanTransition(req.Status, action) {
		return nil, &domain.InvalidStateTransitionError{RequestID: req.ID, From: req.Status, Action: action}
	}
	return req, nil
}

// logged deja rastro de violaciones de invariantes para el operador; los demás
// errores pasan tal cual.
func (wf *RequestWorkflow) logged(err error) error {
	var inv *domain.InvariantViolationError
	if errors.As(err, &inv) && wf.log != nil {
		wf.log.Error().Str("op", inv.Op).Str("detalle", inv.Detail).Msg("invariante de stock violado")
	}
	return err
}

func appendNote(existing, note string) string {
	if existing == "" {
		return note
	}
	return existing + "\n" + note
}
