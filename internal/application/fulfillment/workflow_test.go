package fulfillment_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Almacen-api/internal/application/fulfillment"
	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Entorno de prueba: dos empresas, un ítem, bodegas, obra y vehículo.
// ──────────────────────────────────────────────────────────────────────────────

const (
	companyA = "empresa-a"
	companyB = "empresa-b"

	itemTornillos = "item-tornillos"
	workOrder     = "ot-100"

	tecnicoID = "user-tecnico"
	jefeID    = "user-jefe"
	bodegaID  = "user-bodeguero"
)

type testEnv struct {
	stock    *fakeStockRepo
	mov      *fakeMovementRepo
	requests *fakeRequestRepo
	authz    *fakeAuthz
	workflow *fulfillment.RequestWorkflow
	recon    *fulfillment.Reconciler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	stock := newFakeStockRepo()
	mov := newFakeMovementRepo()
	requests := newFakeRequestRepo()
	tx := newFakeTxRunner(stock, mov, requests)

	items := newFakeItemRepo(entity.Item{
		ID: itemTornillos, CompanyID: companyA, Code: "TOR-01", Name: "Tornillos 3/8",
		UnitMeasure: "UND", UnitCost: qty("2"), Active: true,
	})
	locations := newFakeLocationRepo(
		entity.Location{ID: "bodega-a", CompanyID: companyA, Type: entity.LocationTypeWarehouse, Name: "Bodega A", Active: true},
		entity.Location{ID: "obra-1", CompanyID: companyA, Type: entity.LocationTypeSite, Name: "Obra 1", Active: true},
		entity.Location{ID: "camion-7", CompanyID: companyA, Type: entity.LocationTypeVehicle, Name: "Camión 7", Active: true},
		entity.Location{ID: "bodega-b", CompanyID: companyB, Type: entity.LocationTypeWarehouse, Name: "Bodega B", Active: true},
		entity.Location{ID: "obra-b", CompanyID: companyB, Type: entity.LocationTypeSite, Name: "Obra B", Active: true},
	)

	authz := allowAll()
	ledger := fulfillment.NewStockLedger()
	recorder := fulfillment.NewMovementRecorder()
	router := fulfillment.NewTransferRouter(ledger, recorder)
	log := logger.New(logger.Config{Env: "production", Level: "error"})

	workflow := fulfillment.NewRequestWorkflow(
		tx, fulfillment.NewReservationManager(ledger), router, authz, allWorkOrders(),
		items, locations, requests, log,
	)
	recon := fulfillment.NewReconciler(recorder, stock, mov, log)

	return &testEnv{stock: stock, mov: mov, requests: requests, authz: authz, workflow: workflow, recon: recon}
}

func (e *testEnv) create(t *testing.T, dest string, quantity string) *entity.InventoryRequest {
	t.Helper()
	req, err := e.workflow.CreateRequest(context.Background(), fulfillment.CreateRequestInput{
		CompanyID:             companyA,
		RequesterID:           tecnicoID,
		Role:                  "tecnico",
		WorkOrderID:           workOrder,
		ItemID:                itemTornillos,
		DestinationLocationID: dest,
		Quantity:              qty(quantity),
	})
	require.NoError(t, err)
	require.Equal(t, entity.RequestStatusPending, req.Status)
	return req
}

func (e *testEnv) approve(t *testing.T, requestID, source, transit, quantity string) *entity.InventoryRequest {
	t.Helper()
	req, err := e.workflow.ApproveRequest(context.Background(), fulfillment.ApproveInput{
		RequestID:         requestID,
		CompanyID:         companyA,
		ApproverID:        jefeID,
		Role:              "jefe_mantenimiento",
		SourceLocationID:  source,
		TransitLocationID: transit,
		QuantityApproved:  qty(quantity),
	})
	require.NoError(t, err)
	return req
}

func (e *testEnv) dispatch(t *testing.T, requestID string) *entity.InventoryRequest {
	t.Helper()
	req, err := e.workflow.DispatchFromWarehouse(context.Background(), fulfillment.DispatchInput{
		RequestID: requestID, CompanyID: companyA, HandlerID: bodegaID, Role: "bodeguero",
	})
	require.NoError(t, err)
	return req
}

func (e *testEnv) confirm(t *testing.T, requestID, quantity string) (*entity.InventoryRequest, error) {
	t.Helper()
	return e.workflow.ConfirmReceipt(context.Background(), fulfillment.ConfirmReceiptInput{
		RequestID: requestID, CompanyID: companyA, RecipientID: tecnicoID, Role: "tecnico", Quantity: qty(quantity),
	})
}

// seedStock siembra existencia inicial junto con su movimiento IN de respaldo:
// el libro mayor debe cuadrar con la fila desde el arranque, no solo al final.
func (e *testEnv) seedStock(loc entity.LocationRef, companyID string, quantity, reserved string) {
	e.stock.seed(itemTornillos, loc, companyID, qty(quantity), qty(reserved))
	e.mov.movements = append(e.mov.movements, entity.MovementRecord{
		ItemID:         itemTornillos,
		Type:           entity.MovementTypeIN,
		ToLocationID:   loc.ID,
		ToLocationType: loc.Type,
		ToCompanyID:    companyID,
		Quantity:       qty(quantity),
	})
}

// assertBalanced concilia el libro mayor contra la fila de stock de la ubicación.
func (e *testEnv) assertBalanced(t *testing.T, loc entity.LocationRef) {
	t.Helper()
	report, err := e.recon.Check(itemTornillos, loc)
	require.NoError(t, err)
	assert.True(t, report.Balanced,
		"libro mayor (%s) y fila de stock (%s) divergen en %s",
		report.LedgerSum, report.RowQuantity, loc.ID)
}

// ──────────────────────────────────────────────────────────────────────────────
// Escenario 1: ciclo feliz dentro de la misma empresa.
// ──────────────────────────────────────────────────────────────────────────────

func TestCicloCompleto_MismaEmpresa(t *testing.T) {
	env := newTestEnv(t)
	bodegaA := entity.LocationRef{ID: "bodega-a", Type: entity.LocationTypeWarehouse}
	obra1 := entity.LocationRef{ID: "obra-1", Type: entity.LocationTypeSite}
	env.seedStock(bodegaA, companyA, "100", "0")

	req := env.create(t, "obra-1", "30")

	// Aprobación: reserva en la fuente, estado APPROVED.
	req = env.approve(t, req.ID, "bodega-a", "", "30")
	assert.Equal(t, entity.RequestStatusApproved, req.Status)
	require.NotNil(t, req.ReviewedAt)

	row, _ := env.stock.Get(itemTornillos, bodegaA)
	assert.True(t, row.ReservedQuantity.Equal(qty("30")))
	assert.True(t, row.Available().Equal(qty("70")))

	// Despacho: solo checkpoint, el stock no se mueve.
	req = env.dispatch(t, req.ID)
	assert.Equal(t, entity.RequestStatusInTransit, req.Status)
	require.NotNil(t, req.WarehouseDeliveredAt)
	row, _ = env.stock.Get(itemTornillos, bodegaA)
	assert.True(t, row.Quantity.Equal(qty("100")), "despachar no mueve el físico")

	// Confirmación completa: stock en obra, solicitud DELIVERED.
	req2, err := env.confirm(t, req.ID, "30")
	require.NoError(t, err)
	assert.Equal(t, entity.RequestStatusDelivered, req2.Status)
	assert.True(t, req2.QuantityDelivered.Equal(qty("30")))
	require.NotNil(t, req2.ReceivedAt)

	row, _ = env.stock.Get(itemTornillos, bodegaA)
	assert.True(t, row.Quantity.Equal(qty("70")))
	assert.True(t, row.ReservedQuantity.IsZero())

	atObra, _ := env.stock.Get(itemTornillos, obra1)
	assert.True(t, atObra.Quantity.Equal(qty("30")))

	// Un solo movimiento WORK_ORDER ligado a la solicitud.
	movements, _ := env.mov.ListByRequest(req.ID)
	require.Len(t, movements, 1)
	assert.Equal(t, entity.MovementTypeWorkOrder, movements[0].Type)
	assert.Equal(t, workOrder, movements[0].WorkOrderID)

	// Conservación: suma con signo del libro = físico en cada ubicación.
	env.assertBalanced(t, bodegaA)
	env.assertBalanced(t, obra1)
}

// ──────────────────────────────────────────────────────────────────────────────
// Escenario 2: ruta de dos saltos entre empresas.
// ──────────────────────────────────────────────────────────────────────────────

func TestCicloCompleto_EntreEmpresas(t *testing.T) {
	env := newTestEnv(t)
	bodegaA := entity.LocationRef{ID: "bodega-a", Type: entity.LocationTypeWarehouse}
	bodegaB := entity.LocationRef{ID: "bodega-b", Type: entity.LocationTypeWarehouse}
	obraB := entity.LocationRef{ID: "obra-b", Type: entity.LocationTypeSite}
	env.seedStock(bodegaA, companyA, "50", "0")

	req := env.create(t, "obra-b", "20")
	req = env.approve(t, req.ID, "bodega-a", "bodega-b", "20")
	assert.Equal(t, "bodega-b", req.TransitLocationID)
	req = env.dispatch(t, req.ID)

	// Recepción intermedia: el físico y la retención migran a la bodega de tránsito.
	req, err := env.workflow.ReceiveAtDestinationWarehouse(context.Background(), fulfillment.ReceiveTransitInput{
		RequestID: req.ID, CompanyID: companyB, ReceiverID: bodegaID, Role: "bodeguero",
	})
	require.NoError(t, err)
	require.NotNil(t, req.DestinationWarehouseReceivedAt)
	assert.Equal(t, entity.RequestStatusInTransit, req.Status)

	source, _ := env.stock.Get(itemTornillos, bodegaA)
	assert.True(t, source.Quantity.Equal(qty("30")))
	assert.True(t, source.ReservedQuantity.IsZero())

	transito, _ := env.stock.Get(itemTornillos, bodegaB)
	assert.True(t, transito.Quantity.Equal(qty("20")))
	assert.True(t, transito.ReservedQuantity.Equal(qty("20")),
		"la mercancía sigue retenida en la parada intermedia")
	assert.Equal(t, companyB, transito.CompanyID)

	// Confirmación final: de la bodega de tránsito a la obra destino.
	req, err = env.confirm(t, req.ID, "20")
	require.NoError(t, err)
	assert.Equal(t, entity.RequestStatusDelivered, req.Status)

	transito, _ = env.stock.Get(itemTornillos, bodegaB)
	assert.True(t, transito.Quantity.IsZero())
	assert.True(t, transito.ReservedQuantity.IsZero())

	atObra, _ := env.stock.Get(itemTornillos, obraB)
	assert.True(t, atObra.Quantity.Equal(qty("20")))

	// Dos movimientos: TRANSFER del primer tramo y WORK_ORDER del segundo.
	movements, _ := env.mov.ListByRequest(req.ID)
	require.Len(t, movements, 2)
	assert.Equal(t, entity.MovementTypeTRANSFER, movements[0].Type)
	assert.Equal(t, entity.MovementTypeWorkOrder, movements[1].Type)

	env.assertBalanced(t, bodegaA)
	env.assertBalanced(t, bodegaB)
	env.assertBalanced(t, obraB)
}

func TestEntreEmpresas_ConfirmarSinRecepcionIntermedia_EsInvalido(t *testing.T) {
	env := newTestEnv(t)
	bodegaA := entity.LocationRef{ID: "bodega-a", Type: entity.LocationTypeWarehouse}
	env.seedStock(bodegaA, companyA, "50", "0")

	req := env.create(t, "obra-b", "20")
	req = env.approve(t, req.ID, "bodega-a", "bodega-b", "20")
	req = env.dispatch(t, req.ID)

	_, err := env.confirm(t, req.ID, "20")
	assert.ErrorIs(t, err, domain.ErrInvalidInput,
		"en rutas de dos saltos la recepción intermedia va primero")
}

func TestEntreEmpresas_AprobarSinTransito_Rechazada(t *testing.T) {
	env := newTestEnv(t)
	bodegaA := entity.LocationRef{ID: "bodega-a", Type: entity.LocationTypeWarehouse}
	env.seedStock(bodegaA, companyA, "50", "0")

	req := env.create(t, "obra-b", "20")
	_, err := env.workflow.ApproveRequest(context.Background(), fulfillment.ApproveInput{
		RequestID: req.ID, CompanyID: companyA, ApproverID: jefeID, Role: "jefe_mantenimiento",
		SourceLocationID: "bodega-a", QuantityApproved: qty("20"),
	})

	var routing *domain.CrossCompanyRoutingError
	require.ErrorAs(t, err, &routing)

	// La ruta inválida se rechaza antes de tocar stock.
	row, _ := env.stock.Get(itemTornillos, bodegaA)
	assert.True(t, row.ReservedQuantity.IsZero())
	stored, _ := env.requests.GetByID(req.ID)
	assert.Equal(t, entity.RequestStatusPending, stored.Status)
}

// ──────────────────────────────────────────────────────────────────────────────
// Escenario 3: aprobación con stock insuficiente.
// ──────────────────────────────────────────────────────────────────────────────

func TestAprobar_StockInsuficiente_NoCambiaNada(t *testing.T) {
	env := newTestEnv(t)
	bodegaA := entity.LocationRef{ID: "bodega-a", Type: entity.LocationTypeWarehouse}
	env.seedStock(bodegaA, companyA, "10", "8")

	req := env.create(t, "obra-1", "5")
	_, err := env.workflow.ApproveRequest(context.Background(), fulfillment.ApproveInput{
		RequestID: req.ID, CompanyID: companyA, ApproverID: jefeID, Role: "jefe_mantenimiento",
		SourceLocationID: "bodega-a", QuantityApproved: qty("5"),
	})

	var insufficient *domain.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.True(t, insufficient.Shortfall().Equal(qty("3")))

	stored, _ := env.requests.GetByID(req.ID)
	assert.Equal(t, entity.RequestStatusPending, stored.Status, "la solicitud sigue PENDING")
	assert.Nil(t, stored.QuantityApproved)
}

func TestAprobar_MasDeLoSolicitado_EsInvalido(t *testing.T) {
	env := newTestEnv(t)
	bodegaA := entity.LocationRef{ID: "bodega-a", Type: entity.LocationTypeWarehouse}
	env.seedStock(bodegaA, companyA, "100", "0")

	req := env.create(t, "obra-1", "5")
	_, err := env.workflow.ApproveRequest(context.Background(), fulfillment.ApproveInput{
		RequestID: req.ID, CompanyID: companyA, ApproverID: jefeID, Role: "jefe_mantenimiento",
		SourceLocationID: "bodega-a", QuantityApproved: qty("6"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// Aprobación parcial: se reserva solo lo aprobado.
func TestAprobar_CantidadParcial(t *testing.T) {
	env := newTestEnv(t)
	bodegaA := entity.LocationRef{ID: "bodega-a", Type: entity.LocationTypeWarehouse}
	env.seedStock(bodegaA, companyA, "100", "0")

	req := env.create(t, "obra-1", "30")
	req = env.approve(t, req.ID, "bodega-a", "", "18")

	require.NotNil(t, req.QuantityApproved)
	assert.True(t, req.QuantityApproved.Equal(qty("18")))
	row, _ := env.stock.Get(itemTornillos, bodegaA)
	assert.True(t, row.ReservedQuantity.Equal(qty("18")))
}

// ──────────────────────────────────────────────────────────────────────────────
// Escenario 4: cancelación después de aprobar libera la reserva.
// ──────────────────────────────────────────────────────────────────────────────

func TestCancelar_DespuesDeAprobar_LiberaReserva(t *testing.T) {
	env := newTestEnv(t)
	bodegaA := entity.LocationRef{ID: "bodega-a", Type: entity.LocationTypeWarehouse}
	env.seedStock(bodegaA, companyA, "100", "0")

	req := env.create(t, "obra-1", "30")
	req = env.approve(t, req.ID, "bodega-a", "", "30")

	req, err := env.workflow.CancelRequest(context.Background(), fulfillment.CancelInput{
		RequestID: req.ID, CompanyID: companyA, CallerID: tecnicoID, Role: "tecnico",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.RequestStatusCancelled, req.Status)

	row, _ := env.stock.Get(itemTornillos, bodegaA)
	assert.True(t, row.ReservedQuantity.IsZero(), "la reserva vuelve completa al disponible")
	assert.True(t, row.Quantity.Equal(qty("100")))

	movements, _ := env.mov.ListByRequest(req.ID)
	assert.Empty(t, movements, "cancelar no genera movimiento: nada se movió físicamente")
}

func TestCancelar_Pendiente_EsDirecto(t *testing.T) {
	env := newTestEnv(t)
	req := env.create(t, "obra-1", "5")

	req, err := env.workflow.CancelRequest(context.Background(), fulfillment.CancelInput{
		RequestID: req.ID, CompanyID: companyA, CallerID: tecnicoID, Role: "tecnico",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.RequestStatusCancelled, req.Status)
}

func TestCancelar_Entregada_EsTransicionInvalida(t *testing.T) {
	env := newTestEnv(t)
	bodegaA := entity.LocationRef{ID: "bodega-a", Type: entity.LocationTypeWarehouse}
	env.seedStock(bodegaA, companyA, "100", "0")

	req := env.create(t, "obra-1", "10")
	req = env.approve(t, req.ID, "bodega-a", "", "10")
	req = env.dispatch(t, req.ID)
	req2, err := env.confirm(t, req.ID, "10")
	require.NoError(t, err)
	require.Equal(t, entity.RequestStatusDelivered, req2.Status)

	_, err = env.workflow.CancelRequest(context.Background(), fulfillment.CancelInput{
		RequestID: req.ID, CompanyID: companyA, CallerID: tecnicoID, Role: "tecnico",
	})
	var transition *domain.InvalidStateTransitionError
	require.ErrorAs(t, err, &transition)
	assert.Equal(t, entity.RequestStatusDelivered, transition.From)
}

// ──────────────────────────────────────────────────────────────────────────────
// Escenario 5: checkpoints idempotentes.
// ──────────────────────────────────────────────────────────────────────────────

func TestDespachar_DosVeces_EsYaRegistrado(t *testing.T) {
	env := newTestEnv(t)
	bodegaA := entity.LocationRef{ID: "bodega-a", Type: entity.LocationTypeWarehouse}
	env.seedStock(bodegaA, companyA, "100", "0")

	req := env.create(t, "obra-1", "10")
	req = env.approve(t, req.ID, "bodega-a", "", "10")
	req = env.dispatch(t, req.ID)
	first := *req.WarehouseDeliveredAt

	_, err := env.workflow.DispatchFromWarehouse(context.Background(), fulfillment.DispatchInput{
		RequestID: req.ID, CompanyID: companyA, HandlerID: bodegaID, Role: "bodeguero",
	})
	var already *domain.StateAlreadyReachedError
	require.ErrorAs(t, err, &already)
	assert.Equal(t, fulfillment.CheckpointWarehouseDelivered, already.Checkpoint)

	stored, _ := env.requests.GetByID(req.ID)
	assert.True(t, stored.WarehouseDeliveredAt.Equal(first), "el timestamp original no se pisa")
}

func TestConfirmar_SolicitudYaEntregada_NoCuentaDosVeces(t *testing.T) {
	env := newTestEnv(t)
	bodegaA := entity.LocationRef{ID: "bodega-a", Type: entity.LocationTypeWarehouse}
	obra1 := entity.LocationRef{ID: "obra-1", Type: entity.LocationTypeSite}
	env.seedStock(bodegaA, companyA, "100", "0")

	req := env.create(t, "obra-1", "10")
	req = env.approve(t, req.ID, "bodega-a", "", "10")
	req = env.dispatch(t, req.ID)
	_, err := env.confirm(t, req.ID, "10")
	require.NoError(t, err)

	_, err = env.confirm(t, req.ID, "10")
	var already *domain.StateAlreadyReachedError
	require.ErrorAs(t, err, &already)

	stored, _ := env.requests.GetByID(req.ID)
	assert.True(t, stored.QuantityDelivered.Equal(qty("10")), "lo entregado no se duplica")
	movements, _ := env.mov.ListByRequest(req.ID)
	assert.Len(t, movements, 1, "no se emite un segundo movimiento")

	atObra, _ := env.stock.Get(itemTornillos, obra1)
	assert.True(t, atObra.Quantity.Equal(qty("10")))
}

func TestRecepcionIntermedia_DosVeces_EsYaRegistrada(t *testing.T) {
	env := newTestEnv(t)
	bodegaA := entity.LocationRef{ID: "bodega-a", Type: entity.LocationTypeWarehouse}
	bodegaB := entity.LocationRef{ID: "bodega-b", Type: entity.LocationTypeWarehouse}
	env.seedStock(bodegaA, companyA, "50", "0")

	req := env.create(t, "obra-b", "20")
	req = env.approve(t, req.ID, "bodega-a", "bodega-b", "20")
	req = env.dispatch(t, req.ID)

	_, err := env.workflow.ReceiveAtDestinationWarehouse(context.Background(), fulfillment.ReceiveTransitInput{
		RequestID: req.ID, CompanyID: companyB, ReceiverID: bodegaID, Role: "bodeguero",
	})
	require.NoError(t, err)

	_, err = env.workflow.ReceiveAtDestinationWarehouse(context.Background(), fulfillment.ReceiveTransitInput{
		RequestID: req.ID, CompanyID: companyB, ReceiverID: bodegaID, Role: "bodeguero",
	})
	var already *domain.StateAlreadyReachedError
	require.ErrorAs(t, err, &already)

	transito, _ := env.stock.Get(itemTornillos, bodegaB)
	assert.True(t, transito.Quantity.Equal(qty("20")), "el traslado no se duplica")
}

// ──────────────────────────────────────────────────────────────────────────────
// Entregas parciales: lo entregado solo crece, DELIVERED al completar.
// ──────────────────────────────────────────────────────────────────────────────

func TestEntregasParciales_AcumulanHastaCompletar(t *testing.T) {
	env := newTestEnv(t)
	bodegaA := entity.LocationRef{ID: "bodega-a", Type: entity.LocationTypeWarehouse}
	obra1 := entity.LocationRef{ID: "obra-1", Type: entity.LocationTypeSite}
	env.seedStock(bodegaA, companyA, "100", "0")

	req := env.create(t, "obra-1", "30")
	req = env.approve(t, req.ID, "bodega-a", "", "30")
	req = env.dispatch(t, req.ID)

	delivered := decimal.Zero
	for _, step := range []string{"12", "8", "10"} {
		req2, err := env.confirm(t, req.ID, step)
		require.NoError(t, err)
		assert.True(t, req2.QuantityDelivered.GreaterThan(delivered),
			"lo entregado crece de forma monótona")
		delivered = req2.QuantityDelivered
		if delivered.LessThan(qty("30")) {
			assert.Equal(t, entity.RequestStatusInTransit, req2.Status,
				"con entrega parcial la solicitud sigue IN_TRANSIT")
		} else {
			assert.Equal(t, entity.RequestStatusDelivered, req2.Status)
		}
	}

	atObra, _ := env.stock.Get(itemTornillos, obra1)
	assert.True(t, atObra.Quantity.Equal(qty("30")))

	movements, _ := env.mov.ListByRequest(req.ID)
	assert.Len(t, movements, 3, "un movimiento por confirmación parcial")

	env.assertBalanced(t, bodegaA)
	env.assertBalanced(t, obra1)
}

func TestConfirmar_MasDelRemanente_EsInvalido(t *testing.T) {
	env := newTestEnv(t)
	bodegaA := entity.LocationRef{ID: "bodega-a", Type: entity.LocationTypeWarehouse}
	env.seedStock(bodegaA, companyA, "100", "0")

	req := env.create(t, "obra-1", "10")
	req = env.approve(t, req.ID, "bodega-a", "", "10")
	req = env.dispatch(t, req.ID)

	_, err := env.confirm(t, req.ID, "11")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// Transiciones ilegales y autorización.
// ──────────────────────────────────────────────────────────────────────────────

func TestConfirmar_SolicitudPendiente_EsTransicionInvalida(t *testing.T) {
	env := newTestEnv(t)
	req := env.create(t, "obra-1", "5")

	_, err := env.confirm(t, req.ID, "5")
	var transition *domain.InvalidStateTransitionError
	require.ErrorAs(t, err, &transition)
	assert.Equal(t, entity.RequestStatusPending, transition.From)
}

func TestAprobar_SolicitudYaAprobada_EsTransicionInvalida(t *testing.T) {
	env := newTestEnv(t)
	bodegaA := entity.LocationRef{ID: "bodega-a", Type: entity.LocationTypeWarehouse}
	env.seedStock(bodegaA, companyA, "100", "0")

	req := env.create(t, "obra-1", "10")
	env.approve(t, req.ID, "bodega-a", "", "10")

	_, err := env.workflow.ApproveRequest(context.Background(), fulfillment.ApproveInput{
		RequestID: req.ID, CompanyID: companyA, ApproverID: jefeID, Role: "jefe_mantenimiento",
		SourceLocationID: "bodega-a", QuantityApproved: qty("10"),
	})
	var transition *domain.InvalidStateTransitionError
	require.ErrorAs(t, err, &transition)

	// El doble intento no duplica la reserva.
	row, _ := env.stock.Get(itemTornillos, bodegaA)
	assert.True(t, row.ReservedQuantity.Equal(qty("10")))
}

func TestRechazar_DejaElStockIntacto(t *testing.T) {
	env := newTestEnv(t)
	bodegaA := entity.LocationRef{ID: "bodega-a", Type: entity.LocationTypeWarehouse}
	env.seedStock(bodegaA, companyA, "100", "0")

	req := env.create(t, "obra-1", "10")
	req, err := env.workflow.RejectRequest(context.Background(), fulfillment.ReviewInput{
		RequestID: req.ID, CompanyID: companyA, ReviewerID: jefeID, Role: "jefe_mantenimiento", ReviewNotes: "sin presupuesto",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.RequestStatusRejected, req.Status)
	assert.Equal(t, "sin presupuesto", req.ReviewNotes)

	row, _ := env.stock.Get(itemTornillos, bodegaA)
	assert.True(t, row.ReservedQuantity.IsZero())
}

// Las transiciones están acotadas a la empresa dueña: para un caller de otra
// empresa la solicitud no existe, igual que en las consultas.
func TestTransiciones_SolicitudDeOtraEmpresa_EsNotFound(t *testing.T) {
	env := newTestEnv(t)
	bodegaA := entity.LocationRef{ID: "bodega-a", Type: entity.LocationTypeWarehouse}
	env.seedStock(bodegaA, companyA, "100", "0")

	req := env.create(t, "obra-1", "10")

	_, err := env.workflow.ApproveRequest(context.Background(), fulfillment.ApproveInput{
		RequestID: req.ID, CompanyID: companyB, ApproverID: jefeID, Role: "jefe_mantenimiento",
		SourceLocationID: "bodega-a", QuantityApproved: qty("10"),
	})
	assert.ErrorIs(t, err, domain.ErrNotFound, "aprobar desde otra empresa no existe")
	row, _ := env.stock.Get(itemTornillos, bodegaA)
	assert.True(t, row.ReservedQuantity.IsZero(), "nada se reserva para el intruso")

	_, err = env.workflow.RejectRequest(context.Background(), fulfillment.ReviewInput{
		RequestID: req.ID, CompanyID: companyB, ReviewerID: jefeID, Role: "jefe_mantenimiento",
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = env.workflow.CancelRequest(context.Background(), fulfillment.CancelInput{
		RequestID: req.ID, CompanyID: companyB, CallerID: tecnicoID, Role: "tecnico",
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// Ya en tránsito, despachar y confirmar desde otra empresa tampoco existen.
	env.approve(t, req.ID, "bodega-a", "", "10")
	_, err = env.workflow.DispatchFromWarehouse(context.Background(), fulfillment.DispatchInput{
		RequestID: req.ID, CompanyID: companyB, HandlerID: bodegaID, Role: "bodeguero",
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	env.dispatch(t, req.ID)
	_, err = env.workflow.ConfirmReceipt(context.Background(), fulfillment.ConfirmReceiptInput{
		RequestID: req.ID, CompanyID: companyB, RecipientID: tecnicoID, Role: "tecnico", Quantity: qty("10"),
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	stored, _ := env.requests.GetByID(req.ID)
	assert.True(t, stored.QuantityDelivered.IsZero(), "el intruso no movió nada")
}

func TestRolSinPermiso_EsForbidden(t *testing.T) {
	env := newTestEnv(t)
	env.authz.deny("tecnico", "request.approve")

	_, err := env.workflow.ApproveRequest(context.Background(), fulfillment.ApproveInput{
		RequestID: "cualquiera", CompanyID: companyA, ApproverID: tecnicoID, Role: "tecnico",
		SourceLocationID: "bodega-a", QuantityApproved: qty("1"),
	})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestCrear_ValidaItemDestinoYOrden(t *testing.T) {
	env := newTestEnv(t)

	// Ítem inexistente.
	_, err := env.workflow.CreateRequest(context.Background(), fulfillment.CreateRequestInput{
		CompanyID: companyA, RequesterID: tecnicoID, Role: "tecnico",
		WorkOrderID: workOrder, ItemID: "item-fantasma",
		DestinationLocationID: "obra-1", Quantity: qty("1"),
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// Cantidad no positiva.
	_, err = env.workflow.CreateRequest(context.Background(), fulfillment.CreateRequestInput{
		CompanyID: companyA, RequesterID: tecnicoID, Role: "tecnico",
		WorkOrderID: workOrder, ItemID: itemTornillos,
		DestinationLocationID: "obra-1", Quantity: qty("0"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// Urgencia fuera del conjunto cerrado.
	_, err = env.workflow.CreateRequest(context.Background(), fulfillment.CreateRequestInput{
		CompanyID: companyA, RequesterID: tecnicoID, Role: "tecnico",
		WorkOrderID: workOrder, ItemID: itemTornillos,
		DestinationLocationID: "obra-1", Quantity: qty("1"), Urgency: "YA MISMO",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCrear_UrgenciaPorDefectoEsNormal(t *testing.T) {
	env := newTestEnv(t)
	req := env.create(t, "obra-1", "5")
	assert.Equal(t, entity.UrgencyNormal, req.Urgency)
}

// Entrega directa a vehículo: mismo tratamiento que la obra.
func TestCicloCompleto_DestinoVehiculo(t *testing.T) {
	env := newTestEnv(t)
	bodegaA := entity.LocationRef{ID: "bodega-a", Type: entity.LocationTypeWarehouse}
	camion := entity.LocationRef{ID: "camion-7", Type: entity.LocationTypeVehicle}
	env.seedStock(bodegaA, companyA, "40", "0")

	req := env.create(t, "camion-7", "4")
	req = env.approve(t, req.ID, "bodega-a", "", "4")
	req = env.dispatch(t, req.ID)
	req2, err := env.confirm(t, req.ID, "4")
	require.NoError(t, err)
	assert.Equal(t, entity.RequestStatusDelivered, req2.Status)

	enCamion, _ := env.stock.Get(itemTornillos, camion)
	assert.True(t, enCamion.Quantity.Equal(qty("4")))

	movements, _ := env.mov.ListByRequest(req.ID)
	require.Len(t, movements, 1)
	assert.Equal(t, entity.MovementTypeWorkOrder, movements[0].Type)

	env.assertBalanced(t, bodegaA)
	env.assertBalanced(t, camion)
}
