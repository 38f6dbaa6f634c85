package fulfillment_test

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria. Simulan el comportamiento de los adaptadores de PostgreSQL:
// filas en cero para stock inexistente, copias al leer/escribir y transacciones
// serializadas con rollback por snapshot.
// ──────────────────────────────────────────────────────────────────────────────

func stockKey(itemID string, loc entity.LocationRef) string {
	return itemID + "|" + loc.ID + "|" + loc.Type
}

type fakeStockRepo struct {
	rows map[string]entity.StockRow
}

var _ repository.StockRowRepository = (*fakeStockRepo)(nil)

func newFakeStockRepo() *fakeStockRepo {
	return &fakeStockRepo{rows: make(map[string]entity.StockRow)}
}

func (f *fakeStockRepo) seed(itemID string, loc entity.LocationRef, companyID string, qty, reserved decimal.Decimal) {
	f.rows[stockKey(itemID, loc)] = entity.StockRow{
		ItemID:           itemID,
		LocationID:       loc.ID,
		LocationType:     loc.Type,
		CompanyID:        companyID,
		Quantity:         qty,
		ReservedQuantity: reserved,
	}
}

func (f *fakeStockRepo) Get(itemID string, loc entity.LocationRef) (*entity.StockRow, error) {
	if row, ok := f.rows[stockKey(itemID, loc)]; ok {
		cp := row
		return &cp, nil
	}
	return &entity.StockRow{
		ItemID:           itemID,
		LocationID:       loc.ID,
		LocationType:     loc.Type,
		Quantity:         decimal.Zero,
		ReservedQuantity: decimal.Zero,
	}, nil
}

func (f *fakeStockRepo) GetForUpdate(itemID string, loc entity.LocationRef) (*entity.StockRow, error) {
	return f.Get(itemID, loc)
}

func (f *fakeStockRepo) Upsert(row *entity.StockRow) error {
	f.rows[stockKey(row.ItemID, row.Location())] = *row
	return nil
}

func (f *fakeStockRepo) ListByItem(itemID string) ([]*entity.StockRow, error) {
	var out []*entity.StockRow
	for _, row := range f.rows {
		if row.ItemID == itemID {
			cp := row
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeStockRepo) ListByLocation(loc entity.LocationRef) ([]*entity.StockRow, error) {
	var out []*entity.StockRow
	for _, row := range f.rows {
		if row.LocationID == loc.ID && row.LocationType == loc.Type {
			cp := row
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakeMovementRepo struct {
	movements []entity.MovementRecord
}

var _ repository.MovementRepository = (*fakeMovementRepo)(nil)

func newFakeMovementRepo() *fakeMovementRepo { return &fakeMovementRepo{} }

func (f *fakeMovementRepo) Create(m *entity.MovementRecord) error {
	f.movements = append(f.movements, *m)
	return nil
}

func (f *fakeMovementRepo) GetByID(id string) (*entity.MovementRecord, error) {
	for i := range f.movements {
		if f.movements[i].ID == id {
			cp := f.movements[i]
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeMovementRepo) ListByItemAndLocation(itemID string, loc entity.LocationRef, limit, offset int) ([]*entity.MovementRecord, error) {
	var out []*entity.MovementRecord
	for i := range f.movements {
		m := f.movements[i]
		if m.ItemID != itemID {
			continue
		}
		if !m.SignedQuantityAt(loc).IsZero() {
			cp := m
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeMovementRepo) ListByRequest(requestID string) ([]*entity.MovementRecord, error) {
	var out []*entity.MovementRecord
	for i := range f.movements {
		if f.movements[i].RequestID == requestID {
			cp := f.movements[i]
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeMovementRepo) SumByItemAndLocation(itemID string, loc entity.LocationRef) (decimal.Decimal, error) {
	sum := decimal.Zero
	for i := range f.movements {
		if f.movements[i].ItemID == itemID {
			sum = sum.Add(f.movements[i].SignedQuantityAt(loc))
		}
	}
	return sum, nil
}

type fakeRequestRepo struct {
	requests map[string]entity.InventoryRequest
}

var _ repository.RequestRepository = (*fakeRequestRepo)(nil)

func newFakeRequestRepo() *fakeRequestRepo {
	return &fakeRequestRepo{requests: make(map[string]entity.InventoryRequest)}
}

func (f *fakeRequestRepo) Create(r *entity.InventoryRequest) error {
	f.requests[r.ID] = *r
	return nil
}

func (f *fakeRequestRepo) GetByID(id string) (*entity.InventoryRequest, error) {
	if r, ok := f.requests[id]; ok {
		cp := r
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeRequestRepo) GetByIDForUpdate(id string) (*entity.InventoryRequest, error) {
	return f.GetByID(id)
}

func (f *fakeRequestRepo) Update(r *entity.InventoryRequest) error {
	f.requests[r.ID] = *r
	return nil
}

func (f *fakeRequestRepo) ListByCompany(companyID, status string, limit, offset int) ([]*entity.InventoryRequest, error) {
	var out []*entity.InventoryRequest
	for _, r := range f.requests {
		if r.CompanyID != companyID {
			continue
		}
		if status != "" && r.Status != status {
			continue
		}
		cp := r
		out = append(out, &cp)
	}
	return out, nil
}

// fakeTxRunner serializa las "transacciones" con un mutex (equivalente funcional
// del bloqueo de fila) y restaura un snapshot completo si el bloque falla.
type fakeTxRunner struct {
	mu       sync.Mutex
	stock    *fakeStockRepo
	mov      *fakeMovementRepo
	requests *fakeRequestRepo
}

func newFakeTxRunner(stock *fakeStockRepo, mov *fakeMovementRepo, requests *fakeRequestRepo) *fakeTxRunner {
	return &fakeTxRunner{stock: stock, mov: mov, requests: requests}
}

func (f *fakeTxRunner) Run(_ context.Context, fn func(
	stockRepo repository.StockRowRepository,
	movRepo repository.MovementRepository,
	requestRepo repository.RequestRepository,
) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	rowsSnap := make(map[string]entity.StockRow, len(f.stock.rows))
	for k, v := range f.stock.rows {
		rowsSnap[k] = v
	}
	movSnap := make([]entity.MovementRecord, len(f.mov.movements))
	copy(movSnap, f.mov.movements)
	reqSnap := make(map[string]entity.InventoryRequest, len(f.requests.requests))
	for k, v := range f.requests.requests {
		reqSnap[k] = v
	}

	if err := fn(f.stock, f.mov, f.requests); err != nil {
		f.stock.rows = rowsSnap
		f.mov.movements = movSnap
		f.requests.requests = reqSnap
		return err
	}
	return nil
}

// fakeAuthz permite todo salvo los pares rol/acción vetados explícitamente.
type fakeAuthz struct {
	denied map[string]bool // clave rol+"|"+acción
}

func allowAll() *fakeAuthz { return &fakeAuthz{denied: map[string]bool{}} }

func (f *fakeAuthz) deny(role, action string) { f.denied[role+"|"+action] = true }

func (f *fakeAuthz) CanPerform(role, action string) bool {
	return !f.denied[role+"|"+action]
}

type fakeWorkOrders struct {
	missing map[string]bool
}

func allWorkOrders() *fakeWorkOrders { return &fakeWorkOrders{missing: map[string]bool{}} }

func (f *fakeWorkOrders) Exists(_ context.Context, workOrderID string) (bool, error) {
	return !f.missing[workOrderID], nil
}

type fakeItemRepo struct {
	items map[string]entity.Item
}

var _ repository.ItemRepository = (*fakeItemRepo)(nil)

func newFakeItemRepo(items ...entity.Item) *fakeItemRepo {
	f := &fakeItemRepo{items: make(map[string]entity.Item)}
	for _, it := range items {
		f.items[it.ID] = it
	}
	return f
}

func (f *fakeItemRepo) Create(item *entity.Item) error {
	f.items[item.ID] = *item
	return nil
}

func (f *fakeItemRepo) GetByID(id string) (*entity.Item, error) {
	if it, ok := f.items[id]; ok {
		cp := it
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeItemRepo) GetByCompanyAndCode(companyID, code string) (*entity.Item, error) {
	for _, it := range f.items {
		if it.CompanyID == companyID && it.Code == code {
			cp := it
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeItemRepo) Update(item *entity.Item) error {
	f.items[item.ID] = *item
	return nil
}

func (f *fakeItemRepo) List(companyID string, onlyActive bool, limit, offset int) ([]*entity.Item, error) {
	var out []*entity.Item
	for _, it := range f.items {
		if it.CompanyID != companyID {
			continue
		}
		if onlyActive && !it.Active {
			continue
		}
		cp := it
		out = append(out, &cp)
	}
	return out, nil
}

type fakeLocationRepo struct {
	locations map[string]entity.Location
}

var _ repository.LocationRepository = (*fakeLocationRepo)(nil)

func newFakeLocationRepo(locations ...entity.Location) *fakeLocationRepo {
	f := &fakeLocationRepo{locations: make(map[string]entity.Location)}
	for _, l := range locations {
		f.locations[l.ID] = l
	}
	return f
}

func (f *fakeLocationRepo) GetByID(id string) (*entity.Location, error) {
	if l, ok := f.locations[id]; ok {
		cp := l
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeLocationRepo) ListByCompany(companyID, locationType string) ([]*entity.Location, error) {
	var out []*entity.Location
	for _, l := range f.locations {
		if l.CompanyID != companyID {
			continue
		}
		if locationType != "" && l.Type != locationType {
			continue
		}
		cp := l
		out = append(out, &cp)
	}
	return out, nil
}
