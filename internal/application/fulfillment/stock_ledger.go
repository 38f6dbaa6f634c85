package fulfillment

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

// StockLedger expone las primitivas atómicas sobre filas de stock: reservar,
// liberar, trasladar y ajustar. Es sin estado: cada operación mutante recibe el
// repositorio atado a la transacción del caller y bloquea la fila afectada
// (SELECT FOR UPDATE) antes de leer-modificar-escribir, de modo que dos
// reservas concurrentes sobre la misma fila nunca puedan aprobarse ambas
// cuando solo una cabe en el disponible.
type StockLedger struct{}

// NewStockLedger construye el libro de stock.
func NewStockLedger() *StockLedger {
	return &StockLedger{}
}

// GetAvailable devuelve la cantidad disponible (física menos reservada) del ítem
// en la ubicación. Lectura sin bloqueo.
func (l *StockLedger) GetAvailable(stockRepo repository.StockRowRepository, itemID string, loc entity.LocationRef) (decimal.Decimal, error) {
	row, err := stockRepo.Get(itemID, loc)
	if err != nil {
		return decimal.Zero, err
	}
	return row.Available(), nil
}

// Reserve retiene cantidad contra solicitudes abiertas: verifica disponible >= qty
// y, si alcanza, incrementa ReservedQuantity. Si no alcanza falla con
// InsufficientStockError llevando el faltante. Lectura-modificación-escritura
// única bajo bloqueo de fila.
func (l *StockLedger) Reserve(stockRepo repository.StockRowRepository, itemID string, loc entity.LocationRef, qty decimal.Decimal) error {
	if !qty.GreaterThan(decimal.Zero) {
		return domain.ErrInvalidInput
	}
	row, err := stockRepo.GetForUpdate(itemID, loc)
	if err != nil {
		return err
	}
	if row.Available().LessThan(qty) {
		return &domain.InsufficientStockError{
			ItemID:     itemID,
			LocationID: loc.ID,
			Requested:  qty,
			Available:  row.Available(),
		}
	}
	row.ReservedQuantity = row.ReservedQuantity.Add(qty)
	row.UpdatedAt = time.Now()
	return stockRepo.Upsert(row)
}

// Release libera una reserva no consumida (rechazo o cancelación). Si dejaría el
// reservado negativo falla con InvariantViolationError: eso señala un bug aguas
// arriba y nunca se recorta en silencio.
func (l *StockLedger) Release(stockRepo repository.StockRowRepository, itemID string, loc entity.LocationRef, qty decimal.Decimal) error {
	if !qty.GreaterThan(decimal.Zero) {
		return domain.ErrInvalidInput
	}
	row, err := stockRepo.GetForUpdate(itemID, loc)
	if err != nil {
		return err
	}
	if row.ReservedQuantity.LessThan(qty) {
		return &domain.InvariantViolationError{
			Op:     "release",
			Detail: "liberar " + qty.String() + " dejaría negativo el reservado " + row.ReservedQuantity.String() + " (ítem " + itemID + ", ubicación " + loc.ID + ")",
		}
	}
	row.ReservedQuantity = row.ReservedQuantity.Sub(qty)
	row.UpdatedAt = time.Now()
	return stockRepo.Upsert(row)
}

// Transfer mueve cantidad de una fila a otra dentro de la misma transacción,
// creando la fila destino si no existe (con la empresa dueña indicada).
// Con consumeReservation la cantidad trasladada debe estar reservada en el
// origen y la reserva se consume junto con el físico; sin consumeReservation
// (devoluciones, traslados libres) solo exige disponible suficiente.
func (l *StockLedger) Transfer(
	stockRepo repository.StockRowRepository,
	itemID string,
	from, to entity.LocationRef,
	toCompanyID string,
	qty decimal.Decimal,
	consumeReservation bool,
) error {
	if !qty.GreaterThan(decimal.Zero) {
		return domain.ErrInvalidInput
	}
	if from.ID == to.ID && from.Type == to.Type {
		return domain.ErrInvalidInput
	}
	source, err := stockRepo.GetForUpdate(itemID, from)
	if err != nil {
		return err
	}
	if consumeReservation {
		// Lo trasladado venía reservado: quedarse corto aquí es un bug, no falta de stock.
		if source.ReservedQuantity.LessThan(qty) || source.Quantity.LessThan(qty) {
			return &domain.InvariantViolationError{
				Op: "transfer",
				Detail: "trasladar " + qty.String() + " excede lo reservado " + source.ReservedQuantity.String() +
					" o lo físico " + source.Quantity.String() + " en " + from.ID,
			}
		}
		source.ReservedQuantity = source.ReservedQuantity.Sub(qty)
	} else {
		if source.Available().LessThan(qty) {
			return &domain.InsufficientStockError{
				ItemID:     itemID,
				LocationID: from.ID,
				Requested:  qty,
				Available:  source.Available(),
			}
		}
	}
	source.Quantity = source.Quantity.Sub(qty)

	dest, err := stockRepo.GetForUpdate(itemID, to)
	if err != nil {
		return err
	}
	if dest.CompanyID == "" {
		dest.CompanyID = toCompanyID
	}
	dest.Quantity = dest.Quantity.Add(qty)

	now := time.Now()
	source.UpdatedAt = now
	dest.UpdatedAt = now
	if err := stockRepo.Upsert(source); err != nil {
		return err
	}
	return stockRepo.Upsert(dest)
}

// Withdraw descuenta físico no reservado (bajas por daño). Exige disponible
// suficiente para no tocar cantidades retenidas por solicitudes abiertas.
func (l *StockLedger) Withdraw(stockRepo repository.StockRowRepository, itemID string, loc entity.LocationRef, qty decimal.Decimal) error {
	if !qty.GreaterThan(decimal.Zero) {
		return domain.ErrInvalidInput
	}
	row, err := stockRepo.GetForUpdate(itemID, loc)
	if err != nil {
		return err
	}
	if row.Available().LessThan(qty) {
		return &domain.InsufficientStockError{
			ItemID:     itemID,
			LocationID: loc.ID,
			Requested:  qty,
			Available:  row.Available(),
		}
	}
	row.Quantity = row.Quantity.Sub(qty)
	row.UpdatedAt = time.Now()
	return stockRepo.Upsert(row)
}

// Adjust fija la cantidad física (corrección por conteo) y devuelve el delta
// aplicado para que el caller lo empareje con su movimiento COUNT_ADJUSTMENT.
// No puede dejar la fila por debajo de lo reservado.
func (l *StockLedger) Adjust(
	stockRepo repository.StockRowRepository,
	itemID string,
	loc entity.LocationRef,
	companyID string,
	newQuantity decimal.Decimal,
) (decimal.Decimal, error) {
	if newQuantity.LessThan(decimal.Zero) {
		return decimal.Zero, domain.ErrInvalidInput
	}
	row, err := stockRepo.GetForUpdate(itemID, loc)
	if err != nil {
		return decimal.Zero, err
	}
	if newQuantity.LessThan(row.ReservedQuantity) {
		return decimal.Zero, &domain.InvariantViolationError{
			Op:     "adjust",
			Detail: "fijar " + newQuantity.String() + " dejaría la cantidad por debajo del reservado " + row.ReservedQuantity.String() + " en " + loc.ID,
		}
	}
	delta := newQuantity.Sub(row.Quantity)
	if row.CompanyID == "" {
		row.CompanyID = companyID
	}
	row.Quantity = newQuantity
	row.UpdatedAt = time.Now()
	if err := stockRepo.Upsert(row); err != nil {
		return decimal.Zero, err
	}
	return delta, nil
}
