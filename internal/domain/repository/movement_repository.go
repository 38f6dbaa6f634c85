package repository

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Almacen-api/internal/domain/entity"
)

// MovementRepository define el puerto de persistencia del libro mayor de movimientos.
// Solo inserta y lee: los movimientos nunca se modifican ni se borran.
type MovementRepository interface {
	Create(m *entity.MovementRecord) error
	GetByID(id string) (*entity.MovementRecord, error)
	ListByItemAndLocation(itemID string, loc entity.LocationRef, limit, offset int) ([]*entity.MovementRecord, error)
	ListByRequest(requestID string) ([]*entity.MovementRecord, error)
	// SumByItemAndLocation devuelve la suma con signo de todos los movimientos que
	// tocan la ubicación (+cantidad como destino, -cantidad como origen). Es la
	// base de la conciliación contra la fila de stock.
	SumByItemAndLocation(itemID string, loc entity.LocationRef) (decimal.Decimal, error)
}
