package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockRow representa el stock de un ítem en una ubicación (fila por ítem × ubicación).
// Quantity es lo físico en mano; ReservedQuantity lo retenido por solicitudes abiertas.
// Invariante permanente: 0 <= ReservedQuantity <= Quantity.
type StockRow struct {
	ItemID           string
	LocationID       string
	LocationType     string
	CompanyID        string // empresa dueña; usado en chequeos de traslado entre empresas
	Quantity         decimal.Decimal
	ReservedQuantity decimal.Decimal
	UpdatedAt        time.Time
}

// Available devuelve la cantidad disponible (física menos reservada).
func (s *StockRow) Available() decimal.Decimal {
	return s.Quantity.Sub(s.ReservedQuantity)
}

// Location devuelve la referencia de la ubicación de la fila.
func (s *StockRow) Location() LocationRef {
	return LocationRef{ID: s.LocationID, Type: s.LocationType}
}
