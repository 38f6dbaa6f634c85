package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una solicitud de repuestos.
const (
	RequestStatusPending   = "PENDING"
	RequestStatusApproved  = "APPROVED"
	RequestStatusRejected  = "REJECTED"
	RequestStatusInTransit = "IN_TRANSIT"
	RequestStatusDelivered = "DELIVERED"
	RequestStatusCancelled = "CANCELLED"
)

// Urgencias de una solicitud.
const (
	UrgencyLow      = "LOW"
	UrgencyNormal   = "NORMAL"
	UrgencyHigh     = "HIGH"
	UrgencyCritical = "CRITICAL"
)

// ValidUrgency indica si la urgencia pertenece al conjunto cerrado.
func ValidUrgency(u string) bool {
	return u == UrgencyLow || u == UrgencyNormal || u == UrgencyHigh || u == UrgencyCritical
}

// InventoryRequest representa el pedido de un técnico: una cantidad de un ítem para
// una orden de trabajo. El estado es la fuente de verdad del ciclo de vida; los
// timestamps de checkpoint son efectos secundarios de las transiciones.
// Una vez APPROVED o posterior nunca se borra: la cancelación es un estado terminal.
// Invariante: 0 <= QuantityDelivered <= QuantityApproved <= QuantityRequested
// cuando QuantityApproved está definido.
type InventoryRequest struct {
	ID          string
	CompanyID   string
	WorkOrderID string
	ItemID      string
	RequesterID string

	DestinationLocationID   string
	DestinationLocationType string
	DestinationCompanyID    string

	// Elegidos en la aprobación. TransitLocationID solo en rutas entre empresas:
	// bodega intermedia de la empresa destino.
	SourceLocationID   string
	SourceLocationType string
	SourceCompanyID    string
	TransitLocationID  string

	QuantityRequested decimal.Decimal
	QuantityApproved  *decimal.Decimal // nil hasta la revisión
	QuantityDelivered decimal.Decimal  // acumula entregas parciales

	Urgency     string
	Status      string
	Notes       string
	ReviewNotes string
	ReviewedBy  string

	// Checkpoints (efectos secundarios de las transiciones, no estado).
	ReviewedAt                     *time.Time
	WarehouseDeliveredAt           *time.Time
	DestinationWarehouseReceivedAt *time.Time
	ReceivedAt                     *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// SourceLocation devuelve la referencia de la ubicación origen elegida al aprobar.
func (r *InventoryRequest) SourceLocation() LocationRef {
	return LocationRef{ID: r.SourceLocationID, Type: r.SourceLocationType}
}

// DestinationLocation devuelve la referencia de la ubicación destino.
func (r *InventoryRequest) DestinationLocation() LocationRef {
	return LocationRef{ID: r.DestinationLocationID, Type: r.DestinationLocationType}
}

// CrossCompany indica si la ruta cruza empresas (origen y destino con dueño distinto).
func (r *InventoryRequest) CrossCompany() bool {
	return r.SourceCompanyID != "" && r.SourceCompanyID != r.DestinationCompanyID
}

// RemainingToDeliver devuelve lo aprobado aún no entregado (cero si no hay aprobación).
func (r *InventoryRequest) RemainingToDeliver() decimal.Decimal {
	if r.QuantityApproved == nil {
		return decimal.Zero
	}
	return r.QuantityApproved.Sub(r.QuantityDelivered)
}

// HoldingLocation devuelve la ubicación donde está retenida la mercancía en este
// momento del recorrido: la bodega de tránsito si ya se registró la recepción
// intermedia, la fuente original en caso contrario.
func (r *InventoryRequest) HoldingLocation() LocationRef {
	if r.DestinationWarehouseReceivedAt != nil && r.TransitLocationID != "" {
		return LocationRef{ID: r.TransitLocationID, Type: LocationTypeWarehouse}
	}
	return r.SourceLocation()
}

// HoldingCompanyID devuelve la empresa dueña de la ubicación que retiene la mercancía.
func (r *InventoryRequest) HoldingCompanyID() string {
	if r.DestinationWarehouseReceivedAt != nil && r.TransitLocationID != "" {
		return r.DestinationCompanyID
	}
	return r.SourceCompanyID
}

// Terminal indica si el estado no admite más transiciones.
func (r *InventoryRequest) Terminal() bool {
	return r.Status == RequestStatusRejected || r.Status == RequestStatusDelivered ||
		r.Status == RequestStatusCancelled
}
