package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Almacen-api/internal/domain/entity"
)

// AdjustStockRequest body para POST /api/stock/adjust (corrección por conteo).
type AdjustStockRequest struct {
	ItemID      string          `json:"item_id"`
	LocationID  string          `json:"location_id"`
	NewQuantity decimal.Decimal `json:"new_quantity"`
	Reason      string          `json:"reason"`
}

// ReturnStockRequest body para POST /api/stock/returns.
type ReturnStockRequest struct {
	ItemID         string          `json:"item_id"`
	FromLocationID string          `json:"from_location_id"`
	ToWarehouseID  string          `json:"to_warehouse_id"`
	Quantity       decimal.Decimal `json:"quantity"`
	Reason         string          `json:"reason,omitempty"`
}

// DamageStockRequest body para POST /api/stock/damage.
type DamageStockRequest struct {
	ItemID     string          `json:"item_id"`
	LocationID string          `json:"location_id"`
	Quantity   decimal.Decimal `json:"quantity"`
	Reason     string          `json:"reason"`
}

// StockRowResponse fila de stock en respuestas.
type StockRowResponse struct {
	ItemID           string          `json:"item_id"`
	LocationID       string          `json:"location_id"`
	LocationType     string          `json:"location_type"`
	Quantity         decimal.Decimal `json:"quantity"`
	ReservedQuantity decimal.Decimal `json:"reserved_quantity"`
	Available        decimal.Decimal `json:"available_quantity"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// ToStockRowResponse convierte la fila a su representación HTTP.
func ToStockRowResponse(s *entity.StockRow) *StockRowResponse {
	return &StockRowResponse{
		ItemID:           s.ItemID,
		LocationID:       s.LocationID,
		LocationType:     s.LocationType,
		Quantity:         s.Quantity,
		ReservedQuantity: s.ReservedQuantity,
		Available:        s.Available(),
		UpdatedAt:        s.UpdatedAt,
	}
}

// MovementResponse línea del libro mayor en respuestas.
type MovementResponse struct {
	ID               string          `json:"id"`
	ItemID           string          `json:"item_id"`
	Type             string          `json:"type"`
	FromLocationID   string          `json:"from_location_id,omitempty"`
	FromLocationType string          `json:"from_location_type,omitempty"`
	ToLocationID     string          `json:"to_location_id,omitempty"`
	ToLocationType   string          `json:"to_location_type,omitempty"`
	Quantity         decimal.Decimal `json:"quantity"`
	UnitCost         decimal.Decimal `json:"unit_cost"`
	TotalCost        decimal.Decimal `json:"total_cost"`
	RequestID        string          `json:"request_id,omitempty"`
	WorkOrderID      string          `json:"work_order_id,omitempty"`
	Reason           string          `json:"reason,omitempty"`
	Date             time.Time       `json:"date"`
	CreatedBy        string          `json:"created_by,omitempty"`
}

// ToMovementResponse convierte el movimiento a su representación HTTP.
func ToMovementResponse(m *entity.MovementRecord) *MovementResponse {
	return &MovementResponse{
		ID:               m.ID,
		ItemID:           m.ItemID,
		Type:             m.Type,
		FromLocationID:   m.FromLocationID,
		FromLocationType: m.FromLocationType,
		ToLocationID:     m.ToLocationID,
		ToLocationType:   m.ToLocationType,
		Quantity:         m.Quantity,
		UnitCost:         m.UnitCost,
		TotalCost:        m.TotalCost,
		RequestID:        m.RequestID,
		WorkOrderID:      m.WorkOrderID,
		Reason:           m.Reason,
		Date:             m.Date,
		CreatedBy:        m.CreatedBy,
	}
}

// ReconciliationResponse resultado de conciliación para el operador.
type ReconciliationResponse struct {
	ItemID       string          `json:"item_id"`
	LocationID   string          `json:"location_id"`
	LocationType string          `json:"location_type"`
	LedgerSum    decimal.Decimal `json:"ledger_sum"`
	RowQuantity  decimal.Decimal `json:"row_quantity"`
	Balanced     bool            `json:"balanced"`
}
