package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Almacen-api/internal/domain/entity"
)

// CreateRequestRequest body para POST /api/requests.
type CreateRequestRequest struct {
	WorkOrderID           string          `json:"work_order_id"`
	ItemID                string          `json:"item_id"`
	DestinationLocationID string          `json:"destination_location_id"`
	Quantity              decimal.Decimal `json:"quantity"`
	Urgency               string          `json:"urgency,omitempty"`
	Notes                 string          `json:"notes,omitempty"`
}

// ApproveRequestRequest body para POST /api/requests/:id/approve.
type ApproveRequestRequest struct {
	SourceLocationID  string          `json:"source_location_id"`
	TransitLocationID string          `json:"transit_location_id,omitempty"`
	QuantityApproved  decimal.Decimal `json:"quantity_approved"`
	ReviewNotes       string          `json:"review_notes,omitempty"`
}

// RejectRequestRequest body para POST /api/requests/:id/reject.
type RejectRequestRequest struct {
	ReviewNotes string `json:"review_notes,omitempty"`
}

// DispatchRequestRequest body para POST /api/requests/:id/dispatch.
type DispatchRequestRequest struct {
	Quantity decimal.Decimal `json:"quantity,omitempty"`
	Notes    string          `json:"notes,omitempty"`
}

// ReceiveTransitRequest body para POST /api/requests/:id/receive.
type ReceiveTransitRequest struct {
	Quantity decimal.Decimal `json:"quantity,omitempty"`
}

// ConfirmReceiptRequest body para POST /api/requests/:id/confirm.
type ConfirmReceiptRequest struct {
	Quantity decimal.Decimal `json:"quantity"`
	Notes    string          `json:"notes,omitempty"`
}

// RequestResponse representación HTTP de una solicitud.
type RequestResponse struct {
	ID                      string           `json:"id"`
	CompanyID               string           `json:"company_id"`
	WorkOrderID             string           `json:"work_order_id"`
	ItemID                  string           `json:"item_id"`
	RequesterID             string           `json:"requester_id"`
	DestinationLocationID   string           `json:"destination_location_id"`
	DestinationLocationType string           `json:"destination_location_type"`
	SourceLocationID        string           `json:"source_location_id,omitempty"`
	SourceLocationType      string           `json:"source_location_type,omitempty"`
	TransitLocationID       string           `json:"transit_location_id,omitempty"`
	QuantityRequested       decimal.Decimal  `json:"quantity_requested"`
	QuantityApproved        *decimal.Decimal `json:"quantity_approved,omitempty"`
	QuantityDelivered       decimal.Decimal  `json:"quantity_delivered"`
	Urgency                 string           `json:"urgency"`
	Status                  string           `json:"status"`
	Notes                   string           `json:"notes,omitempty"`
	ReviewNotes             string           `json:"review_notes,omitempty"`
	ReviewedAt              *time.Time       `json:"reviewed_at,omitempty"`
	WarehouseDeliveredAt    *time.Time       `json:"warehouse_delivered_at,omitempty"`
	DestWarehouseReceivedAt *time.Time       `json:"destination_warehouse_received_at,omitempty"`
	ReceivedAt              *time.Time       `json:"received_at,omitempty"`
	CreatedAt               time.Time        `json:"created_at"`
}

// ToRequestResponse convierte la entidad a su representación HTTP.
func ToRequestResponse(r *entity.InventoryRequest) *RequestResponse {
	return &RequestResponse{
		ID:                      r.ID,
		CompanyID:               r.CompanyID,
		WorkOrderID:             r.WorkOrderID,
		ItemID:                  r.ItemID,
		RequesterID:             r.RequesterID,
		DestinationLocationID:   r.DestinationLocationID,
		DestinationLocationType: r.DestinationLocationType,
		SourceLocationID:        r.SourceLocationID,
		SourceLocationType:      r.SourceLocationType,
		TransitLocationID:       r.TransitLocationID,
		QuantityRequested:       r.QuantityRequested,
		QuantityApproved:        r.QuantityApproved,
		QuantityDelivered:       r.QuantityDelivered,
		Urgency:                 r.Urgency,
		Status:                  r.Status,
		Notes:                   r.Notes,
		ReviewNotes:             r.ReviewNotes,
		ReviewedAt:              r.ReviewedAt,
		WarehouseDeliveredAt:    r.WarehouseDeliveredAt,
		DestWarehouseReceivedAt: r.DestinationWarehouseReceivedAt,
		ReceivedAt:              r.ReceivedAt,
		CreatedAt:               r.CreatedAt,
	}
}
