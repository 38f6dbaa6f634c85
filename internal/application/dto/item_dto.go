package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Almacen-api/internal/domain/entity"
)

// CreateItemRequest body para POST /api/items.
type CreateItemRequest struct {
	Code            string          `json:"code"`
	Name            string          `json:"name"`
	Description     string          `json:"description,omitempty"`
	UnitMeasure     string          `json:"unit_measure,omitempty"`
	ReorderPoint    decimal.Decimal `json:"reorder_point,omitempty"`
	ReorderQuantity decimal.Decimal `json:"reorder_quantity,omitempty"`
	UnitCost        decimal.Decimal `json:"unit_cost,omitempty"`
}

// UpdateItemRequest body para PUT /api/items/:id (campos opcionales).
type UpdateItemRequest struct {
	Name            *string          `json:"name,omitempty"`
	Description     *string          `json:"description,omitempty"`
	UnitMeasure     *string          `json:"unit_measure,omitempty"`
	ReorderPoint    *decimal.Decimal `json:"reorder_point,omitempty"`
	ReorderQuantity *decimal.Decimal `json:"reorder_quantity,omitempty"`
	UnitCost        *decimal.Decimal `json:"unit_cost,omitempty"`
}

// ItemResponse representación HTTP de un ítem del catálogo.
type ItemResponse struct {
	ID              string          `json:"id"`
	CompanyID       string          `json:"company_id"`
	Code            string          `json:"code"`
	Name            string          `json:"name"`
	Description     string          `json:"description,omitempty"`
	UnitMeasure     string          `json:"unit_measure"`
	ReorderPoint    decimal.Decimal `json:"reorder_point"`
	ReorderQuantity decimal.Decimal `json:"reorder_quantity"`
	UnitCost        decimal.Decimal `json:"unit_cost"`
	Active          bool            `json:"active"`
	CreatedAt       time.Time       `json:"created_at"`
}

// ToItemResponse convierte la entidad a su representación HTTP.
func ToItemResponse(i *entity.Item) *ItemResponse {
	return &ItemResponse{
		ID:              i.ID,
		CompanyID:       i.CompanyID,
		Code:            i.Code,
		Name:            i.Name,
		Description:     i.Description,
		UnitMeasure:     i.UnitMeasure,
		ReorderPoint:    i.ReorderPoint,
		ReorderQuantity: i.ReorderQuantity,
		UnitCost:        i.UnitCost,
		Active:          i.Active,
		CreatedAt:       i.CreatedAt,
	}
}
