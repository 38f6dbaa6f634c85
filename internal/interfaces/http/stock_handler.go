package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Almacen-api/internal/application/dto"
	"github.com/jhoicas/Almacen-api/internal/application/fulfillment"
	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/infrastructure/metrics"
)

// StockHandler maneja consultas y operaciones directas de stock (protegido).
type StockHandler struct {
	ops        *fulfillment.StockOperations
	reconciler *fulfillment.Reconciler
	collector  *metrics.Collector
}

// NewStockHandler construye el handler.
func NewStockHandler(ops *fulfillment.StockOperations, reconciler *fulfillment.Reconciler, collector *metrics.Collector) *StockHandler {
	return &StockHandler{ops: ops, reconciler: reconciler, collector: collector}
}

func (h *StockHandler) note(movementType string, err error) {
	if err == nil {
		h.collector.MovementRecorded(movementType)
		return
	}
	var insufficient *domain.InsufficientStockError
	if errors.As(err, &insufficient) {
		h.collector.InsufficientStock()
	}
	var invariant *domain.InvariantViolationError
	if errors.As(err, &invariant) {
		h.collector.InvariantViolation()
	}
}

// Adjust godoc
// @Summary      Corrección por conteo físico
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AdjustStockRequest  true  "item_id, location_id, new_quantity, reason"
// @Success      200   {object}  map[string]string
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/stock/adjust [post]
func (h *StockHandler) Adjust(c *fiber.Ctx) error {
	var in dto.AdjustStockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	err := h.ops.Adjust(c.Context(), GetCompanyID(c), GetUserID(c), GetRole(c),
		in.ItemID, in.LocationID, in.NewQuantity, in.Reason)
	h.note(entity.MovementTypeCountAdjustment, err)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"message": "ajuste registrado"})
}

// Return godoc
// @Summary      Devolución de material no usado a bodega
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReturnStockRequest  true  "item_id, from_location_id, to_warehouse_id, quantity"
// @Success      200   {object}  map[string]string
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/returns [post]
func (h *StockHandler) Return(c *fiber.Ctx) error {
	var in dto.ReturnStockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	err := h.ops.Return(c.Context(), GetCompanyID(c), GetUserID(c), GetRole(c),
		in.ItemID, in.FromLocationID, in.ToWarehouseID, in.Quantity, in.Reason)
	h.note(entity.MovementTypeReturn, err)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"message": "devolución registrada"})
}

// Damage godoc
// @Summary      Baja por daño o pérdida
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.DamageStockRequest  true  "item_id, location_id, quantity, reason"
// @Success      200   {object}  map[string]string
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/damage [post]
func (h *StockHandler) Damage(c *fiber.Ctx) error {
	var in dto.DamageStockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	err := h.ops.Damage(c.Context(), GetCompanyID(c), GetUserID(c), GetRole(c),
		in.ItemID, in.LocationID, in.Quantity, in.Reason)
	h.note(entity.MovementTypeDamage, err)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"message": "baja registrada"})
}

// GetStockRow godoc
// @Summary      Consultar stock de un ítem en una ubicación
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        item_id      query  string  true  "ID del ítem"
// @Param        location_id  query  string  true  "ID de la ubicación"
// @Success      200  {object}  dto.StockRowResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock [get]
func (h *StockHandler) GetStockRow(c *fiber.Ctx) error {
	row, err := h.ops.GetStockRow(GetCompanyID(c), c.Query("item_id"), c.Query("location_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ToStockRowResponse(row))
}

// ListMovements godoc
// @Summary      Historial de movimientos de un ítem en una ubicación
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        item_id      query  string  true   "ID del ítem"
// @Param        location_id  query  string  true   "ID de la ubicación"
// @Success      200  {array}  dto.MovementResponse
// @Router       /api/stock/movements [get]
func (h *StockHandler) ListMovements(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	page.DefaultPage()

	list, err := h.ops.ListMovements(GetCompanyID(c), c.Query("item_id"), c.Query("location_id"), page.Limit, page.Offset)
	if err != nil {
		return writeError(c, err)
	}
	out := make([]*dto.MovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, dto.ToMovementResponse(m))
	}
	return c.JSON(fiber.Map{"total": len(out), "movements": out})
}

// Reconcile godoc
// @Summary      Conciliar el libro mayor contra la fila de stock
// @Description  Suma los movimientos del ítem en la ubicación y la compara con la
//
//	cantidad materializada. Un desbalance indica bug o corrupción de datos.
//
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        item_id        query  string  true  "ID del ítem"
// @Param        location_id    query  string  true  "ID de la ubicación"
// @Param        location_type  query  string  true  "WAREHOUSE | SITE | VEHICLE"
// @Success      200  {object}  dto.ReconciliationResponse
// @Router       /api/stock/reconcile [get]
func (h *StockHandler) Reconcile(c *fiber.Ctx) error {
	itemID := c.Query("item_id")
	loc := entity.LocationRef{ID: c.Query("location_id"), Type: c.Query("location_type")}
	if itemID == "" || loc.ID == "" || !entity.ValidLocationType(loc.Type) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "item_id, location_id y location_type son obligatorios"})
	}

	report, err := h.reconciler.Check(itemID, loc)
	if err != nil && report == nil {
		return writeError(c, err)
	}
	if err != nil {
		h.collector.InvariantViolation()
	}
	return c.JSON(dto.ReconciliationResponse{
		ItemID:       report.ItemID,
		LocationID:   report.LocationID,
		LocationType: report.LocationType,
		LedgerSum:    report.LedgerSum,
		RowQuantity:  report.RowQuantity,
		Balanced:     report.Balanced,
	})
}
