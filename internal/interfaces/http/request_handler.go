package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Almacen-api/internal/application/dto"
	"github.com/jhoicas/Almacen-api/internal/application/fulfillment"
	domfulfillment "github.com/jhoicas/Almacen-api/internal/domain/fulfillment"
	"github.com/jhoicas/Almacen-api/internal/infrastructure/metrics"
)

// RequestHandler maneja las peticiones HTTP del ciclo de vida de solicitudes (protegido).
type RequestHandler struct {
	workflow      *fulfillment.RequestWorkflow
	deliveryNotes *fulfillment.DeliveryNoteService
	collector     *metrics.Collector
}

// NewRequestHandler construye el handler.
func NewRequestHandler(workflow *fulfillment.RequestWorkflow, deliveryNotes *fulfillment.DeliveryNoteService, collector *metrics.Collector) *RequestHandler {
	return &RequestHandler{workflow: workflow, deliveryNotes: deliveryNotes, collector: collector}
}

func (h *RequestHandler) observe(action string, err error) {
	if err != nil {
		h.collector.RequestTransition(action, "error")
		return
	}
	h.collector.RequestTransition(action, "ok")
}

// Create godoc
// @Summary      Crear solicitud de materiales
// @Tags         requests
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateRequestRequest  true  "work_order_id, item_id, destination_location_id, quantity, urgency, notes"
// @Success      201   {object}  dto.RequestResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/requests [post]
func (h *RequestHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateRequestRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	req, err := h.workflow.CreateRequest(c.Context(), fulfillment.CreateRequestInput{
		CompanyID:             GetCompanyID(c),
		RequesterID:           GetUserID(c),
		Role:                  GetRole(c),
		WorkOrderID:           in.WorkOrderID,
		ItemID:                in.ItemID,
		DestinationLocationID: in.DestinationLocationID,
		Quantity:              in.Quantity,
		Urgency:               in.Urgency,
		Notes:                 in.Notes,
	})
	h.observe(domfulfillment.ActionCreateRequest, err)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToRequestResponse(req))
}

// Approve godoc
// @Summary      Aprobar solicitud (reserva stock en la fuente elegida)
// @Tags         requests
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la solicitud"
// @Param        body  body  dto.ApproveRequestRequest  true  "source_location_id, transit_location_id (rutas entre empresas), quantity_approved"
// @Success      200   {object}  dto.RequestResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/requests/{id}/approve [post]
func (h *RequestHandler) Approve(c *fiber.Ctx) error {
	var in dto.ApproveRequestRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	req, err := h.workflow.ApproveRequest(c.Context(), fulfillment.ApproveInput{
		RequestID:         c.Params("id"),
		CompanyID:         GetCompanyID(c),
		ApproverID:        GetUserID(c),
		Role:              GetRole(c),
		SourceLocationID:  in.SourceLocationID,
		TransitLocationID: in.TransitLocationID,
		QuantityApproved:  in.QuantityApproved,
		ReviewNotes:       in.ReviewNotes,
	})
	h.observe(domfulfillment.ActionApproveRequest, err)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ToRequestResponse(req))
}

// Reject godoc
// @Summary      Rechazar solicitud pendiente
// @Tags         requests
// @Security     Bearer
// @Param        id  path  string  true  "ID de la solicitud"
// @Success      200  {object}  dto.RequestResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/requests/{id}/reject [post]
func (h *RequestHandler) Reject(c *fiber.Ctx) error {
	var in dto.RejectRequestRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	req, err := h.workflow.RejectRequest(c.Context(), fulfillment.ReviewInput{
		RequestID:   c.Params("id"),
		CompanyID:   GetCompanyID(c),
		ReviewerID:  GetUserID(c),
		Role:        GetRole(c),
		ReviewNotes: in.ReviewNotes,
	})
	h.observe(domfulfillment.ActionRejectRequest, err)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ToRequestResponse(req))
}

// Dispatch godoc
// @Summary      Registrar despacho desde bodega (checkpoint, no mueve stock)
// @Tags         requests
// @Security     Bearer
// @Param        id  path  string  true  "ID de la solicitud"
// @Success      200  {object}  dto.RequestResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/requests/{id}/dispatch [post]
func (h *RequestHandler) Dispatch(c *fiber.Ctx) error {
	var in dto.DispatchRequestRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	req, err := h.workflow.DispatchFromWarehouse(c.Context(), fulfillment.DispatchInput{
		RequestID: c.Params("id"),
		CompanyID: GetCompanyID(c),
		HandlerID: GetUserID(c),
		Role:      GetRole(c),
		Quantity:  in.Quantity,
		Notes:     in.Notes,
	})
	h.observe(domfulfillment.ActionDispatch, err)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ToRequestResponse(req))
}

// ReceiveTransit godoc
// @Summary      Registrar recepción en bodega de tránsito (rutas entre empresas)
// @Tags         requests
// @Security     Bearer
// @Param        id  path  string  true  "ID de la solicitud"
// @Success      200  {object}  dto.RequestResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/requests/{id}/receive [post]
func (h *RequestHandler) ReceiveTransit(c *fiber.Ctx) error {
	var in dto.ReceiveTransitRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	req, err := h.workflow.ReceiveAtDestinationWarehouse(c.Context(), fulfillment.ReceiveTransitInput{
		RequestID:  c.Params("id"),
		CompanyID:  GetCompanyID(c),
		ReceiverID: GetUserID(c),
		Role:       GetRole(c),
		Quantity:   in.Quantity,
	})
	h.observe(domfulfillment.ActionReceiveTransit, err)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ToRequestResponse(req))
}

// Confirm godoc
// @Summary      Confirmar recepción en destino (mueve stock y acumula la entrega)
// @Tags         requests
// @Security     Bearer
// @Param        id  path  string  true  "ID de la solicitud"
// @Success      200  {object}  dto.RequestResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/requests/{id}/confirm [post]
func (h *RequestHandler) Confirm(c *fiber.Ctx) error {
	var in dto.ConfirmReceiptRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	req, err := h.workflow.ConfirmReceipt(c.Context(), fulfillment.ConfirmReceiptInput{
		RequestID:   c.Params("id"),
		CompanyID:   GetCompanyID(c),
		RecipientID: GetUserID(c),
		Role:        GetRole(c),
		Quantity:    in.Quantity,
		Notes:       in.Notes,
	})
	h.observe(domfulfillment.ActionConfirmReceipt, err)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ToRequestResponse(req))
}

// Cancel godoc
// @Summary      Cancelar solicitud (libera la reserva si había aprobación)
// @Tags         requests
// @Security     Bearer
// @Param        id  path  string  true  "ID de la solicitud"
// @Success      200  {object}  dto.RequestResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/requests/{id}/cancel [post]
func (h *RequestHandler) Cancel(c *fiber.Ctx) error {
	req, err := h.workflow.CancelRequest(c.Context(), fulfillment.CancelInput{
		RequestID: c.Params("id"),
		CompanyID: GetCompanyID(c),
		CallerID:  GetUserID(c),
		Role:      GetRole(c),
	})
	h.observe(domfulfillment.ActionCancelRequest, err)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ToRequestResponse(req))
}

// GetByID godoc
// @Summary      Consultar una solicitud
// @Tags         requests
// @Security     Bearer
// @Param        id  path  string  true  "ID de la solicitud"
// @Success      200  {object}  dto.RequestResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/requests/{id} [get]
func (h *RequestHandler) GetByID(c *fiber.Ctx) error {
	req, err := h.workflow.GetRequest(GetCompanyID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ToRequestResponse(req))
}

// List godoc
// @Summary      Listar solicitudes de la empresa
// @Tags         requests
// @Security     Bearer
// @Param        status  query  string  false  "Filtrar por estado (PENDING, APPROVED, ...)"
// @Success      200  {array}  dto.RequestResponse
// @Router       /api/requests [get]
func (h *RequestHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	page.DefaultPage()

	list, err := h.workflow.ListRequests(GetCompanyID(c), c.Query("status"), page.Limit, page.Offset)
	if err != nil {
		return writeError(c, err)
	}
	out := make([]*dto.RequestResponse, 0, len(list))
	for _, r := range list {
		out = append(out, dto.ToRequestResponse(r))
	}
	return c.JSON(fiber.Map{"total": len(out), "requests": out})
}

// DeliveryNote godoc
// @Summary      Descargar la guía de entrega en PDF
// @Tags         requests
// @Security     Bearer
// @Produce      application/pdf
// @Param        id  path  string  true  "ID de la solicitud"
// @Success      200  {file}  byte
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/requests/{id}/delivery-note [get]
func (h *RequestHandler) DeliveryNote(c *fiber.Ctx) error {
	pdfBytes, err := h.deliveryNotes.Generate(c.Context(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="guia-entrega.pdf"`)
	return c.Send(pdfBytes)
}
