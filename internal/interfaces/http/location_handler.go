package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Almacen-api/internal/application/dto"
	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

// LocationHandler directorio de ubicaciones, solo lectura (protegido).
type LocationHandler struct {
	repo repository.LocationRepository
}

// NewLocationHandler construye el handler.
func NewLocationHandler(repo repository.LocationRepository) *LocationHandler {
	return &LocationHandler{repo: repo}
}

type locationResponse struct {
	ID     string `json:"id"`
	Type   string `json:"type"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

func toLocationResponse(l *entity.Location) locationResponse {
	return locationResponse{ID: l.ID, Type: l.Type, Name: l.Name, Active: l.Active}
}

// List godoc
// @Summary      Listar ubicaciones de la empresa
// @Tags         locations
// @Security     Bearer
// @Param        type  query  string  false  "Filtrar por tipo (WAREHOUSE | SITE | VEHICLE)"
// @Success      200  {array}  map[string]any
// @Router       /api/locations [get]
func (h *LocationHandler) List(c *fiber.Ctx) error {
	locationType := c.Query("type")
	if locationType != "" && !entity.ValidLocationType(locationType) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "tipo de ubicación inválido"})
	}

	list, err := h.repo.ListByCompany(GetCompanyID(c), locationType)
	if err != nil {
		return writeError(c, err)
	}
	out := make([]locationResponse, 0, len(list))
	for _, l := range list {
		out = append(out, toLocationResponse(l))
	}
	return c.JSON(fiber.Map{"total": len(out), "locations": out})
}

// GetByID godoc
// @Summary      Consultar ubicación
// @Tags         locations
// @Security     Bearer
// @Param        id  path  string  true  "ID de la ubicación"
// @Success      200  {object}  map[string]any
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/locations/{id} [get]
func (h *LocationHandler) GetByID(c *fiber.Ctx) error {
	loc, err := h.repo.GetByID(c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	if loc == nil || loc.CompanyID != GetCompanyID(c) {
		return writeError(c, domain.ErrNotFound)
	}
	return c.JSON(toLocationResponse(loc))
}
