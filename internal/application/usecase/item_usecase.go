package usecase

import (
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Almacen-api/internal/application/dto"
	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

// ItemUseCase casos de uso CRUD para el catálogo de ítems. El stock se maneja
// vía el libro mayor; aquí solo atributos. El borrado es lógico.
type ItemUseCase struct {
	repo repository.ItemRepository
}

// NewItemUseCase construye el caso de uso.
func NewItemUseCase(repo repository.ItemRepository) *ItemUseCase {
	return &ItemUseCase{repo: repo}
}

// Create crea un nuevo ítem. El código es único por empresa.
func (uc *ItemUseCase) Create(companyID string, in dto.CreateItemRequest) (*dto.ItemResponse, error) {
	if in.Code == "" || in.Name == "" {
		return nil, domain.ErrInvalidInput
	}
	existing, _ := uc.repo.GetByCompanyAndCode(companyID, in.Code)
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	if in.UnitMeasure == "" {
		in.UnitMeasure = "UND"
	}
	now := time.Now()
	item := &entity.Item{
		ID:              uuid.New().String(),
		CompanyID:       companyID,
		Code:            in.Code,
		Name:            in.Name,
		Description:     in.Description,
		UnitMeasure:     in.UnitMeasure,
		ReorderPoint:    in.ReorderPoint,
		ReorderQuantity: in.ReorderQuantity,
		UnitCost:        in.UnitCost,
		Active:          true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := uc.repo.Create(item); err != nil {
		return nil, err
	}
	return dto.ToItemResponse(item), nil
}

// GetByID obtiene un ítem acotado a la empresa del caller.
func (uc *ItemUseCase) GetByID(companyID, id string) (*dto.ItemResponse, error) {
	item, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if item == nil || item.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	return dto.ToItemResponse(item), nil
}

// Update actualiza atributos mutables. La identidad (código, empresa) no cambia.
func (uc *ItemUseCase) Update(companyID, id string, in dto.UpdateItemRequest) (*dto.ItemResponse, error) {
	item, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if item == nil || item.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	if in.Name != nil {
		item.Name = *in.Name
	}
	if in.Description != nil {
		item.Description = *in.Description
	}
	if in.UnitMeasure != nil {
		item.UnitMeasure = *in.UnitMeasure
	}
	if in.ReorderPoint != nil {
		item.ReorderPoint = *in.ReorderPoint
	}
	if in.ReorderQuantity != nil {
		item.ReorderQuantity = *in.ReorderQuantity
	}
	if in.UnitCost != nil {
		item.UnitCost = *in.UnitCost
	}
	item.UpdatedAt = time.Now()
	if err := uc.repo.Update(item); err != nil {
		return nil, err
	}
	return dto.ToItemResponse(item), nil
}

// Deactivate aplica borrado lógico: el ítem deja de aceptar solicitudes nuevas
// pero su historial de movimientos permanece.
func (uc *ItemUseCase) Deactivate(companyID, id string) error {
	item, err := uc.repo.GetByID(id)
	if err != nil {
		return err
	}
	if item == nil || item.CompanyID != companyID {
		return domain.ErrNotFound
	}
	item.Active = false
	item.UpdatedAt = time.Now()
	return uc.repo.Update(item)
}

// List lista ítems de la empresa (solo activos por defecto).
func (uc *ItemUseCase) List(companyID string, includeInactive bool, limit, offset int) ([]*dto.ItemResponse, error) {
	items, err := uc.repo.List(companyID, !includeInactive, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.ItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, dto.ToItemResponse(it))
	}
	return out, nil
}
