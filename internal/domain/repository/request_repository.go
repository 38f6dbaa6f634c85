package repository

import "github.com/jhoicas/Almacen-api/internal/domain/entity"

// RequestRepository define el puerto de persistencia de solicitudes de repuestos.
type RequestRepository interface {
	Create(r *entity.InventoryRequest) error
	GetByID(id string) (*entity.InventoryRequest, error)
	// GetByIDForUpdate bloquea la fila de la solicitud (SELECT FOR UPDATE) para
	// serializar transiciones concurrentes sobre la misma solicitud.
	GetByIDForUpdate(id string) (*entity.InventoryRequest, error)
	Update(r *entity.InventoryRequest) error
	ListByCompany(companyID, status string, limit, offset int) ([]*entity.InventoryRequest, error)
}
