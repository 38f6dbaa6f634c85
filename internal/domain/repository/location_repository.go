package repository

import "github.com/jhoicas/Almacen-api/internal/domain/entity"

// LocationRepository define el puerto de solo lectura sobre el directorio de
// ubicaciones (bodegas, obras, vehículos). El core lo consulta para resolver
// tipo, empresa dueña y vigencia; la administración del directorio es externa.
type LocationRepository interface {
	GetByID(id string) (*entity.Location, error)
	// ListByCompany lista las ubicaciones de la empresa; locationType vacío = todas.
	ListByCompany(companyID, locationType string) ([]*entity.Location, error)
}
