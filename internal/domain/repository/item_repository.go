package repository

import "github.com/jhoicas/Almacen-api/internal/domain/entity"

// ItemRepository define el puerto de persistencia del catálogo de ítems.
// El borrado es lógico (Active = false); las filas nunca se eliminan.
type ItemRepository interface {
	Create(item *entity.Item) error
	GetByID(id string) (*entity.Item, error)
	GetByCompanyAndCode(companyID, code string) (*entity.Item, error)
	Update(item *entity.Item) error
	List(companyID string, onlyActive bool, limit, offset int) ([]*entity.Item, error)
}
