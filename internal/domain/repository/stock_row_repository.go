package repository

import "github.com/jhoicas/Almacen-api/internal/domain/entity"

// StockRowRepository define el puerto para consultar/actualizar la fila de stock
// por ítem + ubicación. Las operaciones mutantes se usan dentro de transacciones
// para garantizar consistencia bajo acceso concurrente.
type StockRowRepository interface {
	// Get devuelve la fila, o una fila en cero (sin empresa) si aún no existe.
	Get(itemID string, loc entity.LocationRef) (*entity.StockRow, error)
	// GetForUpdate igual que Get pero bloquea la fila (SELECT FOR UPDATE).
	GetForUpdate(itemID string, loc entity.LocationRef) (*entity.StockRow, error)
	Upsert(row *entity.StockRow) error
	ListByItem(itemID string) ([]*entity.StockRow, error)
	ListByLocation(loc entity.LocationRef) ([]*entity.StockRow, error)
}
