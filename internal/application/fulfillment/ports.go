package fulfillment

import (
	"context"

	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios
// atados a esa tx. Garantiza atomicidad para el motor de solicitudes: o todo el bloque
// se confirma o nada se escribe.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		stockRepo repository.StockRowRepository,
		movRepo repository.MovementRepository,
		requestRepo repository.RequestRepository,
	) error) error
}

// Authorizer responde si un rol puede ejecutar una acción. La política vive fuera
// del workflow: aquí solo se consulta el booleano.
type Authorizer interface {
	CanPerform(role, action string) bool
}

// WorkOrderDirectory es el colaborador externo que valida órdenes de trabajo.
// El core solo pregunta existencia; nunca consulta sus internos.
type WorkOrderDirectory interface {
	Exists(ctx context.Context, workOrderID string) (bool, error)
}
