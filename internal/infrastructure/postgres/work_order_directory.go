package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Almacen-api/internal/application/fulfillment"
)

var _ fulfillment.WorkOrderDirectory = (*WorkOrderDirectory)(nil)

// WorkOrderDirectory consulta mínima de existencia sobre la tabla de órdenes de trabajo.
// Las órdenes se administran en otro sistema; aquí solo se valida la referencia.
type WorkOrderDirectory struct {
	q Querier
}

func NewWorkOrderDirectory(q Querier) *WorkOrderDirectory {
	return &WorkOrderDirectory{q: q}
}

func (d *WorkOrderDirectory) Exists(ctx context.Context, workOrderID string) (bool, error) {
	var exists bool
	err := d.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM work_orders WHERE id = $1)`, workOrderID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check work order: %w", err)
	}
	return exists, nil
}
