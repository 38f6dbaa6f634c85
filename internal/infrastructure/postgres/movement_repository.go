package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo implementación del libro mayor sobre PostgreSQL (usable con pool o tx).
// Solo INSERT y SELECT: sin UPDATE ni DELETE, el libro es inmutable.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

const movementColumns = `id, item_id, type,
	from_location_id, from_location_type, from_company_id,
	to_location_id, to_location_type, to_company_id,
	quantity, unit_cost, total_cost, request_id, work_order_id, reason, date, created_at, created_by`

// Create persiste una línea del libro mayor.
func (r *MovementRepo) Create(m *entity.MovementRecord) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	query := `
		INSERT INTO stock_movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`
	_, err := r.q.Exec(context.Background(), query,
		m.ID, m.ItemID, m.Type,
		nullable(m.FromLocationID), nullable(m.FromLocationType), nullable(m.FromCompanyID),
		nullable(m.ToLocationID), nullable(m.ToLocationType), nullable(m.ToCompanyID),
		m.Quantity, m.UnitCost, m.TotalCost,
		nullable(m.RequestID), nullable(m.WorkOrderID), nullable(m.Reason),
		m.Date, m.CreatedAt, nullable(m.CreatedBy),
	)
	if err != nil {
		return fmt.Errorf("create stock movement: %w", err)
	}
	return nil
}

// GetByID obtiene un movimiento por ID.
func (r *MovementRepo) GetByID(id string) (*entity.MovementRecord, error) {
	query := `SELECT ` + movementColumns + ` FROM stock_movements WHERE id = $1`
	row := r.q.QueryRow(context.Background(), query, id)
	m, err := scanMovement(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movement: %w", err)
	}
	return m, nil
}

// ListByItemAndLocation lista movimientos que tocan la ubicación (como origen o
// destino), más reciente primero.
func (r *MovementRepo) ListByItemAndLocation(itemID string, loc entity.LocationRef, limit, offset int) ([]*entity.MovementRecord, error) {
	query := `
		SELECT ` + movementColumns + `
		FROM stock_movements
		WHERE item_id = $1 AND (
			(from_location_id = $2 AND from_location_type = $3) OR
			(to_location_id = $2 AND to_location_type = $3)
		)
		ORDER BY date DESC, created_at DESC
		LIMIT $4 OFFSET $5`
	return r.list(query, itemID, loc.ID, loc.Type, limit, offset)
}

// ListByRequest lista los movimientos originados por una solicitud, en orden de creación.
func (r *MovementRepo) ListByRequest(requestID string) ([]*entity.MovementRecord, error) {
	query := `
		SELECT ` + movementColumns + `
		FROM stock_movements WHERE request_id = $1 ORDER BY created_at`
	return r.list(query, requestID)
}

// SumByItemAndLocation devuelve la suma con signo de los movimientos que tocan la
// ubicación: +quantity donde es destino, -quantity donde es origen. Debe cuadrar
// con la cantidad física de la fila de stock.
func (r *MovementRepo) SumByItemAndLocation(itemID string, loc entity.LocationRef) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(
			CASE WHEN to_location_id = $2 AND to_location_type = $3 THEN quantity ELSE 0 END -
			CASE WHEN from_location_id = $2 AND from_location_type = $3 THEN quantity ELSE 0 END
		), 0)
		FROM stock_movements WHERE item_id = $1`
	var sum decimal.Decimal
	err := r.q.QueryRow(context.Background(), query, itemID, loc.ID, loc.Type).Scan(&sum)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum movements: %w", err)
	}
	return sum, nil
}

func (r *MovementRepo) list(query string, args ...any) ([]*entity.MovementRecord, error) {
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.MovementRecord
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

func scanMovement(row pgx.Row) (*entity.MovementRecord, error) {
	var m entity.MovementRecord
	var fromID, fromType, fromCompany, toID, toType, toCompany *string
	var requestID, workOrderID, reason, createdBy *string
	err := row.Scan(
		&m.ID, &m.ItemID, &m.Type,
		&fromID, &fromType, &fromCompany,
		&toID, &toType, &toCompany,
		&m.Quantity, &m.UnitCost, &m.TotalCost,
		&requestID, &workOrderID, &reason, &m.Date, &m.CreatedAt, &createdBy,
	)
	if err != nil {
		return nil, err
	}
	m.FromLocationID = fromNullable(fromID)
	m.FromLocationType = fromNullable(fromType)
	m.FromCompanyID = fromNullable(fromCompany)
	m.ToLocationID = fromNullable(toID)
	m.ToLocationType = fromNullable(toType)
	m.ToCompanyID = fromNullable(toCompany)
	m.RequestID = fromNullable(requestID)
	m.WorkOrderID = fromNullable(workOrderID)
	m.Reason = fromNullable(reason)
	m.CreatedBy = fromNullable(createdBy)
	return &m, nil
}
