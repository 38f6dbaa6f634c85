package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

var _ repository.RequestRepository = (*RequestRepo)(nil)

// RequestRepo implementación de RequestRepository sobre PostgreSQL (usable con pool o tx).
type RequestRepo struct {
	q Querier
}

// NewRequestRepository construye el adaptador. Pasar pool o tx (Querier).
func NewRequestRepository(q Querier) *RequestRepo {
	return &RequestRepo{q: q}
}

const requestColumns = `id, company_id, work_order_id, item_id, requester_id,
	destination_location_id, destination_location_type, destination_company_id,
	source_location_id, source_location_type, source_company_id, transit_location_id,
	quantity_requested, quantity_approved, quantity_delivered,
	urgency, status, notes, review_notes, reviewed_by,
	reviewed_at, warehouse_delivered_at, destination_warehouse_received_at, received_at,
	created_at, updated_at`

// Create persiste una solicitud nueva (PENDING).
func (r *RequestRepo) Create(req *entity.InventoryRequest) error {
	query := `
		INSERT INTO inventory_requests (` + requestColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
			$16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26)`
	_, err := r.q.Exec(context.Background(), query,
		req.ID, req.CompanyID, req.WorkOrderID, req.ItemID, req.RequesterID,
		req.DestinationLocationID, req.DestinationLocationType, req.DestinationCompanyID,
		nullable(req.SourceLocationID), nullable(req.SourceLocationType), nullable(req.SourceCompanyID), nullable(req.TransitLocationID),
		req.QuantityRequested, req.QuantityApproved, req.QuantityDelivered,
		req.Urgency, req.Status, nullable(req.Notes), nullable(req.ReviewNotes), nullable(req.ReviewedBy),
		req.ReviewedAt, req.WarehouseDeliveredAt, req.DestinationWarehouseReceivedAt, req.ReceivedAt,
		req.CreatedAt, req.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert inventory request: %w", err)
	}
	return nil
}

// GetByID obtiene una solicitud por ID.
func (r *RequestRepo) GetByID(id string) (*entity.InventoryRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM inventory_requests WHERE id = $1`
	return r.getOne(query, id)
}

// GetByIDForUpdate obtiene la solicitud bloqueando su fila (SELECT FOR UPDATE)
// para serializar transiciones concurrentes.
func (r *RequestRepo) GetByIDForUpdate(id string) (*entity.InventoryRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM inventory_requests WHERE id = $1 FOR UPDATE`
	return r.getOne(query, id)
}

func (r *RequestRepo) getOne(query, id string) (*entity.InventoryRequest, error) {
	row := r.q.QueryRow(context.Background(), query, id)
	req, err := scanRequest(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get inventory request: %w", err)
	}
	return req, nil
}

// Update persiste el estado completo de la solicitud (las filas nunca se borran).
func (r *RequestRepo) Update(req *entity.InventoryRequest) error {
	query := `
		UPDATE inventory_requests SET
			source_location_id = $2, source_location_type = $3, source_company_id = $4, transit_location_id = $5,
			quantity_approved = $6, quantity_delivered = $7,
			status = $8, notes = $9, review_notes = $10, reviewed_by = $11,
			reviewed_at = $12, warehouse_delivered_at = $13, destination_warehouse_received_at = $14, received_at = $15,
			updated_at = $16
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		req.ID,
		nullable(req.SourceLocationID), nullable(req.SourceLocationType), nullable(req.SourceCompanyID), nullable(req.TransitLocationID),
		req.QuantityApproved, req.QuantityDelivered,
		req.Status, nullable(req.Notes), nullable(req.ReviewNotes), nullable(req.ReviewedBy),
		req.ReviewedAt, req.WarehouseDeliveredAt, req.DestinationWarehouseReceivedAt, req.ReceivedAt,
		req.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update inventory request: %w", err)
	}
	return nil
}

// ListByCompany lista solicitudes de la empresa, con filtro opcional de estado,
// más reciente primero.
func (r *RequestRepo) ListByCompany(companyID, status string, limit, offset int) ([]*entity.InventoryRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM inventory_requests WHERE company_id = $1`
	args := []any{companyID}
	pos := 2
	if status != "" {
		query += fmt.Sprintf(" AND status = $%d", pos)
		args = append(args, status)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	defer rows.Close()
	var list []*entity.InventoryRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan request: %w", err)
		}
		list = append(list, req)
	}
	return list, rows.Err()
}

func scanRequest(row pgx.Row) (*entity.InventoryRequest, error) {
	var req entity.InventoryRequest
	var sourceID, sourceType, sourceCompany, transitID *string
	var notes, reviewNotes, reviewedBy *string
	err := row.Scan(
		&req.ID, &req.CompanyID, &req.WorkOrderID, &req.ItemID, &req.RequesterID,
		&req.DestinationLocationID, &req.DestinationLocationType, &req.DestinationCompanyID,
		&sourceID, &sourceType, &sourceCompany, &transitID,
		&req.QuantityRequested, &req.QuantityApproved, &req.QuantityDelivered,
		&req.Urgency, &req.Status, &notes, &reviewNotes, &reviewedBy,
		&req.ReviewedAt, &req.WarehouseDeliveredAt, &req.DestinationWarehouseReceivedAt, &req.ReceivedAt,
		&req.CreatedAt, &req.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	req.SourceLocationID = fromNullable(sourceID)
	req.SourceLocationType = fromNullable(sourceType)
	req.SourceCompanyID = fromNullable(sourceCompany)
	req.TransitLocationID = fromNullable(transitID)
	req.Notes = fromNullable(notes)
	req.ReviewNotes = fromNullable(reviewNotes)
	req.ReviewedBy = fromNullable(reviewedBy)
	return &req, nil
}
