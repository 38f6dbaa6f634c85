package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

var _ repository.StockRowRepository = (*StockRowRepo)(nil)

// StockRowRepo implementación de StockRowRepository sobre PostgreSQL (usable con pool o tx).
type StockRowRepo struct {
	q Querier
}

// NewStockRowRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRowRepository(q Querier) *StockRowRepo {
	return &StockRowRepo{q: q}
}

const stockRowColumns = "item_id, location_id, location_type, company_id, quantity, reserved_quantity, updated_at"

// Get obtiene la fila de stock de un ítem en una ubicación. Si no existe devuelve
// una fila en cero, lista para Upsert.
func (r *StockRowRepo) Get(itemID string, loc entity.LocationRef) (*entity.StockRow, error) {
	query := `
		SELECT ` + stockRowColumns + `
		FROM stock_rows WHERE item_id = $1 AND location_id = $2 AND location_type = $3`
	return r.scanOne(query, itemID, loc, "get stock row")
}

// GetForUpdate obtiene la fila y la bloquea (SELECT FOR UPDATE) para la
// lectura-modificación-escritura atómica del libro de stock. Si la fila aún no
// existe se materializa en cero y se vuelve a bloquear: sin fila no hay nada que
// bloquear, y dos transacciones estrenando la misma (ítem, ubicación) se pisarían
// el Upsert absoluto calculado sobre lecturas cero sin serializar.
func (r *StockRowRepo) GetForUpdate(itemID string, loc entity.LocationRef) (*entity.StockRow, error) {
	query := `
		SELECT ` + stockRowColumns + `
		FROM stock_rows WHERE item_id = $1 AND location_id = $2 AND location_type = $3
		FOR UPDATE`
	row, err := r.scanRow(query, itemID, loc)
	if err == nil {
		return row, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("get stock row for update: %w", err)
	}
	insert := `
		INSERT INTO stock_rows (item_id, location_id, location_type, quantity, reserved_quantity, updated_at)
		VALUES ($1, $2, $3, 0, 0, now())
		ON CONFLICT (item_id, location_id, location_type) DO NOTHING`
	if _, err := r.q.Exec(context.Background(), insert, itemID, loc.ID, loc.Type); err != nil {
		return nil, fmt.Errorf("init stock row: %w", err)
	}
	row, err = r.scanRow(query, itemID, loc)
	if err != nil {
		return nil, fmt.Errorf("get stock row for update: %w", err)
	}
	return row, nil
}

func (r *StockRowRepo) scanOne(query, itemID string, loc entity.LocationRef, op string) (*entity.StockRow, error) {
	s, err := r.scanRow(query, itemID, loc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &entity.StockRow{
				ItemID:           itemID,
				LocationID:       loc.ID,
				LocationType:     loc.Type,
				Quantity:         decimal.Zero,
				ReservedQuantity: decimal.Zero,
			}, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s, nil
}

func (r *StockRowRepo) scanRow(query, itemID string, loc entity.LocationRef) (*entity.StockRow, error) {
	var s entity.StockRow
	var companyID *string
	err := r.q.QueryRow(context.Background(), query, itemID, loc.ID, loc.Type).Scan(
		&s.ItemID, &s.LocationID, &s.LocationType, &companyID, &s.Quantity, &s.ReservedQuantity, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	s.CompanyID = fromNullable(companyID)
	return &s, nil
}

// Upsert inserta o actualiza la fila (por ítem + ubicación).
func (r *StockRowRepo) Upsert(row *entity.StockRow) error {
	query := `
		INSERT INTO stock_rows (item_id, location_id, location_type, company_id, quantity, reserved_quantity, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())
		ON CONFLICT (item_id, location_id, location_type)
		DO UPDATE SET quantity = EXCLUDED.quantity, reserved_quantity = EXCLUDED.reserved_quantity, updated_at = now()`
	_, err := r.q.Exec(context.Background(), query,
		row.ItemID, row.LocationID, row.LocationType, nullable(row.CompanyID),
		row.Quantity, row.ReservedQuantity,
	)
	if err != nil {
		return fmt.Errorf("upsert stock row: %w", err)
	}
	return nil
}

// ListByItem lista las filas de stock de un ítem en todas sus ubicaciones.
func (r *StockRowRepo) ListByItem(itemID string) ([]*entity.StockRow, error) {
	query := `
		SELECT ` + stockRowColumns + `
		FROM stock_rows WHERE item_id = $1 ORDER BY location_type, location_id`
	return r.list(query, itemID)
}

// ListByLocation lista las filas de stock de una ubicación.
func (r *StockRowRepo) ListByLocation(loc entity.LocationRef) ([]*entity.StockRow, error) {
	query := `
		SELECT ` + stockRowColumns + `
		FROM stock_rows WHERE location_id = $1 AND location_type = $2 ORDER BY item_id`
	return r.list(query, loc.ID, loc.Type)
}

func (r *StockRowRepo) list(query string, args ...any) ([]*entity.StockRow, error) {
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stock rows: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockRow
	for rows.Next() {
		var s entity.StockRow
		var companyID *string
		if err := rows.Scan(&s.ItemID, &s.LocationID, &s.LocationType, &companyID,
			&s.Quantity, &s.ReservedQuantity, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan stock row: %w", err)
		}
		s.CompanyID = fromNullable(companyID)
		list = append(list, &s)
	}
	return list, rows.Err()
}
