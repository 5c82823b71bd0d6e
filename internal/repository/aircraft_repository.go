package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/Manikandan063/air-ambulance-backend/internal/model"
)

// AircraftRepo provides persistence for the `aircraft` registry.
type AircraftRepo struct{ DB *sql.DB }

func NewAircraftRepo(db *sql.DB) *AircraftRepo { return &AircraftRepo{DB: db} }

const aircraftColumns = `id, tail_number, model, base_location, range_km,
is_available, created_at, updated_at`

// Create inserts an aircraft and populates its generated ID.
func (r *AircraftRepo) Create(ctx context.Context, a *model.Aircraft) error {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO aircraft (tail_number, model, base_location, range_km, is_available)
		 VALUES (?,?,?,?,?)`,
		a.TailNumber, a.Model, a.BaseLocation, a.RangeKM, a.IsAvailable)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = uint64(id)
	return nil
}

// GetByID fetches an aircraft by id. ErrNotFound when absent.
func (r *AircraftRepo) GetByID(ctx context.Context, id uint64) (*model.Aircraft, error) {
	q := `SELECT ` + aircraftColumns + ` FROM aircraft WHERE id=? LIMIT 1`
	a, err := scanAircraft(r.DB.QueryRowContext(ctx, q, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// List returns aircraft, optionally only the available ones.
func (r *AircraftRepo) List(ctx context.Context, availableOnly bool) ([]model.Aircraft, error) {
	q := `SELECT ` + aircraftColumns + ` FROM aircraft`
	if availableOnly {
		q += " WHERE is_available=1"
	}
	q += " ORDER BY tail_number"
	rows, err := r.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fleet := make([]model.Aircraft, 0)
	for rows.Next() {
		a, err := scanAircraft(rows)
		if err != nil {
			return nil, err
		}
		fleet = append(fleet, *a)
	}
	return fleet, rows.Err()
}

// UpdateFields applies a partial update and bumps updated_at.
func (r *AircraftRepo) UpdateFields(ctx context.Context, id uint64, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return ErrNotFound
	}
	set := make([]string, 0, len(updates)+1)
	args := make([]interface{}, 0, len(updates)+2)
	for k, v := range updates {
		set = append(set, k+"=?")
		args = append(args, v)
	}
	set = append(set, "updated_at=?")
	args = append(args, time.Now().UTC(), id)

	res, err := r.DB.ExecContext(ctx, "UPDATE aircraft SET "+strings.Join(set, ", ")+" WHERE id=?", args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes an aircraft. ErrNotFound when no row matched.
func (r *AircraftRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM aircraft WHERE id=?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanAircraft(row rowScanner) (*model.Aircraft, error) {
	var a model.Aircraft
	err := row.Scan(&a.ID, &a.TailNumber, &a.Model, &a.BaseLocation,
		&a.RangeKM, &a.IsAvailable, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
