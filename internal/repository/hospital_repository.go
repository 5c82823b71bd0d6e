package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/Manikandan063/air-ambulance-backend/internal/model"
)

// HospitalRepo provides persistence for the `hospitals` registry.
type HospitalRepo struct{ DB *sql.DB }

func NewHospitalRepo(db *sql.DB) *HospitalRepo { return &HospitalRepo{DB: db} }

const hospitalColumns = `id, name, address, latitude, longitude, level_of_care,
icu_capacity, contact_name, contact_phone, contact_email,
preferred_pickup_location, created_at, updated_at`

// Create inserts a hospital and populates its generated ID.
func (r *HospitalRepo) Create(ctx context.Context, h *model.Hospital) error {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO hospitals
		 (name, address, latitude, longitude, level_of_care, icu_capacity,
		  contact_name, contact_phone, contact_email, preferred_pickup_location)
		 VALUES (?,?,?,?,?,?,?,?,?,?)`,
		h.Name, h.Address, h.Latitude, h.Longitude, h.LevelOfCare, h.ICUCapacity,
		h.ContactName, h.ContactPhone, h.ContactEmail, h.PreferredPickupLocation)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	h.ID = uint64(id)
	return nil
}

// GetByID fetches a hospital by id. ErrNotFound when absent.
func (r *HospitalRepo) GetByID(ctx context.Context, id uint64) (*model.Hospital, error) {
	q := `SELECT ` + hospitalColumns + ` FROM hospitals WHERE id=? LIMIT 1`
	h, err := scanHospital(r.DB.QueryRowContext(ctx, q, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return h, nil
}

// List returns all hospitals ordered by name.
func (r *HospitalRepo) List(ctx context.Context) ([]model.Hospital, error) {
	q := `SELECT ` + hospitalColumns + ` FROM hospitals ORDER BY name`
	rows, err := r.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	hospitals := make([]model.Hospital, 0)
	for rows.Next() {
		h, err := scanHospital(rows)
		if err != nil {
			return nil, err
		}
		hospitals = append(hospitals, *h)
	}
	return hospitals, rows.Err()
}

// UpdateFields applies a partial update and bumps updated_at.
func (r *HospitalRepo) UpdateFields(ctx context.Context, id uint64, updates map[string]interface{}) error {
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

	res, err := r.DB.ExecContext(ctx, "UPDATE hospitals SET "+strings.Join(set, ", ")+" WHERE id=?", args...)
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

// Delete removes a hospital. ErrNotFound when no row matched.
func (r *HospitalRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM hospitals WHERE id=?", id)
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

func scanHospital(row rowScanner) (*model.Hospital, error) {
	var h model.Hospital
	err := row.Scan(&h.ID, &h.Name, &h.Address, &h.Latitude, &h.Longitude,
		&h.LevelOfCare, &h.ICUCapacity, &h.ContactName, &h.ContactPhone,
		&h.ContactEmail, &h.PreferredPickupLocation, &h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &h, nil
}
