package repository

import (
	"context"
	"database/sql"
	"log"
	"time"

	"github.com/Manikandan063/air-ambulance-backend/internal/model"
)

// PatientRepo provides persistence for the `patients` table.
type PatientRepo struct{ DB *sql.DB }

func NewPatientRepo(db *sql.DB) *PatientRepo { return &PatientRepo{DB: db} }

const patientColumns = `id, full_name, medical_record_number, acuity_level,
date_of_birth, created_by, created_at, updated_at`

// Create inserts a patient and populates its generated ID.
func (r *PatientRepo) Create(ctx context.Context, p *model.Patient) error {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO patients (full_name, medical_record_number, acuity_level, date_of_birth, created_by)
		 VALUES (?,?,?,?,?)`,
		p.FullName, p.MedicalRecordNumber, p.AcuityLevel, p.DateOfBirth, p.CreatedBy)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	return nil
}

// GetByID fetches a patient by id. ErrNotFound when absent.
func (r *PatientRepo) GetByID(ctx context.Context, id uint64) (*model.Patient, error) {
	q := `SELECT ` + patientColumns + ` FROM patients WHERE id=? LIMIT 1`
	p, err := scanPatient(r.DB.QueryRowContext(ctx, q, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// List returns patients ordered by creation time descending.
func (r *PatientRepo) List(ctx context.Context, skip, limit int) ([]model.Patient, error) {
	if limit <= 0 {
		limit = 100
	}
	q := `SELECT ` + patientColumns + ` FROM patients ORDER BY created_at DESC, id DESC LIMIT ?, ?`
	rows, err := r.DB.QueryContext(ctx, q, skip, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	patients := make([]model.Patient, 0)
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			log.Printf("patients: skipping malformed row: %v", err)
			continue
		}
		patients = append(patients, *p)
	}
	return patients, rows.Err()
}

// CountByAcuity returns the number of patients at the given acuity level.
func (r *PatientRepo) CountByAcuity(ctx context.Context, level string) (int64, error) {
	var n int64
	err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM patients WHERE acuity_level=?", level).Scan(&n)
	return n, err
}

// UpdateFields applies a partial update and bumps updated_at.
func (r *PatientRepo) UpdateFields(ctx context.Context, id uint64, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return ErrNotFound
	}
	set := ""
	args := make([]interface{}, 0, len(updates)+2)
	for k, v := range updates {
		if set != "" {
			set += ", "
		}
		set += k + "=?"
		args = append(args, v)
	}
	set += ", updated_at=?"
	args = append(args, time.Now().UTC(), id)

	res, err := r.DB.ExecContext(ctx, "UPDATE patients SET "+set+" WHERE id=?", args...)
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

// Delete removes a patient. ErrNotFound when no row matched.
func (r *PatientRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM patients WHERE id=?", id)
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

func scanPatient(row rowScanner) (*model.Patient, error) {
	var p model.Patient
	var dob sql.NullTime
	err := row.Scan(&p.ID, &p.FullName, &p.MedicalRecordNumber, &p.AcuityLevel,
		&dob, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if dob.Valid {
		d := dob.Time.UTC()
		p.DateOfBirth = &d
	}
	return &p, nil
}
