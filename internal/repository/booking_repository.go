package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/Manikandan063/air-ambulance-backend/internal/model"
)

// BookingRepo provides read/write/query operations for the `bookings`
// table. Equipment and crew lists are stored as JSON text columns;
// decoding failures on read are treated as malformed records and the
// affected row is skipped rather than aborting a listing.
type BookingRepo struct{ DB *sql.DB }

// NewBookingRepo returns a BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{DB: db} }

const bookingColumns = `id, patient_id, pickup_location, destination, urgency,
required_equipment, preferred_date, preferred_time, status, assigned_crew_ids,
assigned_aircraft_id, estimated_cost, actual_cost, flight_duration,
created_by, created_at, updated_at`

// BookingFilter narrows List results. Zero values mean "no restriction".
type BookingFilter struct {
	Status    string // equality match on status when non-empty
	CreatedBy uint64 // restrict to bookings created by this user when non-zero
	Skip      int
	Limit     int
}

// Create inserts a booking and populates its generated ID and timestamps.
func (r *BookingRepo) Create(ctx context.Context, b *model.Booking) error {
	equip, err := json.Marshal(b.RequiredEquipment)
	if err != nil {
		return fmt.Errorf("marshal equipment: %w", err)
	}
	crew, err := json.Marshal(b.AssignedCrewIDs)
	if err != nil {
		return fmt.Errorf("marshal crew ids: %w", err)
	}
	const q = `INSERT INTO bookings
		(patient_id, pickup_location, destination, urgency, required_equipment,
		 preferred_date, preferred_time, status, assigned_crew_ids,
		 assigned_aircraft_id, estimated_cost, actual_cost, flight_duration,
		 created_by, created_at, updated_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`
	res, err := r.DB.ExecContext(ctx, q,
		b.PatientID, b.PickupLocation, b.Destination, b.Urgency, string(equip),
		b.PreferredDate, b.PreferredTime, b.Status, string(crew),
		b.AssignedAircraftID, b.EstimatedCost, b.ActualCost, b.FlightDuration,
		b.CreatedBy, b.CreatedAt, b.UpdatedAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	return nil
}

// GetByID fetches a single booking. ErrNotFound is returned when no row
// matches.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (*model.Booking, error) {
	q := `SELECT ` + bookingColumns + ` FROM bookings WHERE id=? LIMIT 1`
	b, err := scanBooking(r.DB.QueryRowContext(ctx, q, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// List returns bookings matching the filter ordered by creation time
// descending. Rows that fail to scan or decode are logged and skipped so
// one malformed record cannot take down the whole listing.
func (r *BookingRepo) List(ctx context.Context, f BookingFilter) ([]model.Booking, error) {
	q := `SELECT ` + bookingColumns + ` FROM bookings`
	var conds []string
	var args []interface{}
	if f.Status != "" {
		conds = append(conds, "status=?")
		args = append(args, f.Status)
	}
	if f.CreatedBy != 0 {
		conds = append(conds, "created_by=?")
		args = append(args, f.CreatedBy)
	}
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY created_at DESC, id DESC LIMIT ?, ?"
	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, f.Skip, limit)

	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]model.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			log.Printf("bookings: skipping malformed row: %v", err)
			continue
		}
		list = append(list, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

// UpdateFields applies a partial update to a booking. Keys are column
// names; slice values are JSON-encoded before writing. It returns
// ErrNotFound when the update changed no row, matching the document-store
// modified-count contract the service layer relies on.
func (r *BookingRepo) UpdateFields(ctx context.Context, id uint64, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return ErrNotFound
	}
	// Deterministic column order keeps generated SQL stable for logging.
	cols := make([]string, 0, len(updates))
	for k := range updates {
		cols = append(cols, k)
	}
	sort.Strings(cols)

	set := make([]string, 0, len(cols))
	args := make([]interface{}, 0, len(cols)+1)
	for _, k := range cols {
		v := updates[k]
		switch t := v.(type) {
		case []string:
			enc, err := json.Marshal(t)
			if err != nil {
				return fmt.Errorf("marshal %s: %w", k, err)
			}
			v = string(enc)
		case []uint64:
			enc, err := json.Marshal(t)
			if err != nil {
				return fmt.Errorf("marshal %s: %w", k, err)
			}
			v = string(enc)
		}
		set = append(set, k+"=?")
		args = append(args, v)
	}
	args = append(args, id)

	res, err := r.DB.ExecContext(ctx, "UPDATE bookings SET "+strings.Join(set, ", ")+" WHERE id=?", args...)
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

// ListRecentActivity returns the most recently touched bookings ordered
// by updated_at descending. It feeds the dashboard activity feed, so the
// same malformed-row tolerance as List applies.
func (r *BookingRepo) ListRecentActivity(ctx context.Context, limit int) ([]model.Booking, error) {
	if limit <= 0 {
		limit = 20
	}
	q := `SELECT ` + bookingColumns + ` FROM bookings ORDER BY updated_at DESC, id DESC LIMIT ?`
	rows, err := r.DB.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]model.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			log.Printf("bookings: skipping malformed row: %v", err)
			continue
		}
		list = append(list, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

// CountByStatus returns the number of bookings in the given status.
func (r *BookingRepo) CountByStatus(ctx context.Context, status string) (int64, error) {
	var n int64
	err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM bookings WHERE status=?", status).Scan(&n)
	return n, err
}

// CompletedStats aggregates actual cost and flight duration over completed
// bookings. The averages are computed by the caller-facing service; here
// only the raw sums and count are produced so an empty set yields zeros
// instead of a division fault.
func (r *BookingRepo) CompletedStats(ctx context.Context) (count int64, totalCost float64, totalMinutes int64, err error) {
	const q = `SELECT COUNT(*),
		COALESCE(SUM(actual_cost), 0),
		COALESCE(SUM(flight_duration), 0)
		FROM bookings WHERE status=?`
	err = r.DB.QueryRowContext(ctx, q, model.StatusCompleted).Scan(&count, &totalCost, &totalMinutes)
	return
}

// rowScanner abstracts *sql.Row and *sql.Rows for scanBooking.
type rowScanner interface{ Scan(dest ...interface{}) error }

func scanBooking(row rowScanner) (*model.Booking, error) {
	var b model.Booking
	var patientID, aircraftID sql.NullInt64
	var equip, crew string
	var prefDate sql.NullTime
	var prefTime sql.NullString
	var actualCost sql.NullFloat64
	var duration sql.NullInt64

	err := row.Scan(
		&b.ID, &patientID, &b.PickupLocation, &b.Destination, &b.Urgency,
		&equip, &prefDate, &prefTime, &b.Status, &crew,
		&aircraftID, &b.EstimatedCost, &actualCost, &duration,
		&b.CreatedBy, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if patientID.Valid {
		id := uint64(patientID.Int64)
		b.PatientID = &id
	}
	if aircraftID.Valid {
		id := uint64(aircraftID.Int64)
		b.AssignedAircraftID = &id
	}
	if prefDate.Valid {
		d := prefDate.Time.UTC()
		b.PreferredDate = &d
	}
	if prefTime.Valid && prefTime.String != "" {
		t := prefTime.String
		b.PreferredTime = &t
	}
	if actualCost.Valid {
		c := actualCost.Float64
		b.ActualCost = &c
	}
	if duration.Valid {
		m := int(duration.Int64)
		b.FlightDuration = &m
	}
	b.RequiredEquipment = []string{}
	if equip != "" {
		if err := json.Unmarshal([]byte(equip), &b.RequiredEquipment); err != nil {
			return nil, fmt.Errorf("booking %d: bad required_equipment: %w", b.ID, err)
		}
	}
	b.AssignedCrewIDs = []uint64{}
	if crew != "" {
		if err := json.Unmarshal([]byte(crew), &b.AssignedCrewIDs); err != nil {
			return nil, fmt.Errorf("booking %d: bad assigned_crew_ids: %w", b.ID, err)
		}
	}
	return &b, nil
}
