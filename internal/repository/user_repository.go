package repository

import (
	"context"
	"database/sql"
	"log"
	"strings"
	"time"

	"github.com/Manikandan063/air-ambulance-backend/internal/model"
	"github.com/Manikandan063/air-ambulance-backend/internal/utils"
)

// UserRepo provides persistence for the `users` table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = `id, email, password_hash, full_name, phone, role,
is_active, reset_otp, otp_expiry, created_at, updated_at`

// Create inserts a user with a bcrypt-hashed password and returns its ID.
func (r *UserRepo) Create(ctx context.Context, email, password, fullName, phone, role string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (email, password_hash, full_name, phone, role) VALUES (?,?,?,?,?)",
		email, hash, fullName, phone, role)
	if err != nil {
		// 1062 = MySQL duplicate entry, the email unique key.
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	q := `SELECT ` + userColumns + ` FROM users WHERE email=? LIMIT 1`
	return r.queryOne(ctx, q, email)
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE id=? LIMIT 1`
	return r.queryOne(ctx, q, id)
}

// List returns users, optionally filtered by role, ordered by id. Rows
// that fail to scan are skipped with a warning.
func (r *UserRepo) List(ctx context.Context, role string, skip, limit int) ([]model.User, error) {
	q := `SELECT ` + userColumns + ` FROM users`
	var args []interface{}
	if role != "" {
		q += " WHERE role=?"
		args = append(args, role)
	}
	if limit <= 0 {
		limit = 100
	}
	q += " ORDER BY id LIMIT ?, ?"
	args = append(args, skip, limit)

	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]model.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			log.Printf("users: skipping malformed row: %v", err)
			continue
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// ListActiveByRoles returns all active users whose role is in the given
// set. Used by the notification fan-out to compute recipients.
func (r *UserRepo) ListActiveByRoles(ctx context.Context, roles []string) ([]model.User, error) {
	if len(roles) == 0 {
		return []model.User{}, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(roles)), ",")
	q := `SELECT ` + userColumns + ` FROM users WHERE is_active=1 AND role IN (` + placeholders + `) ORDER BY id`
	args := make([]interface{}, len(roles))
	for i, role := range roles {
		args[i] = role
	}
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]model.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// UpdateFields applies a partial update and bumps updated_at. ErrNotFound
// is returned when nothing changed.
func (r *UserRepo) UpdateFields(ctx context.Context, id uint64, updates map[string]interface{}) error {
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

	res, err := r.DB.ExecContext(ctx, "UPDATE users SET "+strings.Join(set, ", ")+" WHERE id=?", args...)
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

// SetResetOTP stores a password-reset code and its expiry on the user row.
func (r *UserRepo) SetResetOTP(ctx context.Context, email, otp string, expiry time.Time) error {
	email = strings.ToLower(strings.TrimSpace(email))
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET reset_otp=?, otp_expiry=? WHERE email=?", otp, expiry, email)
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

// ResetPassword replaces the password hash and clears any pending OTP.
func (r *UserRepo) ResetPassword(ctx context.Context, id uint64, password string, cost int) error {
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx,
		"UPDATE users SET password_hash=?, reset_otp=NULL, otp_expiry=NULL, updated_at=? WHERE id=?",
		hash, time.Now().UTC(), id)
	return err
}

// Delete removes a user. ErrNotFound when no row matched.
func (r *UserRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM users WHERE id=?", id)
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

func (r *UserRepo) queryOne(ctx context.Context, q string, arg interface{}) (*model.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx, q, arg))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func scanUser(row rowScanner) (*model.User, error) {
	var u model.User
	var otp sql.NullString
	var expiry sql.NullTime
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &u.Phone,
		&u.Role, &u.IsActive, &otp, &expiry, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if otp.Valid {
		v := otp.String
		u.ResetOTP = &v
	}
	if expiry.Valid {
		t := expiry.Time.UTC()
		u.OTPExpiry = &t
	}
	return &u, nil
}
