package model

import "time"

// Role values stored in users.role. Every authorization decision in the
// system is driven by one of these strings.
const (
	RoleSuperadmin         = "superadmin"
	RoleDispatcher         = "dispatcher"
	RoleHospitalStaff      = "hospital_staff"
	RoleDoctor             = "doctor"
	RoleParamedic          = "paramedic"
	RoleAirlineCoordinator = "airline_coordinator"
)

// KnownRole reports whether the given string is one of the defined roles.
func KnownRole(role string) bool {
	switch role {
	case RoleSuperadmin, RoleDispatcher, RoleHospitalStaff,
		RoleDoctor, RoleParamedic, RoleAirlineCoordinator:
		return true
	}
	return false
}

// User represents an application user record as stored in the `users`
// table. The password hash never leaves the repository layer; handlers
// define separate response types with the appropriate JSON tags.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Email        – unique email address (lowercased).
//  PasswordHash – bcrypt hashed password.
//  FullName     – display name.
//  Phone        – contact phone number, may be empty.
//  Role         – one of the Role* constants.
//  IsActive     – whether the account may authenticate.
//  ResetOTP     – pending password-reset code (nil when none).
//  OTPExpiry    – expiry of the pending reset code (nil when none).
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64     // users.id
	Email        string     // users.email
	PasswordHash string     // users.password_hash
	FullName     string     // users.full_name
	Phone        string     // users.phone
	Role         string     // users.role
	IsActive     bool       // users.is_active
	ResetOTP     *string    // users.reset_otp (nullable)
	OTPExpiry    *time.Time // users.otp_expiry (nullable)
	CreatedAt    time.Time  // users.created_at
	UpdatedAt    time.Time  // users.updated_at
}
