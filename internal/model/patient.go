package model

import "time"

// Acuity levels classify patient severity independently of booking urgency.
const (
	AcuityLow      = "low"
	AcuityMedium   = "medium"
	AcuityHigh     = "high"
	AcuityCritical = "critical"
)

// Patient mirrors the `patients` table. Bookings reference patients by id
// and read them only for name and acuity enrichment.
type Patient struct {
	ID                  uint64     // patients.id
	FullName            string     // patients.full_name
	MedicalRecordNumber string     // patients.medical_record_number
	AcuityLevel         string     // patients.acuity_level
	DateOfBirth         *time.Time // patients.date_of_birth (nullable)
	CreatedBy           uint64     // patients.created_by
	CreatedAt           time.Time  // patients.created_at
	UpdatedAt           time.Time  // patients.updated_at
}
