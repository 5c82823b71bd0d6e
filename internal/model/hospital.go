package model

import "time"

// Levels of care a hospital can provide.
const (
	CareBasic        = "basic"
	CareAdvanced     = "advanced"
	CareTertiary     = "tertiary"
	CareTraumaCenter = "trauma_center"
)

// Hospital mirrors the `hospitals` table. Hospitals are a thin registry:
// bookings reference them only through free-form pickup and destination
// locations, so no foreign keys exist.
type Hospital struct {
	ID                      uint64    // hospitals.id
	Name                    string    // hospitals.name
	Address                 string    // hospitals.address
	Latitude                float64   // hospitals.latitude
	Longitude               float64   // hospitals.longitude
	LevelOfCare             string    // hospitals.level_of_care
	ICUCapacity             int       // hospitals.icu_capacity
	ContactName             string    // hospitals.contact_name
	ContactPhone            string    // hospitals.contact_phone
	ContactEmail            string    // hospitals.contact_email
	PreferredPickupLocation string    // hospitals.preferred_pickup_location
	CreatedAt               time.Time // hospitals.created_at
	UpdatedAt               time.Time // hospitals.updated_at
}

// Aircraft mirrors the `aircraft` table.
type Aircraft struct {
	ID           uint64    // aircraft.id
	TailNumber   string    // aircraft.tail_number
	Model        string    // aircraft.model
	BaseLocation string    // aircraft.base_location
	RangeKM      int       // aircraft.range_km
	IsAvailable  bool      // aircraft.is_available
	CreatedAt    time.Time // aircraft.created_at
	UpdatedAt    time.Time // aircraft.updated_at
}
