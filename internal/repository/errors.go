// Package repository implements typed data access over *sql.DB for the
// users, patients, bookings, hospitals and aircraft tables. Sentinel
// errors defined here let higher layers distinguish failure scenarios
// with errors.Is without inspecting driver errors.
package repository

import "errors"

// ErrEmailExists is returned when registering a user with an email that
// is already taken.
var ErrEmailExists = errors.New("email already exists")

// ErrNotFound is returned when a lookup by id matches no row. It is also
// returned by partial updates that modified nothing, mirroring the
// modified-count contract of a document store update.
var ErrNotFound = errors.New("not found")
