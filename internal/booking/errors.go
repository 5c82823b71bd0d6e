package booking

import "errors"

// Domain errors raised deliberately by the lifecycle controller. Handlers
// translate them to HTTP responses with errors.Is; anything else is an
// internal failure, logged and masked with a generic 500 body.
var (
	// ErrForbidden means the actor's role lacks permission for the
	// operation, or a hospital_staff actor reached for a booking they did
	// not create. No more detail than "not enough permissions" is exposed.
	ErrForbidden = errors.New("not enough permissions")

	// ErrNotFound means the booking does not exist, or an update matched
	// no document / changed nothing.
	ErrNotFound = errors.New("booking not found")

	// ErrInvalidInput means the request shape or a field value is
	// unacceptable (missing locations, unknown status, illegal
	// transition).
	ErrInvalidInput = errors.New("invalid input")
)
