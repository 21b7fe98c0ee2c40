package domain

import (
	"strings"

	"github.com/cockroachdb/errors"
)

var (
	ErrSerializationFailure = errors.New("serialization failure")
	ErrNotFound             = errors.New("not found")
	ErrConflict             = errors.New("conflict")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrInvalidInput         = errors.New("invalid input")
	ErrInvalidID            = errors.New("invalid id")
	ErrDuplicate            = errors.New("duplicate")
)

// SeatConflictError reports which requested seats are already booked, in
// the order they appeared in the request.
type SeatConflictError struct {
	Seats []string
}

func (e *SeatConflictError) Error() string {
	if len(e.Seats) == 1 {
		return "seat " + e.Seats[0] + " already booked"
	}
	return "seats " + strings.Join(e.Seats, ", ") + " already booked"
}

// Is makes a SeatConflictError match ErrConflict under errors.Is.
func (e *SeatConflictError) Is(target error) bool {
	return target == ErrConflict
}
