package domain

import (
	"time"

	"github.com/google/uuid"
)

// Grid dimension bounds. Rows are capped at 20 so a single row letter
// always suffices.
const (
	MinRows = 1
	MaxRows = 20
	MinCols = 1
	MaxCols = 30
)

type Movie struct {
	ID              uuid.UUID
	Title           string
	Description     string
	DurationMinutes int
	Rating          string
	PosterURL       string
	Genre           []string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type Show struct {
	ID          uuid.UUID
	MovieID     uuid.UUID
	StartTime   time.Time
	Screen      string
	PriceCents  int64
	Rows        int
	Cols        int
	SeatsBooked []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// BookedSet returns the show's reserved seats as a membership set.
func (s *Show) BookedSet() map[string]struct{} {
	set := make(map[string]struct{}, len(s.SeatsBooked))
	for _, seat := range s.SeatsBooked {
		set[seat] = struct{}{}
	}
	return set
}

const (
	BookingConfirmed = "confirmed"
	// BookingCancelled is recognized but never produced by the booking flow.
	BookingCancelled = "cancelled"
)

type Booking struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	ShowID      uuid.UUID
	Seats       []string
	AmountCents int64
	Status      string
	CreatedAt   time.Time
}

type User struct {
	ID           uuid.UUID
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

type Session struct {
	Token     string
	UserID    uuid.UUID
	ExpiresAt time.Time
	CreatedAt time.Time
}

func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}
