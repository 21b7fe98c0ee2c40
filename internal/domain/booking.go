package domain

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
)

func wrapInvalid(msg string) error {
	return errors.Wrap(ErrInvalidInput, msg)
}

// NewBooking creates a confirmed booking. The amount is always seat count
// times the show's per-seat price.
func NewBooking(userID, showID uuid.UUID, seats []string, priceCents int64) *Booking {
	return &Booking{
		ID:          uuid.New(),
		UserID:      userID,
		ShowID:      showID,
		Seats:       seats,
		AmountCents: int64(len(seats)) * priceCents,
		Status:      BookingConfirmed,
		CreatedAt:   time.Now().UTC(),
	}
}

// NewShow creates a show with an empty booked set.
func NewShow(movieID uuid.UUID, startTime time.Time, screen string, priceCents int64, rows, cols int) (*Show, error) {
	if !ValidGrid(rows, cols) {
		return nil, wrapInvalid("grid dimensions out of bounds")
	}
	if priceCents < 0 {
		return nil, wrapInvalid("price_cents must not be negative")
	}
	now := time.Now().UTC()
	return &Show{
		ID:          uuid.New(),
		MovieID:     movieID,
		StartTime:   startTime,
		Screen:      screen,
		PriceCents:  priceCents,
		Rows:        rows,
		Cols:        cols,
		SeatsBooked: []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// NewMovie creates a catalog entry.
func NewMovie(title, description string, durationMinutes int, rating, posterURL string, genre []string) (*Movie, error) {
	if title == "" {
		return nil, wrapInvalid("title is required")
	}
	if durationMinutes < 1 {
		return nil, wrapInvalid("duration_minutes must be at least 1")
	}
	now := time.Now().UTC()
	return &Movie{
		ID:              uuid.New(),
		Title:           title,
		Description:     description,
		DurationMinutes: durationMinutes,
		Rating:          rating,
		PosterURL:       posterURL,
		Genre:           genre,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}
