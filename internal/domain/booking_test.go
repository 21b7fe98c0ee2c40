package domain_test

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/movietix/backend/internal/domain"
)

func isInvalidInput(err error) bool {
	return errors.Is(err, domain.ErrInvalidInput)
}

func TestNewBooking_Amount(t *testing.T) {
	b := domain.NewBooking(uuid.New(), uuid.New(), []string{"A1", "A2", "A3"}, 1250)
	if b.AmountCents != 3*1250 {
		t.Errorf("expected amount %d, got %d", 3*1250, b.AmountCents)
	}
	if b.Status != domain.BookingConfirmed {
		t.Errorf("expected status %q, got %q", domain.BookingConfirmed, b.Status)
	}
	if len(b.Seats) != 3 || b.Seats[0] != "A1" {
		t.Errorf("seat order not preserved: %v", b.Seats)
	}
}

func TestNewShow_GridBounds(t *testing.T) {
	movieID := uuid.New()
	start := time.Now().Add(24 * time.Hour)
	if _, err := domain.NewShow(movieID, start, "Screen 1", 1000, 2, 3); err != nil {
		t.Fatalf("expected valid show, got %v", err)
	}
	for _, tc := range []struct{ rows, cols int }{
		{0, 3}, {21, 3}, {2, 0}, {2, 31},
	} {
		if _, err := domain.NewShow(movieID, start, "Screen 1", 1000, tc.rows, tc.cols); !isInvalidInput(err) {
			t.Errorf("%dx%d: expected ErrInvalidInput, got %v", tc.rows, tc.cols, err)
		}
	}
	if _, err := domain.NewShow(movieID, start, "Screen 1", -1, 2, 3); !isInvalidInput(err) {
		t.Errorf("negative price: expected ErrInvalidInput, got %v", err)
	}
}

func TestSeatConflictError(t *testing.T) {
	err := &domain.SeatConflictError{Seats: []string{"A2"}}
	if !errors.Is(err, domain.ErrConflict) {
		t.Error("SeatConflictError should match ErrConflict")
	}
	if err.Error() != "seat A2 already booked" {
		t.Errorf("unexpected message %q", err.Error())
	}
	multi := &domain.SeatConflictError{Seats: []string{"A2", "B1"}}
	if multi.Error() != "seats A2, B1 already booked" {
		t.Errorf("unexpected message %q", multi.Error())
	}
}
