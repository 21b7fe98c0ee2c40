// Package booking implements the seat availability check and the booking
// commit protocol. The atomicity boundary for double-booking prevention is
// the store's ReserveSeats operation, not the availability snapshot taken
// here: the store must add the requested seats only if none of them are
// already present, with at most one winner per seat across concurrent
// callers.
package booking

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/movietix/backend/internal/domain"
	"github.com/movietix/backend/internal/observability"
)

// ShowStore is the catalog-side contract the commit protocol relies on.
type ShowStore interface {
	GetShow(ctx context.Context, id uuid.UUID) (*domain.Show, error)
	// ReserveSeats adds seats to the show's booked set iff none are present.
	// Returns *domain.SeatConflictError when it loses the race.
	ReserveSeats(ctx context.Context, showID uuid.UUID, seats []string) error
	// ReleaseSeats removes seats again; used to compensate when the booking
	// record cannot be persisted after a successful reservation.
	ReleaseSeats(ctx context.Context, showID uuid.UUID, seats []string) error
}

// BookingStore persists booking records.
type BookingStore interface {
	InsertBooking(ctx context.Context, b *domain.Booking) error
	GetBooking(ctx context.Context, id uuid.UUID) (*domain.Booking, error)
}

type Service struct {
	shows    ShowStore
	bookings BookingStore
	logger   observability.Logger
}

func NewService(shows ShowStore, bookings BookingStore, logger observability.Logger) *Service {
	return &Service{shows: shows, bookings: bookings, logger: logger}
}

// CheckAvailability returns the requested seats already present in booked,
// in request order. Pure decision over a snapshot; an empty result means
// the request could be granted against that snapshot.
func CheckAvailability(booked map[string]struct{}, requested []string) []string {
	var conflicts []string
	for _, seat := range requested {
		if _, taken := booked[seat]; taken {
			conflicts = append(conflicts, seat)
		}
	}
	return conflicts
}

// Create runs the booking commit protocol: validate the request against
// the show's grid, reserve the seats atomically, then persist the booking.
// The reservation happens before the insert so a lost race never leaves an
// orphaned booking; if the insert fails the reservation is rolled back.
func (s *Service) Create(ctx context.Context, userID, showID uuid.UUID, seats []string) (*domain.Booking, error) {
	show, err := s.shows.GetShow(ctx, showID)
	if err != nil {
		return nil, err
	}
	if err := domain.ValidateSeatRequest(show.Rows, show.Cols, seats); err != nil {
		return nil, err
	}

	// Advisory pre-check against the snapshot. Reports every conflicting
	// seat at once; the store re-evaluates the same condition atomically.
	if conflicts := CheckAvailability(show.BookedSet(), seats); len(conflicts) > 0 {
		observability.SeatConflictsTotal.Inc()
		return nil, &domain.SeatConflictError{Seats: conflicts}
	}

	start := time.Now()
	if err := s.shows.ReserveSeats(ctx, showID, seats); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			observability.SeatConflictsTotal.Inc()
		}
		return nil, err
	}
	observability.ReserveSeatsDuration.Observe(time.Since(start).Seconds())

	b := domain.NewBooking(userID, showID, seats, show.PriceCents)
	if err := s.bookings.InsertBooking(ctx, b); err != nil {
		if relErr := s.shows.ReleaseSeats(ctx, showID, seats); relErr != nil {
			s.logger.WithField("show_id", showID).Error("failed to release seats after insert failure", relErr)
			return nil, errors.CombineErrors(err, relErr)
		}
		return nil, err
	}

	observability.BookingsConfirmedTotal.Inc()
	return b, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	return s.bookings.GetBooking(ctx, id)
}
