// Package mongo holds the catalog store: movies and shows, including the
// per-show booked seat set. Seat reservation is a single conditional
// UpdateOne so the availability check and the set update are evaluated by
// the server as one atomic operation.
package mongo

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/movietix/backend/internal/booking"
	"github.com/movietix/backend/internal/domain"
	"github.com/movietix/backend/internal/observability"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type CatalogRepository struct {
	movies *mongo.Collection
	shows  *mongo.Collection
	logger observability.Logger
}

func NewCatalogRepository(db *mongo.Database, logger observability.Logger) *CatalogRepository {
	return &CatalogRepository{
		movies: db.Collection("movies"),
		shows:  db.Collection("shows"),
		logger: logger,
	}
}

type MovieDoc struct {
	ID              uuid.UUID `bson:"_id"`
	Title           string    `bson:"title"`
	Description     string    `bson:"description"`
	DurationMinutes int       `bson:"duration_minutes"`
	Rating          string    `bson:"rating"`
	PosterURL       string    `bson:"poster_url"`
	Genre           []string  `bson:"genre"`
	CreatedAt       time.Time `bson:"created_at"`
	UpdatedAt       time.Time `bson:"updated_at"`
}

type ShowDoc struct {
	ID          uuid.UUID `bson:"_id"`
	MovieID     uuid.UUID `bson:"movie_id"`
	StartTime   time.Time `bson:"start_time"`
	Screen      string    `bson:"screen"`
	PriceCents  int64     `bson:"price_cents"`
	Rows        int       `bson:"rows"`
	Cols        int       `bson:"cols"`
	SeatsBooked []string  `bson:"seats_booked"`
	CreatedAt   time.Time `bson:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at"`
}

func movieDoc(m *domain.Movie) MovieDoc {
	return MovieDoc{
		ID:              m.ID,
		Title:           m.Title,
		Description:     m.Description,
		DurationMinutes: m.DurationMinutes,
		Rating:          m.Rating,
		PosterURL:       m.PosterURL,
		Genre:           m.Genre,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

func (d MovieDoc) toDomain() *domain.Movie {
	return &domain.Movie{
		ID:              d.ID,
		Title:           d.Title,
		Description:     d.Description,
		DurationMinutes: d.DurationMinutes,
		Rating:          d.Rating,
		PosterURL:       d.PosterURL,
		Genre:           d.Genre,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

func showDoc(s *domain.Show) ShowDoc {
	return ShowDoc{
		ID:          s.ID,
		MovieID:     s.MovieID,
		StartTime:   s.StartTime,
		Screen:      s.Screen,
		PriceCents:  s.PriceCents,
		Rows:        s.Rows,
		Cols:        s.Cols,
		SeatsBooked: s.SeatsBooked,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

func (d ShowDoc) toDomain() *domain.Show {
	seats := d.SeatsBooked
	if seats == nil {
		seats = []string{}
	}
	return &domain.Show{
		ID:          d.ID,
		MovieID:     d.MovieID,
		StartTime:   d.StartTime,
		Screen:      d.Screen,
		PriceCents:  d.PriceCents,
		Rows:        d.Rows,
		Cols:        d.Cols,
		SeatsBooked: seats,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func (c *CatalogRepository) CreateMovie(ctx context.Context, m *domain.Movie) error {
	_, err := c.movies.InsertOne(ctx, movieDoc(m))
	if err != nil {
		c.logger.Error("failed to insert movie", err)
		return err
	}
	return nil
}

func (c *CatalogRepository) GetMovie(ctx context.Context, id uuid.UUID) (*domain.Movie, error) {
	var doc MovieDoc
	err := c.movies.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc.toDomain(), nil
}

func (c *CatalogRepository) ListMovies(ctx context.Context) ([]*domain.Movie, error) {
	cur, err := c.movies.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var movies []*domain.Movie
	for cur.Next(ctx) {
		var doc MovieDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		movies = append(movies, doc.toDomain())
	}
	return movies, cur.Err()
}

func (c *CatalogRepository) CreateShow(ctx context.Context, s *domain.Show) error {
	_, err := c.shows.InsertOne(ctx, showDoc(s))
	if err != nil {
		c.logger.Error("failed to insert show", err)
		return err
	}
	return nil
}

func (c *CatalogRepository) GetShow(ctx context.Context, id uuid.UUID) (*domain.Show, error) {
	var doc ShowDoc
	err := c.shows.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc.toDomain(), nil
}

func (c *CatalogRepository) ListShows(ctx context.Context, movieID *uuid.UUID) ([]*domain.Show, error) {
	filter := bson.M{}
	if movieID != nil {
		filter["movie_id"] = *movieID
	}
	cur, err := c.shows.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var shows []*domain.Show
	for cur.Next(ctx) {
		var doc ShowDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		shows = append(shows, doc.toDomain())
	}
	return shows, cur.Err()
}

// ReserveSeats adds the requested seats to the show's booked set only if
// none of them are already present. The filter and the $addToSet update
// run as one document-level atomic operation, so concurrent requests for
// an overlapping seat produce at most one winner.
func (c *CatalogRepository) ReserveSeats(ctx context.Context, showID uuid.UUID, seats []string) error {
	res, err := c.shows.UpdateOne(ctx,
		bson.M{"_id": showID, "seats_booked": bson.M{"$nin": seats}},
		bson.M{
			"$addToSet": bson.M{"seats_booked": bson.M{"$each": seats}},
			"$set":      bson.M{"updated_at": time.Now().UTC()},
		},
	)
	if err != nil {
		c.logger.Error("failed to reserve seats", err)
		return err
	}
	if res.MatchedCount == 1 {
		return nil
	}

	// Lost the race or the show is gone. Re-read to tell the two apart and
	// name the conflicting seats.
	show, err := c.GetShow(ctx, showID)
	if err != nil {
		return err
	}
	conflicts := booking.CheckAvailability(show.BookedSet(), seats)
	if len(conflicts) == 0 {
		// Seats freed between the update and the re-read; the caller's
		// request still lost and may be resubmitted.
		return domain.ErrConflict
	}
	return &domain.SeatConflictError{Seats: conflicts}
}

// ReleaseSeats removes seats from the booked set. Compensation path only;
// bookings themselves never shrink the set.
func (c *CatalogRepository) ReleaseSeats(ctx context.Context, showID uuid.UUID, seats []string) error {
	res, err := c.shows.UpdateOne(ctx,
		bson.M{"_id": showID},
		bson.M{
			"$pullAll": bson.M{"seats_booked": seats},
			"$set":     bson.M{"updated_at": time.Now().UTC()},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}
