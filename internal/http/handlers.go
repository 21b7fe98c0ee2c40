package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/movietix/backend/internal/auth"
	"github.com/movietix/backend/internal/booking"
	"github.com/movietix/backend/internal/config"
	"github.com/movietix/backend/internal/domain"
	"github.com/movietix/backend/internal/idempotency"
	"github.com/movietix/backend/internal/observability"
)

// Catalog is the movie/show store surface the handlers need.
type Catalog interface {
	CreateMovie(ctx context.Context, m *domain.Movie) error
	GetMovie(ctx context.Context, id uuid.UUID) (*domain.Movie, error)
	ListMovies(ctx context.Context) ([]*domain.Movie, error)
	CreateShow(ctx context.Context, s *domain.Show) error
	GetShow(ctx context.Context, id uuid.UUID) (*domain.Show, error)
	ListShows(ctx context.Context, movieID *uuid.UUID) ([]*domain.Show, error)
}

// SeatMapCache is optional; a nil cache disables seat map caching.
type SeatMapCache interface {
	GetSeatMap(ctx context.Context, showID uuid.UUID) (*domain.SeatMap, error)
	SetSeatMap(ctx context.Context, showID uuid.UUID, m *domain.SeatMap, ttl time.Duration) error
	InvalidateSeatMap(ctx context.Context, showID uuid.UUID) error
}

type Handlers struct {
	cfg      *config.Config
	logger   observability.Logger
	bookings *booking.Service
	auth     *auth.Service
	catalog  Catalog
	cache    SeatMapCache
	idemp    *idempotency.Idempotency
}

func NewHandlers(cfg *config.Config, logger observability.Logger, bookings *booking.Service, authSvc *auth.Service, catalog Catalog, cache SeatMapCache, idemp *idempotency.Idempotency) *Handlers {
	return &Handlers{
		cfg:      cfg,
		logger:   logger,
		bookings: bookings,
		auth:     authSvc,
		catalog:  catalog,
		cache:    cache,
		idemp:    idemp,
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *Handlers) writeError(w http.ResponseWriter, err error) {
	var conflict *domain.SeatConflictError
	switch {
	case errors.As(err, &conflict):
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error": conflict.Error(),
			"seats": conflict.Seats,
		})
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrInvalidID):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, domain.ErrUnauthorized):
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, domain.ErrDuplicate):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrSerializationFailure):
		writeJSON(w, http.StatusConflict, map[string]string{"error": "conflict, try again"})
	default:
		h.logger.Error("request failed", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func parseID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errors.Wrap(domain.ErrInvalidID, "invalid id")
	}
	return id, nil
}

type authResponse struct {
	Token  string `json:"token"`
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}

func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	user, session, err := h.auth.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, authResponse{
		Token:  session.Token,
		UserID: user.ID.String(),
		Name:   user.Name,
		Email:  user.Email,
	})
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	user, session, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, authResponse{
		Token:  session.Token,
		UserID: user.ID.String(),
		Name:   user.Name,
		Email:  user.Email,
	})
}

func (h *Handlers) CreateMovie(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title           string   `json:"title"`
		Description     string   `json:"description"`
		DurationMinutes int      `json:"duration_minutes"`
		Rating          string   `json:"rating"`
		PosterURL       string   `json:"poster_url"`
		Genre           []string `json:"genre"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	movie, err := domain.NewMovie(req.Title, req.Description, req.DurationMinutes, req.Rating, req.PosterURL, req.Genre)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if err := h.catalog.CreateMovie(r.Context(), movie); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": movie.ID.String()})
}

type movieResponse struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	Description     string   `json:"description,omitempty"`
	DurationMinutes int      `json:"duration_minutes"`
	Rating          string   `json:"rating,omitempty"`
	PosterURL       string   `json:"poster_url,omitempty"`
	Genre           []string `json:"genre"`
}

func (h *Handlers) ListMovies(w http.ResponseWriter, r *http.Request) {
	movies, err := h.catalog.ListMovies(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	resp := make([]movieResponse, 0, len(movies))
	for _, m := range movies {
		resp = append(resp, movieResponse{
			ID:              m.ID.String(),
			Title:           m.Title,
			Description:     m.Description,
			DurationMinutes: m.DurationMinutes,
			Rating:          m.Rating,
			PosterURL:       m.PosterURL,
			Genre:           m.Genre,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handlers) CreateShow(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MovieID    string    `json:"movie_id"`
		StartTime  time.Time `json:"start_time"`
		Screen     string    `json:"screen"`
		PriceCents int64     `json:"price_cents"`
		Rows       int       `json:"rows"`
		Cols       int       `json:"cols"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	movieID, err := parseID(req.MovieID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if _, err := h.catalog.GetMovie(r.Context(), movieID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "movie not found"})
			return
		}
		h.writeError(w, err)
		return
	}
	show, err := domain.NewShow(movieID, req.StartTime, req.Screen, req.PriceCents, req.Rows, req.Cols)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if err := h.catalog.CreateShow(r.Context(), show); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": show.ID.String()})
}

type showResponse struct {
	ID          string    `json:"id"`
	MovieID     string    `json:"movie_id"`
	StartTime   time.Time `json:"start_time"`
	Screen      string    `json:"screen"`
	PriceCents  int64     `json:"price_cents"`
	Rows        int       `json:"rows"`
	Cols        int       `json:"cols"`
	SeatsBooked []string  `json:"seats_booked"`
}

func (h *Handlers) ListShows(w http.ResponseWriter, r *http.Request) {
	var movieID *uuid.UUID
	if raw := r.URL.Query().Get("movie_id"); raw != "" {
		id, err := parseID(raw)
		if err != nil {
			h.writeError(w, err)
			return
		}
		movieID = &id
	}
	shows, err := h.catalog.ListShows(r.Context(), movieID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	resp := make([]showResponse, 0, len(shows))
	for _, s := range shows {
		resp = append(resp, showResponse{
			ID:          s.ID.String(),
			MovieID:     s.MovieID.String(),
			StartTime:   s.StartTime,
			Screen:      s.Screen,
			PriceCents:  s.PriceCents,
			Rows:        s.Rows,
			Cols:        s.Cols,
			SeatsBooked: s.SeatsBooked,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handlers) GetSeatMap(w http.ResponseWriter, r *http.Request) {
	showID, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	if h.cache != nil {
		cached, err := h.cache.GetSeatMap(r.Context(), showID)
		if err != nil {
			h.logger.Warn("seat map cache read failed", err)
		} else if cached != nil {
			writeJSON(w, http.StatusOK, cached)
			return
		}
	}
	show, err := h.catalog.GetShow(r.Context(), showID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	m := domain.RenderSeatMap(show)
	if h.cache != nil {
		if err := h.cache.SetSeatMap(r.Context(), showID, &m, h.cfg.SeatMapCacheTTL); err != nil {
			h.logger.Warn("seat map cache write failed", err)
		}
	}
	writeJSON(w, http.StatusOK, m)
}

type bookingResponse struct {
	BookingID   string `json:"booking_id"`
	AmountCents int64  `json:"amount_cents"`
	Status      string `json:"status"`
}

func (h *Handlers) CreateBooking(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	key := r.Header.Get("Idempotency-Key")
	if h.idemp != nil {
		existing, err := h.idemp.Get(r.Context(), key)
		if err != nil {
			h.writeError(w, err)
			return
		}
		if existing != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(existing.Status)
			w.Write(existing.Result)
			return
		}
	}

	var req struct {
		ShowID string   `json:"show_id"`
		Seats  []string `json:"seats"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	showID, err := parseID(req.ShowID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	b, err := h.bookings.Create(r.Context(), user.ID, showID, req.Seats)
	if err != nil {
		h.writeError(w, err)
		return
	}

	if h.cache != nil {
		if err := h.cache.InvalidateSeatMap(r.Context(), showID); err != nil {
			h.logger.Warn("seat map cache invalidation failed", err)
		}
	}

	resp := bookingResponse{BookingID: b.ID.String(), AmountCents: b.AmountCents, Status: b.Status}
	data, _ := json.Marshal(resp)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	w.Write(data)

	if h.idemp != nil {
		if err := h.idemp.Set(r.Context(), key, idempotency.Response{Status: http.StatusCreated, Result: data}); err != nil {
			h.logger.Warn("idempotency store failed", err)
		}
	}
}

func (h *Handlers) GetBooking(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	b, err := h.bookings.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":           b.ID.String(),
		"user_id":      b.UserID.String(),
		"show_id":      b.ShowID.String(),
		"seats":        b.Seats,
		"amount_cents": b.AmountCents,
		"status":       b.Status,
		"created_at":   b.CreatedAt,
	})
}

func (h *Handlers) Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (h *Handlers) Readyz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Ready"))
}
