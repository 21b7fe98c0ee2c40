// Package auth issues opaque bearer tokens backed by stored sessions and
// verifies them on behalf of the booking endpoints. The booking core only
// ever consumes the resolved user id.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/movietix/backend/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

// Store is the account and session persistence the service needs.
type Store interface {
	CreateUser(ctx context.Context, u *domain.User) error
	GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	CreateSession(ctx context.Context, s *domain.Session) error
	GetSession(ctx context.Context, token string) (*domain.Session, error)
}

type Service struct {
	store      Store
	sessionTTL time.Duration
}

func NewService(store Store, sessionTTL time.Duration) *Service {
	return &Service{store: store, sessionTTL: sessionTTL}
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// NewToken returns a 256-bit random hex token.
func NewToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func (s *Service) Register(ctx context.Context, name, email, password string) (*domain.User, *domain.Session, error) {
	if name == "" {
		return nil, nil, errors.Wrap(domain.ErrInvalidInput, "name is required")
	}
	if !strings.Contains(email, "@") {
		return nil, nil, errors.Wrap(domain.ErrInvalidInput, "invalid email")
	}
	if len(password) < 8 {
		return nil, nil, errors.Wrap(domain.ErrInvalidInput, "password must be at least 8 characters")
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, nil, err
	}
	user := &domain.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, nil, err
	}
	session, err := s.issueSession(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}
	return user, session, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (*domain.User, *domain.Session, error) {
	user, err := s.store.GetUserByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil, errors.Wrap(domain.ErrUnauthorized, "invalid credentials")
	}
	if err != nil {
		return nil, nil, err
	}
	if !CheckPassword(user.PasswordHash, password) {
		return nil, nil, errors.Wrap(domain.ErrUnauthorized, "invalid credentials")
	}
	session, err := s.issueSession(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}
	return user, session, nil
}

// Authenticate resolves a bearer token to a user. Missing, unknown and
// expired tokens are all ErrUnauthorized.
func (s *Service) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, errors.Wrap(domain.ErrUnauthorized, "missing auth token")
	}
	session, err := s.store.GetSession(ctx, token)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, errors.Wrap(domain.ErrUnauthorized, "invalid or expired token")
	}
	if err != nil {
		return nil, err
	}
	if session.Expired(time.Now()) {
		return nil, errors.Wrap(domain.ErrUnauthorized, "invalid or expired token")
	}
	user, err := s.store.GetUser(ctx, session.UserID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, errors.Wrap(domain.ErrUnauthorized, "user not found")
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Service) issueSession(ctx context.Context, userID uuid.UUID) (*domain.Session, error) {
	token, err := NewToken()
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	session := &domain.Session{
		Token:     token,
		UserID:    userID,
		ExpiresAt: now.Add(s.sessionTTL),
		CreatedAt: now,
	}
	if err := s.store.CreateSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}
