package crdb_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/movietix/backend/internal/adapters/crdb"
	"github.com/movietix/backend/internal/domain"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startRepo(t *testing.T) *crdb.Repository {
	t.Helper()
	ctx := context.Background()

	crdbContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "cockroachdb/cockroach:v24.1.1",
			Cmd:          []string{"start-single-node", "--insecure"},
			ExposedPorts: []string{"26257/tcp", "8080/tcp"},
			WaitingFor:   wait.ForHTTP("/health?ready=1").WithPort("8080"),
		},
		Started: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { crdbContainer.Terminate(ctx) })

	host, err := crdbContainer.Host(ctx)
	if err != nil {
		t.Fatal(err)
	}
	port, err := crdbContainer.MappedPort(ctx, "26257")
	if err != nil {
		t.Fatal(err)
	}

	pool, err := pgxpool.New(ctx, "postgresql://root@"+host+":"+port.Port()+"/defaultdb?sslmode=disable")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(pool.Close)

	repo := crdb.NewRepository(pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		t.Fatal(err)
	}
	return repo
}

func TestRepository_UsersAndSessions(t *testing.T) {
	repo := startRepo(t)
	ctx := context.Background()

	user := &domain.User{
		ID:           uuid.New(),
		Name:         "Ada",
		Email:        "ada@example.com",
		PasswordHash: "$2a$10$notarealhash",
		CreatedAt:    time.Now().UTC(),
	}
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	dup := &domain.User{
		ID:           uuid.New(),
		Name:         "Imposter",
		Email:        "ada@example.com",
		PasswordHash: "$2a$10$other",
		CreatedAt:    time.Now().UTC(),
	}
	if err := repo.CreateUser(ctx, dup); !errors.Is(err, domain.ErrDuplicate) {
		t.Errorf("expected ErrDuplicate for reused email, got %v", err)
	}

	fetched, err := repo.GetUserByEmail(ctx, "ada@example.com")
	if err != nil {
		t.Fatal(err)
	}
	if fetched.ID != user.ID {
		t.Errorf("expected user %s, got %s", user.ID, fetched.ID)
	}

	session := &domain.Session{
		Token:     "token-1",
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(time.Hour).UTC(),
		CreatedAt: time.Now().UTC(),
	}
	if err := repo.CreateSession(ctx, session); err != nil {
		t.Fatal(err)
	}
	got, err := repo.GetSession(ctx, "token-1")
	if err != nil {
		t.Fatal(err)
	}
	if got.UserID != user.ID {
		t.Errorf("expected session for %s, got %s", user.ID, got.UserID)
	}
	if _, err := repo.GetSession(ctx, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRepository_InsertBooking(t *testing.T) {
	repo := startRepo(t)
	ctx := context.Background()

	booking := domain.NewBooking(uuid.New(), uuid.New(), []string{"B3", "A1", "B1"}, 1250)
	if err := repo.InsertBooking(ctx, booking); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	fetched, err := repo.GetBooking(ctx, booking.ID)
	if err != nil {
		t.Fatal(err)
	}
	if fetched.AmountCents != 3*1250 {
		t.Errorf("expected amount %d, got %d", 3*1250, fetched.AmountCents)
	}
	if fetched.Status != domain.BookingConfirmed {
		t.Errorf("expected status confirmed, got %s", fetched.Status)
	}
	// Submitted order survives the round trip.
	want := []string{"B3", "A1", "B1"}
	for i, seat := range want {
		if fetched.Seats[i] != seat {
			t.Errorf("seat %d: expected %s, got %s", i, seat, fetched.Seats[i])
		}
	}

	if _, err := repo.GetBooking(ctx, uuid.New()); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	// The insert also queued a booking.confirmed outbox record.
	records, err := repo.GetUnpublishedOutbox(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 outbox record, got %d", len(records))
	}
	rec := records[0]
	if rec.EventType != "booking.confirmed" || rec.AggregateID != booking.ID {
		t.Errorf("unexpected outbox record %+v", rec)
	}

	if err := repo.MarkPublished(ctx, rec.ID, time.Now().UTC()); err != nil {
		t.Fatal(err)
	}
	records, err = repo.GetUnpublishedOutbox(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 0 {
		t.Errorf("expected outbox drained, got %d records", len(records))
	}
}
