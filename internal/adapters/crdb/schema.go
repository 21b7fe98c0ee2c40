package crdb

import "context"

// EnsureSchema creates the relational tables if they do not exist yet.
// Idempotent; run at startup and in tests.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		);
		CREATE TABLE IF NOT EXISTS sessions (
			token TEXT PRIMARY KEY,
			user_id UUID NOT NULL REFERENCES users (id),
			expires_at TIMESTAMPTZ NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		);
		CREATE TABLE IF NOT EXISTS bookings (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL,
			show_id UUID NOT NULL,
			amount_cents INT8 NOT NULL,
			status TEXT NOT NULL CHECK (status IN ('confirmed', 'cancelled')),
			created_at TIMESTAMPTZ NOT NULL
		);
		CREATE TABLE IF NOT EXISTS booking_seats (
			booking_id UUID NOT NULL REFERENCES bookings (id),
			seat_idx INT NOT NULL,
			seat_id TEXT NOT NULL,
			PRIMARY KEY (booking_id, seat_idx)
		);
		CREATE TABLE IF NOT EXISTS outbox (
			id UUID PRIMARY KEY,
			aggregate_type TEXT NOT NULL,
			aggregate_id UUID NOT NULL,
			event_type TEXT NOT NULL,
			payload_json JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			published_at TIMESTAMPTZ,
			status TEXT NOT NULL CHECK (status IN ('NEW', 'PUBLISHED', 'FAILED')),
			dedupe_key TEXT NOT NULL
		);
	`)
	return err
}
