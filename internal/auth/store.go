package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrHostNotFound indicates no host matches the given email.
var ErrHostNotFound = errors.New("host not found")

// Host is an administrator account able to own quizzes and drive
// sessions.
type Host struct {
	ID           uuid.UUID
	Email        string
	DisplayName  string
	PasswordHash string
}

// HostStore looks up host accounts for login. Account CRUD lives in
// the admin backend; this store is read-only.
type HostStore interface {
	GetHostByEmail(ctx context.Context, email string) (Host, error)
}

// PGHostStore reads host accounts from Postgres.
type PGHostStore struct {
	pool *pgxpool.Pool
}

// NewPGHostStore creates a Postgres-backed host store.
func NewPGHostStore(pool *pgxpool.Pool) *PGHostStore {
	return &PGHostStore{pool: pool}
}

// GetHostByEmail returns the host or ErrHostNotFound.
func (s *PGHostStore) GetHostByEmail(ctx context.Context, email string) (Host, error) {
	var h Host
	err := s.pool.QueryRow(ctx,
		`SELECT host_id, email, display_name, password_hash FROM hosts WHERE email = $1`, email,
	).Scan(&h.ID, &h.Email, &h.DisplayName, &h.PasswordHash)
	if errors.Is(err, pgx.ErrNoRows) {
		return Host{}, ErrHostNotFound
	}
	if err != nil {
		return Host{}, fmt.Errorf("load host: %w", err)
	}
	return h, nil
}
