// Package postgres provides the pgx-backed store implementation.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vyrodovalexey/avgitgw/internal/store"
)

// Config holds connection pool settings.
type Config struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	ConnMaxLifetime time.Duration
}

// Store is a Postgres-backed implementation of store.UserStore and
// store.RepositoryStore. Every lookup is a single round trip scoped to the
// caller's context; cancellation abandons the query without side effects.
type Store struct {
	pool *pgxpool.Pool
}

// New creates a Store from the given configuration.
func New(ctx context.Context, cfg Config) (*Store, error) {
	pcfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	if cfg.MaxConns > 0 {
		pcfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		pcfg.MinConns = cfg.MinConns
	}
	if cfg.ConnMaxLifetime > 0 {
		pcfg.MaxConnLifetime = cfg.ConnMaxLifetime
	}

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	return &Store{pool: pool}, nil
}

// NewWithPool wraps an existing pool. The caller keeps ownership.
func NewWithPool(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Ping verifies database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close closes the underlying pool. Idempotent.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

const userColumns = "id, username, email, password_hash, session"

// ByUsername returns the user with an exact-case username match.
func (s *Store) ByUsername(ctx context.Context, username string) (*store.User, error) {
	query := "select " + userColumns + " from users where username = $1 limit 1"
	return s.queryUser(ctx, query, username)
}

// ByIdentity returns the user matching both id and session token.
func (s *Store) ByIdentity(ctx context.Context, id int64, session string) (*store.User, error) {
	query := "select " + userColumns + " from users where id = $1 and session = $2 limit 1"
	return s.queryUser(ctx, query, id, session)
}

// ByEmail returns the user with a case-insensitive email match.
func (s *Store) ByEmail(ctx context.Context, email string) (*store.User, error) {
	query := "select " + userColumns + " from users where lower(email) = lower($1) limit 1"
	return s.queryUser(ctx, query, email)
}

// ByOwnerAndName returns the repository owned by the named account.
func (s *Store) ByOwnerAndName(ctx context.Context, owner, name string) (*store.Repository, error) {
	query := `select r.id, r.owner_id, r.name, r.visibility
		from repositories r
		join users u on u.id = r.owner_id
		where u.username = $1 and r.name = $2
		limit 1`

	repo := &store.Repository{}
	err := s.pool.QueryRow(ctx, query, owner, name).
		Scan(&repo.ID, &repo.OwnerID, &repo.Name, &repo.Visibility)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("query repository: %w", err)
	}

	return repo, nil
}

func (s *Store) queryUser(ctx context.Context, query string, args ...any) (*store.User, error) {
	user := &store.User{}
	err := s.pool.QueryRow(ctx, query, args...).
		Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.Session)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("query user: %w", err)
	}

	return user, nil
}
