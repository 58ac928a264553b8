package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/MikhailRaia/url-shortcuts/internal/keygen"
	"github.com/MikhailRaia/url-shortcuts/internal/storage"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/rs/zerolog/log"
)

// maxInsertAttempts bounds how many colliding keys Create tolerates before
// giving up. With 48 bit keys it is never reached outside of tests.
const maxInsertAttempts = 32

// ErrTooManyCollisions is returned when every candidate key was already taken.
var ErrTooManyCollisions = errors.New("too many key collisions")

// dbPool is the subset of *pgxpool.Pool the storage uses.
type dbPool interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// Storage implements storage.ShortcutStore on PostgreSQL. Uniqueness is
// enforced by the primary key; a colliding insert is retried with a new key.
type Storage struct {
	pool   dbPool
	keygen *keygen.Generator
}

// NewStorage connects to dsn and creates the shortcuts table if needed.
func NewStorage(ctx context.Context, dsn string, g *keygen.Generator) (*Storage, error) {
	if dsn == "" {
		return nil, errors.New("database connection string is empty")
	}

	pool, err := pgxpool.Connect(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := newStorage(pool, g)
	if err := s.createTable(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return s, nil
}

func newStorage(pool dbPool, g *keygen.Generator) *Storage {
	if g == nil {
		g = keygen.New()
	}
	return &Storage{pool: pool, keygen: g}
}

func (s *Storage) createTable(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS shortcuts (
			key VARCHAR(16) PRIMARY KEY,
			url TEXT NOT NULL,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		);
	`

	if _, err := s.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create shortcuts table: %w", err)
	}
	return nil
}

// Create inserts url under a fresh key. The insert itself is the uniqueness
// check, so concurrent creators in other processes are handled too.
func (s *Storage) Create(ctx context.Context, url string) (string, error) {
	if url == "" {
		return "", storage.ErrEmptyURL
	}

	for attempt := 1; attempt <= maxInsertAttempts; attempt++ {
		key, err := s.keygen.Candidate()
		if err != nil {
			return "", fmt.Errorf("failed to generate key: %w", err)
		}

		_, err = s.pool.Exec(ctx, "INSERT INTO shortcuts (key, url) VALUES ($1, $2)", key, url)
		if err == nil {
			log.Debug().Str("key", key).Int("attempt", attempt).Msg("Shortcut created")
			return key, nil
		}

		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			s.keygen.Collided()
			log.Debug().Str("key", key).Int("attempt", attempt).Msg("Key collision, redrawing")
			continue
		}

		return "", fmt.Errorf("error inserting shortcut: %w", err)
	}

	return "", ErrTooManyCollisions
}

// Resolve looks key up. A missing row is reported as found == false.
func (s *Storage) Resolve(ctx context.Context, key string) (string, bool, error) {
	var url string
	err := s.pool.QueryRow(ctx, "SELECT url FROM shortcuts WHERE key = $1", key).Scan(&url)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("error querying shortcut: %w", err)
	}

	return url, true, nil
}

// Exists reports whether key is taken.
func (s *Storage) Exists(ctx context.Context, key string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM shortcuts WHERE key = $1)", key).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking if key exists: %w", err)
	}
	return exists, nil
}

// Count returns the number of rows in the shortcuts table.
func (s *Storage) Count(ctx context.Context) (int, error) {
	var count int64
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM shortcuts").Scan(&count); err != nil {
		return 0, fmt.Errorf("error counting shortcuts: %w", err)
	}
	return int(count), nil
}

// Ping checks the connection pool.
func (s *Storage) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the connection pool.
func (s *Storage) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}
