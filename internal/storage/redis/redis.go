package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MikhailRaia/url-shortcuts/internal/keygen"
	"github.com/MikhailRaia/url-shortcuts/internal/storage"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	keyPrefix = "shortcut:"
	countKey  = "shortcuts:count"

	maxInsertAttempts = 32
)

// ErrTooManyCollisions is returned when every candidate key was already taken.
var ErrTooManyCollisions = errors.New("too many key collisions")

// createScript sets the shortcut only if the key is free and bumps the
// counter in the same step.
var createScript = redis.NewScript(`
if redis.call("SETNX", KEYS[1], ARGV[1]) == 1 then
	redis.call("INCR", KEYS[2])
	return 1
end
return 0
`)

// Options holds the connection settings for NewStorage.
type Options struct {
	Addr     string
	Password string
	DB       int
}

// Storage implements storage.ShortcutStore on Redis.
type Storage struct {
	client *redis.Client
	keygen *keygen.Generator
}

// NewStorage connects to Redis and verifies the connection.
func NewStorage(ctx context.Context, opts Options, g *keygen.Generator) (*Storage, error) {
	if opts.Addr == "" {
		return nil, errors.New("redis address is empty")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,

		PoolSize:     10,
		MinIdleConns: 2,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return newStorage(client, g), nil
}

func newStorage(client *redis.Client, g *keygen.Generator) *Storage {
	if g == nil {
		g = keygen.New()
	}
	return &Storage{client: client, keygen: g}
}

// Create stores url under a fresh key using SETNX as the uniqueness check.
func (s *Storage) Create(ctx context.Context, url string) (string, error) {
	if url == "" {
		return "", storage.ErrEmptyURL
	}

	for attempt := 1; attempt <= maxInsertAttempts; attempt++ {
		key, err := s.keygen.Candidate()
		if err != nil {
			return "", fmt.Errorf("failed to generate key: %w", err)
		}

		set, err := createScript.Run(ctx, s.client, []string{keyPrefix + key, countKey}, url).Int()
		if err != nil {
			return "", fmt.Errorf("redis create error: %w", err)
		}

		if set == 1 {
			log.Debug().Str("key", key).Int("attempt", attempt).Msg("Shortcut created")
			return key, nil
		}

		s.keygen.Collided()
		log.Debug().Str("key", key).Int("attempt", attempt).Msg("Key collision, redrawing")
	}

	return "", ErrTooManyCollisions
}

// Resolve returns the URL stored under key. A cache miss is found == false.
func (s *Storage) Resolve(ctx context.Context, key string) (string, bool, error) {
	url, err := s.client.Get(ctx, keyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get error: %w", err)
	}

	return url, true, nil
}

// Exists reports whether key is taken.
func (s *Storage) Exists(ctx context.Context, key string) (bool, error) {
	count, err := s.client.Exists(ctx, keyPrefix+key).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists error: %w", err)
	}

	return count > 0, nil
}

// Count returns the value of the shortcut counter.
func (s *Storage) Count(ctx context.Context) (int, error) {
	count, err := s.client.Get(ctx, countKey).Int()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis count error: %w", err)
	}

	return count, nil
}

// Ping checks that the server answers.
func (s *Storage) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the client.
func (s *Storage) Close() error {
	return s.client.Close()
}
