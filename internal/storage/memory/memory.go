package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/MikhailRaia/url-shortcuts/internal/keygen"
	"github.com/MikhailRaia/url-shortcuts/internal/model"
	"github.com/MikhailRaia/url-shortcuts/internal/storage"
	"github.com/rs/zerolog/log"
)

// Journal records a shortcut before it becomes visible in the store.
// A failing Append aborts the Create that triggered it.
type Journal interface {
	Append(shortcut model.Shortcut) error
}

// Storage implements storage.ShortcutStore in process memory.
type Storage struct {
	shortcuts map[string]string
	keygen    *keygen.Generator
	journal   Journal
	mutex     sync.RWMutex
}

// Option configures a Storage.
type Option func(*Storage)

// WithGenerator sets the key generator. The default is keygen.New().
func WithGenerator(g *keygen.Generator) Option {
	return func(s *Storage) {
		if g != nil {
			s.keygen = g
		}
	}
}

// WithJournal makes every Create append to j while the write lock is held.
func WithJournal(j Journal) Option {
	return func(s *Storage) {
		s.journal = j
	}
}

// NewStorage creates an empty in-memory storage.
func NewStorage(opts ...Option) *Storage {
	s := &Storage{
		shortcuts: make(map[string]string),
		keygen:    keygen.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create stores url under a freshly generated key and returns the key.
// Key generation, the uniqueness check, journaling and the insert all run
// under the write lock.
func (s *Storage) Create(_ context.Context, url string) (string, error) {
	if url == "" {
		return "", storage.ErrEmptyURL
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	key, err := s.keygen.Next(keygen.KeySetFunc(s.has))
	if err != nil {
		return "", fmt.Errorf("failed to generate key: %w", err)
	}

	if s.journal != nil {
		if err := s.journal.Append(model.Shortcut{Key: key, URL: url}); err != nil {
			return "", fmt.Errorf("failed to journal shortcut: %w", err)
		}
	}

	s.shortcuts[key] = url

	log.Debug().Str("key", key).Msg("Shortcut created")

	return key, nil
}

// Resolve returns the URL stored under key.
func (s *Storage) Resolve(_ context.Context, key string) (string, bool, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	url, found := s.shortcuts[key]
	return url, found, nil
}

// Exists reports whether key is taken.
func (s *Storage) Exists(_ context.Context, key string) (bool, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return s.has(key), nil
}

// Count returns the number of stored shortcuts.
func (s *Storage) Count(_ context.Context) (int, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return len(s.shortcuts), nil
}

// Restore inserts already persisted shortcuts without journaling them.
func (s *Storage) Restore(shortcuts ...model.Shortcut) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for _, sc := range shortcuts {
		s.shortcuts[sc.Key] = sc.URL
	}
}

// Ping always succeeds.
func (s *Storage) Ping(context.Context) error {
	return nil
}

// Close is a no-op.
func (s *Storage) Close() error {
	return nil
}

// has must be called with the mutex held.
func (s *Storage) has(key string) bool {
	_, ok := s.shortcuts[key]
	return ok
}
