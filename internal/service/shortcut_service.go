package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/MikhailRaia/url-shortcuts/internal/keygen"
	"github.com/MikhailRaia/url-shortcuts/internal/metrics"
	"github.com/MikhailRaia/url-shortcuts/internal/model"
	"github.com/MikhailRaia/url-shortcuts/internal/storage"
	"github.com/rs/zerolog/log"
)

// ShortcutService creates and resolves shortcuts and renders them as
// absolute URLs under baseURL.
type ShortcutService struct {
	store   storage.ShortcutStore
	baseURL string
}

// NewShortcutService constructs a ShortcutService with the given store and base URL.
func NewShortcutService(store storage.ShortcutStore, baseURL string) *ShortcutService {
	return &ShortcutService{
		store:   store,
		baseURL: baseURL,
	}
}

// Shorten stores originalURL and returns the absolute short URL.
func (s *ShortcutService) Shorten(ctx context.Context, originalURL string) (string, error) {
	key, err := s.store.Create(ctx, originalURL)
	if err != nil {
		if errors.Is(err, keygen.ErrEntropyUnavailable) {
			log.Error().Err(err).Msg("Random source failed while generating key")
		}
		return "", err
	}

	metrics.RecordCreated()

	return s.ShortURL(key)
}

// ShortURL joins key onto the base URL.
func (s *ShortcutService) ShortURL(key string) (string, error) {
	shortURL, err := url.JoinPath(s.baseURL, key)
	if err != nil {
		return "", fmt.Errorf("failed to build short URL: %w", err)
	}
	return shortURL, nil
}

// Resolve returns the destination stored under key.
func (s *ShortcutService) Resolve(ctx context.Context, key string) (string, bool, error) {
	originalURL, found, err := s.store.Resolve(ctx, key)
	switch {
	case err != nil:
		metrics.RecordResolve(metrics.ResultError)
		return "", false, err
	case !found:
		metrics.RecordResolve(metrics.ResultMiss)
	default:
		metrics.RecordResolve(metrics.ResultHit)
	}

	return originalURL, found, nil
}

// Stats returns the number of stored shortcuts.
func (s *ShortcutService) Stats(ctx context.Context) (model.Stats, error) {
	count, err := s.store.Count(ctx)
	if err != nil {
		return model.Stats{}, fmt.Errorf("error counting shortcuts: %w", err)
	}
	return model.Stats{Shortcuts: count}, nil
}

// Ping checks that the store is reachable.
func (s *ShortcutService) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}
