// Package storage defines the shortcut store contract shared by all backends.
package storage

import (
	"context"
	"errors"
)

var (
	// ErrEmptyURL is returned by Create for an empty destination.
	ErrEmptyURL = errors.New("url is empty")
	// ErrClosed is returned by operations on a closed store.
	ErrClosed = errors.New("store is closed")
)

// ShortcutStore owns the key to URL mapping.
//
// Create must run its generate-check-insert sequence atomically with respect
// to every other Create, so two concurrent calls never end up with the same
// key. Resolve never mutates and reports a missing key as found == false with
// a nil error; err is reserved for backend failures.
type ShortcutStore interface {
	Create(ctx context.Context, url string) (string, error)
	Resolve(ctx context.Context, key string) (url string, found bool, err error)
	Exists(ctx context.Context, key string) (bool, error)
	Count(ctx context.Context) (int, error)
	Ping(ctx context.Context) error
	Close() error
}
