// Package keygen produces short, URL-safe, random shortcut keys.
//
// A key is a fixed-size draw from a cryptographically secure source encoded
// with unpadded base64url, so 6 bytes give an 8 character key over
// [A-Za-z0-9_-] with 48 bits of entropy.
package keygen

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"github.com/MikhailRaia/url-shortcuts/internal/pool"
)

// DefaultSize is the number of random bytes drawn per key.
const DefaultSize = 6

// ErrEntropyUnavailable is returned when the random source cannot produce bytes.
var ErrEntropyUnavailable = errors.New("entropy source unavailable")

// KeySet reports whether a key is already taken.
type KeySet interface {
	Exists(key string) bool
}

// KeySetFunc adapts a plain function to KeySet.
type KeySetFunc func(key string) bool

// Exists calls f(key).
func (f KeySetFunc) Exists(key string) bool {
	return f(key)
}

// Generator draws random keys. It is safe for concurrent use as long as the
// configured reader is.
type Generator struct {
	size        int
	reader      io.Reader
	onCollision func()
	buffers     *pool.Pool[*drawBuffer]
}

// Option configures a Generator.
type Option func(*Generator)

// WithSize sets the number of random bytes per key. Non-positive values are ignored.
func WithSize(size int) Option {
	return func(g *Generator) {
		if size > 0 {
			g.size = size
		}
	}
}

// WithReader replaces crypto/rand.Reader as the entropy source.
func WithReader(r io.Reader) Option {
	return func(g *Generator) {
		if r != nil {
			g.reader = r
		}
	}
}

// WithCollisionHook registers fn to be called every time a drawn key is
// already taken and has to be redrawn.
func WithCollisionHook(fn func()) Option {
	return func(g *Generator) {
		g.onCollision = fn
	}
}

// New returns a Generator with DefaultSize and crypto/rand as the source.
func New(opts ...Option) *Generator {
	g := &Generator{
		size:    DefaultSize,
		reader:  rand.Reader,
		buffers: pool.New[*drawBuffer](16),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Size returns the number of random bytes drawn per key.
func (g *Generator) Size() int {
	return g.size
}

// KeyLen returns the length of every key this generator produces.
func (g *Generator) KeyLen() int {
	return base64.RawURLEncoding.EncodedLen(g.size)
}

// Candidate draws a single key without any uniqueness check.
func (g *Generator) Candidate() (string, error) {
	buf, ok := g.buffers.Get()
	if !ok || len(buf.b) != g.size {
		buf = &drawBuffer{b: make([]byte, g.size)}
	}
	defer g.buffers.Put(buf)

	if _, err := io.ReadFull(g.reader, buf.b); err != nil {
		return "", fmt.Errorf("%w: %v", ErrEntropyUnavailable, err)
	}

	return base64.RawURLEncoding.EncodeToString(buf.b), nil
}

// Next draws keys until one is not in existing. The result is only
// guaranteed absent at the moment of the check; callers that insert the key
// must hold whatever lock guards existing for the whole call.
func (g *Generator) Next(existing KeySet) (string, error) {
	for {
		key, err := g.Candidate()
		if err != nil {
			return "", err
		}

		if existing == nil || !existing.Exists(key) {
			return key, nil
		}

		g.Collided()
	}
}

// Collided reports a redraw to the collision hook. Backends that detect
// collisions on insert call it themselves.
func (g *Generator) Collided() {
	if g.onCollision != nil {
		g.onCollision()
	}
}

type drawBuffer struct {
	b []byte
}

func (d *drawBuffer) Reset() {
	for i := range d.b {
		d.b[i] = 0
	}
}
