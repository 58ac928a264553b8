package memory

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/MikhailRaia/url-shortcuts/internal/keygen"
	"github.com/MikhailRaia/url-shortcuts/internal/model"
	"github.com/MikhailRaia/url-shortcuts/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ storage.ShortcutStore = (*Storage)(nil)

type recordingJournal struct {
	mu      sync.Mutex
	records []model.Shortcut
	err     error
}

func (j *recordingJournal) Append(sc model.Shortcut) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.err != nil {
		return j.err
	}
	j.records = append(j.records, sc)
	return nil
}

func TestStorage_Create(t *testing.T) {
	s := NewStorage()
	ctx := context.Background()

	key, err := s.Create(ctx, "http://www.example.com")
	require.NoError(t, err)

	assert.Len(t, key, 8)
	assert.Regexp(t, `^[A-Za-z0-9_-]{8}$`, key)

	url, found, err := s.Resolve(ctx, key)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "http://www.example.com", url)
}

func TestStorage_CreateEmptyURL(t *testing.T) {
	s := NewStorage()

	key, err := s.Create(context.Background(), "")
	assert.ErrorIs(t, err, storage.ErrEmptyURL)
	assert.Empty(t, key)

	count, err := s.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestStorage_CreateAcceptsUnvalidatedURL(t *testing.T) {
	s := NewStorage()
	ctx := context.Background()

	key, err := s.Create(ctx, "not a url at all")
	require.NoError(t, err)

	url, found, err := s.Resolve(ctx, key)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "not a url at all", url)
}

func TestStorage_Resolve(t *testing.T) {
	s := NewStorage()
	ctx := context.Background()

	key, err := s.Create(ctx, "https://example.com")
	require.NoError(t, err)

	tests := []struct {
		name      string
		key       string
		wantURL   string
		wantFound bool
	}{
		{
			name:      "existing key",
			key:       key,
			wantURL:   "https://example.com",
			wantFound: true,
		},
		{
			name:      "unknown key",
			key:       "doesnotexist",
			wantURL:   "",
			wantFound: false,
		},
		{
			name:      "empty key",
			key:       "",
			wantURL:   "",
			wantFound: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for i := 0; i < 3; i++ {
				url, found, err := s.Resolve(ctx, tt.key)
				require.NoError(t, err)
				assert.Equal(t, tt.wantFound, found)
				assert.Equal(t, tt.wantURL, url)
			}
		})
	}
}

func TestStorage_Exists(t *testing.T) {
	s := NewStorage()
	ctx := context.Background()

	key, err := s.Create(ctx, "https://example.com")
	require.NoError(t, err)

	ok, err := s.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Exists(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStorage_CreateRedrawsTakenKey(t *testing.T) {
	draw := []byte{1, 2, 3, 4, 5, 6}
	next := []byte{9, 9, 9, 9, 9, 9}
	source := bytes.NewReader(append(append(append([]byte{}, draw...), draw...), next...))

	collisions := 0
	g := keygen.New(keygen.WithReader(source), keygen.WithCollisionHook(func() { collisions++ }))
	s := NewStorage(WithGenerator(g))
	ctx := context.Background()

	first, err := s.Create(ctx, "https://first.example")
	require.NoError(t, err)

	second, err := s.Create(ctx, "https://second.example")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.Equal(t, 1, collisions)

	url, _, _ := s.Resolve(ctx, first)
	assert.Equal(t, "https://first.example", url)
	url, _, _ = s.Resolve(ctx, second)
	assert.Equal(t, "https://second.example", url)
}

func TestStorage_CreateEntropyFailure(t *testing.T) {
	g := keygen.New(keygen.WithReader(bytes.NewReader(nil)))
	s := NewStorage(WithGenerator(g))

	_, err := s.Create(context.Background(), "https://example.com")
	assert.ErrorIs(t, err, keygen.ErrEntropyUnavailable)

	count, _ := s.Count(context.Background())
	assert.Zero(t, count)
}

func TestStorage_Journal(t *testing.T) {
	j := &recordingJournal{}
	s := NewStorage(WithJournal(j))

	key, err := s.Create(context.Background(), "https://example.com")
	require.NoError(t, err)

	require.Len(t, j.records, 1)
	assert.Equal(t, model.Shortcut{Key: key, URL: "https://example.com"}, j.records[0])
}

func TestStorage_JournalFailureAbortsCreate(t *testing.T) {
	j := &recordingJournal{err: errors.New("disk full")}
	s := NewStorage(WithJournal(j))
	ctx := context.Background()

	key, err := s.Create(ctx, "https://example.com")
	assert.Error(t, err)
	assert.Empty(t, key)

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestStorage_Restore(t *testing.T) {
	j := &recordingJournal{}
	s := NewStorage(WithJournal(j))
	ctx := context.Background()

	s.Restore(
		model.Shortcut{Key: "EbA356Ak", URL: "http://www.example.com"},
		model.Shortcut{Key: "aoM4apKh", URL: "http://www.mozilla.org"},
	)

	url, found, err := s.Resolve(ctx, "aoM4apKh")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "http://www.mozilla.org", url)

	count, _ := s.Count(ctx)
	assert.Equal(t, 2, count)
	assert.Empty(t, j.records)
}

func TestStorage_UniqueKeys(t *testing.T) {
	s := NewStorage()
	ctx := context.Background()
	keys := make(map[string]struct{})

	for i := 0; i < 10000; i++ {
		key, err := s.Create(ctx, "https://example.com")
		require.NoError(t, err)
		keys[key] = struct{}{}
	}

	assert.Len(t, keys, 10000)

	count, _ := s.Count(ctx)
	assert.Equal(t, 10000, count)
}

func TestStorage_ConcurrentCreate(t *testing.T) {
	s := NewStorage()
	ctx := context.Background()

	const workers = 50
	const perWorker = 100

	type result struct {
		key string
		url string
	}

	results := make(chan result, workers*perWorker)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				url := "https://example.com/" + string(rune('a'+w%26)) + "/" + string(rune('a'+i%26))
				key, err := s.Create(ctx, url)
				if !assert.NoError(t, err) {
					return
				}
				results <- result{key: key, url: url}

				_, _, _ = s.Resolve(ctx, key)
			}
		}(w)
	}
	wg.Wait()
	close(results)

	seen := make(map[string]string)
	for r := range results {
		_, dup := seen[r.key]
		assert.False(t, dup, "key %s returned twice", r.key)
		seen[r.key] = r.url
	}
	assert.Len(t, seen, workers*perWorker)

	for key, want := range seen {
		got, found, err := s.Resolve(ctx, key)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, want, got)
	}
}

func TestStorage_ConcurrentCreateWithCollidingSource(t *testing.T) {
	g := keygen.New(keygen.WithSize(1))
	s := NewStorage(WithGenerator(g))
	ctx := context.Background()

	var wg sync.WaitGroup
	keys := make(chan string, 200)

	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			key, err := s.Create(ctx, "https://example.com")
			if assert.NoError(t, err) {
				keys <- key
			}
		}()
	}
	wg.Wait()
	close(keys)

	seen := make(map[string]struct{})
	for k := range keys {
		_, dup := seen[k]
		assert.False(t, dup)
		seen[k] = struct{}{}
	}
	assert.Len(t, seen, 200)
}

func BenchmarkStorage_Create(b *testing.B) {
	s := NewStorage()
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = s.Create(ctx, "https://example.com/very/long/url/path")
	}
}

func BenchmarkStorage_Resolve(b *testing.B) {
	s := NewStorage()
	ctx := context.Background()
	key, _ := s.Create(ctx, "https://example.com")

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_, _, _ = s.Resolve(ctx, key)
		}
	})
}
