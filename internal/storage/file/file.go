package file

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/MikhailRaia/url-shortcuts/internal/keygen"
	"github.com/MikhailRaia/url-shortcuts/internal/model"
	"github.com/MikhailRaia/url-shortcuts/internal/storage"
	"github.com/MikhailRaia/url-shortcuts/internal/storage/memory"
	"github.com/rs/zerolog/log"
)

// Storage implements storage.ShortcutStore as an in-memory map backed by an
// append-only JSONL journal.
type Storage struct {
	*memory.Storage
	journal *journal
}

// NewStorage opens or creates the journal at filePath, replays it and
// returns a storage that appends every new shortcut to it.
func NewStorage(filePath string, g *keygen.Generator) (*Storage, error) {
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	records, err := loadFromFile(filePath)
	if err != nil {
		return nil, err
	}

	f, err := os.OpenFile(filePath, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open file for writing: %w", err)
	}

	j := &journal{file: f, counter: len(records)}
	for _, r := range records {
		if id, err := strconv.Atoi(r.UUID); err == nil && id > j.counter {
			j.counter = id
		}
	}

	mem := memory.NewStorage(memory.WithGenerator(g), memory.WithJournal(j))
	shortcuts := make([]model.Shortcut, 0, len(records))
	for _, r := range records {
		shortcuts = append(shortcuts, model.Shortcut{Key: r.ShortURL, URL: r.OriginalURL})
	}
	mem.Restore(shortcuts...)

	log.Info().
		Str("path", filePath).
		Int("restored", len(shortcuts)).
		Msg("File storage opened")

	return &Storage{Storage: mem, journal: j}, nil
}

// Ping reports whether the journal is still open.
func (s *Storage) Ping(context.Context) error {
	return s.journal.ping()
}

// Close flushes and closes the journal. Subsequent creates fail with storage.ErrClosed.
func (s *Storage) Close() error {
	return s.journal.close()
}

type journal struct {
	mu      sync.Mutex
	file    *os.File
	counter int
}

func (j *journal) Append(sc model.Shortcut) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.file == nil {
		return storage.ErrClosed
	}

	record := model.ShortcutRecord{
		UUID:        strconv.Itoa(j.counter + 1),
		ShortURL:    sc.Key,
		OriginalURL: sc.URL,
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	if _, err := j.file.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write to file: %w", err)
	}

	j.counter++
	return nil
}

func (j *journal) ping() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.file == nil {
		return storage.ErrClosed
	}
	return nil
}

func (j *journal) close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.file == nil {
		return nil
	}

	err := errors.Join(j.file.Sync(), j.file.Close())
	j.file = nil
	return err
}

func loadFromFile(filePath string) ([]model.ShortcutRecord, error) {
	file, err := os.OpenFile(filePath, os.O_RDONLY|os.O_CREATE, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	var records []model.ShortcutRecord
	reader := bufio.NewReader(file)
	line := 0

	for {
		text, readErr := reader.ReadBytes('\n')
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return nil, fmt.Errorf("error reading file: %w", readErr)
		}

		line++
		text = bytes.TrimSpace(text)
		if len(text) > 0 {
			var record model.ShortcutRecord
			if err := json.Unmarshal(text, &record); err != nil {
				return nil, fmt.Errorf("failed to unmarshal record on line %d: %w", line, err)
			}
			if record.ShortURL == "" {
				return nil, fmt.Errorf("record on line %d has no key", line)
			}

			records = append(records, record)
		}

		if readErr != nil {
			return records, nil
		}
	}
}
