package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

const jsonFileMode os.FileMode = 0o644

// JSONFileStore keeps every collection in memory and persists the whole
// document to a single JSON file on each mutation.
//
// Concurrency:
//   - Readers share an RLock and read the in-memory snapshot.
//   - Mutations hold the write lock across read-modify-write and file
//     replacement. The in-memory state is swapped only after the new file
//     has been renamed into place, so a failed write leaves both unchanged.
//
// Top-level keys that are not collections are kept verbatim and written back
// on every persist.
type JSONFileStore struct {
	mu     sync.RWMutex
	path   string
	data   map[string][]Record
	extra  map[string]json.RawMessage
	closed bool
}

var _ Store = (*JSONFileStore)(nil)

// OpenJSONFile opens the JSON document at path, creating it (and its
// directory) with empty collections if it does not exist.
func OpenJSONFile(path string) (*JSONFileStore, error) {
	s := &JSONFileStore{path: path, data: emptyCollections()}

	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("store: create directory: %w", err)
		}
		if err := s.persist(s.data); err != nil {
			return nil, err
		}
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("store: read %s: %w", path, err)
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("store: decode %s: %w", path, err)
	}
	for name, value := range doc {
		if checkCollection(name) != nil {
			if s.extra == nil {
				s.extra = make(map[string]json.RawMessage)
			}
			s.extra[name] = value
			continue
		}
		var records []Record
		if err := json.Unmarshal(value, &records); err != nil {
			return nil, fmt.Errorf("store: decode %s: collection %s: %w", path, name, err)
		}
		if records != nil {
			s.data[name] = records
		}
	}
	return s, nil
}

func (s *JSONFileStore) Find(ctx context.Context, collection, field, value string) (Record, bool, error) {
	records, unlock, err := s.view(ctx, collection)
	if err != nil {
		return nil, false, err
	}
	defer unlock()
	rec, ok := findIn(records, field, value)
	return rec, ok, nil
}

func (s *JSONFileStore) Filter(ctx context.Context, collection, field, value string) ([]Record, error) {
	records, unlock, err := s.view(ctx, collection)
	if err != nil {
		return nil, err
	}
	defer unlock()
	return filterIn(records, field, value), nil
}

func (s *JSONFileStore) Read(ctx context.Context, collection string) ([]Record, error) {
	records, unlock, err := s.view(ctx, collection)
	if err != nil {
		return nil, err
	}
	defer unlock()
	return cloneAll(records), nil
}

func (s *JSONFileStore) Write(ctx context.Context, collection string, records []Record) error {
	return s.mutate(ctx, "write", collection, func([]Record) ([]Record, error) {
		return cloneAll(records), nil
	})
}

func (s *JSONFileStore) Append(ctx context.Context, collection string, rec Record) error {
	return s.mutate(ctx, "append", collection, func(current []Record) ([]Record, error) {
		return append(current, rec.Clone()), nil
	})
}

func (s *JSONFileStore) AppendUnique(ctx context.Context, collection string, rec Record, fields ...string) error {
	return s.mutate(ctx, "append unique", collection, func(current []Record) ([]Record, error) {
		if containsMatch(current, rec, fields) {
			return nil, ErrDuplicate
		}
		return append(current, rec.Clone()), nil
	})
}

func (s *JSONFileStore) RemoveAll(ctx context.Context, collection string) error {
	return s.mutate(ctx, "remove all", collection, func([]Record) ([]Record, error) {
		return []Record{}, nil
	})
}

// Close marks the store closed. The file stays on disk.
func (s *JSONFileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// view takes the read lock and returns the live collection slice.
// Callers must not retain or mutate the slice after calling unlock.
func (s *JSONFileStore) view(ctx context.Context, collection string) ([]Record, func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	if err := checkCollection(collection); err != nil {
		return nil, nil, err
	}
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return nil, nil, ErrClosed
	}
	return s.data[collection], s.mu.RUnlock, nil
}

// mutate applies fn to a copy of the collection under the write lock and
// persists the result before publishing it.
func (s *JSONFileStore) mutate(ctx context.Context, op, collection string, fn func([]Record) ([]Record, error)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkCollection(collection); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	current := make([]Record, len(s.data[collection]))
	copy(current, s.data[collection])
	updated, err := fn(current)
	if err != nil {
		return err
	}

	next := make(map[string][]Record, len(s.data))
	for name, records := range s.data {
		next[name] = records
	}
	next[collection] = updated

	if err := s.persist(next); err != nil {
		return fmt.Errorf("store: %s %s: %w", op, collection, err)
	}
	s.data = next
	return nil
}

// persist writes the document to a temp file in the same directory and
// renames it over the target.
func (s *JSONFileStore) persist(data map[string][]Record) error {
	doc := make(map[string]any, len(data)+len(s.extra))
	for name, value := range s.extra {
		doc[name] = value
	}
	for name, records := range data {
		doc[name] = records
	}

	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // No-op after a successful rename

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, jsonFileMode); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

func emptyCollections() map[string][]Record {
	data := make(map[string][]Record, len(Collections))
	for _, name := range Collections {
		data[name] = []Record{}
	}
	return data
}
