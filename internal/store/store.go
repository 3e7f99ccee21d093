package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"

	"go.uber.org/multierr"
)

// Collection names.
const (
	Butterflies = "butterflies"
	Users       = "users"
	Ratings     = "butterflyrating"
)

// Collections lists every collection a store holds, in file order.
var Collections = []string{Butterflies, Ratings, Users}

// Supported backend drivers.
const (
	DriverJSON   = "json"
	DriverSQLite = "sqlite"
	DriverBolt   = "bolt"
)

// ValidDrivers defines the allowed driver names.
var ValidDrivers = []string{DriverJSON, DriverSQLite, DriverBolt}

var (
	// ErrDuplicate is returned by AppendUnique when a record with the same
	// values for the unique fields already exists.
	ErrDuplicate = errors.New("store: duplicate record")

	// ErrClosed is returned by operations on a closed store.
	ErrClosed = errors.New("store: closed")

	// ErrUnknownCollection is returned for collection names outside Collections.
	ErrUnknownCollection = errors.New("store: unknown collection")
)

// Record is a flat record with string-valued fields.
type Record map[string]string

// Clone returns a copy that shares no memory with r.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// matchesAll reports whether r and other agree on every listed field.
// A field missing from both records does not count as a match.
func (r Record) matchesAll(other Record, fields []string) bool {
	for _, f := range fields {
		v, ok := r[f]
		ov, ook := other[f]
		if !ok || !ook || v != ov {
			return false
		}
	}
	return len(fields) > 0
}

// Store is the record persistence boundary used by the service layer.
//
// All methods are safe for concurrent use. Returned records are copies;
// mutating them does not affect stored state.
type Store interface {
	// Find returns the first record whose field equals value.
	Find(ctx context.Context, collection, field, value string) (Record, bool, error)

	// Filter returns every record whose field equals value, in insertion order.
	Filter(ctx context.Context, collection, field, value string) ([]Record, error)

	// Read returns the whole collection in insertion order.
	Read(ctx context.Context, collection string) ([]Record, error)

	// Write replaces the whole collection.
	Write(ctx context.Context, collection string, records []Record) error

	// Append adds one record at the end of the collection.
	Append(ctx context.Context, collection string, rec Record) error

	// AppendUnique appends rec unless a record already exists whose values
	// equal rec's on every one of fields; in that case it returns
	// ErrDuplicate. The check and the append are atomic.
	AppendUnique(ctx context.Context, collection string, rec Record, fields ...string) error

	// RemoveAll empties the collection. Removing from an empty collection
	// succeeds.
	RemoveAll(ctx context.Context, collection string) error

	// Close releases the backend. Operations after Close return ErrClosed.
	Close() error
}

// Open opens the backend named by driver at path.
func Open(driver, path string) (Store, error) {
	switch driver {
	case DriverJSON:
		return OpenJSONFile(path)
	case DriverSQLite:
		return OpenSQLite(path)
	case DriverBolt:
		return OpenBolt(path)
	default:
		return nil, fmt.Errorf("store: unknown driver %q: must be one of %v", driver, ValidDrivers)
	}
}

// Remove deletes the files a driver keeps at path. Missing files are not an
// error. For SQLite the WAL and shared-memory sidecars go too.
func Remove(driver, path string) error {
	if !IsValidDriver(driver) {
		return fmt.Errorf("store: unknown driver %q: must be one of %v", driver, ValidDrivers)
	}
	paths := []string{path}
	if driver == DriverSQLite {
		paths = append(paths, path+"-wal", path+"-shm")
	}

	var err error
	for _, p := range paths {
		if rmErr := os.Remove(p); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
			err = multierr.Append(err, fmt.Errorf("store: remove %s: %w", p, rmErr))
		}
	}
	return err
}

// IsValidDriver checks if the driver is one of the supported backends.
func IsValidDriver(driver string) bool {
	return slices.Contains(ValidDrivers, driver)
}

// SortBy sorts records in place by field using less. The sort is stable,
// so records with equal keys keep their insertion order.
func SortBy(records []Record, field string, less func(a, b string) bool) {
	slices.SortStableFunc(records, func(x, y Record) int {
		switch {
		case less(x[field], y[field]):
			return -1
		case less(y[field], x[field]):
			return 1
		default:
			return 0
		}
	})
}

func checkCollection(collection string) error {
	if !slices.Contains(Collections, collection) {
		return fmt.Errorf("%w: %q", ErrUnknownCollection, collection)
	}
	return nil
}

func findIn(records []Record, field, value string) (Record, bool) {
	for _, r := range records {
		if v, ok := r[field]; ok && v == value {
			return r.Clone(), true
		}
	}
	return nil, false
}

func filterIn(records []Record, field, value string) []Record {
	out := make([]Record, 0)
	for _, r := range records {
		if v, ok := r[field]; ok && v == value {
			out = append(out, r.Clone())
		}
	}
	return out
}

func containsMatch(records []Record, rec Record, fields []string) bool {
	for _, r := range records {
		if r.matchesAll(rec, fields) {
			return true
		}
	}
	return false
}

func cloneAll(records []Record) []Record {
	out := make([]Record, len(records))
	for i, r := range records {
		out[i] = r.Clone()
	}
	return out
}
