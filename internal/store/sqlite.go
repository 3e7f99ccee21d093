package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 0 - Initial schema (pre-migration)
// 1 - Added (collection, seq) index
const currentSchemaVersion = 1

// SQLiteStore keeps records in a single SQLite table.
//
// The connection pool is limited to one connection, so every statement and
// transaction runs on the same connection and mutations are serialized.
// AppendUnique runs its scan and insert inside one transaction.
type SQLiteStore struct {
	db     *sql.DB
	closed atomic.Bool
}

var _ Store = (*SQLiteStore)(nil)

// OpenSQLite creates or opens a SQLite database at the given path.
// Applies required pragmas and migrations automatically.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode (balance durability/performance)
//   - 5-second busy timeout for lock contention
//
// This function is idempotent - safe to call multiple times.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("store: create directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: connect to database: %w", err)
	}

	// SQLite only supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: apply pragmas: %w", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: apply schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// DB returns the underlying sql.DB for direct queries.
// Use with caution - prefer using Store methods when available.
func (s *SQLiteStore) DB() *sql.DB {
	return s.db
}

func (s *SQLiteStore) Find(ctx context.Context, collection, field, value string) (Record, bool, error) {
	records, err := s.Read(ctx, collection)
	if err != nil {
		return nil, false, err
	}
	rec, ok := findIn(records, field, value)
	return rec, ok, nil
}

func (s *SQLiteStore) Filter(ctx context.Context, collection, field, value string) ([]Record, error) {
	records, err := s.Read(ctx, collection)
	if err != nil {
		return nil, err
	}
	return filterIn(records, field, value), nil
}

func (s *SQLiteStore) Read(ctx context.Context, collection string) ([]Record, error) {
	if err := s.check(collection); err != nil {
		return nil, err
	}
	records, err := readCollection(ctx, s.db, collection)
	if err != nil {
		return nil, fmt.Errorf("store: read %s: %w", collection, err)
	}
	return records, nil
}

func (s *SQLiteStore) Write(ctx context.Context, collection string, records []Record) error {
	if err := s.check(collection); err != nil {
		return err
	}
	return s.inTx(ctx, "write", collection, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM records WHERE collection = ?`, collection); err != nil {
			return err
		}
		for _, rec := range records {
			if err := insertRecord(ctx, tx, collection, rec); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *SQLiteStore) Append(ctx context.Context, collection string, rec Record) error {
	if err := s.check(collection); err != nil {
		return err
	}
	if err := insertRecord(ctx, s.db, collection, rec); err != nil {
		return fmt.Errorf("store: append %s: %w", collection, err)
	}
	return nil
}

func (s *SQLiteStore) AppendUnique(ctx context.Context, collection string, rec Record, fields ...string) error {
	if err := s.check(collection); err != nil {
		return err
	}
	return s.inTx(ctx, "append unique", collection, func(tx *sql.Tx) error {
		current, err := readCollection(ctx, tx, collection)
		if err != nil {
			return err
		}
		if containsMatch(current, rec, fields) {
			return ErrDuplicate
		}
		return insertRecord(ctx, tx, collection, rec)
	})
}

func (s *SQLiteStore) RemoveAll(ctx context.Context, collection string) error {
	if err := s.check(collection); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE collection = ?`, collection); err != nil {
		return fmt.Errorf("store: remove all %s: %w", collection, err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db == nil || s.closed.Swap(true) {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStore) check(collection string) error {
	if s.closed.Load() {
		return ErrClosed
	}
	return checkCollection(collection)
}

// inTx runs fn in a transaction. ErrDuplicate is returned unwrapped so
// callers can compare it directly.
func (s *SQLiteStore) inTx(ctx context.Context, op, collection string, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: %s %s: begin tx: %w", op, collection, err)
	}
	defer tx.Rollback() // No-op if committed

	if err := fn(tx); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return ErrDuplicate
		}
		return fmt.Errorf("store: %s %s: %w", op, collection, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: %s %s: commit: %w", op, collection, err)
	}
	return nil
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func readCollection(ctx context.Context, q querier, collection string) ([]Record, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT data FROM records
		WHERE collection = ?
		ORDER BY seq ASC
	`, collection)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]Record, 0)
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		rec, err := UnmarshalRecord([]byte(data))
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func insertRecord(ctx context.Context, q querier, collection string, rec Record) error {
	data, err := MarshalRecord(rec)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx, `INSERT INTO records (collection, data) VALUES (?, ?)`, collection, string(data))
	return err
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// applySchema creates tables if they don't exist and runs migrations.
// This function is idempotent.
func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}
	if version < currentSchemaVersion {
		if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
			return fmt.Errorf("set user_version: %w", err)
		}
	}

	return nil
}
