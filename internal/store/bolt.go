package store

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	bbolt "go.etcd.io/bbolt"
)

const boltFileMode os.FileMode = 0o600

var boltTimeout = 5 * time.Second

// BoltStore keeps each collection in its own bbolt bucket.
//
// Keys are the bucket's NextSequence encoded big-endian, so cursor order is
// insertion order. bbolt allows one read-write transaction at a time; every
// mutation, including the scan in AppendUnique, runs inside db.Update.
type BoltStore struct {
	db     *bbolt.DB
	closed atomic.Bool
}

var _ Store = (*BoltStore)(nil)

// OpenBolt opens (or creates) a bbolt database at path with one bucket per
// collection. The open times out if another process holds the file lock.
func OpenBolt(path string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("store: create directory: %w", err)
	}

	db, err := bbolt.Open(path, boltFileMode, &bbolt.Options{Timeout: boltTimeout})
	if err != nil {
		return nil, fmt.Errorf("store: open boltdb: %w", err)
	}

	if err := db.Update(func(tx *bbolt.Tx) error {
		for _, name := range Collections {
			if _, e := tx.CreateBucketIfNotExists([]byte(name)); e != nil {
				return e
			}
		}
		return nil
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: initialize buckets: %w", err)
	}

	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Find(ctx context.Context, collection, field, value string) (Record, bool, error) {
	records, err := s.Read(ctx, collection)
	if err != nil {
		return nil, false, err
	}
	rec, ok := findIn(records, field, value)
	return rec, ok, nil
}

func (s *BoltStore) Filter(ctx context.Context, collection, field, value string) ([]Record, error) {
	records, err := s.Read(ctx, collection)
	if err != nil {
		return nil, err
	}
	return filterIn(records, field, value), nil
}

func (s *BoltStore) Read(ctx context.Context, collection string) ([]Record, error) {
	if err := s.check(ctx, collection); err != nil {
		return nil, err
	}
	var records []Record
	err := s.db.View(func(tx *bbolt.Tx) error {
		var e error
		records, e = readBucket(tx, collection)
		return e
	})
	if err != nil {
		return nil, fmt.Errorf("store: read %s: %w", collection, err)
	}
	return records, nil
}

func (s *BoltStore) Write(ctx context.Context, collection string, records []Record) error {
	if err := s.check(ctx, collection); err != nil {
		return err
	}
	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket, err := resetBucket(tx, collection)
		if err != nil {
			return err
		}
		for _, rec := range records {
			if err := putRecord(bucket, rec); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("store: write %s: %w", collection, err)
	}
	return nil
}

func (s *BoltStore) Append(ctx context.Context, collection string, rec Record) error {
	if err := s.check(ctx, collection); err != nil {
		return err
	}
	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket, err := bucketFor(tx, collection)
		if err != nil {
			return err
		}
		return putRecord(bucket, rec)
	})
	if err != nil {
		return fmt.Errorf("store: append %s: %w", collection, err)
	}
	return nil
}

func (s *BoltStore) AppendUnique(ctx context.Context, collection string, rec Record, fields ...string) error {
	if err := s.check(ctx, collection); err != nil {
		return err
	}
	err := s.db.Update(func(tx *bbolt.Tx) error {
		current, err := readBucket(tx, collection)
		if err != nil {
			return err
		}
		if containsMatch(current, rec, fields) {
			return ErrDuplicate
		}
		return putRecord(tx.Bucket([]byte(collection)), rec)
	})
	if errors.Is(err, ErrDuplicate) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("store: append unique %s: %w", collection, err)
	}
	return nil
}

func (s *BoltStore) RemoveAll(ctx context.Context, collection string) error {
	if err := s.check(ctx, collection); err != nil {
		return err
	}
	err := s.db.Update(func(tx *bbolt.Tx) error {
		_, err := resetBucket(tx, collection)
		return err
	})
	if err != nil {
		return fmt.Errorf("store: remove all %s: %w", collection, err)
	}
	return nil
}

// Close closes the bbolt database. The file stays on disk.
func (s *BoltStore) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	return s.db.Close()
}

func (s *BoltStore) check(ctx context.Context, collection string) error {
	if s.closed.Load() {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return checkCollection(collection)
}

func bucketFor(tx *bbolt.Tx, collection string) (*bbolt.Bucket, error) {
	bucket := tx.Bucket([]byte(collection))
	if bucket == nil {
		return nil, fmt.Errorf("bucket %q missing", collection)
	}
	return bucket, nil
}

func readBucket(tx *bbolt.Tx, collection string) ([]Record, error) {
	bucket, err := bucketFor(tx, collection)
	if err != nil {
		return nil, err
	}
	records := make([]Record, 0)
	err = bucket.ForEach(func(_, v []byte) error {
		rec, err := UnmarshalRecord(v)
		if err != nil {
			return err
		}
		records = append(records, rec)
		return nil
	})
	return records, err
}

func resetBucket(tx *bbolt.Tx, collection string) (*bbolt.Bucket, error) {
	name := []byte(collection)
	if err := tx.DeleteBucket(name); err != nil && !errors.Is(err, bbolt.ErrBucketNotFound) {
		return nil, err
	}
	return tx.CreateBucket(name)
}

func putRecord(bucket *bbolt.Bucket, rec Record) error {
	seq, err := bucket.NextSequence()
	if err != nil {
		return err
	}
	data, err := MarshalRecord(rec)
	if err != nil {
		return err
	}
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, seq)
	return bucket.Put(key, data)
}
