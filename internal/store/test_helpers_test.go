package store

import (
	"path/filepath"
	"testing"
)

// backends lists every Store implementation under test.
var backends = []struct {
	name string
	open func(t *testing.T) Store
}{
	{"json", func(t *testing.T) Store { return createTestJSONStore(t) }},
	{"sqlite", func(t *testing.T) Store { return createTestSQLiteStore(t) }},
	{"bolt", func(t *testing.T) Store { return createTestBoltStore(t) }},
}

func createTestJSONStore(t *testing.T) *JSONFileStore {
	t.Helper()
	s, err := OpenJSONFile(filepath.Join(t.TempDir(), "db.json"))
	if err != nil {
		t.Fatalf("OpenJSONFile() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func createTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("OpenSQLite() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func createTestBoltStore(t *testing.T) *BoltStore {
	t.Helper()
	s, err := OpenBolt(filepath.Join(t.TempDir(), "test.bolt"))
	if err != nil {
		t.Fatalf("OpenBolt() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestRating builds a rating record with its derived key.
func createTestRating(id, butterflyID, userID, rating string) Record {
	return Record{
		"id":          id,
		"butterflyid": butterflyID,
		"ratingkey":   "key" + butterflyID + userID,
		"userid":      userID,
		"rating":      rating,
	}
}
