// Package database caches computed fingerprints in a local sqlite file so
// that rescans skip files that have not changed since the previous run.
package database

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"imagedupes/fingerprint"
	"imagedupes/types"
)

// Cache is the fingerprint cache. A cache entry is valid only for the exact
// file size and modification time it was computed from, and for one grid
// size and hash kind.
type Cache struct {
	db *sql.DB
}

// Open opens or creates the cache database at the given path.
func Open(path string) (*Cache, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening cache %s: %w", path, err)
	}

	createTableSQL := `
	CREATE TABLE IF NOT EXISTS fingerprints (
		path TEXT NOT NULL,
		size INTEGER NOT NULL,
		modified_at TEXT NOT NULL,
		grid INTEGER NOT NULL,
		kind TEXT NOT NULL,
		bits INTEGER NOT NULL,
		hash TEXT NOT NULL,
		taken_at TEXT NOT NULL DEFAULT '',
		indexed_at TEXT NOT NULL,
		PRIMARY KEY (path, grid, kind)
	);
	CREATE INDEX IF NOT EXISTS idx_fingerprints_path ON fingerprints(path);`

	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache schema: %w", err)
	}

	return &Cache{db: db}, nil
}

// Lookup returns the cached fingerprint and EXIF capture time for a file,
// provided the stored size and modification time still match. A stale or
// absent entry is a miss, never an error.
func (c *Cache) Lookup(path string, size int64, modTime time.Time, grid int, kind fingerprint.Kind) (fingerprint.Fingerprint, time.Time, bool, error) {
	var (
		storedSize    int64
		storedModTime string
		bits          int
		hashHex       string
		takenAt       string
	)
	err := c.db.QueryRow(
		`SELECT size, modified_at, bits, hash, taken_at FROM fingerprints WHERE path = ? AND grid = ? AND kind = ?`,
		path, grid, string(kind),
	).Scan(&storedSize, &storedModTime, &bits, &hashHex, &takenAt)
	if err == sql.ErrNoRows {
		return fingerprint.Fingerprint{}, time.Time{}, false, nil
	}
	if err != nil {
		return fingerprint.Fingerprint{}, time.Time{}, false, fmt.Errorf("cache lookup for %s: %w", path, err)
	}

	if storedSize != size || storedModTime != modTime.UTC().Format(time.RFC3339Nano) {
		return fingerprint.Fingerprint{}, time.Time{}, false, nil
	}

	fp, err := fingerprint.ParseHex(hashHex, bits)
	if err != nil {
		// A corrupt row degrades to a miss; Store will overwrite it.
		return fingerprint.Fingerprint{}, time.Time{}, false, nil
	}

	var taken time.Time
	if takenAt != "" {
		if t, err := time.Parse(time.RFC3339, takenAt); err == nil {
			taken = t
		}
	}

	return fp, taken, true, nil
}

// Store inserts or replaces the cache entry for a record.
func (c *Cache) Store(rec types.ImageRecord, grid int, kind fingerprint.Kind) error {
	takenAt := ""
	if !rec.TakenAt.IsZero() {
		takenAt = rec.TakenAt.Format(time.RFC3339)
	}

	_, err := c.db.Exec(
		`INSERT OR REPLACE INTO fingerprints (path, size, modified_at, grid, kind, bits, hash, taken_at, indexed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Path,
		rec.Size,
		rec.ModifiedAt.UTC().Format(time.RFC3339Nano),
		grid,
		string(kind),
		rec.Fingerprint.Bits(),
		rec.Fingerprint.Hex(),
		takenAt,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("cache store for %s: %w", rec.Path, err)
	}
	return nil
}

// Count returns the number of cached fingerprints.
func (c *Cache) Count() (int, error) {
	var n int
	if err := c.db.QueryRow(`SELECT COUNT(*) FROM fingerprints`).Scan(&n); err != nil {
		return 0, fmt.Errorf("cache count: %w", err)
	}
	return n, nil
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}
