// Package store persists the calculator's remembered units in SQLite, so a
// restart puts users back in the units they were working in.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	// SQLite driver
	_ "modernc.org/sqlite"

	"github.com/lrnselfreliance/wrolpi-sub001/pkg/units"
)

// RatioCache is the cache name the ratio calculator stores its remembered
// units under. Other calculators get their own name in the same table.
const RatioCache = "ratio_calculator"

// Store wraps the calculator database connection.
type Store struct {
	db   *sql.DB
	path string
}

// schema defines the calculator database tables.
const schema = `
CREATE TABLE IF NOT EXISTS recent_units (
	cache TEXT NOT NULL,
	dimension TEXT NOT NULL,
	unit TEXT NOT NULL,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (cache, dimension)
);
`

// Open opens the calculator database at path, creating the file and schema
// if necessary.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// RecentUnits loads the remembered unit per dimension for one cache.
// Entries whose symbol is no longer a unit of its dimension are skipped, so
// a stale database never produces an unusable seed.
func (s *Store) RecentUnits(cache string) (map[units.Dimension]string, error) {
	rows, err := s.db.Query(
		"SELECT dimension, unit FROM recent_units WHERE cache = ?",
		cache,
	)
	if err != nil {
		return nil, fmt.Errorf("loading recent units: %w", err)
	}
	defer rows.Close()

	out := make(map[units.Dimension]string)
	for rows.Next() {
		var dimension, unit string
		if err := rows.Scan(&dimension, &unit); err != nil {
			return nil, fmt.Errorf("scanning recent unit: %w", err)
		}

		dim, ok := units.ParseDimension(dimension)
		if !ok || dim == units.None {
			continue
		}
		if _, ok := units.LookupIn(dim, unit); !ok {
			continue
		}
		out[dim] = unit
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("loading recent units: %w", err)
	}

	return out, nil
}

// SaveRecentUnit records symbol as the remembered unit for a dimension,
// replacing any previous entry for that cache and dimension.
func (s *Store) SaveRecentUnit(cache string, dim units.Dimension, symbol string) error {
	if dim == units.None {
		return nil
	}
	if _, ok := units.LookupIn(dim, symbol); !ok {
		return fmt.Errorf("saving recent unit: %q is not a %s unit", symbol, dim)
	}

	_, err := s.db.Exec(
		`INSERT INTO recent_units (cache, dimension, unit, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (cache, dimension)
		 DO UPDATE SET unit = excluded.unit, updated_at = excluded.updated_at`,
		cache, dim.String(), symbol, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("saving recent unit: %w", err)
	}
	return nil
}

// ForgetRecentUnits removes all remembered units for one cache.
func (s *Store) ForgetRecentUnits(cache string) error {
	if _, err := s.db.Exec("DELETE FROM recent_units WHERE cache = ?", cache); err != nil {
		return fmt.Errorf("clearing recent units: %w", err)
	}
	return nil
}
