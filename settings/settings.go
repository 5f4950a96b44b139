// Package settings persists user preferences between runs: the export
// directory and per-vegetation-type parameter overrides. Built-in default
// profiles are seeded into the database on first open so the UI can list
// and edit them uniformly.
package settings

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/vegepoly/vegepoly/vegmodel"
)

const schema = `
CREATE TABLE IF NOT EXISTS settings (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS default_vegetation_params (
	vegetation_type INTEGER PRIMARY KEY,
	density REAL NOT NULL,
	variation REAL NOT NULL,
	type_value INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS user_vegetation_params (
	vegetation_type INTEGER PRIMARY KEY,
	density REAL NOT NULL,
	variation REAL NOT NULL,
	type_value INTEGER NOT NULL
);
`

// Store is a sqlite-backed settings database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the settings database at path and
// seeds the built-in default profiles.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating settings directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening settings database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing settings schema: %w", err)
	}

	s := &Store{db: db}
	if err := s.seedDefaults(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) seedDefaults() error {
	for _, t := range []int{vegmodel.TypeTrees, vegmodel.TypeSurfaces, vegmodel.TypeRocailles} {
		p := vegmodel.DefaultParams(t)
		_, err := s.db.Exec(
			`INSERT OR IGNORE INTO default_vegetation_params (vegetation_type, density, variation, type_value)
			 VALUES (?, ?, ?, ?)`,
			p.VegetationType, p.Density, p.Variation, p.TypeValue,
		)
		if err != nil {
			return fmt.Errorf("seeding default params: %w", err)
		}
	}
	return nil
}

// ExportPath returns the configured export directory, or "" when unset.
func (s *Store) ExportPath() (string, error) {
	var path string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = 'export_path'`).Scan(&path)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return path, nil
}

func (s *Store) SetExportPath(path string) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO settings (key, value) VALUES ('export_path', ?)`, path)
	return err
}

func (s *Store) getParams(table string, vegetationType int) (vegmodel.Params, bool, error) {
	var p vegmodel.Params
	err := s.db.QueryRow(
		`SELECT vegetation_type, density, variation, type_value FROM `+table+` WHERE vegetation_type = ?`,
		vegetationType,
	).Scan(&p.VegetationType, &p.Density, &p.Variation, &p.TypeValue)
	if errors.Is(err, sql.ErrNoRows) {
		return vegmodel.Params{}, false, nil
	}
	if err != nil {
		return vegmodel.Params{}, false, err
	}
	return p, true, nil
}

// DefaultParams returns the stored default profile for a vegetation type.
func (s *Store) DefaultParams(vegetationType int) (vegmodel.Params, bool, error) {
	return s.getParams("default_vegetation_params", vegetationType)
}

// UserParams returns the user override for a vegetation type, if any.
func (s *Store) UserParams(vegetationType int) (vegmodel.Params, bool, error) {
	return s.getParams("user_vegetation_params", vegetationType)
}

// EffectiveParams resolves the parameters for a vegetation type: the user
// override when present, the stored default otherwise, and the built-in
// profile as a last resort.
func (s *Store) EffectiveParams(vegetationType int) (vegmodel.Params, error) {
	if p, ok, err := s.UserParams(vegetationType); err != nil {
		return vegmodel.Params{}, err
	} else if ok {
		return p, nil
	}
	if p, ok, err := s.DefaultParams(vegetationType); err != nil {
		return vegmodel.Params{}, err
	} else if ok {
		return p, nil
	}
	return vegmodel.DefaultParams(vegetationType), nil
}

// SetUserParams stores a user override for a vegetation type.
func (s *Store) SetUserParams(p vegmodel.Params) error {
	if p.VegetationType < 1 {
		return fmt.Errorf("invalid vegetation type: %d", p.VegetationType)
	}
	if err := p.Validate(); err != nil {
		return err
	}
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO user_vegetation_params (vegetation_type, density, variation, type_value)
		 VALUES (?, ?, ?, ?)`,
		p.VegetationType, p.Density, p.Variation, p.TypeValue,
	)
	return err
}

// RemoveUserParams deletes the override for a vegetation type and returns
// the removed value, if there was one.
func (s *Store) RemoveUserParams(vegetationType int) (vegmodel.Params, bool, error) {
	existing, ok, err := s.UserParams(vegetationType)
	if err != nil {
		return vegmodel.Params{}, false, err
	}
	_, err = s.db.Exec(`DELETE FROM user_vegetation_params WHERE vegetation_type = ?`, vegetationType)
	if err != nil {
		return vegmodel.Params{}, false, err
	}
	return existing, ok, nil
}

// ResetUserParams clears every user override.
func (s *Store) ResetUserParams() error {
	_, err := s.db.Exec(`DELETE FROM user_vegetation_params`)
	return err
}

// HasUserParams reports whether a user override exists for the type.
func (s *Store) HasUserParams(vegetationType int) (bool, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM user_vegetation_params WHERE vegetation_type = ?`, vegetationType,
	).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// AvailableTypes lists every vegetation type known to the store, defaults
// and overrides combined.
func (s *Store) AvailableTypes() ([]int, error) {
	rows, err := s.db.Query(
		`SELECT DISTINCT vegetation_type FROM default_vegetation_params
		 UNION
		 SELECT DISTINCT vegetation_type FROM user_vegetation_params
		 ORDER BY vegetation_type`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var types []int
	for rows.Next() {
		var t int
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	return types, rows.Err()
}
