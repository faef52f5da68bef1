package preprocessor

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"go.trai.ch/openge/internal/core/domain"
	"go.trai.ch/zerr"
	_ "modernc.org/sqlite" // registers the sqlite driver
)

const schema = `
CREATE TABLE IF NOT EXISTS scan_results (
	path TEXT PRIMARY KEY,
	last_write_ticks INTEGER NOT NULL,
	cache_version INTEGER NOT NULL,
	result BLOB NOT NULL
);
`

// Store persists scan results in a SQLite database. Writes are not synced to disk:
// a lost row only costs a rescan.
type Store struct {
	db *sql.DB
}

// OpenStore opens or creates the store at path.
func OpenStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), domain.DirPerm); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreOpenFailed.Error()), "path", path)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreOpenFailed.Error()), "path", path)
	}
	// A single connection keeps the per-connection pragmas in effect.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, stmt := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=OFF",
		"PRAGMA busy_timeout=5000",
		schema,
	} {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreOpenFailed.Error()), "path", path)
		}
	}

	return &Store{db: db}, nil
}

// Get returns the stored row for path, or nil when none exists.
func (s *Store) Get(ctx context.Context, path string) (*domain.StoredScanResult, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT last_write_ticks, cache_version, result FROM scan_results WHERE path = ?", path)

	stored := &domain.StoredScanResult{Path: path}
	var data []byte
	if err := row.Scan(&stored.LastWriteTicks, &stored.CacheVersion, &data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreReadFailed.Error()), "path", path)
	}

	stored.Result = &domain.ScanResult{}
	if err := json.Unmarshal(data, stored.Result); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreReadFailed.Error()), "path", path)
	}
	return stored, nil
}

// Put replaces the stored row for the result's path.
func (s *Store) Put(ctx context.Context, result *domain.StoredScanResult) error {
	data, err := json.Marshal(result.Result)
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrStoreWriteFailed.Error()), "path", result.Path)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO scan_results (path, last_write_ticks, cache_version, result) VALUES (?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			last_write_ticks = excluded.last_write_ticks,
			cache_version = excluded.cache_version,
			result = excluded.result`,
		result.Path, result.LastWriteTicks, result.CacheVersion, data)
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrStoreWriteFailed.Error()), "path", result.Path)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
