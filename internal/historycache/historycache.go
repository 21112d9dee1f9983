// Package historycache caches past Results in DuckDB, keyed by a
// fingerprint of the input file and the matcher version that produced
// them, so repeated calls against an unchanged input are served
// without re-running the pipeline. Grounded on the teacher's
// internal/duckdb package: a single *sql.DB over the go-duckdb driver,
// a fingerprint derived from file stat info, and append-only writes.
package historycache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/marcboeker/go-duckdb"

	"github.com/starallele/diplocaller/internal/result"
)

// FileFingerprint is stat-based identity for an input file: two calls
// against the same path are considered equivalent only if size and
// modification time both match.
type FileFingerprint struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// Fingerprint stats path and returns its FileFingerprint.
func Fingerprint(path string) (FileFingerprint, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileFingerprint{}, fmt.Errorf("stat %s: %w", path, err)
	}
	return FileFingerprint{Path: path, Size: info.Size(), ModTime: info.ModTime()}, nil
}

// Store manages a DuckDB-backed cache of call() results.
type Store struct {
	db *sql.DB
}

// Open opens or creates a DuckDB database at path. An empty path opens
// an in-memory database, useful for tests.
func Open(path string) (*Store, error) {
	if path != "" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create cache directory: %w", err)
			}
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS call_results (
		path VARCHAR,
		size BIGINT,
		mod_time TIMESTAMP,
		version VARCHAR,
		result_json VARCHAR,
		cached_at TIMESTAMP
	)`)
	return err
}

// Lookup returns a previously cached Result for fp and version, if
// one exists. ok is false on a cache miss.
func (s *Store) Lookup(fp FileFingerprint, version string) (res *result.Result, ok bool, err error) {
	row := s.db.QueryRow(`SELECT result_json FROM call_results
		WHERE path = ? AND size = ? AND mod_time = ? AND version = ?
		ORDER BY cached_at DESC LIMIT 1`,
		fp.Path, fp.Size, fp.ModTime, version)

	var raw string
	if err := row.Scan(&raw); err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("lookup cached result: %w", err)
	}

	var r result.Result
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		return nil, false, fmt.Errorf("decode cached result: %w", err)
	}
	return &r, true, nil
}

// Put caches res under fp and version.
func (s *Store) Put(fp FileFingerprint, version string, res *result.Result) error {
	raw, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}

	_, err = s.db.Exec(`INSERT INTO call_results (path, size, mod_time, version, result_json, cached_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		fp.Path, fp.Size, fp.ModTime, version, string(raw), time.Now())
	if err != nil {
		return fmt.Errorf("insert cached result: %w", err)
	}
	return nil
}

// Clear removes every cached result.
func (s *Store) Clear() error {
	_, err := s.db.Exec(`DELETE FROM call_results`)
	return err
}
