package importer

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const (
	statusImported = "imported"
	statusFailed   = "failed"
)

// FileRecord is what the state DB remembers about one export file for one
// user.
type FileRecord struct {
	Path      string
	UserID    int
	Size      int64
	Hash      string
	Status    string
	Workouts  int
	Sets      int
	Attempts  int
	LastError string
	UpdatedAt time.Time
}

// Imported reports whether the record is a finished import of a file with
// the given size and hash.
func (r FileRecord) Imported(size int64, hash string) bool {
	return r.Status == statusImported && r.Size == size && r.Hash == hash
}

// StateDB remembers, per user, which export files were stored and which
// failed, so reruns skip finished files and retry failed ones.
type StateDB struct {
	db *sql.DB
}

// OpenStateDB opens (or creates) the SQLite state database at
// dir/import-state.db.
func OpenStateDB(dir string) (*StateDB, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating state dir %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dir, "import-state.db"))
	if err != nil {
		return nil, fmt.Errorf("opening state db: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS export_files (
		path       TEXT NOT NULL,
		user_id    INTEGER NOT NULL,
		size       INTEGER NOT NULL,
		hash       TEXT NOT NULL,
		status     TEXT NOT NULL,
		workouts   INTEGER NOT NULL DEFAULT 0,
		sets       INTEGER NOT NULL DEFAULT 0,
		attempts   INTEGER NOT NULL DEFAULT 0,
		last_error TEXT NOT NULL DEFAULT '',
		updated_at INTEGER NOT NULL,
		PRIMARY KEY (path, user_id)
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating state table: %w", err)
	}

	return &StateDB{db: db}, nil
}

// Lookup returns the record for a file and user. The bool is false when the
// file was never attempted.
func (s *StateDB) Lookup(relPath string, userID int) (FileRecord, bool, error) {
	rec := FileRecord{Path: relPath, UserID: userID}
	var updated int64
	err := s.db.QueryRow(
		`SELECT size, hash, status, workouts, sets, attempts, last_error, updated_at
		 FROM export_files WHERE path = ? AND user_id = ?`,
		relPath, userID,
	).Scan(&rec.Size, &rec.Hash, &rec.Status, &rec.Workouts, &rec.Sets, &rec.Attempts, &rec.LastError, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return rec, false, nil
	}
	if err != nil {
		return rec, false, fmt.Errorf("reading state for %s: %w", relPath, err)
	}
	rec.UpdatedAt = time.Unix(updated, 0).UTC()
	return rec, true, nil
}

// MarkImported records a successful import and clears any earlier failure.
func (s *StateDB) MarkImported(rec FileRecord) error {
	_, err := s.db.Exec(
		`INSERT INTO export_files (path, user_id, size, hash, status, workouts, sets, attempts, last_error, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, 1, '', ?)
		 ON CONFLICT (path, user_id) DO UPDATE SET
			size = excluded.size, hash = excluded.hash, status = excluded.status,
			workouts = excluded.workouts, sets = excluded.sets,
			attempts = export_files.attempts + 1, last_error = '', updated_at = excluded.updated_at`,
		rec.Path, rec.UserID, rec.Size, rec.Hash, statusImported, rec.Workouts, rec.Sets, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("marking %s imported: %w", rec.Path, err)
	}
	return nil
}

// MarkFailed records a failed attempt. A file that was imported before and
// then changed keeps its old counts until it imports again.
func (s *StateDB) MarkFailed(rec FileRecord, cause error) error {
	_, err := s.db.Exec(
		`INSERT INTO export_files (path, user_id, size, hash, status, attempts, last_error, updated_at)
		 VALUES (?, ?, ?, ?, ?, 1, ?, ?)
		 ON CONFLICT (path, user_id) DO UPDATE SET
			size = excluded.size, hash = excluded.hash, status = excluded.status,
			attempts = export_files.attempts + 1, last_error = excluded.last_error,
			updated_at = excluded.updated_at`,
		rec.Path, rec.UserID, rec.Size, rec.Hash, statusFailed, cause.Error(), time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("marking %s failed: %w", rec.Path, err)
	}
	return nil
}

// Failures lists the user's files whose last attempt failed, by path.
func (s *StateDB) Failures(userID int) ([]FileRecord, error) {
	rows, err := s.db.Query(
		`SELECT path, size, hash, status, workouts, sets, attempts, last_error, updated_at
		 FROM export_files WHERE user_id = ? AND status = ? ORDER BY path`,
		userID, statusFailed,
	)
	if err != nil {
		return nil, fmt.Errorf("listing failed imports: %w", err)
	}
	defer rows.Close()

	var out []FileRecord
	for rows.Next() {
		rec := FileRecord{UserID: userID}
		var updated int64
		if err := rows.Scan(&rec.Path, &rec.Size, &rec.Hash, &rec.Status, &rec.Workouts, &rec.Sets,
			&rec.Attempts, &rec.LastError, &updated); err != nil {
			return nil, fmt.Errorf("scanning failed import: %w", err)
		}
		rec.UpdatedAt = time.Unix(updated, 0).UTC()
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Close closes the state database.
func (s *StateDB) Close() error {
	return s.db.Close()
}

// HashFile computes the SHA-256 hash of a file.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
