package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// RecentProject is one entry of the recently opened projects list.
type RecentProject struct {
	ID         string    `json:"id"`
	Path       string    `json:"path"`
	Name       string    `json:"name"`
	LastOpened time.Time `json:"lastOpened"`
}

// Recent is the recently opened projects registry, kept in <config dir>/recent.sqlite.
type Recent struct {
	db  *sql.DB
	now func() time.Time
}

func RecentPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "recent.sqlite"), nil
}

func OpenRecent(ctx context.Context) (*Recent, error) {
	path, err := RecentPath()
	if err != nil {
		return nil, err
	}
	return OpenRecentAt(ctx, path)
}

func OpenRecentAt(ctx context.Context, path string) (*Recent, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, IOError{Op: "create directory", Path: filepath.Dir(path), Err: err}
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if _, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS recent_projects (
	id          TEXT PRIMARY KEY,
	path        TEXT NOT NULL UNIQUE,
	name        TEXT NOT NULL,
	last_opened INTEGER NOT NULL
);`); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Recent{db: db, now: time.Now}, nil
}

func (r *Recent) Close() error { return r.db.Close() }

// Touch records that the project at path was opened now.
func (r *Recent) Touch(ctx context.Context, path, name string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = filepath.Clean(path)
	}
	_, err = r.db.ExecContext(ctx, `
INSERT INTO recent_projects (id, path, name, last_opened) VALUES (?, ?, ?, ?)
ON CONFLICT(path) DO UPDATE SET name = excluded.name, last_opened = excluded.last_opened`,
		uuid.New().String(), abs, name, r.now().UnixNano())
	return err
}

// List returns the entries, most recently opened first.
func (r *Recent) List(ctx context.Context) ([]RecentProject, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, path, name, last_opened FROM recent_projects ORDER BY last_opened DESC, rowid DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []RecentProject{}
	for rows.Next() {
		var (
			rp RecentProject
			ts int64
		)
		if err := rows.Scan(&rp.ID, &rp.Path, &rp.Name, &ts); err != nil {
			return nil, err
		}
		rp.LastOpened = time.Unix(0, ts)
		out = append(out, rp)
	}
	return out, rows.Err()
}

// Remove deletes the entry for path and reports whether one existed.
func (r *Recent) Remove(ctx context.Context, path string) (bool, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = filepath.Clean(path)
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM recent_projects WHERE path = ?`, abs)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *Recent) Clear(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM recent_projects`)
	return err
}
