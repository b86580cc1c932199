// Package state keeps the download history in SQLite.
package state

import (
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS downloads (
    link        TEXT PRIMARY KEY,
    title       TEXT NOT NULL DEFAULT '',
    client      TEXT NOT NULL DEFAULT '',
    count       INTEGER NOT NULL DEFAULT 1,
    first_at    INTEGER NOT NULL,
    last_at     INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS downloads_last_at ON downloads (last_at);
`

// Store wraps a SQLite database of downloaded torrents.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open creates or opens state.db in stateDir, normally $XDG_STATE_HOME/nyaa.
func Open(stateDir string) (*Store, error) {
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return nil, err
	}
	return OpenPath(filepath.Join(stateDir, "state.db"))
}

// OpenPath opens the database file at path.
func OpenPath(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// WAL mode for safe concurrent access
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, now: time.Now}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordDownload notes that link was sent to client. Repeats bump the count
// and refresh the title, client and time.
func (s *Store) RecordDownload(title, link, client string) error {
	now := s.now().Unix()
	_, err := s.db.Exec(`
		INSERT INTO downloads (link, title, client, count, first_at, last_at)
		VALUES (?, ?, ?, 1, ?, ?)
		ON CONFLICT(link) DO UPDATE SET
			title = excluded.title,
			client = excluded.client,
			count = count + 1,
			last_at = excluded.last_at
	`, link, title, client, now, now)
	return err
}

// Download is one history entry.
type Download struct {
	Title   string
	Link    string
	Client  string
	Count   int
	FirstAt time.Time
	LastAt  time.Time
}

// ListDownloads returns up to limit entries, most recent first.
func (s *Store) ListDownloads(limit int) ([]Download, error) {
	rows, err := s.db.Query(`
		SELECT title, link, client, count, first_at, last_at
		FROM downloads
		ORDER BY last_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Download
	for rows.Next() {
		var d Download
		var first, last int64
		if err := rows.Scan(&d.Title, &d.Link, &d.Client, &d.Count, &first, &last); err != nil {
			return nil, err
		}
		d.FirstAt = time.Unix(first, 0)
		d.LastAt = time.Unix(last, 0)
		result = append(result, d)
	}
	return result, rows.Err()
}

// Downloaded reports which of links are in the history.
func (s *Store) Downloaded(links []string) (map[string]bool, error) {
	result := make(map[string]bool)
	if len(links) == 0 {
		return result, nil
	}

	args := make([]any, len(links))
	for i, l := range links {
		args[i] = l
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(links)), ",")
	rows, err := s.db.Query("SELECT link FROM downloads WHERE link IN ("+placeholders+")", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var link string
		if err := rows.Scan(&link); err != nil {
			return nil, err
		}
		result[link] = true
	}
	return result, rows.Err()
}
