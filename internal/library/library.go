package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ivlev/carousel/internal/snapshot"
	"github.com/ivlev/carousel/internal/store"
	_ "modernc.org/sqlite"
)

var ErrNotFound = errors.New("project not found")

const schema = `
CREATE TABLE IF NOT EXISTS projects (
    name TEXT PRIMARY KEY,
    aspect_ratio TEXT NOT NULL,
    slide_count INTEGER NOT NULL,
    updated_at INTEGER NOT NULL,  -- UnixNano
    body BLOB NOT NULL            -- snapshot YAML
);

CREATE INDEX IF NOT EXISTS idx_projects_updated ON projects(updated_at);
`

// Entry summarizes a stored project.
type Entry struct {
	Name        string
	AspectRatio string
	SlideCount  int
	UpdatedAt   time.Time
}

// Library stores named projects in a SQLite database.
type Library struct {
	db *sql.DB
}

// Open opens or creates a library at path.
func Open(path string) (*Library, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	dsn := path +
		"?_pragma=journal_mode(WAL)" +
		"&_pragma=synchronous(NORMAL)" +
		"&_pragma=busy_timeout(5000)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &Library{db: db}, nil
}

// Save stores a project under name, replacing any previous version.
func (l *Library) Save(ctx context.Context, name string, p store.Project) error {
	if name == "" {
		return fmt.Errorf("empty project name")
	}
	if err := p.Validate(); err != nil {
		return fmt.Errorf("save %q: %w", name, err)
	}
	body, err := snapshot.Marshal(p)
	if err != nil {
		return fmt.Errorf("save %q: %w", name, err)
	}

	_, err = l.db.ExecContext(ctx, `
		INSERT INTO projects (name, aspect_ratio, slide_count, updated_at, body)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			aspect_ratio = excluded.aspect_ratio,
			slide_count = excluded.slide_count,
			updated_at = excluded.updated_at,
			body = excluded.body`,
		name, string(p.AspectRatio), len(p.Slides), time.Now().UnixNano(), body)
	if err != nil {
		return fmt.Errorf("save %q: %w", name, err)
	}
	return nil
}

// Load returns the project stored under name.
func (l *Library) Load(ctx context.Context, name string) (store.Project, error) {
	var body []byte
	err := l.db.QueryRowContext(ctx, `SELECT body FROM projects WHERE name = ?`, name).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Project{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return store.Project{}, fmt.Errorf("load %q: %w", name, err)
	}

	p, err := snapshot.Unmarshal(body)
	if err != nil {
		return store.Project{}, fmt.Errorf("load %q: %w", name, err)
	}
	return p, nil
}

// List returns stored projects, most recently saved first.
func (l *Library) List(ctx context.Context) ([]Entry, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT name, aspect_ratio, slide_count, updated_at
		FROM projects ORDER BY updated_at DESC, name`)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var updated int64
		if err := rows.Scan(&e.Name, &e.AspectRatio, &e.SlideCount, &updated); err != nil {
			return nil, fmt.Errorf("list projects: %w", err)
		}
		e.UpdatedAt = time.Unix(0, updated)
		out = append(out, e)
	}
	return out, rows.Err()
}

// Delete removes a stored project.
func (l *Library) Delete(ctx context.Context, name string) error {
	res, err := l.db.ExecContext(ctx, `DELETE FROM projects WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("delete %q: %w", name, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return nil
}

// Close closes the database.
func (l *Library) Close() error {
	return l.db.Close()
}
