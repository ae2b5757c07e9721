package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"wcb/document"
	"wcb/migrate"
)

// ErrNotFound is returned when there is no document with requested id.
var ErrNotFound = errors.New("document not found")

// Memory is database path for a store which lives in memory only.
const Memory = ":memory:"

const schemaScript = `
CREATE TABLE IF NOT EXISTS documents (
	id      INTEGER PRIMARY KEY AUTOINCREMENT,
	title   TEXT    NOT NULL DEFAULT '',
	version REAL    NOT NULL,
	body    TEXT    NOT NULL,
	updated INTEGER NOT NULL
);`

// Entry describes stored document without loading it.
type Entry struct {
	ID      int64
	Title   string
	Version float64
	Updated time.Time
}

// Store keeps documents in SQLite database by integer id. Documents are
// migrated to current version when loaded.
type Store struct {
	mu       sync.Mutex
	conn     *sqlite.Conn
	migrator *migrate.Migrator
	log      *zap.Logger
}

// Open opens or creates database at path. Use Memory for a throw away store.
func Open(path string, migrator *migrate.Migrator, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	flags := []sqlite.OpenFlags{sqlite.OpenReadWrite, sqlite.OpenCreate}
	if path == Memory || path == "" {
		path = Memory
		flags = []sqlite.OpenFlags{sqlite.OpenReadWrite, sqlite.OpenMemory}
	}
	conn, err := sqlite.OpenConn(path, flags...)
	if err != nil {
		return nil, fmt.Errorf("unable to open database '%s': %w", path, err)
	}
	if err := sqlitex.ExecuteScript(conn, schemaScript, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("unable to prepare database '%s': %w", path, err)
	}
	log = log.Named("store")
	log.Debug("Database opened", zap.String("path", path))
	return &Store{conn: conn, migrator: migrator, log: log}, nil
}

// Close releases database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.Close()
}

func (s *Store) interruptOn(ctx context.Context) func() {
	s.conn.SetInterrupt(ctx.Done())
	return func() { s.conn.SetInterrupt(nil) }
}

// Save stores document. Zero id stores a new document and returns its id,
// otherwise existing document is replaced.
func (s *Store) Save(ctx context.Context, id int64, title string, d *document.Document) (int64, error) {
	body, err := json.Marshal(d)
	if err != nil {
		return 0, fmt.Errorf("unable to encode document: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.interruptOn(ctx)()

	now := time.Now().Unix()
	if id == 0 {
		err = sqlitex.Execute(s.conn, `INSERT INTO documents (title, version, body, updated) VALUES (?, ?, ?, ?)`,
			&sqlitex.ExecOptions{Args: []any{title, d.Version, string(body), now}})
		if err != nil {
			return 0, fmt.Errorf("unable to insert document: %w", err)
		}
		id = s.conn.LastInsertRowID()
		s.log.Debug("Document inserted", zap.Int64("id", id), zap.Int("size", len(body)))
		return id, nil
	}

	err = sqlitex.Execute(s.conn, `UPDATE documents SET title = ?, version = ?, body = ?, updated = ? WHERE id = ?`,
		&sqlitex.ExecOptions{Args: []any{title, d.Version, string(body), now, id}})
	if err != nil {
		return 0, fmt.Errorf("unable to update document %d: %w", id, err)
	}
	if s.conn.Changes() == 0 {
		return 0, fmt.Errorf("document %d: %w", id, ErrNotFound)
	}
	s.log.Debug("Document updated", zap.Int64("id", id), zap.Int("size", len(body)))
	return id, nil
}

// SaveRaw stores persisted document as is, without decoding it. Used to import
// documents of older versions.
func (s *Store) SaveRaw(ctx context.Context, title string, version float64, body []byte) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.interruptOn(ctx)()

	err := sqlitex.Execute(s.conn, `INSERT INTO documents (title, version, body, updated) VALUES (?, ?, ?, ?)`,
		&sqlitex.ExecOptions{Args: []any{title, version, string(body), time.Now().Unix()}})
	if err != nil {
		return 0, fmt.Errorf("unable to insert document: %w", err)
	}
	return s.conn.LastInsertRowID(), nil
}

// Load reads document and upgrades it to current version.
func (s *Store) Load(ctx context.Context, id int64) (*document.Document, error) {
	body, err := s.body(ctx, id)
	if err != nil {
		return nil, err
	}
	d, err := s.migrator.Load(body)
	if err != nil {
		return nil, fmt.Errorf("document %d: %w", id, err)
	}
	return d, nil
}

func (s *Store) body(ctx context.Context, id int64) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.interruptOn(ctx)()

	var (
		body  []byte
		found bool
	)
	err := sqlitex.Execute(s.conn, `SELECT body FROM documents WHERE id = ?`,
		&sqlitex.ExecOptions{
			Args: []any{id},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				body, found = []byte(stmt.ColumnText(0)), true
				return nil
			},
		})
	if err != nil {
		return nil, fmt.Errorf("unable to read document %d: %w", id, err)
	}
	if !found {
		return nil, fmt.Errorf("document %d: %w", id, ErrNotFound)
	}
	return body, nil
}

// List returns all stored documents, most recently updated first.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.interruptOn(ctx)()

	var out []Entry
	err := sqlitex.Execute(s.conn, `SELECT id, title, version, updated FROM documents ORDER BY updated DESC, id DESC`,
		&sqlitex.ExecOptions{ResultFunc: func(stmt *sqlite.Stmt) error {
			out = append(out, Entry{
				ID:      stmt.ColumnInt64(0),
				Title:   stmt.ColumnText(1),
				Version: stmt.ColumnFloat(2),
				Updated: time.Unix(stmt.ColumnInt64(3), 0),
			})
			return nil
		}})
	if err != nil {
		return nil, fmt.Errorf("unable to list documents: %w", err)
	}
	return out, nil
}

// Delete removes document.
func (s *Store) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.interruptOn(ctx)()

	err := sqlitex.Execute(s.conn, `DELETE FROM documents WHERE id = ?`, &sqlitex.ExecOptions{Args: []any{id}})
	if err != nil {
		return fmt.Errorf("unable to delete document %d: %w", id, err)
	}
	if s.conn.Changes() == 0 {
		return fmt.Errorf("document %d: %w", id, ErrNotFound)
	}
	s.log.Debug("Document deleted", zap.Int64("id", id))
	return nil
}
