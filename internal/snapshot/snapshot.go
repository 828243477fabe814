// Package snapshot provides a SQLite-backed snapshot of an embedded corpus.
// Ingesting and embedding the corpus is the slowest part of startup; saving
// the embedded documents once and loading them on the next run skips both the
// corpus fetch and every embedding call.
package snapshot

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // register "sqlite" driver

	"github.com/Kadirose05/superleaugechatbot-genai/internal/rag"
)

// Store persists embedded documents in a local SQLite database.
type Store struct {
	db *sql.DB
}

// DefaultPath returns the default snapshot location, ~/.superlig/snapshot.db,
// creating the directory if needed.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("snapshot: could not determine home directory: %w", err)
	}
	dir := filepath.Join(home, ".superlig")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("snapshot: could not create %s: %w", dir, err)
	}
	return filepath.Join(dir, "snapshot.db"), nil
}

// Open opens (or creates) a snapshot database at the given path and runs the
// schema migration. Use ":memory:" for an in-memory database in tests.
func Open(path string) (*Store, error) {
	// WAL mode improves concurrent read performance and is safe for single-host use.
	dsn := path + "?_journal_mode=WAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("snapshot: open %s: %w", path, err)
	}
	// Limit to a single writer connection to avoid SQLITE_BUSY under concurrent writes.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// migrate creates the schema if it does not already exist.
func (s *Store) migrate() error {
	const ddl = `
CREATE TABLE IF NOT EXISTS documents (
    id         TEXT    PRIMARY KEY,
    title      TEXT    NOT NULL,
    content    TEXT    NOT NULL,
    url        TEXT    NOT NULL,
    embedding  BLOB    NOT NULL,
    position   INTEGER NOT NULL  -- insertion order, preserved on load
);
CREATE INDEX IF NOT EXISTS idx_documents_position ON documents (position);
`
	if _, err := s.db.Exec(ddl); err != nil {
		return fmt.Errorf("snapshot: migrate: %w", err)
	}
	return nil
}

// Save replaces the snapshot contents with the given documents, preserving
// their order. The write is transactional: a failed Save leaves the previous
// snapshot intact.
func (s *Store) Save(ctx context.Context, docs []rag.Document) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("snapshot: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM documents`); err != nil {
		return fmt.Errorf("snapshot: clear: %w", err)
	}

	const q = `INSERT INTO documents (id, title, content, url, embedding, position) VALUES (?, ?, ?, ?, ?, ?)`
	for i, doc := range docs {
		if doc.ID == "" {
			return fmt.Errorf("snapshot: %w: document %d has an empty ID", rag.ErrInvalidArgument, i)
		}
		if _, err := tx.ExecContext(ctx, q, doc.ID, doc.Title, doc.Content, doc.SourceURL, encodeVector(doc.Embedding), i); err != nil {
			return fmt.Errorf("snapshot: insert %s: %w", doc.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("snapshot: commit: %w", err)
	}
	return nil
}

// Load returns all snapshot documents in their original insertion order.
func (s *Store) Load(ctx context.Context) ([]rag.Document, error) {
	const q = `SELECT id, title, content, url, embedding FROM documents ORDER BY position ASC`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("snapshot: load: %w", err)
	}
	defer rows.Close()

	var docs []rag.Document
	for rows.Next() {
		var doc rag.Document
		var blob []byte
		if err := rows.Scan(&doc.ID, &doc.Title, &doc.Content, &doc.SourceURL, &blob); err != nil {
			return nil, fmt.Errorf("snapshot: load scan: %w", err)
		}
		vec, err := decodeVector(blob)
		if err != nil {
			return nil, fmt.Errorf("snapshot: load %s: %w", doc.ID, err)
		}
		doc.Embedding = vec
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("snapshot: load rows: %w", err)
	}
	return docs, nil
}

// Count returns the number of documents in the snapshot.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&n); err != nil {
		return 0, fmt.Errorf("snapshot: count: %w", err)
	}
	return n, nil
}

// Close releases the database connection pool.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("snapshot: close: %w", err)
	}
	return nil
}

// encodeVector packs a float32 vector as little-endian bytes.
func encodeVector(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(v))
	}
	return buf
}

// decodeVector unpacks a little-endian float32 vector.
func decodeVector(blob []byte) ([]float32, error) {
	if len(blob)%4 != 0 {
		return nil, fmt.Errorf("embedding blob length %d is not a multiple of 4", len(blob))
	}
	vec := make([]float32, len(blob)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[4*i:]))
	}
	return vec, nil
}
