// Package docstore implements a small document store on top of database/sql.
// Each collection is a table of (id, doc) rows where doc is the JSON-encoded
// entity. Writes go through atomic batches; reads return full-collection
// snapshots. The SQL is kept portable between MySQL (production) and SQLite
// (tests): REPLACE INTO and plain SELECT/DELETE behave identically on both.
package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// Collection names. The set is closed; table names are never built from
// caller input.
const (
	Users    = "users"
	Songs    = "songs"
	Concerts = "concerts"
	Taxonomy = "taxonomy"
)

// Collections lists every collection the store manages, in schema order.
var Collections = []string{Users, Songs, Concerts, Taxonomy}

var validCollection = map[string]bool{
	Users: true, Songs: true, Concerts: true, Taxonomy: true,
}

// Document is one stored entity: its id and the raw JSON body.
type Document struct {
	ID   string
	Data json.RawMessage
}

// Store wraps the SQL connection and the change notifier. All committed
// batches publish one change note per touched collection through the
// notifier, which is what drives Watch subscribers — including the store's
// own writes coming back as snapshots.
type Store struct {
	db       *sql.DB
	notifier Notifier
}

// New builds a Store. The notifier must not be nil; use NewMemoryNotifier
// when no Redis is available.
func New(db *sql.DB, n Notifier) *Store {
	return &Store{db: db, notifier: n}
}

// EnsureSchema creates the collection tables when they do not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, col := range Collections {
		stmt := fmt.Sprintf(
			"CREATE TABLE IF NOT EXISTS %s (id VARCHAR(64) PRIMARY KEY, doc MEDIUMTEXT NOT NULL)", col)
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create table %s: %w", col, err)
		}
	}
	return nil
}

// ReadAll returns every document in the collection ordered by id, so
// repeated snapshots of unchanged data are byte-for-byte identical.
func (s *Store) ReadAll(ctx context.Context, collection string) ([]Document, error) {
	if !validCollection[collection] {
		return nil, fmt.Errorf("unknown collection %q", collection)
	}
	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf("SELECT id, doc FROM %s ORDER BY id", collection))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var d Document
		var body string
		if err := rows.Scan(&d.ID, &body); err != nil {
			return nil, err
		}
		d.Data = json.RawMessage(body)
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// Count returns the number of documents in the collection.
func (s *Store) Count(ctx context.Context, collection string) (int, error) {
	if !validCollection[collection] {
		return 0, fmt.Errorf("unknown collection %q", collection)
	}
	var n int
	err := s.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT COUNT(*) FROM %s", collection)).Scan(&n)
	return n, err
}

// Decode unmarshals a slice of documents into out, which must be a pointer
// to a slice of entities. Documents that fail to unmarshal abort the decode.
func Decode[T any](docs []Document) ([]T, error) {
	out := make([]T, 0, len(docs))
	for _, d := range docs {
		var v T
		if err := json.Unmarshal(d.Data, &v); err != nil {
			return nil, fmt.Errorf("decode doc %s: %w", d.ID, err)
		}
		out = append(out, v)
	}
	return out, nil
}
