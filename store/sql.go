package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

var fieldName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// dialect holds the driver-specific pieces of SQL. Collection names are the
// only values written into query text and they are always quoted.
type dialect struct {
	placeholder func(n int) string
	hasTable    string
	docType     string
	// fieldExpr reads a numeric JSON field whose path is bound at ph.
	fieldExpr func(ph string) string
	fieldPath func(field string) string
}

var dialects = map[string]dialect{
	DriverPostgres: {
		placeholder: func(n int) string { return fmt.Sprintf("$%d", n) },
		hasTable: "SELECT EXISTS (SELECT 1 FROM information_schema.tables " +
			"WHERE table_schema = current_schema() AND table_name = $1)",
		docType:   "JSONB",
		fieldExpr: func(ph string) string { return "(doc ->> " + ph + "::text)::double precision" },
		fieldPath: func(field string) string { return field },
	},
	DriverSQLite: {
		placeholder: func(int) string { return "?" },
		hasTable:    "SELECT EXISTS (SELECT 1 FROM sqlite_master WHERE type = 'table' AND name = ?)",
		docType:     "TEXT",
		fieldExpr:   func(ph string) string { return "json_extract(doc, " + ph + ")" },
		fieldPath:   func(field string) string { return "$." + field },
	},
}

// SQLStore maps each collection to a table of (id, doc) rows.
type SQLStore struct {
	db      *sql.DB
	dialect dialect
}

func NewSQLStore(db *sql.DB, driver string) (*SQLStore, error) {
	d, ok := dialects[driver]
	if !ok {
		return nil, fmt.Errorf("store: unsupported driver %q", driver)
	}
	return &SQLStore{db: db, dialect: d}, nil
}

func (s *SQLStore) HasCollection(ctx context.Context, name string) (bool, error) {
	var exists bool
	if err := s.db.QueryRowContext(ctx, s.dialect.hasTable, name).Scan(&exists); err != nil {
		return false, &Error{Op: "has-collection", Collection: name, Err: err}
	}
	return exists, nil
}

func (s *SQLStore) CreateCollection(ctx context.Context, name string) error {
	query := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (id TEXT PRIMARY KEY, doc %s NOT NULL)",
		pq.QuoteIdentifier(name), s.dialect.docType)
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return &Error{Op: "create-collection", Collection: name, Err: err}
	}
	return nil
}

func (s *SQLStore) Save(ctx context.Context, collection, key string, doc any) (string, error) {
	body, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("store save %s: encode document: %w", collection, err)
	}
	if key == "" {
		key = uuid.NewString()
	}

	query := fmt.Sprintf("INSERT INTO %s (id, doc) VALUES (%s, %s)",
		pq.QuoteIdentifier(collection), s.dialect.placeholder(1), s.dialect.placeholder(2))
	if _, err := s.db.ExecContext(ctx, query, key, string(body)); err != nil {
		return "", &Error{Op: "save", Collection: collection, Err: err}
	}
	return key, nil
}

func (s *SQLStore) Find(ctx context.Context, q RangeQuery) ([]Document, error) {
	if !fieldName.MatchString(q.Field) {
		return nil, fmt.Errorf("store find %s: invalid field name %q", q.Collection, q.Field)
	}

	query, args := s.rangeQuery(q)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &Error{Op: "find", Collection: q.Collection, Err: err}
	}
	defer rows.Close()

	docs := []Document{}
	for rows.Next() {
		var (
			key  string
			body []byte
		)
		if err := rows.Scan(&key, &body); err != nil {
			return nil, &Error{Op: "find", Collection: q.Collection, Err: err}
		}
		docs = append(docs, Document{Key: key, Body: json.RawMessage(body)})
	}
	if err := rows.Err(); err != nil {
		return nil, &Error{Op: "find", Collection: q.Collection, Err: err}
	}
	return docs, nil
}

func (s *SQLStore) rangeQuery(q RangeQuery) (string, []any) {
	d := s.dialect
	path := d.fieldPath(q.Field)

	var b strings.Builder
	b.WriteString("SELECT id, doc FROM ")
	b.WriteString(pq.QuoteIdentifier(q.Collection))
	b.WriteString(" WHERE ")
	b.WriteString(d.fieldExpr(d.placeholder(1)))
	b.WriteString(" > ")
	b.WriteString(d.placeholder(2))
	b.WriteString(" AND ")
	b.WriteString(d.fieldExpr(d.placeholder(3)))
	b.WriteString(" < ")
	b.WriteString(d.placeholder(4))

	return b.String(), []any{path, q.Min, path, q.Max}
}
