package database

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite" // SQLite driver
)

//go:embed migrations/*.sql
var migrations embed.FS

// MemoryPath opens a private in-memory SQLite store.
const MemoryPath = ":memory:"

// SQLiteStore keeps documents as JSON text rows in a single table.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the SQLite file at path and applies migrations.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if path == "" {
		path = MemoryPath
	}
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps :memory: databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, storeError("ping", err)
	}

	pragmas := []string{
		"PRAGMA timezone = 'UTC'",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if err := migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteStore{db: db}, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	fsys, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}
	provider, err := goose.NewProvider(goose.DialectSQLite3, db, fsys)
	if err != nil {
		return fmt.Errorf("failed to create migration provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// Collection returns a handle on the named collection.
func (s *SQLiteStore) Collection(name string) Collection {
	return &sqliteCollection{db: s.db, name: name}
}

// EnsureIndex creates an expression index on the JSON field.
func (s *SQLiteStore) EnsureIndex(ctx context.Context, collection, field string) error {
	if err := validateField(collection); err != nil {
		return err
	}
	if err := validateField(field); err != nil {
		return err
	}
	stmt := fmt.Sprintf(
		"CREATE INDEX IF NOT EXISTS idx_%s_%s ON documents (collection, json_extract(body, '$.%s'))",
		strings.ToLower(collection), strings.ToLower(field), field,
	)
	if _, err := s.db.ExecContext(ctx, stmt); err != nil {
		return storeError("create index", err)
	}
	return nil
}

// Ping verifies the database is reachable.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return storeError("ping", err)
	}
	return nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close(_ context.Context) error {
	return s.db.Close()
}

type sqliteCollection struct {
	db   *sql.DB
	name string
}

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type row struct {
	id   string
	body Document
}

// where renders filter as a SQL predicate prefixed with " AND ".
func where(filter Filter) (string, []any, error) {
	if filter.IsAll() {
		return "", nil, nil
	}

	column := "id"
	if filter.Field != IDField {
		if err := validateField(filter.Field); err != nil {
			return "", nil, err
		}
		column = fmt.Sprintf("json_extract(body, '$.%s')", filter.Field)
	}

	var parts []string
	var args []any
	if len(filter.Values) > 0 {
		placeholders := make([]string, len(filter.Values))
		for i, v := range filter.Values {
			placeholders[i] = "?"
			args = append(args, v)
		}
		parts = append(parts, fmt.Sprintf("%s IN (%s)", column, strings.Join(placeholders, ", ")))
	}
	if filter.MatchMissing {
		parts = append(parts, column+" IS NULL")
	}
	if len(parts) == 0 {
		return " AND 0", nil, nil
	}
	return " AND (" + strings.Join(parts, " OR ") + ")", args, nil
}

func (c *sqliteCollection) query(ctx context.Context, q queryer, filter Filter, sortField string, limit int) ([]row, error) {
	clause, args, err := where(filter)
	if err != nil {
		return nil, err
	}

	order := "seq"
	if sortField != "" {
		if err := validateField(sortField); err != nil {
			return nil, err
		}
		order = fmt.Sprintf("json_extract(body, '$.%s'), seq", sortField)
	}

	stmt := "SELECT id, body FROM documents WHERE collection = ?" + clause + " ORDER BY " + order
	if limit > 0 {
		stmt += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := q.QueryContext(ctx, stmt, append([]any{c.name}, args...)...)
	if err != nil {
		return nil, storeError("query", err)
	}
	defer rows.Close()

	var result []row
	for rows.Next() {
		var id, body string
		if err := rows.Scan(&id, &body); err != nil {
			return nil, storeError("scan", err)
		}
		doc := Document{}
		if err := json.Unmarshal([]byte(body), &doc); err != nil {
			return nil, fmt.Errorf("failed to decode document %s: %w", id, err)
		}
		result = append(result, row{id: id, body: doc})
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("iterate", err)
	}
	return result, nil
}

func withID(r row) Document {
	doc := r.body
	doc[IDField] = r.id
	return doc
}

func (c *sqliteCollection) FindOne(ctx context.Context, filter Filter) (Document, error) {
	rows, err := c.query(ctx, c.db, filter, "", 1)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNoDocument
	}
	return withID(rows[0]), nil
}

func (c *sqliteCollection) Find(ctx context.Context, filter Filter, sortField string) ([]Document, error) {
	rows, err := c.query(ctx, c.db, filter, sortField, 0)
	if err != nil {
		return nil, err
	}
	docs := make([]Document, 0, len(rows))
	for _, r := range rows {
		docs = append(docs, withID(r))
	}
	return docs, nil
}

func (c *sqliteCollection) insert(ctx context.Context, q queryer, doc Document) (string, error) {
	id := doc.ID()
	if id == "" {
		id = uuid.NewString()
	}
	body, err := json.Marshal(doc.Without(IDField))
	if err != nil {
		return "", fmt.Errorf("failed to encode document: %w", err)
	}
	if _, err := q.ExecContext(ctx,
		"INSERT INTO documents (collection, id, body) VALUES (?, ?, ?)",
		c.name, id, string(body),
	); err != nil {
		return "", storeError("insert", err)
	}
	return id, nil
}

func (c *sqliteCollection) InsertOne(ctx context.Context, doc Document) (string, error) {
	return c.insert(ctx, c.db, doc)
}

func (c *sqliteCollection) ReplaceOne(ctx context.Context, id string, doc Document, upsert bool) (UpdateResult, error) {
	var result UpdateResult
	err := c.inTx(ctx, func(tx *sql.Tx) error {
		rows, err := c.query(ctx, tx, ByID(id), "", 1)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			if !upsert {
				return nil
			}
			replacement := doc.Without(IDField)
			replacement[IDField] = id
			if _, err := c.insert(ctx, tx, replacement); err != nil {
				return err
			}
			result.UpsertedID = id
			return nil
		}

		result.Matched = 1
		changed, err := c.write(ctx, tx, id, rows[0].body, doc.Without(IDField))
		if err != nil {
			return err
		}
		if changed {
			result.Modified = 1
		}
		return nil
	})
	return result, err
}

func (c *sqliteCollection) UpdateOne(ctx context.Context, filter Filter, set Document, upsert bool) (UpdateResult, error) {
	return c.update(ctx, filter, set, upsert, 1)
}

func (c *sqliteCollection) UpdateMany(ctx context.Context, filter Filter, set Document) (UpdateResult, error) {
	return c.update(ctx, filter, set, false, 0)
}

func (c *sqliteCollection) update(ctx context.Context, filter Filter, set Document, upsert bool, limit int) (UpdateResult, error) {
	var result UpdateResult
	err := c.inTx(ctx, func(tx *sql.Tx) error {
		rows, err := c.query(ctx, tx, filter, "", limit)
		if err != nil {
			return err
		}

		if len(rows) == 0 && upsert {
			doc := Document{}
			if !filter.IsAll() && len(filter.Values) == 1 && !filter.MatchMissing {
				doc[filter.Field] = filter.Values[0]
			}
			for k, v := range set {
				doc[k] = v
			}
			id, err := c.insert(ctx, tx, doc)
			if err != nil {
				return err
			}
			result.UpsertedID = id
			return nil
		}

		for _, r := range rows {
			result.Matched++
			next := r.body.Without()
			for k, v := range set {
				next[k] = v
			}
			changed, err := c.write(ctx, tx, r.id, r.body, next)
			if err != nil {
				return err
			}
			if changed {
				result.Modified++
			}
		}
		return nil
	})
	return result, err
}

// write stores next under id when its encoding differs from prev and reports whether it did.
func (c *sqliteCollection) write(ctx context.Context, tx *sql.Tx, id string, prev, next Document) (bool, error) {
	before, err := json.Marshal(prev)
	if err != nil {
		return false, fmt.Errorf("failed to encode document: %w", err)
	}
	after, err := json.Marshal(next)
	if err != nil {
		return false, fmt.Errorf("failed to encode document: %w", err)
	}
	if string(before) == string(after) {
		return false, nil
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE documents SET body = ? WHERE collection = ? AND id = ?",
		string(after), c.name, id,
	); err != nil {
		return false, storeError("update", err)
	}
	return true, nil
}

func (c *sqliteCollection) DeleteOne(ctx context.Context, filter Filter) (int64, error) {
	clause, args, err := where(filter)
	if err != nil {
		return 0, err
	}
	stmt := "DELETE FROM documents WHERE seq = (SELECT seq FROM documents WHERE collection = ?" +
		clause + " ORDER BY seq LIMIT 1)"
	res, err := c.db.ExecContext(ctx, stmt, append([]any{c.name}, args...)...)
	if err != nil {
		return 0, storeError("delete", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, storeError("delete", err)
	}
	return n, nil
}

func (c *sqliteCollection) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return storeError("begin", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return errors.Join(err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return storeError("commit", err)
	}
	return nil
}
