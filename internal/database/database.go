// Package database provides the document store the portfolio service persists to.
//
// Two backends implement Store: MongoDB for deployments and an embedded SQLite
// store (JSON documents in a single table) for local development and tests.
// Both honor the same Filter semantics, including "field equals value OR field is missing".
package database

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/woodid012/renew-portfolio-api/internal/apperrors"
	"github.com/woodid012/renew-portfolio-api/internal/config"
)

// IDField is the document key carrying the store-assigned identifier.
const IDField = "_id"

// Supported values for DatabaseConfig.Driver.
const (
	DriverMongo  = "mongo"
	DriverSQLite = "sqlite"
)

// ErrNoDocument is returned by FindOne when the filter matched nothing.
var ErrNoDocument = errors.New("no document matched the filter")

// Document is a schemaless record. The identifier, when present, is a string under IDField.
type Document map[string]any

// ID returns the document identifier or "" when unset.
func (d Document) ID() string {
	id, _ := d[IDField].(string)
	return id
}

// Without returns a shallow copy of d lacking the given keys.
func (d Document) Without(keys ...string) Document {
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = v
	}
	for _, k := range keys {
		delete(out, k)
	}
	return out
}

// Filter selects documents whose Field equals one of Values.
// With MatchMissing, documents where Field is absent or null match as well.
// The zero Filter matches every document.
type Filter struct {
	Field        string
	Values       []any
	MatchMissing bool
}

// All matches every document in a collection.
func All() Filter {
	return Filter{}
}

// Eq matches documents whose field equals value.
func Eq(field string, value any) Filter {
	return Filter{Field: field, Values: []any{value}}
}

// In matches documents whose field equals any of values.
func In(field string, values ...any) Filter {
	return Filter{Field: field, Values: values}
}

// EqOrMissing matches documents whose field equals value or is absent.
func EqOrMissing(field string, value any) Filter {
	return Filter{Field: field, Values: []any{value}, MatchMissing: true}
}

// ByID matches the document with the given identifier.
func ByID(id string) Filter {
	return Eq(IDField, id)
}

// IsAll reports whether the filter matches every document.
func (f Filter) IsAll() bool {
	return f.Field == ""
}

// UpdateResult reports the outcome of a write.
// Modified counts only documents whose stored content actually changed.
type UpdateResult struct {
	Matched    int64
	Modified   int64
	UpsertedID string
}

// Collection is a named set of documents.
type Collection interface {
	// FindOne returns the first matching document in insertion order, or ErrNoDocument.
	FindOne(ctx context.Context, filter Filter) (Document, error)
	// Find returns all matching documents ordered by sortField ascending, or insertion order when empty.
	Find(ctx context.Context, filter Filter, sortField string) ([]Document, error)
	// InsertOne stores doc and returns its identifier. A missing _id is assigned by the store.
	InsertOne(ctx context.Context, doc Document) (string, error)
	// ReplaceOne overwrites the document with the given identifier, inserting it when upsert is set.
	ReplaceOne(ctx context.Context, id string, doc Document, upsert bool) (UpdateResult, error)
	// UpdateOne sets fields on the first matching document, inserting one when upsert is set and nothing matched.
	UpdateOne(ctx context.Context, filter Filter, set Document, upsert bool) (UpdateResult, error)
	// UpdateMany sets fields on every matching document.
	UpdateMany(ctx context.Context, filter Filter, set Document) (UpdateResult, error)
	// DeleteOne removes the first matching document and reports how many were removed.
	DeleteOne(ctx context.Context, filter Filter) (int64, error)
}

// Store is a document database.
type Store interface {
	Collection(name string) Collection
	// EnsureIndex creates an ascending index on field if it does not exist yet.
	EnsureIndex(ctx context.Context, collection, field string) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// Open connects to the store selected by cfg.Driver.
func Open(ctx context.Context, cfg config.DatabaseConfig) (Store, error) {
	switch strings.ToLower(cfg.Driver) {
	case DriverMongo, "mongodb", "":
		if cfg.URI == "" {
			return nil, fmt.Errorf("%w: MONGODB_URI is not set", apperrors.ErrStoreUnavailable)
		}
		return OpenMongo(ctx, cfg.URI, cfg.Name)
	case DriverSQLite:
		return OpenSQLite(ctx, cfg.Path)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

var fieldPattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

func validateField(field string) error {
	if !fieldPattern.MatchString(field) {
		return fmt.Errorf("invalid field name %q", field)
	}
	return nil
}

// storeError marks err as a store failure so callers can classify it.
func storeError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", apperrors.ErrStoreUnavailable, op, err)
}
