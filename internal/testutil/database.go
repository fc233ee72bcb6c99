package testutil

import (
	"context"
	"testing"

	"github.com/woodid012/renew-portfolio-api/internal/database"
)

// SetupTestDB creates an in-memory SQLite document store for testing.
// Migrations are applied and the store is closed when the test completes.
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//	    store := testutil.SetupTestDB(t)
//	    // store is ready to use
//	}
func SetupTestDB(t *testing.T) database.Store {
	t.Helper()

	store, err := database.OpenSQLite(context.Background(), database.MemoryPath)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	t.Cleanup(func() {
		store.Close(context.Background())
	})

	return store
}

// InsertDocument stores doc in collection and returns its _id.
func InsertDocument(t *testing.T, store database.Store, collection string, doc database.Document) string {
	t.Helper()

	id, err := store.Collection(collection).InsertOne(context.Background(), doc)
	if err != nil {
		t.Fatalf("Failed to insert into %s: %v", collection, err)
	}
	return id
}

// FindDocuments returns every document in collection matching filter, in insertion order.
func FindDocuments(t *testing.T, store database.Store, collection string, filter database.Filter) []database.Document {
	t.Helper()

	docs, err := store.Collection(collection).Find(context.Background(), filter, "")
	if err != nil {
		t.Fatalf("Failed to query %s: %v", collection, err)
	}
	return docs
}

// AssertDocumentCount fails the test if collection does not hold exactly expected documents matching filter.
func AssertDocumentCount(t *testing.T, store database.Store, collection string, filter database.Filter, expected int) {
	t.Helper()

	if got := len(FindDocuments(t, store, collection, filter)); got != expected {
		t.Errorf("Expected %d documents in %s, got %d", expected, collection, got)
	}
}
