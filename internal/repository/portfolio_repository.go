package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/woodid012/renew-portfolio-api/internal/apperrors"
	"github.com/woodid012/renew-portfolio-api/internal/database"
	"github.com/woodid012/renew-portfolio-api/internal/model"
)

// PortfolioRepository provides data access methods for the CONFIG_Inputs collection.
type PortfolioRepository struct {
	coll database.Collection
}

// NewPortfolioRepository creates a new PortfolioRepository on the given store.
func NewPortfolioRepository(store database.Store) *PortfolioRepository {
	return &PortfolioRepository{coll: store.Collection(CollectionPortfolios)}
}

// IndexedFields are the lookup keys of the identity chain.
var IndexedFields = []string{model.FieldUniqueID, model.FieldPlatformName, model.FieldPortfolioTitle}

// EnsureIndexes creates indexes on the identity lookup fields.
func EnsureIndexes(ctx context.Context, store database.Store) error {
	for _, field := range IndexedFields {
		if err := store.EnsureIndex(ctx, CollectionPortfolios, field); err != nil {
			return fmt.Errorf("failed to index %s.%s: %w", CollectionPortfolios, field, err)
		}
	}
	return nil
}

// FindOneBy returns the first portfolio whose field equals value.
// Returns apperrors.ErrPortfolioNotFound if none does.
func (s *PortfolioRepository) FindOneBy(ctx context.Context, field, value string) (*model.Portfolio, error) {
	doc, err := s.coll.FindOne(ctx, database.Eq(field, value))
	if errors.Is(err, database.ErrNoDocument) {
		return nil, apperrors.ErrPortfolioNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query portfolio by %s: %w", field, err)
	}
	return portfolioFromDocument(doc), nil
}

// UniqueIDExists reports whether any portfolio carries uniqueID.
func (s *PortfolioRepository) UniqueIDExists(ctx context.Context, uniqueID string) (bool, error) {
	_, err := s.FindOneBy(ctx, model.FieldUniqueID, uniqueID)
	if errors.Is(err, apperrors.ErrPortfolioNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// List returns every portfolio in insertion order.
func (s *PortfolioRepository) List(ctx context.Context) ([]*model.Portfolio, error) {
	docs, err := s.coll.Find(ctx, database.All(), "")
	if err != nil {
		return nil, fmt.Errorf("failed to list portfolios: %w", err)
	}
	portfolios := make([]*model.Portfolio, 0, len(docs))
	for _, doc := range docs {
		portfolios = append(portfolios, portfolioFromDocument(doc))
	}
	return portfolios, nil
}

// Insert stores a new portfolio and returns its store id.
func (s *PortfolioRepository) Insert(ctx context.Context, p *model.Portfolio) (string, error) {
	id, err := s.coll.InsertOne(ctx, portfolioToDocument(p))
	if err != nil {
		return "", fmt.Errorf("failed to insert portfolio: %w", err)
	}
	return id, nil
}

// FindDocumentByID returns the raw document with the given store id, including fields
// the Portfolio model does not carry.
// Returns apperrors.ErrPortfolioNotFound if there is none.
func (s *PortfolioRepository) FindDocumentByID(ctx context.Context, id string) (database.Document, error) {
	doc, err := s.coll.FindOne(ctx, database.ByID(id))
	if errors.Is(err, database.ErrNoDocument) {
		return nil, apperrors.ErrPortfolioNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query portfolio %s: %w", id, err)
	}
	return doc, nil
}

// Replace overwrites every field of the document with store id id by doc, creating it if absent.
// Keys of doc outside the Portfolio model are stored as given.
func (s *PortfolioRepository) Replace(ctx context.Context, id string, doc database.Document) (database.UpdateResult, error) {
	res, err := s.coll.ReplaceOne(ctx, id, doc.Without(database.IDField), true)
	if err != nil {
		return res, fmt.Errorf("failed to replace portfolio %s: %w", id, err)
	}
	return res, nil
}

// SetFieldByUniqueID sets field on every document sharing uniqueID.
func (s *PortfolioRepository) SetFieldByUniqueID(ctx context.Context, uniqueID, field string, value any) (database.UpdateResult, error) {
	res, err := s.coll.UpdateMany(ctx, database.Eq(model.FieldUniqueID, uniqueID), database.Document{field: value})
	if err != nil {
		return res, fmt.Errorf("failed to update %s for %s: %w", field, uniqueID, err)
	}
	return res, nil
}

// UpdateByID sets fields on the document with the given store id.
func (s *PortfolioRepository) UpdateByID(ctx context.Context, id string, set database.Document) (database.UpdateResult, error) {
	res, err := s.coll.UpdateOne(ctx, database.ByID(id), set, false)
	if err != nil {
		return res, fmt.Errorf("failed to update portfolio %s: %w", id, err)
	}
	return res, nil
}

// DeleteOneBy removes the first portfolio whose field equals value and reports how many were removed.
func (s *PortfolioRepository) DeleteOneBy(ctx context.Context, field, value string) (int64, error) {
	n, err := s.coll.DeleteOne(ctx, database.Eq(field, value))
	if err != nil {
		return 0, fmt.Errorf("failed to delete portfolio by %s: %w", field, err)
	}
	return n, nil
}
