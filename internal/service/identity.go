package service

import (
	"context"
	"errors"
	"strings"

	"github.com/woodid012/renew-portfolio-api/internal/apperrors"
	"github.com/woodid012/renew-portfolio-api/internal/model"
)

// PortfolioFinder looks up the first portfolio whose field equals value.
// It returns apperrors.ErrPortfolioNotFound when none does.
type PortfolioFinder interface {
	FindOneBy(ctx context.Context, field, value string) (*model.Portfolio, error)
}

// LookupStrategy is one way of turning a token into a portfolio.
// Lookup returns (nil, nil) when the strategy finds nothing.
type LookupStrategy interface {
	Name() string
	Lookup(ctx context.Context, token string) (*model.Portfolio, error)
}

// FieldLookup matches the token exactly against one document field.
type FieldLookup struct {
	Field  string
	Finder PortfolioFinder
}

func (l FieldLookup) Name() string {
	return l.Field
}

func (l FieldLookup) Lookup(ctx context.Context, token string) (*model.Portfolio, error) {
	p, err := l.Finder.FindOneBy(ctx, l.Field, token)
	if errors.Is(err, apperrors.ErrPortfolioNotFound) {
		return nil, nil
	}
	return p, err
}

// IdentityResolver resolves a user-supplied token to a portfolio by trying strategies in order.
// The first strategy that finds a document wins and later strategies are not consulted.
type IdentityResolver struct {
	strategies []LookupStrategy
}

// NewIdentityResolver returns a resolver over the given strategies.
func NewIdentityResolver(strategies ...LookupStrategy) *IdentityResolver {
	return &IdentityResolver{strategies: strategies}
}

// NewPortfolioResolver returns the standard chain: unique_id, then PlatformName, then PortfolioTitle.
// unique_id must come first because names and titles are not unique.
func NewPortfolioResolver(finder PortfolioFinder) *IdentityResolver {
	return NewIdentityResolver(
		FieldLookup{Field: model.FieldUniqueID, Finder: finder},
		FieldLookup{Field: model.FieldPlatformName, Finder: finder},
		FieldLookup{Field: model.FieldPortfolioTitle, Finder: finder},
	)
}

// Resolve trims token and returns the first matching portfolio along with the name of the strategy that matched.
// Returns an ArgumentError for a blank token and a NotFoundError echoing the token when nothing matches.
func (r *IdentityResolver) Resolve(ctx context.Context, token string) (*model.Portfolio, string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, "", apperrors.InvalidArgument("portfolio parameter is required")
	}

	for _, strategy := range r.strategies {
		p, err := strategy.Lookup(ctx, token)
		if err != nil {
			return nil, "", err
		}
		if p != nil {
			return p, strategy.Name(), nil
		}
	}

	return nil, "", &apperrors.NotFoundError{Key: "portfolio", Token: token}
}
