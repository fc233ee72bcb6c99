package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/phuslu/log"
	"golang.org/x/sync/errgroup"

	"github.com/woodid012/renew-portfolio-api/internal/apperrors"
	"github.com/woodid012/renew-portfolio-api/internal/database"
	"github.com/woodid012/renew-portfolio-api/internal/model"
	"github.com/woodid012/renew-portfolio-api/internal/repository"
)

// PortfolioService handles portfolio identity, creation, renames and full-document saves.
// It coordinates the CONFIG_Inputs repository with the unique_id allocator and the default-portfolio pointer.
type PortfolioService struct {
	portfolioRepo *repository.PortfolioRepository
	settingRepo   *repository.AppSettingRepository
	allocator     *UniqueIDAllocator
	resolver      *IdentityResolver
	now           func() time.Time
}

// NewPortfolioService creates a new PortfolioService with the provided dependencies.
func NewPortfolioService(
	portfolioRepo *repository.PortfolioRepository,
	settingRepo *repository.AppSettingRepository,
	allocator *UniqueIDAllocator,
) *PortfolioService {
	return &PortfolioService{
		portfolioRepo: portfolioRepo,
		settingRepo:   settingRepo,
		allocator:     allocator,
		resolver:      NewPortfolioResolver(portfolioRepo),
		now:           time.Now,
	}
}

// Resolve returns the portfolio identified by token (unique_id, PlatformName or PortfolioTitle, in that order).
func (s *PortfolioService) Resolve(ctx context.Context, token string) (*model.Portfolio, error) {
	p, matchedBy, err := s.resolver.Resolve(ctx, token)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("token", token).Str("matched_by", matchedBy).Msg("resolved portfolio")
	return p, nil
}

// FindByUniqueID returns the portfolio with exactly this unique_id.
func (s *PortfolioService) FindByUniqueID(ctx context.Context, uniqueID string) (*model.Portfolio, error) {
	uniqueID = strings.TrimSpace(uniqueID)
	if uniqueID == "" {
		return nil, apperrors.InvalidArgument("unique_id is required")
	}
	p, err := s.portfolioRepo.FindOneBy(ctx, model.FieldUniqueID, uniqueID)
	if errors.Is(err, apperrors.ErrPortfolioNotFound) {
		return nil, &apperrors.NotFoundError{Key: "unique_id", Token: uniqueID}
	}
	return p, err
}

// Create inserts a new portfolio called name, or returns the existing one with that PlatformName unchanged.
func (s *PortfolioService) Create(ctx context.Context, name string) (*model.CreateResult, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.InvalidArgument("Portfolio name is required")
	}

	existing, err := s.portfolioRepo.FindOneBy(ctx, model.FieldPlatformName, name)
	if err == nil {
		return &model.CreateResult{Portfolio: existing, Created: false}, nil
	}
	if !errors.Is(err, apperrors.ErrPortfolioNotFound) {
		return nil, err
	}

	uniqueID, err := s.allocator.Allocate(ctx)
	if err != nil {
		return nil, err
	}

	p := model.NewPortfolio(name, uniqueID)
	now := s.now().UTC()
	p.UpdatedAt = &now

	id, err := s.portfolioRepo.Insert(ctx, p)
	if err != nil {
		return nil, err
	}
	p.ID = id

	log.Info().Str("portfolio", name).Str("unique_id", uniqueID).Msg("portfolio created")
	return &model.CreateResult{Portfolio: p, Created: true}, nil
}

// ResolveDocument returns the complete stored document of the portfolio identified by token.
func (s *PortfolioService) ResolveDocument(ctx context.Context, token string) (database.Document, error) {
	p, err := s.Resolve(ctx, token)
	if err != nil {
		return nil, err
	}
	return s.portfolioRepo.FindDocumentByID(ctx, p.ID)
}

// Save replaces every field of the document doc["_id"] with doc, creating the document if it does not exist.
// Keys this service does not know are stored unchanged. An empty unique_id keeps the stored one,
// or is allocated when there is none.
func (s *PortfolioService) Save(ctx context.Context, doc database.Document) (*model.SaveResult, error) {
	id := strings.TrimSpace(stringValue(doc[database.IDField]))
	if id == "" {
		return nil, apperrors.InvalidArgument("Portfolio _id is required")
	}
	doc = doc.Without(database.IDField)

	uniqueID := strings.TrimSpace(stringValue(doc[model.FieldUniqueID]))
	if uniqueID == "" {
		existing, err := s.portfolioRepo.FindOneBy(ctx, database.IDField, id)
		switch {
		case err == nil && existing.UniqueID != "":
			uniqueID = existing.UniqueID
		case err == nil || errors.Is(err, apperrors.ErrPortfolioNotFound):
			uniqueID, err = s.allocator.Allocate(ctx)
			if err != nil {
				return nil, err
			}
		default:
			return nil, err
		}
	}
	doc[model.FieldUniqueID] = uniqueID

	name := strings.TrimSpace(stringValue(doc[model.FieldPlatformName]))
	if _, ok := doc[model.FieldPlatformName].(string); ok {
		doc[model.FieldPlatformName] = name
	}
	if title := strings.TrimSpace(stringValue(doc[model.FieldPortfolioTitle])); title != "" {
		doc[model.FieldPortfolioTitle] = title
	} else {
		doc[model.FieldPortfolioTitle] = name
	}
	if isZeroNumber(doc[model.FieldPlatformID]) {
		doc[model.FieldPlatformID] = model.DefaultPlatformID
	}
	if doc[model.FieldAssetInputs] == nil {
		doc[model.FieldAssetInputs] = []any{}
	}
	doc[model.FieldUpdatedAt] = s.now().UTC()

	res, err := s.portfolioRepo.Replace(ctx, id, doc)
	if err != nil {
		return nil, err
	}

	return &model.SaveResult{
		UniqueID: uniqueID,
		Matched:  res.Matched,
		Modified: res.Modified,
		Upserted: res.UpsertedID != "",
	}, nil
}

func stringValue(v any) string {
	str, _ := v.(string)
	return str
}

// isZeroNumber reports whether v is missing, null or numerically zero.
func isZeroNumber(v any) bool {
	switch n := v.(type) {
	case nil:
		return true
	case float64:
		return n == 0
	case int:
		return n == 0
	default:
		return false
	}
}

// RenamePlatformName sets PlatformName on every document sharing uniqueID.
func (s *PortfolioService) RenamePlatformName(ctx context.Context, uniqueID, name string) (*model.RenameResult, error) {
	return s.rename(ctx, uniqueID, model.FieldPlatformName, name, "platformName is required")
}

// RenamePortfolioTitle sets PortfolioTitle on every document sharing uniqueID.
func (s *PortfolioService) RenamePortfolioTitle(ctx context.Context, uniqueID, title string) (*model.RenameResult, error) {
	return s.rename(ctx, uniqueID, model.FieldPortfolioTitle, title, "portfolioTitle is required")
}

// rename updates one field by unique_id only. The name and title tiers of the resolver are never used here
// since a rename must target a known portfolio. Setting the current value reports Modified == 0.
func (s *PortfolioService) rename(ctx context.Context, uniqueID, field, value, required string) (*model.RenameResult, error) {
	uniqueID = strings.TrimSpace(uniqueID)
	if uniqueID == "" {
		return nil, apperrors.InvalidArgument("unique_id is required")
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, apperrors.InvalidArgument(required)
	}

	existing, err := s.FindByUniqueID(ctx, uniqueID)
	if err != nil {
		return nil, err
	}

	previous := existing.PlatformName
	if field == model.FieldPortfolioTitle {
		previous = existing.PortfolioTitle
	}

	res, err := s.portfolioRepo.SetFieldByUniqueID(ctx, uniqueID, field, value)
	if err != nil {
		return nil, err
	}
	if res.Matched == 0 {
		return nil, &apperrors.NotFoundError{Key: "unique_id", Token: uniqueID}
	}
	if res.Matched > 1 {
		log.Warn().Str("unique_id", uniqueID).Int64("documents", res.Matched).Msg("multiple portfolios share a unique_id")
	}

	if res.Modified > 0 {
		if _, err := s.portfolioRepo.SetFieldByUniqueID(ctx, uniqueID, model.FieldUpdatedAt, s.now().UTC()); err != nil {
			return nil, err
		}
		log.Info().Str("unique_id", uniqueID).Str("field", field).Str("from", previous).Str("to", value).Msg("portfolio renamed")
	}

	return &model.RenameResult{
		UniqueID:      uniqueID,
		PreviousValue: previous,
		NewValue:      value,
		Matched:       res.Matched,
		Modified:      res.Modified,
	}, nil
}

// Delete removes the portfolio identified by uniqueID or, when that is empty, by PlatformName.
// A unique_id that matches nothing is not an error. The reserved import portfolio cannot be deleted.
func (s *PortfolioService) Delete(ctx context.Context, uniqueID, name string) (*model.DeleteResult, error) {
	uniqueID = strings.TrimSpace(uniqueID)
	name = strings.TrimSpace(name)

	switch {
	case uniqueID != "":
	case name != "":
		p, err := s.portfolioRepo.FindOneBy(ctx, model.FieldPlatformName, name)
		if errors.Is(err, apperrors.ErrPortfolioNotFound) || (err == nil && p.UniqueID == "") {
			return nil, &apperrors.NotFoundError{Key: "portfolio", Token: name}
		}
		if err != nil {
			return nil, err
		}
		uniqueID = p.UniqueID
	default:
		return nil, apperrors.InvalidArgument("Portfolio unique_id or portfolio name is required")
	}

	existing, err := s.portfolioRepo.FindOneBy(ctx, model.FieldUniqueID, uniqueID)
	if errors.Is(err, apperrors.ErrPortfolioNotFound) {
		return &model.DeleteResult{UniqueID: uniqueID, Existed: false}, nil
	}
	if err != nil {
		return nil, err
	}

	if existing.PlatformName == model.ReservedPortfolioName {
		return nil, fmt.Errorf("%w: cannot delete %s", apperrors.ErrReservedPortfolio, model.ReservedPortfolioName)
	}

	n, err := s.portfolioRepo.DeleteOneBy(ctx, model.FieldUniqueID, uniqueID)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, fmt.Errorf("%w: delete matched no document", apperrors.ErrStoreUnavailable)
	}

	log.Info().Str("unique_id", uniqueID).Str("portfolio", existing.PlatformName).Msg("portfolio deleted")
	return &model.DeleteResult{
		UniqueID:     uniqueID,
		PlatformName: existing.PlatformName,
		Existed:      true,
		Deleted:      n,
	}, nil
}

// List groups portfolios by unique_id. Documents without a unique_id are skipped.
// The default portfolio comes first, then entries sort by unique_id and name.
func (s *PortfolioService) List(ctx context.Context) (*model.PortfolioListing, error) {
	var (
		portfolios []*model.Portfolio
		defaultID  string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		portfolios, err = s.portfolioRepo.List(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		defaultID, err = s.GetDefault(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	groups := map[string]*model.PortfolioSummary{}
	var order []string
	for _, p := range portfolios {
		if p.UniqueID == "" {
			continue
		}
		group, ok := groups[p.UniqueID]
		if !ok {
			group = &model.PortfolioSummary{
				UniqueID:        p.UniqueID,
				PortfolioNames:  []string{},
				PortfolioTitles: []model.PortfolioLabel{},
				IsDefault:       p.UniqueID == defaultID,
			}
			groups[p.UniqueID] = group
			order = append(order, p.UniqueID)
		}

		title := p.PortfolioTitle
		if title == "" {
			title = p.PlatformName
		}
		group.PortfolioNames = append(group.PortfolioNames, p.PlatformName)
		group.PortfolioTitles = append(group.PortfolioTitles, model.PortfolioLabel{Name: p.PlatformName, Title: title})
		group.AssetCount += len(p.AssetInputs)
		if p.UpdatedAt != nil && (group.LastUpdated == nil || p.UpdatedAt.After(*group.LastUpdated)) {
			updated := *p.UpdatedAt
			group.LastUpdated = &updated
		}
	}

	summaries := make([]model.PortfolioSummary, 0, len(order))
	for _, uniqueID := range order {
		group := groups[uniqueID]
		group.Name, group.Title = displayLabel(group)
		summaries = append(summaries, *group)
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		a, b := summaries[i], summaries[j]
		if a.IsDefault != b.IsDefault {
			return a.IsDefault
		}
		if a.UniqueID != b.UniqueID {
			return a.UniqueID < b.UniqueID
		}
		return a.Name < b.Name
	})

	return &model.PortfolioListing{Portfolios: summaries, DefaultPortfolio: defaultID}, nil
}

// displayLabel prefers an entry whose title was customised, then the first entry, then the unique_id.
func displayLabel(group *model.PortfolioSummary) (string, string) {
	for _, label := range group.PortfolioTitles {
		if label.Title != label.Name {
			return orDefault(label.Name, group.UniqueID), orDefault(label.Title, group.UniqueID)
		}
	}
	if len(group.PortfolioTitles) > 0 {
		first := group.PortfolioTitles[0]
		return orDefault(first.Name, group.UniqueID), orDefault(first.Title, group.UniqueID)
	}
	return group.UniqueID, group.UniqueID
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

// GetDefault returns the default portfolio's unique_id, or "" when none is set.
func (s *PortfolioService) GetDefault(ctx context.Context) (string, error) {
	setting, err := s.settingRepo.Get(ctx, repository.SettingDefaultPortfolio)
	if errors.Is(err, apperrors.ErrSettingNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return setting.Value, nil
}

// SetDefault points the default portfolio at uniqueID, which must exist.
func (s *PortfolioService) SetDefault(ctx context.Context, uniqueID string) (string, error) {
	uniqueID = strings.TrimSpace(uniqueID)
	if uniqueID == "" {
		return "", apperrors.InvalidArgument("Portfolio unique_id is required")
	}

	if _, err := s.FindByUniqueID(ctx, uniqueID); err != nil {
		return "", err
	}

	if err := s.settingRepo.Set(ctx, repository.SettingDefaultPortfolio, uniqueID, s.now()); err != nil {
		return "", err
	}
	return uniqueID, nil
}
