package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/woodid012/renew-portfolio-api/internal/apperrors"
	"github.com/woodid012/renew-portfolio-api/internal/model"
	"github.com/woodid012/renew-portfolio-api/internal/repository"
)

// SettingsService resolves and saves model settings with a per-portfolio override over a global default.
type SettingsService struct {
	settingsRepo *repository.ModelSettingsRepository
	now          func() time.Time
}

// NewSettingsService creates a new SettingsService.
func NewSettingsService(settingsRepo *repository.ModelSettingsRepository) *SettingsService {
	return &SettingsService{
		settingsRepo: settingsRepo,
		now:          time.Now,
	}
}

// Get returns the settings for uniqueID, falling back to the global default document.
// An empty uniqueID reads the default directly. Returns nil settings, not an error, when nothing is stored.
func (s *SettingsService) Get(ctx context.Context, uniqueID string) (model.ModelSettings, error) {
	uniqueID = strings.TrimSpace(uniqueID)

	if uniqueID != "" && uniqueID != model.DefaultSettingsKey {
		settings, err := s.settingsRepo.FindByUniqueID(ctx, uniqueID)
		if err == nil {
			return settings, nil
		}
		if !errors.Is(err, apperrors.ErrSettingsNotFound) {
			return nil, err
		}
	}

	settings, err := s.settingsRepo.FindDefault(ctx)
	if errors.Is(err, apperrors.ErrSettingsNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return settings, nil
}

// Save merges payload into the settings document keyed by payload's unique_id, or the default document when absent.
func (s *SettingsService) Save(ctx context.Context, payload map[string]any) (*model.SettingsSaveResult, error) {
	key := model.DefaultSettingsKey
	if v, ok := payload[model.FieldUniqueID].(string); ok && strings.TrimSpace(v) != "" {
		key = strings.TrimSpace(v)
	}

	fields := make(map[string]any, len(payload))
	for k, v := range payload {
		if k == model.FieldUniqueID || k == model.FieldUpdatedAt {
			continue
		}
		fields[k] = v
	}

	res, err := s.settingsRepo.Upsert(ctx, key, fields, s.now())
	if err != nil {
		return nil, err
	}

	return &model.SettingsSaveResult{
		UniqueID: key,
		Updated:  res.Modified > 0,
		Created:  res.UpsertedID != "",
	}, nil
}
