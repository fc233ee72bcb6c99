package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/woodid012/renew-portfolio-api/internal/apperrors"
	"github.com/woodid012/renew-portfolio-api/internal/database"
	"github.com/woodid012/renew-portfolio-api/internal/model"
)

// ModelSettingsRepository provides access to CONFIG_modelSettings.
// Documents are returned normalized: store id removed and legacy fields migrated.
type ModelSettingsRepository struct {
	coll database.Collection
}

// NewModelSettingsRepository creates a new ModelSettingsRepository on the given store.
func NewModelSettingsRepository(store database.Store) *ModelSettingsRepository {
	return &ModelSettingsRepository{coll: store.Collection(CollectionModelSettings)}
}

// keyFilter selects the settings document for key. The sentinel key also matches documents without a key.
func keyFilter(key string) database.Filter {
	if key == model.DefaultSettingsKey {
		return database.EqOrMissing(model.FieldUniqueID, model.DefaultSettingsKey)
	}
	return database.Eq(model.FieldUniqueID, key)
}

// FindByUniqueID returns the settings stored for uniqueID, or apperrors.ErrSettingsNotFound.
func (s *ModelSettingsRepository) FindByUniqueID(ctx context.Context, uniqueID string) (model.ModelSettings, error) {
	doc, err := s.coll.FindOne(ctx, keyFilter(uniqueID))
	if errors.Is(err, database.ErrNoDocument) {
		return nil, apperrors.ErrSettingsNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query model settings for %s: %w", uniqueID, err)
	}
	return model.NormalizeModelSettings(doc), nil
}

// FindDefault returns the global fallback settings, or apperrors.ErrSettingsNotFound.
func (s *ModelSettingsRepository) FindDefault(ctx context.Context) (model.ModelSettings, error) {
	return s.FindByUniqueID(ctx, model.DefaultSettingsKey)
}

// Upsert merges fields into the settings document for key, creating it if absent.
// The stored document always carries key as its unique_id, so legacy keyless sentinels are migrated on write.
func (s *ModelSettingsRepository) Upsert(ctx context.Context, key string, fields map[string]any, now time.Time) (database.UpdateResult, error) {
	set := database.Document{}
	for k, v := range fields {
		if k == database.IDField {
			continue
		}
		set[k] = v
	}
	set[model.FieldUniqueID] = key
	set[model.FieldUpdatedAt] = now.UTC()

	res, err := s.coll.UpdateOne(ctx, keyFilter(key), set, true)
	if err != nil {
		return res, fmt.Errorf("failed to save model settings for %s: %w", key, err)
	}
	return res, nil
}

// RekeyUniqueID moves settings stored under oldID to newID.
func (s *ModelSettingsRepository) RekeyUniqueID(ctx context.Context, oldID, newID string) (int64, error) {
	res, err := s.coll.UpdateMany(ctx, database.Eq(model.FieldUniqueID, oldID), database.Document{model.FieldUniqueID: newID})
	if err != nil {
		return 0, fmt.Errorf("failed to rekey model settings %s: %w", oldID, err)
	}
	return res.Modified, nil
}

// Setting types stored in the Settings collection.
const (
	SettingDefaultPortfolio = "default_portfolio"
)

// AppSettingRepository provides access to singleton rows of the Settings collection keyed by type.
type AppSettingRepository struct {
	coll database.Collection
}

// NewAppSettingRepository creates a new AppSettingRepository on the given store.
func NewAppSettingRepository(store database.Store) *AppSettingRepository {
	return &AppSettingRepository{coll: store.Collection(CollectionSettings)}
}

// Get returns the setting of the given type, or apperrors.ErrSettingNotFound.
func (s *AppSettingRepository) Get(ctx context.Context, settingType string) (*model.AppSetting, error) {
	doc, err := s.coll.FindOne(ctx, database.Eq("type", settingType))
	if errors.Is(err, database.ErrNoDocument) {
		return nil, apperrors.ErrSettingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query setting %s: %w", settingType, err)
	}
	return &model.AppSetting{
		Type:      settingType,
		Value:     stringField(doc, "value"),
		UpdatedAt: timeField(doc, model.FieldUpdatedAt),
	}, nil
}

// Set stores value for the given setting type.
func (s *AppSettingRepository) Set(ctx context.Context, settingType, value string, now time.Time) error {
	_, err := s.coll.UpdateOne(ctx, database.Eq("type", settingType), database.Document{
		"value":              value,
		model.FieldUpdatedAt: now.UTC(),
	}, true)
	if err != nil {
		return fmt.Errorf("failed to save setting %s: %w", settingType, err)
	}
	return nil
}
