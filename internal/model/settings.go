package model

import "time"

// DefaultSettingsKey is the unique_id of the global fallback model-settings document.
// Documents with no unique_id are treated as the same document.
const DefaultSettingsKey = "default"

// Model-settings keys that have legacy spellings or read-time defaults.
const (
	SettingDebtRepaymentDscrFrequency = "debtRepaymentDscrFrequency"
	SettingDebtGracePeriod            = "defaultDebtGracePeriod"

	legacyDebtRepaymentFrequency   = "defaultDebtRepaymentFrequency"
	legacyDscrCalculationFrequency = "dscrCalculationFrequency"

	// DefaultDebtGracePeriod applies when a settings document predates the grace-period policy.
	DefaultDebtGracePeriod = "prorate"
)

// legacyFrequencyKeys are consulted in order; the first present value wins.
var legacyFrequencyKeys = []string{
	legacyDebtRepaymentFrequency,
	legacyDscrCalculationFrequency,
}

// ModelSettings is a free-form model-settings document with its store id removed.
type ModelSettings map[string]any

// NormalizeModelSettings returns a copy of raw with the store id stripped and legacy fields migrated.
func NormalizeModelSettings(raw map[string]any) ModelSettings {
	out := make(ModelSettings, len(raw)+2)
	for k, v := range raw {
		if k == "_id" {
			continue
		}
		out[k] = v
	}

	if v, ok := out[SettingDebtRepaymentDscrFrequency]; !ok || v == nil {
		for _, key := range legacyFrequencyKeys {
			if legacy, ok := out[key]; ok && legacy != nil {
				out[SettingDebtRepaymentDscrFrequency] = legacy
				break
			}
		}
	}

	if v, ok := out[SettingDebtGracePeriod]; !ok || v == nil {
		out[SettingDebtGracePeriod] = DefaultDebtGracePeriod
	}

	return out
}

// SettingsSaveResult reports the outcome of a model-settings upsert.
type SettingsSaveResult struct {
	UniqueID string
	Updated  bool
	Created  bool
}

// AppSetting is a singleton row of the Settings collection.
type AppSetting struct {
	Type      string     `json:"type"`
	Value     string     `json:"value"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}
