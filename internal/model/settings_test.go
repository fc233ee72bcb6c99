package model

import "testing"

// WHY: Settings saved by older releases use legacy field names; readers only know the current ones.
func TestNormalizeModelSettings(t *testing.T) {
	tests := []struct {
		name      string
		raw       map[string]any
		frequency any
		grace     any
	}{
		{
			name:      "dscr frequency alone is migrated",
			raw:       map[string]any{"_id": "x", "dscrCalculationFrequency": "quarterly"},
			frequency: "quarterly",
			grace:     DefaultDebtGracePeriod,
		},
		{
			name: "repayment frequency wins over dscr frequency",
			raw: map[string]any{
				"defaultDebtRepaymentFrequency": "monthly",
				"dscrCalculationFrequency":      "quarterly",
			},
			frequency: "monthly",
			grace:     DefaultDebtGracePeriod,
		},
		{
			name: "current field is kept",
			raw: map[string]any{
				"debtRepaymentDscrFrequency": "annual",
				"dscrCalculationFrequency":   "quarterly",
				"defaultDebtGracePeriod":     "full_period",
			},
			frequency: "annual",
			grace:     "full_period",
		},
		{
			name:      "null current field falls back to legacy",
			raw:       map[string]any{"debtRepaymentDscrFrequency": nil, "dscrCalculationFrequency": "quarterly"},
			frequency: "quarterly",
			grace:     DefaultDebtGracePeriod,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeModelSettings(tt.raw)
			if _, ok := got["_id"]; ok {
				t.Error("store id should be stripped")
			}
			if got[SettingDebtRepaymentDscrFrequency] != tt.frequency {
				t.Errorf("frequency = %v, want %v", got[SettingDebtRepaymentDscrFrequency], tt.frequency)
			}
			if got[SettingDebtGracePeriod] != tt.grace {
				t.Errorf("grace period = %v, want %v", got[SettingDebtGracePeriod], tt.grace)
			}
		})
	}
}

func TestNormalizeModelSettings_NoLegacyFields(t *testing.T) {
	got := NormalizeModelSettings(map[string]any{"minDSCR": 1.35})
	if _, ok := got[SettingDebtRepaymentDscrFrequency]; ok {
		t.Error("frequency should not be synthesized without a legacy source")
	}
	if got["minDSCR"] != 1.35 {
		t.Errorf("unrelated fields must be preserved, got %v", got)
	}
}

func TestNormalizeModelSettings_DoesNotMutateInput(t *testing.T) {
	raw := map[string]any{"_id": "x"}
	NormalizeModelSettings(raw)
	if _, ok := raw["_id"]; !ok {
		t.Error("input map should not be modified")
	}
}
