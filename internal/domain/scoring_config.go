package domain

import (
	"fmt"
	"time"
)

// ConfigScope identifies which tier of the override chain a config belongs to.
// Resolution order is campaign > user > global.
type ConfigScope string

const (
	ScopeGlobal   ConfigScope = "global"
	ScopeUser     ConfigScope = "user"
	ScopeCampaign ConfigScope = "campaign"
)

// ScoringConfig holds the coefficients and thresholds for the risk formula.
// Exactly one global config always exists (seeded by migration); user and
// campaign rows override it for their scope.
type ScoringConfig struct {
	ID      string      `json:"id" db:"id"`
	Scope   ConfigScope `json:"scope" db:"scope"`
	ScopeID string      `json:"scope_id,omitempty" db:"scope_id"`

	WeightCPMGrowth  float64 `json:"weight_cpm_growth" db:"weight_cpm_growth"`
	WeightCTRDecline float64 `json:"weight_ctr_decline" db:"weight_ctr_decline"`
	WeightFrequency  float64 `json:"weight_frequency" db:"weight_frequency"`
	WeightBudgetJump float64 `json:"weight_budget_jump" db:"weight_budget_jump"`
	WeightRankDrop   float64 `json:"weight_rank_drop" db:"weight_rank_drop"`

	LowMax    float64 `json:"low_max" db:"low_max"`
	MediumMax float64 `json:"medium_max" db:"medium_max"`

	FrequencyFloor float64 `json:"frequency_floor" db:"frequency_floor"`
	FrequencySpan  float64 `json:"frequency_span" db:"frequency_span"`

	MinImpressions int64 `json:"min_impressions" db:"min_impressions"`

	// TargetCPL enables CPL health scoring when > 0.
	TargetCPL float64 `json:"target_cpl,omitempty" db:"target_cpl"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// DefaultScoringConfig returns the seeded global defaults.
func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		Scope:            ScopeGlobal,
		WeightCPMGrowth:  30,
		WeightCTRDecline: 25,
		WeightFrequency:  20,
		WeightBudgetJump: 15,
		WeightRankDrop:   10,
		LowMax:           30,
		MediumMax:        60,
		FrequencyFloor:   1.9,
		FrequencySpan:    0.8,
		MinImpressions:   1000,
	}
}

// Validate checks structural invariants. It does not check scope uniqueness;
// that is the store's job.
func (c ScoringConfig) Validate() error {
	switch c.Scope {
	case ScopeGlobal:
		if c.ScopeID != "" {
			return fmt.Errorf("global config must not carry a scope_id")
		}
	case ScopeUser, ScopeCampaign:
		if c.ScopeID == "" {
			return fmt.Errorf("%s config requires a scope_id", c.Scope)
		}
	default:
		return fmt.Errorf("unknown scope %q", c.Scope)
	}
	for name, w := range map[string]float64{
		"weight_cpm_growth":  c.WeightCPMGrowth,
		"weight_ctr_decline": c.WeightCTRDecline,
		"weight_frequency":   c.WeightFrequency,
		"weight_budget_jump": c.WeightBudgetJump,
		"weight_rank_drop":   c.WeightRankDrop,
	} {
		if w < 0 {
			return fmt.Errorf("%s must be non-negative, got %v", name, w)
		}
	}
	if c.LowMax >= c.MediumMax {
		return fmt.Errorf("low_max (%v) must be below medium_max (%v)", c.LowMax, c.MediumMax)
	}
	if c.FrequencySpan <= 0 {
		return fmt.Errorf("frequency_span must be positive, got %v", c.FrequencySpan)
	}
	if c.MinImpressions < 0 {
		return fmt.Errorf("min_impressions must be non-negative, got %d", c.MinImpressions)
	}
	if c.TargetCPL < 0 {
		return fmt.Errorf("target_cpl must be non-negative, got %v", c.TargetCPL)
	}
	return nil
}
