package domain

import "time"

// RiskTier is the coarse bucket a score falls into.
type RiskTier string

const (
	TierLow    RiskTier = "low"
	TierMedium RiskTier = "medium"
	TierHigh   RiskTier = "high"
)

// Confidence flags whether a score was computed from an adequate sample.
type Confidence string

const (
	ConfidenceFull Confidence = "full"
	ConfidenceLow  Confidence = "low"
)

// TrendDirection describes how a unit's risk moved since the prior day.
type TrendDirection string

const (
	TrendImproving TrendDirection = "improving"
	TrendStable    TrendDirection = "stable"
	TrendDeclining TrendDirection = "declining"
)

// ScoreComponents breaks the total risk score into its weighted factors.
// Each component is non-negative; together they sum to the pre-cap total.
type ScoreComponents struct {
	CPMGrowth  float64 `json:"cpm_growth"`
	CTRDecline float64 `json:"ctr_decline"`
	Frequency  float64 `json:"frequency"`
	BudgetJump float64 `json:"budget_jump"`
	RankDrop   float64 `json:"rank_drop"`
}

// Sum returns the pre-cap total of all components.
func (c ScoreComponents) Sum() float64 {
	return c.CPMGrowth + c.CTRDecline + c.Frequency + c.BudgetJump + c.RankDrop
}

// WindowSummary echoes the aggregated metrics a score was computed from,
// so downstream consumers can see the inputs alongside the verdict.
type WindowSummary struct {
	Days        int     `json:"days"`
	Impressions int64   `json:"impressions"`
	Clicks      int64   `json:"clicks"`
	Leads       int64   `json:"leads"`
	Spend       float64 `json:"spend"`
	CPM         float64 `json:"cpm"`
	CTR         float64 `json:"ctr"`
	Frequency   float64 `json:"frequency"`
	CPL         float64 `json:"cpl"`
}

// HealthClass buckets a CPL health score.
type HealthClass string

const (
	HealthVeryGood    HealthClass = "very_good"
	HealthGood        HealthClass = "good"
	HealthNeutral     HealthClass = "neutral"
	HealthSlightlyBad HealthClass = "slightly_bad"
	HealthBad         HealthClass = "bad"
)

// HealthReport is the optional CPL health block computed when a target CPL
// is configured for the unit's scope. Component values are rounded to two
// decimals; Score is the rounded volume-weighted total.
type HealthReport struct {
	Score        float64     `json:"score"`
	Class        HealthClass `json:"class"`
	GapFactor    float64     `json:"gap_factor"`
	TrendFactor  float64     `json:"trend_factor"`
	Diagnostics  float64     `json:"diagnostics"`
	TodayAdj     float64     `json:"today_adj"`
	VolumeFactor float64     `json:"volume_factor"`
}

// FatigueReport flags creative wear-out signals on a unit.
type FatigueReport struct {
	Fatigued bool     `json:"fatigued"`
	Urgent   bool     `json:"urgent"`
	Reasons  []string `json:"reasons,omitempty"`
}

// RiskScoreResult is the calculator's output for one ad unit in one run.
type RiskScoreResult struct {
	UnitID     string    `json:"unit_id"`
	UnitLevel  UnitLevel `json:"unit_level"`
	CampaignID string    `json:"campaign_id,omitempty"`
	CreativeID string    `json:"creative_id,omitempty"`
	Name       string    `json:"name,omitempty"`

	Score      float64         `json:"score"`
	Components ScoreComponents `json:"components"`
	Tier       RiskTier        `json:"tier"`
	Confidence Confidence      `json:"confidence"`
	Trend      TrendDirection  `json:"trend"`

	Current  WindowSummary `json:"current"`
	Baseline WindowSummary `json:"baseline"`

	Health  *HealthReport  `json:"health,omitempty"`
	Fatigue *FatigueReport `json:"fatigue,omitempty"`
	Tags    []string       `json:"tags,omitempty"`
}

// AlertLevel summarizes how much operator attention a portfolio needs.
type AlertLevel string

const (
	AlertNone     AlertLevel = "none"
	AlertWarning  AlertLevel = "warning"
	AlertCritical AlertLevel = "critical"
)

// EaterSeverity grades a budget-eater finding.
type EaterSeverity string

const (
	EaterCritical EaterSeverity = "critical"
	EaterHigh     EaterSeverity = "high"
	EaterMedium   EaterSeverity = "medium"
)

// BudgetEater flags a unit consuming spend without returning leads at an
// acceptable cost.
type BudgetEater struct {
	UnitID   string        `json:"unit_id"`
	Name     string        `json:"name,omitempty"`
	Severity EaterSeverity `json:"severity"`
	Spend    float64       `json:"spend"`
	Leads    int64         `json:"leads"`
	CPL      float64       `json:"cpl"`
	Reason   string        `json:"reason"`
}

// PortfolioSummary rolls per-unit scores into an account-level view.
type PortfolioSummary struct {
	TotalUnits   int            `json:"total_units"`
	LowRisk      int            `json:"low_risk"`
	MediumRisk   int            `json:"medium_risk"`
	HighRisk     int            `json:"high_risk"`
	OverallTrend TrendDirection `json:"overall_trend"`
	AlertLevel   AlertLevel     `json:"alert_level"`
	BudgetEaters []BudgetEater  `json:"budget_eaters,omitempty"`
}

// UnitError records a per-unit scoring failure inside an otherwise
// successful run.
type UnitError struct {
	UnitID string `json:"unit_id"`
	Error  string `json:"error"`
}

// RunOutput is the top-level artifact one scoring run produces. Field names
// are part of the contract with the downstream decision layer and must stay
// stable.
type RunOutput struct {
	RunID          string              `json:"run_id"`
	AccountID      string              `json:"account_id"`
	GeneratedAt    time.Time           `json:"generated_at"`
	Summary        PortfolioSummary    `json:"summary"`
	Items          []RiskScoreResult   `json:"items"`
	ReadyCreatives []CreativeCandidate `json:"ready_creatives"`
	Errors         []UnitError         `json:"errors,omitempty"`
}
