package scoring

import (
	"math"

	"github.com/adpilot/meta-ads-monitor/internal/domain"
)

const (
	minScore = 0.0
	maxScore = 100.0

	// a raise counts as a budget jump at or above this current/baseline ratio
	budgetJumpRatio = 1.3
)

// Score computes the weighted risk score of one ad unit from its current
// and baseline window aggregates. Every term is clamped at zero, so a
// factor only ever adds risk or contributes nothing; the total is capped
// to [0, 100] while components keep their uncapped values. Pure function:
// identical inputs and config always produce identical output.
func Score(current, baseline domain.MetricSnapshot, cfg domain.ScoringConfig) (float64, domain.ScoreComponents) {
	comps := domain.ScoreComponents{
		CPMGrowth:  cpmGrowthTerm(current, baseline, cfg.WeightCPMGrowth),
		CTRDecline: ctrDeclineTerm(current, baseline, cfg.WeightCTRDecline),
		Frequency:  frequencyTerm(current, cfg),
		BudgetJump: budgetJumpTerm(current, baseline, cfg.WeightBudgetJump),
		RankDrop:   rankDropTerm(current, baseline, cfg.WeightRankDrop),
	}

	total := comps.Sum()
	if total > maxScore {
		total = maxScore
	}
	if total < minScore {
		total = minScore
	}
	return total, comps
}

// TierFor buckets a score. Boundaries are inclusive on the low side: a
// score exactly at LowMax is still low.
func TierFor(score float64, cfg domain.ScoringConfig) domain.RiskTier {
	switch {
	case score <= cfg.LowMax:
		return domain.TierLow
	case score <= cfg.MediumMax:
		return domain.TierMedium
	default:
		return domain.TierHigh
	}
}

// cpmGrowthTerm penalizes cost inflation against the baseline. A zero or
// missing baseline CPM yields no penalty; growth cannot be measured from
// nothing.
func cpmGrowthTerm(current, baseline domain.MetricSnapshot, weight float64) float64 {
	if baseline.CPM <= 0 {
		return 0
	}
	return weight * math.Max(0, current.CPM/baseline.CPM-1)
}

// ctrDeclineTerm penalizes engagement loss against the baseline, with the
// same zero-baseline guard as CPM growth.
func ctrDeclineTerm(current, baseline domain.MetricSnapshot, weight float64) float64 {
	if baseline.CTR <= 0 {
		return 0
	}
	return weight * math.Max(0, 1-current.CTR/baseline.CTR)
}

// frequencyTerm penalizes fatigue once frequency exceeds the configured
// floor, scaled by the span. The ratio is not capped at one; frequencies
// far past the floor keep adding risk until the total cap absorbs them.
func frequencyTerm(current domain.MetricSnapshot, cfg domain.ScoringConfig) float64 {
	if cfg.FrequencySpan <= 0 {
		return 0
	}
	return cfg.WeightFrequency * math.Max(0, (current.Frequency-cfg.FrequencyFloor)/cfg.FrequencySpan)
}

// budgetJumpTerm is binary: the full weight when the current daily budget
// is at least budgetJumpRatio times the baseline observation, zero
// otherwise. Units without a known budget on either side contribute
// nothing. An exact 30% raise counts as a jump.
func budgetJumpTerm(current, baseline domain.MetricSnapshot, weight float64) float64 {
	if current.DailyBudget <= 0 || baseline.DailyBudget <= 0 {
		return 0
	}
	if current.DailyBudget/baseline.DailyBudget >= budgetJumpRatio {
		return weight
	}
	return 0
}

// rankDropTerm is binary: the full weight when either platform ranking
// degraded ordinally against the baseline observation. A ranking absent on
// either side carries no signal and never penalizes.
func rankDropTerm(current, baseline domain.MetricSnapshot, weight float64) float64 {
	if rankingDegraded(current.QualityRanking, baseline.QualityRanking) ||
		rankingDegraded(current.EngagementRanking, baseline.EngagementRanking) {
		return weight
	}
	return 0
}

func rankingDegraded(current, baseline string) bool {
	cur, base := domain.RankValue(current), domain.RankValue(baseline)
	if cur < 0 || base < 0 {
		return false
	}
	return cur < base
}
