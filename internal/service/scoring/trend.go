package scoring

import (
	"math"
	"time"

	"github.com/adpilot/meta-ads-monitor/internal/domain"
)

// trendEpsilon is the absolute score movement treated as noise.
const trendEpsilon = 2.0

// DetectTrend classifies how a unit's risk moved since the previous day.
// Instead of reading a stored prior score, it recomputes yesterday's
// score from the same history with both windows shifted back one day,
// which keeps the engine stateless and the comparison reproducible from
// history alone. A unit with no scoreable history yesterday reads stable.
func DetectTrend(rows []domain.MetricSnapshot, anchor time.Time, currentDays, baselineDays int, todayScore float64, todayTier domain.RiskTier, cfg domain.ScoringConfig) domain.TrendDirection {
	prevCurrent, prevBaseline, ok := BuildWindows(rows, anchor.AddDate(0, 0, -1), currentDays, baselineDays)
	if !ok {
		return domain.TrendStable
	}
	prevScore, _ := Score(prevCurrent, prevBaseline, cfg)

	// crossing into the high tier is declining even when the numeric
	// movement sits inside the epsilon
	if todayTier == domain.TierHigh && TierFor(prevScore, cfg) != domain.TierHigh {
		return domain.TrendDeclining
	}

	delta := todayScore - prevScore
	if math.Abs(delta) <= trendEpsilon {
		return domain.TrendStable
	}
	if delta > 0 {
		return domain.TrendDeclining
	}
	return domain.TrendImproving
}
