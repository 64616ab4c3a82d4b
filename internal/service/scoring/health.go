package scoring

import (
	"math"
	"sort"
	"time"

	"github.com/adpilot/meta-ads-monitor/internal/domain"
)

// HealthInput gathers the observations the CPL health formula reads.
// Zero stands for unknown on every CPL field; a unit with no leads has no
// CPL, not a free one.
type HealthInput struct {
	CPLToday         float64
	CPLYesterday     float64
	CPL3d            float64
	CPL7d            float64
	CTR              float64
	CPM              float64
	Frequency        float64
	MedianCPM        float64
	ImpressionsToday int64
}

// Health scoring constants. The gap factor interpolates linearly between
// the breakpoints; the trend factor maps a +-20% CPL move onto -+15
// points; diagnostics are flat deductions; the today bonus compensates up
// to +30 for an intraday recovery; the volume factor discounts thin days.
const (
	healthGapMax = 45.0

	healthTrendClampPct = 20.0
	healthTrendMax      = 15.0

	healthLowCTRCut       = 1.0
	healthLowCTRPenalty   = 8.0
	healthHighCPMRatio    = 1.3
	healthHighCPMPenalty  = 12.0
	healthHighFreqCut     = 2.0
	healthHighFreqPenalty = 10.0

	healthTodayMinImpressions = 500
	healthTodayMax            = 30.0
)

// ComputeHealth scores how a unit's lead cost sits against its target on
// a -100..+100 style scale, positive meaning healthy. Returns nil when no
// target CPL is configured for the scope.
func ComputeHealth(in HealthInput, targetCPL float64) *domain.HealthReport {
	if targetCPL <= 0 {
		return nil
	}

	gap := healthGapFactor(in.CPLYesterday, targetCPL)
	trend := healthTrendFactor(in.CPL3d, in.CPL7d)
	diag := healthDiagnostics(in.CTR, in.CPM, in.Frequency, in.MedianCPM)
	today := healthTodayAdjustment(in.CPLToday, in.CPLYesterday, in.ImpressionsToday)
	volume := healthVolumeFactor(in.ImpressionsToday)

	score := math.Round((gap + trend + diag + today) * volume)

	return &domain.HealthReport{
		Score:        score,
		Class:        classifyHealth(score),
		GapFactor:    round2(gap),
		TrendFactor:  round2(trend),
		Diagnostics:  round2(diag),
		TodayAdj:     round2(today),
		VolumeFactor: volume,
	}
}

// healthGapFactor maps yesterday's CPL-to-target ratio onto [-45, +45],
// piecewise linear: half the target earns the full bonus, double the
// target the full penalty.
func healthGapFactor(cplYesterday, targetCPL float64) float64 {
	if cplYesterday <= 0 || targetCPL <= 0 {
		return 0
	}
	ratio := cplYesterday / targetCPL
	switch {
	case ratio <= 0.5:
		return healthGapMax
	case ratio <= 0.7:
		return 45.0 - (ratio-0.5)*(15.0/0.2)
	case ratio <= 1.0:
		return 30.0 - (ratio-0.7)*(30.0/0.3)
	case ratio <= 1.5:
		return 0.0 - (ratio-1.0)*(30.0/0.5)
	case ratio <= 2.0:
		return -30.0 - (ratio-1.5)*(15.0/0.5)
	default:
		return -healthGapMax
	}
}

// healthTrendFactor rewards a falling CPL: the 3-day versus 7-day move,
// clamped to +-20%, scaled onto -+15 points with the sign flipped so
// improvement scores positive.
func healthTrendFactor(cpl3d, cpl7d float64) float64 {
	if cpl3d <= 0 || cpl7d <= 0 {
		return 0
	}
	trendPct := (cpl3d - cpl7d) / cpl7d * 100
	trendPct = math.Max(-healthTrendClampPct, math.Min(healthTrendClampPct, trendPct))
	return -trendPct * (healthTrendMax / healthTrendClampPct)
}

// healthDiagnostics sums flat deductions for weak engagement, expensive
// delivery against the account median, and high frequency.
func healthDiagnostics(ctr, cpm, frequency, medianCPM float64) float64 {
	score := 0.0
	if ctr > 0 && ctr < healthLowCTRCut {
		score -= healthLowCTRPenalty
	}
	if cpm > 0 && medianCPM > 0 && cpm > medianCPM*healthHighCPMRatio {
		score -= healthHighCPMPenalty
	}
	if frequency > healthHighFreqCut {
		score -= healthHighFreqPenalty
	}
	return score
}

// healthTodayAdjustment grants up to +30 when today's CPL already beats
// yesterday's, once today has a usable sample.
func healthTodayAdjustment(cplToday, cplYesterday float64, impressionsToday int64) float64 {
	if impressionsToday < healthTodayMinImpressions {
		return 0
	}
	if cplToday <= 0 || cplYesterday <= 0 {
		return 0
	}
	improvement := (cplYesterday - cplToday) / cplYesterday * 100
	if improvement <= 0 {
		return 0
	}
	return math.Min(healthTodayMax, improvement)
}

// healthVolumeFactor discounts the whole score on thin impression days.
func healthVolumeFactor(impressions int64) float64 {
	switch {
	case impressions < 500:
		return 0.6
	case impressions < 1000:
		return 0.7
	case impressions < 2000:
		return 0.8
	case impressions < 5000:
		return 0.9
	default:
		return 1.0
	}
}

func classifyHealth(score float64) domain.HealthClass {
	switch {
	case score >= 25:
		return domain.HealthVeryGood
	case score >= 5:
		return domain.HealthGood
	case score >= -5:
		return domain.HealthNeutral
	case score >= -25:
		return domain.HealthSlightlyBad
	default:
		return domain.HealthBad
	}
}

// MedianCPM returns the median of the positive observations, zero when
// there are none.
func MedianCPM(values []float64) float64 {
	var positive []float64
	for _, v := range values {
		if v > 0 {
			positive = append(positive, v)
		}
	}
	if len(positive) == 0 {
		return 0
	}
	sort.Float64s(positive)
	mid := len(positive) / 2
	if len(positive)%2 == 1 {
		return positive[mid]
	}
	return (positive[mid-1] + positive[mid]) / 2
}

// dayStats returns one unit's single-day CPL and impressions; CPL is zero
// when the day is missing or produced no leads.
func dayStats(rows []domain.MetricSnapshot, day time.Time) (float64, int64) {
	target := dateOnly(day)
	for _, r := range rows {
		if dateOnly(r.Date).Equal(target) {
			return r.CPL(), r.Impressions
		}
	}
	return 0, 0
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
