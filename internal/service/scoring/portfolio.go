package scoring

import "github.com/adpilot/meta-ads-monitor/internal/domain"

// Alert thresholds on the high-risk unit count. Tunable constants, not a
// formula: one high-risk unit warrants a look, three an intervention.
const (
	warnHighRiskCount     = 1
	criticalHighRiskCount = 3
)

// Aggregate rolls per-unit results into the account-level portfolio view.
func Aggregate(results []domain.RiskScoreResult) domain.PortfolioSummary {
	summary := domain.PortfolioSummary{TotalUnits: len(results)}
	trendCounts := make(map[domain.TrendDirection]int)

	for _, r := range results {
		switch r.Tier {
		case domain.TierLow:
			summary.LowRisk++
		case domain.TierMedium:
			summary.MediumRisk++
		case domain.TierHigh:
			summary.HighRisk++
		}
		trendCounts[r.Trend]++
	}

	summary.OverallTrend = overallTrend(summary, trendCounts)
	summary.AlertLevel = alertLevel(summary.HighRisk)
	return summary
}

// overallTrend reads the portfolio as declining when high-risk units
// outnumber half the rest; otherwise the strict majority of per-unit
// trends decides, and ties or empty portfolios read stable.
func overallTrend(summary domain.PortfolioSummary, trends map[domain.TrendDirection]int) domain.TrendDirection {
	if float64(summary.HighRisk) > float64(summary.LowRisk+summary.MediumRisk)/2 {
		return domain.TrendDeclining
	}

	declining := trends[domain.TrendDeclining]
	improving := trends[domain.TrendImproving]
	stable := trends[domain.TrendStable]
	switch {
	case declining > improving && declining > stable:
		return domain.TrendDeclining
	case improving > declining && improving > stable:
		return domain.TrendImproving
	default:
		return domain.TrendStable
	}
}

func alertLevel(highRisk int) domain.AlertLevel {
	switch {
	case highRisk >= criticalHighRiskCount:
		return domain.AlertCritical
	case highRisk >= warnHighRiskCount:
		return domain.AlertWarning
	default:
		return domain.AlertNone
	}
}
