package scoring

import (
	"time"

	"github.com/adpilot/meta-ads-monitor/internal/domain"
)

// AggregateWindow collapses one unit's daily snapshots over the trailing
// window of days ending at end (inclusive) into a single aggregate row.
// Counters are summed and the ratio metrics recomputed from the sums, so
// the aggregate stays consistent even when the platform's per-day ratios
// do not. Daily budget and ranking diagnostics take the most recent
// non-empty observation in the window; the aggregate's Date is the most
// recent day seen. ok is false when no rows fall inside the window.
func AggregateWindow(rows []domain.MetricSnapshot, end time.Time, days int) (domain.MetricSnapshot, bool) {
	endDay := dateOnly(end)
	start := endDay.AddDate(0, 0, -(days - 1))

	var agg domain.MetricSnapshot
	var identityDay, budgetDay, qualityDay, engagementDay, creativeDay time.Time
	var avgWatchSum float64
	var avgWatchDays int
	found := false

	for _, r := range rows {
		day := dateOnly(r.Date)
		if day.Before(start) || day.After(endDay) {
			continue
		}
		found = true

		if identityDay.IsZero() || day.After(identityDay) {
			agg.AccountID = r.AccountID
			agg.UnitID = r.UnitID
			agg.UnitLevel = r.UnitLevel
			agg.AdID = r.AdID
			agg.AdsetID = r.AdsetID
			agg.CampaignID = r.CampaignID
			agg.Date = day
			agg.Source = r.Source
			identityDay = day
		}
		if r.AdName != "" && (creativeDay.IsZero() || day.After(creativeDay)) {
			agg.AdName = r.AdName
			if r.CreativeID != "" {
				agg.CreativeID = r.CreativeID
			}
			creativeDay = day
		}

		agg.Impressions += r.Impressions
		agg.Reach += r.Reach
		agg.Clicks += r.Clicks
		agg.Leads += r.Leads
		agg.Spend += r.Spend

		agg.VideoP25 += r.VideoP25
		agg.VideoP50 += r.VideoP50
		agg.VideoP75 += r.VideoP75
		agg.VideoP95 += r.VideoP95
		if r.VideoAvgWatchSec > 0 {
			avgWatchSum += r.VideoAvgWatchSec
			avgWatchDays++
		}

		if r.DailyBudget > 0 && (budgetDay.IsZero() || day.After(budgetDay)) {
			agg.DailyBudget = r.DailyBudget
			budgetDay = day
		}
		if r.QualityRanking != "" && (qualityDay.IsZero() || day.After(qualityDay)) {
			agg.QualityRanking = r.QualityRanking
			qualityDay = day
		}
		if r.EngagementRanking != "" && (engagementDay.IsZero() || day.After(engagementDay)) {
			agg.EngagementRanking = r.EngagementRanking
			engagementDay = day
		}
	}
	if !found {
		return domain.MetricSnapshot{}, false
	}

	if agg.Impressions > 0 {
		agg.CPM = agg.Spend / float64(agg.Impressions) * 1000
		agg.CTR = float64(agg.Clicks) / float64(agg.Impressions) * 100
	}
	if agg.Reach > 0 {
		agg.Frequency = float64(agg.Impressions) / float64(agg.Reach)
	}
	if avgWatchDays > 0 {
		agg.VideoAvgWatchSec = avgWatchSum / float64(avgWatchDays)
	}
	return agg, true
}

// BuildWindows slices one unit's history into the current and baseline
// aggregates the calculator compares. Both windows trail from the same
// anchor day, so the baseline's ratio metrics cover the full span. The
// baseline's budget and ranking observations are taken from strictly
// before the current aggregate's most recent day: the binary jump and
// rank-drop terms compare the latest observation against the prior
// period, never against itself. ok is false when the current window is
// empty.
func BuildWindows(rows []domain.MetricSnapshot, anchor time.Time, currentDays, baselineDays int) (current, baseline domain.MetricSnapshot, ok bool) {
	current, ok = AggregateWindow(rows, anchor, currentDays)
	if !ok {
		return domain.MetricSnapshot{}, domain.MetricSnapshot{}, false
	}
	baseline, _ = AggregateWindow(rows, anchor, baselineDays)

	cutoff := dateOnly(current.Date)
	baseline.DailyBudget = 0
	baseline.QualityRanking = ""
	baseline.EngagementRanking = ""
	var budgetDay, qualityDay, engagementDay time.Time
	baseStart := dateOnly(anchor).AddDate(0, 0, -(baselineDays - 1))

	for _, r := range rows {
		day := dateOnly(r.Date)
		if day.Before(baseStart) || !day.Before(cutoff) {
			continue
		}
		if r.DailyBudget > 0 && (budgetDay.IsZero() || day.After(budgetDay)) {
			baseline.DailyBudget = r.DailyBudget
			budgetDay = day
		}
		if r.QualityRanking != "" && (qualityDay.IsZero() || day.After(qualityDay)) {
			baseline.QualityRanking = r.QualityRanking
			qualityDay = day
		}
		if r.EngagementRanking != "" && (engagementDay.IsZero() || day.After(engagementDay)) {
			baseline.EngagementRanking = r.EngagementRanking
			engagementDay = day
		}
	}
	return current, baseline, true
}

// SummaryOf projects an aggregate into the reporting shape.
func SummaryOf(agg domain.MetricSnapshot, days int) domain.WindowSummary {
	return domain.WindowSummary{
		Days:        days,
		Impressions: agg.Impressions,
		Clicks:      agg.Clicks,
		Leads:       agg.Leads,
		Spend:       agg.Spend,
		CPM:         agg.CPM,
		CTR:         agg.CTR,
		Frequency:   agg.Frequency,
		CPL:         agg.CPL(),
	}
}

// GroupByUnit buckets account-wide snapshot rows by unit id, preserving
// each unit's row order.
func GroupByUnit(rows []domain.MetricSnapshot) map[string][]domain.MetricSnapshot {
	grouped := make(map[string][]domain.MetricSnapshot)
	for _, r := range rows {
		grouped[r.UnitID] = append(grouped[r.UnitID], r)
	}
	return grouped
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
