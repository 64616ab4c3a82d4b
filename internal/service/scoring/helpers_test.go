package scoring_test

import (
	"time"

	"github.com/adpilot/meta-ads-monitor/internal/domain"
)

// testAnchor is the complete day every test scores at; history builders
// count back from it.
var testAnchor = time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)

func day(offset int) time.Time {
	return testAnchor.AddDate(0, 0, offset)
}

// daily builds one production snapshot row with ratios derived from the
// counters, the way normalized rows arrive.
func daily(unitID string, date time.Time, impressions, clicks int64, spend float64, reach int64) domain.MetricSnapshot {
	s := domain.MetricSnapshot{
		AccountID:   "101",
		UnitID:      unitID,
		UnitLevel:   domain.LevelAd,
		AdID:        unitID,
		AdsetID:     "as_1",
		CampaignID:  "camp_1",
		Date:        date,
		Impressions: impressions,
		Clicks:      clicks,
		Spend:       spend,
		Reach:       reach,
		Source:      domain.SourceProduction,
	}
	if impressions > 0 {
		s.CPM = spend / float64(impressions) * 1000
		s.CTR = float64(clicks) / float64(impressions) * 100
	}
	if reach > 0 {
		s.Frequency = float64(impressions) / float64(reach)
	}
	return s
}

// flatHistory builds days rows ending at testAnchor with identical
// performance, the quiet baseline most tests start from.
func flatHistory(unitID string, days int, impressions, clicks int64, spend float64, reach int64) []domain.MetricSnapshot {
	rows := make([]domain.MetricSnapshot, 0, days)
	for i := days - 1; i >= 0; i-- {
		rows = append(rows, daily(unitID, day(-i), impressions, clicks, spend, reach))
	}
	return rows
}

func baseConfig() domain.ScoringConfig {
	cfg := domain.DefaultScoringConfig()
	cfg.ID = "cfg-global"
	return cfg
}
