package meta

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/adpilot/meta-ads-monitor/internal/domain"
)

// ParseRow converts a raw insight row into a MetricSnapshot. Optional
// fields (rankings, video milestones) missing from the row produce zero
// values, never errors; a row without a usable unit id or date is an error.
func ParseRow(row InsightRow, level Level, source domain.SnapshotSource) (domain.MetricSnapshot, error) {
	date, err := time.ParseInLocation("2006-01-02", row.DateStart, time.UTC)
	if err != nil {
		return domain.MetricSnapshot{}, fmt.Errorf("parsing insight date %q: %w", row.DateStart, err)
	}

	var unitID string
	var unitLevel domain.UnitLevel
	switch level {
	case LevelAd:
		unitID, unitLevel = row.AdID, domain.LevelAd
	case LevelAdset:
		unitID, unitLevel = row.AdsetID, domain.LevelAdset
	default:
		return domain.MetricSnapshot{}, fmt.Errorf("unsupported insight level %q", level)
	}
	if unitID == "" {
		return domain.MetricSnapshot{}, fmt.Errorf("insight row for %s is missing its %s id", row.DateStart, level)
	}

	snap := domain.MetricSnapshot{
		AccountID:  row.AccountID,
		UnitID:     unitID,
		UnitLevel:  unitLevel,
		Date:       date,
		AdID:       row.AdID,
		AdsetID:    row.AdsetID,
		CampaignID: row.CampaignID,
		AdName:     row.AdName,

		Impressions: atoi(row.Impressions),
		Reach:       atoi(row.Reach),
		Clicks:      atoi(row.Clicks),
		Leads:       LeadsFromActions(row.Actions),
		Spend:       atof(row.Spend),
		CPM:         atof(row.CPM),
		CTR:         atof(row.CTR),
		Frequency:   atof(row.Frequency),

		QualityRanking:    normalizeRanking(row.QualityRanking),
		EngagementRanking: normalizeRanking(row.EngagementRateRanking),

		VideoP25:         firstActionInt(row.VideoP25Watched),
		VideoP50:         firstActionInt(row.VideoP50Watched),
		VideoP75:         firstActionInt(row.VideoP75Watched),
		VideoP95:         firstActionInt(row.VideoP95Watched),
		VideoAvgWatchSec: firstActionFloat(row.VideoAvgTimeWatched),

		Source: source,
	}

	// The API omits cpm/ctr on some low-volume rows; derive them so
	// downstream ratios stay consistent with the counters.
	if snap.CPM == 0 && snap.Impressions > 0 {
		snap.CPM = snap.Spend / float64(snap.Impressions) * 1000
	}
	if snap.CTR == 0 && snap.Impressions > 0 {
		snap.CTR = float64(snap.Clicks) / float64(snap.Impressions) * 100
	}

	return snap, nil
}

// ParseRows normalizes a batch of insight rows and deduplicates by
// (unit, date), keeping the last occurrence. The platform occasionally
// returns the same unit-day twice across pages; summing those duplicates
// would silently inflate spend and leads.
func ParseRows(rows []InsightRow, level Level, source domain.SnapshotSource) ([]domain.MetricSnapshot, error) {
	snaps := make([]domain.MetricSnapshot, 0, len(rows))
	for _, row := range rows {
		snap, err := ParseRow(row, level, source)
		if err != nil {
			return nil, err
		}
		snaps = append(snaps, snap)
	}
	return DedupeSnapshots(snaps), nil
}

// DedupeSnapshots keeps exactly one snapshot per (account, unit, date,
// source) key. The last occurrence wins; output order follows first
// appearance of each key.
func DedupeSnapshots(snaps []domain.MetricSnapshot) []domain.MetricSnapshot {
	index := make(map[domain.SnapshotKey]int, len(snaps))
	out := make([]domain.MetricSnapshot, 0, len(snaps))
	for _, s := range snaps {
		key := s.Key()
		if i, ok := index[key]; ok {
			out[i] = s
			continue
		}
		index[key] = len(out)
		out = append(out, s)
	}
	return out
}

// ApplyBudgets stamps each snapshot with its ad set's daily budget.
// Budgets map adset id to an amount in whole currency units.
func ApplyBudgets(snaps []domain.MetricSnapshot, budgets map[string]float64) {
	for i := range snaps {
		if b, ok := budgets[snaps[i].AdsetID]; ok {
			snaps[i].DailyBudget = b
		}
	}
}

// ApplyCreativeIDs stamps ad-level snapshots with their creative id.
// Insight rows never carry the creative relation, so the mapping comes
// from a separate /ads fetch.
func ApplyCreativeIDs(snaps []domain.MetricSnapshot, creatives map[string]string) {
	for i := range snaps {
		if id, ok := creatives[snaps[i].AdID]; ok {
			snaps[i].CreativeID = id
		}
	}
}

// normalizeRanking lowercases a platform ranking label and drops the
// "unknown" placeholder so absence is always the empty string.
func normalizeRanking(raw string) string {
	r := strings.ToLower(strings.TrimSpace(raw))
	if r == "" || r == "unknown" {
		return ""
	}
	return r
}

func atoi(s string) int64 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func atof(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

func firstActionInt(entries []ActionEntry) int64 {
	if len(entries) == 0 {
		return 0
	}
	return atoi(entries[0].Value)
}

func firstActionFloat(entries []ActionEntry) float64 {
	if len(entries) == 0 {
		return 0
	}
	return atof(entries[0].Value)
}
