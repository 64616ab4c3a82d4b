package domain

import (
	"time"
)

// UnitLevel identifies which level of the ad hierarchy a snapshot or score
// refers to.
type UnitLevel string

const (
	LevelAd       UnitLevel = "ad"
	LevelAdset    UnitLevel = "adset"
	LevelCampaign UnitLevel = "campaign"
)

// SnapshotSource distinguishes production-collected rows from short-lived
// test-collection rows. Both coexist in history; trend windows read
// production rows only unless a caller explicitly asks otherwise.
type SnapshotSource string

const (
	SourceProduction SnapshotSource = "production"
	SourceTest       SnapshotSource = "test"
)

// Ranking values as normalized from the platform's quality/engagement
// diagnostics. Empty string means the platform did not report one.
const (
	RankBelowAverage35 = "below_average_35"
	RankBelowAverage20 = "below_average_20"
	RankBelowAverage10 = "below_average_10"
	RankAverage        = "average"
	RankAboveAverage   = "above_average"
)

// RankValue maps a ranking label onto an ordinal scale for comparisons.
// Returns -1 for absent or unrecognized labels, which callers must treat
// as "no signal", never as a penalty.
func RankValue(ranking string) int {
	switch ranking {
	case RankBelowAverage35:
		return 0
	case RankBelowAverage20:
		return 1
	case RankBelowAverage10:
		return 2
	case "below_average":
		return 2
	case RankAverage:
		return 3
	case RankAboveAverage:
		return 4
	default:
		return -1
	}
}

// MetricSnapshot is one ad unit's performance facts for one day.
// At most one row exists per (account, unit, date, source); later writes
// for the same key overwrite earlier ones.
type MetricSnapshot struct {
	AccountID  string    `json:"account_id" db:"account_id"`
	UnitID     string    `json:"unit_id" db:"unit_id"`
	UnitLevel  UnitLevel `json:"unit_level" db:"unit_level"`
	Date       time.Time `json:"date" db:"date"`

	AdID       string `json:"ad_id,omitempty" db:"ad_id"`
	AdsetID    string `json:"adset_id,omitempty" db:"adset_id"`
	CampaignID string `json:"campaign_id,omitempty" db:"campaign_id"`
	CreativeID string `json:"creative_id,omitempty" db:"creative_id"`
	AdName     string `json:"ad_name,omitempty" db:"ad_name"`

	Impressions int64   `json:"impressions" db:"impressions"`
	Reach       int64   `json:"reach" db:"reach"`
	Clicks      int64   `json:"clicks" db:"clicks"`
	Leads       int64   `json:"leads" db:"leads"`
	Spend       float64 `json:"spend" db:"spend"`
	CTR         float64 `json:"ctr" db:"ctr"`
	CPM         float64 `json:"cpm" db:"cpm"`
	Frequency   float64 `json:"frequency" db:"frequency"`
	DailyBudget float64 `json:"daily_budget,omitempty" db:"daily_budget"`

	QualityRanking    string `json:"quality_ranking,omitempty" db:"quality_ranking"`
	EngagementRanking string `json:"engagement_ranking,omitempty" db:"engagement_ranking"`

	VideoP25         int64   `json:"video_p25,omitempty" db:"video_p25"`
	VideoP50         int64   `json:"video_p50,omitempty" db:"video_p50"`
	VideoP75         int64   `json:"video_p75,omitempty" db:"video_p75"`
	VideoP95         int64   `json:"video_p95,omitempty" db:"video_p95"`
	VideoAvgWatchSec float64 `json:"video_avg_watch_sec,omitempty" db:"video_avg_watch_sec"`

	Source    SnapshotSource `json:"source" db:"source"`
	CreatedAt time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt time.Time      `json:"updated_at" db:"updated_at"`
}

// CPL returns cost per lead, or 0 when the unit has no leads.
// Callers must treat 0 as "undefined", not "free leads".
func (s MetricSnapshot) CPL() float64 {
	if s.Leads == 0 {
		return 0
	}
	return s.Spend / float64(s.Leads)
}

// HasVideo reports whether any video engagement was recorded.
func (s MetricSnapshot) HasVideo() bool {
	return s.VideoP25 > 0 || s.VideoP50 > 0 || s.VideoP75 > 0 || s.VideoP95 > 0
}

// SnapshotKey identifies a snapshot row for dedup purposes.
type SnapshotKey struct {
	AccountID string
	UnitID    string
	Date      string // YYYY-MM-DD
	Source    SnapshotSource
}

// Key returns the dedup key for this snapshot.
func (s MetricSnapshot) Key() SnapshotKey {
	return SnapshotKey{
		AccountID: s.AccountID,
		UnitID:    s.UnitID,
		Date:      s.Date.Format("2006-01-02"),
		Source:    s.Source,
	}
}
