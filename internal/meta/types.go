package meta

// ActionEntry is one entry of the Graph API's action breakdown lists
// (conversions, video milestones). Values arrive as strings.
type ActionEntry struct {
	ActionType string `json:"action_type"`
	Value      string `json:"value"`
}

// InsightRow is one raw row from the /insights edge with
// time_increment=1. The Graph API serializes numeric fields as strings;
// normalization parses them.
type InsightRow struct {
	DateStart  string `json:"date_start"`
	DateStop   string `json:"date_stop"`
	AccountID  string `json:"account_id"`
	CampaignID string `json:"campaign_id"`
	AdsetID    string `json:"adset_id"`
	AdID       string `json:"ad_id"`
	AdName     string `json:"ad_name"`

	Impressions string `json:"impressions"`
	Reach       string `json:"reach"`
	Clicks      string `json:"clicks"`
	Spend       string `json:"spend"`
	CPM         string `json:"cpm"`
	CTR         string `json:"ctr"`
	Frequency   string `json:"frequency"`

	QualityRanking        string `json:"quality_ranking"`
	EngagementRateRanking string `json:"engagement_rate_ranking"`

	Actions []ActionEntry `json:"actions"`

	VideoP25Watched     []ActionEntry `json:"video_p25_watched_actions"`
	VideoP50Watched     []ActionEntry `json:"video_p50_watched_actions"`
	VideoP75Watched     []ActionEntry `json:"video_p75_watched_actions"`
	VideoP95Watched     []ActionEntry `json:"video_p95_watched_actions"`
	VideoAvgTimeWatched []ActionEntry `json:"video_avg_time_watched_actions"`
}

// Adset carries the ad-set settings fields the engine needs
// (daily_budget is in minor currency units).
type Adset struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DailyBudget string `json:"daily_budget"`
	Status      string `json:"effective_status"`
}

// AdCreative is a creative asset row from the /adcreatives edge, used to
// sync the local creative registry.
type AdCreative struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	ObjectType string `json:"object_type"`
	Status     string `json:"status"`
}

// Ad is one row of the /ads edge with the creative relation expanded.
// Insights rows do not carry creative ids, so this edge is the only way
// to map an ad back to its creative.
type Ad struct {
	ID              string       `json:"id"`
	Name            string       `json:"name"`
	EffectiveStatus string       `json:"effective_status"`
	Creative        *CreativeRef `json:"creative,omitempty"`
}

// CreativeRef is the nested creative id on an Ad row.
type CreativeRef struct {
	ID string `json:"id"`
}

// Level selects the grouping level for insight queries.
type Level string

const (
	LevelAd    Level = "ad"
	LevelAdset Level = "adset"
)

// Paging is the Graph API cursor envelope. Next is a complete URL; an
// empty Next ends the page walk.
type Paging struct {
	Next string `json:"next"`
}

type insightsResponse struct {
	Data   []InsightRow `json:"data"`
	Paging Paging       `json:"paging"`
}

type adsetsResponse struct {
	Data   []Adset `json:"data"`
	Paging Paging  `json:"paging"`
}

type adCreativesResponse struct {
	Data   []AdCreative `json:"data"`
	Paging Paging       `json:"paging"`
}

type adsResponse struct {
	Data   []Ad   `json:"data"`
	Paging Paging `json:"paging"`
}

// GraphError is the Graph API's structured error payload.
type GraphError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    int    `json:"code"`
}

type graphErrorResponse struct {
	Error GraphError `json:"error"`
}
