package domain

import "time"

// CreativeStatus enumerates the lifecycle states of a creative asset.
type CreativeStatus string

const (
	CreativeActive   CreativeStatus = "active"
	CreativePaused   CreativeStatus = "paused"
	CreativeArchived CreativeStatus = "archived"
)

// CreativeFormat identifies the asset type of a creative.
type CreativeFormat string

const (
	FormatImage    CreativeFormat = "image"
	FormatVideo    CreativeFormat = "video"
	FormatCarousel CreativeFormat = "carousel"
)

// Creative is one row of the creative registry: an asset eligible for use
// in ads, tagged with the objectives/destinations it supports.
type Creative struct {
	ID         string         `json:"id" db:"id"`
	AccountID  string         `json:"account_id" db:"account_id"`
	Name       string         `json:"name" db:"name"`
	Format     CreativeFormat `json:"format" db:"format"`
	Objectives []string       `json:"objectives" db:"objectives"`
	Tags       []string       `json:"tags,omitempty" db:"tags"`
	Status     CreativeStatus `json:"status" db:"status"`
	CreatedAt  time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at" db:"updated_at"`
}

// SupportsObjective reports whether the creative can serve the given
// objective. An empty objective matches everything.
func (c Creative) SupportsObjective(objective string) bool {
	if objective == "" {
		return true
	}
	for _, o := range c.Objectives {
		if o == objective {
			return true
		}
	}
	return false
}

// CandidateStatus says whether a ranked creative had recent score data.
type CandidateStatus string

const (
	CandidateScored CandidateStatus = "scored"
	CandidateNoData CandidateStatus = "no_data"
)

// CreativeCandidate is one entry of the readiness list: a creative joined
// with its latest risk score, sorted ascending by risk. Not a stored entity.
type CreativeCandidate struct {
	CreativeID string          `json:"creative_id"`
	Name       string          `json:"name"`
	Format     CreativeFormat  `json:"format"`
	Tags       []string        `json:"tags,omitempty"`
	Objectives []string        `json:"objectives"`
	Status     CandidateStatus `json:"status"`
	RiskScore  *float64        `json:"risk_score,omitempty"`
	Tier       RiskTier        `json:"tier,omitempty"`
	LastActive *time.Time      `json:"last_active,omitempty"`
}
