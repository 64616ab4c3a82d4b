package scoring

import (
	"sort"
	"time"

	"github.com/adpilot/meta-ads-monitor/internal/domain"
)

// RankCreatives orders the account's creatives most rotation-ready first:
// ascending effective risk, then most recently active, then id for a
// stable order. Only active creatives eligible for the objective are
// ranked; ineligible ones are excluded outright, never down-ranked.
//
// A creative whose ads were scored this run inherits the worst score
// among them. A creative with no recent history ranks at the top of the
// low band (LowMax): never ahead of proven low-risk creatives, never
// punished below them either.
func RankCreatives(creatives []domain.Creative, results []domain.RiskScoreResult, rows []domain.MetricSnapshot, objective string, cfg domain.ScoringConfig) []domain.CreativeCandidate {
	lastActive := make(map[string]time.Time)
	for _, r := range rows {
		if r.CreativeID == "" || r.Impressions == 0 {
			continue
		}
		day := dateOnly(r.Date)
		if day.After(lastActive[r.CreativeID]) {
			lastActive[r.CreativeID] = day
		}
	}

	worst := make(map[string]domain.RiskScoreResult)
	for _, res := range results {
		if res.CreativeID == "" {
			continue
		}
		if prev, ok := worst[res.CreativeID]; !ok || res.Score > prev.Score {
			worst[res.CreativeID] = res
		}
	}

	type ranked struct {
		candidate domain.CreativeCandidate
		risk      float64
		active    time.Time
	}

	var entries []ranked
	for _, c := range creatives {
		if c.Status != domain.CreativeActive || !c.SupportsObjective(objective) {
			continue
		}

		cand := domain.CreativeCandidate{
			CreativeID: c.ID,
			Name:       c.Name,
			Format:     c.Format,
			Tags:       c.Tags,
			Objectives: c.Objectives,
			Status:     domain.CandidateNoData,
		}
		risk := cfg.LowMax
		if res, ok := worst[c.ID]; ok {
			score := res.Score
			cand.Status = domain.CandidateScored
			cand.RiskScore = &score
			cand.Tier = res.Tier
			if len(cand.Tags) == 0 {
				cand.Tags = res.Tags
			}
			risk = score
		}
		active := lastActive[c.ID]
		if !active.IsZero() {
			t := active
			cand.LastActive = &t
		}
		entries = append(entries, ranked{candidate: cand, risk: risk, active: active})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].risk != entries[j].risk {
			return entries[i].risk < entries[j].risk
		}
		if !entries[i].active.Equal(entries[j].active) {
			return entries[i].active.After(entries[j].active)
		}
		return entries[i].candidate.CreativeID < entries[j].candidate.CreativeID
	})

	out := make([]domain.CreativeCandidate, len(entries))
	for i, e := range entries {
		out[i] = e.candidate
	}
	return out
}
