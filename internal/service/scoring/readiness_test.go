package scoring_test

import (
	"testing"

	"github.com/adpilot/meta-ads-monitor/internal/domain"
	"github.com/adpilot/meta-ads-monitor/internal/service/scoring"
)

func creative(id string, status domain.CreativeStatus, objectives ...string) domain.Creative {
	return domain.Creative{
		ID:         id,
		AccountID:  "101",
		Name:       id,
		Format:     domain.FormatImage,
		Status:     status,
		Objectives: objectives,
	}
}

func scoredResult(creativeID string, score float64, tier domain.RiskTier) domain.RiskScoreResult {
	return domain.RiskScoreResult{
		UnitID:     "ad_" + creativeID,
		CreativeID: creativeID,
		Score:      score,
		Tier:       tier,
	}
}

func activityRow(creativeID string, offset int) domain.MetricSnapshot {
	row := daily("ad_"+creativeID, day(offset), 1000, 10, 5, 500)
	row.CreativeID = creativeID
	return row
}

func TestRankCreativesOrdersByRisk(t *testing.T) {
	creatives := []domain.Creative{
		creative("cr_high", domain.CreativeActive),
		creative("cr_low", domain.CreativeActive),
		creative("cr_new", domain.CreativeActive),
	}
	results := []domain.RiskScoreResult{
		scoredResult("cr_high", 70, domain.TierHigh),
		scoredResult("cr_low", 10, domain.TierLow),
	}
	rows := []domain.MetricSnapshot{
		activityRow("cr_high", 0),
		activityRow("cr_low", 0),
	}

	ranked := scoring.RankCreatives(creatives, results, rows, "", baseConfig())
	if len(ranked) != 3 {
		t.Fatalf("expected 3 candidates, got %d", len(ranked))
	}
	// proven low risk first, the unproven newcomer between, high risk last
	if ranked[0].CreativeID != "cr_low" || ranked[1].CreativeID != "cr_new" || ranked[2].CreativeID != "cr_high" {
		t.Fatalf("unexpected order: %s, %s, %s", ranked[0].CreativeID, ranked[1].CreativeID, ranked[2].CreativeID)
	}
	if ranked[1].Status != domain.CandidateNoData || ranked[1].RiskScore != nil {
		t.Fatalf("newcomer must rank as no_data with no score, got %+v", ranked[1])
	}
	if ranked[0].Status != domain.CandidateScored || *ranked[0].RiskScore != 10 {
		t.Fatalf("scored candidate must carry its score, got %+v", ranked[0])
	}
}

func TestRankCreativesWorstUnitScoreWins(t *testing.T) {
	creatives := []domain.Creative{creative("cr_a", domain.CreativeActive)}
	results := []domain.RiskScoreResult{
		scoredResult("cr_a", 12, domain.TierLow),
		scoredResult("cr_a", 48, domain.TierMedium),
	}

	ranked := scoring.RankCreatives(creatives, results, nil, "", baseConfig())
	if len(ranked) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(ranked))
	}
	if *ranked[0].RiskScore != 48 || ranked[0].Tier != domain.TierMedium {
		t.Fatalf("expected the worst unit score to represent the creative, got %+v", ranked[0])
	}
}

func TestRankCreativesFiltersStatusAndObjective(t *testing.T) {
	creatives := []domain.Creative{
		creative("cr_ok", domain.CreativeActive, "leads"),
		creative("cr_paused", domain.CreativePaused, "leads"),
		creative("cr_other", domain.CreativeActive, "traffic"),
		creative("cr_any", domain.CreativeActive),
	}

	ranked := scoring.RankCreatives(creatives, nil, nil, "leads", baseConfig())
	if len(ranked) != 2 {
		t.Fatalf("expected 2 eligible candidates, got %d", len(ranked))
	}
	for _, c := range ranked {
		if c.CreativeID == "cr_paused" || c.CreativeID == "cr_other" {
			t.Fatalf("ineligible creative %s must be excluded, not ranked", c.CreativeID)
		}
	}
}

func TestRankCreativesTieBreaksOnRecency(t *testing.T) {
	creatives := []domain.Creative{
		creative("cr_idle", domain.CreativeActive),
		creative("cr_recent", domain.CreativeActive),
		creative("cr_stale", domain.CreativeActive),
	}
	rows := []domain.MetricSnapshot{
		activityRow("cr_recent", 0),
		activityRow("cr_stale", -5),
	}

	ranked := scoring.RankCreatives(creatives, nil, rows, "", baseConfig())
	if len(ranked) != 3 {
		t.Fatalf("expected 3 candidates, got %d", len(ranked))
	}
	if ranked[0].CreativeID != "cr_recent" || ranked[1].CreativeID != "cr_stale" || ranked[2].CreativeID != "cr_idle" {
		t.Fatalf("unexpected tie-break order: %s, %s, %s", ranked[0].CreativeID, ranked[1].CreativeID, ranked[2].CreativeID)
	}
	if ranked[0].LastActive == nil || ranked[2].LastActive != nil {
		t.Fatal("last-active timestamps mismatch")
	}
}
