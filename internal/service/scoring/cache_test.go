package scoring_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/adpilot/meta-ads-monitor/internal/domain"
	"github.com/adpilot/meta-ads-monitor/internal/service/scoring"
)

func newTestCache(t *testing.T, ttl time.Duration) (*scoring.RedisResultCache, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("starting miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return scoring.NewRedisResultCache(client, ttl), mr
}

func TestResultCacheRoundTrip(t *testing.T) {
	cache, _ := newTestCache(t, time.Hour)
	ctx := context.Background()

	out := &domain.RunOutput{
		RunID:     "run-1",
		AccountID: "101",
		Summary:   domain.PortfolioSummary{TotalUnits: 3, HighRisk: 1, AlertLevel: domain.AlertWarning},
		Items: []domain.RiskScoreResult{
			{UnitID: "ad_1", Score: 72.5, Tier: domain.TierHigh},
		},
	}
	if err := cache.SetLatest(ctx, "101", out); err != nil {
		t.Fatalf("SetLatest: %v", err)
	}

	got, err := cache.GetLatest(ctx, "101")
	if err != nil {
		t.Fatalf("GetLatest: %v", err)
	}
	if got.RunID != "run-1" || got.Summary.HighRisk != 1 {
		t.Errorf("got = %+v, want the stored output back", got)
	}
	if len(got.Items) != 1 || got.Items[0].Score != 72.5 {
		t.Errorf("items = %+v, not carried through", got.Items)
	}
}

func TestResultCacheMiss(t *testing.T) {
	cache, _ := newTestCache(t, time.Hour)
	if _, err := cache.GetLatest(context.Background(), "404"); !errors.Is(err, scoring.ErrNoLatestResult) {
		t.Fatalf("err = %v, want ErrNoLatestResult", err)
	}
}

func TestResultCacheExpiry(t *testing.T) {
	cache, mr := newTestCache(t, time.Minute)
	ctx := context.Background()

	if err := cache.SetLatest(ctx, "101", &domain.RunOutput{RunID: "run-1", AccountID: "101"}); err != nil {
		t.Fatalf("SetLatest: %v", err)
	}
	mr.FastForward(2 * time.Minute)

	if _, err := cache.GetLatest(ctx, "101"); !errors.Is(err, scoring.ErrNoLatestResult) {
		t.Fatalf("err = %v, want a miss after the TTL", err)
	}
}

func TestResultCacheOverwrite(t *testing.T) {
	cache, _ := newTestCache(t, 0)
	ctx := context.Background()

	if err := cache.SetLatest(ctx, "101", &domain.RunOutput{RunID: "run-1", AccountID: "101"}); err != nil {
		t.Fatalf("SetLatest: %v", err)
	}
	if err := cache.SetLatest(ctx, "101", &domain.RunOutput{RunID: "run-2", AccountID: "101"}); err != nil {
		t.Fatalf("SetLatest: %v", err)
	}

	got, err := cache.GetLatest(ctx, "101")
	if err != nil {
		t.Fatalf("GetLatest: %v", err)
	}
	if got.RunID != "run-2" {
		t.Errorf("run = %q, want the newer write", got.RunID)
	}
}
