package scoring_test

import (
	"context"
	"errors"
	"testing"

	"github.com/adpilot/meta-ads-monitor/internal/domain"
	"github.com/adpilot/meta-ads-monitor/internal/service/scoring"
)

func scoped(id string, scope domain.ConfigScope, scopeID string) domain.ScoringConfig {
	cfg := baseConfig()
	cfg.ID = id
	cfg.Scope = scope
	cfg.ScopeID = scopeID
	return cfg
}

func TestResolvePrecedence(t *testing.T) {
	global := baseConfig()
	user := scoped("cfg-user", domain.ScopeUser, "user_7")
	campaign := scoped("cfg-camp", domain.ScopeCampaign, "camp_1")

	tests := []struct {
		name       string
		seed       []domain.ScoringConfig
		userID     string
		campaignID string
		wantID     string
	}{
		{
			name:       "global only",
			seed:       []domain.ScoringConfig{global},
			userID:     "user_7",
			campaignID: "camp_1",
			wantID:     "cfg-global",
		},
		{
			name:       "user override beats global",
			seed:       []domain.ScoringConfig{global, user},
			userID:     "user_7",
			campaignID: "camp_1",
			wantID:     "cfg-user",
		},
		{
			name:       "campaign override beats user",
			seed:       []domain.ScoringConfig{global, user, campaign},
			userID:     "user_7",
			campaignID: "camp_1",
			wantID:     "cfg-camp",
		},
		{
			name:       "empty campaign resolves the base",
			seed:       []domain.ScoringConfig{global, user},
			userID:     "user_7",
			campaignID: "",
			wantID:     "cfg-user",
		},
		{
			name:       "no user bound skips the user tier",
			seed:       []domain.ScoringConfig{global, user},
			userID:     "",
			campaignID: "",
			wantID:     "cfg-global",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := scoring.NewConfigResolver(newMemConfigs(tt.seed...), tt.userID)
			cfg, err := r.Resolve(context.Background(), tt.campaignID)
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			if cfg.ID != tt.wantID {
				t.Errorf("resolved %q, want %q", cfg.ID, tt.wantID)
			}
		})
	}
}

func TestResolveCachesLookups(t *testing.T) {
	repo := newMemConfigs(baseConfig())
	r := scoring.NewConfigResolver(repo, "")

	first, err := r.Resolve(context.Background(), "camp_1")
	if err != nil {
		t.Fatalf("first Resolve: %v", err)
	}

	// the backend going away must not matter once the pair is cached
	repo.scopeErr[scopeKey(domain.ScopeGlobal, "")] = errors.New("config backend down")
	repo.scopeErr[scopeKey(domain.ScopeCampaign, "camp_1")] = errors.New("config backend down")

	again, err := r.Resolve(context.Background(), "camp_1")
	if err != nil {
		t.Fatalf("cached Resolve: %v", err)
	}
	if again.ID != first.ID {
		t.Errorf("cached id = %q, want %q", again.ID, first.ID)
	}
	if _, err := r.Resolve(context.Background(), ""); err != nil {
		t.Errorf("cached base Resolve: %v", err)
	}
}

func TestResolveGlobalMissing(t *testing.T) {
	r := scoring.NewConfigResolver(newMemConfigs(), "")
	if _, err := r.Resolve(context.Background(), "camp_1"); !errors.Is(err, scoring.ErrGlobalConfigMissing) {
		t.Fatalf("err = %v, want ErrGlobalConfigMissing", err)
	}
}

func TestResolveUserLookupError(t *testing.T) {
	// a failing user lookup is an error, not a silent fall-through to global
	repo := newMemConfigs(baseConfig())
	cause := errors.New("config backend down")
	repo.scopeErr[scopeKey(domain.ScopeUser, "user_7")] = cause

	r := scoring.NewConfigResolver(repo, "user_7")
	if _, err := r.Resolve(context.Background(), ""); !errors.Is(err, cause) {
		t.Fatalf("err = %v, want the lookup failure surfaced", err)
	}
}
