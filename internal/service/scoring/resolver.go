package scoring

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/adpilot/meta-ads-monitor/internal/domain"
)

// ConfigResolver resolves the effective scoring config for a unit,
// walking campaign > user > global. Lookups are cached for the lifetime
// of the resolver, which is one run; configs edited mid-run apply to the
// next run. Safe for concurrent use by the scoring workers.
type ConfigResolver struct {
	repo   ConfigRepository
	userID string

	mu       sync.Mutex
	base     *domain.ScoringConfig
	byCampgn map[string]*domain.ScoringConfig
}

// NewConfigResolver builds a resolver for one run. userID may be empty,
// in which case the user tier is skipped.
func NewConfigResolver(repo ConfigRepository, userID string) *ConfigResolver {
	return &ConfigResolver{
		repo:     repo,
		userID:   userID,
		byCampgn: make(map[string]*domain.ScoringConfig),
	}
}

// Resolve returns the effective config for a campaign. An empty campaign
// id resolves the user-or-global base directly. The global config always
// exists in a healthy deployment; its absence is ErrGlobalConfigMissing
// and fails the run.
func (r *ConfigResolver) Resolve(ctx context.Context, campaignID string) (*domain.ScoringConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if campaignID == "" {
		return r.resolveBase(ctx)
	}
	if cfg, ok := r.byCampgn[campaignID]; ok {
		return cfg, nil
	}

	cfg, err := r.repo.GetByScope(ctx, domain.ScopeCampaign, campaignID)
	switch {
	case err == nil:
		r.byCampgn[campaignID] = cfg
		return cfg, nil
	case errors.Is(err, ErrNotFound):
		base, baseErr := r.resolveBase(ctx)
		if baseErr != nil {
			return nil, baseErr
		}
		r.byCampgn[campaignID] = base
		return base, nil
	default:
		return nil, fmt.Errorf("resolving campaign config %s: %w", campaignID, err)
	}
}

// resolveBase loads the user override or falls back to global. Callers
// hold the mutex.
func (r *ConfigResolver) resolveBase(ctx context.Context) (*domain.ScoringConfig, error) {
	if r.base != nil {
		return r.base, nil
	}

	if r.userID != "" {
		cfg, err := r.repo.GetByScope(ctx, domain.ScopeUser, r.userID)
		if err == nil {
			r.base = cfg
			return cfg, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("resolving user config %s: %w", r.userID, err)
		}
	}

	cfg, err := r.repo.GetByScope(ctx, domain.ScopeGlobal, "")
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrGlobalConfigMissing
		}
		return nil, fmt.Errorf("resolving global config: %w", err)
	}
	r.base = cfg
	return cfg, nil
}
