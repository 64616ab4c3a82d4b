package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/adpilot/meta-ads-monitor/internal/domain"
	"github.com/adpilot/meta-ads-monitor/internal/service/scoring"
)

// ConfigRepo implements scoring.ConfigRepository against PostgreSQL.
// Scope uniqueness is enforced by the (scope, scope_id) unique index;
// the global row stores an empty scope_id.
type ConfigRepo struct{ db *sql.DB }

// NewConfigRepo creates a Postgres-backed scoring config repository.
func NewConfigRepo(db *sql.DB) *ConfigRepo { return &ConfigRepo{db: db} }

func (r *ConfigRepo) GetByScope(ctx context.Context, scope domain.ConfigScope, scopeID string) (*domain.ScoringConfig, error) {
	return r.getOne(ctx, "scope = $1 AND scope_id = $2", scope, scopeID)
}

func (r *ConfigRepo) GetByID(ctx context.Context, id string) (*domain.ScoringConfig, error) {
	return r.getOne(ctx, "id = $1", id)
}

func (r *ConfigRepo) getOne(ctx context.Context, where string, args ...interface{}) (*domain.ScoringConfig, error) {
	c := &domain.ScoringConfig{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, scope, scope_id,
		       weight_cpm_growth, weight_ctr_decline, weight_frequency,
		       weight_budget_jump, weight_rank_drop,
		       low_max, medium_max, frequency_floor, frequency_span,
		       min_impressions, target_cpl, created_at, updated_at
		FROM scoring_configs
		WHERE `+where, args...).Scan(
		&c.ID, &c.Scope, &c.ScopeID,
		&c.WeightCPMGrowth, &c.WeightCTRDecline, &c.WeightFrequency,
		&c.WeightBudgetJump, &c.WeightRankDrop,
		&c.LowMax, &c.MediumMax, &c.FrequencyFloor, &c.FrequencySpan,
		&c.MinImpressions, &c.TargetCPL, &c.CreatedAt, &c.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, scoring.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get scoring config: %w", err)
	}
	return c, nil
}

func (r *ConfigRepo) List(ctx context.Context) ([]domain.ScoringConfig, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, scope, scope_id,
		       weight_cpm_growth, weight_ctr_decline, weight_frequency,
		       weight_budget_jump, weight_rank_drop,
		       low_max, medium_max, frequency_floor, frequency_span,
		       min_impressions, target_cpl, created_at, updated_at
		FROM scoring_configs
		ORDER BY scope ASC, scope_id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list scoring configs: %w", err)
	}
	defer rows.Close()

	var out []domain.ScoringConfig
	for rows.Next() {
		var c domain.ScoringConfig
		if err := rows.Scan(
			&c.ID, &c.Scope, &c.ScopeID,
			&c.WeightCPMGrowth, &c.WeightCTRDecline, &c.WeightFrequency,
			&c.WeightBudgetJump, &c.WeightRankDrop,
			&c.LowMax, &c.MediumMax, &c.FrequencyFloor, &c.FrequencySpan,
			&c.MinImpressions, &c.TargetCPL, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan scoring config: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *ConfigRepo) Upsert(ctx context.Context, cfg *domain.ScoringConfig) error {
	if cfg.ID == "" {
		cfg.ID = uuid.New().String()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO scoring_configs
			(id, scope, scope_id,
			 weight_cpm_growth, weight_ctr_decline, weight_frequency,
			 weight_budget_jump, weight_rank_drop,
			 low_max, medium_max, frequency_floor, frequency_span,
			 min_impressions, target_cpl, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, NOW(), NOW())
		ON CONFLICT (scope, scope_id) DO UPDATE SET
			weight_cpm_growth = EXCLUDED.weight_cpm_growth,
			weight_ctr_decline = EXCLUDED.weight_ctr_decline,
			weight_frequency = EXCLUDED.weight_frequency,
			weight_budget_jump = EXCLUDED.weight_budget_jump,
			weight_rank_drop = EXCLUDED.weight_rank_drop,
			low_max = EXCLUDED.low_max,
			medium_max = EXCLUDED.medium_max,
			frequency_floor = EXCLUDED.frequency_floor,
			frequency_span = EXCLUDED.frequency_span,
			min_impressions = EXCLUDED.min_impressions,
			target_cpl = EXCLUDED.target_cpl,
			updated_at = NOW()
	`, cfg.ID, cfg.Scope, cfg.ScopeID,
		cfg.WeightCPMGrowth, cfg.WeightCTRDecline, cfg.WeightFrequency,
		cfg.WeightBudgetJump, cfg.WeightRankDrop,
		cfg.LowMax, cfg.MediumMax, cfg.FrequencyFloor, cfg.FrequencySpan,
		cfg.MinImpressions, cfg.TargetCPL)
	if err != nil {
		return fmt.Errorf("upsert scoring config: %w", err)
	}
	return nil
}

func (r *ConfigRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM scoring_configs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete scoring config: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return scoring.ErrNotFound
	}
	return nil
}
