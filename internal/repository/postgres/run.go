package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/adpilot/meta-ads-monitor/internal/domain"
	"github.com/adpilot/meta-ads-monitor/internal/service/scoring"
)

// RunRepo implements scoring.RunRepository against PostgreSQL. Rows are
// append-only: Create inserts a running row, Finish finalizes it once.
type RunRepo struct{ db *sql.DB }

// NewRunRepo creates a Postgres-backed run repository.
func NewRunRepo(db *sql.DB) *RunRepo { return &RunRepo{db: db} }

func (r *RunRepo) Create(ctx context.Context, run *domain.ScoringRun) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO scoring_runs (id, account_id, started_at, status)
		VALUES ($1, $2, $3, $4)
	`, run.ID, run.AccountID, run.StartedAt, run.Status)
	if err != nil {
		return fmt.Errorf("create run: %w", err)
	}
	return nil
}

func (r *RunRepo) Finish(ctx context.Context, runID string, status domain.RunStatus, counts domain.RunCounts, errDetail string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE scoring_runs
		SET finished_at = NOW(), status = $1,
		    units_total = $2, units_scored = $3,
		    high_risk = $4, medium_risk = $5, low_risk = $6,
		    error_detail = $7
		WHERE id = $8
	`, status, counts.UnitsTotal, counts.UnitsScored,
		counts.HighRisk, counts.MediumRisk, counts.LowRisk,
		errDetail, runID)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return scoring.ErrNotFound
	}
	return nil
}

func (r *RunRepo) ListRecent(ctx context.Context, accountID string, limit int) ([]domain.ScoringRun, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, account_id, started_at, finished_at, status,
		       units_total, units_scored, high_risk, medium_risk, low_risk,
		       error_detail
		FROM scoring_runs
		WHERE account_id = $1
		ORDER BY started_at DESC
		LIMIT $2
	`, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []domain.ScoringRun
	for rows.Next() {
		var run domain.ScoringRun
		var finished sql.NullTime
		if err := rows.Scan(
			&run.ID, &run.AccountID, &run.StartedAt, &finished, &run.Status,
			&run.UnitsTotal, &run.UnitsScored, &run.HighRisk, &run.MediumRisk, &run.LowRisk,
			&run.ErrorDetail,
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if finished.Valid {
			t := finished.Time
			run.FinishedAt = &t
		}
		out = append(out, run)
	}
	return out, rows.Err()
}
