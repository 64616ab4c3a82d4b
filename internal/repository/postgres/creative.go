package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/adpilot/meta-ads-monitor/internal/domain"
	"github.com/adpilot/meta-ads-monitor/internal/service/scoring"
)

// CreativeRepo implements scoring.CreativeRepository against PostgreSQL.
type CreativeRepo struct{ db *sql.DB }

// NewCreativeRepo creates a Postgres-backed creative repository.
func NewCreativeRepo(db *sql.DB) *CreativeRepo { return &CreativeRepo{db: db} }

func (r *CreativeRepo) ListByAccount(ctx context.Context, accountID string) ([]domain.Creative, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, account_id, name, format, objectives, tags, status, created_at, updated_at
		FROM creatives
		WHERE account_id = $1
		ORDER BY created_at DESC
	`, accountID)
	if err != nil {
		return nil, fmt.Errorf("list creatives: %w", err)
	}
	defer rows.Close()

	var out []domain.Creative
	for rows.Next() {
		var c domain.Creative
		if err := rows.Scan(
			&c.ID, &c.AccountID, &c.Name, &c.Format,
			pq.Array(&c.Objectives), pq.Array(&c.Tags),
			&c.Status, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan creative: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Upsert refreshes a creative from the platform. Objectives are
// operator-curated: a sync that carries none keeps the stored set.
func (r *CreativeRepo) Upsert(ctx context.Context, creative *domain.Creative) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO creatives (id, account_id, name, format, objectives, tags, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			format = EXCLUDED.format,
			tags = EXCLUDED.tags,
			status = EXCLUDED.status,
			objectives = CASE WHEN cardinality(EXCLUDED.objectives) > 0
				THEN EXCLUDED.objectives ELSE creatives.objectives END,
			updated_at = NOW()
	`, creative.ID, creative.AccountID, creative.Name, creative.Format,
		pq.Array(creative.Objectives), pq.Array(creative.Tags), creative.Status)
	if err != nil {
		return fmt.Errorf("upsert creative: %w", err)
	}
	return nil
}

func (r *CreativeRepo) Get(ctx context.Context, id string) (*domain.Creative, error) {
	c := &domain.Creative{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, account_id, name, format, objectives, tags, status, created_at, updated_at
		FROM creatives
		WHERE id = $1
	`, id).Scan(
		&c.ID, &c.AccountID, &c.Name, &c.Format,
		pq.Array(&c.Objectives), pq.Array(&c.Tags),
		&c.Status, &c.CreatedAt, &c.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, scoring.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get creative: %w", err)
	}
	return c, nil
}
