package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/adpilot/meta-ads-monitor/internal/domain"
)

// SnapshotRepo implements scoring.SnapshotRepository against PostgreSQL.
type SnapshotRepo struct{ db *sql.DB }

// NewSnapshotRepo creates a Postgres-backed snapshot repository.
func NewSnapshotRepo(db *sql.DB) *SnapshotRepo { return &SnapshotRepo{db: db} }

func (r *SnapshotRepo) UpsertBatch(ctx context.Context, snaps []domain.MetricSnapshot) error {
	if len(snaps) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin snapshot batch: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO metric_snapshots
			(account_id, unit_id, unit_level, date,
			 ad_id, adset_id, campaign_id, creative_id, ad_name,
			 impressions, reach, clicks, leads, spend, ctr, cpm, frequency, daily_budget,
			 quality_ranking, engagement_ranking,
			 video_p25, video_p50, video_p75, video_p95, video_avg_watch_sec,
			 source, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
			$17, $18, $19, $20, $21, $22, $23, $24, $25, $26, NOW(), NOW())
		ON CONFLICT (account_id, unit_id, date, source) DO UPDATE SET
			unit_level = EXCLUDED.unit_level,
			ad_id = EXCLUDED.ad_id,
			adset_id = EXCLUDED.adset_id,
			campaign_id = EXCLUDED.campaign_id,
			creative_id = EXCLUDED.creative_id,
			ad_name = EXCLUDED.ad_name,
			impressions = EXCLUDED.impressions,
			reach = EXCLUDED.reach,
			clicks = EXCLUDED.clicks,
			leads = EXCLUDED.leads,
			spend = EXCLUDED.spend,
			ctr = EXCLUDED.ctr,
			cpm = EXCLUDED.cpm,
			frequency = EXCLUDED.frequency,
			daily_budget = EXCLUDED.daily_budget,
			quality_ranking = EXCLUDED.quality_ranking,
			engagement_ranking = EXCLUDED.engagement_ranking,
			video_p25 = EXCLUDED.video_p25,
			video_p50 = EXCLUDED.video_p50,
			video_p75 = EXCLUDED.video_p75,
			video_p95 = EXCLUDED.video_p95,
			video_avg_watch_sec = EXCLUDED.video_avg_watch_sec,
			updated_at = NOW()
	`)
	if err != nil {
		return fmt.Errorf("prepare snapshot upsert: %w", err)
	}
	defer stmt.Close()

	for i := range snaps {
		s := &snaps[i]
		_, err := stmt.ExecContext(ctx,
			s.AccountID, s.UnitID, s.UnitLevel, s.Date,
			s.AdID, s.AdsetID, s.CampaignID, s.CreativeID, s.AdName,
			s.Impressions, s.Reach, s.Clicks, s.Leads, s.Spend, s.CTR, s.CPM, s.Frequency, s.DailyBudget,
			s.QualityRanking, s.EngagementRanking,
			s.VideoP25, s.VideoP50, s.VideoP75, s.VideoP95, s.VideoAvgWatchSec,
			s.Source)
		if err != nil {
			return fmt.Errorf("upsert snapshot %s/%s: %w", s.UnitID, s.Date.Format("2006-01-02"), err)
		}
	}
	return tx.Commit()
}

// ListRange returns one unit's rows in [from, to]. An empty source means
// all sources; scoring passes production so test-collection rows stay out
// of its windows.
func (r *SnapshotRepo) ListRange(ctx context.Context, accountID, unitID string, from, to time.Time, source domain.SnapshotSource) ([]domain.MetricSnapshot, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT account_id, unit_id, unit_level, date,
		       ad_id, adset_id, campaign_id, creative_id, ad_name,
		       impressions, reach, clicks, leads, spend, ctr, cpm, frequency, daily_budget,
		       quality_ranking, engagement_ranking,
		       video_p25, video_p50, video_p75, video_p95, video_avg_watch_sec,
		       source, created_at, updated_at
		FROM metric_snapshots
		WHERE account_id = $1 AND unit_id = $2 AND date >= $3 AND date <= $4
		  AND ($5 = '' OR source = $5)
		ORDER BY date ASC
	`, accountID, unitID, from, to, string(source))
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()
	return collectSnapshots(rows)
}

func (r *SnapshotRepo) ListAccountRange(ctx context.Context, accountID string, from, to time.Time, source domain.SnapshotSource) ([]domain.MetricSnapshot, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT account_id, unit_id, unit_level, date,
		       ad_id, adset_id, campaign_id, creative_id, ad_name,
		       impressions, reach, clicks, leads, spend, ctr, cpm, frequency, daily_budget,
		       quality_ranking, engagement_ranking,
		       video_p25, video_p50, video_p75, video_p95, video_avg_watch_sec,
		       source, created_at, updated_at
		FROM metric_snapshots
		WHERE account_id = $1 AND date >= $2 AND date <= $3
		  AND ($4 = '' OR source = $4)
		ORDER BY date ASC, unit_id ASC
	`, accountID, from, to, string(source))
	if err != nil {
		return nil, fmt.Errorf("list account snapshots: %w", err)
	}
	defer rows.Close()
	return collectSnapshots(rows)
}

func collectSnapshots(rows *sql.Rows) ([]domain.MetricSnapshot, error) {
	var out []domain.MetricSnapshot
	for rows.Next() {
		var s domain.MetricSnapshot
		if err := rows.Scan(
			&s.AccountID, &s.UnitID, &s.UnitLevel, &s.Date,
			&s.AdID, &s.AdsetID, &s.CampaignID, &s.CreativeID, &s.AdName,
			&s.Impressions, &s.Reach, &s.Clicks, &s.Leads, &s.Spend, &s.CTR, &s.CPM, &s.Frequency, &s.DailyBudget,
			&s.QualityRanking, &s.EngagementRanking,
			&s.VideoP25, &s.VideoP50, &s.VideoP75, &s.VideoP95, &s.VideoAvgWatchSec,
			&s.Source, &s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
