package scoring

import (
	"context"
	"time"

	"github.com/adpilot/meta-ads-monitor/internal/domain"
	"github.com/adpilot/meta-ads-monitor/internal/pkg/distlock"
)

// SnapshotRepository persists normalized daily metric snapshots. Writes
// are upserts keyed by (account, unit, date, source) so a retried run
// overwrites cleanly instead of double counting.
type SnapshotRepository interface {
	// UpsertBatch writes snapshots, replacing rows that share a key.
	UpsertBatch(ctx context.Context, snaps []domain.MetricSnapshot) error

	// ListRange returns one unit's snapshots with dates in [from, to],
	// ascending by date. A non-empty source restricts the rows to that
	// collection source; empty returns all.
	ListRange(ctx context.Context, accountID, unitID string, from, to time.Time, source domain.SnapshotSource) ([]domain.MetricSnapshot, error)

	// ListAccountRange returns every snapshot for the account with dates
	// in [from, to], ascending by date, with the same source filter as
	// ListRange. Scoring reads production rows only, so test-collection
	// rows never leak into trend windows.
	ListAccountRange(ctx context.Context, accountID string, from, to time.Time, source domain.SnapshotSource) ([]domain.MetricSnapshot, error)
}

// ConfigRepository stores scoring configs at global, user, and campaign
// scope. GetByScope returns ErrNotFound when no row exists for the pair.
type ConfigRepository interface {
	GetByScope(ctx context.Context, scope domain.ConfigScope, scopeID string) (*domain.ScoringConfig, error)
	GetByID(ctx context.Context, id string) (*domain.ScoringConfig, error)
	List(ctx context.Context) ([]domain.ScoringConfig, error)
	Upsert(ctx context.Context, cfg *domain.ScoringConfig) error
	Delete(ctx context.Context, id string) error
}

// RunRepository records the lifecycle of scoring runs. Every Create is
// paired with exactly one Finish, crash paths included.
type RunRepository interface {
	Create(ctx context.Context, run *domain.ScoringRun) error
	Finish(ctx context.Context, runID string, status domain.RunStatus, counts domain.RunCounts, errDetail string) error
	ListRecent(ctx context.Context, accountID string, limit int) ([]domain.ScoringRun, error)
}

// CreativeRepository stores the creative registry used by the readiness
// ranker.
type CreativeRepository interface {
	ListByAccount(ctx context.Context, accountID string) ([]domain.Creative, error)
	Upsert(ctx context.Context, creative *domain.Creative) error
	Get(ctx context.Context, id string) (*domain.Creative, error)
}

// MetricsFetcher retrieves normalized platform data for a run. The meta
// package provides the production implementation.
type MetricsFetcher interface {
	FetchDailySnapshots(ctx context.Context, accountID string, since, until time.Time) ([]domain.MetricSnapshot, error)
	FetchCreatives(ctx context.Context, accountID string) ([]domain.Creative, error)
}

// ResultCache holds the latest finished run output per account for cheap
// reads. GetLatest returns ErrNoLatestResult on a miss.
type ResultCache interface {
	SetLatest(ctx context.Context, accountID string, out *domain.RunOutput) error
	GetLatest(ctx context.Context, accountID string) (*domain.RunOutput, error)
}

// RunArchiver stores the full JSON artifact of each finished run and
// returns where it landed.
type RunArchiver interface {
	SaveRunArtifact(ctx context.Context, accountID, runID string, generatedAt time.Time, payload interface{}) (string, error)
}

// LockFactory builds the per-account lock that serializes runs. The
// engine acquires it before touching history rows.
type LockFactory func(accountID string) distlock.DistLock

// RunMetrics records operational counters about finished runs.
type RunMetrics interface {
	ObserveRun(accountID string, status domain.RunStatus, duration time.Duration, unitsScored, highRisk int)
}
