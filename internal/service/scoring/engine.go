package scoring

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/adpilot/meta-ads-monitor/internal/config"
	"github.com/adpilot/meta-ads-monitor/internal/domain"
	"github.com/adpilot/meta-ads-monitor/internal/meta"
)

// RunParams selects what one scoring run covers.
type RunParams struct {
	// AccountID accepts ids with or without the act_ prefix.
	AccountID string
	// UserID owns config overrides; empty skips the user tier.
	UserID string
	// Objective filters the readiness list; empty ranks every active creative.
	Objective string
	// Anchor is the most recent complete day both windows end at.
	// Zero means yesterday UTC.
	Anchor time.Time
}

// Engine orchestrates one scoring run end to end: acquire the account
// lock, record the run, fetch and persist snapshots, score every unit
// concurrently, aggregate, rank creatives, then publish the output to
// the cache and archive. Exactly one Finish is recorded per Create, on
// crash paths included.
type Engine struct {
	snapshots SnapshotRepository
	configs   ConfigRepository
	runs      RunRepository
	creatives CreativeRepository
	fetcher   MetricsFetcher
	lockFor   LockFactory

	cache    ResultCache
	archiver RunArchiver
	metrics  RunMetrics

	currentDays  int
	baselineDays int
	workers      int
	runTimeout   time.Duration

	mu     sync.RWMutex
	latest map[string]*domain.RunOutput
}

// NewEngine wires the required collaborators. Optional ones (cache,
// archiver, metrics) are attached with the setters.
func NewEngine(snapshots SnapshotRepository, configs ConfigRepository, runs RunRepository, creatives CreativeRepository, fetcher MetricsFetcher, lockFor LockFactory, cfg config.ScoringConfig) *Engine {
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	return &Engine{
		snapshots:    snapshots,
		configs:      configs,
		runs:         runs,
		creatives:    creatives,
		fetcher:      fetcher,
		lockFor:      lockFor,
		currentDays:  cfg.CurrentWindowDays,
		baselineDays: cfg.BaselineWindowDays,
		workers:      workers,
		runTimeout:   cfg.RunTimeout(),
		latest:       make(map[string]*domain.RunOutput),
	}
}

// SetResultCache attaches the latest-output cache.
func (e *Engine) SetResultCache(cache ResultCache) {
	e.cache = cache
}

// SetArchiver attaches the run artifact store.
func (e *Engine) SetArchiver(archiver RunArchiver) {
	e.archiver = archiver
}

// SetMetrics attaches operational metrics.
func (e *Engine) SetMetrics(metrics RunMetrics) {
	e.metrics = metrics
}

// Run executes one scoring run for the account. At most one run per
// account proceeds at a time; a second caller gets ErrRunInProgress
// immediately instead of queueing.
func (e *Engine) Run(ctx context.Context, params RunParams) (*domain.RunOutput, error) {
	accountID := strings.TrimPrefix(params.AccountID, "act_")
	if accountID == "" {
		return nil, fmt.Errorf("account id is required")
	}

	lock := e.lockFor(accountID)
	acquired, err := lock.Acquire(ctx)
	if err != nil {
		return nil, newRunError(KindPersistence, fmt.Errorf("acquiring run lock: %w", err))
	}
	if !acquired {
		return nil, ErrRunInProgress
	}
	defer func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := lock.Release(releaseCtx); err != nil {
			log.Printf("[scoring.Engine] WARN: releasing lock for account %s: %v", accountID, err)
		}
	}()

	runCtx, cancel := context.WithTimeout(ctx, e.runTimeout)
	defer cancel()

	run := &domain.ScoringRun{
		ID:        uuid.NewString(),
		AccountID: accountID,
		StartedAt: time.Now().UTC(),
		Status:    domain.RunRunning,
	}
	if err := e.runs.Create(runCtx, run); err != nil {
		return nil, newRunError(KindPersistence, fmt.Errorf("creating run record: %w", err))
	}

	out, runErr := e.execute(runCtx, run.ID, accountID, params)

	status := domain.RunSuccess
	detail := ""
	var counts domain.RunCounts
	switch {
	case runErr != nil:
		status = domain.RunError
		detail = runErr.Error()
	case len(out.Errors) > 0:
		status = domain.RunPartial
		counts = countsOf(out)
	default:
		counts = countsOf(out)
	}

	// the finish write gets its own context so a run timeout cannot
	// leave the record stuck in running
	finishCtx, finishCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer finishCancel()
	if err := e.runs.Finish(finishCtx, run.ID, status, counts, detail); err != nil {
		log.Printf("[scoring.Engine] ERROR: finalizing run %s: %v", run.ID, err)
	}

	duration := time.Since(run.StartedAt)
	if e.metrics != nil {
		e.metrics.ObserveRun(accountID, status, duration, counts.UnitsScored, counts.HighRisk)
	}

	if runErr != nil {
		log.Printf("[scoring.Engine] run %s failed for account %s after %s: %v", run.ID, accountID, duration.Round(time.Millisecond), runErr)
		return nil, runErr
	}

	e.publish(accountID, out)
	log.Printf("[scoring.Engine] run %s finished for account %s: %d/%d units scored, %d high risk, status=%s",
		run.ID, accountID, counts.UnitsScored, counts.UnitsTotal, counts.HighRisk, status)
	return out, nil
}

// execute performs the fallible middle of a run. Fatal failures return a
// RunError; per-unit failures land in out.Errors instead.
func (e *Engine) execute(ctx context.Context, runID, accountID string, params RunParams) (*domain.RunOutput, error) {
	anchor := params.Anchor
	if anchor.IsZero() {
		anchor = dateOnly(time.Now().UTC()).AddDate(0, 0, -1)
	} else {
		anchor = dateOnly(anchor)
	}
	// one extra day behind for the shifted trend windows, one ahead for
	// the intraday health comparison
	since := anchor.AddDate(0, 0, -e.baselineDays)
	until := anchor.AddDate(0, 0, 1)

	snaps, err := e.fetcher.FetchDailySnapshots(ctx, params.AccountID, since, until)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, newRunError(KindTimeout, err)
		}
		return nil, newRunError(KindUpstreamFetch, err)
	}
	if len(snaps) == 0 {
		// an account with nothing to score finishes as a success with
		// zero counts, so operators can tell it apart from a failed run
		log.Printf("[scoring.Engine] no metric rows fetched for account %s in window", accountID)
	}

	e.syncCreatives(ctx, params.AccountID, accountID)

	// history writes must land before any baseline read
	if err := e.snapshots.UpsertBatch(ctx, snaps); err != nil {
		return nil, newRunError(KindPersistence, fmt.Errorf("persisting snapshots: %w", err))
	}
	rows, err := e.snapshots.ListAccountRange(ctx, accountID, since, until, domain.SourceProduction)
	if err != nil {
		return nil, newRunError(KindPersistence, fmt.Errorf("reading history: %w", err))
	}

	resolver := NewConfigResolver(e.configs, params.UserID)
	baseCfg, err := resolver.Resolve(ctx, "")
	if err != nil {
		return nil, newRunError(KindConfigResolution, err)
	}

	units := e.collectUnits(rows, anchor)
	medianCPM := MedianCPM(currentCPMs(units))

	results, unitErrs := e.scoreAll(ctx, resolver, units, medianCPM, anchor)
	if ctx.Err() != nil {
		return nil, newRunError(KindTimeout, ctx.Err())
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].UnitID < results[j].UnitID
	})

	summary := Aggregate(results)
	summary.BudgetEaters = DetectBudgetEaters(currentAggregates(units), baseCfg.TargetCPL)

	out := &domain.RunOutput{
		RunID:       runID,
		AccountID:   accountID,
		GeneratedAt: time.Now().UTC(),
		Summary:     summary,
		Items:       results,
		Errors:      unitErrs,
	}

	registry, err := e.creatives.ListByAccount(ctx, accountID)
	if err != nil {
		log.Printf("[scoring.Engine] WARN: listing creatives for account %s: %v", accountID, err)
	} else {
		out.ReadyCreatives = RankCreatives(registry, results, rows, params.Objective, *baseCfg)
	}

	e.archive(accountID, out)
	return out, nil
}

// unitData is one unit's scoring input, precomputed serially so the
// worker pool only runs the calculator.
type unitData struct {
	unitID   string
	rows     []domain.MetricSnapshot
	current  domain.MetricSnapshot
	baseline domain.MetricSnapshot
}

// collectUnits groups history by unit and builds both window aggregates,
// in a deterministic unit order. Units with no rows inside the current
// window have nothing to score and are dropped here.
func (e *Engine) collectUnits(rows []domain.MetricSnapshot, anchor time.Time) []unitData {
	grouped := GroupByUnit(rows)

	ids := make([]string, 0, len(grouped))
	for id := range grouped {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	units := make([]unitData, 0, len(ids))
	for _, id := range ids {
		u := unitData{unitID: id, rows: grouped[id]}
		var ok bool
		u.current, u.baseline, ok = BuildWindows(u.rows, anchor, e.currentDays, e.baselineDays)
		if !ok {
			continue
		}
		units = append(units, u)
	}
	return units
}

func currentCPMs(units []unitData) []float64 {
	cpms := make([]float64, 0, len(units))
	for _, u := range units {
		cpms = append(cpms, u.current.CPM)
	}
	return cpms
}

func currentAggregates(units []unitData) []domain.MetricSnapshot {
	aggs := make([]domain.MetricSnapshot, 0, len(units))
	for _, u := range units {
		aggs = append(aggs, u.current)
	}
	return aggs
}

// scoreAll fans unit scoring out over a bounded worker pool. Unit
// calculations are independent, so failures are collected per unit
// rather than aborting the run.
func (e *Engine) scoreAll(ctx context.Context, resolver *ConfigResolver, units []unitData, medianCPM float64, anchor time.Time) ([]domain.RiskScoreResult, []domain.UnitError) {
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		results []domain.RiskScoreResult
		errs    []domain.UnitError
	)
	sem := make(chan struct{}, e.workers)

	for _, u := range units {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(u unitData) {
			defer wg.Done()
			defer func() { <-sem }()

			res, err := e.scoreUnit(ctx, resolver, u, medianCPM, anchor)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, domain.UnitError{UnitID: u.unitID, Error: err.Error()})
				return
			}
			results = append(results, *res)
		}(u)
	}
	wg.Wait()

	sort.Slice(errs, func(i, j int) bool { return errs[i].UnitID < errs[j].UnitID })
	return results, errs
}

// scoreUnit runs the full per-unit pipeline: resolve config, score, tier,
// trend, confidence, then the optional health and fatigue blocks.
func (e *Engine) scoreUnit(ctx context.Context, resolver *ConfigResolver, u unitData, medianCPM float64, anchor time.Time) (*domain.RiskScoreResult, error) {
	cfg, err := resolver.Resolve(ctx, u.current.CampaignID)
	if err != nil {
		return nil, err
	}

	score, comps := Score(u.current, u.baseline, *cfg)
	tier := TierFor(score, *cfg)

	res := &domain.RiskScoreResult{
		UnitID:     u.unitID,
		UnitLevel:  u.current.UnitLevel,
		CampaignID: u.current.CampaignID,
		CreativeID: u.current.CreativeID,
		Name:       u.current.AdName,
		Score:      score,
		Components: comps,
		Tier:       tier,
		Trend:      DetectTrend(u.rows, anchor, e.currentDays, e.baselineDays, score, tier, *cfg),
		Current:    SummaryOf(u.current, e.currentDays),
		Baseline:   SummaryOf(u.baseline, e.baselineDays),
		Tags:       meta.ExtractTags(u.current.AdName),
	}
	ApplyConfidenceGate(res, u.current.Impressions, cfg.MinImpressions)

	if cfg.TargetCPL > 0 {
		cplToday, impToday := dayStats(u.rows, anchor.AddDate(0, 0, 1))
		cplYesterday, _ := dayStats(u.rows, anchor)
		res.Health = ComputeHealth(HealthInput{
			CPLToday:         cplToday,
			CPLYesterday:     cplYesterday,
			CPL3d:            u.current.CPL(),
			CPL7d:            u.baseline.CPL(),
			CTR:              u.current.CTR,
			CPM:              u.current.CPM,
			Frequency:        u.current.Frequency,
			MedianCPM:        medianCPM,
			ImpressionsToday: impToday,
		}, cfg.TargetCPL)
	}
	res.Fatigue = DetectFatigue(u.current, u.baseline)
	return res, nil
}

// syncCreatives refreshes the creative registry from the platform.
// Best effort: a failure degrades the readiness list to the stored
// registry instead of failing the run.
func (e *Engine) syncCreatives(ctx context.Context, fetchAccountID, accountID string) {
	fetched, err := e.fetcher.FetchCreatives(ctx, fetchAccountID)
	if err != nil {
		log.Printf("[scoring.Engine] WARN: syncing creatives for account %s: %v", accountID, err)
		return
	}
	for i := range fetched {
		if err := e.creatives.Upsert(ctx, &fetched[i]); err != nil {
			log.Printf("[scoring.Engine] WARN: upserting creative %s: %v", fetched[i].ID, err)
		}
	}
}

// publish makes the finished output readable through Latest and the
// write-through cache.
func (e *Engine) publish(accountID string, out *domain.RunOutput) {
	e.mu.Lock()
	e.latest[accountID] = out
	e.mu.Unlock()

	if e.cache == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.cache.SetLatest(ctx, accountID, out); err != nil {
		log.Printf("[scoring.Engine] WARN: caching latest output for account %s: %v", accountID, err)
	}
}

// archive stores the full run artifact. Best effort.
func (e *Engine) archive(accountID string, out *domain.RunOutput) {
	if e.archiver == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	location, err := e.archiver.SaveRunArtifact(ctx, accountID, out.RunID, out.GeneratedAt, out)
	if err != nil {
		log.Printf("[scoring.Engine] WARN: archiving run %s: %v", out.RunID, err)
		return
	}
	log.Printf("[scoring.Engine] archived run %s to %s", out.RunID, location)
}

// Latest returns the most recent finished output for the account,
// preferring process memory and falling back to the cache.
func (e *Engine) Latest(ctx context.Context, accountID string) (*domain.RunOutput, error) {
	accountID = strings.TrimPrefix(accountID, "act_")

	e.mu.RLock()
	out, ok := e.latest[accountID]
	e.mu.RUnlock()
	if ok {
		return out, nil
	}

	if e.cache != nil {
		return e.cache.GetLatest(ctx, accountID)
	}
	return nil, ErrNoLatestResult
}

func countsOf(out *domain.RunOutput) domain.RunCounts {
	return domain.RunCounts{
		UnitsTotal:  out.Summary.TotalUnits + len(out.Errors),
		UnitsScored: out.Summary.TotalUnits,
		HighRisk:    out.Summary.HighRisk,
		MediumRisk:  out.Summary.MediumRisk,
		LowRisk:     out.Summary.LowRisk,
	}
}
