// Package worker runs the background polling loop that keeps risk scores
// fresh for the configured ad accounts.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/adpilot/meta-ads-monitor/internal/config"
	"github.com/adpilot/meta-ads-monitor/internal/domain"
	"github.com/adpilot/meta-ads-monitor/internal/service/scoring"
)

// ScoringRunner is the slice of the scoring engine the poller drives.
type ScoringRunner interface {
	Run(ctx context.Context, params scoring.RunParams) (*domain.RunOutput, error)
}

// DigestRenderer turns a finished run into operator-readable text.
type DigestRenderer interface {
	Render(out *domain.RunOutput) (string, error)
}

// Poller triggers a scoring run for every configured account on a fixed
// interval. The engine's per-account lock makes overlapping triggers
// safe; a sweep that lands while a manual run is in flight just skips
// that account.
type Poller struct {
	runner     ScoringRunner
	digest     DigestRenderer
	accountIDs []string
	interval   time.Duration
	workerID   string

	// Stats
	runsCompleted int64
	runsSkipped   int64
	errors        int64

	// Control
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
	mu      sync.RWMutex
}

// NewPoller creates a poller for the accounts in cfg.
func NewPoller(runner ScoringRunner, cfg config.PollingConfig) *Poller {
	return &Poller{
		runner:     runner,
		accountIDs: cfg.AccountIDs,
		interval:   cfg.Interval(),
		workerID:   fmt.Sprintf("poller-%s-%d", getHostname(), time.Now().UnixNano()%10000),
	}
}

// SetDigestRenderer makes the poller log a text digest after every
// successful run, so operators tailing the worker see what changed.
func (p *Poller) SetDigestRenderer(r DigestRenderer) {
	p.digest = r
}

// Start begins the polling loop. The first sweep runs immediately so a
// fresh deploy has scores without waiting a full interval.
func (p *Poller) Start() error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("poller already running")
	}
	p.running = true
	p.ctx, p.cancel = context.WithCancel(context.Background())
	p.mu.Unlock()

	log.Printf("[Poller] %s starting: %d accounts, interval %v",
		p.workerID, len(p.accountIDs), p.interval)

	p.wg.Add(1)
	go p.pollLoop()

	return nil
}

// Stop gracefully stops the poller and waits for an in-flight sweep to
// finish.
func (p *Poller) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	p.mu.Unlock()

	log.Printf("[Poller] Stopping...")
	p.cancel()
	p.wg.Wait()
	log.Printf("[Poller] Stopped. Completed: %d runs, skipped: %d, errors: %d",
		atomic.LoadInt64(&p.runsCompleted),
		atomic.LoadInt64(&p.runsSkipped),
		atomic.LoadInt64(&p.errors))
}

func (p *Poller) pollLoop() {
	defer p.wg.Done()

	p.sweep()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			p.sweep()
		}
	}
}

// sweep scores every configured account once, in order.
func (p *Poller) sweep() {
	for _, accountID := range p.accountIDs {
		select {
		case <-p.ctx.Done():
			return
		default:
		}
		p.runAccount(accountID)
	}
}

func (p *Poller) runAccount(accountID string) {
	out, err := p.runner.Run(p.ctx, scoring.RunParams{AccountID: accountID})
	if err != nil {
		if errors.Is(err, scoring.ErrRunInProgress) {
			atomic.AddInt64(&p.runsSkipped, 1)
			log.Printf("[Poller] Account %s already being scored, skipping", accountID)
			return
		}
		atomic.AddInt64(&p.errors, 1)
		log.Printf("[Poller] Error scoring account %s: %v", accountID, err)
		return
	}

	atomic.AddInt64(&p.runsCompleted, 1)
	log.Printf("[Poller] Account %s scored: run %s, %d units, %d high risk",
		accountID, out.RunID, out.Summary.TotalUnits, out.Summary.HighRisk)

	if p.digest != nil {
		text, err := p.digest.Render(out)
		if err != nil {
			log.Printf("[Poller] Error rendering digest for account %s: %v", accountID, err)
			return
		}
		log.Printf("[Poller] Digest for account %s:\n%s", accountID, text)
	}
}

func getHostname() string {
	hostname, err := os.Hostname()
	if err != nil || hostname == "" {
		return "monitor"
	}
	return hostname
}
