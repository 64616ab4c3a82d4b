// Package api exposes the HTTP surface of the monitor: triggering and
// reading scoring runs, rendering digests, and managing scoring configs
// and the creative registry.
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/adpilot/meta-ads-monitor/internal/domain"
	"github.com/adpilot/meta-ads-monitor/internal/pkg/httputil"
	"github.com/adpilot/meta-ads-monitor/internal/report"
	"github.com/adpilot/meta-ads-monitor/internal/service/scoring"
)

// ScoringService is the slice of the scoring engine the HTTP layer
// drives. *scoring.Engine satisfies it.
type ScoringService interface {
	Run(ctx context.Context, params scoring.RunParams) (*domain.RunOutput, error)
	Latest(ctx context.Context, accountID string) (*domain.RunOutput, error)
}

// Handlers holds dependencies for HTTP handlers
type Handlers struct {
	scoring   ScoringService
	configs   scoring.ConfigRepository
	runs      scoring.RunRepository
	creatives scoring.CreativeRepository
	digest    *report.DigestRenderer
	startedAt time.Time
}

// NewHandlers creates handlers with the core dependencies. Optional
// collaborators are attached with the Set methods.
func NewHandlers(svc ScoringService, configs scoring.ConfigRepository, runs scoring.RunRepository, creatives scoring.CreativeRepository) *Handlers {
	return &Handlers{
		scoring:   svc,
		configs:   configs,
		runs:      runs,
		creatives: creatives,
		startedAt: time.Now(),
	}
}

// SetDigestRenderer attaches the text digest renderer
func (h *Handlers) SetDigestRenderer(r *report.DigestRenderer) {
	h.digest = r
}

// HealthCheck returns service health status
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.OK(w, map[string]interface{}{
		"status":  "healthy",
		"service": "meta-ads-monitor",
		"uptime":  time.Since(h.startedAt).Round(time.Second).String(),
	})
}

type runRequest struct {
	UserID    string `json:"user_id,omitempty"`
	Objective string `json:"objective,omitempty"`
	Anchor    string `json:"anchor,omitempty"`
}

// RunScoring triggers a synchronous scoring run for the account
func (h *Handlers) RunScoring(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "accountID")

	var req runRequest
	if r.ContentLength != 0 {
		if !httputil.Decode(w, r, &req) {
			return
		}
	}

	params := scoring.RunParams{
		AccountID: accountID,
		UserID:    req.UserID,
		Objective: req.Objective,
	}
	if req.Anchor != "" {
		anchor, err := time.Parse("2006-01-02", req.Anchor)
		if err != nil {
			httputil.BadRequest(w, "anchor must be formatted YYYY-MM-DD")
			return
		}
		params.Anchor = anchor
	}

	out, err := h.scoring.Run(r.Context(), params)
	if err != nil {
		writeRunError(w, err)
		return
	}
	httputil.OK(w, out)
}

// writeRunError maps scoring engine failures onto HTTP statuses.
func writeRunError(w http.ResponseWriter, err error) {
	if errors.Is(err, scoring.ErrRunInProgress) {
		httputil.Conflict(w, err.Error())
		return
	}
	switch scoring.KindOf(err) {
	case scoring.KindUpstreamFetch:
		httputil.BadGateway(w, err.Error())
	case scoring.KindTimeout:
		httputil.Error(w, http.StatusGatewayTimeout, err.Error())
	default:
		httputil.InternalError(w, err)
	}
}

// GetLatestRun returns the most recent finished run output for the account
func (h *Handlers) GetLatestRun(w http.ResponseWriter, r *http.Request) {
	out, err := h.scoring.Latest(r.Context(), chi.URLParam(r, "accountID"))
	if err != nil {
		if errors.Is(err, scoring.ErrNoLatestResult) {
			httputil.NotFound(w, err.Error())
			return
		}
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, out)
}

// GetDigest renders the latest run as a plain-text operator digest
func (h *Handlers) GetDigest(w http.ResponseWriter, r *http.Request) {
	if h.digest == nil {
		httputil.Error(w, http.StatusServiceUnavailable, "digest rendering is not configured")
		return
	}
	out, err := h.scoring.Latest(r.Context(), chi.URLParam(r, "accountID"))
	if err != nil {
		if errors.Is(err, scoring.ErrNoLatestResult) {
			httputil.NotFound(w, err.Error())
			return
		}
		httputil.InternalError(w, err)
		return
	}
	text, err := h.digest.Render(out)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(text))
}

// ListRuns returns recent run records for an account
func (h *Handlers) ListRuns(w http.ResponseWriter, r *http.Request) {
	accountID := strings.TrimPrefix(r.URL.Query().Get("account_id"), "act_")
	if accountID == "" {
		httputil.BadRequest(w, "account_id query parameter is required")
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			httputil.BadRequest(w, "limit must be a positive integer")
			return
		}
		limit = n
	}

	runs, err := h.runs.ListRecent(r.Context(), accountID, limit)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, map[string]interface{}{
		"runs":  runs,
		"count": len(runs),
	})
}

// ListConfigs returns scoring configs, optionally filtered by scope
// and scope_id query parameters
func (h *Handlers) ListConfigs(w http.ResponseWriter, r *http.Request) {
	configs, err := h.configs.List(r.Context())
	if err != nil {
		httputil.InternalError(w, err)
		return
	}

	scope := r.URL.Query().Get("scope")
	scopeID := r.URL.Query().Get("scope_id")
	if scope != "" || scopeID != "" {
		filtered := make([]domain.ScoringConfig, 0, len(configs))
		for _, cfg := range configs {
			if scope != "" && string(cfg.Scope) != scope {
				continue
			}
			if scopeID != "" && cfg.ScopeID != scopeID {
				continue
			}
			filtered = append(filtered, cfg)
		}
		configs = filtered
	}

	httputil.OK(w, map[string]interface{}{
		"configs": configs,
		"count":   len(configs),
	})
}

// GetConfig returns a single scoring config by ID
func (h *Handlers) GetConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.configs.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, scoring.ErrNotFound) {
			httputil.NotFound(w, "scoring config not found")
			return
		}
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, cfg)
}

// UpsertConfig creates or replaces the scoring config for a scope
func (h *Handlers) UpsertConfig(w http.ResponseWriter, r *http.Request) {
	var cfg domain.ScoringConfig
	if !httputil.Decode(w, r, &cfg) {
		return
	}
	if err := cfg.Validate(); err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	if err := h.configs.Upsert(r.Context(), &cfg); err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, cfg)
}

// DeleteConfig removes a scope override. The global config is protected.
func (h *Handlers) DeleteConfig(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	cfg, err := h.configs.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, scoring.ErrNotFound) {
			httputil.NotFound(w, "scoring config not found")
			return
		}
		httputil.InternalError(w, err)
		return
	}
	if cfg.Scope == domain.ScopeGlobal {
		httputil.Conflict(w, scoring.ErrGlobalConfigDelete.Error())
		return
	}

	if err := h.configs.Delete(r.Context(), id); err != nil {
		if errors.Is(err, scoring.ErrNotFound) {
			httputil.NotFound(w, "scoring config not found")
			return
		}
		httputil.InternalError(w, err)
		return
	}
	httputil.NoContent(w)
}

// ListCreatives returns the creative registry rows for an account
func (h *Handlers) ListCreatives(w http.ResponseWriter, r *http.Request) {
	accountID := strings.TrimPrefix(r.URL.Query().Get("account_id"), "act_")
	if accountID == "" {
		httputil.BadRequest(w, "account_id query parameter is required")
		return
	}

	creatives, err := h.creatives.ListByAccount(r.Context(), accountID)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, map[string]interface{}{
		"creatives": creatives,
		"count":     len(creatives),
	})
}
