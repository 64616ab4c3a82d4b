package scoring

import "github.com/adpilot/meta-ads-monitor/internal/domain"

// ApplyConfidenceGate flags results whose current window holds too thin a
// sample to trust. The numeric score is left untouched and the result is
// still reported, only marked, so new and low-traffic units never vanish
// from the portfolio view.
func ApplyConfidenceGate(result *domain.RiskScoreResult, currentImpressions, minImpressions int64) {
	if currentImpressions < minImpressions {
		result.Confidence = domain.ConfidenceLow
		return
	}
	result.Confidence = domain.ConfidenceFull
}
