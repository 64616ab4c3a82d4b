package scoring

import (
	"fmt"

	"github.com/adpilot/meta-ads-monitor/internal/domain"
)

// Fatigue thresholds. A unit is fatigued past either one; urgent means
// 1.5 times past it.
const (
	fatigueFrequencyThreshold  = 3.0
	fatigueCTRDeclineThreshold = -20.0
	fatigueUrgentFactor        = 1.5
)

// DetectFatigue flags audience wear-out on one unit from its window
// aggregates: a frequency past the threshold or a CTR collapse against
// the baseline. Returns nil when neither condition holds.
func DetectFatigue(current, baseline domain.MetricSnapshot) *domain.FatigueReport {
	declinePct := 0.0
	if baseline.CTR > 0 {
		declinePct = (current.CTR - baseline.CTR) / baseline.CTR * 100
	}

	highFrequency := current.Frequency > fatigueFrequencyThreshold
	ctrCollapse := declinePct < fatigueCTRDeclineThreshold
	if !highFrequency && !ctrCollapse {
		return nil
	}

	report := &domain.FatigueReport{Fatigued: true}
	if highFrequency {
		report.Reasons = append(report.Reasons,
			fmt.Sprintf("frequency %.1f over %.1f", current.Frequency, fatigueFrequencyThreshold))
	}
	if ctrCollapse {
		report.Reasons = append(report.Reasons,
			fmt.Sprintf("CTR down %.1f%% vs baseline", -declinePct))
	}
	if current.Frequency > fatigueFrequencyThreshold*fatigueUrgentFactor ||
		declinePct < fatigueCTRDeclineThreshold*fatigueUrgentFactor {
		report.Urgent = true
	}
	return report
}
