package scoring

import (
	"fmt"
	"sort"

	"github.com/adpilot/meta-ads-monitor/internal/domain"
)

// Budget eater thresholds, relative to the scope's target CPL and the
// account's average spend per unit.
const (
	eaterCriticalCPLRatio = 3.0
	eaterMediumCPLRatio   = 1.5
	eaterHighSpendRatio   = 2.0
	eaterShareThreshold   = 50.0
)

// DetectBudgetEaters flags units burning spend without acceptable lead
// cost over their current window. Severity, most serious first:
//
//	critical: CPL above 3x the target
//	high:     zero leads with spend at least twice the account average
//	medium:   CPL above 1.5x the target while taking over half the ad
//	          set's spend
//
// A zero target CPL disables the CPL-based grades; the zero-lead grade
// still applies. Aggregates are the units' current windows.
func DetectBudgetEaters(aggregates []domain.MetricSnapshot, targetCPL float64) []domain.BudgetEater {
	if len(aggregates) == 0 {
		return nil
	}

	var totalSpend float64
	adsetSpend := make(map[string]float64)
	for _, a := range aggregates {
		totalSpend += a.Spend
		adsetSpend[a.AdsetID] += a.Spend
	}
	avgSpend := totalSpend / float64(len(aggregates))

	var eaters []domain.BudgetEater
	for _, a := range aggregates {
		cpl := a.CPL()
		share := 0.0
		if s := adsetSpend[a.AdsetID]; s > 0 {
			share = a.Spend / s * 100
		}

		var severity domain.EaterSeverity
		var reason string
		switch {
		case targetCPL > 0 && a.Leads > 0 && cpl > targetCPL*eaterCriticalCPLRatio:
			severity = domain.EaterCritical
			reason = fmt.Sprintf("CPL $%.2f over 3x target $%.2f", cpl, targetCPL)
		case a.Leads == 0 && a.Spend >= avgSpend*eaterHighSpendRatio:
			severity = domain.EaterHigh
			reason = fmt.Sprintf("0 leads, spend $%.2f at least 2x avg $%.2f", a.Spend, avgSpend)
		case targetCPL > 0 && a.Leads > 0 && cpl > targetCPL*eaterMediumCPLRatio && share > eaterShareThreshold:
			severity = domain.EaterMedium
			reason = fmt.Sprintf("CPL $%.2f over 1.5x target, %.0f%% of ad set spend", cpl, share)
		default:
			continue
		}

		eaters = append(eaters, domain.BudgetEater{
			UnitID:   a.UnitID,
			Name:     a.AdName,
			Severity: severity,
			Spend:    a.Spend,
			Leads:    a.Leads,
			CPL:      cpl,
			Reason:   reason,
		})
	}

	order := map[domain.EaterSeverity]int{
		domain.EaterCritical: 0,
		domain.EaterHigh:     1,
		domain.EaterMedium:   2,
	}
	sort.SliceStable(eaters, func(i, j int) bool {
		return order[eaters[i].Severity] < order[eaters[j].Severity]
	})
	return eaters
}
