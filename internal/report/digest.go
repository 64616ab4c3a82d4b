// Package report renders scoring run output into operator-facing text
// using Liquid templates.
package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/osteele/liquid"

	"github.com/adpilot/meta-ads-monitor/internal/domain"
)

// maxDigestItems caps how many risky units a digest lists.
const maxDigestItems = 5

const digestTemplate = `Ad risk digest for act_{{ account_id }} ({{ generated_at }})
{{ total_units }} units scored: {{ high_risk }} high / {{ medium_risk }} medium / {{ low_risk }} low. Portfolio trend {{ overall_trend }}.
{% if alert_level != "none" %}ALERT {{ alert_level | upcase }}: {{ high_risk }} of {{ total_units }} units at high risk.
{% endif %}{% if risky.size > 0 %}
Needs attention:
{% for item in risky %}{{ forloop.index }}. {{ item.name }} [{{ item.tier }}, score {{ item.score | score }}] {{ item.drivers }}{% if item.low_confidence %} (low confidence){% endif %}
{% endfor %}{% endif %}{% if eaters.size > 0 %}
Budget eaters:
{% for e in eaters %}- {{ e.name }} ({{ e.severity }}): {{ e.spend | currency }} for {{ e.leads }} leads. {{ e.reason }}
{% endfor %}{% endif %}{% if ready.size > 0 %}
Ready to rotate:
{% for c in ready %}- {{ c.name }} ({{ c.format }}){% if c.has_score %}, risk {{ c.risk | score }}{% else %}, no recent data{% endif %}
{% endfor %}{% endif %}{% if errors_count > 0 %}
Scoring errors this run: {{ errors_count }}.
{% endif %}`

// DigestRenderer turns a RunOutput into a chat-ready plain text digest.
type DigestRenderer struct {
	engine   *liquid.Engine
	template *liquid.Template
}

// NewDigestRenderer builds the Liquid engine and compiles the digest
// template once.
func NewDigestRenderer() (*DigestRenderer, error) {
	engine := liquid.NewEngine()

	// Score with one decimal: {{ item.score | score }}
	engine.RegisterFilter("score", func(value float64) string {
		return fmt.Sprintf("%.1f", value)
	})

	// Currency formatting: {{ e.spend | currency }}
	engine.RegisterFilter("currency", func(value float64) string {
		return fmt.Sprintf("$%.2f", value)
	})

	tpl, err := engine.ParseString(digestTemplate)
	if err != nil {
		return nil, fmt.Errorf("parsing digest template: %w", err)
	}

	return &DigestRenderer{engine: engine, template: tpl}, nil
}

// Render produces the digest text for one run output.
func (r *DigestRenderer) Render(out *domain.RunOutput) (string, error) {
	text, err := r.template.RenderString(bindings(out))
	if err != nil {
		return "", fmt.Errorf("rendering digest: %w", err)
	}
	return text, nil
}

// bindings flattens a RunOutput into the map the template reads. Liquid
// resolves maps and slices natively, so every value is converted here.
func bindings(out *domain.RunOutput) map[string]interface{} {
	risky := make([]map[string]interface{}, 0, maxDigestItems)
	for _, item := range out.Items {
		if item.Tier == domain.TierLow {
			continue
		}
		if len(risky) == maxDigestItems {
			break
		}
		risky = append(risky, map[string]interface{}{
			"name":           displayName(item),
			"tier":           string(item.Tier),
			"score":          item.Score,
			"drivers":        describeComponents(item.Components),
			"low_confidence": item.Confidence == domain.ConfidenceLow,
		})
	}

	eaters := make([]map[string]interface{}, 0, len(out.Summary.BudgetEaters))
	for _, e := range out.Summary.BudgetEaters {
		name := e.Name
		if name == "" {
			name = e.UnitID
		}
		eaters = append(eaters, map[string]interface{}{
			"name":     name,
			"severity": string(e.Severity),
			"spend":    e.Spend,
			"leads":    e.Leads,
			"reason":   e.Reason,
		})
	}

	ready := make([]map[string]interface{}, 0, len(out.ReadyCreatives))
	for _, c := range out.ReadyCreatives {
		entry := map[string]interface{}{
			"name":      c.Name,
			"format":    string(c.Format),
			"has_score": c.RiskScore != nil,
		}
		if c.RiskScore != nil {
			entry["risk"] = *c.RiskScore
		}
		ready = append(ready, entry)
	}

	return map[string]interface{}{
		"account_id":    out.AccountID,
		"generated_at":  out.GeneratedAt.UTC().Format("2006-01-02 15:04 UTC"),
		"total_units":   out.Summary.TotalUnits,
		"high_risk":     out.Summary.HighRisk,
		"medium_risk":   out.Summary.MediumRisk,
		"low_risk":      out.Summary.LowRisk,
		"overall_trend": string(out.Summary.OverallTrend),
		"alert_level":   string(out.Summary.AlertLevel),
		"risky":         risky,
		"eaters":        eaters,
		"ready":         ready,
		"errors_count":  len(out.Errors),
	}
}

func displayName(item domain.RiskScoreResult) string {
	if item.Name != "" {
		return item.Name
	}
	return item.UnitID
}

// describeComponents lists the score drivers largest first, skipping
// factors that contributed nothing.
func describeComponents(c domain.ScoreComponents) string {
	type driver struct {
		label string
		value float64
	}
	drivers := []driver{
		{"CPM growth", c.CPMGrowth},
		{"CTR decline", c.CTRDecline},
		{"frequency", c.Frequency},
		{"budget jump", c.BudgetJump},
		{"rank drop", c.RankDrop},
	}
	sort.SliceStable(drivers, func(i, j int) bool { return drivers[i].value > drivers[j].value })

	parts := make([]string, 0, len(drivers))
	for _, d := range drivers {
		if d.value <= 0 {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s +%.1f", d.label, d.value))
	}
	if len(parts) == 0 {
		return "no single driver"
	}
	return strings.Join(parts, ", ")
}
