package scoring_test

import (
	"testing"

	"github.com/adpilot/meta-ads-monitor/internal/domain"
	"github.com/adpilot/meta-ads-monitor/internal/service/scoring"
)

func TestComputeHealthNilWithoutTarget(t *testing.T) {
	if got := scoring.ComputeHealth(scoring.HealthInput{CPLYesterday: 12}, 0); got != nil {
		t.Fatalf("expected nil report without a target CPL, got %+v", got)
	}
}

func TestHealthGapFactor(t *testing.T) {
	const target = 10.0
	tests := []struct {
		ratio float64
		want  float64
	}{
		{0.4, 45},
		{0.5, 45},
		{0.6, 37.5},
		{0.7, 30},
		{0.85, 15},
		{1.0, 0},
		{1.25, -15},
		{1.5, -30},
		{1.75, -37.5},
		{2.0, -45},
		{3.0, -45},
	}
	for _, tt := range tests {
		rep := scoring.ComputeHealth(scoring.HealthInput{CPLYesterday: tt.ratio * target}, target)
		if rep == nil {
			t.Fatalf("ratio %v: expected a report", tt.ratio)
		}
		if !almostEqual(rep.GapFactor, tt.want) {
			t.Fatalf("ratio %v: expected gap %v, got %v", tt.ratio, tt.want, rep.GapFactor)
		}
	}
}

func TestHealthGapFactorUnknownCPL(t *testing.T) {
	rep := scoring.ComputeHealth(scoring.HealthInput{CPLYesterday: 0}, 10)
	if rep.GapFactor != 0 {
		t.Fatalf("no leads means no gap signal, got %v", rep.GapFactor)
	}
}

func TestHealthTrendFactor(t *testing.T) {
	tests := []struct {
		name  string
		cpl3d float64
		cpl7d float64
		want  float64
	}{
		{"improving 20 percent", 8, 10, 15},
		{"worsening 20 percent", 12, 10, -15},
		{"small move", 10.5, 10, -3.75},
		{"clamped past 20 percent", 20, 10, -15},
		{"missing baseline", 8, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rep := scoring.ComputeHealth(scoring.HealthInput{CPL3d: tt.cpl3d, CPL7d: tt.cpl7d}, 10)
			if !almostEqual(rep.TrendFactor, tt.want) {
				t.Fatalf("expected trend %v, got %v", tt.want, rep.TrendFactor)
			}
		})
	}
}

func TestHealthDiagnostics(t *testing.T) {
	rep := scoring.ComputeHealth(scoring.HealthInput{
		CTR:       0.5,
		CPM:       14,
		MedianCPM: 10,
		Frequency: 2.5,
	}, 10)
	if !almostEqual(rep.Diagnostics, -30) {
		t.Fatalf("expected all three deductions (-30), got %v", rep.Diagnostics)
	}

	clean := scoring.ComputeHealth(scoring.HealthInput{
		CTR:       1.5,
		CPM:       10,
		MedianCPM: 10,
		Frequency: 1.0,
	}, 10)
	if clean.Diagnostics != 0 {
		t.Fatalf("expected no deductions, got %v", clean.Diagnostics)
	}
}

func TestHealthTodayAdjustment(t *testing.T) {
	tests := []struct {
		name        string
		cplToday    float64
		cplYest     float64
		impressions int64
		want        float64
	}{
		{"fifteen percent better", 8.5, 10, 600, 15},
		{"capped at thirty", 4, 10, 600, 30},
		{"worse today", 12, 10, 600, 0},
		{"thin day ignored", 4, 10, 400, 0},
		{"no leads today", 0, 10, 600, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rep := scoring.ComputeHealth(scoring.HealthInput{
				CPLToday:         tt.cplToday,
				CPLYesterday:     tt.cplYest,
				ImpressionsToday: tt.impressions,
			}, 100) // target far away so the gap factor stays flat at 45
			if !almostEqual(rep.TodayAdj, tt.want) {
				t.Fatalf("expected today adjustment %v, got %v", tt.want, rep.TodayAdj)
			}
		})
	}
}

func TestHealthVolumeFactor(t *testing.T) {
	tests := []struct {
		impressions int64
		want        float64
	}{
		{400, 0.6},
		{500, 0.7},
		{999, 0.7},
		{1000, 0.8},
		{1999, 0.8},
		{2000, 0.9},
		{4999, 0.9},
		{5000, 1.0},
	}
	for _, tt := range tests {
		rep := scoring.ComputeHealth(scoring.HealthInput{ImpressionsToday: tt.impressions}, 10)
		if rep.VolumeFactor != tt.want {
			t.Fatalf("impressions %d: expected factor %v, got %v", tt.impressions, tt.want, rep.VolumeFactor)
		}
	}
}

func TestHealthScoreCombination(t *testing.T) {
	// half the target (+45), a 20% intraday improvement (+20), a 20% drop
	// against the weekly CPL (+15), at full volume: 80
	rep := scoring.ComputeHealth(scoring.HealthInput{
		CPLYesterday:     5,
		CPLToday:         4,
		CPL3d:            8,
		CPL7d:            10,
		ImpressionsToday: 5000,
	}, 10)

	if rep.Score != 80 {
		t.Fatalf("expected combined score 80, got %v", rep.Score)
	}
	if rep.Class != domain.HealthVeryGood {
		t.Fatalf("expected very_good, got %s", rep.Class)
	}
}

func TestHealthClassification(t *testing.T) {
	const target = 10.0
	// each yesterday CPL exercises one band of the gap curve at full volume
	tests := []struct {
		cplYesterday float64
		want         domain.HealthClass
	}{
		{5, domain.HealthVeryGood},
		{9, domain.HealthGood},
		{10, domain.HealthNeutral},
		{12, domain.HealthSlightlyBad},
		{25, domain.HealthBad},
	}
	for _, tt := range tests {
		rep := scoring.ComputeHealth(scoring.HealthInput{
			CPLYesterday:     tt.cplYesterday,
			ImpressionsToday: 5000,
		}, target)
		if rep.Class != tt.want {
			t.Fatalf("cpl %v: expected %s, got %s (score %v)", tt.cplYesterday, tt.want, rep.Class, rep.Score)
		}
	}
}

func TestMedianCPM(t *testing.T) {
	if got := scoring.MedianCPM(nil); got != 0 {
		t.Fatalf("expected 0 for no observations, got %v", got)
	}
	if got := scoring.MedianCPM([]float64{4, 0, 8, 6, -1}); !almostEqual(got, 6) {
		t.Fatalf("expected median 6 ignoring non-positive values, got %v", got)
	}
	if got := scoring.MedianCPM([]float64{4, 8}); !almostEqual(got, 6) {
		t.Fatalf("expected mean of middle pair 6, got %v", got)
	}
}
