package scoring_test

import (
	"strings"
	"testing"

	"github.com/adpilot/meta-ads-monitor/internal/domain"
	"github.com/adpilot/meta-ads-monitor/internal/service/scoring"
)

func fatigueWindows(frequency, currentCTR, baselineCTR float64) (domain.MetricSnapshot, domain.MetricSnapshot) {
	current := domain.MetricSnapshot{Frequency: frequency, CTR: currentCTR}
	baseline := domain.MetricSnapshot{Frequency: 1.5, CTR: baselineCTR}
	return current, baseline
}

func TestDetectFatigueHealthy(t *testing.T) {
	current, baseline := fatigueWindows(2.0, 2.0, 2.0)
	if report := scoring.DetectFatigue(current, baseline); report != nil {
		t.Fatalf("expected nil report for a healthy unit, got %+v", report)
	}
}

func TestDetectFatigueTriggers(t *testing.T) {
	tests := []struct {
		name        string
		frequency   float64
		currentCTR  float64
		baselineCTR float64
		fatigued    bool
		urgent      bool
	}{
		{"frequency at threshold", 3.0, 2.0, 2.0, false, false},
		{"frequency over threshold", 3.5, 2.0, 2.0, true, false},
		{"frequency urgent", 5.0, 2.0, 2.0, true, true},
		{"ctr decline at threshold", 1.5, 1.6, 2.0, false, false},
		{"ctr decline over threshold", 1.5, 1.5, 2.0, true, false},
		{"ctr decline urgent", 1.5, 1.2, 2.0, true, true},
		{"ctr rising", 1.5, 2.5, 2.0, false, false},
		{"no baseline ctr", 1.5, 0.1, 0, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			current, baseline := fatigueWindows(tt.frequency, tt.currentCTR, tt.baselineCTR)
			report := scoring.DetectFatigue(current, baseline)
			if !tt.fatigued {
				if report != nil {
					t.Fatalf("expected nil report, got %+v", report)
				}
				return
			}
			if report == nil {
				t.Fatal("expected a fatigue report, got nil")
			}
			if !report.Fatigued {
				t.Error("report not marked fatigued")
			}
			if report.Urgent != tt.urgent {
				t.Errorf("urgent = %v, want %v", report.Urgent, tt.urgent)
			}
			if len(report.Reasons) == 0 {
				t.Error("fatigued report carries no reasons")
			}
		})
	}
}

func TestDetectFatigueFrequencyReason(t *testing.T) {
	current, baseline := fatigueWindows(3.5, 2.0, 2.0)
	report := scoring.DetectFatigue(current, baseline)
	if report == nil {
		t.Fatal("expected a fatigue report, got nil")
	}
	if len(report.Reasons) != 1 {
		t.Fatalf("reasons = %v, want exactly one", report.Reasons)
	}
	if got, want := report.Reasons[0], "frequency 3.5 over 3.0"; got != want {
		t.Errorf("reason = %q, want %q", got, want)
	}
}

func TestDetectFatigueCTRReason(t *testing.T) {
	// CTR 2.0 down to 1.5 is a 25% decline.
	current, baseline := fatigueWindows(1.5, 1.5, 2.0)
	report := scoring.DetectFatigue(current, baseline)
	if report == nil {
		t.Fatal("expected a fatigue report, got nil")
	}
	if len(report.Reasons) != 1 {
		t.Fatalf("reasons = %v, want exactly one", report.Reasons)
	}
	if got, want := report.Reasons[0], "CTR down 25.0% vs baseline"; got != want {
		t.Errorf("reason = %q, want %q", got, want)
	}
}

func TestDetectFatigueBothSignals(t *testing.T) {
	current, baseline := fatigueWindows(3.2, 1.5, 2.0)
	report := scoring.DetectFatigue(current, baseline)
	if report == nil {
		t.Fatal("expected a fatigue report, got nil")
	}
	if len(report.Reasons) != 2 {
		t.Fatalf("reasons = %v, want two", report.Reasons)
	}
	if !strings.HasPrefix(report.Reasons[0], "frequency") {
		t.Errorf("first reason = %q, want the frequency signal first", report.Reasons[0])
	}
	if !strings.HasPrefix(report.Reasons[1], "CTR down") {
		t.Errorf("second reason = %q, want the CTR signal", report.Reasons[1])
	}
	if report.Urgent {
		t.Error("neither signal past the urgent factor, report should not be urgent")
	}
}

func TestDetectFatigueUrgentOnEitherSignal(t *testing.T) {
	// Frequency 5.0 is past 1.5x the threshold even though CTR held.
	current, baseline := fatigueWindows(5.0, 2.0, 2.0)
	report := scoring.DetectFatigue(current, baseline)
	if report == nil || !report.Urgent {
		t.Fatalf("expected an urgent report, got %+v", report)
	}

	// A 40% CTR collapse alone is urgent too.
	current, baseline = fatigueWindows(1.5, 1.2, 2.0)
	report = scoring.DetectFatigue(current, baseline)
	if report == nil || !report.Urgent {
		t.Fatalf("expected an urgent report, got %+v", report)
	}
}
