package audit

import (
	"testing"
)

func TestSeverityRank_Ordering(t *testing.T) {
	ordered := []Severity{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow, SeverityInfo}
	for i := 1; i < len(ordered); i++ {
		if ordered[i-1].Rank() >= ordered[i].Rank() {
			t.Errorf("%s must rank before %s", ordered[i-1], ordered[i])
		}
	}
	if Severity("WEIRD").Rank() <= SeverityInfo.Rank() {
		t.Error("unknown severity must sort after INFO")
	}
	if Severity("WEIRD").Known() {
		t.Error("unknown severity must not report as known")
	}
}

func TestSortFindings_SortsBySeverity(t *testing.T) {
	findings := []Finding{
		{CheckID: "A", Severity: SeverityInfo},
		{CheckID: "B", Severity: SeverityCritical},
		{CheckID: "C", Severity: Severity("WEIRD")},
		{CheckID: "D", Severity: SeverityHigh},
		{CheckID: "E", Severity: SeverityMedium},
	}

	SortFindings(findings)

	want := []string{"B", "D", "E", "A", "C"}
	for i, id := range want {
		if findings[i].CheckID != id {
			t.Fatalf("position %d: expected %s, got %s", i, id, findings[i].CheckID)
		}
	}
}

func TestSortFindings_StableWithinSeverity(t *testing.T) {
	findings := []Finding{
		{CheckID: "first", Severity: SeverityHigh},
		{CheckID: "second", Severity: SeverityHigh},
		{CheckID: "third", Severity: SeverityHigh},
	}

	SortFindings(findings)

	want := []string{"first", "second", "third"}
	for i, id := range want {
		if findings[i].CheckID != id {
			t.Errorf("equal severities must keep insertion order, got %s at %d", findings[i].CheckID, i)
		}
	}
}

func TestRiskLevel_Buckets(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{0, "LOW"},
		{24, "LOW"},
		{25, "MEDIUM"},
		{49, "MEDIUM"},
		{50, "HIGH"},
		{74, "HIGH"},
		{75, "CRITICAL"},
		{100, "CRITICAL"},
	}
	for _, tt := range tests {
		if got := RiskLevel(tt.score); got != tt.want {
			t.Errorf("RiskLevel(%d) = %s, want %s", tt.score, got, tt.want)
		}
	}
}

func TestCountBySeverity(t *testing.T) {
	r := Result{Findings: []Finding{
		{Severity: SeverityCritical},
		{Severity: SeverityHigh},
		{Severity: SeverityHigh},
		{Severity: SeverityInfo},
	}}

	counts := r.CountBySeverity()
	if counts[SeverityCritical] != 1 || counts[SeverityHigh] != 2 || counts[SeverityInfo] != 1 {
		t.Errorf("unexpected counts: %v", counts)
	}
	if counts[SeverityMedium] != 0 {
		t.Errorf("expected zero MEDIUM, got %d", counts[SeverityMedium])
	}
}
