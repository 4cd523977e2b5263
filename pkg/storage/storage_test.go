package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"auditum-hq/callisto/pkg/audit"
)

func sampleResult(id string, ts time.Time) *audit.Result {
	return &audit.Result{
		AuditID:   id,
		Timestamp: ts,
		Platform:  "linux",
		Hostname:  "web-01",
		CollectorResults: map[string]audit.CollectorResult{
			"security": {
				CollectorName: "security",
				Status:        audit.StatusSuccess,
				Findings: []audit.Finding{
					{CheckID: "SEC-SSH-001", Severity: audit.SeverityHigh, Description: "root login enabled", CollectorName: "security"},
				},
				ExecutionTimeMS: 12.5,
			},
		},
		Findings: []audit.Finding{
			{CheckID: "SEC-SSH-001", Severity: audit.SeverityHigh, Description: "root login enabled", CollectorName: "security"},
		},
		Analysis: audit.AIAnalysis{
			RiskScore:        25,
			ExecutiveSummary: "One high severity finding detected.",
			Recommendations:  []string{"Disable root login"},
		},
		Remediations: map[string]audit.RemediationScript{
			"SEC-SSH-001": {
				Filename: "remediate_SEC-SSH-001.sh",
				Content:  "#!/bin/bash\necho fix\n",
				Finding:  audit.Finding{CheckID: "SEC-SSH-001"},
			},
		},
		DurationSeconds: 3.2,
	}
}

// stores returns both Store implementations against the same test surface.
func stores(t *testing.T) map[string]Store {
	t.Helper()
	sqlite, err := NewSQLiteStore(DefaultSQLiteConfig(filepath.Join(t.TempDir(), "history.db")), nil)
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { sqlite.Close() })
	return map[string]Store{
		"sqlite": sqlite,
		"memory": NewMemoryStore(),
	}
}

func TestStore_SaveAndGetRoundTrip(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			want := sampleResult("20260830_120000_abcd1234", time.Now().UTC().Truncate(time.Second))

			if err := store.SaveResult(ctx, want); err != nil {
				t.Fatalf("SaveResult: %v", err)
			}

			got, err := store.GetResult(ctx, want.AuditID)
			if err != nil {
				t.Fatalf("GetResult: %v", err)
			}
			if got.AuditID != want.AuditID || got.Hostname != want.Hostname {
				t.Errorf("round trip mismatch: got %s/%s", got.AuditID, got.Hostname)
			}
			if len(got.Findings) != 1 || got.Findings[0].CheckID != "SEC-SSH-001" {
				t.Errorf("findings not preserved: %+v", got.Findings)
			}
			if got.Analysis.RiskScore != 25 {
				t.Errorf("analysis not preserved: %+v", got.Analysis)
			}
			if _, ok := got.Remediations["SEC-SSH-001"]; !ok {
				t.Error("remediation scripts not preserved")
			}
		})
	}
}

func TestStore_GetResultNotFound(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := store.GetResult(context.Background(), "missing")
			if !errors.Is(err, ErrNotFound) {
				t.Errorf("expected ErrNotFound, got %v", err)
			}
		})
	}
}

func TestStore_ListRunsNewestFirst(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			base := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
			for i, id := range []string{"run_a", "run_b", "run_c"} {
				r := sampleResult(id, base.Add(time.Duration(i)*time.Hour))
				if err := store.SaveResult(ctx, r); err != nil {
					t.Fatalf("SaveResult %s: %v", id, err)
				}
			}

			runs, err := store.ListRuns(ctx, 2)
			if err != nil {
				t.Fatalf("ListRuns: %v", err)
			}
			if len(runs) != 2 {
				t.Fatalf("expected 2 runs, got %d", len(runs))
			}
			if runs[0].AuditID != "run_c" || runs[1].AuditID != "run_b" {
				t.Errorf("expected newest first, got %s, %s", runs[0].AuditID, runs[1].AuditID)
			}
			if runs[0].TotalFindings != 1 || runs[0].RiskScore != 25 {
				t.Errorf("summary columns wrong: %+v", runs[0])
			}
			if runs[0].ResultsHash == "" {
				t.Error("expected a results hash")
			}
		})
	}
}

func TestSQLiteStore_ReopenKeepsHistory(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "history.db")

	store, err := NewSQLiteStore(DefaultSQLiteConfig(path), nil)
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	if err := store.SaveResult(ctx, sampleResult("persisted_run", time.Now().UTC())); err != nil {
		t.Fatalf("SaveResult: %v", err)
	}
	store.Close()

	reopened, err := NewSQLiteStore(DefaultSQLiteConfig(path), nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	if _, err := reopened.GetResult(ctx, "persisted_run"); err != nil {
		t.Errorf("expected run to survive reopen, got %v", err)
	}
}

func TestStore_HashIsDeterministic(t *testing.T) {
	r := sampleResult("hash_run", time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC))
	h1, _, err := hashResult(r)
	if err != nil {
		t.Fatalf("hashResult: %v", err)
	}
	h2, _, _ := hashResult(r)
	if h1 != h2 {
		t.Errorf("hash not deterministic: %s vs %s", h1, h2)
	}
	if len(h1) != 64 {
		t.Errorf("expected hex sha256, got %q", h1)
	}
}
