package schedule

import (
	"context"
	"testing"

	"auditum-hq/callisto/pkg/audit"
)

func noopRun(ctx context.Context) (*audit.Result, error) {
	return &audit.Result{AuditID: "noop"}, nil
}

func TestNewScheduler_ValidatesSpec(t *testing.T) {
	tests := []struct {
		name    string
		spec    string
		wantErr bool
	}{
		{"daily", "0 3 * * *", false},
		{"every six hours", "0 */6 * * *", false},
		{"empty", "", true},
		{"garbage", "not a cron line", true},
		{"too many fields", "0 0 0 0 0 0 0", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewScheduler(tt.spec, noopRun, nil)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewScheduler(%q) error = %v, wantErr %v", tt.spec, err, tt.wantErr)
			}
		})
	}
}

func TestScheduler_StartStop(t *testing.T) {
	s, err := NewScheduler("0 3 * * *", noopRun, nil)
	if err != nil {
		t.Fatalf("NewScheduler: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := s.Start(ctx); err == nil {
		t.Error("second Start must fail while running")
	}

	cancel()
	s.Stop() // idempotent with the context-triggered stop
}
