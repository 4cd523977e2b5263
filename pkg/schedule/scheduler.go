package schedule

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"

	"auditum-hq/callisto/pkg/audit"
)

// RunFunc executes one audit. The scheduler treats errors as log-and-
// continue: a failed scheduled run never stops the schedule.
type RunFunc func(ctx context.Context) (*audit.Result, error)

// Scheduler triggers audits on a cron schedule.
//
// Common cron expressions:
//   - "0 3 * * *"    daily at 3 AM
//   - "0 */6 * * *"  every 6 hours
//   - "0 0 * * 0"    weekly on Sunday at midnight
type Scheduler struct {
	spec   string
	run    RunFunc
	cron   *cron.Cron
	logger *slog.Logger

	mu      sync.Mutex
	running bool
}

// NewScheduler creates a scheduler that invokes run per the cron spec.
func NewScheduler(spec string, run RunFunc, logger *slog.Logger) (*Scheduler, error) {
	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, fmt.Errorf("invalid cron schedule %q: %w", spec, err)
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Scheduler{
		spec:   spec,
		run:    run,
		cron:   cron.New(),
		logger: logger,
	}, nil
}

// Start begins scheduling. It returns immediately; runs happen on the
// cron goroutine. The scheduler stops itself when ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return fmt.Errorf("scheduler already running")
	}

	if _, err := s.cron.AddFunc(s.spec, func() { s.runOnce(ctx) }); err != nil {
		return fmt.Errorf("failed to schedule audits: %w", err)
	}

	s.cron.Start()
	s.running = true
	s.logger.Info("audit scheduler started", "schedule", s.spec)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()
	return nil
}

func (s *Scheduler) runOnce(ctx context.Context) {
	s.logger.Info("starting scheduled audit")

	result, err := s.run(ctx)
	if err != nil {
		s.logger.Error("scheduled audit failed", "error", err)
		return
	}
	s.logger.Info("scheduled audit completed",
		"audit_id", result.AuditID,
		"findings", len(result.Findings),
		"risk_score", result.Analysis.RiskScore)
}

// Stop stops the scheduler and waits for a running audit to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	<-s.cron.Stop().Done()
	s.running = false
	s.logger.Info("audit scheduler stopped")
}
