package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"auditum-hq/callisto/pkg/audit"
	"auditum-hq/callisto/pkg/config"
	"auditum-hq/callisto/pkg/schedule"
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run audits on a schedule",
	Long: `Run Callisto as a long-lived process: audits fire on the configured
cron schedule, the configuration file is hot-reloaded on change, and
Prometheus metrics are served when enabled.

Reloading swaps the audit pipeline between runs; an in-flight audit
finishes under the configuration it started with.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runDaemon(ctx)
	},
}

func init() {
	rootCmd.AddCommand(daemonCmd)
}

func runDaemon(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	c, err := wire(cfg)
	if err != nil {
		return err
	}
	defer c.close()

	// Current pipeline, swapped atomically on config reload.
	var mu sync.Mutex
	current := c

	runOnce := func(ctx context.Context) (*audit.Result, error) {
		mu.Lock()
		active := current
		mu.Unlock()

		result, err := active.orch.RunAudit(ctx)
		if err != nil {
			return nil, err
		}
		if _, err := active.reporter.Write(result, active.cfg.Report.Formats); err != nil {
			active.logger.Warn("failed to write scheduled reports", "error", err)
		}
		return result, nil
	}

	if !c.cfg.Schedule.Enabled {
		c.logger.Warn("scheduler disabled in config; daemon will only serve metrics and watch config")
	} else {
		scheduler, err := schedule.NewScheduler(c.cfg.Schedule.Cron, runOnce, c.logger)
		if err != nil {
			return err
		}
		if err := scheduler.Start(ctx); err != nil {
			return err
		}
		defer scheduler.Stop()
	}

	if c.metrics != nil {
		srv := &http.Server{
			Addr:              c.cfg.Metrics.ListenAddress,
			Handler:           metricsMux(c),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			c.logger.Info("metrics listener started", "address", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				c.logger.Error("metrics listener failed", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()
	}

	watcher, err := config.NewWatcher(cfgFile, c.logger)
	if err != nil {
		c.logger.Warn("config watching unavailable", "error", err)
		<-ctx.Done()
		return nil
	}

	return watcher.Watch(ctx, func(next *config.Config) {
		rebuilt, err := wire(next)
		if err != nil {
			c.logger.Error("config reload produced unusable pipeline, keeping previous", "error", err)
			return
		}

		mu.Lock()
		old := current
		current = rebuilt
		mu.Unlock()
		old.close()
	})
}

func metricsMux(c *components) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.metrics.Handler())
	return mux
}
