package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"auditum-hq/callisto/pkg/audit"
	"auditum-hq/callisto/pkg/storage"
)

var (
	historyLimit int
	historyID    string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List stored audit runs",
	Long: `List stored audit runs from the history database, or print one
full run as JSON with --id.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return showHistory(cmd.Context())
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum runs to list")
	historyCmd.Flags().StringVar(&historyID, "id", "", "print one run in full by audit ID")
	rootCmd.AddCommand(historyCmd)
}

func showHistory(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if !cfg.Storage.Enabled {
		return fmt.Errorf("storage is disabled in configuration; no history available")
	}

	store, err := storage.NewSQLiteStore(storage.DefaultSQLiteConfig(cfg.Storage.Path), nil)
	if err != nil {
		return err
	}
	defer store.Close()

	if historyID != "" {
		result, err := store.GetResult(ctx, historyID)
		if err != nil {
			return err
		}
		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	runs, err := store.ListRuns(ctx, historyLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No stored audit runs.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "AUDIT ID\tTIMESTAMP\tHOST\tRISK\tFINDINGS\tDURATION")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d (%s)\t%d\t%.1fs\n",
			run.AuditID,
			run.Timestamp.UTC().Format("2006-01-02 15:04:05"),
			run.Hostname,
			run.RiskScore,
			audit.RiskLevel(run.RiskScore),
			run.TotalFindings,
			run.DurationSeconds)
	}
	return w.Flush()
}
