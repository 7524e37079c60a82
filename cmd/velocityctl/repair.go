package main

import (
	"github.com/spf13/cobra"
)

var repairDryRun bool

var repairCmd = &cobra.Command{
	Use:   "repair <repository>",
	Short: "Fix classification drift and recompute affected buckets",
	Long: `Repair reassigns, assigns or clears drifted bucket references and recomputes
the statistics of every affected bucket. Idempotent: a second run finds
nothing to fix. By default only reports what would change; pass
--dry-run=false to apply.`,
	Args: cobra.ExactArgs(1),
	RunE: runRepair,
}

func init() {
	repairCmd.Flags().BoolVar(&repairDryRun, "dry-run", true, "report without mutating")
	rootCmd.AddCommand(repairCmd)
}

func runRepair(cmd *cobra.Command, args []string) error {
	eng, err := openEngine()
	if err != nil {
		return err
	}
	defer eng.close()

	ctx := cmd.Context()
	repo, err := eng.resolveRepo(ctx, args[0])
	if err != nil {
		return err
	}

	report, err := eng.audit.Repair(ctx, repo.ID, repairDryRun)
	if err != nil {
		return err
	}

	mode := "applied"
	if report.DryRun {
		mode = "dry-run"
	}
	logger.Infof("repository %s (%s): reassigned=%d assigned=%d cleared=%d buckets_recomputed=%d",
		repo.Name, mode, report.Reassigned, report.Assigned, report.Cleared, report.BucketsRecomputed)
	return nil
}
