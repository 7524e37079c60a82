package main

import (
	"github.com/spf13/cobra"
)

var backfillCmd = &cobra.Command{
	Use:   "backfill <repository>",
	Short: "Backfill week buckets and recompute statistics",
	Long: `Backfill walks from the repository's earliest milestone timestamp to the
current week, creates any missing week buckets and recomputes every bucket's
cached statistics. Safe to run repeatedly.`,
	Args: cobra.ExactArgs(1),
	RunE: runBackfill,
}

func init() {
	rootCmd.AddCommand(backfillCmd)
}

func runBackfill(cmd *cobra.Command, args []string) error {
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

	buckets, err := eng.stats.GenerateForRepo(ctx, repo.ID)
	if err != nil {
		return err
	}

	logger.Infof("repository %s: %d buckets up to date", repo.Name, len(buckets))
	return nil
}
