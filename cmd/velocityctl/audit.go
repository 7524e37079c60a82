package main

import (
	"github.com/spf13/cobra"
)

var auditCmd = &cobra.Command{
	Use:   "audit <repository>",
	Short: "Report classification drift without fixing it",
	Long: `Audit recomputes, for every pull request milestone, the bucket its timestamp
maps to and reports every disagreement with the stored bucket reference.
Nothing is mutated.`,
	Args: cobra.ExactArgs(1),
	RunE: runAudit,
}

func init() {
	rootCmd.AddCommand(auditCmd)
}

func runAudit(cmd *cobra.Command, args []string) error {
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

	discrepancies, err := eng.audit.Audit(ctx, repo.ID)
	if err != nil {
		return err
	}

	if len(discrepancies) == 0 {
		logger.Infof("repository %s: no drift", repo.Name)
		return nil
	}

	for _, d := range discrepancies {
		entry := logger.WithField("pr", d.Number).
			WithField("milestone", string(d.Milestone)).
			WithField("kind", string(d.Kind))
		if d.StoredBucketID != nil {
			entry = entry.WithField("stored", *d.StoredBucketID)
		}
		if d.ExpectedBucketID != nil {
			entry = entry.WithField("expected", *d.ExpectedBucketID)
		}
		entry.Warn("drift")
	}
	logger.Infof("repository %s: %d discrepancies", repo.Name, len(discrepancies))
	return nil
}
