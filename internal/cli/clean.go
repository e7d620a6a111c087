// clean.go implements the "letterloop clean" command for pruning the archive.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/letterloop/letterloop/internal/cleanup"
)

func newCleanCmd(root *rootOptions) *cobra.Command {
	var (
		keep      int
		olderThan int
		dryRun    bool
	)

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove old interviews from the archive",
		Long: `Remove old interviews from the archive.

By default, removes interviews not updated within archive.max_age_days
(default 30). Use --older-than to override the age for one run, or
--keep to keep only the N most recent interviews instead.
Use --dry-run to preview what would be removed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(root)
			if err != nil {
				return err
			}
			store, err := e.requireStore()
			if err != nil {
				return err
			}
			defer store.Close()

			ctx := cmd.Context()
			var pruned []string
			if keep > 0 {
				pruned, err = cleanup.PruneKeepRecent(ctx, store, keep, dryRun)
			} else {
				maxAge := olderThan
				if maxAge <= 0 {
					maxAge = e.cfg.Archive.MaxAgeDays
				}
				if maxAge <= 0 {
					maxAge = 30
				}
				pruned, err = cleanup.PruneByAge(ctx, store, maxAge, dryRun)
			}
			if err != nil {
				return fmt.Errorf("cleanup failed: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(pruned) == 0 {
				fmt.Fprintln(out, "No interviews to clean up.")
				return nil
			}

			verb := "Removed"
			if dryRun {
				verb = "Would remove"
			}
			for _, id := range pruned {
				fmt.Fprintf(out, "  %s %s\n", verb, id)
			}
			fmt.Fprintf(out, "%s %d interview(s).\n", verb, len(pruned))
			return nil
		},
	}

	cmd.Flags().IntVar(&keep, "keep", 0, "Keep only the last N interviews (0 = use age-based cleanup)")
	cmd.Flags().IntVar(&olderThan, "older-than", 0, "Remove interviews older than this many days (default: archive.max_age_days)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Preview what would be removed without deleting")
	return cmd
}
