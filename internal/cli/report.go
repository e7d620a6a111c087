// report.go implements the "letterloop report" command for per-interview statistics.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/letterloop/letterloop/internal/config"
	"github.com/letterloop/letterloop/internal/report"
)

func newReportCmd(root *rootOptions) *cobra.Command {
	var write bool

	cmd := &cobra.Command{
		Use:   "report <id>",
		Short: "Show question-by-question statistics for an archived interview",
		Args:  cobra.ExactArgs(1),
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

			events, err := e.logger.ReadAll()
			if err != nil {
				// Non-fatal: the report falls back to archive data only.
				fmt.Fprintf(cmd.ErrOrStderr(), "Warning: reading event log: %v\n", err)
				events = nil
			}

			r, err := report.Generate(cmd.Context(), store, events, args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), report.FormatReport(r))

			if write {
				dir := config.Resolve(e.dir, e.cfg.LogDir)
				if dir == "" {
					dir = e.dir
				}
				path, err := report.WriteReport(dir, r)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&write, "write", false, "Also save the report next to the event log")
	return cmd
}
