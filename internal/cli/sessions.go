// sessions.go implements the "letterloop sessions" command listing archived interviews.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/letterloop/letterloop/internal/session"
)

func newSessionsCmd(root *rootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List archived interviews",
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

			summaries, err := store.ListInterviews(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("listing interviews: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(summaries) == 0 {
				fmt.Fprintln(out, "No interviews archived yet. Start one with: letterloop")
				return nil
			}
			for _, s := range summaries {
				name := s.UserName
				if name == "" {
					name = "-"
				}
				fmt.Fprintf(out, "%-36s  %-16s  %-11s  %3d msgs  %-12s  %s\n",
					s.ID, name, s.Status, s.Messages, emailLabel(s), s.UpdatedAt.Format("2006-01-02 15:04"))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of interviews to list")
	return cmd
}

// emailLabel maps archive flags to a display-friendly delivery status.
func emailLabel(s session.Summary) string {
	switch {
	case s.EmailSent && s.HasError:
		return "sent (error)"
	case s.EmailSent:
		return "sent"
	default:
		return "not sent"
	}
}
