// show.go implements the "letterloop show" command printing one archived interview.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/letterloop/letterloop/internal/mailer"
)

func newShowCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print the transcript and summary of an archived interview",
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

			ctx := cmd.Context()
			iv, err := store.GetInterview(ctx, args[0])
			if err != nil {
				return err
			}
			transcript, err := store.Transcript(ctx, iv.ID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Interview %s\n", iv.ID)
			if iv.UserName != "" {
				fmt.Fprintf(out, "Name: %s\n", iv.UserName)
			}
			fmt.Fprintf(out, "Status: %s\n", iv.Status)
			switch {
			case iv.EmailSent:
				fmt.Fprintln(out, "Email: sent")
			case iv.DeliveryError != "":
				fmt.Fprintf(out, "Email: failed (%s)\n", iv.DeliveryError)
			default:
				fmt.Fprintln(out, "Email: not sent")
			}

			fmt.Fprintf(out, "\n%s\n", mailer.RenderTranscript(transcript))

			switch {
			case iv.Article != "":
				fmt.Fprintf(out, "\n--- Summary ---\n%s\n", iv.Article)
			case iv.SummaryError != "":
				fmt.Fprintf(out, "\n--- Summary error ---\n%s\n", iv.SummaryError)
			}
			return nil
		},
	}
}
