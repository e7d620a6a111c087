// resend.go implements the "letterloop resend" command.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/letterloop/letterloop/internal/interview"
	"github.com/letterloop/letterloop/internal/session"
)

func newResendCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "resend <id>",
		Short: "Deliver an archived interview again without regenerating the summary",
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
			if iv.Status != session.StatusComplete {
				return fmt.Errorf("interview %s is not complete", iv.ID)
			}
			transcript, err := store.Transcript(ctx, iv.ID)
			if err != nil {
				return err
			}

			del, err := e.deliverer(cmd.OutOrStdout())
			if err != nil {
				return fmt.Errorf("configuring email: %w", err)
			}

			userEmail := iv.UserEmail
			if !e.cfg.Email.SendToUser {
				userEmail = ""
			}
			d := interview.Delivery{
				SessionID:  iv.ID,
				Recipients: interview.Recipients(e.cfg.Email.Developer, userEmail),
				UserName:   iv.UserName,
				Transcript: transcript,
				Summary:    iv.Article,
				Error:      iv.SummaryError,
			}

			fin := interview.NewFinalizer(nil, del, e.logger, nil)
			sendErr := fin.Deliver(ctx, d)

			errText := ""
			if sendErr != nil {
				errText = sendErr.Error()
			}
			if err := store.MarkEmailSent(ctx, iv.ID, sendErr == nil, errText); err != nil {
				return err
			}
			if sendErr != nil {
				return fmt.Errorf("delivering %s: %w", iv.ID, sendErr)
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "Delivered %s to %d recipient(s).\n", iv.ID, len(d.Recipients))
			return nil
		},
	}
}
