// questions.go implements the "letterloop questions" command.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newQuestionsCmd(root *rootOptions) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "questions",
		Short: "Print the primary questions in interview order",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(root)
			if err != nil {
				return err
			}
			qs, err := loadQuestions(e, file)
			if err != nil {
				return err
			}
			for i, q := range qs {
				fmt.Fprintf(cmd.OutOrStdout(), "%d. %s\n", i+1, q)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "questions", "", "YAML file with the primary questions")
	return cmd
}
