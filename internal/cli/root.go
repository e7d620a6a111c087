// Package cli defines Cobra command definitions for the letterloop CLI.
// This file contains the root command, version flag, and help output.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev" // set via ldflags at build time

// rootOptions holds flags shared by every command.
type rootOptions struct {
	dir string
}

// projectDir returns --dir, or the working directory when unset.
func (o *rootOptions) projectDir() (string, error) {
	if o.dir != "" {
		return o.dir, nil
	}
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting current directory: %w", err)
	}
	return dir, nil
}

// NewRootCmd builds the command tree. Running it without a subcommand starts
// an interview.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	iv := &interviewOptions{root: opts}

	cmd := &cobra.Command{
		Use:   "letterloop",
		Short: "Interview someone and turn the answers into a newsletter piece",
		Long: `Letterloop walks a person through a fixed list of questions, asks
short follow-ups until each answer is rich enough, then writes a
newsletter summary from the conversation and emails it.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInterview(cmd, iv)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.dir, "dir", "", "Project directory holding .letterloop/ (default: current directory)")
	cmd.Flags().StringVar(&iv.name, "name", "", "Name of the person being interviewed")
	cmd.Flags().StringVar(&iv.email, "email", "", "Email address that also receives the summary")
	cmd.Flags().StringVar(&iv.questions, "questions", "", "YAML file with the primary questions")
	cmd.Flags().BoolVar(&iv.mock, "mock", false, "Use the offline generator instead of a real provider")

	cmd.AddCommand(newInitCmd(opts))
	cmd.AddCommand(newQuestionsCmd(opts))
	cmd.AddCommand(newSessionsCmd(opts))
	cmd.AddCommand(newShowCmd(opts))
	cmd.AddCommand(newResendCmd(opts))
	cmd.AddCommand(newReportCmd(opts))
	cmd.AddCommand(newCleanCmd(opts))

	return cmd
}

// Execute runs the root command. Called from main.
func Execute(ctx context.Context) {
	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
