// init.go implements the "letterloop init" command.
package cli

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/letterloop/letterloop/internal/config"
	"github.com/letterloop/letterloop/prompts"
)

const questionsFileName = "questions.yaml"

func newInitCmd(root *rootOptions) *cobra.Command {
	var force, withQuestions bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default .letterloop/config.yaml",
		Long: `Initialize the .letterloop/ directory with a default configuration.
API keys are never written to the file; they are read from
ANTHROPIC_API_KEY, GEMINI_API_KEY, OPENAI_API_KEY and SENDGRID_API_KEY.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := root.projectDir()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if _, statErr := os.Stat(config.Path(dir)); statErr == nil && !force {
				fmt.Fprintln(out, "Warning: .letterloop/config.yaml already exists.")
				fmt.Fprint(out, "Overwrite? [y/N]: ")
				reader := bufio.NewReader(cmd.InOrStdin())
				answer, _ := reader.ReadString('\n')
				answer = strings.TrimSpace(strings.ToLower(answer))
				if answer != "y" && answer != "yes" {
					fmt.Fprintln(out, "Aborted.")
					return nil
				}
			}

			cfg := config.DefaultConfig()
			if withQuestions {
				rel := filepath.Join(".letterloop", questionsFileName)
				if err := os.MkdirAll(filepath.Join(dir, ".letterloop"), 0755); err != nil {
					return fmt.Errorf("creating config directory: %w", err)
				}
				if err := os.WriteFile(filepath.Join(dir, rel), prompts.DefaultQuestions, 0644); err != nil {
					return fmt.Errorf("writing questions: %w", err)
				}
				cfg.Interview.QuestionsFile = rel
			}

			if err := config.WriteConfig(dir, cfg); err != nil {
				return err
			}

			if err := ensureGitignore(dir); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Warning: failed to set up .gitignore: %v\n", err)
			}

			fmt.Fprintf(out, "Wrote %s\n", config.Path(dir))
			if withQuestions {
				fmt.Fprintf(out, "Wrote %s\n", filepath.Join(dir, cfg.Interview.QuestionsFile))
			}
			fmt.Fprintln(out, "Set email.developer before running an interview.")
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config without asking")
	cmd.Flags().BoolVar(&withQuestions, "with-questions", false, "Also write the default question list for editing")
	return cmd
}

// ensureGitignore creates or appends to .gitignore so runtime files are never
// committed. It only adds entries that aren't already present.
func ensureGitignore(dir string) error {
	gitignorePath := filepath.Join(dir, ".gitignore")

	requiredEntries := []string{
		".env",
		".letterloop/log.jsonl",
		".letterloop/outbox.txt",
		".letterloop/interviews.db",
	}

	existing := ""
	if data, err := os.ReadFile(gitignorePath); err == nil {
		existing = string(data)
	}

	var missing []string
	for _, entry := range requiredEntries {
		if !strings.Contains(existing, entry) {
			missing = append(missing, entry)
		}
	}

	if len(missing) == 0 {
		return nil
	}

	var toAppend strings.Builder
	if existing != "" && !strings.HasSuffix(existing, "\n") {
		toAppend.WriteString("\n")
	}
	if existing != "" {
		toAppend.WriteString("\n# Added by letterloop init\n")
	}
	for _, entry := range missing {
		toAppend.WriteString(entry + "\n")
	}

	f, err := os.OpenFile(gitignorePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening .gitignore: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(toAppend.String()); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}

	return nil
}
