// interview.go runs an interview session, the default action of the root command.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/letterloop/letterloop/internal/config"
	"github.com/letterloop/letterloop/internal/generate"
	"github.com/letterloop/letterloop/internal/interview"
	"github.com/letterloop/letterloop/internal/metrics"
	"github.com/letterloop/letterloop/internal/questions"
	"github.com/letterloop/letterloop/internal/tui"
)

// isTTY is swapped out in tests, which always run in line mode.
var isTTY = tui.IsTTY

type interviewOptions struct {
	root      *rootOptions
	name      string
	email     string
	questions string
	mock      bool
}

func runInterview(cmd *cobra.Command, opts *interviewOptions) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	e, err := loadEnv(opts.root)
	if err != nil {
		return err
	}
	cfg := e.cfg
	if opts.mock {
		cfg.Generation.Provider = generate.ProviderMock
	}

	qs, err := loadQuestions(e, opts.questions)
	if err != nil {
		return err
	}

	gen, err := generate.New(ctx, generate.Config{
		Provider:     cfg.Generation.Provider,
		Model:        cfg.Generation.Model,
		APIKey:       cfg.Generation.APIKey,
		MaxTokens:    cfg.Generation.MaxTokens,
		MaxRetries:   cfg.Generation.MaxRetries,
		MaxFollowUps: cfg.Interview.MaxFollowUps,
	})
	if err != nil {
		return fmt.Errorf("configuring generation: %w", err)
	}

	interactive := isTTY()
	outbox, closeOutbox, err := consoleOutput(e, cmd.OutOrStdout(), interactive)
	if err != nil {
		return err
	}
	defer closeOutbox()

	del, err := e.deliverer(outbox)
	if err != nil {
		return fmt.Errorf("configuring email: %w", err)
	}
	if cfg.Email.Developer == "" {
		fmt.Fprintln(cmd.ErrOrStderr(), "Warning: email.developer is not set; the summary has no recipient.")
	}

	recorder := metrics.NewPrometheusRecorder()
	if cfg.Metrics.Listen != "" {
		go func() {
			if err := recorder.Serve(ctx, cfg.Metrics.Listen); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", err)
			}
		}()
	}

	email := opts.email
	if !cfg.Email.SendToUser {
		email = ""
	}
	policy := interview.Policy{
		MaxFollowUps:  cfg.Interview.MaxFollowUps,
		MinCharacters: cfg.Interview.MinCharacters,
	}
	bridge := &tui.Bridge{}
	engineOpts := []interview.Option{
		interview.WithPolicy(policy),
		interview.WithDebounce(cfg.Interview.Debounce()),
		interview.WithLogger(e.logger),
		interview.WithRecorder(recorder),
		interview.WithDeveloperEmail(cfg.Email.Developer),
		interview.WithUser(opts.name, email),
		interview.WithOnChange(bridge.Notify),
	}

	store, err := e.openStore()
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
		engineOpts = append(engineOpts, interview.WithArchiver(store))
	}

	eng := interview.New(qs, gen, del, engineOpts...)
	defer eng.Close()

	if !interactive {
		return tui.NewFallbackRunner(eng, cmd.InOrStdin(), cmd.OutOrStdout()).Run(ctx)
	}
	return tui.Run(ctx, eng, bridge, tui.Options{
		Policy:   policy,
		Debounce: cfg.Interview.Debounce(),
	})
}

// loadQuestions resolves the question list: the flag wins over the config
// file, which wins over the embedded defaults.
func loadQuestions(e *env, flag string) ([]string, error) {
	path := flag
	if path == "" {
		path = config.Resolve(e.dir, e.cfg.Interview.QuestionsFile)
	}
	qs, err := questions.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading questions: %w", err)
	}
	return qs, nil
}

// consoleOutput picks where console-delivered email goes. The full-screen
// UI owns stdout, so interactive runs append to an outbox file instead.
func consoleOutput(e *env, stdout io.Writer, interactive bool) (io.Writer, func(), error) {
	if !interactive {
		return stdout, func() {}, nil
	}
	dir := config.Resolve(e.dir, e.cfg.LogDir)
	if dir == "" {
		dir = e.dir
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, nil, fmt.Errorf("creating outbox directory: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(dir, "outbox.txt"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening outbox: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}
