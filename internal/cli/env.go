package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/letterloop/letterloop/internal/config"
	"github.com/letterloop/letterloop/internal/interview"
	"github.com/letterloop/letterloop/internal/log"
	"github.com/letterloop/letterloop/internal/mailer"
	"github.com/letterloop/letterloop/internal/session"
)

// env is the per-invocation wiring shared by the commands.
type env struct {
	dir    string
	cfg    *config.Config
	logger *log.Logger
}

func loadEnv(opts *rootOptions) (*env, error) {
	dir, err := opts.projectDir()
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(dir)
	if err != nil {
		return nil, err
	}

	e := &env{dir: dir, cfg: cfg}
	if cfg.LogDir != "" {
		logger, err := log.NewLogger(config.Resolve(dir, cfg.LogDir))
		if err != nil {
			return nil, err
		}
		e.logger = logger
	}
	return e, nil
}

// openStore opens the archive. It returns a nil store when archiving is
// disabled.
func (e *env) openStore() (*session.Store, error) {
	path := config.Resolve(e.dir, e.cfg.Archive.Path)
	if path == "" {
		return nil, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating archive directory: %w", err)
	}
	return session.NewStore(path)
}

// requireStore is openStore for commands that cannot work without an archive.
func (e *env) requireStore() (*session.Store, error) {
	store, err := e.openStore()
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, errors.New("archive is disabled; set archive.path in .letterloop/config.yaml")
	}
	return store, nil
}

// deliverer builds the configured email backend. Console output goes to w.
func (e *env) deliverer(w io.Writer) (interview.Deliverer, error) {
	return mailer.New(mailer.Config{
		Provider: e.cfg.Email.Provider,
		APIKey:   e.cfg.Email.APIKey,
		From:     e.cfg.Email.From,
		FromName: e.cfg.Email.FromName,
	}, w)
}
