package mailer

import (
	"fmt"
	"io"

	"github.com/letterloop/letterloop/internal/interview"
)

// Provider names accepted in configuration.
const (
	ProviderSendGrid = "sendgrid"
	ProviderConsole  = "console"
)

// Config selects a delivery backend.
type Config struct {
	Provider string
	APIKey   string
	From     string
	FromName string
}

// New builds the deliverer named by cfg.Provider. Console output goes to w.
func New(cfg Config, w io.Writer) (interview.Deliverer, error) {
	switch cfg.Provider {
	case ProviderSendGrid:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("SENDGRID_API_KEY is not configured")
		}
		if cfg.From == "" {
			return nil, fmt.Errorf("SENDGRID_FROM_EMAIL is not configured")
		}
		return NewSendGrid(cfg.APIKey, cfg.From, cfg.FromName), nil
	case ProviderConsole, "":
		return NewConsole(w), nil
	default:
		return nil, fmt.Errorf("unknown email provider %q", cfg.Provider)
	}
}
