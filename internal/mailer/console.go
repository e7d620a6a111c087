package mailer

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/letterloop/letterloop/internal/interview"
)

// Console writes the text body of each email to w instead of sending it.
type Console struct {
	mu sync.Mutex
	w  io.Writer
}

// NewConsole creates a Console deliverer.
func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

// Deliver implements interview.Deliverer.
func (c *Console) Deliver(_ context.Context, d interview.Delivery) error {
	email, err := Compose(d)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	_, err = fmt.Fprintf(c.w, "To: %s\nSubject: %s\n\n%s\n", strings.Join(email.To, ", "), email.Subject, email.Text)
	return err
}
