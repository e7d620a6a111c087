package mailer

import (
	"context"
	"fmt"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/letterloop/letterloop/internal/interview"
)

// SendGrid delivers summaries through the SendGrid v3 mail API.
type SendGrid struct {
	client   *sendgrid.Client
	from     string
	fromName string
}

// NewSendGrid creates a SendGrid deliverer sending from the given address.
func NewSendGrid(apiKey, from, fromName string) *SendGrid {
	return &SendGrid{
		client:   sendgrid.NewSendClient(apiKey),
		from:     from,
		fromName: fromName,
	}
}

// Deliver implements interview.Deliverer.
func (s *SendGrid) Deliver(ctx context.Context, d interview.Delivery) error {
	email, err := Compose(d)
	if err != nil {
		return err
	}

	msg := mail.NewV3Mail()
	msg.SetFrom(mail.NewEmail(s.fromName, s.from))
	msg.Subject = email.Subject

	p := mail.NewPersonalization()
	for _, to := range email.To {
		p.AddTos(mail.NewEmail("", to))
	}
	msg.AddPersonalizations(p)
	msg.AddContent(
		mail.NewContent("text/plain", email.Text),
		mail.NewContent("text/html", email.HTML),
	)

	resp, err := s.client.SendWithContext(ctx, msg)
	if err != nil {
		return fmt.Errorf("sendgrid: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid: status %d: %s", resp.StatusCode, strings.TrimSpace(resp.Body))
	}
	return nil
}
