// Package mailer renders finished interviews as email and delivers them.
package mailer

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"strings"

	"github.com/letterloop/letterloop/internal/interview"
)

// Subjects for the two kinds of summary email.
const (
	SubjectComplete = "Interview Summary - Complete"
	SubjectError    = "Interview Summary - Error Generating Summary"
)

// Validation errors.
var (
	ErrNoRecipients  = errors.New("no recipients")
	ErrNoTranscript  = errors.New("transcript is empty")
	ErrNothingToSend = errors.New("neither summary nor error set")
)

// Email is a rendered message ready for any transport.
type Email struct {
	To      []string
	Subject string
	Text    string
	HTML    string
}

// RenderTranscript formats messages as speaker-labelled paragraphs.
func RenderTranscript(msgs []interview.Message) string {
	lines := make([]string, 0, len(msgs))
	for _, m := range msgs {
		speaker := "AI"
		if m.Role == interview.RoleUser {
			speaker = "You"
		}
		lines = append(lines, speaker+": "+m.Content)
	}
	return strings.Join(lines, "\n\n")
}

// Validate checks that d can be delivered.
func Validate(d interview.Delivery) error {
	switch {
	case len(d.Recipients) == 0:
		return ErrNoRecipients
	case len(d.Transcript) == 0:
		return ErrNoTranscript
	case strings.TrimSpace(d.Summary) == "" && strings.TrimSpace(d.Error) == "":
		return ErrNothingToSend
	}
	return nil
}

var htmlTmpl = template.Must(template.New("email").Parse(`<html>
  <body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
{{- if .Error}}
    <h2>Interview Summary - Error</h2>
    <p>There was an error generating the summary for {{.Name}}'s interview. Below is the full conversation history and the error message.</p>
    <h3>Error Message:</h3>
    <div style="background-color: #fee; border-left: 4px solid #f00; padding: 10px; margin: 10px 0;">
      <pre style="white-space: pre-wrap; word-wrap: break-word;">{{.Error}}</pre>
    </div>
{{- else}}
    <h2>Your Interview Summary</h2>
    <p>Thank you for completing the interview! Below is the generated summary and the full conversation history.</p>
    <h3>AI Generated Summary:</h3>
    <div style="background-color: #e8f5e9; border-left: 4px solid #4caf50; padding: 15px; margin: 15px 0; border-radius: 5px;">
      <div style="white-space: pre-wrap; word-wrap: break-word;">{{.Summary}}</div>
    </div>
{{- end}}
    <h3>Full Conversation History:</h3>
    <div style="background-color: #f9f9f9; padding: 15px; border-radius: 5px; margin: 10px 0;">
      <pre style="white-space: pre-wrap; word-wrap: break-word; font-size: 12px;">{{.Transcript}}</pre>
    </div>
  </body>
</html>
`))

// Compose renders d. A set Error selects the error variant even when a
// summary is also present.
func Compose(d interview.Delivery) (Email, error) {
	if err := Validate(d); err != nil {
		return Email{}, err
	}

	name := d.UserName
	if name == "" {
		name = "your"
	}
	transcript := RenderTranscript(d.Transcript)

	email := Email{To: d.Recipients}
	if d.Error != "" {
		email.Subject = SubjectError
		email.Text = fmt.Sprintf("Interview Summary - Error\n\nError Message:\n%s\n\nFull Conversation History:\n%s", d.Error, transcript)
	} else {
		email.Subject = SubjectComplete
		email.Text = fmt.Sprintf("Your Interview Summary\n\nAI Generated Summary:\n%s\n\nFull Conversation History:\n%s", d.Summary, transcript)
	}

	var buf bytes.Buffer
	err := htmlTmpl.Execute(&buf, struct {
		Name, Summary, Error, Transcript string
	}{name, d.Summary, d.Error, transcript})
	if err != nil {
		return Email{}, fmt.Errorf("render html body: %w", err)
	}
	email.HTML = buf.String()
	return email, nil
}
