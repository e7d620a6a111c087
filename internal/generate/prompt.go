package generate

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/letterloop/letterloop/internal/interview"
	"github.com/letterloop/letterloop/prompts"
)

// OpeningTurn is prepended when a conversation starts with the assistant.
// Providers require the first turn to come from the user.
const OpeningTurn = "Hi! I'm ready for your questions."

var (
	interviewTmpl = template.Must(template.New("interview").Parse(prompts.InterviewTemplate))
	articleTmpl   = template.Must(template.New("article").Parse(prompts.ArticleTemplate))
)

type promptData struct {
	UserName             string
	PrimaryQuestion      string
	QuestionIndex        int
	FollowUpCount        int
	MaxFollowUps         int
	AnswerCharacterCount int
	CompleteSignal       string
}

// SystemPrompt renders the system instruction for req.
func SystemPrompt(req interview.GenerateRequest, maxFollowUps int) (string, error) {
	tmpl := interviewTmpl
	if req.Mode == interview.ModeArticle {
		tmpl = articleTmpl
	}
	data := promptData{
		UserName:             req.UserName,
		PrimaryQuestion:      req.PrimaryQuestion,
		QuestionIndex:        req.QuestionIndex,
		FollowUpCount:        req.FollowUpCount,
		MaxFollowUps:         maxFollowUps,
		AnswerCharacterCount: req.AnswerCharacterCount,
		CompleteSignal:       interview.QuestionCompleteSignal,
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s prompt: %w", tmpl.Name(), err)
	}
	return strings.TrimSpace(buf.String()), nil
}

// conversation prepares the timeline for a provider: it opens with a user
// turn and merges consecutive same-role messages, which occur when several
// answers were submitted before processing ran.
func conversation(msgs []interview.Message) []interview.Message {
	out := make([]interview.Message, 0, len(msgs)+1)
	if len(msgs) > 0 && msgs[0].Role == interview.RoleAssistant {
		out = append(out, interview.Message{Role: interview.RoleUser, Content: OpeningTurn})
	}
	for _, m := range msgs {
		if n := len(out); n > 0 && out[n-1].Role == m.Role {
			out[n-1].Content += "\n\n" + m.Content
			continue
		}
		out = append(out, m)
	}
	return out
}
