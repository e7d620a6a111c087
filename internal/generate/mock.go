package generate

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/letterloop/letterloop/internal/interview"
)

var mockFollowUps = []string{
	"what made you start thinking about it that way?",
	"can you give me a specific example?",
	"has that changed over time?",
}

// Mock is an offline backend. Queued replies are returned first, in order;
// after that it asks canned follow-ups and writes an article made of the
// user's own answers.
type Mock struct {
	mu      sync.Mutex
	replies []string
	calls   []interview.GenerateRequest
}

// NewMock returns a Mock that answers with the given replies before falling
// back to canned output.
func NewMock(replies ...string) *Mock {
	return &Mock{replies: replies}
}

// Generate implements interview.Generator.
func (m *Mock) Generate(ctx context.Context, req interview.GenerateRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	m.mu.Lock()
	m.calls = append(m.calls, req)
	if len(m.replies) > 0 {
		r := m.replies[0]
		m.replies = m.replies[1:]
		m.mu.Unlock()
		return r, nil
	}
	m.mu.Unlock()

	if req.Mode == interview.ModeArticle {
		return mockArticle(req), nil
	}
	return mockFollowUps[req.FollowUpCount%len(mockFollowUps)], nil
}

// Calls returns the requests seen so far.
func (m *Mock) Calls() []interview.GenerateRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]interview.GenerateRequest(nil), m.calls...)
}

func mockArticle(req interview.GenerateRequest) string {
	name := req.UserName
	if name == "" {
		name = "our friend"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "A few words from %s.\n", name)
	for _, msg := range req.Messages {
		if msg.Role != interview.RoleUser || msg.Content == interview.SkipMarker ||
			msg.Content == interview.SummaryInstruction {
			continue
		}
		fmt.Fprintf(&b, "\n%q\n", msg.Content)
	}
	return b.String()
}
