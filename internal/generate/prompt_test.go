package generate

import (
	"strings"
	"testing"

	"github.com/letterloop/letterloop/internal/interview"
)

func TestSystemPromptInterview(t *testing.T) {
	got, err := SystemPrompt(interview.GenerateRequest{
		Mode:                 interview.ModeInterview,
		UserName:             "Sam",
		PrimaryQuestion:      "What changed this year?",
		FollowUpCount:        1,
		AnswerCharacterCount: 120,
	}, 2)
	if err != nil {
		t.Fatalf("SystemPrompt: %v", err)
	}
	for _, want := range []string{
		`"What changed this year?"`,
		"Sam",
		"1 of at most 2",
		"120 characters",
		interview.QuestionCompleteSignal,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("interview prompt missing %q", want)
		}
	}
}

func TestSystemPromptArticle(t *testing.T) {
	got, err := SystemPrompt(interview.GenerateRequest{Mode: interview.ModeArticle}, 2)
	if err != nil {
		t.Fatalf("SystemPrompt: %v", err)
	}
	if !strings.Contains(got, "our friend") {
		t.Error("article prompt should fall back to 'our friend' without a name")
	}
	if strings.Contains(got, interview.QuestionCompleteSignal) {
		t.Error("article prompt should not mention the completion signal")
	}
}

func TestConversation(t *testing.T) {
	in := []interview.Message{
		{Role: interview.RoleAssistant, Content: "Q0"},
		{Role: interview.RoleUser, Content: "first"},
		{Role: interview.RoleUser, Content: "second"},
		{Role: interview.RoleAssistant, Content: "F1"},
	}
	got := conversation(in)

	want := []interview.Message{
		{Role: interview.RoleUser, Content: OpeningTurn},
		{Role: interview.RoleAssistant, Content: "Q0"},
		{Role: interview.RoleUser, Content: "first\n\nsecond"},
		{Role: interview.RoleAssistant, Content: "F1"},
	}
	if len(got) != len(want) {
		t.Fatalf("conversation = %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("conversation[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
	if in[1].Content != "first" {
		t.Error("conversation must not modify its input")
	}
}

func TestConversationUserFirst(t *testing.T) {
	got := conversation([]interview.Message{{Role: interview.RoleUser, Content: "hi"}})
	if len(got) != 1 || got[0].Content != "hi" {
		t.Errorf("conversation = %+v, want input unchanged", got)
	}
}
