package tui

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/letterloop/letterloop/internal/interview"
)

type fakeController struct {
	mu    sync.Mutex
	state interview.State
	calls []string
	err   error
}

func newFakeController() *fakeController {
	return &fakeController{state: interview.State{
		Version:   1,
		SessionID: "s1",
		Questions: []string{"Q0", "Q1"},
		Timeline:  interview.Timeline{{Role: interview.RoleAssistant, Content: "Q0"}},
	}}
}

func (f *fakeController) record(call string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	return f.err
}

func (f *fakeController) State() interview.State { return f.state }

func (f *fakeController) Questions() []interview.QuestionView {
	return interview.AllQuestionsView(f.state.Timeline, f.state.Questions, f.state.CurrentQuestionIndex)
}

func (f *fakeController) SubmitAnswer(_ context.Context, text string, immediate bool) error {
	if immediate {
		return f.record("now:" + text)
	}
	return f.record("answer:" + text)
}

func (f *fakeController) SubmitPending(context.Context) error     { return f.record("pending") }
func (f *fakeController) SkipQuestion(context.Context) error      { return f.record("skip") }
func (f *fakeController) Finish(context.Context) error            { return f.record("finish") }
func (f *fakeController) StartOver() error                        { return f.record("restart") }
func (f *fakeController) Resend(context.Context) error            { return f.record("resend") }
func (f *fakeController) RegenerateSummary(context.Context) error { return f.record("regenerate") }

func newTestModel(ctrl Controller) Model {
	return NewModel(context.Background(), ctrl, Options{Debounce: 5 * time.Second})
}

// press sends k to the model and runs the resulting command, if any.
func press(t *testing.T, m Model, k tea.KeyType) (Model, tea.Msg) {
	t.Helper()
	next, cmd := m.Update(tea.KeyMsg{Type: k})
	var msg tea.Msg
	if cmd != nil {
		msg = cmd()
	}
	return next.(Model), msg
}

func TestEnterSubmitsDebounced(t *testing.T) {
	ctrl := newFakeController()
	m := newTestModel(ctrl)
	m.textarea.SetValue("  my answer  ")

	m, msg := press(t, m, tea.KeyEnter)

	done, ok := msg.(ActionDoneMsg)
	if !ok {
		t.Fatalf("expected ActionDoneMsg, got %T", msg)
	}
	if done.Action != ActionAnswer || done.Err != nil {
		t.Errorf("unexpected result: %+v", done)
	}
	if len(ctrl.calls) != 1 || ctrl.calls[0] != "answer:my answer" {
		t.Errorf("calls = %v, want [answer:my answer]", ctrl.calls)
	}
	if m.textarea.Value() != "" {
		t.Errorf("textarea should be cleared, got %q", m.textarea.Value())
	}
}

func TestEnterIgnoresBlankInput(t *testing.T) {
	ctrl := newFakeController()
	m := newTestModel(ctrl)
	m.textarea.SetValue("   ")

	_, msg := press(t, m, tea.KeyEnter)
	if msg != nil {
		t.Errorf("blank input should not produce a command, got %T", msg)
	}
	if len(ctrl.calls) != 0 {
		t.Errorf("calls = %v, want none", ctrl.calls)
	}
}

func TestSubmitNow(t *testing.T) {
	ctrl := newFakeController()
	m := newTestModel(ctrl)

	// Empty box flushes the pending submission.
	m, _ = press(t, m, tea.KeyCtrlS)
	m.textarea.SetValue("more detail")
	_, _ = press(t, m, tea.KeyCtrlS)

	want := []string{"pending", "now:more detail"}
	if strings.Join(ctrl.calls, ",") != strings.Join(want, ",") {
		t.Errorf("calls = %v, want %v", ctrl.calls, want)
	}
}

func TestActionKeys(t *testing.T) {
	tests := []struct {
		key  tea.KeyType
		want string
	}{
		{tea.KeyCtrlK, "skip"},
		{tea.KeyCtrlF, "finish"},
		{tea.KeyCtrlR, "restart"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			ctrl := newFakeController()
			_, _ = press(t, newTestModel(ctrl), tt.key)
			if len(ctrl.calls) != 1 || ctrl.calls[0] != tt.want {
				t.Errorf("calls = %v, want [%s]", ctrl.calls, tt.want)
			}
		})
	}
}

func TestResendOnlyWhenComplete(t *testing.T) {
	ctrl := newFakeController()
	m := newTestModel(ctrl)

	m, _ = press(t, m, tea.KeyCtrlE)
	if len(ctrl.calls) != 0 {
		t.Fatalf("resend before completion should be ignored, calls = %v", ctrl.calls)
	}

	complete := ctrl.state
	complete.Version = 2
	complete.InterviewComplete = true
	complete.Article = "the article"
	next, _ := m.Update(StateMsg{State: complete})
	m = next.(Model)

	m, _ = press(t, m, tea.KeyCtrlE)
	_, _ = press(t, m, tea.KeyCtrlG)
	if strings.Join(ctrl.calls, ",") != "resend,regenerate" {
		t.Errorf("calls = %v, want [resend regenerate]", ctrl.calls)
	}
}

func TestStaleStateDropped(t *testing.T) {
	ctrl := newFakeController()
	m := newTestModel(ctrl)

	newer := ctrl.state
	newer.Version = 5
	newer.Timeline = append(newer.Timeline.Clone(), interview.Message{Role: interview.RoleUser, Content: "a1"})
	next, _ := m.Update(StateMsg{State: newer})
	m = next.(Model)

	older := ctrl.state
	older.Version = 3
	next, _ = m.Update(StateMsg{State: older})
	m = next.(Model)

	if m.state.Version != 5 || len(m.state.Timeline) != 2 {
		t.Errorf("stale snapshot replaced newer state: version %d, %d messages", m.state.Version, len(m.state.Timeline))
	}
}

func TestRejectedAnswerRestored(t *testing.T) {
	ctrl := newFakeController()
	ctrl.err = interview.ErrBusy
	m := newTestModel(ctrl)
	m.textarea.SetValue("too soon")

	m, msg := press(t, m, tea.KeyEnter)
	next, _ := m.Update(msg)
	m = next.(Model)

	if m.textarea.Value() != "too soon" {
		t.Errorf("textarea = %q, want the rejected answer back", m.textarea.Value())
	}
	if !errors.Is(m.err, interview.ErrBusy) {
		t.Errorf("err = %v, want ErrBusy", m.err)
	}
	if !strings.Contains(m.View(), "Still working") {
		t.Error("view should explain the busy rejection")
	}
}

func TestCtrlCNeedsConfirmation(t *testing.T) {
	m := newTestModel(newFakeController())

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	m = next.(Model)
	if !m.ctrlCPending {
		t.Fatal("first ctrl+c should arm the confirmation")
	}
	if cmd == nil {
		t.Fatal("first ctrl+c should schedule a reset")
	}

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("second ctrl+c should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("second ctrl+c should return tea.Quit")
	}
}

func TestStatusBar(t *testing.T) {
	s := interview.State{
		Questions:            []string{"Q0", "Q1", "Q2"},
		CurrentQuestionIndex: 1,
		QuestionProgress: map[int]interview.QuestionProgress{
			1: {FollowUpCount: 1, CharacterCount: 120},
		},
	}
	got := statusBar(s, interview.DefaultPolicy)
	want := "question 2 of 3 · follow-ups 1/2 · 120/400 characters"
	if got != want {
		t.Errorf("statusBar = %q, want %q", got, want)
	}

	s.InterviewComplete = true
	if got := statusBar(s, interview.DefaultPolicy); !strings.Contains(got, "complete") {
		t.Errorf("statusBar = %q, want completion notice", got)
	}
}

func TestFormatConversation(t *testing.T) {
	s := interview.State{
		Timeline: interview.Timeline{
			{Role: interview.RoleAssistant, Content: "Q0"},
			{Role: interview.RoleUser, Content: interview.SkipMarker},
			{Role: interview.RoleAssistant, Content: "Q1"},
			{Role: interview.RoleUser, Content: "hello"},
		},
		SummaryError: "API Error (500): boom",
	}
	out := formatConversation(s, 80)
	for _, want := range []string{"Q0", "(skipped)", "hello", "API Error (500): boom"} {
		if !strings.Contains(out, want) {
			t.Errorf("conversation missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, interview.SkipMarker) {
		t.Error("raw skip marker should not be shown")
	}
}
