// Package tui implements the terminal user interface using Bubble Tea.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/letterloop/letterloop/internal/interview"
)

// Controller is the slice of the interview engine the front-ends drive.
type Controller interface {
	State() interview.State
	Questions() []interview.QuestionView
	SubmitAnswer(ctx context.Context, text string, immediate bool) error
	SubmitPending(ctx context.Context) error
	SkipQuestion(ctx context.Context) error
	Finish(ctx context.Context) error
	StartOver() error
	Resend(ctx context.Context) error
	RegenerateSummary(ctx context.Context) error
}

// Action names reported in ActionDoneMsg.
const (
	ActionAnswer     = "answer"
	ActionSendNow    = "send"
	ActionSkip       = "skip"
	ActionFinish     = "finish"
	ActionStartOver  = "start over"
	ActionResend     = "resend"
	ActionRegenerate = "regenerate"
)

// Options tune what the status bar reports.
type Options struct {
	Policy   interview.Policy
	Debounce time.Duration
}

// Model is the interview screen: the conversation in a viewport, an answer
// box, and a status bar tracking the active question.
type Model struct {
	ctx  context.Context
	ctrl Controller
	opts Options
	keys KeyMap

	state  interview.State
	status string
	err    error

	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model

	width  int
	height int

	// Ctrl+C confirmation state
	ctrlCPending bool
}

// NewModel creates a Model showing ctrl's current state.
func NewModel(ctx context.Context, ctrl Controller, opts Options) Model {
	if opts.Policy.MaxFollowUps == 0 && opts.Policy.MinCharacters == 0 {
		opts.Policy = interview.DefaultPolicy
	}

	ta := textarea.New()
	ta.Placeholder = "Type your answer... (Enter to send)"
	ta.CharLimit = 5000
	ta.ShowLineNumbers = false
	ta.SetHeight(3)
	ta.SetWidth(76)
	keyMap := ta.KeyMap
	keyMap.InsertNewline = DefaultKeyMap.NewLine
	ta.KeyMap = keyMap
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(primaryColor))

	m := Model{
		ctx:      ctx,
		ctrl:     ctrl,
		opts:     opts,
		keys:     DefaultKeyMap,
		state:    ctrl.State(),
		viewport: viewport.New(76, 16),
		textarea: ta,
		spinner:  sp,
		width:    80,
		height:   24,
	}
	m.refresh()
	return m
}

// Init returns the initial command for the interview screen.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.spinner.Tick)
}

// Update handles messages and updates the screen state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			if m.ctrlCPending {
				return m, tea.Quit
			}
			m.ctrlCPending = true
			m.status = "Press Ctrl+C again to exit"
			return m, tea.Tick(time.Second, func(time.Time) tea.Msg {
				return CtrlCResetMsg{}
			})
		}
		if next, cmd, handled := m.handleKey(msg); handled {
			return next, cmd
		}

	case StateMsg:
		if msg.State.Version < m.state.Version {
			return m, nil
		}
		m.state = msg.State
		m.refresh()
		return m, nil

	case ActionDoneMsg:
		m.err = msg.Err
		if msg.Err != nil && msg.Text != "" && m.textarea.Value() == "" {
			m.textarea.SetValue(msg.Text)
			m.status = ""
		}
		if msg.Err == nil && msg.Action != ActionAnswer {
			m.status = ""
		}
		return m, nil

	case CtrlCResetMsg:
		m.ctrlCPending = false
		if m.status == "Press Ctrl+C again to exit" {
			m.status = ""
		}
		return m, nil

	case spinner.TickMsg:
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if !m.state.InterviewComplete {
		m.textarea, cmd = m.textarea.Update(msg)
		cmds = append(cmds, cmd)
	}
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// handleKey runs the interview bindings. Keys it does not own fall through
// to the textarea and viewport.
func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keys.Submit):
		text := strings.TrimSpace(m.textarea.Value())
		if text == "" || m.state.InterviewComplete {
			return m, nil, true
		}
		m.textarea.Reset()
		m.err = nil
		m.status = fmt.Sprintf("Answer saved. Sending in %s unless you add more (ctrl+s sends now).", m.opts.Debounce)
		return m, m.run(ActionAnswer, text, func(ctx context.Context) error {
			return m.ctrl.SubmitAnswer(ctx, text, false)
		}), true

	case key.Matches(msg, m.keys.SubmitNow):
		text := strings.TrimSpace(m.textarea.Value())
		m.textarea.Reset()
		m.err = nil
		m.status = ""
		if text == "" {
			return m, m.run(ActionSendNow, "", m.ctrl.SubmitPending), true
		}
		return m, m.run(ActionSendNow, text, func(ctx context.Context) error {
			return m.ctrl.SubmitAnswer(ctx, text, true)
		}), true

	case key.Matches(msg, m.keys.Skip):
		m.status = ""
		return m, m.run(ActionSkip, "", m.ctrl.SkipQuestion), true

	case key.Matches(msg, m.keys.Finish):
		m.status = ""
		return m, m.run(ActionFinish, "", m.ctrl.Finish), true

	case key.Matches(msg, m.keys.StartOver):
		m.textarea.Reset()
		m.status = ""
		return m, m.run(ActionStartOver, "", func(context.Context) error {
			return m.ctrl.StartOver()
		}), true

	case key.Matches(msg, m.keys.Resend):
		if !m.state.InterviewComplete {
			return m, nil, true
		}
		m.status = "Sending email..."
		return m, m.run(ActionResend, "", m.ctrl.Resend), true

	case key.Matches(msg, m.keys.Regenerate):
		if !m.state.InterviewComplete {
			return m, nil, true
		}
		m.status = "Writing a new summary..."
		return m, m.run(ActionRegenerate, "", m.ctrl.RegenerateSummary), true
	}
	return m, nil, false
}

// run wraps an engine call in a command so the UI never blocks on a backend.
// text is the answer being submitted, handed back if the engine rejects it.
func (m Model) run(action, text string, fn func(context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return ActionDoneMsg{Action: action, Text: text, Err: fn(ctx)}
	}
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height

	// Reserve space for: header (2 lines), status (2 lines), textarea (4 lines), footer (2 lines)
	vpHeight := height - 14
	if vpHeight < 5 {
		vpHeight = 5
	}
	vpWidth := width - 6
	if vpWidth < 20 {
		vpWidth = 20
	}
	m.viewport.Width = vpWidth
	m.viewport.Height = vpHeight
	m.textarea.SetWidth(vpWidth)
	m.refresh()
}

// refresh re-renders the conversation into the viewport.
func (m *Model) refresh() {
	m.viewport.SetContent(formatConversation(m.state, m.viewport.Width))
	m.viewport.GotoBottom()
}

// View renders the interview screen.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("Newsletter interview"))
	if m.state.UserName != "" {
		b.WriteString(DimStyle.Render(" with " + m.state.UserName))
	}
	b.WriteString("\n")
	b.WriteString(questionTrack(m.ctrl.Questions(), m.state))
	b.WriteString("\n\n")

	b.WriteString(m.viewport.View())
	b.WriteString("\n\n")

	switch {
	case m.state.Processing:
		b.WriteString(fmt.Sprintf("%s %s\n", m.spinner.View(), processingLabel(m.state)))
	case m.err != nil:
		b.WriteString(ErrorStyle.Render(actionError(m.err)) + "\n")
	case m.status != "":
		b.WriteString(WarningStyle.Render(m.status) + "\n")
	case m.state.PendingSubmission:
		b.WriteString(DimStyle.Render("Answer saved, waiting a moment before replying...") + "\n")
	default:
		b.WriteString("\n")
	}

	if m.state.InterviewComplete {
		b.WriteString(deliveryLine(m.state))
	} else {
		b.WriteString(m.textarea.View())
	}
	b.WriteString("\n")
	b.WriteString(StatusBarStyle.Render(statusBar(m.state, m.opts.Policy)))
	b.WriteString("\n")

	help := m.keys.interviewHelp()
	if m.state.InterviewComplete {
		help = m.keys.completeHelp()
	}
	b.WriteString(DimStyle.Render(helpLine(help)))

	return BoxStyle.Width(max(m.width-2, 20)).Render(b.String())
}

// formatConversation renders the timeline, and the summary once available.
func formatConversation(s interview.State, width int) string {
	if len(s.Timeline) == 0 {
		return DimStyle.Render("No questions configured.")
	}

	wrap := lipgloss.NewStyle().Width(max(width-2, 10))
	var b strings.Builder
	for i, msg := range s.Timeline {
		if i > 0 {
			b.WriteString("\n\n")
		}
		switch {
		case msg.Role == interview.RoleUser && msg.Content == interview.SkipMarker:
			b.WriteString(DimStyle.Render("(skipped)"))
		case msg.Role == interview.RoleUser:
			b.WriteString(wrap.Render(userStyle.Render("You: ") + msg.Content))
		default:
			b.WriteString(wrap.Render(assistantStyle.Render("AI: ") + msg.Content))
		}
	}

	switch {
	case s.Article != "":
		b.WriteString("\n\n")
		b.WriteString(TitleStyle.Render("Summary"))
		b.WriteString("\n")
		b.WriteString(wrap.Render(s.Article))
	case s.SummaryError != "":
		b.WriteString("\n\n")
		b.WriteString(ErrorStyle.Render(s.SummaryError))
	}
	return b.String()
}

func questionTrack(views []interview.QuestionView, s interview.State) string {
	icons := make([]string, 0, len(views))
	for _, v := range views {
		switch {
		case v.Skipped:
			icons = append(icons, QuestionSkipped)
		case v.IsComplete:
			icons = append(icons, QuestionDone)
		case v.Index == s.CurrentQuestionIndex:
			icons = append(icons, QuestionActive)
		default:
			icons = append(icons, QuestionPending)
		}
	}
	return strings.Join(icons, " ")
}

func statusBar(s interview.State, p interview.Policy) string {
	if len(s.Questions) == 0 {
		return "no questions"
	}
	if s.InterviewComplete {
		return fmt.Sprintf("%d of %d questions · complete", len(s.Questions), len(s.Questions))
	}
	prog := s.Progress(s.CurrentQuestionIndex)
	return fmt.Sprintf("question %d of %d · follow-ups %d/%d · %d/%d characters",
		s.CurrentQuestionIndex+1, len(s.Questions),
		prog.FollowUpCount, p.MaxFollowUps,
		prog.CharacterCount, p.MinCharacters)
}

func processingLabel(s interview.State) string {
	if s.InterviewComplete {
		return "Writing your newsletter summary..."
	}
	return "Thinking..."
}

func deliveryLine(s interview.State) string {
	switch {
	case s.Processing:
		return ""
	case s.EmailSent:
		return SuccessStyle.Render("Summary emailed.")
	case s.DeliveryError != "":
		return ErrorStyle.Render("Email failed: " + s.DeliveryError)
	default:
		return DimStyle.Render("Email not sent.")
	}
}

func actionError(err error) string {
	switch {
	case errors.Is(err, interview.ErrBusy):
		return "Still working on the last answer, try again in a moment."
	case errors.Is(err, interview.ErrInterviewComplete):
		return "The interview is already complete."
	case errors.Is(err, interview.ErrNoQuestions):
		return "No questions are configured."
	default:
		return err.Error()
	}
}

func helpLine(bindings []key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, h.Key+": "+h.Desc)
	}
	return strings.Join(parts, " · ")
}
