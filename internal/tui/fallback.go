package tui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/letterloop/letterloop/internal/interview"
)

// Line-mode commands.
const (
	CommandSkip    = "/skip"
	CommandFinish  = "/finish"
	CommandRestart = "/restart"
	CommandQuit    = "/quit"
)

// FallbackRunner drives the interview one line at a time when stdout is not
// a terminal. Every line is submitted immediately.
type FallbackRunner struct {
	ctrl Controller
	in   io.Reader
	out  io.Writer

	// printed is the number of timeline entries already written to out.
	printed int
	session string
}

// NewFallbackRunner creates a new FallbackRunner.
func NewFallbackRunner(ctrl Controller, in io.Reader, out io.Writer) *FallbackRunner {
	return &FallbackRunner{ctrl: ctrl, in: in, out: out}
}

// Run reads answers until the interview is complete, input ends, or ctx is
// cancelled.
func (f *FallbackRunner) Run(ctx context.Context) error {
	s := f.ctrl.State()
	if len(s.Questions) == 0 {
		return interview.ErrNoQuestions
	}
	fmt.Fprintln(f.out, "Running in line mode. Commands: /skip, /finish, /restart, /quit")
	f.flush(s)

	scanner := bufio.NewScanner(f.in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for !f.ctrl.State().InterviewComplete {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprint(f.out, "> ")
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("reading answers: %w", err)
			}
			fmt.Fprintln(f.out)
			return nil
		}

		line := strings.TrimSpace(scanner.Text())
		if line == CommandQuit {
			return nil
		}
		if err := f.dispatch(ctx, line); err != nil {
			fmt.Fprintf(f.out, "! %s\n", actionError(err))
		}
		f.flush(f.ctrl.State())
	}

	f.report(f.ctrl.State())
	return nil
}

func (f *FallbackRunner) dispatch(ctx context.Context, line string) error {
	switch line {
	case "":
		return nil
	case CommandSkip:
		return f.ctrl.SkipQuestion(ctx)
	case CommandFinish:
		return f.ctrl.Finish(ctx)
	case CommandRestart:
		return f.ctrl.StartOver()
	default:
		return f.ctrl.SubmitAnswer(ctx, line, true)
	}
}

// flush prints assistant turns appended since the last call. A new session
// id means the timeline was reset.
func (f *FallbackRunner) flush(s interview.State) {
	if s.SessionID != f.session {
		if f.session != "" {
			fmt.Fprintln(f.out, "-- starting over --")
		}
		f.session = s.SessionID
		f.printed = 0
	}
	for _, msg := range s.Timeline[min(f.printed, len(s.Timeline)):] {
		if msg.Role == interview.RoleAssistant {
			fmt.Fprintf(f.out, "AI: %s\n", msg.Content)
		}
	}
	f.printed = len(s.Timeline)
}

func (f *FallbackRunner) report(s interview.State) {
	switch {
	case s.Article != "":
		fmt.Fprintf(f.out, "\nSummary:\n%s\n", s.Article)
	case s.SummaryError != "":
		fmt.Fprintf(f.out, "\n%s\n", s.SummaryError)
	}
	switch {
	case s.EmailSent:
		fmt.Fprintln(f.out, "Summary emailed.")
	case s.DeliveryError != "":
		fmt.Fprintf(f.out, "Email failed: %s\n", s.DeliveryError)
	}
}
