package tui

import (
	"context"
	"os"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/letterloop/letterloop/internal/interview"
)

// IsTTY returns true if stdout is connected to a terminal.
func IsTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// Bridge forwards engine snapshots to whichever front-end is running. The
// engine is built before the program exists, so it is given Bridge.Notify
// as its change callback and the program attaches later.
type Bridge struct {
	mu      sync.Mutex
	program *tea.Program
}

// Notify implements the engine's change callback.
func (b *Bridge) Notify(s interview.State) {
	b.mu.Lock()
	p := b.program
	b.mu.Unlock()
	if p != nil {
		p.Send(StateMsg{State: s})
	}
}

func (b *Bridge) attach(p *tea.Program) {
	b.mu.Lock()
	b.program = p
	b.mu.Unlock()
}

// Run starts the Bubble Tea program in alternate screen mode. Callers check
// IsTTY first and use FallbackRunner when stdout is not a terminal.
func Run(ctx context.Context, ctrl Controller, bridge *Bridge, opts Options) error {
	p := tea.NewProgram(NewModel(ctx, ctrl, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	if bridge != nil {
		bridge.attach(p)
		defer bridge.attach(nil)
	}
	_, err := p.Run()
	return err
}
