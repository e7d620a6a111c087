package tui

import "github.com/letterloop/letterloop/internal/interview"

// StateMsg carries an engine snapshot. Snapshots older than the one already
// shown are dropped.
type StateMsg struct {
	State interview.State
}

// ActionDoneMsg reports the outcome of a user action run off the UI goroutine.
type ActionDoneMsg struct {
	Action string
	Text   string
	Err    error
}

// CtrlCResetMsg clears the pending Ctrl+C confirmation.
type CtrlCResetMsg struct{}
