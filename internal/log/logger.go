// Package log provides structured event logging.
// This file appends JSON events to log.jsonl.
package log

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Event type constants.
const (
	EventInterviewStarted  = "interview_started"
	EventAnswerSubmitted   = "answer_submitted"
	EventFollowUpAsked     = "follow_up_asked"
	EventQuestionAdvanced  = "question_advanced"
	EventQuestionSkipped   = "question_skipped"
	EventGenerationFailed  = "generation_failed"
	EventReplyDiscarded    = "reply_discarded"
	EventInterviewComplete = "interview_complete"
	EventSummaryGenerated  = "summary_generated"
	EventSummaryFailed     = "summary_failed"
	EventEmailSent         = "email_sent"
	EventEmailFailed       = "email_failed"
	EventInterviewReset    = "interview_reset"
	EventArchiveFailed     = "archive_failed"
)

// LogEvent represents a single structured event written to the log.
type LogEvent struct {
	Time       time.Time              `json:"time"`
	Event      string                 `json:"event"`
	SessionID  string                 `json:"session,omitempty"`
	Question   *int                   `json:"question,omitempty"`
	Reason     string                 `json:"reason,omitempty"`
	FollowUps  int                    `json:"follow_ups,omitempty"`
	Characters int                    `json:"characters,omitempty"`
	Messages   int                    `json:"messages,omitempty"`
	Recipients []string               `json:"recipients,omitempty"`
	Error      string                 `json:"error,omitempty"`
	DurationMs int64                  `json:"duration_ms,omitempty"`
	Data       map[string]interface{} `json:"data,omitempty"`
}

// QuestionIndex returns a pointer suitable for LogEvent.Question. Index 0 is
// meaningful, so the field cannot rely on omitempty of a plain int.
func QuestionIndex(i int) *int {
	return &i
}

// Logger writes append-only JSONL events to a log file.
// A nil *Logger discards every event.
type Logger struct {
	path string
	mu   sync.Mutex
}

// NewLogger creates a Logger that writes to log.jsonl inside dir.
// Creates dir if it does not already exist.
// Does not truncate an existing log file.
func NewLogger(dir string) (*Logger, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	return &Logger{
		path: filepath.Join(dir, "log.jsonl"),
	}, nil
}

// Path returns the file the logger appends to.
func (l *Logger) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// Append writes a single LogEvent as one JSON line to the log file.
// If event.Time is the zero value, it is automatically set to time.Now().UTC().
// The file is opened in append mode, written to, and then closed.
// Thread-safe via mutex.
func (l *Logger) Append(event LogEvent) error {
	if l == nil {
		return nil
	}
	if event.Time.IsZero() {
		event.Time = time.Now().UTC()
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal log event: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write log event: %w", err)
	}

	return nil
}

// ReadAll reads and parses all events from the log file.
// Returns an empty slice (not an error) if the file does not exist.
func (l *Logger) ReadAll() ([]LogEvent, error) {
	if l == nil {
		return []LogEvent{}, nil
	}
	f, err := os.Open(l.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []LogEvent{}, nil
		}
		return nil, fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	var events []LogEvent
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var event LogEvent
		if err := json.Unmarshal(line, &event); err != nil {
			return nil, fmt.Errorf("parse log line %d: %w", lineNum, err)
		}
		events = append(events, event)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log file: %w", err)
	}

	return events, nil
}

// Filter returns the events whose type matches event, preserving order.
func Filter(events []LogEvent, event string) []LogEvent {
	var out []LogEvent
	for _, e := range events {
		if e.Event == event {
			out = append(out, e)
		}
	}
	return out
}
