// Package report builds per-interview summaries from the archive and the event log.
package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/letterloop/letterloop/internal/log"
	"github.com/letterloop/letterloop/internal/session"
)

// Source is the part of the archive a report reads.
type Source interface {
	GetInterview(ctx context.Context, id string) (*session.Interview, error)
	GetQuestions(ctx context.Context, id string) ([]session.QuestionRecord, error)
}

// QuestionStat is one primary question's line in the report.
type QuestionStat struct {
	Index      int
	Question   string
	FollowUps  int
	Characters int
	Complete   bool
	Skipped    bool
	Reason     string // why the question advanced, from the log
}

// Report holds the aggregated statistics for one interview.
type Report struct {
	ID                 string
	UserName           string
	Status             string
	Questions          []QuestionStat
	Answers            int
	GenerationFailures int
	Duration           time.Duration
	HasSummary         bool
	SummaryError       string
	EmailSent          bool
	DeliveryError      string
	Deliveries         int
}

// Generate gathers the archived record of id and the log events of its
// session into a Report. Missing log history yields zero counts rather than
// an error.
func Generate(ctx context.Context, src Source, events []log.LogEvent, id string) (*Report, error) {
	iv, err := src.GetInterview(ctx, id)
	if err != nil {
		return nil, err
	}
	questions, err := src.GetQuestions(ctx, id)
	if err != nil {
		return nil, err
	}

	r := &Report{
		ID:            iv.ID,
		UserName:      iv.UserName,
		Status:        iv.Status,
		HasSummary:    iv.Article != "",
		SummaryError:  iv.SummaryError,
		EmailSent:     iv.EmailSent,
		DeliveryError: iv.DeliveryError,
	}

	index := make(map[int]int, len(questions))
	for _, q := range questions {
		index[q.Index] = len(r.Questions)
		r.Questions = append(r.Questions, QuestionStat{
			Index:      q.Index,
			Question:   q.Question,
			FollowUps:  q.FollowUps,
			Characters: q.Characters,
			Complete:   q.Complete,
		})
	}

	own := forSession(events, id)
	for _, e := range own {
		switch e.Event {
		case log.EventAnswerSubmitted:
			r.Answers++
		case log.EventGenerationFailed:
			r.GenerationFailures++
		case log.EventEmailSent, log.EventEmailFailed:
			r.Deliveries++
		case log.EventQuestionSkipped, log.EventQuestionAdvanced:
			if e.Question == nil {
				continue
			}
			i, ok := index[*e.Question]
			if !ok {
				continue
			}
			if e.Event == log.EventQuestionSkipped {
				r.Questions[i].Skipped = true
			} else {
				r.Questions[i].Reason = e.Reason
			}
		}
	}
	r.Duration = computeDuration(own)

	return r, nil
}

// forSession returns the events of one session, preserving order.
func forSession(events []log.LogEvent, id string) []log.LogEvent {
	var out []log.LogEvent
	for _, e := range events {
		if e.SessionID == id {
			out = append(out, e)
		}
	}
	return out
}

// FormatReport produces a terminal-friendly, human-readable summary string.
func FormatReport(r *Report) string {
	var b strings.Builder

	b.WriteString("========================================\n")
	b.WriteString("  Interview Report\n")
	b.WriteString("========================================\n")
	b.WriteString("\n")

	fmt.Fprintf(&b, "Interview:   %s\n", r.ID)
	if r.UserName != "" {
		fmt.Fprintf(&b, "Name:        %s\n", r.UserName)
	}
	fmt.Fprintf(&b, "Status:      %s\n", r.Status)
	b.WriteString("\n")

	if len(r.Questions) > 0 {
		b.WriteString("Questions:\n")
		for _, q := range r.Questions {
			mark := " "
			switch {
			case q.Skipped:
				mark = "-"
			case q.Complete:
				mark = "x"
			}
			fmt.Fprintf(&b, "  [%s] %d. %s\n", mark, q.Index+1, q.Question)
			fmt.Fprintf(&b, "        follow-ups: %d  characters: %d", q.FollowUps, q.Characters)
			if q.Reason != "" {
				fmt.Fprintf(&b, "  closed by: %s", q.Reason)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if r.Answers > 0 {
		fmt.Fprintf(&b, "Answers:     %d\n", r.Answers)
	}
	if r.GenerationFailures > 0 {
		fmt.Fprintf(&b, "Failures:    %d generation errors\n", r.GenerationFailures)
	}

	switch {
	case r.HasSummary:
		b.WriteString("Summary:     written\n")
	case r.SummaryError != "":
		fmt.Fprintf(&b, "Summary:     failed (%s)\n", r.SummaryError)
	default:
		b.WriteString("Summary:     none\n")
	}

	switch {
	case r.EmailSent:
		fmt.Fprintf(&b, "Email:       sent (%d attempts)\n", r.Deliveries)
	case r.DeliveryError != "":
		fmt.Fprintf(&b, "Email:       failed (%s)\n", r.DeliveryError)
	default:
		b.WriteString("Email:       not sent\n")
	}

	if r.Duration > 0 {
		fmt.Fprintf(&b, "Duration:    %s\n", formatDuration(r.Duration))
	}

	b.WriteString("========================================\n")

	return b.String()
}

// WriteReport writes the formatted report to {dir}/report-{id}.md.
// Creates dir if it does not exist.
func WriteReport(dir string, r *Report) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating report directory: %w", err)
	}

	path := filepath.Join(dir, "report-"+r.ID+".md")
	if err := os.WriteFile(path, []byte(FormatReport(r)), 0644); err != nil {
		return "", fmt.Errorf("writing report file: %w", err)
	}

	return path, nil
}

// computeDuration measures a session from its interview_started (or
// interview_reset) event to its interview_complete event, or to the last
// event seen when it never finished.
func computeDuration(events []log.LogEvent) time.Duration {
	var start, end time.Time

	for _, e := range events {
		isStart := e.Event == log.EventInterviewStarted || e.Event == log.EventInterviewReset
		if isStart && start.IsZero() {
			start = e.Time
		}
		if !e.Time.IsZero() {
			end = e.Time
		}
		if e.Event == log.EventInterviewComplete {
			end = e.Time
			break
		}
	}

	if start.IsZero() || end.IsZero() {
		return 0
	}

	d := end.Sub(start)
	if d < 0 {
		return 0
	}

	return d
}

// formatDuration produces a human-readable duration string such as "5m 32s"
// or "1h 12m 5s". Sub-second durations are shown as "< 1s".
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return "< 1s"
	}

	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60

	switch {
	case h > 0:
		return fmt.Sprintf("%dh %dm %ds", h, m, s)
	case m > 0:
		return fmt.Sprintf("%dm %ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}
