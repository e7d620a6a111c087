package log

import (
	"os"
	"path/filepath"
	"testing"
)

func TestAppendAndReadAll(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	logger, err := NewLogger(dir)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}

	if err := logger.Append(LogEvent{Event: EventInterviewStarted, SessionID: "s1"}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := logger.Append(LogEvent{
		Event:      EventQuestionAdvanced,
		SessionID:  "s1",
		Question:   QuestionIndex(0),
		Reason:     "policy",
		Characters: 410,
	}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	events, err := logger.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].Time.IsZero() {
		t.Error("expected Append to stamp the event time")
	}
	adv := events[1]
	if adv.Question == nil || *adv.Question != 0 {
		t.Errorf("question index = %v, want 0", adv.Question)
	}
	if adv.Reason != "policy" || adv.Characters != 410 {
		t.Errorf("unexpected event %+v", adv)
	}
}

func TestReadAllMissingFile(t *testing.T) {
	logger, err := NewLogger(t.TempDir())
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	events, err := logger.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("got %d events, want 0", len(events))
	}
}

func TestReadAllMalformedLine(t *testing.T) {
	dir := t.TempDir()
	logger, err := NewLogger(dir)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	if err := os.WriteFile(logger.Path(), []byte("{not json}\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := logger.ReadAll(); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestNilLoggerDiscards(t *testing.T) {
	var logger *Logger
	if err := logger.Append(LogEvent{Event: EventEmailSent}); err != nil {
		t.Fatalf("nil Append: %v", err)
	}
	events, err := logger.ReadAll()
	if err != nil || len(events) != 0 {
		t.Fatalf("nil ReadAll = %v, %v", events, err)
	}
}

func TestFilter(t *testing.T) {
	events := []LogEvent{
		{Event: EventFollowUpAsked},
		{Event: EventEmailSent},
		{Event: EventFollowUpAsked},
	}
	if got := Filter(events, EventFollowUpAsked); len(got) != 2 {
		t.Fatalf("Filter returned %d events, want 2", len(got))
	}
}
