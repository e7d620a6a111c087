package tui

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/letterloop/letterloop/internal/generate"
	"github.com/letterloop/letterloop/internal/interview"
	"github.com/letterloop/letterloop/internal/mailer"
)

func TestFallbackRunsInterview(t *testing.T) {
	var mail bytes.Buffer
	gen := generate.NewMock("F1")
	eng := interview.New([]string{"Q0", "Q1"}, gen, mailer.NewConsole(&mail),
		interview.WithDeveloperEmail("dev@example.com"),
		interview.WithUser("Ada", ""),
	)
	defer eng.Close()

	in := strings.NewReader("short answer\n/skip\n/finish\n")
	var out bytes.Buffer
	if err := NewFallbackRunner(eng, in, &out).Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	got := out.String()
	for _, want := range []string{"AI: Q0", "AI: F1", "AI: Q1", "Summary:", "short answer", "Summary emailed."} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
	if !eng.State().InterviewComplete {
		t.Error("interview should be complete")
	}
	if !strings.Contains(mail.String(), "Subject: "+mailer.SubjectComplete) {
		t.Errorf("summary email not written:\n%s", mail.String())
	}
}

func TestFallbackRestart(t *testing.T) {
	gen := generate.NewMock("F1")
	eng := interview.New([]string{"Q0"}, gen, mailer.NewConsole(&bytes.Buffer{}))
	defer eng.Close()

	in := strings.NewReader("first try\n/restart\n/quit\n")
	var out bytes.Buffer
	if err := NewFallbackRunner(eng, in, &out).Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	got := out.String()
	if !strings.Contains(got, "-- starting over --") {
		t.Errorf("restart not reported:\n%s", got)
	}
	if strings.Count(got, "AI: Q0") != 2 {
		t.Errorf("first question should be shown again after restart:\n%s", got)
	}
	if len(eng.State().Timeline) != 1 {
		t.Errorf("timeline after restart = %d messages, want 1", len(eng.State().Timeline))
	}
}

func TestFallbackNoQuestions(t *testing.T) {
	eng := interview.New(nil, generate.NewMock(), mailer.NewConsole(&bytes.Buffer{}))
	defer eng.Close()

	err := NewFallbackRunner(eng, strings.NewReader(""), &bytes.Buffer{}).Run(context.Background())
	if !errors.Is(err, interview.ErrNoQuestions) {
		t.Errorf("expected ErrNoQuestions, got %v", err)
	}
}

func TestFallbackInputEnds(t *testing.T) {
	eng := interview.New([]string{"Q0"}, generate.NewMock(), mailer.NewConsole(&bytes.Buffer{}))
	defer eng.Close()

	var out bytes.Buffer
	if err := NewFallbackRunner(eng, strings.NewReader(""), &out).Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if eng.State().InterviewComplete {
		t.Error("interview should stay open when input ends early")
	}
}
