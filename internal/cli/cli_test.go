package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/letterloop/letterloop/internal/log"
	"github.com/letterloop/letterloop/internal/session"
	"github.com/letterloop/letterloop/internal/testutil"
)

func TestMain(m *testing.M) {
	isTTY = func() bool { return false }
	os.Exit(m.Run())
}

// execute runs the command tree against dir with stdin as input and returns
// everything written to stdout and stderr.
func execute(t *testing.T, dir, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append(args, "--dir", dir))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestInterviewEndToEnd(t *testing.T) {
	testutil.ClearProviderEnv(t)
	dir := testutil.TempProject(t, testutil.OfflineProject("What are you working on?", "What surprised you?"))

	out, err := execute(t, dir, "I build tools for bakers\n/skip\n/finish\n",
		"--name", "Ada", "--email", "ada@example.com")
	if err != nil {
		t.Fatalf("interview failed: %v\n%s", err, out)
	}
	for _, want := range []string{
		"AI: What are you working on?",
		"AI: What surprised you?",
		"To: dev@example.com, ada@example.com",
		"Subject: Interview Summary - Complete",
		"Summary emailed.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	// The finished interview is archived and listed.
	out, err = execute(t, dir, "", "sessions")
	if err != nil {
		t.Fatalf("sessions failed: %v", err)
	}
	if !strings.Contains(out, "Ada") || !strings.Contains(out, session.StatusComplete) {
		t.Fatalf("sessions output missing archived interview:\n%s", out)
	}
	id := strings.Fields(out)[0]

	out, err = execute(t, dir, "", "show", id)
	if err != nil {
		t.Fatalf("show failed: %v", err)
	}
	for _, want := range []string{"Name: Ada", "Email: sent", "You: I build tools for bakers", "--- Summary ---"} {
		if !strings.Contains(out, want) {
			t.Errorf("show output missing %q:\n%s", want, out)
		}
	}

	out, err = execute(t, dir, "", "resend", id)
	if err != nil {
		t.Fatalf("resend failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Subject: Interview Summary - Complete") || !strings.Contains(out, "Delivered "+id) {
		t.Errorf("resend output:\n%s", out)
	}

	out, err = execute(t, dir, "", "report", id)
	if err != nil {
		t.Fatalf("report failed: %v", err)
	}
	for _, want := range []string{"Interview Report", "[-] 1. What are you working on?", "closed by: finish", "Email:       sent (2 attempts)"} {
		if !strings.Contains(out, want) {
			t.Errorf("report output missing %q:\n%s", want, out)
		}
	}

	logger, err := log.NewLogger(filepath.Join(dir, ".letterloop"))
	if err != nil {
		t.Fatal(err)
	}
	events, err := logger.ReadAll()
	if err != nil {
		t.Fatalf("reading log: %v", err)
	}
	if len(log.Filter(events, log.EventEmailSent)) != 2 {
		t.Errorf("expected 2 email_sent events (interview + resend), got %d", len(log.Filter(events, log.EventEmailSent)))
	}
}

func TestInterviewRejectsBadQuestions(t *testing.T) {
	testutil.ClearProviderEnv(t)
	files := testutil.OfflineProject()
	files[".letterloop/questions.yaml"] = "questions: []\n"
	dir := testutil.TempProject(t, files)

	_, err := execute(t, dir, "", "--mock")
	if err == nil || !strings.Contains(err.Error(), "loading questions") {
		t.Fatalf("expected question loading error, got %v", err)
	}
}

func TestInit(t *testing.T) {
	testutil.ClearProviderEnv(t)
	dir := t.TempDir()

	out, err := execute(t, dir, "", "init", "--with-questions")
	if err != nil {
		t.Fatalf("init failed: %v", err)
	}
	if !strings.Contains(out, "Wrote") {
		t.Errorf("unexpected init output:\n%s", out)
	}
	if _, err := os.Stat(filepath.Join(dir, ".letterloop", "config.yaml")); err != nil {
		t.Errorf("config not written: %v", err)
	}
	gitignore, err := os.ReadFile(filepath.Join(dir, ".gitignore"))
	if err != nil {
		t.Fatalf("reading .gitignore: %v", err)
	}
	if !strings.Contains(string(gitignore), ".letterloop/interviews.db") {
		t.Errorf(".gitignore missing archive entry:\n%s", gitignore)
	}

	out, err = execute(t, dir, "", "questions")
	if err != nil {
		t.Fatalf("questions failed: %v", err)
	}
	if !strings.HasPrefix(out, "1. ") {
		t.Errorf("questions output:\n%s", out)
	}

	out, err = execute(t, dir, "n\n", "init")
	if err != nil {
		t.Fatalf("second init failed: %v", err)
	}
	if !strings.Contains(out, "Aborted.") {
		t.Errorf("existing config should prompt before overwrite:\n%s", out)
	}
}

func TestEnsureGitignoreIdempotent(t *testing.T) {
	dir := testutil.TempProject(t, map[string]string{".gitignore": "node_modules/"})

	if err := ensureGitignore(dir); err != nil {
		t.Fatal(err)
	}
	if err := ensureGitignore(dir); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(dir, ".gitignore"))
	if err != nil {
		t.Fatal(err)
	}
	content := string(data)
	if strings.Count(content, ".letterloop/log.jsonl") != 1 {
		t.Errorf("entries duplicated:\n%s", content)
	}
	if !strings.HasPrefix(content, "node_modules/\n") {
		t.Errorf("existing content should be kept:\n%s", content)
	}
}

func TestQuestionsFlag(t *testing.T) {
	testutil.ClearProviderEnv(t)
	dir := testutil.TempProject(t, map[string]string{
		"custom.yaml": testutil.QuestionsYAML("First?", "Second?"),
	})

	out, err := execute(t, dir, "", "questions", "--questions", filepath.Join(dir, "custom.yaml"))
	if err != nil {
		t.Fatalf("questions failed: %v", err)
	}
	if out != "1. First?\n2. Second?\n" {
		t.Errorf("questions output = %q", out)
	}
}

func TestResendRequiresCompleteInterview(t *testing.T) {
	testutil.ClearProviderEnv(t)
	dir := testutil.TempProject(t, testutil.OfflineProject())

	store, err := session.NewStore(filepath.Join(dir, ".letterloop", "interviews.db"))
	if err != nil {
		t.Fatal(err)
	}
	rec := session.Record{
		Interview: session.Interview{ID: "open-1", Status: session.StatusInProgress},
		Messages:  []session.Message{{Role: "assistant", Content: "What are you working on?"}},
	}
	if err := store.SaveInterview(context.Background(), rec); err != nil {
		t.Fatal(err)
	}
	_ = store.Close()

	_, err = execute(t, dir, "", "resend", "open-1")
	if err == nil || !strings.Contains(err.Error(), "not complete") {
		t.Errorf("expected not complete error, got %v", err)
	}
}

func TestShowUnknownInterview(t *testing.T) {
	testutil.ClearProviderEnv(t)
	dir := testutil.TempProject(t, testutil.OfflineProject())

	_, err := execute(t, dir, "", "show", "missing")
	if !errors.Is(err, session.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSessionsEmpty(t *testing.T) {
	testutil.ClearProviderEnv(t)
	dir := testutil.TempProject(t, testutil.OfflineProject())

	out, err := execute(t, dir, "", "sessions")
	if err != nil {
		t.Fatalf("sessions failed: %v", err)
	}
	if !strings.Contains(out, "No interviews archived yet") {
		t.Errorf("sessions output:\n%s", out)
	}
}

func TestCleanKeepRecent(t *testing.T) {
	testutil.ClearProviderEnv(t)
	dir := testutil.TempProject(t, testutil.OfflineProject())

	store, err := session.NewStore(filepath.Join(dir, ".letterloop", "interviews.db"))
	if err != nil {
		t.Fatal(err)
	}
	for _, id := range []string{"one", "two"} {
		rec := session.Record{Interview: session.Interview{ID: id, Status: session.StatusInProgress}}
		if err := store.SaveInterview(context.Background(), rec); err != nil {
			t.Fatal(err)
		}
	}
	_ = store.Close()

	out, err := execute(t, dir, "", "clean", "--keep", "1", "--dry-run")
	if err != nil {
		t.Fatalf("clean failed: %v", err)
	}
	if !strings.Contains(out, "Would remove 1 interview(s).") {
		t.Errorf("dry-run output:\n%s", out)
	}

	out, err = execute(t, dir, "", "clean", "--keep", "1")
	if err != nil {
		t.Fatalf("clean failed: %v", err)
	}
	if !strings.Contains(out, "Removed 1 interview(s).") {
		t.Errorf("clean output:\n%s", out)
	}

	out, err = execute(t, dir, "", "clean")
	if err != nil {
		t.Fatalf("clean failed: %v", err)
	}
	if !strings.Contains(out, "No interviews to clean up.") {
		t.Errorf("recent interviews should survive age-based cleanup:\n%s", out)
	}
}
