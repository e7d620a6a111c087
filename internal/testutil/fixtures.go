// Package testutil provides test helper utilities for letterloop tests.
package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TempProject creates a temporary directory with the given files and returns its path.
// Files is a map of relative path -> content. Directories are created as needed.
// The directory is automatically cleaned up when the test finishes.
func TempProject(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()

	for relPath, content := range files {
		absPath := filepath.Join(dir, relPath)
		if err := os.MkdirAll(filepath.Dir(absPath), 0755); err != nil {
			t.Fatalf("creating directory for %s: %v", relPath, err)
		}
		if err := os.WriteFile(absPath, []byte(content), 0644); err != nil {
			t.Fatalf("writing %s: %v", relPath, err)
		}
	}

	return dir
}

// OfflineProject returns the files of a project that runs entirely offline:
// mock generation, console email, no debounce delay.
func OfflineProject(questions ...string) map[string]string {
	files := map[string]string{
		".letterloop/config.yaml": `version: 1
interview:
  debounce_ms: 0
  max_follow_ups: 2
  min_characters: 400
  questions_file: .letterloop/questions.yaml
generation:
  provider: mock
  max_tokens: 1000
  max_retries: 0
email:
  provider: console
  developer: dev@example.com
  send_to_user: true
archive:
  path: .letterloop/interviews.db
log_dir: .letterloop
`,
	}
	if len(questions) == 0 {
		questions = []string{"What are you working on?", "What surprised you this month?"}
	}
	files[".letterloop/questions.yaml"] = QuestionsYAML(questions...)
	return files
}

// QuestionsYAML renders a question list file.
func QuestionsYAML(questions ...string) string {
	var b strings.Builder
	b.WriteString("questions:\n")
	for _, q := range questions {
		b.WriteString("  - \"" + strings.ReplaceAll(q, `"`, `\"`) + "\"\n")
	}
	return b.String()
}

// ClearProviderEnv unsets the environment overrides so a test sees only the
// config file it wrote.
func ClearProviderEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"LETTERLOOP_PROVIDER", "LETTERLOOP_MODEL", "LETTERLOOP_DEBOUNCE_MS",
		"LETTERLOOP_METRICS_LISTEN", "LETTERLOOP_DEVELOPER_EMAIL", "LETTERLOOP_SEND_TO_USER",
		"LETTERLOOP_EMAIL_PROVIDER", "SENDGRID_FROM_EMAIL",
	} {
		t.Setenv(key, "")
	}
}
