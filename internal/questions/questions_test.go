package questions

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	qs, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	if len(qs) == 0 {
		t.Fatal("embedded list should not be empty")
	}
	for i, q := range qs {
		if q == "" {
			t.Errorf("question %d is blank", i)
		}
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []string
		wantErr error
	}{
		{
			name:  "trims and drops blanks",
			input: "questions:\n  - \"  one  \"\n  - \"\"\n  - two\n",
			want:  []string{"one", "two"},
		},
		{
			name:    "empty list",
			input:   "questions: []\n",
			wantErr: ErrEmpty,
		},
		{
			name:    "missing key",
			input:   "other: 1\n",
			wantErr: ErrEmpty,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse([]byte(tt.input))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("got[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestParseRejectsDuplicates(t *testing.T) {
	_, err := Parse([]byte("questions:\n  - same\n  - same\n"))
	if err == nil {
		t.Fatal("expected error for duplicate questions")
	}
}

func TestParseMalformed(t *testing.T) {
	if _, err := Parse([]byte("questions: [unterminated")); err == nil {
		t.Fatal("expected YAML error")
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "questions.yaml")
	if err := os.WriteFile(path, []byte("questions:\n  - custom\n"), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != 1 || got[0] != "custom" {
		t.Errorf("Load = %v, want [custom]", got)
	}

	def, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\"): %v", err)
	}
	if len(def) == 0 {
		t.Error("Load with empty path should return the embedded list")
	}

	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
