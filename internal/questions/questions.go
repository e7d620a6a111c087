// Package questions supplies the ordered list of primary interview questions.
package questions

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/letterloop/letterloop/prompts"
)

// ErrEmpty is returned when a question source holds no usable questions.
var ErrEmpty = errors.New("question list is empty")

// file is the YAML shape of a question list.
type file struct {
	Questions []string `yaml:"questions"`
}

// Default returns the embedded question list.
func Default() ([]string, error) {
	return Parse(prompts.DefaultQuestions)
}

// LoadFile reads a question list from a YAML file.
func LoadFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading questions: %w", err)
	}
	qs, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return qs, nil
}

// Load returns the questions in path, or the embedded list when path is empty.
func Load(path string) ([]string, error) {
	if path == "" {
		return Default()
	}
	return LoadFile(path)
}

// Parse decodes a YAML question list. Blank entries are dropped; duplicates
// are rejected because questions are identified by their text.
func Parse(data []byte) ([]string, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing questions: %w", err)
	}

	out := make([]string, 0, len(f.Questions))
	seen := make(map[string]bool, len(f.Questions))
	for _, q := range f.Questions {
		q = strings.TrimSpace(q)
		if q == "" {
			continue
		}
		if seen[q] {
			return nil, fmt.Errorf("duplicate question %q", q)
		}
		seen[q] = true
		out = append(out, q)
	}
	if len(out) == 0 {
		return nil, ErrEmpty
	}
	return out, nil
}
