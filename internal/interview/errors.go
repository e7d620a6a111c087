package interview

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors returned by Engine operations. Each leaves state unchanged.
var (
	ErrEmptyAnswer       = errors.New("interview: answer is empty")
	ErrBusy              = errors.New("interview: processing already in flight")
	ErrNoQuestions       = errors.New("interview: no primary questions")
	ErrInterviewComplete = errors.New("interview: interview already complete")
	ErrNotComplete       = errors.New("interview: interview not complete")
	ErrClosed            = errors.New("interview: engine closed")
)

// Error text markers. Backend output starting with either one is a failure
// and is never appended to the timeline.
const (
	ErrorMarker    = "Error: "
	APIErrorMarker = "API Error ("
)

// QuestionCompleteSignal is the reply a backend sends when it considers the
// active question explored.
const QuestionCompleteSignal = "QUESTION_COMPLETE"

// StatusError is a backend failure that carries an HTTP-like status.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.StatusCode, e.Message)
}

// ErrorText renders err in the marker-prefixed form shown to users and sent
// in place of a summary.
func ErrorText(err error) string {
	if err == nil {
		return ""
	}
	var se *StatusError
	if errors.As(err, &se) {
		return fmt.Sprintf("%s%d): %s", APIErrorMarker, se.StatusCode, se.Message)
	}
	return ErrorMarker + err.Error()
}

// IsErrorText reports whether s is a marker-prefixed error text.
func IsErrorText(s string) bool {
	return strings.HasPrefix(s, APIErrorMarker) || strings.HasPrefix(s, ErrorMarker)
}
