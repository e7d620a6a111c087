// Package interview implements the conversation progression engine: the
// message timeline, question boundaries, the completion policy, debounced
// submission, and the summary/delivery step that closes an interview.
package interview

import "unicode/utf8"

// Role identifies who authored a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one role-tagged entry in the timeline.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Timeline is the ordered message history of a session. Entries are never
// edited in place once appended.
type Timeline []Message

// Last returns the final message of the timeline.
func (t Timeline) Last() (Message, bool) {
	if len(t) == 0 {
		return Message{}, false
	}
	return t[len(t)-1], true
}

// Clone returns a copy that shares no backing array with t.
func (t Timeline) Clone() Timeline {
	if t == nil {
		return nil
	}
	out := make(Timeline, len(t))
	copy(out, t)
	return out
}

// SkipMarker is the synthetic user message appended when a question is skipped.
const SkipMarker = "[skipped]"

// characterCount measures answer length in characters, not bytes.
func characterCount(s string) int {
	return utf8.RuneCountInString(s)
}
