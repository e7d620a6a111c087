package interview

// QuestionProgress tracks one primary question. Both counters start at zero
// when the question opens and never decrease while it is active.
type QuestionProgress struct {
	FollowUpCount  int  `json:"follow_up_count"`
	CharacterCount int  `json:"character_count"`
	IsComplete     bool `json:"is_complete"`
}

// State is the whole session as owned by the Engine. Values returned by
// Engine.State are deep copies.
type State struct {
	// Version increases on every mutation so observers can drop stale snapshots.
	Version uint64 `json:"version"`

	SessionID            string                   `json:"session_id"`
	UserName             string                   `json:"user_name"`
	UserEmail            string                   `json:"user_email,omitempty"`
	Questions            []string                 `json:"questions"`
	Timeline             Timeline                 `json:"timeline"`
	CurrentQuestionIndex int                      `json:"current_question_index"`
	QuestionProgress     map[int]QuestionProgress `json:"question_progress"`
	InterviewComplete    bool                     `json:"interview_complete"`
	Processing           bool                     `json:"processing"`
	PendingSubmission    bool                     `json:"pending_submission"`

	Article       string `json:"article,omitempty"`
	SummaryError  string `json:"summary_error,omitempty"`
	EmailSent     bool   `json:"email_sent"`
	DeliveryError string `json:"delivery_error,omitempty"`
}

// newState seeds a session with the first primary question.
func newState(sessionID string, questions []string) State {
	s := State{
		SessionID:        sessionID,
		Questions:        questions,
		Timeline:         Timeline{},
		QuestionProgress: map[int]QuestionProgress{},
	}
	if len(questions) > 0 {
		s.Timeline = append(s.Timeline, Message{Role: RoleAssistant, Content: questions[0]})
		s.QuestionProgress[0] = QuestionProgress{}
	}
	return s
}

func (s State) clone() State {
	out := s
	out.Timeline = s.Timeline.Clone()
	out.Questions = append([]string(nil), s.Questions...)
	out.QuestionProgress = make(map[int]QuestionProgress, len(s.QuestionProgress))
	for k, v := range s.QuestionProgress {
		out.QuestionProgress[k] = v
	}
	return out
}

// Progress returns the progress of question i, zero if it has not started.
func (s State) Progress(i int) QuestionProgress {
	return s.QuestionProgress[i]
}

// CurrentQuestion returns the text of the active question.
func (s State) CurrentQuestion() string {
	if s.CurrentQuestionIndex < 0 || s.CurrentQuestionIndex >= len(s.Questions) {
		return ""
	}
	return s.Questions[s.CurrentQuestionIndex]
}

// AwaitingUser reports whether the engine is waiting for the next answer.
func (s State) AwaitingUser() bool {
	if s.InterviewComplete || s.Processing {
		return false
	}
	last, ok := s.Timeline.Last()
	return ok && last.Role == RoleAssistant
}
