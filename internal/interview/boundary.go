// boundary.go locates where each primary question's sub-conversation begins.
package interview

// LocateQuestionStart returns the timeline index at which question
// questionIndex begins.
//
// Question 0 always starts at 0. For later questions the timeline is scanned
// for the last assistant message equal to the previous primary question; the
// start is the first assistant message after it that opens questionIndex
// (its own primary text), or the position right after the previous question
// when no opening follows. If the previous question's text is absent the
// result degrades to 0.
//
// Identity is exact text equality. A generated follow-up that repeats a
// primary question verbatim will be taken for that question.
func LocateQuestionStart(timeline Timeline, questionIndex int, primaryQuestions []string) int {
	if questionIndex <= 0 || questionIndex > len(primaryQuestions) {
		return 0
	}

	previous := primaryQuestions[questionIndex-1]
	pos := -1
	for i := len(timeline) - 1; i >= 0; i-- {
		if timeline[i].Role == RoleAssistant && timeline[i].Content == previous {
			pos = i
			break
		}
	}
	if pos == -1 {
		return 0
	}

	if questionIndex < len(primaryQuestions) {
		opening := primaryQuestions[questionIndex]
		for i := pos + 1; i < len(timeline); i++ {
			if timeline[i].Role == RoleAssistant && timeline[i].Content == opening {
				return i
			}
		}
	}
	return pos + 1
}

// MessagesSinceQuestionStart returns the slice of the timeline that belongs to
// the active question. Only meaningful for the question currently in progress.
func MessagesSinceQuestionStart(timeline Timeline, questionIndex int, primaryQuestions []string) Timeline {
	start := LocateQuestionStart(timeline, questionIndex, primaryQuestions)
	if start >= len(timeline) {
		return Timeline{}
	}
	return timeline[start:]
}

// QuestionView is the per-question reconstruction of the flat timeline.
type QuestionView struct {
	Index      int      `json:"index"`
	Question   string   `json:"question"`
	Answers    []string `json:"answers"`
	FollowUps  []string `json:"follow_ups"`
	Skipped    bool     `json:"skipped,omitempty"`
	IsComplete bool     `json:"is_complete"`
}

// AllQuestionsView splits the timeline into one view per primary question.
// Questions after currentIndex have not been reached and carry only their
// text. Pass len(primaryQuestions) as currentIndex to mark every question
// complete.
func AllQuestionsView(timeline Timeline, primaryQuestions []string, currentIndex int) []QuestionView {
	views := make([]QuestionView, 0, len(primaryQuestions))
	last := len(primaryQuestions) - 1

	for i, q := range primaryQuestions {
		view := QuestionView{
			Index:      i,
			Question:   q,
			Answers:    []string{},
			FollowUps:  []string{},
			IsComplete: i < currentIndex,
		}
		if i > currentIndex {
			views = append(views, view)
			continue
		}

		start := LocateQuestionStart(timeline, i, primaryQuestions)
		end := len(timeline)
		if i < currentIndex && i < last {
			end = LocateQuestionStart(timeline, i+1, primaryQuestions)
		}
		if end < start {
			end = start
		}
		fillView(&view, timeline[start:end])
		views = append(views, view)
	}
	return views
}

func fillView(view *QuestionView, slice Timeline) {
	for j, m := range slice {
		switch m.Role {
		case RoleUser:
			if m.Content == SkipMarker {
				view.Skipped = true
				continue
			}
			view.Answers = append(view.Answers, m.Content)
		case RoleAssistant:
			if j == 0 && m.Content == view.Question {
				continue
			}
			view.FollowUps = append(view.FollowUps, m.Content)
		}
	}
}

// measure counts follow-ups and answer characters in the slice of one
// question. The opening assistant message is the primary question itself and
// is not a follow-up.
func measure(slice Timeline, question string) (followUps, characters int) {
	for j, m := range slice {
		switch m.Role {
		case RoleAssistant:
			if j == 0 && m.Content == question {
				continue
			}
			followUps++
		case RoleUser:
			if m.Content == SkipMarker {
				continue
			}
			characters += characterCount(m.Content)
		}
	}
	return followUps, characters
}
