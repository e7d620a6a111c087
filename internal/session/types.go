// Package session provides SQLite-backed persistence for finished interviews.
package session

import "time"

// Interview status values.
const (
	StatusInProgress = "in_progress"
	StatusComplete   = "complete"
)

// Interview is the archived header of one interview session.
type Interview struct {
	ID              string
	UserName        string
	UserEmail       string
	Status          string // in_progress, complete
	CurrentQuestion int
	Article         string
	SummaryError    string
	EmailSent       bool
	DeliveryError   string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Message represents one timeline entry of an archived interview.
type Message struct {
	ID          int
	InterviewID string
	Position    int
	Role        string // user, assistant
	Content     string
	Timestamp   time.Time
}

// QuestionRecord is the stored progress of one primary question.
type QuestionRecord struct {
	Index      int
	Question   string
	FollowUps  int
	Characters int
	Complete   bool
}

// Record is everything written for one interview.
type Record struct {
	Interview Interview
	Messages  []Message
	Questions []QuestionRecord
}

// Summary provides a high-level view of an interview for listing.
type Summary struct {
	ID        string
	UserName  string
	Status    string
	Messages  int
	EmailSent bool
	HasError  bool
	UpdatedAt time.Time
}
