package interview

import (
	"context"
	"time"
)

// Mode selects the backend behaviour for a generation call.
type Mode string

const (
	ModeInterview Mode = "interview"
	ModeArticle   Mode = "article"
)

// GenerateRequest is everything the generation backend receives.
type GenerateRequest struct {
	Mode                 Mode
	Messages             []Message
	UserName             string
	PrimaryQuestion      string
	QuestionIndex        int
	FollowUpCount        int
	AnswerCharacterCount int
}

// Generator produces the next assistant turn. Implementations may return a
// marker-prefixed error text instead of an error; both count as failures.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (string, error)
}

// Delivery is the payload handed to the delivery backend. Exactly one of
// Summary and Error is normally set.
type Delivery struct {
	SessionID  string
	Recipients []string
	UserName   string
	Transcript []Message
	Summary    string
	Error      string
}

// Deliverer sends a finished interview somewhere (email, console).
type Deliverer interface {
	Deliver(ctx context.Context, d Delivery) error
}

// Archiver records finished interviews. Failures never affect the session.
type Archiver interface {
	ArchiveInterview(ctx context.Context, s State) error
}

// Advancement reasons, used for logs and metrics.
const (
	ReasonPolicy           = "policy"
	ReasonSkip             = "skip"
	ReasonGenerationFailed = "generation_failed"
	ReasonSignalled        = "signalled"
	ReasonOvershoot        = "overshoot"
	ReasonFinish           = "finish"
)

// Recorder receives engine metrics. A nil Recorder is replaced by a no-op.
type Recorder interface {
	AnswerSubmitted()
	FollowUpAsked()
	QuestionAdvanced(reason string)
	GenerationObserved(mode Mode, success bool, d time.Duration)
	DeliveryObserved(success bool)
}

type noopRecorder struct{}

func (noopRecorder) AnswerSubmitted() {}
func (noopRecorder) FollowUpAsked() {}
func (noopRecorder) QuestionAdvanced(string) {}
func (noopRecorder) GenerationObserved(Mode, bool, time.Duration) {}
func (noopRecorder) DeliveryObserved(bool) {}
