package interview

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/letterloop/letterloop/internal/log"
)

// Option configures an Engine.
type Option func(*Engine)

// WithPolicy overrides the completion thresholds.
func WithPolicy(p Policy) Option {
	return func(e *Engine) { e.policy = p }
}

// WithDebounce overrides the idle window used for deferred submissions.
func WithDebounce(d time.Duration) Option {
	return func(e *Engine) { e.debounce = d }
}

// WithLogger sets the event logger.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(e *Engine) {
		if r != nil {
			e.recorder = r
		}
	}
}

// WithArchiver stores every finished interview.
func WithArchiver(a Archiver) Option {
	return func(e *Engine) { e.archiver = a }
}

// WithDeveloperEmail sets the address that always receives the summary.
func WithDeveloperEmail(addr string) Option {
	return func(e *Engine) { e.developer = addr }
}

// WithUser sets the interviewee's name and optional email address.
func WithUser(name, email string) Option {
	return func(e *Engine) {
		e.userName = name
		e.userEmail = email
	}
}

// WithSessionID fixes the first session id. Start over always mints a new one.
func WithSessionID(id string) Option {
	return func(e *Engine) { e.sessionID = id }
}

// WithOnChange registers a callback that receives a snapshot after every
// mutation. It is called without the engine lock held, possibly from a
// timer goroutine.
func WithOnChange(fn func(State)) Option {
	return func(e *Engine) { e.onChange = fn }
}

// Engine is the progression controller. It owns the session state; callers
// only see copies. All methods are safe for concurrent use.
type Engine struct {
	mu        sync.Mutex
	state     State
	inFlight  bool
	epoch     uint64
	closed    bool
	questions []string

	policy    Policy
	debounce  time.Duration
	debouncer Debouncer
	gen       Generator
	finalizer *Finalizer
	archiver  Archiver
	logger    *log.Logger
	recorder  Recorder
	onChange  func(State)

	developer string
	userName  string
	userEmail string
	sessionID string

	// base outlives individual calls; deferred processing runs under it.
	base   context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates an Engine seeded with the first primary question. An empty
// question list yields an engine with an empty timeline whose operations
// return ErrNoQuestions.
func New(questions []string, gen Generator, del Deliverer, opts ...Option) *Engine {
	e := &Engine{
		questions: append([]string(nil), questions...),
		policy:    DefaultPolicy,
		debounce:  DefaultDebounce,
		gen:       gen,
		recorder:  noopRecorder{},
	}
	for _, opt := range opts {
		opt(e)
	}
	e.finalizer = NewFinalizer(gen, del, e.logger, e.recorder)
	e.base, e.cancel = context.WithCancel(context.Background())

	if e.sessionID == "" {
		e.sessionID = uuid.NewString()
	}
	e.state = newState(e.sessionID, e.questions)
	e.state.UserName = e.userName
	e.state.UserEmail = e.userEmail

	_ = e.logger.Append(log.LogEvent{
		Event:     log.EventInterviewStarted,
		SessionID: e.state.SessionID,
		Data:      map[string]interface{}{"questions": len(e.questions)},
	})
	return e
}

// State returns a deep copy of the current session state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// Questions returns the per-question view of the current timeline.
func (e *Engine) Questions() []QuestionView {
	e.mu.Lock()
	defer e.mu.Unlock()
	current := e.state.CurrentQuestionIndex
	if e.state.InterviewComplete {
		current = len(e.questions)
	}
	return AllQuestionsView(e.state.Timeline, e.questions, current)
}

// SetUser updates the interviewee's name and email. Takes effect for the
// next generation and delivery.
func (e *Engine) SetUser(name, email string) {
	e.mu.Lock()
	e.userName = strings.TrimSpace(name)
	e.userEmail = strings.TrimSpace(email)
	e.state.UserName = e.userName
	e.state.UserEmail = e.userEmail
	snap := e.touchLocked()
	e.mu.Unlock()
	e.emit(snap)
}

// SubmitAnswer appends text as a user turn. With immediate set, processing
// runs on the calling goroutine; otherwise it is deferred until the idle
// window passes without another submission.
func (e *Engine) SubmitAnswer(ctx context.Context, text string, immediate bool) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyAnswer
	}

	e.mu.Lock()
	if err := e.acceptLocked(); err != nil {
		e.mu.Unlock()
		return err
	}
	idx := e.state.CurrentQuestionIndex
	n := characterCount(text)
	e.state.Timeline = append(e.state.Timeline, Message{Role: RoleUser, Content: text})
	p := e.state.QuestionProgress[idx]
	p.CharacterCount += n
	e.state.QuestionProgress[idx] = p
	e.state.PendingSubmission = !immediate
	snap := e.touchLocked()
	e.mu.Unlock()

	e.recorder.AnswerSubmitted()
	_ = e.logger.Append(log.LogEvent{
		Event:      log.EventAnswerSubmitted,
		SessionID:  snap.SessionID,
		Question:   log.QuestionIndex(idx),
		Characters: n,
	})
	e.emit(snap)

	if immediate {
		var err error
		e.debouncer.RunNow(func() { err = e.Process(ctx) })
		return err
	}
	e.debouncer.Schedule(e.debounce, e.processDeferred)
	return nil
}

// SubmitPending runs a deferred submission now instead of waiting out the
// idle window. It does nothing when no submission is pending.
func (e *Engine) SubmitPending(ctx context.Context) error {
	if !e.debouncer.Cancel() {
		return nil
	}
	return e.Process(ctx)
}

func (e *Engine) processDeferred() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.wg.Add(1)
	e.mu.Unlock()
	defer e.wg.Done()

	_ = e.Process(e.base)
}

// Process runs one progression pass over the latest timeline. It is a no-op
// when the last message is an assistant turn, so repeated calls never reach
// the backend twice for the same answer.
func (e *Engine) Process(ctx context.Context) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrClosed
	}
	ctx, done := e.trackLocked(ctx)
	defer done()
	if e.inFlight {
		e.mu.Unlock()
		return ErrBusy
	}
	e.state.PendingSubmission = false
	last, ok := e.state.Timeline.Last()
	if e.state.InterviewComplete || !ok || last.Role == RoleAssistant {
		e.mu.Unlock()
		return nil
	}

	idx := e.state.CurrentQuestionIndex
	p := e.state.QuestionProgress[idx]
	if e.policy.ShouldAdvance(p.FollowUpCount, p.CharacterCount) {
		e.advance(ctx, ReasonPolicy)
		return nil
	}

	req := GenerateRequest{
		Mode:                 ModeInterview,
		Messages:             e.state.Timeline.Clone(),
		UserName:             e.state.UserName,
		PrimaryQuestion:      e.questions[idx],
		QuestionIndex:        idx,
		FollowUpCount:        p.FollowUpCount,
		AnswerCharacterCount: p.CharacterCount,
	}
	epoch := e.epoch
	sessionID := e.state.SessionID
	e.inFlight = true
	e.state.Processing = true
	snap := e.touchLocked()
	e.mu.Unlock()
	e.emit(snap)

	start := time.Now()
	reply, err := e.gen.Generate(ctx, req)
	elapsed := time.Since(start)

	e.mu.Lock()
	if e.closed {
		e.inFlight = false
		e.mu.Unlock()
		return ErrClosed
	}
	if e.epoch != epoch {
		e.mu.Unlock()
		_ = e.logger.Append(log.LogEvent{
			Event:      log.EventReplyDiscarded,
			SessionID:  sessionID,
			Question:   log.QuestionIndex(idx),
			DurationMs: elapsed.Milliseconds(),
		})
		return nil
	}
	e.inFlight = false
	e.state.Processing = false

	failure := ""
	switch {
	case err != nil:
		failure = ErrorText(err)
	case IsErrorText(reply):
		failure = reply
	case strings.TrimSpace(reply) == "":
		failure = ErrorMarker + "empty reply"
	}
	e.recorder.GenerationObserved(ModeInterview, failure == "", elapsed)

	switch {
	case failure != "":
		_ = e.logger.Append(log.LogEvent{
			Event:      log.EventGenerationFailed,
			SessionID:  e.state.SessionID,
			Question:   log.QuestionIndex(idx),
			Error:      failure,
			DurationMs: elapsed.Milliseconds(),
		})
		e.advance(ctx, ReasonGenerationFailed)
	case strings.HasPrefix(strings.TrimSpace(reply), QuestionCompleteSignal):
		e.advance(ctx, ReasonSignalled)
	case e.overshoot(idx, p.FollowUpCount):
		e.advance(ctx, ReasonOvershoot)
	default:
		e.state.Timeline = append(e.state.Timeline, Message{Role: RoleAssistant, Content: reply})
		p = e.state.QuestionProgress[idx]
		p.FollowUpCount++
		e.state.QuestionProgress[idx] = p
		snap := e.touchLocked()
		e.mu.Unlock()

		e.recorder.FollowUpAsked()
		_ = e.logger.Append(log.LogEvent{
			Event:      log.EventFollowUpAsked,
			SessionID:  snap.SessionID,
			Question:   log.QuestionIndex(idx),
			FollowUps:  p.FollowUpCount,
			DurationMs: elapsed.Milliseconds(),
		})
		e.emit(snap)
	}
	return nil
}

// SkipQuestion closes the active question with a skip marker.
func (e *Engine) SkipQuestion(ctx context.Context) error {
	e.mu.Lock()
	if err := e.acceptLocked(); err != nil {
		e.mu.Unlock()
		return err
	}
	ctx, done := e.trackLocked(ctx)
	defer done()
	e.debouncer.Cancel()
	e.state.PendingSubmission = false
	e.state.Timeline = append(e.state.Timeline, Message{Role: RoleUser, Content: SkipMarker})
	_ = e.logger.Append(log.LogEvent{
		Event:     log.EventQuestionSkipped,
		SessionID: e.state.SessionID,
		Question:  log.QuestionIndex(e.state.CurrentQuestionIndex),
	})
	e.advance(ctx, ReasonSkip)
	return nil
}

// Finish ends the interview early. Every remaining question is marked
// complete and the summary is produced from the conversation so far.
func (e *Engine) Finish(ctx context.Context) error {
	e.mu.Lock()
	if err := e.acceptLocked(); err != nil {
		e.mu.Unlock()
		return err
	}
	ctx, done := e.trackLocked(ctx)
	defer done()
	e.debouncer.Cancel()
	e.state.PendingSubmission = false
	for i := e.state.CurrentQuestionIndex; i < len(e.questions)-1; i++ {
		p := e.state.QuestionProgress[i]
		p.IsComplete = true
		e.state.QuestionProgress[i] = p
	}
	e.state.CurrentQuestionIndex = len(e.questions) - 1
	e.advance(ctx, ReasonFinish)
	return nil
}

// StartOver discards the session and reseeds it with the first question.
// A reply still in flight is dropped when it arrives.
func (e *Engine) StartOver() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrClosed
	}
	e.debouncer.Cancel()
	e.epoch++
	e.inFlight = false
	previous := e.state.SessionID
	e.sessionID = uuid.NewString()
	version := e.state.Version
	e.state = newState(e.sessionID, e.questions)
	e.state.Version = version
	e.state.UserName = e.userName
	e.state.UserEmail = e.userEmail
	snap := e.touchLocked()
	e.mu.Unlock()

	_ = e.logger.Append(log.LogEvent{
		Event:     log.EventInterviewReset,
		SessionID: snap.SessionID,
		Data:      map[string]interface{}{"previous": previous},
	})
	e.emit(snap)
	return nil
}

// Resend delivers the finished interview again with whatever summary or
// error it currently holds. The summary is not regenerated.
func (e *Engine) Resend(ctx context.Context) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrClosed
	}
	if !e.state.InterviewComplete {
		e.mu.Unlock()
		return ErrNotComplete
	}
	if e.inFlight {
		e.mu.Unlock()
		return ErrBusy
	}
	ctx, done := e.trackLocked(ctx)
	defer done()
	d := e.deliveryLocked()
	d.Summary = e.state.Article
	d.Error = e.state.SummaryError
	epoch := e.epoch
	e.inFlight = true
	e.state.Processing = true
	snap := e.touchLocked()
	e.mu.Unlock()
	e.emit(snap)

	err := e.finalizer.Deliver(ctx, d)

	e.mu.Lock()
	if e.epoch != epoch {
		e.mu.Unlock()
		return err
	}
	e.inFlight = false
	e.state.Processing = false
	if err == nil {
		e.state.EmailSent = true
		e.state.DeliveryError = ""
	} else {
		e.state.DeliveryError = err.Error()
	}
	snap = e.touchLocked()
	e.mu.Unlock()

	e.emit(snap)
	e.archive(ctx, snap)
	return err
}

// RegenerateSummary asks for a new summary of a finished interview and
// delivers it.
func (e *Engine) RegenerateSummary(ctx context.Context) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrClosed
	}
	if !e.state.InterviewComplete {
		e.mu.Unlock()
		return ErrNotComplete
	}
	if e.inFlight {
		e.mu.Unlock()
		return ErrBusy
	}
	ctx, done := e.trackLocked(ctx)
	defer done()
	e.beginFinalizeLocked(ctx)
	return nil
}

// Close cancels pending and in-flight work and waits for it to return,
// including passes started on a caller's context. The engine rejects every
// operation afterwards.
func (e *Engine) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	e.mu.Unlock()

	e.debouncer.Stop()
	e.cancel()
	e.wg.Wait()
}

// trackLocked registers an operation with Close. The returned context is
// also cancelled by Close; done must be called when the operation returns.
// Called with e.mu held on an open engine.
func (e *Engine) trackLocked(ctx context.Context) (context.Context, func()) {
	e.wg.Add(1)
	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(e.base, cancel)
	return ctx, func() {
		stop()
		cancel()
		e.wg.Done()
	}
}

// overshoot reports whether appending one more follow-up would exceed the
// cap. The count is re-measured from the timeline as well as taken from the
// stored progress; the larger one wins.
func (e *Engine) overshoot(idx, counted int) bool {
	slice := MessagesSinceQuestionStart(e.state.Timeline, idx, e.questions)
	measured, _ := measure(slice, e.questions[idx])
	if measured > counted {
		counted = measured
	}
	return counted+1 > e.policy.MaxFollowUps
}

func (e *Engine) acceptLocked() error {
	switch {
	case e.closed:
		return ErrClosed
	case len(e.questions) == 0:
		return ErrNoQuestions
	case e.state.InterviewComplete:
		return ErrInterviewComplete
	case e.inFlight:
		return ErrBusy
	}
	return nil
}

// advance closes the active question and either opens the next one or
// finalizes the interview. Called with e.mu held; returns with it released.
func (e *Engine) advance(ctx context.Context, reason string) {
	idx := e.state.CurrentQuestionIndex
	p := e.state.QuestionProgress[idx]
	p.IsComplete = true
	e.state.QuestionProgress[idx] = p

	e.recorder.QuestionAdvanced(reason)
	_ = e.logger.Append(log.LogEvent{
		Event:      log.EventQuestionAdvanced,
		SessionID:  e.state.SessionID,
		Question:   log.QuestionIndex(idx),
		Reason:     reason,
		FollowUps:  p.FollowUpCount,
		Characters: p.CharacterCount,
	})

	if idx+1 < len(e.questions) {
		next := idx + 1
		e.state.CurrentQuestionIndex = next
		e.state.QuestionProgress[next] = QuestionProgress{}
		e.state.Timeline = append(e.state.Timeline, Message{Role: RoleAssistant, Content: e.questions[next]})
		snap := e.touchLocked()
		e.mu.Unlock()
		e.emit(snap)
		return
	}

	e.state.InterviewComplete = true
	_ = e.logger.Append(log.LogEvent{
		Event:     log.EventInterviewComplete,
		SessionID: e.state.SessionID,
		Messages:  len(e.state.Timeline),
	})
	e.beginFinalizeLocked(ctx)
}

// beginFinalizeLocked runs the summary and delivery step. Called with e.mu
// held; returns with it released once the result has been stored.
func (e *Engine) beginFinalizeLocked(ctx context.Context) {
	d := e.deliveryLocked()
	epoch := e.epoch
	e.inFlight = true
	e.state.Processing = true
	snap := e.touchLocked()
	e.mu.Unlock()
	e.emit(snap)

	res := e.finalizer.Finalize(ctx, d)

	e.mu.Lock()
	if e.epoch != epoch {
		e.mu.Unlock()
		return
	}
	e.inFlight = false
	e.state.Processing = false
	e.state.Article = res.Article
	e.state.SummaryError = res.Error
	e.state.EmailSent = res.Delivered
	e.state.DeliveryError = ""
	if res.DeliveryErr != nil {
		e.state.DeliveryError = res.DeliveryErr.Error()
	}
	snap = e.touchLocked()
	e.mu.Unlock()

	e.emit(snap)
	e.archive(ctx, snap)
}

func (e *Engine) deliveryLocked() Delivery {
	return Delivery{
		SessionID:  e.state.SessionID,
		Recipients: Recipients(e.developer, e.state.UserEmail),
		UserName:   e.state.UserName,
		Transcript: e.state.Timeline.Clone(),
	}
}

func (e *Engine) archive(ctx context.Context, s State) {
	if e.archiver == nil {
		return
	}
	if err := e.archiver.ArchiveInterview(context.WithoutCancel(ctx), s); err != nil {
		_ = e.logger.Append(log.LogEvent{
			Event:     log.EventArchiveFailed,
			SessionID: s.SessionID,
			Error:     err.Error(),
		})
	}
}

func (e *Engine) touchLocked() State {
	e.state.Version++
	return e.snapshotLocked()
}

func (e *Engine) snapshotLocked() State {
	return e.state.clone()
}

func (e *Engine) emit(s State) {
	if e.onChange != nil {
		e.onChange(s)
	}
}

// Recipients returns the delivery addresses: the developer address, plus
// the user's address when it looks like one.
func Recipients(developer, user string) []string {
	var out []string
	if developer = strings.TrimSpace(developer); developer != "" {
		out = append(out, developer)
	}
	if user = strings.TrimSpace(user); strings.Contains(user, "@") && user != developer {
		out = append(out, user)
	}
	return out
}
