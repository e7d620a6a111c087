// finalize.go turns a finished timeline into a summary and delivers it.
package interview

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/letterloop/letterloop/internal/log"
)

// SummaryInstruction is the synthetic user turn that asks for the newsletter summary.
const SummaryInstruction = "Please write the newsletter summary based on our conversation so far."

// FinalizeResult is the outcome of one finalization.
type FinalizeResult struct {
	Article     string
	Error       string
	Delivered   bool
	DeliveryErr error
}

// Finalizer requests the summary and hands the result to delivery.
type Finalizer struct {
	gen      Generator
	del      Deliverer
	logger   *log.Logger
	recorder Recorder
}

// NewFinalizer creates a Finalizer. logger and recorder may be nil.
func NewFinalizer(gen Generator, del Deliverer, logger *log.Logger, recorder Recorder) *Finalizer {
	if recorder == nil {
		recorder = noopRecorder{}
	}
	return &Finalizer{gen: gen, del: del, logger: logger, recorder: recorder}
}

// Finalize asks for the summary in article mode and makes exactly one
// delivery attempt. On generation failure the transcript is delivered with
// the error text and no article.
func (f *Finalizer) Finalize(ctx context.Context, d Delivery) FinalizeResult {
	prompt := make([]Message, 0, len(d.Transcript)+1)
	prompt = append(prompt, d.Transcript...)
	prompt = append(prompt, Message{Role: RoleUser, Content: SummaryInstruction})

	start := time.Now()
	reply, err := f.gen.Generate(ctx, GenerateRequest{
		Mode:     ModeArticle,
		Messages: prompt,
		UserName: d.UserName,
	})
	elapsed := time.Since(start)

	var res FinalizeResult
	switch {
	case err != nil:
		res.Error = ErrorText(err)
	case IsErrorText(reply):
		res.Error = reply
	case strings.TrimSpace(reply) == "":
		res.Error = ErrorText(errors.New("empty summary"))
	default:
		res.Article = reply
	}

	f.recorder.GenerationObserved(ModeArticle, res.Error == "", elapsed)
	if res.Error != "" {
		_ = f.logger.Append(log.LogEvent{
			Event:      log.EventSummaryFailed,
			SessionID:  d.SessionID,
			Error:      res.Error,
			DurationMs: elapsed.Milliseconds(),
		})
	} else {
		_ = f.logger.Append(log.LogEvent{
			Event:      log.EventSummaryGenerated,
			SessionID:  d.SessionID,
			Characters: characterCount(res.Article),
			DurationMs: elapsed.Milliseconds(),
		})
	}

	d.Summary = res.Article
	d.Error = res.Error
	res.DeliveryErr = f.Deliver(ctx, d)
	res.Delivered = res.DeliveryErr == nil
	return res
}

// Deliver sends d without generating anything. Used by Finalize and by
// manual resends.
func (f *Finalizer) Deliver(ctx context.Context, d Delivery) error {
	err := f.del.Deliver(ctx, d)
	f.recorder.DeliveryObserved(err == nil)

	event := log.LogEvent{
		Event:      log.EventEmailSent,
		SessionID:  d.SessionID,
		Recipients: d.Recipients,
		Messages:   len(d.Transcript),
	}
	if err != nil {
		event.Event = log.EventEmailFailed
		event.Error = err.Error()
	}
	_ = f.logger.Append(event)
	return err
}
