// Package contact hands contact-form submissions to an external relay.
package contact

import (
	"context"
	"errors"
	"log/slog"
)

const (
	SuccessNotice = "Thank you for your message! I'll get back to you soon."
	FailureNotice = "Sorry, your message could not be sent. Please try again later."
)

// ErrRelay wraps every delivery failure returned by a Relay.
var ErrRelay = errors.New("relay send failed")

// Form is the field set of the contact form. The tags drive gin binding.
type Form struct {
	Name    string `form:"name" json:"name" binding:"required"`
	Email   string `form:"email" json:"email" binding:"required,email"`
	Message string `form:"message" json:"message" binding:"required"`
}

// Relay delivers a form to its recipient.
type Relay interface {
	Send(ctx context.Context, f Form) error
}

// RelayFunc adapts a function to Relay.
type RelayFunc func(ctx context.Context, f Form) error

func (fn RelayFunc) Send(ctx context.Context, f Form) error { return fn(ctx, f) }

// Archive records each delivery attempt.
type Archive interface {
	RecordMessage(ctx context.Context, f Form, sent bool) error
}

// Outcome is what the form shows after a submission.
type Outcome struct {
	Sent   bool
	Notice string
	Form   Form
	Err    error
}

// Submitter sends forms through a relay. Archive is optional.
type Submitter struct {
	Relay   Relay
	Archive Archive
	Logger  *slog.Logger
}

// NewSubmitter returns a submitter using relay.
func NewSubmitter(relay Relay, archive Archive, logger *slog.Logger) *Submitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Submitter{Relay: relay, Archive: archive, Logger: logger}
}

// Submit sends f once. On success the returned form is empty; on failure
// it is f unchanged so the visitor can retry without retyping.
func (s *Submitter) Submit(ctx context.Context, f Form) Outcome {
	err := s.Relay.Send(ctx, f)

	if s.Archive != nil {
		if aerr := s.Archive.RecordMessage(ctx, f, err == nil); aerr != nil {
			s.Logger.Warn("archive contact message", "error", aerr)
		}
	}

	if err != nil {
		s.Logger.Warn("contact relay failed", "error", err)
		return Outcome{Notice: FailureNotice, Form: f, Err: err}
	}
	s.Logger.Info("contact message sent", "email", f.Email)
	return Outcome{Sent: true, Notice: SuccessNotice}
}

// SubmitAsync runs Submit in its own goroutine. The channel yields exactly
// one Outcome and is then closed.
func (s *Submitter) SubmitAsync(ctx context.Context, f Form) <-chan Outcome {
	ch := make(chan Outcome, 1)
	go func() {
		defer close(ch)
		ch <- s.Submit(ctx, f)
	}()
	return ch
}
