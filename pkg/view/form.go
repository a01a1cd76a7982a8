package view

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"backoffice/pkg/api"
)

// FormState of a create or edit form.
type FormState int

const (
	FormIdle FormState = iota
	FormSubmitting
	FormSucceeded
	FormFailed
)

func (s FormState) String() string {
	switch s {
	case FormSubmitting:
		return "submitting"
	case FormSucceeded:
		return "succeeded"
	case FormFailed:
		return "failed"
	}
	return "idle"
}

// SubmitFunc sends the payload and returns the record to show afterwards.
type SubmitFunc[T any] func(ctx context.Context, payload T) (T, error)

// Form runs one submission at a time. Success runs the OnSuccess hook
// (usually navigation away); failure stays put and keeps the error.
type Form[T any] struct {
	entity string
	verb   string
	submit SubmitFunc[T]
	notes  Notifier
	logger *zap.Logger

	mu        sync.Mutex
	state     FormState
	err       error
	result    T
	onSuccess func(ctx context.Context, record T) error
}

// NewForm builds a form whose success message reads "{Entity} {verb} successfully!".
func NewForm[T any](entity, verb string, submit SubmitFunc[T], notes Notifier, logger *zap.Logger) *Form[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Form[T]{
		entity: entity,
		verb:   verb,
		submit: submit,
		notes:  orDiscard(notes),
		logger: logger.With(zap.String("view", "form"), zap.String("entity", entity), zap.String("action", verb)),
	}
}

// OnSuccess sets the hook run after a successful submit.
func (f *Form[T]) OnSuccess(fn func(ctx context.Context, record T) error) {
	f.mu.Lock()
	f.onSuccess = fn
	f.mu.Unlock()
}

// Submit sends payload unless a submission is already running.
func (f *Form[T]) Submit(ctx context.Context, payload T) (T, error) {
	var zero T

	f.mu.Lock()
	if f.state == FormSubmitting {
		f.mu.Unlock()
		return zero, ErrSubmitting
	}
	f.state = FormSubmitting
	f.err = nil
	f.mu.Unlock()

	record, err := f.submit(ctx, payload)

	f.mu.Lock()
	if err != nil {
		f.state = FormFailed
		f.err = err
		f.mu.Unlock()
		f.logger.Warn("submit failed", zap.Error(err))
		f.notes.Error(api.Message(err))
		return zero, err
	}
	f.state = FormSucceeded
	f.result = record
	hook := f.onSuccess
	f.mu.Unlock()

	f.notes.Success(pastTense(f.entity, f.verb))
	if hook != nil {
		if err := hook(ctx, record); err != nil {
			f.logger.Warn("post-submit navigation failed", zap.Error(err))
			return record, err
		}
	}
	return record, nil
}

func (f *Form[T]) State() FormState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Err is the error of the last failed submit.
func (f *Form[T]) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// Result is the record returned by the last successful submit.
func (f *Form[T]) Result() T {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.result
}
