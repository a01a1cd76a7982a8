// Package view holds the per-page state machines that sit between the
// resource clients and whatever renders them.
package view

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"

	"backoffice/pkg/notify"
)

var (
	// ErrNotReady is returned by List.Delete outside the Ready state.
	ErrNotReady = errors.New("list is not ready")
	// ErrDeleteInFlight is returned when a delete is already pending.
	ErrDeleteInFlight = errors.New("a delete is already in progress")
	// ErrSubmitting is returned when a form is already submitting.
	ErrSubmitting = errors.New("a submission is already in progress")
	// ErrSuperseded marks a response dropped because a newer request or an
	// unmount made it stale.
	ErrSuperseded = errors.New("response superseded")
)

// Notifier receives the operator-facing outcome of each operation.
type Notifier interface {
	Success(message string) notify.Notification
	Error(message string) notify.Notification
}

type discard struct{}

func (discard) Success(string) notify.Notification { return notify.Notification{} }
func (discard) Error(string) notify.Notification   { return notify.Notification{} }

func orDiscard(n Notifier) Notifier {
	if n == nil {
		return discard{}
	}
	return n
}

// capitalize turns "coffee bean" into "Coffee bean" for messages.
func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// pastTense renders the success message for a finished action.
func pastTense(entity, verb string) string {
	return capitalize(strings.TrimSpace(entity)) + " " + verb + " successfully!"
}
