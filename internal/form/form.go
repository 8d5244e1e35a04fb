// Package form holds the outcome of a form action.
//
// An action either redirects the browser, or re-renders the form with a
// State describing what went wrong (or, for delete, what happened).
package form

import (
	"github.com/deppfellow/invoices/internal/errs"
)

// Kind tags which branch of a Result is set.
type Kind string

const (
	KindRedirect Kind = "redirect"
	KindInvalid  Kind = "invalid"
	KindFailed   Kind = "failed"
	KindNotFound Kind = "not_found"
	KindRejected Kind = "rejected"
	KindDone     Kind = "done"
)

// State is what the form renders after an action that did not redirect.
// Errors is empty unless validation failed.
type State struct {
	Errors  errs.FieldErrors `json:"errors,omitempty"`
	Message string           `json:"message,omitempty"`
}

// Result is the outcome of a form action. Redirect is set only for
// KindRedirect; State is set for every other kind.
type Result struct {
	Kind     Kind   `json:"kind"`
	Redirect string `json:"redirect,omitempty"`
	State    State  `json:"state"`
}

// Redirect navigates to path.
func Redirect(path string) Result {
	return Result{Kind: KindRedirect, Redirect: path}
}

// Invalid reports field errors and no write took place.
func Invalid(fieldErrors errs.FieldErrors, message string) Result {
	return Result{Kind: KindInvalid, State: State{Errors: fieldErrors, Message: message}}
}

// Failed reports a storage failure with a generic message.
func Failed(message string) Result {
	return Result{Kind: KindFailed, State: State{Message: message}}
}

// NotFound reports that the targeted record does not exist.
func NotFound(message string) Result {
	return Result{Kind: KindNotFound, State: State{Message: message}}
}

// Rejected reports that the submission was refused, such as a failed
// sign-in.
func Rejected(message string) Result {
	return Result{Kind: KindRejected, State: State{Message: message}}
}

// Done reports success without navigation.
func Done(message string) Result {
	return Result{Kind: KindDone, State: State{Message: message}}
}

// IsRedirect reports whether r navigates away.
func (r Result) IsRedirect() bool {
	return r.Kind == KindRedirect
}
