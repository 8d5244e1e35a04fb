// Package errs defines the error shapes the API returns to clients.
//
// Every failure that reaches a client is one of these shapes. Field-level
// problems travel as FieldErrors, and follow-up instructions (for example a
// redirect after a successful form post) travel as an Action.
package errs
