package errs

import (
	"net/http"
)

// newHTTPError builds an HTTPError whose code defaults to the status text,
// e.g. "NOT_FOUND". override tells the error handler message is safe to
// show the client verbatim.
func newHTTPError(status int, message string, override bool, code *string) *HTTPError {
	formattedCode := MakeUpperCaseWithUnderscores(http.StatusText(status))
	if code != nil {
		formattedCode = *code
	}

	return &HTTPError{
		Code:     formattedCode,
		Message:  message,
		Status:   status,
		Override: override,
	}
}

func NewUnauthorizedError(message string, override bool) *HTTPError {
	return newHTTPError(http.StatusUnauthorized, message, override, nil)
}

// NewForbiddenError is used when the client cannot be identified at all,
// such as a rate-limited route without a resolvable IP.
func NewForbiddenError(message string, override bool) *HTTPError {
	return newHTTPError(http.StatusForbidden, message, override, nil)
}

// NewBadRequestError creates a 400. errors carries per-field problems and
// action an optional client instruction.
func NewBadRequestError(message string, override bool, code *string, errors FieldErrors, action *Action) *HTTPError {
	err := newHTTPError(http.StatusBadRequest, message, override, code)
	err.Errors = errors
	err.Action = action

	return err
}

func NewNotFoundError(message string, override bool, code *string) *HTTPError {
	return newHTTPError(http.StatusNotFound, message, override, code)
}

func NewTooManyRequestsError(message string) *HTTPError {
	return newHTTPError(http.StatusTooManyRequests, message, true, nil)
}

// NewInternalServerError carries only the generic status text. The cause
// is logged, never sent.
func NewInternalServerError() *HTTPError {
	return newHTTPError(
		http.StatusInternalServerError,
		http.StatusText(http.StatusInternalServerError),
		false,
		nil,
	)
}
