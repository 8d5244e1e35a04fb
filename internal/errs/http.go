package errs

import (
	"sort"
	"strings"
)

// FieldErrors maps a form field name to the human-readable problems found
// with it. It is what a form needs to re-render itself next to each input.
//
//	{ "amount": ["Please enter an amount greater than $0."] }
type FieldErrors map[string][]string

// Add appends a message for field.
func (fe FieldErrors) Add(field, message string) {
	fe[field] = append(fe[field], message)
}

// Has reports whether field has at least one message.
func (fe FieldErrors) Has(field string) bool {
	return len(fe[field]) > 0
}

// Fields returns the field names in sorted order.
func (fe FieldErrors) Fields() []string {
	fields := make([]string, 0, len(fe))
	for field := range fe {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}

// ActionType is a string-based enum describing what the client should do.
type ActionType string

const (
	// ActionTypeRedirect tells the client to navigate to Action.Value.
	ActionTypeRedirect ActionType = "redirect"
)

// Action describes what the client should do next.
type Action struct {
	Type    ActionType `json:"type"`
	Message string     `json:"message,omitempty"`
	Value   string     `json:"value"`
}

// NewRedirectAction builds a redirect Action to path.
func NewRedirectAction(path string) *Action {
	return &Action{Type: ActionTypeRedirect, Value: path}
}

// HTTPError is the main error type for API responses and is serialized
// directly to JSON by the global error handler.
//
// Override tells the error handler the message is safe to show as-is.
type HTTPError struct {
	Code     string      `json:"code"`
	Message  string      `json:"message"`
	Status   int         `json:"status"`
	Override bool        `json:"override"`
	Errors   FieldErrors `json:"errors,omitempty"`
	Action   *Action     `json:"action,omitempty"`
}

func (e *HTTPError) Error() string {
	return e.Message
}

// Is matches any *HTTPError regardless of its fields, so
// errors.Is(err, &HTTPError{}) answers "is this already client-ready?".
func (e *HTTPError) Is(target error) bool {
	_, ok := target.(*HTTPError)

	return ok
}

// WithMessage returns a copy of e with Message replaced.
func (e *HTTPError) WithMessage(message string) *HTTPError {
	return &HTTPError{
		Code:     e.Code,
		Message:  message,
		Status:   e.Status,
		Override: e.Override,
		Errors:   e.Errors,
		Action:   e.Action,
	}
}

// MakeUpperCaseWithUnderscores turns "Bad Request" into "BAD_REQUEST".
func MakeUpperCaseWithUnderscores(str string) string {
	return strings.ToUpper(strings.ReplaceAll(str, " ", "_"))
}
