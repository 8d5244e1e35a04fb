package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFieldErrors(t *testing.T) {
	fe := FieldErrors{}
	fe.Add("status", "Please select an invoice status.")
	fe.Add("amount", "first")
	fe.Add("amount", "second")

	assert.True(t, fe.Has("amount"))
	assert.False(t, fe.Has("customerId"))
	assert.Equal(t, []string{"first", "second"}, fe["amount"])
	assert.Equal(t, []string{"amount", "status"}, fe.Fields())
}

func TestHTTPErrorIsMatchesWrapped(t *testing.T) {
	err := fmt.Errorf("loading invoice: %w", NewNotFoundError("Invoice not found", true, nil))

	assert.True(t, errors.Is(err, &HTTPError{}))

	var httpErr *HTTPError
	assert.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusNotFound, httpErr.Status)
	assert.Equal(t, "NOT_FOUND", httpErr.Code)
}

func TestNewBadRequestErrorCustomCode(t *testing.T) {
	code := "INVOICE_INVALID"
	err := NewBadRequestError("bad", true, &code, FieldErrors{"amount": {"x"}}, NewRedirectAction("/login"))

	assert.Equal(t, code, err.Code)
	assert.Equal(t, http.StatusBadRequest, err.Status)
	assert.Equal(t, ActionTypeRedirect, err.Action.Type)
	assert.Equal(t, "/login", err.Action.Value)

	copied := err.WithMessage("other")
	assert.Equal(t, "other", copied.Message)
	assert.Equal(t, "bad", err.Message)
	assert.Equal(t, code, copied.Code)
}

func TestInternalServerErrorIsGeneric(t *testing.T) {
	err := NewInternalServerError()

	assert.Equal(t, "INTERNAL_SERVER_ERROR", err.Code)
	assert.Equal(t, "Internal Server Error", err.Message)
	assert.False(t, err.Override)
}
