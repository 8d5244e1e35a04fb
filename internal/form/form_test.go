package form

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deppfellow/invoices/internal/errs"
)

func TestResultKinds(t *testing.T) {
	assert.True(t, Redirect("/dashboard/invoices").IsRedirect())

	for _, r := range []Result{
		Invalid(errs.FieldErrors{}, "m"),
		Failed("m"),
		NotFound("m"),
		Rejected("m"),
		Done("m"),
	} {
		assert.False(t, r.IsRedirect(), r.Kind)
		assert.Equal(t, "m", r.State.Message)
		assert.Empty(t, r.Redirect)
	}
}

func TestStateJSONOmitsEmptyErrors(t *testing.T) {
	b, err := json.Marshal(Done("Deleted Invoice.").State)
	require.NoError(t, err)
	assert.JSONEq(t, `{"message":"Deleted Invoice."}`, string(b))

	fe := errs.FieldErrors{}
	fe.Add("status", "Please select an invoice status.")
	b, err = json.Marshal(Invalid(fe, "Missing Fields. Failed to Create Invoice.").State)
	require.NoError(t, err)
	assert.JSONEq(t, `{"errors":{"status":["Please select an invoice status."]},"message":"Missing Fields. Failed to Create Invoice."}`, string(b))
}
