package validation

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/deppfellow/invoices/internal/errs"
	"github.com/deppfellow/invoices/internal/model"
)

// Validatable is implemented by request payloads that validate themselves,
// usually by calling Struct on their own tags.
type Validatable interface {
	Validate() error
}

// CustomValidationError is a rule that cannot be expressed with tags.
type CustomValidationError struct {
	Field   string
	Message string
}

// CustomValidationErrors is a slice of custom validation errors that satisfies error.
type CustomValidationErrors []CustomValidationError

func (c CustomValidationErrors) Error() string {
	return "Validation failed"
}

// fieldMessages replaces the generic per-tag message for fields where the
// form shows one fixed prompt whatever rule failed.
var fieldMessages = map[string]string{
	"customerId": "Please select a customer.",
	"status":     "Please select an invoice status.",
}

// Bind populates payload from the request (form, JSON or query) without
// validating it.
func Bind(c echo.Context, payload any) error {
	if err := c.Bind(payload); err != nil {
		message := "Invalid request payload"

		var echoErr *echo.HTTPError
		if errors.As(err, &echoErr) {
			if msg, ok := echoErr.Message.(string); ok {
				message = msg
			}
		}
		return errs.NewBadRequestError(message, false, nil, nil, nil)
	}
	return nil
}

// BindAndValidate binds payload and returns a 400 *errs.HTTPError with
// field errors if it does not validate.
func BindAndValidate(c echo.Context, payload Validatable) error {
	if err := Bind(c, payload); err != nil {
		return err
	}

	if err := payload.Validate(); err != nil {
		return errs.NewBadRequestError("Validation failed", true, nil, FieldErrorsOf(err), nil)
	}

	return nil
}

// ParseInvoiceForm validates a raw invoice submission. It either returns
// the typed input or the field errors, never both, and touches nothing but
// its argument. Every field is checked so the form can show all problems
// at once.
func ParseInvoiceForm(form model.InvoiceForm) (model.InvoiceInput, errs.FieldErrors) {
	fieldErrors := errs.FieldErrors{}

	rules := invoiceRules{CustomerID: form.CustomerID, Status: form.Status}
	if err := Struct(rules); err != nil {
		fieldErrors = FieldErrorsOf(err)
	}

	amount, err := model.ParseAmount(form.Amount)
	if err != nil {
		fieldErrors.Add("amount", amountMessage(err))
	}

	if len(fieldErrors) > 0 {
		return model.InvoiceInput{}, fieldErrors
	}

	return model.InvoiceInput{
		CustomerID:  form.CustomerID,
		AmountCents: model.ToCents(amount),
		Status:      model.InvoiceStatus(form.Status),
	}, nil
}

// invoiceRules carries the tag rules of an InvoiceForm. The amount needs a
// parsed value and is checked by ParseAmount instead.
type invoiceRules struct {
	CustomerID string `form:"customerId" validate:"required,uuid"`
	Status     string `form:"status" validate:"required,invoice_status"`
}

// FieldErrorsOf converts a validator or custom validation error into
// FieldErrors. Any other error is reported under the "_" key.
func FieldErrorsOf(err error) errs.FieldErrors {
	fieldErrors := errs.FieldErrors{}

	var customErrors CustomValidationErrors
	if errors.As(err, &customErrors) {
		for _, e := range customErrors {
			fieldErrors.Add(e.Field, e.Message)
		}
		return fieldErrors
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		fieldErrors.Add("_", err.Error())
		return fieldErrors
	}

	for _, fe := range validationErrors {
		fieldErrors.Add(fe.Field(), messageFor(fe))
	}

	return fieldErrors
}

func messageFor(fe validator.FieldError) string {
	if msg, ok := fieldMessages[fe.Field()]; ok {
		return msg
	}

	switch fe.Tag() {
	case "required":
		return "is required"

	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())

	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must not exceed %s characters", fe.Param())
		}
		return fmt.Sprintf("must not exceed %s", fe.Param())

	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())

	case "email":
		return "must be a valid email address"

	case "uuid":
		return "must be a valid UUID"

	default:
		if fe.Param() != "" {
			return fmt.Sprintf("%s: %s:%s", fe.Field(), fe.Tag(), fe.Param())
		}
		return fmt.Sprintf("%s: %s", fe.Field(), fe.Tag())
	}
}

func amountMessage(err error) string {
	switch {
	case errors.Is(err, model.ErrAmountPrecision):
		return "Amount cannot have more than two decimal places."
	case errors.Is(err, model.ErrAmountTooLarge):
		return "Amount is too large."
	default:
		return "Please enter an amount greater than $0."
	}
}
