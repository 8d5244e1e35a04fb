// Package model holds the domain types shared by the repository, service
// and handler layers.
package model

import (
	"time"

	"github.com/google/uuid"
)

// InvoiceStatus is the lifecycle state of an invoice.
type InvoiceStatus string

const (
	InvoiceStatusPending InvoiceStatus = "pending"
	InvoiceStatusPaid    InvoiceStatus = "paid"
)

// Valid reports whether s is a known status.
func (s InvoiceStatus) Valid() bool {
	return s == InvoiceStatusPending || s == InvoiceStatusPaid
}

// DateLayout is the ISO 8601 calendar date format invoices are stamped with.
const DateLayout = "2006-01-02"

// Invoice is a row of the invoices table. Amount is in cents.
type Invoice struct {
	ID         uuid.UUID     `json:"id" db:"id"`
	CustomerID string        `json:"customerId" db:"customer_id"`
	Amount     int64         `json:"amount" db:"amount"`
	Status     InvoiceStatus `json:"status" db:"status"`
	Date       time.Time     `json:"date" db:"date"`
}

// NewInvoice builds an invoice from validated input, generating its id and
// stamping the UTC calendar day of now.
func NewInvoice(input InvoiceInput, now time.Time) Invoice {
	return Invoice{
		ID:         uuid.New(),
		CustomerID: input.CustomerID,
		Amount:     input.AmountCents,
		Status:     input.Status,
		Date:       CalendarDay(now),
	}
}

// CalendarDay truncates t to midnight of its UTC date.
func CalendarDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// InvoiceForm is the raw, unvalidated form submission for an invoice.
// Binding accepts url-encoded forms and JSON bodies with the same keys.
type InvoiceForm struct {
	CustomerID string `form:"customerId" json:"customerId"`
	Amount     string `form:"amount" json:"amount"`
	Status     string `form:"status" json:"status"`
}

// InvoiceInput is an InvoiceForm that passed validation.
type InvoiceInput struct {
	CustomerID  string
	AmountCents int64
	Status      InvoiceStatus
}

// InvoiceRow is one line of the dashboard invoice table.
type InvoiceRow struct {
	ID       uuid.UUID     `json:"id" db:"id"`
	Amount   int64         `json:"amount" db:"amount"`
	Date     time.Time     `json:"date" db:"date"`
	Status   InvoiceStatus `json:"status" db:"status"`
	Name     string        `json:"name" db:"name"`
	Email    string        `json:"email" db:"email"`
	ImageURL string        `json:"imageUrl" db:"image_url"`
}

// InvoicePage is one page of the filtered dashboard invoice table.
type InvoicePage struct {
	Invoices   []InvoiceRow `json:"invoices"`
	Query      string       `json:"query"`
	Page       int          `json:"page"`
	TotalPages int          `json:"totalPages"`
}

// InvoiceForEdit is an invoice shaped for the edit form: amount in dollars.
type InvoiceForEdit struct {
	ID         uuid.UUID     `json:"id"`
	CustomerID string        `json:"customerId"`
	Amount     string        `json:"amount"`
	Status     InvoiceStatus `json:"status"`
	Date       string        `json:"date"`
}

// ForEdit converts inv for the edit form.
func (inv Invoice) ForEdit() InvoiceForEdit {
	return InvoiceForEdit{
		ID:         inv.ID,
		CustomerID: inv.CustomerID,
		Amount:     FormatCents(inv.Amount),
		Status:     inv.Status,
		Date:       inv.Date.Format(DateLayout),
	}
}
