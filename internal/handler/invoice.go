package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/deppfellow/invoices/internal/form"
	"github.com/deppfellow/invoices/internal/model"
	"github.com/deppfellow/invoices/internal/server"
	"github.com/deppfellow/invoices/internal/validation"
)

// InvoiceActions is the invoice surface the HTTP layer needs.
type InvoiceActions interface {
	CreateInvoice(ctx context.Context, f model.InvoiceForm) form.Result
	UpdateInvoice(ctx context.Context, id string, f model.InvoiceForm) form.Result
	DeleteInvoice(ctx context.Context, id string) form.Result
	ListInvoices(ctx context.Context, query string, page int) (*model.InvoicePage, error)
	GetInvoice(ctx context.Context, id string) (*model.InvoiceForEdit, error)
	ListCustomers(ctx context.Context) ([]model.Customer, error)
}

type InvoiceHandler struct {
	Handler
	invoices InvoiceActions
}

func NewInvoiceHandler(s *server.Server, invoices InvoiceActions) *InvoiceHandler {
	return &InvoiceHandler{
		Handler:  NewHandler(s),
		invoices: invoices,
	}
}

type updateInvoiceRequest struct {
	ID string `param:"id" json:"-" form:"-"`
	model.InvoiceForm
}

type invoiceIDRequest struct {
	ID string `param:"id" json:"-" form:"-" validate:"required"`
}

func (r *invoiceIDRequest) Validate() error {
	return validation.Struct(r)
}

type listInvoicesRequest struct {
	Query string `query:"query" validate:"max=200"`
	Page  int    `query:"page" validate:"omitempty,min=1"`
}

func (r *listInvoicesRequest) Validate() error {
	return validation.Struct(r)
}

type listCustomersRequest struct{}

func (r *listCustomersRequest) Validate() error {
	return nil
}

func (h *InvoiceHandler) CreateInvoice(c echo.Context, req *model.InvoiceForm) (form.Result, error) {
	return h.invoices.CreateInvoice(c.Request().Context(), *req), nil
}

func (h *InvoiceHandler) UpdateInvoice(c echo.Context, req *updateInvoiceRequest) (form.Result, error) {
	return h.invoices.UpdateInvoice(c.Request().Context(), req.ID, req.InvoiceForm), nil
}

func (h *InvoiceHandler) DeleteInvoice(c echo.Context, req *invoiceIDRequest) (form.Result, error) {
	return h.invoices.DeleteInvoice(c.Request().Context(), req.ID), nil
}

func (h *InvoiceHandler) ListInvoices(c echo.Context, req *listInvoicesRequest) (*model.InvoicePage, error) {
	return h.invoices.ListInvoices(c.Request().Context(), req.Query, req.Page)
}

func (h *InvoiceHandler) GetInvoice(c echo.Context, req *invoiceIDRequest) (*model.InvoiceForEdit, error) {
	return h.invoices.GetInvoice(c.Request().Context(), req.ID)
}

func (h *InvoiceHandler) ListCustomers(c echo.Context, _ *listCustomersRequest) ([]model.Customer, error) {
	return h.invoices.ListCustomers(c.Request().Context())
}

// Routes registers the invoice endpoints on g. Browsers can only submit
// forms with POST, so update and delete also answer on POST routes.
func (h *InvoiceHandler) Routes(g *echo.Group) {
	g.GET("/invoices", Handle(h.Handler, h.ListInvoices, http.StatusOK))
	g.POST("/invoices", HandleForm(h.Handler, h.CreateInvoice))
	g.GET("/invoices/:id", Handle(h.Handler, h.GetInvoice, http.StatusOK))
	g.PUT("/invoices/:id", HandleForm(h.Handler, h.UpdateInvoice))
	g.POST("/invoices/:id", HandleForm(h.Handler, h.UpdateInvoice))
	g.DELETE("/invoices/:id", HandleForm(h.Handler, h.DeleteInvoice))
	g.POST("/invoices/:id/delete", HandleForm(h.Handler, h.DeleteInvoice))
	g.GET("/customers", Handle(h.Handler, h.ListCustomers, http.StatusOK))
}
