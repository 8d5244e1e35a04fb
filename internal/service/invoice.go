package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/deppfellow/invoices/internal/errs"
	"github.com/deppfellow/invoices/internal/form"
	"github.com/deppfellow/invoices/internal/model"
	"github.com/deppfellow/invoices/internal/repository"
	"github.com/deppfellow/invoices/internal/sqlerr"
	"github.com/deppfellow/invoices/internal/validation"
)

// InvoicesPath is the dashboard view listing invoices. Every successful
// write revalidates it and redirects back to it.
const InvoicesPath = "/dashboard/invoices"

const (
	MsgCreateMissingFields = "Missing Fields. Failed to Create Invoice."
	MsgUpdateMissingFields = "Missing Fields. Failed to Update Invoice."
	MsgCreateDatabaseError = "Database Error: Failed to Create Invoice."
	MsgUpdateDatabaseError = "Database Error: Failed to Update Invoice."
	MsgDeleteDatabaseError = "Database Error: Failed to Delete Invoice."
	MsgUpdateNotFound      = "Invoice not found. Failed to Update Invoice."
	MsgDeleted             = "Deleted Invoice."
)

type InvoiceStore interface {
	Create(ctx context.Context, invoice model.Invoice) error
	Update(ctx context.Context, id uuid.UUID, input model.InvoiceInput) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Invoice, error)
	ListFiltered(ctx context.Context, query string, page int) ([]model.InvoiceRow, error)
	CountPages(ctx context.Context, query string) (int, error)
}

type CustomerStore interface {
	List(ctx context.Context) ([]model.Customer, error)
}

type PageCache interface {
	Get(ctx context.Context, path, variant string) ([]byte, bool, error)
	Generation(ctx context.Context, path string) (int64, error)
	Set(ctx context.Context, path, variant string, generation int64, value []byte) (bool, error)
	Revalidate(ctx context.Context, path string) error
}

type PageWarmEnqueuer interface {
	EnqueuePageWarm(ctx context.Context, path string) error
}

type InvoiceService struct {
	invoices  InvoiceStore
	customers CustomerStore
	pages     PageCache
	warm      PageWarmEnqueuer
	now       func() time.Time
}

// NewInvoiceService wires the invoice actions. NewServices passes a nil
// warm unless Cache.WarmAfterInvalidate is set; with a nil warm a write
// only revalidates the cache and the next read recomputes the page.
func NewInvoiceService(invoices InvoiceStore, customers CustomerStore, pages PageCache, warm PageWarmEnqueuer) *InvoiceService {
	return &InvoiceService{
		invoices:  invoices,
		customers: customers,
		pages:     pages,
		warm:      warm,
		now:       time.Now,
	}
}

func (s *InvoiceService) CreateInvoice(ctx context.Context, f model.InvoiceForm) form.Result {
	logger := zerolog.Ctx(ctx)

	input, fieldErrors := validation.ParseInvoiceForm(f)
	if fieldErrors != nil {
		return form.Invalid(fieldErrors, MsgCreateMissingFields)
	}

	invoice := model.NewInvoice(input, s.now())

	if err := s.invoices.Create(ctx, invoice); err != nil {
		logger.Error().
			Err(err).
			Str("sql_code", string(sqlerr.ErrCode(err))).
			Msg("failed to create invoice")
		return form.Failed(MsgCreateDatabaseError)
	}

	logger.Info().
		Str("invoice_id", invoice.ID.String()).
		Int64("amount", invoice.Amount).
		Msg("invoice created")

	s.revalidate(ctx, InvoicesPath)

	return form.Redirect(InvoicesPath)
}

// UpdateInvoice validates before looking at id, so a bad form is reported
// as such even for an unknown invoice.
func (s *InvoiceService) UpdateInvoice(ctx context.Context, id string, f model.InvoiceForm) form.Result {
	logger := zerolog.Ctx(ctx)

	input, fieldErrors := validation.ParseInvoiceForm(f)
	if fieldErrors != nil {
		return form.Invalid(fieldErrors, MsgUpdateMissingFields)
	}

	invoiceID, err := uuid.Parse(id)
	if err != nil {
		return form.NotFound(MsgUpdateNotFound)
	}

	found, err := s.invoices.Update(ctx, invoiceID, input)
	if err != nil {
		logger.Error().
			Err(err).
			Str("invoice_id", id).
			Str("sql_code", string(sqlerr.ErrCode(err))).
			Msg("failed to update invoice")
		return form.Failed(MsgUpdateDatabaseError)
	}

	if !found {
		return form.NotFound(MsgUpdateNotFound)
	}

	logger.Info().Str("invoice_id", id).Msg("invoice updated")

	s.revalidate(ctx, InvoicesPath)

	return form.Redirect(InvoicesPath)
}

// DeleteInvoice is idempotent: deleting an id that matches nothing still
// reports success.
func (s *InvoiceService) DeleteInvoice(ctx context.Context, id string) form.Result {
	logger := zerolog.Ctx(ctx)

	// A malformed id cannot match a row.
	if invoiceID, err := uuid.Parse(id); err == nil {
		if err := s.invoices.Delete(ctx, invoiceID); err != nil {
			logger.Error().
				Err(err).
				Str("invoice_id", id).
				Str("sql_code", string(sqlerr.ErrCode(err))).
				Msg("failed to delete invoice")
			return form.Failed(MsgDeleteDatabaseError)
		}
	}

	logger.Info().Str("invoice_id", id).Msg("invoice deleted")

	s.revalidate(ctx, InvoicesPath)

	return form.Done(MsgDeleted)
}

// revalidate drops the cached view. The write already succeeded, so a
// cache failure is only logged.
func (s *InvoiceService) revalidate(ctx context.Context, path string) {
	logger := zerolog.Ctx(ctx)

	if err := s.pages.Revalidate(ctx, path); err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("failed to revalidate page")
		return
	}

	if s.warm == nil {
		return
	}

	if err := s.warm.EnqueuePageWarm(ctx, path); err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("failed to enqueue page warm-up")
	}
}

func pageVariant(query string, page int) string {
	return fmt.Sprintf("query=%s&page=%d", url.QueryEscape(query), page)
}

// ListInvoices returns one page of the invoice table, from the page cache
// when possible.
func (s *InvoiceService) ListInvoices(ctx context.Context, query string, page int) (*model.InvoicePage, error) {
	logger := zerolog.Ctx(ctx)

	if page < 1 {
		page = 1
	}
	variant := pageVariant(query, page)

	cached, ok, err := s.pages.Get(ctx, InvoicesPath, variant)
	if err != nil {
		logger.Warn().Err(err).Str("variant", variant).Msg("page cache read failed")
	}
	if ok {
		var result model.InvoicePage
		if err := json.Unmarshal(cached, &result); err == nil {
			return &result, nil
		}
		logger.Warn().Str("variant", variant).Msg("discarding undecodable cached page")
	}

	generation, genErr := s.pages.Generation(ctx, InvoicesPath)
	if genErr != nil {
		logger.Warn().Err(genErr).Str("variant", variant).Msg("page cache generation read failed")
	}

	result, err := s.buildInvoicePage(ctx, query, page)
	if err != nil {
		return nil, err
	}

	if genErr != nil {
		return result, nil
	}

	if data, err := json.Marshal(result); err == nil {
		stored, err := s.pages.Set(ctx, InvoicesPath, variant, generation, data)
		switch {
		case err != nil:
			logger.Warn().Err(err).Str("variant", variant).Msg("page cache write failed")
		case !stored:
			logger.Debug().Str("variant", variant).Msg("skipped caching stale page")
		}
	}

	return result, nil
}

func (s *InvoiceService) buildInvoicePage(ctx context.Context, query string, page int) (*model.InvoicePage, error) {
	rows, err := s.invoices.ListFiltered(ctx, query, page)
	if err != nil {
		return nil, err
	}

	totalPages, err := s.invoices.CountPages(ctx, query)
	if err != nil {
		return nil, err
	}

	if rows == nil {
		rows = []model.InvoiceRow{}
	}

	return &model.InvoicePage{
		Invoices:   rows,
		Query:      query,
		Page:       page,
		TotalPages: totalPages,
	}, nil
}

// WarmPage recomputes the first unfiltered page of path and caches it.
func (s *InvoiceService) WarmPage(ctx context.Context, path string) error {
	if path != InvoicesPath {
		return fmt.Errorf("no view registered for %s", path)
	}

	generation, err := s.pages.Generation(ctx, path)
	if err != nil {
		return err
	}

	result, err := s.buildInvoicePage(ctx, "", 1)
	if err != nil {
		return err
	}

	data, err := json.Marshal(result)
	if err != nil {
		return err
	}

	// A write landing mid-build leaves the page uncached; that write
	// schedules its own warm-up.
	_, err = s.pages.Set(ctx, path, pageVariant("", 1), generation, data)
	return err
}

// GetInvoice returns an invoice for the edit form.
func (s *InvoiceService) GetInvoice(ctx context.Context, id string) (*model.InvoiceForEdit, error) {
	invoiceID, err := uuid.Parse(id)
	if err != nil {
		return nil, errs.NewNotFoundError("Invoice not found.", true, nil)
	}

	invoice, err := s.invoices.GetByID(ctx, invoiceID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, errs.NewNotFoundError("Invoice not found.", true, nil)
	}
	if err != nil {
		return nil, err
	}

	edit := invoice.ForEdit()
	return &edit, nil
}

func (s *InvoiceService) ListCustomers(ctx context.Context) ([]model.Customer, error) {
	return s.customers.List(ctx)
}
