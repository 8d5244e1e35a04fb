package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deppfellow/invoices/internal/errs"
	"github.com/deppfellow/invoices/internal/form"
	"github.com/deppfellow/invoices/internal/model"
	"github.com/deppfellow/invoices/internal/repository"
)

type fakeInvoiceStore struct {
	created   []model.Invoice
	updated   map[uuid.UUID]model.InvoiceInput
	deleted   []uuid.UUID
	existing  map[uuid.UUID]model.Invoice
	rows      []model.InvoiceRow
	pages     int
	listCalls int
	onList    func()
	err       error
}

func newFakeInvoiceStore() *fakeInvoiceStore {
	return &fakeInvoiceStore{
		updated:  map[uuid.UUID]model.InvoiceInput{},
		existing: map[uuid.UUID]model.Invoice{},
	}
}

func (f *fakeInvoiceStore) Create(_ context.Context, invoice model.Invoice) error {
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, invoice)
	f.existing[invoice.ID] = invoice
	return nil
}

func (f *fakeInvoiceStore) Update(_ context.Context, id uuid.UUID, input model.InvoiceInput) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	if _, ok := f.existing[id]; !ok {
		return false, nil
	}
	f.updated[id] = input
	return true, nil
}

func (f *fakeInvoiceStore) Delete(_ context.Context, id uuid.UUID) error {
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, id)
	delete(f.existing, id)
	return nil
}

func (f *fakeInvoiceStore) GetByID(_ context.Context, id uuid.UUID) (*model.Invoice, error) {
	if f.err != nil {
		return nil, f.err
	}
	invoice, ok := f.existing[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &invoice, nil
}

func (f *fakeInvoiceStore) ListFiltered(context.Context, string, int) ([]model.InvoiceRow, error) {
	f.listCalls++
	rows := f.rows
	if f.onList != nil {
		f.onList()
	}
	return rows, f.err
}

func (f *fakeInvoiceStore) CountPages(context.Context, string) (int, error) {
	return f.pages, f.err
}

type fakeCustomers struct{}

func (fakeCustomers) List(context.Context) ([]model.Customer, error) {
	return []model.Customer{{ID: uuid.New(), Name: "Evil Rabbit"}}, nil
}

type fakePageCache struct {
	entries       map[string][]byte
	generations   map[string]int64
	revalidated   []string
	revalidateErr error
}

func newFakePageCache() *fakePageCache {
	return &fakePageCache{entries: map[string][]byte{}, generations: map[string]int64{}}
}

func (f *fakePageCache) Get(_ context.Context, path, variant string) ([]byte, bool, error) {
	value, ok := f.entries[path+"|"+variant]
	return value, ok, nil
}

func (f *fakePageCache) Generation(_ context.Context, path string) (int64, error) {
	return f.generations[path], nil
}

func (f *fakePageCache) Set(_ context.Context, path, variant string, generation int64, value []byte) (bool, error) {
	if f.generations[path] != generation {
		return false, nil
	}
	f.entries[path+"|"+variant] = value
	return true, nil
}

func (f *fakePageCache) Revalidate(_ context.Context, path string) error {
	if f.revalidateErr != nil {
		return f.revalidateErr
	}
	f.revalidated = append(f.revalidated, path)
	f.generations[path]++
	for key := range f.entries {
		delete(f.entries, key)
	}
	return nil
}

type fakeEnqueuer struct {
	paths []string
}

func (f *fakeEnqueuer) EnqueuePageWarm(_ context.Context, path string) error {
	f.paths = append(f.paths, path)
	return nil
}

const (
	customerA = "3958dc9e-712f-4377-85e9-fec4b6a6442a"
	customerB = "d6e15727-9fe1-4961-8c5b-ea44a9bd81aa"
)

var fixedNow = time.Date(2024, 3, 1, 23, 30, 0, 0, time.FixedZone("UTC-5", -5*60*60))

func newTestInvoiceService() (*InvoiceService, *fakeInvoiceStore, *fakePageCache) {
	store := newFakeInvoiceStore()
	pages := newFakePageCache()

	s := NewInvoiceService(store, fakeCustomers{}, pages, nil)
	s.now = func() time.Time { return fixedNow }

	return s, store, pages
}

func validForm() model.InvoiceForm {
	return model.InvoiceForm{CustomerID: customerA, Amount: "42.50", Status: "pending"}
}

func TestCreateInvoice(t *testing.T) {
	s, store, pages := newTestInvoiceService()

	result := s.CreateInvoice(context.Background(), validForm())

	assert.Equal(t, form.Redirect("/dashboard/invoices"), result)
	require.Len(t, store.created, 1)

	created := store.created[0]
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.Equal(t, customerA, created.CustomerID)
	assert.Equal(t, int64(4250), created.Amount)
	assert.Equal(t, model.InvoiceStatusPending, created.Status)
	// 23:30 at UTC-5 is already March 2nd in UTC.
	assert.Equal(t, "2024-03-02", created.Date.Format(model.DateLayout))

	assert.Equal(t, []string{"/dashboard/invoices"}, pages.revalidated)
}

func TestCreateInvoiceInvalid(t *testing.T) {
	s, store, pages := newTestInvoiceService()

	result := s.CreateInvoice(context.Background(), model.InvoiceForm{CustomerID: "", Amount: "-5", Status: "paid"})

	assert.Equal(t, form.KindInvalid, result.Kind)
	assert.Equal(t, "Missing Fields. Failed to Create Invoice.", result.State.Message)
	assert.Equal(t, errs.FieldErrors{
		"customerId": {"Please select a customer."},
		"amount":     {"Please enter an amount greater than $0."},
	}, result.State.Errors)
	assert.Empty(t, result.Redirect)

	assert.Empty(t, store.created)
	assert.Empty(t, pages.revalidated)
}

func TestCreateInvoiceRejectsMalformedCustomer(t *testing.T) {
	for _, customerID := range []string{"c1", "   ", customerA + "x"} {
		t.Run(customerID, func(t *testing.T) {
			s, store, pages := newTestInvoiceService()

			result := s.CreateInvoice(context.Background(), model.InvoiceForm{CustomerID: customerID, Amount: "42.50", Status: "pending"})

			assert.Equal(t, form.KindInvalid, result.Kind)
			assert.Equal(t, errs.FieldErrors{"customerId": {"Please select a customer."}}, result.State.Errors)
			assert.Empty(t, store.created)
			assert.Empty(t, pages.revalidated)
		})
	}
}

func TestCreateInvoiceDatabaseError(t *testing.T) {
	s, store, pages := newTestInvoiceService()
	store.err = errors.New("connection refused")

	result := s.CreateInvoice(context.Background(), validForm())

	assert.Equal(t, form.Failed("Database Error: Failed to Create Invoice."), result)
	assert.Empty(t, result.State.Errors)
	assert.Empty(t, pages.revalidated)
}

func TestCreateInvoiceCacheFailureStillRedirects(t *testing.T) {
	s, store, pages := newTestInvoiceService()
	pages.revalidateErr = errors.New("redis down")

	result := s.CreateInvoice(context.Background(), validForm())

	assert.True(t, result.IsRedirect())
	assert.Len(t, store.created, 1)
}

func TestCreateInvoiceEnqueuesWarmUp(t *testing.T) {
	store := newFakeInvoiceStore()
	warm := &fakeEnqueuer{}
	s := NewInvoiceService(store, fakeCustomers{}, newFakePageCache(), warm)

	s.CreateInvoice(context.Background(), validForm())

	assert.Equal(t, []string{"/dashboard/invoices"}, warm.paths)
}

func seedInvoice(store *fakeInvoiceStore) model.Invoice {
	invoice := model.Invoice{
		ID:         uuid.New(),
		CustomerID: customerA,
		Amount:     4250,
		Status:     model.InvoiceStatusPending,
		Date:       time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
	}
	store.existing[invoice.ID] = invoice
	return invoice
}

func TestUpdateInvoice(t *testing.T) {
	s, store, pages := newTestInvoiceService()
	invoice := seedInvoice(store)

	result := s.UpdateInvoice(context.Background(), invoice.ID.String(), model.InvoiceForm{CustomerID: customerB, Amount: "15", Status: "paid"})

	assert.Equal(t, form.Redirect("/dashboard/invoices"), result)
	assert.Equal(t, model.InvoiceInput{CustomerID: customerB, AmountCents: 1500, Status: model.InvoiceStatusPaid}, store.updated[invoice.ID])
	assert.Equal(t, []string{"/dashboard/invoices"}, pages.revalidated)
}

func TestUpdateInvoiceFailures(t *testing.T) {
	tests := []struct {
		name string
		id   func(store *fakeInvoiceStore) string
		form model.InvoiceForm
		err  error
		want form.Result
	}{
		{
			name: "invalid form",
			id:   func(store *fakeInvoiceStore) string { return seedInvoice(store).ID.String() },
			form: model.InvoiceForm{CustomerID: customerA, Amount: "0", Status: "paid"},
			want: form.Invalid(errs.FieldErrors{"amount": {"Please enter an amount greater than $0."}}, "Missing Fields. Failed to Update Invoice."),
		},
		{
			name: "unknown invoice",
			id:   func(*fakeInvoiceStore) string { return uuid.NewString() },
			form: validForm(),
			want: form.NotFound("Invoice not found. Failed to Update Invoice."),
		},
		{
			name: "malformed id",
			id:   func(*fakeInvoiceStore) string { return "not-a-uuid" },
			form: validForm(),
			want: form.NotFound("Invoice not found. Failed to Update Invoice."),
		},
		{
			name: "database error",
			id:   func(store *fakeInvoiceStore) string { return seedInvoice(store).ID.String() },
			form: validForm(),
			err:  errors.New("deadlock detected"),
			want: form.Failed("Database Error: Failed to Update Invoice."),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, store, pages := newTestInvoiceService()
			id := tt.id(store)
			store.err = tt.err

			result := s.UpdateInvoice(context.Background(), id, tt.form)

			assert.Equal(t, tt.want, result)
			assert.Empty(t, store.updated)
			assert.Empty(t, pages.revalidated)
		})
	}
}

func TestDeleteInvoice(t *testing.T) {
	s, store, pages := newTestInvoiceService()
	invoice := seedInvoice(store)

	first := s.DeleteInvoice(context.Background(), invoice.ID.String())
	second := s.DeleteInvoice(context.Background(), invoice.ID.String())

	assert.Equal(t, form.Done("Deleted Invoice."), first)
	assert.Equal(t, first, second)
	assert.Equal(t, []uuid.UUID{invoice.ID, invoice.ID}, store.deleted)
	assert.Equal(t, []string{"/dashboard/invoices", "/dashboard/invoices"}, pages.revalidated)
}

func TestDeleteInvoiceMalformedID(t *testing.T) {
	s, store, _ := newTestInvoiceService()

	result := s.DeleteInvoice(context.Background(), "42")

	assert.Equal(t, form.Done("Deleted Invoice."), result)
	assert.Empty(t, store.deleted)
}

func TestDeleteInvoiceDatabaseError(t *testing.T) {
	s, store, pages := newTestInvoiceService()
	store.err = errors.New("connection refused")

	result := s.DeleteInvoice(context.Background(), uuid.NewString())

	assert.Equal(t, form.Failed("Database Error: Failed to Delete Invoice."), result)
	assert.Empty(t, pages.revalidated)
}

func TestListInvoicesUsesCache(t *testing.T) {
	s, store, _ := newTestInvoiceService()
	store.rows = []model.InvoiceRow{{ID: uuid.New(), Amount: 1500, Name: "Lee Robinson"}}
	store.pages = 1

	first, err := s.ListInvoices(context.Background(), "lee", 0)
	require.NoError(t, err)
	second, err := s.ListInvoices(context.Background(), "lee", 1)
	require.NoError(t, err)

	assert.Equal(t, 1, first.Page)
	assert.Equal(t, 1, first.TotalPages)
	assert.Equal(t, first.Invoices[0].ID, second.Invoices[0].ID)
	assert.Equal(t, 1, store.listCalls)
}

func TestListInvoicesRecomputedAfterWrite(t *testing.T) {
	s, store, _ := newTestInvoiceService()

	_, err := s.ListInvoices(context.Background(), "", 1)
	require.NoError(t, err)

	s.CreateInvoice(context.Background(), validForm())

	_, err = s.ListInvoices(context.Background(), "", 1)
	require.NoError(t, err)
	assert.Equal(t, 2, store.listCalls)
}

func TestListInvoicesWriteDuringBuildIsNotCached(t *testing.T) {
	s, store, pages := newTestInvoiceService()
	store.onList = func() {
		store.onList = nil
		s.CreateInvoice(context.Background(), validForm())
		store.rows = append(store.rows, model.InvoiceRow{ID: store.created[0].ID, Amount: 4250})
	}

	first, err := s.ListInvoices(context.Background(), "", 1)
	require.NoError(t, err)
	assert.Empty(t, first.Invoices)
	assert.Empty(t, pages.entries)

	second, err := s.ListInvoices(context.Background(), "", 1)
	require.NoError(t, err)
	assert.Equal(t, 2, store.listCalls)
	require.Len(t, second.Invoices, 1)
	assert.Equal(t, store.created[0].ID, second.Invoices[0].ID)

	third, err := s.ListInvoices(context.Background(), "", 1)
	require.NoError(t, err)
	assert.Equal(t, 2, store.listCalls)
	require.Len(t, third.Invoices, 1)
	assert.Equal(t, second.Invoices[0].ID, third.Invoices[0].ID)
}

func TestWarmPageSkipsStaleBuild(t *testing.T) {
	s, store, pages := newTestInvoiceService()
	store.onList = func() {
		store.onList = nil
		s.CreateInvoice(context.Background(), validForm())
	}

	require.NoError(t, s.WarmPage(context.Background(), "/dashboard/invoices"))
	assert.Empty(t, pages.entries)
}

func TestWarmPage(t *testing.T) {
	s, store, pages := newTestInvoiceService()
	store.rows = []model.InvoiceRow{{ID: uuid.New(), Amount: 1500}}
	store.pages = 1

	require.NoError(t, s.WarmPage(context.Background(), "/dashboard/invoices"))

	cached, ok := pages.entries["/dashboard/invoices|query=&page=1"]
	require.True(t, ok)

	var page model.InvoicePage
	require.NoError(t, json.Unmarshal(cached, &page))
	assert.Len(t, page.Invoices, 1)

	assert.Error(t, s.WarmPage(context.Background(), "/dashboard/customers"))
}

func TestGetInvoice(t *testing.T) {
	s, store, _ := newTestInvoiceService()
	invoice := seedInvoice(store)

	edit, err := s.GetInvoice(context.Background(), invoice.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "42.50", edit.Amount)
	assert.Equal(t, "2024-01-15", edit.Date)

	for _, id := range []string{uuid.NewString(), "c1"} {
		_, err := s.GetInvoice(context.Background(), id)

		var httpErr *errs.HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, http.StatusNotFound, httpErr.Status)
	}
}

func TestListCustomers(t *testing.T) {
	s, _, _ := newTestInvoiceService()

	customers, err := s.ListCustomers(context.Background())
	require.NoError(t, err)
	assert.Len(t, customers, 1)
}
