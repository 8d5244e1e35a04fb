package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/deppfellow/invoices/internal/model"
)

// InvoicesPerPage is the page size of the dashboard invoice table.
const InvoicesPerPage = 6

type InvoiceRepository struct {
	db DBTX
}

func NewInvoiceRepository(db DBTX) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

func (r *InvoiceRepository) Create(ctx context.Context, invoice model.Invoice) error {
	stmt := `
		INSERT INTO invoices (id, customer_id, amount, status, date)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.Exec(ctx, stmt,
		invoice.ID,
		invoice.CustomerID,
		invoice.Amount,
		invoice.Status,
		invoice.Date,
	)
	if err != nil {
		return fmt.Errorf("failed to insert invoice: %w", err)
	}

	return nil
}

// Update overwrites the mutable fields of an invoice. found is false when
// no invoice has the id.
func (r *InvoiceRepository) Update(ctx context.Context, id uuid.UUID, input model.InvoiceInput) (found bool, err error) {
	stmt := `
		UPDATE invoices
		SET customer_id = $1, amount = $2, status = $3
		WHERE id = $4
	`

	tag, err := r.db.Exec(ctx, stmt,
		input.CustomerID,
		input.AmountCents,
		input.Status,
		id,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update invoice %s: %w", id, err)
	}

	return tag.RowsAffected() > 0, nil
}

// Delete removes an invoice. Deleting a missing id is not an error.
func (r *InvoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM invoices WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete invoice %s: %w", id, err)
	}

	return nil
}

func (r *InvoiceRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Invoice, error) {
	stmt := `
		SELECT id, customer_id, amount, status, date
		FROM invoices
		WHERE id = $1
	`

	rows, err := r.db.Query(ctx, stmt, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query invoice %s: %w", id, err)
	}

	invoice, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[model.Invoice])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to collect invoice %s: %w", id, err)
	}

	return &invoice, nil
}

const invoiceFilter = `
	FROM invoices
	JOIN customers ON invoices.customer_id = customers.id
	WHERE
		customers.name ILIKE $1 OR
		customers.email ILIKE $1 OR
		invoices.amount::text ILIKE $1 OR
		invoices.date::text ILIKE $1 OR
		invoices.status ILIKE $1
`

// ListFiltered returns one page (1-based) of invoices whose customer,
// amount, date or status contains query, newest first.
func (r *InvoiceRepository) ListFiltered(ctx context.Context, query string, page int) ([]model.InvoiceRow, error) {
	if page < 1 {
		page = 1
	}

	stmt := `
		SELECT
			invoices.id,
			invoices.amount,
			invoices.date,
			invoices.status,
			customers.name,
			customers.email,
			customers.image_url
	` + invoiceFilter + `
		ORDER BY invoices.date DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, stmt, "%"+query+"%", InvoicesPerPage, (page-1)*InvoicesPerPage)
	if err != nil {
		return nil, fmt.Errorf("failed to query invoices: %w", err)
	}

	invoices, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.InvoiceRow])
	if err != nil {
		return nil, fmt.Errorf("failed to collect invoices: %w", err)
	}

	return invoices, nil
}

// CountPages returns how many pages ListFiltered has for query.
func (r *InvoiceRepository) CountPages(ctx context.Context, query string) (int, error) {
	var count int64

	err := r.db.QueryRow(ctx, `SELECT COUNT(*) `+invoiceFilter, "%"+query+"%").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count invoices: %w", err)
	}

	return int((count + InvoicesPerPage - 1) / InvoicesPerPage), nil
}
