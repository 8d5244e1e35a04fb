package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/deppfellow/invoices/internal/model"
)

type CustomerRepository struct {
	db DBTX
}

func NewCustomerRepository(db DBTX) *CustomerRepository {
	return &CustomerRepository{db: db}
}

// List returns every customer ordered by name, for the invoice form's
// customer select.
func (r *CustomerRepository) List(ctx context.Context) ([]model.Customer, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, email, image_url FROM customers ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query customers: %w", err)
	}

	customers, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.Customer])
	if err != nil {
		return nil, fmt.Errorf("failed to collect customers: %w", err)
	}

	return customers, nil
}
