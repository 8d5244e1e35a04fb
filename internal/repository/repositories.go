package repository

import (
	"github.com/deppfellow/invoices/internal/server"
)

// Repositories groups every repository so services take one dependency.
type Repositories struct {
	Invoices  *InvoiceRepository
	Customers *CustomerRepository
	Users     *UserRepository
}

func NewRepositories(s *server.Server) *Repositories {
	return &Repositories{
		Invoices:  NewInvoiceRepository(s.DB.Pool),
		Customers: NewCustomerRepository(s.DB.Pool),
		Users:     NewUserRepository(s.DB.Pool),
	}
}
