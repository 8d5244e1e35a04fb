package service

import (
	"github.com/deppfellow/invoices/internal/auth"
	"github.com/deppfellow/invoices/internal/cache"
	"github.com/deppfellow/invoices/internal/lib/job"
	"github.com/deppfellow/invoices/internal/repository"
	"github.com/deppfellow/invoices/internal/server"
)

type Services struct {
	Auth     *AuthService
	Invoices *InvoiceService
	Job      *job.JobService
}

func NewServices(s *server.Server, repos *repository.Repositories) *Services {
	pages := cache.NewPageCache(s.Redis, s.Config.Cache.PageTTL)

	var warm PageWarmEnqueuer
	if s.Config.Cache.WarmAfterInvalidate {
		warm = s.Job
	}

	sessions := auth.NewSessionStore(s.Redis, s.Config.Auth.SessionTTL)
	provider := auth.NewCredentialsProvider(repos.Users, sessions)

	return &Services{
		Auth:     NewAuthService(auth.NewAuthenticator(provider), sessions, repos.Users),
		Invoices: NewInvoiceService(repos.Invoices, repos.Customers, pages, warm),
		Job:      s.Job,
	}
}
