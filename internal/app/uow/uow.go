package uow

import (
	"context"

	domainavailability "growshare/internal/domain/availability"
	domainbooking "growshare/internal/domain/booking"
	domainplot "growshare/internal/domain/plot"
	domainpricing "growshare/internal/domain/pricing"
)

// UnitOfWork coordinates repositories inside a transaction boundary.
type UnitOfWork interface {
	Plots() domainplot.Repository
	Availability() domainavailability.Repository
	Booking() domainbooking.Repository
	Pricing() domainpricing.Calculator

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// UoWFactory starts unit of work instances.
type UoWFactory interface {
	Begin(ctx context.Context, opts TxOptions) (UnitOfWork, error)
}

// TxOptions configure transaction boundaries.
type TxOptions struct {
	ReadOnly bool
}
