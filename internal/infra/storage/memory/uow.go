package memory

import (
	"context"
	"errors"

	"growshare/internal/app/uow"
	domainavailability "growshare/internal/domain/availability"
	domainbooking "growshare/internal/domain/booking"
	domainplot "growshare/internal/domain/plot"
	domainpricing "growshare/internal/domain/pricing"
)

// Factory wires in-memory repositories into a unit-of-work boundary.
type Factory struct {
	PlotRepo     domainplot.Repository
	CalendarRepo domainavailability.Repository
	BookingRepo  domainbooking.Repository
	PricingSvc   domainpricing.Calculator
}

// ErrFactoryMisconfigured indicates missing repositories.
var ErrFactoryMisconfigured = errors.New("memory: unit of work factory misconfigured")

// Begin starts a lightweight transaction boundary. No isolation is provided
// but the abstraction matches the application ports; atomicity of the
// check-and-reserve comes from the calendar version guard, not from here.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.PlotRepo == nil || f.CalendarRepo == nil || f.BookingRepo == nil || f.PricingSvc == nil {
		return nil, ErrFactoryMisconfigured
	}
	return &Unit{
		plots:        f.PlotRepo,
		availability: f.CalendarRepo,
		booking:      f.BookingRepo,
		pricing:      f.PricingSvc,
	}, nil
}

// Unit is a lightweight uow.UnitOfWork backed by in-memory stores.
type Unit struct {
	plots        domainplot.Repository
	availability domainavailability.Repository
	booking      domainbooking.Repository
	pricing      domainpricing.Calculator
}

func (u *Unit) Plots() domainplot.Repository {
	return u.plots
}

func (u *Unit) Availability() domainavailability.Repository {
	return u.availability
}

func (u *Unit) Booking() domainbooking.Repository {
	return u.booking
}

func (u *Unit) Pricing() domainpricing.Calculator {
	return u.pricing
}

func (u *Unit) Commit(ctx context.Context) error {
	return nil
}

func (u *Unit) Rollback(ctx context.Context) error {
	return nil
}
