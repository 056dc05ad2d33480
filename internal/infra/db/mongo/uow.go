package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"growshare/internal/app/uow"
	domainavailability "growshare/internal/domain/availability"
	domainbooking "growshare/internal/domain/booking"
	domainplot "growshare/internal/domain/plot"
	domainpricing "growshare/internal/domain/pricing"
)

// Factory wires Mongo transactions into the generic UnitOfWork interface.
type Factory struct {
	DB *mongo.Database

	PlotRepo     domainplot.Repository
	CalendarRepo domainavailability.Repository
	BookingRepo  domainbooking.Repository
	PricingSvc   domainpricing.Calculator
}

var ErrUnitOfWorkNotConfigured = errors.New("mongo: unit of work factory missing database")

// Begin starts a MongoDB session/transaction.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.DB == nil {
		return nil, ErrUnitOfWorkNotConfigured
	}
	session, err := f.DB.Client().StartSession()
	if err != nil {
		return nil, err
	}
	txnOpts := options.Transaction().SetReadConcern(f.DB.ReadConcern()).SetWriteConcern(f.DB.WriteConcern())
	if err := session.StartTransaction(txnOpts); err != nil {
		session.EndSession(ctx)
		return nil, err
	}
	return &Unit{
		db:           f.DB,
		session:      session,
		plots:        f.PlotRepo,
		availability: f.CalendarRepo,
		booking:      f.BookingRepo,
		pricing:      f.PricingSvc,
	}, nil
}

type Unit struct {
	db      *mongo.Database
	session mongo.Session

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
	defer u.session.EndSession(ctx)
	return u.session.CommitTransaction(ctx)
}

func (u *Unit) Rollback(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	return u.session.AbortTransaction(ctx)
}

// InjectContext ensures the Mongo session is available in context for
// downstream repositories.
func (u *Unit) InjectContext(ctx context.Context) context.Context {
	return mongo.NewSessionContext(ctx, u.session)
}
