package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"growshare/internal/app/commands"
	availabilityapp "growshare/internal/app/handlers/availability"
	blocksapp "growshare/internal/app/handlers/blocks"
	bookingapp "growshare/internal/app/handlers/booking"
	"growshare/internal/app/middleware"
	"growshare/internal/app/queries"
	"growshare/internal/app/session"
	domainplot "growshare/internal/domain/plot"
	"growshare/internal/infra/storage/memory"
)

// buildStack wires the real buses over in-memory storage, the same shape the
// composition root produces.
func buildStack(t *testing.T) (commands.Bus, queries.Bus) {
	t.Helper()
	plots := memory.NewPlotRepository()
	factory := memory.Factory{
		PlotRepo:     plots,
		CalendarRepo: memory.NewCalendarRepository(),
		BookingRepo:  memory.NewBookingRepository(),
		PricingSvc:   memory.NewPricingEngine(),
	}
	box := memory.NewOutbox()

	now := time.Now()
	p, err := domainplot.New(domainplot.CreateParams{
		ID:               "plot-1",
		Owner:            "owner-1",
		Title:            "Community parcel",
		Address:          domainplot.Address{Line1: "Lot 1", City: "Portland", Country: "US"},
		AreaSquareMeters: 100,
		MonthlyRateCents: 30000,
		Currency:         "USD",
		MinLeaseMonths:   1,
		AvailableFrom:    now,
		Now:              now,
	})
	require.NoError(t, err)
	require.NoError(t, p.Activate(now))
	require.NoError(t, plots.Save(context.Background(), p))

	commandBus := commands.NewInMemoryBus()
	commands.RegisterHandler(commandBus, bookingapp.RequestBookingCommand{}.Key(), &bookingapp.RequestBookingHandler{
		UoWFactory: factory,
		Outbox:     box,
	})
	commands.RegisterHandler(commandBus, blocksapp.CreateBlockCommand{}.Key(), &blocksapp.CreateBlockHandler{
		UoWFactory: factory,
		Outbox:     box,
	})

	queryBus := queries.NewInMemoryBus()
	queries.RegisterHandler(queryBus, availabilityapp.GetAvailabilityQuery{}.Key(), &availabilityapp.GetAvailabilityHandler{
		UoWFactory: factory,
	})

	wrapped := middleware.ChainCommands(
		commandBus,
		middleware.Idempotency(memory.NewIdempotencyStore(), nil),
		middleware.Transaction(factory, nil),
		middleware.OutboxFlush(box),
	)
	return wrapped, middleware.ChainQueries(queryBus)
}

func TestSessionBookingRoundTrip(t *testing.T) {
	commandBus, queryBus := buildStack(t)
	ctx := context.Background()

	renter := session.NewPlotSession(session.SessionParams{
		PlotID:   "plot-1",
		UserID:   "renter-1",
		Fetcher:  session.QueryFetcher(queryBus),
		Commands: commandBus,
	})

	start := time.Now().UTC().AddDate(0, 1, 0)
	end := start.AddDate(0, 0, 29)

	view, err := renter.Month(ctx, start.Year(), start.Month())
	require.NoError(t, err)
	assert.Empty(t, view.Bookings)

	renter.Select(start, end)
	bookable, err := renter.SelectionBookable(ctx)
	require.NoError(t, err)
	assert.True(t, bookable)

	result, err := renter.RequestBooking(ctx, "first season")
	require.NoError(t, err)
	require.NotEmpty(t, result.BookingID)

	// The cache was invalidated, so the next read reflects the new booking.
	view, err = renter.Month(ctx, start.Year(), start.Month())
	require.NoError(t, err)
	require.NotEmpty(t, view.Bookings)
	assert.Equal(t, result.BookingID, view.Bookings[0].ID)

	// A second renter sees the conflict both in the advisory check and on the
	// server.
	rival := session.NewPlotSession(session.SessionParams{
		PlotID:   "plot-1",
		UserID:   "renter-2",
		Fetcher:  session.QueryFetcher(queryBus),
		Commands: commandBus,
	})
	rival.Select(start.AddDate(0, 0, 10), end.AddDate(0, 0, 10))
	bookable, err = rival.SelectionBookable(ctx)
	require.NoError(t, err)
	assert.False(t, bookable)

	_, err = rival.RequestBooking(ctx, "")
	assert.Error(t, err)
}

func TestSessionOwnerBlockRoundTrip(t *testing.T) {
	commandBus, queryBus := buildStack(t)
	ctx := context.Background()

	owner := session.NewPlotSession(session.SessionParams{
		PlotID:   "plot-1",
		UserID:   "owner-1",
		Fetcher:  session.QueryFetcher(queryBus),
		Commands: commandBus,
	})

	start := time.Now().UTC().AddDate(0, 1, 0)
	_, err := owner.AddBlock(ctx, start, start.AddDate(0, 0, 6), "cover crop")
	require.NoError(t, err)

	view, err := owner.Month(ctx, start.Year(), start.Month())
	require.NoError(t, err)
	require.NotEmpty(t, view.BlockedDates)
	assert.Equal(t, "cover crop", view.BlockedDates[0].Reason)
}
