package blocks_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	blocksapp "growshare/internal/app/handlers/blocks"
	bookingapp "growshare/internal/app/handlers/booking"
	domainavailability "growshare/internal/domain/availability"
	domainplot "growshare/internal/domain/plot"
	"growshare/internal/infra/storage/memory"
)

type fixture struct {
	factory  memory.Factory
	plots    *memory.PlotRepository
	calendar *memory.CalendarRepository
	outbox   *memory.Outbox
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		plots:    memory.NewPlotRepository(),
		calendar: memory.NewCalendarRepository(),
		outbox:   memory.NewOutbox(),
	}
	f.factory = memory.Factory{
		PlotRepo:     f.plots,
		CalendarRepo: f.calendar,
		BookingRepo:  memory.NewBookingRepository(),
		PricingSvc:   memory.NewPricingEngine(),
	}
	return f
}

func (f *fixture) seedPlot(t *testing.T, id, owner string) {
	t.Helper()
	now := time.Now()
	p, err := domainplot.New(domainplot.CreateParams{
		ID:    domainplot.PlotID(id),
		Owner: domainplot.OwnerID(owner),
		Title: "Test parcel",
		Address: domainplot.Address{
			Line1:   "Lot 1",
			City:    "Portland",
			Country: "US",
		},
		AreaSquareMeters: 100,
		MonthlyRateCents: 30000,
		Currency:         "USD",
		MinLeaseMonths:   1,
		AvailableFrom:    now,
		Now:              now,
	})
	require.NoError(t, err)
	require.NoError(t, p.Activate(now))
	require.NoError(t, f.plots.Save(context.Background(), p))
}

func futureRange(days int) (time.Time, time.Time) {
	start := time.Now().UTC().AddDate(0, 1, 0)
	return start, start.AddDate(0, 0, days-1)
}

func TestCreateBlockOwnerOnly(t *testing.T) {
	f := newFixture(t)
	f.seedPlot(t, "plot-1", "owner-1")
	start, end := futureRange(5)

	h := &blocksapp.CreateBlockHandler{UoWFactory: f.factory, Outbox: f.outbox}
	_, err := h.Handle(context.Background(), blocksapp.CreateBlockCommand{
		CommandID: "blk-1",
		PlotID:    "plot-1",
		OwnerID:   "someone-else",
		Start:     start,
		End:       end,
	})
	assert.ErrorIs(t, err, blocksapp.ErrNotPlotOwner)

	result, err := h.Handle(context.Background(), blocksapp.CreateBlockCommand{
		CommandID: "blk-1",
		PlotID:    "plot-1",
		OwnerID:   "owner-1",
		Start:     start,
		End:       end,
		Reason:    "soil rest",
	})
	require.NoError(t, err)
	assert.Equal(t, "blk-1", result.BlockID)
}

func TestBlockedRangeRejectsBookings(t *testing.T) {
	f := newFixture(t)
	f.seedPlot(t, "plot-1", "owner-1")
	start, end := futureRange(30)

	blockHandler := &blocksapp.CreateBlockHandler{UoWFactory: f.factory, Outbox: f.outbox}
	_, err := blockHandler.Handle(context.Background(), blocksapp.CreateBlockCommand{
		CommandID: "blk-1",
		PlotID:    "plot-1",
		OwnerID:   "owner-1",
		Start:     start,
		End:       start.AddDate(0, 0, 4),
	})
	require.NoError(t, err)

	bookHandler := &bookingapp.RequestBookingHandler{UoWFactory: f.factory, Outbox: f.outbox}
	_, err = bookHandler.Handle(context.Background(), bookingapp.RequestBookingCommand{
		CommandID: "cmd-1",
		PlotID:    "plot-1",
		RenterID:  "renter-1",
		Start:     start,
		End:       end,
	})
	assert.ErrorIs(t, err, domainavailability.ErrRangeUnavailable)
}

func TestBlockOverBookingIsAllowed(t *testing.T) {
	f := newFixture(t)
	f.seedPlot(t, "plot-1", "owner-1")
	start, end := futureRange(30)

	bookHandler := &bookingapp.RequestBookingHandler{UoWFactory: f.factory, Outbox: f.outbox}
	_, err := bookHandler.Handle(context.Background(), bookingapp.RequestBookingCommand{
		CommandID: "cmd-1",
		PlotID:    "plot-1",
		RenterID:  "renter-1",
		Start:     start,
		End:       end,
	})
	require.NoError(t, err)

	// Owners override their own calendar without a conflict check.
	blockHandler := &blocksapp.CreateBlockHandler{UoWFactory: f.factory, Outbox: f.outbox}
	_, err = blockHandler.Handle(context.Background(), blocksapp.CreateBlockCommand{
		CommandID: "blk-1",
		PlotID:    "plot-1",
		OwnerID:   "owner-1",
		Start:     start,
		End:       end,
	})
	assert.NoError(t, err)
}

func TestRemoveBlockRestoresAvailability(t *testing.T) {
	f := newFixture(t)
	f.seedPlot(t, "plot-1", "owner-1")
	start, end := futureRange(30)

	blockHandler := &blocksapp.CreateBlockHandler{UoWFactory: f.factory, Outbox: f.outbox}
	_, err := blockHandler.Handle(context.Background(), blocksapp.CreateBlockCommand{
		CommandID: "blk-1",
		PlotID:    "plot-1",
		OwnerID:   "owner-1",
		Start:     start,
		End:       end,
	})
	require.NoError(t, err)

	removeHandler := &blocksapp.RemoveBlockHandler{UoWFactory: f.factory, Outbox: f.outbox}
	_, err = removeHandler.Handle(context.Background(), blocksapp.RemoveBlockCommand{
		PlotID:  "plot-1",
		OwnerID: "other",
		BlockID: "blk-1",
	})
	assert.ErrorIs(t, err, blocksapp.ErrNotPlotOwner)

	_, err = removeHandler.Handle(context.Background(), blocksapp.RemoveBlockCommand{
		PlotID:  "plot-1",
		OwnerID: "owner-1",
		BlockID: "blk-1",
	})
	require.NoError(t, err)

	bookHandler := &bookingapp.RequestBookingHandler{UoWFactory: f.factory, Outbox: f.outbox}
	_, err = bookHandler.Handle(context.Background(), bookingapp.RequestBookingCommand{
		CommandID: "cmd-1",
		PlotID:    "plot-1",
		RenterID:  "renter-1",
		Start:     start,
		End:       end,
	})
	assert.NoError(t, err)
}

func TestRemoveBlockUnknownID(t *testing.T) {
	f := newFixture(t)
	f.seedPlot(t, "plot-1", "owner-1")

	removeHandler := &blocksapp.RemoveBlockHandler{UoWFactory: f.factory, Outbox: f.outbox}
	_, err := removeHandler.Handle(context.Background(), blocksapp.RemoveBlockCommand{
		PlotID:  "plot-1",
		OwnerID: "owner-1",
		BlockID: "nope",
	})
	assert.ErrorIs(t, err, domainavailability.ErrBlockNotFound)
}
