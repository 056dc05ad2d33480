package availability_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	availabilityapp "growshare/internal/app/handlers/availability"
	domainavailability "growshare/internal/domain/availability"
	domainbooking "growshare/internal/domain/booking"
	"growshare/internal/domain/shared/daterange"
	"growshare/internal/infra/storage/memory"
)

func seededFactory(t *testing.T) memory.Factory {
	t.Helper()
	calRepo := memory.NewCalendarRepository()
	ctx := context.Background()
	today := time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC)

	cal, err := calRepo.Calendar(ctx, "plot-1")
	require.NoError(t, err)

	booked, err := daterange.New(
		time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.June, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.NoError(t, cal.Reserve("bk-1", booked, domainbooking.StatusConfirmed, today, 0, today))

	blocked, err := daterange.New(
		time.Date(2026, time.June, 20, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.June, 25, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.NoError(t, cal.AddBlock("blk-1", blocked, "soil rest", today))
	require.NoError(t, calRepo.Save(ctx, cal))

	return memory.Factory{
		PlotRepo:     memory.NewPlotRepository(),
		CalendarRepo: calRepo,
		BookingRepo:  memory.NewBookingRepository(),
		PricingSvc:   memory.NewPricingEngine(),
	}
}

func TestGetAvailabilityWindow(t *testing.T) {
	h := &availabilityapp.GetAvailabilityHandler{UoWFactory: seededFactory(t)}

	view, err := h.Handle(context.Background(), availabilityapp.GetAvailabilityQuery{
		PlotID: "plot-1",
		From:   time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC),
		To:     time.Date(2026, time.June, 30, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, "plot-1", view.PlotID)
	require.Len(t, view.Bookings, 1)
	assert.Equal(t, "bk-1", view.Bookings[0].ID)
	require.Len(t, view.BlockedDates, 1)
	assert.Equal(t, "soil rest", view.BlockedDates[0].Reason)
}

func TestGetAvailabilityPartialOverlapCounts(t *testing.T) {
	h := &availabilityapp.GetAvailabilityHandler{UoWFactory: seededFactory(t)}

	view, err := h.Handle(context.Background(), availabilityapp.GetAvailabilityQuery{
		PlotID: "plot-1",
		From:   time.Date(2026, time.June, 10, 0, 0, 0, 0, time.UTC),
		To:     time.Date(2026, time.June, 12, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Len(t, view.Bookings, 1)
	assert.Empty(t, view.BlockedDates)
}

func TestGetAvailabilityEmptyWindow(t *testing.T) {
	h := &availabilityapp.GetAvailabilityHandler{UoWFactory: seededFactory(t)}

	view, err := h.Handle(context.Background(), availabilityapp.GetAvailabilityQuery{
		PlotID: "plot-1",
		From:   time.Date(2026, time.July, 1, 0, 0, 0, 0, time.UTC),
		To:     time.Date(2026, time.July, 31, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Empty(t, view.Bookings)
	assert.Empty(t, view.BlockedDates)
}

func TestGetAvailabilityValidation(t *testing.T) {
	h := &availabilityapp.GetAvailabilityHandler{UoWFactory: seededFactory(t)}

	_, err := h.Handle(context.Background(), availabilityapp.GetAvailabilityQuery{
		PlotID: "plot-1",
		From:   time.Date(2026, time.June, 30, 0, 0, 0, 0, time.UTC),
		To:     time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC),
	})
	assert.ErrorIs(t, err, daterange.ErrInvalidRange)

	_, err = h.Handle(context.Background(), availabilityapp.GetAvailabilityQuery{
		PlotID: "plot-1",
		From:   time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
		To:     time.Date(2027, time.January, 1, 0, 0, 0, 0, time.UTC),
	})
	assert.ErrorIs(t, err, domainavailability.ErrWindowTooLarge)
}

func TestGetAvailabilityUnknownPlotIsEmptyCalendar(t *testing.T) {
	h := &availabilityapp.GetAvailabilityHandler{UoWFactory: seededFactory(t)}

	view, err := h.Handle(context.Background(), availabilityapp.GetAvailabilityQuery{
		PlotID: "plot-unseen",
		From:   time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC),
		To:     time.Date(2026, time.June, 30, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Empty(t, view.Bookings)
	assert.Empty(t, view.BlockedDates)
}
