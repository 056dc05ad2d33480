package availability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"growshare/internal/domain/booking"
	"growshare/internal/domain/shared/daterange"
)

var today = time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC)

func dr(t *testing.T, start, end time.Time) daterange.DateRange {
	t.Helper()
	out, err := daterange.New(start, end)
	require.NoError(t, err)
	return out
}

func june(day int) time.Time {
	return time.Date(2026, time.June, day, 0, 0, 0, 0, time.UTC)
}

// seededCalendar carries a confirmed booking Jun 1-10 and an owner block
// Jun 20-25.
func seededCalendar(t *testing.T) *Calendar {
	t.Helper()
	cal := NewCalendar("plot-1")
	require.NoError(t, cal.Reserve("bk-1", dr(t, june(1), june(10)), booking.StatusConfirmed, today, 0, today))
	require.NoError(t, cal.AddBlock("blk-1", dr(t, june(20), june(25)), "soil rest", today))
	cal.ClearEvents()
	return cal
}

func TestCanBookFreeRange(t *testing.T) {
	cal := seededCalendar(t)
	assert.NoError(t, cal.CanBook(dr(t, june(11), june(19)), today, 0))
	assert.NoError(t, cal.CanBook(dr(t, june(26), june(30)), today, 0))
}

func TestCanBookConflicts(t *testing.T) {
	cal := seededCalendar(t)
	cases := []struct {
		name       string
		start, end time.Time
	}{
		{"inside booking", june(5), june(8)},
		{"spans booking end", june(8), june(12)},
		{"starts on booking end", june(10), june(15)},
		{"ends on booking start", time.Date(2026, time.May, 25, 0, 0, 0, 0, time.UTC), june(1)},
		{"inside block", june(21), june(23)},
		{"spans block", june(18), june(27)},
		{"covers everything", june(1), june(30)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := cal.CanBook(dr(t, tc.start, tc.end), today, 0)
			assert.ErrorIs(t, err, ErrRangeUnavailable)
		})
	}
}

func TestCanBookIsPure(t *testing.T) {
	cal := seededCalendar(t)
	candidate := dr(t, june(11), june(19))
	for i := 0; i < 3; i++ {
		assert.NoError(t, cal.CanBook(candidate, today, 0))
	}
	conflicting := dr(t, june(5), june(8))
	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, cal.CanBook(conflicting, today, 0), ErrRangeUnavailable)
	}
}

func TestCanBookStartInPast(t *testing.T) {
	cal := NewCalendar("plot-1")
	err := cal.CanBook(dr(t, june(1), june(10)), june(2), 0)
	assert.ErrorIs(t, err, ErrStartInPast)
}

func TestCanBookMinimumLease(t *testing.T) {
	cal := NewCalendar("plot-1")
	// 2-month minimum means at least 60 billed days.
	err := cal.CanBook(dr(t, june(1), june(30)), today, 2)
	assert.ErrorIs(t, err, ErrBelowMinimumLease)
	assert.NoError(t, cal.CanBook(dr(t, june(1), june(1).AddDate(0, 0, 59)), today, 2))
}

func TestCancelledBookingFreesDays(t *testing.T) {
	cal := seededCalendar(t)
	require.NoError(t, cal.SetBookingStatus("bk-1", booking.StatusCancelled, today))
	assert.NoError(t, cal.CanBook(dr(t, june(1), june(10)), today, 0))
}

func TestSetBookingStatusUnknownEntry(t *testing.T) {
	cal := NewCalendar("plot-1")
	err := cal.SetBookingStatus("missing", booking.StatusCancelled, today)
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestReserveAppendsAndRecords(t *testing.T) {
	cal := NewCalendar("plot-1")
	r := dr(t, june(1), june(10))
	require.NoError(t, cal.Reserve("bk-1", r, booking.StatusPending, today, 0, today))

	require.Len(t, cal.Bookings, 1)
	assert.Equal(t, "bk-1", cal.Bookings[0].ID)

	pending := cal.PendingEvents()
	require.Len(t, pending, 1)
	blocked, ok := pending[0].(CalendarBlocked)
	require.True(t, ok)
	assert.Equal(t, KindBooking, blocked.Kind)
	assert.Equal(t, "bk-1", blocked.Reference)
}

func TestReserveRejectsOverlapAndRecordsPrevention(t *testing.T) {
	cal := seededCalendar(t)
	err := cal.Reserve("bk-2", dr(t, june(8), june(12)), booking.StatusPending, today, 0, today)
	assert.ErrorIs(t, err, ErrRangeUnavailable)
	require.Len(t, cal.Bookings, 1)

	pending := cal.PendingEvents()
	require.Len(t, pending, 1)
	_, ok := pending[0].(OverbookingPrevented)
	assert.True(t, ok)
}

func TestOwnerBlockMayOverlapBooking(t *testing.T) {
	cal := seededCalendar(t)
	err := cal.AddBlock("blk-2", dr(t, june(5), june(8)), "maintenance", today)
	require.NoError(t, err)
	assert.Len(t, cal.Blocks, 2)
}

func TestRemoveBlockRestoresAvailability(t *testing.T) {
	cal := seededCalendar(t)
	require.NoError(t, cal.RemoveBlock("blk-1", today))
	assert.NoError(t, cal.CanBook(dr(t, june(20), june(25)), today, 0))

	pending := cal.PendingEvents()
	require.Len(t, pending, 1)
	released, ok := pending[0].(CalendarReleased)
	require.True(t, ok)
	assert.Equal(t, KindOwnerBlock, released.Kind)
}

func TestRemoveBlockUnknownID(t *testing.T) {
	cal := NewCalendar("plot-1")
	assert.ErrorIs(t, cal.RemoveBlock("nope", today), ErrBlockNotFound)
}

func TestWindowReturnsIntersectingEntries(t *testing.T) {
	cal := seededCalendar(t)
	require.NoError(t, cal.SetBookingStatus("bk-1", booking.StatusCancelled, today))

	bookings, blocks := cal.Window(dr(t, june(1), june(30)))
	// Cancelled entries stay visible in window views.
	require.Len(t, bookings, 1)
	assert.Equal(t, string(booking.StatusCancelled), string(bookings[0].Status))
	require.Len(t, blocks, 1)

	bookings, blocks = cal.Window(dr(t, june(11), june(19)))
	assert.Empty(t, bookings)
	assert.Empty(t, blocks)

	// Partial overlap counts.
	bookings, _ = cal.Window(dr(t, june(10), june(12)))
	assert.Len(t, bookings, 1)
}

func TestValidateWindow(t *testing.T) {
	assert.NoError(t, ValidateWindow(dr(t, june(1), june(30))))

	wide, err := daterange.New(june(1), june(1).AddDate(1, 0, 0))
	require.NoError(t, err)
	assert.ErrorIs(t, ValidateWindow(wide), ErrWindowTooLarge)
}
