package availability

import (
	"context"
	"errors"
	"time"

	"growshare/internal/domain/booking"
	"growshare/internal/domain/plot"
	"growshare/internal/domain/pricing"
	"growshare/internal/domain/shared/daterange"
	"growshare/internal/domain/shared/events"
)

var (
	ErrRangeUnavailable  = errors.New("availability: range overlaps an existing booking or block")
	ErrStartInPast       = errors.New("availability: range starts in the past")
	ErrBelowMinimumLease = errors.New("availability: range is shorter than the minimum lease")
	ErrBlockNotFound     = errors.New("availability: blocked date not found")
	ErrBookingNotFound   = errors.New("availability: booking entry not found")
	ErrWindowTooLarge    = errors.New("availability: requested window exceeds the maximum span")
	ErrConcurrentUpdate  = errors.New("availability: calendar changed concurrently")
)

// MaxWindowDays bounds a single availability query. Clients page
// month-at-a-time or two months ahead; anything beyond ~6 months is a
// misbehaving caller, not a legitimate view.
const MaxWindowDays = 184

const (
	KindBooking    = "BOOKING"
	KindOwnerBlock = "OWNER_BLOCK"
)

// BookingEntry mirrors a booking's occupancy on the calendar. Status is kept
// so that cancelled entries stay visible in history without occupying days.
type BookingEntry struct {
	ID     string
	Range  daterange.DateRange
	Status booking.BookingStatus
}

func (e BookingEntry) Occupies() bool {
	return e.Status == booking.StatusPending || e.Status == booking.StatusConfirmed
}

// BlockedDate is an owner-imposed blackout window. Existence implies the
// block is active; removal restores availability.
type BlockedDate struct {
	ID        string
	Range     daterange.DateRange
	Reason    string
	CreatedAt time.Time
}

// Calendar is the per-plot source of truth for occupancy. Every reservation
// and block goes through it, and the repository guards Save with the Version
// field, so a conflict check plus append is atomic: of two racing overlapping
// requests, the loser's save fails with ErrConcurrentUpdate.
type Calendar struct {
	PlotID   plot.PlotID
	Bookings []BookingEntry
	Blocks   []BlockedDate
	Version  int64
	events.EventRecorder
}

type Repository interface {
	Calendar(ctx context.Context, id plot.PlotID) (*Calendar, error)
	Save(ctx context.Context, cal *Calendar) error
}

func NewCalendar(id plot.PlotID) *Calendar {
	return &Calendar{PlotID: id}
}

// Conflicting reports whether the range overlaps any occupying booking or any
// block. Boundary dates count: a candidate starting on an existing entry's
// end date conflicts.
func (c *Calendar) Conflicting(r daterange.DateRange) bool {
	for _, entry := range c.Bookings {
		if entry.Occupies() && entry.Range.Overlaps(r) {
			return true
		}
	}
	for _, block := range c.Blocks {
		if block.Range.Overlaps(r) {
			return true
		}
	}
	return false
}

// CanBook decides whether a candidate range is bookable against the current
// calendar state. Pure with respect to the calendar: identical inputs always
// produce identical results.
func (c *Calendar) CanBook(r daterange.DateRange, today time.Time, minLeaseMonths int) error {
	if err := r.Validate(); err != nil {
		return err
	}
	if r.Start.Before(daterange.Day(today)) {
		return ErrStartInPast
	}
	if minLeaseMonths > 0 && r.Days() < minLeaseMonths*pricing.BilledMonthDays {
		return ErrBelowMinimumLease
	}
	if c.Conflicting(r) {
		return ErrRangeUnavailable
	}
	return nil
}

// Reserve validates and appends a booking entry in one step.
func (c *Calendar) Reserve(bookingID string, r daterange.DateRange, status booking.BookingStatus, today time.Time, minLeaseMonths int, now time.Time) error {
	if err := c.CanBook(r, today, minLeaseMonths); err != nil {
		if errors.Is(err, ErrRangeUnavailable) {
			c.Record(OverbookingPrevented{PlotID: c.PlotID, Range: r, At: now.UTC()})
		}
		return err
	}
	c.Bookings = append(c.Bookings, BookingEntry{ID: bookingID, Range: r, Status: status})
	c.Record(CalendarBlocked{PlotID: c.PlotID, Range: r, Kind: KindBooking, Reference: bookingID, At: now.UTC()})
	return nil
}

// SetBookingStatus updates an entry's status; moving to CANCELLED frees the
// covered days.
func (c *Calendar) SetBookingStatus(bookingID string, status booking.BookingStatus, now time.Time) error {
	for i, entry := range c.Bookings {
		if entry.ID != bookingID {
			continue
		}
		c.Bookings[i].Status = status
		if status == booking.StatusCancelled {
			c.Record(CalendarReleased{PlotID: c.PlotID, Range: entry.Range, Kind: KindBooking, Reference: bookingID, At: now.UTC()})
		}
		return nil
	}
	return ErrBookingNotFound
}

// AddBlock removes availability unconditionally. An owner may block dates
// already held by a booking; overriding their own calendar is not a conflict,
// though it can orphan the booking. The CalendarBlocked event carries enough
// to let a downstream consumer surface that collision.
func (c *Calendar) AddBlock(blockID string, r daterange.DateRange, reason string, now time.Time) error {
	if err := r.Validate(); err != nil {
		return err
	}
	c.Blocks = append(c.Blocks, BlockedDate{ID: blockID, Range: r, Reason: reason, CreatedAt: now.UTC()})
	c.Record(CalendarBlocked{PlotID: c.PlotID, Range: r, Kind: KindOwnerBlock, Reference: blockID, At: now.UTC()})
	return nil
}

// RemoveBlock restores availability for the block's range.
func (c *Calendar) RemoveBlock(blockID string, now time.Time) error {
	idx := -1
	for i, block := range c.Blocks {
		if block.ID == blockID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return ErrBlockNotFound
	}
	removed := c.Blocks[idx]
	c.Blocks = append(c.Blocks[:idx], c.Blocks[idx+1:]...)
	c.Record(CalendarReleased{PlotID: c.PlotID, Range: removed.Range, Kind: KindOwnerBlock, Reference: blockID, At: now.UTC()})
	return nil
}

// Window returns the entries intersecting the queried range; partial overlap
// counts. The result is a derived view, never persisted.
func (c *Calendar) Window(w daterange.DateRange) ([]BookingEntry, []BlockedDate) {
	var bookings []BookingEntry
	for _, entry := range c.Bookings {
		if entry.Range.Overlaps(w) {
			bookings = append(bookings, entry)
		}
	}
	var blocks []BlockedDate
	for _, block := range c.Blocks {
		if block.Range.Overlaps(w) {
			blocks = append(blocks, block)
		}
	}
	return bookings, blocks
}

// ValidateWindow guards availability queries against unbounded result sets.
func ValidateWindow(w daterange.DateRange) error {
	if err := w.Validate(); err != nil {
		return err
	}
	if w.Days() > MaxWindowDays {
		return ErrWindowTooLarge
	}
	return nil
}
