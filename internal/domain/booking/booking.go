package booking

import (
	"context"
	"errors"
	"time"

	"growshare/internal/domain/plot"
	"growshare/internal/domain/pricing"
	"growshare/internal/domain/shared/daterange"
	"growshare/internal/domain/shared/events"
)

var (
	ErrInvalidState    = errors.New("booking: invalid state transition")
	ErrRenterRequired  = errors.New("booking: renter id required")
	ErrBookingNotFound = errors.New("booking: not found")
	ErrStartInPast     = errors.New("booking: start date is in the past")
)

type BookingID string

type BookingStatus string

const (
	StatusPending   BookingStatus = "PENDING"
	StatusConfirmed BookingStatus = "CONFIRMED"
	StatusCancelled BookingStatus = "CANCELLED"
)

// Booking is a renter's claim on a plot for an inclusive date range. Only
// PENDING and CONFIRMED bookings occupy calendar days; CANCELLED bookings are
// kept for history and ignored by conflict checks.
type Booking struct {
	ID        BookingID
	PlotID    plot.PlotID
	RenterID  string
	Range     daterange.DateRange
	Message   string
	Price     pricing.Quote
	Status    BookingStatus
	CreatedAt time.Time
	UpdatedAt time.Time
	Version   int64
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id BookingID) (*Booking, error)
	Save(ctx context.Context, b *Booking) error
	ListByRenter(ctx context.Context, renterID string) ([]*Booking, error)
}

// Occupies reports whether the booking holds its calendar days.
func (b *Booking) Occupies() bool {
	return b.Status == StatusPending || b.Status == StatusConfirmed
}

type CreateParams struct {
	ID        BookingID
	PlotID    plot.PlotID
	RenterID  string
	Range     daterange.DateRange
	Message   string
	Price     pricing.Quote
	CreatedAt time.Time
}

func NewBooking(params CreateParams) (*Booking, error) {
	if params.RenterID == "" {
		return nil, ErrRenterRequired
	}
	if err := params.Range.Validate(); err != nil {
		return nil, err
	}
	now := params.CreatedAt.UTC()
	b := &Booking{
		ID:        params.ID,
		PlotID:    params.PlotID,
		RenterID:  params.RenterID,
		Range:     params.Range,
		Message:   params.Message,
		Price:     params.Price,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	b.Record(BookingRequested{BookingID: b.ID, PlotID: b.PlotID, RenterID: b.RenterID, Range: b.Range, Total: b.Price.Total, At: now})
	return b, nil
}

// ValidateDateRange rejects ranges that start before today, at calendar-date
// granularity.
func ValidateDateRange(dr daterange.DateRange, now time.Time) error {
	if daterange.Day(dr.Start).Before(daterange.Day(now)) {
		return ErrStartInPast
	}
	return nil
}

func (b *Booking) Confirm(now time.Time) error {
	if b.Status != StatusPending {
		return ErrInvalidState
	}
	b.Status = StatusConfirmed
	b.UpdatedAt = now.UTC()
	b.Record(BookingConfirmed{BookingID: b.ID, PlotID: b.PlotID, Range: b.Range, At: b.UpdatedAt})
	return nil
}

func (b *Booking) Cancel(reason string, now time.Time) error {
	if b.Status != StatusPending && b.Status != StatusConfirmed {
		return ErrInvalidState
	}
	b.Status = StatusCancelled
	b.UpdatedAt = now.UTC()
	b.Record(BookingCancelled{BookingID: b.ID, PlotID: b.PlotID, Reason: reason, At: b.UpdatedAt})
	return nil
}
