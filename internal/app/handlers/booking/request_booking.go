package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"growshare/internal/app/commands"
	"growshare/internal/app/middleware"
	"growshare/internal/app/outbox"
	"growshare/internal/app/policies"
	"growshare/internal/app/uow"
	domainbooking "growshare/internal/domain/booking"
	domainplot "growshare/internal/domain/plot"
	"growshare/internal/domain/shared/daterange"
)

const requestBookingKey = "booking.request"

var (
	ErrUnitOfWorkRequired = errors.New("booking: unit of work required")
	// ErrVerificationRequired gates booking behind email verification when the
	// deployment demands it. The HTTP layer turns this into a remediation
	// prompt rather than a dead-end error.
	ErrVerificationRequired = errors.New("booking: email verification required")
)

type RequestBookingCommand struct {
	CommandID       string
	PlotID          string
	RenterID        string
	EmailVerified   bool
	Start           time.Time
	End             time.Time
	Message         string
	IdempotencyKeyV string
}

func (c RequestBookingCommand) Key() string { return requestBookingKey }

func (c RequestBookingCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c RequestBookingCommand) ResultPrototype() any { return &RequestBookingResult{} }

func (c RequestBookingCommand) Validate() error {
	if c.PlotID == "" {
		return fmt.Errorf("%w: plot id required", middleware.ErrInvalidMessage)
	}
	if c.RenterID == "" {
		return fmt.Errorf("%w: renter id required", middleware.ErrInvalidMessage)
	}
	return nil
}

type RequestBookingResult struct {
	BookingID string `json:"booking_id"`
	Status    string `json:"status"`
}

// RequestBookingHandler validates a booking request against the authoritative
// calendar and reserves the range. Whatever a client-side cache claimed about
// availability is irrelevant here: the calendar loaded inside this unit of
// work is the only state consulted, and the version-guarded save makes the
// check-and-reserve atomic.
type RequestBookingHandler struct {
	UoWFactory           uow.UoWFactory
	Outbox               outbox.Outbox
	Encoder              outbox.EventEncoder
	Notifier             policies.Notifier
	RequireVerifiedEmail bool
}

func (h *RequestBookingHandler) Handle(ctx context.Context, cmd RequestBookingCommand) (*RequestBookingResult, error) {
	unit, ok := uow.FromContext(ctx)
	managed := false
	committed := false
	if !ok {
		if h.UoWFactory == nil {
			return nil, ErrUnitOfWorkRequired
		}
		var err error
		unit, err = h.UoWFactory.Begin(ctx, uow.TxOptions{})
		if err != nil {
			return nil, err
		}
		ctx = uow.ContextWithUnitOfWork(ctx, unit)
		managed = true
	}
	if managed {
		defer func() {
			if !committed {
				_ = unit.Rollback(ctx)
			}
		}()
	}

	if h.RequireVerifiedEmail && !cmd.EmailVerified {
		return nil, ErrVerificationRequired
	}

	dr, err := daterange.New(cmd.Start, cmd.End)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()

	p, err := unit.Plots().ByID(ctx, domainplot.PlotID(cmd.PlotID))
	if err != nil {
		return nil, err
	}

	cal, err := unit.Availability().Calendar(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	quote, err := unit.Pricing().Quote(ctx, p, dr)
	if err != nil {
		return nil, err
	}

	bk, err := domainbooking.NewBooking(domainbooking.CreateParams{
		ID:        domainbooking.BookingID(cmd.CommandID),
		PlotID:    p.ID,
		RenterID:  cmd.RenterID,
		Range:     dr,
		Message:   cmd.Message,
		Price:     quote,
		CreatedAt: now,
	})
	if err != nil {
		return nil, err
	}
	if p.InstantBook {
		if err := bk.Confirm(now); err != nil {
			return nil, err
		}
	}

	if err := cal.Reserve(string(bk.ID), dr, bk.Status, now, p.MinLeaseMonths, now); err != nil {
		return nil, err
	}

	if err := unit.Booking().Save(ctx, bk); err != nil {
		return nil, err
	}
	if err := unit.Availability().Save(ctx, cal); err != nil {
		return nil, err
	}

	pending := append(bk.PendingEvents(), cal.PendingEvents()...)
	bk.ClearEvents()
	cal.ClearEvents()
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.encoder(), pending); err != nil {
		return nil, err
	}

	if managed {
		if err := unit.Commit(ctx); err != nil {
			return nil, err
		}
		committed = true
	}

	// Notification intents are best effort; the booking stands either way.
	if h.Notifier != nil {
		if bk.Status == domainbooking.StatusConfirmed {
			_ = h.Notifier.BookingConfirmed(ctx, bk.RenterID, string(bk.ID))
		} else {
			_ = h.Notifier.BookingRequested(ctx, string(p.Owner), string(bk.ID))
		}
	}

	return &RequestBookingResult{BookingID: string(bk.ID), Status: string(bk.Status)}, nil
}

func (h *RequestBookingHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

var _ commands.Handler[RequestBookingCommand, *RequestBookingResult] = (*RequestBookingHandler)(nil)
var _ middleware.IdempotentCommand = (*RequestBookingCommand)(nil)
