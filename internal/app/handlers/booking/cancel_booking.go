package booking

import (
	"context"
	"errors"
	"time"

	"growshare/internal/app/commands"
	"growshare/internal/app/outbox"
	"growshare/internal/app/uow"
	domainbooking "growshare/internal/domain/booking"
)

const cancelBookingKey = "booking.cancel"

var ErrNotBookingParty = errors.New("booking: caller is neither renter nor plot owner")

type CancelBookingCommand struct {
	BookingID string
	CallerID  string
	Reason    string
}

func (c CancelBookingCommand) Key() string { return cancelBookingKey }

type CancelBookingResult struct {
	BookingID string `json:"booking_id"`
	Status    string `json:"status"`
}

// CancelBookingHandler moves a booking to CANCELLED and frees its calendar
// days, returning them to the available pool.
type CancelBookingHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
}

func (h *CancelBookingHandler) Handle(ctx context.Context, cmd CancelBookingCommand) (*CancelBookingResult, error) {
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

	bk, err := unit.Booking().ByID(ctx, domainbooking.BookingID(cmd.BookingID))
	if err != nil {
		return nil, err
	}

	p, err := unit.Plots().ByID(ctx, bk.PlotID)
	if err != nil {
		return nil, err
	}
	if cmd.CallerID != bk.RenterID && cmd.CallerID != string(p.Owner) {
		return nil, ErrNotBookingParty
	}

	now := time.Now().UTC()
	if err := bk.Cancel(cmd.Reason, now); err != nil {
		return nil, err
	}

	cal, err := unit.Availability().Calendar(ctx, bk.PlotID)
	if err != nil {
		return nil, err
	}
	if err := cal.SetBookingStatus(string(bk.ID), bk.Status, now); err != nil {
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

	return &CancelBookingResult{BookingID: string(bk.ID), Status: string(bk.Status)}, nil
}

func (h *CancelBookingHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

var _ commands.Handler[CancelBookingCommand, *CancelBookingResult] = (*CancelBookingHandler)(nil)
