package availability

import (
	"context"
	"fmt"
	"time"

	"growshare/internal/app/dto"
	"growshare/internal/app/middleware"
	"growshare/internal/app/queries"
	"growshare/internal/app/uow"
	domainavailability "growshare/internal/domain/availability"
	domainplot "growshare/internal/domain/plot"
	"growshare/internal/domain/shared/daterange"
)

const getAvailabilityKey = "availability.window"

// GetAvailabilityQuery asks for the bookings and blocked dates intersecting
// [From, To] on a plot. Failures propagate to the caller; an error is never
// collapsed into an empty (conflict-free) result.
type GetAvailabilityQuery struct {
	PlotID string
	From   time.Time
	To     time.Time
}

func (q GetAvailabilityQuery) Key() string { return getAvailabilityKey }

func (q GetAvailabilityQuery) Validate() error {
	if q.PlotID == "" {
		return fmt.Errorf("%w: plot id required", middleware.ErrInvalidMessage)
	}
	return nil
}

type GetAvailabilityHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetAvailabilityHandler) Handle(ctx context.Context, q GetAvailabilityQuery) (dto.Availability, error) {
	window, err := daterange.New(q.From, q.To)
	if err != nil {
		return dto.Availability{}, err
	}
	if err := domainavailability.ValidateWindow(window); err != nil {
		return dto.Availability{}, err
	}

	unit, ok := uow.FromContext(ctx)
	if !ok {
		if h.UoWFactory == nil {
			return dto.Availability{}, uow.ErrUnitOfWorkMissing
		}
		unit, err = h.UoWFactory.Begin(ctx, uow.TxOptions{ReadOnly: true})
		if err != nil {
			return dto.Availability{}, err
		}
		ctx = uow.ContextWithUnitOfWork(ctx, unit)
		defer unit.Rollback(ctx)
	}

	cal, err := unit.Availability().Calendar(ctx, domainplot.PlotID(q.PlotID))
	if err != nil {
		return dto.Availability{}, err
	}

	bookings, blocks := cal.Window(window)
	return dto.MapAvailability(cal.PlotID, bookings, blocks), nil
}

var _ queries.Handler[GetAvailabilityQuery, dto.Availability] = (*GetAvailabilityHandler)(nil)
