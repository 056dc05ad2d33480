package booking

import (
	"context"

	"growshare/internal/app/dto"
	"growshare/internal/app/queries"
	"growshare/internal/app/uow"
)

const listRenterBookingsKey = "booking.list_by_renter"

type ListRenterBookingsQuery struct {
	RenterID string
}

func (q ListRenterBookingsQuery) Key() string { return listRenterBookingsKey }

type ListRenterBookingsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListRenterBookingsHandler) Handle(ctx context.Context, q ListRenterBookingsQuery) (dto.BookingCollection, error) {
	unit, ok := uow.FromContext(ctx)
	if !ok {
		if h.UoWFactory == nil {
			return dto.BookingCollection{}, uow.ErrUnitOfWorkMissing
		}
		var err error
		unit, err = h.UoWFactory.Begin(ctx, uow.TxOptions{ReadOnly: true})
		if err != nil {
			return dto.BookingCollection{}, err
		}
		ctx = uow.ContextWithUnitOfWork(ctx, unit)
		defer unit.Rollback(ctx)
	}

	items, err := unit.Booking().ListByRenter(ctx, q.RenterID)
	if err != nil {
		return dto.BookingCollection{}, err
	}

	out := dto.BookingCollection{Items: make([]dto.BookingSummary, 0, len(items))}
	for _, bk := range items {
		out.Items = append(out.Items, dto.MapBookingSummary(bk))
	}
	return out, nil
}

var _ queries.Handler[ListRenterBookingsQuery, dto.BookingCollection] = (*ListRenterBookingsHandler)(nil)
