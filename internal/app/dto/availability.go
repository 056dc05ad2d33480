package dto

import (
	"time"

	"growshare/internal/domain/availability"
	"growshare/internal/domain/plot"
)

type BookingInterval struct {
	ID        string    `json:"id"`
	PlotID    string    `json:"plot_id"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Status    string    `json:"status"`
}

type BlockedDate struct {
	ID        string    `json:"id"`
	PlotID    string    `json:"plot_id"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Reason    string    `json:"reason,omitempty"`
}

// Availability is the derived view of a plot's calendar over a queried
// window.
type Availability struct {
	PlotID       string            `json:"plot_id"`
	Bookings     []BookingInterval `json:"bookings"`
	BlockedDates []BlockedDate     `json:"blocked_dates"`
}

func MapAvailability(id plot.PlotID, bookings []availability.BookingEntry, blocks []availability.BlockedDate) Availability {
	out := Availability{
		PlotID:       string(id),
		Bookings:     make([]BookingInterval, 0, len(bookings)),
		BlockedDates: make([]BlockedDate, 0, len(blocks)),
	}
	for _, entry := range bookings {
		out.Bookings = append(out.Bookings, BookingInterval{
			ID:        entry.ID,
			PlotID:    string(id),
			StartDate: entry.Range.Start,
			EndDate:   entry.Range.End,
			Status:    string(entry.Status),
		})
	}
	for _, block := range blocks {
		out.BlockedDates = append(out.BlockedDates, BlockedDate{
			ID:        block.ID,
			PlotID:    string(id),
			StartDate: block.Range.Start,
			EndDate:   block.Range.End,
			Reason:    block.Reason,
		})
	}
	return out
}
