package dto

import (
	"time"

	domainbooking "growshare/internal/domain/booking"
	"growshare/internal/domain/shared/money"
)

type MoneyDTO struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type QuoteDTO struct {
	Months  int      `json:"months"`
	Monthly MoneyDTO `json:"monthly"`
	Total   MoneyDTO `json:"total"`
}

type BookingSummary struct {
	ID        string    `json:"id"`
	PlotID    string    `json:"plot_id"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Status    string    `json:"status"`
	Message   string    `json:"message,omitempty"`
	Price     QuoteDTO  `json:"price"`
	CreatedAt time.Time `json:"created_at"`
}

type BookingCollection struct {
	Items []BookingSummary `json:"items"`
}

func MapMoney(value money.Money) MoneyDTO {
	return MoneyDTO{Amount: value.Amount, Currency: value.Currency}
}

func MapBookingSummary(b *domainbooking.Booking) BookingSummary {
	return BookingSummary{
		ID:        string(b.ID),
		PlotID:    string(b.PlotID),
		StartDate: b.Range.Start,
		EndDate:   b.Range.End,
		Status:    string(b.Status),
		Message:   b.Message,
		Price: QuoteDTO{
			Months:  b.Price.Months,
			Monthly: MapMoney(b.Price.Monthly),
			Total:   MapMoney(b.Price.Total),
		},
		CreatedAt: b.CreatedAt,
	}
}
