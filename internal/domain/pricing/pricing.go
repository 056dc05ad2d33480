package pricing

import (
	"context"
	"errors"

	"growshare/internal/domain/plot"
	"growshare/internal/domain/shared/daterange"
	"growshare/internal/domain/shared/money"
)

var (
	ErrCurrencyUnset = errors.New("pricing: currency must be defined")
	ErrInvalidRate   = errors.New("pricing: monthly rate must be non-negative")
)

// BilledMonthDays is the fixed month length used for billing. Leases are
// billed in whole 30-day months regardless of calendar month boundaries; this
// is a deliberate product simplification, and changing it changes every
// displayed price.
const BilledMonthDays = 30

// Quote is the price for a lease over a concrete date range.
type Quote struct {
	Months  int
	Monthly money.Money
	Total   money.Money
}

// CalculateCost converts an inclusive date range and a monthly rate into a
// month count and total. Partial months round up: 31 days bill as 2 months.
func CalculateCost(r daterange.DateRange, monthly money.Money) (Quote, error) {
	if monthly.Currency == "" {
		return Quote{}, ErrCurrencyUnset
	}
	if monthly.Amount < 0 {
		return Quote{}, ErrInvalidRate
	}
	if err := r.Validate(); err != nil {
		return Quote{}, err
	}
	days := r.Days()
	months := (days + BilledMonthDays - 1) / BilledMonthDays
	return Quote{
		Months:  months,
		Monthly: monthly,
		Total:   monthly.Multiply(int64(months)),
	}, nil
}

// Calculator produces lease quotes for a plot. Implementations may consult
// external rate sources; the default engine reads the plot's listed rate.
type Calculator interface {
	Quote(ctx context.Context, p *plot.Plot, r daterange.DateRange) (Quote, error)
}
