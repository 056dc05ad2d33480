package memory

import (
	"context"

	domainplot "growshare/internal/domain/plot"
	domainpricing "growshare/internal/domain/pricing"
	"growshare/internal/domain/shared/daterange"
	"growshare/internal/domain/shared/money"
)

// PricingEngine quotes leases from the plot's listed monthly rate.
type PricingEngine struct{}

func NewPricingEngine() PricingEngine {
	return PricingEngine{}
}

func (PricingEngine) Quote(ctx context.Context, p *domainplot.Plot, r daterange.DateRange) (domainpricing.Quote, error) {
	monthly, err := money.New(p.MonthlyRateCents, p.Currency)
	if err != nil {
		return domainpricing.Quote{}, err
	}
	return domainpricing.CalculateCost(r, monthly)
}

var _ domainpricing.Calculator = PricingEngine{}
