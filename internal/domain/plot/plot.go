package plot

import (
	"context"
	"errors"
	"strings"
	"time"

	"growshare/internal/domain/shared/events"
)

var (
	ErrTitleRequired   = errors.New("plot: title is required")
	ErrOwnerRequired   = errors.New("plot: owner id is required")
	ErrMonthlyRate     = errors.New("plot: monthly rate must be non-negative")
	ErrMinLease        = errors.New("plot: minimum lease must be at least 1 month")
	ErrInvalidArea     = errors.New("plot: area must be positive")
	ErrInvalidState    = errors.New("plot: invalid state transition")
	ErrAddressRequired = errors.New("plot: address must be provided when activating")
	ErrPlotNotFound    = errors.New("plot: not found")
)

type PlotID string
type OwnerID string

type PlotState string

const (
	PlotDraft     PlotState = "DRAFT"
	PlotActive    PlotState = "ACTIVE"
	PlotSuspended PlotState = "SUSPENDED"
)

type Address struct {
	Line1   string
	City    string
	Region  string
	Country string
	Lat     float64
	Lon     float64
}

func (a Address) Valid() bool {
	return strings.TrimSpace(a.Line1) != "" && strings.TrimSpace(a.City) != "" && strings.TrimSpace(a.Country) != ""
}

// Plot is a rentable parcel of land. Availability is tracked separately in
// the plot's calendar aggregate; the plot itself carries the lease terms a
// booking request needs: rate, minimum lease and the instant-book flag.
type Plot struct {
	ID               PlotID
	Owner            OwnerID
	Title            string
	Description      string
	Address          Address
	AreaSquareMeters float64
	SoilType         string
	MonthlyRateCents int64
	Currency         string
	MinLeaseMonths   int
	InstantBook      bool
	State            PlotState
	AvailableFrom    time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
	Version          int64
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id PlotID) (*Plot, error)
	Save(ctx context.Context, p *Plot) error
}

type CreateParams struct {
	ID               PlotID
	Owner            OwnerID
	Title            string
	Description      string
	Address          Address
	AreaSquareMeters float64
	SoilType         string
	MonthlyRateCents int64
	Currency         string
	MinLeaseMonths   int
	InstantBook      bool
	AvailableFrom    time.Time
	Now              time.Time
}

func New(params CreateParams) (*Plot, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, errors.New("plot: id required")
	}
	if strings.TrimSpace(string(params.Owner)) == "" {
		return nil, ErrOwnerRequired
	}
	if strings.TrimSpace(params.Title) == "" {
		return nil, ErrTitleRequired
	}
	if params.MonthlyRateCents < 0 {
		return nil, ErrMonthlyRate
	}
	if params.MinLeaseMonths < 1 {
		return nil, ErrMinLease
	}
	if params.AreaSquareMeters <= 0 {
		return nil, ErrInvalidArea
	}
	currency := strings.ToUpper(strings.TrimSpace(params.Currency))
	if currency == "" {
		currency = "USD"
	}
	now := params.Now.UTC()
	return &Plot{
		ID:               params.ID,
		Owner:            params.Owner,
		Title:            params.Title,
		Description:      params.Description,
		Address:          params.Address,
		AreaSquareMeters: params.AreaSquareMeters,
		SoilType:         params.SoilType,
		MonthlyRateCents: params.MonthlyRateCents,
		Currency:         currency,
		MinLeaseMonths:   params.MinLeaseMonths,
		InstantBook:      params.InstantBook,
		State:            PlotDraft,
		AvailableFrom:    params.AvailableFrom,
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

func (p *Plot) Activate(now time.Time) error {
	if p.State == PlotActive {
		return nil
	}
	if p.State != PlotDraft && p.State != PlotSuspended {
		return ErrInvalidState
	}
	if !p.Address.Valid() {
		return ErrAddressRequired
	}
	p.State = PlotActive
	p.UpdatedAt = now.UTC()
	return nil
}

func (p *Plot) Suspend(now time.Time) error {
	if p.State != PlotActive {
		return ErrInvalidState
	}
	p.State = PlotSuspended
	p.UpdatedAt = now.UTC()
	return nil
}
