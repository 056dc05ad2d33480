package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"growshare/internal/app/commands"
	"growshare/internal/app/dto"
	availabilityapp "growshare/internal/app/handlers/availability"
	blocksapp "growshare/internal/app/handlers/blocks"
	bookingapp "growshare/internal/app/handlers/booking"
	"growshare/internal/app/queries"
	domainavailability "growshare/internal/domain/availability"
	domainbooking "growshare/internal/domain/booking"
	"growshare/internal/domain/shared/daterange"
)

var (
	ErrMutationInFlight = errors.New("session: a mutation is already in flight")
	ErrNoSelection      = errors.New("session: no date range selected")
)

// AvailabilityFetcher retrieves the authoritative availability view for a
// window; in the monolith it is backed by the query bus, over the wire it
// would be the availability endpoint.
type AvailabilityFetcher interface {
	Fetch(ctx context.Context, plotID string, from, to time.Time) (dto.Availability, error)
}

type FetcherFunc func(ctx context.Context, plotID string, from, to time.Time) (dto.Availability, error)

func (f FetcherFunc) Fetch(ctx context.Context, plotID string, from, to time.Time) (dto.Availability, error) {
	return f(ctx, plotID, from, to)
}

// QueryFetcher adapts the in-process query bus to the fetcher port.
func QueryFetcher(bus queries.Bus) FetcherFunc {
	return func(ctx context.Context, plotID string, from, to time.Time) (dto.Availability, error) {
		q := availabilityapp.GetAvailabilityQuery{PlotID: plotID, From: from, To: to}
		return queries.Ask[availabilityapp.GetAvailabilityQuery, dto.Availability](ctx, bus, q)
	}
}

// SelectionRange is a renter's in-progress date pick. Purely local state:
// abandoned at any time with no side effect, cleared on submit.
type SelectionRange struct {
	Start time.Time
	End   time.Time
}

func (s SelectionRange) Complete() bool {
	return !s.Start.IsZero() && !s.End.IsZero()
}

// PlotSession drives one user's view of one plot: it reads availability
// through the month cache, keeps the in-progress selection, runs the
// advisory bookability fast-path, and issues mutations. Every mutation that
// reaches the server invalidates the cache so the next read re-fetches.
//
// The advisory check here never substitutes for the server's validation: the
// command handlers re-validate against the authoritative calendar, and this
// session may simply be holding stale months.
type PlotSession struct {
	PlotID string
	UserID string

	Fetcher  AvailabilityFetcher
	Commands commands.Bus
	Cache    *Cache

	now func() time.Time

	mu        sync.Mutex
	selection SelectionRange
	inFlight  bool
}

type SessionParams struct {
	PlotID   string
	UserID   string
	Fetcher  AvailabilityFetcher
	Commands commands.Bus
	CacheTTL time.Duration
	Clock    func() time.Time
}

func NewPlotSession(params SessionParams) *PlotSession {
	clock := params.Clock
	if clock == nil {
		clock = time.Now
	}
	return &PlotSession{
		PlotID:   params.PlotID,
		UserID:   params.UserID,
		Fetcher:  params.Fetcher,
		Commands: params.Commands,
		Cache:    NewCache(params.CacheTTL, clock),
		now:      clock,
	}
}

// Month returns the availability view for one displayed month, served from
// cache when fresh. A miss fetches a two-month window starting at the
// displayed month and fills both month entries, matching how the calendar UI
// pages.
func (s *PlotSession) Month(ctx context.Context, year int, month time.Month) (dto.Availability, error) {
	if cached, ok := s.Cache.Get(s.PlotID, year, month); ok {
		return cached, nil
	}

	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	nextMonth := from.AddDate(0, 1, 0)
	to := from.AddDate(0, 2, -1)

	fetched, err := s.Fetcher.Fetch(ctx, s.PlotID, from, to)
	if err != nil {
		// A failed fetch must surface as an error, never as an empty
		// (conflict-free) month.
		return dto.Availability{}, err
	}

	first := filterMonth(fetched, year, month)
	second := filterMonth(fetched, nextMonth.Year(), nextMonth.Month())
	s.Cache.Set(s.PlotID, year, month, first)
	s.Cache.Set(s.PlotID, nextMonth.Year(), nextMonth.Month(), second)
	return first, nil
}

// Select stores the in-progress date pick.
func (s *PlotSession) Select(start, end time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection = SelectionRange{Start: daterange.Day(start), End: daterange.Day(end)}
}

func (s *PlotSession) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection = SelectionRange{}
}

func (s *PlotSession) Selection() SelectionRange {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selection
}

// SelectionBookable is the optimistic fast-path: it applies the same
// interval-overlap semantics as the server validator, over cached (or freshly
// fetched) months covering the selection.
func (s *PlotSession) SelectionBookable(ctx context.Context) (bool, error) {
	sel := s.Selection()
	if !sel.Complete() {
		return false, ErrNoSelection
	}
	candidate, err := daterange.New(sel.Start, sel.End)
	if err != nil {
		return false, nil
	}
	if candidate.Start.Before(daterange.Day(s.now())) {
		return false, nil
	}

	cursor := time.Date(candidate.Start.Year(), candidate.Start.Month(), 1, 0, 0, 0, 0, time.UTC)
	for !cursor.After(candidate.End) {
		view, err := s.Month(ctx, cursor.Year(), cursor.Month())
		if err != nil {
			return false, err
		}
		if viewConflicts(view, candidate) {
			return false, nil
		}
		cursor = cursor.AddDate(0, 1, 0)
	}
	return true, nil
}

// RequestBooking submits the current selection. Re-submission while a
// mutation is in flight is refused rather than queued.
func (s *PlotSession) RequestBooking(ctx context.Context, message string) (*bookingapp.RequestBookingResult, error) {
	sel := s.Selection()
	if !sel.Complete() {
		return nil, ErrNoSelection
	}
	if err := s.beginMutation(); err != nil {
		return nil, err
	}
	defer s.endMutation()

	cmd := bookingapp.RequestBookingCommand{
		CommandID: uuid.NewString(),
		PlotID:    s.PlotID,
		RenterID:  s.UserID,
		Start:     sel.Start,
		End:       sel.End,
		Message:   message,
	}
	result, err := commands.Dispatch[bookingapp.RequestBookingCommand, *bookingapp.RequestBookingResult](ctx, s.Commands, cmd)
	if err != nil {
		if isStaleConflict(err) {
			// The server knows better than the cache: drop it so the next
			// read shows why the range is gone.
			s.Cache.InvalidateAll()
		}
		return nil, err
	}
	s.Cache.InvalidateAll()
	s.ClearSelection()
	return result, nil
}

// AddBlock carves a blackout window (owner action) and invalidates the cache.
func (s *PlotSession) AddBlock(ctx context.Context, start, end time.Time, reason string) (*blocksapp.CreateBlockResult, error) {
	if err := s.beginMutation(); err != nil {
		return nil, err
	}
	defer s.endMutation()

	cmd := blocksapp.CreateBlockCommand{
		CommandID: uuid.NewString(),
		PlotID:    s.PlotID,
		OwnerID:   s.UserID,
		Start:     start,
		End:       end,
		Reason:    reason,
	}
	result, err := commands.Dispatch[blocksapp.CreateBlockCommand, *blocksapp.CreateBlockResult](ctx, s.Commands, cmd)
	if err != nil {
		return nil, err
	}
	s.Cache.InvalidateAll()
	return result, nil
}

// RemoveBlock restores availability (owner action) and invalidates the cache.
func (s *PlotSession) RemoveBlock(ctx context.Context, blockID string) (*blocksapp.RemoveBlockResult, error) {
	if err := s.beginMutation(); err != nil {
		return nil, err
	}
	defer s.endMutation()

	cmd := blocksapp.RemoveBlockCommand{
		PlotID:  s.PlotID,
		OwnerID: s.UserID,
		BlockID: blockID,
	}
	result, err := commands.Dispatch[blocksapp.RemoveBlockCommand, *blocksapp.RemoveBlockResult](ctx, s.Commands, cmd)
	if err != nil {
		return nil, err
	}
	s.Cache.InvalidateAll()
	return result, nil
}

func (s *PlotSession) beginMutation() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight {
		return ErrMutationInFlight
	}
	s.inFlight = true
	return nil
}

func (s *PlotSession) endMutation() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight = false
}

func filterMonth(av dto.Availability, year int, month time.Month) dto.Availability {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	window := daterange.DateRange{Start: first, End: first.AddDate(0, 1, -1)}
	out := dto.Availability{PlotID: av.PlotID}
	for _, b := range av.Bookings {
		if intervalOverlaps(b.StartDate, b.EndDate, window) {
			out.Bookings = append(out.Bookings, b)
		}
	}
	for _, bl := range av.BlockedDates {
		if intervalOverlaps(bl.StartDate, bl.EndDate, window) {
			out.BlockedDates = append(out.BlockedDates, bl)
		}
	}
	return out
}

func viewConflicts(view dto.Availability, candidate daterange.DateRange) bool {
	for _, b := range view.Bookings {
		status := domainbooking.BookingStatus(b.Status)
		if status != domainbooking.StatusPending && status != domainbooking.StatusConfirmed {
			continue
		}
		if intervalOverlaps(b.StartDate, b.EndDate, candidate) {
			return true
		}
	}
	for _, bl := range view.BlockedDates {
		if intervalOverlaps(bl.StartDate, bl.EndDate, candidate) {
			return true
		}
	}
	return false
}

func intervalOverlaps(start, end time.Time, r daterange.DateRange) bool {
	interval := daterange.DateRange{Start: daterange.Day(start), End: daterange.Day(end)}
	return interval.Overlaps(r)
}

// isStaleConflict recognizes a mutation rejected because cached availability
// no longer matched reality, including the loser of a concurrent-save race.
func isStaleConflict(err error) bool {
	return errors.Is(err, domainavailability.ErrRangeUnavailable) ||
		errors.Is(err, domainavailability.ErrConcurrentUpdate)
}
