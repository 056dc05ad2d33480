package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	domainavailability "growshare/internal/domain/availability"
	domainbooking "growshare/internal/domain/booking"
	domainplot "growshare/internal/domain/plot"
)

// PlotRepository is an in-memory implementation for dev and tests.
type PlotRepository struct {
	mu    sync.RWMutex
	items map[domainplot.PlotID]*domainplot.Plot
}

func NewPlotRepository() *PlotRepository {
	return &PlotRepository{items: make(map[domainplot.PlotID]*domainplot.Plot)}
}

func (r *PlotRepository) ByID(ctx context.Context, id domainplot.PlotID) (*domainplot.Plot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.items[id]
	if !ok {
		return nil, domainplot.ErrPlotNotFound
	}
	return p, nil
}

func (r *PlotRepository) Save(ctx context.Context, p *domainplot.Plot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[p.ID] = p
	return nil
}

// CalendarRepository keeps availability calendars in memory. Save applies the
// same optimistic version guard as the mongo implementation, so the
// check-and-reserve race behaves identically across storage modes.
type CalendarRepository struct {
	mu        sync.Mutex
	calendars map[domainplot.PlotID]*domainavailability.Calendar
}

func NewCalendarRepository() *CalendarRepository {
	return &CalendarRepository{calendars: make(map[domainplot.PlotID]*domainavailability.Calendar)}
}

// Calendar retrieves a snapshot of the plot's calendar, lazily creating it.
func (r *CalendarRepository) Calendar(ctx context.Context, id domainplot.PlotID) (*domainavailability.Calendar, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.calendars[id]
	if !ok {
		stored = domainavailability.NewCalendar(id)
		r.calendars[id] = stored
	}
	return cloneCalendar(stored), nil
}

// Save persists the calendar only when nobody else saved since it was loaded.
func (r *CalendarRepository) Save(ctx context.Context, cal *domainavailability.Calendar) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.calendars[cal.PlotID]
	if ok && stored.Version != cal.Version {
		return domainavailability.ErrConcurrentUpdate
	}
	next := cloneCalendar(cal)
	next.Version = cal.Version + 1
	r.calendars[cal.PlotID] = next
	cal.Version = next.Version
	return nil
}

func cloneCalendar(cal *domainavailability.Calendar) *domainavailability.Calendar {
	out := domainavailability.NewCalendar(cal.PlotID)
	out.Bookings = append([]domainavailability.BookingEntry(nil), cal.Bookings...)
	out.Blocks = append([]domainavailability.BlockedDate(nil), cal.Blocks...)
	out.Version = cal.Version
	return out
}

// BookingRepository stores bookings in memory.
type BookingRepository struct {
	mu    sync.RWMutex
	items map[domainbooking.BookingID]*domainbooking.Booking
}

func NewBookingRepository() *BookingRepository {
	return &BookingRepository{items: make(map[domainbooking.BookingID]*domainbooking.Booking)}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	bk, ok := r.items[id]
	if !ok {
		return nil, domainbooking.ErrBookingNotFound
	}
	return bk, nil
}

func (r *BookingRepository) Save(ctx context.Context, bk *domainbooking.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	bk.Version++
	r.items[bk.ID] = bk
	return nil
}

func (r *BookingRepository) ListByRenter(ctx context.Context, renterID string) ([]*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id := strings.TrimSpace(renterID)
	if id == "" {
		return nil, errors.New("memory: renter id required")
	}
	matches := make([]*domainbooking.Booking, 0)
	for _, bk := range r.items {
		if bk.RenterID == id {
			matches = append(matches, bk)
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})
	return matches, nil
}
