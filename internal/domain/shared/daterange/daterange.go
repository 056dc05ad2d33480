package daterange

import (
	"errors"
	"time"
)

var ErrInvalidRange = errors.New("daterange: end must not be before start")

// DateRange is an inclusive interval of calendar days [Start, End].
// Both bounds are normalized to UTC midnight; time-of-day never participates
// in comparisons.
type DateRange struct {
	Start time.Time
	End   time.Time
}

func New(start, end time.Time) (DateRange, error) {
	dr := DateRange{Start: Day(start), End: Day(end)}
	if err := dr.Validate(); err != nil {
		return DateRange{}, err
	}
	return dr, nil
}

// Day truncates a timestamp to its UTC calendar date.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func (dr DateRange) Validate() error {
	if dr.Start.IsZero() || dr.End.IsZero() {
		return ErrInvalidRange
	}
	if dr.End.Before(dr.Start) {
		return ErrInvalidRange
	}
	return nil
}

// Days returns the number of calendar days covered, counting both bounds.
func (dr DateRange) Days() int {
	return int(dr.End.Sub(dr.Start).Hours()/24) + 1
}

// Overlaps reports whether two inclusive ranges share at least one day.
// Ranges that touch at a boundary date overlap under these semantics, so
// there is no same-day turnover. Equivalent to scanning every day of the
// receiver and testing membership in other, without the O(days) cost.
func (dr DateRange) Overlaps(other DateRange) bool {
	return !dr.Start.After(other.End) && !other.Start.After(dr.End)
}

func (dr DateRange) ContainsDate(t time.Time) bool {
	d := Day(t)
	return !d.Before(dr.Start) && !d.After(dr.End)
}

func (dr DateRange) Contains(other DateRange) bool {
	return !dr.Start.After(other.Start) && !dr.End.Before(other.End)
}

// Clamp restricts the range to the given window, returning false when the
// two do not intersect.
func (dr DateRange) Clamp(window DateRange) (DateRange, bool) {
	if !dr.Overlaps(window) {
		return DateRange{}, false
	}
	out := dr
	if out.Start.Before(window.Start) {
		out.Start = window.Start
	}
	if out.End.After(window.End) {
		out.End = window.End
	}
	return out, true
}
