package availability

import (
	"time"

	"growshare/internal/domain/plot"
	"growshare/internal/domain/shared/daterange"
)

type CalendarBlocked struct {
	PlotID    plot.PlotID
	Range     daterange.DateRange
	Kind      string
	Reference string
	At        time.Time
}

func (e CalendarBlocked) EventName() string     { return "calendar.blocked" }
func (e CalendarBlocked) AggregateID() string   { return string(e.PlotID) }
func (e CalendarBlocked) OccurredAt() time.Time { return e.At }

type CalendarReleased struct {
	PlotID    plot.PlotID
	Range     daterange.DateRange
	Kind      string
	Reference string
	At        time.Time
}

func (e CalendarReleased) EventName() string     { return "calendar.released" }
func (e CalendarReleased) AggregateID() string   { return string(e.PlotID) }
func (e CalendarReleased) OccurredAt() time.Time { return e.At }

type OverbookingPrevented struct {
	PlotID plot.PlotID
	Range  daterange.DateRange
	At     time.Time
}

func (e OverbookingPrevented) EventName() string     { return "calendar.overbooking_prevented" }
func (e OverbookingPrevented) AggregateID() string   { return string(e.PlotID) }
func (e OverbookingPrevented) OccurredAt() time.Time { return e.At }
