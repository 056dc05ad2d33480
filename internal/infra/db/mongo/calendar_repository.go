package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainavailability "growshare/internal/domain/availability"
	domainbooking "growshare/internal/domain/booking"
	domainplot "growshare/internal/domain/plot"
	"growshare/internal/domain/shared/daterange"
)

// CalendarRepository persists the per-plot availability calendar. The
// version-guarded upsert is what makes check-and-reserve atomic: two racing
// bookings read the same version, and only the first save matches the filter.
type CalendarRepository struct {
	col *mongo.Collection
}

func NewCalendarRepository(db *mongo.Database) *CalendarRepository {
	return &CalendarRepository{col: db.Collection("agg_calendar")}
}

func (r *CalendarRepository) Calendar(ctx context.Context, id domainplot.PlotID) (*domainavailability.Calendar, error) {
	var doc calendarDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return domainavailability.NewCalendar(id), nil
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *CalendarRepository) Save(ctx context.Context, cal *domainavailability.Calendar) error {
	doc := newCalendarDocument(cal)
	filter := bson.M{"_id": doc.ID, "version": cal.Version}
	doc.Version = cal.Version + 1
	update := bson.M{"$set": doc}
	opts := options.Update().SetUpsert(true)
	res, err := r.col.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domainavailability.ErrConcurrentUpdate
		}
		return err
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return domainavailability.ErrConcurrentUpdate
	}
	cal.Version = doc.Version
	return nil
}

type calendarDocument struct {
	ID       string               `bson:"_id"`
	Bookings []bookingEntryRecord `bson:"bookings"`
	Blocks   []blockedDateRecord  `bson:"blocks"`
	Version  int64                `bson:"version"`
}

type bookingEntryRecord struct {
	ID     string        `bson:"id"`
	Range  rangeDocument `bson:"range"`
	Status string        `bson:"status"`
}

type blockedDateRecord struct {
	ID        string        `bson:"id"`
	Range     rangeDocument `bson:"range"`
	Reason    string        `bson:"reason"`
	CreatedAt int64         `bson:"created_at"`
}

func newCalendarDocument(cal *domainavailability.Calendar) calendarDocument {
	doc := calendarDocument{
		ID:      string(cal.PlotID),
		Version: cal.Version,
	}
	for _, entry := range cal.Bookings {
		doc.Bookings = append(doc.Bookings, bookingEntryRecord{
			ID:     entry.ID,
			Range:  rangeDocument{Start: entry.Range.Start.UnixMilli(), End: entry.Range.End.UnixMilli()},
			Status: string(entry.Status),
		})
	}
	for _, block := range cal.Blocks {
		doc.Blocks = append(doc.Blocks, blockedDateRecord{
			ID:        block.ID,
			Range:     rangeDocument{Start: block.Range.Start.UnixMilli(), End: block.Range.End.UnixMilli()},
			Reason:    block.Reason,
			CreatedAt: block.CreatedAt.UnixMilli(),
		})
	}
	return doc
}

func (d calendarDocument) toAggregate() *domainavailability.Calendar {
	cal := &domainavailability.Calendar{
		PlotID:  domainplot.PlotID(d.ID),
		Version: d.Version,
	}
	for _, entry := range d.Bookings {
		cal.Bookings = append(cal.Bookings, domainavailability.BookingEntry{
			ID:     entry.ID,
			Range:  daterange.DateRange{Start: timestampToTime(entry.Range.Start), End: timestampToTime(entry.Range.End)},
			Status: domainbooking.BookingStatus(entry.Status),
		})
	}
	for _, block := range d.Blocks {
		cal.Blocks = append(cal.Blocks, domainavailability.BlockedDate{
			ID:        block.ID,
			Range:     daterange.DateRange{Start: timestampToTime(block.Range.Start), End: timestampToTime(block.Range.End)},
			Reason:    block.Reason,
			CreatedAt: timestampToTime(block.CreatedAt),
		})
	}
	return cal
}
