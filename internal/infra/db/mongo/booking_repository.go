package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainavailability "growshare/internal/domain/availability"
	domainbooking "growshare/internal/domain/booking"
	domainplot "growshare/internal/domain/plot"
	domainpricing "growshare/internal/domain/pricing"
	"growshare/internal/domain/shared/daterange"
	"growshare/internal/domain/shared/money"
)

type BookingRepository struct {
	col *mongo.Collection
}

func NewBookingRepository(db *mongo.Database) *BookingRepository {
	col := db.Collection("agg_booking")
	idx := mongo.IndexModel{Keys: bson.D{{Key: "renter_id", Value: 1}, {Key: "created_at", Value: -1}}}
	_, _ = col.Indexes().CreateOne(context.Background(), idx)
	return &BookingRepository{col: col}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	var doc bookingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domainbooking.ErrBookingNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	doc := newBookingDocument(b)
	filter := bson.M{"_id": doc.ID, "version": b.Version}
	doc.Version = b.Version + 1
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
	b.Version = doc.Version
	return nil
}

func (r *BookingRepository) ListByRenter(ctx context.Context, renterID string) ([]*domainbooking.Booking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{"renter_id": renterID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []*domainbooking.Booking
	for cur.Next(ctx) {
		var doc bookingDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toAggregate())
	}
	return out, cur.Err()
}

type bookingDocument struct {
	ID        string        `bson:"_id"`
	PlotID    string        `bson:"plot_id"`
	RenterID  string        `bson:"renter_id"`
	Range     rangeDocument `bson:"range"`
	Message   string        `bson:"message"`
	Price     quoteDocument `bson:"price"`
	Status    string        `bson:"status"`
	CreatedAt int64         `bson:"created_at"`
	UpdatedAt int64         `bson:"updated_at"`
	Version   int64         `bson:"version"`
}

type rangeDocument struct {
	Start int64 `bson:"start"`
	End   int64 `bson:"end"`
}

type quoteDocument struct {
	Months   int    `bson:"months"`
	Monthly  int64  `bson:"monthly_cents"`
	Total    int64  `bson:"total_cents"`
	Currency string `bson:"currency"`
}

func newBookingDocument(b *domainbooking.Booking) bookingDocument {
	return bookingDocument{
		ID:       string(b.ID),
		PlotID:   string(b.PlotID),
		RenterID: b.RenterID,
		Range:    rangeDocument{Start: b.Range.Start.UnixMilli(), End: b.Range.End.UnixMilli()},
		Message:  b.Message,
		Price: quoteDocument{
			Months:   b.Price.Months,
			Monthly:  b.Price.Monthly.Amount,
			Total:    b.Price.Total.Amount,
			Currency: b.Price.Monthly.Currency,
		},
		Status:    string(b.Status),
		CreatedAt: b.CreatedAt.UnixMilli(),
		UpdatedAt: b.UpdatedAt.UnixMilli(),
		Version:   b.Version,
	}
}

func (d bookingDocument) toAggregate() *domainbooking.Booking {
	return &domainbooking.Booking{
		ID:       domainbooking.BookingID(d.ID),
		PlotID:   domainplot.PlotID(d.PlotID),
		RenterID: d.RenterID,
		Range:    daterange.DateRange{Start: timestampToTime(d.Range.Start), End: timestampToTime(d.Range.End)},
		Message:  d.Message,
		Price: domainpricing.Quote{
			Months:  d.Price.Months,
			Monthly: money.Money{Amount: d.Price.Monthly, Currency: d.Price.Currency},
			Total:   money.Money{Amount: d.Price.Total, Currency: d.Price.Currency},
		},
		Status:    domainbooking.BookingStatus(d.Status),
		CreatedAt: timestampToTime(d.CreatedAt),
		UpdatedAt: timestampToTime(d.UpdatedAt),
		Version:   d.Version,
	}
}
