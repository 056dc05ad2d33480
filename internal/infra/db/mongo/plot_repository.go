package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainavailability "growshare/internal/domain/availability"
	domainplot "growshare/internal/domain/plot"
)

type PlotRepository struct {
	col *mongo.Collection
}

func NewPlotRepository(db *mongo.Database) *PlotRepository {
	return &PlotRepository{col: db.Collection("agg_plot")}
}

func (r *PlotRepository) ByID(ctx context.Context, id domainplot.PlotID) (*domainplot.Plot, error) {
	var doc plotDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domainplot.ErrPlotNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *PlotRepository) Save(ctx context.Context, p *domainplot.Plot) error {
	doc := newPlotDocument(p)
	filter := bson.M{"_id": doc.ID, "version": p.Version}
	doc.Version = p.Version + 1
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
	p.Version = doc.Version
	return nil
}

type plotDocument struct {
	ID               string          `bson:"_id"`
	Owner            string          `bson:"owner_id"`
	Title            string          `bson:"title"`
	Description      string          `bson:"description"`
	Address          addressDocument `bson:"address"`
	AreaSquareMeters float64         `bson:"area_sq_m"`
	SoilType         string          `bson:"soil_type"`
	MonthlyRateCents int64           `bson:"monthly_rate_cents"`
	Currency         string          `bson:"currency"`
	MinLeaseMonths   int             `bson:"min_lease_months"`
	InstantBook      bool            `bson:"instant_book"`
	State            string          `bson:"state"`
	AvailableFrom    int64           `bson:"available_from"`
	CreatedAt        int64           `bson:"created_at"`
	UpdatedAt        int64           `bson:"updated_at"`
	Version          int64           `bson:"version"`
}

type addressDocument struct {
	Line1   string  `bson:"line1"`
	City    string  `bson:"city"`
	Region  string  `bson:"region"`
	Country string  `bson:"country"`
	Lat     float64 `bson:"lat"`
	Lon     float64 `bson:"lon"`
}

func newPlotDocument(p *domainplot.Plot) plotDocument {
	return plotDocument{
		ID:          string(p.ID),
		Owner:       string(p.Owner),
		Title:       p.Title,
		Description: p.Description,
		Address: addressDocument{
			Line1:   p.Address.Line1,
			City:    p.Address.City,
			Region:  p.Address.Region,
			Country: p.Address.Country,
			Lat:     p.Address.Lat,
			Lon:     p.Address.Lon,
		},
		AreaSquareMeters: p.AreaSquareMeters,
		SoilType:         p.SoilType,
		MonthlyRateCents: p.MonthlyRateCents,
		Currency:         p.Currency,
		MinLeaseMonths:   p.MinLeaseMonths,
		InstantBook:      p.InstantBook,
		State:            string(p.State),
		AvailableFrom:    p.AvailableFrom.UnixMilli(),
		CreatedAt:        p.CreatedAt.UnixMilli(),
		UpdatedAt:        p.UpdatedAt.UnixMilli(),
		Version:          p.Version,
	}
}

func (d plotDocument) toAggregate() *domainplot.Plot {
	return &domainplot.Plot{
		ID:          domainplot.PlotID(d.ID),
		Owner:       domainplot.OwnerID(d.Owner),
		Title:       d.Title,
		Description: d.Description,
		Address: domainplot.Address{
			Line1:   d.Address.Line1,
			City:    d.Address.City,
			Region:  d.Address.Region,
			Country: d.Address.Country,
			Lat:     d.Address.Lat,
			Lon:     d.Address.Lon,
		},
		AreaSquareMeters: d.AreaSquareMeters,
		SoilType:         d.SoilType,
		MonthlyRateCents: d.MonthlyRateCents,
		Currency:         d.Currency,
		MinLeaseMonths:   d.MinLeaseMonths,
		InstantBook:      d.InstantBook,
		State:            domainplot.PlotState(d.State),
		AvailableFrom:    timestampToTime(d.AvailableFrom),
		CreatedAt:        timestampToTime(d.CreatedAt),
		UpdatedAt:        timestampToTime(d.UpdatedAt),
		Version:          d.Version,
	}
}

func timestampToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
