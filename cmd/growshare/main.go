package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"growshare/internal/app/commands"
	availabilityapp "growshare/internal/app/handlers/availability"
	blocksapp "growshare/internal/app/handlers/blocks"
	bookingapp "growshare/internal/app/handlers/booking"
	"growshare/internal/app/middleware"
	appoutbox "growshare/internal/app/outbox"
	"growshare/internal/app/policies"
	"growshare/internal/app/queries"
	"growshare/internal/app/uow"
	domainplot "growshare/internal/domain/plot"
	"growshare/internal/infra/broker/kafka"
	"growshare/internal/infra/config"
	mongodb "growshare/internal/infra/db/mongo"
	ginserver "growshare/internal/infra/http/gin"
	"growshare/internal/infra/obs"
	infraoutbox "growshare/internal/infra/outbox"
	"growshare/internal/infra/storage/memory"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "configuration error:", err)
		os.Exit(1)
	}
	logger := obs.NewLogger(cfg.Env)

	app, err := buildApplication(ctx, cfg, logger)
	if err != nil {
		logger.Error("application bootstrap failed", "error", err)
		os.Exit(1)
	}
	defer app.close(logger)

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{
		Ready: app.ready,
	}, app.handlers)

	fixturesPath := getenv("PLOT_FIXTURES", "")
	if fixturesPath == "" {
		fixturesPath = filepath.Join("data", "plots.json")
	}
	if err := app.loadPlotFixtures(ctx, fixturesPath, logger); err != nil {
		logger.Warn("plot fixtures load failed", "error", err, "path", fixturesPath)
	}
	tokensPath := getenv("USER_FIXTURES", "")
	if tokensPath == "" {
		tokensPath = filepath.Join("data", "users.json")
	}
	if err := app.loadUserFixtures(tokensPath, logger); err != nil {
		logger.Warn("user fixtures load failed", "error", err, "path", tokensPath)
	}

	if app.worker != nil {
		go func() {
			if err := app.worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("outbox worker stopped", "error", err)
			}
		}()
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "storage", cfg.StorageMode)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

type application struct {
	handlers ginserver.Handlers
	plots    domainplot.Repository
	identity *memory.IdentityDirectory
	ready    func() error
	worker   *infraoutbox.Worker
	producer *kafka.Producer
}

func buildApplication(ctx context.Context, cfg config.Config, logger *slog.Logger) (*application, error) {
	app := &application{
		identity: memory.NewIdentityDirectory(),
		ready:    func() error { return nil },
	}

	var (
		factory     uow.UoWFactory
		outboxStore appoutbox.Outbox
		idStore     middleware.IdempotencyStore
	)

	switch cfg.StorageMode {
	case "mongo":
		client, err := mongodb.New(cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, fmt.Errorf("mongo connect: %w", err)
		}
		plotRepo := mongodb.NewPlotRepository(client.DB)
		calendarRepo := mongodb.NewCalendarRepository(client.DB)
		bookingRepo := mongodb.NewBookingRepository(client.DB)
		store := infraoutbox.NewStore(client.DB)
		factory = mongodb.Factory{
			DB:           client.DB,
			PlotRepo:     plotRepo,
			CalendarRepo: calendarRepo,
			BookingRepo:  bookingRepo,
			PricingSvc:   memory.NewPricingEngine(),
		}
		outboxStore = store
		idStore = mongodb.NewIdempotencyStore(client.DB, cfg.IdempotencyTTL)
		app.plots = plotRepo
		app.ready = func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return client.Ping(pingCtx)
		}

		if len(cfg.KafkaBrokers) > 0 {
			producer, err := kafka.NewProducer(cfg.KafkaBrokers, nil)
			if err != nil {
				return nil, fmt.Errorf("kafka producer: %w", err)
			}
			app.producer = producer
			app.worker = &infraoutbox.Worker{
				Store:       store,
				Producer:    producer,
				Interval:    cfg.OutboxPollInterval,
				TopicPrefix: cfg.KafkaTopicPrefix,
				Backoff:     cfg.RetryBackoff,
			}
		} else {
			logger.Warn("no kafka brokers configured, outbox records will accumulate")
		}
	default:
		plotRepo := memory.NewPlotRepository()
		factory = memory.Factory{
			PlotRepo:     plotRepo,
			CalendarRepo: memory.NewCalendarRepository(),
			BookingRepo:  memory.NewBookingRepository(),
			PricingSvc:   memory.NewPricingEngine(),
		}
		outboxStore = memory.NewOutbox()
		idStore = memory.NewIdempotencyStore()
		app.plots = plotRepo
	}

	encoder := appoutbox.JSONEventEncoder{IDGenerator: uuid.NewString}

	commandBus := commands.NewInMemoryBus()
	commands.RegisterHandler(commandBus, bookingapp.RequestBookingCommand{}.Key(), &bookingapp.RequestBookingHandler{
		UoWFactory:           factory,
		Outbox:               outboxStore,
		Encoder:              encoder,
		Notifier:             policies.NoopNotifier{},
		RequireVerifiedEmail: cfg.RequireVerifiedEmail,
	})
	commands.RegisterHandler(commandBus, bookingapp.CancelBookingCommand{}.Key(), &bookingapp.CancelBookingHandler{
		UoWFactory: factory,
		Outbox:     outboxStore,
		Encoder:    encoder,
	})
	commands.RegisterHandler(commandBus, blocksapp.CreateBlockCommand{}.Key(), &blocksapp.CreateBlockHandler{
		UoWFactory: factory,
		Outbox:     outboxStore,
		Encoder:    encoder,
	})
	commands.RegisterHandler(commandBus, blocksapp.RemoveBlockCommand{}.Key(), &blocksapp.RemoveBlockHandler{
		UoWFactory: factory,
		Outbox:     outboxStore,
		Encoder:    encoder,
	})

	queryBus := queries.NewInMemoryBus()
	queries.RegisterHandler(queryBus, availabilityapp.GetAvailabilityQuery{}.Key(), &availabilityapp.GetAvailabilityHandler{
		UoWFactory: factory,
	})
	queries.RegisterHandler(queryBus, bookingapp.ListRenterBookingsQuery{}.Key(), &bookingapp.ListRenterBookingsHandler{
		UoWFactory: factory,
	})

	commandBusWithMiddleware := middleware.ChainCommands(
		commandBus,
		middleware.Validation(middleware.MessageValidator{}),
		middleware.Idempotency(idStore, nil),
		middleware.Transaction(factory, nil),
		middleware.OutboxFlush(outboxStore),
	)
	queryBusWithMiddleware := middleware.ChainQueries(
		queryBus,
		middleware.QueryValidation(middleware.MessageValidator{}),
	)

	app.handlers = ginserver.Handlers{
		Booking:        ginserver.BookingHandler{Commands: commandBusWithMiddleware},
		Availability:   ginserver.AvailabilityHandler{Queries: queryBusWithMiddleware},
		Blocks:         ginserver.BlockHandler{Commands: commandBusWithMiddleware},
		Me:             ginserver.MeHandler{Queries: queryBusWithMiddleware},
		AuthMiddleware: ginserver.AuthMiddleware{Resolver: app.identity, Logger: logger}.Handle,
	}
	return app, nil
}

func (a *application) close(logger *slog.Logger) {
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			logger.Warn("kafka producer close failed", "error", err)
		}
	}
}

func (a *application) loadPlotFixtures(ctx context.Context, path string, logger *slog.Logger) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Info("plot fixtures file not found, skipping", "path", path)
			return nil
		}
		return fmt.Errorf("read fixtures: %w", err)
	}

	var fixtures []plotFixture
	if err := json.Unmarshal(data, &fixtures); err != nil {
		return fmt.Errorf("decode fixtures: %w", err)
	}

	now := time.Now()
	for _, fx := range fixtures {
		params := domainplot.CreateParams{
			ID:          domainplot.PlotID(fx.ID),
			Owner:       domainplot.OwnerID(fx.Owner),
			Title:       fx.Title,
			Description: fx.Description,
			Address: domainplot.Address{
				Line1:   fx.Address.Line1,
				City:    fx.Address.City,
				Region:  fx.Address.Region,
				Country: fx.Address.Country,
				Lat:     fx.Address.Lat,
				Lon:     fx.Address.Lon,
			},
			AreaSquareMeters: fx.AreaSquareMeters,
			SoilType:         fx.SoilType,
			MonthlyRateCents: fx.MonthlyRateCents,
			Currency:         fx.Currency,
			MinLeaseMonths:   defaultMinLease(fx.MinLeaseMonths),
			InstantBook:      fx.InstantBook,
			AvailableFrom:    parseFixtureTime(fx.AvailableFrom, now),
			Now:              now,
		}
		p, err := domainplot.New(params)
		if err != nil {
			logger.Error("fixture invalid", "plot_id", fx.ID, "error", err)
			continue
		}
		if err := p.Activate(now); err != nil {
			logger.Error("fixture activation failed", "plot_id", fx.ID, "error", err)
			continue
		}
		if err := a.plots.Save(ctx, p); err != nil {
			logger.Error("cannot store fixture plot", "plot_id", fx.ID, "error", err)
			continue
		}
		logger.Info("plot fixture imported", "plot_id", p.ID)
	}
	return nil
}

func (a *application) loadUserFixtures(path string, logger *slog.Logger) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Info("user fixtures file not found, skipping", "path", path)
			return nil
		}
		return fmt.Errorf("read fixtures: %w", err)
	}

	var fixtures []userFixture
	if err := json.Unmarshal(data, &fixtures); err != nil {
		return fmt.Errorf("decode fixtures: %w", err)
	}
	for _, fx := range fixtures {
		if fx.Token == "" || fx.ID == "" {
			continue
		}
		a.identity.Register(fx.Token, policies.Principal{
			ID:            fx.ID,
			Email:         fx.Email,
			EmailVerified: fx.EmailVerified,
			Roles:         append([]string(nil), fx.Roles...),
		})
		logger.Info("user fixture imported", "user_id", fx.ID)
	}
	return nil
}

type plotFixture struct {
	ID               string         `json:"id"`
	Owner            string         `json:"owner"`
	Title            string         `json:"title"`
	Description      string         `json:"description"`
	Address          fixtureAddress `json:"address"`
	AreaSquareMeters float64        `json:"area_sq_m"`
	SoilType         string         `json:"soil_type"`
	MonthlyRateCents int64          `json:"monthly_rate_cents"`
	Currency         string         `json:"currency"`
	MinLeaseMonths   int            `json:"min_lease_months"`
	InstantBook      bool           `json:"instant_book"`
	AvailableFrom    string         `json:"available_from"`
}

type fixtureAddress struct {
	Line1   string  `json:"line1"`
	City    string  `json:"city"`
	Region  string  `json:"region"`
	Country string  `json:"country"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

type userFixture struct {
	Token         string   `json:"token"`
	ID            string   `json:"id"`
	Email         string   `json:"email"`
	EmailVerified bool     `json:"email_verified"`
	Roles         []string `json:"roles"`
}

func defaultMinLease(v int) int {
	if v < 1 {
		return 1
	}
	return v
}

func parseFixtureTime(value string, fallback time.Time) time.Time {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t
	}
	return fallback
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
