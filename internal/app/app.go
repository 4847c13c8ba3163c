package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"NewsSpider/internal/config"
	"NewsSpider/internal/domain"
	"NewsSpider/internal/infrastructure/extractor"
	"NewsSpider/internal/infrastructure/parser"
	"NewsSpider/internal/infrastructure/scheduler"
	"NewsSpider/internal/infrastructure/storage"
	"NewsSpider/internal/infrastructure/telegram"
	"NewsSpider/internal/keywords"
	"NewsSpider/internal/logging"
	"NewsSpider/internal/ordering"
	"NewsSpider/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg      config.Config
	db       *sql.DB
	store    *storage.LinkStore
	pipeline *usecase.Pipeline
	listings []domain.Listing
	logger   *slog.Logger
}

// New opens the link store and builds the pipeline. The caller owns Close.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}

	db, dialect, err := storage.Open(ctx, cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("open link store: %w", err)
	}
	store := storage.NewLinkStore(db, dialect)

	source := parser.NewStrategySource(
		parser.NewListingScanner(nil),
		ordering.NewRegistry(),
		baseLogger.With("component", "source"),
	)

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Source:    source,
		Store:     store,
		Extractor: extractor.NewReadabilityExtractor(nil),
		Scorer:    keywords.NewRake(),
		Notifier:  telegram.NewNotifier(cfg.Notifications.Telegram),
		Policy:    policyFromConfig(cfg.Policy),
		Logger:    baseLogger.With("component", "pipeline"),
	})

	return &Application{
		cfg:      cfg,
		db:       db,
		store:    store,
		pipeline: pipeline,
		listings: listingsFromConfig(cfg.Spider.URLs),
		logger:   baseLogger,
	}, nil
}

// Init creates the links table; safe to call when it already exists.
func (a *Application) Init(ctx context.Context) error {
	return a.store.EnsureSchema(ctx)
}

// Run initializes the schema and crawls every configured listing once.
func (a *Application) Run(ctx context.Context) error {
	if err := a.Init(ctx); err != nil {
		return err
	}

	summary, err := a.pipeline.Run(ctx, a.listings)
	a.logger.Info("crawl finished",
		"accepted", summary[domain.StateAccepted],
		"duplicates", summary[domain.StateSkippedDuplicate],
		"too_old", summary[domain.StateRejectedOld],
		"too_small", summary[domain.StateRejectedSmall],
		"extraction_failed", summary[domain.StateSkippedExtraction],
		"invalid", summary[domain.StateSkippedInvalid])
	return err
}

// Schedule initializes the schema and crawls on the configured cron expression until
// ctx is cancelled.
func (a *Application) Schedule(ctx context.Context) error {
	if err := a.Init(ctx); err != nil {
		return err
	}

	driver, err := scheduler.NewCronScheduler(a.cfg.Scheduler.CronExpression, a.cfg.Scheduler.Location())
	if err != nil {
		return err
	}

	sched := usecase.NewScheduler(driver, a.pipeline, a.listings, a.logger.With("component", "scheduler"))
	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	a.logger.Info("scheduler started",
		"cron", a.cfg.Scheduler.CronExpression,
		"next", driver.Next(time.Now()).Format("2006-01-02 15:04:05 MST"))

	<-ctx.Done()
	a.logger.Info("scheduler stopping")
	return sched.Stop(context.WithoutCancel(ctx))
}

// History returns the most recently published processed links.
func (a *Application) History(ctx context.Context, limit int) ([]domain.LinkRecord, error) {
	if err := a.Init(ctx); err != nil {
		return nil, err
	}
	return a.store.Recent(ctx, limit)
}

// Close releases the database handle.
func (a *Application) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

func policyFromConfig(cfg config.PolicyConfig) usecase.Policy {
	policy := usecase.DefaultPolicy()
	if cfg.MaxAge > 0 {
		policy.MaxAge = cfg.MaxAge
	}
	if cfg.MinTextLength > 0 {
		policy.MinTextLength = cfg.MinTextLength
	}
	if cfg.MinKeywordScore > 0 {
		policy.MinKeywordScore = cfg.MinKeywordScore
	}
	if cfg.MinKeywordLength > 0 {
		policy.MinKeywordLength = cfg.MinKeywordLength
	}
	return policy
}

func listingsFromConfig(cfg []config.ListingConfig) []domain.Listing {
	listings := make([]domain.Listing, 0, len(cfg))
	for _, l := range cfg {
		listings = append(listings, domain.Listing{URL: l.URL, Ordering: l.Ordering})
	}
	return listings
}
