package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"policytrack/docs"
	"policytrack/internal/config"
	"policytrack/internal/database"
	"policytrack/internal/database/migration"
	"policytrack/internal/diff"
	"policytrack/internal/extract"
	handlers "policytrack/internal/http/handler"
	"policytrack/internal/http/middleware"
	"policytrack/internal/logger"
	"policytrack/internal/match"
	"policytrack/internal/metrics"
	"policytrack/internal/otel"
	"policytrack/internal/period"
	"policytrack/internal/repository"
	"policytrack/internal/repository/memory"
	"policytrack/internal/repository/postgres"
	"policytrack/internal/search"
	"policytrack/internal/service"
	"policytrack/internal/session"
	"policytrack/internal/storage"
	"policytrack/internal/summarize"
)

// @title Policy Track API
// @version 1.0
// @description Versioned policy documents with review, change comparison, upload matching and period digests.
// @BasePath /
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()

	log := logger.New(logger.Config{
		Level:    cfg.Log.Level,
		Pretty:   cfg.Log.Pretty,
		Location: cfg.Location(),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize tracing")
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			log.Warn().Err(err).Msg("tracing shutdown")
		}
	}()

	// Persistence: Postgres + MinIO in production, in-process stores for local runs
	var (
		db      handlers.Pinger
		repo    repository.DocumentRepository
		objects storage.Storage
	)
	switch cfg.StorageDriver {
	case "memory":
		log.Warn().Msg("using in-memory storage; data is lost on restart")
		repo = memory.NewDocumentMemory()
		objects = storage.NewMemory()
	default:
		sqlDB, err := database.NewPostgres(ctx, cfg.Database, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer sqlDB.Close()

		if err := migration.EnsureMigrated(ctx, sqlDB, log); err != nil {
			log.Fatal().Err(err).Msg("failed to migrate database")
		}

		objects, err = storage.NewMinIO(cfg.MinIO)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize object storage")
		}
		db = sqlDB
		repo = postgres.NewDocumentPostgres(sqlDB)
	}

	sessions := newSessionStore(ctx, cfg, log)

	var indexer search.Indexer
	if cfg.Meili.URL != "" {
		idx := search.NewMeili(cfg.Meili.URL, cfg.Meili.APIKey, cfg.Meili.Index, logger.Component(log, "search"))
		if err := idx.Configure(); err != nil {
			// Publication keeps working; index updates are reported per approval
			log.Warn().Err(err).Msg("search index not configured")
		}
		indexer = idx
	}

	var summarizer summarize.Summarizer
	if cfg.Summarizer.BaseURL != "" {
		summarizer = summarize.NewClient(cfg.Summarizer.BaseURL, cfg.Summarizer.APIKey, cfg.Summarizer.Model, cfg.Summarizer.Timeout)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	docSvc := service.NewDocumentService(service.Deps{
		Repo:  repo,
		Store: objects,
		Extractor: extract.NewStorageExtractor(objects, extract.Options{
			TikaURL:  cfg.Extract.TikaURL,
			Timeout:  cfg.Extract.Timeout,
			MaxBytes: cfg.Extract.MaxBytes,
		}),
		Summarizer: summarizer,
		Indexer:    indexer,
		Sessions:   sessions,
		Diff: diff.New(diff.Options{
			MinChars:     cfg.Diff.MinChars,
			MaxChanges:   cfg.Diff.MaxChanges,
			ExcerptChars: cfg.Diff.ExcerptChars,
			TitleChars:   cfg.Diff.TitleChars,
			Timeout:      cfg.Diff.Timeout,
		}),
		Matcher:        match.NewScorer(match.Config(cfg.Match)),
		Metrics:        m,
		Log:            logger.Component(log, "lifecycle"),
		ExtractTimeout: cfg.Extract.Timeout,
		StagingTTL:     cfg.Session.StagingTTL,
	})
	go service.RunStagingSweep(ctx, docSvc, cfg.Session.SweepInterval, logger.Component(log, "staging"))

	digestSvc := service.NewDigestService(repo, period.NewCalculator(cfg.Digest.RetentionMonths), nil, m, logger.Component(log, "digest"))

	prom, err := middleware.NewPrometheusMiddleware(registry)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to register http metrics")
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
		BodyLimit:    int(cfg.Extract.MaxBytes) + 1<<20,
	})

	// Register global middleware
	app.Use(otelfiber.Middleware())
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	app.Use(prom.Handler())
	app.Use(middleware.Logger(logger.Component(log, "http"), cfg.Location()))
	app.Use(middleware.Identity(sessions, cfg.Session.CookieName, log))

	handlers.RegisterRoutes(app, db, handlers.Services{
		Documents: docSvc,
		Digests:   digestSvc,
		Sessions:  sessions,
		Session: handlers.SessionOptions{
			CookieName: cfg.Session.CookieName,
			TTL:        cfg.Session.TTL,
			Secure:     strings.HasPrefix(cfg.AppHost, "https://"),
		},
	})

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	go func() {
		<-ctx.Done()
		log.Info().Msg("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(sctx); err != nil {
			log.Error().Err(err).Msg("server shutdown")
		}
	}()

	addr := ":" + cfg.Port
	log.Info().Str("addr", addr).Str("storage", cfg.StorageDriver).Msg("listening")
	if err := app.Listen(addr); err != nil {
		log.Fatal().Err(err).Msg("failed to start server")
	}
}

// newSessionStore picks Redis when configured. The in-memory store gets a sweeper
// bound to the server lifetime.
func newSessionStore(ctx context.Context, cfg *config.AppConfig, log zerolog.Logger) session.Store {
	if cfg.Redis.URL != "" {
		rs, err := session.NewRedisStore(cfg.Redis.URL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		return rs
	}
	ms := session.NewMemoryStore()
	go ms.Run(ctx, cfg.Session.SweepInterval, logger.Component(log, "session"))
	return ms
}
