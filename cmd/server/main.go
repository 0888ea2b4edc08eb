package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"hackernews/internal/config"
	"hackernews/internal/database"
	"hackernews/internal/database/migration"
	"hackernews/internal/events"
	"hackernews/internal/gql"
	handlers "hackernews/internal/http/handler"
	"hackernews/internal/http/middleware"
	"hackernews/internal/logger"
	"hackernews/internal/otel"
	"hackernews/internal/repository/postgres"
	"hackernews/internal/search"
	"hackernews/internal/service"
	"hackernews/internal/storage"
	"hackernews/internal/web"
)

func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	log := logger.New("hackernews", cfg.LogLevel)

	if err := run(cfg, log); err != nil {
		log.Error("server_exit", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(cfg *config.AppConfig, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, log)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(sctx)
	}()

	// Initialize PostgreSQL connection (with pooling via database/sql)
	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, log, cfg.Database.Host); err != nil {
		return err
	}

	// Event stream is optional; without brokers nothing is published
	var pub events.Publisher = events.NopPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		kp := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer kp.Close()
		pub = kp
	}

	// Front page archive is optional; without an endpoint /front shows a notice
	var store storage.Storage
	if cfg.MinIO.Endpoint != "" {
		store, err = storage.NewMinIO(ctx, cfg.MinIO)
		if err != nil {
			return err
		}
	}

	var searcher service.Searcher
	if cfg.Search.Addr != "" {
		es, err := search.New(cfg.Search.Addr, cfg.Search.Index, log)
		if err != nil {
			return err
		}
		searcher = es
	}

	// Initialize repositories and services
	itemRepo := postgres.NewNewsItemPostgres(db)
	items := service.NewNewsItemService(itemRepo, pub, log)
	comments := service.NewCommentService(postgres.NewCommentPostgres(db), itemRepo)
	users := service.NewUserService(postgres.NewUserPostgres(db))
	sessions := service.NewSessionService(postgres.NewSessionPostgres(db), cfg.SessionTTL)
	front := service.NewFrontPageService(items, store)

	schema, err := gql.NewSchema(gql.NewResolver(items, comments, users))
	if err != nil {
		return err
	}
	view, err := web.NewRenderer()
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	prom, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		return err
	}

	app := fiber.New(fiber.Config{
		ErrorHandler:          handlers.ErrorHandler(view),
		DisableStartupMessage: true,
	})

	// Register global middleware
	app.Use(otelfiber.Middleware())
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(log))
	app.Use(prom.Handler())
	app.Use(middleware.Session(sessions, log))

	// Register HTTP routes with injected services
	handlers.RegisterRoutes(app, handlers.Deps{
		DB:            db,
		Schema:        schema,
		Gatherer:      reg,
		Items:         items,
		Comments:      comments,
		Users:         users,
		Sessions:      sessions,
		Front:         front,
		Search:        service.NewSearchService(searcher),
		View:          view,
		SecureCookies: cfg.SecureCookies,
	})

	if store != nil {
		go service.RunPeriodically(ctx, cfg.FrontSnapshotInterval, log, "front_snapshot", func(ctx context.Context) error {
			_, err := front.Snapshot(ctx)
			return err
		})
	}
	go service.RunPeriodically(ctx, time.Hour, log, "session_purge", func(ctx context.Context) error {
		n, err := sessions.PurgeExpired(ctx)
		if err == nil && n > 0 {
			log.Info("sessions_purged", slog.Int64("count", n))
		}
		return err
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info("server_listen", slog.String("addr", ":"+cfg.Port), slog.String("app_host", cfg.AppHost))
		errCh <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("server_shutdown")
	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(sctx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}
