package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/lead-service/internal/api/http"
	"github.com/spec-kit/lead-service/internal/api/http/handlers"
	"github.com/spec-kit/lead-service/internal/config"
	"github.com/spec-kit/lead-service/internal/events"
	"github.com/spec-kit/lead-service/internal/observability"
	"github.com/spec-kit/lead-service/internal/persistence"
	"github.com/spec-kit/lead-service/internal/ratelimit"
	"github.com/spec-kit/lead-service/internal/repository"
	"github.com/spec-kit/lead-service/internal/service"
	"github.com/spec-kit/lead-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	var leadRepo repository.LeadRepository
	var historyRepo repository.LeadHistoryRepository
	if pool := pg.PoolHandle(); pool != nil {
		leadRepo = repository.NewLeadRepository(pool)
		historyRepo = repository.NewLeadHistoryRepository(pool)
	} else {
		logger.Warn("running with in-memory lead store; data will not survive restarts")
		mem := repository.NewMemoryStore()
		leadRepo = mem
		historyRepo = mem.HistoryRepo()
	}

	var counters ratelimit.CounterStore
	if cfg.RateLimit.UseRedis {
		counters = ratelimit.NewRedisStore(redis.Client, "")
	} else {
		mem := ratelimit.NewMemoryStore()
		mem.StartJanitor(ctx, cfg.RateLimit.Window())
		counters = mem
	}
	limiter := ratelimit.New(counters, cfg.RateLimit.MaxPerWindow, cfg.RateLimit.Window())

	dispatcher := events.NewInMemoryDispatcher()
	leadService := service.NewLeadService(service.LeadDependencies{
		LeadRepo:    leadRepo,
		HistoryRepo: historyRepo,
		Dispatcher:  dispatcher,
	})
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	metrics := observability.NewMetrics()

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	healthHandler := handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis)
	leadsHandler := handlers.NewLeadsHandler(leadService)

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:  healthHandler,
		Leads:   leadsHandler,
		Limiter: limiter,
		Logger:  logger,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
