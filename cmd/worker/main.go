package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/vitrine-erp/vitrine/internal/app"
	"github.com/vitrine-erp/vitrine/internal/catalog"
	"github.com/vitrine-erp/vitrine/internal/integration"
	"github.com/vitrine-erp/vitrine/internal/observability"
	"github.com/vitrine-erp/vitrine/internal/orders"
	"github.com/vitrine-erp/vitrine/internal/platform/cache"
	"github.com/vitrine-erp/vitrine/internal/platform/db"
	"github.com/vitrine-erp/vitrine/internal/procurement"
	"github.com/vitrine-erp/vitrine/internal/shared"
	"github.com/vitrine-erp/vitrine/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	policy, err := cfg.Generation()
	if err != nil {
		logger.Error("generation policy", slog.Any("error", err))
		os.Exit(1)
	}

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	auditLogger := shared.NewAuditLogger(pool)
	approvalRecorder := shared.NewApprovalRecorder(pool, logger)
	idempotencyStore := shared.NewIdempotencyStore(pool)

	metrics := observability.NewMetrics()

	catalogRepo := catalog.NewRepository(pool)
	catalogCache := catalog.NewCache(redisClient, cfg.RoutingRulesTTL)
	catalogService := catalog.NewService(catalogRepo, catalogCache, logger)

	ordersRepo := orders.NewRepository(pool)
	hooks := integration.NewHooks(redisClient, logger)

	procurementRepo := procurement.NewRepository(pool)
	procurementService := procurement.NewService(
		procurement.Policy(policy),
		procurementRepo,
		ordersRepo,
		catalogService,
		approvalRecorder,
		auditLogger,
		idempotencyStore,
		hooks,
		metrics,
		logger,
	)

	cleanupTask, err := jobs.NewIdempotencyCleanupTask(72)
	if err != nil {
		logger.Error("build cleanup task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskAutoPOGenerate, Handler: jobs.NewAutoPOGenerateHandler(procurementService, logger)},
			{Type: jobs.TaskIdempotencyCleanup, Handler: jobs.NewIdempotencyCleanupHandler(idempotencyStore, logger)},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "45 2 * * *", Task: cleanupTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
