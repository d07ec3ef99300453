// cmd/appraisal-server/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"

	"appraisal-engine/internal/api"
	"appraisal-engine/internal/collab"
	"appraisal-engine/internal/common/config"
	"appraisal-engine/internal/common/database"
	"appraisal-engine/internal/common/logger"
	"appraisal-engine/internal/common/notify"
	"appraisal-engine/internal/common/observability"
	"appraisal-engine/internal/engine"
	"appraisal-engine/internal/queue"
	"appraisal-engine/internal/service"
	"appraisal-engine/internal/store"
	"appraisal-engine/pkg/ratebook"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting appraisal server...",
		zap.String("app", cfg.App.Name),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	shutdownTracing, err := observability.InitTracing(cfg.App.Name, cfg.Tracing.JaegerEndpoint)
	if err != nil {
		zapLog.Fatal("tracing init failed", zap.Error(err))
	}

	ctx := context.Background()

	// --- Load the ratebook ---
	rb := ratebook.Default()
	if cfg.Engine.RatebookPath != "" {
		rb, err = ratebook.Load(cfg.Engine.RatebookPath)
		if err != nil {
			zapLog.Fatal("ratebook load failed", zap.Error(err), zap.String("path", cfg.Engine.RatebookPath))
		}
		zapLog.Info("Ratebook loaded from file", zap.String("path", cfg.Engine.RatebookPath))
	}

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Run migrations ---
	m, err := migrate.New("file://"+cfg.Database.Postgres.MigrationsPath, cfg.Database.Postgres.GetMigrateURL())
	if err != nil {
		zapLog.Fatal("migrate init failed", zap.Error(err))
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		zapLog.Fatal("migrations failed", zap.Error(err))
	}
	zapLog.Info("Database migrations applied")

	// --- Init Redis with retry ---
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	// --- Init Elasticsearch with retry (optional) ---
	var esClient *database.ElasticsearchClient
	if cfg.Database.Elasticsearch.Enabled {
		err = retryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return esClient.Ping()
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")

		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		zapLog.Info("Elasticsearch connected successfully")
	}

	// --- Build the engine and service ---
	eng, err := engine.New(rb, log)
	if err != nil {
		zapLog.Fatal("engine init failed", zap.Error(err))
	}

	evaluationStore := store.NewEvaluationStore(pg, log)
	evaluator := service.NewEvaluatorService(eng, evaluationStore, log).WithObservability(obs)

	if cfg.Engine.ResultCacheTTL > 0 {
		ttl := time.Duration(cfg.Engine.ResultCacheTTL) * time.Second
		evaluator.WithCache(store.NewResultCache(redis, ttl, log))
	}

	if esClient != nil {
		evaluator.WithIndexer(store.NewEvaluationIndexer(esClient, cfg.Database.Elasticsearch.Index, log))
	}

	// --- Outbound collaborators ---
	notifyCfg := service.NotifyConfig{}
	if cfg.Integrations.AWS.SNS.Enabled {
		snsClient, err := notify.NewSNSClient(ctx, cfg.Integrations.AWS.Region)
		if err != nil {
			zapLog.Fatal("sns client failed", zap.Error(err))
		}
		notifyCfg.Events = snsClient
		notifyCfg.TopicARN = cfg.Integrations.AWS.SNS.TopicARN
	}
	if cfg.Integrations.AWS.SES.Enabled {
		sesClient, err := notify.NewSESClient(ctx, cfg.Integrations.AWS.Region)
		if err != nil {
			zapLog.Fatal("ses client failed", zap.Error(err))
		}
		notifyCfg.Email = sesClient
		notifyCfg.FromEmail = cfg.Integrations.AWS.SES.FromEmail
		notifyCfg.ToEmail = cfg.Integrations.AWS.SES.ToEmail
	}
	evaluator.WithNotifications(notifyCfg)

	if cfg.Integrations.ReportWebhook.URL != "" {
		evaluator.WithWebhook(collab.NewWebhookPublisher(
			cfg.Integrations.ReportWebhook.URL,
			config.GetDuration(cfg.Integrations.ReportWebhook.Timeout),
			log,
		))
	}

	// --- Async queue workers ---
	var evalQueue *queue.Queue
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	var pool *queue.WorkerPool
	if cfg.Queue.Enabled {
		evalQueue = queue.NewQueue(redis, cfg.Queue.Key, log)
		pool = queue.NewWorkerPool(
			evalQueue, evaluator,
			cfg.Queue.Workers,
			config.GetDuration(cfg.Queue.PollTimeout),
			cfg.Queue.MaxRetries,
			log,
		)
		pool.Start(workerCtx)
	}

	// --- HTTP server ---
	router, err := api.NewRouter(api.RouterDeps{
		Evaluator: evaluator,
		Queue:     evalQueue,
		JWTSecret: cfg.Auth.JWTSecret,
		ReadyCheck: func(ctx context.Context) error {
			if err := pg.Ping(ctx); err != nil {
				return err
			}
			return redis.Ping(ctx)
		},
		Logger: log,
	})
	if err != nil {
		zapLog.Fatal("router init failed", zap.Error(err))
	}

	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.String("address", cfg.Server.Address))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, draining...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("HTTP server shutdown failed", zap.Error(err))
	}

	stopWorkers()
	if pool != nil {
		pool.Wait()
	}

	if err := shutdownTracing(shutdownCtx); err != nil {
		zapLog.Error("tracer shutdown failed", zap.Error(err))
	}

	zapLog.Info("Appraisal server stopped gracefully")
}
