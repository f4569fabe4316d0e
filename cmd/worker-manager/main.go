// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	awsclient "valyntra-workers/internal/common/aws"
	"valyntra-workers/internal/common/camunda"
	"valyntra-workers/internal/common/config"
	"valyntra-workers/internal/common/database"
	"valyntra-workers/internal/common/logger"
	"valyntra-workers/internal/common/observability"
	"valyntra-workers/internal/lock"
	"valyntra-workers/internal/matching"
	"valyntra-workers/internal/notify"
	"valyntra-workers/internal/opportunity"
	"valyntra-workers/internal/pipeline"
	"valyntra-workers/internal/scoring"
	"valyntra-workers/internal/search"
	"valyntra-workers/internal/store"

	// Assessment Workers (5)
	crs "valyntra-workers/internal/workers/assessment/calculate-readiness-score"
	gop "valyntra-workers/internal/workers/assessment/generate-opportunities"
	mp "valyntra-workers/internal/workers/assessment/match-providers"
	rap "valyntra-workers/internal/workers/assessment/run-assessment-pipeline"
	va "valyntra-workers/internal/workers/assessment/validate-assessment"

	// Dashboard Workers (1)
	bd "valyntra-workers/internal/workers/dashboard/build-dashboard"

	// Provider Workers (2)
	dp "valyntra-workers/internal/workers/providers/deactivate-provider"
	up "valyntra-workers/internal/workers/providers/upsert-provider"
)

const serviceName = "worker-manager"

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
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

// backends holds the connections the pipeline was wired against so the
// readiness probe and shutdown can reach them.
type backends struct {
	pg    *database.PostgresClient
	redis *database.RedisClient
	es    *database.ElasticsearchClient
}

func (b *backends) ping(ctx context.Context) error {
	if b.pg != nil {
		if err := b.pg.Ping(ctx); err != nil {
			return err
		}
	}
	if b.redis != nil {
		if err := b.redis.Ping(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (b *backends) close(log *zap.Logger) {
	if b.pg != nil {
		if err := b.pg.Close(); err != nil {
			log.Error("error closing postgres", zap.Error(err))
		}
	}
	if b.redis != nil {
		if err := b.redis.Close(); err != nil {
			log.Error("error closing redis", zap.Error(err))
		}
	}
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

	zapLog.Info("Starting worker manager...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	obs, err := observability.New(serviceName, nil)
	if err != nil {
		zapLog.Fatal("observability init failed", zap.Error(err))
	}
	shutdownTracing, err := observability.InitTracing(serviceName, cfg.Tracing)
	if err != nil {
		zapLog.Fatal("tracing init failed", zap.Error(err))
	}

	// --- Init Zeebe Client with retry ---
	var zeebe *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebe, err = camunda.NewClientWithConfig(camunda.ConfigFrom(cfg.Camunda))
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	deps := &backends{}
	defer deps.close(zapLog)

	comps, err := buildPipeline(ctx, cfg, deps, obs, zapLog, log)
	if err != nil {
		zapLog.Fatal("pipeline wiring failed", zap.Error(err))
	}

	workers, err := startWorkers(cfg, zeebe, comps, obs, zapLog, log)
	if err != nil {
		zapLog.Fatal("worker registration failed", zap.Error(err))
	}
	zapLog.Info("workers registered", zap.Int("count", len(workers)))

	server := &http.Server{
		Addr:              cfg.App.HTTPAddress,
		Handler:           newHTTPHandler(zeebe, deps),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		zapLog.Info("Health/Metrics server listening", zap.String("address", server.Addr))
		if err := server.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("health/metrics server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		zapLog.Info("Shutdown signal received, stopping workers...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		for _, w := range workers {
			w.Stop()
		}
		if err := server.Shutdown(shutdownCtx); err != nil {
			zapLog.Error("Error stopping health/metrics server", zap.Error(err))
		}
		if err := zeebe.Close(); err != nil {
			zapLog.Error("Error closing Zeebe client", zap.Error(err))
		}
		if err := shutdownTracing(shutdownCtx); err != nil {
			zapLog.Error("Error flushing traces", zap.Error(err))
		}
		if err := obs.Shutdown(shutdownCtx); err != nil {
			zapLog.Error("Error stopping meter provider", zap.Error(err))
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		zapLog.Error("worker manager stopped with error", zap.Error(err))
		return
	}
	zapLog.Info("Worker manager stopped gracefully")
}

// components are shared by the orchestrator and the stage workers.
type components struct {
	calculator   *scoring.Calculator
	generator    *opportunity.Generator
	engine       *matching.Engine
	providers    pipeline.ProviderSource
	orchestrator *pipeline.Orchestrator
	sinkCount    int

	providerAdmin store.ProviderAdmin
	// nil when provider reads are not cached
	providerCache store.ProviderCache
}

func buildPipeline(
	ctx context.Context,
	cfg *config.Config,
	deps *backends,
	obs *observability.Observability,
	zapLog *zap.Logger,
	log logger.Logger,
) (*components, error) {
	weights, err := scoring.WeightsFromConfig(cfg.Scoring.Weights)
	if err != nil {
		return nil, err
	}

	catalog := opportunity.DefaultCatalog()
	if cfg.Pipeline.CatalogPath != "" {
		catalog, err = opportunity.LoadCatalog(cfg.Pipeline.CatalogPath)
		if err != nil {
			return nil, err
		}
		zapLog.Info("use-case catalog loaded", zap.String("path", cfg.Pipeline.CatalogPath))
	}

	var (
		pipelineStore pipeline.Store
		providers     pipeline.ProviderSource
		admin         store.ProviderAdmin
		cache         store.ProviderCache
	)
	switch cfg.Pipeline.StoreBackend {
	case "postgres":
		err = retryWithBackoff(func() error {
			var err error
			deps.pg, err = database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			return deps.pg.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
		if err != nil {
			return nil, err
		}
		zapLog.Info("PostgreSQL connected successfully")
		pipelineStore = store.NewPostgresStore(deps.pg.DB)
		pgProviders := store.NewPostgresProviderSource(deps.pg.DB)
		providers, admin = pgProviders, pgProviders
	default:
		zapLog.Warn("using in-memory store; results are lost on restart")
		mem := store.NewMemoryStore()
		pipelineStore, providers, admin = mem, mem, mem
	}

	needRedis := cfg.Pipeline.LockBackend == "redis" || cfg.Pipeline.ProviderCacheTTL > 0
	if needRedis {
		err = retryWithBackoff(func() error {
			var err error
			deps.redis, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			return deps.redis.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			return nil, err
		}
		zapLog.Info("Redis connected successfully")
	}

	var locker lock.Locker = lock.NewKeyedMutex()
	if cfg.Pipeline.LockBackend == "redis" {
		locker = lock.NewRedisLocker(deps.redis.Client,
			config.GetDuration(cfg.Pipeline.LockTTL),
			config.GetDuration(cfg.Pipeline.LockWait),
		)
	}

	if ttl := config.GetDuration(cfg.Pipeline.ProviderCacheTTL); ttl > 0 {
		cached := store.NewCachedProviderSource(providers, deps.redis.Client, ttl, log)
		providers, cache = cached, cached
	}

	sinks, err := buildSinks(ctx, cfg, deps, zapLog)
	if err != nil {
		return nil, err
	}

	comps := &components{
		calculator: scoring.NewCalculator(weights),
		generator:  opportunity.NewGenerator(catalog, cfg.Pipeline.MaxOpportunities),
		engine:     matching.NewEngine(cfg.Pipeline.MaxMatches, matching.NewRandomSource(cfg.Pipeline.RandomSeed)),
		providers:  providers,
		sinkCount:  len(sinks),

		providerAdmin: admin,
		providerCache: cache,
	}

	comps.orchestrator, err = pipeline.New(pipeline.Dependencies{
		Calculator: comps.calculator,
		Generator:  comps.generator,
		Engine:     comps.engine,
		Store:      pipelineStore,
		Providers:  providers,
		Locker:     locker,
		Logger:     log,
	},
		pipeline.WithSinks(sinks...),
		pipeline.WithLockWait(config.GetDuration(cfg.Pipeline.LockWait)),
		pipeline.WithSinkTimeout(config.GetDuration(cfg.Pipeline.SinkTimeout)),
		pipeline.WithObservability(obs),
	)
	if err != nil {
		return nil, err
	}
	return comps, nil
}

func buildSinks(ctx context.Context, cfg *config.Config, deps *backends, zapLog *zap.Logger) ([]pipeline.Sink, error) {
	var sinks []pipeline.Sink

	if cfg.Search.Enabled {
		err := retryWithBackoff(func() error {
			var err error
			deps.es, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return deps.es.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
		if err != nil {
			return nil, err
		}
		zapLog.Info("Elasticsearch connected successfully")
		if err := deps.es.EnsureIndex(ctx, cfg.Search.DashboardIndex, search.DashboardMapping); err != nil {
			return nil, err
		}
		sinks = append(sinks, search.NewDashboardIndexer(deps.es.Client, cfg.Search.DashboardIndex))
	}

	events, email := cfg.Notifications.Events, cfg.Notifications.Email
	if !events.Enabled && !email.Enabled {
		return sinks, nil
	}

	awsCfg, err := awsclient.LoadConfig(ctx, cfg.Notifications.AWS.Region)
	if err != nil {
		return nil, err
	}
	if events.Enabled {
		sinks = append(sinks, notify.NewEventPublisher(awsclient.NewSNSClient(awsCfg), events.TopicARN))
	}
	if email.Enabled {
		sinks = append(sinks, notify.NewSummaryMailer(awsclient.NewSESClient(awsCfg), email.FromEmail, email.ToEmail))
	}
	return sinks, nil
}

func startWorkers(
	cfg *config.Config,
	zeebe *camunda.Client,
	comps *components,
	obs *observability.Observability,
	zapLog *zap.Logger,
	log logger.Logger,
) ([]*camunda.Worker, error) {
	var workers []*camunda.Worker
	start := func(taskType string, handler camunda.HandlerFunc) {
		if !config.IsWorkerEnabled(cfg, taskType) {
			zapLog.Info("worker disabled", zap.String("taskType", taskType))
			return
		}
		wcfg := config.GetWorkerConfig(cfg, taskType)
		workers = append(workers, camunda.StartWorker(zeebe.GetClient(), taskType, wcfg, handler, obs, zapLog))
	}

	// --- 1. Assessment Workers (5) ---
	start(va.TaskType, va.NewHandler(
		va.ConfigFrom(config.GetWorkerConfig(cfg, va.TaskType)), log,
	).Handle)

	start(crs.TaskType, crs.NewHandler(
		crs.ConfigFrom(config.GetWorkerConfig(cfg, crs.TaskType)), comps.calculator, log,
	).Handle)

	start(gop.TaskType, gop.NewHandler(
		gop.ConfigFrom(config.GetWorkerConfig(cfg, gop.TaskType)), comps.generator, log,
	).Handle)

	start(mp.TaskType, mp.NewHandler(
		mp.ConfigFrom(config.GetWorkerConfig(cfg, mp.TaskType)), comps.engine, comps.providers, log,
	).Handle)

	rapCfg, err := rap.ConfigFrom(config.GetWorkerConfig(cfg, rap.TaskType), cfg.Pipeline, comps.sinkCount)
	if err != nil {
		return nil, err
	}
	start(rap.TaskType, rap.NewHandler(rapCfg, comps.orchestrator, log).Handle)

	// --- 2. Dashboard Workers (1) ---
	start(bd.TaskType, bd.NewHandler(
		bd.ConfigFrom(config.GetWorkerConfig(cfg, bd.TaskType)), comps.orchestrator, log,
	).Handle)

	// --- 3. Provider Workers (2) ---
	start(up.TaskType, up.NewHandler(
		up.ConfigFrom(config.GetWorkerConfig(cfg, up.TaskType)), comps.providerAdmin, comps.providerCache, log,
	).Handle)

	start(dp.TaskType, dp.NewHandler(
		dp.ConfigFrom(config.GetWorkerConfig(cfg, dp.TaskType)), comps.providerAdmin, comps.providerCache, log,
	).Handle)

	return workers, nil
}

func newHTTPHandler(zeebe *camunda.Client, deps *backends) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, "healthy", nil)
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		if err := zeebe.HealthCheck(ctx); err != nil {
			writeStatus(w, http.StatusServiceUnavailable, "not ready", err)
			return
		}
		if err := deps.ping(ctx); err != nil {
			writeStatus(w, http.StatusServiceUnavailable, "not ready", err)
			return
		}
		writeStatus(w, http.StatusOK, "ready", nil)
	})
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/debug/pprof/", http.DefaultServeMux)
	return mux
}

func writeStatus(w http.ResponseWriter, code int, status string, err error) {
	body := map[string]string{
		"status": status,
		"time":   time.Now().Format(time.RFC3339),
	}
	if err != nil {
		body["error"] = err.Error()
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
