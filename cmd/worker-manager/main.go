// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"bme-workers/internal/common/camunda"
	"bme-workers/internal/common/config"
	"bme-workers/internal/common/database"
	"bme-workers/internal/common/logger"
	"bme-workers/internal/common/observability"
	"bme-workers/internal/domain"
	"bme-workers/internal/intent/actions"
	"bme-workers/internal/intent/diagnostics"
	"bme-workers/internal/intent/executor"
	"bme-workers/internal/intent/fallback"
	"bme-workers/internal/intent/llm"
	"bme-workers/internal/intent/nutrition"
	"bme-workers/internal/intent/parser"
	"bme-workers/internal/intent/tools"

	ea "bme-workers/internal/workers/voice/execute-actions"
	pt "bme-workers/internal/workers/voice/parse-transcript"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log logger.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName), map[string]interface{}{
				"error":       err.Error(),
				"attempt":     i + 1,
				"maxRetries":  maxRetries,
				"nextRetryIn": delay.String(),
			})
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New("info", "console", "stderr")
		fallbackLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	log.Info("Starting worker manager...", map[string]interface{}{
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
	})

	obs := observability.New(cfg.Observability.ServiceName, cfg.Observability.JaegerEndpoint, log)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- PostgreSQL: nutrition catalog, domain records, error log ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, log, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	log.Info("PostgreSQL connected successfully", nil)

	// --- Redis (optional): AI nutrition lookup cache ---
	var redis *database.RedisClient
	if cfg.Database.Redis.Address != "" {
		redis = database.NewRedis(cfg.Database.Redis)
		if err := redis.Ping(ctx); err != nil {
			log.Warn("Redis unavailable, lookups will bypass the cache until it recovers", map[string]interface{}{"error": err.Error()})
		}
		defer redis.Close()
	}

	// --- Elasticsearch (optional): diagnostics index ---
	writers := []diagnostics.Writer{diagnostics.NewPostgresWriter(pg.DB)}
	if cfg.Database.Elasticsearch.Enabled() {
		esClient, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err == nil {
			err = esClient.Ping(ctx)
		}
		if err != nil {
			log.Warn("Elasticsearch unavailable, diagnostics go to PostgreSQL only", map[string]interface{}{"error": err.Error()})
		} else {
			writers = append(writers, diagnostics.NewElasticsearchWriter(esClient.Client, cfg.Database.Elasticsearch.DiagnosticsIndex))
		}
	}
	sink := diagnostics.NewDispatcher(log, config.GetDuration(cfg.Pipeline.DiagnosticsTimeout), writers...)

	// --- Gemini ---
	var (
		source parser.DirectiveSource
		ai     nutrition.AILookup
	)
	if cfg.APIs.GenAI.APIKey != "" {
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  cfg.APIs.GenAI.APIKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			zapLog.Fatal("failed to create GenAI client", zap.Error(err))
		}
		source = llm.NewGeminiSource(client.Models, cfg.APIs.GenAI.Model, config.GetDuration(cfg.APIs.GenAI.Timeout))

		if cfg.Pipeline.AINutritionLookup {
			ai = nutrition.NewGeminiLookup(client.Models, cfg.APIs.GenAI.NutritionModel)
			if redis != nil {
				ttl := time.Duration(cfg.Pipeline.NutritionCacheTTL) * time.Second
				ai = nutrition.NewCachedLookup(ai, redis.Client, ttl, log)
			}
		}
	} else {
		log.Warn("No GenAI API key configured, every transcript goes through the fallback classifier", nil)
	}

	// --- Pipeline ---
	cascade := nutrition.NewCascade(nutrition.NewPostgresCatalog(pg.DB), ai, log)
	builder := actions.NewBuilder(actions.BuilderConfig{
		FoodDescriptionMaxChars: cfg.Pipeline.FoodDescriptionMaxChars,
	}, cascade, log)
	classifier := fallback.New(cfg.Pipeline.FallbackMaxChars, sink, log)
	transcriptParser := parser.New(parser.Config{
		BuildConcurrency: cfg.Pipeline.BuildConcurrency,
	}, source, tools.NewValidator(log), builder, classifier, log)
	batchExecutor := executor.New(domain.NewPostgresStore(pg.DB).Services(), log)

	// --- Zeebe ---
	zeebe, err := camunda.NewClientWithConfig(ctx, camunda.NewClientConfig(cfg.Camunda), log)
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	log.Info("Zeebe client connected successfully", nil)

	var workers []*camunda.CamundaWorker

	if config.IsWorkerEnabled(cfg, pt.TaskType) {
		wcfg := pt.NewConfig(cfg)
		if err := wcfg.Validate(); err != nil {
			zapLog.Fatal("invalid parse-transcript config", zap.Error(err))
		}
		handler := pt.NewHandler(wcfg, transcriptParser, obs, log)
		workers = append(workers, camunda.NewWorker(zeebe.GetClient(), camunda.WorkerOptions{
			TaskType:      pt.TaskType,
			MaxJobsActive: wcfg.MaxJobsActive,
			Timeout:       wcfg.Timeout,
		}, handler, log))
	}

	if config.IsWorkerEnabled(cfg, ea.TaskType) {
		wcfg := ea.NewConfig(cfg)
		if err := wcfg.Validate(); err != nil {
			zapLog.Fatal("invalid execute-actions config", zap.Error(err))
		}
		handler := ea.NewHandler(wcfg, batchExecutor, obs, log)
		workers = append(workers, camunda.NewWorker(zeebe.GetClient(), camunda.WorkerOptions{
			TaskType:      ea.TaskType,
			MaxJobsActive: wcfg.MaxJobsActive,
			Timeout:       wcfg.Timeout,
		}, handler, log))
	}
	log.Info("Workers registered", map[string]interface{}{"count": len(workers)})

	// --- Health & Metrics Server ---
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		checkCtx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		checks := map[string]string{"postgres": "ok", "zeebe": "ok"}
		status := http.StatusOK
		if err := pg.Ping(checkCtx); err != nil {
			checks["postgres"] = err.Error()
			status = http.StatusServiceUnavailable
		}
		if err := zeebe.HealthCheck(checkCtx); err != nil {
			checks["zeebe"] = err.Error()
			status = http.StatusServiceUnavailable
		}
		writeStatus(w, status, checks)
	})
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              cfg.Observability.MetricsAddress,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info("Health/Metrics server listening", map[string]interface{}{"address": server.Addr})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Health/Metrics server failed", map[string]interface{}{"error": err.Error()})
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Info("Shutdown signal received, stopping workers...", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, w := range workers {
		w.Stop()
	}
	sink.Wait()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Error stopping health server", map[string]interface{}{"error": err.Error()})
	}
	if err := zeebe.Close(); err != nil {
		log.Error("Error closing Zeebe client", map[string]interface{}{"error": err.Error()})
	}

	log.Info("Worker manager stopped", nil)
}

func writeStatus(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
