// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"assistant-workers/internal/common/aws"
	"assistant-workers/internal/common/camunda"
	"assistant-workers/internal/common/config"
	"assistant-workers/internal/common/database"
	"assistant-workers/internal/common/logger"
	"assistant-workers/internal/common/observability"

	ac "assistant-workers/internal/workers/assistant/analyze-csv"
	au "assistant-workers/internal/workers/assistant/analyze-url"
	da "assistant-workers/internal/workers/assistant/detect-action"
	ea "assistant-workers/internal/workers/assistant/execute-action"
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
			delay *= 2
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

	zapLog.Info("Starting worker manager...")

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init Zeebe Client with retry ---
	var zeebeClient *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebeClient, err = camunda.NewClient(cfg.Camunda.BrokerAddress)
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")

	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

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

	// --- Init Redis with retry ---
	var rdb *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		rdb, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return rdb.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer rdb.Close()
	zapLog.Info("Redis connected successfully")

	// --- Init SES (optional) ---
	var sesClient *aws.SESClient
	if cfg.Integrations.AWS.SES.Enabled {
		sesClient, err = aws.NewSESClient(ctx, cfg.Integrations.AWS.Region)
		if err != nil {
			zapLog.Fatal("ses client failed", zap.Error(err))
		}
		zapLog.Info("SES client initialized")
	}

	// --- Register Workers ---
	var workers []*camunda.CamundaWorker

	if wcfg, ok := cfg.Workers[da.TaskType]; ok && wcfg.Enabled {
		handler := da.NewHandler(
			&da.Config{
				GenAIBaseURL:        cfg.Services.GenAI.BaseURL,
				APIKey:              cfg.Services.GenAI.APIKey,
				Timeout:             time.Duration(cfg.Services.GenAI.Timeout) * time.Millisecond,
				MaxRetries:          cfg.Services.GenAI.MaxRetries,
				EscalationThreshold: 0.8,
			},
			da.DefaultPatterns(),
			log,
		)
		workers = append(workers, startWorker(zeebeClient, da.TaskType, wcfg, handler, zapLog))
	}

	if wcfg, ok := cfg.Workers[ac.TaskType]; ok && wcfg.Enabled {
		handler := ac.NewHandler(
			&ac.Config{
				Timeout:       time.Duration(wcfg.Timeout) * time.Millisecond,
				CacheTTL:      24 * time.Hour,
				MaxSampleRows: 5,
			},
			ac.DefaultKeywords(),
			rdb.GetClient(),
			log,
		)
		workers = append(workers, startWorker(zeebeClient, ac.TaskType, wcfg, handler, zapLog))
	}

	if wcfg, ok := cfg.Workers[au.TaskType]; ok && wcfg.Enabled {
		handler := au.NewHandler(
			&au.Config{
				VideoExtractorURL:   cfg.Services.Extractors.VideoURL,
				ContentExtractorURL: cfg.Services.Extractors.ContentURL,
				Timeout:             time.Duration(cfg.Services.Extractors.Timeout) * time.Millisecond,
				CacheTTL:            24 * time.Hour,
			},
			rdb.GetClient(),
			log,
		)
		workers = append(workers, startWorker(zeebeClient, au.TaskType, wcfg, handler, zapLog))
	}

	if wcfg, ok := cfg.Workers[ea.TaskType]; ok && wcfg.Enabled {
		handler := ea.NewHandler(
			&ea.Config{
				ImportValidatorURL: cfg.Services.ImportValidator.URL,
				GeneratorURL:       cfg.Services.GenAI.BaseURL + "/api/ai/generate-content",
				Timeout:            time.Duration(wcfg.Timeout) * time.Millisecond,
				ProgressTTL:        time.Hour,
				FromEmail:          cfg.Integrations.AWS.SES.FromEmail,
				NotifyEmail:        cfg.Integrations.AWS.SES.NotifyEmail,
			},
			pg.GetDB(),
			rdb.GetClient(),
			sesClient,
			log,
		)
		workers = append(workers, startWorker(zeebeClient, ea.TaskType, wcfg, handler, zapLog))
	}

	zapLog.Info("All workers registered", zap.Int("count", len(workers)))

	// --- Health & Metrics Server ---
	go func() {
		http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "healthy",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.Handle("/metrics", promhttp.Handler())
		zapLog.Info("Health/Metrics server listening on :8080")
		if err := http.ListenAndServe(":8080", nil); err != nil {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, w := range workers {
		w.Stop(shutdownCtx)
	}

	if err := zeebeClient.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

func startWorker(client *camunda.Client, taskType string, wcfg config.WorkerConfig, handler camunda.JobHandler, log *zap.Logger) *camunda.CamundaWorker {
	w := camunda.NewWorker(client.GetClient(), taskType, wcfg.MaxJobsActive, handler, log)
	w.Start()
	return w
}
