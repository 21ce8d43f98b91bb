// Flowcraft API — HTTP сервер для построения и запуска графа.
//
// Сервер держит один граф в памяти. Опционально:
//   - DB_URL — PostgreSQL для сохранённых workflows и истории запусков
//   - AMQP_URL — RabbitMQ для публикации событий и итогов запусков
//   - ACTIVITY_SERVICE_URL — сервис удалённых активностей
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shaiso/Flowcraft/internal/activity"
	"github.com/shaiso/Flowcraft/internal/api"
	"github.com/shaiso/Flowcraft/internal/domain"
	"github.com/shaiso/Flowcraft/internal/engine"
	"github.com/shaiso/Flowcraft/internal/eventlog"
	"github.com/shaiso/Flowcraft/internal/graph"
	"github.com/shaiso/Flowcraft/internal/mq"
	"github.com/shaiso/Flowcraft/internal/repo"
	"github.com/shaiso/Flowcraft/internal/telemetry"
)

var startTime = time.Now()

func main() {
	// Инициализируем structured logging
	logger := telemetry.SetupLogger(os.Stdout)
	logger.Info("starting flowcraft-api")

	// graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	metrics := telemetry.NewMetrics(prometheus.DefaultRegisterer)

	// Реестр активностей
	registry := activity.DefaultRegistry()
	if url := os.Getenv("ACTIVITY_SERVICE_URL"); url != "" {
		activity.RegisterRemote(registry, url)
		logger.Info("remote activities registered", "url", url, "activities", registry.Count())
	}

	// Граф, журнал, движок
	store := graph.NewStore()
	log := eventlog.New(eventlog.WithMetrics(metrics))
	eng := engine.New(engine.Config{
		Store:    store,
		Registry: registry,
		Log:      log,
		Metrics:  metrics,
		Logger:   logger,
	})

	cfg := api.Config{
		Store:       store,
		Registry:    registry,
		Engine:      eng,
		Log:         log,
		Metrics:     metrics,
		Logger:      logger,
		BaseContext: ctx,
	}

	// PostgreSQL
	var runRepo *repo.RunRepo
	if dsn, ok := repo.DSNFromEnv(); ok {
		pool, err := repo.NewPool(ctx, dsn)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		if err := repo.CreateSchema(ctx, pool); err != nil {
			logger.Error("failed to create schema", "error", err)
			os.Exit(1)
		}
		logger.Info("connected to database")

		runRepo = repo.NewRunRepo(pool)
		cfg.Workflows = repo.NewWorkflowRepo(pool)
		cfg.Runs = runRepo
	} else {
		logger.Info("DB_URL not set, workflows and run history disabled")
	}

	// RabbitMQ
	var publisher *mq.Publisher
	if url, ok := mq.URLFromEnv(); ok {
		conn, err := mq.NewConnection(url, logger)
		if err != nil {
			logger.Warn("RabbitMQ not available, events will not be published", "error", err)
		} else {
			defer conn.Close()

			if err := mq.SetupTopology(ctx, conn); err != nil {
				logger.Error("failed to setup RabbitMQ topology", "error", err)
				os.Exit(1)
			}
			logger.Debug("rabbitmq topology", "info", mq.TopologyInfo())

			publisher = mq.NewPublisher(conn, logger)
			log.AddObserver(mq.NewEventPublisher(publisher, logger))

			if runRepo != nil {
				go archiveRuns(ctx, conn, runRepo, logger)
			}
		}
	}

	cfg.OnRunFinished = func(ctx context.Context, run domain.RunRecord) {
		// С RabbitMQ архивирует consumer runs.finished, без него — сохраняем сразу
		if publisher != nil {
			err := publisher.PublishRunFinished(ctx, run)
			if err == nil {
				return
			}
			logger.Warn("failed to publish run result", "run_id", run.ID, "error", err)
		}
		if runRepo != nil {
			if err := runRepo.Save(ctx, &run); err != nil {
				logger.Error("failed to archive run", "run_id", run.ID, "error", err)
			}
		}
	}

	handler := api.NewHandler(cfg)

	mux := http.NewServeMux()

	// Health и metrics
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "ok %s", time.Since(startTime))
	})
	mux.Handle("/metrics", promhttp.Handler())

	// Регистрируем API маршруты
	handler.RegisterRoutes(mux)

	addr := ":8080"
	if v := os.Getenv("API_PORT"); v != "" {
		addr = ":" + v
	}

	// Создаём HTTP сервер с возможностью graceful shutdown
	server := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	// Запускаем сервер в горутине
	go func() {
		logger.Info("listening", "addr", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	// Graceful shutdown с таймаутом 10 секунд
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}

	logger.Info("stopped")
}

// archiveRuns сохраняет итоги запусков из очереди runs.finished в PostgreSQL.
func archiveRuns(ctx context.Context, conn *mq.Connection, runRepo *repo.RunRepo, logger *slog.Logger) {
	consumer := mq.NewConsumer(conn, logger, mq.ConsumerConfig{
		Queue:    mq.QueueRunsFinished,
		Prefetch: 10,
		Handler: func(ctx context.Context, d *mq.Delivery) error {
			run, err := d.RunRecord()
			if err != nil {
				return err
			}
			return runRepo.Save(ctx, &run)
		},
	})

	if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("run archive consumer stopped", "error", err)
	}
}
