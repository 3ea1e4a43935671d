package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shaiso/FlowMaster/internal/api"
	"github.com/shaiso/FlowMaster/internal/executor"
	"github.com/shaiso/FlowMaster/internal/mq"
	"github.com/shaiso/FlowMaster/internal/steps"
	"github.com/shaiso/FlowMaster/internal/telemetry"
)

var (
	startTime = time.Now()
	reqTotal  = promauto.NewCounter(prometheus.CounterOpts{
		Name: "flowmaster_api_http_requests_total",
		Help: "Total HTTP requests handled by flowmaster_api",
	})
)

func main() {
	// Инициализируем structured logging
	logger := telemetry.SetupLogger()
	logger.Info("starting flowmaster-api")

	latency := steps.NewLatency(envMillis("EXEC_LATENCY_MIN_MS"), envMillis("EXEC_LATENCY_MAX_MS"))

	// RabbitMQ опционален: без RABBITMQ_URL события никуда не публикуются
	var sinks []executor.EventHandler
	if url := os.Getenv("RABBITMQ_URL"); url != "" {
		conn, err := setupRabbitMQ(url, logger)
		if err != nil {
			logger.Error("failed to connect to RabbitMQ", "error", err)
			os.Exit(1)
		}
		defer conn.Close()

		sinks = append(sinks, mq.NewEventSink(mq.NewPublisher(conn, logger), logger))
		logger.Info("execution events will be published to RabbitMQ")
	}

	exec := executor.New(executor.Config{
		Latency: latency,
		Sinks:   sinks,
		Logger:  logger,
	})

	// Создаём API handler
	handler := api.NewHandler(api.Config{
		Executor: exec,
		Logger:   logger,
	})

	mux := http.NewServeMux()

	// Health и metrics
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		reqTotal.Inc()
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
		logger.Info("listening", "addr", addr, "latency", latency.String())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Ожидаем сигнал завершения
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

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

// setupRabbitMQ подключается к RabbitMQ и объявляет топологию.
func setupRabbitMQ(url string, logger *slog.Logger) (*mq.Connection, error) {
	conn, err := mq.NewConnection(url, logger)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := mq.SetupTopology(ctx, conn); err != nil {
		conn.Close()
		return nil, err
	}
	logger.Debug("rabbitmq topology", "info", mq.TopologyInfo())

	return conn, nil
}

// envMillis читает длительность в миллисекундах из переменной окружения.
func envMillis(key string) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return 0
	}

	ms, err := strconv.Atoi(v)
	if err != nil || ms < 0 {
		slog.Warn("ignoring invalid duration", "env", key, "value", v)
		return 0
	}
	return time.Duration(ms) * time.Millisecond
}
