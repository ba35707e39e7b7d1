package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/zoobzio/clockz"

	"payment-gateway/internal/config"
	"payment-gateway/internal/handlers"
	"payment-gateway/internal/logging"
	"payment-gateway/internal/metrics"
	"payment-gateway/internal/normalizer"
	"payment-gateway/internal/providers"
	"payment-gateway/internal/repository"
	"payment-gateway/internal/services"
)

func main() {
	cfg := config.Load()

	logger := &logging.StdoutLogger{}
	counters := &metrics.Counters{}
	clock := clockz.RealClock

	store, err := repository.NewRedisStore(cfg.RedisAddr)
	if err != nil {
		log.Fatalf("Failed to initialize Redis store: %v", err)
	}

	registry := providers.NewRegistry(
		providers.NewPixAdapter(cfg.Pix, clock),
		providers.NewCardAdapter(cfg.Card),
	)

	gate := &services.IdempotencyGate{Store: store, TTL: cfg.IdempotencyTTL}
	breaker := &services.CircuitBreaker{
		Store:      store,
		Clock:      clock,
		Threshold:  cfg.FailureThreshold,
		Window:     cfg.BreakerWindow,
		CounterTTL: cfg.BreakerCounterTTL,
		Logger:     logger,
	}
	norm := normalizer.New(logger, clock)

	orchestrator := services.NewOrchestrator(
		gate, breaker, registry, norm, store,
		cfg.RouteFor, cfg.MaxAmount, logger, counters,
	)

	engine := services.NewDeliveryEngine(cfg.DeliveryTimeout, cfg.DeliveryMaxRetries, clock, logger, counters)
	processor := &services.WebhookProcessor{
		Normalizer: norm,
		Resolver:   &services.StoreCallbackResolver{Store: store, CallbacksKey: cfg.CallbacksKey},
		Engine:     engine,
		Logger:     logger,
	}

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	consumer := &services.WebhookConsumer{
		Queue:       store,
		QueueName:   cfg.WebhookQueue,
		Processor:   processor,
		Logger:      logger,
		WorkerCount: cfg.WorkerCount,
	}
	consumer.Start(workerCtx)

	handler := &handlers.GatewayHandler{
		Orchestrator: orchestrator,
		Queue:        store,
		QueueName:    cfg.WebhookQueue,
		Callbacks:    store,
		CallbacksKey: cfg.CallbacksKey,
		Logger:       logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/payments", handler.HandlePayments)
	mux.HandleFunc("/webhooks/", handler.HandleWebhook)
	mux.HandleFunc("/callbacks", handler.HandleCallbacks)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	stopWorkers()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
