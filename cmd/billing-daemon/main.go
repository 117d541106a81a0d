// cmd/billing-daemon/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"smartreceipt-billing/internal/api/payments"
	"smartreceipt-billing/internal/api/subscriptions"
	"smartreceipt-billing/internal/billing/callback"
	"smartreceipt-billing/internal/billing/checkout"
	"smartreceipt-billing/internal/billing/poller"
	"smartreceipt-billing/internal/billing/portal"
	"smartreceipt-billing/internal/billing/usagegate"
	"smartreceipt-billing/internal/common/auth"
	"smartreceipt-billing/internal/common/config"
	"smartreceipt-billing/internal/common/database"
	"smartreceipt-billing/internal/common/logger"
	"smartreceipt-billing/internal/common/observability"
	"smartreceipt-billing/internal/iyzico"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootstrapLog := logger.New("info", "console")
		bootstrapLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting billing daemon...",
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New("billing-daemon")
	defer obs.Shutdown()

	// --- Redis: auth tokens and usage cache ---
	var redisClient *database.RedisClient
	rc, err := database.NewRedis(cfg.Database.Redis)
	if err == nil {
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if pingErr := rc.Ping(pingCtx); pingErr != nil {
			zapLog.Warn("redis unavailable, running without cache", zap.Error(pingErr))
		} else {
			redisClient = rc
			defer redisClient.Close()
		}
		cancel()
	}

	var store auth.Store
	if redisClient != nil {
		store = auth.NewRedisStore(redisClient, cfg.App.Name, 24*time.Hour)
	} else {
		store = auth.NewMemoryStore()
	}
	token := auth.ProviderFromStore(store)

	// --- REST facades ---
	subsClient := subscriptions.NewClient(cfg.Backend, token, log)
	payClient := payments.NewClient(cfg.Backend, token, log)

	tokenizer := iyzico.NewTokenizer(
		iyzico.NewClient(cfg.Tokenizer),
		cfg.Tokenizer.Locale,
		log,
	)

	statusPoller := poller.New(
		payClient,
		cfg.Checkout.PollMaxAttempts,
		config.GetDuration(cfg.Checkout.PollInterval),
		log,
	)

	gate := usagegate.NewGate(subsClient, redisClient, config.GetDuration(cfg.Cache.UsageTTL), log)

	checkoutSvc := checkout.NewService(subsClient, payClient, tokenizer, statusPoller, cfg.Backend.CallbackURL, obs, log)
	callbackHandler := callback.NewHandler(statusPoller, subsClient, gate, log)
	portalHandler := portal.NewHandler(subsClient, payClient, gate, store, log)

	// --- HTTP server ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Mount("/checkout", checkoutSvc.Routes())
	r.Mount("/payment/callback", callbackHandler.Routes())
	r.Mount("/billing", portalHandler.Routes())

	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      r,
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.String("address", cfg.Server.Address))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// --- Graceful shutdown ---
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	zapLog.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("server shutdown failed", zap.Error(err))
	}
	zapLog.Info("Billing daemon stopped")
}
