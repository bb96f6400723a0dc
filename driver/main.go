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

	ghandlers "github.com/gorilla/handlers"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"golang.org/x/sync/errgroup"

	"github.com/foodiehub/ordering-api/auth"
	"github.com/foodiehub/ordering-api/checkout"
	"github.com/foodiehub/ordering-api/config"
	"github.com/foodiehub/ordering-api/events"
	"github.com/foodiehub/ordering-api/handlers"
	"github.com/foodiehub/ordering-api/loyalty"
	"github.com/foodiehub/ordering-api/middleware"
	"github.com/foodiehub/ordering-api/middleware/logkafka"
	"github.com/foodiehub/ordering-api/payment"
	"github.com/foodiehub/ordering-api/store"
	"github.com/foodiehub/ordering-api/telem"
	"github.com/foodiehub/ordering-api/utils"
	"github.com/foodiehub/ordering-api/ws"
)

const shutdownTimeout = 15 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}

func run(ctx context.Context) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	logger := newLogger(cfg.App.LogLevel)
	slog.SetDefault(logger)

	shutdownTelemetry, err := telem.Init(ctx, cfg.Telemetry, cfg.App.Environment)
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(ctx); err != nil {
			logger.Warn("telemetry shutdown", "error", err)
		}
	}()
	instruments, err := telem.NewInstruments()
	if err != nil {
		return fmt.Errorf("init instruments: %w", err)
	}

	client, err := utils.InitMongoClient(ctx, cfg.Mongo)
	if err != nil {
		return err
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			logger.Warn("mongo disconnect", "error", err)
		}
	}()
	db := client.Database(cfg.Mongo.Database)
	if err := utils.EnsureIndexes(ctx, db); err != nil {
		return err
	}

	st := store.New(db)
	if err := auth.Provision(ctx, st, cfg.Auth, logger); err != nil {
		return fmt.Errorf("provision accounts: %w", err)
	}
	if cfg.App.SeedDemo {
		seeded, err := st.SeedDemo(ctx)
		if err != nil {
			return fmt.Errorf("seed demo data: %w", err)
		}
		logger.Info("demo data", "seeded", seeded)
	}

	var gateway payment.Gateway = payment.Unconfigured{}
	if cfg.Stripe.StripeEnabled() {
		gateway = payment.NewStripeGateway(cfg.Stripe.SecretKey, nil)
	} else {
		logger.Warn("stripe secret key not configured, checkout is disabled")
	}

	hub := ws.NewHub(cfg.Server.CORSOrigins, logger)
	publishers := events.Multi{hub}
	var logWriter logkafka.MessageWriter
	if len(cfg.Kafka.Brokers) > 0 {
		orders := events.NewKafkaPublisher(events.NewKafkaWriter(cfg.Kafka.Brokers, cfg.Kafka.OrderTopic))
		defer orders.Close()
		publishers = append(publishers, orders)
		logWriter = logkafka.NewWriter(cfg.Kafka.Brokers, cfg.Kafka.LogTopic, logger)
	}
	shipper := logkafka.NewShipper(logWriter, cfg.App.Environment, logger)
	defer shipper.Close()

	checkoutSvc := checkout.NewService(checkout.Config{
		PointValue: cfg.Loyalty.PointValue,
		MinCharge:  cfg.Loyalty.MinCharge,
		Currency:   cfg.Stripe.Currency,
	}, st, st, st, gateway, publishers, logger)
	loyaltySvc := loyalty.NewService(st, cfg.Loyalty.DealWindow, logger)
	issuer := auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	h := handlers.New(handlers.Handler{
		Store:       st,
		Tokens:      issuer,
		Checkout:    checkoutSvc,
		Loyalty:     loyaltySvc,
		Feed:        hub,
		Instruments: instruments,
		Config:      cfg,
		Logger:      logger,
	})
	handlers.RegisterMetrics(prometheus.DefaultRegisterer)
	limiter := middleware.NewRateLimiter(cfg.Server.AuthRateLimit, cfg.Server.AuthBurst)
	router := handlers.NewRouter(h, issuer, limiter, prometheus.DefaultGatherer)

	var handler http.Handler = shipper.LoggingMiddleware(router)
	handler = ghandlers.CORS(
		ghandlers.AllowedOrigins(cfg.Server.CORSOrigins),
		ghandlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions}),
		ghandlers.AllowedHeaders([]string{"Authorization", "Content-Type", "X-Trace-ID", "token"}),
		ghandlers.ExposedHeaders([]string{"X-Trace-ID"}),
		ghandlers.AllowCredentials(),
	)(handler)
	handler = ghandlers.RecoveryHandler(
		ghandlers.RecoveryLogger(slog.NewLogLogger(logger.Handler(), slog.LevelError)),
	)(handler)

	srv := &http.Server{
		Addr:         cfg.Server.GetServerAddr(),
		Handler:      h2c.NewHandler(handler, &http2.Server{}),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	servers := []*http.Server{srv}
	if cfg.Telemetry.MetricsAddr != "" {
		servers = append(servers, &http.Server{
			Addr:              cfg.Telemetry.MetricsAddr,
			Handler:           promhttp.Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		})
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return hub.Run(gctx) })
	g.Go(func() error { return limiter.Sweep(gctx, time.Minute, 10*time.Minute) })
	for _, s := range servers {
		g.Go(func() error {
			logger.Info("listening", "addr", s.Addr)
			if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("serve %s: %w", s.Addr, err)
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		var errs []error
		for _, s := range servers {
			errs = append(errs, s.Shutdown(ctx))
		}
		return errors.Join(errs...)
	})
	return g.Wait()
}
