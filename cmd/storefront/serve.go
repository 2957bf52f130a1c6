package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-faster/errors"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/stripe/stripe-go/v79"
	"go.uber.org/zap"

	"goflare.io/storefront"
	"goflare.io/storefront/account"
	"goflare.io/storefront/api"
	"goflare.io/storefront/cache"
	"goflare.io/storefront/catalog"
	"goflare.io/storefront/config"
	"goflare.io/storefront/driver"
	"goflare.io/storefront/event"
	"goflare.io/storefront/mirror"
	"goflare.io/storefront/order"
)

func serveCmd(configPath *string) *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := setup(*configPath)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, migrate, logger)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply the schema before serving")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config, migrate bool, logger *zap.Logger) error {
	db, err := driver.ConnectSQL(ctx, cfg.Postgres.DSN, cfg.Postgres.MaxConns)
	if err != nil {
		return err
	}
	defer db.Pool.Close()

	if migrate {
		if err := driver.Migrate(ctx, db.Pool, logger); err != nil {
			return err
		}
	}

	var store cache.Cache = cache.NewMemory()
	if cfg.Redis.Addr != "" {
		client, err := driver.ConnectRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
		if err != nil {
			return err
		}
		defer client.Close()
		store = cache.NewRedis(client, cfg.Redis.Prefix)
	} else {
		logger.Warn("Redis not configured, using in-process cache")
	}

	var natsConn *nats.Conn
	if cfg.NATS.URL != "" {
		natsConn, err = driver.ConnectNATS(cfg.NATS.URL, cfg.NATS.Name, logger)
		if err != nil {
			return err
		}
		defer natsConn.Close()
	}

	var gateway order.PaymentGateway
	if cfg.Stripe.SecretKey != "" {
		gateway = order.NewStripeGateway(cfg.Stripe.SecretKey, stripe.Currency(cfg.Stripe.Currency), logger)
	} else {
		logger.Warn("Stripe not configured, card payments disabled")
	}

	products := catalog.NewRepository(db.Pool, store, logger)
	var sources []catalog.Source
	if cfg.Catalog.RemoteURL != "" {
		sources = append(sources, catalog.NewRemoteSource(cfg.Catalog.RemoteURL, &http.Client{Timeout: cfg.Catalog.Timeout}))
	}
	sources = append(sources, catalog.FromRepository(products))
	cat := catalog.NewService(logger, sources...)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := api.NewMetrics(reg)
	hub := api.NewHub(cfg.HTTP.AllowedOrigins, metrics, logger)

	svc := storefront.NewService(storefront.Deps{
		Catalog:   cat,
		Products:  products,
		Accounts:  account.NewService(account.NewRepository(db.Pool, logger), cfg.Visitor.BcryptCost, logger),
		Orders:    order.NewRepository(db.Pool, store, logger),
		Events:    event.NewRepository(db.Pool, logger),
		Tx:        driver.NewTransactionManager(db.Pool, logger),
		Mirror:    mirror.New(store, cfg.Visitor.MirrorTTL, logger),
		Gateway:   gateway,
		Publisher: order.NewPublisher(natsConn, logger),
		Notifier:  hub,
		NATS:      natsConn,
		Workers:   cfg.NATS.Workers,
		Logger:    logger,
	})
	defer svc.Shutdown()

	handler := api.NewHandler(svc, cat, hub, metrics, logger)
	srv := &http.Server{
		Addr: cfg.HTTP.Addr,
		Handler: api.NewRouter(handler, api.VisitorCookie{
			Name:   cfg.Visitor.CookieName,
			Secure: cfg.Visitor.CookieSecure,
			MaxAge: cfg.Visitor.MirrorTTL,
		}, reg, logger),
		ReadHeaderTimeout: cfg.HTTP.ReadTimeout,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
	}

	go sweep(ctx, svc, cfg.Visitor, logger)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", zap.String("addr", cfg.HTTP.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	hub.Close()
	return srv.Shutdown(shutdownCtx)
}

// sweep drops idle visitors until ctx is done.
func sweep(ctx context.Context, svc storefront.Service, cfg config.VisitorConfig, logger *zap.Logger) {
	ticker := time.NewTicker(cfg.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := svc.Sweep(cfg.IdleTimeout); n > 0 {
				logger.Info("Idle visitors released", zap.Int("count", n))
			}
		}
	}
}
