package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/taskerway/dawat-storefront/api/routes"
	cartsvc "github.com/taskerway/dawat-storefront/internal/cart"
	checkoutsvc "github.com/taskerway/dawat-storefront/internal/checkout"
	"github.com/taskerway/dawat-storefront/internal/email"
	orderssvc "github.com/taskerway/dawat-storefront/internal/orders"
	paymentssvc "github.com/taskerway/dawat-storefront/internal/payments"
	"github.com/taskerway/dawat-storefront/internal/sheets"
	"github.com/taskerway/dawat-storefront/pkg/config"
	"github.com/taskerway/dawat-storefront/pkg/db"
	"github.com/taskerway/dawat-storefront/pkg/instance"
	"github.com/taskerway/dawat-storefront/pkg/logger"
	"github.com/taskerway/dawat-storefront/pkg/metrics"
	"github.com/taskerway/dawat-storefront/pkg/redis"
	"github.com/taskerway/dawat-storefront/pkg/stripe"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "storefront"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "storefront",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := orderssvc.AutoMigrate(dbClient.DB()); err != nil {
		logg.Error(context.Background(), "failed to migrate order backups", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	stripeClient, err := stripe.NewClient(context.Background(), cfg.Stripe, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to initialize stripe", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	checkoutMetrics := metrics.NewCheckoutMetrics(registry)

	sheetsSink, err := sheets.NewSink(cfg.Sheets, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to configure sheets sink", err)
		os.Exit(1)
	}
	if sheetsSink == nil {
		logg.Warn(context.Background(), "sheets sink disabled: no web app url configured")
	}

	emailSink, err := email.NewSink(cfg.Email, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to configure email sink", err)
		os.Exit(1)
	}
	if emailSink == nil {
		logg.Warn(context.Background(), "email sink disabled: dispatch credentials not configured")
	}

	cartService, err := cartsvc.NewService(redisClient, cfg.Cart, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	paymentService, err := paymentssvc.NewService(paymentssvc.ServiceParams{
		Client:          paymentssvc.NewStripeClient(stripeClient),
		DefaultCurrency: cfg.Checkout.Currency,
		Metrics:         checkoutMetrics,
		Logger:          logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create payment service", err)
		os.Exit(1)
	}

	orderParams := orderssvc.ServiceParams{
		Backup:  orderssvc.NewRepository(dbClient.DB()),
		Metrics: checkoutMetrics,
		Logger:  logg,
	}
	// A nil sink inside a non-nil interface would dodge the skip checks.
	if sheetsSink != nil {
		orderParams.Sheets = sheetsSink
	}
	if emailSink != nil {
		orderParams.Mail = emailSink
	}
	orderService, err := orderssvc.NewService(orderParams)
	if err != nil {
		logg.Error(context.Background(), "failed to create order service", err)
		os.Exit(1)
	}

	detailsValidator, err := orderssvc.NewValidator(cfg.Validation)
	if err != nil {
		logg.Error(context.Background(), "failed to build details validator", err)
		os.Exit(1)
	}

	checkoutService, err := checkoutsvc.NewService(checkoutsvc.ServiceParams{
		Store:     redisClient,
		Cart:      cartService,
		Payments:  paymentService,
		Orders:    orderService,
		Validator: detailsValidator,
		Config:    cfg.Checkout,
		Logger:    logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.GetID(),
	})
	logg.Info(ctx, "starting storefront server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.RouterParams{
			Config:   cfg,
			Logger:   logg,
			DB:       dbClient,
			Redis:    redisClient,
			Registry: registry,
			Cart:     cartService,
			Checkout: checkoutService,
			Payments: paymentService,
			Orders:   orderService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "storefront server stopped unexpectedly", err)
		os.Exit(1)
	}
}
