package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/multierr"

	"github.com/angelmondragon/pharmacy-backend/api/routes"
	"github.com/angelmondragon/pharmacy-backend/internal/admin"
	"github.com/angelmondragon/pharmacy-backend/internal/banners"
	"github.com/angelmondragon/pharmacy-backend/internal/categories"
	"github.com/angelmondragon/pharmacy-backend/internal/coupons"
	"github.com/angelmondragon/pharmacy-backend/internal/events"
	"github.com/angelmondragon/pharmacy-backend/internal/heroslides"
	"github.com/angelmondragon/pharmacy-backend/internal/medicines"
	"github.com/angelmondragon/pharmacy-backend/internal/notifications"
	"github.com/angelmondragon/pharmacy-backend/internal/orders"
	"github.com/angelmondragon/pharmacy-backend/internal/payments"
	"github.com/angelmondragon/pharmacy-backend/internal/reports"
	"github.com/angelmondragon/pharmacy-backend/internal/reviews"
	"github.com/angelmondragon/pharmacy-backend/internal/users"
	"github.com/angelmondragon/pharmacy-backend/pkg/config"
	"github.com/angelmondragon/pharmacy-backend/pkg/db"
	"github.com/angelmondragon/pharmacy-backend/pkg/identity"
	"github.com/angelmondragon/pharmacy-backend/pkg/logger"
	"github.com/angelmondragon/pharmacy-backend/pkg/mailer"
	"github.com/angelmondragon/pharmacy-backend/pkg/metrics"
	"github.com/angelmondragon/pharmacy-backend/pkg/migrate"
	"github.com/angelmondragon/pharmacy-backend/pkg/pubsub"
	"github.com/angelmondragon/pharmacy-backend/pkg/redis"
	pkgstripe "github.com/angelmondragon/pharmacy-backend/pkg/stripe"
	"github.com/joho/godotenv"
)

const (
	shutdownTimeout = 15 * time.Second
	webhookEventTTL = 72 * time.Hour
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "pharmacy-api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "pharmacy-api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var closers []io.Closer
	defer func() {
		var closeErr error
		for i := len(closers) - 1; i >= 0; i-- {
			closeErr = multierr.Append(closeErr, closers[i].Close())
		}
		if closeErr != nil {
			logg.Error(context.Background(), "error releasing resources", closeErr)
		}
	}()

	dbClient, err := db.New(ctx, cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
	requireResource(ctx, logg, "database", err)
	closers = append(closers, dbClient)

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(ctx, cfg.Redis, logg)
		requireResource(ctx, logg, "redis", err)
		closers = append(closers, redisClient)
	} else {
		logg.Warn(ctx, "redis not configured; idempotency and webhook dedupe disabled")
	}

	registry := metrics.NewRegistry()

	var verifier identity.Verifier
	if cfg.Firebase.Enabled() {
		fv, err := identity.NewFirebaseVerifier(ctx, cfg.Firebase, logg)
		requireResource(ctx, logg, "firebase", err)
		verifier = fv
	} else {
		logg.Warn(ctx, "firebase not configured; using local token verifier")
		verifier = identity.NewLocalVerifier(cfg.JWT)
	}

	stripeClient, err := pkgstripe.NewClient(ctx, cfg.Stripe, logg)
	requireResource(ctx, logg, "stripe", err)

	var publisher events.Publisher = events.Nop{}
	if cfg.PubSub.Enabled() {
		psClient, err := pubsub.NewClient(ctx, cfg.PubSub, logg)
		requireResource(ctx, logg, "pubsub", err)
		closers = append(closers, psClient)
		pp, err := events.NewPubSubPublisher(psClient.DomainPublisher())
		requireResource(ctx, logg, "pubsub publisher", err)
		publisher = pp
	}

	var receipts notifications.ReceiptSender = notifications.NopReceiptSender{}
	if cfg.Sendgrid.Enabled() {
		m, err := mailer.NewSendgridMailer(cfg.Sendgrid)
		requireResource(ctx, logg, "sendgrid", err)
		rs, err := notifications.NewMailReceiptSender(m)
		requireResource(ctx, logg, "receipts", err)
		receipts = rs
	}

	gormDB := dbClient.DB()
	usersRepo := users.NewRepository(gormDB)
	categoriesRepo := categories.NewRepository(gormDB)
	medicinesRepo := medicines.NewRepository(gormDB)
	ordersRepo := orders.NewRepository(gormDB)
	paymentsRepo := payments.NewRepository(gormDB)

	usersSvc, err := users.NewService(usersRepo)
	requireResource(ctx, logg, "users service", err)
	categoriesSvc, err := categories.NewService(categoriesRepo)
	requireResource(ctx, logg, "categories service", err)
	medicinesSvc, err := medicines.NewService(medicinesRepo, categoriesRepo)
	requireResource(ctx, logg, "medicines service", err)
	bannersSvc, err := banners.NewService(banners.NewRepository(gormDB))
	requireResource(ctx, logg, "banners service", err)
	slidesSvc, err := heroslides.NewService(heroslides.NewRepository(gormDB), medicinesRepo)
	requireResource(ctx, logg, "hero slides service", err)
	couponsSvc, err := coupons.NewService(coupons.NewRepository(gormDB), medicinesRepo)
	requireResource(ctx, logg, "coupons service", err)
	reviewsSvc, err := reviews.NewService(reviews.NewRepository(gormDB), medicinesRepo)
	requireResource(ctx, logg, "reviews service", err)

	ordersSvc, err := orders.NewService(dbClient, ordersRepo, publisher, registry.Commerce, logg)
	requireResource(ctx, logg, "orders service", err)

	paymentsSvc, err := payments.NewService(payments.ServiceParams{
		Gateway:   pkgstripe.NewPaymentIntents(stripeClient),
		Tx:        dbClient,
		Repo:      paymentsRepo,
		Orders:    ordersRepo,
		Publisher: publisher,
		Receipts:  receipts,
		Metrics:   registry.Commerce,
		Logger:    logg,
	})
	requireResource(ctx, logg, "payments service", err)

	adminSvc, err := admin.NewService(admin.ServiceParams{
		Repo:      admin.NewRepository(gormDB),
		Users:     usersRepo,
		Medicines: medicinesRepo,
		Payments:  paymentsRepo,
		Orders:    ordersSvc,
	})
	requireResource(ctx, logg, "admin service", err)

	reportEngine, err := reports.NewEngine(reports.NewRepository(gormDB), registry.Reports, cfg.Reports.TopMedicines)
	requireResource(ctx, logg, "report engine", err)

	var guard *payments.EventGuard
	if redisClient != nil {
		guard, err = payments.NewEventGuard(redisClient, webhookEventTTL)
		requireResource(ctx, logg, "webhook guard", err)
	}

	handler := routes.NewRouter(routes.Deps{
		Config:       cfg,
		Logger:       logg,
		DB:           dbClient,
		Redis:        redisClient,
		Registry:     registry,
		Verifier:     verifier,
		Users:        usersSvc,
		Categories:   categoriesSvc,
		Medicines:    medicinesSvc,
		Banners:      bannersSvc,
		HeroSlides:   slidesSvc,
		Coupons:      couponsSvc,
		Reviews:      reviewsSvc,
		Orders:       ordersSvc,
		Payments:     paymentsSvc,
		Admin:        adminSvc,
		Reports:      reportEngine,
		Stripe:       stripeClient,
		WebhookGuard: guard,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	serverCtx := logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logg.Info(serverCtx, "starting api server")
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(serverCtx, "api server stopped unexpectedly", err)
			stop()
			os.Exit(1)
		}
	case <-ctx.Done():
		logg.Info(serverCtx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(serverCtx, "graceful shutdown failed", err)
		}
	}
}

func requireResource(ctx context.Context, logg *logger.Logger, name string, err error) {
	if err == nil {
		return
	}
	logg.Error(logg.WithField(ctx, "resource", name), "failed to initialize "+name, err)
	os.Exit(1)
}
