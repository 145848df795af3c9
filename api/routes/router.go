package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/pharmacy-backend/api/controllers"
	admincontrollers "github.com/angelmondragon/pharmacy-backend/api/controllers/admin"
	couponcontrollers "github.com/angelmondragon/pharmacy-backend/api/controllers/coupons"
	ordercontrollers "github.com/angelmondragon/pharmacy-backend/api/controllers/orders"
	paymentcontrollers "github.com/angelmondragon/pharmacy-backend/api/controllers/payments"
	webhookcontrollers "github.com/angelmondragon/pharmacy-backend/api/controllers/webhooks"
	"github.com/angelmondragon/pharmacy-backend/api/middleware"
	"github.com/angelmondragon/pharmacy-backend/internal/admin"
	"github.com/angelmondragon/pharmacy-backend/internal/banners"
	"github.com/angelmondragon/pharmacy-backend/internal/categories"
	"github.com/angelmondragon/pharmacy-backend/internal/coupons"
	"github.com/angelmondragon/pharmacy-backend/internal/heroslides"
	"github.com/angelmondragon/pharmacy-backend/internal/medicines"
	"github.com/angelmondragon/pharmacy-backend/internal/orders"
	"github.com/angelmondragon/pharmacy-backend/internal/payments"
	"github.com/angelmondragon/pharmacy-backend/internal/reviews"
	"github.com/angelmondragon/pharmacy-backend/internal/users"
	"github.com/angelmondragon/pharmacy-backend/pkg/config"
	"github.com/angelmondragon/pharmacy-backend/pkg/enums"
	"github.com/angelmondragon/pharmacy-backend/pkg/identity"
	"github.com/angelmondragon/pharmacy-backend/pkg/logger"
	"github.com/angelmondragon/pharmacy-backend/pkg/metrics"
	pkgredis "github.com/angelmondragon/pharmacy-backend/pkg/redis"
	pkgstripe "github.com/angelmondragon/pharmacy-backend/pkg/stripe"
)

// Deps carries everything the HTTP surface needs. Redis, Stripe and the
// webhook guard are optional.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       controllers.Pinger
	Redis    *pkgredis.Client
	Registry *metrics.Registry

	Verifier identity.Verifier
	Users    users.Service

	Categories categories.Service
	Medicines  medicines.Service
	Banners    banners.Service
	HeroSlides heroslides.Service
	Coupons    coupons.Service
	Reviews    reviews.Service
	Orders     orders.Service
	Payments   payments.Service
	Admin      admin.Service
	Reports    admincontrollers.ReportBuilder

	Stripe       *pkgstripe.Client
	WebhookGuard *payments.EventGuard
}

func NewRouter(d Deps) http.Handler {
	cfg, logg := d.Config, d.Logger
	r := chi.NewRouter()

	var httpMetrics *metrics.HTTPMetrics
	if d.Registry != nil {
		httpMetrics = d.Registry.HTTP
	}

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
		middleware.CORS(cfg.App.AllowedOrigins()),
		middleware.RateLimit(middleware.NewIPLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst), logg),
	)

	// Typed-nil guards: a nil *Client must not reach the middleware as a
	// non-nil interface.
	var (
		idemStore   pkgredis.IdempotencyStore
		rateLimiter pkgredis.RateLimiter
		redisPinger controllers.Pinger
	)
	if d.Redis != nil {
		idemStore, rateLimiter, redisPinger = d.Redis, d.Redis, d.Redis
	}
	var stats controllers.StatsProvider = d.Admin
	if d.Redis != nil {
		if cached, err := admin.NewCachedStats(d.Admin, d.Redis, cfg.Redis.StatsCacheTTL, logg); err == nil {
			stats = cached
		}
	}
	var webhookGuard interface {
		CheckAndMark(ctx context.Context, eventID string) (bool, error)
		Release(ctx context.Context, eventID string) error
	}
	if d.WebhookGuard != nil {
		webhookGuard = d.WebhookGuard
	}

	idem := middleware.Idempotency(idemStore, logg)
	auth := middleware.Auth(d.Verifier, d.Users, cfg.FeatureFlags.DevAuth, logg)
	adminOnly := middleware.RequireRole(logg, enums.UserRoleAdmin)
	sellerOrAdmin := middleware.RequireRole(logg, enums.UserRoleSeller, enums.UserRoleAdmin)
	loginPolicy := middleware.NewAuthRateLimitPolicy("firebase-login", cfg.RateLimit.LoginWindow, cfg.RateLimit.LoginIPLimit, cfg.RateLimit.LoginIPLimit)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive())
		r.Get("/ready", controllers.HealthReady(map[string]controllers.Pinger{
			"database": d.DB,
			"redis":    redisPinger,
		}, logg))
	})
	if d.Registry != nil {
		r.Method(http.MethodGet, "/metrics", d.Registry.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/stats", controllers.PublicStats(stats, logg))

		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.AuthRateLimit(loginPolicy, rateLimiter, logg)).
				Post("/firebase-login", controllers.FirebaseLogin(d.Verifier, d.Users, logg))
		})

		r.Route("/webhooks", func(r chi.Router) {
			r.Post("/stripe", webhookcontrollers.StripeWebhook(d.Payments, d.Stripe, webhookGuard, logg))
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(auth)
			r.Get("/me", controllers.Me(d.Users, logg))
			r.Patch("/me", controllers.UpdateMe(d.Users, logg))
			r.With(adminOnly).Get("/", controllers.ListUsers(d.Users, logg))
			r.With(adminOnly).Patch("/{id}/role", controllers.UpdateUserRole(d.Users, logg))
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", controllers.ListCategories(d.Categories, logg))
			r.Get("/name/{name}", controllers.GetCategoryByName(d.Categories, logg))
			r.Get("/{id}", controllers.GetCategory(d.Categories, logg))
			r.Group(func(r chi.Router) {
				r.Use(auth, adminOnly)
				r.Post("/", controllers.CreateCategory(d.Categories, logg))
				r.Put("/{id}", controllers.UpdateCategory(d.Categories, logg))
				r.Delete("/{id}", controllers.DeleteCategory(d.Categories, logg))
			})
		})

		r.Route("/medicines", func(r chi.Router) {
			r.Get("/", controllers.ListMedicines(d.Medicines, logg))
			r.Get("/discounted", controllers.DiscountedMedicines(d.Medicines, logg))
			r.Get("/{id}", controllers.GetMedicine(d.Medicines, logg))
			r.Group(func(r chi.Router) {
				r.Use(auth, sellerOrAdmin)
				r.Post("/", controllers.CreateMedicine(d.Medicines, logg))
				r.Put("/{id}", controllers.UpdateMedicine(d.Medicines, logg))
				r.Delete("/{id}", controllers.DeleteMedicine(d.Medicines, logg))
			})
		})

		r.Route("/banners", func(r chi.Router) {
			r.Get("/", controllers.ListBanners(d.Banners, logg))
			r.Get("/active", controllers.LiveBanners(d.Banners, logg))
			r.Get("/{id}", controllers.GetBanner(d.Banners, logg))
			r.Group(func(r chi.Router) {
				r.Use(auth, adminOnly)
				r.Post("/", controllers.CreateBanner(d.Banners, logg))
				r.Put("/{id}", controllers.UpdateBanner(d.Banners, logg))
				r.Delete("/{id}", controllers.DeleteBanner(d.Banners, logg))
				r.Patch("/{id}/toggle-status", controllers.ToggleBanner(d.Banners, logg))
				r.Patch("/{id}/priority", controllers.UpdateBannerPriority(d.Banners, logg))
			})
		})

		r.Route("/hero-slides", func(r chi.Router) {
			r.Get("/", controllers.ListHeroSlides(d.HeroSlides, logg))
			r.Get("/active", controllers.LiveHeroSlides(d.HeroSlides, logg))
			r.Get("/{id}", controllers.GetHeroSlide(d.HeroSlides, logg))
			r.Group(func(r chi.Router) {
				r.Use(auth, adminOnly)
				r.Post("/", controllers.CreateHeroSlide(d.HeroSlides, logg))
				r.Put("/{id}", controllers.UpdateHeroSlide(d.HeroSlides, logg))
				r.Delete("/{id}", controllers.DeleteHeroSlide(d.HeroSlides, logg))
				r.Patch("/{id}/toggle-status", controllers.ToggleHeroSlide(d.HeroSlides, logg))
			})
		})

		r.Route("/reviews", func(r chi.Router) {
			r.Get("/featured", controllers.FeaturedReviews(d.Reviews, logg))
			r.Get("/medicine/{medicineId}", controllers.MedicineReviews(d.Reviews, logg))
			r.Get("/medicine/{medicineId}/stats", controllers.MedicineReviewStats(d.Reviews, logg))
			r.Group(func(r chi.Router) {
				r.Use(auth)
				r.Post("/general", controllers.AddGeneralReview(d.Reviews, logg))
				r.Post("/medicine/{medicineId}", controllers.AddMedicineReview(d.Reviews, logg))
			})
		})

		r.Route("/coupons", func(r chi.Router) {
			r.Post("/validate", couponcontrollers.Validate(d.Coupons, logg))
			r.With(auth, idem).Post("/apply", couponcontrollers.Apply(d.Coupons, logg))
			r.Group(func(r chi.Router) {
				r.Use(auth, adminOnly)
				r.Get("/", couponcontrollers.List(d.Coupons, logg))
				r.Post("/", couponcontrollers.Create(d.Coupons, logg))
				r.Get("/{id}", couponcontrollers.Get(d.Coupons, logg))
				r.Put("/{id}", couponcontrollers.Update(d.Coupons, logg))
				r.Delete("/{id}", couponcontrollers.Delete(d.Coupons, logg))
			})
		})

		r.Route("/orders", func(r chi.Router) {
			r.Use(auth)
			r.With(idem).Post("/", ordercontrollers.Create(d.Orders, logg))
			r.Get("/", ordercontrollers.ListMine(d.Orders, logg))
			r.Get("/{id}", ordercontrollers.Get(d.Orders, logg))
		})

		r.Route("/payments", func(r chi.Router) {
			r.Use(auth)
			r.With(idem).Post("/create-payment-intent", paymentcontrollers.CreateIntent(d.Payments, logg))
			r.With(idem).Post("/confirm", paymentcontrollers.Confirm(d.Payments, logg))
			r.With(adminOnly).Get("/", paymentcontrollers.ListAll(d.Payments, logg))
			r.Get("/seller/{sellerId}", paymentcontrollers.ListBySeller(d.Payments, logg))
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(auth, adminOnly)
			r.Get("/overview", admincontrollers.Overview(d.Admin, logg))
			r.Get("/recent-users", admincontrollers.RecentUsers(d.Admin, logg))
			r.Get("/pending-payments", admincontrollers.PendingPayments(d.Admin, logg))
			r.Get("/payments", admincontrollers.Payments(d.Admin, logg))
			r.With(idem).Patch("/accept-payment/{orderId}", admincontrollers.AcceptPayment(d.Admin, logg))
			r.With(idem).Patch("/payments/{id}/accept", admincontrollers.AcceptPayment(d.Admin, logg))
			r.With(idem).Patch("/payments/{id}/reject", admincontrollers.RejectPayment(d.Admin, logg))
			r.Get("/orders", ordercontrollers.ListAll(d.Orders, logg))
			r.Patch("/orders/{id}/status", ordercontrollers.UpdateStatus(d.Orders, logg))
			r.Patch("/orders/{id}/payment-status", ordercontrollers.UpdatePaymentStatus(d.Orders, logg))
			r.Get("/reports/sales", admincontrollers.SalesReport(d.Reports, logg))
			r.Post("/reports/export", admincontrollers.ExportReport(d.Reports, logg))
		})
	})

	return r
}
