package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/taskerway/dawat-storefront/api/controllers"
	"github.com/taskerway/dawat-storefront/api/middleware"
	cartsvc "github.com/taskerway/dawat-storefront/internal/cart"
	checkoutsvc "github.com/taskerway/dawat-storefront/internal/checkout"
	orderssvc "github.com/taskerway/dawat-storefront/internal/orders"
	paymentssvc "github.com/taskerway/dawat-storefront/internal/payments"
	"github.com/taskerway/dawat-storefront/pkg/config"
	"github.com/taskerway/dawat-storefront/pkg/db"
	"github.com/taskerway/dawat-storefront/pkg/logger"
	"github.com/taskerway/dawat-storefront/pkg/redis"
)

// RouterParams groups everything the HTTP surface needs.
type RouterParams struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       *db.Client
	Redis    *redis.Client
	Registry *prometheus.Registry

	Cart     cartsvc.Service
	Checkout checkoutsvc.Service
	Payments paymentssvc.Service
	Orders   *orderssvc.Service
}

func NewRouter(p RouterParams) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(p.Logger),
		middleware.RequestID(p.Logger),
		middleware.Logging(p.Logger),
		middleware.CORS(p.Config.App.ExtraCORSOrigins...),
		middleware.Session(p.Logger),
	)

	// Interface conversion of a nil *Client would hide the nil from the
	// readiness probe's skip check.
	var dbP, redisP controllers.Pinger
	if p.DB != nil {
		dbP = p.DB
	}
	if p.Redis != nil {
		redisP = p.Redis
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(p.Config))
		r.Get("/ready", controllers.HealthReady(p.Config, p.Logger, dbP, redisP))
	})

	if p.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(p.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		// Original storefront contract, bare response shapes.
		r.Get("/health", controllers.Health())
		r.Post("/create-payment-intent", controllers.CreatePaymentIntent(p.Payments, p.Logger))
		r.Get("/payment-status/{paymentIntentId}", controllers.PaymentStatus(p.Payments, p.Logger))

		r.Get("/menu", controllers.Menu())
		r.Get("/menu/{productId}", controllers.MenuItem(p.Logger))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartGet(p.Cart, p.Logger))
			r.Delete("/", controllers.CartClear(p.Cart, p.Logger))
			r.Post("/items", controllers.CartAddItem(p.Cart, p.Logger))
			r.Put("/items/{productId}", controllers.CartSetQuantity(p.Cart, p.Logger))
			r.Delete("/items/{productId}", controllers.CartRemoveItem(p.Cart, p.Logger))
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Get("/", controllers.CheckoutState(p.Checkout, p.Logger))
			r.Post("/", controllers.CheckoutStart(p.Checkout, p.Logger))
			r.Post("/confirm", controllers.CheckoutConfirm(p.Checkout, p.Logger))
			r.Post("/resume", controllers.CheckoutResume(p.Checkout, p.Logger))
		})

		r.Get("/orders", controllers.OrdersList(p.Orders, p.Logger))
	})

	return r
}
