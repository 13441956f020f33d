package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mercagoods/storefront-backend/api/controllers"
	"github.com/mercagoods/storefront-backend/api/middleware"
	authsvc "github.com/mercagoods/storefront-backend/internal/auth"
	cartsvc "github.com/mercagoods/storefront-backend/internal/cart"
	"github.com/mercagoods/storefront-backend/internal/catalog"
	checkoutsvc "github.com/mercagoods/storefront-backend/internal/checkout"
	"github.com/mercagoods/storefront-backend/internal/orders"
	"github.com/mercagoods/storefront-backend/pkg/config"
	"github.com/mercagoods/storefront-backend/pkg/logger"
	"github.com/mercagoods/storefront-backend/pkg/metrics"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Config      *config.Config
	Logger      *logger.Logger
	HTTPMetrics *metrics.HTTPMetrics
	Gatherer    prometheus.Gatherer

	ReadyChecks map[string]controllers.Pinger

	CartManager     *cartsvc.Manager
	CatalogService  catalog.Service
	CheckoutService checkoutsvc.Service
	OrdersService   orders.Service
	AuthService     authsvc.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.HTTPMetrics),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.ReadyChecks))
	})

	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Session(logg))
		r.Use(middleware.OptionalAuth(cfg.JWT, logg))

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", controllers.AuthRegister(deps.AuthService, logg))
			r.Post("/login", controllers.AuthLogin(deps.AuthService, logg))
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductList(deps.CatalogService, logg))
			r.Get("/{productID}", controllers.ProductDetail(deps.CatalogService, logg))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartFetch(deps.CartManager, logg))
			r.Delete("/", controllers.CartClear(deps.CartManager, logg))
			r.Post("/items", controllers.CartAddItem(deps.CartManager, deps.CatalogService, logg))
			r.Patch("/items/{itemID}", controllers.CartUpdateItem(deps.CartManager, logg))
			r.Delete("/items/{itemID}", controllers.CartRemoveItem(deps.CartManager, logg))
			r.Put("/addresses", controllers.CartSetAddresses(deps.CartManager, logg))
			r.Put("/payment-method", controllers.CartSetPaymentMethod(deps.CartManager, logg))
			r.Put("/coupon", controllers.CartSetCoupon(deps.CartManager, logg))
		})

		r.Post("/checkout", controllers.Checkout(deps.CheckoutService, deps.CartManager, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.OrderList(deps.OrdersService, logg))
			r.Get("/{orderID}", controllers.OrderDetail(deps.OrdersService, logg))
		})
	})

	return r
}
