package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tiendahub/tienda-backend/api/controllers"
	"github.com/tiendahub/tienda-backend/api/middleware"
	product "github.com/tiendahub/tienda-backend/internal/products"
	"github.com/tiendahub/tienda-backend/internal/purchases"
	"github.com/tiendahub/tienda-backend/internal/returns"
	"github.com/tiendahub/tienda-backend/internal/sales"
	"github.com/tiendahub/tienda-backend/internal/shrinkage"
	"github.com/tiendahub/tienda-backend/internal/stores"
	"github.com/tiendahub/tienda-backend/pkg/config"
	"github.com/tiendahub/tienda-backend/pkg/db"
	"github.com/tiendahub/tienda-backend/pkg/logger"
	"github.com/tiendahub/tienda-backend/pkg/metrics"
)

// Services bundles everything the router wires into handlers.
type Services struct {
	Stores    stores.Service
	Products  product.Service
	Sales     sales.Service
	Purchases purchases.Service
	Returns   returns.Service
	Shrinkage shrinkage.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	registry *prometheus.Registry,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()

	var registerer prometheus.Registerer
	if registry != nil {
		registerer = registry
	}
	httpMetrics := metrics.NewHTTPMetrics(registerer)

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS.ExtraOrigins...),
		httpMetrics.Middleware,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.ActorContext(logg))
		r.Use(middleware.RequireActor(logg))

		r.Route("/stores", func(r chi.Router) {
			r.Post("/", controllers.StoreCreate(svcs.Stores, logg))
			r.Get("/", controllers.StoreList(svcs.Stores, logg))
			r.Route("/me", func(r chi.Router) {
				r.Use(middleware.StoreContext(logg))
				r.Get("/", controllers.StoreProfile(svcs.Stores, logg))
				r.Put("/", controllers.StoreUpdate(svcs.Stores, logg))
				r.Delete("/", controllers.StoreDeactivate(svcs.Stores, logg))
			})
		})

		// Everything below operates on the active store.
		r.Group(func(r chi.Router) {
			r.Use(middleware.StoreContext(logg))

			r.Route("/products", func(r chi.Router) {
				r.Post("/", controllers.ProductCreate(svcs.Products, logg))
				r.Get("/", controllers.ProductList(svcs.Products, logg))
				r.Get("/search", controllers.ProductSearch(svcs.Products, logg))
				r.Get("/low-stock", controllers.ProductLowStock(svcs.Products, logg))
				r.Get("/{productId}", controllers.ProductGet(svcs.Products, logg))
				r.Patch("/{productId}", controllers.ProductUpdate(svcs.Products, logg))
				r.Delete("/{productId}", controllers.ProductDeactivate(svcs.Products, logg))
			})

			r.Route("/sales", func(r chi.Router) {
				r.Post("/", controllers.SaleCreate(svcs.Sales, logg))
				r.Get("/", controllers.SaleList(svcs.Sales, logg))
				r.Get("/{saleId}", controllers.SaleGet(svcs.Sales, logg))
				r.Patch("/{saleId}", controllers.SaleUpdate(svcs.Sales, logg))
				r.Post("/{saleId}/cancel", controllers.SaleCancel(svcs.Sales, logg))
				r.Post("/{saleId}/returns", controllers.ReturnCreate(svcs.Returns, logg))
				r.Get("/{saleId}/returns", controllers.SaleReturns(svcs.Returns, logg))
			})

			r.Route("/purchases", func(r chi.Router) {
				r.Post("/", controllers.PurchaseCreate(svcs.Purchases, logg))
				r.Get("/", controllers.PurchaseList(svcs.Purchases, logg))
				r.Get("/{purchaseId}", controllers.PurchaseGet(svcs.Purchases, logg))
				r.Put("/{purchaseId}", controllers.PurchaseUpdate(svcs.Purchases, logg))
			})

			r.Route("/shrinkages", func(r chi.Router) {
				r.Post("/", controllers.ShrinkageCreate(svcs.Shrinkage, logg))
				r.Get("/", controllers.ShrinkageList(svcs.Shrinkage, logg))
			})
		})
	})

	return r
}
