package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shoplane/storefront-backend/api/controllers"
	"github.com/shoplane/storefront-backend/api/middleware"
	promosvc "github.com/shoplane/storefront-backend/internal/promo"
	"github.com/shoplane/storefront-backend/internal/storefront"
	"github.com/shoplane/storefront-backend/pkg/config"
	"github.com/shoplane/storefront-backend/pkg/logger"
	"github.com/shoplane/storefront-backend/pkg/upstream"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	registry *storefront.Registry,
	platform *upstream.Client,
	promoCatalog *promosvc.Catalog,
	metricsReg *prometheus.Registry,
	readiness ...controllers.NamedPinger,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readiness...))
	})

	if metricsReg != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(metricsReg, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/login", controllers.AuthLogin(platform, cfg.Session, logg))
		r.Post("/signup", controllers.AuthSignup(platform, cfg.Session, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Session(cfg.Session, logg))

		r.Route("/catalog", func(r chi.Router) {
			r.Get("/products", controllers.ProductsList(platform, logg))
			r.Get("/products/{productID}", controllers.ProductGet(platform, logg))
			r.Get("/categories", controllers.CategoriesList(platform, logg))
			r.Get("/assets", controllers.AssetConfigGet(platform, logg))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartGet(registry, logg))
			r.Delete("/", controllers.CartClear(registry, logg))
			r.Post("/items", controllers.CartAddItem(registry, logg))
			r.Patch("/items/{productID}", controllers.CartUpdateItem(registry, logg))
			r.Delete("/items/{productID}", controllers.CartRemoveItem(registry, logg))
		})

		r.Route("/promos", func(r chi.Router) {
			r.Get("/", controllers.PromoList(promoCatalog, logg))
			r.Post("/apply", controllers.PromoApply(registry, logg))
			r.Delete("/applied", controllers.PromoClear(registry, logg))
		})

		r.Route("/summary", func(r chi.Router) {
			r.Get("/", controllers.SummaryGet(registry, logg))
			r.Put("/address", controllers.SummarySetAddress(registry, logg))
		})

		r.Route("/wishlist", func(r chi.Router) {
			r.Get("/", controllers.WishlistGet(registry, logg))
			r.Post("/items", controllers.WishlistAdd(registry, logg))
			r.Delete("/items/{productID}", controllers.WishlistRemove(registry, logg))
			r.Post("/toggle", controllers.WishlistToggle(registry, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAccount(logg))

			r.Post("/checkout", controllers.Checkout(registry, platform, logg))

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.OrdersList(platform, logg))
				r.Get("/{orderID}", controllers.OrderGet(platform, logg))
				r.Post("/{orderID}/cancel", controllers.OrderCancel(platform, logg))
			})

			r.Route("/wallet", func(r chi.Router) {
				r.Get("/balance", controllers.WalletBalance(platform, logg))
				r.Get("/transactions", controllers.WalletTransactions(platform, logg))
				r.Post("/points/preview", controllers.PointsPreview(platform, logg))
				r.Post("/points/redeem", controllers.PointsRedeem(platform, logg))
			})

			r.Get("/account/profile", controllers.AuthProfile(platform, logg))
		})
	})

	return r
}
