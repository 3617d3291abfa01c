package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/arscode/arscode-backend/api/controllers"
	"github.com/arscode/arscode-backend/api/middleware"
	authsvc "github.com/arscode/arscode-backend/internal/auth"
	cartsvc "github.com/arscode/arscode-backend/internal/cart"
	"github.com/arscode/arscode-backend/internal/catalog"
	checkoutsvc "github.com/arscode/arscode-backend/internal/checkout"
	couponsvc "github.com/arscode/arscode-backend/internal/coupons"
	"github.com/arscode/arscode-backend/internal/customers"
	"github.com/arscode/arscode-backend/internal/ledger"
	"github.com/arscode/arscode-backend/internal/reports"
	"github.com/arscode/arscode-backend/pkg/config"
	"github.com/arscode/arscode-backend/pkg/db"
	"github.com/arscode/arscode-backend/pkg/logger"
	"github.com/arscode/arscode-backend/pkg/redis"
)

// NewRouter wires every HTTP endpoint. Credential endpoints are rate limited
// when a redis client is available; admin endpoints require an admin token.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	authService authsvc.Service,
	customerService customers.Service,
	catalogService catalog.Service,
	cartService cartsvc.Service,
	couponService couponsvc.Service,
	checkoutService checkoutsvc.Service,
	ledgerService ledger.Service,
	reportsService reports.Service,
	ordersRepo *checkoutsvc.Repository,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)
	limit := func(policy middleware.AuthRateLimitPolicy) func(http.Handler) http.Handler {
		if redisClient == nil {
			return func(next http.Handler) http.Handler { return next }
		}
		return middleware.AuthRateLimit(redisClient, policy, logg)
	}

	r.Get("/health", controllers.Health(dbP, redisClient, logg))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(limit(registerPolicy)).Post("/register", controllers.Register(customerService, logg))
		r.With(limit(loginPolicy)).Post("/login", controllers.Login(authService, logg))
	})

	r.Route("/api/v1/catalog", func(r chi.Router) {
		r.Get("/products", controllers.ListProducts(catalogService, logg))
		r.Get("/products/{productID}", controllers.GetProduct(catalogService, logg))
		r.Get("/categories", controllers.ListCategories(catalogService, logg))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/v1/cart", func(r chi.Router) {
			r.Get("/", controllers.GetCart(cartService, logg))
			r.Post("/items", controllers.AddCartItem(cartService, logg))
			r.Put("/items/{productID}", controllers.UpdateCartItem(cartService, logg))
			r.Delete("/items/{productID}", controllers.RemoveCartItem(cartService, logg))
			r.Delete("/", controllers.ClearCart(cartService, logg))
		})

		r.Route("/v1/checkout", func(r chi.Router) {
			r.Post("/quote", controllers.QuoteCheckout(checkoutService, logg))
			r.Post("/", controllers.ExecuteCheckout(checkoutService, logg))
		})
		r.Get("/v1/orders", controllers.ListOrders(ordersRepo, logg))

		r.Route("/v1/account", func(r chi.Router) {
			r.Get("/", controllers.GetAccount(customerService, logg))
			r.Post("/topup", controllers.TopUpBalance(customerService, logg))
			r.Get("/ledger", controllers.ListLedgerEntries(ledgerService, logg))
		})

		r.Route("/v1/admin", func(r chi.Router) {
			r.Use(middleware.RequireAdmin(logg))

			r.Post("/products", controllers.CreateProduct(catalogService, logg))
			r.Put("/products/{productID}/discount", controllers.SetProductDiscount(catalogService, logg))
			r.Post("/products/{productID}/restock", controllers.RestockProduct(catalogService, logg))

			r.Post("/categories", controllers.CreateCategory(catalogService, logg))
			r.Put("/categories/{categoryID}/discount", controllers.SetCategoryDiscount(catalogService, logg))

			r.Get("/storefront/discount", controllers.GetStorefrontDiscount(catalogService, logg))
			r.Put("/storefront/discount", controllers.SetStorefrontDiscount(catalogService, logg))

			r.Route("/coupons", func(r chi.Router) {
				r.Post("/", controllers.CreateCoupon(couponService, logg))
				r.Get("/", controllers.ListCoupons(couponService, logg))
				r.Delete("/{code}", controllers.DeactivateCoupon(couponService, logg))
			})

			r.Route("/reports", func(r chi.Router) {
				r.Get("/revenue", controllers.RevenueReport(reportsService, logg))
				r.Get("/top-products", controllers.TopProductsReport(reportsService, logg))
				r.Get("/discount-performance", controllers.DiscountPerformanceReport(reportsService, logg))
			})
		})
	})

	return r
}
