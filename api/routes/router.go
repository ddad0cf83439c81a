package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/fidgetclicks/fidgetclicks-backend/api/controllers"
	"github.com/fidgetclicks/fidgetclicks-backend/api/middleware"
	"github.com/fidgetclicks/fidgetclicks-backend/internal/catalog"
	"github.com/fidgetclicks/fidgetclicks-backend/internal/inventory"
	"github.com/fidgetclicks/fidgetclicks-backend/internal/keyboards"
	"github.com/fidgetclicks/fidgetclicks-backend/internal/orders"
	"github.com/fidgetclicks/fidgetclicks-backend/pkg/config"
	"github.com/fidgetclicks/fidgetclicks-backend/pkg/logger"
	pkgredis "github.com/fidgetclicks/fidgetclicks-backend/pkg/redis"
)

type Services struct {
	Catalog   catalog.Service
	Keyboards keyboards.Service
	Orders    orders.Service
	Inventory inventory.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	db *gorm.DB,
	redisClient *pkgredis.Client,
	registry *prometheus.Registry,
	services Services,
) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, db, redisClient, logg))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Idempotency(redisClient, logg, cfg.Idempotency.OrderTTL))

		r.Route("/components", func(r chi.Router) {
			r.Get("/", controllers.ListComponents(services.Catalog, logg))
			r.Post("/", controllers.CreateComponent(services.Catalog, logg))
			r.Get("/{componentID}", controllers.GetComponent(services.Catalog, logg))
			r.Patch("/{componentID}", controllers.UpdateComponent(services.Catalog, logg))
			r.Delete("/{componentID}", controllers.DeleteComponent(services.Catalog, logg))
			r.Put("/{componentID}/quantity", controllers.SetComponentQuantity(services.Catalog, logg))
		})

		r.Route("/keyboards", func(r chi.Router) {
			r.Get("/", controllers.ListKeyboards(services.Keyboards, logg))
			r.Post("/", controllers.CreateKeyboard(services.Keyboards, logg))
			r.Get("/{keyboardID}", controllers.GetKeyboard(services.Keyboards, logg))
			r.Patch("/{keyboardID}", controllers.UpdateKeyboard(services.Keyboards, logg))
			r.Delete("/{keyboardID}", controllers.DeleteKeyboard(services.Keyboards, logg))
			r.Post("/{keyboardID}/recalculate-cost", controllers.RecalculateKeyboardCost(services.Keyboards, logg))
			r.Get("/{keyboardID}/availability", controllers.KeyboardAvailability(services.Keyboards, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.ListOrders(services.Orders, logg))
			r.Post("/", controllers.CreateOrder(services.Orders, logg))
			r.Get("/{orderID}", controllers.GetOrder(services.Orders, logg))
			r.Patch("/{orderID}/status", controllers.UpdateOrderStatus(services.Orders, logg))
			r.Post("/{orderID}/cancel", controllers.CancelOrder(services.Orders, logg))
		})

		r.Get("/inventory/snapshot", controllers.InventorySnapshot(services.Inventory, logg))
	})

	return r
}
