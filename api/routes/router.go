package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/cartreserve-backend/api/controllers"
	cartcontrollers "github.com/angelmondragon/cartreserve-backend/api/controllers/cart"
	checkoutcontrollers "github.com/angelmondragon/cartreserve-backend/api/controllers/checkout"
	"github.com/angelmondragon/cartreserve-backend/api/middleware"
	"github.com/angelmondragon/cartreserve-backend/internal/cart"
	"github.com/angelmondragon/cartreserve-backend/pkg/config"
	"github.com/angelmondragon/cartreserve-backend/pkg/logger"
	"github.com/angelmondragon/cartreserve-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP controllers.Pinger,
	redisP controllers.Pinger,
	idempotencyStore redis.IdempotencyStore,
	gatherer prometheus.Gatherer,
	cartService cart.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"postgres": dbP,
			"redis":    redisP,
		}))
	})
	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	idempotent := middleware.Idempotency(idempotencyStore, logg)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.CartSession(cfg.JWT, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartcontrollers.CartSummary(cartService, logg))
			r.Delete("/", cartcontrollers.CartClear(cartService, logg))
			r.Get("/expiry", cartcontrollers.CartExpiry(cartService, logg))
			r.With(idempotent).Post("/items", cartcontrollers.CartAddItem(cartService, logg))
			r.Put("/items/{inventoryId}", cartcontrollers.CartUpdateItem(cartService, logg))
			r.Delete("/items/{inventoryId}", cartcontrollers.CartRemoveItem(cartService, logg))
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Get("/delivery-options", checkoutcontrollers.DeliveryOptions(cartService, logg))
			r.Post("/delivery", checkoutcontrollers.SelectDelivery(cartService, logg))
			r.Post("/address", checkoutcontrollers.SelectAddress(cartService, logg))
			r.With(idempotent).Post("/confirm", checkoutcontrollers.Confirm(cartService, logg))
		})
	})

	return r
}
