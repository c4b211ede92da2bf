package cart

import (
	"fmt"
	"time"

	"github.com/angelmondragon/cartreserve-backend/internal/delivery"
	"github.com/angelmondragon/cartreserve-backend/internal/inventory"
	"github.com/angelmondragon/cartreserve-backend/pkg/auth/session"
	"github.com/angelmondragon/cartreserve-backend/pkg/config"
	"github.com/angelmondragon/cartreserve-backend/pkg/db"
	"github.com/angelmondragon/cartreserve-backend/pkg/logger"
	"github.com/angelmondragon/cartreserve-backend/pkg/metrics"
	"github.com/angelmondragon/cartreserve-backend/pkg/outbox"
)

// Deps are the shared clients every process assembles a cart service from.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       *db.Client
	Sessions session.Backend
	Metrics  *metrics.ReservationMetrics
	Now      func() time.Time
}

// Build wires the ledger, delivery catalog, session selections and outbox
// into a cart service.
func Build(deps Deps) (Service, error) {
	if deps.Config == nil {
		return nil, fmt.Errorf("config required")
	}
	if deps.DB == nil {
		return nil, fmt.Errorf("db client required")
	}
	conn := deps.DB.DB()

	ledger, err := inventory.NewLedger(inventory.NewRepository(conn), deps.Logger)
	if err != nil {
		return nil, fmt.Errorf("inventory ledger: %w", err)
	}
	deliveryService, err := delivery.NewService(delivery.NewRepository(conn))
	if err != nil {
		return nil, fmt.Errorf("delivery service: %w", err)
	}
	selections, err := session.NewStore(deps.Sessions, deps.Config.JWT.SessionTTL())
	if err != nil {
		return nil, fmt.Errorf("session store: %w", err)
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return NewService(ServiceParams{
		Tx:         deps.DB,
		Repo:       NewRepository(conn),
		Ledger:     ledger,
		Selections: selections,
		Delivery:   deliveryService,
		Outbox:     outbox.NewService(outbox.NewRepository(conn), deps.Logger),
		Metrics:    deps.Metrics,
		Logger:     deps.Logger,
		Config:     deps.Config.Cart,
		Now:        now,
	})
}
