package cart

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/cartreserve-backend/internal/inventory"
	"github.com/angelmondragon/cartreserve-backend/pkg/config"
	"github.com/angelmondragon/cartreserve-backend/pkg/db"
	"github.com/angelmondragon/cartreserve-backend/pkg/db/models"
	"github.com/angelmondragon/cartreserve-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/cartreserve-backend/pkg/errors"
	"github.com/angelmondragon/cartreserve-backend/pkg/logger"
	"github.com/angelmondragon/cartreserve-backend/pkg/metrics"
)

const lineUniqueConstraint = "cart_line_items_session_inventory_key"

var errLineChanged = errors.New("cart line changed concurrently")

// Service is the session cart: every line it holds is backed by reserved stock.
type Service interface {
	Add(ctx context.Context, sessionKey string, input AddInput) (*models.CartLineItem, error)
	Update(ctx context.Context, sessionKey string, inventoryID uuid.UUID, quantity int) (*models.CartLineItem, error)
	Remove(ctx context.Context, sessionKey string, inventoryID uuid.UUID) error
	Items(ctx context.Context, sessionKey string) ([]models.CartLineItem, error)
	Quantities(ctx context.Context, sessionKey string) (map[uuid.UUID]int, error)
	Summary(ctx context.Context, sessionKey string) (*Summary, error)
	LatestExpiry(ctx context.Context, sessionKey string) (time.Time, error)
	ExpiryRemaining(ctx context.Context, sessionKey string) (Remaining, error)
	ExtendForCheckout(ctx context.Context, sessionKey string) (time.Time, error)
	Clear(ctx context.Context, sessionKey string) error
	ListDeliveryOptions(ctx context.Context) ([]models.DeliveryOption, error)
	UpdateDelivery(ctx context.Context, sessionKey string, deliveryOptionID uuid.UUID) (*DeliveryQuote, error)
	SelectAddress(ctx context.Context, sessionKey, addressID string) error
	Confirm(ctx context.Context, sessionKey string) (*Confirmation, error)
	ReleaseExpired(ctx context.Context, sessionKey string, cutoff time.Time) (int, error)
	ExpiredSessions(ctx context.Context, cutoff time.Time, limit int) ([]string, error)
}

// ServiceParams wires the cart service.
type ServiceParams struct {
	Tx         txRunner
	Repo       LineRepository
	Ledger     stockLedger
	Selections selectionStore
	Delivery   deliveryCatalog
	Outbox     outboxEmitter
	Metrics    *metrics.ReservationMetrics
	Logger     *logger.Logger
	Config     config.CartConfig
	Now        func() time.Time
}

type service struct {
	tx         txRunner
	repo       LineRepository
	ledger     stockLedger
	selections selectionStore
	delivery   deliveryCatalog
	outbox     outboxEmitter
	metrics    *metrics.ReservationMetrics
	logg       *logger.Logger
	cfg        config.CartConfig
	now        func() time.Time
}

// NewService builds a cart service backed by the provided stack.
func NewService(p ServiceParams) (Service, error) {
	switch {
	case p.Tx == nil:
		return nil, fmt.Errorf("transaction runner required")
	case p.Repo == nil:
		return nil, fmt.Errorf("cart repository required")
	case p.Ledger == nil:
		return nil, fmt.Errorf("inventory ledger required")
	case p.Selections == nil:
		return nil, fmt.Errorf("session store required")
	case p.Delivery == nil:
		return nil, fmt.Errorf("delivery catalog required")
	case p.Outbox == nil:
		return nil, fmt.Errorf("outbox service required")
	}
	if p.Config.HoldWindow <= 0 || p.Config.CheckoutWindow <= 0 {
		return nil, fmt.Errorf("cart hold windows must be positive")
	}
	if p.Config.MaxLineQuantity < 1 {
		return nil, fmt.Errorf("cart max line quantity must be at least 1")
	}
	if p.Config.MaxAttempts < 1 {
		p.Config.MaxAttempts = 1
	}
	if p.Logger == nil {
		p.Logger = logger.Nop()
	}
	if p.Now == nil {
		p.Now = time.Now
	}
	return &service{
		tx:         p.Tx,
		repo:       p.Repo,
		ledger:     p.Ledger,
		selections: p.Selections,
		delivery:   p.Delivery,
		outbox:     p.Outbox,
		metrics:    p.Metrics,
		logg:       p.Logger,
		cfg:        p.Config,
		now:        p.Now,
	}, nil
}

// clock returns the service time in UTC at the precision Postgres stores.
func (s *service) clock() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

func (s *service) Add(ctx context.Context, sessionKey string, input AddInput) (*models.CartLineItem, error) {
	if err := validateSessionKey(sessionKey); err != nil {
		return nil, err
	}
	if input.InventoryID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "inventory id is required")
	}
	if input.Quantity < 1 || input.Quantity > s.cfg.MaxLineQuantity {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "quantity must be between 1 and %d", s.cfg.MaxLineQuantity)
	}

	var (
		result   *models.CartLineItem
		delta    int
		rejected bool
		raced    bool
	)
	err := s.withRetry(ctx, "add", func(tx *gorm.DB) error {
		result, delta, rejected, raced = nil, 0, false, false

		record, err := s.ledger.Load(ctx, tx, input.InventoryID)
		if err != nil {
			return err
		}
		if !record.IsActive {
			return pkgerrors.New(pkgerrors.CodeValidation, "inventory is not available for sale")
		}
		if input.ProductID != uuid.Nil && input.ProductID != record.ProductID {
			return pkgerrors.New(pkgerrors.CodeValidation, "inventory does not belong to product")
		}

		existing, err := s.repo.FindLineTx(tx, sessionKey, input.InventoryID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart line")
		}
		held := 0
		if existing != nil {
			held = existing.Quantity
		}

		allowance := record.AvailableQty
		newQty := held + input.Quantity
		if input.Override {
			allowance += held
			newQty = input.Quantity
		}
		if input.Quantity > allowance {
			rejected = true
			return inventory.OverReservation(record, input.Quantity)
		}

		price := input.UnitPrice
		if price.IsZero() {
			price = record.SalePrice
		}
		expiresAt := s.clock().Add(s.cfg.HoldWindow)

		if existing == nil {
			line := &models.CartLineItem{
				SessionKey:    sessionKey,
				InventoryID:   record.ID,
				ProductID:     record.ProductID,
				Variety:       record.AttributeValues,
				Quantity:      newQty,
				UnitSalePrice: price,
				ExpiresAt:     expiresAt,
			}
			if err := s.repo.InsertLineTx(tx, line); err != nil {
				if db.IsUniqueViolation(err, lineUniqueConstraint) {
					return errLineChanged
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert cart line")
			}
			result = line
		} else {
			ok, err := s.repo.UpdateLineTx(tx, existing.ID, held, newQty, price, expiresAt)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart line")
			}
			if !ok {
				return errLineChanged
			}
			existing.Quantity = newQty
			existing.UnitSalePrice = price
			existing.ExpiresAt = expiresAt
			result = existing
		}

		delta = newQty - held
		if err := s.ledger.Adjust(ctx, tx, record.ID, delta); err != nil {
			if pkgerrors.IsCode(err, pkgerrors.CodeOverReservation) {
				raced = true
			}
			return err
		}
		return nil
	})
	if err != nil {
		switch {
		case raced:
			s.metrics.IncConflict("stock")
			s.metrics.IncRejected()
		case rejected:
			s.metrics.IncRejected()
		}
		return nil, err
	}

	if delta > 0 {
		s.metrics.AddReserved(delta)
	} else if delta < 0 {
		s.metrics.AddReleased(enums.ReleaseUpdated.String(), -delta)
	}
	return result, nil
}

func (s *service) Update(ctx context.Context, sessionKey string, inventoryID uuid.UUID, quantity int) (*models.CartLineItem, error) {
	return s.Add(ctx, sessionKey, AddInput{
		InventoryID: inventoryID,
		Quantity:    quantity,
		Override:    true,
	})
}

// Remove is a no-op when the session holds nothing for the inventory.
func (s *service) Remove(ctx context.Context, sessionKey string, inventoryID uuid.UUID) error {
	if err := validateSessionKey(sessionKey); err != nil {
		return err
	}
	var released int
	err := s.withRetry(ctx, "remove", func(tx *gorm.DB) error {
		released = 0
		line, err := s.repo.FindLineTx(tx, sessionKey, inventoryID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart line")
		}
		if line == nil {
			return nil
		}
		ok, err := s.repo.DeleteLineTx(tx, line.ID, line.Quantity)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete cart line")
		}
		if !ok {
			return errLineChanged
		}
		if err := s.ledger.Release(ctx, tx, line.InventoryID, line.Quantity); err != nil {
			return err
		}
		released = line.Quantity
		return nil
	})
	if err != nil {
		return err
	}
	s.metrics.AddReleased(enums.ReleaseRemoved.String(), released)
	return nil
}

func (s *service) Items(ctx context.Context, sessionKey string) ([]models.CartLineItem, error) {
	if err := validateSessionKey(sessionKey); err != nil {
		return nil, err
	}
	lines, err := s.repo.ListBySession(ctx, sessionKey)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list cart lines")
	}
	return lines, nil
}

// Quantities maps each held inventory id to its quantity.
func (s *service) Quantities(ctx context.Context, sessionKey string) (map[uuid.UUID]int, error) {
	lines, err := s.Items(ctx, sessionKey)
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]int, len(lines))
	for _, line := range lines {
		out[line.InventoryID] = line.Quantity
	}
	return out, nil
}

// withRetry reruns fn in a fresh transaction when a line write lost a race or
// Postgres aborted the transaction with a deadlock or serialization failure.
func (s *service) withRetry(ctx context.Context, op string, fn func(tx *gorm.DB) error) error {
	for attempt := 1; ; attempt++ {
		err := s.tx.WithTx(ctx, fn)
		if err == nil {
			return nil
		}
		kind := retryKind(err)
		if kind == "" {
			return err
		}
		s.metrics.IncConflict(kind)
		logCtx := s.logg.WithFields(ctx, map[string]any{"op": op, "attempt": attempt, "conflict": kind})
		s.logg.Warn(logCtx, "cart transaction conflicted")
		if attempt >= s.cfg.MaxAttempts {
			return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "cart was modified concurrently, please retry")
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
	}
}

func retryKind(err error) string {
	switch {
	case errors.Is(err, errLineChanged):
		return "line"
	case db.IsTransientConflict(err):
		return "transaction"
	default:
		return ""
	}
}

// lockOrder returns the lines sorted by inventory id. Paths that touch several
// inventory rows in one transaction walk them in this order.
func lockOrder(lines []models.CartLineItem) []models.CartLineItem {
	out := slices.Clone(lines)
	slices.SortFunc(out, func(a, b models.CartLineItem) int {
		if c := bytes.Compare(a.InventoryID[:], b.InventoryID[:]); c != 0 {
			return c
		}
		return bytes.Compare(a.ID[:], b.ID[:])
	})
	return out
}

func validateSessionKey(sessionKey string) error {
	if strings.TrimSpace(sessionKey) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart session is required")
	}
	return nil
}
