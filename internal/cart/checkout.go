package cart

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/angelmondragon/cartreserve-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/cartreserve-backend/pkg/errors"
	"github.com/angelmondragon/cartreserve-backend/pkg/outbox"
	"github.com/angelmondragon/cartreserve-backend/pkg/outbox/payloads"
)

// SelectAddress is only allowed once a delivery option has been chosen.
func (s *service) SelectAddress(ctx context.Context, sessionKey, addressID string) error {
	if err := validateSessionKey(sessionKey); err != nil {
		return err
	}
	addressID = strings.TrimSpace(addressID)
	if addressID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "address id is required")
	}
	sel, err := s.selections.Load(ctx, sessionKey)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load session selections")
	}
	if !sel.HasDelivery() {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "please select a delivery option")
	}
	if err := s.selections.SetAddress(ctx, sessionKey, addressID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store address selection")
	}
	return nil
}

// Confirm converts every hold into a sale and hands the priced cart to the
// order service through the outbox.
func (s *service) Confirm(ctx context.Context, sessionKey string) (*Confirmation, error) {
	if err := validateSessionKey(sessionKey); err != nil {
		return nil, err
	}
	sel, err := s.selections.Load(ctx, sessionKey)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load session selections")
	}
	if !sel.HasDelivery() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "please select a delivery option")
	}
	if !sel.HasAddress() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "please select a delivery address")
	}
	option, err := s.delivery.Get(ctx, *sel.DeliveryID)
	if err != nil {
		return nil, err
	}

	now := s.clock()
	var (
		confirmation *Confirmation
		consumed     int
	)
	err = s.withRetry(ctx, "confirm", func(tx *gorm.DB) error {
		confirmation, consumed = nil, 0
		lines, err := s.repo.ListBySessionTx(tx, sessionKey)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list cart lines")
		}
		if len(lines) == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "cart is empty")
		}
		if !latestExpiryOf(lines).After(now) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "cart reservation expired")
		}
		for _, line := range lockOrder(lines) {
			ok, err := s.repo.DeleteLineTx(tx, line.ID, line.Quantity)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete cart line")
			}
			if !ok {
				return errLineChanged
			}
			if err := s.ledger.Consume(ctx, tx, line.InventoryID, line.Quantity); err != nil {
				return err
			}
			consumed += line.Quantity
		}

		subtotal := subtotalOf(lines)
		deliveryPrice := truncateMoney(option.Price)
		confirmation = &Confirmation{
			SessionKey:       sessionKey,
			Items:            lines,
			Subtotal:         subtotal,
			DeliveryPrice:    deliveryPrice,
			Total:            truncateMoney(subtotal.Add(deliveryPrice)),
			DeliveryOptionID: option.ID,
			AddressID:        sel.AddressID,
			ConfirmedAt:      now,
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventCartCheckedOut,
			AggregateType: enums.AggregateCart,
			AggregateID:   sessionKey,
			OccurredAt:    now,
			Data: payloads.CartCheckedOutEvent{
				SessionKey:       sessionKey,
				Lines:            snapshotLines(lines),
				Subtotal:         confirmation.Subtotal,
				DeliveryPrice:    confirmation.DeliveryPrice,
				Total:            confirmation.Total,
				DeliveryOptionID: option.ID,
				AddressID:        sel.AddressID,
				ConfirmedAt:      now,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	s.metrics.AddConsumed(consumed)
	if err := s.selections.Clear(ctx, sessionKey); err != nil {
		s.logg.Warn(s.logg.WithSessionKey(ctx, sessionKey), "failed to clear confirmed cart session selections")
	}
	return confirmation, nil
}

// Clear empties the cart, returning its holds to stock, and forgets the
// session's checkout selections. Clearing an unknown session succeeds.
func (s *service) Clear(ctx context.Context, sessionKey string) error {
	if err := validateSessionKey(sessionKey); err != nil {
		return err
	}
	var released int
	err := s.withRetry(ctx, "clear", func(tx *gorm.DB) error {
		released = 0
		lines, err := s.repo.ListBySessionTx(tx, sessionKey)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list cart lines")
		}
		if len(lines) == 0 {
			return nil
		}
		for _, line := range lockOrder(lines) {
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
			released += line.Quantity
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventCartCleared,
			AggregateType: enums.AggregateCart,
			AggregateID:   sessionKey,
			Data: payloads.CartClearedEvent{
				SessionKey:    sessionKey,
				Lines:         snapshotLines(lines),
				ReleasedUnits: released,
			},
		})
	})
	if err != nil {
		return err
	}
	s.metrics.AddReleased(enums.ReleaseCleared.String(), released)
	if err := s.selections.Clear(ctx, sessionKey); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear session selections")
	}
	return nil
}
