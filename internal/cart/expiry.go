package cart

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/angelmondragon/cartreserve-backend/pkg/db/models"
	"github.com/angelmondragon/cartreserve-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/cartreserve-backend/pkg/errors"
	"github.com/angelmondragon/cartreserve-backend/pkg/outbox"
	"github.com/angelmondragon/cartreserve-backend/pkg/outbox/payloads"
)

var errSessionRefreshed = errors.New("cart session refreshed during sweep")

func latestExpiryOf(lines []models.CartLineItem) time.Time {
	var latest time.Time
	for _, line := range lines {
		if line.ExpiresAt.After(latest) {
			latest = line.ExpiresAt
		}
	}
	return latest
}

// remainingUntil floors the time left to whole minutes and seconds. A past or
// missing expiry yields zero with Expired set.
func remainingUntil(expiresAt, now time.Time) Remaining {
	left := expiresAt.Sub(now)
	if expiresAt.IsZero() || left <= 0 {
		return Remaining{Expired: true, ExpiresAt: expiresAt}
	}
	secs := int(left / time.Second)
	return Remaining{
		Minutes:   secs / 60,
		Seconds:   secs % 60,
		ExpiresAt: expiresAt,
	}
}

// LatestExpiry is the zero time for an empty cart.
func (s *service) LatestExpiry(ctx context.Context, sessionKey string) (time.Time, error) {
	lines, err := s.Items(ctx, sessionKey)
	if err != nil {
		return time.Time{}, err
	}
	return latestExpiryOf(lines), nil
}

func (s *service) ExpiryRemaining(ctx context.Context, sessionKey string) (Remaining, error) {
	latest, err := s.LatestExpiry(ctx, sessionKey)
	if err != nil {
		return Remaining{}, err
	}
	return remainingUntil(latest, s.clock()), nil
}

// ExtendForCheckout gives every line the checkout window, counted from the
// newest hold but never reaching past now plus the window. Any earlier
// delivery choice is dropped so it is made again against the new window.
func (s *service) ExtendForCheckout(ctx context.Context, sessionKey string) (time.Time, error) {
	if err := validateSessionKey(sessionKey); err != nil {
		return time.Time{}, err
	}
	now := s.clock()
	var extended time.Time
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		lines, err := s.repo.ListBySessionTx(tx, sessionKey)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list cart lines")
		}
		if len(lines) == 0 {
			return nil
		}
		target := latestExpiryOf(lines).Add(s.cfg.CheckoutWindow)
		if limit := now.Add(s.cfg.CheckoutWindow); target.After(limit) {
			target = limit
		}
		if _, err := s.repo.SetExpiryTx(tx, sessionKey, target); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "extend cart expiry")
		}
		extended = target
		return nil
	})
	if err != nil {
		return time.Time{}, err
	}
	if err := s.selections.ResetDelivery(ctx, sessionKey); err != nil {
		return time.Time{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reset delivery selection")
	}
	return extended, nil
}

func (s *service) ExpiredSessions(ctx context.Context, cutoff time.Time, limit int) ([]string, error) {
	return s.repo.ExpiredSessions(ctx, cutoff.UTC(), limit)
}

// ReleaseExpired returns a session's holds to stock once every line has
// expired. A session with any live line, or one touched while being swept,
// is left alone and reports zero units.
func (s *service) ReleaseExpired(ctx context.Context, sessionKey string, cutoff time.Time) (int, error) {
	cutoff = cutoff.UTC()
	var (
		released int
		snapshot []payloads.CartLine
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		released, snapshot = 0, nil
		lines, err := s.repo.ListBySessionTx(tx, sessionKey)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return nil
		}
		for _, line := range lines {
			if !line.ExpiresAt.Before(cutoff) {
				return nil
			}
		}
		for _, line := range lockOrder(lines) {
			ok, err := s.repo.DeleteExpiredLineTx(tx, line.ID, line.Quantity, cutoff)
			if err != nil {
				return err
			}
			if !ok {
				return errSessionRefreshed
			}
			if err := s.ledger.Release(ctx, tx, line.InventoryID, line.Quantity); err != nil {
				return err
			}
			released += line.Quantity
		}
		snapshot = snapshotLines(lines)
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventCartReservationExpired,
			AggregateType: enums.AggregateCart,
			AggregateID:   sessionKey,
			Data: payloads.CartReservationExpiredEvent{
				SessionKey:    sessionKey,
				Lines:         snapshot,
				ReleasedUnits: released,
				ExpiredAt:     latestExpiryOf(lines),
			},
		})
	})
	if errors.Is(err, errSessionRefreshed) {
		s.logg.Debug(s.logg.WithSessionKey(ctx, sessionKey), "cart refreshed while sweeping, skipped")
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if released == 0 {
		return 0, nil
	}
	s.metrics.AddReleased(enums.ReleaseExpired.String(), released)
	if err := s.selections.Clear(ctx, sessionKey); err != nil {
		s.logg.Warn(s.logg.WithSessionKey(ctx, sessionKey), "failed to clear expired cart session selections")
	}
	return released, nil
}

func snapshotLines(lines []models.CartLineItem) []payloads.CartLine {
	out := make([]payloads.CartLine, 0, len(lines))
	for _, line := range lines {
		out = append(out, payloads.CartLine{
			InventoryID:   line.InventoryID,
			ProductID:     line.ProductID,
			Variety:       line.Variety,
			Quantity:      line.Quantity,
			UnitSalePrice: line.UnitSalePrice,
		})
	}
	return out
}
