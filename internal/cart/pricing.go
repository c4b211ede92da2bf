package cart

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/cartreserve-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/cartreserve-backend/pkg/errors"
)

// Money is always truncated toward zero at two decimal places.
func truncateMoney(d decimal.Decimal) decimal.Decimal {
	return d.Truncate(2)
}

func subtotalOf(lines []models.CartLineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, line := range lines {
		sum = sum.Add(line.LineTotal())
	}
	return truncateMoney(sum)
}

func countOf(lines []models.CartLineItem) int {
	n := 0
	for _, line := range lines {
		n += line.Quantity
	}
	return n
}

func (s *service) Summary(ctx context.Context, sessionKey string) (*Summary, error) {
	lines, err := s.Items(ctx, sessionKey)
	if err != nil {
		return nil, err
	}
	deliveryPrice, err := s.selectedDeliveryPrice(ctx, sessionKey)
	if err != nil {
		return nil, err
	}
	subtotal := subtotalOf(lines)
	latest := latestExpiryOf(lines)
	return &Summary{
		Items:         lines,
		Count:         countOf(lines),
		Subtotal:      subtotal,
		DeliveryPrice: deliveryPrice,
		Total:         truncateMoney(subtotal.Add(deliveryPrice)),
		LatestExpiry:  latest,
		Remaining:     remainingUntil(latest, s.clock()),
	}, nil
}

// selectedDeliveryPrice is zero until a delivery option is chosen. A choice
// that has since been retired also prices at zero.
func (s *service) selectedDeliveryPrice(ctx context.Context, sessionKey string) (decimal.Decimal, error) {
	sel, err := s.selections.Load(ctx, sessionKey)
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load session selections")
	}
	if !sel.HasDelivery() {
		return decimal.Zero, nil
	}
	option, err := s.delivery.Get(ctx, *sel.DeliveryID)
	if err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
			return decimal.Zero, nil
		}
		return decimal.Zero, err
	}
	return truncateMoney(option.Price), nil
}

func (s *service) ListDeliveryOptions(ctx context.Context) ([]models.DeliveryOption, error) {
	return s.delivery.ListActive(ctx)
}

// UpdateDelivery records the chosen option and prices the cart with it.
func (s *service) UpdateDelivery(ctx context.Context, sessionKey string, deliveryOptionID uuid.UUID) (*DeliveryQuote, error) {
	if err := validateSessionKey(sessionKey); err != nil {
		return nil, err
	}
	option, err := s.delivery.Get(ctx, deliveryOptionID)
	if err != nil {
		return nil, err
	}
	lines, err := s.Items(ctx, sessionKey)
	if err != nil {
		return nil, err
	}
	if err := s.selections.SetDelivery(ctx, sessionKey, option.ID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store delivery selection")
	}
	deliveryPrice := truncateMoney(option.Price)
	return &DeliveryQuote{
		DeliveryPrice: deliveryPrice,
		Total:         truncateMoney(subtotalOf(lines).Add(deliveryPrice)),
	}, nil
}
