package cart

import (
	"github.com/shopspring/decimal"

	cartdto "github.com/angelmondragon/cartreserve-backend/api/controllers/cart/dto"
	cartsvc "github.com/angelmondragon/cartreserve-backend/internal/cart"
	"github.com/angelmondragon/cartreserve-backend/pkg/db/models"
)

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func newLineItem(line models.CartLineItem) cartdto.LineItem {
	return cartdto.LineItem{
		ID:            line.ID,
		InventoryID:   line.InventoryID,
		ProductID:     line.ProductID,
		Variety:       line.Variety,
		Quantity:      line.Quantity,
		UnitSalePrice: money(line.UnitSalePrice),
		LineTotal:     money(line.LineTotal().Truncate(2)),
		ExpiresAt:     line.ExpiresAt,
	}
}

func newRemaining(r cartsvc.Remaining) cartdto.Remaining {
	out := cartdto.Remaining{Minutes: r.Minutes, Seconds: r.Seconds, Expired: r.Expired}
	if !r.ExpiresAt.IsZero() {
		at := r.ExpiresAt
		out.ExpiresAt = &at
	}
	return out
}

func newSummary(s *cartsvc.Summary) cartdto.Summary {
	items := make([]cartdto.LineItem, 0, len(s.Items))
	for _, line := range s.Items {
		items = append(items, newLineItem(line))
	}
	return cartdto.Summary{
		Items:         items,
		Count:         s.Count,
		Subtotal:      money(s.Subtotal),
		DeliveryPrice: money(s.DeliveryPrice),
		Total:         money(s.Total),
		Remaining:     newRemaining(s.Remaining),
	}
}
