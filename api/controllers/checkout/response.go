package checkout

import (
	"time"

	checkoutdto "github.com/angelmondragon/cartreserve-backend/api/controllers/checkout/dto"
	cartsvc "github.com/angelmondragon/cartreserve-backend/internal/cart"
	"github.com/angelmondragon/cartreserve-backend/pkg/db/models"
)

func newDeliveryOptions(options []models.DeliveryOption, expiresAt time.Time) checkoutdto.DeliveryOptions {
	out := checkoutdto.DeliveryOptions{Options: make([]checkoutdto.DeliveryOption, 0, len(options))}
	for _, opt := range options {
		out.Options = append(out.Options, checkoutdto.DeliveryOption{
			ID:        opt.ID,
			Name:      opt.Name,
			Price:     opt.Price.StringFixed(2),
			Method:    opt.Method,
			Timeframe: opt.Timeframe,
			Window:    opt.Window,
		})
	}
	if !expiresAt.IsZero() {
		out.ExpiresAt = &expiresAt
	}
	return out
}

func newDeliveryQuote(q *cartsvc.DeliveryQuote) checkoutdto.DeliveryQuote {
	return checkoutdto.DeliveryQuote{
		DeliveryPrice: q.DeliveryPrice.StringFixed(2),
		Total:         q.Total.StringFixed(2),
	}
}

func newConfirmation(c *cartsvc.Confirmation) checkoutdto.Confirmation {
	items := make([]checkoutdto.ConfirmedLine, 0, len(c.Items))
	for _, line := range c.Items {
		items = append(items, checkoutdto.ConfirmedLine{
			InventoryID:   line.InventoryID,
			ProductID:     line.ProductID,
			Variety:       line.Variety,
			Quantity:      line.Quantity,
			UnitSalePrice: line.UnitSalePrice.StringFixed(2),
		})
	}
	return checkoutdto.Confirmation{
		Items:            items,
		Subtotal:         c.Subtotal.StringFixed(2),
		DeliveryPrice:    c.DeliveryPrice.StringFixed(2),
		Total:            c.Total.StringFixed(2),
		DeliveryOptionID: c.DeliveryOptionID,
		AddressID:        c.AddressID,
		ConfirmedAt:      c.ConfirmedAt,
	}
}
