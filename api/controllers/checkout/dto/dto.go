package checkoutdto

import (
	"time"

	"github.com/google/uuid"
)

type DeliveryOption struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Price     string    `json:"price"`
	Method    string    `json:"method"`
	Timeframe string    `json:"timeframe,omitempty"`
	Window    string    `json:"window,omitempty"`
}

// DeliveryOptions is returned when the buyer enters checkout. ExpiresAt is
// the extended hold deadline, absent for an empty cart.
type DeliveryOptions struct {
	Options   []DeliveryOption `json:"options"`
	ExpiresAt *time.Time       `json:"expires_at,omitempty"`
}

type SelectDeliveryRequest struct {
	DeliveryOptionID uuid.UUID `json:"delivery_option_id" validate:"required"`
}

type DeliveryQuote struct {
	DeliveryPrice string `json:"delivery_price"`
	Total         string `json:"total"`
}

type SelectAddressRequest struct {
	AddressID string `json:"address_id" validate:"required,max=64"`
}

type ConfirmedLine struct {
	InventoryID   uuid.UUID `json:"inventory_id"`
	ProductID     uuid.UUID `json:"product_id"`
	Variety       string    `json:"variety"`
	Quantity      int       `json:"quantity"`
	UnitSalePrice string    `json:"unit_sale_price"`
}

type Confirmation struct {
	Items            []ConfirmedLine `json:"items"`
	Subtotal         string          `json:"subtotal"`
	DeliveryPrice    string          `json:"delivery_price"`
	Total            string          `json:"total"`
	DeliveryOptionID uuid.UUID       `json:"delivery_option_id"`
	AddressID        string          `json:"address_id"`
	ConfirmedAt      time.Time       `json:"confirmed_at"`
}
