package cartdto

import (
	"time"

	"github.com/google/uuid"
)

// AddItemRequest adds quantity to the line for an inventory record, or sets
// it outright when Override is true.
type AddItemRequest struct {
	ProductID   uuid.UUID `json:"product_id"`
	InventoryID uuid.UUID `json:"inventory_id" validate:"required"`
	Quantity    int       `json:"quantity" validate:"gte=1,lte=99"`
	Override    bool      `json:"override"`
}

type UpdateItemRequest struct {
	Quantity int `json:"quantity" validate:"gte=1,lte=99"`
}

type LineItem struct {
	ID            uuid.UUID `json:"id"`
	InventoryID   uuid.UUID `json:"inventory_id"`
	ProductID     uuid.UUID `json:"product_id"`
	Variety       string    `json:"variety"`
	Quantity      int       `json:"quantity"`
	UnitSalePrice string    `json:"unit_sale_price"`
	LineTotal     string    `json:"line_total"`
	ExpiresAt     time.Time `json:"expires_at"`
}

type Remaining struct {
	Minutes   int        `json:"minutes"`
	Seconds   int        `json:"seconds"`
	Expired   bool       `json:"expired"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

type Summary struct {
	Items         []LineItem `json:"items"`
	Count         int        `json:"count"`
	Subtotal      string     `json:"subtotal"`
	DeliveryPrice string     `json:"delivery_price"`
	Total         string     `json:"total"`
	Remaining     Remaining  `json:"remaining"`
}
