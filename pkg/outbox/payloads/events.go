package payloads

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartLine is the snapshot of one held line carried in cart events.
type CartLine struct {
	InventoryID   uuid.UUID       `json:"inventory_id"`
	ProductID     uuid.UUID       `json:"product_id"`
	Variety       string          `json:"variety"`
	Quantity      int             `json:"quantity"`
	UnitSalePrice decimal.Decimal `json:"unit_sale_price"`
}

// CartCheckedOutEvent hands a confirmed cart to the order service.
type CartCheckedOutEvent struct {
	SessionKey       string          `json:"session_key"`
	Lines            []CartLine      `json:"lines"`
	Subtotal         decimal.Decimal `json:"subtotal"`
	DeliveryPrice    decimal.Decimal `json:"delivery_price"`
	Total            decimal.Decimal `json:"total"`
	DeliveryOptionID uuid.UUID       `json:"delivery_option_id"`
	AddressID        string          `json:"address_id"`
	ConfirmedAt      time.Time       `json:"confirmed_at"`
}

// CartReservationExpiredEvent is emitted when the sweeper releases a cart.
type CartReservationExpiredEvent struct {
	SessionKey    string     `json:"session_key"`
	Lines         []CartLine `json:"lines"`
	ReleasedUnits int        `json:"released_units"`
	ExpiredAt     time.Time  `json:"expired_at"`
}

// CartClearedEvent is emitted when a shopper empties a cart that still held stock.
type CartClearedEvent struct {
	SessionKey    string     `json:"session_key"`
	Lines         []CartLine `json:"lines"`
	ReleasedUnits int        `json:"released_units"`
}
