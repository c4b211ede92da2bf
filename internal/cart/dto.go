package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/cartreserve-backend/pkg/db/models"
)

// AddInput describes one add-to-cart request. Override replaces the held
// quantity instead of adding to it.
type AddInput struct {
	ProductID   uuid.UUID
	InventoryID uuid.UUID
	Quantity    int
	UnitPrice   decimal.Decimal
	Override    bool
}

// Remaining is the whole minutes and seconds left on the newest hold.
type Remaining struct {
	Minutes   int
	Seconds   int
	Expired   bool
	ExpiresAt time.Time
}

// Summary is the priced view of a cart.
type Summary struct {
	Items         []models.CartLineItem
	Count         int
	Subtotal      decimal.Decimal
	DeliveryPrice decimal.Decimal
	Total         decimal.Decimal
	LatestExpiry  time.Time
	Remaining     Remaining
}

// DeliveryQuote is returned after a delivery option is chosen.
type DeliveryQuote struct {
	DeliveryPrice decimal.Decimal
	Total         decimal.Decimal
}

// Confirmation is the snapshot handed to the order service.
type Confirmation struct {
	SessionKey       string
	Items            []models.CartLineItem
	Subtotal         decimal.Decimal
	DeliveryPrice    decimal.Decimal
	Total            decimal.Decimal
	DeliveryOptionID uuid.UUID
	AddressID        string
	ConfirmedAt      time.Time
}
