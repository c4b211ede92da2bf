package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CartLineItem is a live stock hold owned by an anonymous cart session.
type CartLineItem struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	SessionKey    string          `gorm:"column:session_key;size:64;not null;uniqueIndex:cart_line_items_session_inventory_key,priority:1"`
	InventoryID   uuid.UUID       `gorm:"column:inventory_id;type:uuid;not null;uniqueIndex:cart_line_items_session_inventory_key,priority:2"`
	ProductID     uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	Variety       string          `gorm:"column:variety;not null"`
	Quantity      int             `gorm:"column:quantity;not null;check:quantity > 0"`
	UnitSalePrice decimal.Decimal `gorm:"column:unit_sale_price;type:numeric(10,2);not null"`
	ExpiresAt     time.Time       `gorm:"column:expires_at;not null;index"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (CartLineItem) TableName() string { return "cart_line_items" }

func (c *CartLineItem) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// LineTotal is the undiscounted price of the line.
func (c CartLineItem) LineTotal() decimal.Decimal {
	return c.UnitSalePrice.Mul(decimal.NewFromInt(int64(c.Quantity)))
}
