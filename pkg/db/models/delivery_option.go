package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DeliveryOption is a shipping choice offered at checkout.
type DeliveryOption struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	Name      string          `gorm:"column:name;size:255;not null"`
	Price     decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null"`
	Method    string          `gorm:"column:method;size:255;not null"`
	Timeframe string          `gorm:"column:timeframe;size:255"`
	Window    string          `gorm:"column:delivery_window;size:255"`
	SortOrder int             `gorm:"column:sort_order;not null;default:0"`
	IsActive  bool            `gorm:"column:is_active;not null"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (DeliveryOption) TableName() string { return "delivery_options" }

func (d *DeliveryOption) BeforeCreate(*gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
