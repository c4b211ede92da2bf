package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// InventoryRecord is one purchasable variant of a product. AvailableQty is the
// stock a cart can still reserve; ReservedQty is the sum of live cart holds.
type InventoryRecord struct {
	ID              uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	ProductID       uuid.UUID       `gorm:"column:product_id;type:uuid;not null;index"`
	SKU             string          `gorm:"column:sku;size:20;not null;uniqueIndex"`
	UPC             string          `gorm:"column:upc;size:12;not null;uniqueIndex"`
	AttributeValues string          `gorm:"column:attribute_values;not null"`
	AvailableQty    int             `gorm:"column:available_qty;not null;default:0;check:available_qty >= 0"`
	ReservedQty     int             `gorm:"column:reserved_qty;not null;default:0;check:reserved_qty >= 0"`
	RetailPrice     decimal.Decimal `gorm:"column:retail_price;type:numeric(10,2);not null"`
	StorePrice      decimal.Decimal `gorm:"column:store_price;type:numeric(10,2);not null"`
	SalePrice       decimal.Decimal `gorm:"column:sale_price;type:numeric(10,2);not null"`
	Weight          *float64        `gorm:"column:weight"`
	IsActive        bool            `gorm:"column:is_active;not null"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (InventoryRecord) TableName() string { return "inventory_records" }

func (r *InventoryRecord) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
