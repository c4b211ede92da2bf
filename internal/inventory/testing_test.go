package inventory

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/cartreserve-backend/pkg/db/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:inventory_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&models.InventoryRecord{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}

func seedRecord(t *testing.T, db *gorm.DB, available int) models.InventoryRecord {
	t.Helper()
	id := uuid.New()
	rec := models.InventoryRecord{
		ID:              id,
		ProductID:       uuid.New(),
		SKU:             id.String()[:20],
		UPC:             id.String()[24:],
		AttributeValues: "red, XL",
		AvailableQty:    available,
		SalePrice:       decimal.RequireFromString("12.50"),
		RetailPrice:     decimal.RequireFromString("15.00"),
		StorePrice:      decimal.RequireFromString("10.00"),
		IsActive:        true,
	}
	if err := db.Create(&rec).Error; err != nil {
		t.Fatalf("seed inventory: %v", err)
	}
	return rec
}
