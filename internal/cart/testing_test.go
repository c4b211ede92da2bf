package cart

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/cartreserve-backend/internal/delivery"
	"github.com/angelmondragon/cartreserve-backend/internal/inventory"
	"github.com/angelmondragon/cartreserve-backend/pkg/auth/session"
	"github.com/angelmondragon/cartreserve-backend/pkg/config"
	"github.com/angelmondragon/cartreserve-backend/pkg/db"
	"github.com/angelmondragon/cartreserve-backend/pkg/db/models"
	"github.com/angelmondragon/cartreserve-backend/pkg/enums"
	"github.com/angelmondragon/cartreserve-backend/pkg/outbox"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fakeSelections struct {
	mu   sync.Mutex
	data map[string]session.Selections
}

func newFakeSelections() *fakeSelections {
	return &fakeSelections{data: map[string]session.Selections{}}
}

func (f *fakeSelections) Load(_ context.Context, key string) (session.Selections, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.data[key], nil
}

func (f *fakeSelections) SetDelivery(_ context.Context, key string, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	sel := f.data[key]
	sel.DeliveryID = &id
	f.data[key] = sel
	return nil
}

func (f *fakeSelections) SetAddress(_ context.Context, key, addressID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	sel := f.data[key]
	sel.AddressID = addressID
	f.data[key] = sel
	return nil
}

func (f *fakeSelections) ResetDelivery(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	sel := f.data[key]
	sel.DeliveryID = nil
	f.data[key] = sel
	return nil
}

func (f *fakeSelections) Clear(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.data, key)
	return nil
}

type harness struct {
	conn     *gorm.DB
	svc      Service
	repo     *Repository
	sel      *fakeSelections
	clock    *testClock
	delivery *delivery.Repository
}

func testCartConfig() config.CartConfig {
	return config.CartConfig{
		HoldWindow:      2 * time.Minute,
		CheckoutWindow:  45 * time.Minute,
		MaxLineQuantity: 99,
		MaxAttempts:     3,
	}
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return newHarnessWithRepo(t, nil)
}

// newHarnessWithRepo lets a test wrap the line repository.
func newHarnessWithRepo(t *testing.T, wrap func(*Repository) LineRepository) *harness {
	t.Helper()
	dsn := "file:cart_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	ledger, err := inventory.NewLedger(inventory.NewRepository(conn), nil)
	if err != nil {
		t.Fatalf("ledger: %v", err)
	}
	deliveryRepo := delivery.NewRepository(conn)
	deliverySvc, err := delivery.NewService(deliveryRepo)
	if err != nil {
		t.Fatalf("delivery service: %v", err)
	}

	repo := NewRepository(conn)
	var lines LineRepository = repo
	if wrap != nil {
		lines = wrap(repo)
	}
	clock := &testClock{now: t0}
	sel := newFakeSelections()
	svc, err := NewService(ServiceParams{
		Tx:         db.Wrap(conn),
		Repo:       lines,
		Ledger:     ledger,
		Selections: sel,
		Delivery:   deliverySvc,
		Outbox:     outbox.NewService(outbox.NewRepository(conn), nil),
		Config:     testCartConfig(),
		Now:        clock.Now,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return &harness{conn: conn, svc: svc, repo: repo, sel: sel, clock: clock, delivery: deliveryRepo}
}

func (h *harness) seedInventory(t *testing.T, available int, attrs string) models.InventoryRecord {
	t.Helper()
	id := uuid.New()
	rec := models.InventoryRecord{
		ID:              id,
		ProductID:       uuid.New(),
		SKU:             id.String()[:20],
		UPC:             id.String()[24:],
		AttributeValues: attrs,
		AvailableQty:    available,
		RetailPrice:     decimal.RequireFromString("15.00"),
		StorePrice:      decimal.RequireFromString("10.00"),
		SalePrice:       decimal.RequireFromString("12.50"),
		IsActive:        true,
	}
	if err := h.conn.Create(&rec).Error; err != nil {
		t.Fatalf("seed inventory: %v", err)
	}
	return rec
}

func (h *harness) seedDelivery(t *testing.T, name, price string) models.DeliveryOption {
	t.Helper()
	opt := models.DeliveryOption{
		Name:     name,
		Price:    decimal.RequireFromString(price),
		Method:   "courier",
		IsActive: true,
	}
	if err := h.delivery.Create(context.Background(), &opt); err != nil {
		t.Fatalf("seed delivery: %v", err)
	}
	return opt
}

func (h *harness) stock(t *testing.T, id uuid.UUID) (int, int) {
	t.Helper()
	var rec models.InventoryRecord
	if err := h.conn.First(&rec, "id = ?", id).Error; err != nil {
		t.Fatalf("load inventory: %v", err)
	}
	return rec.AvailableQty, rec.ReservedQty
}

func (h *harness) expectStock(t *testing.T, id uuid.UUID, available, reserved int) {
	t.Helper()
	gotAvail, gotReserved := h.stock(t, id)
	if gotAvail != available || gotReserved != reserved {
		t.Fatalf("stock = %d available / %d reserved, want %d / %d", gotAvail, gotReserved, available, reserved)
	}
}

func (h *harness) outboxTypes(t *testing.T) []enums.OutboxEventType {
	t.Helper()
	var rows []models.OutboxEvent
	if err := h.conn.Order("created_at ASC").Find(&rows).Error; err != nil {
		t.Fatalf("load outbox: %v", err)
	}
	out := make([]enums.OutboxEventType, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.EventType)
	}
	return out
}
