package cart

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/cartreserve-backend/pkg/auth/session"
	"github.com/angelmondragon/cartreserve-backend/pkg/db/models"
	"github.com/angelmondragon/cartreserve-backend/pkg/outbox"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// LineRepository is the persistence surface for cart lines.
type LineRepository interface {
	ListBySession(ctx context.Context, sessionKey string) ([]models.CartLineItem, error)
	ListBySessionTx(tx *gorm.DB, sessionKey string) ([]models.CartLineItem, error)
	FindLineTx(tx *gorm.DB, sessionKey string, inventoryID uuid.UUID) (*models.CartLineItem, error)
	InsertLineTx(tx *gorm.DB, line *models.CartLineItem) error
	UpdateLineTx(tx *gorm.DB, id uuid.UUID, expectQty, newQty int, price decimal.Decimal, expiresAt time.Time) (bool, error)
	DeleteLineTx(tx *gorm.DB, id uuid.UUID, expectQty int) (bool, error)
	DeleteExpiredLineTx(tx *gorm.DB, id uuid.UUID, expectQty int, cutoff time.Time) (bool, error)
	SetExpiryTx(tx *gorm.DB, sessionKey string, expiresAt time.Time) (int64, error)
	ExpiredSessions(ctx context.Context, cutoff time.Time, limit int) ([]string, error)
}

type stockLedger interface {
	Load(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.InventoryRecord, error)
	Adjust(ctx context.Context, tx *gorm.DB, id uuid.UUID, delta int) error
	Release(ctx context.Context, tx *gorm.DB, id uuid.UUID, qty int) error
	Consume(ctx context.Context, tx *gorm.DB, id uuid.UUID, qty int) error
}

type selectionStore interface {
	Load(ctx context.Context, sessionKey string) (session.Selections, error)
	SetDelivery(ctx context.Context, sessionKey string, deliveryID uuid.UUID) error
	SetAddress(ctx context.Context, sessionKey, addressID string) error
	ResetDelivery(ctx context.Context, sessionKey string) error
	Clear(ctx context.Context, sessionKey string) error
}

type deliveryCatalog interface {
	ListActive(ctx context.Context) ([]models.DeliveryOption, error)
	Get(ctx context.Context, id uuid.UUID) (*models.DeliveryOption, error)
}

type outboxEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}
