package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/cartreserve-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/cartreserve-backend/pkg/errors"
	"github.com/angelmondragon/cartreserve-backend/pkg/logger"
)

type stockRepository interface {
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*models.InventoryRecord, error)
	ReserveTx(tx *gorm.DB, id uuid.UUID, qty int) (bool, error)
	ReleaseTx(tx *gorm.DB, id uuid.UUID, qty int) (bool, error)
	ConsumeTx(tx *gorm.DB, id uuid.UUID, qty int) (bool, error)
}

// Ledger applies stock movements inside a caller-owned transaction and maps
// storage failures onto the API error taxonomy.
type Ledger struct {
	repo stockRepository
	logg *logger.Logger
}

func NewLedger(repo stockRepository, logg *logger.Logger) (*Ledger, error) {
	if repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &Ledger{repo: repo, logg: logg}, nil
}

// Load returns the authoritative row as seen by tx.
func (l *Ledger) Load(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.InventoryRecord, error) {
	record, err := l.repo.FindByIDTx(tx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "inventory not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load inventory")
	}
	return record, nil
}

// Reserve holds qty units. Losing the availability guard is reported as an
// over-reservation carrying the stock that was left.
func (l *Ledger) Reserve(ctx context.Context, tx *gorm.DB, id uuid.UUID, qty int) error {
	if qty <= 0 {
		return nil
	}
	ok, err := l.repo.ReserveTx(tx.WithContext(ctx), id, qty)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reserve inventory")
	}
	if ok {
		return nil
	}
	record, err := l.repo.FindByIDTx(tx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload inventory")
	}
	return OverReservation(record, qty)
}

// OverReservation builds the error shown next to the quantity input when a
// request asks for more than the record has left.
func OverReservation(record *models.InventoryRecord, requested int) error {
	return pkgerrors.Newf(pkgerrors.CodeOverReservation,
		"now the maximum available quantity for the selected %s is %d", record.AttributeValues, record.AvailableQty).
		WithDetails(map[string]any{
			"inventory_id": record.ID.String(),
			"available":    record.AvailableQty,
			"requested":    requested,
		})
}

// Release returns qty held units to available stock.
func (l *Ledger) Release(ctx context.Context, tx *gorm.DB, id uuid.UUID, qty int) error {
	if qty <= 0 {
		return nil
	}
	ok, err := l.repo.ReleaseTx(tx.WithContext(ctx), id, qty)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "release inventory")
	}
	if !ok {
		l.logReservedMismatch(ctx, id, qty, "release")
		return pkgerrors.New(pkgerrors.CodeInternal, "reserved stock lower than held quantity")
	}
	return nil
}

// Adjust reserves a positive delta or releases a negative one.
func (l *Ledger) Adjust(ctx context.Context, tx *gorm.DB, id uuid.UUID, delta int) error {
	switch {
	case delta > 0:
		return l.Reserve(ctx, tx, id, delta)
	case delta < 0:
		return l.Release(ctx, tx, id, -delta)
	default:
		return nil
	}
}

// Consume turns qty held units into a sale.
func (l *Ledger) Consume(ctx context.Context, tx *gorm.DB, id uuid.UUID, qty int) error {
	if qty <= 0 {
		return nil
	}
	ok, err := l.repo.ConsumeTx(tx.WithContext(ctx), id, qty)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "consume inventory")
	}
	if !ok {
		l.logReservedMismatch(ctx, id, qty, "consume")
		return pkgerrors.New(pkgerrors.CodeInternal, "reserved stock lower than held quantity")
	}
	return nil
}

func (l *Ledger) logReservedMismatch(ctx context.Context, id uuid.UUID, qty int, op string) {
	logCtx := l.logg.WithFields(ctx, map[string]any{
		"inventory_id": id.String(),
		"qty":          qty,
		"op":           op,
	})
	l.logg.Error(logCtx, "reserved quantity out of sync with cart holds", nil)
}
