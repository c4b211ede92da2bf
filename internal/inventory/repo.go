package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/cartreserve-backend/pkg/db/models"
)

// Repository persists inventory rows. Every stock mutation is a single guarded
// UPDATE so concurrent writers can never drive a column below zero.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, record *models.InventoryRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.InventoryRecord, error) {
	return r.FindByIDTx(r.db.WithContext(ctx), id)
}

func (r *Repository) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*models.InventoryRecord, error) {
	if tx == nil {
		return nil, errors.New("transaction required")
	}
	var record models.InventoryRecord
	if err := tx.First(&record, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// FindByIDs loads the given rows keyed by id; unknown ids are skipped.
func (r *Repository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.InventoryRecord, error) {
	out := make(map[uuid.UUID]models.InventoryRecord, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []models.InventoryRecord
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ID] = row
	}
	return out, nil
}

// ReserveTx moves qty units from available to reserved. It reports false when
// fewer than qty units are available.
func (r *Repository) ReserveTx(tx *gorm.DB, id uuid.UUID, qty int) (bool, error) {
	res := tx.Exec(`
		UPDATE inventory_records
		SET available_qty = available_qty - ?,
			reserved_qty = reserved_qty + ?,
			updated_at = ?
		WHERE id = ? AND available_qty >= ?
	`, qty, qty, time.Now().UTC(), id, qty)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// ReleaseTx moves qty units from reserved back to available. It reports false
// when fewer than qty units are reserved.
func (r *Repository) ReleaseTx(tx *gorm.DB, id uuid.UUID, qty int) (bool, error) {
	res := tx.Exec(`
		UPDATE inventory_records
		SET available_qty = available_qty + ?,
			reserved_qty = reserved_qty - ?,
			updated_at = ?
		WHERE id = ? AND reserved_qty >= ?
	`, qty, qty, time.Now().UTC(), id, qty)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// ConsumeTx removes qty reserved units permanently (a sale).
func (r *Repository) ConsumeTx(tx *gorm.DB, id uuid.UUID, qty int) (bool, error) {
	res := tx.Exec(`
		UPDATE inventory_records
		SET reserved_qty = reserved_qty - ?,
			updated_at = ?
		WHERE id = ? AND reserved_qty >= ?
	`, qty, time.Now().UTC(), id, qty)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// Restock adds qty units to available stock.
func (r *Repository) Restock(ctx context.Context, id uuid.UUID, qty int) error {
	res := r.db.WithContext(ctx).Exec(`
		UPDATE inventory_records
		SET available_qty = available_qty + ?,
			updated_at = ?
		WHERE id = ?
	`, qty, time.Now().UTC(), id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
