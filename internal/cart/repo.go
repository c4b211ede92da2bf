package cart

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/cartreserve-backend/internal/repo"
	"github.com/angelmondragon/cartreserve-backend/pkg/db/models"
)

// Repository persists cart line items. Quantity changes are compare-and-swap
// on the previous quantity so a concurrent writer is detected, never overwritten.
type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// ListBySession returns the session's lines in the order they were added.
func (r *Repository) ListBySession(ctx context.Context, sessionKey string) ([]models.CartLineItem, error) {
	return r.ListBySessionTx(r.DB(ctx), sessionKey)
}

func (r *Repository) ListBySessionTx(tx *gorm.DB, sessionKey string) ([]models.CartLineItem, error) {
	var lines []models.CartLineItem
	err := tx.
		Where("session_key = ?", sessionKey).
		Order("created_at ASC").
		Order("id ASC").
		Find(&lines).Error
	if err != nil {
		return nil, err
	}
	return lines, nil
}

// FindLineTx returns nil without error when the session holds nothing for the inventory.
func (r *Repository) FindLineTx(tx *gorm.DB, sessionKey string, inventoryID uuid.UUID) (*models.CartLineItem, error) {
	var lines []models.CartLineItem
	err := tx.Where("session_key = ? AND inventory_id = ?", sessionKey, inventoryID).
		Limit(1).
		Find(&lines).Error
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, nil
	}
	return &lines[0], nil
}

func (r *Repository) InsertLineTx(tx *gorm.DB, line *models.CartLineItem) error {
	return tx.Create(line).Error
}

// UpdateLineTx rewrites a line only if it still holds expectQty.
func (r *Repository) UpdateLineTx(tx *gorm.DB, id uuid.UUID, expectQty, newQty int, price decimal.Decimal, expiresAt time.Time) (bool, error) {
	res := tx.Model(&models.CartLineItem{}).
		Where("id = ? AND quantity = ?", id, expectQty).
		Updates(map[string]any{
			"quantity":        newQty,
			"unit_sale_price": price,
			"expires_at":      expiresAt,
			"updated_at":      time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// DeleteLineTx removes a line only if it still holds expectQty, so the caller
// releases exactly what was deleted.
func (r *Repository) DeleteLineTx(tx *gorm.DB, id uuid.UUID, expectQty int) (bool, error) {
	res := tx.Where("id = ? AND quantity = ?", id, expectQty).Delete(&models.CartLineItem{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// DeleteExpiredLineTx is DeleteLineTx that also refuses lines refreshed after cutoff.
func (r *Repository) DeleteExpiredLineTx(tx *gorm.DB, id uuid.UUID, expectQty int, cutoff time.Time) (bool, error) {
	res := tx.Where("id = ? AND quantity = ? AND expires_at < ?", id, expectQty, cutoff).Delete(&models.CartLineItem{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *Repository) SetExpiryTx(tx *gorm.DB, sessionKey string, expiresAt time.Time) (int64, error) {
	res := tx.Model(&models.CartLineItem{}).
		Where("session_key = ?", sessionKey).
		Updates(map[string]any{
			"expires_at": expiresAt,
			"updated_at": time.Now().UTC(),
		})
	return res.RowsAffected, res.Error
}

// ExpiredSessions lists sessions whose newest hold ended before cutoff.
func (r *Repository) ExpiredSessions(ctx context.Context, cutoff time.Time, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 500
	}
	var keys []string
	err := r.DB(ctx).Raw(`
		SELECT session_key
		FROM cart_line_items
		GROUP BY session_key
		HAVING MAX(expires_at) < ?
		ORDER BY MIN(created_at) ASC
		LIMIT ?
	`, cutoff, limit).Scan(&keys).Error
	if err != nil {
		return nil, err
	}
	return keys, nil
}
