package inventory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/cartreserve-backend/pkg/db/models"
)

func TestRepositoryReserveReleaseConsume(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	rec := seedRecord(t, db, 5)

	ok, err := repo.ReserveTx(db, rec.ID, 3)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.ReserveTx(db, rec.ID, 3)
	require.NoError(t, err)
	assert.False(t, ok, "only two units remain")

	ok, err = repo.ReleaseTx(db, rec.ID, 1)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.ConsumeTx(db, rec.ID, 2)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.ReleaseTx(db, rec.ID, 1)
	require.NoError(t, err)
	assert.False(t, ok, "nothing left reserved")

	got, err := repo.FindByID(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.AvailableQty)
	assert.Equal(t, 0, got.ReservedQty)
}

func TestRepositoryFindByIDs(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	a := seedRecord(t, db, 1)
	b := seedRecord(t, db, 2)

	rows, err := repo.FindByIDs(context.Background(), []uuid.UUID{a.ID, b.ID, uuid.New()})
	require.NoError(t, err)
	assert.Len(t, rows, 2)
	assert.Equal(t, 2, rows[b.ID].AvailableQty)

	empty, err := repo.FindByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestRepositoryRestock(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	rec := seedRecord(t, db, 0)

	require.NoError(t, repo.Restock(context.Background(), rec.ID, 7))
	got, err := repo.FindByID(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, got.AvailableQty)

	err = repo.Restock(context.Background(), uuid.New(), 1)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryCreateAssignsID(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	rec := &models.InventoryRecord{SKU: "SKU-1", UPC: "000000000001", ProductID: uuid.New(), IsActive: true}

	require.NoError(t, repo.Create(context.Background(), rec))
	assert.NotEqual(t, uuid.Nil, rec.ID)
}
