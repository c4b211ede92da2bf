package delivery

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/cartreserve-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/cartreserve-backend/pkg/errors"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	dsn := "file:delivery_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.DeliveryOption{}))
	return NewRepository(conn)
}

func TestListActiveOrdersBySortOrder(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for _, opt := range []models.DeliveryOption{
		{Name: "Express", Price: decimal.RequireFromString("9.99"), Method: "courier", SortOrder: 2, IsActive: true},
		{Name: "Retired", Price: decimal.RequireFromString("1.00"), Method: "post", SortOrder: 0, IsActive: false},
		{Name: "Standard", Price: decimal.RequireFromString("4.50"), Method: "post", SortOrder: 1, IsActive: true},
	} {
		opt := opt
		require.NoError(t, repo.Create(ctx, &opt))
	}

	svc, err := NewService(repo)
	require.NoError(t, err)

	options, err := svc.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, options, 2)
	require.Equal(t, "Standard", options[0].Name)
	require.Equal(t, "Express", options[1].Name)
}

func TestGetRejectsInactiveOption(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	retired := models.DeliveryOption{Name: "Retired", Price: decimal.NewFromInt(1), Method: "post"}
	require.NoError(t, repo.Create(ctx, &retired))

	svc, err := NewService(repo)
	require.NoError(t, err)

	_, err = svc.Get(ctx, retired.ID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	_, err = svc.Get(ctx, uuid.New())
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}
