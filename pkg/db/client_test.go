package db

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/angelmondragon/cartreserve-backend/pkg/config"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type testModel struct {
	ID   int
	Name string `gorm:"uniqueIndex"`
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:db_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&testModel{}); err != nil {
		t.Fatalf("failed to migrate sqlite: %v", err)
	}
	return conn
}

func TestWithTx_CommitsAndRollbacks(t *testing.T) {
	db := newTestDB(t)
	client := Wrap(db)

	ctx := context.Background()
	if err := client.WithTx(ctx, func(tx *gorm.DB) error {
		return tx.Create(&testModel{Name: "committed"}).Error
	}); err != nil {
		t.Fatalf("WithTx commit failed: %v", err)
	}

	var count int64
	if err := db.Model(&testModel{}).Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 record, got %d", count)
	}

	err := client.WithTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(&testModel{Name: "rolled"}).Error; err != nil {
			return err
		}
		return errors.New("boom")
	})
	if err == nil {
		t.Fatal("expected WithTx to return an error")
	}
	if err := db.Model(&testModel{}).Count(&count).Error; err != nil {
		t.Fatalf("count failed after rollback: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected rollback to leave 1 record, got %d", count)
	}
}

func TestIsUniqueViolationOnSQLite(t *testing.T) {
	db := newTestDB(t)
	if err := db.Create(&testModel{Name: "dup"}).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}
	err := db.Create(&testModel{Name: "dup"}).Error
	if !IsUniqueViolation(err, "") {
		t.Fatalf("expected unique violation, got %v", err)
	}
	if IsUniqueViolation(errors.New("connection reset"), "") {
		t.Fatalf("unrelated error reported as unique violation")
	}
}

func TestIsUniqueViolationMatchesPostgresConstraint(t *testing.T) {
	err := errors.New(`ERROR: duplicate key value violates unique constraint "cart_line_items_session_inventory_key" (SQLSTATE 23505)`)
	if !IsUniqueViolation(err, "cart_line_items_session_inventory_key") {
		t.Fatalf("expected constraint match")
	}
	if IsUniqueViolation(err, "inventory_records_sku_key") {
		t.Fatalf("unexpected match for a different constraint")
	}
}

func TestIsCheckViolation(t *testing.T) {
	if !IsCheckViolation(errors.New(`new row for relation "inventory_records" violates check constraint "inventory_records_available_qty_check"`)) {
		t.Fatalf("expected postgres check violation")
	}
	if !IsCheckViolation(errors.New("CHECK constraint failed: available_qty >= 0")) {
		t.Fatalf("expected sqlite check violation")
	}
}

func TestIsTransientConflict(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"deadlock", &pgconn.PgError{Code: "40P01"}, true},
		{"serialization", &pgconn.PgError{Code: "40001"}, true},
		{"wrapped deadlock", fmt.Errorf("consume stock: %w", &pgconn.PgError{Code: "40P01"}), true},
		{"deadlock text", errors.New("ERROR: deadlock detected (SQLSTATE 40P01)"), true},
		{"unique", &pgconn.PgError{Code: "23505"}, false},
		{"nil", nil, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsTransientConflict(tc.err); got != tc.want {
				t.Fatalf("IsTransientConflict(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}

func TestNewRejectsUnknownDriver(t *testing.T) {
	_, err := New(context.Background(), config.DBConfig{DSN: "x", Driver: "oracle"}, nil)
	if err == nil {
		t.Fatal("expected unsupported driver error")
	}
}

func TestPing(t *testing.T) {
	client := Wrap(newTestDB(t))
	if err := client.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected ping error: %v", err)
	}
}
