package inventory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/dromero-dev/casagrande-backend/pkg/db/models"
)

func setupInventoryTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS inventory_items (
  product_id TEXT PRIMARY KEY,
  available_qty INTEGER NOT NULL DEFAULT 0,
  reserved_qty INTEGER NOT NULL DEFAULT 0,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func seedItem(t *testing.T, db *gorm.DB, available, reserved int) uuid.UUID {
	t.Helper()
	productID := uuid.New()
	item := models.InventoryItem{
		ProductID:    productID,
		AvailableQty: available,
		ReservedQty:  reserved,
	}
	require.NoError(t, db.Create(&item).Error)
	return productID
}

func TestMoveAvailableToReserved(t *testing.T) {
	db := setupInventoryTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	productID := seedItem(t, db, 10, 0)

	affected, err := repo.MoveAvailableToReserved(ctx, productID, 4)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	item, err := repo.Find(ctx, productID)
	require.NoError(t, err)
	assert.Equal(t, 6, item.AvailableQty)
	assert.Equal(t, 4, item.ReservedQty)
}

func TestMoveAvailableToReservedInsufficient(t *testing.T) {
	db := setupInventoryTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	productID := seedItem(t, db, 3, 0)

	affected, err := repo.MoveAvailableToReserved(ctx, productID, 4)
	require.NoError(t, err)
	assert.Equal(t, int64(0), affected)

	item, err := repo.Find(ctx, productID)
	require.NoError(t, err)
	assert.Equal(t, 3, item.AvailableQty)
	assert.Equal(t, 0, item.ReservedQty)
}

func TestMoveReservedToAvailable(t *testing.T) {
	db := setupInventoryTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	productID := seedItem(t, db, 0, 5)

	affected, err := repo.MoveReservedToAvailable(ctx, productID, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	item, err := repo.Find(ctx, productID)
	require.NoError(t, err)
	assert.Equal(t, 5, item.AvailableQty)
	assert.Equal(t, 0, item.ReservedQty)
}

func TestConsumeReserved(t *testing.T) {
	db := setupInventoryTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	productID := seedItem(t, db, 2, 3)

	affected, err := repo.ConsumeReserved(ctx, productID, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	item, err := repo.Find(ctx, productID)
	require.NoError(t, err)
	assert.Equal(t, 2, item.AvailableQty)
	assert.Equal(t, 0, item.ReservedQty)
}

func TestAddAvailableGuardsUnderflow(t *testing.T) {
	db := setupInventoryTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	productID := seedItem(t, db, 2, 0)

	affected, err := repo.AddAvailable(ctx, productID, -5)
	require.NoError(t, err)
	assert.Equal(t, int64(0), affected)

	affected, err = repo.AddAvailable(ctx, productID, 8)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	item, err := repo.Find(ctx, productID)
	require.NoError(t, err)
	assert.Equal(t, 10, item.AvailableQty)
}
