package models

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens an in-memory SQLite database. The pool is capped
// at one connection so every goroutine sees the same memory database
// and writes serialize the way Postgres serializes the upsert.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to access sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&InventoryLevel{}, &Order{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func quantityOf(t *testing.T, repo *InventoryRepository, sku string) int64 {
	t.Helper()
	quantities, err := repo.GetMany([]string{sku})
	assert.NoError(t, err)
	return quantities[sku]
}

func TestSetAbsolute(t *testing.T) {
	repo := NewInventoryRepository(setupTestDB(t))

	assert.NoError(t, repo.SetAbsolute("TEE-NVY-M", 10))
	assert.Equal(t, int64(10), quantityOf(t, repo, "TEE-NVY-M"))

	// Last write wins, not a merge.
	assert.NoError(t, repo.SetAbsolute("TEE-NVY-M", 3))
	assert.Equal(t, int64(3), quantityOf(t, repo, "TEE-NVY-M"))

	// Negative input clamps to zero.
	assert.NoError(t, repo.SetAbsolute("TEE-NVY-M", -5))
	assert.Equal(t, int64(0), quantityOf(t, repo, "TEE-NVY-M"))
}

func TestSetAbsoluteIsIdempotent(t *testing.T) {
	repo := NewInventoryRepository(setupTestDB(t))

	assert.NoError(t, repo.SetAbsolute("CAP-ORG", 7))
	assert.NoError(t, repo.SetAbsolute("CAP-ORG", 7))

	levels, err := repo.GetAll()
	assert.NoError(t, err)
	assert.Len(t, levels, 1)
	assert.Equal(t, int64(7), levels[0].Quantity)
}

func TestApplyDelta(t *testing.T) {
	repo := NewInventoryRepository(setupTestDB(t))

	// First write on an unseen sku creates the row.
	assert.NoError(t, repo.ApplyDelta("HOOD-BLK-L", 10))
	assert.Equal(t, int64(10), quantityOf(t, repo, "HOOD-BLK-L"))

	assert.NoError(t, repo.ApplyDelta("HOOD-BLK-L", -4))
	assert.Equal(t, int64(6), quantityOf(t, repo, "HOOD-BLK-L"))

	// Decrement past zero clamps at the floor.
	assert.NoError(t, repo.ApplyDelta("HOOD-BLK-L", -100))
	assert.Equal(t, int64(0), quantityOf(t, repo, "HOOD-BLK-L"))

	// First decrement on an unseen sku materializes a zero row.
	assert.NoError(t, repo.ApplyDelta("GHOST", -3))
	assert.Equal(t, int64(0), quantityOf(t, repo, "GHOST"))
}

func TestApplyDeltaConcurrentDecrementsAreNotLost(t *testing.T) {
	repo := NewInventoryRepository(setupTestDB(t))
	assert.NoError(t, repo.SetAbsolute("TEE-GRY-M", 10))

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, repo.ApplyDelta("TEE-GRY-M", -5))
		}()
	}
	wg.Wait()

	// 10 - 5 - 5 = 0; a read-then-write race would leave 5.
	assert.Equal(t, int64(0), quantityOf(t, repo, "TEE-GRY-M"))
}

func TestGetAllOrdersBySKU(t *testing.T) {
	repo := NewInventoryRepository(setupTestDB(t))
	assert.NoError(t, repo.SetAbsolute("ZZZ", 1))
	assert.NoError(t, repo.SetAbsolute("AAA", 2))
	assert.NoError(t, repo.SetAbsolute("MMM", 3))

	levels, err := repo.GetAll()
	assert.NoError(t, err)
	skus := make([]string, len(levels))
	for i, l := range levels {
		skus[i] = l.SKUKey
	}
	assert.Equal(t, []string{"AAA", "MMM", "ZZZ"}, skus)
}

func TestGetManyLeavesMissingSKUsOut(t *testing.T) {
	repo := NewInventoryRepository(setupTestDB(t))
	assert.NoError(t, repo.SetAbsolute("AAA", 2))

	quantities, err := repo.GetMany([]string{"AAA", "MISSING"})
	assert.NoError(t, err)
	assert.Equal(t, map[string]int64{"AAA": 2}, quantities)

	// Reading must not materialize rows.
	levels, err := repo.GetAll()
	assert.NoError(t, err)
	assert.Len(t, levels, 1)
}

func TestNilDatabaseReportsStoreUnavailable(t *testing.T) {
	repo := NewInventoryRepository(nil)

	_, err := repo.GetAll()
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	_, err = repo.GetMany([]string{"A"})
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.ErrorIs(t, repo.SetAbsolute("A", 1), ErrStoreUnavailable)
	assert.ErrorIs(t, repo.ApplyDelta("A", 1), ErrStoreUnavailable)
}
