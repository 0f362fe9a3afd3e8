package repositories

import (
	"testing"
	"time"

	"cabin/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextTimestamp(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, base.Add(time.Second), nextTimestamp(base, base.Add(time.Second)))
	assert.Equal(t, base.Add(time.Microsecond), nextTimestamp(base, base))
	assert.Equal(t, base.Add(time.Microsecond), nextTimestamp(base, base.Add(-time.Hour)))
}

func TestUpdateWithFrozenClock(t *testing.T) {
	frozen := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return frozen }

	memory := NewMemoryItemRepository()
	memory.now = clock

	db, err := OpenInMemorySQLite("clock-" + uuid.New().String())
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	gormRepo, err := NewGORMItemRepository(db)
	require.NoError(t, err)
	gormRepo.now = clock

	repos := map[string]ItemRepository{"memory": memory, "gorm": gormRepo}
	for name, repo := range repos {
		t.Run(name, func(t *testing.T) {
			item := &models.InventoryItem{
				Name:     "Lamp Oil",
				Quantity: 1,
				Category: models.CategoryHousehold,
				Status:   models.StatusLow,
				UserID:   "alice",
			}
			require.NoError(t, repo.Create(item))
			assert.True(t, item.LastUpdated.Equal(frozen), "create: %s", item.LastUpdated)

			first, err := repo.Update(item.ID, "alice", nil)
			require.NoError(t, err)
			assert.True(t, first.LastUpdated.Equal(frozen.Add(time.Microsecond)), "first update: %s", first.LastUpdated)

			second, err := repo.Update(item.ID, "alice", nil)
			require.NoError(t, err)
			assert.True(t, second.LastUpdated.Equal(frozen.Add(2*time.Microsecond)), "second update: %s", second.LastUpdated)

			items, err := repo.List("alice")
			require.NoError(t, err)
			require.Len(t, items, 1)
			assert.True(t, items[0].LastUpdated.Equal(second.LastUpdated))
		})
	}
}
