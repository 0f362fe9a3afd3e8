package repositories

import (
	"time"

	"cabin/internal/models"
)

// ItemRepository defines the interface for inventory item data access.
// Every lookup is scoped to the owning user: an item that belongs to someone
// else is reported exactly like a missing one (apperrors.ErrNotFound).
type ItemRepository interface {
	List(userID string) ([]models.InventoryItem, error)
	Create(item *models.InventoryItem) error
	// Update runs mutate on a copy of the stored item while holding the
	// store's write lock. A mutate error aborts the update untouched.
	Update(id, userID string, mutate func(*models.InventoryItem) error) (*models.InventoryItem, error)
	Delete(id, userID string) error
}

// nextTimestamp returns now in UTC, bumped past prev if the clock has not
// moved, so lastUpdated strictly increases across writes.
func nextTimestamp(prev, now time.Time) time.Time {
	now = now.UTC()
	if !now.After(prev) {
		return prev.UTC().Add(time.Microsecond)
	}
	return now
}
