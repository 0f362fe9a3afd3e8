package repositories

import (
	"fmt"
	"sync"
	"time"

	"cabin/internal/apperrors"
	"cabin/internal/models"

	"github.com/google/uuid"
)

// MemoryItemRepository is an in-memory implementation of ItemRepository.
// Items are kept in insertion order; index maps an item ID to its position.
type MemoryItemRepository struct {
	items []models.InventoryItem
	index map[string]int
	mu    sync.RWMutex
	now   func() time.Time
}

// NewMemoryItemRepository creates a new, empty MemoryItemRepository.
func NewMemoryItemRepository() *MemoryItemRepository {
	return &MemoryItemRepository{
		index: make(map[string]int),
		now:   time.Now,
	}
}

// List returns the user's items in the order they were created.
func (r *MemoryItemRepository) List(userID string) ([]models.InventoryItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	itemList := make([]models.InventoryItem, 0)
	for _, item := range r.items {
		if item.UserID == userID {
			itemList = append(itemList, item)
		}
	}
	return itemList, nil
}

// Create assigns a fresh ID and timestamp to item and appends it.
func (r *MemoryItemRepository) Create(item *models.InventoryItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := uuid.New().String()
	for {
		if _, taken := r.index[id]; !taken {
			break
		}
		id = uuid.New().String()
	}
	item.ID = id
	item.LastUpdated = r.now().UTC()

	r.index[id] = len(r.items)
	r.items = append(r.items, *item)
	return nil
}

// Update merges changes into the user's item under the write lock.
func (r *MemoryItemRepository) Update(id, userID string, mutate func(*models.InventoryItem) error) (*models.InventoryItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	pos, ok := r.lookup(id, userID)
	if !ok {
		return nil, fmt.Errorf("item with ID %s not found for update: %w", id, apperrors.ErrNotFound)
	}

	current := r.items[pos]
	updated := current
	if mutate != nil {
		if err := mutate(&updated); err != nil {
			return nil, err
		}
	}
	updated.ID = current.ID
	updated.UserID = current.UserID
	updated.LastUpdated = nextTimestamp(current.LastUpdated, r.now())

	r.items[pos] = updated
	return &updated, nil
}

// Delete removes the user's item.
func (r *MemoryItemRepository) Delete(id, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	pos, ok := r.lookup(id, userID)
	if !ok {
		return fmt.Errorf("item with ID %s not found for deletion: %w", id, apperrors.ErrNotFound)
	}

	r.items = append(r.items[:pos], r.items[pos+1:]...)
	delete(r.index, id)
	for i := pos; i < len(r.items); i++ {
		r.index[r.items[i].ID] = i
	}
	return nil
}

// Len returns the number of items across all users.
func (r *MemoryItemRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

// lookup must be called with r.mu held.
func (r *MemoryItemRepository) lookup(id, userID string) (int, bool) {
	pos, ok := r.index[id]
	if !ok || r.items[pos].UserID != userID {
		return 0, false
	}
	return pos, true
}
