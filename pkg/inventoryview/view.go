// Package inventoryview is the presentation state behind the inventory
// screen: the local item list, the active filter and the session.
package inventoryview

import (
	"fmt"
	"log"
	"strings"
	"sync"

	"cabin/internal/apperrors"
	"cabin/internal/models"
)

// All matches every category or status in a Filter.
const All = "All"

// ItemAPI is the remote item store. *client.Client implements it.
type ItemAPI interface {
	ListItems() ([]models.InventoryItem, error)
	CreateItem(input models.ItemInput) (*models.InventoryItem, error)
	UpdateItem(id string, patch models.ItemPatch) (*models.InventoryItem, error)
	DeleteItem(id string) error
}

// Filter narrows the visible items. Empty Category or Status means All.
type Filter struct {
	Search   string
	Category string
	Status   string
}

func (f Filter) matches(item models.InventoryItem) bool {
	if f.Search != "" {
		term := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(item.Name), term) &&
			!strings.Contains(strings.ToLower(item.Notes), term) {
			return false
		}
	}
	if f.Category != "" && f.Category != All && string(item.Category) != f.Category {
		return false
	}
	if f.Status != "" && f.Status != All && string(item.Status) != f.Status {
		return false
	}
	return true
}

// View owns the local copy of the caller's items.
type View struct {
	api ItemAPI

	mu       sync.RWMutex
	user     *models.User
	items    []models.InventoryItem
	filter   Filter
	filtered []models.InventoryItem
}

// New creates a logged-out view backed by api.
func New(api ItemAPI) *View {
	return &View{api: api, items: []models.InventoryItem{}, filtered: []models.InventoryItem{}}
}

// Login marks user as the current session. It does not load items.
func (v *View) Login(user *models.User) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.user = user
}

// Logout ends the session and forgets the local items.
func (v *View) Logout() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.user = nil
	v.items = []models.InventoryItem{}
	v.refilter()
}

// Authenticated reports whether a session is active.
func (v *View) Authenticated() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.user != nil
}

// User returns the session user, or nil.
func (v *View) User() *models.User {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.user
}

// Items returns a copy of the full local list.
func (v *View) Items() []models.InventoryItem {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return append([]models.InventoryItem(nil), v.items...)
}

// Filtered returns a copy of the items matching the current filter.
func (v *View) Filtered() []models.InventoryItem {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return append([]models.InventoryItem(nil), v.filtered...)
}

// Filter returns the active filter.
func (v *View) Filter() Filter {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.filter
}

// SetFilter replaces the filter and recomputes the visible items.
func (v *View) SetFilter(f Filter) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.filter = f
	v.refilter()
}

// Counts returns the number of local items per status.
func (v *View) Counts() map[models.Status]int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	counts := make(map[models.Status]int, len(models.Statuses))
	for _, s := range models.Statuses {
		counts[s] = 0
	}
	for _, item := range v.items {
		counts[item.Status]++
	}
	return counts
}

// Load replaces the local list with the server's.
func (v *View) Load() error {
	session, err := v.requireSession("load items")
	if err != nil {
		return err
	}
	items, err := v.api.ListItems()
	if err != nil {
		log.Printf("Error fetching items: %v", err)
		return err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if err := v.checkSession(session, "load items"); err != nil {
		return err
	}
	v.items = append([]models.InventoryItem{}, items...)
	v.refilter()
	return nil
}

// Add creates an item and appends it to the local list.
func (v *View) Add(input models.ItemInput) (*models.InventoryItem, error) {
	session, err := v.requireSession("add item")
	if err != nil {
		return nil, err
	}
	item, err := v.api.CreateItem(input)
	if err != nil {
		log.Printf("Error adding item: %v", err)
		return nil, err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if err := v.checkSession(session, "add item"); err != nil {
		return nil, err
	}
	v.items = append(v.items, *item)
	v.refilter()
	return item, nil
}

// Edit applies a form edit to an item.
func (v *View) Edit(id string, patch models.ItemPatch) (*models.InventoryItem, error) {
	return v.update("edit item", id, patch)
}

// QuickUpdate changes only quantity and/or status. Nil arguments are left
// untouched.
func (v *View) QuickUpdate(id string, quantity *int, status *models.Status) (*models.InventoryItem, error) {
	return v.update("quick update item", id, models.ItemPatch{Quantity: quantity, Status: status})
}

func (v *View) update(action, id string, patch models.ItemPatch) (*models.InventoryItem, error) {
	session, err := v.requireSession(action)
	if err != nil {
		return nil, err
	}
	item, err := v.api.UpdateItem(id, patch)
	if err != nil {
		log.Printf("Error on %s %s: %v", action, id, err)
		return nil, err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if err := v.checkSession(session, action); err != nil {
		return nil, err
	}
	for i := range v.items {
		if v.items[i].ID == item.ID {
			v.items[i] = *item
			break
		}
	}
	v.refilter()
	return item, nil
}

// Remove deletes an item and drops it from the local list.
func (v *View) Remove(id string) error {
	session, err := v.requireSession("delete item")
	if err != nil {
		return err
	}
	if err := v.api.DeleteItem(id); err != nil {
		log.Printf("Error deleting item %s: %v", id, err)
		return err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if err := v.checkSession(session, "delete item"); err != nil {
		return err
	}
	kept := v.items[:0:0]
	for _, item := range v.items {
		if item.ID != id {
			kept = append(kept, item)
		}
	}
	v.items = kept
	v.refilter()
	return nil
}

// requireSession returns the session an action runs under.
func (v *View) requireSession(action string) (*models.User, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.user == nil {
		return nil, fmt.Errorf("cannot %s: %w", action, apperrors.ErrUnauthenticated)
	}
	return v.user, nil
}

// checkSession drops a result whose session ended or changed while the API
// call was in flight. It must be called with mu held.
func (v *View) checkSession(session *models.User, action string) error {
	if v.user != session {
		log.Printf("Discarding %s result: session changed", action)
		return fmt.Errorf("cannot %s: session ended: %w", action, apperrors.ErrUnauthenticated)
	}
	return nil
}

// refilter must be called with mu held for writing.
func (v *View) refilter() {
	filtered := make([]models.InventoryItem, 0, len(v.items))
	for _, item := range v.items {
		if v.filter.matches(item) {
			filtered = append(filtered, item)
		}
	}
	v.filtered = filtered
}
