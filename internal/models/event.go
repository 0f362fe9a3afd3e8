package models

import "time"

// EventType names what happened to an item.
type EventType string

const (
	EventItemCreated EventType = "item.created"
	EventItemUpdated EventType = "item.updated"
	EventItemDeleted EventType = "item.deleted"
)

// InventoryEvent is published after every successful write.
type InventoryEvent struct {
	Type       EventType      `json:"type"`
	ItemID     string         `json:"itemId"`
	UserID     string         `json:"userId"`
	Item       *InventoryItem `json:"item,omitempty"` // nil for deletions
	OccurredAt time.Time      `json:"occurredAt"`
}
