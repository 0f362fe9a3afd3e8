package models

import "time"

// Category groups inventory items on the board.
type Category string

const (
	CategoryPantry       Category = "Pantry"
	CategoryFreshFood    Category = "Fresh Food"
	CategoryHousehold    Category = "Household"
	CategoryPersonalCare Category = "Personal Care"
	CategoryOutdoor      Category = "Outdoor"
	CategoryOther        Category = "Other"
)

// Categories lists every valid category in display order.
var Categories = []Category{
	CategoryPantry,
	CategoryFreshFood,
	CategoryHousehold,
	CategoryPersonalCare,
	CategoryOutdoor,
	CategoryOther,
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Status tells whether an item is stocked, running out, or needs to travel.
type Status string

const (
	StatusEnough Status = "Enough"
	StatusLow    Status = "Low"
	StatusBuy    Status = "Buy"
	StatusBring  Status = "Bring"
	StatusPacked Status = "Packed"
)

// Statuses lists every valid status.
var Statuses = []Status{StatusEnough, StatusLow, StatusBuy, StatusBring, StatusPacked}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// InventoryItem is a single tracked supply owned by one user.
type InventoryItem struct {
	ID          string    `json:"id"`
	Name        string    `json:"name" validate:"required"`
	Quantity    int       `json:"quantity" validate:"gte=0"`
	Unit        string    `json:"unit,omitempty"`
	Category    Category  `json:"category" validate:"required,category"`
	Status      Status    `json:"status" validate:"required,status"`
	Notes       string    `json:"notes,omitempty"`
	Location    string    `json:"location,omitempty"`
	LastUpdated time.Time `json:"lastUpdated"`
	UserID      string    `json:"userId"`
}

// ItemInput is the client-writable part of an item, used on create.
// id, userId and lastUpdated are server-owned and absent.
type ItemInput struct {
	Name     string   `json:"name"`
	Quantity int      `json:"quantity"`
	Unit     string   `json:"unit"`
	Category Category `json:"category"`
	Status   Status   `json:"status"`
	Notes    string   `json:"notes"`
	Location string   `json:"location"`
}

// ToItem builds an unsaved item owned by userID.
func (in ItemInput) ToItem(userID string) *InventoryItem {
	return &InventoryItem{
		Name:     in.Name,
		Quantity: in.Quantity,
		Unit:     in.Unit,
		Category: in.Category,
		Status:   in.Status,
		Notes:    in.Notes,
		Location: in.Location,
		UserID:   userID,
	}
}

// ItemPatch is a partial update. A nil field was not supplied.
type ItemPatch struct {
	Name     *string   `json:"name,omitempty"`
	Quantity *int      `json:"quantity,omitempty"`
	Unit     *string   `json:"unit,omitempty"`
	Category *Category `json:"category,omitempty"`
	Status   *Status   `json:"status,omitempty"`
	Notes    *string   `json:"notes,omitempty"`
	Location *string   `json:"location,omitempty"`
}

// Apply shallow-merges the supplied fields over item.
func (p ItemPatch) Apply(item *InventoryItem) {
	if p.Name != nil {
		item.Name = *p.Name
	}
	if p.Quantity != nil {
		item.Quantity = *p.Quantity
	}
	if p.Unit != nil {
		item.Unit = *p.Unit
	}
	if p.Category != nil {
		item.Category = *p.Category
	}
	if p.Status != nil {
		item.Status = *p.Status
	}
	if p.Notes != nil {
		item.Notes = *p.Notes
	}
	if p.Location != nil {
		item.Location = *p.Location
	}
}

// Empty reports whether the patch supplies no field at all.
func (p ItemPatch) Empty() bool {
	return p == ItemPatch{}
}
