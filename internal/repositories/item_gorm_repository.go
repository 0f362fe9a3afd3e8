package repositories

import (
	"fmt"
	"time"

	"cabin/internal/apperrors"
	"cabin/internal/models"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// itemRecord is the row layout of an inventory item. Seq keeps insertion
// order, which the string ID cannot.
type itemRecord struct {
	Seq         uint   `gorm:"primaryKey;autoIncrement"`
	ID          string `gorm:"uniqueIndex;type:varchar(36);not null"`
	UserID      string `gorm:"index;type:varchar(255);not null"`
	Name        string `gorm:"not null"`
	Quantity    int
	Unit        string
	Category    string
	Status      string
	Notes       string
	Location    string
	LastUpdated time.Time
}

func (itemRecord) TableName() string { return "inventory_items" }

func (rec itemRecord) toModel() models.InventoryItem {
	return models.InventoryItem{
		ID:          rec.ID,
		Name:        rec.Name,
		Quantity:    rec.Quantity,
		Unit:        rec.Unit,
		Category:    models.Category(rec.Category),
		Status:      models.Status(rec.Status),
		Notes:       rec.Notes,
		Location:    rec.Location,
		LastUpdated: rec.LastUpdated.UTC(),
		UserID:      rec.UserID,
	}
}

func recordFromModel(item *models.InventoryItem) itemRecord {
	return itemRecord{
		ID:          item.ID,
		UserID:      item.UserID,
		Name:        item.Name,
		Quantity:    item.Quantity,
		Unit:        item.Unit,
		Category:    string(item.Category),
		Status:      string(item.Status),
		Notes:       item.Notes,
		Location:    item.Location,
		LastUpdated: item.LastUpdated,
	}
}

// OpenInMemorySQLite opens a named, shared-cache, in-memory SQLite database.
// The pool is limited to one connection: it keeps the database alive for the
// life of the process and serializes every statement.
func OpenInMemorySQLite(name string) (*gorm.DB, error) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access sql pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)
	return db, nil
}

// GORMItemRepository is a GORM implementation of ItemRepository.
type GORMItemRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGORMItemRepository migrates the items table and returns the repository.
func NewGORMItemRepository(db *gorm.DB) (*GORMItemRepository, error) {
	if err := db.AutoMigrate(&itemRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate inventory items: %w", err)
	}
	return &GORMItemRepository{
		db:  db,
		now: time.Now,
	}, nil
}

// List retrieves the user's items in creation order.
func (r *GORMItemRepository) List(userID string) ([]models.InventoryItem, error) {
	var records []itemRecord
	if err := r.db.Where("user_id = ?", userID).Order("seq").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list items for user %s: %w", userID, err)
	}
	items := make([]models.InventoryItem, 0, len(records))
	for _, rec := range records {
		items = append(items, rec.toModel())
	}
	return items, nil
}

// Create inserts item with a fresh ID and timestamp.
func (r *GORMItemRepository) Create(item *models.InventoryItem) error {
	item.ID = uuid.New().String()
	item.LastUpdated = r.now().UTC()

	rec := recordFromModel(item)
	if err := r.db.Create(&rec).Error; err != nil {
		return fmt.Errorf("failed to create item: %w", err)
	}
	return nil
}

// Update loads, mutates and saves the user's item in one transaction.
func (r *GORMItemRepository) Update(id, userID string, mutate func(*models.InventoryItem) error) (*models.InventoryItem, error) {
	var updated models.InventoryItem
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var rec itemRecord
		res := tx.Where("id = ? AND user_id = ?", id, userID).Limit(1).Find(&rec)
		if res.Error != nil {
			return fmt.Errorf("failed to get item by ID %s: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("item with ID %s not found for update: %w", id, apperrors.ErrNotFound)
		}

		current := rec.toModel()
		updated = current
		if mutate != nil {
			if err := mutate(&updated); err != nil {
				return err
			}
		}
		updated.ID = current.ID
		updated.UserID = current.UserID
		updated.LastUpdated = nextTimestamp(current.LastUpdated, r.now())

		next := recordFromModel(&updated)
		next.Seq = rec.Seq
		if err := tx.Save(&next).Error; err != nil {
			return fmt.Errorf("failed to update item: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes the user's item.
func (r *GORMItemRepository) Delete(id, userID string) error {
	res := r.db.Where("id = ? AND user_id = ?", id, userID).Delete(&itemRecord{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete item: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("item with ID %s not found for deletion: %w", id, apperrors.ErrNotFound)
	}
	return nil
}
