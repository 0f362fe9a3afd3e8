package services

import (
	"encoding/json"
	"fmt"
	"log"
	"reflect"
	"strings"
	"time"

	"cabin/internal/apperrors"
	"cabin/internal/models"
	"cabin/internal/repositories"

	"github.com/go-playground/validator/v10"
)

const requiredFieldsMessage = "Name, category, and status are required"

// EventPublisher sends inventory events to a broker.
type EventPublisher interface {
	Publish(routingKey string, body []byte) error
}

// InventoryService handles business logic related to inventory items.
type InventoryService struct {
	repo      repositories.ItemRepository
	validate  *validator.Validate
	publisher EventPublisher
	now       func() time.Time
}

// NewInventoryService creates a new InventoryService. publisher may be nil.
// It panics if the item validator cannot be built.
func NewInventoryService(repo repositories.ItemRepository, publisher EventPublisher) *InventoryService {
	validate, err := newItemValidator()
	if err != nil {
		panic(err)
	}
	return &InventoryService{
		repo:      repo,
		validate:  validate,
		publisher: publisher,
		now:       time.Now,
	}
}

func newItemValidator() (*validator.Validate, error) {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return models.Category(fl.Field().String()).Valid()
	}); err != nil {
		return nil, fmt.Errorf("failed to register category validation: %w", err)
	}
	if err := v.RegisterValidation("status", func(fl validator.FieldLevel) bool {
		return models.Status(fl.Field().String()).Valid()
	}); err != nil {
		return nil, fmt.Errorf("failed to register status validation: %w", err)
	}
	return v, nil
}

// ListItems retrieves the user's items.
func (s *InventoryService) ListItems(userID string) ([]models.InventoryItem, error) {
	items, err := s.repo.List(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	return items, nil
}

// CreateItem validates input and stores it as a new item owned by userID.
func (s *InventoryService) CreateItem(userID string, input models.ItemInput) (*models.InventoryItem, error) {
	item := input.ToItem(userID)
	if err := s.validateItem(item); err != nil {
		return nil, err
	}

	if err := s.repo.Create(item); err != nil {
		return nil, fmt.Errorf("failed to create item: %w", err)
	}

	s.publish(models.EventItemCreated, item.ID, userID, item)
	return item, nil
}

// UpdateItem merges patch into the user's item. The merged record must still
// be valid; otherwise nothing is written.
func (s *InventoryService) UpdateItem(id, userID string, patch models.ItemPatch) (*models.InventoryItem, error) {
	updated, err := s.repo.Update(id, userID, func(item *models.InventoryItem) error {
		patch.Apply(item)
		return s.validateItem(item)
	})
	if err != nil {
		return nil, err
	}

	s.publish(models.EventItemUpdated, updated.ID, userID, updated)
	return updated, nil
}

// DeleteItem removes the user's item.
func (s *InventoryService) DeleteItem(id, userID string) error {
	if err := s.repo.Delete(id, userID); err != nil {
		return err
	}

	s.publish(models.EventItemDeleted, id, userID, nil)
	return nil
}

func (s *InventoryService) validateItem(item *models.InventoryItem) error {
	err := s.validate.Struct(item)
	if err == nil {
		return nil
	}
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return fmt.Errorf("failed to validate item: %w", err)
	}

	verr := &apperrors.ValidationError{
		Message: "Validation failed",
		Fields:  make(map[string]string, len(validationErrors)),
	}
	for _, e := range validationErrors {
		switch e.Tag() {
		case "required":
			verr.Message = requiredFieldsMessage
			verr.Fields[e.Field()] = fmt.Sprintf("%s is required", e.Field())
		case "gte":
			verr.Fields[e.Field()] = fmt.Sprintf("%s must be at least %s", e.Field(), e.Param())
		default:
			verr.Fields[e.Field()] = fmt.Sprintf("%q is not a valid %s", e.Value(), e.Field())
		}
	}
	return verr
}

func (s *InventoryService) publish(eventType models.EventType, itemID, userID string, item *models.InventoryItem) {
	if s.publisher == nil {
		return
	}

	event := models.InventoryEvent{
		Type:       eventType,
		ItemID:     itemID,
		UserID:     userID,
		Item:       item,
		OccurredAt: s.now().UTC(),
	}
	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("Failed to marshal %s event to JSON: %v", eventType, err)
		return
	}
	if err := s.publisher.Publish(string(eventType), body); err != nil {
		log.Printf("Warning: Failed to publish %s event for item %s: %v", eventType, itemID, err)
		return
	}
	log.Printf("Successfully published %s event for item %s", eventType, itemID)
}
