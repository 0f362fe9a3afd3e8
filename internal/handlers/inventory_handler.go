package handlers

import (
	"fmt"
	"log"

	"cabin/internal/apperrors"
	"cabin/internal/middleware"
	"cabin/internal/models"
	"cabin/internal/services"

	"github.com/gofiber/fiber/v2"
)

// InventoryHandler handles HTTP requests for inventory items.
type InventoryHandler struct {
	service *services.InventoryService
}

// NewInventoryHandler creates a new InventoryHandler.
func NewInventoryHandler(service *services.InventoryService) *InventoryHandler {
	return &InventoryHandler{
		service: service,
	}
}

// RegisterRoutes registers the inventory routes. The router must already
// run middleware.IdentityRequired.
func (h *InventoryHandler) RegisterRoutes(router fiber.Router) {
	itemRoutes := router.Group("/inventory")
	itemRoutes.Get("/", h.HandleListItems)
	itemRoutes.Post("/", h.HandleCreateItem)
	itemRoutes.Put("/:id", h.HandleUpdateItem)
	itemRoutes.Delete("/:id", h.HandleDeleteItem)
}

// HandleListItems returns the caller's items.
func (h *InventoryHandler) HandleListItems(c *fiber.Ctx) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}

	items, err := h.service.ListItems(user.UserID)
	if err != nil {
		return fmt.Errorf("could not retrieve items: %w", err)
	}
	return c.JSON(items)
}

// HandleCreateItem creates a new item owned by the caller.
func (h *InventoryHandler) HandleCreateItem(c *fiber.Ctx) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}

	var input models.ItemInput
	if err := c.BodyParser(&input); err != nil {
		log.Printf("Error parsing create item request body: %v", err)
		return apperrors.NewValidationError("Invalid request body")
	}

	item, err := h.service.CreateItem(user.UserID, input)
	if err != nil {
		log.Printf("Error creating item for user %s: %v", user.UserID, err)
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

// HandleUpdateItem merges the request body into one of the caller's items.
func (h *InventoryHandler) HandleUpdateItem(c *fiber.Ctx) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}
	itemID := c.Params("id")

	var patch models.ItemPatch
	if err := c.BodyParser(&patch); err != nil {
		log.Printf("Error parsing update request body for item %s: %v", itemID, err)
		return apperrors.NewValidationError("Invalid request body")
	}

	item, err := h.service.UpdateItem(itemID, user.UserID, patch)
	if err != nil {
		log.Printf("Error updating item %s: %v", itemID, err)
		return err
	}
	return c.JSON(item)
}

// HandleDeleteItem removes one of the caller's items.
func (h *InventoryHandler) HandleDeleteItem(c *fiber.Ctx) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}
	itemID := c.Params("id")

	if err := h.service.DeleteItem(itemID, user.UserID); err != nil {
		log.Printf("Error deleting item %s: %v", itemID, err)
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
