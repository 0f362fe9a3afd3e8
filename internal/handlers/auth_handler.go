package handlers

import (
	"errors"
	"log"

	"cabin/internal/apperrors"
	"cabin/internal/middleware"
	"cabin/internal/services"

	"github.com/gofiber/fiber/v2"
)

// AuthHandler exposes what the server knows about the caller.
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// RegisterRoutes registers the identity routes. They are public.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/me", h.HandleMe)
	authRoutes := router.Group("/auth")
	authRoutes.Post("/demo-token", h.HandleDemoToken)
}

// HandleMe returns the resolved identity, or a null principal.
func (h *AuthHandler) HandleMe(c *fiber.Ctx) error {
	user := h.authService.ResolveIdentity(middleware.CredentialsFromRequest(c))
	return c.JSON(fiber.Map{
		"clientPrincipal": user,
	})
}

// HandleDemoToken issues a bearer token for the demo identity. It only
// exists while both the demo fallback and token signing are enabled.
func (h *AuthHandler) HandleDemoToken(c *fiber.Ctx) error {
	token, err := h.authService.IssueDemoToken()
	if err != nil {
		if errors.Is(err, services.ErrTokensDisabled) || errors.Is(err, apperrors.ErrUnauthenticated) {
			return fiber.NewError(fiber.StatusNotFound, "Demo login is not available")
		}
		log.Printf("Error issuing demo token: %v", err)
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"token": token,
	})
}
