package middleware

import (
	"cabin/internal/apperrors"
	"cabin/internal/models"
	"cabin/internal/services"

	"github.com/gofiber/fiber/v2"
)

const userLocalsKey = "user"

// CredentialsFromRequest collects the identity-bearing headers of a request.
func CredentialsFromRequest(c *fiber.Ctx) services.Credentials {
	return services.Credentials{
		Principal:     c.Get(services.PrincipalHeader),
		Authorization: c.Get(fiber.HeaderAuthorization),
	}
}

// IdentityRequired resolves the caller identity and stores it in the Fiber
// context. Requests without an identity fail with apperrors.ErrUnauthenticated,
// which the app's error handler turns into a 401.
func IdentityRequired(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := authService.RequireAuth(CredentialsFromRequest(c))
		if err != nil {
			return err
		}

		c.Locals(userLocalsKey, user)
		return c.Next()
	}
}

// CurrentUser returns the identity stored by IdentityRequired.
func CurrentUser(c *fiber.Ctx) (*models.User, error) {
	user, ok := c.Locals(userLocalsKey).(*models.User)
	if !ok || user == nil {
		return nil, apperrors.ErrUnauthenticated
	}
	return user, nil
}
