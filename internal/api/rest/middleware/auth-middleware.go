package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/meowls-gov/visa-portal/internal/domain"
	"github.com/meowls-gov/visa-portal/internal/services"
)

const SessionCookie = "session_token"

// AuthRequired resolves the caller's identity: cookie session first, then the
// Authorization header, where the bearer may be either a JWT access token or a
// raw session token. Absence or invalidity is uniformly a 401.
func AuthRequired(authSvc services.AuthService) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		var user *domain.User

		if token := strings.TrimSpace(ctx.Cookies(SessionCookie)); token != "" {
			user, _ = authSvc.Authenticate(token)
		}

		if user == nil {
			bearer := strings.TrimSpace(ctx.Get("Authorization"))
			if bearer != "" {
				user, _ = authSvc.AuthenticateBearer(bearer)
				if user == nil {
					raw := strings.TrimPrefix(bearer, "Bearer ")
					user, _ = authSvc.Authenticate(strings.TrimSpace(raw))
				}
			}
		}

		if user == nil {
			return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "not authenticated",
			})
		}

		ctx.Locals("user", user)
		ctx.Locals("userID", user.UserID)
		return ctx.Next()
	}
}

func AdminOnly() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		user, ok := ctx.Locals("user").(*domain.User)
		if !ok || user == nil {
			return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "not authenticated",
			})
		}
		if !user.IsAdmin() {
			return ctx.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "admin access required",
			})
		}
		return ctx.Next()
	}
}

// CurrentUser pulls the identity the auth middleware stored on the request.
func CurrentUser(ctx *fiber.Ctx) (*domain.User, bool) {
	user, ok := ctx.Locals("user").(*domain.User)
	return user, ok && user != nil
}
