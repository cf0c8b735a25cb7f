package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/meowls-gov/visa-portal/internal/api/rest/middleware"
	"github.com/meowls-gov/visa-portal/internal/dto"
	"github.com/meowls-gov/visa-portal/internal/helper/utils"
	"github.com/meowls-gov/visa-portal/internal/services"
)

type AuthHandler struct {
	svc services.AuthService
}

func NewAuthHandler(svc services.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

func (h *AuthHandler) SetupRoutes(api fiber.Router, authRequired fiber.Handler) {
	auth := api.Group("/auth")

	auth.Post("/register", h.Register)
	auth.Post("/login", h.Login)
	auth.Post("/session", h.Session)
	// logout works with or without a live session
	auth.Post("/logout", h.Logout)

	auth.Get("/me", authRequired, h.Me)
}

func (h *AuthHandler) Register(ctx *fiber.Ctx) error {
	var requestBody dto.RegisterRequest
	if err := ctx.BodyParser(&requestBody); err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "Please provide valid inputs")
	}

	user, token, err := h.svc.Register(requestBody)
	if err != nil {
		return serviceError(ctx, err)
	}

	setSessionCookie(ctx, token)
	return ctx.Status(fiber.StatusOK).JSON(dto.NewUserResponse(user))
}

func (h *AuthHandler) Login(ctx *fiber.Ctx) error {
	var requestBody dto.UserLogin
	if err := ctx.BodyParser(&requestBody); err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "email and password are required")
	}

	user, token, err := h.svc.Login(requestBody)
	if err != nil {
		return serviceError(ctx, err)
	}

	accessToken, err := h.svc.IssueToken(user)
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusInternalServerError, "could not generate token")
	}

	setSessionCookie(ctx, token)
	return ctx.Status(fiber.StatusOK).JSON(dto.LoginResponse{
		Token: accessToken,
		User:  dto.NewUserResponse(user),
	})
}

// Session exchanges the external-login fragment token for a portal session.
func (h *AuthHandler) Session(ctx *fiber.Ctx) error {
	var requestBody dto.SessionExchangeRequest
	if err := ctx.BodyParser(&requestBody); err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "session_id is required")
	}

	user, token, err := h.svc.ExchangeSession(ctx.UserContext(), requestBody.SessionID)
	if err != nil {
		return serviceError(ctx, err)
	}

	setSessionCookie(ctx, token)
	return ctx.Status(fiber.StatusOK).JSON(dto.NewUserResponse(user))
}

func (h *AuthHandler) Logout(ctx *fiber.Ctx) error {
	token := ctx.Cookies(middleware.SessionCookie)
	if token == "" {
		if bearer := ctx.Get("Authorization"); len(bearer) > 7 && bearer[:7] == "Bearer " {
			token = bearer[7:]
		}
	}

	if token != "" {
		_ = h.svc.Logout(token)
	}

	clearSessionCookie(ctx)
	return utils.ResponseMessage(ctx, fiber.StatusOK, "Logged out successfully")
}

func (h *AuthHandler) Me(ctx *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		return utils.ResponseError(ctx, fiber.StatusUnauthorized, "not authenticated")
	}
	return ctx.JSON(dto.NewUserResponse(user))
}

func setSessionCookie(ctx *fiber.Ctx, token string) {
	ctx.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(7 * 24 * time.Hour),
		HTTPOnly: true,
		Secure:   true,
		SameSite: fiber.CookieSameSiteNoneMode,
	})
}

func clearSessionCookie(ctx *fiber.Ctx) {
	ctx.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Secure:   true,
		SameSite: fiber.CookieSameSiteNoneMode,
	})
}
