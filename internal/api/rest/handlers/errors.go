package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/meowls-gov/visa-portal/internal/helper/utils"
	"github.com/meowls-gov/visa-portal/internal/services"
)

// serviceError maps service sentinels onto the error taxonomy the client
// expects: 401 unauthenticated, 403 ownership/role, 404 missing, 400 bad
// input, 409 illegal transition.
func serviceError(ctx *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrNotAuthenticated):
		return utils.ResponseError(ctx, fiber.StatusUnauthorized, "Invalid email or password")
	case errors.Is(err, services.ErrForbidden):
		return utils.ResponseError(ctx, fiber.StatusForbidden, "Access denied")
	case errors.Is(err, services.ErrNotFound):
		return utils.ResponseError(ctx, fiber.StatusNotFound, "Application not found")
	case errors.Is(err, services.ErrValidation):
		return utils.ResponseError(ctx, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrNotEditable),
		errors.Is(err, services.ErrAlreadySubmitted),
		errors.Is(err, services.ErrSameStatus):
		return utils.ResponseError(ctx, fiber.StatusConflict, err.Error())
	default:
		return utils.ResponseError(ctx, fiber.StatusInternalServerError, err.Error())
	}
}
