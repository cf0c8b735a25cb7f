package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/meowls-gov/visa-portal/internal/api/rest/middleware"
	"github.com/meowls-gov/visa-portal/internal/dto"
	"github.com/meowls-gov/visa-portal/internal/helper/utils"
	"github.com/meowls-gov/visa-portal/internal/services"
)

type AdminHandler struct {
	svc   services.ReviewService
	audit *services.AuditService
}

func NewAdminHandler(svc services.ReviewService, audit *services.AuditService) *AdminHandler {
	return &AdminHandler{svc: svc, audit: audit}
}

func (h *AdminHandler) SetupRoutes(api fiber.Router, authRequired, adminOnly fiber.Handler) {
	admin := api.Group("/admin", authRequired, adminOnly)

	admin.Get("/applications", h.ListApplications)
	admin.Put("/applications/:appID/status", h.UpdateStatus)
	admin.Get("/audit", h.AuditTrail)
}

func (h *AdminHandler) ListApplications(ctx *fiber.Ctx) error {
	apps, err := h.svc.ListAll()
	if err != nil {
		return serviceError(ctx, err)
	}
	return ctx.JSON(apps)
}

func (h *AdminHandler) UpdateStatus(ctx *fiber.Ctx) error {
	admin, ok := middleware.CurrentUser(ctx)
	if !ok {
		return utils.ResponseError(ctx, fiber.StatusUnauthorized, "not authenticated")
	}

	var requestBody dto.StatusUpdate
	if err := ctx.BodyParser(&requestBody); err != nil || requestBody.Status == "" {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "status is required")
	}

	_, emailSent, err := h.svc.UpdateStatus(ctx.UserContext(), ctx.Params("appID"), admin, requestBody)
	if err != nil {
		return serviceError(ctx, err)
	}

	// flat response: the review UI branches on email_sent to choose its
	// confirmation message and must never be told an email went out when it
	// did not
	return ctx.JSON(dto.StatusUpdateResponse{
		Message:   "Status updated successfully",
		EmailSent: emailSent,
	})
}

func (h *AdminHandler) AuditTrail(ctx *fiber.Ctx) error {
	entries, err := h.audit.Recent(ctx.QueryInt("limit", 50))
	if err != nil {
		return serviceError(ctx, err)
	}
	return ctx.JSON(entries)
}
