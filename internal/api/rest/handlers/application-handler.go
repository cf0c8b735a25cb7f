package handlers

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/meowls-gov/visa-portal/internal/api/rest/middleware"
	"github.com/meowls-gov/visa-portal/internal/dto"
	"github.com/meowls-gov/visa-portal/internal/helper/utils"
	"github.com/meowls-gov/visa-portal/internal/services"
)

const maxDocumentSize = 5 * 1024 * 1024 // 5MB

var allowedDocumentExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".webp": true, ".pdf": true,
}

type ApplicationHandler struct {
	svc services.ApplicationService
}

func NewApplicationHandler(svc services.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{svc: svc}
}

func (h *ApplicationHandler) SetupRoutes(api fiber.Router, authRequired fiber.Handler) {
	apps := api.Group("/applications", authRequired)

	apps.Post("/", h.Create)
	apps.Get("/", h.List)
	apps.Get("/:appID", h.Get)
	apps.Put("/:appID", h.Update)
	apps.Post("/:appID/documents", h.UploadDocument)
	apps.Post("/:appID/submit", h.Submit)
}

func (h *ApplicationHandler) Create(ctx *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		return utils.ResponseError(ctx, fiber.StatusUnauthorized, "not authenticated")
	}

	var requestBody dto.ApplicationCreate
	if err := ctx.BodyParser(&requestBody); err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "Please provide valid inputs")
	}

	app, err := h.svc.Create(user.UserID, requestBody)
	if err != nil {
		return serviceError(ctx, err)
	}
	return ctx.Status(fiber.StatusOK).JSON(app)
}

func (h *ApplicationHandler) List(ctx *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		return utils.ResponseError(ctx, fiber.StatusUnauthorized, "not authenticated")
	}

	apps, err := h.svc.ListByUser(user.UserID)
	if err != nil {
		return serviceError(ctx, err)
	}
	return ctx.JSON(apps)
}

func (h *ApplicationHandler) Get(ctx *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		return utils.ResponseError(ctx, fiber.StatusUnauthorized, "not authenticated")
	}

	app, err := h.svc.Get(ctx.Params("appID"), user)
	if err != nil {
		return serviceError(ctx, err)
	}
	return ctx.JSON(app)
}

func (h *ApplicationHandler) Update(ctx *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		return utils.ResponseError(ctx, fiber.StatusUnauthorized, "not authenticated")
	}

	var requestBody dto.ApplicationCreate
	if err := ctx.BodyParser(&requestBody); err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "Please provide valid inputs")
	}

	app, err := h.svc.Update(ctx.Params("appID"), user.UserID, requestBody)
	if err != nil {
		return serviceError(ctx, err)
	}
	return ctx.JSON(app)
}

// UploadDocument receives one wizard slot: form-data file plus ?doc_type=.
func (h *ApplicationHandler) UploadDocument(ctx *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		return utils.ResponseError(ctx, fiber.StatusUnauthorized, "not authenticated")
	}

	docType := ctx.Query("doc_type", "passport")

	file, err := ctx.FormFile("file")
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "file is required")
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedDocumentExts[ext] {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "only jpg/jpeg/png/webp/pdf allowed")
	}
	if file.Size > maxDocumentSize {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "file too large (max 5MB)")
	}

	f, err := file.Open()
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusInternalServerError, "cannot open uploaded file")
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusInternalServerError, "cannot read uploaded file")
	}

	mimeType := file.Header.Get("Content-Type")

	doc, err := h.svc.UploadDocument(ctx.UserContext(),
		ctx.Params("appID"), user.UserID, docType, file.Filename, mimeType, file.Size, data)
	if err != nil {
		return serviceError(ctx, err)
	}

	return ctx.JSON(dto.DocumentUploadResponse{
		Message: "Document uploaded successfully",
		DocType: string(doc.DocType),
		FileURL: doc.FileURL,
	})
}

func (h *ApplicationHandler) Submit(ctx *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		return utils.ResponseError(ctx, fiber.StatusUnauthorized, "not authenticated")
	}

	if _, err := h.svc.Submit(ctx.Params("appID"), user.UserID); err != nil {
		return serviceError(ctx, err)
	}
	return utils.ResponseMessage(ctx, fiber.StatusOK, "Application submitted successfully")
}
