package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/campus-records-api/internal/dto"
	"github.com/noah-isme/campus-records-api/internal/service"
	"github.com/noah-isme/campus-records-api/internal/utils"
)

// RecordHandler exposes the trespass record lifecycle over HTTP.
type RecordHandler struct {
	records service.RecordService
	logger  zerolog.Logger
}

func NewRecordHandler(records service.RecordService, logger zerolog.Logger) *RecordHandler {
	return &RecordHandler{
		records: records,
		logger:  logger.With().Str("component", "record_handler").Logger(),
	}
}

func (h *RecordHandler) List(c *fiber.Ctx) error {
	logger := requestLogger(h.logger, c)

	page, pageSize, err := parsePagination(c, 25, 100)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid pagination parameters")
	}

	req := dto.RecordListRequest{
		TenantID: c.Query("tenant_id"),
		CampusID: c.Query("campus_id"),
		Status:   c.Query("status"),
		Search:   c.Query("search"),
		Page:     page,
		PageSize: pageSize,
	}

	resp, err := h.records.List(c.Context(), actorFromContext(c), req)
	if err != nil {
		return sendServiceError(logger, c, err, "failed to list records")
	}
	return utils.SendSuccess(c, "records retrieved", resp)
}

func (h *RecordHandler) Get(c *fiber.Ctx) error {
	logger := requestLogger(h.logger, c)

	resp, err := h.records.Get(c.Context(), actorFromContext(c), c.Query("tenant_id"), c.Params("id"))
	if err != nil {
		return sendServiceError(logger, c, err, "failed to retrieve record")
	}
	return utils.SendSuccess(c, "record retrieved", resp)
}

func (h *RecordHandler) Create(c *fiber.Ctx) error {
	logger := requestLogger(h.logger, c)

	var payload dto.RecordCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	resp, err := h.records.Create(c.Context(), actorFromContext(c), payload)
	if err != nil {
		return sendServiceError(logger, c, err, "failed to create record")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "record created", resp)
}

func (h *RecordHandler) Update(c *fiber.Ctx) error {
	logger := requestLogger(h.logger, c)

	var payload dto.RecordUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	resp, err := h.records.Update(c.Context(), actorFromContext(c), c.Query("tenant_id"), c.Params("id"), payload)
	if err != nil {
		return sendServiceError(logger, c, err, "failed to update record")
	}
	return utils.SendSuccess(c, "record updated", resp)
}

func (h *RecordHandler) Delete(c *fiber.Ctx) error {
	logger := requestLogger(h.logger, c)

	if err := h.records.SoftDelete(c.Context(), actorFromContext(c), c.Query("tenant_id"), c.Params("id")); err != nil {
		return sendServiceError(logger, c, err, "failed to delete record")
	}
	return utils.SendSuccess(c, "record deleted", nil)
}

func (h *RecordHandler) Restore(c *fiber.Ctx) error {
	logger := requestLogger(h.logger, c)

	resp, err := h.records.Restore(c.Context(), actorFromContext(c), c.Query("tenant_id"), c.Params("id"))
	if err != nil {
		return sendServiceError(logger, c, err, "failed to restore record")
	}
	return utils.SendSuccess(c, "record restored", resp)
}

func (h *RecordHandler) PermanentlyDelete(c *fiber.Ctx) error {
	logger := requestLogger(h.logger, c)

	if err := h.records.PermanentlyDelete(c.Context(), actorFromContext(c), c.Query("tenant_id"), c.Params("id")); err != nil {
		return sendServiceError(logger, c, err, "failed to permanently delete record")
	}
	return utils.SendSuccess(c, "record permanently deleted", nil)
}

func (h *RecordHandler) ListDeleted(c *fiber.Ctx) error {
	logger := requestLogger(h.logger, c)

	resp, err := h.records.ListDeleted(c.Context(), actorFromContext(c), c.Query("tenant_id"))
	if err != nil {
		return sendServiceError(logger, c, err, "failed to list deleted records")
	}
	return utils.SendSuccess(c, "deleted records retrieved", resp)
}

// Register wires record routes onto the given group.
func (h *RecordHandler) Register(group fiber.Router, purgeLimiter fiber.Handler) {
	group.Get("/", h.List)
	group.Post("/", h.Create)
	group.Get("/deleted", h.ListDeleted)
	group.Get("/:id", h.Get)
	group.Patch("/:id", h.Update)
	group.Delete("/:id", h.Delete)
	group.Post("/:id/restore", h.Restore)
	if purgeLimiter != nil {
		group.Delete("/:id/permanent", purgeLimiter, h.PermanentlyDelete)
	} else {
		group.Delete("/:id/permanent", h.PermanentlyDelete)
	}
}
