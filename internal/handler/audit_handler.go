package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/campus-records-api/internal/dto"
	"github.com/noah-isme/campus-records-api/internal/service"
	"github.com/noah-isme/campus-records-api/internal/utils"
)

// AuditHandler exposes read access to the audit ledger.
type AuditHandler struct {
	audit  service.AuditService
	logger zerolog.Logger
}

func NewAuditHandler(audit service.AuditService, logger zerolog.Logger) *AuditHandler {
	return &AuditHandler{
		audit:  audit,
		logger: logger.With().Str("component", "audit_handler").Logger(),
	}
}

func (h *AuditHandler) List(c *fiber.Ctx) error {
	logger := requestLogger(h.logger, c)

	page, pageSize, err := parsePagination(c, 25, 10000)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid pagination parameters")
	}

	from, err := parseQueryTime(c, "from")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid from timestamp")
	}
	to, err := parseQueryTime(c, "to")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid to timestamp")
	}

	req := dto.AuditLogListRequest{
		TenantID:    c.Query("tenant_id"),
		ActorEmail:  c.Query("actor_email"),
		SubjectName: c.Query("subject_name"),
		TargetID:    c.Query("target_id"),
		CampusID:    c.Query("campus_id"),
		From:        from,
		To:          to,
		Page:        page,
		PageSize:    pageSize,
		Export:      c.QueryBool("export"),
	}
	if eventTypes := c.Query("event_types"); eventTypes != "" {
		req.EventTypes = splitAndTrim(eventTypes)
	}

	resp, err := h.audit.Query(c.Context(), actorFromContext(c), req)
	if err != nil {
		return sendServiceError(logger, c, err, "failed to query audit log")
	}
	return utils.SendSuccess(c, "audit events retrieved", resp)
}

// Register wires audit routes onto the given group.
func (h *AuditHandler) Register(group fiber.Router) {
	group.Get("/", h.List)
}
