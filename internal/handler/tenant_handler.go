package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/campus-records-api/internal/authz"
	"github.com/noah-isme/campus-records-api/internal/dto"
	"github.com/noah-isme/campus-records-api/internal/service"
	"github.com/noah-isme/campus-records-api/internal/utils"
)

// TenantHandler exposes tenant settings and the master_admin tenant switch.
type TenantHandler struct {
	tenants  service.TenantService
	verifier *authz.ServiceRoleVerifier
	logger   zerolog.Logger
}

func NewTenantHandler(tenants service.TenantService, verifier *authz.ServiceRoleVerifier, logger zerolog.Logger) *TenantHandler {
	return &TenantHandler{
		tenants:  tenants,
		verifier: verifier,
		logger:   logger.With().Str("component", "tenant_handler").Logger(),
	}
}

func (h *TenantHandler) Get(c *fiber.Ctx) error {
	logger := requestLogger(h.logger, c)

	resp, err := h.tenants.Get(c.Context(), actorFromContext(c), c.Query("tenant_id"))
	if err != nil {
		return sendServiceError(logger, c, err, "failed to retrieve tenant")
	}
	return utils.SendSuccess(c, "tenant retrieved", resp)
}

func (h *TenantHandler) Update(c *fiber.Ctx) error {
	logger := requestLogger(h.logger, c)
	actor := actorFromContext(c)

	var payload dto.TenantUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	tenantID, err := authz.ResolveTenant(actor, c.Query("tenant_id"))
	if err != nil {
		return sendServiceError(logger, c, err, "failed to resolve tenant")
	}

	grant, err := h.verifier.Verify(c.Context(), actor.ID, tenantID)
	if err != nil {
		return sendServiceError(logger, c, err, "role verification failed")
	}

	resp, err := h.tenants.Update(c.Context(), actor, grant, c.Query("tenant_id"), payload)
	if err != nil {
		return sendServiceError(logger, c, err, "failed to update tenant")
	}
	return utils.SendSuccess(c, "tenant updated", resp)
}

func (h *TenantHandler) Switch(c *fiber.Ctx) error {
	logger := requestLogger(h.logger, c)

	var payload dto.TenantSwitchRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	resp, err := h.tenants.SwitchActiveTenant(c.Context(), actorFromContext(c), payload)
	if err != nil {
		return sendServiceError(logger, c, err, "failed to switch tenant")
	}
	return utils.SendSuccess(c, "active tenant switched", resp)
}

// Register wires tenant routes onto the given group.
func (h *TenantHandler) Register(group fiber.Router) {
	group.Get("/", h.Get)
	group.Patch("/", h.Update)
	group.Post("/switch", h.Switch)
}
