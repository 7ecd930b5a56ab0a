package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/campus-records-api/internal/authz"
	"github.com/noah-isme/campus-records-api/internal/dto"
	"github.com/noah-isme/campus-records-api/internal/service"
	"github.com/noah-isme/campus-records-api/internal/utils"
)

// AdminUserHandler manages actor profiles within a tenant. Role changes and
// deletions re-verify the caller against the profile store before the
// service will accept them.
type AdminUserHandler struct {
	users    service.AdminUserService
	verifier *authz.ServiceRoleVerifier
	logger   zerolog.Logger
}

func NewAdminUserHandler(users service.AdminUserService, verifier *authz.ServiceRoleVerifier, logger zerolog.Logger) *AdminUserHandler {
	return &AdminUserHandler{
		users:    users,
		verifier: verifier,
		logger:   logger.With().Str("component", "admin_user_handler").Logger(),
	}
}

func (h *AdminUserHandler) List(c *fiber.Ctx) error {
	logger := requestLogger(h.logger, c)

	page, pageSize, err := parsePagination(c, 25, 100)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid pagination parameters")
	}

	req := dto.AdminUserListRequest{
		TenantID: c.Query("tenant_id"),
		Search:   c.Query("search"),
		Role:     c.Query("role"),
		Page:     page,
		PageSize: pageSize,
	}

	resp, err := h.users.List(c.Context(), actorFromContext(c), req)
	if err != nil {
		return sendServiceError(logger, c, err, "failed to list users")
	}
	return utils.SendSuccess(c, "users retrieved", resp)
}

func (h *AdminUserHandler) Get(c *fiber.Ctx) error {
	logger := requestLogger(h.logger, c)

	resp, err := h.users.Get(c.Context(), actorFromContext(c), c.Query("tenant_id"), c.Params("id"))
	if err != nil {
		return sendServiceError(logger, c, err, "failed to retrieve user")
	}
	return utils.SendSuccess(c, "user retrieved", resp)
}

func (h *AdminUserHandler) Update(c *fiber.Ctx) error {
	logger := requestLogger(h.logger, c)

	var payload dto.AdminUserUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	resp, err := h.users.Update(c.Context(), actorFromContext(c), c.Query("tenant_id"), c.Params("id"), payload)
	if err != nil {
		return sendServiceError(logger, c, err, "failed to update user")
	}
	return utils.SendSuccess(c, "user updated", resp)
}

func (h *AdminUserHandler) UpdateRole(c *fiber.Ctx) error {
	logger := requestLogger(h.logger, c)
	actor := actorFromContext(c)

	var payload dto.AdminUserRoleUpdateRequest
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

	resp, err := h.users.UpdateRole(c.Context(), actor, grant, c.Query("tenant_id"), c.Params("id"), payload)
	if err != nil {
		return sendServiceError(logger, c, err, "failed to update user role")
	}
	return utils.SendSuccess(c, "user role updated", resp)
}

func (h *AdminUserHandler) Delete(c *fiber.Ctx) error {
	logger := requestLogger(h.logger, c)
	actor := actorFromContext(c)

	tenantID, err := authz.ResolveTenant(actor, c.Query("tenant_id"))
	if err != nil {
		return sendServiceError(logger, c, err, "failed to resolve tenant")
	}

	grant, err := h.verifier.Verify(c.Context(), actor.ID, tenantID)
	if err != nil {
		return sendServiceError(logger, c, err, "role verification failed")
	}

	if err := h.users.Delete(c.Context(), actor, grant, c.Query("tenant_id"), c.Params("id")); err != nil {
		return sendServiceError(logger, c, err, "failed to delete user")
	}
	return utils.SendSuccess(c, "user deleted", nil)
}

// Register wires user administration routes onto the given group.
func (h *AdminUserHandler) Register(group fiber.Router) {
	group.Get("/", h.List)
	group.Get("/:id", h.Get)
	group.Patch("/:id", h.Update)
	group.Patch("/:id/role", h.UpdateRole)
	group.Delete("/:id", h.Delete)
}
