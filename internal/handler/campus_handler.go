package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/campus-records-api/internal/authz"
	"github.com/noah-isme/campus-records-api/internal/service"
	"github.com/noah-isme/campus-records-api/internal/utils"
)

// CampusHandler manages campus lifecycle within a tenant.
type CampusHandler struct {
	campuses service.CampusService
	verifier *authz.ServiceRoleVerifier
	logger   zerolog.Logger
}

func NewCampusHandler(campuses service.CampusService, verifier *authz.ServiceRoleVerifier, logger zerolog.Logger) *CampusHandler {
	return &CampusHandler{
		campuses: campuses,
		verifier: verifier,
		logger:   logger.With().Str("component", "campus_handler").Logger(),
	}
}

func (h *CampusHandler) List(c *fiber.Ctx) error {
	logger := requestLogger(h.logger, c)

	resp, err := h.campuses.List(c.Context(), actorFromContext(c), c.Query("tenant_id"))
	if err != nil {
		return sendServiceError(logger, c, err, "failed to list campuses")
	}
	return utils.SendSuccess(c, "campuses retrieved", resp)
}

func (h *CampusHandler) CanDeactivate(c *fiber.Ctx) error {
	logger := requestLogger(h.logger, c)

	resp, err := h.campuses.CanDeactivate(c.Context(), actorFromContext(c), c.Query("tenant_id"), c.Params("code"))
	if err != nil {
		return sendServiceError(logger, c, err, "failed to check campus deactivation")
	}
	return utils.SendSuccess(c, "deactivation check complete", resp)
}

func (h *CampusHandler) Deactivate(c *fiber.Ctx) error {
	logger := requestLogger(h.logger, c)
	actor := actorFromContext(c)

	grant, err := h.verify(c, actor)
	if err != nil {
		return sendServiceError(logger, c, err, "role verification failed")
	}

	if err := h.campuses.Deactivate(c.Context(), actor, grant, c.Query("tenant_id"), c.Params("code")); err != nil {
		return sendServiceError(logger, c, err, "failed to deactivate campus")
	}
	return utils.SendSuccess(c, "campus deactivated", nil)
}

func (h *CampusHandler) Activate(c *fiber.Ctx) error {
	logger := requestLogger(h.logger, c)
	actor := actorFromContext(c)

	grant, err := h.verify(c, actor)
	if err != nil {
		return sendServiceError(logger, c, err, "role verification failed")
	}

	if err := h.campuses.Activate(c.Context(), actor, grant, c.Query("tenant_id"), c.Params("code")); err != nil {
		return sendServiceError(logger, c, err, "failed to activate campus")
	}
	return utils.SendSuccess(c, "campus activated", nil)
}

func (h *CampusHandler) verify(c *fiber.Ctx, actor authz.Actor) (authz.Grant, error) {
	tenantID, err := authz.ResolveTenant(actor, c.Query("tenant_id"))
	if err != nil {
		return authz.Grant{}, err
	}
	return h.verifier.Verify(c.Context(), actor.ID, tenantID)
}

// Register wires campus routes onto the given group.
func (h *CampusHandler) Register(group fiber.Router) {
	group.Get("/", h.List)
	group.Get("/:code/can-deactivate", h.CanDeactivate)
	group.Post("/:code/deactivate", h.Deactivate)
	group.Post("/:code/activate", h.Activate)
}
