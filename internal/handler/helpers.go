package handler

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/campus-records-api/internal/authz"
	"github.com/noah-isme/campus-records-api/internal/middleware"
	"github.com/noah-isme/campus-records-api/internal/service"
	"github.com/noah-isme/campus-records-api/internal/utils"
)

func splitAndTrim(input string) []string {
	parts := strings.Split(input, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func parseQueryInt(c *fiber.Ctx, key string) (int, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return 0, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return parsed, nil
}

func parseQueryTime(c *fiber.Ctx, key string) (*time.Time, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		parsed, err = time.Parse("2006-01-02", value)
		if err != nil {
			return nil, err
		}
	}
	return &parsed, nil
}

func parsePagination(c *fiber.Ctx, defaultSize, maxSize int) (int, int, error) {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return 0, 0, err
	}
	if page <= 0 {
		page = 1
	}

	pageSize, err := parseQueryInt(c, "page_size")
	if err != nil {
		return 0, 0, err
	}
	if pageSize <= 0 {
		pageSize = defaultSize
	} else if pageSize > maxSize {
		pageSize = maxSize
	}

	return page, pageSize, nil
}

func actorFromContext(c *fiber.Ctx) authz.Actor {
	return middleware.ActorFromContext(c)
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if c != nil {
		if correlation := middleware.GetCorrelationID(c); correlation != "" {
			logger = base.With().Str("correlation_id", correlation).Logger()
		}
	}
	return &logger
}

func isValidationError(err error) bool {
	var validationErrors validator.ValidationErrors
	return errors.As(err, &validationErrors)
}

// sendServiceError translates domain failures into safe HTTP responses.
// Scope mismatches surface as plain not-found or forbidden answers; the
// reason a tenant or record did not match is never echoed back.
func sendServiceError(logger *zerolog.Logger, c *fiber.Ctx, err error, fallback string) error {
	var retention *service.RetentionPeriodError
	var references *service.CampusReferencesError

	switch {
	case errors.Is(err, authz.ErrUnauthenticated):
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	case errors.Is(err, authz.ErrUnauthorized):
		return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
	case errors.Is(err, authz.ErrForbiddenSelfAction):
		return utils.SendError(c, fiber.StatusForbidden, "action may not target your own account")
	case errors.Is(err, authz.ErrNoTenantSelected):
		return utils.SendError(c, fiber.StatusBadRequest, "no tenant selected")
	case errors.Is(err, authz.ErrCampusRequired):
		return utils.SendError(c, fiber.StatusBadRequest, "campus assignment required for campus_admin")
	case errors.Is(err, service.ErrRecordNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "record not found")
	case errors.Is(err, service.ErrUserNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "user not found")
	case errors.Is(err, service.ErrCampusNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "campus not found")
	case errors.Is(err, service.ErrTenantNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "tenant not found")
	case errors.Is(err, service.ErrRecordNotDeleted):
		return utils.SendError(c, fiber.StatusConflict, "record is not soft-deleted")
	case errors.Is(err, service.ErrPurgeConflict):
		return utils.SendError(c, fiber.StatusConflict, "record changed concurrently; retry after reviewing its state")
	case errors.As(err, &retention):
		return c.Status(fiber.StatusConflict).JSON(utils.APIResponse{
			Success: false,
			Message: "retention period not met",
			Data:    fiber.Map{"days_remaining": retention.DaysRemaining},
		})
	case errors.As(err, &references):
		return c.Status(fiber.StatusConflict).JSON(utils.APIResponse{
			Success: false,
			Message: "campus still referenced",
			Data:    fiber.Map{"user_count": references.Users, "record_count": references.Records},
		})
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		logger.Error().Err(err).Msg(fallback)
		return utils.SendError(c, fiber.StatusInternalServerError, fallback)
	}
}
