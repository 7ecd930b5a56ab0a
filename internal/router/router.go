package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/campus-records-api/internal/config"
	"github.com/noah-isme/campus-records-api/internal/handler"
	"github.com/noah-isme/campus-records-api/internal/middleware"
	"github.com/noah-isme/campus-records-api/internal/models"
	"github.com/noah-isme/campus-records-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	RecordHandler    *handler.RecordHandler
	AdminUserHandler *handler.AdminUserHandler
	CampusHandler    *handler.CampusHandler
	TenantHandler    *handler.TenantHandler
	AuditHandler     *handler.AuditHandler
	JWTMiddleware    fiber.Handler
	ActorMiddleware  fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	// Common v1 group for health & headers
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	app.Get("/metrics", observability.MetricsHandler())

	// Use provided middlewares, or no-ops if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}
	actorMiddleware := deps.ActorMiddleware
	if actorMiddleware == nil {
		actorMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	// Records: any authenticated actor passes the router; the service
	// layer decides what each role may see or change.
	if deps.RecordHandler != nil {
		records := app.Group("/api/v2/records", jwtMiddleware, actorMiddleware)
		purgeLimiter := middleware.RateLimit("record-purge", 10, time.Minute)
		deps.RecordHandler.Register(records, purgeLimiter)
	}

	// Admin surface requires district_admin or above at the router in
	// addition to the per-action checks inside the services.
	admin := app.Group("/api/v2/admin",
		jwtMiddleware,
		actorMiddleware,
		middleware.RequireRole(models.RoleDistrictAdmin, models.RoleMasterAdmin),
	)

	if deps.AdminUserHandler != nil {
		deps.AdminUserHandler.Register(admin.Group("/users"))
	}
	if deps.CampusHandler != nil {
		deps.CampusHandler.Register(admin.Group("/campuses"))
	}
	if deps.TenantHandler != nil {
		deps.TenantHandler.Register(admin.Group("/tenant"))
	}
	if deps.AuditHandler != nil {
		deps.AuditHandler.Register(admin.Group("/audit"))
	}
}
