package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/campus-records-api/internal/authz"
	"github.com/noah-isme/campus-records-api/internal/config"
	"github.com/noah-isme/campus-records-api/internal/database"
	"github.com/noah-isme/campus-records-api/internal/handler"
	"github.com/noah-isme/campus-records-api/internal/middleware"
	"github.com/noah-isme/campus-records-api/internal/models"
	"github.com/noah-isme/campus-records-api/internal/repository"
	"github.com/noah-isme/campus-records-api/internal/router"
	"github.com/noah-isme/campus-records-api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Tenant{},
		&models.Campus{},
		&models.UserProfile{},
		&models.Record{},
		&models.AuditEvent{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	// Redis only backs the deleted-records cache; run without it if absent.
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			logger.Warn().Err(err).Msg("redis unavailable, deleted-records cache disabled")
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	// NATS mirrors audit events for downstream consumers. The database
	// ledger is authoritative, so a missing broker is not fatal.
	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = database.ConnectNATS(cfg.NATSURL)
		if err != nil {
			logger.Warn().Err(err).Msg("nats unavailable, audit mirroring disabled")
			natsConn = nil
		} else {
			defer natsConn.Close()
		}
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	tenantRepo := repository.NewTenantRepository(db)
	campusRepo := repository.NewCampusRepository(db)
	profileRepo := repository.NewUserProfileRepository(db)
	recordRepo := repository.NewRecordRepository(db)
	auditRepo := repository.NewAuditEventRepository(db)

	verifier := authz.NewServiceRoleVerifier(profileRepo, logger)

	auditService := service.NewAuditService(auditRepo, natsConn, cfg.AuditSubject, cfg.InteractivePageCap, cfg.AuditExportLimit, logger)
	recordService := service.NewRecordService(recordRepo, validate, auditService, redisClient, cfg.DeletedCacheTTL, logger)
	adminUserService := service.NewAdminUserService(profileRepo, validate, auditService, logger)
	campusService := service.NewCampusService(campusRepo, auditService, logger)
	tenantService := service.NewTenantService(tenantRepo, profileRepo, validate, auditService, logger)
	identityService := service.NewIdentityService(profileRepo, logger)

	recordHandler := handler.NewRecordHandler(recordService, logger)
	adminUserHandler := handler.NewAdminUserHandler(adminUserService, verifier, logger)
	campusHandler := handler.NewCampusHandler(campusService, verifier, logger)
	tenantHandler := handler.NewTenantHandler(tenantService, verifier, logger)
	auditHandler := handler.NewAuditHandler(auditService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		RecordHandler:    recordHandler,
		AdminUserHandler: adminUserHandler,
		CampusHandler:    campusHandler,
		TenantHandler:    tenantHandler,
		AuditHandler:     auditHandler,
		JWTMiddleware:    middleware.JWTProtected(cfg.JWTSecret),
		ActorMiddleware:  middleware.ResolveActor(identityService),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
