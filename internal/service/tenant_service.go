package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/campus-records-api/internal/authz"
	"github.com/noah-isme/campus-records-api/internal/dto"
	"github.com/noah-isme/campus-records-api/internal/models"
	"github.com/noah-isme/campus-records-api/internal/repository"
)

// TenantService manages tenant metadata and the master_admin active-tenant
// override. The override lives on the actor profile and is resolved per
// request by the scope resolver; there is no ambient current-tenant state.
type TenantService interface {
	Get(ctx context.Context, actor authz.Actor, requestedTenantID string) (dto.TenantResponse, error)
	Update(ctx context.Context, actor authz.Actor, grant authz.Grant, requestedTenantID string, payload dto.TenantUpdateRequest) (dto.TenantResponse, error)
	SwitchActiveTenant(ctx context.Context, actor authz.Actor, payload dto.TenantSwitchRequest) (dto.AdminUserResponse, error)
}

type tenantService struct {
	tenants   repository.TenantRepository
	profiles  repository.UserProfileRepository
	validator *validator.Validate
	audit     AuditRecorder
	logger    zerolog.Logger
}

// NewTenantService constructs the tenant service.
func NewTenantService(tenants repository.TenantRepository, profiles repository.UserProfileRepository, validate *validator.Validate, audit AuditRecorder, logger zerolog.Logger) TenantService {
	return &tenantService{
		tenants:   tenants,
		profiles:  profiles,
		validator: validate,
		audit:     audit,
		logger:    logger.With().Str("component", "tenant_service").Logger(),
	}
}

func (s *tenantService) Get(ctx context.Context, actor authz.Actor, requestedTenantID string) (dto.TenantResponse, error) {
	if err := authz.Authorize(actor, authz.ActionTenantRead, authz.TargetScope{TenantID: requestedTenantID}); err != nil {
		return dto.TenantResponse{}, err
	}

	tenantID, err := authz.ResolveTenant(actor, requestedTenantID)
	if err != nil {
		return dto.TenantResponse{}, err
	}

	tenant, err := s.fetch(ctx, tenantID)
	if err != nil {
		return dto.TenantResponse{}, err
	}

	return dto.NewTenantResponse(tenant), nil
}

func (s *tenantService) Update(ctx context.Context, actor authz.Actor, grant authz.Grant, requestedTenantID string, payload dto.TenantUpdateRequest) (dto.TenantResponse, error) {
	if err := authz.Authorize(actor, authz.ActionTenantUpdate, authz.TargetScope{TenantID: requestedTenantID}); err != nil {
		return dto.TenantResponse{}, err
	}

	if err := s.validator.Struct(payload); err != nil {
		return dto.TenantResponse{}, err
	}

	tenantID, err := authz.ResolveTenant(actor, requestedTenantID)
	if err != nil {
		return dto.TenantResponse{}, err
	}

	if !grant.Valid() || grant.ActorID() != actor.ID || grant.TenantID() != tenantID {
		return dto.TenantResponse{}, authz.ErrUnauthorized
	}

	current, err := s.fetch(ctx, tenantID)
	if err != nil {
		return dto.TenantResponse{}, err
	}

	updates := make(map[string]interface{})
	changed := make([]string, 0)
	if payload.DisplayName != nil {
		updates["display_name"] = strings.TrimSpace(*payload.DisplayName)
		changed = append(changed, "display_name")
	}
	if payload.Status != nil {
		updates["status"] = strings.ToLower(strings.TrimSpace(*payload.Status))
		changed = append(changed, "status")
	}

	if len(updates) == 0 {
		return dto.NewTenantResponse(current), nil
	}

	tenant, err := s.tenants.Update(ctx, tenantID, updates)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.TenantResponse{}, ErrTenantNotFound
		}
		return dto.TenantResponse{}, err
	}

	s.audit.Record(ctx, AuditEntry{
		Actor:     actor,
		EventType: models.EventTenantUpdated,
		TargetID:  &tenant.ID,
		Action:    fmt.Sprintf("Updated tenant %s", tenant.Subdomain),
		Details: map[string]interface{}{
			"changed_fields": changed,
			"before":         map[string]interface{}{"display_name": current.DisplayName, "status": current.Status},
			"after":          map[string]interface{}{"display_name": tenant.DisplayName, "status": tenant.Status},
		},
		TenantID: tenantID,
	})

	return dto.NewTenantResponse(tenant), nil
}

func (s *tenantService) SwitchActiveTenant(ctx context.Context, actor authz.Actor, payload dto.TenantSwitchRequest) (dto.AdminUserResponse, error) {
	if err := authz.Authorize(actor, authz.ActionTenantSwitch, authz.TargetScope{TenantID: payload.TenantID}); err != nil {
		return dto.AdminUserResponse{}, err
	}

	if err := s.validator.Struct(payload); err != nil {
		return dto.AdminUserResponse{}, err
	}

	target, err := s.fetch(ctx, payload.TenantID)
	if err != nil {
		return dto.AdminUserResponse{}, err
	}
	if target.Status != models.TenantStatusActive {
		return dto.AdminUserResponse{}, ErrTenantNotFound
	}

	// Switching back to the home tenant clears the override instead of
	// storing a redundant copy.
	var activeTenantID *string
	if target.ID != actor.TenantID {
		activeTenantID = &target.ID
	}

	if err := s.profiles.SetActiveTenant(ctx, actor.ID, activeTenantID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AdminUserResponse{}, ErrUserNotFound
		}
		return dto.AdminUserResponse{}, err
	}

	profile, err := s.profiles.GetByID(ctx, actor.ID)
	if err != nil {
		return dto.AdminUserResponse{}, err
	}

	s.audit.Record(ctx, AuditEntry{
		Actor:     actor,
		EventType: models.EventTenantSwitched,
		TargetID:  &target.ID,
		Action:    fmt.Sprintf("Switched active tenant to %s", target.Subdomain),
		Details:   map[string]interface{}{"subdomain": target.Subdomain},
		TenantID:  target.ID,
	})

	return dto.NewAdminUserResponse(profile), nil
}

func (s *tenantService) fetch(ctx context.Context, id string) (models.Tenant, error) {
	tenant, err := s.tenants.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Tenant{}, ErrTenantNotFound
		}
		return models.Tenant{}, err
	}
	return tenant, nil
}
