package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/campus-records-api/internal/authz"
	"github.com/noah-isme/campus-records-api/internal/dto"
	"github.com/noah-isme/campus-records-api/internal/models"
	"github.com/noah-isme/campus-records-api/internal/repository"
)

// AdminUserService orchestrates actor-account administration. Role changes
// and account deletion are scope-bypassing writes: their entry points take
// a verifier Grant so the secondary privilege check cannot be skipped.
type AdminUserService interface {
	List(ctx context.Context, actor authz.Actor, req dto.AdminUserListRequest) (dto.AdminUserListResponse, error)
	Get(ctx context.Context, actor authz.Actor, requestedTenantID, id string) (dto.AdminUserResponse, error)
	Update(ctx context.Context, actor authz.Actor, requestedTenantID, id string, payload dto.AdminUserUpdateRequest) (dto.AdminUserResponse, error)
	UpdateRole(ctx context.Context, actor authz.Actor, grant authz.Grant, requestedTenantID, id string, payload dto.AdminUserRoleUpdateRequest) (dto.AdminUserResponse, error)
	Delete(ctx context.Context, actor authz.Actor, grant authz.Grant, requestedTenantID, id string) error
}

type adminUserService struct {
	repo      repository.UserProfileRepository
	validator *validator.Validate
	audit     AuditRecorder
	logger    zerolog.Logger
	now       func() time.Time
}

// NewAdminUserService constructs the admin user service.
func NewAdminUserService(repo repository.UserProfileRepository, validate *validator.Validate, audit AuditRecorder, logger zerolog.Logger) AdminUserService {
	return &adminUserService{
		repo:      repo,
		validator: validate,
		audit:     audit,
		logger:    logger.With().Str("component", "admin_user_service").Logger(),
		now:       time.Now,
	}
}

func (s *adminUserService) List(ctx context.Context, actor authz.Actor, req dto.AdminUserListRequest) (dto.AdminUserListResponse, error) {
	if err := authz.Authorize(actor, authz.ActionUserList, authz.TargetScope{TenantID: req.TenantID}); err != nil {
		return dto.AdminUserListResponse{}, err
	}

	tenantID, err := authz.ResolveTenant(actor, req.TenantID)
	if err != nil {
		return dto.AdminUserListResponse{}, err
	}

	filter := repository.UserProfileFilter{
		TenantID: tenantID,
		Search:   strings.TrimSpace(req.Search),
		Page:     req.Page,
		PageSize: req.PageSize,
	}
	if req.Role != "" {
		role, parseErr := models.ParseRole(req.Role)
		if parseErr != nil {
			return dto.AdminUserListResponse{}, parseErr
		}
		filter.Role = role
	}
	// Master admin accounts are invisible to everyone below master_admin.
	if actor.Role != models.RoleMasterAdmin {
		filter.ExcludeRoles = []models.Role{models.RoleMasterAdmin}
	}

	profiles, total, err := s.repo.List(ctx, filter)
	if err != nil {
		profiles, total, err = s.repo.List(ctx, filter)
		if err != nil {
			return dto.AdminUserListResponse{}, err
		}
	}

	responses := make([]dto.AdminUserResponse, 0, len(profiles))
	for _, profile := range profiles {
		responses = append(responses, dto.NewAdminUserResponse(profile))
	}

	pagination := dto.PaginationMeta{
		Page:       maxInt(req.Page, 1),
		PageSize:   req.PageSize,
		TotalItems: total,
	}
	if req.PageSize > 0 {
		pagination.TotalPages = int(math.Ceil(float64(total) / float64(req.PageSize)))
	} else {
		pagination.TotalPages = 1
	}

	return dto.AdminUserListResponse{Items: responses, Pagination: pagination}, nil
}

func (s *adminUserService) Get(ctx context.Context, actor authz.Actor, requestedTenantID, id string) (dto.AdminUserResponse, error) {
	if err := authz.Authorize(actor, authz.ActionUserList, authz.TargetScope{TenantID: requestedTenantID}); err != nil {
		return dto.AdminUserResponse{}, err
	}

	tenantID, err := authz.ResolveTenant(actor, requestedTenantID)
	if err != nil {
		return dto.AdminUserResponse{}, err
	}

	profile, err := s.fetch(ctx, tenantID, id)
	if err != nil {
		return dto.AdminUserResponse{}, err
	}
	// A master_admin account reads as absent to lower roles.
	if profile.Role == models.RoleMasterAdmin && actor.Role != models.RoleMasterAdmin {
		return dto.AdminUserResponse{}, ErrUserNotFound
	}

	return dto.NewAdminUserResponse(profile), nil
}

func (s *adminUserService) Update(ctx context.Context, actor authz.Actor, requestedTenantID, id string, payload dto.AdminUserUpdateRequest) (dto.AdminUserResponse, error) {
	if err := authz.Authorize(actor, authz.ActionUserUpdate, authz.TargetScope{TenantID: requestedTenantID}); err != nil {
		return dto.AdminUserResponse{}, err
	}

	if err := s.validator.Struct(payload); err != nil {
		return dto.AdminUserResponse{}, err
	}

	tenantID, err := authz.ResolveTenant(actor, requestedTenantID)
	if err != nil {
		return dto.AdminUserResponse{}, err
	}

	target, err := s.fetch(ctx, tenantID, id)
	if err != nil {
		return dto.AdminUserResponse{}, err
	}
	if err := authz.Authorize(actor, authz.ActionUserUpdate, authz.TargetScope{TenantID: tenantID, ActorID: target.ID, ActorRole: target.Role}); err != nil {
		if errors.Is(err, authz.ErrUnauthorized) {
			// Merge with absence so the account's existence stays hidden.
			return dto.AdminUserResponse{}, ErrUserNotFound
		}
		return dto.AdminUserResponse{}, err
	}

	updates := make(map[string]interface{})
	changed := make([]string, 0)
	if payload.Name != nil {
		updates["name"] = strings.TrimSpace(*payload.Name)
		changed = append(changed, "name")
	}
	if payload.Email != nil {
		updates["email"] = strings.TrimSpace(*payload.Email)
		changed = append(changed, "email")
	}

	if len(updates) == 0 {
		return dto.NewAdminUserResponse(target), nil
	}

	profile, err := s.repo.Update(ctx, tenantID, id, updates)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AdminUserResponse{}, ErrUserNotFound
		}
		return dto.AdminUserResponse{}, err
	}

	s.audit.Record(ctx, AuditEntry{
		Actor:     actor,
		EventType: models.EventUserUpdated,
		TargetID:  &profile.ID,
		Action:    fmt.Sprintf("Updated account %s", profile.Email),
		Details:   map[string]interface{}{"changed_fields": changed},
		TenantID:  tenantID,
	})

	return dto.NewAdminUserResponse(profile), nil
}

func (s *adminUserService) UpdateRole(ctx context.Context, actor authz.Actor, grant authz.Grant, requestedTenantID, id string, payload dto.AdminUserRoleUpdateRequest) (dto.AdminUserResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AdminUserResponse{}, err
	}

	newRole, err := models.ParseRole(payload.Role)
	if err != nil {
		return dto.AdminUserResponse{}, err
	}

	campusID := ""
	if payload.CampusID != nil {
		campusID = strings.TrimSpace(*payload.CampusID)
	}

	// First gate pass runs before any data is read: role membership, the
	// master_admin promotion bar, and the campus requirement all
	// short-circuit here.
	if err := authz.Authorize(actor, authz.ActionUserRoleUpdate, authz.TargetScope{
		TenantID: requestedTenantID,
		ActorID:  id,
		NewRole:  newRole,
		CampusID: campusID,
	}); err != nil {
		return dto.AdminUserResponse{}, err
	}

	tenantID, err := authz.ResolveTenant(actor, requestedTenantID)
	if err != nil {
		return dto.AdminUserResponse{}, err
	}

	if !grant.Valid() || grant.ActorID() != actor.ID || grant.TenantID() != tenantID {
		return dto.AdminUserResponse{}, authz.ErrUnauthorized
	}

	target, err := s.fetch(ctx, tenantID, id)
	if err != nil {
		return dto.AdminUserResponse{}, err
	}

	// Second pass knows the target's current role and enforces the
	// hierarchy protection.
	if err := authz.Authorize(actor, authz.ActionUserRoleUpdate, authz.TargetScope{
		TenantID:  tenantID,
		ActorID:   target.ID,
		ActorRole: target.Role,
		NewRole:   newRole,
		CampusID:  campusID,
	}); err != nil {
		return dto.AdminUserResponse{}, err
	}

	updates := map[string]interface{}{"role": newRole}
	if newRole == models.RoleCampusAdmin {
		updates["campus_id"] = campusID
	} else {
		updates["campus_id"] = nil
	}

	profile, err := s.repo.Update(ctx, tenantID, id, updates)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AdminUserResponse{}, ErrUserNotFound
		}
		return dto.AdminUserResponse{}, err
	}

	s.audit.Record(ctx, AuditEntry{
		Actor:     actor,
		EventType: models.EventUserRoleUpdated,
		TargetID:  &profile.ID,
		Action:    fmt.Sprintf("Changed role of %s from %s to %s", profile.Email, target.Role, newRole),
		Details: map[string]interface{}{
			"before": target.Role.String(),
			"after":  newRole.String(),
		},
		TenantID: tenantID,
		CampusID: profile.CampusID,
	})

	return dto.NewAdminUserResponse(profile), nil
}

func (s *adminUserService) Delete(ctx context.Context, actor authz.Actor, grant authz.Grant, requestedTenantID, id string) error {
	// Self-deletion fails closed before any lookup.
	if err := authz.Authorize(actor, authz.ActionUserDelete, authz.TargetScope{TenantID: requestedTenantID, ActorID: id}); err != nil {
		return err
	}

	tenantID, err := authz.ResolveTenant(actor, requestedTenantID)
	if err != nil {
		return err
	}

	if !grant.Valid() || grant.ActorID() != actor.ID || grant.TenantID() != tenantID {
		return authz.ErrUnauthorized
	}

	target, err := s.fetch(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if err := authz.Authorize(actor, authz.ActionUserDelete, authz.TargetScope{TenantID: tenantID, ActorID: target.ID, ActorRole: target.Role}); err != nil {
		if errors.Is(err, authz.ErrUnauthorized) {
			return ErrUserNotFound
		}
		return err
	}

	if err := s.repo.SoftDelete(ctx, tenantID, id, s.now()); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	s.audit.Record(ctx, AuditEntry{
		Actor:     actor,
		EventType: models.EventUserDeleted,
		TargetID:  &target.ID,
		Action:    fmt.Sprintf("Deleted account %s", target.Email),
		Details:   map[string]interface{}{"role": target.Role.String()},
		TenantID:  tenantID,
	})

	return nil
}

func (s *adminUserService) fetch(ctx context.Context, tenantID, id string) (models.UserProfile, error) {
	profile, err := s.repo.GetInTenant(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.UserProfile{}, ErrUserNotFound
		}
		return models.UserProfile{}, err
	}
	return profile, nil
}
