package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/campus-records-api/internal/authz"
	"github.com/noah-isme/campus-records-api/internal/dto"
	"github.com/noah-isme/campus-records-api/internal/models"
	"github.com/noah-isme/campus-records-api/internal/repository"
)

// CampusService manages campus activation state. Deactivation is gated on
// zero live references and, being a scope-bypassing write, on a verifier
// Grant.
type CampusService interface {
	List(ctx context.Context, actor authz.Actor, requestedTenantID string) (dto.CampusListResponse, error)
	CanDeactivate(ctx context.Context, actor authz.Actor, requestedTenantID, code string) (dto.CampusDeactivationCheckResponse, error)
	Deactivate(ctx context.Context, actor authz.Actor, grant authz.Grant, requestedTenantID, code string) error
	Activate(ctx context.Context, actor authz.Actor, grant authz.Grant, requestedTenantID, code string) error
}

type campusService struct {
	repo   repository.CampusRepository
	audit  AuditRecorder
	logger zerolog.Logger
}

// NewCampusService constructs the campus service.
func NewCampusService(repo repository.CampusRepository, audit AuditRecorder, logger zerolog.Logger) CampusService {
	return &campusService{
		repo:   repo,
		audit:  audit,
		logger: logger.With().Str("component", "campus_service").Logger(),
	}
}

func (s *campusService) List(ctx context.Context, actor authz.Actor, requestedTenantID string) (dto.CampusListResponse, error) {
	if err := authz.Authorize(actor, authz.ActionRecordList, authz.TargetScope{TenantID: requestedTenantID}); err != nil {
		return dto.CampusListResponse{}, err
	}

	tenantID, err := authz.ResolveTenant(actor, requestedTenantID)
	if err != nil {
		return dto.CampusListResponse{}, err
	}

	campuses, err := s.repo.ListByTenant(ctx, tenantID)
	if err != nil {
		campuses, err = s.repo.ListByTenant(ctx, tenantID)
		if err != nil {
			return dto.CampusListResponse{}, err
		}
	}

	items := make([]dto.CampusResponse, 0, len(campuses))
	for _, campus := range campuses {
		counts, countErr := s.repo.CountReferences(ctx, tenantID, campus.Code)
		if countErr != nil {
			return dto.CampusListResponse{}, countErr
		}
		items = append(items, dto.NewCampusResponse(campus, counts.Users, counts.Records))
	}

	return dto.CampusListResponse{Items: items}, nil
}

func (s *campusService) CanDeactivate(ctx context.Context, actor authz.Actor, requestedTenantID, code string) (dto.CampusDeactivationCheckResponse, error) {
	if err := authz.Authorize(actor, authz.ActionCampusDeactivate, authz.TargetScope{TenantID: requestedTenantID, CampusID: code}); err != nil {
		return dto.CampusDeactivationCheckResponse{}, err
	}

	tenantID, err := authz.ResolveTenant(actor, requestedTenantID)
	if err != nil {
		return dto.CampusDeactivationCheckResponse{}, err
	}

	if _, err := s.fetch(ctx, tenantID, code); err != nil {
		return dto.CampusDeactivationCheckResponse{}, err
	}

	counts, err := s.repo.CountReferences(ctx, tenantID, code)
	if err != nil {
		return dto.CampusDeactivationCheckResponse{}, err
	}

	response := dto.CampusDeactivationCheckResponse{
		UserCount:   counts.Users,
		RecordCount: counts.Records,
		Blockers:    []string{},
	}
	if counts.Users > 0 {
		response.Blockers = append(response.Blockers, fmt.Sprintf("%d users assigned to this campus", counts.Users))
	}
	if counts.Records > 0 {
		response.Blockers = append(response.Blockers, fmt.Sprintf("%d records assigned to this campus", counts.Records))
	}
	response.Allowed = len(response.Blockers) == 0

	return response, nil
}

func (s *campusService) Deactivate(ctx context.Context, actor authz.Actor, grant authz.Grant, requestedTenantID, code string) error {
	if err := authz.Authorize(actor, authz.ActionCampusDeactivate, authz.TargetScope{TenantID: requestedTenantID, CampusID: code}); err != nil {
		return err
	}

	tenantID, err := authz.ResolveTenant(actor, requestedTenantID)
	if err != nil {
		return err
	}

	if !grant.Valid() || grant.ActorID() != actor.ID || grant.TenantID() != tenantID {
		return authz.ErrUnauthorized
	}

	campus, err := s.fetch(ctx, tenantID, code)
	if err != nil {
		return err
	}

	counts, err := s.repo.CountReferences(ctx, tenantID, code)
	if err != nil {
		return err
	}
	if counts.Users > 0 || counts.Records > 0 {
		return &CampusReferencesError{Users: counts.Users, Records: counts.Records}
	}

	if err := s.repo.SetStatus(ctx, tenantID, code, models.CampusStatusInactive); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCampusNotFound
		}
		return err
	}

	s.audit.Record(ctx, AuditEntry{
		Actor:     actor,
		EventType: models.EventCampusDeactivated,
		TargetID:  &campus.Code,
		Action:    fmt.Sprintf("Deactivated campus %s (%s)", campus.Name, campus.Code),
		Details:   map[string]interface{}{"code": campus.Code},
		TenantID:  tenantID,
		CampusID:  &campus.Code,
	})

	return nil
}

func (s *campusService) Activate(ctx context.Context, actor authz.Actor, grant authz.Grant, requestedTenantID, code string) error {
	if err := authz.Authorize(actor, authz.ActionCampusActivate, authz.TargetScope{TenantID: requestedTenantID, CampusID: code}); err != nil {
		return err
	}

	tenantID, err := authz.ResolveTenant(actor, requestedTenantID)
	if err != nil {
		return err
	}

	if !grant.Valid() || grant.ActorID() != actor.ID || grant.TenantID() != tenantID {
		return authz.ErrUnauthorized
	}

	campus, err := s.fetch(ctx, tenantID, code)
	if err != nil {
		return err
	}

	if err := s.repo.SetStatus(ctx, tenantID, code, models.CampusStatusActive); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCampusNotFound
		}
		return err
	}

	s.audit.Record(ctx, AuditEntry{
		Actor:     actor,
		EventType: models.EventCampusActivated,
		TargetID:  &campus.Code,
		Action:    fmt.Sprintf("Activated campus %s (%s)", campus.Name, campus.Code),
		Details:   map[string]interface{}{"code": campus.Code},
		TenantID:  tenantID,
		CampusID:  &campus.Code,
	})

	return nil
}

func (s *campusService) fetch(ctx context.Context, tenantID, code string) (models.Campus, error) {
	campus, err := s.repo.GetByCode(ctx, tenantID, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Campus{}, ErrCampusNotFound
		}
		return models.Campus{}, err
	}
	return campus, nil
}
