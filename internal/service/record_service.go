package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"github.com/noah-isme/campus-records-api/internal/authz"
	"github.com/noah-isme/campus-records-api/internal/dto"
	"github.com/noah-isme/campus-records-api/internal/models"
	"github.com/noah-isme/campus-records-api/internal/repository"
)

// RecordService implements the record-retention state machine. Lifecycle
// states are derived from stored fields; the only stored transitions are
// the status toggle, the soft-delete marker, and the physical purge.
type RecordService interface {
	List(ctx context.Context, actor authz.Actor, req dto.RecordListRequest) (dto.RecordListResponse, error)
	Get(ctx context.Context, actor authz.Actor, requestedTenantID, id string) (dto.RecordResponse, error)
	Create(ctx context.Context, actor authz.Actor, payload dto.RecordCreateRequest) (dto.RecordResponse, error)
	Update(ctx context.Context, actor authz.Actor, requestedTenantID, id string, payload dto.RecordUpdateRequest) (dto.RecordResponse, error)
	SoftDelete(ctx context.Context, actor authz.Actor, requestedTenantID, id string) error
	Restore(ctx context.Context, actor authz.Actor, requestedTenantID, id string) (dto.RecordResponse, error)
	PermanentlyDelete(ctx context.Context, actor authz.Actor, requestedTenantID, id string) error
	ListDeleted(ctx context.Context, actor authz.Actor, requestedTenantID string) (dto.DeletedRecordListResponse, error)
}

type recordService struct {
	repo      repository.RecordRepository
	validator *validator.Validate
	audit     AuditRecorder
	cache     *redis.Client
	cacheTTL  time.Duration
	logger    zerolog.Logger
	now       func() time.Time
}

// NewRecordService constructs the record lifecycle service. The Redis
// client is optional and only backs the deleted-records summary cache.
func NewRecordService(repo repository.RecordRepository, validate *validator.Validate, audit AuditRecorder, cache *redis.Client, cacheTTL time.Duration, logger zerolog.Logger) RecordService {
	return &recordService{
		repo:      repo,
		validator: validate,
		audit:     audit,
		cache:     cache,
		cacheTTL:  cacheTTL,
		logger:    logger.With().Str("component", "record_service").Logger(),
		now:       time.Now,
	}
}

func (s *recordService) List(ctx context.Context, actor authz.Actor, req dto.RecordListRequest) (dto.RecordListResponse, error) {
	if err := authz.Authorize(actor, authz.ActionRecordList, authz.TargetScope{TenantID: req.TenantID}); err != nil {
		return dto.RecordListResponse{}, err
	}

	tenantID, err := authz.ResolveTenant(actor, req.TenantID)
	if err != nil {
		return dto.RecordListResponse{}, err
	}

	filter := repository.RecordFilter{
		TenantID: tenantID,
		CampusID: authz.EffectiveCampus(actor, req.CampusID, false),
		Status:   strings.TrimSpace(req.Status),
		Search:   strings.TrimSpace(req.Search),
		Page:     req.Page,
		PageSize: req.PageSize,
	}

	records, total, err := s.repo.List(ctx, filter)
	if err != nil {
		// Idempotent read; retry once before surfacing the failure.
		records, total, err = s.repo.List(ctx, filter)
		if err != nil {
			return dto.RecordListResponse{}, err
		}
	}

	now := s.now()
	responses := make([]dto.RecordResponse, 0, len(records))
	for _, record := range records {
		responses = append(responses, dto.NewRecordResponse(record, now))
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

	return dto.RecordListResponse{Items: responses, Pagination: pagination}, nil
}

func (s *recordService) Get(ctx context.Context, actor authz.Actor, requestedTenantID, id string) (dto.RecordResponse, error) {
	if err := authz.Authorize(actor, authz.ActionRecordList, authz.TargetScope{TenantID: requestedTenantID}); err != nil {
		return dto.RecordResponse{}, err
	}

	tenantID, err := authz.ResolveTenant(actor, requestedTenantID)
	if err != nil {
		return dto.RecordResponse{}, err
	}

	record, err := s.fetch(ctx, tenantID, id)
	if err != nil {
		return dto.RecordResponse{}, err
	}
	if record.SoftDeleted() {
		return dto.RecordResponse{}, ErrRecordNotFound
	}

	return dto.NewRecordResponse(record, s.now()), nil
}

func (s *recordService) Create(ctx context.Context, actor authz.Actor, payload dto.RecordCreateRequest) (dto.RecordResponse, error) {
	if err := authz.Authorize(actor, authz.ActionRecordCreate, authz.TargetScope{TenantID: payload.TenantID}); err != nil {
		return dto.RecordResponse{}, err
	}

	if err := s.validator.Struct(payload); err != nil {
		return dto.RecordResponse{}, err
	}

	tenantID, err := authz.ResolveTenant(actor, payload.TenantID)
	if err != nil {
		return dto.RecordResponse{}, err
	}

	requestedCampus := ""
	if payload.CampusID != nil {
		requestedCampus = *payload.CampusID
	}
	// Campus admins always write into their assigned campus, whatever the
	// request supplied.
	effectiveCampus := authz.EffectiveCampus(actor, requestedCampus, true)
	var campusID *string
	if effectiveCampus != "" {
		campusID = &effectiveCampus
	}

	status := payload.Status
	if status == "" {
		status = models.RecordStatusActive
	}

	record := models.Record{
		ID:                 uuid.NewString(),
		TenantID:           tenantID,
		CampusID:           campusID,
		SubjectName:        strings.TrimSpace(payload.SubjectName),
		Description:        strings.TrimSpace(payload.Description),
		IncidentDate:       payload.IncidentDate,
		Status:             status,
		ExpirationDate:     payload.ExpirationDate,
		IsDAEP:             payload.IsDAEP,
		DAEPExpirationDate: payload.DAEPExpirationDate,
	}

	if err := s.repo.Create(ctx, &record); err != nil {
		return dto.RecordResponse{}, err
	}

	s.audit.Record(ctx, AuditEntry{
		Actor:     actor,
		EventType: models.EventRecordCreated,
		TargetID:  &record.ID,
		Action:    fmt.Sprintf("Created record for %s", record.SubjectName),
		Details:   map[string]interface{}{"campus_id": effectiveCampus, "is_daep": record.IsDAEP},
		TenantID:  tenantID,
		CampusID:  record.CampusID,
	})

	return dto.NewRecordResponse(record, s.now()), nil
}

func (s *recordService) Update(ctx context.Context, actor authz.Actor, requestedTenantID, id string, payload dto.RecordUpdateRequest) (dto.RecordResponse, error) {
	if err := authz.Authorize(actor, authz.ActionRecordUpdate, authz.TargetScope{TenantID: requestedTenantID}); err != nil {
		return dto.RecordResponse{}, err
	}

	if err := s.validator.Struct(payload); err != nil {
		return dto.RecordResponse{}, err
	}

	tenantID, err := authz.ResolveTenant(actor, requestedTenantID)
	if err != nil {
		return dto.RecordResponse{}, err
	}

	current, err := s.fetch(ctx, tenantID, id)
	if err != nil {
		return dto.RecordResponse{}, err
	}
	if current.SoftDeleted() {
		return dto.RecordResponse{}, ErrRecordNotFound
	}
	if err := s.guardCampusWrite(actor, current); err != nil {
		return dto.RecordResponse{}, err
	}

	updates := make(map[string]interface{})
	changed := make([]string, 0)

	if payload.SubjectName != nil {
		updates["subject_name"] = strings.TrimSpace(*payload.SubjectName)
		changed = append(changed, "subject_name")
	}
	if payload.Description != nil {
		updates["description"] = strings.TrimSpace(*payload.Description)
		changed = append(changed, "description")
	}
	if payload.IncidentDate != nil {
		updates["incident_date"] = *payload.IncidentDate
		changed = append(changed, "incident_date")
	}
	if payload.Status != nil {
		updates["status"] = strings.ToLower(strings.TrimSpace(*payload.Status))
		changed = append(changed, "status")
	}
	if payload.ExpirationDate != nil {
		updates["expiration_date"] = *payload.ExpirationDate
		changed = append(changed, "expiration_date")
	}
	if payload.IsDAEP != nil {
		updates["is_daep"] = *payload.IsDAEP
		changed = append(changed, "is_daep")
	}
	if payload.DAEPExpirationDate != nil {
		updates["daep_expiration_date"] = *payload.DAEPExpirationDate
		changed = append(changed, "daep_expiration_date")
	}
	if payload.CampusID != nil {
		// Empty means no campus; store NULL like Create does, never "".
		var campusID *string
		if campus := authz.EffectiveCampus(actor, *payload.CampusID, true); campus != "" {
			campusID = &campus
		}
		updates["campus_id"] = campusID
		changed = append(changed, "campus_id")
	}

	if len(updates) == 0 {
		return dto.NewRecordResponse(current, s.now()), nil
	}

	record, err := s.repo.Update(ctx, tenantID, id, updates)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.RecordResponse{}, ErrRecordNotFound
		}
		return dto.RecordResponse{}, err
	}

	s.audit.Record(ctx, AuditEntry{
		Actor:     actor,
		EventType: models.EventRecordUpdated,
		TargetID:  &record.ID,
		Action:    fmt.Sprintf("Updated record for %s", record.SubjectName),
		Details:   map[string]interface{}{"changed_fields": changed},
		TenantID:  tenantID,
		CampusID:  record.CampusID,
	})

	return dto.NewRecordResponse(record, s.now()), nil
}

func (s *recordService) SoftDelete(ctx context.Context, actor authz.Actor, requestedTenantID, id string) error {
	if err := authz.Authorize(actor, authz.ActionRecordDelete, authz.TargetScope{TenantID: requestedTenantID}); err != nil {
		return err
	}

	tenantID, err := authz.ResolveTenant(actor, requestedTenantID)
	if err != nil {
		return err
	}

	record, err := s.fetch(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if record.SoftDeleted() {
		return ErrRecordNotFound
	}

	now := s.now()
	if err := s.repo.SoftDelete(ctx, tenantID, id, now); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRecordNotFound
		}
		return err
	}

	s.invalidateDeletedCache(ctx, tenantID)

	s.audit.Record(ctx, AuditEntry{
		Actor:     actor,
		EventType: models.EventRecordDeleted,
		TargetID:  &record.ID,
		Action:    fmt.Sprintf("Soft-deleted record for %s", record.SubjectName),
		Details:   map[string]interface{}{"deleted_at": now.UTC().Format(time.RFC3339)},
		TenantID:  tenantID,
		CampusID:  record.CampusID,
	})

	return nil
}

func (s *recordService) Restore(ctx context.Context, actor authz.Actor, requestedTenantID, id string) (dto.RecordResponse, error) {
	if err := authz.Authorize(actor, authz.ActionRecordRestore, authz.TargetScope{TenantID: requestedTenantID}); err != nil {
		return dto.RecordResponse{}, err
	}

	tenantID, err := authz.ResolveTenant(actor, requestedTenantID)
	if err != nil {
		return dto.RecordResponse{}, err
	}

	// Restore clears the marker and nothing else; the stored status is
	// whatever it was before the soft delete.
	record, err := s.repo.Restore(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.RecordResponse{}, ErrRecordNotFound
		}
		return dto.RecordResponse{}, err
	}

	s.invalidateDeletedCache(ctx, tenantID)

	s.audit.Record(ctx, AuditEntry{
		Actor:     actor,
		EventType: models.EventRecordRestored,
		TargetID:  &record.ID,
		Action:    fmt.Sprintf("Restored record for %s", record.SubjectName),
		Details:   map[string]interface{}{"status": record.Status},
		TenantID:  tenantID,
		CampusID:  record.CampusID,
	})

	return dto.NewRecordResponse(record, s.now()), nil
}

func (s *recordService) PermanentlyDelete(ctx context.Context, actor authz.Actor, requestedTenantID, id string) error {
	tracer := otel.Tracer("github.com/noah-isme/campus-records-api/internal/service/record")
	ctx, span := tracer.Start(ctx, "record.permanently_delete")
	span.SetAttributes(
		attribute.String("record.id", id),
		attribute.String("actor.id", actor.ID),
	)
	defer span.End()

	if err := authz.Authorize(actor, authz.ActionRecordPurge, authz.TargetScope{TenantID: requestedTenantID}); err != nil {
		return err
	}

	tenantID, err := authz.ResolveTenant(actor, requestedTenantID)
	if err != nil {
		return err
	}

	record, err := s.fetch(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if record.DeletedAt == nil {
		return ErrRecordNotDeleted
	}

	now := s.now()
	if remaining := record.RetentionDaysRemaining(now); remaining > 0 {
		return &RetentionPeriodError{DaysRemaining: remaining}
	}

	// The delete is conditional on the deleted_at value observed during
	// the retention check; a concurrent restore wins the race and the
	// purge reports a conflict instead of destroying a live record.
	purged, err := s.repo.PermanentlyDelete(ctx, tenantID, id, *record.DeletedAt)
	if err != nil {
		return err
	}
	if !purged {
		return ErrPurgeConflict
	}

	s.invalidateDeletedCache(ctx, tenantID)

	s.audit.Record(ctx, AuditEntry{
		Actor:     actor,
		EventType: models.EventRecordPermanentlyDeleted,
		TargetID:  &record.ID,
		Action:    fmt.Sprintf("Permanently deleted record for %s", record.SubjectName),
		Details: map[string]interface{}{
			"deleted_at":     record.DeletedAt.UTC().Format(time.RFC3339),
			"retention_days": int(now.Sub(*record.DeletedAt).Hours() / 24),
		},
		TenantID: tenantID,
		CampusID: record.CampusID,
	})

	return nil
}

func (s *recordService) ListDeleted(ctx context.Context, actor authz.Actor, requestedTenantID string) (dto.DeletedRecordListResponse, error) {
	if err := authz.Authorize(actor, authz.ActionRecordListDeleted, authz.TargetScope{TenantID: requestedTenantID}); err != nil {
		return dto.DeletedRecordListResponse{}, err
	}

	tenantID, err := authz.ResolveTenant(actor, requestedTenantID)
	if err != nil {
		return dto.DeletedRecordListResponse{}, err
	}

	cacheKey := deletedCacheKey(tenantID)
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var response dto.DeletedRecordListResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				s.logger.Debug().Str("tenant_id", tenantID).Msg("deleted records cache hit")
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read deleted records cache")
		}
	}

	records, err := s.repo.ListDeleted(ctx, tenantID)
	if err != nil {
		records, err = s.repo.ListDeleted(ctx, tenantID)
		if err != nil {
			return dto.DeletedRecordListResponse{}, err
		}
	}

	now := s.now()
	items := make([]dto.DeletedRecordResponse, 0, len(records))
	var requiresAction int64
	for _, record := range records {
		item := dto.NewDeletedRecordResponse(record, now)
		if item.RequiresAction {
			requiresAction++
		}
		items = append(items, item)
	}

	response := dto.DeletedRecordListResponse{
		Items:               items,
		Total:               int64(len(items)),
		RequiresActionCount: requiresAction,
		GeneratedAt:         now.UTC(),
	}

	if s.cache != nil {
		if payload, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store deleted records cache")
			}
		}
	}

	return response, nil
}

func (s *recordService) fetch(ctx context.Context, tenantID, id string) (models.Record, error) {
	record, err := s.repo.GetByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Record{}, ErrRecordNotFound
		}
		record, err = s.repo.GetByID(ctx, tenantID, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.Record{}, ErrRecordNotFound
			}
			return models.Record{}, err
		}
	}
	return record, nil
}

// guardCampusWrite hides records outside a campus_admin's assigned campus
// from its write path. DAEP records stay writable through the DAEP view
// only when they belong to the admin's campus, so no special branch here.
func (s *recordService) guardCampusWrite(actor authz.Actor, record models.Record) error {
	if actor.Role != models.RoleCampusAdmin || actor.CampusID == nil {
		return nil
	}
	if record.CampusID == nil || *record.CampusID != *actor.CampusID {
		return ErrRecordNotFound
	}
	return nil
}

func (s *recordService) invalidateDeletedCache(ctx context.Context, tenantID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, deletedCacheKey(tenantID)).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to invalidate deleted records cache")
	}
}

func deletedCacheKey(tenantID string) string {
	return "records:deleted:" + tenantID
}
