package service

import (
	"context"
	"encoding/json"
	"math"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/noah-isme/campus-records-api/internal/authz"
	"github.com/noah-isme/campus-records-api/internal/dto"
	"github.com/noah-isme/campus-records-api/internal/models"
	"github.com/noah-isme/campus-records-api/internal/observability"
	"github.com/noah-isme/campus-records-api/internal/repository"
)

// Default ledger query page caps: interactive paging stays small,
// compliance exports may fetch much larger batches. Both are overridable
// through configuration.
const (
	auditInteractivePageCap = 100
	auditExportPageCap      = 10000
)

// AuditEntry captures the details required to append a ledger entry. Actor
// provenance is copied from the resolved actor, never from the request.
type AuditEntry struct {
	Actor     authz.Actor
	EventType string
	TargetID  *string
	Action    string
	Details   map[string]interface{}
	TenantID  string
	CampusID  *string
}

// AuditRecorder appends entries to the compliance ledger. Append is
// fire-and-forget relative to the primary operation: a failed audit write
// never rolls back the already-committed mutation. Failures are logged at
// error severity and counted for operator reconciliation.
type AuditRecorder interface {
	Record(ctx context.Context, entry AuditEntry)
}

// AuditService exposes ledger writes and the filtered query interface.
type AuditService interface {
	AuditRecorder
	Query(ctx context.Context, actor authz.Actor, req dto.AuditLogListRequest) (dto.AuditLogListResponse, error)
}

type auditService struct {
	repo           repository.AuditEventRepository
	nats           *nats.Conn
	natsSubject    string
	interactiveCap int
	exportCap      int
	logger         zerolog.Logger
	now            func() time.Time
}

// NewAuditService constructs the audit ledger service. The NATS connection
// is optional; when present, successful appends are mirrored to the subject
// for downstream compliance consumers, also best-effort. Non-positive page
// caps fall back to the defaults.
func NewAuditService(repo repository.AuditEventRepository, natsConn *nats.Conn, natsSubject string, interactiveCap, exportCap int, logger zerolog.Logger) AuditService {
	if interactiveCap <= 0 {
		interactiveCap = auditInteractivePageCap
	}
	if exportCap <= 0 {
		exportCap = auditExportPageCap
	}
	return &auditService{
		repo:           repo,
		nats:           natsConn,
		natsSubject:    natsSubject,
		interactiveCap: interactiveCap,
		exportCap:      exportCap,
		logger:         logger.With().Str("component", "audit_service").Logger(),
		now:            time.Now,
	}
}

func (s *auditService) Record(ctx context.Context, entry AuditEntry) {
	if !models.KnownEventType(entry.EventType) {
		s.logger.Error().Str("event_type", entry.EventType).Msg("refusing audit entry with unknown event type")
		observability.AuditAppendFailures().Inc()
		return
	}

	event := models.AuditEvent{
		EventType:  entry.EventType,
		ActorID:    entry.Actor.ID,
		ActorEmail: entry.Actor.Email,
		ActorRole:  entry.Actor.Role.String(),
		TargetID:   entry.TargetID,
		Action:     strings.TrimSpace(entry.Action),
		Details:    sanitizeDetails(entry.Details),
		TenantID:   entry.TenantID,
		CampusID:   entry.CampusID,
	}

	if err := s.repo.Append(ctx, &event); err != nil {
		// The primary operation already committed; this is a ledger gap
		// that operators must reconcile manually.
		s.logger.Error().Err(err).
			Str("event_type", entry.EventType).
			Str("tenant_id", entry.TenantID).
			Str("actor_id", entry.Actor.ID).
			Msg("audit append failed; ledger entry lost")
		observability.AuditAppendFailures().Inc()
		return
	}

	s.publish(event)
}

func (s *auditService) publish(event models.AuditEvent) {
	if s.nats == nil || s.natsSubject == "" {
		return
	}

	payload, err := json.Marshal(dto.NewAuditEventResponse(event))
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to encode audit event for publish")
		return
	}

	if err := s.nats.Publish(s.natsSubject, payload); err != nil {
		s.logger.Warn().Err(err).Str("subject", s.natsSubject).Msg("failed to publish audit event")
	}
}

func (s *auditService) Query(ctx context.Context, actor authz.Actor, req dto.AuditLogListRequest) (dto.AuditLogListResponse, error) {
	if err := authz.Authorize(actor, authz.ActionAuditQuery, authz.TargetScope{TenantID: req.TenantID}); err != nil {
		return dto.AuditLogListResponse{}, err
	}

	tenantID, err := authz.ResolveTenant(actor, req.TenantID)
	if err != nil {
		return dto.AuditLogListResponse{}, err
	}

	pageSize := req.PageSize
	pageCap := s.interactiveCap
	if req.Export {
		pageCap = s.exportCap
	}
	if pageSize <= 0 || pageSize > pageCap {
		pageSize = pageCap
	}

	filter := repository.AuditEventFilter{
		TenantID:    tenantID,
		ActorEmail:  strings.TrimSpace(req.ActorEmail),
		SubjectName: strings.TrimSpace(req.SubjectName),
		TargetID:    strings.TrimSpace(req.TargetID),
		EventTypes:  req.EventTypes,
		CampusID:    strings.TrimSpace(req.CampusID),
		From:        req.From,
		To:          req.To,
		Page:        req.Page,
		PageSize:    pageSize,
		OldestFirst: req.Export,
	}

	events, total, err := s.repo.Query(ctx, filter)
	if err != nil {
		// Ledger queries are idempotent reads; retry once before
		// surfacing a storage failure.
		events, total, err = s.repo.Query(ctx, filter)
		if err != nil {
			return dto.AuditLogListResponse{}, err
		}
	}

	responses := make([]dto.AuditEventResponse, 0, len(events))
	for _, event := range events {
		responses = append(responses, dto.NewAuditEventResponse(event))
	}

	pagination := dto.PaginationMeta{
		Page:       maxInt(req.Page, 1),
		PageSize:   pageSize,
		TotalItems: total,
		TotalPages: int(math.Ceil(float64(total) / float64(pageSize))),
	}

	return dto.AuditLogListResponse{Items: responses, Pagination: pagination}, nil
}

// sanitizeDetails masks secret-bearing keys before they reach the ledger.
// Actor email is deliberately kept on the event itself as provenance.
func sanitizeDetails(details map[string]interface{}) datatypes.JSONMap {
	if details == nil {
		return datatypes.JSONMap{}
	}

	sanitized := datatypes.JSONMap{}
	for key, value := range details {
		lower := strings.ToLower(key)
		if strings.Contains(lower, "token") || strings.Contains(lower, "password") || strings.Contains(lower, "secret") {
			sanitized[key] = "***"
			continue
		}
		sanitized[key] = value
	}
	return sanitized
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
