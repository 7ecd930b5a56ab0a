package repository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/campus-records-api/internal/models"
)

// AuditEventFilter narrows ledger queries. Substring filters are
// case-insensitive.
type AuditEventFilter struct {
	TenantID    string
	ActorEmail  string
	SubjectName string
	TargetID    string
	EventTypes  []string
	CampusID    string
	From        *time.Time
	To          *time.Time
	Page        int
	PageSize    int
	// OldestFirst flips the ordering for compliance export views.
	OldestFirst bool
}

// AuditEventRepository persists the append-only compliance ledger. There is
// deliberately no update or delete method.
type AuditEventRepository interface {
	Append(ctx context.Context, event *models.AuditEvent) error
	Query(ctx context.Context, filter AuditEventFilter) ([]models.AuditEvent, int64, error)
}

type auditEventRepository struct {
	db *gorm.DB
}

// NewAuditEventRepository constructs the audit event repository.
func NewAuditEventRepository(db *gorm.DB) AuditEventRepository {
	return &auditEventRepository{db: db}
}

func (r *auditEventRepository) Append(ctx context.Context, event *models.AuditEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *auditEventRepository) Query(ctx context.Context, filter AuditEventFilter) ([]models.AuditEvent, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.AuditEvent{})

	if filter.TenantID != "" {
		query = query.Where("tenant_id = ?", filter.TenantID)
	}

	if filter.ActorEmail != "" {
		like := "%" + strings.ToLower(filter.ActorEmail) + "%"
		query = query.Where("LOWER(actor_email) LIKE ?", like)
	}

	if filter.SubjectName != "" {
		// The action summary always embeds the record subject name;
		// purged records leave no row to join against, so the summary is
		// what the ledger searches.
		like := "%" + strings.ToLower(filter.SubjectName) + "%"
		query = query.Where("LOWER(action) LIKE ?", like)
	}

	if filter.TargetID != "" {
		query = query.Where("target_id = ?", filter.TargetID)
	}

	if len(filter.EventTypes) > 0 {
		query = query.Where("event_type IN ?", filter.EventTypes)
	}

	if filter.CampusID != "" {
		query = query.Where("campus_id = ?", filter.CampusID)
	}

	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}

	if filter.To != nil {
		query = query.Where("created_at <= ?", *filter.To)
	}

	countQuery := query.Session(&gorm.Session{})
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.OldestFirst {
		query = query.Order("created_at ASC")
	} else {
		query = query.Order("created_at DESC")
	}

	if filter.PageSize > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		offset := (page - 1) * filter.PageSize
		query = query.Limit(filter.PageSize).Offset(offset)
	}

	var events []models.AuditEvent
	if err := query.Find(&events).Error; err != nil {
		return nil, 0, err
	}

	return events, total, nil
}
