package repository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/campus-records-api/internal/models"
)

// Record status filter values beyond the stored statuses.
const (
	RecordFilterExpired = "expired"
)

// RecordFilter narrows record listing queries. Soft-deleted rows are always
// excluded; ListDeleted is the only path that sees them.
type RecordFilter struct {
	TenantID string
	CampusID string
	Status   string
	Search   string
	Page     int
	PageSize int
}

// RecordRepository exposes persistence helpers for trespass records. Every
// read and write is tenant-scoped; a row outside the tenant behaves exactly
// like a missing row.
type RecordRepository interface {
	Create(ctx context.Context, record *models.Record) error
	GetByID(ctx context.Context, tenantID, id string) (models.Record, error)
	List(ctx context.Context, filter RecordFilter) ([]models.Record, int64, error)
	ListDeleted(ctx context.Context, tenantID string) ([]models.Record, error)
	Update(ctx context.Context, tenantID, id string, updates map[string]interface{}) (models.Record, error)
	SoftDelete(ctx context.Context, tenantID, id string, now time.Time) error
	Restore(ctx context.Context, tenantID, id string) (models.Record, error)
	PermanentlyDelete(ctx context.Context, tenantID, id string, observedDeletedAt time.Time) (bool, error)
}

type recordRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewRecordRepository constructs the record repository.
func NewRecordRepository(db *gorm.DB) RecordRepository {
	return &recordRepository{db: db, now: time.Now}
}

func (r *recordRepository) Create(ctx context.Context, record *models.Record) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *recordRepository) GetByID(ctx context.Context, tenantID, id string) (models.Record, error) {
	var record models.Record
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&record).Error
	if err != nil {
		return models.Record{}, err
	}
	return record, nil
}

func (r *recordRepository) List(ctx context.Context, filter RecordFilter) ([]models.Record, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Record{}).
		Where("tenant_id = ? AND deleted_at IS NULL", filter.TenantID)

	if filter.CampusID != "" {
		// The DAEP campus is a named aggregate: it selects every DAEP
		// record in the tenant, not records assigned to campus 006.
		if filter.CampusID == models.DAEPCampusCode {
			query = query.Where("is_daep = ?", true)
		} else {
			query = query.Where("campus_id = ?", filter.CampusID)
		}
	}

	switch filter.Status {
	case models.RecordStatusActive:
		query = query.Where("status = ?", models.RecordStatusActive).
			Where("expiration_date IS NULL OR expiration_date >= ?", r.now())
	case models.RecordStatusInactive:
		query = query.Where("status = ?", models.RecordStatusInactive)
	case RecordFilterExpired:
		query = query.Where("status = ? AND expiration_date < ?", models.RecordStatusActive, r.now())
	}

	if filter.Search != "" {
		like := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(subject_name) LIKE ?", like)
	}

	countQuery := query.Session(&gorm.Session{})
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("created_at DESC")

	if filter.PageSize > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		offset := (page - 1) * filter.PageSize
		query = query.Limit(filter.PageSize).Offset(offset)
	}

	var records []models.Record
	if err := query.Find(&records).Error; err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

func (r *recordRepository) ListDeleted(ctx context.Context, tenantID string) ([]models.Record, error) {
	var records []models.Record
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND deleted_at IS NOT NULL", tenantID).
		Order("deleted_at ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *recordRepository) Update(ctx context.Context, tenantID, id string, updates map[string]interface{}) (models.Record, error) {
	// tenant_id is immutable after creation.
	delete(updates, "tenant_id")

	tx := r.db.WithContext(ctx).Model(&models.Record{}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Where("deleted_at IS NULL").
		Updates(updates)
	if tx.Error != nil {
		return models.Record{}, tx.Error
	}
	if tx.RowsAffected == 0 {
		return models.Record{}, gorm.ErrRecordNotFound
	}

	return r.GetByID(ctx, tenantID, id)
}

func (r *recordRepository) SoftDelete(ctx context.Context, tenantID, id string, now time.Time) error {
	tx := r.db.WithContext(ctx).Model(&models.Record{}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Where("deleted_at IS NULL").
		Update("deleted_at", now)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *recordRepository) Restore(ctx context.Context, tenantID, id string) (models.Record, error) {
	tx := r.db.WithContext(ctx).Model(&models.Record{}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Where("deleted_at IS NOT NULL").
		Update("deleted_at", nil)
	if tx.Error != nil {
		return models.Record{}, tx.Error
	}
	if tx.RowsAffected == 0 {
		return models.Record{}, gorm.ErrRecordNotFound
	}

	return r.GetByID(ctx, tenantID, id)
}

// PermanentlyDelete removes the row only if deleted_at still equals the
// value the caller observed when it checked the retention floor. A
// concurrent restore clears deleted_at and makes this delete a no-op, which
// is reported as false so the caller can surface the conflict.
func (r *recordRepository) PermanentlyDelete(ctx context.Context, tenantID, id string, observedDeletedAt time.Time) (bool, error) {
	tx := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Where("deleted_at = ?", observedDeletedAt).
		Delete(&models.Record{})
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}
