package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/campus-records-api/internal/models"
)

// CampusReferenceCounts reports how many live rows still point at a campus.
type CampusReferenceCounts struct {
	Users   int64
	Records int64
}

// CampusRepository exposes persistence helpers for campuses.
type CampusRepository interface {
	Create(ctx context.Context, campus *models.Campus) error
	ListByTenant(ctx context.Context, tenantID string) ([]models.Campus, error)
	GetByCode(ctx context.Context, tenantID, code string) (models.Campus, error)
	SetStatus(ctx context.Context, tenantID, code, status string) error
	CountReferences(ctx context.Context, tenantID, code string) (CampusReferenceCounts, error)
}

type campusRepository struct {
	db *gorm.DB
}

// NewCampusRepository constructs the campus repository.
func NewCampusRepository(db *gorm.DB) CampusRepository {
	return &campusRepository{db: db}
}

func (r *campusRepository) Create(ctx context.Context, campus *models.Campus) error {
	return r.db.WithContext(ctx).Create(campus).Error
}

func (r *campusRepository) ListByTenant(ctx context.Context, tenantID string) ([]models.Campus, error) {
	var campuses []models.Campus
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("code ASC").
		Find(&campuses).Error
	if err != nil {
		return nil, err
	}
	return campuses, nil
}

func (r *campusRepository) GetByCode(ctx context.Context, tenantID, code string) (models.Campus, error) {
	var campus models.Campus
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND code = ?", tenantID, code).
		First(&campus).Error
	if err != nil {
		return models.Campus{}, err
	}
	return campus, nil
}

func (r *campusRepository) SetStatus(ctx context.Context, tenantID, code, status string) error {
	tx := r.db.WithContext(ctx).Model(&models.Campus{}).
		Where("tenant_id = ? AND code = ?", tenantID, code).
		Update("status", status)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *campusRepository) CountReferences(ctx context.Context, tenantID, code string) (CampusReferenceCounts, error) {
	var counts CampusReferenceCounts

	err := r.db.WithContext(ctx).Model(&models.UserProfile{}).
		Where("tenant_id = ? AND campus_id = ? AND deleted_at IS NULL", tenantID, code).
		Count(&counts.Users).Error
	if err != nil {
		return CampusReferenceCounts{}, err
	}

	err = r.db.WithContext(ctx).Model(&models.Record{}).
		Where("tenant_id = ? AND campus_id = ?", tenantID, code).
		Count(&counts.Records).Error
	if err != nil {
		return CampusReferenceCounts{}, err
	}

	return counts, nil
}
