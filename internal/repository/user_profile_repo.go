package repository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/campus-records-api/internal/models"
)

// UserProfileFilter narrows admin user listing queries.
type UserProfileFilter struct {
	TenantID     string
	Search       string
	Role         models.Role
	ExcludeRoles []models.Role
	Page         int
	PageSize     int
}

// UserProfileRepository exposes persistence helpers for actor profiles.
type UserProfileRepository interface {
	Create(ctx context.Context, profile *models.UserProfile) error
	GetByID(ctx context.Context, id string) (models.UserProfile, error)
	GetInTenant(ctx context.Context, tenantID, id string) (models.UserProfile, error)
	List(ctx context.Context, filter UserProfileFilter) ([]models.UserProfile, int64, error)
	Update(ctx context.Context, tenantID, id string, updates map[string]interface{}) (models.UserProfile, error)
	SetActiveTenant(ctx context.Context, id string, tenantID *string) error
	SoftDelete(ctx context.Context, tenantID, id string, now time.Time) error
}

type userProfileRepository struct {
	db *gorm.DB
}

// NewUserProfileRepository constructs the user profile repository.
func NewUserProfileRepository(db *gorm.DB) UserProfileRepository {
	return &userProfileRepository{db: db}
}

func (r *userProfileRepository) Create(ctx context.Context, profile *models.UserProfile) error {
	return r.db.WithContext(ctx).Create(profile).Error
}

func (r *userProfileRepository) GetByID(ctx context.Context, id string) (models.UserProfile, error) {
	var profile models.UserProfile
	err := r.db.WithContext(ctx).
		Where("id = ? AND deleted_at IS NULL", id).
		First(&profile).Error
	if err != nil {
		return models.UserProfile{}, err
	}
	return profile, nil
}

func (r *userProfileRepository) GetInTenant(ctx context.Context, tenantID, id string) (models.UserProfile, error) {
	var profile models.UserProfile
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ? AND deleted_at IS NULL", tenantID, id).
		First(&profile).Error
	if err != nil {
		return models.UserProfile{}, err
	}
	return profile, nil
}

func (r *userProfileRepository) List(ctx context.Context, filter UserProfileFilter) ([]models.UserProfile, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.UserProfile{}).
		Where("tenant_id = ? AND deleted_at IS NULL", filter.TenantID)

	if filter.Search != "" {
		like := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", like, like)
	}

	if filter.Role != "" {
		query = query.Where("role = ?", filter.Role)
	}

	if len(filter.ExcludeRoles) > 0 {
		query = query.Where("role NOT IN ?", filter.ExcludeRoles)
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

	var profiles []models.UserProfile
	if err := query.Find(&profiles).Error; err != nil {
		return nil, 0, err
	}

	return profiles, total, nil
}

func (r *userProfileRepository) Update(ctx context.Context, tenantID, id string, updates map[string]interface{}) (models.UserProfile, error) {
	tx := r.db.WithContext(ctx).Model(&models.UserProfile{}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Where("deleted_at IS NULL").
		Updates(updates)
	if tx.Error != nil {
		return models.UserProfile{}, tx.Error
	}
	if tx.RowsAffected == 0 {
		return models.UserProfile{}, gorm.ErrRecordNotFound
	}

	return r.GetInTenant(ctx, tenantID, id)
}

func (r *userProfileRepository) SetActiveTenant(ctx context.Context, id string, tenantID *string) error {
	tx := r.db.WithContext(ctx).Model(&models.UserProfile{}).
		Where("id = ? AND deleted_at IS NULL", id).
		Update("active_tenant_id", tenantID)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *userProfileRepository) SoftDelete(ctx context.Context, tenantID, id string, now time.Time) error {
	tx := r.db.WithContext(ctx).Model(&models.UserProfile{}).
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
