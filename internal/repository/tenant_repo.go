package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/campus-records-api/internal/models"
)

// TenantRepository exposes persistence helpers for tenants.
type TenantRepository interface {
	Create(ctx context.Context, tenant *models.Tenant) error
	GetByID(ctx context.Context, id string) (models.Tenant, error)
	GetBySubdomain(ctx context.Context, subdomain string) (models.Tenant, error)
	Update(ctx context.Context, id string, updates map[string]interface{}) (models.Tenant, error)
}

type tenantRepository struct {
	db *gorm.DB
}

// NewTenantRepository constructs the tenant repository.
func NewTenantRepository(db *gorm.DB) TenantRepository {
	return &tenantRepository{db: db}
}

func (r *tenantRepository) Create(ctx context.Context, tenant *models.Tenant) error {
	return r.db.WithContext(ctx).Create(tenant).Error
}

func (r *tenantRepository) GetByID(ctx context.Context, id string) (models.Tenant, error) {
	var tenant models.Tenant
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&tenant).Error; err != nil {
		return models.Tenant{}, err
	}
	return tenant, nil
}

func (r *tenantRepository) GetBySubdomain(ctx context.Context, subdomain string) (models.Tenant, error) {
	var tenant models.Tenant
	if err := r.db.WithContext(ctx).Where("subdomain = ?", subdomain).First(&tenant).Error; err != nil {
		return models.Tenant{}, err
	}
	return tenant, nil
}

func (r *tenantRepository) Update(ctx context.Context, id string, updates map[string]interface{}) (models.Tenant, error) {
	// id and subdomain are immutable once created.
	delete(updates, "id")
	delete(updates, "subdomain")

	tx := r.db.WithContext(ctx).Model(&models.Tenant{}).Where("id = ?", id).Updates(updates)
	if tx.Error != nil {
		return models.Tenant{}, tx.Error
	}
	if tx.RowsAffected == 0 {
		return models.Tenant{}, gorm.ErrRecordNotFound
	}

	return r.GetByID(ctx, id)
}
