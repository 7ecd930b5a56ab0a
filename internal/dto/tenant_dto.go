package dto

import (
	"time"

	"github.com/noah-isme/campus-records-api/internal/models"
)

// TenantResponse serializes a tenant.
type TenantResponse struct {
	ID          string    `json:"id"`
	Subdomain   string    `json:"subdomain"`
	DisplayName string    `json:"display_name"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewTenantResponse converts a tenant model.
func NewTenantResponse(tenant models.Tenant) TenantResponse {
	return TenantResponse{
		ID:          tenant.ID,
		Subdomain:   tenant.Subdomain,
		DisplayName: tenant.DisplayName,
		Status:      tenant.Status,
		CreatedAt:   tenant.CreatedAt,
		UpdatedAt:   tenant.UpdatedAt,
	}
}

// TenantUpdateRequest captures mutable tenant fields. Subdomain and id stay
// immutable after creation.
type TenantUpdateRequest struct {
	DisplayName *string `json:"display_name" validate:"omitempty,min=1,max=255"`
	Status      *string `json:"status" validate:"omitempty,oneof=active inactive"`
}

// TenantSwitchRequest selects the active tenant for a master_admin.
type TenantSwitchRequest struct {
	TenantID string `json:"tenant_id" validate:"required,uuid4"`
}
