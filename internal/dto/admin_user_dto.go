package dto

import (
	"time"

	"github.com/noah-isme/campus-records-api/internal/models"
)

// AdminUserListRequest defines filters for listing actor profiles.
type AdminUserListRequest struct {
	TenantID string
	Search   string
	Role     string
	Page     int
	PageSize int
}

// AdminUserResponse serializes an actor profile for admin endpoints.
type AdminUserResponse struct {
	ID             string    `json:"id"`
	TenantID       string    `json:"tenant_id"`
	ActiveTenantID *string   `json:"active_tenant_id,omitempty"`
	CampusID       *string   `json:"campus_id,omitempty"`
	Role           string    `json:"role"`
	Email          string    `json:"email"`
	Name           string    `json:"name"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewAdminUserResponse converts a profile model.
func NewAdminUserResponse(profile models.UserProfile) AdminUserResponse {
	return AdminUserResponse{
		ID:             profile.ID,
		TenantID:       profile.TenantID,
		ActiveTenantID: profile.ActiveTenantID,
		CampusID:       profile.CampusID,
		Role:           profile.Role.String(),
		Email:          profile.Email,
		Name:           profile.Name,
		CreatedAt:      profile.CreatedAt,
		UpdatedAt:      profile.UpdatedAt,
	}
}

// AdminUserListResponse wraps a paginated profile listing.
type AdminUserListResponse struct {
	Items      []AdminUserResponse `json:"items"`
	Pagination PaginationMeta      `json:"pagination"`
}

// AdminUserUpdateRequest captures partial profile updates.
type AdminUserUpdateRequest struct {
	Name  *string `json:"name" validate:"omitempty,min=1,max=255"`
	Email *string `json:"email" validate:"omitempty,email"`
}

// AdminUserRoleUpdateRequest captures a role change. CampusID is required
// when the new role is campus_admin.
type AdminUserRoleUpdateRequest struct {
	Role     string  `json:"role" validate:"required,oneof=viewer campus_admin district_admin master_admin"`
	CampusID *string `json:"campus_id" validate:"omitempty,len=3"`
}
