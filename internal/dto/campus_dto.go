package dto

import (
	"time"

	"github.com/noah-isme/campus-records-api/internal/models"
)

// CampusResponse serializes a campus with its live reference counts.
type CampusResponse struct {
	TenantID    string    `json:"tenant_id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Status      string    `json:"status"`
	UserCount   int64     `json:"user_count"`
	RecordCount int64     `json:"record_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewCampusResponse converts a campus model with its counts.
func NewCampusResponse(campus models.Campus, users, records int64) CampusResponse {
	return CampusResponse{
		TenantID:    campus.TenantID,
		Code:        campus.Code,
		Name:        campus.Name,
		Status:      campus.Status,
		UserCount:   users,
		RecordCount: records,
		CreatedAt:   campus.CreatedAt,
		UpdatedAt:   campus.UpdatedAt,
	}
}

// CampusListResponse wraps a campus listing.
type CampusListResponse struct {
	Items []CampusResponse `json:"items"`
}

// CampusDeactivationCheckResponse reports whether a campus may be
// deactivated and what blocks it.
type CampusDeactivationCheckResponse struct {
	Allowed     bool     `json:"allowed"`
	UserCount   int64    `json:"user_count"`
	RecordCount int64    `json:"record_count"`
	Blockers    []string `json:"blockers"`
}
