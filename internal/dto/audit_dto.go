package dto

import (
	"time"

	"github.com/noah-isme/campus-records-api/internal/models"
)

// AuditLogListRequest defines filters for querying the ledger.
type AuditLogListRequest struct {
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
	// Export requests oldest-first ordering and the larger page cap used
	// by compliance export views.
	Export bool
}

// AuditEventResponse serializes one ledger entry.
type AuditEventResponse struct {
	ID         uint                   `json:"id"`
	EventType  string                 `json:"event_type"`
	ActorID    string                 `json:"actor_id"`
	ActorEmail string                 `json:"actor_email"`
	ActorRole  string                 `json:"actor_role"`
	TargetID   *string                `json:"target_id,omitempty"`
	Action     string                 `json:"action"`
	Details    map[string]interface{} `json:"details"`
	TenantID   string                 `json:"tenant_id"`
	CampusID   *string                `json:"campus_id,omitempty"`
	CreatedAt  time.Time              `json:"created_at"`
}

// NewAuditEventResponse converts an audit event model.
func NewAuditEventResponse(event models.AuditEvent) AuditEventResponse {
	details := map[string]interface{}{}
	for key, value := range event.Details {
		details[key] = value
	}

	return AuditEventResponse{
		ID:         event.ID,
		EventType:  event.EventType,
		ActorID:    event.ActorID,
		ActorEmail: event.ActorEmail,
		ActorRole:  event.ActorRole,
		TargetID:   event.TargetID,
		Action:     event.Action,
		Details:    details,
		TenantID:   event.TenantID,
		CampusID:   event.CampusID,
		CreatedAt:  event.CreatedAt,
	}
}

// AuditLogListResponse wraps a paginated ledger query.
type AuditLogListResponse struct {
	Items      []AuditEventResponse `json:"items"`
	Pagination PaginationMeta       `json:"pagination"`
}
