package models

import (
	"time"

	"gorm.io/datatypes"
)

// Audit event types form a closed vocabulary. Adding a type means adding a
// constant here; free-form strings are rejected by the audit service.
const (
	EventRecordCreated            = "record.created"
	EventRecordUpdated            = "record.updated"
	EventRecordDeleted            = "record.deleted"
	EventRecordRestored           = "record.restored"
	EventRecordPermanentlyDeleted = "record.permanently_deleted"
	EventUserUpdated              = "user.updated"
	EventUserRoleUpdated          = "user.role_updated"
	EventUserDeleted              = "user.deleted"
	EventCampusActivated          = "campus.activated"
	EventCampusDeactivated        = "campus.deactivated"
	EventTenantUpdated            = "tenant.updated"
	EventTenantSwitched           = "tenant.switched"
)

// KnownEventType reports whether the event type belongs to the closed
// vocabulary.
func KnownEventType(eventType string) bool {
	switch eventType {
	case EventRecordCreated, EventRecordUpdated, EventRecordDeleted,
		EventRecordRestored, EventRecordPermanentlyDeleted,
		EventUserUpdated, EventUserRoleUpdated, EventUserDeleted,
		EventCampusActivated, EventCampusDeactivated,
		EventTenantUpdated, EventTenantSwitched:
		return true
	}
	return false
}

// AuditEvent is one row of the append-only compliance ledger. The
// application never updates or deletes rows; actor provenance is copied onto
// the event so it survives later changes to the actor profile.
type AuditEvent struct {
	ID         uint              `gorm:"primaryKey" json:"id"`
	EventType  string            `gorm:"size:64;not null;index" json:"event_type"`
	ActorID    string            `gorm:"size:36;not null;index" json:"actor_id"`
	ActorEmail string            `gorm:"size:255;not null" json:"actor_email"`
	ActorRole  string            `gorm:"size:32;not null" json:"actor_role"`
	TargetID   *string           `gorm:"size:36;index" json:"target_id,omitempty"`
	Action     string            `gorm:"size:512;not null" json:"action"`
	Details    datatypes.JSONMap `gorm:"type:json" json:"details"`
	TenantID   string            `gorm:"size:36;not null;index" json:"tenant_id"`
	CampusID   *string           `gorm:"size:8" json:"campus_id,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
}
