package models

import "time"

// UserProfile is the system-of-record identity for an actor. The role and
// tenant stored here, never token claims, are authoritative for
// authorization decisions.
//
// Invariants: a campus_admin always carries a campus assignment, and only a
// master_admin may hold an active_tenant_id different from its home tenant.
type UserProfile struct {
	ID             string     `gorm:"primaryKey;size:36" json:"id"`
	TenantID       string     `gorm:"size:36;not null;index" json:"tenant_id"`
	ActiveTenantID *string    `gorm:"size:36" json:"active_tenant_id,omitempty"`
	CampusID       *string    `gorm:"size:8" json:"campus_id,omitempty"`
	Role           Role       `gorm:"size:32;not null" json:"role"`
	Email          string     `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Name           string     `gorm:"size:255" json:"name"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	DeletedAt      *time.Time `gorm:"index" json:"deleted_at,omitempty"`
}

// TableName keeps the historical table name.
func (UserProfile) TableName() string {
	return "user_profiles"
}
