package models

import "time"

// Campus statuses.
const (
	CampusStatusActive   = "active"
	CampusStatusInactive = "inactive"
)

// DAEPCampusCode is the fixed campus code whose listing aggregates every
// is_daep record tenant-wide instead of records assigned to the campus
// itself. This is a deliberate special case, handled by an explicit branch
// in the record repository.
const DAEPCampusCode = "006"

// Campus is a sub-unit of a tenant, keyed by a three-digit code unique
// within the tenant. A campus may be deactivated only while no user profile
// and no record references it.
type Campus struct {
	TenantID  string    `gorm:"primaryKey;size:36" json:"tenant_id"`
	Code      string    `gorm:"primaryKey;size:8" json:"code"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Status    string    `gorm:"size:20;not null;default:'active'" json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
