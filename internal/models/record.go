package models

import (
	"math"
	"time"
)

// Record statuses. EXPIRED and SOFT_DELETED are derived at view time from
// ExpirationDate and DeletedAt; they are never stored.
const (
	RecordStatusActive   = "active"
	RecordStatusInactive = "inactive"
)

// RetentionYears is the FERPA minimum number of years a soft-deleted record
// must be retained before permanent deletion is permitted. No caller role
// may override it.
const RetentionYears = 5

// Record is a student trespass/behavioral record. TenantID is immutable
// after creation. DeletedAt is the explicit soft-delete marker; it is a
// plain column rather than gorm.DeletedAt so the lifecycle stays visible to
// retention queries.
type Record struct {
	ID                 string     `gorm:"primaryKey;size:36" json:"id"`
	TenantID           string     `gorm:"size:36;not null;index" json:"tenant_id"`
	CampusID           *string    `gorm:"size:8;index" json:"campus_id,omitempty"`
	SubjectName        string     `gorm:"size:255;not null" json:"subject_name"`
	Description        string     `gorm:"type:text" json:"description"`
	IncidentDate       *time.Time `json:"incident_date,omitempty"`
	Status             string     `gorm:"size:20;not null;default:'active'" json:"status"`
	ExpirationDate     *time.Time `json:"expiration_date,omitempty"`
	IsDAEP             bool       `gorm:"not null;default:false" json:"is_daep"`
	DAEPExpirationDate *time.Time `json:"daep_expiration_date,omitempty"`
	DeletedAt          *time.Time `gorm:"index" json:"deleted_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// Expired reports the derived expired state: stored status is active but the
// expiration date has passed.
func (r Record) Expired(now time.Time) bool {
	return r.Status == RecordStatusActive && r.ExpirationDate != nil && r.ExpirationDate.Before(now)
}

// SoftDeleted reports whether the record carries a soft-delete marker.
func (r Record) SoftDeleted() bool {
	return r.DeletedAt != nil
}

// PurgeEligibleAt returns the first instant the record may be permanently
// deleted, or the zero time if it is not soft-deleted.
func (r Record) PurgeEligibleAt() time.Time {
	if r.DeletedAt == nil {
		return time.Time{}
	}
	return r.DeletedAt.AddDate(RetentionYears, 0, 0)
}

// RetentionDaysRemaining returns the whole days left before the record
// becomes purge-eligible, zero once the retention floor is satisfied.
func (r Record) RetentionDaysRemaining(now time.Time) int {
	if r.DeletedAt == nil {
		return 0
	}
	remaining := r.PurgeEligibleAt().Sub(now)
	if remaining <= 0 {
		return 0
	}
	return int(math.Ceil(remaining.Hours() / 24))
}

// DaysSinceDeletion returns the whole days elapsed since the soft delete.
func (r Record) DaysSinceDeletion(now time.Time) int {
	if r.DeletedAt == nil {
		return 0
	}
	elapsed := now.Sub(*r.DeletedAt)
	if elapsed < 0 {
		return 0
	}
	return int(elapsed.Hours() / 24)
}

// RequiresAction reports whether the soft-deleted record has aged past the
// retention floor and awaits a confirmed purge decision. Records are never
// auto-purged.
func (r Record) RequiresAction(now time.Time) bool {
	return r.DeletedAt != nil && !now.Before(r.PurgeEligibleAt())
}
