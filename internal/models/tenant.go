package models

import (
	"fmt"
	"regexp"
	"time"
)

// Tenant statuses.
const (
	TenantStatusActive   = "active"
	TenantStatusInactive = "inactive"
)

var subdomainPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// Tenant is an isolated school district. Its id and subdomain are immutable
// once created; every other row in the system is scoped to exactly one tenant.
type Tenant struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Subdomain   string    `gorm:"size:63;uniqueIndex;not null" json:"subdomain"`
	DisplayName string    `gorm:"size:255;not null" json:"display_name"`
	Status      string    `gorm:"size:20;not null;default:'active'" json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ValidateSubdomain checks the lowercase alphanumeric+hyphen format.
func ValidateSubdomain(subdomain string) error {
	if !subdomainPattern.MatchString(subdomain) {
		return fmt.Errorf("invalid subdomain %q: must be lowercase alphanumeric with hyphens", subdomain)
	}
	return nil
}
