package authz

import (
	"strings"

	"github.com/noah-isme/campus-records-api/internal/models"
)

// ResolveTenant determines the effective tenant for a request. Resolution
// order: explicit request parameter, then the actor's active-tenant
// override, then the actor's home tenant. Only a master_admin may resolve to
// a tenant other than its home tenant.
func ResolveTenant(actor Actor, requestedTenantID string) (string, error) {
	requested := strings.TrimSpace(requestedTenantID)
	if requested != "" {
		if requested != actor.TenantID && actor.Role != models.RoleMasterAdmin {
			return "", ErrUnauthorized
		}
		return requested, nil
	}

	if actor.ActiveTenantID != nil && *actor.ActiveTenantID != "" {
		if *actor.ActiveTenantID != actor.TenantID && actor.Role != models.RoleMasterAdmin {
			return "", ErrUnauthorized
		}
		return *actor.ActiveTenantID, nil
	}

	if actor.TenantID != "" {
		return actor.TenantID, nil
	}

	return "", ErrNoTenantSelected
}

// EffectiveCampus resolves the campus scope for an operation. A
// campus_admin's writes are always pinned to the assigned campus, whatever
// the request says; reads may pass the requested campus through so
// aggregate views stay available.
func EffectiveCampus(actor Actor, requestedCampusID string, write bool) string {
	if actor.Role == models.RoleCampusAdmin && actor.CampusID != nil && write {
		return *actor.CampusID
	}
	return strings.TrimSpace(requestedCampusID)
}
