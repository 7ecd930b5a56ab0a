package authz

import "github.com/noah-isme/campus-records-api/internal/models"

// Actor is the resolved identity a gate decision is made for. It is built
// from the stored user profile, never from token claims alone.
type Actor struct {
	ID             string
	Role           models.Role
	TenantID       string
	ActiveTenantID *string
	CampusID       *string
	Email          string
}

// ActorFromProfile converts a stored profile into a gate actor.
func ActorFromProfile(profile models.UserProfile) Actor {
	return Actor{
		ID:             profile.ID,
		Role:           profile.Role,
		TenantID:       profile.TenantID,
		ActiveTenantID: profile.ActiveTenantID,
		CampusID:       profile.CampusID,
		Email:          profile.Email,
	}
}

// Authenticated reports whether the actor carries a resolved identity.
func (a Actor) Authenticated() bool {
	return a.ID != "" && a.Role.Valid()
}

// TargetScope describes what an action is aimed at. Fields are optional;
// zero values mean "not applicable" for the action being checked.
type TargetScope struct {
	TenantID string
	CampusID string
	// ActorID and ActorRole describe a target user account, when the
	// action operates on one.
	ActorID   string
	ActorRole models.Role
	// NewRole is the requested role for user.role.update.
	NewRole models.Role
}

// Authorize is the pure authorization gate. Checks run in a fixed order and
// short-circuit so that no data is touched, and no existence revealed,
// beyond what the first failing rule implies.
func Authorize(actor Actor, action Action, target TargetScope) error {
	if !actor.Authenticated() {
		return ErrUnauthenticated
	}

	roles, known := allowedRoles[action]
	if !known {
		return ErrUnauthorized
	}
	permitted := false
	for _, role := range roles {
		if actor.Role == role {
			permitted = true
			break
		}
	}
	if !permitted {
		return ErrUnauthorized
	}

	// Role-hierarchy protection: only a master_admin may touch a
	// master_admin account or grant the master_admin role.
	if actor.Role != models.RoleMasterAdmin {
		if target.ActorRole == models.RoleMasterAdmin || target.NewRole == models.RoleMasterAdmin {
			return ErrUnauthorized
		}
	}

	if _, destructive := destructiveSelfActions[action]; destructive && target.ActorID != "" && target.ActorID == actor.ID {
		return ErrForbiddenSelfAction
	}

	if action == ActionUserRoleUpdate && target.NewRole == models.RoleCampusAdmin && target.CampusID == "" {
		return ErrCampusRequired
	}

	return nil
}
