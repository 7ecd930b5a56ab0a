package authz

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/noah-isme/campus-records-api/internal/models"
)

// ActorSource loads the current actor profile from the system of record.
// Implementations must exclude soft-deleted profiles.
type ActorSource interface {
	GetByID(ctx context.Context, id string) (models.UserProfile, error)
}

// Grant is proof that the service-role verifier re-confirmed an actor's
// privilege against freshly-read state. Privileged service entry points
// take a Grant parameter, so the secondary check cannot be skipped by
// construction: only the verifier can mint one.
type Grant struct {
	actorID  string
	tenantID string
	role     models.Role
}

// ActorID returns the verified actor id.
func (g Grant) ActorID() string { return g.actorID }

// TenantID returns the tenant the grant was verified against.
func (g Grant) TenantID() string { return g.tenantID }

// Role returns the freshly-read role.
func (g Grant) Role() models.Role { return g.role }

// Valid reports whether the grant was minted by the verifier.
func (g Grant) Valid() bool { return g.actorID != "" && g.role.Valid() }

// ServiceRoleVerifier is the defense-in-depth secondary check executed
// before any write that bypasses row-level scoping. It ignores whatever the
// request claimed and re-reads role and tenant membership from the store.
type ServiceRoleVerifier struct {
	actors ActorSource
	logger zerolog.Logger
}

// NewServiceRoleVerifier constructs the verifier.
func NewServiceRoleVerifier(actors ActorSource, logger zerolog.Logger) *ServiceRoleVerifier {
	return &ServiceRoleVerifier{
		actors: actors,
		logger: logger.With().Str("component", "service_role_verifier").Logger(),
	}
}

// Verify re-fetches the actor and confirms it may perform scope-bypassing
// writes within the target tenant. Any failure is reported as a plain
// unauthorized error so nothing about the actual mismatch leaks.
func (v *ServiceRoleVerifier) Verify(ctx context.Context, actorID, targetTenantID string) (Grant, error) {
	profile, err := v.actors.GetByID(ctx, actorID)
	if err != nil {
		v.logger.Warn().Err(err).Str("actor_id", actorID).Msg("privileged operation denied: actor lookup failed")
		return Grant{}, ErrUnauthorized
	}

	if profile.DeletedAt != nil {
		v.logger.Warn().Str("actor_id", actorID).Msg("privileged operation denied: actor deleted")
		return Grant{}, ErrUnauthorized
	}

	if profile.Role != models.RoleDistrictAdmin && profile.Role != models.RoleMasterAdmin {
		v.logger.Warn().Str("actor_id", actorID).Str("role", profile.Role.String()).Msg("privileged operation denied: role not permitted")
		return Grant{}, ErrUnauthorized
	}

	if profile.Role != models.RoleMasterAdmin && profile.TenantID != targetTenantID {
		v.logger.Warn().Str("actor_id", actorID).Msg("privileged operation denied: tenant mismatch")
		return Grant{}, ErrUnauthorized
	}

	return Grant{actorID: profile.ID, tenantID: targetTenantID, role: profile.Role}, nil
}
