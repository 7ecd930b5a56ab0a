package authz

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-records-api/internal/models"
)

func strPtr(s string) *string { return &s }

func TestResolveTenantRequestedParamWins(t *testing.T) {
	actor := Actor{ID: "a", Role: models.RoleMasterAdmin, TenantID: "home", ActiveTenantID: strPtr("active")}

	tenantID, err := ResolveTenant(actor, "requested")
	require.NoError(t, err)
	require.Equal(t, "requested", tenantID)
}

func TestResolveTenantActiveOverridesHome(t *testing.T) {
	actor := Actor{ID: "a", Role: models.RoleMasterAdmin, TenantID: "home", ActiveTenantID: strPtr("active")}

	tenantID, err := ResolveTenant(actor, "")
	require.NoError(t, err)
	require.Equal(t, "active", tenantID)
}

func TestResolveTenantFallsBackToHome(t *testing.T) {
	actor := Actor{ID: "a", Role: models.RoleViewer, TenantID: "home"}

	tenantID, err := ResolveTenant(actor, "")
	require.NoError(t, err)
	require.Equal(t, "home", tenantID)

	tenantID, err = ResolveTenant(actor, "  ")
	require.NoError(t, err)
	require.Equal(t, "home", tenantID)
}

func TestResolveTenantNoTenantSelected(t *testing.T) {
	_, err := ResolveTenant(Actor{ID: "a", Role: models.RoleViewer}, "")
	require.ErrorIs(t, err, ErrNoTenantSelected)
}

func TestResolveTenantCrossTenantRequiresMaster(t *testing.T) {
	for _, role := range []models.Role{models.RoleViewer, models.RoleCampusAdmin, models.RoleDistrictAdmin} {
		actor := Actor{ID: "a", Role: role, TenantID: "home"}
		_, err := ResolveTenant(actor, "other")
		require.ErrorIs(t, err, ErrUnauthorized, "role %s must not cross tenants", role)
	}

	// Requesting the home tenant explicitly is always fine.
	actor := Actor{ID: "a", Role: models.RoleViewer, TenantID: "home"}
	tenantID, err := ResolveTenant(actor, "home")
	require.NoError(t, err)
	require.Equal(t, "home", tenantID)
}

func TestEffectiveCampusPinsCampusAdminWrites(t *testing.T) {
	admin := Actor{ID: "a", Role: models.RoleCampusAdmin, TenantID: "t", CampusID: strPtr("001")}

	require.Equal(t, "001", EffectiveCampus(admin, "002", true))
	require.Equal(t, "002", EffectiveCampus(admin, "002", false))

	district := Actor{ID: "b", Role: models.RoleDistrictAdmin, TenantID: "t"}
	require.Equal(t, "002", EffectiveCampus(district, "002", true))
	require.Equal(t, "", EffectiveCampus(district, "  ", true))
}
