package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	role, err := ParseRole("  District_Admin ")
	require.NoError(t, err)
	require.Equal(t, RoleDistrictAdmin, role)

	_, err = ParseRole("superuser")
	require.Error(t, err)
	_, err = ParseRole("")
	require.Error(t, err)
}

func TestRoleAtLeast(t *testing.T) {
	require.True(t, RoleMasterAdmin.AtLeast(RoleDistrictAdmin))
	require.True(t, RoleDistrictAdmin.AtLeast(RoleDistrictAdmin))
	require.False(t, RoleCampusAdmin.AtLeast(RoleDistrictAdmin))
	require.False(t, RoleViewer.AtLeast(RoleCampusAdmin))
}

func TestValidateSubdomain(t *testing.T) {
	require.NoError(t, ValidateSubdomain("bisd"))
	require.NoError(t, ValidateSubdomain("north-east-7"))
	require.Error(t, ValidateSubdomain("Bisd"))
	require.Error(t, ValidateSubdomain("-bisd"))
	require.Error(t, ValidateSubdomain("bi sd"))
	require.Error(t, ValidateSubdomain(""))
}

func TestKnownEventType(t *testing.T) {
	require.True(t, KnownEventType(EventRecordCreated))
	require.True(t, KnownEventType(EventTenantSwitched))
	require.False(t, KnownEventType("record.vaporized"))
	require.False(t, KnownEventType(""))
}
