package authz

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-records-api/internal/models"
)

func testActor(role models.Role) Actor {
	return Actor{
		ID:       "actor-1",
		Role:     role,
		TenantID: "tenant-1",
		Email:    "actor@example.com",
	}
}

func TestAuthorizeRejectsUnauthenticated(t *testing.T) {
	err := Authorize(Actor{}, ActionRecordList, TargetScope{})
	require.ErrorIs(t, err, ErrUnauthenticated)

	// A subject with an id but no usable role is still unauthenticated.
	err = Authorize(Actor{ID: "actor-1", Role: "intruder"}, ActionRecordList, TargetScope{})
	require.ErrorIs(t, err, ErrUnauthenticated)
}

func TestAuthorizeRoleSets(t *testing.T) {
	cases := []struct {
		name   string
		role   models.Role
		action Action
		want   error
	}{
		{"viewer can list records", models.RoleViewer, ActionRecordList, nil},
		{"viewer cannot create records", models.RoleViewer, ActionRecordCreate, ErrUnauthorized},
		{"campus admin can create records", models.RoleCampusAdmin, ActionRecordCreate, nil},
		{"campus admin cannot delete records", models.RoleCampusAdmin, ActionRecordDelete, ErrUnauthorized},
		{"district admin can delete records", models.RoleDistrictAdmin, ActionRecordDelete, nil},
		{"district admin can purge records", models.RoleDistrictAdmin, ActionRecordPurge, nil},
		{"district admin cannot update tenant", models.RoleDistrictAdmin, ActionTenantUpdate, ErrUnauthorized},
		{"master admin can update tenant", models.RoleMasterAdmin, ActionTenantUpdate, nil},
		{"master admin can switch tenant", models.RoleMasterAdmin, ActionTenantSwitch, nil},
		{"campus admin cannot query audit", models.RoleCampusAdmin, ActionAuditQuery, ErrUnauthorized},
		{"district admin can query audit", models.RoleDistrictAdmin, ActionAuditQuery, nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Authorize(testActor(tc.role), tc.action, TargetScope{})
			if tc.want == nil {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, tc.want)
			}
		})
	}
}

func TestAuthorizeUnknownActionDenied(t *testing.T) {
	err := Authorize(testActor(models.RoleMasterAdmin), Action("record.vaporize"), TargetScope{})
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestAuthorizeMasterAdminHierarchy(t *testing.T) {
	district := testActor(models.RoleDistrictAdmin)

	err := Authorize(district, ActionUserUpdate, TargetScope{ActorID: "other", ActorRole: models.RoleMasterAdmin})
	require.ErrorIs(t, err, ErrUnauthorized)

	err = Authorize(district, ActionUserRoleUpdate, TargetScope{ActorID: "other", NewRole: models.RoleMasterAdmin})
	require.ErrorIs(t, err, ErrUnauthorized)

	master := testActor(models.RoleMasterAdmin)
	err = Authorize(master, ActionUserUpdate, TargetScope{ActorID: "other", ActorRole: models.RoleMasterAdmin})
	require.NoError(t, err)
}

func TestAuthorizeDestructiveSelfAction(t *testing.T) {
	actor := testActor(models.RoleMasterAdmin)

	err := Authorize(actor, ActionUserDelete, TargetScope{ActorID: actor.ID})
	require.ErrorIs(t, err, ErrForbiddenSelfAction)

	// Non-destructive self actions stay allowed.
	err = Authorize(actor, ActionUserUpdate, TargetScope{ActorID: actor.ID})
	require.NoError(t, err)
}

func TestAuthorizeCampusRequiredForCampusAdminGrant(t *testing.T) {
	actor := testActor(models.RoleDistrictAdmin)

	err := Authorize(actor, ActionUserRoleUpdate, TargetScope{ActorID: "other", NewRole: models.RoleCampusAdmin})
	require.ErrorIs(t, err, ErrCampusRequired)

	err = Authorize(actor, ActionUserRoleUpdate, TargetScope{ActorID: "other", NewRole: models.RoleCampusAdmin, CampusID: "001"})
	require.NoError(t, err)

	// Other roles never need a campus.
	err = Authorize(actor, ActionUserRoleUpdate, TargetScope{ActorID: "other", NewRole: models.RoleViewer})
	require.NoError(t, err)
}

func TestAuthorizeCheckOrderShortCircuits(t *testing.T) {
	// An unauthorized role loses before the self-action rule is reached.
	viewer := testActor(models.RoleViewer)
	err := Authorize(viewer, ActionUserDelete, TargetScope{ActorID: viewer.ID})
	require.ErrorIs(t, err, ErrUnauthorized)

	// Hierarchy protection fires before the self-action rule.
	district := testActor(models.RoleDistrictAdmin)
	err = Authorize(district, ActionUserDelete, TargetScope{ActorID: district.ID, ActorRole: models.RoleMasterAdmin})
	require.ErrorIs(t, err, ErrUnauthorized)
}
