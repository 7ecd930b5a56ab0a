package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/campus-records-api/internal/authz"
	"github.com/noah-isme/campus-records-api/internal/dto"
	"github.com/noah-isme/campus-records-api/internal/models"
	"github.com/noah-isme/campus-records-api/internal/repository"
)

func seedProfile(t *testing.T, db *gorm.DB, profile models.UserProfile) models.UserProfile {
	t.Helper()
	if profile.ID == "" {
		profile.ID = uuid.NewString()
	}
	if profile.Email == "" {
		profile.Email = profile.ID + "@example.com"
	}
	if profile.Name == "" {
		profile.Name = "Test User"
	}
	require.NoError(t, db.Create(&profile).Error)
	return profile
}

func actorFor(profile models.UserProfile) authz.Actor {
	return authz.ActorFromProfile(profile)
}

func mintGrant(t *testing.T, db *gorm.DB, actorID, tenantID string) authz.Grant {
	t.Helper()
	verifier := authz.NewServiceRoleVerifier(repository.NewUserProfileRepository(db), testLogger())
	grant, err := verifier.Verify(context.Background(), actorID, tenantID)
	require.NoError(t, err)
	return grant
}

func newAdminUserService(db *gorm.DB, audit AuditRecorder) AdminUserService {
	return NewAdminUserService(repository.NewUserProfileRepository(db), testValidator(), audit, testLogger())
}

func TestAdminUserListHidesMasterAdmins(t *testing.T) {
	db := setupTestDB(t)
	svc := newAdminUserService(db, &recordingAudit{})
	ctx := context.Background()

	district := seedProfile(t, db, models.UserProfile{TenantID: "bisd", Role: models.RoleDistrictAdmin})
	seedProfile(t, db, models.UserProfile{TenantID: "bisd", Role: models.RoleViewer})
	master := seedProfile(t, db, models.UserProfile{TenantID: "bisd", Role: models.RoleMasterAdmin})

	listed, err := svc.List(ctx, actorFor(district), dto.AdminUserListRequest{PageSize: 10})
	require.NoError(t, err)
	require.Equal(t, int64(2), listed.Pagination.TotalItems)
	for _, item := range listed.Items {
		require.NotEqual(t, models.RoleMasterAdmin.String(), item.Role)
	}

	listed, err = svc.List(ctx, actorFor(master), dto.AdminUserListRequest{PageSize: 10})
	require.NoError(t, err)
	require.Equal(t, int64(3), listed.Pagination.TotalItems)

	// Master accounts read as absent to lower roles.
	_, err = svc.Get(ctx, actorFor(district), "", master.ID)
	require.ErrorIs(t, err, ErrUserNotFound)
	_, err = svc.Get(ctx, actorFor(master), "", master.ID)
	require.NoError(t, err)
}

func TestAdminUserRoleUpdateRequiresGrant(t *testing.T) {
	db := setupTestDB(t)
	svc := newAdminUserService(db, &recordingAudit{})
	ctx := context.Background()

	district := seedProfile(t, db, models.UserProfile{TenantID: "bisd", Role: models.RoleDistrictAdmin})
	target := seedProfile(t, db, models.UserProfile{TenantID: "bisd", Role: models.RoleViewer})

	// A zero grant is rejected even though the actor's claimed role passes
	// the gate.
	_, err := svc.UpdateRole(ctx, actorFor(district), authz.Grant{}, "", target.ID, dto.AdminUserRoleUpdateRequest{Role: "district_admin"})
	require.ErrorIs(t, err, authz.ErrUnauthorized)

	// A grant minted for a different actor is also rejected.
	other := seedProfile(t, db, models.UserProfile{TenantID: "bisd", Role: models.RoleDistrictAdmin})
	wrongGrant := mintGrant(t, db, other.ID, "bisd")
	_, err = svc.UpdateRole(ctx, actorFor(district), wrongGrant, "", target.ID, dto.AdminUserRoleUpdateRequest{Role: "district_admin"})
	require.ErrorIs(t, err, authz.ErrUnauthorized)

	grant := mintGrant(t, db, district.ID, "bisd")
	updated, err := svc.UpdateRole(ctx, actorFor(district), grant, "", target.ID, dto.AdminUserRoleUpdateRequest{Role: "district_admin"})
	require.NoError(t, err)
	require.Equal(t, "district_admin", updated.Role)
}

func TestAdminUserRoleUpdateCampusAdminRules(t *testing.T) {
	db := setupTestDB(t)
	audit := &recordingAudit{}
	svc := newAdminUserService(db, audit)
	ctx := context.Background()

	district := seedProfile(t, db, models.UserProfile{TenantID: "bisd", Role: models.RoleDistrictAdmin})
	target := seedProfile(t, db, models.UserProfile{TenantID: "bisd", Role: models.RoleViewer})
	grant := mintGrant(t, db, district.ID, "bisd")

	// campus_admin without a campus fails before any lookup.
	_, err := svc.UpdateRole(ctx, actorFor(district), grant, "", target.ID, dto.AdminUserRoleUpdateRequest{Role: "campus_admin"})
	require.ErrorIs(t, err, authz.ErrCampusRequired)

	updated, err := svc.UpdateRole(ctx, actorFor(district), grant, "", target.ID, dto.AdminUserRoleUpdateRequest{Role: "campus_admin", CampusID: strPtr("001")})
	require.NoError(t, err)
	require.Equal(t, "campus_admin", updated.Role)
	require.NotNil(t, updated.CampusID)
	require.Equal(t, "001", *updated.CampusID)

	// Moving off campus_admin clears the campus assignment.
	updated, err = svc.UpdateRole(ctx, actorFor(district), grant, "", target.ID, dto.AdminUserRoleUpdateRequest{Role: "viewer"})
	require.NoError(t, err)
	require.Nil(t, updated.CampusID)

	require.Equal(t, models.EventUserRoleUpdated, audit.lastEventType(t))
}

func TestAdminUserRoleUpdateHierarchyProtection(t *testing.T) {
	db := setupTestDB(t)
	svc := newAdminUserService(db, &recordingAudit{})
	ctx := context.Background()

	district := seedProfile(t, db, models.UserProfile{TenantID: "bisd", Role: models.RoleDistrictAdmin})
	master := seedProfile(t, db, models.UserProfile{TenantID: "bisd", Role: models.RoleMasterAdmin})
	target := seedProfile(t, db, models.UserProfile{TenantID: "bisd", Role: models.RoleViewer})
	grant := mintGrant(t, db, district.ID, "bisd")

	// district_admin may neither grant master_admin nor touch one.
	_, err := svc.UpdateRole(ctx, actorFor(district), grant, "", target.ID, dto.AdminUserRoleUpdateRequest{Role: "master_admin"})
	require.ErrorIs(t, err, authz.ErrUnauthorized)
	_, err = svc.UpdateRole(ctx, actorFor(district), grant, "", master.ID, dto.AdminUserRoleUpdateRequest{Role: "viewer"})
	require.ErrorIs(t, err, authz.ErrUnauthorized)

	masterGrant := mintGrant(t, db, master.ID, "bisd")
	_, err = svc.UpdateRole(ctx, actorFor(master), masterGrant, "", target.ID, dto.AdminUserRoleUpdateRequest{Role: "master_admin"})
	require.NoError(t, err)
}

func TestAdminUserDeleteRules(t *testing.T) {
	db := setupTestDB(t)
	audit := &recordingAudit{}
	svc := newAdminUserService(db, audit)
	ctx := context.Background()

	district := seedProfile(t, db, models.UserProfile{TenantID: "bisd", Role: models.RoleDistrictAdmin})
	target := seedProfile(t, db, models.UserProfile{TenantID: "bisd", Role: models.RoleViewer})
	grant := mintGrant(t, db, district.ID, "bisd")

	// Self-deletion fails closed before any lookup.
	err := svc.Delete(ctx, actorFor(district), grant, "", district.ID)
	require.ErrorIs(t, err, authz.ErrForbiddenSelfAction)

	require.NoError(t, svc.Delete(ctx, actorFor(district), grant, "", target.ID))
	require.Equal(t, models.EventUserDeleted, audit.lastEventType(t))

	// The deleted account is gone from reads and cannot mint grants.
	_, err = svc.Get(ctx, actorFor(district), "", target.ID)
	require.ErrorIs(t, err, ErrUserNotFound)
	verifier := authz.NewServiceRoleVerifier(repository.NewUserProfileRepository(db), testLogger())
	deletedAdmin := seedProfile(t, db, models.UserProfile{TenantID: "bisd", Role: models.RoleDistrictAdmin})
	require.NoError(t, svc.Delete(ctx, actorFor(district), grant, "", deletedAdmin.ID))
	_, err = verifier.Verify(ctx, deletedAdmin.ID, "bisd")
	require.ErrorIs(t, err, authz.ErrUnauthorized)
}

func TestAdminUserUpdateMergesHiddenTargets(t *testing.T) {
	db := setupTestDB(t)
	svc := newAdminUserService(db, &recordingAudit{})
	ctx := context.Background()

	district := seedProfile(t, db, models.UserProfile{TenantID: "bisd", Role: models.RoleDistrictAdmin})
	master := seedProfile(t, db, models.UserProfile{TenantID: "bisd", Role: models.RoleMasterAdmin})

	_, err := svc.Update(ctx, actorFor(district), "", master.ID, dto.AdminUserUpdateRequest{Name: strPtr("New Name")})
	require.ErrorIs(t, err, ErrUserNotFound)

	updated, err := svc.Update(ctx, actorFor(district), "", district.ID, dto.AdminUserUpdateRequest{Name: strPtr("New Name")})
	require.NoError(t, err)
	require.Equal(t, "New Name", updated.Name)
}
