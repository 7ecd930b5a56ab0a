package authz

import "github.com/noah-isme/campus-records-api/internal/models"

// Action names every privileged operation the gate can authorize.
type Action string

const (
	ActionRecordList        Action = "record.list"
	ActionRecordCreate      Action = "record.create"
	ActionRecordUpdate      Action = "record.update"
	ActionRecordDelete      Action = "record.delete"
	ActionRecordRestore     Action = "record.restore"
	ActionRecordPurge       Action = "record.purge"
	ActionRecordListDeleted Action = "record.list_deleted"
	ActionUserList          Action = "user.list"
	ActionUserUpdate        Action = "user.update"
	ActionUserRoleUpdate    Action = "user.role.update"
	ActionUserDelete        Action = "user.delete"
	ActionCampusDeactivate  Action = "campus.deactivate"
	ActionCampusActivate    Action = "campus.activate"
	ActionTenantRead        Action = "tenant.read"
	ActionTenantUpdate      Action = "tenant.update"
	ActionTenantSwitch      Action = "tenant.switch"
	ActionAuditQuery        Action = "audit.query"
)

// allowedRoles is the single source of truth mapping each action to the
// roles permitted to perform it.
var allowedRoles = map[Action][]models.Role{
	ActionRecordList:        {models.RoleViewer, models.RoleCampusAdmin, models.RoleDistrictAdmin, models.RoleMasterAdmin},
	ActionRecordCreate:      {models.RoleCampusAdmin, models.RoleDistrictAdmin, models.RoleMasterAdmin},
	ActionRecordUpdate:      {models.RoleCampusAdmin, models.RoleDistrictAdmin, models.RoleMasterAdmin},
	ActionRecordDelete:      {models.RoleDistrictAdmin, models.RoleMasterAdmin},
	ActionRecordRestore:     {models.RoleDistrictAdmin, models.RoleMasterAdmin},
	ActionRecordPurge:       {models.RoleDistrictAdmin, models.RoleMasterAdmin},
	ActionRecordListDeleted: {models.RoleDistrictAdmin, models.RoleMasterAdmin},
	ActionUserList:          {models.RoleDistrictAdmin, models.RoleMasterAdmin},
	ActionUserUpdate:        {models.RoleDistrictAdmin, models.RoleMasterAdmin},
	ActionUserRoleUpdate:    {models.RoleDistrictAdmin, models.RoleMasterAdmin},
	ActionUserDelete:        {models.RoleDistrictAdmin, models.RoleMasterAdmin},
	ActionCampusDeactivate:  {models.RoleDistrictAdmin, models.RoleMasterAdmin},
	ActionCampusActivate:    {models.RoleDistrictAdmin, models.RoleMasterAdmin},
	ActionTenantRead:        {models.RoleDistrictAdmin, models.RoleMasterAdmin},
	ActionTenantUpdate:      {models.RoleMasterAdmin},
	ActionTenantSwitch:      {models.RoleMasterAdmin},
	ActionAuditQuery:        {models.RoleDistrictAdmin, models.RoleMasterAdmin},
}

// destructiveSelfActions are actions an actor may never perform against
// its own account.
var destructiveSelfActions = map[Action]struct{}{
	ActionUserDelete: {},
}

// RolesFor returns the allowed-role set for an action.
func RolesFor(action Action) []models.Role {
	return allowedRoles[action]
}
