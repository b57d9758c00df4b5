package user

type Permission string

const (
	// Attendance
	PermissionAttendanceClock   Permission = "attendance.clock"
	PermissionAttendanceViewOwn Permission = "attendance.view_own"
	PermissionAttendanceViewAll Permission = "attendance.view_all"
	PermissionAttendanceSweep   Permission = "attendance.sweep"
	PermissionAttendanceCorrect Permission = "attendance.correct"

	// Administration
	PermissionScheduleManage Permission = "schedule.manage"
	PermissionSettingsView   Permission = "settings.view"
	PermissionSettingsManage Permission = "settings.manage"
	PermissionAuditView      Permission = "audit.view"
	PermissionUserManage     Permission = "user.manage"

	// Reports
	PermissionReportsView Permission = "reports.view"
)

var adminPermissions = []Permission{
	PermissionAttendanceViewOwn,
	PermissionAttendanceViewAll,
	PermissionAttendanceSweep,
	PermissionAttendanceCorrect,
	PermissionScheduleManage,
	PermissionSettingsView,
	PermissionSettingsManage,
	PermissionAuditView,
	PermissionUserManage,
	PermissionReportsView,
}

var workerPermissions = []Permission{
	PermissionAttendanceClock,
	PermissionAttendanceViewOwn,
	PermissionSettingsView,
}

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RoleSuperAdmin: adminPermissions,
	RoleAdmin:      adminPermissions,
	RoleHead: {
		// Head clocks like staff and can read team reports
		PermissionAttendanceClock,
		PermissionAttendanceViewOwn,
		PermissionAttendanceViewAll,
		PermissionSettingsView,
		PermissionReportsView,
	},
	RoleGIA:   workerPermissions,
	RoleStaff: workerPermissions,
}

// HasPermission checks if a role has a specific permission
func HasPermission(role Role, permission Permission) bool {
	permissions, exists := RolePermissions[role]
	if !exists {
		return false
	}

	for _, p := range permissions {
		if p == permission {
			return true
		}
	}

	return false
}
