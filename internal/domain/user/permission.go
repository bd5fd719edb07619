package user

type Permission string

const (
	// Leave Management
	PermissionLeaveViewOwn Permission = "leave.view_own"
	PermissionLeaveCreate  Permission = "leave.create"
	PermissionLeaveApprove Permission = "leave.approve"

	// Attendance Management
	PermissionAttendanceViewOwn Permission = "attendance.view_own"
	PermissionAttendanceViewAll Permission = "attendance.view_all"

	// Reports
	PermissionReportsCompany Permission = "reports.company"
)

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RoleOwner: {
		PermissionLeaveViewOwn,
		PermissionLeaveCreate,
		PermissionLeaveApprove,
		PermissionAttendanceViewOwn,
		PermissionAttendanceViewAll,
		PermissionReportsCompany,
	},
	RoleManager: {
		// Manager can approve and view their department
		PermissionLeaveViewOwn,
		PermissionLeaveCreate,
		PermissionLeaveApprove,
		PermissionAttendanceViewOwn,
		PermissionAttendanceViewAll,
	},
	RoleEmployee: {
		PermissionLeaveViewOwn,
		PermissionLeaveCreate,
		PermissionAttendanceViewOwn,
	},
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
