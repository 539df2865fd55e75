package user

type Permission string

const (
	// Self Management
	PermissionViewOwnProfile Permission = "profile.view_own"
	PermissionEditOwnProfile Permission = "profile.edit_own"

	// Attendance Management
	PermissionAttendanceViewOwn  Permission = "attendance.view_own"
	PermissionAttendanceCreate   Permission = "attendance.create"
	PermissionAttendanceViewAll  Permission = "attendance.view_all"
	PermissionAttendanceOverride Permission = "attendance.override"

	// Leave Management
	PermissionLeaveViewOwn Permission = "leave.view_own"
	PermissionLeaveCreate  Permission = "leave.create"
	PermissionLeaveViewAll Permission = "leave.view_all"
	PermissionLeaveApprove Permission = "leave.approve"

	// Overtime Management
	PermissionOvertimeViewOwn Permission = "overtime.view_own"
	PermissionOvertimeCreate  Permission = "overtime.create"
	PermissionOvertimeViewAll Permission = "overtime.view_all"
	PermissionOvertimeApprove Permission = "overtime.approve"

	// Payroll
	PermissionPayrollViewOwn Permission = "payroll.view_own"
	PermissionPayrollViewAll Permission = "payroll.view_all"
	PermissionPayrollProcess Permission = "payroll.process"
	PermissionPayrollPay     Permission = "payroll.pay"

	// Employee Management
	PermissionEmployeeViewAll Permission = "employee.view_all"
	PermissionEmployeeManage  Permission = "employee.manage"

	// Registration codes
	PermissionRegistrationManage Permission = "registration.manage"
)

var selfService = []Permission{
	PermissionViewOwnProfile,
	PermissionEditOwnProfile,
	PermissionAttendanceViewOwn,
	PermissionAttendanceCreate,
	PermissionLeaveViewOwn,
	PermissionLeaveCreate,
	PermissionOvertimeViewOwn,
	PermissionOvertimeCreate,
	PermissionPayrollViewOwn,
}

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RoleAdmin: append(append([]Permission{}, selfService...),
		PermissionAttendanceViewAll,
		PermissionAttendanceOverride,
		PermissionLeaveViewAll,
		PermissionLeaveApprove,
		PermissionOvertimeViewAll,
		PermissionOvertimeApprove,
		PermissionPayrollViewAll,
		PermissionPayrollProcess,
		PermissionPayrollPay,
		PermissionEmployeeViewAll,
		PermissionEmployeeManage,
		PermissionRegistrationManage,
	),
	RoleHR: append(append([]Permission{}, selfService...),
		PermissionAttendanceViewAll,
		PermissionAttendanceOverride,
		PermissionLeaveViewAll,
		PermissionLeaveApprove,
		PermissionOvertimeViewAll,
		PermissionOvertimeApprove,
		PermissionPayrollViewAll,
		PermissionPayrollProcess,
		PermissionEmployeeViewAll,
		PermissionRegistrationManage,
	),
	RoleManager: append(append([]Permission{}, selfService...),
		// Manager can approve and view team data
		PermissionAttendanceViewAll,
		PermissionLeaveViewAll,
		PermissionLeaveApprove,
		PermissionOvertimeViewAll,
		PermissionOvertimeApprove,
		PermissionEmployeeViewAll,
	),
	RoleEmployee: selfService,
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
