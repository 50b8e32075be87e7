package core

import "skillboard/internal/domain/auth"

// FilterEmployeeFields strips identity fields the caller may not see.
// HR and system admins see everything, everyone else loses the national ID.
func FilterEmployeeFields(emp *Employee, user auth.UserContext, isSelf bool) {
	if user.RoleName == auth.RoleHR || user.RoleName == auth.RoleSystemAdmin {
		return
	}
	if isSelf {
		return
	}
	emp.NationalID = ""
	emp.Phone = ""
}
