package auth

const (
	RoleEmployee          = "employee"
	RoleManager           = "manager"
	RoleCapabilityPartner = "capability_partner"
	RoleHR                = "hr"
	RoleSystemAdmin       = "system_admin"
)

const (
	PermEmployeesRead       = "core.employees.read"
	PermEmployeesWrite      = "core.employees.write"
	PermBandsRead           = "core.bands.read"
	PermBandsWrite          = "core.bands.write"
	PermSkillsRead          = "skills.read"
	PermSkillsWrite         = "skills.write"
	PermSkillsAssess        = "skills.assess"
	PermCoursesRead         = "courses.read"
	PermCoursesWrite        = "courses.write"
	PermCoursesAssign       = "courses.assign"
	PermMovementRead        = "movement.read"
	PermMovementSubmit      = "movement.submit"
	PermMovementApprove     = "movement.approve"
	PermReconciliationRead  = "reconciliation.read"
	PermReconciliationSync  = "reconciliation.sync"
	PermReportsRead         = "reports.read"
	PermAuditRead           = "audit.read"
	PermSystemAdmin         = "admin.system"
)

var DefaultPermissions = []string{
	PermEmployeesRead,
	PermEmployeesWrite,
	PermBandsRead,
	PermBandsWrite,
	PermSkillsRead,
	PermSkillsWrite,
	PermSkillsAssess,
	PermCoursesRead,
	PermCoursesWrite,
	PermCoursesAssign,
	PermMovementRead,
	PermMovementSubmit,
	PermMovementApprove,
	PermReconciliationRead,
	PermReconciliationSync,
	PermReportsRead,
	PermAuditRead,
	PermSystemAdmin,
}

var RolePermissions = map[string][]string{
	RoleEmployee: {
		PermEmployeesRead,
		PermBandsRead,
		PermSkillsRead,
		PermSkillsAssess,
		PermCoursesRead,
		PermMovementRead,
		PermMovementSubmit,
		PermReportsRead,
	},
	RoleManager: {
		PermEmployeesRead,
		PermBandsRead,
		PermSkillsRead,
		PermSkillsAssess,
		PermCoursesRead,
		PermCoursesWrite,
		PermCoursesAssign,
		PermMovementRead,
		PermMovementSubmit,
		PermMovementApprove,
		PermReportsRead,
	},
	RoleCapabilityPartner: {
		PermEmployeesRead,
		PermBandsRead,
		PermSkillsRead,
		PermCoursesRead,
		PermMovementRead,
		PermMovementApprove,
		PermReportsRead,
	},
	RoleHR: {
		PermEmployeesRead,
		PermEmployeesWrite,
		PermBandsRead,
		PermBandsWrite,
		PermSkillsRead,
		PermSkillsWrite,
		PermSkillsAssess,
		PermCoursesRead,
		PermCoursesWrite,
		PermCoursesAssign,
		PermMovementRead,
		PermMovementSubmit,
		PermMovementApprove,
		PermReconciliationRead,
		PermReconciliationSync,
		PermReportsRead,
		PermAuditRead,
	},
	RoleSystemAdmin: {
		PermSystemAdmin,
	},
}
