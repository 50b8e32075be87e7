package notifications

const (
	TypeCourseAssigned    = "course_assigned"
	TypeCourseCompleted   = "course_completed"
	TypeCourseOverdue     = "course_overdue"
	TypeMovementSubmitted = "movement_submitted"
	TypeMovementApproved  = "movement_approved"
	TypeMovementRejected  = "movement_rejected"
	TypeSkillAssessed     = "skill_assessed"
)
