package courses

import "time"

type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

type Course struct {
	ID            string    `json:"id"`
	Code          string    `json:"code"`
	Title         string    `json:"title"`
	Provider      string    `json:"provider"`
	Category      string    `json:"category"`
	DurationHours int       `json:"durationHours"`
	SkillID       string    `json:"skillId,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

type Assignment struct {
	ID             string     `json:"id"`
	EmployeeID     string     `json:"employeeId"`
	EmployeeName   string     `json:"employeeName,omitempty"`
	CourseID       string     `json:"courseId"`
	CourseCode     string     `json:"courseCode,omitempty"`
	CourseTitle    string     `json:"courseTitle,omitempty"`
	Status         Status     `json:"status"`
	AssignedBy     string     `json:"assignedBy"`
	AssignedAt     time.Time  `json:"assignedAt"`
	DueDate        *time.Time `json:"dueDate,omitempty"`
	StartedAt      *time.Time `json:"startedAt,omitempty"`
	CompletedAt    *time.Time `json:"completedAt,omitempty"`
	CertificateURL string     `json:"certificateUrl,omitempty"`
	Overdue        bool       `json:"overdue"`
}
