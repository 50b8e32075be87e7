package levelmove

import "time"

type Status string

const (
	StatusPending         Status = "pending"
	StatusManagerApproved Status = "manager_approved"
	StatusCPApproved      Status = "cp_approved"
	StatusHRApproved      Status = "hr_approved"
	StatusRejected        Status = "rejected"
)

const (
	DecisionApproved = "approved"
	DecisionRejected = "rejected"
)

type Request struct {
	ID              string     `json:"id"`
	EmployeeID      string     `json:"employeeId"`
	EmployeeName    string     `json:"employeeName,omitempty"`
	CurrentBandID   string     `json:"currentBandId"`
	CurrentBandName string     `json:"currentBandName,omitempty"`
	TargetBandID    string     `json:"targetBandId"`
	TargetBandName  string     `json:"targetBandName,omitempty"`
	Status          Status     `json:"status"`
	Justification   string     `json:"justification"`
	ReadinessScore  int        `json:"readinessScore"`
	SubmittedAt     time.Time  `json:"submittedAt"`
	DecidedAt       *time.Time `json:"decidedAt,omitempty"`
	Approvals       []Approval `json:"approvals"`
}

type Approval struct {
	ID        string    `json:"id"`
	ActorID   string    `json:"actorId"`
	ActorName string    `json:"actorName,omitempty"`
	Role      string    `json:"role"`
	Decision  string    `json:"decision"`
	Comments  string    `json:"comments"`
	Timestamp time.Time `json:"timestamp"`
}
