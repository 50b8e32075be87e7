package core

import "time"

const (
	EmployeeStatusActive     = "active"
	EmployeeStatusOnLeave    = "on_leave"
	EmployeeStatusTerminated = "terminated"
)

type Employee struct {
	ID             string     `json:"id"`
	UserID         string     `json:"userId"`
	EmployeeNumber string     `json:"employeeNumber"`
	FirstName      string     `json:"firstName"`
	LastName       string     `json:"lastName"`
	Email          string     `json:"email"`
	Phone          string     `json:"phone"`
	NationalID     string     `json:"nationalId,omitempty"`
	Location       string     `json:"location"`
	ManagerID      string     `json:"managerId"`
	BandID         string     `json:"bandId"`
	BandName       string     `json:"bandName,omitempty"`
	CapabilityID   string     `json:"capabilityId"`
	CapabilityName string     `json:"capabilityName,omitempty"`
	StartDate      *time.Time `json:"startDate,omitempty"`
	Status         string     `json:"status"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

type Band struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Rank        int       `json:"rank"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

type Capability struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	LeadID    string    `json:"leadId"`
	CreatedAt time.Time `json:"createdAt"`
}

type BandRequirement struct {
	SkillID        string `json:"skillId"`
	RequiredRating string `json:"requiredRating"`
}
