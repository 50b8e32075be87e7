package reconciliation

import (
	"context"
	"time"
)

const (
	DiscrepancyMissing            = "missing"
	DiscrepancyExtra              = "extra"
	DiscrepancyAllocationMismatch = "allocation_mismatch"
)

const (
	ReportMatch    = "match"
	ReportPartial  = "partial"
	ReportMismatch = "mismatch"
)

type InternalRecord struct {
	EmployeeEmail string `json:"employeeEmail"`
	EmployeeName  string `json:"employeeName"`
	CourseCode    string `json:"courseCode"`
	CourseTitle   string `json:"courseTitle"`
	Status        string `json:"status"`
}

type HRMSRecord struct {
	EmployeeEmail string `json:"employeeEmail"`
	CourseCode    string `json:"courseCode"`
	CourseTitle   string `json:"courseTitle"`
	Status        string `json:"status"`
}

type Discrepancy struct {
	Type           string `json:"type"`
	EmployeeEmail  string `json:"employeeEmail"`
	CourseCode     string `json:"courseCode"`
	CourseTitle    string `json:"courseTitle,omitempty"`
	InternalStatus string `json:"internalStatus,omitempty"`
	HRMSStatus     string `json:"hrmsStatus,omitempty"`
}

type Report struct {
	GeneratedAt   time.Time     `json:"generatedAt"`
	Status        string        `json:"status"`
	InternalCount int           `json:"internalCount"`
	HRMSCount     int           `json:"hrmsCount"`
	MatchedCount  int           `json:"matchedCount"`
	Discrepancies []Discrepancy `json:"discrepancies"`
}

// Fetcher pulls assignment allocations from the external HR system.
type Fetcher interface {
	FetchAssignments(ctx context.Context, tenantID string) ([]HRMSRecord, error)
}
