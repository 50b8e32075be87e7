package reports

import (
	"context"
	"time"
)

type Service struct {
	Store *Store
}

func NewService(store *Store) *Service {
	return &Service{Store: store}
}

// EmployeeDashboard summarises the caller's own skills, learning, and
// movement activity.
func (s *Service) EmployeeDashboard(ctx context.Context, tenantID, employeeID string) (map[string]any, error) {
	assessed, err := s.Store.AssessedSkillCount(ctx, tenantID, employeeID)
	if err != nil {
		return nil, err
	}
	openAssignments, err := s.Store.OpenAssignmentCount(ctx, tenantID, employeeID)
	if err != nil {
		return nil, err
	}
	openMovements, err := s.Store.OpenMovementCount(ctx, tenantID, employeeID)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"assessedSkills":  assessed,
		"openAssignments": openAssignments,
		"openMovements":   openMovements,
	}, nil
}

func (s *Service) ManagerDashboard(ctx context.Context, tenantID, managerEmployeeID string) (map[string]any, error) {
	teamSize, err := s.Store.TeamSize(ctx, tenantID, managerEmployeeID)
	if err != nil {
		return nil, err
	}
	pending, err := s.Store.PendingTeamApprovals(ctx, tenantID, managerEmployeeID)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"teamSize":         teamSize,
		"pendingApprovals": pending,
	}, nil
}

func (s *Service) HRDashboard(ctx context.Context, tenantID string) (map[string]any, error) {
	employees, err := s.Store.EmployeeCount(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	openMovements, err := s.Store.OpenMovementTotal(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	overdue, err := s.Store.OverdueAssignmentTotal(ctx, tenantID, time.Now())
	if err != nil {
		return nil, err
	}
	completionRate, err := s.Store.CompletionRate(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"employees":      employees,
		"openMovements":  openMovements,
		"overdueCourses": overdue,
		"completionRate": completionRate,
	}, nil
}

func (s *Service) EmployeeIDByUserID(ctx context.Context, tenantID, userID string) (string, error) {
	return s.Store.EmployeeIDByUserID(ctx, tenantID, userID)
}

func (s *Service) JobRuns(ctx context.Context, tenantID string, filter JobRunFilter, limit, offset int) ([]map[string]any, error) {
	return s.Store.ListJobRuns(ctx, tenantID, filter, limit, offset)
}

func (s *Service) GetJobRun(ctx context.Context, tenantID, runID string) (map[string]any, error) {
	return s.Store.GetJobRun(ctx, tenantID, runID)
}

func (s *Service) CountJobRuns(ctx context.Context, tenantID string, filter JobRunFilter) (int, error) {
	return s.Store.CountJobRuns(ctx, tenantID, filter)
}
