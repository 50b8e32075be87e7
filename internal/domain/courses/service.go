package courses

import (
	"context"
	"time"
)

type Service struct {
	store               *Store
	allowDirectComplete bool
}

func NewService(store *Store, allowDirectComplete bool) *Service {
	return &Service{store: store, allowDirectComplete: allowDirectComplete}
}

func (s *Service) ListCourses(ctx context.Context, tenantID string) ([]Course, error) {
	return s.store.ListCourses(ctx, tenantID)
}

func (s *Service) CreateCourse(ctx context.Context, tenantID string, c Course) (string, error) {
	return s.store.CreateCourse(ctx, tenantID, c)
}

// Assign creates a fresh assignment unless the employee already has the
// course open.
func (s *Service) Assign(ctx context.Context, tenantID string, a Assignment) (*Assignment, error) {
	active, err := s.store.HasActiveAssignment(ctx, tenantID, a.EmployeeID, a.CourseID)
	if err != nil {
		return nil, err
	}
	if active {
		return nil, ErrAlreadyAssigned
	}
	id, err := s.store.CreateAssignment(ctx, tenantID, a)
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, tenantID, id)
}

func (s *Service) Get(ctx context.Context, tenantID, assignmentID string) (*Assignment, error) {
	a, err := s.store.GetAssignment(ctx, tenantID, assignmentID)
	if err != nil {
		return nil, err
	}
	a.Overdue = IsOverdue(*a, time.Now())
	return a, nil
}

func (s *Service) ListByEmployee(ctx context.Context, tenantID, employeeID string) ([]Assignment, error) {
	return s.markOverdue(s.store.ListByEmployee(ctx, tenantID, employeeID))
}

func (s *Service) ListByCourse(ctx context.Context, tenantID, courseID string) ([]Assignment, error) {
	return s.markOverdue(s.store.ListByCourse(ctx, tenantID, courseID))
}

func (s *Service) ListAll(ctx context.Context, tenantID string) ([]Assignment, error) {
	return s.markOverdue(s.store.ListAll(ctx, tenantID))
}

// Progress applies a lifecycle transition and persists the result.
func (s *Service) Progress(ctx context.Context, tenantID, assignmentID string, next Status, certificateURL string) (*Assignment, error) {
	a, err := s.store.GetAssignment(ctx, tenantID, assignmentID)
	if err != nil {
		return nil, err
	}
	if err := Transition(a, next, certificateURL, time.Now().UTC(), s.allowDirectComplete); err != nil {
		return nil, err
	}
	if err := s.store.UpdateProgress(ctx, tenantID, a); err != nil {
		return nil, err
	}
	return s.Get(ctx, tenantID, assignmentID)
}

func (s *Service) markOverdue(list []Assignment, err error) ([]Assignment, error) {
	if err != nil {
		return nil, err
	}
	now := time.Now()
	for i := range list {
		list[i].Overdue = IsOverdue(list[i], now)
	}
	return list, nil
}
