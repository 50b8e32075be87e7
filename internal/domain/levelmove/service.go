package levelmove

import (
	"context"
	"time"
)

type Service struct {
	store *Store
}

func NewService(store *Store) *Service {
	return &Service{store: store}
}

type SubmitInput struct {
	EmployeeID     string
	CurrentBandID  string
	TargetBandID   string
	Justification  string
	ReadinessScore int
}

// Submit opens a new movement request. One open request per employee; the
// readiness score is frozen at submission time.
func (s *Service) Submit(ctx context.Context, tenantID string, in SubmitInput) (*Request, error) {
	open, err := s.store.HasOpenRequest(ctx, tenantID, in.EmployeeID)
	if err != nil {
		return nil, err
	}
	if open {
		return nil, ErrAlreadyOpen
	}

	req := Request{
		EmployeeID:     in.EmployeeID,
		CurrentBandID:  in.CurrentBandID,
		TargetBandID:   in.TargetBandID,
		Status:         StatusPending,
		Justification:  in.Justification,
		ReadinessScore: in.ReadinessScore,
	}
	id, err := s.store.Create(ctx, tenantID, req)
	if err != nil {
		return nil, err
	}
	return s.store.Get(ctx, tenantID, id)
}

func (s *Service) Get(ctx context.Context, tenantID, requestID string) (*Request, error) {
	return s.store.Get(ctx, tenantID, requestID)
}

func (s *Service) ListByEmployee(ctx context.Context, tenantID, employeeID string) ([]Request, error) {
	return s.store.ListByEmployee(ctx, tenantID, employeeID)
}

func (s *Service) ListAwaitingRole(ctx context.Context, tenantID, role, managerEmployeeID string) ([]Request, error) {
	return s.store.ListAwaitingRole(ctx, tenantID, role, managerEmployeeID)
}

func (s *Service) ListAll(ctx context.Context, tenantID string) ([]Request, error) {
	return s.store.ListAll(ctx, tenantID)
}

func (s *Service) Approve(ctx context.Context, tenantID, requestID, actorID, actorRole, comments string) (*Request, error) {
	return s.decide(ctx, tenantID, requestID, actorID, actorRole, comments, Approve)
}

func (s *Service) Reject(ctx context.Context, tenantID, requestID, actorID, actorRole, comments string) (*Request, error) {
	return s.decide(ctx, tenantID, requestID, actorID, actorRole, comments, Reject)
}

func (s *Service) decide(ctx context.Context, tenantID, requestID, actorID, actorRole, comments string, apply func(*Request, string, string, string, time.Time) error) (*Request, error) {
	req, err := s.store.Get(ctx, tenantID, requestID)
	if err != nil {
		return nil, err
	}

	prior := req.Status
	now := time.Now().UTC()
	if err := apply(req, actorID, actorRole, comments, now); err != nil {
		return nil, err
	}

	approval := req.Approvals[len(req.Approvals)-1]
	if err := s.store.ApplyDecision(ctx, tenantID, requestID, prior, req.Status, req, approval); err != nil {
		return nil, err
	}
	return s.store.Get(ctx, tenantID, requestID)
}
