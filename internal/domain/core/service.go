package core

import "context"

type Service struct {
	store *Store
}

func NewService(store *Store) *Service {
	return &Service{store: store}
}

func (s *Service) GetEmployee(ctx context.Context, tenantID, employeeID string) (*Employee, error) {
	return s.store.GetEmployee(ctx, tenantID, employeeID)
}

func (s *Service) GetEmployeeByUserID(ctx context.Context, tenantID, userID string) (*Employee, error) {
	return s.store.GetEmployeeByUserID(ctx, tenantID, userID)
}

func (s *Service) ListEmployees(ctx context.Context, tenantID string, filter EmployeeFilter) ([]Employee, error) {
	return s.store.ListEmployees(ctx, tenantID, filter)
}

func (s *Service) CreateEmployee(ctx context.Context, tenantID string, emp Employee) (string, error) {
	return s.store.CreateEmployee(ctx, tenantID, emp)
}

func (s *Service) CreateEmployeeWithUser(ctx context.Context, tenantID string, emp Employee, roleName, password string) (string, string, error) {
	return s.store.CreateEmployeeWithUser(ctx, tenantID, emp, roleName, password)
}

func (s *Service) UpdateEmployee(ctx context.Context, tenantID, employeeID string, emp Employee) error {
	return s.store.UpdateEmployee(ctx, tenantID, employeeID, emp)
}

func (s *Service) IsManagerOf(ctx context.Context, tenantID, managerEmployeeID, employeeID string) (bool, error) {
	return s.store.IsManagerOf(ctx, tenantID, managerEmployeeID, employeeID)
}

func (s *Service) EmployeeIDByUserID(ctx context.Context, tenantID, userID string) (string, error) {
	return s.store.EmployeeIDByUserID(ctx, tenantID, userID)
}

func (s *Service) UserIDByEmployeeID(ctx context.Context, tenantID, employeeID string) (string, error) {
	return s.store.UserIDByEmployeeID(ctx, tenantID, employeeID)
}

func (s *Service) ListBands(ctx context.Context, tenantID string) ([]Band, error) {
	return s.store.ListBands(ctx, tenantID)
}

func (s *Service) GetBand(ctx context.Context, tenantID, bandID string) (*Band, error) {
	return s.store.GetBand(ctx, tenantID, bandID)
}

func (s *Service) NextBand(ctx context.Context, tenantID, bandID string) (*Band, error) {
	return s.store.NextBand(ctx, tenantID, bandID)
}

func (s *Service) CreateBand(ctx context.Context, tenantID string, band Band) (string, error) {
	return s.store.CreateBand(ctx, tenantID, band)
}

func (s *Service) UpdateBand(ctx context.Context, tenantID, bandID string, band Band) error {
	return s.store.UpdateBand(ctx, tenantID, bandID, band)
}

func (s *Service) ReplaceBandRequirements(ctx context.Context, tenantID, bandID string, reqs []BandRequirement) error {
	return s.store.ReplaceBandRequirements(ctx, tenantID, bandID, reqs)
}

func (s *Service) ListCapabilities(ctx context.Context, tenantID string) ([]Capability, error) {
	return s.store.ListCapabilities(ctx, tenantID)
}

func (s *Service) CreateCapability(ctx context.Context, tenantID string, cap Capability) (string, error) {
	return s.store.CreateCapability(ctx, tenantID, cap)
}
