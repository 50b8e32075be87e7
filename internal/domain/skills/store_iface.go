package skills

import "context"

type StoreAPI interface {
	ListCatalog(ctx context.Context, tenantID string) ([]CatalogSkill, error)
	CreateSkill(ctx context.Context, tenantID, name, category string) (string, error)
	EmployeeRatings(ctx context.Context, tenantID, employeeID string) (map[string]Rating, error)
	ListEmployeeSkills(ctx context.Context, tenantID, employeeID string) ([]EmployeeSkill, error)
	UpsertEmployeeSkill(ctx context.Context, tenantID, employeeID, skillID string, rating Rating) error
	BandRequirements(ctx context.Context, tenantID, bandID string) ([]Requirement, error)
	BandName(ctx context.Context, tenantID, bandID string) (string, error)
}
