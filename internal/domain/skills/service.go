package skills

import (
	"context"
	"errors"
	"fmt"
)

var ErrInvalidRating = errors.New("rating is not on the proficiency scale")

type Service struct {
	store StoreAPI
}

func NewService(store StoreAPI) *Service {
	return &Service{store: store}
}

func (s *Service) ListCatalog(ctx context.Context, tenantID string) ([]CatalogSkill, error) {
	return s.store.ListCatalog(ctx, tenantID)
}

func (s *Service) CreateSkill(ctx context.Context, tenantID, name, category string) (string, error) {
	return s.store.CreateSkill(ctx, tenantID, name, category)
}

func (s *Service) ListEmployeeSkills(ctx context.Context, tenantID, employeeID string) ([]EmployeeSkill, error) {
	return s.store.ListEmployeeSkills(ctx, tenantID, employeeID)
}

func (s *Service) RateSkill(ctx context.Context, tenantID, employeeID, skillID string, rating Rating) error {
	if !rating.Known() {
		return ErrInvalidRating
	}
	return s.store.UpsertEmployeeSkill(ctx, tenantID, employeeID, skillID, rating)
}

// GapsForBand computes the employee's skill gaps against a band's
// requirement set. Requirements with off-scale ratings are excluded.
func (s *Service) GapsForBand(ctx context.Context, tenantID, employeeID, bandID string) ([]SkillGap, error) {
	requirements, err := s.store.BandRequirements(ctx, tenantID, bandID)
	if err != nil {
		return nil, fmt.Errorf("load band requirements: %w", err)
	}
	ratings, err := s.store.EmployeeRatings(ctx, tenantID, employeeID)
	if err != nil {
		return nil, fmt.Errorf("load employee ratings: %w", err)
	}
	return BuildGaps(ratings, requirements), nil
}

func (s *Service) BandAnalysis(ctx context.Context, tenantID, employeeID, bandID string) (BandAnalysis, error) {
	gaps, err := s.GapsForBand(ctx, tenantID, employeeID, bandID)
	if err != nil {
		return BandAnalysis{}, err
	}
	analysis := Aggregate(gaps)
	analysis.BandID = bandID
	if name, err := s.store.BandName(ctx, tenantID, bandID); err == nil {
		analysis.BandName = name
	}
	return analysis, nil
}

func (s *Service) CategoryBreakdown(ctx context.Context, tenantID, employeeID, bandID string) ([]CategorySummary, error) {
	gaps, err := s.GapsForBand(ctx, tenantID, employeeID, bandID)
	if err != nil {
		return nil, err
	}
	return AggregateByCategory(gaps), nil
}
