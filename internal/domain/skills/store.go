package skills

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) ListCatalog(ctx context.Context, tenantID string) ([]CatalogSkill, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, name, category, created_at
    FROM skills
    WHERE tenant_id = $1
    ORDER BY category, name
  `, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CatalogSkill
	for rows.Next() {
		var skill CatalogSkill
		if err := rows.Scan(&skill.ID, &skill.Name, &skill.Category, &skill.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, skill)
	}
	return out, nil
}

func (s *Store) CreateSkill(ctx context.Context, tenantID, name, category string) (string, error) {
	var id string
	if err := s.DB.QueryRow(ctx, `
    INSERT INTO skills (tenant_id, name, category)
    VALUES ($1,$2,$3)
    RETURNING id
  `, tenantID, name, category).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) EmployeeRatings(ctx context.Context, tenantID, employeeID string) (map[string]Rating, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT skill_id, rating
    FROM employee_skills
    WHERE tenant_id = $1 AND employee_id = $2
  `, tenantID, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ratings := map[string]Rating{}
	for rows.Next() {
		var skillID, rating string
		if err := rows.Scan(&skillID, &rating); err != nil {
			return nil, err
		}
		ratings[skillID] = Rating(rating)
	}
	return ratings, nil
}

func (s *Store) ListEmployeeSkills(ctx context.Context, tenantID, employeeID string) ([]EmployeeSkill, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT es.skill_id, sk.name, sk.category, es.rating, es.assessed_at
    FROM employee_skills es
    JOIN skills sk ON es.skill_id = sk.id
    WHERE es.tenant_id = $1 AND es.employee_id = $2
    ORDER BY sk.category, sk.name
  `, tenantID, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EmployeeSkill
	for rows.Next() {
		var skill EmployeeSkill
		var rating string
		if err := rows.Scan(&skill.SkillID, &skill.SkillName, &skill.Category, &rating, &skill.AssessedAt); err != nil {
			return nil, err
		}
		skill.Rating = Rating(rating)
		out = append(out, skill)
	}
	return out, nil
}

func (s *Store) UpsertEmployeeSkill(ctx context.Context, tenantID, employeeID, skillID string, rating Rating) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO employee_skills (tenant_id, employee_id, skill_id, rating, assessed_at)
    VALUES ($1,$2,$3,$4,now())
    ON CONFLICT (employee_id, skill_id)
    DO UPDATE SET rating = EXCLUDED.rating, assessed_at = now()
  `, tenantID, employeeID, skillID, string(rating))
	return err
}

func (s *Store) BandRequirements(ctx context.Context, tenantID, bandID string) ([]Requirement, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT br.skill_id, sk.name, sk.category, br.required_rating
    FROM band_skill_requirements br
    JOIN skills sk ON br.skill_id = sk.id
    WHERE br.tenant_id = $1 AND br.band_id = $2
    ORDER BY sk.category, sk.name
  `, tenantID, bandID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Requirement
	for rows.Next() {
		var req Requirement
		var required string
		if err := rows.Scan(&req.SkillID, &req.SkillName, &req.Category, &required); err != nil {
			return nil, err
		}
		req.Required = Rating(required)
		out = append(out, req)
	}
	return out, nil
}

func (s *Store) BandName(ctx context.Context, tenantID, bandID string) (string, error) {
	var name string
	if err := s.DB.QueryRow(ctx, "SELECT name FROM bands WHERE tenant_id = $1 AND id = $2", tenantID, bandID).Scan(&name); err != nil {
		return "", err
	}
	return name, nil
}
