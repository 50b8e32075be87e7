package courses

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) ListCourses(ctx context.Context, tenantID string) ([]Course, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, code, title, COALESCE(provider, ''), COALESCE(category, ''),
           COALESCE(duration_hours, 0), COALESCE(skill_id::text, ''), created_at
    FROM courses
    WHERE tenant_id = $1
    ORDER BY title
  `, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Course
	for rows.Next() {
		var c Course
		if err := rows.Scan(&c.ID, &c.Code, &c.Title, &c.Provider, &c.Category, &c.DurationHours, &c.SkillID, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) CreateCourse(ctx context.Context, tenantID string, c Course) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO courses (tenant_id, code, title, provider, category, duration_hours, skill_id)
    VALUES ($1,$2,$3,$4,$5,$6,$7)
    RETURNING id
  `, tenantID, c.Code, c.Title, c.Provider, c.Category, c.DurationHours, nullIfEmpty(c.SkillID)).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

const assignmentColumns = `
    a.id, a.employee_id,
    COALESCE(e.first_name || ' ' || e.last_name, ''),
    a.course_id, c.code, c.title,
    a.status, COALESCE(a.assigned_by::text, ''), a.assigned_at,
    a.due_date, a.started_at, a.completed_at, COALESCE(a.certificate_url, '')`

const assignmentJoins = `
    FROM course_assignments a
    JOIN employees e ON a.employee_id = e.id
    JOIN courses c ON a.course_id = c.id`

func scanAssignment(row pgx.Row) (*Assignment, error) {
	var a Assignment
	if err := row.Scan(
		&a.ID, &a.EmployeeID, &a.EmployeeName, &a.CourseID, &a.CourseCode, &a.CourseTitle,
		&a.Status, &a.AssignedBy, &a.AssignedAt,
		&a.DueDate, &a.StartedAt, &a.CompletedAt, &a.CertificateURL,
	); err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Store) HasActiveAssignment(ctx context.Context, tenantID, employeeID, courseID string) (bool, error) {
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1)
    FROM course_assignments
    WHERE tenant_id = $1 AND employee_id = $2 AND course_id = $3 AND status <> $4
  `, tenantID, employeeID, courseID, StatusCompleted).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) CreateAssignment(ctx context.Context, tenantID string, a Assignment) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO course_assignments (tenant_id, employee_id, course_id, status, assigned_by, due_date)
    VALUES ($1,$2,$3,$4,$5,$6)
    RETURNING id
  `, tenantID, a.EmployeeID, a.CourseID, StatusNotStarted, nullIfEmpty(a.AssignedBy), a.DueDate).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) GetAssignment(ctx context.Context, tenantID, assignmentID string) (*Assignment, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT`+assignmentColumns+assignmentJoins+`
    WHERE a.tenant_id = $1 AND a.id = $2
  `, tenantID, assignmentID)
	a, err := scanAssignment(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return a, err
}

func (s *Store) ListByEmployee(ctx context.Context, tenantID, employeeID string) ([]Assignment, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT`+assignmentColumns+assignmentJoins+`
    WHERE a.tenant_id = $1 AND a.employee_id = $2
    ORDER BY a.assigned_at DESC
  `, tenantID, employeeID)
	if err != nil {
		return nil, err
	}
	return collectAssignments(rows)
}

func (s *Store) ListByCourse(ctx context.Context, tenantID, courseID string) ([]Assignment, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT`+assignmentColumns+assignmentJoins+`
    WHERE a.tenant_id = $1 AND a.course_id = $2
    ORDER BY a.assigned_at DESC
  `, tenantID, courseID)
	if err != nil {
		return nil, err
	}
	return collectAssignments(rows)
}

func (s *Store) ListAll(ctx context.Context, tenantID string) ([]Assignment, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT`+assignmentColumns+assignmentJoins+`
    WHERE a.tenant_id = $1
    ORDER BY a.assigned_at DESC
  `, tenantID)
	if err != nil {
		return nil, err
	}
	return collectAssignments(rows)
}

func (s *Store) UpdateProgress(ctx context.Context, tenantID string, a *Assignment) error {
	cmd, err := s.DB.Exec(ctx, `
    UPDATE course_assignments
    SET status = $1, started_at = $2, completed_at = $3, certificate_url = $4
    WHERE tenant_id = $5 AND id = $6
  `, a.Status, a.StartedAt, a.CompletedAt, nullIfEmpty(a.CertificateURL), tenantID, a.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func collectAssignments(rows pgx.Rows) ([]Assignment, error) {
	defer rows.Close()
	var out []Assignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}

// OverdueSweepResult describes one assignment flagged by the sweep job.
type OverdueSweepResult struct {
	AssignmentID string     `json:"assignmentId"`
	EmployeeID   string     `json:"employeeId"`
	UserID       string     `json:"userId"`
	CourseTitle  string     `json:"courseTitle"`
	DueDate      *time.Time `json:"dueDate"`
}

// SweepOverdue flags past-due open assignments exactly once per assignment
// so the scheduler can notify without spamming on every tick.
func SweepOverdue(ctx context.Context, db *pgxpool.Pool, tenantID string, now time.Time) ([]OverdueSweepResult, error) {
	rows, err := db.Query(ctx, `
    UPDATE course_assignments a
    SET overdue_flagged_at = $2
    FROM employees e, courses c
    WHERE a.tenant_id = $1
      AND e.id = a.employee_id
      AND c.id = a.course_id
      AND a.status <> 'completed'
      AND a.due_date IS NOT NULL
      AND a.due_date < $2
      AND a.overdue_flagged_at IS NULL
    RETURNING a.id, a.employee_id, COALESCE(e.user_id::text, ''), c.title, a.due_date
  `, tenantID, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []OverdueSweepResult
	for rows.Next() {
		var r OverdueSweepResult
		if err := rows.Scan(&r.AssignmentID, &r.EmployeeID, &r.UserID, &r.CourseTitle, &r.DueDate); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
