package reports

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"skillboard/internal/domain/courses"
	"skillboard/internal/domain/levelmove"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) EmployeeIDByUserID(ctx context.Context, tenantID, userID string) (string, error) {
	var employeeID string
	err := s.DB.QueryRow(ctx, "SELECT id FROM employees WHERE tenant_id = $1 AND user_id = $2", tenantID, userID).Scan(&employeeID)
	if err != nil {
		return "", err
	}
	return employeeID, nil
}

func (s *Store) AssessedSkillCount(ctx context.Context, tenantID, employeeID string) (int, error) {
	var count int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM employee_skills WHERE tenant_id = $1 AND employee_id = $2", tenantID, employeeID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (s *Store) OpenAssignmentCount(ctx context.Context, tenantID, employeeID string) (int, error) {
	var count int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM course_assignments WHERE tenant_id = $1 AND employee_id = $2 AND status <> $3", tenantID, employeeID, courses.StatusCompleted).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (s *Store) OpenMovementCount(ctx context.Context, tenantID, employeeID string) (int, error) {
	var count int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM level_movement_requests WHERE tenant_id = $1 AND employee_id = $2 AND status NOT IN ($3,$4)", tenantID, employeeID, levelmove.StatusHRApproved, levelmove.StatusRejected).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (s *Store) TeamSize(ctx context.Context, tenantID, managerEmployeeID string) (int, error) {
	var count int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM employees WHERE tenant_id = $1 AND manager_id = $2", tenantID, managerEmployeeID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (s *Store) PendingTeamApprovals(ctx context.Context, tenantID, managerEmployeeID string) (int, error) {
	var count int
	if err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1)
    FROM level_movement_requests r
    JOIN employees e ON r.employee_id = e.id
    WHERE r.tenant_id = $1 AND r.status = $2 AND e.manager_id = $3
  `, tenantID, levelmove.StatusPending, managerEmployeeID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (s *Store) EmployeeCount(ctx context.Context, tenantID string) (int, error) {
	var count int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM employees WHERE tenant_id = $1", tenantID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (s *Store) OpenMovementTotal(ctx context.Context, tenantID string) (int, error) {
	var count int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM level_movement_requests WHERE tenant_id = $1 AND status NOT IN ($2,$3)", tenantID, levelmove.StatusHRApproved, levelmove.StatusRejected).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (s *Store) OverdueAssignmentTotal(ctx context.Context, tenantID string, now time.Time) (int, error) {
	var count int
	if err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1)
    FROM course_assignments
    WHERE tenant_id = $1 AND status <> $2 AND due_date IS NOT NULL AND due_date < $3
  `, tenantID, courses.StatusCompleted, now).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (s *Store) CompletionRate(ctx context.Context, tenantID string) (float64, error) {
	var total, completed int
	if err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1), COUNT(1) FILTER (WHERE status = $2)
    FROM course_assignments
    WHERE tenant_id = $1
  `, tenantID, courses.StatusCompleted).Scan(&total, &completed); err != nil {
		return 0, err
	}
	if total == 0 {
		return 0, nil
	}
	return float64(completed) / float64(total), nil
}

type JobRunFilter struct {
	JobType     string
	Status      string
	StartedFrom *time.Time
	StartedTo   *time.Time
}

func (s *Store) ListJobRuns(ctx context.Context, tenantID string, filter JobRunFilter, limit, offset int) ([]map[string]any, error) {
	query, args := buildJobRunsBaseQuery(tenantID, filter)
	query += " ORDER BY started_at DESC LIMIT $" + strconv.Itoa(len(args)+1) + " OFFSET $" + strconv.Itoa(len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []map[string]any
	for rows.Next() {
		var id, jobTypeVal, status string
		var detailsRaw []byte
		var startedAt time.Time
		var completedAt *time.Time
		if err := rows.Scan(&id, &jobTypeVal, &status, &detailsRaw, &startedAt, &completedAt); err != nil {
			return nil, err
		}
		runs = append(runs, map[string]any{
			"id":          id,
			"jobType":     jobTypeVal,
			"status":      status,
			"details":     decodeDetails(detailsRaw),
			"startedAt":   startedAt,
			"completedAt": completedAt,
		})
	}
	return runs, nil
}

func (s *Store) GetJobRun(ctx context.Context, tenantID, runID string) (map[string]any, error) {
	var id, jobTypeVal, status string
	var detailsRaw []byte
	var startedAt time.Time
	var completedAt *time.Time
	err := s.DB.QueryRow(ctx, `
    SELECT id, job_type, status, COALESCE(details_json, '{}'::jsonb), started_at, completed_at
    FROM job_runs
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, runID).Scan(&id, &jobTypeVal, &status, &detailsRaw, &startedAt, &completedAt)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"id":          id,
		"jobType":     jobTypeVal,
		"status":      status,
		"details":     decodeDetails(detailsRaw),
		"startedAt":   startedAt,
		"completedAt": completedAt,
	}, nil
}

func (s *Store) CountJobRuns(ctx context.Context, tenantID string, filter JobRunFilter) (int, error) {
	query, args := buildJobRunsBaseQuery(tenantID, filter)
	var total int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM ("+query+") job_runs", args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func buildJobRunsBaseQuery(tenantID string, filter JobRunFilter) (string, []any) {
	query := `
    SELECT id, job_type, status, COALESCE(details_json, '{}'::jsonb), started_at, completed_at
    FROM job_runs
    WHERE tenant_id = $1
  `
	args := []any{tenantID}

	if value := strings.TrimSpace(filter.JobType); value != "" {
		query += " AND job_type = $" + strconv.Itoa(len(args)+1)
		args = append(args, value)
	}
	if value := strings.TrimSpace(filter.Status); value != "" {
		query += " AND status = $" + strconv.Itoa(len(args)+1)
		args = append(args, value)
	}
	if filter.StartedFrom != nil && !filter.StartedFrom.IsZero() {
		query += " AND started_at >= $" + strconv.Itoa(len(args)+1)
		args = append(args, *filter.StartedFrom)
	}
	if filter.StartedTo != nil && !filter.StartedTo.IsZero() {
		query += " AND started_at <= $" + strconv.Itoa(len(args)+1)
		args = append(args, *filter.StartedTo)
	}

	return query, args
}

func decodeDetails(raw []byte) map[string]any {
	if len(raw) == 0 {
		return map[string]any{}
	}
	details := map[string]any{}
	if err := json.Unmarshal(raw, &details); err != nil {
		return map[string]any{
			"raw": string(raw),
		}
	}
	return details
}
