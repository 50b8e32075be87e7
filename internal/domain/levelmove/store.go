package levelmove

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"skillboard/internal/domain/auth"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const requestColumns = `
    r.id, r.employee_id,
    COALESCE(e.first_name || ' ' || e.last_name, ''),
    r.current_band_id, COALESCE(cb.name, ''),
    r.target_band_id, COALESCE(tb.name, ''),
    r.status, COALESCE(r.justification, ''), r.readiness_score,
    r.submitted_at, r.decided_at`

const requestJoins = `
    FROM level_movement_requests r
    JOIN employees e ON r.employee_id = e.id
    LEFT JOIN bands cb ON r.current_band_id = cb.id
    LEFT JOIN bands tb ON r.target_band_id = tb.id`

func scanRequest(row pgx.Row) (*Request, error) {
	var req Request
	if err := row.Scan(
		&req.ID, &req.EmployeeID, &req.EmployeeName,
		&req.CurrentBandID, &req.CurrentBandName,
		&req.TargetBandID, &req.TargetBandName,
		&req.Status, &req.Justification, &req.ReadinessScore,
		&req.SubmittedAt, &req.DecidedAt,
	); err != nil {
		return nil, err
	}
	return &req, nil
}

func (s *Store) Create(ctx context.Context, tenantID string, req Request) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO level_movement_requests
      (tenant_id, employee_id, current_band_id, target_band_id, status, justification, readiness_score)
    VALUES ($1,$2,$3,$4,$5,$6,$7)
    RETURNING id
  `, tenantID, req.EmployeeID, req.CurrentBandID, req.TargetBandID, req.Status, req.Justification, req.ReadinessScore).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) Get(ctx context.Context, tenantID, requestID string) (*Request, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT`+requestColumns+requestJoins+`
    WHERE r.tenant_id = $1 AND r.id = $2
  `, tenantID, requestID)
	req, err := scanRequest(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	approvals, err := s.listApprovals(ctx, requestID)
	if err != nil {
		return nil, err
	}
	req.Approvals = approvals
	return req, nil
}

func (s *Store) HasOpenRequest(ctx context.Context, tenantID, employeeID string) (bool, error) {
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1)
    FROM level_movement_requests
    WHERE tenant_id = $1 AND employee_id = $2 AND status NOT IN ($3, $4)
  `, tenantID, employeeID, StatusHRApproved, StatusRejected).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) ListByEmployee(ctx context.Context, tenantID, employeeID string) ([]Request, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT`+requestColumns+requestJoins+`
    WHERE r.tenant_id = $1 AND r.employee_id = $2
    ORDER BY r.submitted_at DESC
  `, tenantID, employeeID)
	if err != nil {
		return nil, err
	}
	return collectRequests(rows)
}

// ListAwaitingRole returns every request parked at the stage the given role
// decides. Managers additionally get scoped to their direct reports.
func (s *Store) ListAwaitingRole(ctx context.Context, tenantID, role, managerEmployeeID string) ([]Request, error) {
	var status Status
	switch role {
	case auth.RoleManager:
		status = StatusPending
	case auth.RoleCapabilityPartner:
		status = StatusManagerApproved
	case auth.RoleHR:
		status = StatusCPApproved
	default:
		return nil, nil
	}

	query := `
    SELECT` + requestColumns + requestJoins + `
    WHERE r.tenant_id = $1 AND r.status = $2`
	args := []any{tenantID, status}
	if role == auth.RoleManager {
		args = append(args, managerEmployeeID)
		query += ` AND e.manager_id = $3`
	}
	query += `
    ORDER BY r.submitted_at`

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectRequests(rows)
}

func (s *Store) ListAll(ctx context.Context, tenantID string) ([]Request, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT`+requestColumns+requestJoins+`
    WHERE r.tenant_id = $1
    ORDER BY r.submitted_at DESC
  `, tenantID)
	if err != nil {
		return nil, err
	}
	return collectRequests(rows)
}

// ApplyDecision persists the new status and the approval record together so
// the history never drifts from the state column. The update only lands if
// the request is still in the status the caller read, so two racing
// decisions cannot both commit.
func (s *Store) ApplyDecision(ctx context.Context, tenantID, requestID string, prior, status Status, decided *Request, approval Approval) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	cmd, err := tx.Exec(ctx, `
    UPDATE level_movement_requests
    SET status = $1, decided_at = $2
    WHERE tenant_id = $3 AND id = $4 AND status = $5
  `, status, decided.DecidedAt, tenantID, requestID, prior)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		// The caller read the request just before, so a missed update
		// means another decision landed first.
		return ErrTerminalState
	}

	if _, err := tx.Exec(ctx, `
    INSERT INTO level_movement_approvals (tenant_id, request_id, actor_id, role, decision, comments, created_at)
    VALUES ($1,$2,$3,$4,$5,$6,$7)
  `, tenantID, requestID, approval.ActorID, approval.Role, approval.Decision, approval.Comments, approval.Timestamp); err != nil {
		return err
	}

	// A fully approved request moves the employee onto the target band.
	if status == StatusHRApproved {
		if _, err := tx.Exec(ctx, `
      UPDATE employees SET band_id = $1, updated_at = now()
      WHERE tenant_id = $2 AND id = $3
    `, decided.TargetBandID, tenantID, decided.EmployeeID); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (s *Store) listApprovals(ctx context.Context, requestID string) ([]Approval, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT a.id, a.actor_id,
           COALESCE(e.first_name || ' ' || e.last_name, ''),
           a.role, a.decision, COALESCE(a.comments, ''), a.created_at
    FROM level_movement_approvals a
    LEFT JOIN users u ON a.actor_id = u.id
    LEFT JOIN employees e ON e.user_id = u.id
    WHERE a.request_id = $1
    ORDER BY a.created_at
  `, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Approval
	for rows.Next() {
		var a Approval
		if err := rows.Scan(&a.ID, &a.ActorID, &a.ActorName, &a.Role, &a.Decision, &a.Comments, &a.Timestamp); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func collectRequests(rows pgx.Rows) ([]Request, error) {
	defer rows.Close()
	var out []Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *req)
	}
	return out, rows.Err()
}
