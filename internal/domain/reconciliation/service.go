package reconciliation

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNeverSynced       = errors.New("no HRMS snapshot has been synced yet")
	ErrHRMSNotConfigured = errors.New("no HRMS endpoint is configured")
)

type Service struct {
	DB      *pgxpool.Pool
	Fetcher Fetcher
}

func NewService(db *pgxpool.Pool, fetcher Fetcher) *Service {
	return &Service{DB: db, Fetcher: fetcher}
}

// BuildReport reconciles our assignment book against the last synced HRMS
// snapshot.
func (s *Service) BuildReport(ctx context.Context, tenantID string) (*Report, error) {
	if _, err := s.LastSyncedAt(ctx, tenantID); err != nil {
		return nil, err
	}
	internal, err := s.internalRecords(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	external, err := s.snapshotRecords(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	report := Compare(internal, external, time.Now().UTC())
	return &report, nil
}

// Sync refreshes the HRMS mirror table from the external system. Deployments
// without an HRMS endpoint still serve reports from the existing mirror.
func (s *Service) Sync(ctx context.Context, tenantID string) (map[string]any, error) {
	if s.Fetcher == nil {
		return nil, ErrHRMSNotConfigured
	}
	return SyncFromHRMS(ctx, s.DB, s.Fetcher, tenantID)
}

func (s *Service) LastSyncedAt(ctx context.Context, tenantID string) (time.Time, error) {
	var at *time.Time
	err := s.DB.QueryRow(ctx, `
    SELECT MAX(synced_at) FROM hrms_assignments WHERE tenant_id = $1
  `, tenantID).Scan(&at)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return time.Time{}, err
	}
	if at == nil {
		return time.Time{}, ErrNeverSynced
	}
	return *at, nil
}

func (s *Service) internalRecords(ctx context.Context, tenantID string) ([]InternalRecord, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT e.email, e.first_name || ' ' || e.last_name, c.code, c.title, a.status
    FROM course_assignments a
    JOIN employees e ON a.employee_id = e.id
    JOIN courses c ON a.course_id = c.id
    WHERE a.tenant_id = $1
  `, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []InternalRecord
	for rows.Next() {
		var rec InternalRecord
		if err := rows.Scan(&rec.EmployeeEmail, &rec.EmployeeName, &rec.CourseCode, &rec.CourseTitle, &rec.Status); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *Service) snapshotRecords(ctx context.Context, tenantID string) ([]HRMSRecord, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT employee_email, course_code, COALESCE(course_title, ''), status
    FROM hrms_assignments
    WHERE tenant_id = $1
  `, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []HRMSRecord
	for rows.Next() {
		var rec HRMSRecord
		if err := rows.Scan(&rec.EmployeeEmail, &rec.CourseCode, &rec.CourseTitle, &rec.Status); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// SyncFromHRMS replaces the tenant's mirror snapshot in one transaction so
// reports never see a half-synced state. Exposed as a package-level function
// for the background scheduler.
func SyncFromHRMS(ctx context.Context, db *pgxpool.Pool, fetcher Fetcher, tenantID string) (map[string]any, error) {
	records, err := fetcher.FetchAssignments(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	tx, err := db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM hrms_assignments WHERE tenant_id = $1`, tenantID); err != nil {
		return nil, err
	}
	syncedAt := time.Now().UTC()
	for _, rec := range records {
		if _, err := tx.Exec(ctx, `
      INSERT INTO hrms_assignments (tenant_id, employee_email, course_code, course_title, status, synced_at)
      VALUES ($1,$2,$3,$4,$5,$6)
    `, tenantID, rec.EmployeeEmail, rec.CourseCode, rec.CourseTitle, rec.Status, syncedAt); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return map[string]any{"records": len(records), "syncedAt": syncedAt}, nil
}
