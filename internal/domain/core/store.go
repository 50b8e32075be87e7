package core

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"skillboard/internal/domain/auth"
	cryptoutil "skillboard/internal/platform/crypto"
)

var ErrEmployeeNotFound = errors.New("employee not found")
var ErrBandNotFound = errors.New("band not found")

type Store struct {
	DB     *pgxpool.Pool
	Crypto *cryptoutil.Service
}

func NewStore(db *pgxpool.Pool, crypto *cryptoutil.Service) *Store {
	return &Store{DB: db, Crypto: crypto}
}

const employeeColumns = `
    e.id,
    COALESCE(e.user_id::text, ''),
    COALESCE(e.employee_number, ''),
    e.first_name, e.last_name, e.email,
    COALESCE(e.phone, ''),
    COALESCE(e.national_id, ''),
    e.national_id_enc,
    COALESCE(e.location, ''),
    COALESCE(e.manager_id::text, ''),
    COALESCE(e.band_id::text, ''),
    COALESCE(b.name, ''),
    COALESCE(e.capability_id::text, ''),
    COALESCE(c.name, ''),
    e.start_date, e.status, e.created_at, e.updated_at`

const employeeJoins = `
    FROM employees e
    LEFT JOIN bands b ON e.band_id = b.id
    LEFT JOIN capabilities c ON e.capability_id = c.id`

func scanEmployee(row pgx.Row, crypto *cryptoutil.Service) (*Employee, error) {
	var emp Employee
	var nationalEnc []byte
	var nationalPlain string
	if err := row.Scan(
		&emp.ID, &emp.UserID, &emp.EmployeeNumber, &emp.FirstName, &emp.LastName, &emp.Email, &emp.Phone,
		&nationalPlain, &nationalEnc, &emp.Location, &emp.ManagerID,
		&emp.BandID, &emp.BandName, &emp.CapabilityID, &emp.CapabilityName,
		&emp.StartDate, &emp.Status, &emp.CreatedAt, &emp.UpdatedAt,
	); err != nil {
		return nil, err
	}
	emp.NationalID = decryptStringFallback(crypto, nationalEnc, nationalPlain)
	return &emp, nil
}

func (s *Store) GetEmployee(ctx context.Context, tenantID, employeeID string) (*Employee, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT`+employeeColumns+employeeJoins+`
    WHERE e.tenant_id = $1 AND e.id = $2
  `, tenantID, employeeID)
	emp, err := scanEmployee(row, s.Crypto)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrEmployeeNotFound
	}
	return emp, err
}

func (s *Store) GetEmployeeByUserID(ctx context.Context, tenantID, userID string) (*Employee, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT`+employeeColumns+employeeJoins+`
    WHERE e.tenant_id = $1 AND e.user_id = $2
  `, tenantID, userID)
	emp, err := scanEmployee(row, s.Crypto)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrEmployeeNotFound
	}
	return emp, err
}

func (s *Store) ListEmployees(ctx context.Context, tenantID string, filter EmployeeFilter) ([]Employee, error) {
	query := `
    SELECT` + employeeColumns + employeeJoins + `
    WHERE e.tenant_id = $1`
	args := []any{tenantID}
	if filter.CapabilityID != "" {
		args = append(args, filter.CapabilityID)
		query += ` AND e.capability_id = $2`
	} else if filter.ManagerID != "" {
		args = append(args, filter.ManagerID)
		query += ` AND e.manager_id = $2`
	}
	query += `
    ORDER BY e.last_name, e.first_name`

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Employee
	for rows.Next() {
		emp, err := scanEmployee(rows, s.Crypto)
		if err != nil {
			return nil, err
		}
		out = append(out, *emp)
	}
	return out, rows.Err()
}

type EmployeeFilter struct {
	CapabilityID string
	ManagerID    string
}

func (s *Store) CreateEmployee(ctx context.Context, tenantID string, emp Employee) (string, error) {
	nationalEnc, nationalPlain := encryptSensitive(s.Crypto, emp.NationalID)
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO employees (tenant_id, user_id, employee_number, first_name, last_name, email, phone,
      national_id, national_id_enc, location, manager_id, band_id, capability_id, start_date, status)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
    RETURNING id
  `,
		tenantID, nullIfEmpty(emp.UserID), nullIfEmpty(emp.EmployeeNumber), emp.FirstName, emp.LastName,
		emp.Email, emp.Phone, nationalPlain, nationalEnc, emp.Location,
		nullIfEmpty(emp.ManagerID), nullIfEmpty(emp.BandID), nullIfEmpty(emp.CapabilityID),
		emp.StartDate, emp.Status,
	).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

// CreateEmployeeWithUser provisions the login and the employee record in one
// transaction so a half-created account never appears in listings.
func (s *Store) CreateEmployeeWithUser(ctx context.Context, tenantID string, emp Employee, roleName, password string) (string, string, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return "", "", err
	}

	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return "", "", err
	}
	defer tx.Rollback(ctx)

	var roleID string
	if err := tx.QueryRow(ctx, `
    SELECT id FROM roles WHERE tenant_id = $1 AND name = $2
  `, tenantID, roleName).Scan(&roleID); err != nil {
		return "", "", err
	}

	var userID string
	if err := tx.QueryRow(ctx, `
    INSERT INTO users (tenant_id, email, password_hash, role_id, status)
    VALUES ($1,$2,$3,$4,'active')
    RETURNING id
  `, tenantID, emp.Email, hash, roleID).Scan(&userID); err != nil {
		return "", "", err
	}

	nationalEnc, nationalPlain := encryptSensitive(s.Crypto, emp.NationalID)
	var employeeID string
	if err := tx.QueryRow(ctx, `
    INSERT INTO employees (tenant_id, user_id, employee_number, first_name, last_name, email, phone,
      national_id, national_id_enc, location, manager_id, band_id, capability_id, start_date, status)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
    RETURNING id
  `,
		tenantID, userID, nullIfEmpty(emp.EmployeeNumber), emp.FirstName, emp.LastName,
		emp.Email, emp.Phone, nationalPlain, nationalEnc, emp.Location,
		nullIfEmpty(emp.ManagerID), nullIfEmpty(emp.BandID), nullIfEmpty(emp.CapabilityID),
		emp.StartDate, emp.Status,
	).Scan(&employeeID); err != nil {
		return "", "", err
	}

	if err := tx.Commit(ctx); err != nil {
		return "", "", err
	}
	return employeeID, userID, nil
}

func (s *Store) UpdateEmployee(ctx context.Context, tenantID, employeeID string, emp Employee) error {
	nationalEnc, nationalPlain := encryptSensitive(s.Crypto, emp.NationalID)
	cmd, err := s.DB.Exec(ctx, `
    UPDATE employees
    SET employee_number = $1,
        first_name = $2,
        last_name = $3,
        email = $4,
        phone = $5,
        national_id = $6,
        national_id_enc = $7,
        location = $8,
        manager_id = $9,
        band_id = $10,
        capability_id = $11,
        start_date = $12,
        status = $13,
        updated_at = now()
    WHERE tenant_id = $14 AND id = $15
  `,
		emp.EmployeeNumber, emp.FirstName, emp.LastName, emp.Email, emp.Phone,
		nationalPlain, nationalEnc, emp.Location,
		nullIfEmpty(emp.ManagerID), nullIfEmpty(emp.BandID), nullIfEmpty(emp.CapabilityID),
		emp.StartDate, emp.Status, tenantID, employeeID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrEmployeeNotFound
	}
	return nil
}

func (s *Store) IsManagerOf(ctx context.Context, tenantID, managerEmployeeID, employeeID string) (bool, error) {
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1)
    FROM employees
    WHERE tenant_id = $1 AND id = $2 AND manager_id = $3
  `, tenantID, employeeID, managerEmployeeID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) EmployeeIDByUserID(ctx context.Context, tenantID, userID string) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    SELECT id FROM employees WHERE tenant_id = $1 AND user_id = $2
  `, tenantID, userID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrEmployeeNotFound
	}
	return id, err
}

func (s *Store) UserIDByEmployeeID(ctx context.Context, tenantID, employeeID string) (string, error) {
	var userID string
	err := s.DB.QueryRow(ctx, `
    SELECT COALESCE(user_id::text, '') FROM employees WHERE tenant_id = $1 AND id = $2
  `, tenantID, employeeID).Scan(&userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrEmployeeNotFound
	}
	return userID, err
}

func (s *Store) ListBands(ctx context.Context, tenantID string) ([]Band, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, name, rank, COALESCE(description, ''), created_at
    FROM bands
    WHERE tenant_id = $1
    ORDER BY rank
  `, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Band
	for rows.Next() {
		var b Band
		if err := rows.Scan(&b.ID, &b.Name, &b.Rank, &b.Description, &b.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *Store) GetBand(ctx context.Context, tenantID, bandID string) (*Band, error) {
	var b Band
	err := s.DB.QueryRow(ctx, `
    SELECT id, name, rank, COALESCE(description, ''), created_at
    FROM bands
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, bandID).Scan(&b.ID, &b.Name, &b.Rank, &b.Description, &b.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrBandNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// NextBand returns the band with the smallest rank strictly above the given
// band's rank, or ErrBandNotFound when the employee already sits at the top.
func (s *Store) NextBand(ctx context.Context, tenantID, bandID string) (*Band, error) {
	var b Band
	err := s.DB.QueryRow(ctx, `
    SELECT id, name, rank, COALESCE(description, ''), created_at
    FROM bands
    WHERE tenant_id = $1 AND rank > (SELECT rank FROM bands WHERE tenant_id = $1 AND id = $2)
    ORDER BY rank
    LIMIT 1
  `, tenantID, bandID).Scan(&b.ID, &b.Name, &b.Rank, &b.Description, &b.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrBandNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *Store) CreateBand(ctx context.Context, tenantID string, band Band) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO bands (tenant_id, name, rank, description)
    VALUES ($1,$2,$3,$4)
    RETURNING id
  `, tenantID, band.Name, band.Rank, band.Description).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) UpdateBand(ctx context.Context, tenantID, bandID string, band Band) error {
	cmd, err := s.DB.Exec(ctx, `
    UPDATE bands SET name = $1, rank = $2, description = $3 WHERE tenant_id = $4 AND id = $5
  `, band.Name, band.Rank, band.Description, tenantID, bandID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrBandNotFound
	}
	return nil
}

// ReplaceBandRequirements swaps the full requirement set for a band in one
// transaction so readers never see a partially written profile.
func (s *Store) ReplaceBandRequirements(ctx context.Context, tenantID, bandID string, reqs []BandRequirement) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
    DELETE FROM band_skill_requirements WHERE tenant_id = $1 AND band_id = $2
  `, tenantID, bandID); err != nil {
		return err
	}
	for _, req := range reqs {
		if _, err := tx.Exec(ctx, `
      INSERT INTO band_skill_requirements (tenant_id, band_id, skill_id, required_rating)
      VALUES ($1,$2,$3,$4)
    `, tenantID, bandID, req.SkillID, req.RequiredRating); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (s *Store) ListCapabilities(ctx context.Context, tenantID string) ([]Capability, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, name, COALESCE(lead_id::text, ''), created_at
    FROM capabilities
    WHERE tenant_id = $1
    ORDER BY name
  `, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Capability
	for rows.Next() {
		var c Capability
		if err := rows.Scan(&c.ID, &c.Name, &c.LeadID, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) CreateCapability(ctx context.Context, tenantID string, cap Capability) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO capabilities (tenant_id, name, lead_id)
    VALUES ($1,$2,$3)
    RETURNING id
  `, tenantID, cap.Name, nullIfEmpty(cap.LeadID)).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func encryptSensitive(crypto *cryptoutil.Service, plain string) ([]byte, any) {
	if crypto == nil || !crypto.Configured() {
		return nil, plain
	}
	enc, err := crypto.EncryptString(plain)
	if err != nil {
		return nil, plain
	}
	return enc, nil
}

func decryptStringFallback(crypto *cryptoutil.Service, encrypted []byte, plain string) string {
	if crypto == nil || !crypto.Configured() || len(encrypted) == 0 {
		return plain
	}
	decrypted, err := crypto.DecryptString(encrypted)
	if err != nil {
		return plain
	}
	return decrypted
}
