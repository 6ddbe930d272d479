// internal/repository/postgres/staff_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"

	"lsa-service/internal/domain/staff"
	xerrors "lsa-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
)

// StaffRepo persists spa staff rosters.
type StaffRepo struct {
	db Queryer
}

func NewStaffRepo(db Queryer) *StaffRepo {
	return &StaffRepo{db: db}
}

const staffColumns = `id, spa_id, name, email, phone, specialties,
	employment_status, joined_at, created_at, updated_at`

func scanStaff(row pgx.Row) (*staff.StaffRecord, error) {
	var s staff.StaffRecord
	err := row.Scan(
		&s.ID,
		&s.SpaID,
		&s.Name,
		&s.Email,
		&s.Phone,
		&s.Specialties,
		&s.EmploymentStatus,
		&s.JoinedAt,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// FindBySpa loads one staff member, scoped to the owning spa.
func (r *StaffRepo) FindBySpa(ctx context.Context, spaID, staffID int64) (*staff.StaffRecord, error) {
	q := QueryerFromContext(ctx, r.db)

	query := `SELECT ` + staffColumns + ` FROM spa_staff WHERE spa_id = $1 AND id = $2`
	s, err := scanStaff(q.QueryRow(ctx, query, spaID, staffID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, xerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load staff member: %w", err)
	}
	return s, nil
}

// List returns a spa's roster, optionally filtered by a name or email search
// term, removed staff last.
func (r *StaffRepo) List(ctx context.Context, spaID int64, search string) ([]*staff.StaffRecord, error) {
	q := QueryerFromContext(ctx, r.db)

	query := `SELECT ` + staffColumns + `
		FROM spa_staff
		WHERE spa_id = $1 AND ($2 = '' OR name ILIKE '%' || $2 || '%' OR email ILIKE '%' || $2 || '%')
		ORDER BY employment_status = 'removed', name ASC`

	rows, err := q.Query(ctx, query, spaID, search)
	if err != nil {
		return nil, fmt.Errorf("failed to list staff: %w", err)
	}
	defer rows.Close()

	var records []*staff.StaffRecord
	for rows.Next() {
		s, err := scanStaff(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan staff member: %w", err)
		}
		records = append(records, s)
	}
	return records, rows.Err()
}

// UpdateStatus sets a staff member's employment status. Transaction-aware:
// inside WithinTx the update joins the surrounding transaction.
func (r *StaffRepo) UpdateStatus(ctx context.Context, staffID int64, status staff.EmploymentStatus) error {
	q := QueryerFromContext(ctx, r.db)

	tag, err := q.Exec(ctx,
		`UPDATE spa_staff SET employment_status = $1, updated_at = NOW() WHERE id = $2`,
		status, staffID,
	)
	if err != nil {
		return fmt.Errorf("failed to update staff status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}
