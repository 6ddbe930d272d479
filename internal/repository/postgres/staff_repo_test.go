// internal/repository/postgres/staff_repo_test.go
package postgres

import (
	"context"
	"testing"
	"time"

	"lsa-service/internal/domain/staff"
	xerrors "lsa-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The roster filter must hit both name and email with ILIKE so the term
// matches regardless of case, and an empty term must short-circuit to the
// whole roster.
const staffListPattern = `(?s)SELECT .+ FROM spa_staff\s+WHERE spa_id = \$1 AND \(\$2 = '' OR name ILIKE '%' \|\| \$2 \|\| '%' OR email ILIKE '%' \|\| \$2 \|\| '%'\)\s+ORDER BY employment_status = 'removed', name ASC`

var staffCols = []string{
	"id", "spa_id", "name", "email", "phone", "specialties",
	"employment_status", "joined_at", "created_at", "updated_at",
}

func newStaffRepoMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func TestStaffRepoListSearchMatchesNameCaseInsensitively(t *testing.T) {
	mock := newStaffRepoMock(t)
	repo := NewStaffRepo(mock)
	now := time.Date(2025, 10, 3, 12, 0, 0, 0, time.UTC)

	rows := pgxmock.NewRows(staffCols).
		AddRow(int64(42), int64(7), "Nadeesha Silva", "nadeesha@serenityspa.lk",
			"+94 77 123 4567", pq.StringArray{"Deep Tissue"}, staff.StatusActive, now, now, now)

	mock.ExpectQuery(staffListPattern).WithArgs(int64(7), "nAdEe").WillReturnRows(rows)

	records, err := repo.List(context.Background(), 7, "nAdEe")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Nadeesha Silva", records[0].Name)
	assert.Equal(t, pq.StringArray{"Deep Tissue"}, records[0].Specialties)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStaffRepoListSearchMatchesEmailCaseInsensitively(t *testing.T) {
	mock := newStaffRepoMock(t)
	repo := NewStaffRepo(mock)
	now := time.Date(2025, 10, 3, 12, 0, 0, 0, time.UTC)

	rows := pgxmock.NewRows(staffCols).
		AddRow(int64(43), int64(7), "Kasun Fernando", "KASUN@serenityspa.lk",
			"", pq.StringArray{}, staff.StatusActive, now, now, now)

	mock.ExpectQuery(staffListPattern).WithArgs(int64(7), "kasun@").WillReturnRows(rows)

	records, err := repo.List(context.Background(), 7, "kasun@")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "KASUN@serenityspa.lk", records[0].Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStaffRepoListEmptySearchReturnsWholeRoster(t *testing.T) {
	mock := newStaffRepoMock(t)
	repo := NewStaffRepo(mock)
	now := time.Date(2025, 10, 3, 12, 0, 0, 0, time.UTC)

	rows := pgxmock.NewRows(staffCols).
		AddRow(int64(43), int64(7), "Kasun Fernando", "kasun@serenityspa.lk",
			"", pq.StringArray{}, staff.StatusActive, now, now, now).
		AddRow(int64(42), int64(7), "Nadeesha Silva", "nadeesha@serenityspa.lk",
			"+94 77 123 4567", pq.StringArray{"Deep Tissue"}, staff.StatusRemoved, now, now, now)

	mock.ExpectQuery(staffListPattern).WithArgs(int64(7), "").WillReturnRows(rows)

	records, err := repo.List(context.Background(), 7, "")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Kasun Fernando", records[0].Name)
	assert.Equal(t, "Nadeesha Silva", records[1].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStaffRepoFindBySpaNotFound(t *testing.T) {
	mock := newStaffRepoMock(t)
	repo := NewStaffRepo(mock)

	mock.ExpectQuery(`(?s)SELECT .+ FROM spa_staff WHERE spa_id = \$1 AND id = \$2`).
		WithArgs(int64(7), int64(99)).
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.FindBySpa(context.Background(), 7, 99)
	assert.ErrorIs(t, err, xerrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStaffRepoUpdateStatusUnknownStaff(t *testing.T) {
	mock := newStaffRepoMock(t)
	repo := NewStaffRepo(mock)

	mock.ExpectExec(`UPDATE spa_staff SET employment_status = \$1, updated_at = NOW\(\) WHERE id = \$2`).
		WithArgs(staff.StatusRemoved, int64(99)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.UpdateStatus(context.Background(), 99, staff.StatusRemoved)
	assert.ErrorIs(t, err, xerrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
