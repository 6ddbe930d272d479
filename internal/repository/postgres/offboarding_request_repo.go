// internal/repository/postgres/offboarding_request_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"

	"lsa-service/internal/domain/offboarding"
	xerrors "lsa-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
)

// OffboardingRequestRepo persists submitted offboarding requests. Drafts never
// reach this table; they live in Redis until the confirm gesture.
type OffboardingRequestRepo struct {
	db Queryer
}

func NewOffboardingRequestRepo(db Queryer) *OffboardingRequestRepo {
	return &OffboardingRequestRepo{db: db}
}

const requestColumns = `id, request_reference, spa_id, staff_id, kind,
	reason_category, effective_date, notes, state, submitted_at, decided_at,
	created_at, updated_at`

func scanRequest(row pgx.Row) (*offboarding.OffboardingRequest, error) {
	var r offboarding.OffboardingRequest
	err := row.Scan(
		&r.ID,
		&r.RequestReference,
		&r.SpaID,
		&r.StaffID,
		&r.Kind,
		&r.ReasonCategory,
		&r.EffectiveDate,
		&r.Notes,
		&r.State,
		&r.SubmittedAt,
		&r.DecidedAt,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// Create inserts a request and fills its ID and timestamps. Transaction-aware.
func (r *OffboardingRequestRepo) Create(ctx context.Context, req *offboarding.OffboardingRequest) error {
	q := QueryerFromContext(ctx, r.db)

	query := `
		INSERT INTO offboarding_requests
			(request_reference, spa_id, staff_id, kind, reason_category, effective_date, notes, state, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`

	err := q.QueryRow(ctx, query,
		req.RequestReference, req.SpaID, req.StaffID, req.Kind,
		req.ReasonCategory, req.EffectiveDate, req.Notes, req.State, req.SubmittedAt,
	).Scan(&req.ID, &req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create offboarding request: %w", err)
	}
	return nil
}

// FindByReference loads one request by its public reference.
func (r *OffboardingRequestRepo) FindByReference(ctx context.Context, reference string) (*offboarding.OffboardingRequest, error) {
	q := QueryerFromContext(ctx, r.db)

	query := `SELECT ` + requestColumns + ` FROM offboarding_requests WHERE request_reference = $1`
	req, err := scanRequest(q.QueryRow(ctx, query, reference))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, xerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load offboarding request: %w", err)
	}
	return req, nil
}

// FindActiveByStaff returns the staff member's non-terminal request, if any.
func (r *OffboardingRequestRepo) FindActiveByStaff(ctx context.Context, staffID int64) (*offboarding.OffboardingRequest, error) {
	q := QueryerFromContext(ctx, r.db)

	query := `SELECT ` + requestColumns + `
		FROM offboarding_requests
		WHERE staff_id = $1 AND state NOT IN ($2, $3, $4)
		ORDER BY created_at DESC
		LIMIT 1`

	req, err := scanRequest(q.QueryRow(ctx, query, staffID,
		offboarding.StateApproved, offboarding.StateRejected, offboarding.StateWithdrawn))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, xerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load active offboarding request: %w", err)
	}
	return req, nil
}

// UpdateState moves a request to a new state. Decided states also stamp
// decided_at. Transaction-aware.
func (r *OffboardingRequestRepo) UpdateState(ctx context.Context, id int64, state offboarding.RequestState) error {
	q := QueryerFromContext(ctx, r.db)

	query := `
		UPDATE offboarding_requests
		SET state = $1,
			decided_at = CASE WHEN $1 IN ('approved', 'rejected') THEN NOW() ELSE decided_at END,
			updated_at = NOW()
		WHERE id = $2`

	tag, err := q.Exec(ctx, query, state, id)
	if err != nil {
		return fmt.Errorf("failed to update offboarding request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

// ListBySpa returns a spa's requests, newest first.
func (r *OffboardingRequestRepo) ListBySpa(ctx context.Context, spaID int64) ([]*offboarding.OffboardingRequest, error) {
	q := QueryerFromContext(ctx, r.db)

	query := `SELECT ` + requestColumns + `
		FROM offboarding_requests
		WHERE spa_id = $1
		ORDER BY created_at DESC`

	rows, err := q.Query(ctx, query, spaID)
	if err != nil {
		return nil, fmt.Errorf("failed to list offboarding requests: %w", err)
	}
	defer rows.Close()

	return collectRequests(rows)
}

// ListByState returns all requests in a state, oldest first, for the
// association review queue.
func (r *OffboardingRequestRepo) ListByState(ctx context.Context, state offboarding.RequestState) ([]*offboarding.OffboardingRequest, error) {
	q := QueryerFromContext(ctx, r.db)

	query := `SELECT ` + requestColumns + `
		FROM offboarding_requests
		WHERE state = $1
		ORDER BY submitted_at ASC`

	rows, err := q.Query(ctx, query, state)
	if err != nil {
		return nil, fmt.Errorf("failed to list offboarding requests: %w", err)
	}
	defer rows.Close()

	return collectRequests(rows)
}

func collectRequests(rows pgx.Rows) ([]*offboarding.OffboardingRequest, error) {
	var requests []*offboarding.OffboardingRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan offboarding request: %w", err)
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}
