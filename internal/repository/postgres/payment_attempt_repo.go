// internal/repository/postgres/payment_attempt_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"

	"lsa-service/internal/domain/billing"
	xerrors "lsa-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
)

// PaymentAttemptRepo persists payment submissions.
type PaymentAttemptRepo struct {
	db Queryer
}

func NewPaymentAttemptRepo(db Queryer) *PaymentAttemptRepo {
	return &PaymentAttemptRepo{db: db}
}

const attemptColumns = `id, attempt_reference, spa_id, plan_id, method, amount,
	proof_reference, gateway_reference, result, created_at, updated_at`

func scanAttempt(row pgx.Row) (*billing.PaymentAttempt, error) {
	var a billing.PaymentAttempt
	err := row.Scan(
		&a.ID,
		&a.AttemptReference,
		&a.SpaID,
		&a.PlanID,
		&a.Method,
		&a.Amount,
		&a.ProofReference,
		&a.GatewayReference,
		&a.Result,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Create inserts an attempt and fills its ID and timestamps.
func (r *PaymentAttemptRepo) Create(ctx context.Context, a *billing.PaymentAttempt) error {
	q := QueryerFromContext(ctx, r.db)

	query := `
		INSERT INTO payment_attempts
			(attempt_reference, spa_id, plan_id, method, amount, proof_reference, gateway_reference, result)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`

	err := q.QueryRow(ctx, query,
		a.AttemptReference, a.SpaID, a.PlanID, a.Method, a.Amount,
		a.ProofReference, a.GatewayReference, a.Result,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create payment attempt: %w", err)
	}
	return nil
}

// UpdateResult records the outcome of a reviewed or reconciled attempt.
func (r *PaymentAttemptRepo) UpdateResult(ctx context.Context, id int64, result billing.PaymentResult) error {
	q := QueryerFromContext(ctx, r.db)

	tag, err := q.Exec(ctx,
		`UPDATE payment_attempts SET result = $1, updated_at = NOW() WHERE id = $2`,
		result, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update payment attempt: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

// FindByID loads one attempt.
func (r *PaymentAttemptRepo) FindByID(ctx context.Context, id int64) (*billing.PaymentAttempt, error) {
	q := QueryerFromContext(ctx, r.db)

	query := `SELECT ` + attemptColumns + ` FROM payment_attempts WHERE id = $1`
	a, err := scanAttempt(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, xerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load payment attempt: %w", err)
	}
	return a, nil
}

// ListBySpa returns a spa's attempts, newest first.
func (r *PaymentAttemptRepo) ListBySpa(ctx context.Context, spaID int64) ([]*billing.PaymentAttempt, error) {
	q := QueryerFromContext(ctx, r.db)

	query := `SELECT ` + attemptColumns + `
		FROM payment_attempts
		WHERE spa_id = $1
		ORDER BY created_at DESC`

	rows, err := q.Query(ctx, query, spaID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payment attempts: %w", err)
	}
	defer rows.Close()

	var attempts []*billing.PaymentAttempt
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment attempt: %w", err)
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}

// ListPendingBankTransfers returns bank transfers awaiting association review,
// oldest first.
func (r *PaymentAttemptRepo) ListPendingBankTransfers(ctx context.Context) ([]*billing.PaymentAttempt, error) {
	q := QueryerFromContext(ctx, r.db)

	query := `SELECT ` + attemptColumns + `
		FROM payment_attempts
		WHERE method = $1 AND result = $2
		ORDER BY created_at ASC`

	rows, err := q.Query(ctx, query, billing.MethodBankTransfer, billing.ResultPendingReview)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending bank transfers: %w", err)
	}
	defer rows.Close()

	var attempts []*billing.PaymentAttempt
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment attempt: %w", err)
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}

// FindLatestAccepted returns the spa's most recent attempt the gateway or a
// reviewer accepted. Used to repair the subscription state after a crash
// between gateway acceptance and the lock write.
func (r *PaymentAttemptRepo) FindLatestAccepted(ctx context.Context, spaID int64) (*billing.PaymentAttempt, error) {
	q := QueryerFromContext(ctx, r.db)

	query := `SELECT ` + attemptColumns + `
		FROM payment_attempts
		WHERE spa_id = $1 AND result IN ($2, $3)
		ORDER BY created_at DESC
		LIMIT 1`

	a, err := scanAttempt(q.QueryRow(ctx, query, spaID, billing.ResultSucceeded, billing.ResultPendingReview))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, xerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load latest accepted attempt: %w", err)
	}
	return a, nil
}
