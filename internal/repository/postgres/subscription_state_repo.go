// internal/repository/postgres/subscription_state_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"

	"lsa-service/internal/domain/billing"
	xerrors "lsa-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
)

// SubscriptionStateRepo persists per-spa billing state. One row per spa,
// keyed by spa_id.
type SubscriptionStateRepo struct {
	db Queryer
}

func NewSubscriptionStateRepo(db Queryer) *SubscriptionStateRepo {
	return &SubscriptionStateRepo{db: db}
}

// FindBySpa loads the billing state for a spa. Returns xerrors.ErrNotFound
// when the spa has never submitted a payment; callers treat that as inactive.
func (r *SubscriptionStateRepo) FindBySpa(ctx context.Context, spaID int64) (*billing.SubscriptionState, error) {
	q := QueryerFromContext(ctx, r.db)

	query := `
		SELECT spa_id, status, current_plan_id, locked_until, updated_at
		FROM spa_subscription_states
		WHERE spa_id = $1`

	var state billing.SubscriptionState
	err := q.QueryRow(ctx, query, spaID).Scan(
		&state.SpaID,
		&state.Status,
		&state.CurrentPlanID,
		&state.LockedUntil,
		&state.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, xerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load subscription state: %w", err)
	}

	return &state, nil
}

// Save upserts the billing state for a spa.
func (r *SubscriptionStateRepo) Save(ctx context.Context, state *billing.SubscriptionState) error {
	q := QueryerFromContext(ctx, r.db)

	query := `
		INSERT INTO spa_subscription_states (spa_id, status, current_plan_id, locked_until, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (spa_id) DO UPDATE SET
			status = EXCLUDED.status,
			current_plan_id = EXCLUDED.current_plan_id,
			locked_until = EXCLUDED.locked_until,
			updated_at = NOW()`

	_, err := q.Exec(ctx, query, state.SpaID, state.Status, state.CurrentPlanID, state.LockedUntil)
	if err != nil {
		return fmt.Errorf("failed to save subscription state: %w", err)
	}
	return nil
}
