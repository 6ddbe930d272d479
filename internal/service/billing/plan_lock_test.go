package billing

import (
	"testing"
	"time"

	"lsa-service/internal/domain/billing"
	xerrors "lsa-service/internal/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var lockTestNow = time.Date(2025, time.October, 3, 12, 0, 0, 0, time.UTC)

func mustPlan(t *testing.T, id string) *billing.SubscriptionPlan {
	t.Helper()
	plan, err := billing.FindPlan(id)
	require.NoError(t, err)
	return plan
}

func TestCanSelectPlanOnlyWhenInactive(t *testing.T) {
	state := billing.NewInactiveState(1)
	assert.True(t, CanSelectPlan(state))

	require.NoError(t, ApplyPaymentAccepted(state, mustPlan(t, "monthly"), true, lockTestNow))
	assert.False(t, CanSelectPlan(state))

	pending := billing.NewInactiveState(2)
	require.NoError(t, ApplyPaymentAccepted(pending, mustPlan(t, "monthly"), false, lockTestNow))
	assert.False(t, CanSelectPlan(pending), "pending bank transfer still locks the plan")
}

func TestApplyPaymentAcceptedCard(t *testing.T) {
	state := billing.NewInactiveState(1)
	require.NoError(t, ApplyPaymentAccepted(state, mustPlan(t, "monthly"), true, lockTestNow))

	assert.Equal(t, billing.StatusActive, state.Status)
	assert.Equal(t, "monthly", state.CurrentPlanID.String)
	require.True(t, state.LockedUntil.Valid)
	assert.Equal(t, time.Date(2025, time.November, 3, 12, 0, 0, 0, time.UTC), state.LockedUntil.Time)
}

func TestApplyPaymentAcceptedBankTransferPending(t *testing.T) {
	state := billing.NewInactiveState(1)
	require.NoError(t, ApplyPaymentAccepted(state, mustPlan(t, "quarterly"), false, lockTestNow))

	assert.Equal(t, billing.StatusPendingApproval, state.Status)
	assert.Equal(t, "quarterly", state.CurrentPlanID.String)
	assert.Equal(t, time.Date(2026, time.January, 3, 12, 0, 0, 0, time.UTC), state.LockedUntil.Time)
}

func TestApplyPaymentAcceptedSamePlanIdempotent(t *testing.T) {
	state := billing.NewInactiveState(1)
	require.NoError(t, ApplyPaymentAccepted(state, mustPlan(t, "monthly"), true, lockTestNow))
	before := *state

	later := lockTestNow.Add(48 * time.Hour)
	require.NoError(t, ApplyPaymentAccepted(state, mustPlan(t, "monthly"), true, later))
	assert.Equal(t, before, *state, "resubmitting the same plan must not move the renewal date")
}

func TestApplyPaymentAcceptedDifferentPlanLocked(t *testing.T) {
	state := billing.NewInactiveState(1)
	require.NoError(t, ApplyPaymentAccepted(state, mustPlan(t, "monthly"), true, lockTestNow))
	before := *state

	err := ApplyPaymentAccepted(state, mustPlan(t, "annual"), true, lockTestNow)
	assert.ErrorIs(t, err, xerrors.ErrPlanLocked)
	assert.Equal(t, before, *state, "a rejected change must leave the state untouched")
}

func TestApplyBankTransferRejectedUnlocks(t *testing.T) {
	state := billing.NewInactiveState(1)
	require.NoError(t, ApplyPaymentAccepted(state, mustPlan(t, "annual"), false, lockTestNow))
	require.False(t, CanSelectPlan(state))

	ApplyBankTransferRejected(state)

	assert.Equal(t, billing.StatusInactive, state.Status)
	assert.False(t, state.CurrentPlanID.Valid)
	assert.False(t, state.LockedUntil.Valid)
	assert.True(t, CanSelectPlan(state), "rejection is the only path back to plan selection")
}

func TestMarkBankTransferApproved(t *testing.T) {
	state := billing.NewInactiveState(1)
	require.NoError(t, ApplyPaymentAccepted(state, mustPlan(t, "annual"), false, lockTestNow))
	lockedUntil := state.LockedUntil

	MarkBankTransferApproved(state)

	assert.Equal(t, billing.StatusActive, state.Status)
	assert.Equal(t, lockedUntil, state.LockedUntil, "approval keeps the original renewal date")
}

func TestLockReason(t *testing.T) {
	state := billing.NewInactiveState(1)
	assert.Empty(t, LockReason(state))

	require.NoError(t, ApplyPaymentAccepted(state, mustPlan(t, "monthly"), true, lockTestNow))
	assert.Contains(t, LockReason(state), "monthly")
	assert.Contains(t, LockReason(state), "3 Nov 2025")
}
