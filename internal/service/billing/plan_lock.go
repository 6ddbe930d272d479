// internal/service/billing/plan_lock.go
package billing

import (
	"database/sql"
	"fmt"
	"time"

	"lsa-service/internal/domain/billing"
	xerrors "lsa-service/internal/pkg/errors"
)

// The plan lock policy: once a payment for a plan is accepted the spa is
// bound to that plan until the renewal date. The only transition back to
// inactive is an association reviewer rejecting a pending bank transfer.

// CanSelectPlan reports whether the spa may start a payment for a new plan.
func CanSelectPlan(state *billing.SubscriptionState) bool {
	return state.Status == billing.StatusInactive
}

// ApplyPaymentAccepted mutates state for an accepted payment. immediate
// distinguishes a settled card charge (active) from a bank transfer awaiting
// review (pending_approval). Resubmitting the same plan while locked is an
// idempotent no-op; submitting a different plan fails with ErrPlanLocked and
// leaves state untouched.
func ApplyPaymentAccepted(state *billing.SubscriptionState, plan *billing.SubscriptionPlan, immediate bool, submitted time.Time) error {
	if state.Locked() {
		if state.CurrentPlanID.Valid && state.CurrentPlanID.String == plan.ID {
			return nil
		}
		return xerrors.ErrPlanLocked
	}

	status := billing.StatusPendingApproval
	if immediate {
		status = billing.StatusActive
	}

	state.Status = status
	state.CurrentPlanID = sql.NullString{String: plan.ID, Valid: true}
	state.LockedUntil = sql.NullTime{Time: billing.NextRenewalDate(plan, submitted), Valid: true}
	return nil
}

// ApplyBankTransferRejected releases the lock after a reviewer rejects the
// pending transfer. The spa returns to the unpaid default and may pick any
// plan again.
func ApplyBankTransferRejected(state *billing.SubscriptionState) {
	state.Status = billing.StatusInactive
	state.CurrentPlanID = sql.NullString{}
	state.LockedUntil = sql.NullTime{}
}

// MarkBankTransferApproved promotes a pending subscription to active without
// touching the plan or renewal date.
func MarkBankTransferApproved(state *billing.SubscriptionState) {
	if state.Status == billing.StatusPendingApproval {
		state.Status = billing.StatusActive
	}
}

// LockReason explains why a plan change is currently blocked.
func LockReason(state *billing.SubscriptionState) string {
	if !state.Locked() {
		return ""
	}
	plan := state.CurrentPlanID.String
	if state.Status == billing.StatusPendingApproval {
		return fmt.Sprintf("A bank transfer for the %s plan is awaiting review.", plan)
	}
	if state.LockedUntil.Valid {
		return fmt.Sprintf("The %s plan is locked until %s.", plan, state.LockedUntil.Time.Format("2 Jan 2006"))
	}
	return fmt.Sprintf("The %s plan is locked until renewal.", plan)
}
