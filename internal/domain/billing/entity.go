// internal/domain/billing/entity.go
package billing

import (
	"database/sql"
	"time"

	"github.com/lib/pq"
)

type SubscriptionStatus string

const (
	StatusInactive        SubscriptionStatus = "inactive"
	StatusPendingApproval SubscriptionStatus = "pending_approval"
	StatusActive          SubscriptionStatus = "active"
)

type PaymentMethod string

const (
	MethodCard         PaymentMethod = "card"
	MethodBankTransfer PaymentMethod = "bank_transfer"
)

type PaymentResult string

const (
	ResultSucceeded     PaymentResult = "succeeded"
	ResultPendingReview PaymentResult = "pending_review"
	ResultFailed        PaymentResult = "failed"
)

// SubscriptionPlan is a catalog tier. Plans are immutable and defined in
// catalog.go; they are never mutated at runtime.
type SubscriptionPlan struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Price          int64          `json:"price"`
	OriginalPrice  int64          `json:"original_price,omitempty"`
	DurationMonths int            `json:"duration_months"`
	Description    string         `json:"description"`
	Features       pq.StringArray `json:"features"`
	IsPromoted     bool           `json:"is_promoted"`
	Savings        string         `json:"savings,omitempty"`
}

// SubscriptionState is the billing state of a single spa. Created inactive at
// onboarding; mutated only by the plan lock policy in response to payments.
//
// Invariant: LockedUntil is set if and only if Status != inactive.
type SubscriptionState struct {
	SpaID         int64              `json:"spa_id" db:"spa_id"`
	Status        SubscriptionStatus `json:"status" db:"status"`
	CurrentPlanID sql.NullString     `json:"current_plan_id,omitempty" db:"current_plan_id"`
	LockedUntil   sql.NullTime       `json:"locked_until,omitempty" db:"locked_until"`
	UpdatedAt     time.Time          `json:"updated_at" db:"updated_at"`
}

// Locked reports whether the plan is bound until renewal, either because a
// payment completed or because a bank transfer awaits review.
func (s *SubscriptionState) Locked() bool {
	return s.Status != StatusInactive
}

// NewInactiveState returns the onboarding default for a spa with no payments.
func NewInactiveState(spaID int64) *SubscriptionState {
	return &SubscriptionState{SpaID: spaID, Status: StatusInactive}
}

// PaymentAttempt records one payment submission. Attempts are created per
// submission and never retried automatically.
type PaymentAttempt struct {
	ID               int64          `json:"id" db:"id"`
	AttemptReference string         `json:"attempt_reference" db:"attempt_reference"`
	SpaID            int64          `json:"spa_id" db:"spa_id"`
	PlanID           string         `json:"plan_id" db:"plan_id"`
	Method           PaymentMethod  `json:"method" db:"method"`
	Amount           int64          `json:"amount" db:"amount"`
	ProofReference   sql.NullString `json:"proof_reference,omitempty" db:"proof_reference"`
	GatewayReference sql.NullString `json:"gateway_reference,omitempty" db:"gateway_reference"`
	Result           PaymentResult  `json:"result" db:"result"`
	CreatedAt        time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at" db:"updated_at"`
}

// GatewayResult is the outcome of one gateway call.
type GatewayResult struct {
	Reference string
	Accepted  bool
}
