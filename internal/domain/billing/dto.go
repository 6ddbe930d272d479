// internal/domain/billing/dto.go
package billing

import "time"

// SubmitPaymentRequest is the payload for a payment submission. CardDetails is
// required for card payments; ProofReference for bank transfers.
type SubmitPaymentRequest struct {
	PlanID         string        `json:"plan_id" binding:"required"`
	PaymentMethod  PaymentMethod `json:"payment_method" binding:"required"`
	Amount         int64         `json:"amount" binding:"required"`
	CardDetails    *CardDetails  `json:"card_details,omitempty"`
	ProofReference string        `json:"proof_reference,omitempty"`
}

// PlanView is a catalog plan as served to clients, with the savings banner
// precomputed.
type PlanView struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Price          int64    `json:"price"`
	OriginalPrice  int64    `json:"original_price,omitempty"`
	DurationMonths int      `json:"duration_months"`
	Description    string   `json:"description"`
	Features       []string `json:"features"`
	IsPromoted     bool     `json:"is_promoted"`
	Savings        string   `json:"savings,omitempty"`
}

// NewPlanView projects a catalog plan for API responses.
func NewPlanView(plan *SubscriptionPlan) PlanView {
	return PlanView{
		ID:             plan.ID,
		Name:           plan.Name,
		Price:          plan.Price,
		OriginalPrice:  plan.OriginalPrice,
		DurationMonths: plan.DurationMonths,
		Description:    plan.Description,
		Features:       []string(plan.Features),
		IsPromoted:     plan.IsPromoted,
		Savings:        plan.Savings,
	}
}

// PaymentStatusResponse summarizes a spa's billing state for the dashboard.
type PaymentStatusResponse struct {
	HasActivePayment bool       `json:"has_active_payment"`
	Status           string     `json:"status"`
	CurrentPlanID    string     `json:"current_plan_id,omitempty"`
	CurrentPlanName  string     `json:"current_plan_name,omitempty"`
	LockedUntil      *time.Time `json:"locked_until,omitempty"`
	Message          string     `json:"message,omitempty"`
}

// PaymentAttemptView is one row of the payment history.
type PaymentAttemptView struct {
	AttemptReference string        `json:"attempt_reference"`
	PlanID           string        `json:"plan_id"`
	Method           PaymentMethod `json:"method"`
	Amount           int64         `json:"amount"`
	Result           PaymentResult `json:"result"`
	CreatedAt        time.Time     `json:"created_at"`
}

// NewPaymentAttemptView projects an attempt for API responses.
func NewPaymentAttemptView(a *PaymentAttempt) PaymentAttemptView {
	return PaymentAttemptView{
		AttemptReference: a.AttemptReference,
		PlanID:           a.PlanID,
		Method:           a.Method,
		Amount:           a.Amount,
		Result:           a.Result,
		CreatedAt:        a.CreatedAt,
	}
}
