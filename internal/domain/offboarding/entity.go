// internal/domain/offboarding/entity.go
package offboarding

import (
	"database/sql"
	"time"
)

type RequestKind string

const (
	KindResign    RequestKind = "resign"
	KindTerminate RequestKind = "terminate"
)

type RequestState string

const (
	StateDraft                RequestState = "draft"
	StateAwaitingConfirmation RequestState = "awaiting_confirmation"
	StateSubmitted            RequestState = "submitted"
	StateApproved             RequestState = "approved"
	StateRejected             RequestState = "rejected"
	StateWithdrawn            RequestState = "withdrawn"
)

// UndoWindow is how long after submission a spa may withdraw a request.
const UndoWindow = 24 * time.Hour

// ConfirmThreshold is the slide-to-confirm progress at which the final wizard
// step submits.
const ConfirmThreshold = 0.8

var resignReasons = []string{
	"Voluntary Resignation",
	"Relocation",
	"Career Change",
	"Personal Reasons",
	"Better Opportunity",
}

var terminateReasons = []string{
	"Performance Issues",
	"Misconduct",
	"Attendance Problems",
	"Policy Violation",
	"Other",
}

// ReasonCategories lists the selectable reason categories for a request kind.
func ReasonCategories(kind RequestKind) []string {
	var src []string
	switch kind {
	case KindResign:
		src = resignReasons
	case KindTerminate:
		src = terminateReasons
	default:
		return nil
	}
	out := make([]string, len(src))
	copy(out, src)
	return out
}

// ValidReason reports whether category is selectable for the given kind.
func ValidReason(kind RequestKind, category string) bool {
	for _, r := range ReasonCategories(kind) {
		if r == category {
			return true
		}
	}
	return false
}

// OffboardingRequest is a persisted resignation or termination request. Only
// submitted and later states are stored; wizard drafts live in Redis until
// confirmation.
type OffboardingRequest struct {
	ID               int64          `json:"id" db:"id"`
	RequestReference string         `json:"request_reference" db:"request_reference"`
	SpaID            int64          `json:"spa_id" db:"spa_id"`
	StaffID          int64          `json:"staff_id" db:"staff_id"`
	Kind             RequestKind    `json:"kind" db:"kind"`
	ReasonCategory   string         `json:"reason_category" db:"reason_category"`
	EffectiveDate    time.Time      `json:"effective_date" db:"effective_date"`
	Notes            sql.NullString `json:"notes,omitempty" db:"notes"`
	State            RequestState   `json:"state" db:"state"`
	SubmittedAt      sql.NullTime   `json:"submitted_at,omitempty" db:"submitted_at"`
	DecidedAt        sql.NullTime   `json:"decided_at,omitempty" db:"decided_at"`
	CreatedAt        time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at" db:"updated_at"`
}

// Terminal reports whether the request can no longer change state.
func (r *OffboardingRequest) Terminal() bool {
	switch r.State {
	case StateApproved, StateRejected, StateWithdrawn:
		return true
	}
	return false
}

// WithdrawDeadline returns the end of the undo window. Zero time if the
// request was never submitted.
func (r *OffboardingRequest) WithdrawDeadline() time.Time {
	if !r.SubmittedAt.Valid {
		return time.Time{}
	}
	return r.SubmittedAt.Time.Add(UndoWindow)
}
