// internal/domain/offboarding/dto.go
package offboarding

import (
	"time"

	"lsa-service/internal/domain/staff"
)

// OpenRequestPayload starts a wizard for one staff member.
type OpenRequestPayload struct {
	Kind RequestKind `json:"kind" binding:"required"`
}

// SetReasonPayload records the step-1 category choice.
type SetReasonPayload struct {
	ReasonCategory string `json:"reason_category" binding:"required"`
}

// SetDetailsPayload records the step-2 inputs.
type SetDetailsPayload struct {
	EffectiveDate string `json:"effective_date" binding:"required"`
	Notes         string `json:"notes,omitempty"`
}

// NavigatePayload moves the wizard forward or back.
type NavigatePayload struct {
	Direction string `json:"direction" binding:"required"` // "next" or "back"
}

// ProgressPayload is one slide-to-confirm sample.
type ProgressPayload struct {
	Progress float64 `json:"progress" binding:"min=0,max=1"`
}

// DecisionPayload is an association reviewer's verdict.
type DecisionPayload struct {
	Approve bool   `json:"approve"`
	Comment string `json:"comment,omitempty"`
}

// WizardView is the wizard state returned after each step mutation.
type WizardView struct {
	StaffID          int64        `json:"staff_id"`
	StaffName        string       `json:"staff_name"`
	Kind             RequestKind  `json:"kind"`
	Step             int          `json:"step"`
	ReasonCategory   string       `json:"reason_category,omitempty"`
	ReasonCategories []string     `json:"reason_categories"`
	EffectiveDate    string       `json:"effective_date,omitempty"`
	Notes            string       `json:"notes,omitempty"`
	State            RequestState `json:"state"`
	Submitted        bool         `json:"submitted"`
	RequestReference string       `json:"request_reference,omitempty"`
}

// NewWizardView projects a wizard for API responses.
func NewWizardView(w *Wizard) WizardView {
	return WizardView{
		StaffID:          w.StaffID,
		StaffName:        w.StaffName,
		Kind:             w.Kind,
		Step:             w.Step,
		ReasonCategory:   w.ReasonCategory,
		ReasonCategories: ReasonCategories(w.Kind),
		EffectiveDate:    w.EffectiveDate,
		Notes:            w.Notes,
		State:            w.State,
		Submitted:        w.Confirmed,
		RequestReference: w.RequestReference,
	}
}

// StaffWithRequest pairs a roster entry with its open offboarding request,
// if one exists.
type StaffWithRequest struct {
	Staff         staff.StaffView `json:"staff"`
	ActiveRequest *RequestView    `json:"active_request,omitempty"`
}

// RequestView is a persisted request as served to clients.
type RequestView struct {
	RequestReference string       `json:"request_reference"`
	SpaID            int64        `json:"spa_id"`
	StaffID          int64        `json:"staff_id"`
	Kind             RequestKind  `json:"kind"`
	ReasonCategory   string       `json:"reason_category"`
	EffectiveDate    time.Time    `json:"effective_date"`
	Notes            string       `json:"notes,omitempty"`
	State            RequestState `json:"state"`
	SubmittedAt      *time.Time   `json:"submitted_at,omitempty"`
	DecidedAt        *time.Time   `json:"decided_at,omitempty"`
	WithdrawableTill *time.Time   `json:"withdrawable_till,omitempty"`
}

// NewRequestView projects a request for API responses.
func NewRequestView(r *OffboardingRequest) RequestView {
	view := RequestView{
		RequestReference: r.RequestReference,
		SpaID:            r.SpaID,
		StaffID:          r.StaffID,
		Kind:             r.Kind,
		ReasonCategory:   r.ReasonCategory,
		EffectiveDate:    r.EffectiveDate,
		State:            r.State,
	}
	if r.Notes.Valid {
		view.Notes = r.Notes.String
	}
	if r.SubmittedAt.Valid {
		t := r.SubmittedAt.Time
		view.SubmittedAt = &t
		if r.State == StateSubmitted {
			d := r.WithdrawDeadline()
			view.WithdrawableTill = &d
		}
	}
	if r.DecidedAt.Valid {
		t := r.DecidedAt.Time
		view.DecidedAt = &t
	}
	return view
}
