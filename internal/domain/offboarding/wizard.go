// internal/domain/offboarding/wizard.go
package offboarding

import "time"

// Wizard step numbers. Step 1 picks the reason, step 2 collects details,
// step 3 is the slide-to-confirm.
const (
	StepReason  = 1
	StepDetails = 2
	StepConfirm = 3
)

// Wizard is the in-progress offboarding flow for one staff member. It is
// serialized to Redis between requests and discarded on dismiss; nothing is
// written to the database until the confirm gesture completes.
type Wizard struct {
	SpaID            int64        `json:"spa_id"`
	StaffID          int64        `json:"staff_id"`
	StaffName        string       `json:"staff_name"`
	Kind             RequestKind  `json:"kind"`
	Step             int          `json:"step"`
	ReasonCategory   string       `json:"reason_category,omitempty"`
	EffectiveDate    string       `json:"effective_date,omitempty"`
	Notes            string       `json:"notes,omitempty"`
	State            RequestState `json:"state"`
	Confirmed        bool         `json:"confirmed"`
	RequestReference string       `json:"request_reference,omitempty"`
	CreatedAt        time.Time    `json:"created_at"`
}

// NewWizard opens a fresh flow at the reason step.
func NewWizard(spaID, staffID int64, staffName string, kind RequestKind, now time.Time) *Wizard {
	return &Wizard{
		SpaID:     spaID,
		StaffID:   staffID,
		StaffName: staffName,
		Kind:      kind,
		Step:      StepReason,
		State:     StateDraft,
		CreatedAt: now,
	}
}

// SetReason records the chosen category. Selecting a reason moves the draft
// into awaiting confirmation; it stays there until the final gesture.
func (w *Wizard) SetReason(category string) bool {
	if w.Confirmed || !ValidReason(w.Kind, category) {
		return false
	}
	w.ReasonCategory = category
	w.State = StateAwaitingConfirmation
	return true
}

// SetDetails records the effective date and optional notes.
func (w *Wizard) SetDetails(effectiveDate, notes string) bool {
	if w.Confirmed {
		return false
	}
	w.EffectiveDate = effectiveDate
	w.Notes = notes
	return true
}

// Next advances one step. Moving past the reason step requires a reason.
func (w *Wizard) Next() bool {
	if w.Confirmed || w.Step >= StepConfirm {
		return false
	}
	if w.Step == StepReason && w.ReasonCategory == "" {
		return false
	}
	w.Step++
	return true
}

// Back retreats one step without losing entered data.
func (w *Wizard) Back() bool {
	if w.Confirmed || w.Step <= StepReason {
		return false
	}
	w.Step--
	return true
}

// ApplyProgress feeds one slide-to-confirm progress sample. It returns true
// exactly once: the first sample at or above the threshold while the wizard
// sits on the confirm step. Later samples, including repeats of high values,
// return false.
func (w *Wizard) ApplyProgress(progress float64) bool {
	if w.Confirmed {
		return false
	}
	if w.Step != StepConfirm || w.State != StateAwaitingConfirmation {
		return false
	}
	if progress < ConfirmThreshold {
		return false
	}
	w.Confirmed = true
	return true
}
