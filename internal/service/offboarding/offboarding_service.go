// internal/service/offboarding/offboarding_service.go
package offboarding

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"lsa-service/internal/domain/offboarding"
	"lsa-service/internal/domain/staff"
	xerrors "lsa-service/internal/pkg/errors"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// Clock supplies the current time. Swapped for a fixed clock in tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns the wall clock.
func SystemClock() Clock { return systemClock{} }

// StaffRepo is the roster surface the workflow needs.
type StaffRepo interface {
	FindBySpa(ctx context.Context, spaID, staffID int64) (*staff.StaffRecord, error)
	List(ctx context.Context, spaID int64, search string) ([]*staff.StaffRecord, error)
	UpdateStatus(ctx context.Context, staffID int64, status staff.EmploymentStatus) error
}

// RequestRepo persists submitted offboarding requests.
type RequestRepo interface {
	Create(ctx context.Context, req *offboarding.OffboardingRequest) error
	FindByReference(ctx context.Context, reference string) (*offboarding.OffboardingRequest, error)
	FindActiveByStaff(ctx context.Context, staffID int64) (*offboarding.OffboardingRequest, error)
	UpdateState(ctx context.Context, id int64, state offboarding.RequestState) error
	ListBySpa(ctx context.Context, spaID int64) ([]*offboarding.OffboardingRequest, error)
	ListByState(ctx context.Context, state offboarding.RequestState) ([]*offboarding.OffboardingRequest, error)
}

// DraftStore keeps in-progress wizards between requests.
type DraftStore interface {
	Get(ctx context.Context, spaID, staffID int64) (*offboarding.Wizard, error)
	Save(ctx context.Context, w *offboarding.Wizard) error
	Delete(ctx context.Context, spaID, staffID int64) error
}

// SubscriptionChecker gates staff management behind an active subscription.
// Every check is a fresh read; a lapsed or rejected subscription takes effect
// on the next operation.
type SubscriptionChecker interface {
	IsActive(ctx context.Context, spaID int64) (bool, error)
}

// TxRunner runs a function inside one database transaction.
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Notifier pushes events to connected spa dashboards.
type Notifier interface {
	NotifySpa(spaID int64, event string, payload any)
}

// OffboardingService owns the resign/terminate wizard, the submitted request
// lifecycle and the association review queue.
type OffboardingService struct {
	staffRepo   StaffRepo
	requestRepo RequestRepo
	drafts      DraftStore
	subs        SubscriptionChecker
	tx          TxRunner
	notifier    Notifier
	clock       Clock
	logger      *zap.Logger
}

func NewOffboardingService(
	staffRepo StaffRepo,
	requestRepo RequestRepo,
	drafts DraftStore,
	subs SubscriptionChecker,
	tx TxRunner,
	notifier Notifier,
	clock Clock,
	logger *zap.Logger,
) *OffboardingService {
	return &OffboardingService{
		staffRepo:   staffRepo,
		requestRepo: requestRepo,
		drafts:      drafts,
		subs:        subs,
		tx:          tx,
		notifier:    notifier,
		clock:       clock,
		logger:      logger,
	}
}

func (s *OffboardingService) ensureActive(ctx context.Context, spaID int64) error {
	active, err := s.subs.IsActive(ctx, spaID)
	if err != nil {
		return err
	}
	if !active {
		return xerrors.ErrSubscriptionInactive
	}
	return nil
}

// ListStaff returns the spa's roster, optionally filtered by a search term.
// Each entry carries its open offboarding request so the roster can show
// pending submissions inline.
func (s *OffboardingService) ListStaff(ctx context.Context, spaID int64, search string) ([]offboarding.StaffWithRequest, error) {
	if err := s.ensureActive(ctx, spaID); err != nil {
		return nil, err
	}

	records, err := s.staffRepo.List(ctx, spaID, search)
	if err != nil {
		return nil, err
	}

	views := make([]offboarding.StaffWithRequest, 0, len(records))
	for _, r := range records {
		entry := offboarding.StaffWithRequest{Staff: staff.NewStaffView(r)}
		if req, err := s.requestRepo.FindActiveByStaff(ctx, r.ID); err == nil {
			rv := offboarding.NewRequestView(req)
			entry.ActiveRequest = &rv
		} else if !errors.Is(err, xerrors.ErrNotFound) {
			return nil, err
		}
		views = append(views, entry)
	}
	return views, nil
}

// GetStaff returns one roster entry.
func (s *OffboardingService) GetStaff(ctx context.Context, spaID, staffID int64) (*staff.StaffView, error) {
	if err := s.ensureActive(ctx, spaID); err != nil {
		return nil, err
	}

	record, err := s.staffRepo.FindBySpa(ctx, spaID, staffID)
	if err != nil {
		return nil, err
	}
	view := staff.NewStaffView(record)
	return &view, nil
}

// OpenRequest starts (or resumes) the offboarding wizard for one staff
// member. A staff member can carry at most one non-terminal request, so a
// pending submission blocks a new wizard.
func (s *OffboardingService) OpenRequest(ctx context.Context, spaID, staffID int64, kind offboarding.RequestKind) (*offboarding.WizardView, error) {
	if err := s.ensureActive(ctx, spaID); err != nil {
		return nil, err
	}

	if kind != offboarding.KindResign && kind != offboarding.KindTerminate {
		return nil, xerrors.NewValidationError(map[string]string{
			"kind": "Kind must be resign or terminate",
		})
	}

	record, err := s.staffRepo.FindBySpa(ctx, spaID, staffID)
	if err != nil {
		return nil, err
	}
	if record.EmploymentStatus != staff.StatusActive {
		return nil, xerrors.Wrap(xerrors.ErrConflict, "staff member is not active")
	}

	if _, err := s.requestRepo.FindActiveByStaff(ctx, staffID); err == nil {
		return nil, xerrors.ErrDuplicateRequest
	} else if !errors.Is(err, xerrors.ErrNotFound) {
		return nil, err
	}

	// Resume an open draft of the same kind instead of discarding it.
	if w, err := s.drafts.Get(ctx, spaID, staffID); err == nil && w.Kind == kind && !w.Confirmed {
		view := offboarding.NewWizardView(w)
		return &view, nil
	}

	w := offboarding.NewWizard(spaID, staffID, record.Name, kind, s.clock.Now())
	if err := s.drafts.Save(ctx, w); err != nil {
		return nil, err
	}

	view := offboarding.NewWizardView(w)
	return &view, nil
}

// GetWizard returns the current wizard state for one staff member.
func (s *OffboardingService) GetWizard(ctx context.Context, spaID, staffID int64) (*offboarding.WizardView, error) {
	if err := s.ensureActive(ctx, spaID); err != nil {
		return nil, err
	}

	w, err := s.drafts.Get(ctx, spaID, staffID)
	if err != nil {
		return nil, err
	}
	view := offboarding.NewWizardView(w)
	return &view, nil
}

// SetReason records the step-1 category choice.
func (s *OffboardingService) SetReason(ctx context.Context, spaID, staffID int64, category string) (*offboarding.WizardView, error) {
	return s.mutateWizard(ctx, spaID, staffID, func(w *offboarding.Wizard) error {
		if !w.SetReason(category) {
			return xerrors.NewValidationError(map[string]string{
				"reason_category": "Reason is not valid for this request kind",
			})
		}
		return nil
	})
}

// SetDetails records the step-2 effective date and notes.
func (s *OffboardingService) SetDetails(ctx context.Context, spaID, staffID int64, effectiveDate, notes string) (*offboarding.WizardView, error) {
	return s.mutateWizard(ctx, spaID, staffID, func(w *offboarding.Wizard) error {
		if effectiveDate != "" {
			if _, err := time.Parse("2006-01-02", effectiveDate); err != nil {
				return xerrors.NewValidationError(map[string]string{
					"effective_date": "Effective date must be YYYY-MM-DD",
				})
			}
		}
		if !w.SetDetails(effectiveDate, notes) {
			return xerrors.Wrap(xerrors.ErrConflict, "request already submitted")
		}
		return nil
	})
}

// Navigate moves the wizard one step forward or back.
func (s *OffboardingService) Navigate(ctx context.Context, spaID, staffID int64, direction string) (*offboarding.WizardView, error) {
	return s.mutateWizard(ctx, spaID, staffID, func(w *offboarding.Wizard) error {
		var ok bool
		switch direction {
		case "next":
			ok = w.Next()
		case "back":
			ok = w.Back()
		default:
			return xerrors.NewValidationError(map[string]string{
				"direction": "Direction must be next or back",
			})
		}
		if !ok {
			return xerrors.NewValidationError(map[string]string{
				"direction": "Cannot move " + direction + " from the current step",
			})
		}
		return nil
	})
}

func (s *OffboardingService) mutateWizard(ctx context.Context, spaID, staffID int64, mutate func(w *offboarding.Wizard) error) (*offboarding.WizardView, error) {
	if err := s.ensureActive(ctx, spaID); err != nil {
		return nil, err
	}

	w, err := s.drafts.Get(ctx, spaID, staffID)
	if err != nil {
		return nil, err
	}
	if err := mutate(w); err != nil {
		return nil, err
	}
	if err := s.drafts.Save(ctx, w); err != nil {
		return nil, err
	}

	view := offboarding.NewWizardView(w)
	return &view, nil
}

// Progress feeds one slide-to-confirm sample. Samples below the threshold
// change nothing. The first sample at or above it submits the request exactly
// once; later samples return the already-submitted wizard unchanged.
func (s *OffboardingService) Progress(ctx context.Context, spaID, staffID int64, progress float64) (*offboarding.WizardView, error) {
	if err := s.ensureActive(ctx, spaID); err != nil {
		return nil, err
	}

	w, err := s.drafts.Get(ctx, spaID, staffID)
	if err != nil {
		return nil, err
	}

	if w.Confirmed {
		view := offboarding.NewWizardView(w)
		return &view, nil
	}

	if !w.ApplyProgress(progress) {
		view := offboarding.NewWizardView(w)
		return &view, nil
	}

	// The gesture completed. The request must be submittable before anything
	// is persisted; a bad draft leaves the latch open for another attempt.
	effectiveDate, err := time.Parse("2006-01-02", w.EffectiveDate)
	if err != nil {
		w.Confirmed = false
		return nil, xerrors.NewValidationError(map[string]string{
			"effective_date": "Effective date is required before confirming",
		})
	}

	if _, err := s.requestRepo.FindActiveByStaff(ctx, staffID); err == nil {
		return nil, xerrors.ErrDuplicateRequest
	} else if !errors.Is(err, xerrors.ErrNotFound) {
		return nil, err
	}

	now := s.clock.Now()
	req := &offboarding.OffboardingRequest{
		RequestReference: "OFF-" + ulid.Make().String(),
		SpaID:            spaID,
		StaffID:          staffID,
		Kind:             w.Kind,
		ReasonCategory:   w.ReasonCategory,
		EffectiveDate:    effectiveDate,
		State:            offboarding.StateSubmitted,
		SubmittedAt:      sql.NullTime{Time: now, Valid: true},
	}
	if w.Notes != "" {
		req.Notes = sql.NullString{String: w.Notes, Valid: true}
	}

	// The request row and the staff status move together or not at all.
	err = s.tx.WithinTx(ctx, func(txCtx context.Context) error {
		if err := s.requestRepo.Create(txCtx, req); err != nil {
			return err
		}
		return s.staffRepo.UpdateStatus(txCtx, staffID, staff.StatusPendingReview)
	})
	if err != nil {
		return nil, err
	}

	w.State = offboarding.StateSubmitted
	w.RequestReference = req.RequestReference
	if err := s.drafts.Save(ctx, w); err != nil {
		s.logger.Warn("failed to persist submitted wizard state",
			zap.Int64("staff_id", staffID), zap.Error(err))
	}

	s.logger.Info("offboarding request submitted",
		zap.Int64("spa_id", spaID),
		zap.Int64("staff_id", staffID),
		zap.String("kind", string(w.Kind)),
		zap.String("request_reference", req.RequestReference))

	s.notifier.NotifySpa(spaID, "offboarding.submitted", offboarding.NewRequestView(req))

	view := offboarding.NewWizardView(w)
	return &view, nil
}

// Dismiss discards the wizard. Nothing persisted so far is touched; a
// dismissed draft simply disappears.
func (s *OffboardingService) Dismiss(ctx context.Context, spaID, staffID int64) error {
	if err := s.ensureActive(ctx, spaID); err != nil {
		return err
	}
	return s.drafts.Delete(ctx, spaID, staffID)
}

// Withdraw cancels a submitted request within the undo window and returns the
// staff member to active.
func (s *OffboardingService) Withdraw(ctx context.Context, spaID int64, reference string) (*offboarding.RequestView, error) {
	if err := s.ensureActive(ctx, spaID); err != nil {
		return nil, err
	}

	req, err := s.requestRepo.FindByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if req.SpaID != spaID {
		return nil, xerrors.ErrNotFound
	}
	if req.State != offboarding.StateSubmitted {
		return nil, xerrors.Wrap(xerrors.ErrConflict, "request is not withdrawable")
	}
	if s.clock.Now().After(req.WithdrawDeadline()) {
		return nil, xerrors.ErrWindowExpired
	}

	err = s.tx.WithinTx(ctx, func(txCtx context.Context) error {
		if err := s.requestRepo.UpdateState(txCtx, req.ID, offboarding.StateWithdrawn); err != nil {
			return err
		}
		return s.staffRepo.UpdateStatus(txCtx, req.StaffID, staff.StatusActive)
	})
	if err != nil {
		return nil, err
	}

	if err := s.drafts.Delete(ctx, spaID, req.StaffID); err != nil {
		s.logger.Warn("failed to clear wizard after withdraw",
			zap.Int64("staff_id", req.StaffID), zap.Error(err))
	}

	s.logger.Info("offboarding request withdrawn",
		zap.Int64("spa_id", spaID),
		zap.String("request_reference", reference))

	req.State = offboarding.StateWithdrawn
	view := offboarding.NewRequestView(req)
	return &view, nil
}

// ListRequests returns a spa's offboarding requests, newest first.
func (s *OffboardingService) ListRequests(ctx context.Context, spaID int64) ([]offboarding.RequestView, error) {
	if err := s.ensureActive(ctx, spaID); err != nil {
		return nil, err
	}

	requests, err := s.requestRepo.ListBySpa(ctx, spaID)
	if err != nil {
		return nil, err
	}
	views := make([]offboarding.RequestView, 0, len(requests))
	for _, r := range requests {
		views = append(views, offboarding.NewRequestView(r))
	}
	return views, nil
}

// ListSubmitted returns the association review queue, oldest first. Reviewer
// side; not gated on any spa's subscription.
func (s *OffboardingService) ListSubmitted(ctx context.Context) ([]offboarding.RequestView, error) {
	requests, err := s.requestRepo.ListByState(ctx, offboarding.StateSubmitted)
	if err != nil {
		return nil, err
	}
	views := make([]offboarding.RequestView, 0, len(requests))
	for _, r := range requests {
		views = append(views, offboarding.NewRequestView(r))
	}
	return views, nil
}

// Decide records an association reviewer's verdict. Approval removes the
// staff member; rejection returns them to active. A request withdrawn in the
// meantime can no longer be decided.
func (s *OffboardingService) Decide(ctx context.Context, reference string, approve bool) (*offboarding.RequestView, error) {
	req, err := s.requestRepo.FindByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if req.State != offboarding.StateSubmitted {
		return nil, xerrors.Wrap(xerrors.ErrConflict, "request is not awaiting review")
	}

	nextState := offboarding.StateRejected
	nextStaff := staff.StatusActive
	event := "offboarding.rejected"
	if approve {
		nextState = offboarding.StateApproved
		nextStaff = staff.StatusRemoved
		event = "offboarding.approved"
	}

	err = s.tx.WithinTx(ctx, func(txCtx context.Context) error {
		if err := s.requestRepo.UpdateState(txCtx, req.ID, nextState); err != nil {
			return err
		}
		return s.staffRepo.UpdateStatus(txCtx, req.StaffID, nextStaff)
	})
	if err != nil {
		return nil, err
	}

	if err := s.drafts.Delete(ctx, req.SpaID, req.StaffID); err != nil {
		s.logger.Warn("failed to clear wizard after decision",
			zap.Int64("staff_id", req.StaffID), zap.Error(err))
	}

	s.logger.Info("offboarding request decided",
		zap.String("request_reference", reference),
		zap.Bool("approved", approve))

	req.State = nextState
	now := s.clock.Now()
	req.DecidedAt = sql.NullTime{Time: now, Valid: true}
	view := offboarding.NewRequestView(req)
	s.notifier.NotifySpa(req.SpaID, event, view)
	return &view, nil
}
