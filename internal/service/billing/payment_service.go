// internal/service/billing/payment_service.go
package billing

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"lsa-service/internal/domain/billing"
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

// Gateway is the payment gateway surface the service needs.
type Gateway interface {
	Charge(ctx context.Context, amount int64, card *billing.CardDetails) (*billing.GatewayResult, error)
	UploadProof(ctx context.Context, spaID int64, proofReference string) (*billing.GatewayResult, error)
	ConfirmAcceptance(ctx context.Context, reference string) (bool, error)
}

// SubscriptionStateRepo persists per-spa billing state.
type SubscriptionStateRepo interface {
	FindBySpa(ctx context.Context, spaID int64) (*billing.SubscriptionState, error)
	Save(ctx context.Context, state *billing.SubscriptionState) error
}

// PaymentAttemptRepo persists payment submissions.
type PaymentAttemptRepo interface {
	Create(ctx context.Context, a *billing.PaymentAttempt) error
	UpdateResult(ctx context.Context, id int64, result billing.PaymentResult) error
	FindByID(ctx context.Context, id int64) (*billing.PaymentAttempt, error)
	ListBySpa(ctx context.Context, spaID int64) ([]*billing.PaymentAttempt, error)
	ListPendingBankTransfers(ctx context.Context) ([]*billing.PaymentAttempt, error)
	FindLatestAccepted(ctx context.Context, spaID int64) (*billing.PaymentAttempt, error)
}

// Notifier pushes events to connected spa dashboards. Best effort; a spa with
// no open connection simply misses the push.
type Notifier interface {
	NotifySpa(spaID int64, event string, payload any)
}

// PaymentService owns plan selection, payment submission and the plan lock.
type PaymentService struct {
	stateRepo   SubscriptionStateRepo
	attemptRepo PaymentAttemptRepo
	gateway     Gateway
	notifier    Notifier
	clock       Clock
	logger      *zap.Logger
}

func NewPaymentService(
	stateRepo SubscriptionStateRepo,
	attemptRepo PaymentAttemptRepo,
	gateway Gateway,
	notifier Notifier,
	clock Clock,
	logger *zap.Logger,
) *PaymentService {
	return &PaymentService{
		stateRepo:   stateRepo,
		attemptRepo: attemptRepo,
		gateway:     gateway,
		notifier:    notifier,
		clock:       clock,
		logger:      logger,
	}
}

// Plans returns the catalog for the pricing page.
func (s *PaymentService) Plans() []billing.PlanView {
	plans := billing.Plans()
	views := make([]billing.PlanView, 0, len(plans))
	for i := range plans {
		views = append(views, billing.NewPlanView(&plans[i]))
	}
	return views
}

// Plan returns one catalog plan.
func (s *PaymentService) Plan(id string) (*billing.PlanView, error) {
	plan, err := billing.FindPlan(id)
	if err != nil {
		return nil, err
	}
	view := billing.NewPlanView(plan)
	return &view, nil
}

// Submit runs one payment submission end to end. Validation and the plan lock
// pre-check happen before any gateway call; the attempt row and the lock are
// written only after the gateway accepts.
func (s *PaymentService) Submit(ctx context.Context, spaID int64, req *billing.SubmitPaymentRequest) (*billing.PaymentAttempt, error) {
	plan, err := billing.FindPlan(req.PlanID)
	if err != nil {
		return nil, err
	}

	if req.Amount != plan.Price {
		return nil, xerrors.NewValidationError(map[string]string{
			"amount": fmt.Sprintf("Amount must match the plan price of %d", plan.Price),
		})
	}

	state, err := s.loadState(ctx, spaID)
	if err != nil {
		return nil, err
	}

	if state.Locked() {
		if state.CurrentPlanID.Valid && state.CurrentPlanID.String == plan.ID {
			// Same plan resubmitted; nothing to charge.
			attempt, err := s.attemptRepo.FindLatestAccepted(ctx, spaID)
			if err != nil && !errors.Is(err, xerrors.ErrNotFound) {
				return nil, err
			}
			return attempt, nil
		}
		return nil, xerrors.ErrPlanLocked
	}

	now := s.clock.Now()

	var (
		result    *billing.GatewayResult
		gwErr     error
		outcome   billing.PaymentResult
		immediate bool
	)

	switch req.PaymentMethod {
	case billing.MethodCard:
		if req.CardDetails == nil {
			return nil, xerrors.NewValidationError(map[string]string{
				"cardDetails": "Card details are required for card payments",
			})
		}
		if fields := req.CardDetails.Validate(now); len(fields) > 0 {
			return nil, xerrors.NewValidationError(fields)
		}

		result, gwErr = s.gateway.Charge(ctx, req.Amount, req.CardDetails)
		outcome = billing.ResultSucceeded
		immediate = true

	case billing.MethodBankTransfer:
		if req.ProofReference == "" {
			return nil, xerrors.ErrMissingProof
		}

		result, gwErr = s.gateway.UploadProof(ctx, spaID, req.ProofReference)
		outcome = billing.ResultPendingReview
		immediate = false

	default:
		return nil, xerrors.NewValidationError(map[string]string{
			"paymentMethod": "Payment method must be card or bank_transfer",
		})
	}

	attempt := &billing.PaymentAttempt{
		AttemptReference: "PAY-" + ulid.Make().String(),
		SpaID:            spaID,
		PlanID:           plan.ID,
		Method:           req.PaymentMethod,
		Amount:           req.Amount,
		Result:           outcome,
		CreatedAt:        now,
	}
	if result != nil && result.Reference != "" {
		attempt.GatewayReference = sql.NullString{String: result.Reference, Valid: true}
	}
	if req.ProofReference != "" {
		attempt.ProofReference = sql.NullString{String: req.ProofReference, Valid: true}
	}

	// A gateway that errored and a gateway that declined both leave a failed
	// attempt behind; only the error message differs. The state is untouched
	// either way.
	if gwErr != nil {
		attempt.Result = billing.ResultFailed
		if err := s.attemptRepo.Create(ctx, attempt); err != nil {
			return nil, err
		}
		s.logger.Warn("gateway call failed",
			zap.Int64("spa_id", spaID),
			zap.String("plan_id", plan.ID),
			zap.String("attempt_reference", attempt.AttemptReference),
			zap.Error(gwErr))
		return attempt, xerrors.Wrap(xerrors.ErrGateway, gwErr.Error())
	}

	if !result.Accepted {
		attempt.Result = billing.ResultFailed
		if err := s.attemptRepo.Create(ctx, attempt); err != nil {
			return nil, err
		}
		s.logger.Warn("gateway declined payment",
			zap.Int64("spa_id", spaID),
			zap.String("plan_id", plan.ID),
			zap.String("attempt_reference", attempt.AttemptReference))
		return attempt, xerrors.Wrap(xerrors.ErrGateway, "payment was declined")
	}

	// The attempt row is the durable record of gateway acceptance; it goes in
	// before the lock so an interrupted submission can be reconciled later.
	if err := s.attemptRepo.Create(ctx, attempt); err != nil {
		return nil, err
	}

	if err := ApplyPaymentAccepted(state, plan, immediate, now); err != nil {
		return nil, err
	}
	if err := s.stateRepo.Save(ctx, state); err != nil {
		return nil, err
	}

	s.logger.Info("payment accepted",
		zap.Int64("spa_id", spaID),
		zap.String("plan_id", plan.ID),
		zap.String("method", string(req.PaymentMethod)),
		zap.String("attempt_reference", attempt.AttemptReference))

	s.notifier.NotifySpa(spaID, "payment.accepted", billing.NewPaymentAttemptView(attempt))
	return attempt, nil
}

// HandleBankTransferDecision records an association reviewer's verdict on a
// pending bank transfer.
func (s *PaymentService) HandleBankTransferDecision(ctx context.Context, attemptID int64, approve bool) error {
	attempt, err := s.attemptRepo.FindByID(ctx, attemptID)
	if err != nil {
		return err
	}
	if attempt.Method != billing.MethodBankTransfer || attempt.Result != billing.ResultPendingReview {
		return xerrors.Wrap(xerrors.ErrConflict, "attempt is not awaiting review")
	}

	state, err := s.loadState(ctx, attempt.SpaID)
	if err != nil {
		return err
	}

	if approve {
		if err := s.attemptRepo.UpdateResult(ctx, attemptID, billing.ResultSucceeded); err != nil {
			return err
		}
		MarkBankTransferApproved(state)
		if err := s.stateRepo.Save(ctx, state); err != nil {
			return err
		}
		s.notifier.NotifySpa(attempt.SpaID, "payment.approved", billing.NewPaymentAttemptView(attempt))
	} else {
		if err := s.attemptRepo.UpdateResult(ctx, attemptID, billing.ResultFailed); err != nil {
			return err
		}
		ApplyBankTransferRejected(state)
		if err := s.stateRepo.Save(ctx, state); err != nil {
			return err
		}
		s.notifier.NotifySpa(attempt.SpaID, "payment.rejected", billing.NewPaymentAttemptView(attempt))
	}

	s.logger.Info("bank transfer decided",
		zap.Int64("attempt_id", attemptID),
		zap.Bool("approved", approve))
	return nil
}

// ListPendingBankTransfers returns the association review queue.
func (s *PaymentService) ListPendingBankTransfers(ctx context.Context) ([]billing.PaymentAttemptView, error) {
	attempts, err := s.attemptRepo.ListPendingBankTransfers(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]billing.PaymentAttemptView, 0, len(attempts))
	for _, a := range attempts {
		views = append(views, billing.NewPaymentAttemptView(a))
	}
	return views, nil
}

// ListAttempts returns a spa's payment history, newest first.
func (s *PaymentService) ListAttempts(ctx context.Context, spaID int64) ([]billing.PaymentAttemptView, error) {
	attempts, err := s.attemptRepo.ListBySpa(ctx, spaID)
	if err != nil {
		return nil, err
	}
	views := make([]billing.PaymentAttemptView, 0, len(attempts))
	for _, a := range attempts {
		views = append(views, billing.NewPaymentAttemptView(a))
	}
	return views, nil
}

// Reconcile repairs the subscription state when a submission was interrupted
// between gateway acceptance and the lock write. It finds the spa's latest
// accepted attempt, re-confirms it with the gateway, and re-applies the lock
// from the original submission time.
func (s *PaymentService) Reconcile(ctx context.Context, spaID int64) error {
	state, err := s.loadState(ctx, spaID)
	if err != nil {
		return err
	}
	if state.Locked() {
		return nil
	}

	attempt, err := s.attemptRepo.FindLatestAccepted(ctx, spaID)
	if err != nil {
		if errors.Is(err, xerrors.ErrNotFound) {
			return nil
		}
		return err
	}

	reference := attempt.AttemptReference
	if attempt.GatewayReference.Valid {
		reference = attempt.GatewayReference.String
	}
	accepted, err := s.gateway.ConfirmAcceptance(ctx, reference)
	if err != nil {
		// The gateway being unreachable must not block the dashboard; the
		// next load retries.
		s.logger.Warn("reconcile skipped, gateway unreachable",
			zap.Int64("spa_id", spaID), zap.Error(err))
		return nil
	}
	if !accepted {
		return nil
	}

	plan, err := billing.FindPlan(attempt.PlanID)
	if err != nil {
		return err
	}

	immediate := attempt.Result == billing.ResultSucceeded
	if err := ApplyPaymentAccepted(state, plan, immediate, attempt.CreatedAt); err != nil {
		return err
	}
	if err := s.stateRepo.Save(ctx, state); err != nil {
		return err
	}

	s.logger.Info("subscription state reconciled",
		zap.Int64("spa_id", spaID),
		zap.String("attempt_reference", attempt.AttemptReference))
	return nil
}

// PaymentStatus summarizes a spa's billing state for the dashboard. Loading
// status also runs reconciliation, so a lock lost to a crash reappears on the
// next page load.
func (s *PaymentService) PaymentStatus(ctx context.Context, spaID int64) (*billing.PaymentStatusResponse, error) {
	if err := s.Reconcile(ctx, spaID); err != nil {
		s.logger.Warn("reconcile failed", zap.Int64("spa_id", spaID), zap.Error(err))
	}

	state, err := s.loadState(ctx, spaID)
	if err != nil {
		return nil, err
	}

	resp := &billing.PaymentStatusResponse{
		HasActivePayment: state.Status == billing.StatusActive,
		Status:           string(state.Status),
	}
	if state.CurrentPlanID.Valid {
		resp.CurrentPlanID = state.CurrentPlanID.String
		if plan, err := billing.FindPlan(state.CurrentPlanID.String); err == nil {
			resp.CurrentPlanName = plan.Name
		}
	}
	if state.LockedUntil.Valid {
		t := state.LockedUntil.Time
		resp.LockedUntil = &t
	}
	if state.Locked() {
		resp.Message = LockReason(state)
	} else {
		resp.Message = "Subscribe to a payment plan to unlock staff management."
	}
	return resp, nil
}

// IsActive reports whether the spa's subscription currently unlocks gated
// features. Always a fresh read.
func (s *PaymentService) IsActive(ctx context.Context, spaID int64) (bool, error) {
	state, err := s.loadState(ctx, spaID)
	if err != nil {
		return false, err
	}
	return state.Status == billing.StatusActive, nil
}

func (s *PaymentService) loadState(ctx context.Context, spaID int64) (*billing.SubscriptionState, error) {
	state, err := s.stateRepo.FindBySpa(ctx, spaID)
	if err != nil {
		if errors.Is(err, xerrors.ErrNotFound) {
			return billing.NewInactiveState(spaID), nil
		}
		return nil, err
	}
	return state, nil
}
