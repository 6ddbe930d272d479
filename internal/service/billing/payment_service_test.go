package billing

import (
	"context"
	"errors"
	"testing"
	"time"

	"lsa-service/internal/domain/billing"
	xerrors "lsa-service/internal/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubClock struct{ now time.Time }

func (s stubClock) Now() time.Time { return s.now }

type fakeStateRepo struct {
	states map[int64]*billing.SubscriptionState
	saves  int
}

func newFakeStateRepo() *fakeStateRepo {
	return &fakeStateRepo{states: make(map[int64]*billing.SubscriptionState)}
}

func (r *fakeStateRepo) FindBySpa(_ context.Context, spaID int64) (*billing.SubscriptionState, error) {
	state, ok := r.states[spaID]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	cp := *state
	return &cp, nil
}

func (r *fakeStateRepo) Save(_ context.Context, state *billing.SubscriptionState) error {
	cp := *state
	r.states[state.SpaID] = &cp
	r.saves++
	return nil
}

type fakeAttemptRepo struct {
	attempts []*billing.PaymentAttempt
	nextID   int64
}

func (r *fakeAttemptRepo) Create(_ context.Context, a *billing.PaymentAttempt) error {
	r.nextID++
	a.ID = r.nextID
	cp := *a
	r.attempts = append(r.attempts, &cp)
	return nil
}

func (r *fakeAttemptRepo) UpdateResult(_ context.Context, id int64, result billing.PaymentResult) error {
	for _, a := range r.attempts {
		if a.ID == id {
			a.Result = result
			return nil
		}
	}
	return xerrors.ErrNotFound
}

func (r *fakeAttemptRepo) FindByID(_ context.Context, id int64) (*billing.PaymentAttempt, error) {
	for _, a := range r.attempts {
		if a.ID == id {
			cp := *a
			return &cp, nil
		}
	}
	return nil, xerrors.ErrNotFound
}

func (r *fakeAttemptRepo) ListBySpa(_ context.Context, spaID int64) ([]*billing.PaymentAttempt, error) {
	var out []*billing.PaymentAttempt
	for i := len(r.attempts) - 1; i >= 0; i-- {
		if r.attempts[i].SpaID == spaID {
			cp := *r.attempts[i]
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeAttemptRepo) ListPendingBankTransfers(_ context.Context) ([]*billing.PaymentAttempt, error) {
	var out []*billing.PaymentAttempt
	for _, a := range r.attempts {
		if a.Method == billing.MethodBankTransfer && a.Result == billing.ResultPendingReview {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeAttemptRepo) FindLatestAccepted(_ context.Context, spaID int64) (*billing.PaymentAttempt, error) {
	for i := len(r.attempts) - 1; i >= 0; i-- {
		a := r.attempts[i]
		if a.SpaID == spaID && (a.Result == billing.ResultSucceeded || a.Result == billing.ResultPendingReview) {
			cp := *a
			return &cp, nil
		}
	}
	return nil, xerrors.ErrNotFound
}

type fakeGateway struct {
	chargeCalls  int
	proofCalls   int
	confirmCalls int

	accept          bool
	err             error
	confirmAccepted bool
	confirmErr      error
}

func (g *fakeGateway) Charge(_ context.Context, _ int64, _ *billing.CardDetails) (*billing.GatewayResult, error) {
	g.chargeCalls++
	if g.err != nil {
		return nil, g.err
	}
	return &billing.GatewayResult{Reference: "GW-1", Accepted: g.accept}, nil
}

func (g *fakeGateway) UploadProof(_ context.Context, _ int64, _ string) (*billing.GatewayResult, error) {
	g.proofCalls++
	if g.err != nil {
		return nil, g.err
	}
	return &billing.GatewayResult{Reference: "GW-2", Accepted: g.accept}, nil
}

func (g *fakeGateway) ConfirmAcceptance(_ context.Context, _ string) (bool, error) {
	g.confirmCalls++
	return g.confirmAccepted, g.confirmErr
}

type recordingNotifier struct{ events []string }

func (n *recordingNotifier) NotifySpa(_ int64, event string, _ any) {
	n.events = append(n.events, event)
}

var serviceTestNow = time.Date(2025, time.October, 3, 12, 0, 0, 0, time.UTC)

type paymentFixture struct {
	svc      *PaymentService
	states   *fakeStateRepo
	attempts *fakeAttemptRepo
	gateway  *fakeGateway
	notifier *recordingNotifier
}

func newPaymentFixture() *paymentFixture {
	states := newFakeStateRepo()
	attempts := &fakeAttemptRepo{}
	gateway := &fakeGateway{accept: true, confirmAccepted: true}
	notifier := &recordingNotifier{}
	svc := NewPaymentService(states, attempts, gateway, notifier, stubClock{serviceTestNow}, zap.NewNop())
	return &paymentFixture{svc: svc, states: states, attempts: attempts, gateway: gateway, notifier: notifier}
}

func cardRequest(planID string, amount int64) *billing.SubmitPaymentRequest {
	return &billing.SubmitPaymentRequest{
		PlanID:        planID,
		PaymentMethod: billing.MethodCard,
		Amount:        amount,
		CardDetails: &billing.CardDetails{
			HolderName: "Amara Perera",
			CardNumber: "4532015112830366",
			Expiry:     "12/26",
			CVV:        "123",
		},
	}
}

func TestSubmitCardSuccessLocksPlan(t *testing.T) {
	f := newPaymentFixture()

	attempt, err := f.svc.Submit(context.Background(), 1, cardRequest("monthly", 5000))
	require.NoError(t, err)
	require.NotNil(t, attempt)
	assert.Equal(t, billing.ResultSucceeded, attempt.Result)
	assert.Equal(t, 1, f.gateway.chargeCalls)

	state := f.states.states[1]
	require.NotNil(t, state)
	assert.Equal(t, billing.StatusActive, state.Status)
	assert.Equal(t, "monthly", state.CurrentPlanID.String)
	assert.Equal(t, time.Date(2025, time.November, 3, 12, 0, 0, 0, time.UTC), state.LockedUntil.Time)
	assert.False(t, CanSelectPlan(state))
	assert.Contains(t, f.notifier.events, "payment.accepted")
}

func TestSubmitInvalidCardNeverReachesGateway(t *testing.T) {
	f := newPaymentFixture()
	req := cardRequest("monthly", 5000)
	req.CardDetails.Expiry = "03/24"

	_, err := f.svc.Submit(context.Background(), 1, req)
	ve, ok := xerrors.AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, "Card has expired", ve.Fields["expiry"])
	assert.Zero(t, f.gateway.chargeCalls)
	assert.Empty(t, f.attempts.attempts)
	assert.Empty(t, f.states.states)
}

func TestSubmitAmountMismatch(t *testing.T) {
	f := newPaymentFixture()

	_, err := f.svc.Submit(context.Background(), 1, cardRequest("monthly", 4500))
	ve, ok := xerrors.AsValidation(err)
	require.True(t, ok)
	assert.Contains(t, ve.Fields, "amount")
	assert.Zero(t, f.gateway.chargeCalls)
}

func TestSubmitUnknownPlan(t *testing.T) {
	f := newPaymentFixture()

	_, err := f.svc.Submit(context.Background(), 1, cardRequest("weekly", 1000))
	assert.ErrorIs(t, err, xerrors.ErrNotFound)
}

func TestSubmitBankTransferWithoutProof(t *testing.T) {
	f := newPaymentFixture()

	_, err := f.svc.Submit(context.Background(), 1, &billing.SubmitPaymentRequest{
		PlanID:        "monthly",
		PaymentMethod: billing.MethodBankTransfer,
		Amount:        5000,
	})
	assert.ErrorIs(t, err, xerrors.ErrMissingProof)
	assert.Zero(t, f.gateway.proofCalls)
	assert.Empty(t, f.attempts.attempts)
}

func TestSubmitBankTransferPendsReview(t *testing.T) {
	f := newPaymentFixture()

	attempt, err := f.svc.Submit(context.Background(), 1, &billing.SubmitPaymentRequest{
		PlanID:         "annual",
		PaymentMethod:  billing.MethodBankTransfer,
		Amount:         45000,
		ProofReference: "slip-001",
	})
	require.NoError(t, err)
	assert.Equal(t, billing.ResultPendingReview, attempt.Result)

	state := f.states.states[1]
	assert.Equal(t, billing.StatusPendingApproval, state.Status)

	// Pending review locks the plan but does not unlock gated features.
	active, err := f.svc.IsActive(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, active)
	assert.False(t, CanSelectPlan(state))
}

func TestSubmitGatewayDeclineLeavesStateUntouched(t *testing.T) {
	f := newPaymentFixture()
	f.gateway.accept = false

	attempt, err := f.svc.Submit(context.Background(), 1, cardRequest("monthly", 5000))
	assert.ErrorIs(t, err, xerrors.ErrGateway)
	require.NotNil(t, attempt)
	assert.Equal(t, billing.ResultFailed, attempt.Result)

	assert.Empty(t, f.states.states, "a declined charge must not create a lock")
	require.Len(t, f.attempts.attempts, 1)
	assert.Equal(t, billing.ResultFailed, f.attempts.attempts[0].Result)
}

func TestSubmitGatewayErrorRecordsFailedAttempt(t *testing.T) {
	f := newPaymentFixture()
	f.gateway.err = errors.New("connection reset")

	attempt, err := f.svc.Submit(context.Background(), 1, cardRequest("monthly", 5000))
	assert.ErrorIs(t, err, xerrors.ErrGateway)

	require.NotNil(t, attempt)
	require.Len(t, f.attempts.attempts, 1)
	assert.Equal(t, billing.ResultFailed, f.attempts.attempts[0].Result)
	assert.False(t, f.attempts.attempts[0].GatewayReference.Valid)
	assert.Empty(t, f.states.states, "a transport error must not touch the subscription state")
}

func TestSubmitLockedDifferentPlanNeverCharges(t *testing.T) {
	f := newPaymentFixture()
	_, err := f.svc.Submit(context.Background(), 1, cardRequest("monthly", 5000))
	require.NoError(t, err)
	require.Equal(t, 1, f.gateway.chargeCalls)

	_, err = f.svc.Submit(context.Background(), 1, cardRequest("annual", 45000))
	assert.ErrorIs(t, err, xerrors.ErrPlanLocked)
	assert.Equal(t, 1, f.gateway.chargeCalls, "the lock pre-check must run before the gateway call")

	state := f.states.states[1]
	assert.Equal(t, "monthly", state.CurrentPlanID.String)
}

func TestSubmitSamePlanIdempotent(t *testing.T) {
	f := newPaymentFixture()
	_, err := f.svc.Submit(context.Background(), 1, cardRequest("monthly", 5000))
	require.NoError(t, err)

	attempt, err := f.svc.Submit(context.Background(), 1, cardRequest("monthly", 5000))
	require.NoError(t, err)
	require.NotNil(t, attempt)
	assert.Equal(t, 1, f.gateway.chargeCalls, "resubmitting the same plan must not charge again")
	assert.Len(t, f.attempts.attempts, 1)
}

func TestBankTransferApprovalActivates(t *testing.T) {
	f := newPaymentFixture()
	attempt, err := f.svc.Submit(context.Background(), 1, &billing.SubmitPaymentRequest{
		PlanID:         "annual",
		PaymentMethod:  billing.MethodBankTransfer,
		Amount:         45000,
		ProofReference: "slip-001",
	})
	require.NoError(t, err)
	lockedUntil := f.states.states[1].LockedUntil

	require.NoError(t, f.svc.HandleBankTransferDecision(context.Background(), attempt.ID, true))

	state := f.states.states[1]
	assert.Equal(t, billing.StatusActive, state.Status)
	assert.Equal(t, lockedUntil, state.LockedUntil, "approval keeps the renewal date from submission")

	stored, err := f.attempts.FindByID(context.Background(), attempt.ID)
	require.NoError(t, err)
	assert.Equal(t, billing.ResultSucceeded, stored.Result)
	assert.Contains(t, f.notifier.events, "payment.approved")
}

func TestBankTransferRejectionUnlocks(t *testing.T) {
	f := newPaymentFixture()
	attempt, err := f.svc.Submit(context.Background(), 1, &billing.SubmitPaymentRequest{
		PlanID:         "annual",
		PaymentMethod:  billing.MethodBankTransfer,
		Amount:         45000,
		ProofReference: "slip-001",
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.HandleBankTransferDecision(context.Background(), attempt.ID, false))

	state := f.states.states[1]
	assert.Equal(t, billing.StatusInactive, state.Status)
	assert.True(t, CanSelectPlan(state), "rejection must reopen plan selection")

	// The spa may now pick a different plan.
	_, err = f.svc.Submit(context.Background(), 1, cardRequest("monthly", 5000))
	assert.NoError(t, err)
}

func TestBankTransferDecisionOnSettledAttempt(t *testing.T) {
	f := newPaymentFixture()
	attempt, err := f.svc.Submit(context.Background(), 1, cardRequest("monthly", 5000))
	require.NoError(t, err)

	err = f.svc.HandleBankTransferDecision(context.Background(), attempt.ID, true)
	assert.ErrorIs(t, err, xerrors.ErrConflict)
}

func TestPendingBankTransferWithoutDecisionIsNoOp(t *testing.T) {
	f := newPaymentFixture()
	_, err := f.svc.Submit(context.Background(), 1, &billing.SubmitPaymentRequest{
		PlanID:         "annual",
		PaymentMethod:  billing.MethodBankTransfer,
		Amount:         45000,
		ProofReference: "slip-001",
	})
	require.NoError(t, err)
	before := *f.states.states[1]

	// No reviewer decision arrives. Status reads leave everything pending.
	status, err := f.svc.PaymentStatus(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, string(billing.StatusPendingApproval), status.Status)
	assert.False(t, status.HasActivePayment)
	assert.Equal(t, before, *f.states.states[1])
}

func TestReconcileRepairsLostLock(t *testing.T) {
	f := newPaymentFixture()
	_, err := f.svc.Submit(context.Background(), 1, cardRequest("monthly", 5000))
	require.NoError(t, err)

	// Simulate a crash between gateway acceptance and the lock write.
	delete(f.states.states, 1)

	require.NoError(t, f.svc.Reconcile(context.Background(), 1))

	state := f.states.states[1]
	require.NotNil(t, state)
	assert.Equal(t, billing.StatusActive, state.Status)
	assert.Equal(t, "monthly", state.CurrentPlanID.String)
	assert.Equal(t, time.Date(2025, time.November, 3, 12, 0, 0, 0, time.UTC), state.LockedUntil.Time,
		"the renewal date comes from the original submission time")
	assert.Equal(t, 1, f.gateway.confirmCalls)
}

func TestReconcileNoAcceptedAttempt(t *testing.T) {
	f := newPaymentFixture()
	require.NoError(t, f.svc.Reconcile(context.Background(), 1))
	assert.Empty(t, f.states.states)
	assert.Zero(t, f.gateway.confirmCalls)
}

func TestReconcileGatewayUnreachableIsBestEffort(t *testing.T) {
	f := newPaymentFixture()
	_, err := f.svc.Submit(context.Background(), 1, cardRequest("monthly", 5000))
	require.NoError(t, err)
	delete(f.states.states, 1)

	f.gateway.confirmErr = errors.New("timeout")
	assert.NoError(t, f.svc.Reconcile(context.Background(), 1))
	assert.Empty(t, f.states.states, "no repair without gateway confirmation")
}

func TestPaymentStatusTriggersReconcile(t *testing.T) {
	f := newPaymentFixture()
	_, err := f.svc.Submit(context.Background(), 1, cardRequest("monthly", 5000))
	require.NoError(t, err)
	delete(f.states.states, 1)

	status, err := f.svc.PaymentStatus(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, status.HasActivePayment)
	assert.Equal(t, "monthly", status.CurrentPlanID)
	assert.Equal(t, "Monthly", status.CurrentPlanName)
	require.NotNil(t, status.LockedUntil)
	assert.Equal(t, time.Date(2025, time.November, 3, 12, 0, 0, 0, time.UTC), *status.LockedUntil)
}

func TestPaymentStatusInactiveCarriesUpsell(t *testing.T) {
	f := newPaymentFixture()

	status, err := f.svc.PaymentStatus(context.Background(), 9)
	require.NoError(t, err)
	assert.False(t, status.HasActivePayment)
	assert.Equal(t, string(billing.StatusInactive), status.Status)
	assert.Contains(t, status.Message, "Subscribe to a payment plan")
}
