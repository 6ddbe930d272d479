package offboarding

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, time.October, 3, 12, 0, 0, 0, time.UTC)

func confirmReadyWizard() *Wizard {
	w := NewWizard(7, 42, "Nadeesha Silva", KindResign, testNow)
	w.SetReason("Relocation")
	w.SetDetails("2025-10-20", "moving to Kandy")
	w.Next()
	w.Next()
	return w
}

func TestNewWizardStartsAtReasonStep(t *testing.T) {
	w := NewWizard(7, 42, "Nadeesha Silva", KindResign, testNow)
	assert.Equal(t, StepReason, w.Step)
	assert.Equal(t, StateDraft, w.State)
	assert.False(t, w.Confirmed)
}

func TestSetReasonValidatesAgainstKind(t *testing.T) {
	w := NewWizard(7, 42, "Nadeesha Silva", KindResign, testNow)

	assert.False(t, w.SetReason("Misconduct"), "terminate reason on a resign wizard")
	assert.Equal(t, StateDraft, w.State)

	assert.True(t, w.SetReason("Relocation"))
	assert.Equal(t, StateAwaitingConfirmation, w.State)
}

func TestTerminateReasons(t *testing.T) {
	w := NewWizard(7, 42, "Nadeesha Silva", KindTerminate, testNow)
	assert.True(t, w.SetReason("Performance Issues"))
	assert.False(t, NewWizard(7, 43, "x", KindTerminate, testNow).SetReason("Relocation"))
}

func TestNextRequiresReason(t *testing.T) {
	w := NewWizard(7, 42, "Nadeesha Silva", KindResign, testNow)
	assert.False(t, w.Next())
	assert.Equal(t, StepReason, w.Step)

	require.True(t, w.SetReason("Career Change"))
	assert.True(t, w.Next())
	assert.Equal(t, StepDetails, w.Step)
	assert.True(t, w.Next())
	assert.Equal(t, StepConfirm, w.Step)
	assert.False(t, w.Next(), "cannot advance past the confirm step")
}

func TestBackKeepsEnteredData(t *testing.T) {
	w := confirmReadyWizard()
	assert.True(t, w.Back())
	assert.Equal(t, StepDetails, w.Step)
	assert.Equal(t, "Relocation", w.ReasonCategory)
	assert.Equal(t, "2025-10-20", w.EffectiveDate)

	assert.True(t, w.Back())
	assert.Equal(t, StepReason, w.Step)
	assert.False(t, w.Back())
}

func TestApplyProgressBelowThresholdDoesNothing(t *testing.T) {
	w := confirmReadyWizard()
	for _, p := range []float64{0.1, 0.5, 0.79} {
		assert.False(t, w.ApplyProgress(p), "progress %v", p)
		assert.False(t, w.Confirmed)
		assert.Equal(t, StateAwaitingConfirmation, w.State)
	}
}

func TestApplyProgressFiresExactlyOnce(t *testing.T) {
	w := confirmReadyWizard()

	assert.True(t, w.ApplyProgress(0.81))
	assert.True(t, w.Confirmed)

	assert.False(t, w.ApplyProgress(0.81))
	assert.False(t, w.ApplyProgress(0.95))
	assert.False(t, w.ApplyProgress(1.0))
}

func TestApplyProgressAtExactThreshold(t *testing.T) {
	w := confirmReadyWizard()
	assert.True(t, w.ApplyProgress(ConfirmThreshold))
}

func TestApplyProgressIgnoredOffConfirmStep(t *testing.T) {
	w := NewWizard(7, 42, "Nadeesha Silva", KindResign, testNow)
	require.True(t, w.SetReason("Relocation"))
	require.Equal(t, StepReason, w.Step)

	assert.False(t, w.ApplyProgress(0.9))
	assert.False(t, w.Confirmed)
}

func TestReasonCategoriesCopied(t *testing.T) {
	cats := ReasonCategories(KindResign)
	require.NotEmpty(t, cats)
	cats[0] = "tampered"
	assert.Equal(t, "Voluntary Resignation", ReasonCategories(KindResign)[0])
}

func TestWithdrawDeadline(t *testing.T) {
	req := OffboardingRequest{}
	assert.True(t, req.WithdrawDeadline().IsZero())
}
