package billing

import (
	"testing"
	"time"

	xerrors "lsa-service/internal/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlansOrderedByDuration(t *testing.T) {
	plans := Plans()
	require.Len(t, plans, 4)

	for i := 1; i < len(plans); i++ {
		assert.Greater(t, plans[i].DurationMonths, plans[i-1].DurationMonths)
	}
}

func TestPlanPrices(t *testing.T) {
	expected := map[string]int64{
		"monthly":     5000,
		"quarterly":   14000,
		"half-yearly": 25000,
		"annual":      45000,
	}
	for id, price := range expected {
		plan, err := FindPlan(id)
		require.NoError(t, err)
		assert.Equal(t, price, plan.Price)
	}
}

func TestAnnualPlanPromoted(t *testing.T) {
	plan, err := FindPlan("annual")
	require.NoError(t, err)
	assert.True(t, plan.IsPromoted)
	assert.Equal(t, "25% OFF", plan.Savings)

	for _, id := range []string{"monthly", "quarterly", "half-yearly"} {
		p, err := FindPlan(id)
		require.NoError(t, err)
		assert.False(t, p.IsPromoted, "plan %s", id)
	}
}

func TestFindPlanUnknown(t *testing.T) {
	_, err := FindPlan("weekly")
	assert.ErrorIs(t, err, xerrors.ErrNotFound)
}

func TestNextRenewalDate(t *testing.T) {
	monthly, err := FindPlan("monthly")
	require.NoError(t, err)
	annual, err := FindPlan("annual")
	require.NoError(t, err)

	from := time.Date(2025, time.October, 3, 9, 30, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, time.November, 3, 9, 30, 0, 0, time.UTC), NextRenewalDate(monthly, from))
	assert.Equal(t, time.Date(2026, time.October, 3, 9, 30, 0, 0, time.UTC), NextRenewalDate(annual, from))
}

func TestNextRenewalDateClampsToMonthEnd(t *testing.T) {
	monthly, err := FindPlan("monthly")
	require.NoError(t, err)
	quarterly, err := FindPlan("quarterly")
	require.NoError(t, err)

	jan31 := time.Date(2025, time.January, 31, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, time.February, 28, 0, 0, 0, 0, time.UTC), NextRenewalDate(monthly, jan31))

	// Leap year February keeps the 29th.
	jan31leap := time.Date(2024, time.January, 31, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC), NextRenewalDate(monthly, jan31leap))

	// Oct 31 + 3 months lands on Jan 31 unclamped.
	oct31 := time.Date(2025, time.October, 31, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, time.January, 31, 0, 0, 0, 0, time.UTC), NextRenewalDate(quarterly, oct31))
}

func TestNextRenewalDateReproducible(t *testing.T) {
	monthly, err := FindPlan("monthly")
	require.NoError(t, err)

	from := time.Date(2025, time.October, 3, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, NextRenewalDate(monthly, from), NextRenewalDate(monthly, from))
}
