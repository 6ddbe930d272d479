// internal/domain/billing/catalog.go
package billing

import (
	"time"

	xerrors "lsa-service/internal/pkg/errors"

	"github.com/lib/pq"
)

// catalog is the static plan catalog, ordered by increasing duration.
// Prices are whole LKR.
var catalog = []SubscriptionPlan{
	{
		ID:             "monthly",
		Name:           "Monthly",
		Price:          5000,
		DurationMonths: 1,
		Description:    "Perfect for startups",
		Features: pq.StringArray{
			"Unlimited Therapist Management",
			"Basic Analytics",
			"Email Support",
			"Mobile App Access",
			"Standard Processing",
		},
	},
	{
		ID:             "quarterly",
		Name:           "Quarterly",
		Price:          14000,
		OriginalPrice:  15000,
		DurationMonths: 3,
		Description:    "Balanced growth solution",
		Features: pq.StringArray{
			"Everything in Monthly",
			"Advanced Analytics",
			"Priority Support",
			"Bulk Operations",
			"Custom Reports",
		},
	},
	{
		ID:             "half-yearly",
		Name:           "Half-Yearly",
		Price:          25000,
		OriginalPrice:  30000,
		DurationMonths: 6,
		Description:    "Seasonal growth boost",
		Features: pq.StringArray{
			"Everything in Quarterly",
			"Advanced Integrations",
			"Dedicated Support",
			"API Access",
			"Training Sessions",
		},
	},
	{
		ID:             "annual",
		Name:           "Annual",
		Price:          45000,
		OriginalPrice:  60000,
		DurationMonths: 12,
		Description:    "Best value with premium features",
		Features: pq.StringArray{
			"Everything in Half-Yearly",
			"Premium Analytics Dashboard",
			"24/7 Priority Support",
			"White-label Options",
			"Advanced Automation",
			"Compliance Tools",
		},
		IsPromoted: true,
		Savings:    "25% OFF",
	},
}

// Plans returns the catalog in duration order.
func Plans() []SubscriptionPlan {
	out := make([]SubscriptionPlan, len(catalog))
	copy(out, catalog)
	return out
}

// FindPlan retrieves a plan by ID.
func FindPlan(id string) (*SubscriptionPlan, error) {
	for i := range catalog {
		if catalog[i].ID == id {
			plan := catalog[i]
			return &plan, nil
		}
	}
	return nil, xerrors.ErrNotFound
}

// NextRenewalDate adds the plan's duration in calendar months to from,
// preserving the day of month where valid and clamping to month end
// otherwise (Jan 31 + 1 month = Feb 28/29). Reproducible given a plan and a
// reference date; never consults the wall clock.
func NextRenewalDate(plan *SubscriptionPlan, from time.Time) time.Time {
	y, m, d := from.Date()
	hh, mi, ss := from.Clock()

	target := m + time.Month(plan.DurationMonths)
	// Day 0 of the following month is the last day of the target month.
	lastDay := time.Date(y, target+1, 0, 0, 0, 0, 0, from.Location()).Day()
	if d > lastDay {
		d = lastDay
	}

	return time.Date(y, target, d, hh, mi, ss, from.Nanosecond(), from.Location())
}
