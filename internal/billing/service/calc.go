package service

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/tallyworks/tally/internal/billing/domain"
	clientdomain "github.com/tallyworks/tally/internal/client/domain"
	payabledomain "github.com/tallyworks/tally/internal/payable/domain"
	subscriptiondomain "github.com/tallyworks/tally/internal/subscription/domain"
	timeentrydomain "github.com/tallyworks/tally/internal/timeentry/domain"
)

var twelve = decimal.NewFromInt(12)

// ResolveRates applies override > stored > none precedence per rate. A TBD
// request suppresses both. The resolver does not enforce mutual exclusion;
// when both come back non-nil the flat rate wins downstream.
func ResolveRates(ov domain.RateOverrides, cl clientdomain.Client) (hourly, flat *decimal.Decimal) {
	if ov.TBD {
		return nil, nil
	}

	hourly = cl.HourlyRate
	if ov.HourlySet {
		hourly = ov.Hourly
	}
	flat = cl.FlatRate
	if ov.FlatSet {
		flat = ov.Flat
	}
	return hourly, flat
}

// TimeCost is the priced value of a set of time entries. Pending means no
// rate was available (explicit TBD or none stored): the amount is 0 but the
// period is "not yet priced" rather than free.
type TimeCost struct {
	Amount  decimal.Decimal
	Pending bool
}

// ComputeTimeCost prices time entries. Flat billing is period-based: the
// flat amount applies independent of hours, and wins when both rates are
// somehow set. Hourly billing is sum(totalHours) x rate.
func ComputeTimeCost(entries []timeentrydomain.TimeEntry, hourly, flat *decimal.Decimal, tbd bool) TimeCost {
	if tbd {
		return TimeCost{Pending: true}
	}
	if flat != nil {
		return TimeCost{Amount: *flat}
	}
	if hourly != nil {
		return TimeCost{Amount: SumHours(entries).Mul(*hourly)}
	}
	return TimeCost{Pending: true}
}

// SumHours totals the hours across entries.
func SumHours(entries []timeentrydomain.TimeEntry) decimal.Decimal {
	total := decimal.Zero
	for _, entry := range entries {
		total = total.Add(entry.TotalHours)
	}
	return total
}

// SubscriptionTotals normalizes mixed billing cycles. Annual is always
// Monthly x 12. No rounding here; that happens only at snapshot write.
type SubscriptionTotals struct {
	Monthly decimal.Decimal
	Annual  decimal.Decimal
}

// NormalizeSubscriptions folds annual subscriptions into a monthly
// equivalent (amount/12) and sums.
func NormalizeSubscriptions(subs []subscriptiondomain.Subscription) SubscriptionTotals {
	monthly := decimal.Zero
	for _, sub := range subs {
		if sub.BillingCycle == subscriptiondomain.BillingCycleMonthly {
			monthly = monthly.Add(sub.Amount)
		} else {
			monthly = monthly.Add(sub.Amount.Div(twelve))
		}
	}
	return SubscriptionTotals{
		Monthly: monthly,
		Annual:  monthly.Mul(twelve),
	}
}

// SumPayables totals open payables. Paid status is a cash-flow flag, not a
// billing-inclusion flag, so paid and unpaid both count.
func SumPayables(payables []payabledomain.Payable) decimal.Decimal {
	total := decimal.Zero
	for _, p := range payables {
		total = total.Add(p.Amount)
	}
	return total
}

// FormatInvoiceNumber renders the client-scoped sequential identifier,
// e.g. INV-acme-001. Uniqueness is per client only.
func FormatInvoiceNumber(clientID string, seq int64) string {
	return fmt.Sprintf("INV-%s-%03d", clientID, seq)
}
