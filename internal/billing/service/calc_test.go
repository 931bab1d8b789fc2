package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/tallyworks/tally/internal/billing/domain"
	clientdomain "github.com/tallyworks/tally/internal/client/domain"
	payabledomain "github.com/tallyworks/tally/internal/payable/domain"
	subscriptiondomain "github.com/tallyworks/tally/internal/subscription/domain"
	timeentrydomain "github.com/tallyworks/tally/internal/timeentry/domain"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func entriesWithHours(hours ...string) []timeentrydomain.TimeEntry {
	out := make([]timeentrydomain.TimeEntry, 0, len(hours))
	for _, h := range hours {
		out = append(out, timeentrydomain.TimeEntry{TotalHours: dec(h)})
	}
	return out
}

func TestResolveRates(t *testing.T) {
	stored := clientdomain.Client{
		HourlyRate: decPtr("100"),
	}

	tests := []struct {
		name       string
		overrides  domain.RateOverrides
		client     clientdomain.Client
		wantHourly *decimal.Decimal
		wantFlat   *decimal.Decimal
	}{
		{
			name:       "no overrides falls back to stored rate",
			client:     stored,
			wantHourly: decPtr("100"),
		},
		{
			name:       "override replaces stored rate",
			overrides:  domain.RateOverrides{HourlySet: true, Hourly: decPtr("150")},
			client:     stored,
			wantHourly: decPtr("150"),
		},
		{
			name:      "explicit null override suppresses stored rate",
			overrides: domain.RateOverrides{HourlySet: true, Hourly: nil},
			client:    stored,
		},
		{
			name:      "flat override on hourly client",
			overrides: domain.RateOverrides{FlatSet: true, Flat: decPtr("2000")},
			client:    stored,
			wantHourly: decPtr("100"),
			wantFlat:   decPtr("2000"),
		},
		{
			name:      "tbd suppresses everything",
			overrides: domain.RateOverrides{TBD: true, HourlySet: true, Hourly: decPtr("150")},
			client:    stored,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hourly, flat := ResolveRates(tt.overrides, tt.client)

			if tt.wantHourly == nil {
				assert.Nil(t, hourly)
			} else {
				assert.NotNil(t, hourly)
				assert.True(t, tt.wantHourly.Equal(*hourly))
			}
			if tt.wantFlat == nil {
				assert.Nil(t, flat)
			} else {
				assert.NotNil(t, flat)
				assert.True(t, tt.wantFlat.Equal(*flat))
			}
		})
	}
}

func TestComputeTimeCost_Hourly(t *testing.T) {
	cost := ComputeTimeCost(entriesWithHours("2", "1.5", "1.5"), decPtr("100"), nil, false)

	assert.False(t, cost.Pending)
	assert.Equal(t, "500.00", cost.Amount.StringFixed(2))
}

func TestComputeTimeCost_FlatIgnoresHours(t *testing.T) {
	flat := decPtr("2500")

	few := ComputeTimeCost(entriesWithHours("1"), nil, flat, false)
	many := ComputeTimeCost(entriesWithHours("10", "20", "30"), nil, flat, false)
	none := ComputeTimeCost(nil, nil, flat, false)

	assert.Equal(t, "2500.00", few.Amount.StringFixed(2))
	assert.Equal(t, "2500.00", many.Amount.StringFixed(2))
	assert.Equal(t, "2500.00", none.Amount.StringFixed(2))
}

func TestComputeTimeCost_FlatWinsOverHourly(t *testing.T) {
	cost := ComputeTimeCost(entriesWithHours("8"), decPtr("100"), decPtr("300"), false)

	assert.Equal(t, "300.00", cost.Amount.StringFixed(2))
}

func TestComputeTimeCost_Pending(t *testing.T) {
	tbd := ComputeTimeCost(entriesWithHours("8"), decPtr("100"), nil, true)
	noRate := ComputeTimeCost(entriesWithHours("8"), nil, nil, false)

	assert.True(t, tbd.Pending)
	assert.True(t, tbd.Amount.IsZero())
	assert.True(t, noRate.Pending)
	assert.True(t, noRate.Amount.IsZero())
}

func TestNormalizeSubscriptions(t *testing.T) {
	subs := []subscriptiondomain.Subscription{
		{BillingCycle: subscriptiondomain.BillingCycleMonthly, Amount: dec("20")},
		{BillingCycle: subscriptiondomain.BillingCycleAnnual, Amount: dec("120")},
	}

	totals := NormalizeSubscriptions(subs)

	assert.Equal(t, "30.00", totals.Monthly.StringFixed(2))
	assert.Equal(t, "360.00", totals.Annual.StringFixed(2))
}

func TestNormalizeSubscriptions_AnnualIsAlwaysTwelveTimesMonthly(t *testing.T) {
	// 100/12 does not terminate; the invariant must still hold to 2 decimals.
	subs := []subscriptiondomain.Subscription{
		{BillingCycle: subscriptiondomain.BillingCycleAnnual, Amount: dec("100")},
		{BillingCycle: subscriptiondomain.BillingCycleMonthly, Amount: dec("7.99")},
	}

	totals := NormalizeSubscriptions(subs)

	assert.Equal(t, totals.Monthly.Mul(decimal.NewFromInt(12)).StringFixed(2), totals.Annual.StringFixed(2))
	assert.Equal(t, "195.88", totals.Annual.StringFixed(2))
}

func TestNormalizeSubscriptions_Empty(t *testing.T) {
	totals := NormalizeSubscriptions(nil)

	assert.True(t, totals.Monthly.IsZero())
	assert.True(t, totals.Annual.IsZero())
}

func TestSumPayables_PaidStatusDoesNotMatter(t *testing.T) {
	total := SumPayables([]payabledomain.Payable{
		{Amount: dec("25.50"), Paid: true},
		{Amount: dec("14.50"), Paid: false},
	})

	assert.Equal(t, "40.00", total.StringFixed(2))
}

func TestFormatInvoiceNumber(t *testing.T) {
	assert.Equal(t, "INV-acme-001", FormatInvoiceNumber("acme", 1))
	assert.Equal(t, "INV-acme-012", FormatInvoiceNumber("acme", 12))
	assert.Equal(t, "INV-acme-1000", FormatInvoiceNumber("acme", 1000))
	assert.Equal(t, "INV-big-co-003", FormatInvoiceNumber("big-co", 3))
}
