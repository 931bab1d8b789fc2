// Package domain defines the billing engine contract: period archival and
// post-hoc invoice rate correction.
package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	invoicedomain "github.com/tallyworks/tally/internal/invoice/domain"
)

// RateOverrides carries caller-supplied rate inputs for an archive run.
// The Set flags distinguish "not provided" from an explicit null: an
// override provided as null suppresses the client's stored rate.
type RateOverrides struct {
	HourlySet bool             `json:"-"`
	Hourly    *decimal.Decimal `json:"hourlyRate"`
	FlatSet   bool             `json:"-"`
	Flat      *decimal.Decimal `json:"flatRate"`

	// TBD defers pricing: both rates are treated as absent and the
	// archived time cost is 0, flagged rate-pending on the invoice.
	TBD bool `json:"rateTbd"`
}

type ArchiveRequest struct {
	ClientID  string        `json:"clientId"`
	Overrides RateOverrides `json:"overrides"`

	// CopySubscriptionsForward re-creates each archived subscription as a
	// fresh current-period record.
	CopySubscriptionsForward bool   `json:"copySubscriptionsForward"`
	Notes                    string `json:"notes"`
}

// CorrectRateRequest rewrites an archived invoice's time cost after a
// retroactive rate decision. Exactly one of HourlyRate/FlatRate is given;
// TotalHours is the invoice's already-archived hour count.
type CorrectRateRequest struct {
	InvoiceID  snowflake.ID     `json:"-"`
	HourlyRate *decimal.Decimal `json:"hourlyRate"`
	FlatRate   *decimal.Decimal `json:"flatRate"`
	TotalHours decimal.Decimal  `json:"totalHours"`
}

type Service interface {
	// Archive snapshots the client's current period into a new invoice,
	// stamps the source records with the invoice id, optionally rolls
	// subscriptions forward, and clears the open-period markers. The whole
	// sequence is atomic.
	Archive(ctx context.Context, req ArchiveRequest) (invoicedomain.Invoice, error)

	// CorrectRate recomputes TotalTime and GrandTotal on an archived
	// invoice; every other snapshot field is preserved. Idempotent.
	CorrectRate(ctx context.Context, req CorrectRateRequest) (invoicedomain.Invoice, error)
}

var (
	ErrNothingToArchive = errors.New("nothing_to_archive")
	ErrRateConflict     = errors.New("rate_conflict")
	ErrRateRequired     = errors.New("rate_required")
)
