// Package domain contains the subscription entity and its service contract.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// BillingCycle is how often a subscription bills.
type BillingCycle string

const (
	BillingCycleMonthly BillingCycle = "monthly"
	BillingCycleAnnual  BillingCycle = "annual"
)

// Subscription is a recurring cost tracked against a client. Same
// current/archived lifecycle as TimeEntry: nil InvoiceID means the current
// open period.
type Subscription struct {
	ID       snowflake.ID `gorm:"primaryKey" json:"id"`
	ClientID string       `gorm:"not null;index" json:"clientId"`

	Name         string          `gorm:"not null" json:"name"`
	Category     string          `json:"category"`
	BillingCycle BillingCycle    `gorm:"type:text;not null" json:"billingCycle"`
	Amount       decimal.Decimal `gorm:"type:numeric;not null" json:"amount"`
	RenewalDate  *time.Time      `json:"renewalDate,omitempty"`

	Notes       string         `json:"notes"`
	Attachments datatypes.JSON `json:"attachments,omitempty"`
	Links       datatypes.JSON `json:"links,omitempty"`

	InvoiceID *snowflake.ID `gorm:"index" json:"invoiceId,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

// TableName sets the database table name.
func (Subscription) TableName() string { return "subscriptions" }

// Archived reports whether the subscription has been frozen into an invoice.
func (s Subscription) Archived() bool { return s.InvoiceID != nil }

// CopyForward returns a fresh current-period clone with a new identity,
// used when the archiver rolls subscriptions into the next period.
func (s Subscription) CopyForward(id snowflake.ID, now time.Time) Subscription {
	return Subscription{
		ID:           id,
		ClientID:     s.ClientID,
		Name:         s.Name,
		Category:     s.Category,
		BillingCycle: s.BillingCycle,
		Amount:       s.Amount,
		RenewalDate:  s.RenewalDate,
		Notes:        s.Notes,
		Attachments:  s.Attachments,
		Links:        s.Links,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
