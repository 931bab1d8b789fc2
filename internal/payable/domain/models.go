// Package domain contains the payable entity and its service contract.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Payable is a one-off amount tracked against a client. For ordinary
// clients a payable offsets the invoice total; for the proceeds client it
// represents incoming money. Same current/archived lifecycle as TimeEntry.
type Payable struct {
	ID       snowflake.ID `gorm:"primaryKey" json:"id"`
	ClientID string       `gorm:"not null;index" json:"clientId"`

	Description string          `gorm:"not null" json:"description"`
	Amount      decimal.Decimal `gorm:"type:numeric;not null" json:"amount"`
	Date        time.Time       `gorm:"not null" json:"date"`

	// Cash-flow status. PaidDate is set iff Paid. Neither affects whether
	// the payable counts toward the period total.
	Paid     bool       `gorm:"not null;default:false" json:"paid"`
	PaidDate *time.Time `json:"paidDate,omitempty"`

	Notes       string         `json:"notes"`
	Attachments datatypes.JSON `json:"attachments,omitempty"`
	Links       datatypes.JSON `json:"links,omitempty"`

	InvoiceID *snowflake.ID `gorm:"index" json:"invoiceId,omitempty"`

	// MirrorID links a payable to its pass-through twin on the proceeds
	// client's ledger, so edits reconcile by key instead of by content.
	MirrorID *snowflake.ID `gorm:"index" json:"mirrorId,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

// TableName sets the database table name.
func (Payable) TableName() string { return "payables" }

// Archived reports whether the payable has been frozen into an invoice.
func (p Payable) Archived() bool { return p.InvoiceID != nil }
