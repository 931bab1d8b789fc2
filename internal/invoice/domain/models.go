// Package domain contains the invoice snapshot entity.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Invoice is the immutable snapshot of a closed billing period. All totals
// are rounded to 2 decimals at write time. Only the rate corrector may
// rewrite TotalTime and GrandTotal after creation; the paid flag is the
// one other mutable field.
type Invoice struct {
	ID            snowflake.ID `gorm:"primaryKey" json:"id"`
	ClientID      string       `gorm:"not null;index" json:"clientId"`
	InvoiceNumber string       `gorm:"not null" json:"invoiceNumber"`

	PeriodStart time.Time `gorm:"not null" json:"periodStart"`
	PeriodEnd   time.Time `gorm:"not null" json:"periodEnd"`

	TotalTime          decimal.Decimal `gorm:"type:numeric;not null" json:"totalTime"`
	TotalSubscriptions decimal.Decimal `gorm:"type:numeric;not null" json:"totalSubscriptions"`
	TotalPayables      decimal.Decimal `gorm:"type:numeric;not null" json:"totalPayables"`
	GrandTotal         decimal.Decimal `gorm:"type:numeric;not null" json:"grandTotal"`

	// RatePending marks an invoice archived before its rate was decided:
	// TotalTime holds 0 but the time cost is "not yet priced", not "no
	// charge". Cleared by a rate correction.
	RatePending bool `gorm:"not null;default:false" json:"ratePending"`

	Notes    string     `json:"notes"`
	Paid     bool       `gorm:"not null;default:false" json:"paid"`
	PaidDate *time.Time `json:"paidDate,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
}

// TableName sets the database table name.
func (Invoice) TableName() string { return "invoices" }
