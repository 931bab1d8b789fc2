// Package domain contains the client entity and its service contract.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BillingMode selects how a client's time is priced.
type BillingMode string

const (
	BillingModeHourly BillingMode = "hourly"
	BillingModeFlat   BillingMode = "flat"
	BillingModeUnset  BillingMode = "unset"
)

// Client is a consulting client. At most one of HourlyRate/FlatRate is set
// at a time; the service enforces this at the edit boundary.
type Client struct {
	ID          string           `gorm:"primaryKey" json:"id"`
	Name        string           `gorm:"not null" json:"name"`
	BillingMode BillingMode      `gorm:"type:text;not null;default:'unset'" json:"billingMode"`
	HourlyRate  *decimal.Decimal `gorm:"type:numeric" json:"hourlyRate,omitempty"`
	FlatRate    *decimal.Decimal `gorm:"type:numeric" json:"flatRate,omitempty"`

	// Open billing period markers. A non-nil PeriodStart means a period
	// is open.
	PeriodStart *time.Time `json:"periodStart,omitempty"`
	PeriodEnd   *time.Time `json:"periodEnd,omitempty"`

	// InvoiceSeq counts invoices ever created for this client. Incremented
	// atomically inside the archive transaction; equals the count of
	// existing invoices, so the next invoice number is seq+1.
	InvoiceSeq int64 `gorm:"not null;default:0" json:"-"`

	Notes     string    `json:"notes"`
	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

// TableName sets the database table name.
func (Client) TableName() string { return "clients" }

// PeriodOpen reports whether the client has an open billing period.
func (c Client) PeriodOpen() bool { return c.PeriodStart != nil }
