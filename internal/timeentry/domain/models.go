// Package domain contains the time entry entity and its service contract.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// TimeEntry is a unit of billable work. A nil InvoiceID means the entry
// belongs to the client's current open period; once stamped with an
// invoice id the entry is frozen.
type TimeEntry struct {
	ID       snowflake.ID `gorm:"primaryKey" json:"id"`
	ClientID string       `gorm:"not null;index" json:"clientId"`
	Date     time.Time    `gorm:"not null" json:"date"`

	// Time of day in "15:04" form. Absent for flat-rate clients.
	StartTime *string `json:"startTime,omitempty"`
	EndTime   *string `json:"endTime,omitempty"`

	TotalHours decimal.Decimal `gorm:"type:numeric;not null" json:"totalHours"`

	Tasks       string         `json:"tasks"`
	Notes       string         `json:"notes"`
	Attachments datatypes.JSON `json:"attachments,omitempty"`
	Links       datatypes.JSON `json:"links,omitempty"`

	InvoiceID *snowflake.ID `gorm:"index" json:"invoiceId,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

// TableName sets the database table name.
func (TimeEntry) TableName() string { return "time_entries" }

// Archived reports whether the entry has been frozen into an invoice.
func (e TimeEntry) Archived() bool { return e.InvoiceID != nil }

// DisplayRange renders the start/end times for dashboards, empty when the
// entry has no time-of-day component.
func (e TimeEntry) DisplayRange() string {
	if e.StartTime == nil || e.EndTime == nil {
		return ""
	}
	return *e.StartTime + " - " + *e.EndTime
}
