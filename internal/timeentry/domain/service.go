package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type CreateTimeEntryRequest struct {
	ClientID    string          `json:"clientId"`
	Date        time.Time       `json:"date"`
	StartTime   *string         `json:"startTime"`
	EndTime     *string         `json:"endTime"`
	TotalHours  decimal.Decimal `json:"totalHours"`
	Tasks       string          `json:"tasks"`
	Notes       string          `json:"notes"`
	Attachments datatypes.JSON  `json:"attachments"`
	Links       datatypes.JSON  `json:"links"`
}

type UpdateTimeEntryRequest struct {
	Date        *time.Time       `json:"date"`
	StartTime   *string          `json:"startTime"`
	EndTime     *string          `json:"endTime"`
	TotalHours  *decimal.Decimal `json:"totalHours"`
	Tasks       *string          `json:"tasks"`
	Notes       *string          `json:"notes"`
	Attachments datatypes.JSON   `json:"attachments"`
	Links       datatypes.JSON   `json:"links"`
}

type Service interface {
	Create(ctx context.Context, req CreateTimeEntryRequest) (TimeEntry, error)
	Get(ctx context.Context, id snowflake.ID) (TimeEntry, error)
	// ListOpen returns the client's current-period entries (invoice id null).
	ListOpen(ctx context.Context, clientID string) ([]TimeEntry, error)
	ListByInvoice(ctx context.Context, invoiceID snowflake.ID) ([]TimeEntry, error)
	Update(ctx context.Context, id snowflake.ID, req UpdateTimeEntryRequest) (TimeEntry, error)
	Delete(ctx context.Context, id snowflake.ID) error
}

var (
	ErrNotFound     = errors.New("time_entry_not_found")
	ErrArchived     = errors.New("time_entry_archived")
	ErrInvalidHours = errors.New("invalid_hours")
)
