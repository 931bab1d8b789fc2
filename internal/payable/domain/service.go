package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type CreatePayableRequest struct {
	ClientID    string          `json:"clientId"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Date        time.Time       `json:"date"`
	Paid        bool            `json:"paid"`
	PaidDate    *time.Time      `json:"paidDate"`
	Notes       string          `json:"notes"`
	Attachments datatypes.JSON  `json:"attachments"`
	Links       datatypes.JSON  `json:"links"`

	// Mirror requests a pass-through twin on the proceeds client's ledger.
	Mirror bool `json:"mirror"`
}

type UpdatePayableRequest struct {
	Description *string          `json:"description"`
	Amount      *decimal.Decimal `json:"amount"`
	Date        *time.Time       `json:"date"`
	Paid        *bool            `json:"paid"`
	PaidDate    *time.Time       `json:"paidDate"`
	Notes       *string          `json:"notes"`
	Attachments datatypes.JSON   `json:"attachments"`
	Links       datatypes.JSON   `json:"links"`
}

type Service interface {
	Create(ctx context.Context, req CreatePayableRequest) (Payable, error)
	Get(ctx context.Context, id snowflake.ID) (Payable, error)
	ListOpen(ctx context.Context, clientID string) ([]Payable, error)
	ListByInvoice(ctx context.Context, invoiceID snowflake.ID) ([]Payable, error)
	// Update patches the payable and reconciles its mirror row, when one
	// exists, with the new description/amount/date/notes/attachments/links.
	Update(ctx context.Context, id snowflake.ID, req UpdatePayableRequest) (Payable, error)
	Delete(ctx context.Context, id snowflake.ID) error
}

var (
	ErrNotFound            = errors.New("payable_not_found")
	ErrArchived            = errors.New("payable_archived")
	ErrMirrorNotFound      = errors.New("mirror_not_found")
	ErrInvalidAmount       = errors.New("invalid_amount")
	ErrInvalidDescription  = errors.New("invalid_description")
	ErrPaidDateRequired    = errors.New("paid_date_required")
	ErrPaidDateWithoutPaid = errors.New("paid_date_without_paid")
	ErrNoProceedsClient    = errors.New("proceeds_client_not_configured")
)
