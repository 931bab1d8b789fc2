package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

type ListInvoicesRequest struct {
	ClientID string `json:"clientId"`
}

type SetPaidRequest struct {
	Paid     bool       `json:"paid"`
	PaidDate *time.Time `json:"paidDate"`
}

type Service interface {
	List(ctx context.Context, req ListInvoicesRequest) ([]Invoice, error)
	GetByID(ctx context.Context, id snowflake.ID) (Invoice, error)
	SetPaid(ctx context.Context, id snowflake.ID, req SetPaidRequest) (Invoice, error)
}

var (
	ErrNotFound         = errors.New("invoice_not_found")
	ErrPaidDateRequired = errors.New("paid_date_required")
)
