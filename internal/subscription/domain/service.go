package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type CreateSubscriptionRequest struct {
	ClientID     string          `json:"clientId"`
	Name         string          `json:"name"`
	Category     string          `json:"category"`
	BillingCycle BillingCycle    `json:"billingCycle"`
	Amount       decimal.Decimal `json:"amount"`
	RenewalDate  *time.Time      `json:"renewalDate"`
	Notes        string          `json:"notes"`
	Attachments  datatypes.JSON  `json:"attachments"`
	Links        datatypes.JSON  `json:"links"`
}

type UpdateSubscriptionRequest struct {
	Name         *string          `json:"name"`
	Category     *string          `json:"category"`
	BillingCycle *BillingCycle    `json:"billingCycle"`
	Amount       *decimal.Decimal `json:"amount"`
	RenewalDate  *time.Time       `json:"renewalDate"`
	Notes        *string          `json:"notes"`
	Attachments  datatypes.JSON   `json:"attachments"`
	Links        datatypes.JSON   `json:"links"`
}

type Service interface {
	Create(ctx context.Context, req CreateSubscriptionRequest) (Subscription, error)
	Get(ctx context.Context, id snowflake.ID) (Subscription, error)
	ListOpen(ctx context.Context, clientID string) ([]Subscription, error)
	ListByInvoice(ctx context.Context, invoiceID snowflake.ID) ([]Subscription, error)
	Update(ctx context.Context, id snowflake.ID, req UpdateSubscriptionRequest) (Subscription, error)
	Delete(ctx context.Context, id snowflake.ID) error
}

var (
	ErrNotFound            = errors.New("subscription_not_found")
	ErrArchived            = errors.New("subscription_archived")
	ErrInvalidBillingCycle = errors.New("invalid_billing_cycle")
	ErrInvalidAmount       = errors.New("invalid_amount")
	ErrInvalidName         = errors.New("invalid_name")
)
