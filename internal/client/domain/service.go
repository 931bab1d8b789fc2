package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

type CreateClientRequest struct {
	Name       string           `json:"name"`
	HourlyRate *decimal.Decimal `json:"hourlyRate"`
	FlatRate   *decimal.Decimal `json:"flatRate"`
	Notes      string           `json:"notes"`
}

// UpdateClientRequest patches a client. Rate fields follow explicit-null
// semantics: a Set flag with a nil value clears the rate.
type UpdateClientRequest struct {
	Name  *string `json:"name"`
	Notes *string `json:"notes"`

	HourlyRateSet bool             `json:"-"`
	HourlyRate    *decimal.Decimal `json:"hourlyRate"`
	FlatRateSet   bool             `json:"-"`
	FlatRate      *decimal.Decimal `json:"flatRate"`
}

type OpenPeriodRequest struct {
	PeriodStart *time.Time `json:"periodStart"`
	PeriodEnd   *time.Time `json:"periodEnd"`
}

type Service interface {
	Create(ctx context.Context, req CreateClientRequest) (Client, error)
	Get(ctx context.Context, id string) (Client, error)
	List(ctx context.Context) ([]Client, error)
	Update(ctx context.Context, id string, req UpdateClientRequest) (Client, error)
	OpenPeriod(ctx context.Context, id string, req OpenPeriodRequest) (Client, error)
}

var (
	ErrNotFound      = errors.New("client_not_found")
	ErrClientExists  = errors.New("client_exists")
	ErrInvalidName   = errors.New("invalid_name")
	ErrRateConflict  = errors.New("rate_conflict")
	ErrNegativeRate  = errors.New("invalid_rate")
	ErrInvalidPeriod = errors.New("invalid_period")
)
