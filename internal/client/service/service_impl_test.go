package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tallyworks/tally/internal/client/domain"
	"github.com/tallyworks/tally/internal/clock"
	"github.com/tallyworks/tally/pkg/repository"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

func decPtr(s string) *decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return &d
}

func newTestService(t *testing.T) (*Service, *clock.FakeClock) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Client{}))

	fc := clock.NewFakeClock(time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC))

	svc := &Service{
		db:    db,
		log:   zaptest.NewLogger(t),
		clock: fc,
		repo:  repository.ProvideStore[domain.Client](db),
	}
	return svc, fc
}

func TestCreate_SlugIDs(t *testing.T) {
	svc, _ := newTestService(t)

	cl, err := svc.Create(context.Background(), domain.CreateClientRequest{Name: "Acme Corp"})
	require.NoError(t, err)

	assert.Equal(t, "acme-corp", cl.ID)
	assert.Equal(t, "Acme Corp", cl.Name)
	assert.Equal(t, domain.BillingModeUnset, cl.BillingMode)
}

func TestCreate_DuplicateName(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(context.Background(), domain.CreateClientRequest{Name: "Acme"})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), domain.CreateClientRequest{Name: "acme"})
	assert.ErrorIs(t, err, domain.ErrClientExists)
}

func TestCreate_RateRules(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(context.Background(), domain.CreateClientRequest{
		Name:       "Both Rates",
		HourlyRate: decPtr("100"),
		FlatRate:   decPtr("2000"),
	})
	assert.ErrorIs(t, err, domain.ErrRateConflict)

	_, err = svc.Create(context.Background(), domain.CreateClientRequest{
		Name:       "Negative",
		HourlyRate: decPtr("-5"),
	})
	assert.ErrorIs(t, err, domain.ErrNegativeRate)

	cl, err := svc.Create(context.Background(), domain.CreateClientRequest{
		Name:       "Hourly Co",
		HourlyRate: decPtr("100"),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.BillingModeHourly, cl.BillingMode)
	require.NotNil(t, cl.HourlyRate)
	assert.Nil(t, cl.FlatRate)
}

func TestUpdate_SwitchBillingMode(t *testing.T) {
	svc, _ := newTestService(t)

	cl, err := svc.Create(context.Background(), domain.CreateClientRequest{
		Name:       "Acme",
		HourlyRate: decPtr("100"),
	})
	require.NoError(t, err)

	// Switching to flat requires explicitly clearing the hourly rate.
	updated, err := svc.Update(context.Background(), cl.ID, domain.UpdateClientRequest{
		HourlyRateSet: true,
		HourlyRate:    nil,
		FlatRateSet:   true,
		FlatRate:      decPtr("2500"),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.BillingModeFlat, updated.BillingMode)
	assert.Nil(t, updated.HourlyRate)
	require.NotNil(t, updated.FlatRate)
	assert.Equal(t, "2500.00", updated.FlatRate.StringFixed(2))

	// Setting flat while hourly is still stored is a conflict.
	_, err = svc.Update(context.Background(), cl.ID, domain.UpdateClientRequest{
		HourlyRateSet: true,
		HourlyRate:    decPtr("100"),
	})
	assert.ErrorIs(t, err, domain.ErrRateConflict)
}

func TestUpdate_ClearBothRates(t *testing.T) {
	svc, _ := newTestService(t)

	cl, err := svc.Create(context.Background(), domain.CreateClientRequest{
		Name:       "Acme",
		HourlyRate: decPtr("100"),
	})
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), cl.ID, domain.UpdateClientRequest{
		HourlyRateSet: true,
		HourlyRate:    nil,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.BillingModeUnset, updated.BillingMode)
	assert.Nil(t, updated.HourlyRate)
	assert.Nil(t, updated.FlatRate)
}

func TestOpenPeriod(t *testing.T) {
	svc, _ := newTestService(t)

	cl, err := svc.Create(context.Background(), domain.CreateClientRequest{Name: "Acme"})
	require.NoError(t, err)

	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)

	_, err = svc.OpenPeriod(context.Background(), cl.ID, domain.OpenPeriodRequest{
		PeriodStart: &end,
		PeriodEnd:   &start,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidPeriod)

	updated, err := svc.OpenPeriod(context.Background(), cl.ID, domain.OpenPeriodRequest{
		PeriodStart: &start,
		PeriodEnd:   &end,
	})
	require.NoError(t, err)
	assert.True(t, updated.PeriodOpen())

	// Clearing both markers closes the period without archiving.
	updated, err = svc.OpenPeriod(context.Background(), cl.ID, domain.OpenPeriodRequest{})
	require.NoError(t, err)
	assert.False(t, updated.PeriodOpen())
	assert.Nil(t, updated.PeriodEnd)
}

func TestGet_NotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Get(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
