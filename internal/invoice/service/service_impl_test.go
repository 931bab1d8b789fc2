package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tallyworks/tally/internal/clock"
	"github.com/tallyworks/tally/internal/invoice/domain"
	"github.com/tallyworks/tally/pkg/repository"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (*Service, *snowflake.Node, *clock.FakeClock) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Invoice{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	fc := clock.NewFakeClock(time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC))

	svc := &Service{
		db:    db,
		log:   zaptest.NewLogger(t),
		clock: fc,
		repo:  repository.ProvideStore[domain.Invoice](db),
	}
	return svc, node, fc
}

func seedInvoice(t *testing.T, svc *Service, node *snowflake.Node, clientID, number string) domain.Invoice {
	t.Helper()
	inv := domain.Invoice{
		ID:            node.Generate(),
		ClientID:      clientID,
		InvoiceNumber: number,
		PeriodStart:   time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:     time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC),
		GrandTotal:    decimal.NewFromInt(100),
		CreatedAt:     svc.clock.Now(),
	}
	require.NoError(t, svc.db.Create(&inv).Error)
	return inv
}

func TestList_FiltersByClient(t *testing.T) {
	svc, node, _ := newTestService(t)
	seedInvoice(t, svc, node, "acme", "INV-acme-001")
	seedInvoice(t, svc, node, "acme", "INV-acme-002")
	seedInvoice(t, svc, node, "globex", "INV-globex-001")

	all, err := svc.List(context.Background(), domain.ListInvoicesRequest{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	acme, err := svc.List(context.Background(), domain.ListInvoicesRequest{ClientID: "acme"})
	require.NoError(t, err)
	assert.Len(t, acme, 2)
}

func TestSetPaid(t *testing.T) {
	svc, node, fc := newTestService(t)
	inv := seedInvoice(t, svc, node, "acme", "INV-acme-001")

	// Marking paid without a date stamps today.
	updated, err := svc.SetPaid(context.Background(), inv.ID, domain.SetPaidRequest{Paid: true})
	require.NoError(t, err)
	assert.True(t, updated.Paid)
	require.NotNil(t, updated.PaidDate)
	assert.Equal(t, fc.Now(), updated.PaidDate.UTC())

	// Unmarking clears the date.
	updated, err = svc.SetPaid(context.Background(), inv.ID, domain.SetPaidRequest{Paid: false})
	require.NoError(t, err)
	assert.False(t, updated.Paid)
	assert.Nil(t, updated.PaidDate)

	// An explicit date is preserved.
	when := time.Date(2025, 4, 15, 0, 0, 0, 0, time.UTC)
	updated, err = svc.SetPaid(context.Background(), inv.ID, domain.SetPaidRequest{Paid: true, PaidDate: &when})
	require.NoError(t, err)
	require.NotNil(t, updated.PaidDate)
	assert.Equal(t, when, updated.PaidDate.UTC())
}

func TestSetPaid_NotFound(t *testing.T) {
	svc, node, _ := newTestService(t)

	_, err := svc.SetPaid(context.Background(), node.Generate(), domain.SetPaidRequest{Paid: true})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
