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
	clientdomain "github.com/tallyworks/tally/internal/client/domain"
	"github.com/tallyworks/tally/internal/clock"
	"github.com/tallyworks/tally/internal/timeentry/domain"
	"github.com/tallyworks/tally/pkg/repository"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func newTestService(t *testing.T) (*Service, *gorm.DB, *clock.FakeClock) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&clientdomain.Client{}, &domain.TimeEntry{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	fc := clock.NewFakeClock(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))

	svc := &Service{
		db:         db,
		log:        zaptest.NewLogger(t),
		clock:      fc,
		genID:      node,
		repo:       repository.ProvideStore[domain.TimeEntry](db),
		clientRepo: repository.ProvideStore[clientdomain.Client](db),
	}

	cl := clientdomain.Client{ID: "acme", Name: "acme", BillingMode: clientdomain.BillingModeUnset, CreatedAt: fc.Now(), UpdatedAt: fc.Now()}
	require.NoError(t, db.Create(&cl).Error)

	return svc, db, fc
}

func TestCreate(t *testing.T) {
	svc, _, fc := newTestService(t)

	start := "09:00"
	end := "11:30"
	entry, err := svc.Create(context.Background(), domain.CreateTimeEntryRequest{
		ClientID:   "acme",
		Date:       fc.Now(),
		StartTime:  &start,
		EndTime:    &end,
		TotalHours: dec("2.5"),
		Tasks:      "code review",
	})
	require.NoError(t, err)

	assert.Equal(t, "2.50", entry.TotalHours.StringFixed(2))
	assert.Equal(t, "09:00 - 11:30", entry.DisplayRange())
	assert.False(t, entry.Archived())
}

func TestCreate_Validation(t *testing.T) {
	svc, _, fc := newTestService(t)

	_, err := svc.Create(context.Background(), domain.CreateTimeEntryRequest{
		ClientID:   "acme",
		Date:       fc.Now(),
		TotalHours: dec("-1"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidHours)

	_, err = svc.Create(context.Background(), domain.CreateTimeEntryRequest{
		ClientID:   "ghost",
		Date:       fc.Now(),
		TotalHours: dec("1"),
	})
	assert.ErrorIs(t, err, clientdomain.ErrNotFound)
}

func TestListOpen_ExcludesArchivedAndOrdersByDate(t *testing.T) {
	svc, db, fc := newTestService(t)
	base := fc.Now()

	later, err := svc.Create(context.Background(), domain.CreateTimeEntryRequest{
		ClientID: "acme", Date: base.AddDate(0, 0, 5), TotalHours: dec("1"),
	})
	require.NoError(t, err)
	earlier, err := svc.Create(context.Background(), domain.CreateTimeEntryRequest{
		ClientID: "acme", Date: base, TotalHours: dec("2"),
	})
	require.NoError(t, err)
	archived, err := svc.Create(context.Background(), domain.CreateTimeEntryRequest{
		ClientID: "acme", Date: base.AddDate(0, 0, 1), TotalHours: dec("3"),
	})
	require.NoError(t, err)

	invoiceID := svc.genID.Generate()
	require.NoError(t, db.Model(&domain.TimeEntry{}).
		Where("id = ?", archived.ID).
		Update("invoice_id", invoiceID).Error)

	open, err := svc.ListOpen(context.Background(), "acme")
	require.NoError(t, err)
	require.Len(t, open, 2)
	assert.Equal(t, earlier.ID, open[0].ID)
	assert.Equal(t, later.ID, open[1].ID)

	frozen, err := svc.ListByInvoice(context.Background(), invoiceID)
	require.NoError(t, err)
	require.Len(t, frozen, 1)
	assert.Equal(t, archived.ID, frozen[0].ID)
}

func TestUpdateAndDelete_RejectArchived(t *testing.T) {
	svc, db, fc := newTestService(t)

	entry, err := svc.Create(context.Background(), domain.CreateTimeEntryRequest{
		ClientID: "acme", Date: fc.Now(), TotalHours: dec("2"),
	})
	require.NoError(t, err)

	require.NoError(t, db.Model(&domain.TimeEntry{}).
		Where("id = ?", entry.ID).
		Update("invoice_id", svc.genID.Generate()).Error)

	hours := dec("3")
	_, err = svc.Update(context.Background(), entry.ID, domain.UpdateTimeEntryRequest{TotalHours: &hours})
	assert.ErrorIs(t, err, domain.ErrArchived)

	err = svc.Delete(context.Background(), entry.ID)
	assert.ErrorIs(t, err, domain.ErrArchived)
}

func TestUpdate_Patch(t *testing.T) {
	svc, _, fc := newTestService(t)

	entry, err := svc.Create(context.Background(), domain.CreateTimeEntryRequest{
		ClientID: "acme", Date: fc.Now(), TotalHours: dec("2"), Tasks: "draft",
	})
	require.NoError(t, err)

	hours := dec("2.75")
	tasks := "draft + revisions"
	updated, err := svc.Update(context.Background(), entry.ID, domain.UpdateTimeEntryRequest{
		TotalHours: &hours,
		Tasks:      &tasks,
	})
	require.NoError(t, err)

	assert.Equal(t, "2.75", updated.TotalHours.StringFixed(2))
	assert.Equal(t, "draft + revisions", updated.Tasks)
	assert.Equal(t, entry.Date.UTC(), updated.Date.UTC())
}
