package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/tallyworks/tally/internal/billing/domain"
	clientdomain "github.com/tallyworks/tally/internal/client/domain"
	"github.com/tallyworks/tally/internal/clock"
	"github.com/tallyworks/tally/internal/config"
	invoicedomain "github.com/tallyworks/tally/internal/invoice/domain"
	payabledomain "github.com/tallyworks/tally/internal/payable/domain"
	subscriptiondomain "github.com/tallyworks/tally/internal/subscription/domain"
	timeentrydomain "github.com/tallyworks/tally/internal/timeentry/domain"
	"github.com/tallyworks/tally/pkg/db/option"
	"github.com/tallyworks/tally/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
	genID *snowflake.Node

	proceedsClientID string

	clientRepo       repository.Repository[clientdomain.Client]
	timeEntryRepo    repository.Repository[timeentrydomain.TimeEntry]
	subscriptionRepo repository.Repository[subscriptiondomain.Subscription]
	payableRepo      repository.Repository[payabledomain.Payable]
	invoiceRepo      repository.Repository[invoicedomain.Invoice]
}

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
	GenID *snowflake.Node
	Cfg   config.Config
}

func NewService(p Params) domain.Service {
	return &Service{
		db:               p.DB,
		log:              p.Log.Named("billing.service"),
		clock:            p.Clock,
		genID:            p.GenID,
		proceedsClientID: p.Cfg.ProceedsClientID,
		clientRepo:       repository.ProvideStore[clientdomain.Client](p.DB),
		timeEntryRepo:    repository.ProvideStore[timeentrydomain.TimeEntry](p.DB),
		subscriptionRepo: repository.ProvideStore[subscriptiondomain.Subscription](p.DB),
		payableRepo:      repository.ProvideStore[payabledomain.Payable](p.DB),
		invoiceRepo:      repository.ProvideStore[invoicedomain.Invoice](p.DB),
	}
}

// Archive implements domain.Service. The full load-compute-snapshot-rekey
// sequence runs in one transaction: a failed step leaves no partial
// archive behind.
func (s *Service) Archive(ctx context.Context, req domain.ArchiveRequest) (invoicedomain.Invoice, error) {
	var inv invoicedomain.Invoice

	err := s.db.Transaction(func(tx *gorm.DB) error {
		clientRepo := s.clientRepo.WithTrx(tx)
		timeEntryRepo := s.timeEntryRepo.WithTrx(tx)
		subscriptionRepo := s.subscriptionRepo.WithTrx(tx)
		payableRepo := s.payableRepo.WithTrx(tx)
		invoiceRepo := s.invoiceRepo.WithTrx(tx)

		cl, err := clientRepo.FindOne(ctx, &clientdomain.Client{ID: req.ClientID})
		if err != nil {
			return err
		}
		if cl == nil {
			return clientdomain.ErrNotFound
		}

		entries, err := timeEntryRepo.Find(ctx,
			&timeentrydomain.TimeEntry{ClientID: req.ClientID},
			option.WhereNull("invoice_id"),
		)
		if err != nil {
			return err
		}
		subs, err := subscriptionRepo.Find(ctx,
			&subscriptiondomain.Subscription{ClientID: req.ClientID},
			option.WhereNull("invoice_id"),
		)
		if err != nil {
			return err
		}
		payables, err := payableRepo.Find(ctx,
			&payabledomain.Payable{ClientID: req.ClientID},
			option.WhereNull("invoice_id"),
		)
		if err != nil {
			return err
		}

		// Guard: an archive with nothing to snapshot is rejected outright,
		// regardless of period-date markers.
		if len(entries) == 0 && len(subs) == 0 && len(payables) == 0 {
			return domain.ErrNothingToArchive
		}

		hourly, flat := ResolveRates(req.Overrides, *cl)
		timeCost := ComputeTimeCost(deref(entries), hourly, flat, req.Overrides.TBD)
		subTotals := NormalizeSubscriptions(deref(subs))
		payablesTotal := SumPayables(deref(payables))

		// The proceeds client is paid, not billing: its invoices carry the
		// payables total alone. Everyone else bills time plus annualized
		// subscriptions, with payables deducted as reimbursement.
		var grandTotal decimal.Decimal
		if req.ClientID == s.proceedsClientID {
			grandTotal = payablesTotal
		} else {
			grandTotal = timeCost.Amount.Add(subTotals.Annual).Sub(payablesTotal)
		}

		now := s.clock.Now()
		periodStart, periodEnd := derivePeriod(*cl, deref(entries), deref(payables), now)

		seq, err := s.nextInvoiceSeq(ctx, tx, req.ClientID)
		if err != nil {
			return err
		}

		inv = invoicedomain.Invoice{
			ID:                 s.genID.Generate(),
			ClientID:           req.ClientID,
			InvoiceNumber:      FormatInvoiceNumber(req.ClientID, seq),
			PeriodStart:        periodStart,
			PeriodEnd:          periodEnd,
			TotalTime:          timeCost.Amount.Round(2),
			TotalSubscriptions: subTotals.Annual.Round(2),
			TotalPayables:      payablesTotal.Round(2),
			GrandTotal:         grandTotal.Round(2),
			RatePending:        timeCost.Pending,
			Notes:              req.Notes,
			CreatedAt:          now,
		}
		if err := invoiceRepo.Create(ctx, &inv); err != nil {
			return err
		}

		// Re-key the archived records. Entity types with zero rows are
		// skipped rather than issued as empty batch updates.
		stamp := map[string]any{"invoice_id": inv.ID, "updated_at": now}
		if len(entries) > 0 {
			if _, err := timeEntryRepo.UpdateWhere(ctx,
				&timeentrydomain.TimeEntry{ClientID: req.ClientID},
				stamp,
				option.WhereNull("invoice_id"),
			); err != nil {
				return err
			}
		}
		if len(subs) > 0 {
			if _, err := subscriptionRepo.UpdateWhere(ctx,
				&subscriptiondomain.Subscription{ClientID: req.ClientID},
				stamp,
				option.WhereNull("invoice_id"),
			); err != nil {
				return err
			}
		}
		if len(payables) > 0 {
			if _, err := payableRepo.UpdateWhere(ctx,
				&payabledomain.Payable{ClientID: req.ClientID},
				stamp,
				option.WhereNull("invoice_id"),
			); err != nil {
				return err
			}
		}

		if req.CopySubscriptionsForward && len(subs) > 0 {
			copies := make([]*subscriptiondomain.Subscription, 0, len(subs))
			for _, sub := range subs {
				clone := sub.CopyForward(s.genID.Generate(), now)
				copies = append(copies, &clone)
			}
			if err := subscriptionRepo.BatchCreate(ctx, copies); err != nil {
				return err
			}
		}

		if cl.PeriodStart != nil || cl.PeriodEnd != nil {
			if err := clientRepo.Update(ctx, cl.ID, map[string]any{
				"period_start": nil,
				"period_end":   nil,
				"updated_at":   now,
			}); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return invoicedomain.Invoice{}, err
	}

	s.log.Info("period archived",
		zap.String("client_id", req.ClientID),
		zap.String("invoice_number", inv.InvoiceNumber),
		zap.String("grand_total", inv.GrandTotal.StringFixed(2)),
	)
	return inv, nil
}

// CorrectRate implements domain.Service. Only TotalTime and GrandTotal are
// rewritten; the remaining snapshot fields stay untouched. Applying the
// same correction twice stores the same totals.
func (s *Service) CorrectRate(ctx context.Context, req domain.CorrectRateRequest) (invoicedomain.Invoice, error) {
	if req.HourlyRate != nil && req.FlatRate != nil {
		return invoicedomain.Invoice{}, domain.ErrRateConflict
	}
	if req.HourlyRate == nil && req.FlatRate == nil {
		return invoicedomain.Invoice{}, domain.ErrRateRequired
	}

	inv, err := s.invoiceRepo.FindOne(ctx, &invoicedomain.Invoice{ID: req.InvoiceID})
	if err != nil {
		return invoicedomain.Invoice{}, err
	}
	if inv == nil {
		return invoicedomain.Invoice{}, invoicedomain.ErrNotFound
	}

	var newTimeCost decimal.Decimal
	if req.FlatRate != nil {
		newTimeCost = *req.FlatRate
	} else {
		newTimeCost = req.TotalHours.Mul(*req.HourlyRate)
	}
	newTimeCost = newTimeCost.Round(2)

	// Proceeds invoices never bill time, so their grand total is already
	// the payables total and stays that way.
	newGrandTotal := inv.TotalPayables
	if inv.ClientID != s.proceedsClientID {
		newGrandTotal = newTimeCost.Add(inv.TotalSubscriptions).Sub(inv.TotalPayables).Round(2)
	}

	patch := map[string]any{
		"total_time":   newTimeCost,
		"grand_total":  newGrandTotal,
		"rate_pending": false,
	}
	if err := s.invoiceRepo.Update(ctx, req.InvoiceID, patch); err != nil {
		return invoicedomain.Invoice{}, err
	}

	s.log.Info("invoice rate corrected",
		zap.Int64("invoice_id", req.InvoiceID.Int64()),
		zap.String("total_time", newTimeCost.StringFixed(2)),
	)

	updated, err := s.invoiceRepo.FindOne(ctx, &invoicedomain.Invoice{ID: req.InvoiceID})
	if err != nil {
		return invoicedomain.Invoice{}, err
	}
	return *updated, nil
}

// nextInvoiceSeq atomically bumps the client's invoice counter and returns
// the new value. The counter equals the number of invoices ever created,
// so the returned value is count+1 without a read-then-write race.
func (s *Service) nextInvoiceSeq(ctx context.Context, tx *gorm.DB, clientID string) (int64, error) {
	res := tx.WithContext(ctx).
		Model(&clientdomain.Client{}).
		Where("id = ?", clientID).
		UpdateColumn("invoice_seq", gorm.Expr("invoice_seq + 1"))
	if res.Error != nil {
		return 0, res.Error
	}

	cl, err := s.clientRepo.WithTrx(tx).FindOne(ctx, &clientdomain.Client{ID: clientID})
	if err != nil {
		return 0, err
	}
	if cl == nil {
		return 0, clientdomain.ErrNotFound
	}
	return cl.InvoiceSeq, nil
}

// derivePeriod picks the snapshot window: stored markers win, then the
// earliest date among the records being archived, then today.
func derivePeriod(cl clientdomain.Client, entries []timeentrydomain.TimeEntry, payables []payabledomain.Payable, now time.Time) (time.Time, time.Time) {
	start := now
	if cl.PeriodStart != nil {
		start = *cl.PeriodStart
	} else if earliest, ok := earliestDate(entries, payables); ok {
		start = earliest
	}

	end := now
	if cl.PeriodEnd != nil {
		end = *cl.PeriodEnd
	}
	return start, end
}

func earliestDate(entries []timeentrydomain.TimeEntry, payables []payabledomain.Payable) (time.Time, bool) {
	var earliest time.Time
	found := false
	consider := func(t time.Time) {
		if !found || t.Before(earliest) {
			earliest = t
			found = true
		}
	}
	for _, entry := range entries {
		consider(entry.Date)
	}
	for _, payable := range payables {
		consider(payable.Date)
	}
	return earliest, found
}

func deref[T any](rows []*T) []T {
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		out = append(out, *row)
	}
	return out
}
