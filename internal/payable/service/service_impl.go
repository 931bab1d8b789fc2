package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	clientdomain "github.com/tallyworks/tally/internal/client/domain"
	"github.com/tallyworks/tally/internal/clock"
	"github.com/tallyworks/tally/internal/config"
	"github.com/tallyworks/tally/internal/payable/domain"
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

	repo       repository.Repository[domain.Payable]
	clientRepo repository.Repository[clientdomain.Client]
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
		log:              p.Log.Named("payable.service"),
		clock:            p.Clock,
		genID:            p.GenID,
		proceedsClientID: p.Cfg.ProceedsClientID,
		repo:             repository.ProvideStore[domain.Payable](p.DB),
		clientRepo:       repository.ProvideStore[clientdomain.Client](p.DB),
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreatePayableRequest) (domain.Payable, error) {
	description := strings.TrimSpace(req.Description)
	if description == "" {
		return domain.Payable{}, domain.ErrInvalidDescription
	}
	if req.Amount.IsNegative() {
		return domain.Payable{}, domain.ErrInvalidAmount
	}
	if err := validatePaid(req.Paid, req.PaidDate); err != nil {
		return domain.Payable{}, err
	}
	if req.Mirror && s.proceedsClientID == "" {
		return domain.Payable{}, domain.ErrNoProceedsClient
	}

	cl, err := s.clientRepo.FindOne(ctx, &clientdomain.Client{ID: req.ClientID})
	if err != nil {
		return domain.Payable{}, err
	}
	if cl == nil {
		return domain.Payable{}, clientdomain.ErrNotFound
	}

	now := s.clock.Now()
	payable := domain.Payable{
		ID:          s.genID.Generate(),
		ClientID:    req.ClientID,
		Description: description,
		Amount:      req.Amount,
		Date:        req.Date,
		Paid:        req.Paid,
		PaidDate:    req.PaidDate,
		Notes:       req.Notes,
		Attachments: req.Attachments,
		Links:       req.Links,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTrx(tx)

		if req.Mirror {
			mirror := domain.Payable{
				ID:          s.genID.Generate(),
				ClientID:    s.proceedsClientID,
				Description: description,
				Amount:      req.Amount,
				Date:        req.Date,
				Notes:       req.Notes,
				Attachments: req.Attachments,
				Links:       req.Links,
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			if err := repo.Create(ctx, &mirror); err != nil {
				return err
			}
			payable.MirrorID = &mirror.ID
		}

		return repo.Create(ctx, &payable)
	})
	if err != nil {
		return domain.Payable{}, err
	}

	return payable, nil
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (domain.Payable, error) {
	payable, err := s.repo.FindOne(ctx, &domain.Payable{ID: id})
	if err != nil {
		return domain.Payable{}, err
	}
	if payable == nil {
		return domain.Payable{}, domain.ErrNotFound
	}
	return *payable, nil
}

func (s *Service) ListOpen(ctx context.Context, clientID string) ([]domain.Payable, error) {
	rows, err := s.repo.Find(ctx,
		&domain.Payable{ClientID: clientID},
		option.WhereNull("invoice_id"),
		option.OrderBy("date ASC"),
	)
	if err != nil {
		return nil, err
	}
	return collect(rows), nil
}

func (s *Service) ListByInvoice(ctx context.Context, invoiceID snowflake.ID) ([]domain.Payable, error) {
	rows, err := s.repo.Find(ctx,
		&domain.Payable{},
		option.Where("invoice_id = ?", invoiceID),
		option.OrderBy("date ASC"),
	)
	if err != nil {
		return nil, err
	}
	return collect(rows), nil
}

func (s *Service) Update(ctx context.Context, id snowflake.ID, req domain.UpdatePayableRequest) (domain.Payable, error) {
	old, err := s.Get(ctx, id)
	if err != nil {
		return domain.Payable{}, err
	}
	if old.Archived() {
		return domain.Payable{}, domain.ErrArchived
	}

	now := s.clock.Now()
	patch := map[string]any{"updated_at": now}
	mirrorPatch := map[string]any{"updated_at": now}

	if req.Description != nil {
		description := strings.TrimSpace(*req.Description)
		if description == "" {
			return domain.Payable{}, domain.ErrInvalidDescription
		}
		patch["description"] = description
		mirrorPatch["description"] = description
	}
	if req.Amount != nil {
		if req.Amount.IsNegative() {
			return domain.Payable{}, domain.ErrInvalidAmount
		}
		patch["amount"] = *req.Amount
		mirrorPatch["amount"] = *req.Amount
	}
	if req.Date != nil {
		patch["date"] = *req.Date
		mirrorPatch["date"] = *req.Date
	}
	if req.Notes != nil {
		patch["notes"] = *req.Notes
		mirrorPatch["notes"] = *req.Notes
	}
	if req.Attachments != nil {
		patch["attachments"] = req.Attachments
		mirrorPatch["attachments"] = req.Attachments
	}
	if req.Links != nil {
		patch["links"] = req.Links
		mirrorPatch["links"] = req.Links
	}

	paid := old.Paid
	paidDate := old.PaidDate
	if req.Paid != nil {
		paid = *req.Paid
		if !paid {
			paidDate = nil
		}
	}
	if req.PaidDate != nil {
		paidDate = req.PaidDate
	}
	if req.Paid != nil || req.PaidDate != nil {
		if err := validatePaid(paid, paidDate); err != nil {
			return domain.Payable{}, err
		}
		patch["paid"] = paid
		patch["paid_date"] = paidDate
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTrx(tx)

		if err := repo.Update(ctx, id, patch); err != nil {
			return err
		}
		return s.reconcileMirror(ctx, repo, old, mirrorPatch)
	})
	if err != nil {
		return domain.Payable{}, err
	}

	return s.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id snowflake.ID) error {
	payable, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if payable.Archived() {
		return domain.ErrArchived
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTrx(tx)
		if payable.MirrorID != nil {
			if err := repo.Delete(ctx, *payable.MirrorID); err != nil {
				return err
			}
		}
		return repo.Delete(ctx, id)
	})
}

// reconcileMirror keeps the pass-through twin on the proceeds client's
// ledger in sync. Payables keyed with MirrorID reconcile by direct lookup;
// rows predating the key fall back to matching the old description, amount
// and date, which may touch zero or several rows.
func (s *Service) reconcileMirror(ctx context.Context, repo repository.Repository[domain.Payable], old domain.Payable, mirrorPatch map[string]any) error {
	if len(mirrorPatch) <= 1 {
		return nil
	}

	if old.MirrorID != nil {
		mirror, err := repo.FindOne(ctx, &domain.Payable{ID: *old.MirrorID})
		if err != nil {
			return err
		}
		if mirror == nil {
			return domain.ErrMirrorNotFound
		}
		return repo.Update(ctx, *old.MirrorID, mirrorPatch)
	}

	if s.proceedsClientID == "" || old.ClientID == s.proceedsClientID {
		return nil
	}

	affected, err := repo.UpdateWhere(ctx,
		&domain.Payable{ClientID: s.proceedsClientID, Description: old.Description, Date: old.Date},
		mirrorPatch,
		option.Where("amount = ?", old.Amount),
	)
	if err != nil {
		return err
	}
	if affected != 1 {
		s.log.Warn("mirror content match affected unexpected row count",
			zap.Int64("affected", affected),
			zap.String("client_id", old.ClientID),
			zap.Int64("payable_id", old.ID.Int64()),
		)
	}
	return nil
}

// validatePaid enforces the paid/paidDate pairing: a date is required when
// marked paid and forbidden otherwise.
func validatePaid(paid bool, paidDate *time.Time) error {
	if paid && paidDate == nil {
		return domain.ErrPaidDateRequired
	}
	if !paid && paidDate != nil {
		return domain.ErrPaidDateWithoutPaid
	}
	return nil
}

func collect(rows []*domain.Payable) []domain.Payable {
	out := make([]domain.Payable, 0, len(rows))
	for _, row := range rows {
		out = append(out, *row)
	}
	return out
}
