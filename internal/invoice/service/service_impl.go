package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/tallyworks/tally/internal/clock"
	"github.com/tallyworks/tally/internal/invoice/domain"
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
	repo  repository.Repository[domain.Invoice]
}

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
}

func NewService(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("invoice.service"),
		clock: p.Clock,
		repo:  repository.ProvideStore[domain.Invoice](p.DB),
	}
}

func (s *Service) List(ctx context.Context, req domain.ListInvoicesRequest) ([]domain.Invoice, error) {
	rows, err := s.repo.Find(ctx,
		&domain.Invoice{ClientID: req.ClientID},
		option.OrderBy("created_at DESC"),
	)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Invoice, 0, len(rows))
	for _, row := range rows {
		out = append(out, *row)
	}
	return out, nil
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (domain.Invoice, error) {
	inv, err := s.repo.FindOne(ctx, &domain.Invoice{ID: id})
	if err != nil {
		return domain.Invoice{}, err
	}
	if inv == nil {
		return domain.Invoice{}, domain.ErrNotFound
	}
	return *inv, nil
}

// SetPaid flips the invoice's cash-flow status. The snapshot totals stay
// untouched.
func (s *Service) SetPaid(ctx context.Context, id snowflake.ID, req domain.SetPaidRequest) (domain.Invoice, error) {
	if _, err := s.GetByID(ctx, id); err != nil {
		return domain.Invoice{}, err
	}

	paidDate := req.PaidDate
	if req.Paid && paidDate == nil {
		now := s.clock.Now()
		paidDate = &now
	}
	if !req.Paid {
		paidDate = nil
	}

	patch := map[string]any{
		"paid":      req.Paid,
		"paid_date": paidDate,
	}
	if err := s.repo.Update(ctx, id, patch); err != nil {
		return domain.Invoice{}, err
	}
	return s.GetByID(ctx, id)
}
