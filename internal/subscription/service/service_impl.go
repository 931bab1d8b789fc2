package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	clientdomain "github.com/tallyworks/tally/internal/client/domain"
	"github.com/tallyworks/tally/internal/clock"
	"github.com/tallyworks/tally/internal/subscription/domain"
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

	repo       repository.Repository[domain.Subscription]
	clientRepo repository.Repository[clientdomain.Client]
}

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
	GenID *snowflake.Node
}

func NewService(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("subscription.service"),
		clock:      p.Clock,
		genID:      p.GenID,
		repo:       repository.ProvideStore[domain.Subscription](p.DB),
		clientRepo: repository.ProvideStore[clientdomain.Client](p.DB),
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateSubscriptionRequest) (domain.Subscription, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Subscription{}, domain.ErrInvalidName
	}
	if err := validateCycle(req.BillingCycle); err != nil {
		return domain.Subscription{}, err
	}
	if req.Amount.IsNegative() {
		return domain.Subscription{}, domain.ErrInvalidAmount
	}

	cl, err := s.clientRepo.FindOne(ctx, &clientdomain.Client{ID: req.ClientID})
	if err != nil {
		return domain.Subscription{}, err
	}
	if cl == nil {
		return domain.Subscription{}, clientdomain.ErrNotFound
	}

	now := s.clock.Now()
	sub := domain.Subscription{
		ID:           s.genID.Generate(),
		ClientID:     req.ClientID,
		Name:         name,
		Category:     req.Category,
		BillingCycle: req.BillingCycle,
		Amount:       req.Amount,
		RenewalDate:  req.RenewalDate,
		Notes:        req.Notes,
		Attachments:  req.Attachments,
		Links:        req.Links,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, &sub); err != nil {
		return domain.Subscription{}, err
	}
	return sub, nil
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (domain.Subscription, error) {
	sub, err := s.repo.FindOne(ctx, &domain.Subscription{ID: id})
	if err != nil {
		return domain.Subscription{}, err
	}
	if sub == nil {
		return domain.Subscription{}, domain.ErrNotFound
	}
	return *sub, nil
}

func (s *Service) ListOpen(ctx context.Context, clientID string) ([]domain.Subscription, error) {
	rows, err := s.repo.Find(ctx,
		&domain.Subscription{ClientID: clientID},
		option.WhereNull("invoice_id"),
		option.OrderBy("name ASC"),
	)
	if err != nil {
		return nil, err
	}
	return collect(rows), nil
}

func (s *Service) ListByInvoice(ctx context.Context, invoiceID snowflake.ID) ([]domain.Subscription, error) {
	rows, err := s.repo.Find(ctx,
		&domain.Subscription{},
		option.Where("invoice_id = ?", invoiceID),
		option.OrderBy("name ASC"),
	)
	if err != nil {
		return nil, err
	}
	return collect(rows), nil
}

func (s *Service) Update(ctx context.Context, id snowflake.ID, req domain.UpdateSubscriptionRequest) (domain.Subscription, error) {
	sub, err := s.Get(ctx, id)
	if err != nil {
		return domain.Subscription{}, err
	}
	if sub.Archived() {
		return domain.Subscription{}, domain.ErrArchived
	}

	patch := map[string]any{"updated_at": s.clock.Now()}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Subscription{}, domain.ErrInvalidName
		}
		patch["name"] = name
	}
	if req.Category != nil {
		patch["category"] = *req.Category
	}
	if req.BillingCycle != nil {
		if err := validateCycle(*req.BillingCycle); err != nil {
			return domain.Subscription{}, err
		}
		patch["billing_cycle"] = *req.BillingCycle
	}
	if req.Amount != nil {
		if req.Amount.IsNegative() {
			return domain.Subscription{}, domain.ErrInvalidAmount
		}
		patch["amount"] = *req.Amount
	}
	if req.RenewalDate != nil {
		patch["renewal_date"] = *req.RenewalDate
	}
	if req.Notes != nil {
		patch["notes"] = *req.Notes
	}
	if req.Attachments != nil {
		patch["attachments"] = req.Attachments
	}
	if req.Links != nil {
		patch["links"] = req.Links
	}

	if err := s.repo.Update(ctx, id, patch); err != nil {
		return domain.Subscription{}, err
	}
	return s.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id snowflake.ID) error {
	sub, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if sub.Archived() {
		return domain.ErrArchived
	}
	return s.repo.Delete(ctx, id)
}

func validateCycle(cycle domain.BillingCycle) error {
	switch cycle {
	case domain.BillingCycleMonthly, domain.BillingCycleAnnual:
		return nil
	default:
		return domain.ErrInvalidBillingCycle
	}
}

func collect(rows []*domain.Subscription) []domain.Subscription {
	out := make([]domain.Subscription, 0, len(rows))
	for _, row := range rows {
		out = append(out, *row)
	}
	return out
}
