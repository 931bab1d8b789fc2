package service

import (
	"context"
	"strings"

	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
	"github.com/tallyworks/tally/internal/client/domain"
	"github.com/tallyworks/tally/internal/clock"
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
	repo  repository.Repository[domain.Client]
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
		log:   p.Log.Named("client.service"),
		clock: p.Clock,
		repo:  repository.ProvideStore[domain.Client](p.DB),
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateClientRequest) (domain.Client, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Client{}, domain.ErrInvalidName
	}

	mode, hourly, flat, err := resolveBillingMode(req.HourlyRate, req.FlatRate)
	if err != nil {
		return domain.Client{}, err
	}

	id := slug.Make(name)
	existing, err := s.repo.FindOne(ctx, &domain.Client{ID: id})
	if err != nil {
		return domain.Client{}, err
	}
	if existing != nil {
		return domain.Client{}, domain.ErrClientExists
	}

	now := s.clock.Now()
	cl := domain.Client{
		ID:          id,
		Name:        name,
		BillingMode: mode,
		HourlyRate:  hourly,
		FlatRate:    flat,
		Notes:       req.Notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, &cl); err != nil {
		return domain.Client{}, err
	}

	s.log.Info("client created", zap.String("client_id", cl.ID))
	return cl, nil
}

func (s *Service) Get(ctx context.Context, id string) (domain.Client, error) {
	cl, err := s.repo.FindOne(ctx, &domain.Client{ID: id})
	if err != nil {
		return domain.Client{}, err
	}
	if cl == nil {
		return domain.Client{}, domain.ErrNotFound
	}
	return *cl, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Client, error) {
	rows, err := s.repo.Find(ctx, &domain.Client{}, option.OrderBy("name ASC"))
	if err != nil {
		return nil, err
	}
	out := make([]domain.Client, 0, len(rows))
	for _, row := range rows {
		out = append(out, *row)
	}
	return out, nil
}

func (s *Service) Update(ctx context.Context, id string, req domain.UpdateClientRequest) (domain.Client, error) {
	cl, err := s.Get(ctx, id)
	if err != nil {
		return domain.Client{}, err
	}

	patch := map[string]any{"updated_at": s.clock.Now()}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Client{}, domain.ErrInvalidName
		}
		patch["name"] = name
	}
	if req.Notes != nil {
		patch["notes"] = *req.Notes
	}

	if req.HourlyRateSet || req.FlatRateSet {
		hourly := cl.HourlyRate
		flat := cl.FlatRate
		if req.HourlyRateSet {
			hourly = req.HourlyRate
		}
		if req.FlatRateSet {
			flat = req.FlatRate
		}
		mode, hourly, flat, err := resolveBillingMode(hourly, flat)
		if err != nil {
			return domain.Client{}, err
		}
		patch["billing_mode"] = mode
		patch["hourly_rate"] = hourly
		patch["flat_rate"] = flat
	}

	if err := s.repo.Update(ctx, id, patch); err != nil {
		return domain.Client{}, err
	}
	return s.Get(ctx, id)
}

// OpenPeriod sets or clears the client's open billing period markers.
func (s *Service) OpenPeriod(ctx context.Context, id string, req domain.OpenPeriodRequest) (domain.Client, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return domain.Client{}, err
	}
	if req.PeriodStart != nil && req.PeriodEnd != nil && req.PeriodEnd.Before(*req.PeriodStart) {
		return domain.Client{}, domain.ErrInvalidPeriod
	}

	patch := map[string]any{
		"period_start": req.PeriodStart,
		"period_end":   req.PeriodEnd,
		"updated_at":   s.clock.Now(),
	}
	if err := s.repo.Update(ctx, id, patch); err != nil {
		return domain.Client{}, err
	}
	return s.Get(ctx, id)
}

// resolveBillingMode enforces the at-most-one-rate invariant.
func resolveBillingMode(hourly, flat *decimal.Decimal) (domain.BillingMode, *decimal.Decimal, *decimal.Decimal, error) {
	if hourly != nil && flat != nil {
		return "", nil, nil, domain.ErrRateConflict
	}
	if hourly != nil {
		if hourly.IsNegative() {
			return "", nil, nil, domain.ErrNegativeRate
		}
		return domain.BillingModeHourly, hourly, nil, nil
	}
	if flat != nil {
		if flat.IsNegative() {
			return "", nil, nil, domain.ErrNegativeRate
		}
		return domain.BillingModeFlat, nil, flat, nil
	}
	return domain.BillingModeUnset, nil, nil, nil
}
