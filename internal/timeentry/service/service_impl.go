package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	clientdomain "github.com/tallyworks/tally/internal/client/domain"
	"github.com/tallyworks/tally/internal/clock"
	"github.com/tallyworks/tally/internal/timeentry/domain"
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

	repo       repository.Repository[domain.TimeEntry]
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
		log:        p.Log.Named("timeentry.service"),
		clock:      p.Clock,
		genID:      p.GenID,
		repo:       repository.ProvideStore[domain.TimeEntry](p.DB),
		clientRepo: repository.ProvideStore[clientdomain.Client](p.DB),
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateTimeEntryRequest) (domain.TimeEntry, error) {
	if req.TotalHours.IsNegative() {
		return domain.TimeEntry{}, domain.ErrInvalidHours
	}

	cl, err := s.clientRepo.FindOne(ctx, &clientdomain.Client{ID: req.ClientID})
	if err != nil {
		return domain.TimeEntry{}, err
	}
	if cl == nil {
		return domain.TimeEntry{}, clientdomain.ErrNotFound
	}

	now := s.clock.Now()
	entry := domain.TimeEntry{
		ID:          s.genID.Generate(),
		ClientID:    req.ClientID,
		Date:        req.Date,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		TotalHours:  req.TotalHours,
		Tasks:       req.Tasks,
		Notes:       req.Notes,
		Attachments: req.Attachments,
		Links:       req.Links,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, &entry); err != nil {
		return domain.TimeEntry{}, err
	}
	return entry, nil
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (domain.TimeEntry, error) {
	entry, err := s.repo.FindOne(ctx, &domain.TimeEntry{ID: id})
	if err != nil {
		return domain.TimeEntry{}, err
	}
	if entry == nil {
		return domain.TimeEntry{}, domain.ErrNotFound
	}
	return *entry, nil
}

func (s *Service) ListOpen(ctx context.Context, clientID string) ([]domain.TimeEntry, error) {
	rows, err := s.repo.Find(ctx,
		&domain.TimeEntry{ClientID: clientID},
		option.WhereNull("invoice_id"),
		option.OrderBy("date ASC"),
	)
	if err != nil {
		return nil, err
	}
	return collect(rows), nil
}

func (s *Service) ListByInvoice(ctx context.Context, invoiceID snowflake.ID) ([]domain.TimeEntry, error) {
	rows, err := s.repo.Find(ctx,
		&domain.TimeEntry{},
		option.Where("invoice_id = ?", invoiceID),
		option.OrderBy("date ASC"),
	)
	if err != nil {
		return nil, err
	}
	return collect(rows), nil
}

func (s *Service) Update(ctx context.Context, id snowflake.ID, req domain.UpdateTimeEntryRequest) (domain.TimeEntry, error) {
	entry, err := s.Get(ctx, id)
	if err != nil {
		return domain.TimeEntry{}, err
	}
	if entry.Archived() {
		return domain.TimeEntry{}, domain.ErrArchived
	}

	patch := map[string]any{"updated_at": s.clock.Now()}
	if req.Date != nil {
		patch["date"] = *req.Date
	}
	if req.StartTime != nil {
		patch["start_time"] = *req.StartTime
	}
	if req.EndTime != nil {
		patch["end_time"] = *req.EndTime
	}
	if req.TotalHours != nil {
		if req.TotalHours.IsNegative() {
			return domain.TimeEntry{}, domain.ErrInvalidHours
		}
		patch["total_hours"] = *req.TotalHours
	}
	if req.Tasks != nil {
		patch["tasks"] = *req.Tasks
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
		return domain.TimeEntry{}, err
	}
	return s.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id snowflake.ID) error {
	entry, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if entry.Archived() {
		return domain.ErrArchived
	}
	return s.repo.Delete(ctx, id)
}

func collect(rows []*domain.TimeEntry) []domain.TimeEntry {
	out := make([]domain.TimeEntry, 0, len(rows))
	for _, row := range rows {
		out = append(out, *row)
	}
	return out
}
