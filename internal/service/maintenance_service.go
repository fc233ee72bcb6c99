package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/phuslu/log"
	"github.com/robfig/cron/v3"

	"github.com/woodid012/renew-portfolio-api/internal/apperrors"
	"github.com/woodid012/renew-portfolio-api/internal/database"
	"github.com/woodid012/renew-portfolio-api/internal/metrics"
	"github.com/woodid012/renew-portfolio-api/internal/model"
	"github.com/woodid012/renew-portfolio-api/internal/repository"
	"github.com/woodid012/renew-portfolio-api/internal/validation"
)

// backfillTimeout bounds a scheduled backfill run.
const backfillTimeout = 5 * time.Minute

// MaintenanceService replaces malformed portfolio unique_ids and keeps dependent references in step.
type MaintenanceService struct {
	portfolioRepo *repository.PortfolioRepository
	settingsRepo  *repository.ModelSettingsRepository
	settingRepo   *repository.AppSettingRepository
	allocator     *UniqueIDAllocator
	metrics       *metrics.Metrics

	mu   sync.Mutex // serializes backfill runs
	cron *cron.Cron
}

// NewMaintenanceService creates a new MaintenanceService.
func NewMaintenanceService(
	portfolioRepo *repository.PortfolioRepository,
	settingsRepo *repository.ModelSettingsRepository,
	settingRepo *repository.AppSettingRepository,
	allocator *UniqueIDAllocator,
	m *metrics.Metrics,
) *MaintenanceService {
	return &MaintenanceService{
		portfolioRepo: portfolioRepo,
		settingsRepo:  settingsRepo,
		settingRepo:   settingRepo,
		allocator:     allocator,
		metrics:       m,
	}
}

// BackfillUniqueIDs allocates a fresh unique_id for every portfolio whose current value is not a valid allocated id.
// Documents sharing the same legacy value receive the same new id. Model settings and the default
// pointer that referenced the legacy value are moved to the new id.
func (s *MaintenanceService) BackfillUniqueIDs(ctx context.Context) (*model.BackfillResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	portfolios, err := s.portfolioRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	defaultID, err := s.currentDefault(ctx)
	if err != nil {
		return nil, err
	}

	result := &model.BackfillResult{Scanned: len(portfolios), Reassigned: map[string]string{}}
	for _, p := range portfolios {
		if validation.IsUniqueID(p.UniqueID) {
			continue
		}

		newID, seen := result.Reassigned[p.UniqueID]
		if !seen || p.UniqueID == "" {
			if newID, err = s.allocator.Allocate(ctx); err != nil {
				return result, err
			}
		}

		if _, err := s.portfolioRepo.UpdateByID(ctx, p.ID, database.Document{model.FieldUniqueID: newID}); err != nil {
			return result, err
		}
		result.Assigned++

		if p.UniqueID == "" || seen {
			continue
		}
		result.Reassigned[p.UniqueID] = newID

		if _, err := s.settingsRepo.RekeyUniqueID(ctx, p.UniqueID, newID); err != nil {
			return result, err
		}
		if defaultID == p.UniqueID {
			if err := s.settingRepo.Set(ctx, repository.SettingDefaultPortfolio, newID, time.Now()); err != nil {
				return result, err
			}
		}
		log.Info().Str("portfolio", p.PlatformName).Str("from", p.UniqueID).Str("to", newID).Msg("unique_id reassigned")
	}

	s.metrics.ObserveBackfill(result.Assigned)
	if result.Assigned > 0 {
		log.Info().Int("scanned", result.Scanned).Int("assigned", result.Assigned).Msg("unique_id backfill complete")
	}
	return result, nil
}

func (s *MaintenanceService) currentDefault(ctx context.Context) (string, error) {
	setting, err := s.settingRepo.Get(ctx, repository.SettingDefaultPortfolio)
	if errors.Is(err, apperrors.ErrSettingNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return setting.Value, nil
}

// Start schedules BackfillUniqueIDs with a standard five-field cron spec. An empty spec schedules nothing.
func (s *MaintenanceService) Start(spec string) error {
	if spec == "" {
		return nil
	}

	c := cron.New()
	if _, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), backfillTimeout)
		defer cancel()
		if _, err := s.BackfillUniqueIDs(ctx); err != nil {
			log.Error().Err(err).Msg("scheduled unique_id backfill failed")
		}
	}); err != nil {
		return fmt.Errorf("invalid backfill schedule %q: %w", spec, err)
	}

	c.Start()
	s.cron = c
	log.Info().Str("schedule", spec).Msg("unique_id backfill scheduled")
	return nil
}

// Stop halts the scheduler and waits for a running backfill to finish or ctx to expire.
func (s *MaintenanceService) Stop(ctx context.Context) {
	if s.cron == nil {
		return
	}
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}
