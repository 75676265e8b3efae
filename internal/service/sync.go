package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"nimbus/internal/eventbus"
	"nimbus/internal/reconcile"
	"nimbus/internal/store"
	"nimbus/logger"
)

type (
	// SyncService periodically folds scheduled-backup logs into the
	// operation history, so runs fired by the OS scheduler while the
	// server was busy or down still end up recorded.
	SyncService interface {
		Start(ctx context.Context) error
		SyncAll(ctx context.Context) (int, error)
		SyncProfile(ctx context.Context, profileID uuid.UUID) (int, error)
		Stop() error
	}

	syncService struct {
		st         store.Store
		reconciler reconcile.Reconciler
		bus        eventbus.Bus
		scheduler  gocron.Scheduler
		interval   time.Duration
	}
)

func NewSyncService(st store.Store, reconciler reconcile.Reconciler, bus eventbus.Bus, interval time.Duration) (SyncService, error) {
	scheduler, err := gocron.NewScheduler(
		gocron.WithLimitConcurrentJobs(1, gocron.LimitModeReschedule))
	if err != nil {
		return nil, err
	}
	return &syncService{
		st:         st,
		reconciler: reconciler,
		bus:        bus,
		scheduler:  scheduler,
		interval:   interval,
	}, nil
}

func (s *syncService) Start(ctx context.Context) error {
	job, err := s.scheduler.NewJob(
		gocron.DurationJob(s.interval),
		gocron.NewTask(s.syncBG, ctx),
		gocron.WithStartAt(gocron.WithStartImmediately()))
	if err != nil {
		return err
	}

	logger.Info("log sync job queued",
		zap.String("job_id", job.ID().String()),
		zap.Duration("interval", s.interval))
	s.scheduler.Start()
	return nil
}

func (s *syncService) syncBG(ctx context.Context) {
	if _, err := s.SyncAll(ctx); err != nil {
		logger.Error("log sync failed", zap.Error(err))
	}
}

func (s *syncService) SyncAll(ctx context.Context) (int, error) {
	state, err := s.st.Load(ctx)
	if err != nil {
		return 0, err
	}

	total := 0
	for _, profile := range state.Profiles {
		count, err := s.reconciler.Sync(ctx, profile.ID)
		if err != nil {
			logger.Error("log sync failed for profile",
				zap.String("profile_id", profile.ID.String()), zap.Error(err))
			continue
		}
		if count > 0 {
			s.bus.Publish(profile.ID.String(), eventbus.LogsSynced,
				fmt.Sprintf("recorded %d scheduled runs from logs", count))
		}
		total += count
	}
	return total, nil
}

func (s *syncService) SyncProfile(ctx context.Context, profileID uuid.UUID) (int, error) {
	return s.reconciler.Sync(ctx, profileID)
}

func (s *syncService) Stop() error {
	return s.scheduler.Shutdown()
}
