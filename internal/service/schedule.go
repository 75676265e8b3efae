package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"nimbus/internal/config"
	"nimbus/internal/eventbus"
	"nimbus/internal/osched"
	"nimbus/internal/schedule"
	"nimbus/internal/store"
	"nimbus/internal/types"
	"nimbus/logger"
)

type (
	ScheduleService interface {
		Set(ctx context.Context, params types.SetScheduleParams) (*types.Schedule, error)
		Remove(ctx context.Context, profileID uuid.UUID) error
		Status(ctx context.Context, profileID uuid.UUID) (*types.Schedule, error)
		RestoreRegistrations(ctx context.Context) error
	}

	scheduleService struct {
		st      store.Store
		cfg     config.Config
		adapter osched.Adapter
		bus     eventbus.Bus
		now     func() time.Time
	}
)

func NewScheduleService(st store.Store, cfg config.Config, adapter osched.Adapter, bus eventbus.Bus) ScheduleService {
	return &scheduleService{
		st:      st,
		cfg:     cfg,
		adapter: adapter,
		bus:     bus,
		now:     time.Now,
	}
}

func (s *scheduleService) Set(ctx context.Context, params types.SetScheduleParams) (*types.Schedule, error) {
	frequency, err := buildFrequency(params)
	if err != nil {
		return nil, err
	}

	sched := &types.Schedule{
		Enabled:   true,
		Frequency: frequency,
		Time:      params.Time,
	}
	next, err := schedule.NextRun(*sched, s.now())
	if err != nil {
		return nil, err
	}
	sched.NextRun = next

	var profile *types.Profile
	err = s.st.Update(ctx, func(state *types.AppState) error {
		profile = state.FindProfile(params.ProfileID)
		if profile == nil {
			return store.ErrProfileNotFound
		}
		// keep last_run across reconfiguration
		if profile.Schedule != nil {
			sched.LastRun = profile.Schedule.LastRun
		}
		profile.Schedule = sched
		profile.UpdatedAt = s.now().UTC()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.register(ctx, profile, *sched)
	s.bus.Publish(profile.ID.String(), eventbus.ScheduleUpdated,
		fmt.Sprintf("schedule set: %s at %s", frequency.Kind, params.Time))
	return sched, nil
}

// register writes the runner script and hands it to the OS scheduler. A
// registration failure is reported but does not undo the stored schedule,
// next_run bookkeeping still works and the user can retry.
func (s *scheduleService) register(ctx context.Context, profile *types.Profile, sched types.Schedule) {
	scriptPath, err := osched.WriteRunnerScript(profile, s.cfg.ScriptsDir(), s.cfg.ProfileLogFile(profile.ID))
	if err != nil {
		logger.Error("failed to write runner script",
			zap.String("profile_id", profile.ID.String()), zap.Error(err))
		return
	}

	spec, err := schedule.Trigger(sched)
	if err != nil {
		logger.Error("failed to build trigger", zap.Error(err))
		return
	}

	if err := s.adapter.Register(ctx, profile, spec, scriptPath); err != nil {
		logger.Error("os scheduler registration failed",
			zap.String("profile_id", profile.ID.String()), zap.Error(err))
	}
}

func (s *scheduleService) Remove(ctx context.Context, profileID uuid.UUID) error {
	err := s.st.Update(ctx, func(state *types.AppState) error {
		profile := state.FindProfile(profileID)
		if profile == nil {
			return store.ErrProfileNotFound
		}
		profile.Schedule = nil
		profile.UpdatedAt = s.now().UTC()
		return nil
	})
	if err != nil {
		return err
	}

	if err := s.adapter.Unregister(ctx, profileID); err != nil {
		logger.Error("os scheduler unregister failed",
			zap.String("profile_id", profileID.String()), zap.Error(err))
	}
	if err := osched.RemoveRunnerScript(profileID.String(), s.cfg.ScriptsDir()); err != nil {
		logger.Warn("failed to remove runner script", zap.Error(err))
	}

	s.bus.Publish(profileID.String(), eventbus.ScheduleUpdated, "schedule removed")
	return nil
}

func (s *scheduleService) Status(ctx context.Context, profileID uuid.UUID) (*types.Schedule, error) {
	state, err := s.st.Load(ctx)
	if err != nil {
		return nil, err
	}
	profile := state.FindProfile(profileID)
	if profile == nil {
		return nil, store.ErrProfileNotFound
	}
	return profile.Schedule, nil
}

// RestoreRegistrations re-registers every enabled schedule at startup. The
// in-process fallback adapter loses its entries on restart; the native
// adapters treat this as an idempotent refresh.
func (s *scheduleService) RestoreRegistrations(ctx context.Context) error {
	state, err := s.st.Load(ctx)
	if err != nil {
		return err
	}

	for _, profile := range state.Profiles {
		if profile.Schedule == nil || !profile.Schedule.Enabled {
			continue
		}
		s.register(ctx, profile, *profile.Schedule)
	}
	return nil
}

func buildFrequency(params types.SetScheduleParams) (types.Frequency, error) {
	switch types.FrequencyKind(params.Frequency) {
	case types.FrequencyDaily:
		return types.Daily(), nil
	case types.FrequencyWeekly:
		return types.Weekly(params.Weekday), nil
	case types.FrequencyMonthly:
		if params.DayOfMonth < 1 || params.DayOfMonth > 31 {
			return types.Frequency{}, errors.Errorf("invalid day of month: %d", params.DayOfMonth)
		}
		return types.Monthly(params.DayOfMonth), nil
	default:
		return types.Frequency{}, errors.Errorf("unknown frequency: %s", params.Frequency)
	}
}
